package web

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/content"
	"skportal-backend/internal/database"
	"skportal-backend/internal/models"
)

// signIn creates the "admin" account and returns its session cookie
func (s *testSite) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	_, err := s.auth.CreateAdmin(models.CreateAdminRequest{Username: "admin", Password: "barangay-2024"})
	require.NoError(t, err)
	return s.login(t)
}

func (s *testSite) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"barangay-2024"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

type upload struct {
	field    string
	filename string
	data     string
}

func (s *testSite) postMultipart(t *testing.T, path string, form url.Values, files []upload, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			require.NoError(t, w.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestAdminFormsRequireSession(t *testing.T) {
	s := newTestSite(t)
	form := url.Values{"title": {"x"}}
	for _, path := range []string{"/admin/announcements", "/admin/gallery", "/admin/projects", "/admin/site", "/admin/sessions/revoke-all"} {
		rec := s.postForm(path, form)
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
	}
	list, err := s.content.ListAnnouncements()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdminAnnouncementForms(t *testing.T) {
	s := newTestSite(t)
	cookie := s.signIn(t)

	form := url.Values{
		"title":       {"Liga 2024"},
		"description": {"Basketball league opens"},
		"category":    {"Event"},
		"date":        {"2024-06-01"},
		"images":      {"https://example.com/a.jpg\n\n"},
	}
	rec := s.postMultipart(t, "/admin/announcements", form, []upload{
		{field: "files", filename: "Poster.PNG", data: "png-bytes"},
		{field: "files", filename: "", data: ""},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=announcement", rec.Header().Get("Location"))

	list, err := s.content.ListAnnouncements()
	require.NoError(t, err)
	require.Len(t, list, 1)
	a := list[0]
	require.Len(t, a.Images, 2)
	require.Equal(t, "https://example.com/a.jpg", a.Images[0])
	require.Regexp(t, `^/media/announcements/\d{4}/\d{2}/[0-9a-f-]{36}\.png$`, a.Images[1])

	rec = s.get(a.Images[1])
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "png-bytes", rec.Body.String())

	logs, _, err := database.NewAuditRepo().List(models.AuditFilter{Action: models.ActionAnnouncementCreate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "admin", logs[0].Username)

	rec = s.get("/admin?saved=announcement", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Announcement saved.")
	require.Contains(t, rec.Body.String(), `href="/admin/announcements/`+a.ID+`"`)

	rec = s.get("/admin/announcements/"+a.ID, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="Liga 2024"`)
	require.Contains(t, rec.Body.String(), "<option selected>Event</option>")

	form.Set("title", "Liga 2024 finals")
	form.Set("images", strings.Join(a.Images, "\n"))
	rec = s.postForm("/admin/announcements/"+a.ID, form, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	updated, err := s.content.Announcement(a.ID)
	require.NoError(t, err)
	require.Equal(t, "Liga 2024 finals", updated.Title)
	require.Equal(t, a.Images, updated.Images)

	form.Del("title")
	rec = s.postForm("/admin/announcements", form, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "title is required")
	require.Contains(t, rec.Body.String(), "Liga 2024 finals")

	rec = s.postForm("/admin/announcements/"+a.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=deleted", rec.Header().Get("Location"))

	rec = s.postForm("/admin/announcements/"+a.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "That item no longer exists.")

	rec = s.get("/admin/announcements/"+a.ID, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGalleryUpload(t *testing.T) {
	s := newTestSite(t)
	cookie := s.signIn(t)

	form := url.Values{"title": {"Clean-up drive"}, "date": {"2024-05-04"}, "category": {"Community"}}
	rec := s.postForm("/admin/gallery", form, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "image is required")

	rec = s.postMultipart(t, "/admin/gallery", form, []upload{{field: "file", filename: "drive.jpg", data: "jpg-bytes"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=gallery", rec.Header().Get("Location"))

	list, err := s.content.ListGallery()
	require.NoError(t, err)
	require.Len(t, list, 1)
	g := list[0]
	require.True(t, strings.HasPrefix(g.Image, "/media/gallery/"), g.Image)
	require.True(t, strings.HasSuffix(g.Image, ".jpg"), g.Image)
	rec = s.get(g.Image)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "jpg-bytes", rec.Body.String())

	rec = s.get("/admin/gallery/"+g.ID, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="`+g.Image+`"`)

	form.Set("title", "Coastal clean-up")
	form.Set("image", g.Image)
	rec = s.postMultipart(t, "/admin/gallery/"+g.ID, form, nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	updated, err := s.content.GalleryItem(g.ID)
	require.NoError(t, err)
	require.Equal(t, "Coastal clean-up", updated.Title)
	require.Equal(t, g.Image, updated.Image)

	rec = s.get("/gallery")
	require.Contains(t, rec.Body.String(), "Coastal clean-up")

	rec = s.postForm("/admin/gallery/"+g.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list, err = s.content.ListGallery()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdminProjectForms(t *testing.T) {
	s := newTestSite(t)
	cookie := s.signIn(t)

	form := url.Values{
		"title":         {"Youth Sports Development"},
		"description":   {"Regular sports clinics"},
		"status":        {"Ongoing"},
		"period":        {"January 2024 - Present"},
		"budget":        {"PHP 150,000"},
		"beneficiaries": {"200+ youth"},
		"impact":        {"Three regional medals"},
	}
	rec := s.postMultipart(t, "/admin/projects", form, []upload{{field: "file", filename: "clinic.webp", data: "webp"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=project", rec.Header().Get("Location"))

	list, err := s.content.ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	p := list[0]
	require.Equal(t, models.ProjectOngoing, p.Status)
	require.True(t, strings.HasPrefix(p.Image, "/media/projects/"), p.Image)

	rec = s.get("/projects")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Youth Sports Development")
	require.Contains(t, body, "PHP 150,000")
	require.Contains(t, body, `src="`+p.Image+`"`)

	rec = s.get("/admin/projects/"+p.ID, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<option selected>Ongoing</option>")

	form.Set("status", "Finished")
	form.Set("image", p.Image)
	rec = s.postForm("/admin/projects/"+p.ID, form, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	form.Set("status", "Completed")
	rec = s.postForm("/admin/projects/"+p.ID, form, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	updated, err := s.content.Project(p.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectCompleted, updated.Status)
	require.Equal(t, p.Image, updated.Image)

	rec = s.postForm("/admin/projects/"+p.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = s.get("/projects")
	require.Contains(t, rec.Body.String(), "No projects yet.")
}

func TestAdminGrievanceStatus(t *testing.T) {
	s := newTestSite(t)
	cookie := s.signIn(t)

	g, err := s.content.SubmitGrievance(content.GrievanceInput{
		FullName: "Juan Dela Cruz", Address: "Purok 3", Contact: "09171234567",
		Category: "Complaint", Subject: "Noise", Details: "Karaoke past midnight",
	})
	require.NoError(t, err)

	rec := s.get("/admin", cookie)
	require.Contains(t, rec.Body.String(), `<option value="new" selected>new</option>`)

	rec = s.postForm("/admin/grievances/"+g.ID+"/status", url.Values{"status": {"in_review"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=grievance", rec.Header().Get("Location"))

	list, err := s.content.ListGrievances("in_review")
	require.NoError(t, err)
	require.Len(t, list, 1)

	rec = s.postForm("/admin/grievances/"+g.ID+"/status", url.Values{"status": {"closed"}}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "status must be")

	rec = s.postForm("/admin/grievances/"+g.ID+"/delete", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	list, err = s.content.ListGrievances("")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdminSiteSettings(t *testing.T) {
	s := newTestSite(t)
	cookie := s.signIn(t)

	rec := s.get("/admin", cookie)
	require.Contains(t, rec.Body.String(), `name="site.contact_phone"`)

	rec = s.postForm("/admin/site", url.Values{
		"site.hero_title":    {"Welcome, Kabataan"},
		"site.contact_phone": {" 0917-555-0101 "},
		"unrelated":          {"ignored"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?saved=site", rec.Header().Get("Location"))

	settings, err := s.content.Site()
	require.NoError(t, err)
	require.Equal(t, "Welcome, Kabataan", settings[models.SiteHeroTitle])
	require.Equal(t, "0917-555-0101", settings[models.SiteContactPhone])

	rec = s.get("/")
	require.Contains(t, rec.Body.String(), "Phone: 0917-555-0101")

	rec = s.postForm("/admin/site", url.Values{"unrelated": {"x"}}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "no settings given")
}

func TestAdminSignOutEverywhere(t *testing.T) {
	s := newTestSite(t)
	first := s.signIn(t)
	second := s.login(t)

	rec := s.postForm("/admin/sessions/revoke-all", nil, first)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/login", rec.Header().Get("Location"))

	for _, cookie := range []*http.Cookie{first, second} {
		rec = s.get("/admin", cookie)
		require.Equal(t, http.StatusFound, rec.Code)
	}

	logs, _, err := database.NewAuditRepo().List(models.AuditFilter{Action: models.ActionSessionRevokeAll})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestGrievanceFormIsLimited(t *testing.T) {
	s := newTestSiteWith(t, Options{GrievanceLimit: auth.SubmissionLimit(2)})
	form := url.Values{"fullName": {"Juan"}}

	for i := 0; i < 2; i++ {
		rec := s.postForm("/grievance", form)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := s.postForm("/grievance", form)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "Too many submissions")

	rec = s.get("/grievance")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestObjectName(t *testing.T) {
	shape := regexp.MustCompile(`^\d{4}/\d{2}/[0-9a-f-]{36}(\.[a-z0-9]+)?$`)
	for filename, ext := range map[string]string{
		"Poster.PNG":       ".png",
		"photo.jpeg":       ".jpeg",
		"noext":            "",
		"../../etc/passwd": "",
		"bad.p g":          "",
		"x.<script>":       "",
	} {
		name := objectName(filename)
		require.Regexp(t, shape, name, filename)
		require.True(t, strings.HasSuffix(name, ext), filename)
		if ext == "" {
			require.NotContains(t, name[8:], ".", filename)
		}
	}
}
