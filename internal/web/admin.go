package web

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/content"
	"skportal-backend/internal/database"
	"skportal-backend/internal/models"
	"skportal-backend/internal/storage"
)

// SiteField is one editable site setting on the dashboard
type SiteField struct {
	Key   string
	Label string
	Value string
	Long  bool
}

var siteFieldLabels = []struct {
	key   string
	label string
	long  bool
}{
	{models.SiteHeroTitle, "Hero title", false},
	{models.SiteHeroSubtitle, "Hero subtitle", false},
	{models.SiteAboutText, "About text", true},
	{models.SiteContactAddress, "Address", false},
	{models.SiteContactPhone, "Phone", false},
	{models.SiteContactEmail, "Email", false},
	{models.SiteContactHours, "Office hours", false},
}

// notices maps the ?saved= code of a post-redirect to its message
var notices = map[string]string{
	"announcement": "Announcement saved.",
	"gallery":      "Gallery item saved.",
	"project":      "Project saved.",
	"grievance":    "Grievance updated.",
	"site":         "Site settings saved.",
	"deleted":      "Item deleted.",
}

func (s *Site) registerAdmin(admin *echo.Group) {
	admin.POST("/announcements", s.createAnnouncement)
	admin.GET("/announcements/:id", s.editAnnouncement)
	admin.POST("/announcements/:id", s.updateAnnouncement)
	admin.POST("/announcements/:id/delete", s.deleteAnnouncement)

	admin.POST("/gallery", s.createGalleryItem)
	admin.GET("/gallery/:id", s.editGalleryItem)
	admin.POST("/gallery/:id", s.updateGalleryItem)
	admin.POST("/gallery/:id/delete", s.deleteGalleryItem)

	admin.POST("/projects", s.createProject)
	admin.GET("/projects/:id", s.editProject)
	admin.POST("/projects/:id", s.updateProject)
	admin.POST("/projects/:id/delete", s.deleteProject)

	admin.POST("/grievances/:id/status", s.setGrievanceStatus)
	admin.POST("/grievances/:id/delete", s.deleteGrievance)

	admin.POST("/site", s.updateSite)
	admin.POST("/sessions/revoke-all", s.signOutEverywhere)
}

func formOptions(p *Page) *Page {
	p.AnnouncementCategories = models.AnnouncementCategories
	p.GalleryCategories = models.GalleryCategories
	p.ProjectStatuses = models.ProjectStatuses
	p.GrievanceStatuses = models.GrievanceStatuses
	return p
}

// dashboardPage loads every list the dashboard shows
func (s *Site) dashboardPage(c echo.Context) (*Page, error) {
	p := formOptions(&Page{Title: "Dashboard", Admin: auth.GetAdminFromContext(c)})

	var err error
	if p.Announcements, err = s.content.ListAnnouncements(); err != nil {
		return p, err
	}
	if p.Gallery, err = s.content.ListGallery(); err != nil {
		return p, err
	}
	if p.Projects, err = s.content.ListProjects(); err != nil {
		return p, err
	}
	if p.Grievances, err = s.content.ListGrievances(""); err != nil {
		return p, err
	}
	site, err := s.content.Site()
	if err != nil {
		return p, err
	}
	for _, f := range siteFieldLabels {
		p.SiteFields = append(p.SiteFields, SiteField{Key: f.key, Label: f.label, Value: site[f.key], Long: f.long})
	}
	return p, nil
}

func (s *Site) dashboard(c echo.Context) error {
	p, err := s.dashboardPage(c)
	if err != nil {
		c.Logger().Error("dashboard: ", err)
		p.LoadError = true
		return s.render(c, http.StatusInternalServerError, "dashboard", p)
	}
	p.Notice = notices[c.QueryParam("saved")]
	return s.render(c, http.StatusOK, "dashboard", p)
}

// formFailure re-renders the dashboard with the reason a form was refused
func (s *Site) formFailure(c echo.Context, err error) error {
	status := http.StatusBadRequest
	var message string
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		message = verr.Message
	case errors.Is(err, database.ErrNotFound):
		status, message = http.StatusNotFound, "That item no longer exists."
	case errors.Is(err, storage.ErrObjectExists):
		status, message = http.StatusConflict, "A file with that name already exists."
	case errors.Is(err, storage.ErrNotConfigured):
		status, message = http.StatusInternalServerError, "File uploads are not available right now."
	default:
		c.Logger().Error("admin form: ", err)
		status, message = http.StatusInternalServerError, "Your changes could not be saved. Please try again."
	}

	p, lerr := s.dashboardPage(c)
	if lerr != nil {
		c.Logger().Error("dashboard: ", lerr)
		p.LoadError = true
	}
	p.FormError = message
	return s.render(c, status, "dashboard", p)
}

func saved(c echo.Context, what string) error {
	return c.Redirect(http.StatusSeeOther, "/admin?saved="+what)
}

func actorFrom(c echo.Context) content.Actor {
	a := content.Actor{IPAddress: auth.ClientIP(c)}
	if admin := auth.GetAdminFromContext(c); admin != nil {
		a.AdminID = admin.ID
		a.Username = admin.Username
	}
	return a
}

// filesFrom turns the files posted under field into upload requests for
// bucket. Empty file inputs are skipped; a non-multipart form has none.
func filesFrom(c echo.Context, field, bucket string) ([]content.UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	var uploads []content.UploadRequest
	for _, fh := range form.File[field] {
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, storage.MaxObjectSize+1))
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, content.UploadRequest{
			Bucket:      bucket,
			Path:        objectName(fh.Filename),
			FileData:    base64.StdEncoding.EncodeToString(data),
			ContentType: fh.Header.Get(echo.HeaderContentType),
		})
	}
	return uploads, nil
}

// objectName files uploads by month under a random name, keeping a plain
// extension from the original file name
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	for _, r := range ext[min(1, len(ext)):] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			ext = ""
			break
		}
	}
	return time.Now().UTC().Format("2006/01/") + uuid.NewString() + ext
}

func oneFile(c echo.Context, bucket string) (*content.UploadRequest, error) {
	uploads, err := filesFrom(c, "file", bucket)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

func announcementForm(c echo.Context) (content.AnnouncementInput, error) {
	in := content.AnnouncementInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Date:        c.FormValue("date"),
		Images:      strings.Split(c.FormValue("images"), "\n"),
	}
	var err error
	in.Uploads, err = filesFrom(c, "files", "announcements")
	return in, err
}

func (s *Site) createAnnouncement(c echo.Context) error {
	in, err := announcementForm(c)
	if err == nil {
		_, err = s.content.CreateAnnouncement(c.Request().Context(), actorFrom(c), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "announcement")
}

func (s *Site) editAnnouncement(c echo.Context) error {
	a, err := s.content.Announcement(c.Param("id"))
	if err != nil {
		return s.formFailure(c, err)
	}
	p := formOptions(&Page{Title: "Edit announcement", EditAnnouncement: a})
	return s.render(c, http.StatusOK, "edit", p)
}

func (s *Site) updateAnnouncement(c echo.Context) error {
	in, err := announcementForm(c)
	if err == nil {
		_, err = s.content.UpdateAnnouncement(c.Request().Context(), actorFrom(c), c.Param("id"), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "announcement")
}

func (s *Site) deleteAnnouncement(c echo.Context) error {
	if err := s.content.DeleteAnnouncement(actorFrom(c), c.Param("id")); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "deleted")
}

func galleryForm(c echo.Context) (content.GalleryInput, error) {
	in := content.GalleryInput{
		Title:    c.FormValue("title"),
		Image:    c.FormValue("image"),
		Date:     c.FormValue("date"),
		Category: c.FormValue("category"),
	}
	var err error
	in.Upload, err = oneFile(c, "gallery")
	return in, err
}

func (s *Site) createGalleryItem(c echo.Context) error {
	in, err := galleryForm(c)
	if err == nil {
		_, err = s.content.CreateGalleryItem(c.Request().Context(), actorFrom(c), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "gallery")
}

func (s *Site) editGalleryItem(c echo.Context) error {
	g, err := s.content.GalleryItem(c.Param("id"))
	if err != nil {
		return s.formFailure(c, err)
	}
	p := formOptions(&Page{Title: "Edit gallery item", EditGallery: g})
	return s.render(c, http.StatusOK, "edit", p)
}

func (s *Site) updateGalleryItem(c echo.Context) error {
	in, err := galleryForm(c)
	if err == nil {
		_, err = s.content.UpdateGalleryItem(c.Request().Context(), actorFrom(c), c.Param("id"), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "gallery")
}

func (s *Site) deleteGalleryItem(c echo.Context) error {
	if err := s.content.DeleteGalleryItem(actorFrom(c), c.Param("id")); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "deleted")
}

func projectForm(c echo.Context) (content.ProjectInput, error) {
	in := content.ProjectInput{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Status:        c.FormValue("status"),
		Image:         c.FormValue("image"),
		Period:        c.FormValue("period"),
		Budget:        c.FormValue("budget"),
		Beneficiaries: c.FormValue("beneficiaries"),
		Impact:        c.FormValue("impact"),
	}
	var err error
	in.Upload, err = oneFile(c, "projects")
	return in, err
}

func (s *Site) createProject(c echo.Context) error {
	in, err := projectForm(c)
	if err == nil {
		_, err = s.content.CreateProject(c.Request().Context(), actorFrom(c), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "project")
}

func (s *Site) editProject(c echo.Context) error {
	p, err := s.content.Project(c.Param("id"))
	if err != nil {
		return s.formFailure(c, err)
	}
	page := formOptions(&Page{Title: "Edit project", EditProject: p})
	return s.render(c, http.StatusOK, "edit", page)
}

func (s *Site) updateProject(c echo.Context) error {
	in, err := projectForm(c)
	if err == nil {
		_, err = s.content.UpdateProject(c.Request().Context(), actorFrom(c), c.Param("id"), in)
	}
	if err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "project")
}

func (s *Site) deleteProject(c echo.Context) error {
	if err := s.content.DeleteProject(actorFrom(c), c.Param("id")); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "deleted")
}

func (s *Site) setGrievanceStatus(c echo.Context) error {
	if _, err := s.content.UpdateGrievanceStatus(actorFrom(c), c.Param("id"), c.FormValue("status")); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "grievance")
}

func (s *Site) deleteGrievance(c echo.Context) error {
	if err := s.content.DeleteGrievance(actorFrom(c), c.Param("id")); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "deleted")
}

// updateSite saves the settings fields present in the form
func (s *Site) updateSite(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return s.formFailure(c, err)
	}
	values := map[string]string{}
	for _, key := range models.SiteKeys {
		if v, ok := form[key]; ok && len(v) > 0 {
			values[key] = v[0]
		}
	}
	if _, err := s.content.UpdateSite(actorFrom(c), values); err != nil {
		return s.formFailure(c, err)
	}
	return saved(c, "site")
}

// signOutEverywhere ends every session of the signed-in admin, this one included
func (s *Site) signOutEverywhere(c echo.Context) error {
	admin := auth.GetAdminFromContext(c)
	if err := s.auth.RevokeAllSessions(admin.ID); err != nil {
		return s.formFailure(c, err)
	}
	err := database.NewAuditRepo().Log(admin.ID, admin.Username, models.ActionSessionRevokeAll, admin.Username, nil, auth.ClientIP(c))
	if err != nil {
		c.Logger().Warn("audit log error: ", err)
	}
	auth.ClearSessionCookie(c, s.secureCookies)
	return c.Redirect(http.StatusSeeOther, "/admin/login")
}
