// Package web renders the public pages and the admin shell on the server.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/content"
	"skportal-backend/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "announcements", "gallery", "projects", "grievance", "paprint", "login", "dashboard", "edit"}

// Renderer implements echo.Renderer over the embedded templates. Every page
// is parsed together with the shared layout and partials.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"formatDate": formatDate,
		"lines":      func(s []string) string { return strings.Join(s, "\n") },
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// formatDate turns a stored YYYY-MM-DD date into "June 1, 2024"
func formatDate(s string) string {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}

// Page is the data handed to every template
type Page struct {
	Title  string
	Active string
	Site   map[string]string

	// LoadError is set when content could not be fetched. Templates show a
	// distinct error block instead of the empty state.
	LoadError bool

	Announcements []*models.Announcement
	Gallery       []*models.GalleryItem
	Projects      []*models.Project
	Grievances    []*models.Grievance

	Form                content.GrievanceInput
	GrievanceCategories []models.GrievanceCategory
	FormError           string
	Success             string

	Admin    *models.AdminAccount
	Username string

	// Admin forms
	Notice                 string
	AnnouncementCategories []models.AnnouncementCategory
	GalleryCategories      []models.GalleryCategory
	ProjectStatuses        []models.ProjectStatus
	GrievanceStatuses      []models.GrievanceStatus
	SiteFields             []SiteField
	EditAnnouncement       *models.Announcement
	EditGallery            *models.GalleryItem
	EditProject            *models.Project
}

// Site serves the rendered pages
type Site struct {
	content        *content.Service
	auth           *auth.Service
	loginLimiter   *auth.RateLimiter
	grievanceLimit echo.MiddlewareFunc
	secureCookies  bool
}

// Options configures NewSite
type Options struct {
	Content       *content.Service
	Auth          *auth.Service
	LoginLimiter  *auth.RateLimiter
	SecureCookies bool
	// GrievanceLimit guards the public form. Pass the instance the JSON
	// endpoint uses so both share one allowance.
	GrievanceLimit echo.MiddlewareFunc
}

func NewSite(opts Options) *Site {
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = auth.DefaultRateLimiter()
	}
	if opts.GrievanceLimit == nil {
		opts.GrievanceLimit = auth.SubmissionLimit(auth.DefaultSubmissionsPerMinute)
	}
	return &Site{
		content:        opts.Content,
		auth:           opts.Auth,
		loginLimiter:   opts.LoginLimiter,
		grievanceLimit: opts.GrievanceLimit,
		secureCookies:  opts.SecureCookies,
	}
}

// Register mounts the public and admin pages. mediaRoot, when non-empty, is
// the filesystem storage root served under /media.
func (s *Site) Register(e *echo.Echo, mediaRoot string) {
	e.GET("/", s.home)
	e.GET("/announcements", s.announcements)
	e.GET("/gallery", s.gallery)
	e.GET("/projects", s.projects)
	e.GET("/grievance", s.grievanceForm)
	e.POST("/grievance", s.grievanceSubmit, s.grievanceLimit)
	e.GET("/sk-paprint", s.paprint)

	admin := e.Group("/admin", auth.SessionGate(s.auth, "/admin/login"))
	admin.GET("", s.dashboard)
	admin.GET("/", s.dashboard)
	admin.GET("/login", s.loginForm)
	admin.POST("/login", s.loginSubmit, s.loginLimiter.Middleware())
	admin.POST("/logout", s.logout)
	s.registerAdmin(admin)

	if mediaRoot != "" {
		e.Static("/media", mediaRoot)
	}
}

// site loads the footer/contact settings. A failure here only blanks the
// footer; the page's own content decides the status code.
func (s *Site) site(c echo.Context) map[string]string {
	settings, err := s.content.Site()
	if err != nil {
		c.Logger().Error("load site settings: ", err)
		return nil
	}
	return settings
}

func (s *Site) render(c echo.Context, status int, name string, p *Page) error {
	if p.Site == nil {
		p.Site = s.site(c)
	}
	return c.Render(status, name, p)
}

func (s *Site) home(c echo.Context) error {
	p := &Page{Active: "home"}
	status := http.StatusOK
	settings, err := s.content.Site()
	if err != nil {
		c.Logger().Error("home: load site settings: ", err)
		p.LoadError = true
		status = http.StatusInternalServerError
	}
	p.Site = settings

	list, err := s.content.LatestAnnouncements(3)
	if err != nil {
		c.Logger().Error("home: load announcements: ", err)
		p.LoadError = true
		status = http.StatusInternalServerError
	}
	p.Announcements = list
	return s.render(c, status, "home", p)
}

func (s *Site) announcements(c echo.Context) error {
	p := &Page{Title: "Announcements", Active: "announcements"}
	list, err := s.content.PublicAnnouncements()
	if err != nil {
		c.Logger().Error("load announcements: ", err)
		p.LoadError = true
		return s.render(c, http.StatusInternalServerError, "announcements", p)
	}
	p.Announcements = list
	return s.render(c, http.StatusOK, "announcements", p)
}

func (s *Site) gallery(c echo.Context) error {
	p := &Page{Title: "Gallery", Active: "gallery"}
	list, err := s.content.PublicGallery()
	if err != nil {
		c.Logger().Error("load gallery: ", err)
		p.LoadError = true
		return s.render(c, http.StatusInternalServerError, "gallery", p)
	}
	p.Gallery = list
	return s.render(c, http.StatusOK, "gallery", p)
}

func (s *Site) projects(c echo.Context) error {
	p := &Page{Title: "Projects", Active: "projects"}
	list, err := s.content.PublicProjects()
	if err != nil {
		c.Logger().Error("load projects: ", err)
		p.LoadError = true
		return s.render(c, http.StatusInternalServerError, "projects", p)
	}
	p.Projects = list
	return s.render(c, http.StatusOK, "projects", p)
}

func (s *Site) paprint(c echo.Context) error {
	return s.render(c, http.StatusOK, "paprint", &Page{Title: "SK Pa-print", Active: "paprint"})
}

func grievancePage() *Page {
	return &Page{
		Title:               "Grievance",
		Active:              "grievance",
		GrievanceCategories: models.GrievanceCategories,
	}
}

func (s *Site) grievanceForm(c echo.Context) error {
	return s.render(c, http.StatusOK, "grievance", grievancePage())
}

func (s *Site) grievanceSubmit(c echo.Context) error {
	p := grievancePage()
	if err := c.Bind(&p.Form); err != nil {
		p.FormError = "The form could not be read. Please try again."
		return s.render(c, http.StatusBadRequest, "grievance", p)
	}

	g, err := s.content.SubmitGrievance(p.Form)
	if err != nil {
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			p.FormError = verr.Message
			return s.render(c, http.StatusBadRequest, "grievance", p)
		}
		c.Logger().Error("submit grievance: ", err)
		p.FormError = "Your submission could not be saved. Please try again later."
		return s.render(c, http.StatusInternalServerError, "grievance", p)
	}

	p.Form = content.GrievanceInput{}
	p.Success = g.ID
	return s.render(c, http.StatusCreated, "grievance", p)
}

func (s *Site) loginForm(c echo.Context) error {
	if token := auth.TokenFromRequest(c); token != "" {
		if _, _, err := s.auth.ValidateToken(token); err == nil {
			return c.Redirect(http.StatusFound, "/admin")
		}
	}
	return s.render(c, http.StatusOK, "login", &Page{Title: "Admin Login"})
}

func (s *Site) loginSubmit(c echo.Context) error {
	req := models.LoginRequest{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	p := &Page{Title: "Admin Login", Username: req.Username}

	res, err := s.auth.Login(req, auth.ClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			p.FormError = "Username and password are required"
			return s.render(c, http.StatusBadRequest, "login", p)
		case errors.Is(err, auth.ErrInvalidCredentials):
			p.FormError = "Invalid username or password"
			return s.render(c, http.StatusUnauthorized, "login", p)
		default:
			c.Logger().Error("login error: ", err)
			p.FormError = "Sign in is unavailable right now"
			return s.render(c, http.StatusInternalServerError, "login", p)
		}
	}

	s.loginLimiter.RecordSuccess(auth.ClientIP(c))
	auth.SetSessionCookie(c, res.Token, s.auth.SessionTTL(), s.secureCookies)
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (s *Site) logout(c echo.Context) error {
	if err := s.auth.Logout(auth.TokenFromRequest(c)); err != nil {
		c.Logger().Error("logout error: ", err)
	}
	auth.ClearSessionCookie(c, s.secureCookies)
	return c.Redirect(http.StatusSeeOther, "/admin/login")
}
