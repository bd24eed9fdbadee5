package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/content"
	"skportal-backend/internal/database"
	"skportal-backend/internal/events"
	"skportal-backend/internal/storage"
)

// Handler carries the services the JSON endpoints call into
type Handler struct {
	auth         *auth.Service
	content      *content.Service
	hub          *events.Hub
	loginLimiter *auth.RateLimiter
	audit        *AuditLogger

	// secureCookies forces the Secure flag on the session cookie
	secureCookies  bool
	// grievanceLimit caps anonymous submissions per client IP
	grievanceLimit echo.MiddlewareFunc
}

// Options configures NewHandler
type Options struct {
	Auth                *auth.Service
	Content             *content.Service
	Events              *events.Hub
	LoginLimiter        *auth.RateLimiter
	SecureCookies       bool
	GrievancesPerMinute int
	// GrievanceLimit, when set, is shared with the rendered grievance form so
	// both routes draw on one allowance. Otherwise one is built from
	// GrievancesPerMinute.
	GrievanceLimit      echo.MiddlewareFunc
}

func NewHandler(opts Options) *Handler {
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = auth.DefaultRateLimiter()
	}
	if opts.GrievanceLimit == nil {
		opts.GrievanceLimit = auth.SubmissionLimit(opts.GrievancesPerMinute)
	}
	return &Handler{
		auth:           opts.Auth,
		content:        opts.Content,
		hub:            opts.Events,
		loginLimiter:   opts.LoginLimiter,
		audit:          NewAuditLogger(),
		secureCookies:  opts.SecureCookies,
		grievanceLimit: opts.GrievanceLimit,
	}
}

// Health check
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{
		"error": message,
	})
}

// serviceError translates a content or store error into a response. failure is
// the generic message used for anything unexpected; the cause is only logged.
func serviceError(c echo.Context, err error, notFound, failure string) error {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, database.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrObjectExists):
		return errorJSON(c, http.StatusConflict, "A file already exists at that path.")
	case errors.Is(err, database.ErrNotConfigured), errors.Is(err, storage.ErrNotConfigured):
		c.Logger().Error(failure, ": ", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	default:
		c.Logger().Error(failure, ": ", err)
		return errorJSON(c, http.StatusInternalServerError, failure)
	}
}

// actor builds the audit identity for the authenticated admin
func actor(c echo.Context) content.Actor {
	a := content.Actor{IPAddress: auth.ClientIP(c)}
	if admin := auth.GetAdminFromContext(c); admin != nil {
		a.AdminID = admin.ID
		a.Username = admin.Username
	}
	return a
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
