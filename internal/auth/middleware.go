package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/models"
)

// Context keys for storing admin data
const (
	ContextKeyAdmin   = "admin"
	ContextKeySession = "session"
)

// SessionCookieName carries the opaque session token
const SessionCookieName = "sk_session"

// RequireAuth guards JSON endpoints: requests without a live session get 401
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authenticate(c, authSvc) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			return next(c)
		}
	}
}

// SessionGate guards admin pages: every path under the group except loginPath
// redirects to loginPath unless a live session is presented.
func SessionGate(authSvc *Service, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if path == loginPath || strings.HasPrefix(path, loginPath+"/") {
				return next(c)
			}
			if !authenticate(c, authSvc) {
				return c.Redirect(http.StatusFound, loginPath)
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, authSvc *Service) bool {
	token := getTokenFromRequest(c)
	if token == "" {
		return false
	}

	admin, session, err := authSvc.ValidateToken(token)
	if err != nil {
		return false
	}

	c.Set(ContextKeyAdmin, admin)
	c.Set(ContextKeySession, session)
	return true
}

// getTokenFromRequest extracts the session token from the request
func getTokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// TokenFromRequest is the exported form used by the logout handler
func TokenFromRequest(c echo.Context) string {
	return getTokenFromRequest(c)
}

// SetSessionCookie writes the session cookie. Secure is set when the request
// came in over TLS or when forceSecure is true (production).
func SetSessionCookie(c echo.Context, token string, ttl time.Duration, forceSecure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   forceSecure || c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser
func ClearSessionCookie(c echo.Context, forceSecure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   forceSecure || c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetAdminFromContext retrieves the authenticated admin from the context
func GetAdminFromContext(c echo.Context) *models.AdminAccount {
	admin, ok := c.Get(ContextKeyAdmin).(*models.AdminAccount)
	if !ok {
		return nil
	}
	return admin
}

// GetSessionFromContext retrieves the current session from the context
func GetSessionFromContext(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
