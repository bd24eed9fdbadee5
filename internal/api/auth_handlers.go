package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/database"
	"skportal-backend/internal/models"
)

// login handles POST /api/auth/login
func (h *Handler) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	ipAddress := auth.ClientIP(c)
	userAgent := c.Request().UserAgent()

	resp, err := h.auth.Login(req, ipAddress, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			return errorJSON(c, http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			return errorJSON(c, http.StatusUnauthorized, "Invalid username or password")
		case errors.Is(err, database.ErrNotConfigured):
			c.Logger().Error("login error: ", err)
			return errorJSON(c, http.StatusInternalServerError, "Server configuration error: database is not configured")
		default:
			c.Logger().Error("login error: ", err)
			return errorJSON(c, http.StatusInternalServerError, "authentication failed")
		}
	}

	h.loginLimiter.RecordSuccess(ipAddress)
	auth.SetSessionCookie(c, resp.Token, h.auth.SessionTTL(), h.secureCookies)
	h.audit.Log(resp.Admin.ID, resp.Admin.Username, models.ActionLogin, "", nil, ipAddress)

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"admin":      resp.Admin,
		"expires_at": resp.ExpiresAt,
	})
}

// logout handles POST /api/auth/logout. It succeeds whether or not a session
// was presented.
func (h *Handler) logout(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token != "" {
		admin, _, _ := h.auth.ValidateToken(token)
		if err := h.auth.Logout(token); err != nil {
			c.Logger().Error("logout error: ", err)
		} else if admin != nil {
			h.audit.Log(admin.ID, admin.Username, models.ActionLogout, "", nil, auth.ClientIP(c))
		}
	}

	auth.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

// me handles GET /api/auth/me
func (h *Handler) me(c echo.Context) error {
	admin := auth.GetAdminFromContext(c)
	session := auth.GetSessionFromContext(c)
	return c.JSON(http.StatusOK, map[string]any{
		"admin":      admin.Profile(),
		"expires_at": session.ExpiresAt,
	})
}

// createAdmin handles POST /api/auth/create-admin, the out-of-band bootstrap
func (h *Handler) createAdmin(c echo.Context) error {
	var req models.CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	secret := c.Request().Header.Get("X-Secret-Key")
	if secret == "" {
		secret = req.SecretKey
	}
	if err := h.auth.CheckBootstrap(secret); err != nil {
		switch {
		case errors.Is(err, auth.ErrBootstrapForbidden):
			return errorJSON(c, http.StatusUnauthorized, "Unauthorized. Valid secret key required.")
		case errors.Is(err, auth.ErrBootstrapClosed):
			return errorJSON(c, http.StatusForbidden, "An admin account already exists")
		default:
			return serviceError(c, err, "", "failed to create admin")
		}
	}

	admin, err := h.auth.CreateAdmin(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			return errorJSON(c, http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, auth.ErrWeakPassword):
			return errorJSON(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, database.ErrUsernameTaken):
			return errorJSON(c, http.StatusBadRequest, "Username already exists")
		default:
			return serviceError(c, err, "", "failed to create admin")
		}
	}

	h.audit.Log(admin.ID, admin.Username, models.ActionAdminCreate, admin.Username, nil, auth.ClientIP(c))
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Admin user created successfully",
		"admin":   admin.Profile(),
	})
}

// listSessions handles GET /api/admin/sessions
func (h *Handler) listSessions(c echo.Context) error {
	admin := auth.GetAdminFromContext(c)
	current := auth.GetSessionFromContext(c)

	sessions, err := h.auth.ListSessions(admin.ID)
	if err != nil {
		return serviceError(c, err, "", "failed to get sessions")
	}
	for _, s := range sessions {
		s.Current = current != nil && s.ID == current.ID
	}
	return c.JSON(http.StatusOK, sessions)
}

// revokeSession handles DELETE /api/admin/sessions/:id
func (h *Handler) revokeSession(c echo.Context) error {
	admin := auth.GetAdminFromContext(c)

	sessionID, err := parseID(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid session ID")
	}

	if err := h.auth.RevokeSession(admin.ID, sessionID); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return errorJSON(c, http.StatusNotFound, "session not found")
		}
		return serviceError(c, err, "", "failed to revoke session")
	}

	h.audit.LogFromContext(c, models.ActionSessionRevoke, c.Param("id"), nil)
	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}

// revokeAllSessions handles DELETE /api/admin/sessions, signing the admin out
// on every device including this one
func (h *Handler) revokeAllSessions(c echo.Context) error {
	admin := auth.GetAdminFromContext(c)
	if err := h.auth.RevokeAllSessions(admin.ID); err != nil {
		return serviceError(c, err, "", "failed to revoke sessions")
	}

	h.audit.LogFromContext(c, models.ActionSessionRevokeAll, admin.Username, nil)
	auth.ClearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, map[string]bool{
		"success": true,
	})
}
