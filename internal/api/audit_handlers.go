package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"skportal-backend/internal/auth"
	"skportal-backend/internal/database"
	"skportal-backend/internal/models"
)

// AuditLogger records auth events that happen outside the content service
type AuditLogger struct {
	repo *database.AuditRepo
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{repo: database.NewAuditRepo()}
}

// Log logs an audit event. Failures are swallowed so the request still succeeds.
func (l *AuditLogger) Log(adminID int64, username, action, target string, details any, ipAddress string) {
	_ = l.repo.Log(adminID, username, action, target, details, ipAddress)
}

// LogFromContext logs an audit event using admin info from context
func (l *AuditLogger) LogFromContext(c echo.Context, action, target string, details any) {
	admin := auth.GetAdminFromContext(c)
	var adminID int64
	var username string
	if admin != nil {
		adminID = admin.ID
		username = admin.Username
	}
	if err := l.repo.Log(adminID, username, action, target, details, auth.ClientIP(c)); err != nil {
		c.Logger().Warn("audit log error: ", err)
	}
}

// listAuditLogs handles GET /api/admin/audit
func (h *Handler) listAuditLogs(c echo.Context) error {
	filter := models.AuditFilter{
		Limit:  50,
		Offset: 0,
	}

	if limit := c.QueryParam("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 && l <= 500 {
			filter.Limit = l
		}
	}
	if offset := c.QueryParam("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if action := c.QueryParam("action"); action != "" {
		filter.Action = action
	}
	if actionPrefix := c.QueryParam("action_prefix"); actionPrefix != "" {
		filter.ActionPrefix = actionPrefix
	}

	logs, total, err := h.audit.repo.List(filter)
	if err != nil {
		return serviceError(c, err, "", "failed to list audit logs")
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}

	return c.JSON(http.StatusOK, models.AuditListResponse{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
