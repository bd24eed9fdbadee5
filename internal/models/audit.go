package models

import "time"

// AuditLog represents a record of admin actions
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AdminID   int64     `json:"admin_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Details   string    `json:"details,omitempty"` // JSON string
	IPAddress string    `json:"ip_address,omitempty"`
}

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	Action       string
	ActionPrefix string
	Limit        int
	Offset       int
}

// AuditListResponse is the paginated audit listing
type AuditListResponse struct {
	Logs   []*AuditLog `json:"logs"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// Audit actions
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionAdminCreate        = "admin.create"
	ActionSessionRevoke      = "session.revoke"
	ActionSessionRevokeAll   = "session.revoke_all"
	ActionAdminDisable       = "admin.disable"
	ActionAdminEnable        = "admin.enable"
	ActionAnnouncementCreate = "announcement.create"
	ActionAnnouncementUpdate = "announcement.update"
	ActionAnnouncementDelete = "announcement.delete"
	ActionGalleryCreate      = "gallery.create"
	ActionGalleryUpdate      = "gallery.update"
	ActionGalleryDelete      = "gallery.delete"
	ActionProjectCreate      = "project.create"
	ActionProjectUpdate      = "project.update"
	ActionProjectDelete      = "project.delete"
	ActionGrievanceStatus    = "grievance.status"
	ActionGrievanceDelete    = "grievance.delete"
	ActionUpload             = "upload"
	ActionSiteUpdate         = "site.update"
)
