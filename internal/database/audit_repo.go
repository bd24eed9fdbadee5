package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"skportal-backend/internal/models"
)

// AuditRepo handles audit log database operations
type AuditRepo struct{}

// NewAuditRepo creates a new audit repository
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(log *models.AuditLog) error {
	db, err := conn(false)
	if err != nil {
		return err
	}

	var adminID sql.NullInt64
	if log.AdminID != 0 {
		adminID = sql.NullInt64{Int64: log.AdminID, Valid: true}
	}

	result, err := db.Exec(`
		INSERT INTO audit_logs (timestamp, admin_id, username, action, target, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.Timestamp, adminID, log.Username, log.Action, log.Target, log.Details, log.IPAddress)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

// Log is a convenience method to create an audit log entry with current timestamp
func (r *AuditRepo) Log(adminID int64, username, action, target string, details any, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	return r.Create(&models.AuditLog{
		Timestamp: time.Now().UTC(),
		AdminID:   adminID,
		Username:  username,
		Action:    action,
		Target:    target,
		Details:   detailsJSON,
		IPAddress: ipAddress,
	})
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditRepo) List(filter models.AuditFilter) ([]*models.AuditLog, int, error) {
	db, err := conn(false)
	if err != nil {
		return nil, 0, err
	}

	baseQuery := "FROM audit_logs WHERE 1=1"
	args := []any{}

	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.ActionPrefix != "" {
		baseQuery += " AND action LIKE ?"
		args = append(args, filter.ActionPrefix+"%")
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, timestamp, admin_id, username, action, target, details, ip_address " + baseQuery
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := []*models.AuditLog{}
	for rows.Next() {
		log := &models.AuditLog{}
		var adminID sql.NullInt64
		var username, target, details, ipAddress sql.NullString

		err := rows.Scan(
			&log.ID, &log.Timestamp, &adminID, &username,
			&log.Action, &target, &details, &ipAddress,
		)
		if err != nil {
			return nil, 0, err
		}

		log.AdminID = adminID.Int64
		log.Username = username.String
		log.Target = target.String
		log.Details = details.String
		log.IPAddress = ipAddress.String

		logs = append(logs, log)
	}

	return logs, total, rows.Err()
}
