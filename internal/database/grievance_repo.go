package database

import (
	"database/sql"

	"skportal-backend/internal/models"
)

// GrievanceRepo handles grievance database operations. Submissions come from
// anonymous visitors, so inserts go through the privileged connection on
// their behalf; listing is admin-only.
type GrievanceRepo struct{}

func NewGrievanceRepo() *GrievanceRepo {
	return &GrievanceRepo{}
}

const grievanceColumns = `id, full_name, address, contact, email, category, subject, details, preferred_contact, status, submitted_at`

func scanGrievance(row rowScanner) (*models.Grievance, error) {
	g := &models.Grievance{}
	var email sql.NullString
	err := row.Scan(
		&g.ID, &g.FullName, &g.Address, &g.Contact, &email, &g.Category,
		&g.Subject, &g.Details, &g.PreferredContact, &g.Status, &g.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Email = email.String
	return g, nil
}

func (r *GrievanceRepo) Create(g *models.Grievance) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO grievances (id, full_name, address, contact, email, category, subject, details, preferred_contact, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.FullName, g.Address, g.Contact, nullString(g.Email), g.Category,
		g.Subject, g.Details, g.PreferredContact, g.Status, g.SubmittedAt)
	return err
}

// List returns grievances, newest first, optionally filtered by status
func (r *GrievanceRepo) List(status models.GrievanceStatus) ([]*models.Grievance, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + grievanceColumns + " FROM grievances"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY submitted_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Grievance{}
	for rows.Next() {
		g, err := scanGrievance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *GrievanceRepo) GetByID(id string) (*models.Grievance, error) {
	db, err := conn(false)
	if err != nil {
		return nil, err
	}
	g, err := scanGrievance(db.QueryRow("SELECT "+grievanceColumns+" FROM grievances WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

func (r *GrievanceRepo) UpdateStatus(id string, status models.GrievanceStatus) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	result, err := db.Exec("UPDATE grievances SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *GrievanceRepo) Delete(id string) error {
	db, err := conn(false)
	if err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM grievances WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}
