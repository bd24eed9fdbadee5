package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"skportal-backend/internal/models"
)

// AnnouncementRepo handles announcement database operations
type AnnouncementRepo struct {
	readOnly bool
}

// NewAnnouncementRepo creates a repository on the privileged connection
func NewAnnouncementRepo() *AnnouncementRepo {
	return &AnnouncementRepo{}
}

// NewPublicAnnouncementRepo creates a repository on the read-only connection
func NewPublicAnnouncementRepo() *AnnouncementRepo {
	return &AnnouncementRepo{readOnly: true}
}

const announcementColumns = `id, title, description, category, date, images, created_at, updated_at`

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	a := &models.Announcement{}
	var images string
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.Date, &images, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Images = []string{}
	if images != "" {
		if err := json.Unmarshal([]byte(images), &a.Images); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	return string(b), err
}

// List returns all announcements, newest date first
func (r *AnnouncementRepo) List() ([]*models.Announcement, error) {
	return r.list("")
}

// Latest returns at most limit announcements, newest date first
func (r *AnnouncementRepo) Latest(limit int) ([]*models.Announcement, error) {
	return r.list(" LIMIT ?", limit)
}

func (r *AnnouncementRepo) list(suffix string, args ...any) ([]*models.Announcement, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT "+announcementColumns+" FROM announcements ORDER BY date DESC, created_at DESC"+suffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID retrieves one announcement
func (r *AnnouncementRepo) GetByID(id string) (*models.Announcement, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	a, err := scanAnnouncement(db.QueryRow("SELECT "+announcementColumns+" FROM announcements WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

// Create inserts a; the caller assigns the ID
func (r *AnnouncementRepo) Create(a *models.Announcement) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	images, err := encodeImages(a.Images)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Images == nil {
		a.Images = []string{}
	}

	_, err = db.Exec(`
		INSERT INTO announcements (id, title, description, category, date, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Title, a.Description, a.Category, a.Date, images, a.CreatedAt, a.UpdatedAt)
	return err
}

// Update replaces every mutable field of the announcement with a's values
func (r *AnnouncementRepo) Update(a *models.Announcement) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	images, err := encodeImages(a.Images)
	if err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	result, err := db.Exec(`
		UPDATE announcements SET
			title = ?,
			description = ?,
			category = ?,
			date = ?,
			images = ?,
			updated_at = ?
		WHERE id = ?
	`, a.Title, a.Description, a.Category, a.Date, images, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete removes an announcement by ID
func (r *AnnouncementRepo) Delete(id string) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM announcements WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
