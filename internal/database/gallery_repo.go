package database

import (
	"database/sql"
	"time"

	"skportal-backend/internal/models"
)

// GalleryRepo handles gallery database operations
type GalleryRepo struct {
	readOnly bool
}

func NewGalleryRepo() *GalleryRepo {
	return &GalleryRepo{}
}

func NewPublicGalleryRepo() *GalleryRepo {
	return &GalleryRepo{readOnly: true}
}

const galleryColumns = `id, title, image, date, category, created_at, updated_at`

func scanGalleryItem(row rowScanner) (*models.GalleryItem, error) {
	g := &models.GalleryItem{}
	err := row.Scan(&g.ID, &g.Title, &g.Image, &g.Date, &g.Category, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// List returns all gallery items, newest date first
func (r *GalleryRepo) List() ([]*models.GalleryItem, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT " + galleryColumns + " FROM gallery ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.GalleryItem{}
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

func (r *GalleryRepo) GetByID(id string) (*models.GalleryItem, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	g, err := scanGalleryItem(db.QueryRow("SELECT "+galleryColumns+" FROM gallery WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

func (r *GalleryRepo) Create(g *models.GalleryItem) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err = db.Exec(`
		INSERT INTO gallery (id, title, image, date, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Title, g.Image, g.Date, g.Category, g.CreatedAt, g.UpdatedAt)
	return err
}

func (r *GalleryRepo) Update(g *models.GalleryItem) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	g.UpdatedAt = time.Now().UTC()
	result, err := db.Exec(`
		UPDATE gallery SET title = ?, image = ?, date = ?, category = ?, updated_at = ?
		WHERE id = ?
	`, g.Title, g.Image, g.Date, g.Category, g.UpdatedAt, g.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *GalleryRepo) Delete(id string) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM gallery WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}
