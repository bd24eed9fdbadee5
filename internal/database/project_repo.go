package database

import (
	"database/sql"
	"time"

	"skportal-backend/internal/models"
)

// ProjectRepo handles project database operations
type ProjectRepo struct {
	readOnly bool
}

func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{}
}

func NewPublicProjectRepo() *ProjectRepo {
	return &ProjectRepo{readOnly: true}
}

const projectColumns = `id, title, description, status, image, period, budget, beneficiaries, impact, created_at, updated_at`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Image, &p.Period,
		&p.Budget, &p.Beneficiaries, &p.Impact, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects, most recently added first
func (r *ProjectRepo) List() ([]*models.Project, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT " + projectColumns + " FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepo) GetByID(id string) (*models.Project, error) {
	db, err := conn(r.readOnly)
	if err != nil {
		return nil, err
	}

	p, err := scanProject(db.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *ProjectRepo) Create(p *models.Project) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err = db.Exec(`
		INSERT INTO projects (id, title, description, status, image, period, budget, beneficiaries, impact, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Description, p.Status, p.Image, p.Period, p.Budget, p.Beneficiaries, p.Impact, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProjectRepo) Update(p *models.Project) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}

	p.UpdatedAt = time.Now().UTC()
	result, err := db.Exec(`
		UPDATE projects SET title = ?, description = ?, status = ?, image = ?, period = ?,
			budget = ?, beneficiaries = ?, impact = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Description, p.Status, p.Image, p.Period, p.Budget, p.Beneficiaries, p.Impact, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *ProjectRepo) Delete(id string) error {
	db, err := conn(r.readOnly)
	if err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}
