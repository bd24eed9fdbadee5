package content

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skportal-backend/internal/models"
)

// ProjectInput is the mutable part of a project. Status defaults to Planning;
// an Upload replaces Image.
type ProjectInput struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Status        string         `json:"status"`
	Image         string         `json:"image"`
	Period        string         `json:"period"`
	Budget        string         `json:"budget"`
	Beneficiaries string         `json:"beneficiaries"`
	Impact        string         `json:"impact"`
	Upload        *UploadRequest `json:"upload,omitempty"`
}

func (in *ProjectInput) normalize() error {
	for _, f := range []*string{&in.Title, &in.Description, &in.Status, &in.Image,
		&in.Period, &in.Budget, &in.Beneficiaries, &in.Impact} {
		*f = strings.TrimSpace(*f)
	}

	if in.Title == "" {
		return invalid("title", "title is required")
	}
	if in.Description == "" {
		return invalid("description", "description is required")
	}
	if in.Status == "" {
		in.Status = string(models.ProjectPlanning)
	}
	if !models.ProjectStatus(in.Status).Valid() {
		return invalid("status", "status must be one of %v", models.ProjectStatuses)
	}
	return nil
}

func (in *ProjectInput) project(id string) *models.Project {
	return &models.Project{
		ID:            id,
		Title:         in.Title,
		Description:   in.Description,
		Status:        models.ProjectStatus(in.Status),
		Image:         in.Image,
		Period:        in.Period,
		Budget:        in.Budget,
		Beneficiaries: in.Beneficiaries,
		Impact:        in.Impact,
	}
}

// saveProject mirrors saveGallery: upload first, write, remove the upload if
// the write fails
func (s *Service) saveProject(ctx context.Context, in ProjectInput, p *models.Project, write func(*models.Project) error) error {
	var reqs []UploadRequest
	if in.Upload != nil {
		reqs = []UploadRequest{*in.Upload}
	}
	uploads, err := decodeUploads(reqs)
	if err != nil {
		return err
	}
	urls, stored, err := s.putAll(ctx, uploads)
	if err != nil {
		return err
	}
	if len(urls) > 0 {
		p.Image = urls[0]
	}
	if err := write(p); err != nil {
		s.rollback(ctx, stored)
		return err
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (*models.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	p := in.project(uuid.NewString())
	if err := s.saveProject(ctx, in, p, s.projects.Create); err != nil {
		return nil, err
	}
	s.record(actor, models.ActionProjectCreate, p.ID, map[string]string{"title": p.Title})
	return p, nil
}

func (s *Service) ListProjects() ([]*models.Project, error) {
	return s.projects.List()
}

func (s *Service) Project(id string) (*models.Project, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	return s.projects.GetByID(id)
}

// PublicProjects reads through the anonymous read-only connection
func (s *Service) PublicProjects() ([]*models.Project, error) {
	return s.publicProjects.List()
}

func (s *Service) UpdateProject(ctx context.Context, actor Actor, id string, in ProjectInput) (*models.Project, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := s.saveProject(ctx, in, in.project(id), s.projects.Update); err != nil {
		return nil, err
	}

	updated, err := s.projects.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.record(actor, models.ActionProjectUpdate, id, map[string]string{"title": updated.Title, "status": string(updated.Status)})
	return updated, nil
}

func (s *Service) DeleteProject(actor Actor, id string) error {
	id, err := requireID(id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(id); err != nil {
		return err
	}
	s.record(actor, models.ActionProjectDelete, id, nil)
	return nil
}
