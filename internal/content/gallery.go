package content

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skportal-backend/internal/models"
)

// GalleryInput is the mutable part of a gallery item. When Upload is set the
// stored object's URL replaces Image.
type GalleryInput struct {
	Title    string         `json:"title"`
	Image    string         `json:"image"`
	Date     string         `json:"date"`
	Category string         `json:"category"`
	Upload   *UploadRequest `json:"upload,omitempty"`
}

func (in *GalleryInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Image = strings.TrimSpace(in.Image)
	in.Date = strings.TrimSpace(in.Date)
	in.Category = strings.TrimSpace(in.Category)

	if in.Title == "" {
		return invalid("title", "title is required")
	}
	if in.Image == "" && in.Upload == nil {
		return invalid("image", "image is required")
	}
	if err := validDate("date", in.Date); err != nil {
		return err
	}
	if in.Category == "" {
		return invalid("category", "category is required")
	}
	if !models.GalleryCategory(in.Category).Valid() {
		return invalid("category", "category must be one of %v", models.GalleryCategories)
	}
	return nil
}

func (in *GalleryInput) uploads() []UploadRequest {
	if in.Upload == nil {
		return nil
	}
	return []UploadRequest{*in.Upload}
}

// saveGallery stores the optional upload and then runs write; the upload is removed
// again if write fails
func (s *Service) saveGallery(ctx context.Context, in GalleryInput, g *models.GalleryItem, write func(*models.GalleryItem) error) error {
	uploads, err := decodeUploads(in.uploads())
	if err != nil {
		return err
	}
	urls, stored, err := s.putAll(ctx, uploads)
	if err != nil {
		return err
	}
	if len(urls) > 0 {
		g.Image = urls[0]
	}
	if err := write(g); err != nil {
		s.rollback(ctx, stored)
		return err
	}
	return nil
}

func (s *Service) CreateGalleryItem(ctx context.Context, actor Actor, in GalleryInput) (*models.GalleryItem, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	g := &models.GalleryItem{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Image:    in.Image,
		Date:     in.Date,
		Category: models.GalleryCategory(in.Category),
	}
	if err := s.saveGallery(ctx, in, g, s.gallery.Create); err != nil {
		return nil, err
	}
	s.record(actor, models.ActionGalleryCreate, g.ID, map[string]string{"title": g.Title})
	return g, nil
}

func (s *Service) ListGallery() ([]*models.GalleryItem, error) {
	return s.gallery.List()
}

func (s *Service) GalleryItem(id string) (*models.GalleryItem, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	return s.gallery.GetByID(id)
}

// PublicGallery reads through the anonymous read-only connection
func (s *Service) PublicGallery() ([]*models.GalleryItem, error) {
	return s.publicGallery.List()
}

func (s *Service) UpdateGalleryItem(ctx context.Context, actor Actor, id string, in GalleryInput) (*models.GalleryItem, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	g := &models.GalleryItem{
		ID:       id,
		Title:    in.Title,
		Image:    in.Image,
		Date:     in.Date,
		Category: models.GalleryCategory(in.Category),
	}
	if err := s.saveGallery(ctx, in, g, s.gallery.Update); err != nil {
		return nil, err
	}

	updated, err := s.gallery.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.record(actor, models.ActionGalleryUpdate, id, map[string]string{"title": updated.Title})
	return updated, nil
}

func (s *Service) DeleteGalleryItem(actor Actor, id string) error {
	id, err := requireID(id)
	if err != nil {
		return err
	}
	if err := s.gallery.Delete(id); err != nil {
		return err
	}
	s.record(actor, models.ActionGalleryDelete, id, nil)
	return nil
}
