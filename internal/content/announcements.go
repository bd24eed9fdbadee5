package content

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skportal-backend/internal/models"
)

// AnnouncementInput is the mutable part of an announcement. Uploads are stored
// first and their URLs appended to Images.
type AnnouncementInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Images      []string        `json:"images"`
	Uploads     []UploadRequest `json:"uploads,omitempty"`
}

func (in *AnnouncementInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)

	if in.Title == "" {
		return invalid("title", "title is required")
	}
	if in.Description == "" {
		return invalid("description", "description is required")
	}
	if in.Category == "" {
		return invalid("category", "category is required")
	}
	if !models.AnnouncementCategory(in.Category).Valid() {
		return invalid("category", "category must be one of %v", models.AnnouncementCategories)
	}
	if err := validDate("date", in.Date); err != nil {
		return err
	}

	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	in.Images = images
	return nil
}

func (s *Service) CreateAnnouncement(ctx context.Context, actor Actor, in AnnouncementInput) (*models.Announcement, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	uploads, err := decodeUploads(in.Uploads)
	if err != nil {
		return nil, err
	}
	urls, stored, err := s.putAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    models.AnnouncementCategory(in.Category),
		Date:        in.Date,
		Images:      append(in.Images, urls...),
	}
	if err := s.announcements.Create(a); err != nil {
		s.rollback(ctx, stored)
		return nil, err
	}

	s.record(actor, models.ActionAnnouncementCreate, a.ID, map[string]string{"title": a.Title})
	return a, nil
}

// ListAnnouncements returns every announcement for the admin panel
func (s *Service) ListAnnouncements() ([]*models.Announcement, error) {
	return s.announcements.List()
}

// Announcement returns one announcement for editing
func (s *Service) Announcement(id string) (*models.Announcement, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	return s.announcements.GetByID(id)
}

// PublicAnnouncements reads through the anonymous read-only connection
func (s *Service) PublicAnnouncements() ([]*models.Announcement, error) {
	return s.publicAnnouncements.List()
}

// LatestAnnouncements returns the newest limit announcements for the home page
func (s *Service) LatestAnnouncements(limit int) ([]*models.Announcement, error) {
	return s.publicAnnouncements.Latest(limit)
}

// UpdateAnnouncement replaces every mutable field. Last write wins.
func (s *Service) UpdateAnnouncement(ctx context.Context, actor Actor, id string, in AnnouncementInput) (*models.Announcement, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	uploads, err := decodeUploads(in.Uploads)
	if err != nil {
		return nil, err
	}
	urls, stored, err := s.putAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Category:    models.AnnouncementCategory(in.Category),
		Date:        in.Date,
		Images:      append(in.Images, urls...),
	}
	if err := s.announcements.Update(a); err != nil {
		s.rollback(ctx, stored)
		return nil, err
	}

	updated, err := s.announcements.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.record(actor, models.ActionAnnouncementUpdate, id, map[string]string{"title": updated.Title})
	return updated, nil
}

func (s *Service) DeleteAnnouncement(actor Actor, id string) error {
	id, err := requireID(id)
	if err != nil {
		return err
	}
	if err := s.announcements.Delete(id); err != nil {
		return err
	}
	s.record(actor, models.ActionAnnouncementDelete, id, nil)
	return nil
}
