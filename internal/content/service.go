// Package content implements the admin CRUD operations behind the portal:
// announcements, gallery items, projects, grievances and site settings.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"skportal-backend/internal/database"
	"skportal-backend/internal/events"
	"skportal-backend/internal/models"
	"skportal-backend/internal/storage"
)

// ValidationError is returned before any store access when input is rejected
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Actor identifies who performed a mutation, for the audit trail
type Actor struct {
	AdminID   int64
	Username  string
	IPAddress string
}

// UploadRequest is a single file sent along with a create or update
type UploadRequest struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	FileData    string `json:"fileData"`
	ContentType string `json:"contentType"`
}

// Service performs validated content mutations. The storage backend and the
// event publisher are optional; without storage every upload fails with
// storage.ErrNotConfigured.
type Service struct {
	store     storage.Storage
	publisher events.Publisher
	log       *log.Logger

	announcements       *database.AnnouncementRepo
	publicAnnouncements *database.AnnouncementRepo
	gallery             *database.GalleryRepo
	publicGallery       *database.GalleryRepo
	projects            *database.ProjectRepo
	publicProjects      *database.ProjectRepo
	grievances          *database.GrievanceRepo
	settings            *database.SettingsRepo
	publicSettings      *database.SettingsRepo
	audit               *database.AuditRepo
}

func NewService(store storage.Storage, publisher events.Publisher, logger *log.Logger) *Service {
	return &Service{
		store:               store,
		publisher:           publisher,
		log:                 logger,
		announcements:       database.NewAnnouncementRepo(),
		publicAnnouncements: database.NewPublicAnnouncementRepo(),
		gallery:             database.NewGalleryRepo(),
		publicGallery:       database.NewPublicGalleryRepo(),
		projects:            database.NewProjectRepo(),
		publicProjects:      database.NewPublicProjectRepo(),
		grievances:          database.NewGrievanceRepo(),
		settings:            database.NewSettingsRepo(),
		publicSettings:      database.NewPublicSettingsRepo(),
		audit:               database.NewAuditRepo(),
	}
}

// record writes the audit entry and notifies live dashboards. Audit failures
// are logged but do not undo the mutation.
func (s *Service) record(actor Actor, action, target string, details any) {
	if err := s.audit.Log(actor.AdminID, actor.Username, action, target, details, actor.IPAddress); err != nil {
		s.log.Warnf("audit %s %s: %v", action, target, err)
	}
	s.publish(action, target, actor.Username)
}

func (s *Service) publish(eventType, id, actor string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{Type: eventType, ID: id, Actor: actor, Timestamp: time.Now().UTC()})
}

type decodedUpload struct {
	bucket      string
	path        string
	data        []byte
	contentType string
}

type storedObject struct {
	bucket string
	path   string
}

// decodeUploads validates every upload payload without touching storage
func decodeUploads(reqs []UploadRequest) ([]decodedUpload, error) {
	out := make([]decodedUpload, 0, len(reqs))
	for i, r := range reqs {
		field := fmt.Sprintf("uploads[%d]", i)
		if strings.TrimSpace(r.Bucket) == "" || strings.TrimSpace(r.Path) == "" {
			return nil, invalid(field, "bucket and path are required")
		}
		data, ct, err := storage.DecodePayload(r.FileData, r.ContentType)
		if err != nil {
			return nil, invalid(field, "%v", err)
		}
		out = append(out, decodedUpload{bucket: r.Bucket, path: r.Path, data: data, contentType: ct})
	}
	return out, nil
}

// putAll writes the uploads in order. On the first failure every object written
// by this call is removed again, so nothing outlives a failed request.
func (s *Service) putAll(ctx context.Context, uploads []decodedUpload) ([]string, []storedObject, error) {
	if len(uploads) == 0 {
		return nil, nil, nil
	}
	if s.store == nil {
		return nil, nil, storage.ErrNotConfigured
	}

	urls := make([]string, 0, len(uploads))
	stored := make([]storedObject, 0, len(uploads))
	for _, u := range uploads {
		url, err := s.store.Put(ctx, u.bucket, u.path, u.data, u.contentType)
		if err != nil {
			s.rollback(ctx, stored)
			if errors.Is(err, storage.ErrInvalidPath) || errors.Is(err, storage.ErrBucketNotAllowed) {
				return nil, nil, invalid("uploads", "%v", err)
			}
			return nil, nil, err
		}
		urls = append(urls, url)
		stored = append(stored, storedObject{bucket: u.bucket, path: u.path})
	}
	return urls, stored, nil
}

func (s *Service) rollback(ctx context.Context, stored []storedObject) {
	for _, o := range stored {
		if err := s.store.Delete(context.WithoutCancel(ctx), o.bucket, o.path); err != nil {
			s.log.Errorf("rollback: failed to delete %s/%s: %v", o.bucket, o.path, err)
		}
	}
}

// Upload stores a single file and returns its public URL
func (s *Service) Upload(ctx context.Context, actor Actor, req UploadRequest) (string, error) {
	decoded, err := decodeUploads([]UploadRequest{req})
	if err != nil {
		return "", err
	}
	urls, _, err := s.putAll(ctx, decoded)
	if err != nil {
		return "", err
	}
	s.record(actor, models.ActionUpload, req.Bucket+"/"+req.Path, map[string]any{
		"content_type": decoded[0].contentType,
		"size":         len(decoded[0].data),
	})
	return urls[0], nil
}

func validDate(field, value string) error {
	if value == "" {
		return invalid(field, "%s is required", field)
	}
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return invalid(field, "%s must be a date in YYYY-MM-DD form", field)
	}
	return nil
}

func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalid("id", "id is required")
	}
	return id, nil
}
