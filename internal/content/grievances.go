package content

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"skportal-backend/internal/models"
)

// GrievanceInput is a resident's submission from the public form
type GrievanceInput struct {
	FullName         string `json:"fullName" form:"fullName"`
	Address          string `json:"address" form:"address"`
	Contact          string `json:"contact" form:"contact"`
	Email            string `json:"email" form:"email"`
	Category         string `json:"category" form:"category"`
	Subject          string `json:"subject" form:"subject"`
	Details          string `json:"details" form:"details"`
	PreferredContact string `json:"preferredContact" form:"preferredContact"`
}

func (in *GrievanceInput) normalize() error {
	for _, f := range []*string{&in.FullName, &in.Address, &in.Contact, &in.Email, &in.Category, &in.Subject, &in.Details, &in.PreferredContact} {
		*f = strings.TrimSpace(*f)
	}

	required := []struct{ field, value string }{
		{"fullName", in.FullName},
		{"address", in.Address},
		{"contact", in.Contact},
		{"subject", in.Subject},
		{"details", in.Details},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, "%s is required", r.field)
		}
	}

	if in.Category == "" {
		in.Category = string(models.GrievanceInquiry)
	}
	if !models.GrievanceCategory(in.Category).Valid() {
		return invalid("category", "category must be one of %v", models.GrievanceCategories)
	}

	switch models.ContactMethod(in.PreferredContact) {
	case "":
		in.PreferredContact = string(models.ContactPhone)
	case models.ContactPhone:
	case models.ContactEmail:
		if in.Email == "" {
			return invalid("email", "email is required when the preferred contact is Email")
		}
	default:
		return invalid("preferredContact", "preferredContact must be Phone or Email")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email", "email is not valid")
	}
	return nil
}

// SubmitGrievance stores a public submission. It is not audited since the
// submitter is anonymous, but dashboards are notified.
func (s *Service) SubmitGrievance(in GrievanceInput) (*models.Grievance, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	g := &models.Grievance{
		ID:               uuid.NewString(),
		FullName:         in.FullName,
		Address:          in.Address,
		Contact:          in.Contact,
		Email:            in.Email,
		Category:         models.GrievanceCategory(in.Category),
		Subject:          in.Subject,
		Details:          in.Details,
		PreferredContact: models.ContactMethod(in.PreferredContact),
		Status:           models.GrievanceNew,
		SubmittedAt:      time.Now().UTC(),
	}
	if err := s.grievances.Create(g); err != nil {
		return nil, err
	}
	s.publish("grievance.created", g.ID, "")
	return g, nil
}

// ListGrievances returns submissions, optionally filtered by status
func (s *Service) ListGrievances(status string) ([]*models.Grievance, error) {
	st := models.GrievanceStatus(strings.TrimSpace(status))
	if st != "" && !st.Valid() {
		return nil, invalid("status", "unknown status %q", status)
	}
	return s.grievances.List(st)
}

func (s *Service) UpdateGrievanceStatus(actor Actor, id, status string) (*models.Grievance, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	st := models.GrievanceStatus(strings.TrimSpace(status))
	if !st.Valid() {
		return nil, invalid("status", "status must be new, in_review or resolved")
	}
	if err := s.grievances.UpdateStatus(id, st); err != nil {
		return nil, err
	}
	s.record(actor, models.ActionGrievanceStatus, id, map[string]string{"status": string(st)})
	return s.grievances.GetByID(id)
}

func (s *Service) DeleteGrievance(actor Actor, id string) error {
	id, err := requireID(id)
	if err != nil {
		return err
	}
	if err := s.grievances.Delete(id); err != nil {
		return err
	}
	s.record(actor, models.ActionGrievanceDelete, id, nil)
	return nil
}
