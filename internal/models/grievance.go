package models

import "time"

type GrievanceCategory string

const (
	GrievanceComplaint  GrievanceCategory = "Complaint"
	GrievanceSuggestion GrievanceCategory = "Suggestion"
	GrievanceRequest    GrievanceCategory = "Request"
	GrievanceInquiry    GrievanceCategory = "Inquiry"
)

var GrievanceCategories = []GrievanceCategory{
	GrievanceComplaint, GrievanceSuggestion, GrievanceRequest, GrievanceInquiry,
}

func (c GrievanceCategory) Valid() bool {
	for _, v := range GrievanceCategories {
		if c == v {
			return true
		}
	}
	return false
}

type ContactMethod string

const (
	ContactPhone ContactMethod = "Phone"
	ContactEmail ContactMethod = "Email"
)

type GrievanceStatus string

const (
	GrievanceNew      GrievanceStatus = "new"
	GrievanceInReview GrievanceStatus = "in_review"
	GrievanceResolved GrievanceStatus = "resolved"
)

// GrievanceStatuses lists the review states in workflow order
var GrievanceStatuses = []GrievanceStatus{GrievanceNew, GrievanceInReview, GrievanceResolved}

func (s GrievanceStatus) Valid() bool {
	return s == GrievanceNew || s == GrievanceInReview || s == GrievanceResolved
}

// Grievance is a resident submission from the public grievance form
type Grievance struct {
	ID               string            `json:"id"`
	FullName         string            `json:"fullName"`
	Address          string            `json:"address"`
	Contact          string            `json:"contact"`
	Email            string            `json:"email,omitempty"`
	Category         GrievanceCategory `json:"category"`
	Subject          string            `json:"subject"`
	Details          string            `json:"details"`
	PreferredContact ContactMethod     `json:"preferredContact"`
	Status           GrievanceStatus   `json:"status"`
	SubmittedAt      time.Time         `json:"submittedAt"`
}
