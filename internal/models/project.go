package models

import "time"

// ProjectStatus tracks where a council project stands
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectOngoing   ProjectStatus = "Ongoing"
	ProjectCompleted ProjectStatus = "Completed"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectOngoing, ProjectCompleted}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project is a council program shown on the public projects page. Period,
// Budget, Beneficiaries and Impact are free text ("January 2024 - Present").
type Project struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Status        ProjectStatus `json:"status"`
	Image         string        `json:"image"`
	Period        string        `json:"period"`
	Budget        string        `json:"budget"`
	Beneficiaries string        `json:"beneficiaries"`
	Impact        string        `json:"impact"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
