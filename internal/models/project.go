package models

import "time"

// ProjectStatus buckets a project's delivery wellness. Status tracks the
// health score: >=80 on track, 60-79 at risk, below 60 critical.
type ProjectStatus string

const (
	StatusOnTrack  ProjectStatus = "On Track"
	StatusAtRisk   ProjectStatus = "At Risk"
	StatusCritical ProjectStatus = "Critical"
)

// Health score thresholds for the status mapping.
const (
	OnTrackThreshold = 80
	AtRiskThreshold  = 60
)

// StatusForScore maps a health score onto the status bucket.
func StatusForScore(score int) ProjectStatus {
	switch {
	case score >= OnTrackThreshold:
		return StatusOnTrack
	case score >= AtRiskThreshold:
		return StatusAtRisk
	default:
		return StatusCritical
	}
}

// Project is a tracked engagement owned by one client and staffed by a set
// of employees. HealthScore and Status are derived fields maintained by the
// health recomputation.
type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Client      UserRef       `json:"client"`
	Employees   []UserRef     `json:"employees"`
	Status      ProjectStatus `json:"status"`
	HealthScore int           `json:"healthScore"`
	CreatedAt   time.Time     `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time    `json:"updatedAt,omitempty"`
}

// Ref returns the embedded reference form used inside other records.
func (p Project) Ref() ProjectRef {
	return ProjectRef{ID: p.ID, Name: p.Name}
}

// HasEmployee reports whether the given user is assigned to the project.
func (p Project) HasEmployee(userID string) bool {
	for _, e := range p.Employees {
		if e.ID == userID {
			return true
		}
	}
	return false
}

// ProjectRef is a denormalised reference to a project embedded in other
// records.
type ProjectRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// CreateProjectRequest is the admin payload for creating a project.
type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate" validate:"required"`
	EndDate     string   `json:"endDate" validate:"required"`
	ClientID    string   `json:"clientId" validate:"required"`
	EmployeeIDs []string `json:"employeeIds"`
}

// UpdateProjectRequest is a partial update; nil fields are left untouched.
type UpdateProjectRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	StartDate   *string        `json:"startDate,omitempty"`
	EndDate     *string        `json:"endDate,omitempty"`
	ClientID    *string        `json:"clientId,omitempty"`
	EmployeeIDs *[]string      `json:"employeeIds,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof='On Track' 'At Risk' Critical"`
	HealthScore *int           `json:"healthScore,omitempty" validate:"omitempty,min=0,max=100"`
}
