package models

import "time"

// CheckIn is a weekly self-reported progress update from an assigned
// employee. At most one per (project, employee, ISO week); enforced at the
// service write boundary.
type CheckIn struct {
	ID                   string    `json:"_id"`
	ProjectID            string    `json:"project"`
	EmployeeID           string    `json:"employee"`
	ProgressSummary      string    `json:"progressSummary"`
	Blockers             string    `json:"blockers,omitempty"`
	ConfidenceLevel      int       `json:"confidenceLevel"`
	CompletionPercentage int       `json:"completionPercentage"`
	CreatedAt            time.Time `json:"createdAt,omitempty"`
}

// CreateCheckInRequest is the employee payload for submitting a check-in.
type CreateCheckInRequest struct {
	ProjectID            string `json:"project" validate:"required"`
	ProgressSummary      string `json:"progressSummary" validate:"required"`
	Blockers             string `json:"blockers"`
	ConfidenceLevel      int    `json:"confidenceLevel" validate:"required,min=1,max=5"`
	CompletionPercentage int    `json:"completionPercentage" validate:"min=0,max=100"`
}
