package models

import "time"

// RiskSeverity grades a delivery hazard.
type RiskSeverity string

const (
	SeverityLow    RiskSeverity = "Low"
	SeverityMedium RiskSeverity = "Medium"
	SeverityHigh   RiskSeverity = "High"
)

// RiskStatus is the lifecycle state of a risk.
type RiskStatus string

const (
	RiskOpen     RiskStatus = "Open"
	RiskResolved RiskStatus = "Resolved"
)

// Risk is a flagged potential delivery hazard with a mitigation plan.
type Risk struct {
	ID             string       `json:"_id"`
	Project        ProjectRef   `json:"project"`
	CreatedBy      UserRef      `json:"createdBy"`
	Title          string       `json:"title"`
	Severity       RiskSeverity `json:"severity"`
	MitigationPlan string       `json:"mitigationPlan"`
	Status         RiskStatus   `json:"status"`
	CreatedAt      time.Time    `json:"createdAt,omitempty"`
}

// CreateRiskRequest is the payload for reporting a risk.
type CreateRiskRequest struct {
	ProjectID      string       `json:"project" validate:"required"`
	Title          string       `json:"title" validate:"required"`
	Severity       RiskSeverity `json:"severity" validate:"required,oneof=Low Medium High"`
	MitigationPlan string       `json:"mitigationPlan"`
}

// UpdateRiskRequest is a partial update; nil fields are left untouched.
type UpdateRiskRequest struct {
	Title          *string       `json:"title,omitempty"`
	Severity       *RiskSeverity `json:"severity,omitempty" validate:"omitempty,oneof=Low Medium High"`
	MitigationPlan *string       `json:"mitigationPlan,omitempty"`
	Status         *RiskStatus   `json:"status,omitempty" validate:"omitempty,oneof=Open Resolved"`
}
