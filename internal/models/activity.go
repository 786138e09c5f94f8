package models

import "time"

// ActivityType enumerates the recorded audit events.
type ActivityType string

const (
	ActivityProjectCreated    ActivityType = "project_created"
	ActivityProjectUpdated    ActivityType = "project_updated"
	ActivityProjectDeleted    ActivityType = "project_deleted"
	ActivityCheckInSubmitted  ActivityType = "checkin_submitted"
	ActivityFeedbackSubmitted ActivityType = "feedback_submitted"
	ActivityRiskCreated       ActivityType = "risk_created"
	ActivityRiskResolved      ActivityType = "risk_resolved"
	ActivityRiskUpdated       ActivityType = "risk_updated"
	ActivityStatusChanged     ActivityType = "status_changed"
)

// Activity is an immutable, append-only audit log entry. Activities are
// created alongside state-changing domain writes and never updated or
// deleted.
type Activity struct {
	ID          string       `json:"_id"`
	ProjectID   string       `json:"project"`
	Type        ActivityType `json:"activityType"`
	User        ActivityUser `json:"user"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt,omitempty"`
}

// ActivityUser records the display name of the acting user at event time.
type ActivityUser struct {
	Name string `json:"name"`
}
