package models

import "time"

// Feedback is a weekly client-submitted satisfaction rating for a project.
// One per (project, client, ISO week); enforced at the service write
// boundary.
type Feedback struct {
	ID                  string    `json:"_id"`
	ProjectID           string    `json:"project"`
	ClientID            string    `json:"client"`
	SatisfactionRating  int       `json:"satisfactionRating"`
	CommunicationRating int       `json:"communicationRating"`
	Comments            string    `json:"comments,omitempty"`
	FlagIssue           bool      `json:"flagIssue"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
}

// CreateFeedbackRequest is the client payload for submitting feedback.
type CreateFeedbackRequest struct {
	ProjectID           string `json:"project" validate:"required"`
	SatisfactionRating  int    `json:"satisfactionRating" validate:"required,min=1,max=5"`
	CommunicationRating int    `json:"communicationRating" validate:"required,min=1,max=5"`
	Comments            string `json:"comments"`
	FlagIssue           bool   `json:"flagIssue"`
}
