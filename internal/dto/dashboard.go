package dto

import (
	"time"

	"github.com/proavijit/projectpulse-api/internal/models"
)

// AdminDashboardStats buckets the portfolio by status.
type AdminDashboardStats struct {
	TotalProjects int `json:"totalProjects"`
	OnTrack       int `json:"onTrack"`
	AtRisk        int `json:"atRisk"`
	Critical      int `json:"critical"`
}

// OperationalGap flags a project with no check-in inside the trailing
// seven-day window. LastCheckIn is nil for projects that never had one.
type OperationalGap struct {
	Project     models.ProjectRef `json:"project"`
	LastCheckIn *time.Time        `json:"lastCheckIn,omitempty"`
}

// AdminDashboardResponse is the admin portfolio overview.
type AdminDashboardResponse struct {
	Stats            AdminDashboardStats `json:"stats"`
	Projects         []models.Project    `json:"projects"`
	NeedingAttention []models.Project    `json:"needingAttention"`
	TopRisks         []models.Risk       `json:"topRisks"`
	OperationalGaps  []OperationalGap    `json:"operationalGaps"`
}

// EmployeeDashboardStats summarises the viewer's workload.
type EmployeeDashboardStats struct {
	AssignedProjects int `json:"assignedProjects"`
	PendingCheckIns  int `json:"pendingCheckIns"`
	OpenRisks        int `json:"openRisks"`
}

// EmployeeDashboardResponse is the employee workspace view.
type EmployeeDashboardResponse struct {
	Stats            EmployeeDashboardStats `json:"stats"`
	AssignedProjects []models.Project       `json:"assignedProjects"`
	PendingCheckIns  []models.ProjectRef    `json:"pendingCheckIns"`
	MyOpenRisks      []models.Risk          `json:"myOpenRisks"`
}

// ClientDashboardStats summarises the client's portfolio.
type ClientDashboardStats struct {
	Projects        int `json:"projects"`
	PendingFeedback int `json:"pendingFeedback"`
}

// ClientDashboardResponse is the client portfolio view.
type ClientDashboardResponse struct {
	Stats            ClientDashboardStats `json:"stats"`
	AssignedProjects []models.Project     `json:"assignedProjects"`
	PendingFeedback  []models.ProjectRef  `json:"pendingFeedback"`
	LastFeedback     *models.Feedback     `json:"lastFeedback,omitempty"`
}
