package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type fakeDashProjects struct {
	projects []models.Project
}

func (f *fakeDashProjects) All(context.Context) ([]models.Project, error) {
	return f.projects, nil
}

func (f *fakeDashProjects) ByEmployee(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.HasEmployee(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDashProjects) ByClient(_ context.Context, clientID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.Client.ID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeDashCheckIns struct {
	checkins []models.CheckIn
}

func (f *fakeDashCheckIns) All(context.Context) ([]models.CheckIn, error) {
	return f.checkins, nil
}

func (f *fakeDashCheckIns) ByEmployee(_ context.Context, employeeID string) ([]models.CheckIn, error) {
	var out []models.CheckIn
	for _, c := range f.checkins {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeDashFeedback struct {
	feedback []models.Feedback
}

func (f *fakeDashFeedback) ByClient(_ context.Context, clientID string) ([]models.Feedback, error) {
	var out []models.Feedback
	for _, fb := range f.feedback {
		if fb.ClientID == clientID {
			out = append(out, fb)
		}
	}
	return out, nil
}

type fakeDashRisks struct {
	risks []models.Risk
}

func (f *fakeDashRisks) All(context.Context) ([]models.Risk, error) {
	return f.risks, nil
}

var dashNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func newDashboardFixture() (*DashboardService, *fakeDashProjects, *fakeDashCheckIns, *fakeDashFeedback, *fakeDashRisks) {
	projects := &fakeDashProjects{projects: []models.Project{
		{
			ID: "p1", Name: "E-Commerce Platform Redesign",
			Status: models.StatusOnTrack, HealthScore: 85,
			Employees: []models.UserRef{{ID: "u2"}, {ID: "u3"}},
			Client:    models.UserRef{ID: "u4"},
		},
		{
			ID: "p2", Name: "Mobile App Development",
			Status: models.StatusAtRisk, HealthScore: 68,
			Employees: []models.UserRef{{ID: "u2"}},
			Client:    models.UserRef{ID: "u4"},
		},
	}}
	checkins := &fakeDashCheckIns{}
	feedback := &fakeDashFeedback{}
	risks := &fakeDashRisks{risks: []models.Risk{
		{
			ID:        "r1",
			Project:   models.ProjectRef{ID: "p2", Name: "Mobile App Development"},
			CreatedBy: models.UserRef{ID: "u2", Name: "John Developer"},
			Title:     "iOS Certificate Expiration",
			Severity:  models.SeverityHigh,
			Status:    models.RiskOpen,
		},
	}}
	svc := NewDashboardService(projects, checkins, feedback, risks, nil, nil, DashboardOptions{
		Now: func() time.Time { return dashNow },
	})
	return svc, projects, checkins, feedback, risks
}

func TestAdminDashboardStats(t *testing.T) {
	svc, _, _, _, _ := newDashboardFixture()

	resp, cacheHit, err := svc.Admin(context.Background(), adminClaims())
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 2, resp.Stats.TotalProjects)
	assert.Equal(t, 1, resp.Stats.OnTrack)
	assert.Equal(t, 1, resp.Stats.AtRisk)
	assert.Equal(t, 0, resp.Stats.Critical)

	// Only the at-risk project needs attention.
	require.Len(t, resp.NeedingAttention, 1)
	assert.Equal(t, "p2", resp.NeedingAttention[0].ID)

	require.Len(t, resp.TopRisks, 1)
	assert.Equal(t, "r1", resp.TopRisks[0].ID)
}

func TestAdminDashboardTopRisksIncludeMedium(t *testing.T) {
	svc, _, _, _, risks := newDashboardFixture()

	risks.risks = append(risks.risks,
		models.Risk{
			ID: "r2", Project: models.ProjectRef{ID: "p1"},
			Severity: models.SeverityMedium, Status: models.RiskOpen,
			CreatedAt: dashNow.Add(-time.Hour),
		},
		models.Risk{
			ID: "r3", Project: models.ProjectRef{ID: "p1"},
			Severity: models.SeverityLow, Status: models.RiskOpen,
		},
		models.Risk{
			ID: "r4", Project: models.ProjectRef{ID: "p2"},
			Severity: models.SeverityHigh, Status: models.RiskResolved,
		},
	)

	resp, _, err := svc.Admin(context.Background(), adminClaims())
	require.NoError(t, err)

	// Open High and Medium risks only, insertion order preserved.
	require.Len(t, resp.TopRisks, 2)
	assert.Equal(t, "r1", resp.TopRisks[0].ID)
	assert.Equal(t, "r2", resp.TopRisks[1].ID)
}

func TestAdminDashboardNeedingAttentionOrder(t *testing.T) {
	svc, projects, _, _, _ := newDashboardFixture()

	projects.projects = append(projects.projects,
		models.Project{ID: "p3", Name: "Data Warehouse", Status: models.StatusCritical, HealthScore: 45, Client: models.UserRef{ID: "u4"}},
		models.Project{ID: "p4", Name: "Billing Revamp", Status: models.StatusAtRisk, HealthScore: 62, Client: models.UserRef{ID: "u4"}},
	)

	resp, _, err := svc.Admin(context.Background(), adminClaims())
	require.NoError(t, err)

	// Critical projects first, then worse health ahead of better.
	require.Len(t, resp.NeedingAttention, 3)
	assert.Equal(t, "p3", resp.NeedingAttention[0].ID)
	assert.Equal(t, "p4", resp.NeedingAttention[1].ID)
	assert.Equal(t, "p2", resp.NeedingAttention[2].ID)
}

func TestAdminDashboardOperationalGaps(t *testing.T) {
	svc, _, checkins, _, _ := newDashboardFixture()

	// p1 reported yesterday; p2 has one stale check-in.
	stale := dashNow.Add(-10 * 24 * time.Hour)
	checkins.checkins = []models.CheckIn{
		{ID: "c1", ProjectID: "p1", EmployeeID: "u2", CreatedAt: dashNow.Add(-24 * time.Hour)},
		{ID: "c2", ProjectID: "p2", EmployeeID: "u2", CreatedAt: stale},
	}

	resp, _, err := svc.Admin(context.Background(), adminClaims())
	require.NoError(t, err)

	require.Len(t, resp.OperationalGaps, 1)
	assert.Equal(t, "p2", resp.OperationalGaps[0].Project.ID)
	require.NotNil(t, resp.OperationalGaps[0].LastCheckIn)
	assert.Equal(t, stale, *resp.OperationalGaps[0].LastCheckIn)
}

func TestAdminDashboardGapForProjectWithNoCheckIns(t *testing.T) {
	svc, _, _, _, _ := newDashboardFixture()

	resp, _, err := svc.Admin(context.Background(), adminClaims())
	require.NoError(t, err)

	require.Len(t, resp.OperationalGaps, 2)
	for _, gap := range resp.OperationalGaps {
		assert.Nil(t, gap.LastCheckIn)
	}
}

func TestAdminDashboardForbiddenForOthers(t *testing.T) {
	svc, _, _, _, _ := newDashboardFixture()

	_, _, err := svc.Admin(context.Background(), employeeClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEmployeeDashboardPendingCheckIns(t *testing.T) {
	svc, _, checkins, _, _ := newDashboardFixture()

	// u2 reported on p1 this week; p2 is still pending.
	checkins.checkins = []models.CheckIn{
		{ID: "c1", ProjectID: "p1", EmployeeID: "u2", CreatedAt: dashNow.Add(-24 * time.Hour)},
	}

	resp, cacheHit, err := svc.Employee(context.Background(), employeeClaims())
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 2, resp.Stats.AssignedProjects)
	assert.Equal(t, 1, resp.Stats.PendingCheckIns)
	require.Len(t, resp.PendingCheckIns, 1)
	assert.Equal(t, "p2", resp.PendingCheckIns[0].ID)

	require.Len(t, resp.MyOpenRisks, 1)
	assert.Equal(t, "r1", resp.MyOpenRisks[0].ID)
}

func TestEmployeeDashboardLastWeekDoesNotCount(t *testing.T) {
	svc, _, checkins, _, _ := newDashboardFixture()

	checkins.checkins = []models.CheckIn{
		{ID: "c1", ProjectID: "p1", EmployeeID: "u2", CreatedAt: dashNow.Add(-8 * 24 * time.Hour)},
	}

	resp, _, err := svc.Employee(context.Background(), employeeClaims())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stats.PendingCheckIns)
}

func TestClientDashboard(t *testing.T) {
	svc, _, _, feedback, _ := newDashboardFixture()

	older := models.Feedback{
		ID: "f1", ProjectID: "p1", ClientID: "u4",
		SatisfactionRating: 4, CreatedAt: dashNow.Add(-9 * 24 * time.Hour),
	}
	latest := models.Feedback{
		ID: "f2", ProjectID: "p1", ClientID: "u4",
		SatisfactionRating: 5, CreatedAt: dashNow.Add(-time.Hour),
	}
	feedback.feedback = []models.Feedback{older, latest}

	client := &models.JWTClaims{UserID: "u4", Name: "Client Company", Role: models.RoleClient}
	resp, cacheHit, err := svc.Client(context.Background(), client)
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.Equal(t, 2, resp.Stats.Projects)
	// p1 got feedback this week, p2 did not.
	require.Len(t, resp.PendingFeedback, 1)
	assert.Equal(t, "p2", resp.PendingFeedback[0].ID)

	require.NotNil(t, resp.LastFeedback)
	assert.Equal(t, "f2", resp.LastFeedback.ID)
}
