package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type fakeRiskRepo struct {
	risks map[string]*models.Risk
}

func (f *fakeRiskRepo) All(context.Context) ([]models.Risk, error) {
	var out []models.Risk
	for _, r := range f.risks {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRiskRepo) FindByID(_ context.Context, id string) (*models.Risk, error) {
	if r, ok := f.risks[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRiskRepo) Create(_ context.Context, r models.Risk) (*models.Risk, error) {
	r.ID = "r-new"
	f.risks[r.ID] = &r
	copied := r
	return &copied, nil
}

func (f *fakeRiskRepo) Update(_ context.Context, id string, patch store.Document) (*models.Risk, error) {
	r, ok := f.risks[id]
	if !ok {
		return nil, nil
	}
	if title, ok := patch["title"].(string); ok {
		r.Title = title
	}
	if severity, ok := patch["severity"].(string); ok {
		r.Severity = models.RiskSeverity(severity)
	}
	if plan, ok := patch["mitigationPlan"].(string); ok {
		r.MitigationPlan = plan
	}
	if status, ok := patch["status"].(string); ok {
		r.Status = models.RiskStatus(status)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRiskRepo) ByProject(_ context.Context, projectID string) ([]models.Risk, error) {
	var out []models.Risk
	for _, r := range f.risks {
		if r.Project.ID == projectID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRiskRepo) OpenHighPriority(context.Context) ([]models.Risk, error) {
	var out []models.Risk
	for _, r := range f.risks {
		if r.Severity == models.SeverityHigh && r.Status == models.RiskOpen {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeRiskProjects struct {
	projects map[string]*models.Project
}

func (f *fakeRiskProjects) FindByID(_ context.Context, id string) (*models.Project, error) {
	return f.projects[id], nil
}

func newRiskFixture() (*RiskService, *fakeRiskRepo, *fakeActivitySink, *fakeRecomputer) {
	repo := &fakeRiskRepo{risks: map[string]*models.Risk{
		"r1": {
			ID:       "r1",
			Project:  models.ProjectRef{ID: "p2", Name: "Mobile App Development"},
			Title:    "iOS Certificate Expiration",
			Severity: models.SeverityHigh,
			Status:   models.RiskOpen,
		},
		"r2": {
			ID:       "r2",
			Project:  models.ProjectRef{ID: "p1", Name: "E-Commerce Platform Redesign"},
			Title:    "Scope creep",
			Severity: models.SeverityLow,
			Status:   models.RiskOpen,
		},
	}}
	projects := &fakeRiskProjects{projects: map[string]*models.Project{
		"p1": {ID: "p1", Name: "E-Commerce Platform Redesign", Employees: []models.UserRef{{ID: "u2"}}},
		"p2": {ID: "p2", Name: "Mobile App Development", Employees: []models.UserRef{{ID: "u2"}}},
	}}
	sink := &fakeActivitySink{}
	recomputer := &fakeRecomputer{}
	svc := NewRiskService(repo, projects, sink, recomputer, nil, nil, nil)
	return svc, repo, sink, recomputer
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Name: "Admin User", Role: models.RoleAdmin}
}

func TestRiskHighPriorityReturnsOnlyOpenHigh(t *testing.T) {
	svc, _, _, _ := newRiskFixture()

	risks, err := svc.HighPriority(context.Background(), adminClaims())
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, "r1", risks[0].ID)
}

func TestRiskResolveAppendsResolvedActivity(t *testing.T) {
	svc, repo, sink, recomputer := newRiskFixture()

	resolved := models.RiskResolved
	risk, err := svc.Update(context.Background(), adminClaims(), "r1", models.UpdateRiskRequest{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, models.RiskResolved, risk.Status)
	assert.Equal(t, models.RiskResolved, repo.risks["r1"].Status)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityRiskResolved, sink.appended[0].Type)
	assert.Equal(t, "p2", sink.appended[0].ProjectID)
	assert.Equal(t, []string{"p2"}, recomputer.calls)
}

func TestRiskEditAppendsUpdatedActivity(t *testing.T) {
	svc, _, sink, _ := newRiskFixture()

	severity := models.SeverityMedium
	risk, err := svc.Update(context.Background(), adminClaims(), "r1", models.UpdateRiskRequest{Severity: &severity})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, risk.Severity)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityRiskUpdated, sink.appended[0].Type)
}

func TestRiskCreateByAssignedEmployee(t *testing.T) {
	svc, _, sink, _ := newRiskFixture()

	risk, err := svc.Create(context.Background(), employeeClaims(), models.CreateRiskRequest{
		ProjectID: "p1",
		Title:     "Flaky CI",
		Severity:  models.SeverityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskOpen, risk.Status)
	assert.Equal(t, "u2", risk.CreatedBy.ID)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityRiskCreated, sink.appended[0].Type)
}

func TestRiskCreateForbiddenForClients(t *testing.T) {
	svc, _, _, _ := newRiskFixture()

	client := &models.JWTClaims{UserID: "u4", Role: models.RoleClient}
	_, err := svc.Create(context.Background(), client, models.CreateRiskRequest{
		ProjectID: "p1",
		Title:     "nope",
		Severity:  models.SeverityLow,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRiskUpdateMissing(t *testing.T) {
	svc, _, _, _ := newRiskFixture()

	title := "renamed"
	_, err := svc.Update(context.Background(), adminClaims(), "missing", models.UpdateRiskRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
