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

type fakeCheckInRepo struct {
	checkins []models.CheckIn
}

func (f *fakeCheckInRepo) Create(_ context.Context, c models.CheckIn) (*models.CheckIn, error) {
	c.ID = "c-new"
	c.CreatedAt = time.Now().UTC()
	f.checkins = append(f.checkins, c)
	return &c, nil
}

func (f *fakeCheckInRepo) ByProject(_ context.Context, projectID string) ([]models.CheckIn, error) {
	var out []models.CheckIn
	for _, c := range f.checkins {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInRepo) ByEmployee(_ context.Context, employeeID string) ([]models.CheckIn, error) {
	var out []models.CheckIn
	for _, c := range f.checkins {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCheckInProjects struct {
	projects map[string]*models.Project
}

func (f *fakeCheckInProjects) FindByID(_ context.Context, id string) (*models.Project, error) {
	return f.projects[id], nil
}

func (f *fakeCheckInProjects) ByEmployee(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.HasEmployee(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeRecomputer struct {
	calls []string
}

func (f *fakeRecomputer) Recompute(_ context.Context, projectID string, _ models.ActivityUser) (*models.Project, error) {
	f.calls = append(f.calls, projectID)
	return nil, nil
}

func employeeClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u2", Name: "John Developer", Role: models.RoleEmployee}
}

func newCheckInFixture(now time.Time) (*CheckInService, *fakeCheckInRepo, *fakeActivitySink, *fakeRecomputer) {
	repo := &fakeCheckInRepo{}
	projects := &fakeCheckInProjects{projects: map[string]*models.Project{
		"p1": {
			ID:        "p1",
			Name:      "E-Commerce Platform Redesign",
			Employees: []models.UserRef{{ID: "u2"}, {ID: "u3"}},
			Client:    models.UserRef{ID: "u4"},
		},
		"p2": {
			ID:        "p2",
			Name:      "Mobile App Development",
			Employees: []models.UserRef{{ID: "u2"}},
			Client:    models.UserRef{ID: "u4"},
		},
	}}
	sink := &fakeActivitySink{}
	recomputer := &fakeRecomputer{}
	svc := NewCheckInService(repo, projects, sink, recomputer, nil, nil, nil)
	svc.now = func() time.Time { return now }
	return svc, repo, sink, recomputer
}

func TestCheckInCreate(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, repo, sink, recomputer := newCheckInFixture(now)

	checkin, err := svc.Create(context.Background(), employeeClaims(), models.CreateCheckInRequest{
		ProjectID:            "p1",
		ProgressSummary:      "Checkout flow integrated",
		ConfidenceLevel:      4,
		CompletionPercentage: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, "u2", checkin.EmployeeID)
	require.Len(t, repo.checkins, 1)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityCheckInSubmitted, sink.appended[0].Type)
	assert.Equal(t, []string{"p1"}, recomputer.calls)
}

func TestCheckInDuplicateWeekRejected(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newCheckInFixture(now)

	// Monday of the same ISO week.
	repo.checkins = append(repo.checkins, models.CheckIn{
		ID: "c1", ProjectID: "p1", EmployeeID: "u2",
		CreatedAt: time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC),
	})

	_, err := svc.Create(context.Background(), employeeClaims(), models.CreateCheckInRequest{
		ProjectID:       "p1",
		ProgressSummary: "second attempt",
		ConfidenceLevel: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCheckIn.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.checkins, 1)
}

func TestCheckInNewWeekAccepted(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newCheckInFixture(now)

	// Previous ISO week does not block.
	repo.checkins = append(repo.checkins, models.CheckIn{
		ID: "c1", ProjectID: "p1", EmployeeID: "u2",
		CreatedAt: time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC),
	})

	_, err := svc.Create(context.Background(), employeeClaims(), models.CreateCheckInRequest{
		ProjectID:       "p1",
		ProgressSummary: "new week",
		ConfidenceLevel: 3,
	})
	require.NoError(t, err)
	assert.Len(t, repo.checkins, 2)
}

func TestCheckInRequiresAssignment(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newCheckInFixture(now)

	other := &models.JWTClaims{UserID: "u9", Name: "Stranger", Role: models.RoleEmployee}
	_, err := svc.Create(context.Background(), other, models.CreateCheckInRequest{
		ProjectID:       "p1",
		ProgressSummary: "not mine",
		ConfidenceLevel: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCheckInRejectsNonEmployee(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newCheckInFixture(now)

	client := &models.JWTClaims{UserID: "u4", Role: models.RoleClient}
	_, err := svc.Create(context.Background(), client, models.CreateCheckInRequest{
		ProjectID:       "p1",
		ProgressSummary: "nope",
		ConfidenceLevel: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPendingDropsProjectsReportedThisWeek(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newCheckInFixture(now)

	repo.checkins = append(repo.checkins, models.CheckIn{
		ID: "c1", ProjectID: "p1", EmployeeID: "u2",
		CreatedAt: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
	})

	pending, err := svc.Pending(context.Background(), employeeClaims())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p2", pending[0].ID)
}

func TestPendingIncludesEverythingWithoutCheckIns(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newCheckInFixture(now)

	pending, err := svc.Pending(context.Background(), employeeClaims())
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
