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

type fakeProjectRepo struct {
	projects map[string]*models.Project
}

func (f *fakeProjectRepo) All(context.Context) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjectRepo) FindByID(_ context.Context, id string) (*models.Project, error) {
	if p, ok := f.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeProjectRepo) Create(_ context.Context, p models.Project) (*models.Project, error) {
	p.ID = "p-new"
	f.projects[p.ID] = &p
	copied := p
	return &copied, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id string, patch store.Document) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	if name, ok := patch["name"].(string); ok {
		p.Name = name
	}
	if status, ok := patch["status"].(string); ok {
		p.Status = models.ProjectStatus(status)
	}
	if score, ok := patch["healthScore"].(int); ok {
		p.HealthScore = score
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.projects[id]; !ok {
		return false, nil
	}
	delete(f.projects, id)
	return true, nil
}

func (f *fakeProjectRepo) ByEmployee(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.HasEmployee(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) ByClient(_ context.Context, clientID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.Client.ID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeProjectUsers struct {
	users map[string]*models.User
}

func (f *fakeProjectUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func newProjectFixture() (*ProjectService, *fakeProjectRepo, *fakeActivitySink) {
	repo := &fakeProjectRepo{projects: map[string]*models.Project{
		"p1": {
			ID: "p1", Name: "E-Commerce Platform Redesign",
			Status: models.StatusOnTrack, HealthScore: 85,
			Employees: []models.UserRef{{ID: "u2", Name: "John Developer"}},
			Client:    models.UserRef{ID: "u4", Name: "Client Company"},
		},
	}}
	users := &fakeProjectUsers{users: map[string]*models.User{
		"u2": {ID: "u2", Name: "John Developer", Role: models.RoleEmployee},
		"u3": {ID: "u3", Name: "Sarah Engineer", Role: models.RoleEmployee},
		"u4": {ID: "u4", Name: "Client Company", Role: models.RoleClient},
	}}
	sink := &fakeActivitySink{}
	svc := NewProjectService(repo, users, sink, nil, nil, nil)
	return svc, repo, sink
}

func TestProjectListScopedByRole(t *testing.T) {
	svc, repo, _ := newProjectFixture()
	repo.projects["p2"] = &models.Project{
		ID: "p2", Name: "Other",
		Employees: []models.UserRef{{ID: "u3"}},
		Client:    models.UserRef{ID: "u9"},
	}

	all, err := svc.List(context.Background(), adminClaims())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(context.Background(), employeeClaims())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "p1", mine[0].ID)

	owned, err := svc.List(context.Background(), clientClaims())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "p1", owned[0].ID)
}

func TestProjectGetForbiddenForOutsiders(t *testing.T) {
	svc, _, _ := newProjectFixture()

	outsider := &models.JWTClaims{UserID: "u9", Role: models.RoleEmployee}
	_, err := svc.Get(context.Background(), outsider, "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProjectCreate(t *testing.T) {
	svc, repo, sink := newProjectFixture()

	project, err := svc.Create(context.Background(), adminClaims(), models.CreateProjectRequest{
		Name:        "Data Warehouse Migration",
		StartDate:   "2026-09-01",
		EndDate:     "2027-03-01",
		ClientID:    "u4",
		EmployeeIDs: []string{"u2", "u3"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnTrack, project.Status)
	assert.Equal(t, 100, project.HealthScore)
	assert.Equal(t, "u4", project.Client.ID)
	assert.Len(t, project.Employees, 2)
	assert.Contains(t, repo.projects, "p-new")

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityProjectCreated, sink.appended[0].Type)
	assert.Equal(t, "Admin User", sink.appended[0].User.Name)
}

func TestProjectCreateRejectsWrongRoles(t *testing.T) {
	svc, _, _ := newProjectFixture()

	// Employee in the client slot.
	_, err := svc.Create(context.Background(), adminClaims(), models.CreateProjectRequest{
		Name:      "Bad",
		StartDate: "2026-09-01",
		EndDate:   "2027-03-01",
		ClientID:  "u2",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// Client in the employee list.
	_, err = svc.Create(context.Background(), adminClaims(), models.CreateProjectRequest{
		Name:        "Bad",
		StartDate:   "2026-09-01",
		EndDate:     "2027-03-01",
		ClientID:    "u4",
		EmployeeIDs: []string{"u4"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProjectCreateAdminOnly(t *testing.T) {
	svc, _, _ := newProjectFixture()

	_, err := svc.Create(context.Background(), employeeClaims(), models.CreateProjectRequest{
		Name: "Nope", StartDate: "2026-09-01", EndDate: "2027-03-01", ClientID: "u4",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestProjectUpdateScoreRealignsStatus(t *testing.T) {
	svc, repo, sink := newProjectFixture()

	score := 55
	project, err := svc.Update(context.Background(), adminClaims(), "p1", models.UpdateProjectRequest{HealthScore: &score})
	require.NoError(t, err)
	assert.Equal(t, 55, project.HealthScore)
	assert.Equal(t, models.StatusCritical, project.Status)
	assert.Equal(t, models.StatusCritical, repo.projects["p1"].Status)

	// project_updated followed by status_changed.
	require.Len(t, sink.appended, 2)
	assert.Equal(t, models.ActivityProjectUpdated, sink.appended[0].Type)
	assert.Equal(t, models.ActivityStatusChanged, sink.appended[1].Type)
}

func TestProjectDelete(t *testing.T) {
	svc, repo, sink := newProjectFixture()

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), "p1"))
	assert.NotContains(t, repo.projects, "p1")

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityProjectDeleted, sink.appended[0].Type)

	err := svc.Delete(context.Background(), adminClaims(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
