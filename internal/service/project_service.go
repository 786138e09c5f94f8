package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type projectRepository interface {
	All(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project models.Project) (*models.Project, error)
	Update(ctx context.Context, id string, patch store.Document) (*models.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
	ByEmployee(ctx context.Context, userID string) ([]models.Project, error)
	ByClient(ctx context.Context, clientID string) ([]models.Project, error)
}

type projectUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type activityRecorder interface {
	Append(ctx context.Context, activity models.Activity) (*models.Activity, error)
}

// ProjectService provides project CRUD restricted by role. Mutations append
// audit activities and invalidate the dashboard cache.
type ProjectService struct {
	repo       projectRepository
	users      projectUserRepository
	activities activityRecorder
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(repo projectRepository, users projectUserRepository, activities activityRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProjectService{
		repo:       repo,
		users:      users,
		activities: activities,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// List returns the projects visible to the caller. Admins see every
// project, employees their assignments, clients their own engagements.
func (s *ProjectService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	var (
		projects []models.Project
		err      error
	)
	switch claims.Role {
	case models.RoleAdmin:
		projects, err = s.repo.All(ctx)
	case models.RoleEmployee:
		projects, err = s.repo.ByEmployee(ctx, claims.UserID)
	case models.RoleClient:
		projects, err = s.repo.ByClient(ctx, claims.UserID)
	default:
		return nil, appErrors.ErrForbidden
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Get returns a single project if the caller may see it.
func (s *ProjectService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Project, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	if !s.canView(claims, project) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this project")
	}
	return project, nil
}

// Create registers a new project. Admin only; new projects start On Track
// with a full health score until signals arrive.
func (s *ProjectService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateProjectRequest) (*models.Project, error) {
	if claims == nil || claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	client, err := s.users.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve client")
	}
	if client == nil || client.Role != models.RoleClient {
		return nil, appErrors.Clone(appErrors.ErrValidation, "clientId must reference a client user")
	}

	employees := make([]models.UserRef, 0, len(req.EmployeeIDs))
	for _, id := range req.EmployeeIDs {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
		}
		if u == nil || u.Role != models.RoleEmployee {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s must reference an employee user", id))
		}
		employees = append(employees, u.Ref())
	}

	project, err := s.repo.Create(ctx, models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Client:      client.Ref(),
		Employees:   employees,
		Status:      models.StatusOnTrack,
		HealthScore: 100,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   project.ID,
		Type:        models.ActivityProjectCreated,
		User:        models.ActivityUser{Name: claims.Name},
		Description: fmt.Sprintf("Project %q created", project.Name),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record project creation")
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("by", claims.UserID))
	return project, nil
}

// Update applies a partial update. Admin only.
func (s *ProjectService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	if claims == nil || claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	patch := store.Document{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.StartDate != nil {
		patch["startDate"] = *req.StartDate
	}
	if req.EndDate != nil {
		patch["endDate"] = *req.EndDate
	}
	if req.ClientID != nil {
		client, err := s.users.FindByID(ctx, *req.ClientID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve client")
		}
		if client == nil || client.Role != models.RoleClient {
			return nil, appErrors.Clone(appErrors.ErrValidation, "clientId must reference a client user")
		}
		patch["client"], err = store.Encode(client.Ref())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode client reference")
		}
	}
	if req.EmployeeIDs != nil {
		refs := make([]any, 0, len(*req.EmployeeIDs))
		for _, empID := range *req.EmployeeIDs {
			u, err := s.users.FindByID(ctx, empID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve employee")
			}
			if u == nil || u.Role != models.RoleEmployee {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s must reference an employee user", empID))
			}
			doc, err := store.Encode(u.Ref())
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode employee reference")
			}
			refs = append(refs, doc)
		}
		patch["employees"] = refs
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if req.HealthScore != nil {
		patch["healthScore"] = *req.HealthScore
		// Manual score overrides keep status consistent unless the caller
		// pinned one explicitly.
		if req.Status == nil {
			patch["status"] = string(models.StatusForScore(*req.HealthScore))
		}
	}
	if len(patch) == 0 {
		return existing, nil
	}
	patch["updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}
	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   updated.ID,
		Type:        models.ActivityProjectUpdated,
		User:        models.ActivityUser{Name: claims.Name},
		Description: fmt.Sprintf("Project %q updated", updated.Name),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record project update")
	}

	if updated.Status != existing.Status {
		if _, err := s.activities.Append(ctx, models.Activity{
			ProjectID:   updated.ID,
			Type:        models.ActivityStatusChanged,
			User:        models.ActivityUser{Name: claims.Name},
			Description: fmt.Sprintf("%s moved from %s to %s", updated.Name, existing.Status, updated.Status),
		}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record status change")
		}
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("project updated", zap.String("project_id", id), zap.String("by", claims.UserID))
	return updated, nil
}

// Delete removes a project. Admin only. Associated check-ins, feedback and
// risks are left in place; readers skip records whose project is gone.
func (s *ProjectService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if claims == nil || claims.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}

	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   id,
		Type:        models.ActivityProjectDeleted,
		User:        models.ActivityUser{Name: claims.Name},
		Description: fmt.Sprintf("Project %q deleted", project.Name),
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record project deletion")
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("project deleted", zap.String("project_id", id), zap.String("by", claims.UserID))
	return nil
}

func (s *ProjectService) canView(claims *models.JWTClaims, project *models.Project) bool {
	switch claims.Role {
	case models.RoleAdmin:
		return true
	case models.RoleEmployee:
		return project.HasEmployee(claims.UserID)
	case models.RoleClient:
		return project.Client.ID == claims.UserID
	default:
		return false
	}
}

func (s *ProjectService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
