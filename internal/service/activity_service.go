package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type activityRepository interface {
	ByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error)
}

type activityProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

const defaultActivityLimit = 50

// ActivityService exposes the per-project audit feed, newest first.
type ActivityService struct {
	repo     activityRepository
	projects activityProjectRepository
	logger   *zap.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(repo activityRepository, projects activityProjectRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, projects: projects, logger: logger}
}

// ByProject returns the most recent activities for a project the caller
// may see. A non-positive limit falls back to the default.
func (s *ActivityService) ByProject(ctx context.Context, claims *models.JWTClaims, projectID string, limit int) ([]models.Activity, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}

	switch claims.Role {
	case models.RoleAdmin:
	case models.RoleEmployee:
		if !project.HasEmployee(claims.UserID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
		}
	case models.RoleClient:
		if project.Client.ID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this project")
		}
	default:
		return nil, appErrors.ErrForbidden
	}

	activities, err := s.repo.ByProject(ctx, projectID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}
