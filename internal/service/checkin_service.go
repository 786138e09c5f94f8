package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type checkInRepository interface {
	Create(ctx context.Context, checkin models.CheckIn) (*models.CheckIn, error)
	ByProject(ctx context.Context, projectID string) ([]models.CheckIn, error)
	ByEmployee(ctx context.Context, employeeID string) ([]models.CheckIn, error)
}

type checkInProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	ByEmployee(ctx context.Context, userID string) ([]models.Project, error)
}

type healthRecomputer interface {
	Recompute(ctx context.Context, projectID string, actor models.ActivityUser) (*models.Project, error)
}

// CheckInService handles weekly employee check-ins. One check-in per
// project, employee and ISO week.
type CheckInService struct {
	repo       checkInRepository
	projects   checkInProjectRepository
	activities activityRecorder
	health     healthRecomputer
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewCheckInService constructs a CheckInService instance.
func NewCheckInService(repo checkInRepository, projects checkInProjectRepository, activities activityRecorder, health healthRecomputer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CheckInService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CheckInService{
		repo:       repo,
		projects:   projects,
		activities: activities,
		health:     health,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// Create submits a check-in for the calling employee. The caller must be
// assigned to the project and must not have reported this week already.
func (s *CheckInService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateCheckInRequest) (*models.CheckIn, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleEmployee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only employees can submit check-ins")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	if !project.HasEmployee(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
	}

	existing, err := s.repo.ByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing check-ins")
	}
	thisWeek := weekKey(s.now())
	for _, c := range existing {
		if c.EmployeeID == claims.UserID && weekKey(c.CreatedAt) == thisWeek {
			return nil, appErrors.ErrDuplicateCheckIn
		}
	}

	checkin, err := s.repo.Create(ctx, models.CheckIn{
		ProjectID:            req.ProjectID,
		EmployeeID:           claims.UserID,
		ProgressSummary:      req.ProgressSummary,
		Blockers:             req.Blockers,
		ConfidenceLevel:      req.ConfidenceLevel,
		CompletionPercentage: req.CompletionPercentage,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create check-in")
	}

	actor := models.ActivityUser{Name: claims.Name}
	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   project.ID,
		Type:        models.ActivityCheckInSubmitted,
		User:        actor,
		Description: fmt.Sprintf("Check-in submitted for %q", project.Name),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in activity")
	}

	if s.health != nil {
		if _, err := s.health.Recompute(ctx, project.ID, actor); err != nil {
			return nil, err
		}
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("check-in submitted",
		zap.String("project_id", project.ID),
		zap.String("employee_id", claims.UserID),
		zap.Int("confidence", req.ConfidenceLevel),
	)
	return checkin, nil
}

// ByProject lists check-ins for a project the caller may see.
func (s *CheckInService) ByProject(ctx context.Context, claims *models.JWTClaims, projectID string) ([]models.CheckIn, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
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

	checkins, err := s.repo.ByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}
	if checkins == nil {
		checkins = []models.CheckIn{}
	}
	return checkins, nil
}

// Pending returns the caller's assigned projects with no check-in from them
// in the current ISO week.
func (s *CheckInService) Pending(ctx context.Context, claims *models.JWTClaims) ([]models.ProjectRef, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleEmployee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only employees have pending check-ins")
	}

	assigned, err := s.projects.ByEmployee(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned projects")
	}
	mine, err := s.repo.ByEmployee(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}

	thisWeek := weekKey(s.now())
	reported := make(map[string]bool, len(mine))
	for _, c := range mine {
		if weekKey(c.CreatedAt) == thisWeek {
			reported[c.ProjectID] = true
		}
	}

	pending := make([]models.ProjectRef, 0, len(assigned))
	for _, p := range assigned {
		if !reported[p.ID] {
			pending = append(pending, p.Ref())
		}
	}
	return pending, nil
}

func (s *CheckInService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
