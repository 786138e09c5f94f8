package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type riskRepository interface {
	All(ctx context.Context) ([]models.Risk, error)
	FindByID(ctx context.Context, id string) (*models.Risk, error)
	Create(ctx context.Context, risk models.Risk) (*models.Risk, error)
	Update(ctx context.Context, id string, patch store.Document) (*models.Risk, error)
	ByProject(ctx context.Context, projectID string) ([]models.Risk, error)
	OpenHighPriority(ctx context.Context) ([]models.Risk, error)
}

type riskProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
}

// RiskService manages delivery risks. Admins and assigned employees can
// report and update; clients get read access to their own projects' risks.
type RiskService struct {
	repo       riskRepository
	projects   riskProjectRepository
	activities activityRecorder
	health     healthRecomputer
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRiskService constructs a RiskService instance.
func NewRiskService(repo riskRepository, projects riskProjectRepository, activities activityRecorder, health healthRecomputer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RiskService{
		repo:       repo,
		projects:   projects,
		activities: activities,
		health:     health,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// List returns all risks. Admin only; project-scoped reads go through
// ByProject.
func (s *RiskService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Risk, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	risks, err := s.repo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risks")
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, nil
}

// ByProject lists risks for a project the caller may see.
func (s *RiskService) ByProject(ctx context.Context, claims *models.JWTClaims, projectID string) ([]models.Risk, error) {
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
	if !s.canView(claims, project) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this project")
	}

	risks, err := s.repo.ByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risks")
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, nil
}

// HighPriority returns every open High severity risk across the portfolio.
// Admin only.
func (s *RiskService) HighPriority(ctx context.Context, claims *models.JWTClaims) ([]models.Risk, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	risks, err := s.repo.OpenHighPriority(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list high priority risks")
	}
	if risks == nil {
		risks = []models.Risk{}
	}
	return risks, nil
}

// Create reports a new risk. Admins may report on any project; employees
// only on projects they are assigned to.
func (s *RiskService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateRiskRequest) (*models.Risk, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleEmployee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "clients cannot report risks")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid risk payload")
	}

	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	if claims.Role == models.RoleEmployee && !project.HasEmployee(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
	}

	risk, err := s.repo.Create(ctx, models.Risk{
		Project:        project.Ref(),
		CreatedBy:      models.UserRef{ID: claims.UserID, Name: claims.Name, Email: claims.Email},
		Title:          req.Title,
		Severity:       req.Severity,
		MitigationPlan: req.MitigationPlan,
		Status:         models.RiskOpen,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create risk")
	}

	actor := models.ActivityUser{Name: claims.Name}
	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   project.ID,
		Type:        models.ActivityRiskCreated,
		User:        actor,
		Description: fmt.Sprintf("Risk %q reported (%s)", risk.Title, risk.Severity),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record risk activity")
	}

	if s.health != nil {
		if _, err := s.health.Recompute(ctx, project.ID, actor); err != nil {
			return nil, err
		}
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("risk reported",
		zap.String("project_id", project.ID),
		zap.String("risk_id", risk.ID),
		zap.String("severity", string(risk.Severity)),
	)
	return risk, nil
}

// Update applies a partial update to a risk. Resolving a risk records a
// risk_resolved activity; other edits record risk_updated.
func (s *RiskService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateRiskRequest) (*models.Risk, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleEmployee {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "clients cannot update risks")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid risk payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load risk")
	}
	if existing == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "risk not found")
	}

	if claims.Role == models.RoleEmployee {
		project, err := s.projects.FindByID(ctx, existing.Project.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
		}
		if project == nil || !project.HasEmployee(claims.UserID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this project")
		}
	}

	patch := store.Document{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Severity != nil {
		patch["severity"] = string(*req.Severity)
	}
	if req.MitigationPlan != nil {
		patch["mitigationPlan"] = *req.MitigationPlan
	}
	if req.Status != nil {
		patch["status"] = string(*req.Status)
	}
	if len(patch) == 0 {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update risk")
	}
	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "risk not found")
	}

	actor := models.ActivityUser{Name: claims.Name}
	activityType := models.ActivityRiskUpdated
	description := fmt.Sprintf("Risk %q updated", updated.Title)
	if req.Status != nil && *req.Status == models.RiskResolved && existing.Status != models.RiskResolved {
		activityType = models.ActivityRiskResolved
		description = fmt.Sprintf("Risk %q resolved", updated.Title)
	}
	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   updated.Project.ID,
		Type:        activityType,
		User:        actor,
		Description: description,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record risk activity")
	}

	if s.health != nil {
		if _, err := s.health.Recompute(ctx, updated.Project.ID, actor); err != nil {
			return nil, err
		}
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("risk updated",
		zap.String("risk_id", id),
		zap.String("type", string(activityType)),
		zap.String("by", claims.UserID),
	)
	return updated, nil
}

func (s *RiskService) canView(claims *models.JWTClaims, project *models.Project) bool {
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

func (s *RiskService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
