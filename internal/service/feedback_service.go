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

type feedbackRepository interface {
	Create(ctx context.Context, feedback models.Feedback) (*models.Feedback, error)
	ByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
	ByClient(ctx context.Context, clientID string) ([]models.Feedback, error)
}

type feedbackProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	ByClient(ctx context.Context, clientID string) ([]models.Project, error)
}

// FeedbackService handles weekly client feedback. One submission per
// project, client and ISO week.
type FeedbackService struct {
	repo       feedbackRepository
	projects   feedbackProjectRepository
	activities activityRecorder
	health     healthRecomputer
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(repo feedbackRepository, projects feedbackProjectRepository, activities activityRecorder, health healthRecomputer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{
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

// Create submits feedback for the calling client. The caller must own the
// project and must not have submitted this week already.
func (s *FeedbackService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateFeedbackRequest) (*models.Feedback, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleClient {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only clients can submit feedback")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	if project == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	if project.Client.ID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this project")
	}

	existing, err := s.repo.ByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing feedback")
	}
	thisWeek := weekKey(s.now())
	for _, f := range existing {
		if f.ClientID == claims.UserID && weekKey(f.CreatedAt) == thisWeek {
			return nil, appErrors.ErrDuplicateFeedback
		}
	}

	feedback, err := s.repo.Create(ctx, models.Feedback{
		ProjectID:           req.ProjectID,
		ClientID:            claims.UserID,
		SatisfactionRating:  req.SatisfactionRating,
		CommunicationRating: req.CommunicationRating,
		Comments:            req.Comments,
		FlagIssue:           req.FlagIssue,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback")
	}

	actor := models.ActivityUser{Name: claims.Name}
	if _, err := s.activities.Append(ctx, models.Activity{
		ProjectID:   project.ID,
		Type:        models.ActivityFeedbackSubmitted,
		User:        actor,
		Description: fmt.Sprintf("Feedback submitted for %q", project.Name),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record feedback activity")
	}

	if s.health != nil {
		if _, err := s.health.Recompute(ctx, project.ID, actor); err != nil {
			return nil, err
		}
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("feedback submitted",
		zap.String("project_id", project.ID),
		zap.String("client_id", claims.UserID),
		zap.Int("satisfaction", req.SatisfactionRating),
		zap.Bool("flagged", req.FlagIssue),
	)
	return feedback, nil
}

// ByProject lists feedback for a project the caller may see.
func (s *FeedbackService) ByProject(ctx context.Context, claims *models.JWTClaims, projectID string) ([]models.Feedback, error) {
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

	feedback, err := s.repo.ByProject(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	if feedback == nil {
		feedback = []models.Feedback{}
	}
	return feedback, nil
}

// Pending returns the caller's projects with no feedback from them in the
// current ISO week.
func (s *FeedbackService) Pending(ctx context.Context, claims *models.JWTClaims) ([]models.ProjectRef, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleClient {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only clients have pending feedback")
	}

	owned, err := s.projects.ByClient(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	mine, err := s.repo.ByClient(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}

	thisWeek := weekKey(s.now())
	submitted := make(map[string]bool, len(mine))
	for _, f := range mine {
		if weekKey(f.CreatedAt) == thisWeek {
			submitted[f.ProjectID] = true
		}
	}

	pending := make([]models.ProjectRef, 0, len(owned))
	for _, p := range owned {
		if !submitted[p.ID] {
			pending = append(pending, p.Ref())
		}
	}
	return pending, nil
}

func (s *FeedbackService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePrefix+"*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
