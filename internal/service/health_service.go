package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type healthProjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, patch store.Document) (*models.Project, error)
}

type healthCheckInSource interface {
	ByProject(ctx context.Context, projectID string) ([]models.CheckIn, error)
}

type healthFeedbackSource interface {
	ByProject(ctx context.Context, projectID string) ([]models.Feedback, error)
}

type healthRiskSource interface {
	ByProject(ctx context.Context, projectID string) ([]models.Risk, error)
}

type healthActivitySink interface {
	Append(ctx context.Context, activity models.Activity) (*models.Activity, error)
}

// HealthOptions tunes the health scoring model.
type HealthOptions struct {
	SignalWindow      time.Duration
	StaleAfter        time.Duration
	MaxStalePenalty   int
	HighRiskPenalty   int
	MediumRiskPenalty int
	LowRiskPenalty    int
	Now               func() time.Time
}

// HealthService recomputes project health from recent check-ins, feedback
// and open risks. A status flip produces a status_changed activity so the
// audit log explains dashboard transitions.
type HealthService struct {
	projects   healthProjectRepository
	checkins   healthCheckInSource
	feedback   healthFeedbackSource
	risks      healthRiskSource
	activities healthActivitySink
	logger     *zap.Logger
	opts       HealthOptions
}

// NewHealthService constructs a HealthService instance.
func NewHealthService(
	projects healthProjectRepository,
	checkins healthCheckInSource,
	feedback healthFeedbackSource,
	risks healthRiskSource,
	activities healthActivitySink,
	logger *zap.Logger,
	opts HealthOptions,
) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SignalWindow <= 0 {
		opts.SignalWindow = 14 * 24 * time.Hour
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 7 * 24 * time.Hour
	}
	if opts.MaxStalePenalty <= 0 {
		opts.MaxStalePenalty = 20
	}
	if opts.HighRiskPenalty <= 0 {
		opts.HighRiskPenalty = 15
	}
	if opts.MediumRiskPenalty <= 0 {
		opts.MediumRiskPenalty = 8
	}
	if opts.LowRiskPenalty <= 0 {
		opts.LowRiskPenalty = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HealthService{
		projects:   projects,
		checkins:   checkins,
		feedback:   feedback,
		risks:      risks,
		activities: activities,
		logger:     logger,
		opts:       opts,
	}
}

// Recompute re-derives the health score for a project and persists the
// score and status when either changed. The acting user is credited on the
// status_changed activity. A missing project is a no-op.
func (s *HealthService) Recompute(ctx context.Context, projectID string, actor models.ActivityUser) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project for health recompute")
	}
	if project == nil {
		return nil, nil
	}

	score, ok, err := s.Score(ctx, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No signals inside the window; the stored score stands.
		return project, nil
	}

	newStatus := models.StatusForScore(score)
	if score == project.HealthScore && newStatus == project.Status {
		return project, nil
	}

	prevStatus := project.Status
	now := s.opts.Now().UTC()
	updated, err := s.projects.Update(ctx, project.ID, store.Document{
		"healthScore": score,
		"status":      string(newStatus),
		"updatedAt":   now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist health score")
	}
	if updated == nil {
		return nil, nil
	}

	s.logger.Info("project health recomputed",
		zap.String("project_id", project.ID),
		zap.Int("score", score),
		zap.String("status", string(newStatus)),
	)

	if newStatus != prevStatus {
		_, err = s.activities.Append(ctx, models.Activity{
			ProjectID:   project.ID,
			Type:        models.ActivityStatusChanged,
			User:        actor,
			Description: fmt.Sprintf("%s moved from %s to %s", project.Name, prevStatus, newStatus),
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record status change")
		}
	}

	return updated, nil
}

// Score computes the health score for a project from signals inside the
// configured window. The second return reports whether any signal existed;
// when false the caller should keep the stored score.
func (s *HealthService) Score(ctx context.Context, project *models.Project) (int, bool, error) {
	now := s.opts.Now().UTC()
	cutoff := now.Add(-s.opts.SignalWindow)

	checkins, err := s.checkins.ByProject(ctx, project.ID)
	if err != nil {
		return 0, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load check-ins")
	}
	feedback, err := s.feedback.ByProject(ctx, project.ID)
	if err != nil {
		return 0, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
	}
	risks, err := s.risks.ByProject(ctx, project.ID)
	if err != nil {
		return 0, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load risks")
	}

	var (
		confidenceSum float64
		completionSum float64
		checkinCount  int
		latestSignal  time.Time
	)
	for _, c := range checkins {
		if c.CreatedAt.Before(cutoff) {
			continue
		}
		confidenceSum += float64(c.ConfidenceLevel)
		completionSum += float64(c.CompletionPercentage)
		checkinCount++
		if c.CreatedAt.After(latestSignal) {
			latestSignal = c.CreatedAt
		}
	}

	var (
		satisfactionSum float64
		feedbackCount   int
	)
	for _, f := range feedback {
		if f.CreatedAt.Before(cutoff) {
			continue
		}
		satisfactionSum += float64(f.SatisfactionRating)
		feedbackCount++
		if f.CreatedAt.After(latestSignal) {
			latestSignal = f.CreatedAt
		}
	}

	if checkinCount == 0 && feedbackCount == 0 {
		return 0, false, nil
	}

	// Weighted blend of the available components. When a component has no
	// signal its weight is redistributed over the ones that do.
	var weighted, weightTotal float64
	if checkinCount > 0 {
		confidencePct := confidenceSum / float64(checkinCount) * 20 // 1..5 scale
		completionPct := completionSum / float64(checkinCount)
		weighted += 0.45*confidencePct + 0.25*completionPct
		weightTotal += 0.45 + 0.25
	}
	if feedbackCount > 0 {
		satisfactionPct := satisfactionSum / float64(feedbackCount) * 20
		weighted += 0.30 * satisfactionPct
		weightTotal += 0.30
	}
	base := weighted / weightTotal

	penalty := 0
	for _, r := range risks {
		if r.Status != models.RiskOpen {
			continue
		}
		switch r.Severity {
		case models.SeverityHigh:
			penalty += s.opts.HighRiskPenalty
		case models.SeverityMedium:
			penalty += s.opts.MediumRiskPenalty
		case models.SeverityLow:
			penalty += s.opts.LowRiskPenalty
		}
	}

	penalty += s.stalenessPenalty(now, latestSignal)

	score := int(math.Round(base)) - penalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true, nil
}

// stalenessPenalty charges 5 points per full staleness period elapsed past
// the first, capped. A project reported on this week pays nothing.
func (s *HealthService) stalenessPenalty(now, latestSignal time.Time) int {
	if latestSignal.IsZero() {
		return 0
	}
	idle := now.Sub(latestSignal)
	if idle <= s.opts.StaleAfter {
		return 0
	}
	periods := int(idle / s.opts.StaleAfter)
	penalty := periods * 5
	if penalty > s.opts.MaxStalePenalty {
		penalty = s.opts.MaxStalePenalty
	}
	return penalty
}
