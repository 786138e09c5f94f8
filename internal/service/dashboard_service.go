package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/dto"
	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

// Cache keys for the role dashboards. Employee and client keys append the
// viewer's user id; mutations invalidate the whole prefix.
const (
	dashboardCachePrefix   = "dash:"
	adminDashboardCacheKey = dashboardCachePrefix + "admin"
)

type dashboardProjectRepository interface {
	All(ctx context.Context) ([]models.Project, error)
	ByEmployee(ctx context.Context, userID string) ([]models.Project, error)
	ByClient(ctx context.Context, clientID string) ([]models.Project, error)
}

type dashboardCheckInRepository interface {
	All(ctx context.Context) ([]models.CheckIn, error)
	ByEmployee(ctx context.Context, employeeID string) ([]models.CheckIn, error)
}

type dashboardFeedbackRepository interface {
	ByClient(ctx context.Context, clientID string) ([]models.Feedback, error)
}

type dashboardRiskRepository interface {
	All(ctx context.Context) ([]models.Risk, error)
}

// DashboardOptions tunes the dashboard aggregation.
type DashboardOptions struct {
	TopRiskLimit int
	CacheTTL     time.Duration
	GapWindow    time.Duration
	Now          func() time.Time
}

// DashboardService aggregates the role-scoped dashboard views. Results are
// cached per role (and per viewer for employee and client) when a cache is
// configured; the bool return reports whether the response was served from
// cache.
type DashboardService struct {
	projectRepo  dashboardProjectRepository
	checkInRepo  dashboardCheckInRepository
	feedbackRepo dashboardFeedbackRepository
	riskRepo     dashboardRiskRepository
	cache        *CacheService
	logger       *zap.Logger
	opts         DashboardOptions
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	projectRepo dashboardProjectRepository,
	checkInRepo dashboardCheckInRepository,
	feedbackRepo dashboardFeedbackRepository,
	riskRepo dashboardRiskRepository,
	cache *CacheService,
	logger *zap.Logger,
	opts DashboardOptions,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopRiskLimit <= 0 {
		opts.TopRiskLimit = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.GapWindow <= 0 {
		opts.GapWindow = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DashboardService{
		projectRepo:  projectRepo,
		checkInRepo:  checkInRepo,
		feedbackRepo: feedbackRepo,
		riskRepo:     riskRepo,
		cache:        cache,
		logger:       logger,
		opts:         opts,
	}
}

// Admin builds the portfolio overview for administrators.
func (s *DashboardService) Admin(ctx context.Context, claims *models.JWTClaims) (*dto.AdminDashboardResponse, bool, error) {
	if claims == nil || claims.Role != models.RoleAdmin {
		return nil, false, appErrors.ErrForbidden
	}

	if s.cacheEnabled() {
		var cached dto.AdminDashboardResponse
		if hit, err := s.cache.Get(ctx, adminDashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	projects, err := s.projectRepo.All(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	if projects == nil {
		projects = []models.Project{}
	}

	stats := dto.AdminDashboardStats{TotalProjects: len(projects)}
	needingAttention := []models.Project{}
	for _, p := range projects {
		switch p.Status {
		case models.StatusOnTrack:
			stats.OnTrack++
		case models.StatusAtRisk:
			stats.AtRisk++
		case models.StatusCritical:
			stats.Critical++
		}
		if p.Status != models.StatusOnTrack {
			needingAttention = append(needingAttention, p)
		}
	}
	// Critical before At Risk, worst health first within each status.
	sort.SliceStable(needingAttention, func(i, j int) bool {
		a, b := needingAttention[i], needingAttention[j]
		if a.Status != b.Status {
			return a.Status == models.StatusCritical
		}
		return a.HealthScore < b.HealthScore
	})

	allRisks, err := s.riskRepo.All(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risks")
	}
	topRisks := []models.Risk{}
	for _, r := range allRisks {
		if r.Status == models.RiskOpen && (r.Severity == models.SeverityHigh || r.Severity == models.SeverityMedium) {
			topRisks = append(topRisks, r)
		}
	}
	if len(topRisks) > s.opts.TopRiskLimit {
		topRisks = topRisks[:s.opts.TopRiskLimit]
	}

	gaps, err := s.operationalGaps(ctx, projects)
	if err != nil {
		return nil, false, err
	}

	resp := &dto.AdminDashboardResponse{
		Stats:            stats,
		Projects:         projects,
		NeedingAttention: needingAttention,
		TopRisks:         topRisks,
		OperationalGaps:  gaps,
	}
	s.cacheSet(ctx, adminDashboardCacheKey, resp)
	return resp, false, nil
}

// Employee builds the workspace view for the calling employee.
func (s *DashboardService) Employee(ctx context.Context, claims *models.JWTClaims) (*dto.EmployeeDashboardResponse, bool, error) {
	if claims == nil || claims.Role != models.RoleEmployee {
		return nil, false, appErrors.ErrForbidden
	}

	cacheKey := dashboardCachePrefix + "employee:" + claims.UserID
	if s.cacheEnabled() {
		var cached dto.EmployeeDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	assigned, err := s.projectRepo.ByEmployee(ctx, claims.UserID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned projects")
	}
	if assigned == nil {
		assigned = []models.Project{}
	}

	mine, err := s.checkInRepo.ByEmployee(ctx, claims.UserID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}

	thisWeek := weekKey(s.opts.Now())
	reported := make(map[string]bool, len(mine))
	for _, c := range mine {
		if weekKey(c.CreatedAt) == thisWeek {
			reported[c.ProjectID] = true
		}
	}
	pending := []models.ProjectRef{}
	for _, p := range assigned {
		if !reported[p.ID] {
			pending = append(pending, p.Ref())
		}
	}

	allRisks, err := s.riskRepo.All(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risks")
	}
	openRisks := []models.Risk{}
	for _, r := range allRisks {
		if r.Status == models.RiskOpen && r.CreatedBy.ID == claims.UserID {
			openRisks = append(openRisks, r)
		}
	}

	resp := &dto.EmployeeDashboardResponse{
		Stats: dto.EmployeeDashboardStats{
			AssignedProjects: len(assigned),
			PendingCheckIns:  len(pending),
			OpenRisks:        len(openRisks),
		},
		AssignedProjects: assigned,
		PendingCheckIns:  pending,
		MyOpenRisks:      openRisks,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, false, nil
}

// Client builds the portfolio view for the calling client.
func (s *DashboardService) Client(ctx context.Context, claims *models.JWTClaims) (*dto.ClientDashboardResponse, bool, error) {
	if claims == nil || claims.Role != models.RoleClient {
		return nil, false, appErrors.ErrForbidden
	}

	cacheKey := dashboardCachePrefix + "client:" + claims.UserID
	if s.cacheEnabled() {
		var cached dto.ClientDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	owned, err := s.projectRepo.ByClient(ctx, claims.UserID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	if owned == nil {
		owned = []models.Project{}
	}

	mine, err := s.feedbackRepo.ByClient(ctx, claims.UserID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}

	thisWeek := weekKey(s.opts.Now())
	submitted := make(map[string]bool, len(mine))
	var lastFeedback *models.Feedback
	for i := range mine {
		f := mine[i]
		if weekKey(f.CreatedAt) == thisWeek {
			submitted[f.ProjectID] = true
		}
		if lastFeedback == nil || f.CreatedAt.After(lastFeedback.CreatedAt) {
			lastFeedback = &mine[i]
		}
	}

	pending := []models.ProjectRef{}
	for _, p := range owned {
		if !submitted[p.ID] {
			pending = append(pending, p.Ref())
		}
	}

	resp := &dto.ClientDashboardResponse{
		Stats: dto.ClientDashboardStats{
			Projects:        len(owned),
			PendingFeedback: len(pending),
		},
		AssignedProjects: owned,
		PendingFeedback:  pending,
		LastFeedback:     lastFeedback,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, false, nil
}

// operationalGaps flags projects with no check-in inside the gap window.
func (s *DashboardService) operationalGaps(ctx context.Context, projects []models.Project) ([]dto.OperationalGap, error) {
	checkins, err := s.checkInRepo.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list check-ins")
	}

	latest := make(map[string]time.Time, len(projects))
	for _, c := range checkins {
		if c.CreatedAt.After(latest[c.ProjectID]) {
			latest[c.ProjectID] = c.CreatedAt
		}
	}

	cutoff := s.opts.Now().UTC().Add(-s.opts.GapWindow)
	gaps := []dto.OperationalGap{}
	for _, p := range projects {
		last, ok := latest[p.ID]
		if ok && last.After(cutoff) {
			continue
		}
		gap := dto.OperationalGap{Project: p.Ref()}
		if ok {
			t := last
			gap.LastCheckIn = &t
		}
		gaps = append(gaps, gap)
	}
	return gaps, nil
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cache != nil && s.cache.Enabled()
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value any) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
