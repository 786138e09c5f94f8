package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
	"github.com/proavijit/projectpulse-api/pkg/export"
)

// Report formats accepted by the export endpoint.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type reportProjectRepository interface {
	All(ctx context.Context) ([]models.Project, error)
}

type reportRiskRepository interface {
	All(ctx context.Context) ([]models.Risk, error)
}

// Report is a rendered export with its content type and a suggested
// filename.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders the portfolio health report as CSV or PDF.
// Admin only.
type ReportService struct {
	projects reportProjectRepository
	risks    reportRiskRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService instance.
func NewReportService(projects reportProjectRepository, risks reportRiskRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{projects: projects, risks: risks, logger: logger, now: time.Now}
}

// Portfolio renders the portfolio report in the requested format.
func (s *ReportService) Portfolio(ctx context.Context, claims *models.JWTClaims, format string) (*Report, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}

	projects, err := s.projects.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}
	risks, err := s.risks.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risks")
	}

	openByProject := make(map[string]int, len(projects))
	for _, r := range risks {
		if r.Status == models.RiskOpen {
			openByProject[r.Project.ID]++
		}
	}

	now := s.now().UTC()
	table := export.Table{
		Title:   fmt.Sprintf("Portfolio Health Report %s", now.Format("2006-01-02")),
		Headers: []string{"Project", "Client", "Status", "Health Score", "Open Risks", "Start", "End"},
	}
	for _, p := range projects {
		table.Rows = append(table.Rows, []string{
			p.Name,
			p.Client.Name,
			string(p.Status),
			strconv.Itoa(p.HealthScore),
			strconv.Itoa(openByProject[p.ID]),
			p.StartDate,
			p.EndDate,
		})
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ReportFormatCSV:
		data, err = export.CSV(table)
		contentType = "text/csv"
	case ReportFormatPDF:
		data, err = export.PDF(table)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.logger.Info("portfolio report generated",
		zap.String("format", format),
		zap.Int("projects", len(projects)),
		zap.String("by", claims.UserID),
	)
	return &Report{
		Filename:    fmt.Sprintf("portfolio-%s.%s", now.Format("20060102"), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}
