package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

func newReportFixture() *ReportService {
	projects := &fakeDashProjects{projects: []models.Project{
		{
			ID: "p1", Name: "E-Commerce Platform Redesign",
			Status: models.StatusOnTrack, HealthScore: 85,
			Client:    models.UserRef{ID: "u4", Name: "Client Company"},
			StartDate: "2026-01-15", EndDate: "2026-12-15",
		},
	}}
	risks := &fakeDashRisks{risks: []models.Risk{
		{ID: "r1", Project: models.ProjectRef{ID: "p1"}, Severity: models.SeverityHigh, Status: models.RiskOpen},
		{ID: "r2", Project: models.ProjectRef{ID: "p1"}, Severity: models.SeverityLow, Status: models.RiskResolved},
	}}
	return NewReportService(projects, risks, nil)
}

func TestPortfolioCSV(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.Portfolio(context.Background(), adminClaims(), ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.Contains(t, report.Filename, ".csv")

	assert.Contains(t, string(report.Data), "E-Commerce Platform Redesign")
	assert.Contains(t, string(report.Data), "Client Company")
	// Only the open risk counts.
	assert.Contains(t, string(report.Data), ",1,")
}

func TestPortfolioPDF(t *testing.T) {
	svc := newReportFixture()

	report, err := svc.Portfolio(context.Background(), adminClaims(), ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Data, []byte("%PDF")))
}

func TestPortfolioRejectsUnknownFormat(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.Portfolio(context.Background(), adminClaims(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPortfolioAdminOnly(t *testing.T) {
	svc := newReportFixture()

	_, err := svc.Portfolio(context.Background(), employeeClaims(), ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
