package store

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/proavijit/projectpulse-api/internal/models"
)

// Seed credentials for local development. Passwords are stored bcrypt-hashed;
// the literal values only exist so a fresh install can log in.
const (
	SeedAdminEmail    = "admin@projectpulse.com"
	SeedAdminPassword = "admin123"

	SeedEmployeeEmail    = "employee@projectpulse.com"
	SeedEmployeePassword = "employee123"

	SeedClientEmail    = "client@projectpulse.com"
	SeedClientPassword = "client123"
)

// DefaultSeed builds the fixed dataset written when the blob is absent:
// four users (one per role plus a second employee), two projects, one open
// high-severity risk and one project_created activity.
func DefaultSeed(now time.Time) (Blob, error) {
	hash := func(password string) (string, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash seed password: %w", err)
		}
		return string(h), nil
	}

	adminHash, err := hash(SeedAdminPassword)
	if err != nil {
		return nil, err
	}
	employeeHash, err := hash(SeedEmployeePassword)
	if err != nil {
		return nil, err
	}
	clientHash, err := hash(SeedClientPassword)
	if err != nil {
		return nil, err
	}

	users := []models.User{
		{ID: "u1", Name: "Admin User", Email: SeedAdminEmail, PasswordHash: adminHash, Role: models.RoleAdmin, CreatedAt: now},
		{ID: "u2", Name: "John Developer", Email: SeedEmployeeEmail, PasswordHash: employeeHash, Role: models.RoleEmployee, CreatedAt: now},
		{ID: "u3", Name: "Sarah Engineer", Email: "sarah@projectpulse.com", PasswordHash: employeeHash, Role: models.RoleEmployee, CreatedAt: now},
		{ID: "u4", Name: "Client Company", Email: SeedClientEmail, PasswordHash: clientHash, Role: models.RoleClient, CreatedAt: now},
	}

	clientRef := models.UserRef{ID: "u4", Name: "Client Company", Email: SeedClientEmail}
	projects := []models.Project{
		{
			ID:          "p1",
			Name:        "E-Commerce Platform Redesign",
			Description: "Complete redesign of the e-commerce platform with modern UI/UX and improved performance",
			StartDate:   "2026-01-01",
			EndDate:     "2026-06-30",
			Client:      clientRef,
			Employees: []models.UserRef{
				{ID: "u2", Name: "John Developer"},
				{ID: "u3", Name: "Sarah Engineer"},
			},
			Status:      models.StatusOnTrack,
			HealthScore: 85,
			CreatedAt:   now,
		},
		{
			ID:          "p2",
			Name:        "Mobile App Development",
			Description: "Native mobile application for iOS and Android platforms",
			StartDate:   "2025-12-01",
			EndDate:     "2026-03-31",
			Client:      clientRef,
			Employees: []models.UserRef{
				{ID: "u2", Name: "John Developer"},
			},
			Status:      models.StatusAtRisk,
			HealthScore: 68,
			CreatedAt:   now,
		},
	}

	risks := []models.Risk{
		{
			ID:             "r1",
			Project:        models.ProjectRef{ID: "p2", Name: "Mobile App Development"},
			CreatedBy:      models.UserRef{ID: "u2", Name: "John Developer"},
			Title:          "iOS Certificate Expiration",
			Severity:       models.SeverityHigh,
			MitigationPlan: "Working with Apple support to renew certificate.",
			Status:         models.RiskOpen,
			CreatedAt:      now,
		},
	}

	activities := []models.Activity{
		{
			ID:          "a1",
			ProjectID:   "p1",
			Type:        models.ActivityProjectCreated,
			User:        models.ActivityUser{Name: "Admin User"},
			Description: `Project "E-Commerce Platform Redesign" created`,
			CreatedAt:   now,
		},
	}

	blob := Blob{
		Users:      nil,
		Projects:   nil,
		CheckIns:   []Document{},
		Feedback:   []Document{},
		Risks:      nil,
		Activities: nil,
	}
	for _, u := range users {
		doc, err := Encode(u)
		if err != nil {
			return nil, err
		}
		blob[Users] = append(blob[Users], doc)
	}
	for _, p := range projects {
		doc, err := Encode(p)
		if err != nil {
			return nil, err
		}
		blob[Projects] = append(blob[Projects], doc)
	}
	for _, r := range risks {
		doc, err := Encode(r)
		if err != nil {
			return nil, err
		}
		blob[Risks] = append(blob[Risks], doc)
	}
	for _, a := range activities {
		doc, err := Encode(a)
		if err != nil {
			return nil, err
		}
		blob[Activities] = append(blob[Activities], doc)
	}

	return blob, nil
}
