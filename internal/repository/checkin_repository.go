package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// CheckInRepository provides typed access to the checkins collection.
type CheckInRepository struct {
	store *store.Store
}

// NewCheckInRepository creates a new instance of CheckInRepository.
func NewCheckInRepository(s *store.Store) *CheckInRepository {
	return &CheckInRepository{store: s}
}

// Create inserts a new check-in and returns the stored record.
func (r *CheckInRepository) Create(ctx context.Context, checkin models.CheckIn) (*models.CheckIn, error) {
	doc, err := store.Encode(checkin)
	if err != nil {
		return nil, fmt.Errorf("create checkin: %w", err)
	}
	delete(doc, store.FieldID)
	delete(doc, store.FieldCreatedAt)

	inserted, err := r.store.Insert(ctx, store.CheckIns, doc)
	if err != nil {
		return nil, fmt.Errorf("create checkin: %w", err)
	}
	created, err := store.Decode[models.CheckIn](inserted)
	if err != nil {
		return nil, fmt.Errorf("create checkin: %w", err)
	}
	return &created, nil
}

// All returns every check-in in insertion order.
func (r *CheckInRepository) All(ctx context.Context) ([]models.CheckIn, error) {
	docs, err := r.store.All(ctx, store.CheckIns)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	checkins, err := store.DecodeAll[models.CheckIn](docs)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return checkins, nil
}

// ByProject returns the check-ins recorded against a project.
func (r *CheckInRepository) ByProject(ctx context.Context, projectID string) ([]models.CheckIn, error) {
	docs, err := r.store.Query(ctx, store.CheckIns, func(doc store.Document) bool {
		value, _ := doc["project"].(string)
		return value == projectID
	})
	if err != nil {
		return nil, fmt.Errorf("list checkins by project: %w", err)
	}
	checkins, err := store.DecodeAll[models.CheckIn](docs)
	if err != nil {
		return nil, fmt.Errorf("list checkins by project: %w", err)
	}
	return checkins, nil
}

// ByEmployee returns the check-ins submitted by a user.
func (r *CheckInRepository) ByEmployee(ctx context.Context, employeeID string) ([]models.CheckIn, error) {
	docs, err := r.store.Query(ctx, store.CheckIns, func(doc store.Document) bool {
		value, _ := doc["employee"].(string)
		return value == employeeID
	})
	if err != nil {
		return nil, fmt.Errorf("list checkins by employee: %w", err)
	}
	checkins, err := store.DecodeAll[models.CheckIn](docs)
	if err != nil {
		return nil, fmt.Errorf("list checkins by employee: %w", err)
	}
	return checkins, nil
}
