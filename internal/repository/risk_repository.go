package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// RiskRepository provides typed access to the risks collection.
type RiskRepository struct {
	store *store.Store
}

// NewRiskRepository creates a new instance of RiskRepository.
func NewRiskRepository(s *store.Store) *RiskRepository {
	return &RiskRepository{store: s}
}

// All returns every risk in insertion order.
func (r *RiskRepository) All(ctx context.Context) ([]models.Risk, error) {
	docs, err := r.store.All(ctx, store.Risks)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	risks, err := store.DecodeAll[models.Risk](docs)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	return risks, nil
}

// FindByID returns the risk with the given identifier, or nil when absent.
func (r *RiskRepository) FindByID(ctx context.Context, id string) (*models.Risk, error) {
	doc, ok, err := r.store.Get(ctx, store.Risks, id)
	if err != nil {
		return nil, fmt.Errorf("find risk by id: %w", err)
	}
	if !ok {
		return nil, nil
	}
	risk, err := store.Decode[models.Risk](doc)
	if err != nil {
		return nil, fmt.Errorf("find risk by id: %w", err)
	}
	return &risk, nil
}

// Create inserts a new risk and returns the stored record.
func (r *RiskRepository) Create(ctx context.Context, risk models.Risk) (*models.Risk, error) {
	doc, err := store.Encode(risk)
	if err != nil {
		return nil, fmt.Errorf("create risk: %w", err)
	}
	delete(doc, store.FieldID)
	delete(doc, store.FieldCreatedAt)

	inserted, err := r.store.Insert(ctx, store.Risks, doc)
	if err != nil {
		return nil, fmt.Errorf("create risk: %w", err)
	}
	created, err := store.Decode[models.Risk](inserted)
	if err != nil {
		return nil, fmt.Errorf("create risk: %w", err)
	}
	return &created, nil
}

// Update shallow-merges the patch over the risk, returning the merged record
// or nil when the risk does not exist.
func (r *RiskRepository) Update(ctx context.Context, id string, patch store.Document) (*models.Risk, error) {
	merged, ok, err := r.store.Update(ctx, store.Risks, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update risk: %w", err)
	}
	if !ok {
		return nil, nil
	}
	risk, err := store.Decode[models.Risk](merged)
	if err != nil {
		return nil, fmt.Errorf("update risk: %w", err)
	}
	return &risk, nil
}

// ByProject returns the risks recorded against a project.
func (r *RiskRepository) ByProject(ctx context.Context, projectID string) ([]models.Risk, error) {
	docs, err := r.store.Query(ctx, store.Risks, func(doc store.Document) bool {
		ref, _ := doc["project"].(map[string]any)
		value, _ := ref[store.FieldID].(string)
		return value == projectID
	})
	if err != nil {
		return nil, fmt.Errorf("list risks by project: %w", err)
	}
	risks, err := store.DecodeAll[models.Risk](docs)
	if err != nil {
		return nil, fmt.Errorf("list risks by project: %w", err)
	}
	return risks, nil
}

// OpenHighPriority returns open risks with High severity in insertion order.
func (r *RiskRepository) OpenHighPriority(ctx context.Context) ([]models.Risk, error) {
	docs, err := r.store.Query(ctx, store.Risks, func(doc store.Document) bool {
		severity, _ := doc["severity"].(string)
		status, _ := doc["status"].(string)
		return severity == string(models.SeverityHigh) && status == string(models.RiskOpen)
	})
	if err != nil {
		return nil, fmt.Errorf("list high priority risks: %w", err)
	}
	risks, err := store.DecodeAll[models.Risk](docs)
	if err != nil {
		return nil, fmt.Errorf("list high priority risks: %w", err)
	}
	return risks, nil
}
