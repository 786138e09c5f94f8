package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// ActivityRepository provides append and read access to the activities
// collection. The log is append-only; no update or delete path exists.
type ActivityRepository struct {
	store *store.Store
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(s *store.Store) *ActivityRepository {
	return &ActivityRepository{store: s}
}

// Append records a new activity and returns the stored record.
func (r *ActivityRepository) Append(ctx context.Context, activity models.Activity) (*models.Activity, error) {
	doc, err := store.Encode(activity)
	if err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	delete(doc, store.FieldID)
	delete(doc, store.FieldCreatedAt)

	inserted, err := r.store.Insert(ctx, store.Activities, doc)
	if err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	created, err := store.Decode[models.Activity](inserted)
	if err != nil {
		return nil, fmt.Errorf("append activity: %w", err)
	}
	return &created, nil
}

// All returns every activity in insertion order.
func (r *ActivityRepository) All(ctx context.Context) ([]models.Activity, error) {
	docs, err := r.store.All(ctx, store.Activities)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	activities, err := store.DecodeAll[models.Activity](docs)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// ByProject returns the newest activities for a project, capped at limit
// (zero means no cap). Records are returned newest first.
func (r *ActivityRepository) ByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error) {
	docs, err := r.store.Query(ctx, store.Activities, func(doc store.Document) bool {
		value, _ := doc["project"].(string)
		return value == projectID
	})
	if err != nil {
		return nil, fmt.Errorf("list activities by project: %w", err)
	}
	activities, err := store.DecodeAll[models.Activity](docs)
	if err != nil {
		return nil, fmt.Errorf("list activities by project: %w", err)
	}

	// Insertion order is oldest first; the timeline wants newest first.
	for i, j := 0, len(activities)-1; i < j; i, j = i+1, j-1 {
		activities[i], activities[j] = activities[j], activities[i]
	}
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
