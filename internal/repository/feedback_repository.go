package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// FeedbackRepository provides typed access to the feedback collection.
type FeedbackRepository struct {
	store *store.Store
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(s *store.Store) *FeedbackRepository {
	return &FeedbackRepository{store: s}
}

// Create inserts a new feedback record and returns the stored record.
func (r *FeedbackRepository) Create(ctx context.Context, feedback models.Feedback) (*models.Feedback, error) {
	doc, err := store.Encode(feedback)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	delete(doc, store.FieldID)
	delete(doc, store.FieldCreatedAt)

	inserted, err := r.store.Insert(ctx, store.Feedback, doc)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	created, err := store.Decode[models.Feedback](inserted)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return &created, nil
}

// ByProject returns feedback recorded against a project.
func (r *FeedbackRepository) ByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	docs, err := r.store.Query(ctx, store.Feedback, func(doc store.Document) bool {
		value, _ := doc["project"].(string)
		return value == projectID
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback by project: %w", err)
	}
	feedback, err := store.DecodeAll[models.Feedback](docs)
	if err != nil {
		return nil, fmt.Errorf("list feedback by project: %w", err)
	}
	return feedback, nil
}

// ByClient returns feedback submitted by a client.
func (r *FeedbackRepository) ByClient(ctx context.Context, clientID string) ([]models.Feedback, error) {
	docs, err := r.store.Query(ctx, store.Feedback, func(doc store.Document) bool {
		value, _ := doc["client"].(string)
		return value == clientID
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback by client: %w", err)
	}
	feedback, err := store.DecodeAll[models.Feedback](docs)
	if err != nil {
		return nil, fmt.Errorf("list feedback by client: %w", err)
	}
	return feedback, nil
}
