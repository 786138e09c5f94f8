package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// UserRepository provides typed access to the users collection. Users are
// seeded and read-only; there is no write path.
type UserRepository struct {
	store *store.Store
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Query(ctx, store.Users, func(doc store.Document) bool {
		value, _ := doc["email"].(string)
		return value == email
	})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	user, err := store.Decode[models.User](docs[0])
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with the given identifier, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	doc, ok, err := r.store.Get(ctx, store.Users, id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if !ok {
		return nil, nil
	}
	user, err := store.Decode[models.User](doc)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// List returns all users in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	docs, err := r.store.All(ctx, store.Users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := store.DecodeAll[models.User](docs)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
