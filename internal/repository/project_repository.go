package repository

import (
	"context"
	"fmt"

	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/store"
)

// ProjectRepository provides typed access to the projects collection.
type ProjectRepository struct {
	store *store.Store
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(s *store.Store) *ProjectRepository {
	return &ProjectRepository{store: s}
}

// All returns every project in insertion order.
func (r *ProjectRepository) All(ctx context.Context) ([]models.Project, error) {
	docs, err := r.store.All(ctx, store.Projects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects, err := store.DecodeAll[models.Project](docs)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID returns the project with the given identifier, or nil when absent.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	doc, ok, err := r.store.Get(ctx, store.Projects, id)
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	if !ok {
		return nil, nil
	}
	project, err := store.Decode[models.Project](doc)
	if err != nil {
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return &project, nil
}

// Create inserts a new project and returns the stored record with server
// assigned fields.
func (r *ProjectRepository) Create(ctx context.Context, project models.Project) (*models.Project, error) {
	doc, err := store.Encode(project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	delete(doc, store.FieldID)
	delete(doc, store.FieldCreatedAt)

	inserted, err := r.store.Insert(ctx, store.Projects, doc)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	created, err := store.Decode[models.Project](inserted)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &created, nil
}

// Update shallow-merges the patch over the project, returning the merged
// record or nil when the project does not exist.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch store.Document) (*models.Project, error) {
	merged, ok, err := r.store.Update(ctx, store.Projects, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if !ok {
		return nil, nil
	}
	project, err := store.Decode[models.Project](merged)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &project, nil
}

// Delete removes the project; ok reports whether it existed.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Remove(ctx, store.Projects, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return ok, nil
}

// ByEmployee returns projects whose employee set contains the given user.
func (r *ProjectRepository) ByEmployee(ctx context.Context, userID string) ([]models.Project, error) {
	projects, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Project
	for _, p := range projects {
		if p.HasEmployee(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ByClient returns projects owned by the given client.
func (r *ProjectRepository) ByClient(ctx context.Context, clientID string) ([]models.Project, error) {
	projects, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Project
	for _, p := range projects {
		if p.Client.ID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}
