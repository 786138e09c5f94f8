package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/proavijit/projectpulse-api/internal/models"
	appErrors "github.com/proavijit/projectpulse-api/pkg/errors"
)

type userListRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserService exposes the seeded user directory. Admin only; used when
// assembling project teams.
type UserService struct {
	repo   userListRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userListRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns every user without credentials, optionally filtered by role.
func (s *UserService) List(ctx context.Context, claims *models.JWTClaims, role models.UserRole) ([]models.UserInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	out := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, models.UserInfo{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	}
	return out, nil
}
