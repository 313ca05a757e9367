// Package user holds the admin side of account management: paging through
// accounts, changing roles, deactivating and deleting them.
package user

import (
	"context"
	"fmt"
	"sort"

	"github.com/kusina-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldRole     = "role"
	fieldIsActive = "is_active"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, actorID, userID string) error
}

type Repository interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns one page of accounts, newest first within the page.
func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	users, next, err := s.repo.ScanPage(ctx, int32(limit), cursor)
	if err != nil {
		return nil, "", err
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, next, nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleCustomer:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role, must be customer or admin: %w", domain.ErrBadRequest)
		}
	}
	if req.IsActive != nil {
		updates[fieldIsActive] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// Delete hard-deletes userID. Admins cannot remove their own account.
func (s *service) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrBadRequest)
	}
	return s.repo.Delete(ctx, userID)
}
