// Package settings serves the restaurant's weekly opening hours.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/pkg/validate"
)

type Service interface {
	StoreHours(ctx context.Context) ([]domain.StoreHours, error)
	UpdateStoreHours(ctx context.Context, hours []domain.StoreHours) error
}

type Repository interface {
	List(ctx context.Context) ([]domain.StoreHours, error)
	Replace(ctx context.Context, hours []domain.StoreHours) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// StoreHours returns the saved week, or the default week when nothing has
// been saved yet.
func (s *service) StoreHours(ctx context.Context) ([]domain.StoreHours, error) {
	hours, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(hours) == 0 {
		return domain.DefaultStoreHours(), nil
	}
	return hours, nil
}

// UpdateStoreHours replaces the whole schedule. Days left out are removed.
func (s *service) UpdateStoreHours(ctx context.Context, hours []domain.StoreHours) error {
	seen := make(map[int]bool, len(hours))
	for i := range hours {
		h := &hours[i]
		if seen[h.DayOfWeek] {
			return fmt.Errorf("day_of_week %d is listed twice: %w", h.DayOfWeek, domain.ErrBadRequest)
		}
		seen[h.DayOfWeek] = true
		if !h.IsOpen {
			h.OpenTime, h.CloseTime = nil, nil
			continue
		}
		if h.OpenTime == nil || h.CloseTime == nil {
			return fmt.Errorf("%s needs open_time and close_time: %w", h.DayName, domain.ErrBadRequest)
		}
		opens, err1 := time.Parse(validate.ClockLayout, *h.OpenTime)
		closes, err2 := time.Parse(validate.ClockLayout, *h.CloseTime)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%s times must be HH:MM:SS: %w", h.DayName, domain.ErrBadRequest)
		}
		if !opens.Before(closes) {
			return fmt.Errorf("%s must open before it closes: %w", h.DayName, domain.ErrBadRequest)
		}
	}
	return s.repo.Replace(ctx, hours)
}
