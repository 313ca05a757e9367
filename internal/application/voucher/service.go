package voucher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	"github.com/kusina-api/internal/pkg/id"
)

// ShippingDiscount is the flat amount a shipping voucher takes off.
const ShippingDiscount = 30.0

type Repository interface {
	Create(ctx context.Context, v *domain.Voucher) error
	ListByUser(ctx context.Context, userID string, unusedOnly bool) ([]domain.Voucher, error)
	GetByCode(ctx context.Context, userID, code string) (*domain.Voucher, error)
	Delete(ctx context.Context, voucherID string) (*domain.Voucher, error)
}

type Broadcaster interface {
	EmitToRoom(room, event string, data any) int
}

type Service interface {
	Validate(ctx context.Context, userID string, req domain.ValidateVoucherRequest) (*domain.VoucherQuote, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Voucher, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Voucher, error)
	Create(ctx context.Context, req domain.CreateVoucherRequest) (*domain.Voucher, error)
	Delete(ctx context.Context, voucherID string) error
}

type service struct {
	repo Repository
	hub  Broadcaster
	now  func() time.Time
}

func NewService(repo Repository, hub Broadcaster) Service {
	return &service{repo: repo, hub: hub, now: time.Now}
}

func (s *service) Validate(ctx context.Context, userID string, req domain.ValidateVoucherRequest) (*domain.VoucherQuote, error) {
	v, err := s.repo.GetByCode(ctx, userID, strings.ToUpper(req.Code))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid voucher code or voucher does not belong to you: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if v.IsUsed {
		return nil, fmt.Errorf("this voucher has already been used: %w", domain.ErrBadRequest)
	}
	if v.Expired(s.now()) {
		return nil, fmt.Errorf("this voucher has expired: %w", domain.ErrBadRequest)
	}
	return &domain.VoucherQuote{Voucher: v, CalculatedDiscount: Discount(v, req.OrderTotal)}, nil
}

// Discount computes what v takes off orderTotal, never more than the total itself.
func Discount(v *domain.Voucher, orderTotal float64) float64 {
	var d float64
	switch v.DiscountType {
	case domain.DiscountPercentage:
		d = orderTotal * v.DiscountValue / 100
	case domain.DiscountFixed:
		d = v.DiscountValue
	case domain.DiscountShipping:
		d = ShippingDiscount
	}
	d = math.Min(d, orderTotal)
	return math.Round(d*100) / 100
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.Voucher, error) {
	vs, err := s.repo.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	s.flagExpired(vs)
	return vs, nil
}

// ListByUser is the admin view: every voucher of the user, newest first.
func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Voucher, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required: %w", domain.ErrBadRequest)
	}
	vs, err := s.repo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].CreatedAt.After(vs[j].CreatedAt) })
	s.flagExpired(vs)
	return vs, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateVoucherRequest) (*domain.Voucher, error) {
	if req.DiscountType == domain.DiscountPercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100%%: %w", domain.ErrBadRequest)
	}
	day, err := time.Parse("2006-01-02", req.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("expires_at must be YYYY-MM-DD: %w", domain.ErrBadRequest)
	}
	code := strings.ToUpper(req.Code)
	if _, err := s.repo.GetByCode(ctx, req.UserID, code); err == nil {
		return nil, fmt.Errorf("voucher code already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	v := &domain.Voucher{
		VoucherID:     id.New(),
		UserID:        req.UserID,
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiresAt:     day.Add(24*time.Hour - time.Second),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	s.hub.EmitToRoom(realtime.UserRoom(v.UserID), realtime.EventVoucherUpdated, realtime.VoucherUpdated{
		Action:  realtime.ActionCreated,
		UserID:  v.UserID,
		Voucher: v,
	})
	return v, nil
}

func (s *service) Delete(ctx context.Context, voucherID string) error {
	v, err := s.repo.Delete(ctx, voucherID)
	if err != nil {
		return err
	}
	s.hub.EmitToRoom(realtime.UserRoom(v.UserID), realtime.EventVoucherUpdated, realtime.VoucherUpdated{
		Action:  realtime.ActionDeleted,
		UserID:  v.UserID,
		Voucher: v,
	})
	return nil
}

func (s *service) flagExpired(vs []domain.Voucher) {
	now := s.now()
	for i := range vs {
		vs[i].IsExpired = vs[i].Expired(now)
	}
}
