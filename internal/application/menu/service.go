package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	s3infra "github.com/kusina-api/internal/infrastructure/s3"
	"github.com/kusina-api/internal/pkg/id"
)

type Repository interface {
	Create(ctx context.Context, m *domain.MenuItem) error
	List(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error)
	Update(ctx context.Context, itemID string, updates map[string]interface{}) (*domain.MenuItem, error)
	Delete(ctx context.Context, itemID string) (*domain.MenuItem, error)
}

type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, url string) error
}

type Broadcaster interface {
	EmitToRoom(room, event string, data any) int
}

type Service interface {
	ListPublic(ctx context.Context) ([]domain.MenuItem, error)
	ListAll(ctx context.Context) ([]domain.MenuItem, error)
	Create(ctx context.Context, req domain.MenuItemInput) (*domain.MenuItem, error)
	Update(ctx context.Context, itemID string, req domain.UpdateMenuItemRequest) (*domain.MenuItem, error)
	Delete(ctx context.Context, itemID string) error
	UploadImage(ctx context.Context, itemName, contentType string, r io.Reader) (string, error)
}

type service struct {
	repo   Repository
	images ImageStore
	hub    Broadcaster
	now    func() time.Time
}

func NewService(repo Repository, images ImageStore, hub Broadcaster) Service {
	return &service{repo: repo, images: images, hub: hub, now: time.Now}
}

func (s *service) ListPublic(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.List(ctx, true)
}

func (s *service) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.List(ctx, false)
}

func (s *service) Create(ctx context.Context, req domain.MenuItemInput) (*domain.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price == nil {
		return nil, fmt.Errorf("name and price are required: %w", domain.ErrBadRequest)
	}
	if *req.Price < 0 {
		return nil, fmt.Errorf("price must be a non-negative number: %w", domain.ErrBadRequest)
	}
	now := s.now().UTC()
	item := &domain.MenuItem{
		ItemID:      id.New(),
		Name:        name,
		Slug:        Slugify(name),
		Description: req.Description,
		Price:       roundCents(*req.Price),
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Badge:       req.Badge,
		IsFeatured:  req.IsFeatured,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.emit(realtime.ActionCreated, item.ItemID, item)
	return item, nil
}

func (s *service) Update(ctx context.Context, itemID string, req domain.UpdateMenuItemRequest) (*domain.MenuItem, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", domain.ErrBadRequest)
		}
		updates["name"] = name
		updates["slug"] = Slugify(name)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price must be a non-negative number: %w", domain.ErrBadRequest)
		}
		updates["price"] = roundCents(*req.Price)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Badge != nil {
		updates["badge"] = *req.Badge
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no valid fields to update: %w", domain.ErrBadRequest)
	}

	item, err := s.repo.Update(ctx, itemID, updates)
	if err != nil {
		return nil, err
	}
	s.emit(realtime.ActionUpdated, itemID, item)
	return item, nil
}

func (s *service) Delete(ctx context.Context, itemID string) error {
	item, err := s.repo.Delete(ctx, itemID)
	if err != nil {
		return err
	}
	// The item is already gone; a leftover image only wastes space.
	if item.ImageURL != nil && *item.ImageURL != "" {
		if err := s.images.Remove(ctx, *item.ImageURL); err != nil {
			slog.Warn("menu image cleanup failed", "item_id", itemID, "error", err)
		}
	}
	s.emit(realtime.ActionDeleted, itemID, nil)
	return nil
}

// UploadImage stores a menu photo and returns its public URL. The object key
// is derived from the item name so uploads are recognisable in the bucket.
func (s *service) UploadImage(ctx context.Context, itemName, contentType string, r io.Reader) (string, error) {
	ext, ok := s3infra.ImageExtension(contentType)
	if !ok {
		return "", fmt.Errorf("only image files are allowed: %w", domain.ErrBadRequest)
	}
	slug := Slugify(itemName)
	if slug == "" {
		slug = "menu-item"
	}
	key := fmt.Sprintf("menu/%s-%s%s", slug, strings.ToLower(id.New()), ext)
	return s.images.Upload(ctx, key, r, contentType)
}

func (s *service) emit(action, itemID string, item *domain.MenuItem) {
	payload := realtime.MenuUpdated{Action: action, ItemID: itemID}
	if item != nil {
		payload.Item = item
	}
	s.hub.EmitToRoom(realtime.AdminRoom, realtime.EventMenuUpdated, payload)
}

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	dashes       = regexp.MustCompile(`-+`)
)

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
