package menu

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *mockRepo) List(ctx context.Context, activeOnly bool) ([]domain.MenuItem, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}
func (m *mockRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) (*domain.MenuItem, error) {
	args := m.Called(ctx, itemID, updates)
	if it, _ := args.Get(0).(*domain.MenuItem); it != nil {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRepo) Delete(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	args := m.Called(ctx, itemID)
	if it, _ := args.Get(0).(*domain.MenuItem); it != nil {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeImages struct {
	key         string
	contentType string
	body        string
	removed     []string
}

func (f *fakeImages) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	b, _ := io.ReadAll(r)
	f.key, f.contentType, f.body = key, contentType, string(b)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeImages) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type emitted struct {
	room  string
	event string
	data  any
}

type recorder struct{ emits []emitted }

func (r *recorder) EmitToRoom(room, event string, data any) int {
	r.emits = append(r.emits, emitted{room, event, data})
	return 1
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }

func TestSlugify(t *testing.T) {
	assert.Equal(t, "chicken-adobo", Slugify("Chicken Adobo"))
	assert.Equal(t, "halo-halo-special", Slugify("  Halo--Halo   Special! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreate_RoundsPriceAndEmitsToAdmins(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.MenuItem")).Return(nil)
	hub := &recorder{}
	svc := NewService(repo, &fakeImages{}, hub)

	item, err := svc.Create(context.Background(), domain.MenuItemInput{Name: "Chicken Adobo", Price: floatPtr(149.999)})
	require.NoError(t, err)
	assert.Equal(t, "chicken-adobo", item.Slug)
	assert.Equal(t, 150.0, item.Price)
	assert.True(t, item.IsActive)

	require.Len(t, hub.emits, 1)
	assert.Equal(t, realtime.AdminRoom, hub.emits[0].room)
	assert.Equal(t, realtime.EventMenuUpdated, hub.emits[0].event)
	payload := hub.emits[0].data.(realtime.MenuUpdated)
	assert.Equal(t, realtime.ActionCreated, payload.Action)
	assert.Equal(t, item.ItemID, payload.ItemID)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&mockRepo{}, &fakeImages{}, &recorder{})

	_, err := svc.Create(context.Background(), domain.MenuItemInput{Name: "Adobo"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Create(context.Background(), domain.MenuItemInput{Name: "Adobo", Price: floatPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Create(context.Background(), domain.MenuItemInput{Name: "  ", Price: floatPtr(10)})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdate_RenamesSlug(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Update", mock.Anything, "m1", map[string]interface{}{
		"name":      "Pork Sinigang",
		"slug":      "pork-sinigang",
		"is_active": false,
	}).Return(&domain.MenuItem{ItemID: "m1", Name: "Pork Sinigang"}, nil)
	hub := &recorder{}
	svc := NewService(repo, &fakeImages{}, hub)

	_, err := svc.Update(context.Background(), "m1", domain.UpdateMenuItemRequest{Name: strPtr("Pork Sinigang"), IsActive: boolPtr(false)})
	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.Equal(t, realtime.ActionUpdated, hub.emits[0].data.(realtime.MenuUpdated).Action)
}

func TestUpdate_NothingToChange(t *testing.T) {
	svc := NewService(&mockRepo{}, &fakeImages{}, &recorder{})
	_, err := svc.Update(context.Background(), "m1", domain.UpdateMenuItemRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Delete", mock.Anything, "m1").Return(&domain.MenuItem{ItemID: "m1", ImageURL: strPtr("https://cdn.example.com/menu/adobo.jpg")}, nil)
	repo.On("Delete", mock.Anything, "m2").Return(nil, domain.ErrNotFound)
	hub := &recorder{}
	img := &fakeImages{}
	svc := NewService(repo, img, hub)

	require.NoError(t, svc.Delete(context.Background(), "m1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "m2"), domain.ErrNotFound)
	assert.Equal(t, []string{"https://cdn.example.com/menu/adobo.jpg"}, img.removed)

	require.Len(t, hub.emits, 1)
	payload := hub.emits[0].data.(realtime.MenuUpdated)
	assert.Equal(t, realtime.ActionDeleted, payload.Action)
	assert.Equal(t, "m1", payload.ItemID)
	assert.Nil(t, payload.Item)
}

func TestUploadImage(t *testing.T) {
	img := &fakeImages{}
	svc := NewService(&mockRepo{}, img, &recorder{})

	url, err := svc.UploadImage(context.Background(), "Halo Halo", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.key, "menu/halo-halo-"))
	assert.True(t, strings.HasSuffix(img.key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+img.key, url)
	assert.Equal(t, "png", img.body)
}

func TestUploadImage_RejectsNonImages(t *testing.T) {
	img := &fakeImages{}
	svc := NewService(&mockRepo{}, img, &recorder{})

	_, err := svc.UploadImage(context.Background(), "x", "application/pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Empty(t, img.key)
}
