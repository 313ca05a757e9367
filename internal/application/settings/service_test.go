package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/kusina-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) List(ctx context.Context) ([]domain.StoreHours, error) {
	args := m.Called(ctx)
	hs, _ := args.Get(0).([]domain.StoreHours)
	return hs, args.Error(1)
}
func (m *mockRepo) Replace(ctx context.Context, hours []domain.StoreHours) error {
	return m.Called(ctx, hours).Error(0)
}

var ctx = context.Background()

func clock(s string) *string { return &s }

func TestStoreHours_DefaultsWhenEmpty(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return([]domain.StoreHours{}, nil)

	hours, err := NewService(repo).StoreHours(ctx)
	require.NoError(t, err)
	require.Len(t, hours, 7)
	assert.Equal(t, "Sunday", hours[0].DayName)
	assert.False(t, hours[0].IsOpen)
	assert.Nil(t, hours[0].OpenTime)
	assert.True(t, hours[1].IsOpen)
	assert.Equal(t, "11:00:00", *hours[1].OpenTime)
	assert.Equal(t, "15:00:00", *hours[6].CloseTime)
}

func TestStoreHours_Saved(t *testing.T) {
	repo := &mockRepo{}
	saved := []domain.StoreHours{{DayOfWeek: 1, DayName: "Monday", IsOpen: true, OpenTime: clock("09:00:00"), CloseTime: clock("17:00:00")}}
	repo.On("List", mock.Anything).Return(saved, nil)

	hours, err := NewService(repo).StoreHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, hours)
}

func TestStoreHours_RepoError(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return(nil, errors.New("dynamo down"))

	_, err := NewService(repo).StoreHours(ctx)
	assert.Error(t, err)
}

func TestUpdateStoreHours_ClearsTimesOnClosedDays(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Replace", mock.Anything, mock.MatchedBy(func(hs []domain.StoreHours) bool {
		return len(hs) == 2 && hs[0].OpenTime == nil && hs[1].OpenTime != nil
	})).Return(nil)

	err := NewService(repo).UpdateStoreHours(ctx, []domain.StoreHours{
		{DayOfWeek: 0, DayName: "Sunday", IsOpen: false, OpenTime: clock("10:00:00"), CloseTime: clock("12:00:00")},
		{DayOfWeek: 1, DayName: "Monday", IsOpen: true, OpenTime: clock("10:00:00"), CloseTime: clock("14:00:00")},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateStoreHours_Rejects(t *testing.T) {
	cases := map[string][]domain.StoreHours{
		"duplicate day": {
			{DayOfWeek: 1, DayName: "Monday"},
			{DayOfWeek: 1, DayName: "Monday"},
		},
		"open without times": {
			{DayOfWeek: 2, DayName: "Tuesday", IsOpen: true},
		},
		"closes before opening": {
			{DayOfWeek: 3, DayName: "Wednesday", IsOpen: true, OpenTime: clock("15:00:00"), CloseTime: clock("11:00:00")},
		},
	}
	for name, hours := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &mockRepo{}
			err := NewService(repo).UpdateStoreHours(ctx, hours)
			assert.ErrorIs(t, err, domain.ErrBadRequest)
			repo.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
		})
	}
}
