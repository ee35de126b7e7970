package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
)

type mockBookingSource struct {
	mock.Mock
}

func (m *mockBookingSource) ResourceBookings(ctx context.Context, token string, resourceID uint64, from, to string) ([]models.Booking, error) {
	args := m.Called(ctx, token, resourceID, from, to)
	items, _ := args.Get(0).([]models.Booking)
	return items, args.Error(1)
}

func TestOracle_Load(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	src := new(mockBookingSource)
	src.On("ResourceBookings", mock.Anything, "", uint64(5), "2099-03-01", "2099-03-01").Return([]models.Booking{
		{ID: 1, StartAt: "2099-03-01T10:00:00", EndAt: "2099-03-01T11:30:00", Status: models.BookingApproved},
		{ID: 2, StartAt: "garbage", EndAt: "2099-03-01T12:00:00", Status: models.BookingPending},
		{ID: 3, StartAt: "2099-03-01T09:00:00Z", EndAt: "2099-03-01T10:00:00Z", Status: models.BookingRejected},
		{ID: 4, StartAt: "2099-03-01T19:00:00", EndAt: "2099-03-02T00:00:00", Status: models.BookingPending},
	}, nil).Once()

	o := NewOracle(src, msk)
	occ, err := o.Load(context.Background(), "", 5, "2099-03-01")
	require.NoError(t, err)

	require.Len(t, occ.Bookings, 3)
	assert.Equal(t, uint64(1), occ.Bookings[0].ID)
	assert.Equal(t, "10:00", occ.Bookings[0].Start)
	assert.Equal(t, "11:30", occ.Bookings[0].End)
	// UTC-метка переводится в зону ассистента, статус не учитывается
	assert.Equal(t, "12:00", occ.Bookings[1].Start)
	assert.Equal(t, []scheduler.Interval{{Start: 600, End: 690}, {Start: 720, End: 780}, {Start: 1140, End: 1440}}, occ.Busy())

	cached, found := o.Cached(5, "2099-03-01")
	require.True(t, found)
	assert.Equal(t, occ, cached)

	o.Invalidate(5, "2099-03-01")
	_, found = o.Cached(5, "2099-03-01")
	assert.False(t, found)

	src.AssertExpectations(t)
}

func TestOracle_InvalidateDropsSlots(t *testing.T) {
	src := new(mockBookingSource)
	src.On("ResourceBookings", mock.Anything, "", uint64(5), "2099-03-01", "2099-03-01").Return(nil, nil)
	o := NewOracle(src, time.UTC)

	// ключи, которые никогда не загружались, не заводят слотов
	for i := range 100 {
		o.Invalidate(uint64(i+1), "2099-03-02")
		_, found := o.Cached(uint64(i+1), "2099-03-03")
		assert.False(t, found)
	}
	assert.Empty(t, o.slots)

	_, err := o.Load(context.Background(), "", 5, "2099-03-01")
	require.NoError(t, err)
	assert.Len(t, o.slots, 1)

	o.Invalidate(5, "2099-03-01")
	assert.Empty(t, o.slots)
	_, found := o.Cached(5, "2099-03-01")
	assert.False(t, found)
}

func TestOracle_OvernightBookings(t *testing.T) {
	src := new(mockBookingSource)
	src.On("ResourceBookings", mock.Anything, "", uint64(1), "2099-03-01", "2099-03-01").Return([]models.Booking{
		{ID: 1, StartAt: "2099-03-01T23:00:00", EndAt: "2099-03-02T00:00:00"},
		{ID: 2, StartAt: "2099-03-01T22:00:00", EndAt: "2099-03-02T10:00:00"},
		{ID: 3, StartAt: "2099-03-01T21:00:00", EndAt: "2099-03-03T00:00:00"},
	}, nil)

	occ, err := NewOracle(src, time.UTC).Load(context.Background(), "", 1, "2099-03-01")
	require.NoError(t, err)
	assert.Equal(t, []scheduler.Interval{{Start: 1380, End: 1440}, {Start: 1320, End: 600}, {Start: 1260, End: 0}}, occ.Busy())

	// переход через полночь не занимает рабочее окно
	slot, err := scheduler.DefaultPolicy().FindFreeSlot(60, occ.Busy())
	require.NoError(t, err)
	assert.Equal(t, scheduler.Slot{Start: 480, End: 540}, slot)
}

func TestOracle_LoadEmpty(t *testing.T) {
	src := new(mockBookingSource)
	src.On("ResourceBookings", mock.Anything, "", uint64(1), "2099-03-01", "2099-03-01").Return(nil, nil)

	occ, err := NewOracle(src, time.UTC).Load(context.Background(), "", 1, "2099-03-01")
	require.NoError(t, err)
	assert.Empty(t, occ.Bookings)
	assert.Empty(t, occ.Busy())
}

func TestOracle_InvalidDate(t *testing.T) {
	src := new(mockBookingSource)

	_, err := NewOracle(src, time.UTC).Load(context.Background(), "", 1, "01.03.2099")
	assert.Error(t, err)
	src.AssertNumberOfCalls(t, "ResourceBookings", 0)
}
