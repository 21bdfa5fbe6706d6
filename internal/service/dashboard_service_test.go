package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
)

type fakeActiveBookings struct {
	bookings []models.Booking
	err      error
}

func (f *fakeActiveBookings) ListActive(context.Context) ([]models.Booking, error) {
	return f.bookings, f.err
}

func TestSlotsPerRoom(t *testing.T) {
	// Six operating days, four shifts, no Saturday night.
	assert.Equal(t, 23, slotsPerRoom())
}

func TestDashboardStats(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{
		{ID: "a", Name: "Lab A", Block: "A"},
		{ID: "b", Name: "Lab B", Block: "B"},
	}}
	bookings := &fakeActiveBookings{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, CourseName: "Welding", Active: true},
		{ID: "b2", RoomID: "a", Weekday: models.Tuesday, Shift: models.ShiftFullDay, CourseName: "Mechanics", Active: true},
		{ID: "b3", RoomID: "b", Weekday: models.Saturday, Shift: models.ShiftNight, CourseName: "Stray", Active: true},
	}}
	svc := NewDashboardService(rooms, bookings, nil, time.Minute, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalRooms)
	assert.Equal(t, 46, stats.TotalSlots)
	// The Saturday-night row falls outside the grid and is not counted.
	assert.Equal(t, 2, stats.OccupiedSlots)
	assert.Equal(t, 44, stats.FreeSlots)
	assert.InDelta(t, 2.0/46.0, stats.OccupancyRate, 1e-9)

	require.Len(t, stats.Rooms, 2)
	assert.Equal(t, 2, stats.Rooms[0].OccupiedSlots)
	assert.Equal(t, 0, stats.Rooms[1].OccupiedSlots)
}

func TestDashboardStatsDuplicateSlotCountedOnce(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{{ID: "a", Name: "Lab A"}}}
	bookings := &fakeActiveBookings{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
		{ID: "b2", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := NewDashboardService(rooms, bookings, nil, time.Minute, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OccupiedSlots)
}

func TestDashboardStatsPropagatesErrors(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{{ID: "a"}}}
	bookings := &fakeActiveBookings{err: assert.AnError}
	svc := NewDashboardService(rooms, bookings, nil, time.Minute, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}
