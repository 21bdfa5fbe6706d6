package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
)

type fakeRoomDirectory struct {
	rooms []models.Room
	err   error
}

func (f *fakeRoomDirectory) ListAll(context.Context) ([]models.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms, nil
}

type fakeScheduleStore struct {
	bookings   []models.Booking
	err        error
	calls      int
	gotWeekday models.Weekday
	gotShifts  []models.Shift
}

func (f *fakeScheduleStore) ListForWeekday(_ context.Context, weekday models.Weekday, shifts []models.Shift) ([]models.Booking, error) {
	f.calls++
	f.gotWeekday = weekday
	f.gotShifts = shifts
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Weekday != weekday || !b.Active {
			continue
		}
		if len(shifts) > 0 && !shiftIn(shifts, b.Shift) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func shiftIn(shifts []models.Shift, s models.Shift) bool {
	for _, candidate := range shifts {
		if candidate == s {
			return true
		}
	}
	return false
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func newAvailability(rooms *fakeRoomDirectory, store *fakeScheduleStore, now time.Time) *AvailabilityService {
	svc := NewAvailabilityService(rooms, store, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

var (
	roomA = models.Room{ID: "a", Name: "Lab A"}
	roomB = models.Room{ID: "b", Name: "Lab B"}
)

// The Monday used as the explicit target date across these tests.
var farMonday = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

func TestResolveSundayClosed(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Sunday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, farMonday)

	sunday := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: sunday, Shift: models.ShiftMorning})
	require.NoError(t, err)

	assert.True(t, result.Closed)
	assert.Equal(t, "Sunday - Closed", result.PeriodLabel)
	assert.Len(t, result.Available, 2)
	assert.Empty(t, result.Occupied)
	assert.Zero(t, store.calls)
}

func TestResolveValidityWindowInclusive(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true,
			ValidFrom: datePtr(2026, time.September, 7), ValidUntil: datePtr(2026, time.September, 21)},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	cases := []struct {
		name     string
		date     time.Time
		occupied bool
	}{
		{"monday before window", time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), false},
		{"window start", time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), true},
		{"inside window", time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC), true},
		{"window end", time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC), true},
		{"monday after window", time.Date(2026, time.September, 28, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: tc.date, Shift: models.ShiftMorning})
			require.NoError(t, err)
			if tc.occupied {
				assert.Len(t, result.Occupied, 1)
				assert.Empty(t, result.Available)
			} else {
				assert.Empty(t, result.Occupied)
				assert.Len(t, result.Available, 1)
			}
		})
	}
}

func TestResolveNoWindowAppliesEveryWeek(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Tuesday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	for _, day := range []int{1, 8, 15} {
		date := time.Date(2026, time.September, day, 0, 0, 0, 0, time.UTC)
		result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: date, Shift: models.ShiftMorning})
		require.NoError(t, err)
		assert.Len(t, result.Occupied, 1)
	}
}

func TestResolveMorningAbsorbsFullDay(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftFullDay, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday, Shift: models.ShiftMorning})
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.Shift{models.ShiftMorning, models.ShiftFullDay}, store.gotShifts)
	require.Len(t, result.Occupied, 1)
	assert.Equal(t, "a", result.Occupied[0].Room.ID)
}

func TestResolveFullDayDoesNotAbsorbNarrow(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday, Shift: models.ShiftFullDay})
	require.NoError(t, err)

	assert.Equal(t, []models.Shift{models.ShiftFullDay}, store.gotShifts)
	assert.Empty(t, result.Occupied)
	assert.Len(t, result.Available, 1)
}

func TestResolveShiftScenarioTuesdayMorning(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Tuesday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	tuesday := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	morning, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: tuesday, Shift: models.ShiftMorning})
	require.NoError(t, err)
	assert.Len(t, morning.Occupied, 1)

	afternoon, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: tuesday, Shift: models.ShiftAfternoon})
	require.NoError(t, err)
	assert.Empty(t, afternoon.Occupied)
	assert.Len(t, afternoon.Available, 1)
}

func TestResolveWindowedFullDayScenario(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "b", Weekday: models.Wednesday, Shift: models.ShiftFullDay, Active: true,
			ValidFrom: datePtr(2024, time.January, 1), ValidUntil: datePtr(2024, time.June, 30)},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	inWindow := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: inWindow, Shift: models.ShiftMorning})
	require.NoError(t, err)
	assert.Len(t, result.Occupied, 1)

	pastWindow := time.Date(2024, time.August, 7, 0, 0, 0, 0, time.UTC)
	result, err = svc.Resolve(context.Background(), AvailabilityQuery{Date: pastWindow, Shift: models.ShiftMorning})
	require.NoError(t, err)
	assert.Empty(t, result.Occupied)
	assert.Len(t, result.Available, 1)
}

func TestResolveCurrentMomentNightOnly(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftNight, Active: true},
		{ID: "b2", RoomID: "b", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
		{ID: "b3", RoomID: "b", Weekday: models.Monday, Shift: models.ShiftFullDay, Active: true},
	}}
	now := time.Date(2026, time.August, 31, 20, 0, 0, 0, time.UTC)
	svc := newAvailability(rooms, store, now)

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{})
	require.NoError(t, err)

	assert.Equal(t, []models.Shift{models.ShiftNight}, store.gotShifts)
	require.Len(t, result.Occupied, 1)
	assert.Equal(t, "a", result.Occupied[0].Room.ID)
	assert.Len(t, result.Available, 1)
	assert.Equal(t, "Monday - Night", result.PeriodLabel)
}

func TestResolveCurrentMomentMorningAddsFullDay(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "b", Weekday: models.Monday, Shift: models.ShiftFullDay, Active: true},
	}}
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	svc := newAvailability(rooms, store, now)

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []models.Shift{models.ShiftMorning, models.ShiftFullDay}, store.gotShifts)
	require.Len(t, result.Occupied, 1)
	assert.Equal(t, "b", result.Occupied[0].Room.ID)
	assert.Equal(t, "Monday - Morning / Full day", result.PeriodLabel)
}

func TestResolveOutsideOperatingHours(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	now := time.Date(2026, time.August, 31, 6, 0, 0, 0, time.UTC)
	svc := newAvailability(rooms, store, now)

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{})
	require.NoError(t, err)

	assert.Zero(t, store.calls)
	assert.Len(t, result.Available, 1)
	assert.Empty(t, result.Occupied)
	assert.Equal(t, "Monday - Outside operating hours", result.PeriodLabel)
}

func TestResolveArbitraryDateFetchesWholeDay(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftNight, Active: true},
		{ID: "b2", RoomID: "b", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday})
	require.NoError(t, err)

	assert.Nil(t, store.gotShifts)
	assert.Len(t, result.Occupied, 2)
	assert.Empty(t, result.Available)
	assert.Equal(t, "Monday - All shifts", result.PeriodLabel)
}

func TestResolveExplicitTodayUsesCurrentShift(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftNight, Active: true},
		{ID: "b2", RoomID: "b", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	// Spelling today's date out must behave exactly like omitting it.
	now := time.Date(2026, time.September, 7, 20, 0, 0, 0, time.UTC)
	svc := newAvailability(rooms, store, now)

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday})
	require.NoError(t, err)

	assert.Equal(t, []models.Shift{models.ShiftNight}, store.gotShifts)
	require.Len(t, result.Occupied, 1)
	assert.Equal(t, "a", result.Occupied[0].Room.ID)
	assert.Equal(t, "Monday - Night", result.PeriodLabel)
}

func TestResolveDeterministic(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA, roomB}}
	store := &fakeScheduleStore{bookings: []models.Booking{
		{ID: "b1", RoomID: "a", Weekday: models.Monday, Shift: models.ShiftMorning, Active: true},
	}}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	query := AvailabilityQuery{Date: farMonday, Shift: models.ShiftMorning}
	first, err := svc.Resolve(context.Background(), query)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveStoreErrorPropagates(t *testing.T) {
	rooms := &fakeRoomDirectory{rooms: []models.Room{roomA}}
	store := &fakeScheduleStore{err: errors.New("connection refused")}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestResolveRoomDirectoryErrorPropagates(t *testing.T) {
	rooms := &fakeRoomDirectory{err: errors.New("connection refused")}
	store := &fakeScheduleStore{}
	svc := newAvailability(rooms, store, time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))

	result, err := svc.Resolve(context.Background(), AvailabilityQuery{Date: farMonday})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestResolveRejectsUnknownShift(t *testing.T) {
	svc := newAvailability(&fakeRoomDirectory{}, &fakeScheduleStore{}, time.Now())

	_, err := svc.Resolve(context.Background(), AvailabilityQuery{Shift: models.Shift("evening")})
	require.Error(t, err)
}
