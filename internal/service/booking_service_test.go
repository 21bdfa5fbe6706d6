package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
)

type fakeBookingRepo struct {
	bookings []models.Booking
	existing map[string]bool
	created  []models.Booking
	fail     error
}

func slotKey(roomID string, weekday models.Weekday, shift models.Shift) string {
	return roomID + ":" + weekday.Name() + ":" + string(shift)
}

func (f *fakeBookingRepo) List(context.Context, models.BookingFilter) ([]models.Booking, int, error) {
	return f.bookings, len(f.bookings), f.fail
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id string) (*models.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			return &f.bookings[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeBookingRepo) ExistsActiveSlot(_ context.Context, roomID string, weekday models.Weekday, shift models.Shift) (bool, error) {
	if f.fail != nil {
		return false, f.fail
	}
	return f.existing[slotKey(roomID, weekday, shift)], nil
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	if f.fail != nil {
		return f.fail
	}
	if booking.ID == "" {
		booking.ID = "generated"
	}
	f.created = append(f.created, *booking)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[slotKey(booking.RoomID, booking.Weekday, booking.Shift)] = true
	return nil
}

func (f *fakeBookingRepo) Deactivate(_ context.Context, id string) error {
	return f.fail
}

type fakeRoomFinder struct {
	rooms map[string]models.Room
}

func (f *fakeRoomFinder) FindByID(_ context.Context, id string) (*models.Room, error) {
	if room, ok := f.rooms[id]; ok {
		return &room, nil
	}
	return nil, sql.ErrNoRows
}

type fakeAudit struct {
	entries []models.AuditLog
}

func (f *fakeAudit) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func newBookingService(repo *fakeBookingRepo, rooms *fakeRoomFinder, audit *fakeAudit) *BookingService {
	return NewBookingService(repo, rooms, audit, nil, nil, nil, zap.NewNop())
}

func TestCreateBookingRejectsSunday(t *testing.T) {
	svc := newBookingService(&fakeBookingRepo{}, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, &fakeAudit{})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID: "r1", Weekday: int(models.Sunday), Shift: "morning", CourseName: "Welding",
	}, "u1")
	require.Error(t, err)
}

func TestCreateBookingConflict(t *testing.T) {
	repo := &fakeBookingRepo{existing: map[string]bool{slotKey("r1", models.Monday, models.ShiftMorning): true}}
	svc := newBookingService(repo, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, &fakeAudit{})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID: "r1", Weekday: int(models.Monday), Shift: "morning", CourseName: "Welding",
	}, "u1")
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestCreateBookingSuccess(t *testing.T) {
	repo := &fakeBookingRepo{}
	audit := &fakeAudit{}
	svc := newBookingService(repo, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, audit)

	from := "2026-02-01"
	until := "2026-06-30"
	booking, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID: "r1", Weekday: int(models.Tuesday), Shift: "afternoon", CourseName: "Electronics",
		ValidFrom: &from, ValidUntil: &until,
	}, "u1")
	require.NoError(t, err)

	assert.True(t, booking.Active)
	require.NotNil(t, booking.ValidFrom)
	assert.Equal(t, "2026-02-01", booking.ValidFrom.Format("2006-01-02"))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionBookingCreate, audit.entries[0].Action)
}

func TestCreateBookingRejectsInvertedWindow(t *testing.T) {
	svc := newBookingService(&fakeBookingRepo{}, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, &fakeAudit{})

	from := "2026-06-30"
	until := "2026-02-01"
	_, err := svc.Create(context.Background(), CreateBookingRequest{
		RoomID: "r1", Weekday: int(models.Monday), Shift: "morning", CourseName: "Welding",
		ValidFrom: &from, ValidUntil: &until,
	}, "u1")
	require.Error(t, err)
}

func TestCreateBatchSkipsOccupiedSlots(t *testing.T) {
	repo := &fakeBookingRepo{existing: map[string]bool{slotKey("r1", models.Monday, models.ShiftMorning): true}}
	svc := newBookingService(repo, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, &fakeAudit{})

	result, err := svc.CreateBatch(context.Background(), BatchBookingRequest{
		RoomID:     "r1",
		Weekdays:   []int{int(models.Monday), int(models.Tuesday)},
		Shifts:     []string{"morning"},
		CourseName: "Mechanics",
	}, "u1")
	require.NoError(t, err)

	assert.Len(t, result.Created, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int(models.Monday), result.Skipped[0].Weekday)
	assert.Equal(t, "morning", result.Skipped[0].Shift)
}

func TestCreateBatchDeduplicatesSlots(t *testing.T) {
	repo := &fakeBookingRepo{}
	svc := newBookingService(repo, &fakeRoomFinder{rooms: map[string]models.Room{"r1": {ID: "r1"}}}, &fakeAudit{})

	result, err := svc.CreateBatch(context.Background(), BatchBookingRequest{
		RoomID:     "r1",
		Weekdays:   []int{int(models.Monday), int(models.Monday)},
		Shifts:     []string{"morning", "morning"},
		CourseName: "Mechanics",
	}, "u1")
	require.NoError(t, err)

	assert.Len(t, result.Created, 1)
	assert.Empty(t, result.Skipped)
}

func TestCreateBatchUnknownRoom(t *testing.T) {
	svc := newBookingService(&fakeBookingRepo{}, &fakeRoomFinder{}, &fakeAudit{})

	_, err := svc.CreateBatch(context.Background(), BatchBookingRequest{
		RoomID:     "missing",
		Weekdays:   []int{int(models.Monday)},
		Shifts:     []string{"morning"},
		CourseName: "Mechanics",
	}, "u1")
	require.Error(t, err)
}

func TestDeactivateBookingNotFound(t *testing.T) {
	svc := newBookingService(&fakeBookingRepo{}, &fakeRoomFinder{}, &fakeAudit{})
	err := svc.Deactivate(context.Background(), "missing", "u1")
	require.Error(t, err)
}
