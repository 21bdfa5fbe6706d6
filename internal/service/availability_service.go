package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/dto"
	"github.com/campushub/classroom-api/internal/models"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
)

// shiftWindow bounds a shift in minutes since local midnight. Both ends
// are inclusive.
type shiftWindow struct {
	start int
	end   int
}

func (w shiftWindow) contains(minute int) bool {
	return minute >= w.start && minute <= w.end
}

// Operating windows per shift, in local clock time. Full day deliberately
// overlaps morning and afternoon; that overlap is what makes a full-day
// booking occupy a room during the narrower shifts.
var shiftWindows = map[models.Shift]shiftWindow{
	models.ShiftMorning:   {start: 7*60 + 30, end: 12 * 60},
	models.ShiftAfternoon: {start: 13 * 60, end: 18 * 60},
	models.ShiftNight:     {start: 18*60 + 30, end: 22*60 + 30},
	models.ShiftFullDay:   {start: 8 * 60, end: 17 * 60},
}

// shiftPriority orders concurrent shifts when picking the one to evaluate
// at the current moment.
var shiftPriority = []models.Shift{models.ShiftMorning, models.ShiftAfternoon, models.ShiftNight, models.ShiftFullDay}

// AvailabilityQuery carries the resolver inputs. A zero Date means "now";
// an empty Shift (or "all") means no shift filter.
type AvailabilityQuery struct {
	Date  time.Time
	Shift models.Shift
}

type roomDirectory interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type scheduleStore interface {
	ListForWeekday(ctx context.Context, weekday models.Weekday, shifts []models.Shift) ([]models.Booking, error)
}

// AvailabilityService computes which rooms are free and which are occupied
// for a date and optional shift.
type AvailabilityService struct {
	rooms    roomDirectory
	bookings scheduleStore
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewAvailabilityService constructs the availability service. The location
// defines the institution's local clock for "current moment" decisions.
func NewAvailabilityService(rooms roomDirectory, bookings scheduleStore, location *time.Location, logger *zap.Logger) *AvailabilityService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		rooms:    rooms,
		bookings: bookings,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve answers which rooms are free and which are occupied on the query
// date, restricted to the query shift when one is given.
func (s *AvailabilityService) Resolve(ctx context.Context, query AvailabilityQuery) (*dto.AvailabilityResult, error) {
	if query.Shift != "" && !query.Shift.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown shift")
	}

	now := s.now().In(s.location)
	date := query.Date
	if date.IsZero() {
		date = now
	} else {
		// Reinterpret the supplied calendar day in the institution's zone
		// so the weekday never shifts across a zone boundary.
		y, m, d := query.Date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, s.location)
	}

	// The moment-in-time rules apply whenever the target day is the current
	// calendar day in the institution's zone, whether the caller omitted
	// the date or spelled today out explicitly.
	currentMoment := sameDay(date, now)

	weekday := models.WeekdayOf(date)

	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	result := &dto.AvailabilityResult{
		Date:       date.Format("2006-01-02"),
		Weekday:    weekday.Name(),
		TotalRooms: len(rooms),
	}

	// Sunday closure: every room is free and no bookings apply, even if a
	// stray row carries weekday=6.
	if weekday == models.Sunday {
		result.Closed = true
		result.PeriodLabel = weekday.Name() + " - Closed"
		result.Available = rooms
		result.Occupied = []dto.OccupiedRoom{}
		return result, nil
	}

	shifts, label, skipFetch := s.shiftsToEvaluate(query.Shift, currentMoment, now)
	result.PeriodLabel = weekday.Name() + " - " + label
	if skipFetch {
		result.Available = rooms
		result.Occupied = []dto.OccupiedRoom{}
		return result, nil
	}

	candidates, err := s.bookings.ListForWeekday(ctx, weekday, shifts)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	occupiedBy := make(map[string][]models.Booking)
	for _, booking := range candidates {
		if !booking.InForceOn(date) {
			continue
		}
		occupiedBy[booking.RoomID] = append(occupiedBy[booking.RoomID], booking)
	}

	available := make([]models.Room, 0, len(rooms))
	occupied := make([]dto.OccupiedRoom, 0, len(occupiedBy))
	for _, room := range rooms {
		if bookings, ok := occupiedBy[room.ID]; ok {
			occupied = append(occupied, dto.OccupiedRoom{Room: room, Bookings: bookings})
		} else {
			available = append(available, room)
		}
	}

	result.Available = available
	result.Occupied = occupied
	return result, nil
}

// shiftsToEvaluate picks which shifts the schedule store should be queried
// for, plus the period label. A nil shift slice means the whole weekday.
// skipFetch signals that no bookings apply at all (outside operating hours).
func (s *AvailabilityService) shiftsToEvaluate(filter models.Shift, currentMoment bool, now time.Time) (shifts []models.Shift, label string, skipFetch bool) {
	if filter != "" {
		// Explicit shift: a full-day booking also blocks every narrower
		// shift, so narrow queries pull full-day rows in too. The reverse
		// does not hold: a full-day query matches only full-day rows.
		shifts = []models.Shift{filter}
		if filter != models.ShiftFullDay {
			shifts = append(shifts, models.ShiftFullDay)
		}
		return shifts, filter.Label(), false
	}

	if !currentMoment {
		// Past or future date: the caller wants the complete occupancy
		// picture for that day, so no shift narrowing happens.
		return nil, "All shifts", false
	}

	minute := now.Hour()*60 + now.Minute()
	var active []models.Shift
	for _, shift := range shiftPriority {
		if shiftWindows[shift].contains(minute) {
			active = append(active, shift)
		}
	}
	if len(active) == 0 {
		return nil, "Outside operating hours", true
	}

	primary := active[0]
	shifts = []models.Shift{primary}
	if primary == models.ShiftMorning || primary == models.ShiftAfternoon {
		shifts = append(shifts, models.ShiftFullDay)
	}

	labels := make([]string, len(active))
	for i, shift := range active {
		labels[i] = shift.Label()
	}
	return shifts, strings.Join(labels, " / "), false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
