package models

import "time"

// Shift partitions an operating day into fixed blocks.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftFullDay   Shift = "fullday"
	ShiftNight     Shift = "night"
)

// Valid reports whether s is one of the four known shifts.
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftFullDay, ShiftNight:
		return true
	}
	return false
}

// Label returns the human-readable shift name.
func (s Shift) Label() string {
	switch s {
	case ShiftMorning:
		return "Morning"
	case ShiftAfternoon:
		return "Afternoon"
	case ShiftFullDay:
		return "Full day"
	case ShiftNight:
		return "Night"
	}
	return string(s)
}

// Shifts lists every shift in display order.
func Shifts() []Shift {
	return []Shift{ShiftMorning, ShiftAfternoon, ShiftFullDay, ShiftNight}
}

// Weekday indexes days Monday=0 through Sunday=6, matching the stored
// booking rows.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Name returns the English day name, or an empty string when out of range.
func (w Weekday) Name() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return weekdayNames[w]
}

// Valid reports whether w is within Monday..Sunday.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

// WeekdayOf converts a calendar date to the Monday=0 indexing.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday has Sunday=0; shift so Monday=0.
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// Booking is a recurring weekly reservation of a room.
type Booking struct {
	ID         string     `db:"id" json:"id"`
	RoomID     string     `db:"room_id" json:"room_id"`
	Weekday    Weekday    `db:"weekday" json:"weekday"`
	Shift      Shift      `db:"shift" json:"shift"`
	CourseName string     `db:"course_name" json:"course_name"`
	Instructor string     `db:"instructor" json:"instructor"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	ValidFrom  *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// InForceOn reports whether the booking's validity window covers the given
// date. Bookings without a window are always in force on their weekday;
// window bounds are inclusive and compared by calendar day.
func (b Booking) InForceOn(date time.Time) bool {
	day := dateOnly(date)
	if b.ValidFrom != nil && day.Before(dateOnly(*b.ValidFrom)) {
		return false
	}
	if b.ValidUntil != nil && day.After(dateOnly(*b.ValidUntil)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BookingFilter describes query params for the admin booking list.
type BookingFilter struct {
	RoomID    string
	Weekday   *Weekday
	Shift     Shift
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
