package dto

import "github.com/campushub/classroom-api/internal/models"

// OccupiedRoom pairs a room with the bookings that occupy it for the
// resolved period.
type OccupiedRoom struct {
	Room     models.Room      `json:"room"`
	Bookings []models.Booking `json:"bookings"`
}

// AvailabilityResult is the resolver output for one date/shift query.
type AvailabilityResult struct {
	Date        string         `json:"date"`
	Weekday     string         `json:"weekday"`
	PeriodLabel string         `json:"period_label"`
	Closed      bool           `json:"closed"`
	TotalRooms  int            `json:"total_rooms"`
	Available   []models.Room  `json:"available"`
	Occupied    []OccupiedRoom `json:"occupied"`
}
