package dto

import "github.com/campushub/classroom-api/internal/models"

// RoomDetail is the public room page payload: the room itself, its
// active weekly bookings, and incident reports not hidden by staff.
type RoomDetail struct {
	Room      models.Room       `json:"room"`
	Bookings  []models.Booking  `json:"bookings"`
	Incidents []models.Incident `json:"incidents"`
}
