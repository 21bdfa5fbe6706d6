package dto

import "github.com/campushub/classroom-api/internal/models"

// SlotBooking is one occupied weekday/shift cell of a room's weekly grid.
type SlotBooking struct {
	Weekday     int          `json:"weekday"`
	WeekdayName string       `json:"weekday_name"`
	Shift       models.Shift `json:"shift"`
	ShiftLabel  string       `json:"shift_label"`
	CourseName  string       `json:"course_name"`
	Instructor  string       `json:"instructor,omitempty"`
	StartTime   string       `json:"start_time,omitempty"`
	EndTime     string       `json:"end_time,omitempty"`
}

// RoomOccupancy summarises a single room's weekly schedule load.
type RoomOccupancy struct {
	RoomID        string        `json:"room_id"`
	RoomName      string        `json:"room_name"`
	Block         string        `json:"block"`
	OccupiedSlots int           `json:"occupied_slots"`
	Slots         []SlotBooking `json:"slots"`
}

// DashboardStats aggregates occupancy across all rooms over the weekly
// slot grid (six operating days, four shifts, no Saturday night).
type DashboardStats struct {
	TotalRooms    int             `json:"total_rooms"`
	TotalSlots    int             `json:"total_slots"`
	OccupiedSlots int             `json:"occupied_slots"`
	FreeSlots     int             `json:"free_slots"`
	OccupancyRate float64         `json:"occupancy_rate"`
	Rooms         []RoomOccupancy `json:"rooms"`
}
