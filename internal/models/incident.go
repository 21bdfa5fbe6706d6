package models

import "time"

// Incident is a visitor-submitted problem report tied to a room.
type Incident struct {
	ID            string     `db:"id" json:"id"`
	RoomID        string     `db:"room_id" json:"room_id"`
	ReporterName  string     `db:"reporter_name" json:"reporter_name"`
	ReporterEmail string     `db:"reporter_email" json:"reporter_email"`
	Description   string     `db:"description" json:"description"`
	Resolved      bool       `db:"resolved" json:"resolved"`
	Response      *string    `db:"response" json:"response,omitempty"`
	RespondedAt   *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	Hidden        bool       `db:"hidden" json:"hidden"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// IncidentFilter describes query params for the admin incident list.
type IncidentFilter struct {
	RoomID    string
	Resolved  *bool
	Hidden    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
