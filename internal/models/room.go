package models

import "time"

// Room represents a bookable classroom or laboratory.
type Room struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Capacity      int       `db:"capacity" json:"capacity"`
	HasComputers  bool      `db:"has_computers" json:"has_computers"`
	Software      string    `db:"software" json:"software"`
	Description   string    `db:"description" json:"description"`
	Block         string    `db:"block" json:"block"`
	ImageFilename string    `db:"image_filename" json:"image_filename,omitempty"`
	ExcelFilename string    `db:"excel_filename" json:"excel_filename,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	Block        string
	HasComputers *bool
	MinCapacity  int
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
