package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campushub/classroom-api/internal/models"
)

const bookingColumns = "id, room_id, weekday, shift, course_name, instructor, start_time, end_time, valid_from, valid_until, active, created_at"

// BookingRepository provides persistence for recurring weekly bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// List returns bookings with optional filtering and pagination. The admin
// surface lists every booking regardless of the current moment.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Weekday != nil {
		conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
		args = append(args, int(*filter.Weekday))
	}
	if filter.Shift != "" {
		conditions = append(conditions, fmt.Sprintf("shift = $%d", len(args)+1))
		args = append(args, string(filter.Shift))
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"weekday":    true,
		"shift":      true,
		"start_time": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "weekday"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", bookingColumns, base, sortBy, order, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListActiveByRoom returns the active bookings for one room ordered by
// weekday and start time, for the public room page.
func (r *BookingRepository) ListActiveByRoom(ctx context.Context, roomID string) ([]models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE room_id = $1 AND active = TRUE ORDER BY weekday ASC, start_time ASC", bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, roomID); err != nil {
		return nil, fmt.Errorf("list bookings by room: %w", err)
	}
	return bookings, nil
}

// ListForWeekday returns active bookings on a weekday, optionally narrowed
// to a set of shifts. An empty shift set fetches the whole day.
func (r *BookingRepository) ListForWeekday(ctx context.Context, weekday models.Weekday, shifts []models.Shift) ([]models.Booking, error) {
	var bookings []models.Booking
	if len(shifts) == 0 {
		query := fmt.Sprintf("SELECT %s FROM bookings WHERE weekday = $1 AND active = TRUE ORDER BY shift ASC, start_time ASC", bookingColumns)
		if err := r.db.SelectContext(ctx, &bookings, query, int(weekday)); err != nil {
			return nil, fmt.Errorf("list bookings for weekday: %w", err)
		}
		return bookings, nil
	}

	names := make([]string, len(shifts))
	for i, s := range shifts {
		names[i] = string(s)
	}
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE weekday = $1 AND shift = ANY($2) AND active = TRUE ORDER BY shift ASC, start_time ASC", bookingColumns)
	if err := r.db.SelectContext(ctx, &bookings, query, int(weekday), pq.Array(names)); err != nil {
		return nil, fmt.Errorf("list bookings for weekday and shifts: %w", err)
	}
	return bookings, nil
}

// ListActive returns every active booking, for reports and the dashboard.
func (r *BookingRepository) ListActive(ctx context.Context) ([]models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE active = TRUE ORDER BY room_id ASC, weekday ASC, shift ASC", bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	return bookings, nil
}

// ExistsActiveSlot reports whether the room already has an active booking
// for the weekday/shift slot. Batch creation skips such slots.
func (r *BookingRepository) ExistsActiveSlot(ctx context.Context, roomID string, weekday models.Weekday, shift models.Shift) (bool, error) {
	const query = `SELECT 1 FROM bookings WHERE room_id = $1 AND weekday = $2 AND shift = $3 AND active = TRUE LIMIT 1`
	var one int
	err := r.db.GetContext(ctx, &one, query, roomID, int(weekday), string(shift))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check booking slot: %w", err)
	}
	return true, nil
}

// Create stores a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO bookings (id, room_id, weekday, shift, course_name, instructor, start_time, end_time, valid_from, valid_until, active, created_at) VALUES (:id, :room_id, :weekday, :shift, :course_name, :instructor, :start_time, :end_time, :valid_from, :valid_until, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a booking; historical rows stay queryable.
func (r *BookingRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE bookings SET active = FALSE WHERE id = $1", id); err != nil {
		return fmt.Errorf("deactivate booking: %w", err)
	}
	return nil
}
