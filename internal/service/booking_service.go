package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ExistsActiveSlot(ctx context.Context, roomID string, weekday models.Weekday, shift models.Shift) (bool, error)
	Create(ctx context.Context, booking *models.Booking) error
	Deactivate(ctx context.Context, id string) error
}

type bookingRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateBookingRequest holds payload for one weekly booking slot.
type CreateBookingRequest struct {
	RoomID     string  `json:"room_id" validate:"required"`
	Weekday    int     `json:"weekday" validate:"min=0,max=6"`
	Shift      string  `json:"shift" validate:"required"`
	CourseName string  `json:"course_name" validate:"required"`
	Instructor string  `json:"instructor"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

// BatchBookingRequest creates the same course across several weekday/shift
// slots in one call.
type BatchBookingRequest struct {
	RoomID     string  `json:"room_id" validate:"required"`
	Weekdays   []int   `json:"weekdays" validate:"required,min=1,dive,min=0,max=6"`
	Shifts     []string `json:"shifts" validate:"required,min=1"`
	CourseName string  `json:"course_name" validate:"required"`
	Instructor string  `json:"instructor"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

// BatchBookingResult reports which slots were created and which were
// skipped because the room already had an active booking there.
type BatchBookingResult struct {
	Created []models.Booking   `json:"created"`
	Skipped []BatchSkippedSlot `json:"skipped"`
}

// BatchSkippedSlot names one slot the batch left untouched.
type BatchSkippedSlot struct {
	Weekday int    `json:"weekday"`
	Shift   string `json:"shift"`
	Reason  string `json:"reason"`
}

// BookingService handles the weekly schedule use-cases.
type BookingService struct {
	repo      bookingRepository
	rooms     bookingRoomReader
	audit     auditWriter
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs the booking service.
func NewBookingService(repo bookingRepository, rooms bookingRoomReader, audit auditWriter, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, rooms: rooms, audit: audit, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns bookings and pagination metadata for the admin surface.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create stores a single booking slot.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest, actorID string) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	shift := models.Shift(req.Shift)
	if !shift.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown shift")
	}
	weekday := models.Weekday(req.Weekday)
	if weekday == models.Sunday {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bookings cannot be placed on Sunday")
	}

	validFrom, validUntil, err := parseValidityWindow(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	exists, err := s.repo.ExistsActiveSlot(ctx, req.RoomID, weekday, shift)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check booking slot")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room already booked for that weekday and shift")
	}

	booking := &models.Booking{
		RoomID:     req.RoomID,
		Weekday:    weekday,
		Shift:      shift,
		CourseName: req.CourseName,
		Instructor: req.Instructor,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		Active:     true,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.metrics.RecordBookingCreated()
	s.recordAudit(ctx, actorID, models.AuditActionBookingCreate, booking.ID, booking)
	s.invalidate(ctx)
	return booking, nil
}

// CreateBatch creates one booking per weekday/shift pair. Slots already
// holding an active booking are skipped rather than failing the batch.
func (s *BookingService) CreateBatch(ctx context.Context, req BatchBookingRequest, actorID string) (*BatchBookingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	shifts := make([]models.Shift, 0, len(req.Shifts))
	for _, raw := range req.Shifts {
		shift := models.Shift(raw)
		if !shift.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown shift")
		}
		shifts = append(shifts, shift)
	}
	for _, day := range req.Weekdays {
		if models.Weekday(day) == models.Sunday {
			return nil, appErrors.Clone(appErrors.ErrValidation, "bookings cannot be placed on Sunday")
		}
	}

	validFrom, validUntil, err := parseValidityWindow(req.ValidFrom, req.ValidUntil)
	if err != nil {
		return nil, err
	}

	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	result := &BatchBookingResult{Created: []models.Booking{}, Skipped: []BatchSkippedSlot{}}
	seen := make(map[string]bool)
	for _, day := range req.Weekdays {
		for _, shift := range shifts {
			key := fmt.Sprintf("%d:%s", day, shift)
			if seen[key] {
				continue
			}
			seen[key] = true

			weekday := models.Weekday(day)
			exists, err := s.repo.ExistsActiveSlot(ctx, req.RoomID, weekday, shift)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check booking slot")
			}
			if exists {
				result.Skipped = append(result.Skipped, BatchSkippedSlot{Weekday: day, Shift: string(shift), Reason: "slot already booked"})
				continue
			}

			booking := models.Booking{
				RoomID:     req.RoomID,
				Weekday:    weekday,
				Shift:      shift,
				CourseName: req.CourseName,
				Instructor: req.Instructor,
				StartTime:  req.StartTime,
				EndTime:    req.EndTime,
				ValidFrom:  validFrom,
				ValidUntil: validUntil,
				Active:     true,
			}
			if err := s.repo.Create(ctx, &booking); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
			}
			s.metrics.RecordBookingCreated()
			result.Created = append(result.Created, booking)
		}
	}

	if len(result.Created) > 0 {
		s.recordAudit(ctx, actorID, models.AuditActionBookingCreate, req.RoomID, result)
		s.invalidate(ctx)
	}
	return result, nil
}

// Deactivate soft-deletes a booking.
func (s *BookingService) Deactivate(ctx context.Context, id, actorID string) error {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate booking")
	}

	s.recordAudit(ctx, actorID, models.AuditActionBookingDelete, booking.ID, booking)
	s.invalidate(ctx)
	return nil
}

func (s *BookingService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(payload)
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "booking",
		ResourceID: &resourceID,
		Details:    details,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record booking audit log", zap.Error(err))
	}
}

func (s *BookingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// parseValidityWindow converts optional ISO dates into the inclusive
// validity bounds stored with a booking.
func parseValidityWindow(from, until *string) (*time.Time, *time.Time, error) {
	parse := func(value *string) (*time.Time, error) {
		if value == nil || *value == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", *value)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dates must use YYYY-MM-DD")
		}
		return &t, nil
	}

	validFrom, err := parse(from)
	if err != nil {
		return nil, nil, err
	}
	validUntil, err := parse(until)
	if err != nil {
		return nil, nil, err
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "validity window end precedes start")
	}
	return validFrom, validUntil, nil
}
