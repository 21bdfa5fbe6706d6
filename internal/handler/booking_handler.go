package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/service"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
	"github.com/campushub/classroom-api/pkg/response"
)

type bookingService interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	Create(ctx context.Context, req service.CreateBookingRequest, actorID string) (*models.Booking, error)
	CreateBatch(ctx context.Context, req service.BatchBookingRequest, actorID string) (*service.BatchBookingResult, error)
	Deactivate(ctx context.Context, id, actorID string) error
}

// BookingHandler exposes recurring booking management over HTTP.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param room_id query string false "Room ID"
// @Param weekday query int false "Weekday (0=Monday..6=Sunday)"
// @Param shift query string false "Shift"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		RoomID:    strings.TrimSpace(c.Query("room_id")),
		Shift:     models.Shift(strings.TrimSpace(c.Query("shift"))),
		Active:    queryBool(c, "active"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := strings.TrimSpace(c.Query("weekday")); raw != "" {
		day := models.Weekday(queryInt(c, "weekday", -1))
		if !day.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekday must be between 0 and 6"))
			return
		}
		filter.Weekday = &day
	}

	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Create godoc
// @Summary Create a weekly recurring booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	booking, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// CreateBatch godoc
// @Summary Create the same booking across several weekday and shift slots
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.BatchBookingRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings/batch [post]
func (h *BookingHandler) CreateBatch(c *gin.Context) {
	var req service.BatchBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	result, err := h.service.CreateBatch(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Deactivate godoc
// @Summary Deactivate a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
