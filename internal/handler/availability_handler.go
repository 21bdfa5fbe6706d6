package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/classroom-api/internal/dto"
	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/service"
	"github.com/campushub/classroom-api/pkg/response"
)

type availabilityResolver interface {
	Resolve(ctx context.Context, query service.AvailabilityQuery) (*dto.AvailabilityResult, error)
}

// AvailabilityHandler answers "which rooms are free" queries.
type AvailabilityHandler struct {
	service availabilityResolver
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc availabilityResolver) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Get godoc
// @Summary Resolve room availability
// @Description Returns free and occupied rooms for a date and optional shift.
// @Description Without a date the current moment is used; without a shift on
// @Description an explicit date all shifts are considered.
// @Tags Availability
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD). Malformed or absent defaults to now"
// @Param shift query string false "Shift (morning, afternoon, night, fullday)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	query := service.AvailabilityQuery{
		Shift: models.Shift(strings.TrimSpace(c.Query("shift"))),
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		// An unparseable date falls back to "now" rather than failing the
		// request; a zero Date carries that meaning into the resolver.
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			query.Date = parsed
		}
	}

	result, err := h.service.Resolve(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
