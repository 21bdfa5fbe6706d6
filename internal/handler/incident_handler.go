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

type incidentService interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, *models.Pagination, error)
	Create(ctx context.Context, req service.CreateIncidentRequest) (*models.Incident, error)
	Respond(ctx context.Context, id, actorID string, req service.RespondIncidentRequest) (*models.Incident, error)
	SetResolved(ctx context.Context, id, actorID string, resolved bool) (*models.Incident, error)
	SetHidden(ctx context.Context, id, actorID string, hidden bool) (*models.Incident, error)
	Delete(ctx context.Context, id, actorID string) error
}

// IncidentHandler exposes incident reporting and triage endpoints. Creation
// is public so anyone in a room can report a problem; triage is admin-only.
type IncidentHandler struct {
	service incidentService
}

// NewIncidentHandler constructs the handler.
func NewIncidentHandler(svc incidentService) *IncidentHandler {
	return &IncidentHandler{service: svc}
}

// List godoc
// @Summary List incidents
// @Tags Incidents
// @Produce json
// @Param room_id query string false "Room ID"
// @Param resolved query bool false "Resolution filter"
// @Param hidden query bool false "Visibility filter"
// @Success 200 {object} response.Envelope
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	filter := models.IncidentFilter{
		RoomID:    strings.TrimSpace(c.Query("room_id")),
		Resolved:  queryBool(c, "resolved"),
		Hidden:    queryBool(c, "hidden"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	incidents, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incidents, pagination)
}

// Create godoc
// @Summary Report an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param payload body service.CreateIncidentRequest true "Incident payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	var req service.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid incident payload"))
		return
	}

	incident, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// Respond godoc
// @Summary Record an administrator response for an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param payload body service.RespondIncidentRequest true "Response payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id}/respond [post]
func (h *IncidentHandler) Respond(c *gin.Context) {
	var req service.RespondIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "response text required"))
		return
	}

	incident, err := h.service.Respond(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incident, nil)
}

// SetResolved godoc
// @Summary Mark an incident resolved or reopened
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param payload body map[string]bool true "Resolved flag"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id}/resolve [patch]
func (h *IncidentHandler) SetResolved(c *gin.Context) {
	var payload struct {
		Resolved *bool `json:"resolved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "resolved flag required"))
		return
	}

	incident, err := h.service.SetResolved(c.Request.Context(), c.Param("id"), actorID(c), *payload.Resolved)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incident, nil)
}

// SetHidden godoc
// @Summary Hide or unhide an incident from the public room page
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param payload body map[string]bool true "Hidden flag"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id}/hide [patch]
func (h *IncidentHandler) SetHidden(c *gin.Context) {
	var payload struct {
		Hidden *bool `json:"hidden" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "hidden flag required"))
		return
	}

	incident, err := h.service.SetHidden(c.Request.Context(), c.Param("id"), actorID(c), *payload.Hidden)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incident, nil)
}

// Delete godoc
// @Summary Delete an incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /incidents/{id} [delete]
func (h *IncidentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
