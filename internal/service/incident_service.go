package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
)

type incidentRepository interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error)
	FindByID(ctx context.Context, id string) (*models.Incident, error)
	Create(ctx context.Context, incident *models.Incident) error
	SetResponse(ctx context.Context, id, responseText string, respondedAt time.Time) error
	SetResolved(ctx context.Context, id string, resolved bool) error
	SetHidden(ctx context.Context, id string, hidden bool) error
	Delete(ctx context.Context, id string) error
}

type incidentRoomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// CreateIncidentRequest is the public problem-report payload.
type CreateIncidentRequest struct {
	RoomID        string `json:"room_id" validate:"required"`
	ReporterName  string `json:"reporter_name" validate:"required"`
	ReporterEmail string `json:"reporter_email" validate:"omitempty,email"`
	Description   string `json:"description" validate:"required"`
}

// RespondIncidentRequest carries the administrator's response text.
type RespondIncidentRequest struct {
	Response string `json:"response" validate:"required"`
}

// IncidentService handles incident reporting and triage.
type IncidentService struct {
	repo      incidentRepository
	rooms     incidentRoomReader
	audit     auditWriter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs the incident service.
func NewIncidentService(repo incidentRepository, rooms incidentRoomReader, audit auditWriter, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{repo: repo, rooms: rooms, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// List returns incidents and pagination metadata for the admin surface.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, *models.Pagination, error) {
	incidents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return incidents, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create records a visitor-submitted incident report.
func (s *IncidentService) Create(ctx context.Context, req CreateIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}

	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	incident := &models.Incident{
		RoomID:        req.RoomID,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
		Description:   req.Description,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}

	s.metrics.RecordIncidentOpened()
	return incident, nil
}

// Respond attaches an administrator response to an incident.
func (s *IncidentService) Respond(ctx context.Context, id, actorID string, req RespondIncidentRequest) (*models.Incident, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.SetResponse(ctx, id, req.Response, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to respond to incident")
	}

	s.recordAudit(ctx, actorID, models.AuditActionIncidentTriage, id, map[string]string{"op": "respond"})
	return s.load(ctx, id)
}

// SetResolved flips the resolution state of an incident.
func (s *IncidentService) SetResolved(ctx context.Context, id, actorID string, resolved bool) (*models.Incident, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.SetResolved(ctx, id, resolved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}

	s.recordAudit(ctx, actorID, models.AuditActionIncidentTriage, id, map[string]bool{"resolved": resolved})
	return s.load(ctx, id)
}

// SetHidden flips the public-page visibility of an incident without
// touching its resolution state.
func (s *IncidentService) SetHidden(ctx context.Context, id, actorID string, hidden bool) (*models.Incident, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.SetHidden(ctx, id, hidden); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}

	s.recordAudit(ctx, actorID, models.AuditActionIncidentTriage, id, map[string]bool{"hidden": hidden})
	return s.load(ctx, id)
}

// Delete permanently removes an incident.
func (s *IncidentService) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incident")
	}

	s.recordAudit(ctx, actorID, models.AuditActionIncidentDelete, id, nil)
	return nil
}

func (s *IncidentService) load(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return incident, nil
}

func (s *IncidentService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	var details []byte
	if payload != nil {
		details, _ = json.Marshal(payload)
	}
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "incident",
		ResourceID: &resourceID,
		Details:    details,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record incident audit log", zap.Error(err))
	}
}
