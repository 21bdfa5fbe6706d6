package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/classroom-api/internal/models"
)

const incidentColumns = "id, room_id, reporter_name, reporter_email, description, resolved, response, responded_at, hidden, created_at"

// IncidentRepository provides persistence for incident reports.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository creates a new incident repository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// List returns incidents with optional filtering and pagination.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error) {
	base := "FROM incidents WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Resolved != nil {
		conditions = append(conditions, fmt.Sprintf("resolved = $%d", len(args)+1))
		args = append(args, *filter.Resolved)
	}
	if filter.Hidden != nil {
		conditions = append(conditions, fmt.Sprintf("hidden = $%d", len(args)+1))
		args = append(args, *filter.Hidden)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at":   true,
		"resolved":     true,
		"responded_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", incidentColumns, base, sortBy, order, size, offset)
	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}

	return incidents, total, nil
}

// ListVisibleByRoom returns incidents shown on the public room page:
// everything the staff has not hidden, newest first.
func (r *IncidentRepository) ListVisibleByRoom(ctx context.Context, roomID string) ([]models.Incident, error) {
	query := fmt.Sprintf("SELECT %s FROM incidents WHERE room_id = $1 AND hidden = FALSE ORDER BY created_at DESC", incidentColumns)
	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, roomID); err != nil {
		return nil, fmt.Errorf("list visible incidents: %w", err)
	}
	return incidents, nil
}

// FindByID loads an incident by id.
func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*models.Incident, error) {
	query := fmt.Sprintf("SELECT %s FROM incidents WHERE id = $1", incidentColumns)
	var incident models.Incident
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		return nil, err
	}
	return &incident, nil
}

// Create stores a new incident report.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO incidents (id, room_id, reporter_name, reporter_email, description, resolved, response, responded_at, hidden, created_at) VALUES (:id, :room_id, :reporter_name, :reporter_email, :description, :resolved, :response, :responded_at, :hidden, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// SetResponse records the administrator's response text.
func (r *IncidentRepository) SetResponse(ctx context.Context, id, responseText string, respondedAt time.Time) error {
	const query = `UPDATE incidents SET response = $2, responded_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, responseText, respondedAt); err != nil {
		return fmt.Errorf("respond to incident: %w", err)
	}
	return nil
}

// SetResolved flips the resolution state.
func (r *IncidentRepository) SetResolved(ctx context.Context, id string, resolved bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE incidents SET resolved = $2 WHERE id = $1", id, resolved); err != nil {
		return fmt.Errorf("resolve incident: %w", err)
	}
	return nil
}

// SetHidden flips the public-page visibility flag, independent of
// resolution state.
func (r *IncidentRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE incidents SET hidden = $2 WHERE id = $1", id, hidden); err != nil {
		return fmt.Errorf("hide incident: %w", err)
	}
	return nil
}

// Delete permanently removes an incident.
func (r *IncidentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM incidents WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	return nil
}
