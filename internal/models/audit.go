package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionRoomCreate      = "ROOM_CREATE"
	AuditActionRoomUpdate      = "ROOM_UPDATE"
	AuditActionRoomDelete      = "ROOM_DELETE"
	AuditActionBookingCreate   = "BOOKING_CREATE"
	AuditActionBookingDelete   = "BOOKING_DELETE"
	AuditActionIncidentTriage  = "INCIDENT_TRIAGE"
	AuditActionIncidentDelete  = "INCIDENT_DELETE"
	AuditActionReportRequested = "REPORT_REQUESTED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details    []byte    `db:"details" json:"details,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
