package events

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuditRecorded EventType = "audit_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuditRecordedPayload carries a stored, already redacted audit record.
type AuditRecordedPayload struct {
	Record domain.AuditRecord `json:"record"`
}
