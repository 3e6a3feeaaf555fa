package events

import (
	"time"

	"github.com/telesales/callops-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskCompleted         EventType = "task_completed"
	EventTaskSkipped           EventType = "task_skipped"
	EventTasksImported         EventType = "tasks_imported"
	EventProtocolCreated       EventType = "protocol_created"
	EventProtocolStatusChanged EventType = "protocol_status_changed"
	EventProtocolReassigned    EventType = "protocol_reassigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	TaskID     string          `json:"task_id"`
	ClientID   string          `json:"client_id"`
	CallType   domain.CallType `json:"call_type"`
	ProtocolID *string         `json:"protocol_id,omitempty"`
}

// TaskSkippedPayload payload.
type TaskSkippedPayload struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
}

// TasksImportedPayload payload.
type TasksImportedPayload struct {
	OperatorID string          `json:"operator_id"`
	CallType   domain.CallType `json:"call_type"`
	Created    int             `json:"created"`
}

// ProtocolCreatedPayload payload.
type ProtocolCreatedPayload struct {
	ProtocolID string                  `json:"protocol_id"`
	Origin     string                  `json:"origin"`
	OwnerID    string                  `json:"owner_id"`
	Priority   domain.ProtocolPriority `json:"priority"`
	Title      string                  `json:"title"`
}

// ProtocolStatusChangedPayload payload.
type ProtocolStatusChangedPayload struct {
	ProtocolID string                `json:"protocol_id"`
	OldStatus  domain.ProtocolStatus `json:"old_status"`
	NewStatus  domain.ProtocolStatus `json:"new_status"`
	Note       string                `json:"note,omitempty"`
}

// ProtocolReassignedPayload payload.
type ProtocolReassignedPayload struct {
	ProtocolID string `json:"protocol_id"`
	OldOwnerID string `json:"old_owner_id"`
	NewOwnerID string `json:"new_owner_id"`
}
