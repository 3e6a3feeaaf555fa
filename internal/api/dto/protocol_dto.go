package dto

import (
	"time"

	"github.com/telesales/callops-service/internal/domain"
)

// CreateProtocolRequest payload.
type CreateProtocolRequest struct {
	ClientID     string                  `json:"client_id"`
	OwnerID      string                  `json:"owner_id"`
	DepartmentID string                  `json:"department_id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Priority     domain.ProtocolPriority `json:"priority"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.ProtocolStatus `json:"status"`
	Note   string                `json:"note"`
}

// SubmitResolutionRequest payload.
type SubmitResolutionRequest struct {
	Answers map[string]string `json:"answers"`
	Summary string            `json:"summary"`
}

// RejectResolutionRequest payload.
type RejectResolutionRequest struct {
	Reason string `json:"reason"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	OwnerID string `json:"owner_id"`
}

// AddNoteRequest payload.
type AddNoteRequest struct {
	Note string `json:"note"`
}

// ProtocolResponse payload.
type ProtocolResponse struct {
	ID                string                  `json:"id"`
	ProtocolNumber    string                  `json:"protocol_number"`
	ClientID          string                  `json:"client_id"`
	OpenedByID        string                  `json:"opened_by_id"`
	OwnerID           string                  `json:"owner_id"`
	Origin            string                  `json:"origin"`
	DepartmentID      string                  `json:"department_id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	Priority          domain.ProtocolPriority `json:"priority"`
	Status            domain.ProtocolStatus   `json:"status"`
	OpenedAt          time.Time               `json:"opened_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	ClosedAt          *time.Time              `json:"closed_at"`
	SLADueAt          time.Time               `json:"sla_due_at"`
	ResolutionSummary *string                 `json:"resolution_summary,omitempty"`
}

// NewProtocolResponse maps a protocol.
func NewProtocolResponse(p *domain.Protocol) ProtocolResponse {
	return ProtocolResponse{
		ID:                p.ID,
		ProtocolNumber:    p.ProtocolNumber,
		ClientID:          p.ClientID,
		OpenedByID:        p.OpenedByID,
		OwnerID:           p.OwnerID,
		Origin:            p.Origin,
		DepartmentID:      p.DepartmentID,
		Title:             p.Title,
		Description:       p.Description,
		Priority:          p.Priority,
		Status:            p.Status,
		OpenedAt:          p.OpenedAt,
		UpdatedAt:         p.UpdatedAt,
		ClosedAt:          p.ClosedAt,
		SLADueAt:          p.SLADueAt,
		ResolutionSummary: p.ResolutionSummary,
	}
}

// ProtocolEventResponse is one audit trail entry.
type ProtocolEventResponse struct {
	ID        string    `json:"id"`
	EventType string    `json:"event_type"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	Note      string    `json:"note"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProtocolEventResponse maps an audit entry.
func NewProtocolEventResponse(ev domain.ProtocolEvent) ProtocolEventResponse {
	return ProtocolEventResponse{
		ID:        ev.ID,
		EventType: ev.EventType,
		OldValue:  ev.OldValue,
		NewValue:  ev.NewValue,
		Note:      ev.Note,
		ActorID:   ev.ActorID,
		CreatedAt: ev.CreatedAt,
	}
}

// DepartmentResponse payload.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
