package domain

import "time"

// OperatorEventType enumerates the logged operator actions.
type OperatorEventType string

const (
	OperatorEventStartNext OperatorEventType = "INICIAR_PROXIMO_ATENDIMENTO"
	OperatorEventFinish    OperatorEventType = "FINALIZAR_ATENDIMENTO"
	OperatorEventSkip      OperatorEventType = "PULAR_ATENDIMENTO"
)

// OperatorEvent is an append-only activity log entry used for idle-gap
// metrics; never mutated or deleted.
type OperatorEvent struct {
	ID         string
	OperatorID string
	TaskID     *string
	EventType  OperatorEventType
	Timestamp  time.Time
	Note       *string
}
