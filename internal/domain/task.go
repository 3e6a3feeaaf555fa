package domain

import "time"

// CallType enumerates the outbound campaign kinds.
type CallType string

const (
	CallTypePosVenda             CallType = "PÓS-VENDA"
	CallTypeProspeccao           CallType = "PROSPECÇÃO"
	CallTypeVenda                CallType = "VENDA"
	CallTypeConfirmacaoProtocolo CallType = "CONFIRMAÇÃO PROTOCOLO"
)

// CallTypeAll marks questions applicable to every call type.
const CallTypeAll = "ALL"

// TaskStatus enumerates the queue lifecycle of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// Task is one queued unit of outbound-call work for a single operator.
type Task struct {
	ID         string
	ClientID   string
	Type       CallType
	AssignedTo string
	Status     TaskStatus
	SkipReason *string
	CreatedAt  time.Time
}

// SkipReasons is the standardized reason set for skipping a task.
var SkipReasons = []string{
	"NÃO ATENDE",
	"CAIXA POSTAL",
	"NÚMERO ERRADO / INEXISTENTE",
	"CLIENTE OCUPADO / RETORNAR DEPOIS",
	"FORA DE ÁREA",
	"RECUSOU ATENDIMENTO",
}

// ValidSkipReason reports whether reason belongs to the standardized set.
func ValidSkipReason(reason string) bool {
	for _, r := range SkipReasons {
		if r == reason {
			return true
		}
	}
	return false
}
