package domain

import "time"

// ProtocolStatus enumerates the service protocol lifecycle.
type ProtocolStatus string

const (
	ProtocolAberto            ProtocolStatus = "Aberto"
	ProtocolEmAndamento       ProtocolStatus = "Em andamento"
	ProtocolAguardandoSetor   ProtocolStatus = "Aguardando Setor"
	ProtocolAguardandoCliente ProtocolStatus = "Aguardando Cliente"
	ProtocolResolvidoPendente ProtocolStatus = "Resolvido (Pendente Confirmação)"
	ProtocolFechado           ProtocolStatus = "Fechado"
	ProtocolReaberto          ProtocolStatus = "Reaberto"
)

// ProtocolPriority drives the SLA deadline.
type ProtocolPriority string

const (
	PriorityBaixa ProtocolPriority = "Baixa"
	PriorityMedia ProtocolPriority = "Média"
	PriorityAlta  ProtocolPriority = "Alta"
)

// slaHours maps priority to the SLA window in hours.
var slaHours = map[ProtocolPriority]int{
	PriorityAlta:  24,
	PriorityMedia: 48,
	PriorityBaixa: 72,
}

// SLADue returns the fixed SLA deadline for a protocol opened at openedAt.
// Unknown priorities fall back to the medium window.
func SLADue(openedAt time.Time, priority ProtocolPriority) time.Time {
	hours, ok := slaHours[priority]
	if !ok {
		hours = slaHours[PriorityMedia]
	}
	return openedAt.Add(time.Duration(hours) * time.Hour)
}

// Protocol origins.
const (
	OriginManual      = "Manual"
	OriginAtendimento = "Atendimento"
)

// Protocol is a tracked service ticket. Closed protocols are archived,
// never deleted.
type Protocol struct {
	ID                string
	ProtocolNumber    string
	ClientID          string
	OpenedByID        string
	OwnerID           string
	Origin            string
	DepartmentID      string
	Title             string
	Description       string
	Priority          ProtocolPriority
	Status            ProtocolStatus
	OpenedAt          time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
	SLADueAt          time.Time
	ResolutionSummary *string
}

// Urgent reports whether the protocol deserves attention-flagging for the
// given viewer role. This is not an SLA breach detector.
func (p Protocol) Urgent(role UserRole) bool {
	if p.Status == ProtocolAberto || p.Status == ProtocolReaberto {
		return true
	}
	return role == RoleAdmin && p.Status == ProtocolResolvidoPendente
}

// ProtocolEvent is an append-only audit entry; every protocol mutation
// produces exactly one.
type ProtocolEvent struct {
	ID         string
	ProtocolID string
	EventType  string
	OldValue   *string
	NewValue   *string
	Note       string
	ActorID    string
	CreatedAt  time.Time
}

// Protocol event types.
const (
	ProtocolEventCreation     = "creation"
	ProtocolEventStatusChange = "status_change"
	ProtocolEventUpdate       = "update"
)

// Department is a fixed routing target for protocols.
type Department struct {
	ID   string
	Name string
}

// Departments lists the routing targets in presentation order.
var Departments = []Department{
	{ID: "atendimento", Name: "Atendimento/Vendas"},
	{ID: "tecnico", Name: "Suporte Técnico"},
	{ID: "financeiro", Name: "Financeiro"},
	{ID: "logistica", Name: "Logística/Entrega"},
}
