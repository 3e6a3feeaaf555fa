package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/events"
	"github.com/telesales/callops-service/internal/observability"
	"github.com/telesales/callops-service/internal/repository"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// allowedTransitions is the protocol status machine. Resolvido (Pendente
// Confirmação) is listed for completeness but is only left through the
// dedicated approve/reject operations.
var allowedTransitions = map[domain.ProtocolStatus][]domain.ProtocolStatus{
	domain.ProtocolAberto:            {domain.ProtocolEmAndamento},
	domain.ProtocolReaberto:          {domain.ProtocolEmAndamento},
	domain.ProtocolEmAndamento:       {domain.ProtocolAguardandoSetor, domain.ProtocolAguardandoCliente, domain.ProtocolResolvidoPendente},
	domain.ProtocolAguardandoSetor:   {domain.ProtocolEmAndamento},
	domain.ProtocolAguardandoCliente: {domain.ProtocolEmAndamento},
	domain.ProtocolResolvidoPendente: {domain.ProtocolFechado, domain.ProtocolEmAndamento},
	domain.ProtocolFechado:           {domain.ProtocolReaberto},
}

func isValidTransition(from, to domain.ProtocolStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ProtocolService owns the protocol lifecycle and its audit trail.
type ProtocolService struct {
	protocols  repository.ProtocolRepository
	auditLog   repository.ProtocolEventRepository
	questions  repository.QuestionRepository
	clients    repository.ClientRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ProtocolDependencies bundles collaborators for the protocol service.
type ProtocolDependencies struct {
	ProtocolRepo repository.ProtocolRepository
	EventRepo    repository.ProtocolEventRepository
	QuestionRepo repository.QuestionRepository
	ClientRepo   repository.ClientRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
	Now          func() time.Time
}

// NewProtocolService constructs the service.
func NewProtocolService(deps ProtocolDependencies) *ProtocolService {
	svc := &ProtocolService{
		protocols:  deps.ProtocolRepo,
		auditLog:   deps.EventRepo,
		questions:  deps.QuestionRepo,
		clients:    deps.ClientRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// ProtocolCreateInput carries the fields accepted at protocol creation.
type ProtocolCreateInput struct {
	ClientID     string
	OwnerID      string
	DepartmentID string
	Title        string
	Description  string
	Priority     domain.ProtocolPriority
	Origin       string
}

// Create opens a protocol. The SLA deadline is computed once here and never
// recomputed. Appends the creation audit event.
func (s *ProtocolService) Create(ctx context.Context, actor *domain.User, input ProtocolCreateInput) (*domain.Protocol, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, apperrors.NewValidationError("client is required", nil)
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": input.ClientID})
		}
		return nil, apperrors.MapError(err)
	}

	owner := input.OwnerID
	if owner == "" {
		owner = actor.ID
	}
	origin := input.Origin
	if origin == "" {
		origin = domain.OriginManual
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedia
	}

	now := s.now()
	protocol := &domain.Protocol{
		ProtocolNumber: generateProtocolNumber(),
		ClientID:       input.ClientID,
		OpenedByID:     actor.ID,
		OwnerID:        owner,
		Origin:         origin,
		DepartmentID:   input.DepartmentID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Priority:       priority,
		Status:         domain.ProtocolAberto,
		OpenedAt:       now,
		UpdatedAt:      now,
		SLADueAt:       domain.SLADue(now, priority),
	}
	if err := s.protocols.Create(ctx, protocol); err != nil {
		return nil, apperrors.MapError(err)
	}

	note := "Protocolo aberto manualmente"
	if origin == domain.OriginAtendimento {
		note = "Protocolo aberto via atendimento"
	}
	newStatus := string(protocol.Status)
	if err := s.auditLog.Append(ctx, &domain.ProtocolEvent{
		ProtocolID: protocol.ID,
		EventType:  domain.ProtocolEventCreation,
		NewValue:   &newStatus,
		Note:       note,
		ActorID:    actor.ID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	observability.ProtocolsOpened.WithLabelValues(origin).Inc()
	s.publish(ctx, events.Event{
		Type:    events.EventProtocolCreated,
		ActorID: actor.ID,
		Payload: events.ProtocolCreatedPayload{
			ProtocolID: protocol.ID,
			Origin:     origin,
			OwnerID:    owner,
			Priority:   priority,
			Title:      protocol.Title,
		},
	})
	return protocol, nil
}

// OpenFromCall opens a protocol out of a call-completion report. The call
// summary doubles as the description when present.
func (s *ProtocolService) OpenFromCall(ctx context.Context, operator *domain.User, clientID string, draft ProtocolDraft, summary string) (*domain.Protocol, error) {
	description := strings.TrimSpace(summary)
	if description == "" {
		description = "Protocolo aberto via finalização de chamada."
	}
	return s.Create(ctx, operator, ProtocolCreateInput{
		ClientID:     clientID,
		OwnerID:      operator.ID,
		DepartmentID: draft.DepartmentID,
		Title:        draft.Title,
		Description:  description,
		Priority:     draft.Priority,
		Origin:       domain.OriginAtendimento,
	})
}

// Get loads a protocol the viewer is allowed to see.
func (s *ProtocolService) Get(ctx context.Context, viewer *domain.User, protocolID string) (*domain.Protocol, error) {
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if !canView(viewer, protocol) {
		return nil, apperrors.NewForbidden("protocol belongs to another operator")
	}
	return protocol, nil
}

// List returns the protocols visible to the viewer. Admins see everything;
// everyone else sees protocols they own or opened.
func (s *ProtocolService) List(ctx context.Context, viewer *domain.User, filter repository.ProtocolFilter) ([]domain.Protocol, error) {
	if viewer == nil {
		return nil, apperrors.NewUnauthorized("viewer required")
	}
	if viewer.Role != domain.RoleAdmin {
		filter.OwnerID = &viewer.ID
		filter.OpenedByID = &viewer.ID
	}
	protocols, err := s.protocols.List(ctx, filter)
	return protocols, apperrors.MapError(err)
}

// ListUrgent returns the visible protocols that deserve attention-flagging
// for the viewer's role.
func (s *ProtocolService) ListUrgent(ctx context.Context, viewer *domain.User) ([]domain.Protocol, error) {
	protocols, err := s.List(ctx, viewer, repository.ProtocolFilter{})
	if err != nil {
		return nil, err
	}
	urgent := protocols[:0]
	for _, p := range protocols {
		if p.Urgent(viewer.Role) {
			urgent = append(urgent, p)
		}
	}
	return urgent, nil
}

// History returns the append-only audit trail of a protocol.
func (s *ProtocolService) History(ctx context.Context, viewer *domain.User, protocolID string) ([]domain.ProtocolEvent, error) {
	if _, err := s.Get(ctx, viewer, protocolID); err != nil {
		return nil, err
	}
	entries, err := s.auditLog.ListByProtocol(ctx, protocolID)
	return entries, apperrors.MapError(err)
}

// ChangeStatus performs the generic transitions of the status machine:
// start work, park on a waiting state, resume, reopen. Resolution submission,
// approval and rejection have dedicated operations and are rejected here.
func (s *ProtocolService) ChangeStatus(ctx context.Context, actor *domain.User, protocolID string, target domain.ProtocolStatus, note string) (*domain.Protocol, error) {
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	if target == domain.ProtocolResolvidoPendente || target == domain.ProtocolFechado {
		return nil, apperrors.NewValidationError("status requires the resolution flow", map[string]any{"target": target})
	}
	if protocol.Status == domain.ProtocolResolvidoPendente {
		return nil, apperrors.NewConflict("protocol awaits management review", nil)
	}
	if !isValidTransition(protocol.Status, target) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": protocol.Status,
			"to":   target,
		})
	}

	switch {
	case protocol.Status == domain.ProtocolAberto || protocol.Status == domain.ProtocolReaberto:
		// Picking up work is reserved to the assigned owner.
		if protocol.OwnerID != actor.ID {
			return nil, apperrors.NewForbidden("only the assigned operator can start this protocol")
		}
	default:
		if protocol.OwnerID != actor.ID && !actor.Role.CanManage() {
			return nil, apperrors.NewForbidden("protocol belongs to another operator")
		}
	}

	if note == "" {
		note = fmt.Sprintf("Mudança para: %s", target)
	}
	return s.applyStatus(ctx, actor, protocol, target, note, nil, nil)
}

// SubmitResolution moves an in-progress protocol to Resolvido (Pendente
// Confirmação). Every closure-audit question must be answered and a summary
// provided; the combined text becomes the resolution summary.
func (s *ProtocolService) SubmitResolution(ctx context.Context, actor *domain.User, protocolID string, answers map[string]string, summary string) (*domain.Protocol, error) {
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.NewUnauthorized("actor required")
	}
	if protocol.OwnerID != actor.ID {
		return nil, apperrors.NewForbidden("only the assigned operator can resolve this protocol")
	}
	if protocol.Status != domain.ProtocolEmAndamento {
		return nil, apperrors.NewConflict("protocol is not in progress", map[string]any{"status": protocol.Status})
	}
	if strings.TrimSpace(summary) == "" {
		return nil, apperrors.NewValidationError("operator summary is required", nil)
	}

	audit, err := s.auditQuestions(ctx)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, q := range audit {
		answer := strings.TrimSpace(answers[q.ID])
		if answer == "" {
			return nil, apperrors.NewValidationError("all audit questions must be answered", map[string]any{"question_id": q.ID})
		}
		lines = append(lines, fmt.Sprintf("%s: %s", q.Text, answer))
	}

	resolution := fmt.Sprintf("AUDITORIA DE FECHAMENTO:\n%s\n\nRESUMO DO OPERADOR:\n%s",
		strings.Join(lines, "\n"), strings.TrimSpace(summary))
	return s.applyStatus(ctx, actor, protocol, domain.ProtocolResolvidoPendente,
		"Resolução enviada para conferência do gestor.", &resolution, nil)
}

// Approve closes a resolved protocol. Management only.
func (s *ProtocolService) Approve(ctx context.Context, actor *domain.User, protocolID string) (*domain.Protocol, error) {
	protocol, err := s.loadForReview(ctx, actor, protocolID)
	if err != nil {
		return nil, err
	}
	closedAt := s.now()
	updated, err := s.applyStatus(ctx, actor, protocol, domain.ProtocolFechado,
		"Resolução APROVADA pelo gestor. Protocolo arquivado.", nil, &closedAt)
	if err != nil {
		return nil, err
	}
	observability.ProtocolsClosed.Inc()
	return updated, nil
}

// Reject sends a resolved protocol back to in-progress. Management only; the
// rejection reason is mandatory and recorded in the audit trail.
func (s *ProtocolService) Reject(ctx context.Context, actor *domain.User, protocolID, reason string) (*domain.Protocol, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("rejection reason is required", nil)
	}
	protocol, err := s.loadForReview(ctx, actor, protocolID)
	if err != nil {
		return nil, err
	}
	note := fmt.Sprintf("Resolução REPROVADA pelo gestor: %s", strings.TrimSpace(reason))
	return s.applyStatus(ctx, actor, protocol, domain.ProtocolEmAndamento, note, nil, nil)
}

// Reassign moves a non-closed protocol to another active operator.
// Management only.
func (s *ProtocolService) Reassign(ctx context.Context, actor *domain.User, protocolID, newOwnerID string) (*domain.Protocol, error) {
	if actor == nil || !actor.Role.CanManage() {
		return nil, apperrors.NewForbidden("management role required")
	}
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if protocol.Status == domain.ProtocolFechado {
		return nil, apperrors.NewConflict("closed protocols cannot be reassigned", nil)
	}
	if protocol.OwnerID == newOwnerID {
		return nil, apperrors.NewValidationError("protocol already belongs to this operator", nil)
	}
	newOwner, err := s.users.GetByID(ctx, newOwnerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": newOwnerID})
		}
		return nil, apperrors.MapError(err)
	}
	if !newOwner.Active {
		return nil, apperrors.NewValidationError("cannot assign to a deactivated user", nil)
	}

	oldOwner := protocol.OwnerID
	if err := s.protocols.Update(ctx, protocol.ID, repository.ProtocolUpdate{OwnerID: &newOwnerID}); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.auditLog.Append(ctx, &domain.ProtocolEvent{
		ProtocolID: protocol.ID,
		EventType:  domain.ProtocolEventUpdate,
		OldValue:   &oldOwner,
		NewValue:   &newOwnerID,
		Note:       fmt.Sprintf("Chamado reatribuído para o operador: %s", newOwner.Name),
		ActorID:    actor.ID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	protocol.OwnerID = newOwnerID
	s.publish(ctx, events.Event{
		Type:    events.EventProtocolReassigned,
		ActorID: actor.ID,
		Payload: events.ProtocolReassignedPayload{
			ProtocolID: protocol.ID,
			OldOwnerID: oldOwner,
			NewOwnerID: newOwnerID,
		},
	})
	return protocol, nil
}

// AddNote appends a follow-up annotation without touching the status.
func (s *ProtocolService) AddNote(ctx context.Context, actor *domain.User, protocolID, note string) error {
	if strings.TrimSpace(note) == "" {
		return apperrors.NewValidationError("note text is required", nil)
	}
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return err
	}
	if actor == nil {
		return apperrors.NewUnauthorized("actor required")
	}
	if protocol.OwnerID != actor.ID && protocol.OpenedByID != actor.ID && !actor.Role.CanManage() {
		return apperrors.NewForbidden("protocol belongs to another operator")
	}

	// Bumps updated_at so the console surfaces recent activity first.
	if err := s.protocols.Update(ctx, protocol.ID, repository.ProtocolUpdate{}); err != nil {
		return apperrors.MapError(err)
	}
	return apperrors.MapError(s.auditLog.Append(ctx, &domain.ProtocolEvent{
		ProtocolID: protocol.ID,
		EventType:  domain.ProtocolEventUpdate,
		Note:       fmt.Sprintf("ATUALIZAÇÃO DE ACOMPANHAMENTO: %s", strings.TrimSpace(note)),
		ActorID:    actor.ID,
	}))
}

func (s *ProtocolService) load(ctx context.Context, protocolID string) (*domain.Protocol, error) {
	protocol, err := s.protocols.GetByID(ctx, protocolID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("protocol", map[string]any{"protocol_id": protocolID})
		}
		return nil, apperrors.MapError(err)
	}
	return protocol, nil
}

func (s *ProtocolService) loadForReview(ctx context.Context, actor *domain.User, protocolID string) (*domain.Protocol, error) {
	if actor == nil || !actor.Role.CanManage() {
		return nil, apperrors.NewForbidden("management role required")
	}
	protocol, err := s.load(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if protocol.Status != domain.ProtocolResolvidoPendente {
		return nil, apperrors.NewConflict("protocol is not awaiting review", map[string]any{"status": protocol.Status})
	}
	return protocol, nil
}

// applyStatus persists a status change plus its single audit event and
// publishes the status-changed domain event.
func (s *ProtocolService) applyStatus(ctx context.Context, actor *domain.User, protocol *domain.Protocol, target domain.ProtocolStatus, note string, resolution *string, closedAt *time.Time) (*domain.Protocol, error) {
	update := repository.ProtocolUpdate{Status: &target, ResolutionSummary: resolution, ClosedAt: closedAt}
	if err := s.protocols.Update(ctx, protocol.ID, update); err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := string(protocol.Status)
	newStatus := string(target)
	if err := s.auditLog.Append(ctx, &domain.ProtocolEvent{
		ProtocolID: protocol.ID,
		EventType:  domain.ProtocolEventStatusChange,
		OldValue:   &oldStatus,
		NewValue:   &newStatus,
		Note:       note,
		ActorID:    actor.ID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	previous := protocol.Status
	protocol.Status = target
	if resolution != nil {
		protocol.ResolutionSummary = resolution
	}
	if closedAt != nil {
		protocol.ClosedAt = closedAt
	}
	s.publish(ctx, events.Event{
		Type:    events.EventProtocolStatusChanged,
		ActorID: actor.ID,
		Payload: events.ProtocolStatusChangedPayload{
			ProtocolID: protocol.ID,
			OldStatus:  previous,
			NewStatus:  target,
			Note:       note,
		},
	})
	return protocol, nil
}

func (s *ProtocolService) auditQuestions(ctx context.Context) ([]domain.Question, error) {
	all, err := s.questions.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var audit []domain.Question
	for _, q := range all {
		if q.AppliesTo(domain.CallTypeConfirmacaoProtocolo) {
			audit = append(audit, q)
		}
	}
	return audit, nil
}

func (s *ProtocolService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func canView(viewer *domain.User, p *domain.Protocol) bool {
	if viewer == nil {
		return false
	}
	if viewer.Role.CanManage() {
		return true
	}
	return p.OwnerID == viewer.ID || p.OpenedByID == viewer.ID
}

func generateProtocolNumber() string {
	return "PRT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
