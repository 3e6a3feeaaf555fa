package service

import (
	"context"
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

// QueueService owns the task lifecycle: import, assignment, completion,
// skipping, recovery, deduplication and bulk clearing.
type QueueService struct {
	tasks          repository.TaskRepository
	clients        repository.ClientRepository
	calls          repository.CallRepository
	operatorEvents repository.OperatorEventRepository
	protocols      *ProtocolService
	dispatcher     events.Dispatcher
	suppression    time.Duration
	now            func() time.Time
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	TaskRepo          repository.TaskRepository
	ClientRepo        repository.ClientRepository
	CallRepo          repository.CallRepository
	OperatorEventRepo repository.OperatorEventRepository
	Protocols         *ProtocolService
	Dispatcher        events.Dispatcher
	SuppressionWindow time.Duration
	Now               func() time.Time
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	svc := &QueueService{
		tasks:          deps.TaskRepo,
		clients:        deps.ClientRepo,
		calls:          deps.CallRepo,
		operatorEvents: deps.OperatorEventRepo,
		protocols:      deps.Protocols,
		dispatcher:     deps.Dispatcher,
		suppression:    deps.SuppressionWindow,
		now:            deps.Now,
	}
	if svc.suppression <= 0 {
		svc.suppression = 3 * 24 * time.Hour
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// ImportRow is one already-validated batch entry.
type ImportRow struct {
	Name      string
	Phone     string
	Address   string
	Equipment string
}

// ImportBatch upserts clients and creates pending tasks for an operator.
// A row creates no task when a pending task for the (client, call type)
// pair already exists, or when the client received any call inside the
// do-not-disturb window. Returns the number of tasks actually created.
// Each row commits independently; partial progress stays applied on failure.
func (s *QueueService) ImportBatch(ctx context.Context, rows []ImportRow, operatorID string, callType domain.CallType) (int, error) {
	pending, err := s.tasks.List(ctx, repository.TaskFilter{
		Type:     &callType,
		Statuses: []domain.TaskStatus{domain.TaskStatusPending},
	})
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	pendingClients := make(map[string]struct{}, len(pending))
	for _, t := range pending {
		pendingClients[t.ClientID] = struct{}{}
	}

	since := s.now().Add(-s.suppression)
	created := 0
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		phone := domain.NormalizePhone(row.Phone)
		if name == "" || phone == "" {
			continue
		}

		client := &domain.Client{Name: name, Phone: phone, Address: strings.TrimSpace(row.Address)}
		if eq := strings.TrimSpace(row.Equipment); eq != "" {
			client.Items = []string{eq}
		}
		if err := s.clients.Upsert(ctx, client); err != nil {
			return created, apperrors.MapError(err)
		}

		if _, dup := pendingClients[client.ID]; dup {
			continue
		}
		recent, err := s.calls.HasRecentCall(ctx, client.ID, since)
		if err != nil {
			return created, apperrors.MapError(err)
		}
		if recent {
			continue
		}

		task := &domain.Task{ClientID: client.ID, Type: callType, AssignedTo: operatorID}
		if err := s.tasks.Create(ctx, task); err != nil {
			return created, apperrors.MapError(err)
		}
		pendingClients[client.ID] = struct{}{}
		created++
	}

	observability.TasksImported.Add(float64(created))
	s.publish(ctx, events.Event{
		Type:    events.EventTasksImported,
		ActorID: operatorID,
		Payload: events.TasksImportedPayload{OperatorID: operatorID, CallType: callType, Created: created},
	})
	return created, nil
}

// NextTask returns the operator's oldest pending task with its client and a
// flag marking a call inside the do-not-disturb window. A nil task means the
// queue is empty.
func (s *QueueService) NextTask(ctx context.Context, operatorID string) (*domain.Task, *domain.Client, bool, error) {
	tasks, err := s.tasks.List(ctx, repository.TaskFilter{
		AssignedTo: &operatorID,
		Statuses:   []domain.TaskStatus{domain.TaskStatusPending},
	})
	if err != nil {
		return nil, nil, false, apperrors.MapError(err)
	}
	if len(tasks) == 0 {
		return nil, nil, false, nil
	}

	task := tasks[0]
	client, err := s.clients.GetByID(ctx, task.ClientID)
	if err != nil {
		return nil, nil, false, apperrors.MapError(err)
	}
	recent, err := s.calls.HasRecentCall(ctx, client.ID, s.now().Add(-s.suppression))
	if err != nil {
		return nil, nil, false, apperrors.MapError(err)
	}
	return &task, client, recent, nil
}

// StartCall logs the start-next-call operator event for a task.
func (s *QueueService) StartCall(ctx context.Context, operatorID, taskID string) error {
	return apperrors.MapError(s.logOperatorEvent(ctx, operatorID, domain.OperatorEventStartNext, &taskID, nil))
}

// ProtocolDraft carries the fields of a protocol opened during completion.
type ProtocolDraft struct {
	Title        string
	DepartmentID string
	Priority     domain.ProtocolPriority
}

// CallReport is the payload submitted when a task is completed.
type CallReport struct {
	Responses     map[string]any
	Summary       string
	StartTime     time.Time
	Duration      int
	ReportTime    int
	NeedsProtocol bool
	Protocol      ProtocolDraft
}

// CompleteTask submits the call report for a pending task: optionally opens
// a protocol, persists the call record, marks the task completed and logs
// the finish event. Validation failures happen before any write; a
// persistence failure leaves the task pending for retry.
func (s *QueueService) CompleteTask(ctx context.Context, operator *domain.User, taskID string, report CallReport) (*domain.CallRecord, error) {
	if operator == nil {
		return nil, apperrors.NewUnauthorized("operator required")
	}
	if report.NeedsProtocol && strings.TrimSpace(report.Protocol.Title) == "" {
		return nil, apperrors.NewValidationError("protocol title required", nil)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}
	if task.AssignedTo != operator.ID {
		return nil, apperrors.NewForbidden("task assigned to another operator")
	}
	if task.Status != domain.TaskStatusPending {
		return nil, apperrors.NewConflict("task is not pending", map[string]any{"status": task.Status})
	}

	var protocolID *string
	if report.NeedsProtocol {
		protocol, err := s.protocols.OpenFromCall(ctx, operator, task.ClientID, report.Protocol, report.Summary)
		if err != nil {
			return nil, err
		}
		protocolID = &protocol.ID
	}

	now := s.now()
	responses := make(map[string]any, len(report.Responses)+2)
	for k, v := range report.Responses {
		responses[k] = v
	}
	responses[domain.ResponseKeySummary] = report.Summary
	responses[domain.ResponseKeyCallType] = string(task.Type)

	start := report.StartTime
	if start.IsZero() {
		start = now.Add(-time.Duration(report.Duration) * time.Second)
	}
	call := &domain.CallRecord{
		TaskID:     &task.ID,
		OperatorID: operator.ID,
		ClientID:   task.ClientID,
		StartTime:  start,
		EndTime:    now,
		Duration:   report.Duration,
		ReportTime: report.ReportTime,
		Responses:  responses,
		Type:       task.Type,
		ProtocolID: protocolID,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.clients.TouchLastInteraction(ctx, task.ClientID, now); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tasks.UpdateStatus(ctx, task.ID, domain.TaskStatusCompleted, nil); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.logOperatorEvent(ctx, operator.ID, domain.OperatorEventFinish, &task.ID, nil); err != nil {
		return nil, apperrors.MapError(err)
	}

	observability.CallsCompleted.WithLabelValues(string(task.Type)).Inc()
	s.publish(ctx, events.Event{
		Type:    events.EventTaskCompleted,
		ActorID: operator.ID,
		Payload: events.TaskCompletedPayload{
			TaskID:     task.ID,
			ClientID:   task.ClientID,
			CallType:   task.Type,
			ProtocolID: protocolID,
		},
	})
	return call, nil
}

// SkipTask marks a pending task skipped with a standardized reason and logs
// the skip operator event carrying the reason as its note.
func (s *QueueService) SkipTask(ctx context.Context, operator *domain.User, taskID, reason string) error {
	if operator == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	if !domain.ValidSkipReason(reason) {
		return apperrors.NewValidationError("unknown skip reason", map[string]any{"reason": reason})
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	if task.AssignedTo != operator.ID {
		return apperrors.NewForbidden("task assigned to another operator")
	}
	if task.Status != domain.TaskStatusPending {
		return apperrors.NewConflict("task is not pending", map[string]any{"status": task.Status})
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, domain.TaskStatusSkipped, &reason); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.logOperatorEvent(ctx, operator.ID, domain.OperatorEventSkip, &task.ID, &reason); err != nil {
		return apperrors.MapError(err)
	}

	observability.TasksSkipped.WithLabelValues(reason).Inc()
	s.publish(ctx, events.Event{
		Type:    events.EventTaskSkipped,
		ActorID: operator.ID,
		Payload: events.TaskSkippedPayload{TaskID: task.ID, Reason: reason},
	})
	return nil
}

// RecoverTask restores a skipped task to pending.
func (s *QueueService) RecoverTask(ctx context.Context, taskID string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	if task.Status != domain.TaskStatusSkipped {
		return apperrors.NewConflict("only skipped tasks can be recovered", map[string]any{"status": task.Status})
	}
	return apperrors.MapError(s.tasks.UpdateStatus(ctx, taskID, domain.TaskStatusPending, nil))
}

// DeleteTask removes a single task.
func (s *QueueService) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ClearOperatorQueue deletes every pending and skipped task of an operator.
// Completed tasks are never touched. Irreversible; callers must confirm.
func (s *QueueService) ClearOperatorQueue(ctx context.Context, operatorID string) error {
	return apperrors.MapError(s.tasks.DeleteByOperator(ctx, operatorID,
		[]domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusSkipped}))
}

// RemoveDuplicates scans all pending tasks, keeps the first-seen task per
// (client, operator, call type) group and deletes the rest in one batch.
// Returns the removed count. Running it twice in a row removes nothing the
// second time.
func (s *QueueService) RemoveDuplicates(ctx context.Context) (int, error) {
	pending, err := s.tasks.List(ctx, repository.TaskFilter{
		Statuses: []domain.TaskStatus{domain.TaskStatusPending},
	})
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	seen := make(map[string]struct{}, len(pending))
	var toDelete []string
	for _, task := range pending {
		key := task.ClientID + "|" + task.AssignedTo + "|" + string(task.Type)
		if _, dup := seen[key]; dup {
			toDelete = append(toDelete, task.ID)
			continue
		}
		seen[key] = struct{}{}
	}

	if len(toDelete) > 0 {
		if err := s.tasks.DeleteBatch(ctx, toDelete); err != nil {
			return 0, apperrors.MapError(err)
		}
	}
	observability.DuplicateTasksRemoved.Add(float64(len(toDelete)))
	return len(toDelete), nil
}

// ListTasks exposes filtered task listing for the admin surface.
func (s *QueueService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	return tasks, apperrors.MapError(err)
}

func (s *QueueService) logOperatorEvent(ctx context.Context, operatorID string, eventType domain.OperatorEventType, taskID, note *string) error {
	return s.operatorEvents.Append(ctx, &domain.OperatorEvent{
		OperatorID: operatorID,
		TaskID:     taskID,
		EventType:  eventType,
		Note:       note,
	})
}

func (s *QueueService) publish(ctx context.Context, event events.Event) {
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
