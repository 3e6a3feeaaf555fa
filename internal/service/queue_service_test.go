package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/events"
	"github.com/telesales/callops-service/internal/repository"
	"github.com/telesales/callops-service/internal/service"
)

type queueEnv struct {
	now            time.Time
	tasks          *fakeTaskRepo
	clients        *fakeClientRepo
	calls          *fakeCallRepo
	opEvents       *fakeOperatorEventRepo
	questions      *fakeQuestionRepo
	protocols      *fakeProtocolRepo
	protocolEvents *fakeProtocolEventRepo
	users          *fakeUserRepo
	queue          *service.QueueService
	protocolSvc    *service.ProtocolService
}

func newQueueEnv(t *testing.T) *queueEnv {
	t.Helper()
	env := &queueEnv{
		now:            time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		clients:        newFakeClientRepo(),
		calls:          &fakeCallRepo{},
		opEvents:       &fakeOperatorEventRepo{},
		questions:      &fakeQuestionRepo{},
		protocols:      newFakeProtocolRepo(),
		protocolEvents: &fakeProtocolEventRepo{},
		users:          newFakeUserRepo(),
	}
	clock := func() time.Time { return env.now }
	env.tasks = newFakeTaskRepo(clock)

	dispatcher := events.NewInMemoryDispatcher()
	env.protocolSvc = service.NewProtocolService(service.ProtocolDependencies{
		ProtocolRepo: env.protocols,
		EventRepo:    env.protocolEvents,
		QuestionRepo: env.questions,
		ClientRepo:   env.clients,
		UserRepo:     env.users,
		Dispatcher:   dispatcher,
		Now:          clock,
	})
	env.queue = service.NewQueueService(service.QueueDependencies{
		TaskRepo:          env.tasks,
		ClientRepo:        env.clients,
		CallRepo:          env.calls,
		OperatorEventRepo: env.opEvents,
		Protocols:         env.protocolSvc,
		Dispatcher:        dispatcher,
		SuppressionWindow: 3 * 24 * time.Hour,
		Now:               clock,
	})
	return env
}

func (env *queueEnv) operator() *domain.User {
	return env.users.add(domain.User{ID: "op-1", Username: "ana", Name: "Ana", Role: domain.RoleOperator, Active: true})
}

func TestImportBatchCreatesClientAndTask(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()

	created, err := env.queue.ImportBatch(ctx, []service.ImportRow{
		{Name: "Ana Souza", Phone: "(11) 99999-0000", Equipment: "Inversor 5kW"},
	}, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	client, err := env.clients.GetByPhone(ctx, "11999990000")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", client.Name)
	assert.Equal(t, []string{"Inversor 5kW"}, client.Items)

	tasks, err := env.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskStatusPending, tasks[0].Status)
	assert.Equal(t, domain.CallTypePosVenda, tasks[0].Type)
	assert.Equal(t, "op-1", tasks[0].AssignedTo)
}

func TestImportBatchSkipsIncompleteRows(t *testing.T) {
	env := newQueueEnv(t)

	created, err := env.queue.ImportBatch(context.Background(), []service.ImportRow{
		{Name: "", Phone: "11999990000"},
		{Name: "Sem Telefone", Phone: "---"},
	}, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestImportBatchSuppressesPendingDuplicates(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	row := []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}

	created, err := env.queue.ImportBatch(ctx, row, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// Re-importing the same list before any call creates nothing.
	created, err = env.queue.ImportBatch(ctx, row, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Zero(t, created)

	// A different campaign for the same client is a separate task.
	created, err = env.queue.ImportBatch(ctx, row, "op-1", domain.CallTypeProspeccao)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestImportBatchRecentCallSuppression(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()

	seed := &domain.Client{Name: "Ana", Phone: "11999990000"}
	require.NoError(t, env.clients.Upsert(ctx, seed))

	// Call two days ago: inside the three day window, row suppressed.
	env.calls.calls = append(env.calls.calls, domain.CallRecord{
		ClientID: seed.ID,
		EndTime:  env.now.Add(-2 * 24 * time.Hour),
	})
	created, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Zero(t, created)

	// Push the call to four days ago: outside the window, task created.
	env.calls.calls[0].EndTime = env.now.Add(-4 * 24 * time.Hour)
	created, err = env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestNextTaskReturnsOldestPending(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{
		{Name: "Primeiro", Phone: "11999990001"},
		{Name: "Segundo", Phone: "11999990002"},
	}, "op-1", domain.CallTypePosVenda)
	require.NoError(t, err)

	task, client, recent, err := env.queue.NextTask(ctx, "op-1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Primeiro", client.Name)
	assert.False(t, recent)

	task, _, _, err = env.queue.NextTask(ctx, "op-2")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestCompleteTaskFlow(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	call, err := env.queue.CompleteTask(ctx, operator, task.ID, service.CallReport{
		Responses: map[string]any{"pv1": "Ótimo"},
		Summary:   "Cliente satisfeito com a instalação.",
		Duration:  240,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cliente satisfeito com a instalação.", call.Responses[domain.ResponseKeySummary])
	assert.Equal(t, string(domain.CallTypePosVenda), call.Responses[domain.ResponseKeyCallType])
	assert.Equal(t, "Ótimo", call.Responses["pv1"])

	updated, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	client, err := env.clients.GetByID(ctx, task.ClientID)
	require.NoError(t, err)
	require.NotNil(t, client.LastInteraction)
	assert.Equal(t, env.now, *client.LastInteraction)

	require.Len(t, env.opEvents.events, 1)
	assert.Equal(t, domain.OperatorEventFinish, env.opEvents.events[0].EventType)
}

func TestCompleteTaskOpensProtocol(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	call, err := env.queue.CompleteTask(ctx, operator, task.ID, service.CallReport{
		Summary:       "Equipamento com defeito.",
		NeedsProtocol: true,
		Protocol: service.ProtocolDraft{
			Title:        "Inversor desligando sozinho",
			DepartmentID: "tecnico",
			Priority:     domain.PriorityAlta,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, call.ProtocolID)

	protocol, err := env.protocols.GetByID(ctx, *call.ProtocolID)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginAtendimento, protocol.Origin)
	assert.Equal(t, domain.ProtocolAberto, protocol.Status)
	assert.Equal(t, "Equipamento com defeito.", protocol.Description)
	assert.Equal(t, env.now.Add(24*time.Hour), protocol.SLADueAt)
}

func TestCompleteTaskRequiresProtocolTitle(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	_, err = env.queue.CompleteTask(ctx, operator, task.ID, service.CallReport{NeedsProtocol: true})
	require.Error(t, err)

	// Validation failed before any write: the task is still pending.
	unchanged, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, unchanged.Status)
	assert.Empty(t, env.calls.calls)
}

func TestCompleteTaskRejectsOtherOperators(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()
	other := env.users.add(domain.User{ID: "op-2", Role: domain.RoleOperator, Active: true})

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	_, err = env.queue.CompleteTask(ctx, other, task.ID, service.CallReport{})
	require.Error(t, err)
}

func TestSkipTask(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	err = env.queue.SkipTask(ctx, operator, task.ID, "motivo inventado")
	require.Error(t, err)

	reason := domain.SkipReasons[0]
	require.NoError(t, env.queue.SkipTask(ctx, operator, task.ID, reason))

	skipped, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusSkipped, skipped.Status)
	require.NotNil(t, skipped.SkipReason)
	assert.Equal(t, reason, *skipped.SkipReason)

	require.Len(t, env.opEvents.events, 1)
	assert.Equal(t, domain.OperatorEventSkip, env.opEvents.events[0].EventType)
	require.NotNil(t, env.opEvents.events[0].Note)
	assert.Equal(t, reason, *env.opEvents.events[0].Note)
}

func TestRecoverTask(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{{Name: "Ana", Phone: "11999990000"}}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)
	task, _, _, err := env.queue.NextTask(ctx, operator.ID)
	require.NoError(t, err)

	// Pending tasks cannot be recovered.
	require.Error(t, env.queue.RecoverTask(ctx, task.ID))

	require.NoError(t, env.queue.SkipTask(ctx, operator, task.ID, domain.SkipReasons[0]))
	require.NoError(t, env.queue.RecoverTask(ctx, task.ID))

	recovered, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, recovered.Status)
}

func TestClearOperatorQueueKeepsCompleted(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()
	operator := env.operator()

	_, err := env.queue.ImportBatch(ctx, []service.ImportRow{
		{Name: "Um", Phone: "11999990001"},
		{Name: "Dois", Phone: "11999990002"},
		{Name: "Três", Phone: "11999990003"},
	}, operator.ID, domain.CallTypePosVenda)
	require.NoError(t, err)

	tasks, err := env.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	_, err = env.queue.CompleteTask(ctx, operator, tasks[0].ID, service.CallReport{Summary: "ok"})
	require.NoError(t, err)
	require.NoError(t, env.queue.SkipTask(ctx, operator, tasks[1].ID, domain.SkipReasons[0]))

	require.NoError(t, env.queue.ClearOperatorQueue(ctx, operator.ID))

	remaining, err := env.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.TaskStatusCompleted, remaining[0].Status)
}

func TestRemoveDuplicatesKeepsFirst(t *testing.T) {
	env := newQueueEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, env.tasks.Create(ctx, &domain.Task{
			ClientID:   "client-1",
			Type:       domain.CallTypePosVenda,
			AssignedTo: "op-1",
		}))
	}
	require.NoError(t, env.tasks.Create(ctx, &domain.Task{
		ClientID:   "client-1",
		Type:       domain.CallTypeProspeccao,
		AssignedTo: "op-1",
	}))
	require.NoError(t, env.tasks.Create(ctx, &domain.Task{
		ClientID:   "client-1",
		Type:       domain.CallTypePosVenda,
		AssignedTo: "op-2",
	}))

	removed, err := env.queue.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// Oldest task of the duplicated group survives.
	_, err = env.tasks.GetByID(ctx, "task-1")
	require.NoError(t, err)

	// Running the sweep again removes nothing.
	removed, err = env.queue.RemoveDuplicates(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
