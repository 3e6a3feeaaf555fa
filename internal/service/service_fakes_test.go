package service_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/repository"
)

// In-memory repository fakes. IDs are sequential; ordering mirrors the SQL
// implementations (tasks by created_at ascending).

type fakeTaskRepo struct {
	seq   int
	clock func() time.Time
	tasks map[string]*domain.Task
}

func newFakeTaskRepo(clock func() time.Time) *fakeTaskRepo {
	return &fakeTaskRepo{clock: clock, tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.seq++
	task.ID = fmt.Sprintf("task-%d", r.seq)
	task.Status = domain.TaskStatusPending
	task.CreatedAt = r.clock().Add(time.Duration(r.seq) * time.Millisecond)
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, taskID string, status domain.TaskStatus, skipReason *string) error {
	task, ok := r.tasks[taskID]
	if !ok {
		return pgx.ErrNoRows
	}
	task.Status = status
	task.SkipReason = skipReason
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, taskID string) error {
	if _, ok := r.tasks[taskID]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tasks, taskID)
	return nil
}

func (r *fakeTaskRepo) DeleteBatch(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.tasks, id)
	}
	return nil
}

func (r *fakeTaskRepo) DeleteByOperator(_ context.Context, operatorID string, statuses []domain.TaskStatus) error {
	for id, task := range r.tasks {
		if task.AssignedTo != operatorID {
			continue
		}
		for _, s := range statuses {
			if task.Status == s {
				delete(r.tasks, id)
				break
			}
		}
	}
	return nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var result []domain.Task
	for _, task := range r.tasks {
		if filter.AssignedTo != nil && task.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.ClientID != nil && task.ClientID != *filter.ClientID {
			continue
		}
		if filter.Type != nil && task.Type != *filter.Type {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if task.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *task)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type fakeClientRepo struct {
	seq     int
	byPhone map[string]*domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{byPhone: make(map[string]*domain.Client)}
}

func (r *fakeClientRepo) Upsert(_ context.Context, client *domain.Client) error {
	existing, ok := r.byPhone[client.Phone]
	if ok {
		existing.Items = domain.MergeItems(existing.Items, client.Items)
		existing.Name = client.Name
		*client = *existing
		return nil
	}
	r.seq++
	client.ID = fmt.Sprintf("client-%d", r.seq)
	if client.Acceptance == "" {
		client.Acceptance = domain.LevelMedium
	}
	if client.Satisfaction == "" {
		client.Satisfaction = domain.LevelMedium
	}
	copied := *client
	r.byPhone[client.Phone] = &copied
	return nil
}

func (r *fakeClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	for _, client := range r.byPhone {
		if client.ID == id {
			copied := *client
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeClientRepo) GetByPhone(_ context.Context, phone string) (*domain.Client, error) {
	client, ok := r.byPhone[phone]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepo) List(_ context.Context) ([]domain.Client, error) {
	var result []domain.Client
	for _, client := range r.byPhone {
		result = append(result, *client)
	}
	return result, nil
}

func (r *fakeClientRepo) TouchLastInteraction(_ context.Context, clientID string, at time.Time) error {
	for _, client := range r.byPhone {
		if client.ID == clientID {
			client.LastInteraction = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeCallRepo struct {
	seq   int
	calls []domain.CallRecord
}

func (r *fakeCallRepo) Create(_ context.Context, call *domain.CallRecord) error {
	r.seq++
	call.ID = fmt.Sprintf("call-%d", r.seq)
	r.calls = append(r.calls, *call)
	return nil
}

func (r *fakeCallRepo) List(_ context.Context) ([]domain.CallRecord, error) {
	return append([]domain.CallRecord{}, r.calls...), nil
}

func (r *fakeCallRepo) ListSince(_ context.Context, since time.Time) ([]domain.CallRecord, error) {
	var result []domain.CallRecord
	for _, call := range r.calls {
		if !call.EndTime.Before(since) {
			result = append(result, call)
		}
	}
	return result, nil
}

func (r *fakeCallRepo) HasRecentCall(_ context.Context, clientID string, since time.Time) (bool, error) {
	for _, call := range r.calls {
		if call.ClientID == clientID && call.EndTime.After(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeOperatorEventRepo struct {
	seq    int
	events []domain.OperatorEvent
}

func (r *fakeOperatorEventRepo) Append(_ context.Context, event *domain.OperatorEvent) error {
	r.seq++
	event.ID = fmt.Sprintf("opev-%d", r.seq)
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeOperatorEventRepo) ListRange(_ context.Context, from, to time.Time) ([]domain.OperatorEvent, error) {
	var result []domain.OperatorEvent
	for _, ev := range r.events {
		if !ev.Timestamp.Before(from) && !ev.Timestamp.After(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

type fakeQuestionRepo struct {
	questions []domain.Question
}

func (r *fakeQuestionRepo) List(_ context.Context) ([]domain.Question, error) {
	return append([]domain.Question{}, r.questions...), nil
}

func (r *fakeQuestionRepo) Save(_ context.Context, q *domain.Question) error {
	for i, existing := range r.questions {
		if existing.ID == q.ID {
			r.questions[i] = *q
			return nil
		}
	}
	r.questions = append(r.questions, *q)
	return nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, id string) error {
	for i, existing := range r.questions {
		if existing.ID == id {
			r.questions = append(r.questions[:i], r.questions[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeProtocolRepo struct {
	seq       int
	protocols map[string]*domain.Protocol
}

func newFakeProtocolRepo() *fakeProtocolRepo {
	return &fakeProtocolRepo{protocols: make(map[string]*domain.Protocol)}
}

func (r *fakeProtocolRepo) Create(_ context.Context, p *domain.Protocol) error {
	r.seq++
	p.ID = fmt.Sprintf("protocol-%d", r.seq)
	copied := *p
	r.protocols[p.ID] = &copied
	return nil
}

func (r *fakeProtocolRepo) GetByID(_ context.Context, id string) (*domain.Protocol, error) {
	p, ok := r.protocols[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProtocolRepo) Update(_ context.Context, protocolID string, update repository.ProtocolUpdate) error {
	p, ok := r.protocols[protocolID]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.OwnerID != nil {
		p.OwnerID = *update.OwnerID
	}
	if update.ResolutionSummary != nil {
		p.ResolutionSummary = update.ResolutionSummary
	}
	if update.ClosedAt != nil {
		p.ClosedAt = update.ClosedAt
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProtocolRepo) List(_ context.Context, filter repository.ProtocolFilter) ([]domain.Protocol, error) {
	var result []domain.Protocol
	for _, p := range r.protocols {
		if filter.OwnerID != nil || filter.OpenedByID != nil {
			visible := (filter.OwnerID != nil && p.OwnerID == *filter.OwnerID) ||
				(filter.OpenedByID != nil && p.OpenedByID == *filter.OpenedByID)
			if !visible {
				continue
			}
		}
		if filter.DepartmentID != nil && p.DepartmentID != *filter.DepartmentID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if p.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeProtocolEventRepo struct {
	seq    int
	events []domain.ProtocolEvent
}

func (r *fakeProtocolEventRepo) Append(_ context.Context, event *domain.ProtocolEvent) error {
	r.seq++
	event.ID = fmt.Sprintf("prev-%d", r.seq)
	event.CreatedAt = time.Now()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeProtocolEventRepo) ListByProtocol(_ context.Context, protocolID string) ([]domain.ProtocolEvent, error) {
	var result []domain.ProtocolEvent
	for _, ev := range r.events {
		if ev.ProtocolID == protocolID {
			result = append(result, ev)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) *domain.User {
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	copied := user
	r.users[user.ID] = &copied
	return &copied
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	created := r.add(*user)
	*user = *created
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}
