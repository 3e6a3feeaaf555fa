package reporting

import (
	"context"
	"time"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/repository"
	apperrors "github.com/telesales/callops-service/pkg/util"
)

// Service loads the data sets the aggregation functions consume. All the
// computation itself is pure and lives in the sibling files.
type Service struct {
	calls          repository.CallRepository
	tasks          repository.TaskRepository
	questions      repository.QuestionRepository
	operatorEvents repository.OperatorEventRepository
	protocols      repository.ProtocolRepository
	users          repository.UserRepository
	now            func() time.Time
}

// Dependencies bundles the repositories the reporting service reads from.
type Dependencies struct {
	CallRepo          repository.CallRepository
	TaskRepo          repository.TaskRepository
	QuestionRepo      repository.QuestionRepository
	OperatorEventRepo repository.OperatorEventRepository
	ProtocolRepo      repository.ProtocolRepository
	UserRepo          repository.UserRepository
	Now               func() time.Time
}

// NewService constructs the reporting service.
func NewService(deps Dependencies) *Service {
	svc := &Service{
		calls:          deps.CallRepo,
		tasks:          deps.TaskRepo,
		questions:      deps.QuestionRepo,
		operatorEvents: deps.OperatorEventRepo,
		protocols:      deps.ProtocolRepo,
		users:          deps.UserRepo,
		now:            deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Satisfaction builds the satisfaction panel over all recorded calls.
func (s *Service) Satisfaction(ctx context.Context) (SatisfactionReport, error) {
	calls, err := s.calls.List(ctx)
	if err != nil {
		return SatisfactionReport{}, apperrors.MapError(err)
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return SatisfactionReport{}, apperrors.MapError(err)
	}
	return SatisfactionFromCalls(calls, questions), nil
}

// Detailed builds the drill-down report.
func (s *Service) Detailed(ctx context.Context) (DetailedStats, error) {
	calls, err := s.calls.List(ctx)
	if err != nil {
		return DetailedStats{}, apperrors.MapError(err)
	}
	questions, err := s.questions.List(ctx)
	if err != nil {
		return DetailedStats{}, apperrors.MapError(err)
	}
	skipped, err := s.tasks.List(ctx, repository.TaskFilter{
		Statuses: []domain.TaskStatus{domain.TaskStatusSkipped},
	})
	if err != nil {
		return DetailedStats{}, apperrors.MapError(err)
	}
	protocols, err := s.protocols.List(ctx, repository.ProtocolFilter{})
	if err != nil {
		return DetailedStats{}, apperrors.MapError(err)
	}
	return BuildDetailedStats(calls, questions, skipped, protocols), nil
}

// Ranking scores operator activity inside the given window.
func (s *Service) Ranking(ctx context.Context, from, to time.Time) ([]OperatorScore, []TMAPoint, error) {
	events, err := s.operatorEvents.ListRange(ctx, from, to)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	calls, err := s.calls.ListSince(ctx, from)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	inWindow := calls[:0]
	for _, call := range calls {
		if !call.EndTime.After(to) {
			inWindow = append(inWindow, call)
		}
	}
	skipped, err := s.tasks.List(ctx, repository.TaskFilter{
		Statuses: []domain.TaskStatus{domain.TaskStatusSkipped},
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return RankOperators(users, inWindow, skipped, events), TMATimeline(inWindow), nil
}

// DashboardSnapshot is the cached overview payload the console polls.
type DashboardSnapshot struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	PendingTasks    int                `json:"pending_tasks"`
	CompletedTasks  int                `json:"completed_tasks"`
	SkippedTasks    int                `json:"skipped_tasks"`
	CallsToday      int                `json:"calls_today"`
	OpenProtocols   int                `json:"open_protocols"`
	UrgentProtocols int                `json:"urgent_protocols"`
	Satisfaction    SatisfactionReport `json:"satisfaction"`
}

// Snapshot assembles the dashboard overview in one pass.
func (s *Service) Snapshot(ctx context.Context) (*DashboardSnapshot, error) {
	now := s.now()
	snapshot := &DashboardSnapshot{GeneratedAt: now}

	tasks, err := s.tasks.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusPending:
			snapshot.PendingTasks++
		case domain.TaskStatusCompleted:
			snapshot.CompletedTasks++
		case domain.TaskStatusSkipped:
			snapshot.SkippedTasks++
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.calls.ListSince(ctx, midnight)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	snapshot.CallsToday = len(today)

	protocols, err := s.protocols.List(ctx, repository.ProtocolFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, p := range protocols {
		if p.Status != domain.ProtocolFechado {
			snapshot.OpenProtocols++
		}
		if p.Urgent(domain.RoleAdmin) {
			snapshot.UrgentProtocols++
		}
	}

	snapshot.Satisfaction, err = s.Satisfaction(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
