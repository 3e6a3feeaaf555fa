package reporting

import (
	"sort"
	"time"

	"github.com/telesales/callops-service/internal/domain"
)

// maxIdleGap discards pauses long enough to be breaks or shift ends rather
// than between-call idle time.
const maxIdleGap = 2 * time.Hour

// OperatorScore is one row of the productivity ranking.
type OperatorScore struct {
	OperatorID string  `json:"operator_id"`
	Name       string  `json:"name"`
	Completed  int     `json:"completed"`
	Skipped    int     `json:"skipped"`
	SkipPct    float64 `json:"skip_pct"`
	AvgGapSec  float64 `json:"avg_gap_sec"`
	TMASeconds float64 `json:"tma_seconds"`
	Score      float64 `json:"score"`
}

// TMAPoint is one day of the handling-time timeline.
type TMAPoint struct {
	Date       string  `json:"date"`
	TMASeconds float64 `json:"tma_seconds"`
	Calls      int     `json:"calls"`
}

// RankOperators scores every non-admin user. Completed counts come from
// call records and skip counts from tasks left in the skipped status, so a
// task that was skipped, recovered and then completed counts only as a
// completion. The operator event log contributes the idle gaps: the time
// between finishing a call and the next start or skip, discarding gaps of
// two hours or more as off-queue time. Score rewards completions and
// penalizes average idle minutes, floored at zero.
func RankOperators(users []domain.User, calls []domain.CallRecord, tasks []domain.Task, events []domain.OperatorEvent) []OperatorScore {
	type acc struct {
		name      string
		completed int
		skipped   int
		gapTotal  time.Duration
		gapCount  int
		callTime  int
		callCount int
		lastDone  *time.Time
	}
	byOperator := make(map[string]*acc, len(users))
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			continue
		}
		byOperator[u.ID] = &acc{name: u.Name}
	}

	// Events arrive sorted by timestamp ascending.
	for _, ev := range events {
		a, ok := byOperator[ev.OperatorID]
		if !ok {
			continue
		}
		switch ev.EventType {
		case domain.OperatorEventFinish:
			t := ev.Timestamp
			a.lastDone = &t
		case domain.OperatorEventStartNext, domain.OperatorEventSkip:
			if a.lastDone != nil {
				gap := ev.Timestamp.Sub(*a.lastDone)
				if gap > 0 && gap < maxIdleGap {
					a.gapTotal += gap
					a.gapCount++
				}
				a.lastDone = nil
			}
		}
	}

	for _, call := range calls {
		a, ok := byOperator[call.OperatorID]
		if !ok {
			continue
		}
		a.completed++
		a.callTime += call.Duration
		a.callCount++
	}

	for _, task := range tasks {
		if task.Status != domain.TaskStatusSkipped {
			continue
		}
		if a, ok := byOperator[task.AssignedTo]; ok {
			a.skipped++
		}
	}

	scores := make([]OperatorScore, 0, len(byOperator))
	for id, a := range byOperator {
		s := OperatorScore{
			OperatorID: id,
			Name:       a.name,
			Completed:  a.completed,
			Skipped:    a.skipped,
		}
		if total := a.completed + a.skipped; total > 0 {
			s.SkipPct = round1(float64(a.skipped) / float64(total) * 100)
		}
		if a.gapCount > 0 {
			s.AvgGapSec = round1(a.gapTotal.Seconds() / float64(a.gapCount))
		}
		if a.callCount > 0 {
			s.TMASeconds = round1(float64(a.callTime) / float64(a.callCount))
		}
		score := float64(a.completed)*10 - (s.AvgGapSec/60)*5
		if score < 0 {
			score = 0
		}
		s.Score = round1(score)
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].OperatorID < scores[j].OperatorID
	})
	return scores
}

// TMATimeline buckets average call duration per day, oldest first.
func TMATimeline(calls []domain.CallRecord) []TMAPoint {
	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, call := range calls {
		day := call.EndTime.Format("2006-01-02")
		totals[day] += call.Duration
		counts[day]++
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]TMAPoint, 0, len(days))
	for _, day := range days {
		points = append(points, TMAPoint{
			Date:       day,
			TMASeconds: round1(float64(totals[day]) / float64(counts[day])),
			Calls:      counts[day],
		})
	}
	return points
}
