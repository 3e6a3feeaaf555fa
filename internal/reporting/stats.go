package reporting

import (
	"github.com/telesales/callops-service/internal/domain"
)

// positivityTokens mark an answer as favorable when its folded text
// equals one of them. Equality matters: "Não atendeu" folds to a string
// that contains "atendeu" but is not a positive answer.
var positivityTokens = []string{"sim", "otimo", "atendeu", "no prazo", "alto", "boa"}

func isPositive(answer string) bool {
	folded := domain.Fold(answer)
	for _, token := range positivityTokens {
		if folded == token {
			return true
		}
	}
	return false
}

// AnswerCount is one bar of a question's answer distribution.
type AnswerCount struct {
	Answer string `json:"answer"`
	Count  int    `json:"count"`
}

// QuestionStats aggregates one question across the selected calls.
type QuestionStats struct {
	QuestionID   string        `json:"question_id"`
	Text         string        `json:"text"`
	Distribution []AnswerCount `json:"distribution"`
	Answered     int           `json:"answered"`
	Positive     int           `json:"positive"`
	PositivePct  float64       `json:"positive_pct"`
}

// DetailedStats is the drill-down report payload.
type DetailedStats struct {
	Questions     []QuestionStats `json:"questions"`
	SkipReasons   []AnswerCount   `json:"skip_reasons"`
	ByDepartment  []AnswerCount   `json:"protocols_by_department"`
	TotalCalls    int             `json:"total_calls"`
	TotalSkipped  int             `json:"total_skipped"`
	TotalPositive int             `json:"total_positive"`
}

// BuildDetailedStats aggregates answer distributions, skip reasons and
// protocol routing over the given data set. Answers are grouped by
// diacritic-insensitive equality against the question's configured options;
// answers matching no option still count as answered but are left out of
// the distribution.
func BuildDetailedStats(calls []domain.CallRecord, questions []domain.Question, skipped []domain.Task, protocols []domain.Protocol) DetailedStats {
	stats := DetailedStats{TotalCalls: len(calls), TotalSkipped: len(skipped)}

	for _, q := range questions {
		qs := QuestionStats{QuestionID: q.ID, Text: q.Text}
		counts := make(map[string]int)
		var order []string

		for _, call := range calls {
			if !q.AppliesTo(call.Type) {
				continue
			}
			answer, ok := ResolveResponse(call.Responses, q)
			if !ok {
				continue
			}
			if canonical, matched := canonicalOption(answer, q.Options); matched {
				if _, seen := counts[canonical]; !seen {
					order = append(order, canonical)
				}
				counts[canonical]++
			}
			qs.Answered++
			if isPositive(answer) {
				qs.Positive++
				stats.TotalPositive++
			}
		}

		for _, answer := range order {
			qs.Distribution = append(qs.Distribution, AnswerCount{Answer: answer, Count: counts[answer]})
		}
		if qs.Answered > 0 {
			qs.PositivePct = round1(float64(qs.Positive) / float64(qs.Answered) * 100)
		}
		stats.Questions = append(stats.Questions, qs)
	}

	stats.SkipReasons = skipReasonDistribution(skipped)
	stats.ByDepartment = departmentDistribution(protocols)
	return stats
}

func canonicalOption(answer string, options []string) (string, bool) {
	folded := domain.Fold(answer)
	for _, opt := range options {
		if domain.Fold(opt) == folded {
			return opt, true
		}
	}
	return "", false
}

func skipReasonDistribution(skipped []domain.Task) []AnswerCount {
	counts := make(map[string]int)
	var order []string
	for _, task := range skipped {
		reason := "Não informado"
		if task.SkipReason != nil && *task.SkipReason != "" {
			reason = *task.SkipReason
		}
		if _, seen := counts[reason]; !seen {
			order = append(order, reason)
		}
		counts[reason]++
	}
	result := make([]AnswerCount, 0, len(order))
	for _, reason := range order {
		result = append(result, AnswerCount{Answer: reason, Count: counts[reason]})
	}
	return result
}

func departmentDistribution(protocols []domain.Protocol) []AnswerCount {
	names := make(map[string]string, len(domain.Departments))
	for _, d := range domain.Departments {
		names[d.ID] = d.Name
	}
	counts := make(map[string]int)
	for _, p := range protocols {
		name, ok := names[p.DepartmentID]
		if !ok {
			name = p.DepartmentID
		}
		counts[name]++
	}
	result := make([]AnswerCount, 0, len(domain.Departments))
	for _, d := range domain.Departments {
		if counts[d.Name] > 0 {
			result = append(result, AnswerCount{Answer: d.Name, Count: counts[d.Name]})
		}
	}
	return result
}
