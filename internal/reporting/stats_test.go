package reporting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/reporting"
)

func TestBuildDetailedStatsDistribution(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv1", Text: "Como foi o atendimento?", Options: []string{"Ótimo", "Ok", "Precisa melhorar"}, Type: string(domain.CallTypePosVenda), Order: 1},
	}
	calls := []domain.CallRecord{
		posVendaCall(map[string]any{"pv1": "Ótimo"}),
		posVendaCall(map[string]any{"pv1": "otimo"}), // folds onto the configured option
		posVendaCall(map[string]any{"pv1": "Precisa melhorar"}),
		posVendaCall(map[string]any{"pv1": "resposta livre"}),
	}

	stats := reporting.BuildDetailedStats(calls, questions, nil, nil)
	require.Len(t, stats.Questions, 1)

	q := stats.Questions[0]
	assert.Equal(t, 4, q.Answered)

	counts := make(map[string]int)
	for _, d := range q.Distribution {
		counts[d.Answer] = d.Count
	}
	assert.Equal(t, 2, counts["Ótimo"])
	assert.Equal(t, 1, counts["Precisa melhorar"])
	// Free-text answers count as answered but never enter the distribution.
	assert.NotContains(t, counts, "resposta livre")
}

func TestBuildDetailedStatsPositivity(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv1", Text: "Atendeu às expectativas?", Options: []string{"Atendeu", "Não atendeu"}, Type: string(domain.CallTypePosVenda), Order: 1},
	}
	calls := []domain.CallRecord{
		posVendaCall(map[string]any{"pv1": "Atendeu"}),
		// Contains "atendeu" after folding but is a negative answer, so
		// exact equality must keep it out of the positive count.
		posVendaCall(map[string]any{"pv1": "Não atendeu"}),
		posVendaCall(map[string]any{"pv1": "Sim, teve dificuldades"}),
	}

	stats := reporting.BuildDetailedStats(calls, questions, nil, nil)
	require.Len(t, stats.Questions, 1)
	assert.Equal(t, 1, stats.Questions[0].Positive)
	assert.InDelta(t, 33.3, stats.Questions[0].PositivePct, 0.1)
}

func TestBuildDetailedStatsSkipReasons(t *testing.T) {
	reason := domain.SkipReasons[0]
	skipped := []domain.Task{
		{Status: domain.TaskStatusSkipped, SkipReason: &reason},
		{Status: domain.TaskStatusSkipped, SkipReason: &reason},
		{Status: domain.TaskStatusSkipped},
	}

	stats := reporting.BuildDetailedStats(nil, nil, skipped, nil)
	require.Len(t, stats.SkipReasons, 2)

	counts := make(map[string]int)
	for _, d := range stats.SkipReasons {
		counts[d.Answer] = d.Count
	}
	assert.Equal(t, 2, counts[reason])
	assert.Equal(t, 1, counts["Não informado"])
}

func TestBuildDetailedStatsDepartments(t *testing.T) {
	protocols := []domain.Protocol{
		{DepartmentID: "tecnico"},
		{DepartmentID: "tecnico"},
		{DepartmentID: "financeiro"},
	}

	stats := reporting.BuildDetailedStats(nil, nil, nil, protocols)

	counts := make(map[string]int)
	for _, d := range stats.ByDepartment {
		counts[d.Answer] = d.Count
	}
	assert.Equal(t, 2, counts["Suporte Técnico"])
	assert.Equal(t, 1, counts["Financeiro"])
}
