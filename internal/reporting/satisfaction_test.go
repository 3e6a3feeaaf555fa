package reporting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/reporting"
)

func posVendaCall(responses map[string]any) domain.CallRecord {
	return domain.CallRecord{Type: domain.CallTypePosVenda, Responses: responses}
}

func TestSatisfactionIDE(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv8", Text: "Você recomendaria a empresa?", Type: string(domain.CallTypePosVenda), Order: 8, StageID: "marca"},
	}

	calls := []domain.CallRecord{
		posVendaCall(map[string]any{"pv8": "Sim"}),     // 100
		posVendaCall(map[string]any{"pv8": "Talvez"}),  // 50
		posVendaCall(map[string]any{"pv8": "Não"}),     // 0
		posVendaCall(map[string]any{"pv8": "inválido"}), // unscored, excluded
	}

	report := reporting.SatisfactionFromCalls(calls, questions)
	assert.Equal(t, 3, report.IDESamples)
	assert.InDelta(t, 50.0, report.IDE, 0.01)
}

func TestSatisfactionIDEZeroWhenNoData(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv8", Text: "Você recomendaria a empresa?", Type: string(domain.CallTypePosVenda), Order: 8},
	}

	report := reporting.SatisfactionFromCalls(nil, questions)
	assert.Zero(t, report.IDE)
	assert.Zero(t, report.IDESamples)
	assert.Zero(t, report.WeightedScore)
}

func TestSatisfactionIgnoresOtherCallTypes(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv8", Text: "Você recomendaria a empresa?", Type: string(domain.CallTypePosVenda), Order: 8},
	}
	calls := []domain.CallRecord{
		{Type: domain.CallTypeProspeccao, Responses: map[string]any{"pv8": "Sim"}},
	}

	report := reporting.SatisfactionFromCalls(calls, questions)
	assert.Zero(t, report.IDESamples)
}

func TestSatisfactionStageAverages(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv1", Text: "Como foi o atendimento na compra?", Type: string(domain.CallTypePosVenda), Order: 1, StageID: "atendimento"},
		{ID: "pv4", Text: "A entrega ocorreu no prazo?", Type: string(domain.CallTypePosVenda), Order: 4, StageID: "logistica"},
	}
	calls := []domain.CallRecord{
		posVendaCall(map[string]any{"pv1": "Ótimo", "pv4": "No prazo"}),
		posVendaCall(map[string]any{"pv1": "Precisa melhorar", "pv4": "Pequeno atraso"}),
	}

	report := reporting.SatisfactionFromCalls(calls, questions)

	byStage := make(map[string]reporting.StageScore)
	for _, s := range report.Stages {
		byStage[s.StageID] = s
	}
	require.Contains(t, byStage, "atendimento")
	require.Contains(t, byStage, "logistica")

	assert.InDelta(t, 50.0, byStage["atendimento"].Average, 0.01)
	assert.Equal(t, 2, byStage["atendimento"].Samples)
	assert.InDelta(t, 75.0, byStage["logistica"].Average, 0.01)

	// Stages without answers report zero but stay listed.
	assert.Zero(t, byStage["marca"].Average)
	assert.Zero(t, byStage["marca"].Samples)

	// Weighted score only averages over stages with samples.
	expected := (50.0*0.20 + 75.0*0.20) / 0.40
	assert.InDelta(t, expected, report.WeightedScore, 0.1)
}

func TestSatisfactionStageAverageRoundsToInteger(t *testing.T) {
	questions := []domain.Question{
		{ID: "pv1", Text: "Como foi o atendimento na compra?", Type: string(domain.CallTypePosVenda), Order: 1, StageID: "atendimento"},
	}
	calls := []domain.CallRecord{
		posVendaCall(map[string]any{"pv1": "Ótimo"}),
		posVendaCall(map[string]any{"pv1": "Ótimo"}),
		posVendaCall(map[string]any{"pv1": "Precisa melhorar"}),
	}

	report := reporting.SatisfactionFromCalls(calls, questions)
	for _, s := range report.Stages {
		if s.StageID == "atendimento" {
			// 200/3 rounds to a whole percentage.
			assert.InDelta(t, 67.0, s.Average, 0.001)
			return
		}
	}
	t.Fatal("stage atendimento not reported")
}
