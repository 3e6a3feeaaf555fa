package reporting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telesales/callops-service/internal/domain"
	"github.com/telesales/callops-service/internal/reporting"
)

func TestResolveResponse(t *testing.T) {
	question := domain.Question{
		ID:    "q1",
		Text:  "Você recomendaria a empresa?",
		Order: 3,
	}

	tests := map[string]struct {
		responses map[string]any
		expected  string
		found     bool
	}{
		"by_id": {
			responses: map[string]any{"q1": "Sim"},
			expected:  "Sim",
			found:     true,
		},
		"id_wins_over_text_and_legacy": {
			responses: map[string]any{
				"q1": "Sim",
				"voce recomendaria a empresa?": "Não",
				"pv3":                          "Talvez",
			},
			expected: "Sim",
			found:    true,
		},
		"by_folded_text": {
			responses: map[string]any{"VOCÊ RECOMENDARIA A EMPRESA?  ": "Talvez"},
			expected:  "Talvez",
			found:     true,
		},
		"by_legacy_key": {
			responses: map[string]any{"pv3": "Não"},
			expected:  "Não",
			found:     true,
		},
		"text_wins_over_legacy": {
			responses: map[string]any{
				"você recomendaria a empresa?": "Sim",
				"pv3":                          "Não",
			},
			expected: "Sim",
			found:    true,
		},
		"reserved_keys_ignored": {
			responses: map[string]any{
				domain.ResponseKeySummary:  "resumo longo",
				domain.ResponseKeyCallType: "PÓS-VENDA",
			},
			found: false,
		},
		"empty_answer_not_found": {
			responses: map[string]any{"q1": "   "},
			found:     false,
		},
		"non_string_ignored": {
			responses: map[string]any{"q1": 42},
			found:     false,
		},
		"nil_responses": {
			responses: nil,
			found:     false,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			answer, ok := reporting.ResolveResponse(tc.responses, question)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, answer)
		})
	}
}
