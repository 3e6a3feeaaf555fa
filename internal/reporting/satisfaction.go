package reporting

import (
	"math"
	"sort"
	"strings"

	"github.com/telesales/callops-service/internal/domain"
)

// StageScore is the aggregated satisfaction of one post-sale journey stage.
type StageScore struct {
	StageID string  `json:"stage_id"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Weight  float64 `json:"weight"`
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// SatisfactionReport is the satisfaction panel payload.
type SatisfactionReport struct {
	IDE           float64      `json:"ide"`
	IDESamples    int          `json:"ide_samples"`
	WeightedScore float64      `json:"weighted_score"`
	Stages        []StageScore `json:"stages"`
}

// SatisfactionFromCalls computes the recommendation index and the per-stage
// satisfaction averages over post-sale calls. Answers map to a 0-2 ordinal
// scale; each scored answer contributes its percentage of the maximum.
// Missing data yields zeros, never an error.
func SatisfactionFromCalls(calls []domain.CallRecord, questions []domain.Question) SatisfactionReport {
	report := SatisfactionReport{}

	var ideQuestion *domain.Question
	for i, q := range questions {
		if strings.Contains(domain.Fold(q.Text), "recomendaria") {
			ideQuestion = &questions[i]
			break
		}
	}

	stageTotals := make(map[string]float64)
	stageCounts := make(map[string]int)
	var ideTotal float64

	for _, call := range calls {
		if call.Type != domain.CallTypePosVenda {
			continue
		}
		for _, q := range questions {
			if !q.AppliesTo(domain.CallTypePosVenda) {
				continue
			}
			answer, ok := ResolveResponse(call.Responses, q)
			if !ok {
				continue
			}
			score, scored := domain.ScoreMap[answer]
			if !scored {
				continue
			}
			pct := float64(score) / 2 * 100

			if ideQuestion != nil && q.ID == ideQuestion.ID {
				ideTotal += pct
				report.IDESamples++
			}
			if q.StageID != "" {
				stageTotals[q.StageID] += pct
				stageCounts[q.StageID]++
			}
		}
	}

	if report.IDESamples > 0 {
		report.IDE = math.Round(ideTotal / float64(report.IDESamples))
	}

	var weightedSum, weightTotal float64
	for stageID, cfg := range domain.Stages {
		score := StageScore{StageID: stageID, Label: cfg.Label, Color: cfg.Color, Weight: cfg.Weight}
		if count := stageCounts[stageID]; count > 0 {
			score.Average = math.Round(stageTotals[stageID] / float64(count))
			score.Samples = count
			weightedSum += score.Average * cfg.Weight
			weightTotal += cfg.Weight
		}
		report.Stages = append(report.Stages, score)
	}
	sort.Slice(report.Stages, func(i, j int) bool {
		return report.Stages[i].Weight > report.Stages[j].Weight ||
			(report.Stages[i].Weight == report.Stages[j].Weight && report.Stages[i].StageID < report.Stages[j].StageID)
	})
	if weightTotal > 0 {
		report.WeightedScore = round1(weightedSum / weightTotal)
	}
	return report
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
