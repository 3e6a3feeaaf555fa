package domain

import (
	"strings"
	"time"
)

// ClassificationLevel grades client acceptance and satisfaction.
type ClassificationLevel string

const (
	LevelLow    ClassificationLevel = "low"
	LevelMedium ClassificationLevel = "medium"
	LevelHigh   ClassificationLevel = "high"
)

// Client is a customer reachable by outbound calls. Identity is the
// normalized phone number; equipment items accumulate across upserts.
type Client struct {
	ID              string
	Name            string
	Phone           string
	Address         string
	Items           []string
	Acceptance      ClassificationLevel
	Satisfaction    ClassificationLevel
	LastInteraction *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MergeItems unions two equipment lists preserving first-seen order.
func MergeItems(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, it := range append(append([]string{}, existing...), incoming...) {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		merged = append(merged, it)
	}
	return merged
}
