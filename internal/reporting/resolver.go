package reporting

import (
	"fmt"
	"strings"

	"github.com/telesales/callops-service/internal/domain"
)

// ResolveResponse finds the answer a call recorded for a question.
// Historical call logs keyed answers three different ways, so resolution is
// layered: the question id first, then a diacritic and case insensitive
// match on the question text, then the legacy "pv{order}" key. Returns the
// trimmed answer and whether one was found.
func ResolveResponse(responses map[string]any, q domain.Question) (string, bool) {
	if len(responses) == 0 {
		return "", false
	}
	if answer, ok := asAnswer(responses[q.ID]); ok {
		return answer, true
	}

	folded := domain.Fold(q.Text)
	for key, value := range responses {
		if key == domain.ResponseKeySummary || key == domain.ResponseKeyCallType {
			continue
		}
		if domain.Fold(key) == folded {
			if answer, ok := asAnswer(value); ok {
				return answer, true
			}
		}
	}

	if answer, ok := asAnswer(responses[fmt.Sprintf("pv%d", q.Order)]); ok {
		return answer, true
	}
	return "", false
}

func asAnswer(value any) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
