package council

import (
	"fmt"
	"strings"
)

// escalationKeywords trigger a lightweight session's promotion to full
// council when enough of them appear in the situation assessment.
var escalationKeywords = []string{
	"complex",
	"trade-off",
	"irreversible",
	"architectural",
	"migration",
	"breaking change",
	"high stakes",
	"significant risk",
}

const escalationKeywordThreshold = 3

// escalationReason decides whether a lightweight session escalates, and
// why. Triggers: fewer than two courses of action, or at least three
// keywords matching the assessment case-insensitively.
func escalationReason(coaCount int, assessment string) (string, bool) {
	var reasons []string

	if coaCount < 2 {
		reasons = append(reasons, fmt.Sprintf("only %d course(s) of action produced", coaCount))
	}

	lower := strings.ToLower(assessment)
	var matched []string
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) >= escalationKeywordThreshold {
		reasons = append(reasons, "assessment flagged: "+strings.Join(matched, ", "))
	}

	if len(reasons) == 0 {
		return "", false
	}
	return strings.Join(reasons, "; "), true
}
