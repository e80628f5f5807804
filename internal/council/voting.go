package council

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// proximityWindow is how many bytes before a label's first occurrence are
// scanned for a rank marker. Votes are free text; this is a heuristic, not
// a structured parse, and malformed ballots simply earn no credit.
const proximityWindow = 24

// maxFinalists caps how many top-scored candidates advance to premortem.
const maxFinalists = 3

// BordaScores aggregates free-text rankings into per-label Borda counts.
// For each vote and label, the nearest rank marker ("1.", "2.", ...)
// shortly before the label's first appearance awards N-rank+1 points,
// where N is the candidate count.
func BordaScores(votes []string, labels []string) map[string]int {
	n := len(labels)
	scores := make(map[string]int, n)
	for _, label := range labels {
		scores[label] = 0
	}
	for _, vote := range votes {
		lower := strings.ToLower(vote)
		for _, label := range labels {
			idx := strings.Index(lower, strings.ToLower(label))
			if idx < 0 {
				continue
			}
			if rank := nearestRankBefore(lower, idx, n); rank > 0 {
				scores[label] += n - rank + 1
			}
		}
	}
	return scores
}

// nearestRankBefore finds the rank marker closest to position idx within
// the proximity window, or 0 when none is present.
func nearestRankBefore(text string, idx, n int) int {
	start := idx - proximityWindow
	if start < 0 {
		start = 0
	}
	window := text[start:idx]

	rank, best := 0, -1
	for r := 1; r <= n; r++ {
		marker := strconv.Itoa(r) + "."
		if pos := strings.LastIndex(window, marker); pos > best {
			best = pos
			rank = r
		}
	}
	return rank
}

// Convergence maps a score distribution to [0,1]: min(1, stddev/mean).
// Fewer than two candidates, or a zero mean, is exactly 0.
func Convergence(scores map[string]int) float64 {
	if len(scores) < 2 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	mean := sum / float64(len(scores))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(scores))
	cv := math.Sqrt(variance) / mean
	if cv > 1 {
		return 1
	}
	return cv
}

// Finalist is a candidate selected by rank aggregation.
type Finalist struct {
	Label   string
	Score   int
	Content string
}

// topFinalists orders labels by descending score (label ascending on ties)
// and keeps at most maxFinalists.
func topFinalists(scores map[string]int, contents map[string]string) []Finalist {
	out := make([]Finalist, 0, len(scores))
	for label, score := range scores {
		out = append(out, Finalist{Label: label, Score: score, Content: contents[label]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > maxFinalists {
		out = out[:maxFinalists]
	}
	return out
}
