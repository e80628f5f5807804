package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBordaScores(t *testing.T) {
	labels := []string{"COA A", "COA B"}

	t.Run("unanimous ranking", func(t *testing.T) {
		// Three voters all put COA A first and COA B second.
		votes := []string{
			"1. COA A - event sourcing fits the audit requirement\n2. COA B - the monolith defers the problem",
			"1. COA A\n2. COA B",
			"My ranking:\n1. COA A because of replayability\n2. COA B",
		}
		scores := BordaScores(votes, labels)
		assert.Equal(t, 6, scores["COA A"], "first place is worth 2 points per voter")
		assert.Equal(t, 3, scores["COA B"], "second place is worth 1 point per voter")
	})

	t.Run("split ranking", func(t *testing.T) {
		votes := []string{
			"1. COA A\n2. COA B",
			"1. COA B\n2. COA A",
		}
		scores := BordaScores(votes, labels)
		assert.Equal(t, 3, scores["COA A"])
		assert.Equal(t, 3, scores["COA B"])
	})

	t.Run("case insensitive matching", func(t *testing.T) {
		scores := BordaScores([]string{"1. coa a\n2. coa b"}, labels)
		assert.Equal(t, 2, scores["COA A"])
		assert.Equal(t, 1, scores["COA B"])
	})

	t.Run("malformed ballot earns nothing", func(t *testing.T) {
		votes := []string{
			"I like COA A the most, COA B not so much", // no rank markers
			"completely unrelated text",
		}
		scores := BordaScores(votes, labels)
		assert.Equal(t, 0, scores["COA A"])
		assert.Equal(t, 0, scores["COA B"])
	})

	t.Run("marker outside the proximity window is ignored", func(t *testing.T) {
		padding := "1. this is a very long digression that pushes the marker far away "
		scores := BordaScores([]string{padding + "COA A"}, labels)
		assert.Equal(t, 0, scores["COA A"])
	})

	t.Run("every label always has an entry", func(t *testing.T) {
		scores := BordaScores(nil, labels)
		require.Len(t, scores, 2)
		assert.Contains(t, scores, "COA A")
		assert.Contains(t, scores, "COA B")
	})

	t.Run("scores are bounded by voters times candidates", func(t *testing.T) {
		votes := []string{
			"1. COA A\n2. COA B",
			"1. COA A\n2. COA B",
			"1. COA B\n2. COA A",
		}
		scores := BordaScores(votes, labels)
		total := 0
		for _, s := range scores {
			assert.GreaterOrEqual(t, s, 0)
			total += s
		}
		// Each complete ballot distributes n + (n-1) + ... + 1 points.
		assert.LessOrEqual(t, total, len(votes)*3)
	})
}

func TestNearestRankBefore(t *testing.T) {
	t.Run("closest marker wins", func(t *testing.T) {
		text := "1. something 2. coa a"
		idx := 16 // position of "coa a"
		assert.Equal(t, 2, nearestRankBefore(text, idx, 3))
	})

	t.Run("no marker in window", func(t *testing.T) {
		assert.Equal(t, 0, nearestRankBefore("coa a is great", 0, 3))
	})
}

func TestConvergence(t *testing.T) {
	t.Run("fewer than two candidates", func(t *testing.T) {
		assert.Zero(t, Convergence(map[string]int{}))
		assert.Zero(t, Convergence(map[string]int{"COA A": 5}))
	})

	t.Run("zero mean", func(t *testing.T) {
		assert.Zero(t, Convergence(map[string]int{"COA A": 0, "COA B": 0}))
	})

	t.Run("identical scores have zero spread", func(t *testing.T) {
		assert.Zero(t, Convergence(map[string]int{"COA A": 4, "COA B": 4}))
	})

	t.Run("differentiated scores converge", func(t *testing.T) {
		c := Convergence(map[string]int{"COA A": 6, "COA B": 2})
		assert.Greater(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	})

	t.Run("clamped to one", func(t *testing.T) {
		c := Convergence(map[string]int{"COA A": 100, "COA B": 0, "COA C": 0, "COA D": 0})
		assert.Equal(t, 1.0, c)
	})
}

func TestTopFinalists(t *testing.T) {
	contents := map[string]string{
		"COA A": "plan a", "COA B": "plan b", "COA C": "plan c", "COA D": "plan d",
	}

	t.Run("descending score order", func(t *testing.T) {
		scores := map[string]int{"COA A": 3, "COA B": 6, "COA C": 1}
		finalists := topFinalists(scores, contents)
		require.Len(t, finalists, 3)
		assert.Equal(t, "COA B", finalists[0].Label)
		assert.Equal(t, "plan b", finalists[0].Content)
		assert.Equal(t, "COA A", finalists[1].Label)
		assert.Equal(t, "COA C", finalists[2].Label)
	})

	t.Run("ties break on label", func(t *testing.T) {
		scores := map[string]int{"COA B": 4, "COA A": 4}
		finalists := topFinalists(scores, contents)
		assert.Equal(t, "COA A", finalists[0].Label)
		assert.Equal(t, "COA B", finalists[1].Label)
	})

	t.Run("capped at three", func(t *testing.T) {
		scores := map[string]int{"COA A": 4, "COA B": 3, "COA C": 2, "COA D": 1}
		assert.Len(t, topFinalists(scores, contents), 3)
	})
}
