package experts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athola/warcouncil/pkg/domain"
)

type stubInvoker struct {
	calls  int
	result string
}

func (s *stubInvoker) Invoke(ctx context.Context, argv []string, role, prompt string, timeout time.Duration) string {
	s.calls++
	return s.result
}

func probeExpert(role, service, model string) domain.Expert {
	return domain.Expert{
		Key: "test", Role: role, Service: service, Model: model,
		Argv: []string{"stub"},
	}
}

func TestProber_Memoization(t *testing.T) {
	inv := &stubInvoker{result: "ready"}
	p := NewProber(NewResolver(), inv)
	ctx := context.Background()
	e := probeExpert("Intel Officer", "gemini", "gemini-pro")

	assert.True(t, p.Available(ctx, e))
	assert.True(t, p.Available(ctx, e))
	assert.True(t, p.Available(ctx, e))
	assert.Equal(t, 1, inv.calls, "verdict is cached per service+model")

	t.Run("different model probes separately", func(t *testing.T) {
		assert.True(t, p.Available(ctx, probeExpert("Intel Officer", "gemini", "gemini-flash")))
		assert.Equal(t, 2, inv.calls)
	})

	t.Run("reset clears the cache", func(t *testing.T) {
		p.Reset()
		assert.True(t, p.Available(ctx, e))
		assert.Equal(t, 3, inv.calls)
	})
}

func TestProber_Native(t *testing.T) {
	inv := &stubInvoker{result: "ready"}
	p := NewProber(NewResolver(), inv)

	ok := p.Available(context.Background(), domain.Expert{Key: "scout", Role: "Scout", Native: true})
	assert.True(t, ok)
	assert.Zero(t, inv.calls, "native experts are never probed")
}

func TestProber_Unavailable(t *testing.T) {
	inv := &stubInvoker{result: "[Intel Officer failed: connection refused]"}
	p := NewProber(NewResolver(), inv)
	ctx := context.Background()

	e := probeExpert("Intel Officer", "gemini", "gemini-pro")
	assert.False(t, p.Available(ctx, e))

	t.Run("notice format", func(t *testing.T) {
		notices := p.Notices()
		require.Len(t, notices, 1)
		assert.Equal(t, "Intel Officer (gemini-pro) unavailable, using haiku as fallback", notices[0])
	})

	t.Run("notices deduplicate per service and model", func(t *testing.T) {
		other := probeExpert("Logistics Officer", "gemini", "gemini-pro")
		assert.False(t, p.Available(ctx, other))
		assert.Len(t, p.Notices(), 1)
		assert.Equal(t, 1, inv.calls, "the cached verdict answers the second expert")
	})

	t.Run("reset clears notices", func(t *testing.T) {
		p.Reset()
		assert.Empty(t, p.Notices())
	})
}

func TestProber_EmptyProbeOutputIsDown(t *testing.T) {
	inv := &stubInvoker{result: ""}
	p := NewProber(NewResolver(), inv)
	assert.False(t, p.Available(context.Background(), probeExpert("Intel Officer", "gemini", "gemini-pro")))
}

func TestProber_ResolutionFailureIsDown(t *testing.T) {
	inv := &stubInvoker{result: "ready"}
	p := NewProber(NewResolver(), inv)

	e := domain.Expert{Key: "oracle", Role: "Oracle", Service: "mystery", Model: "m", Resolver: "mystery"}
	assert.False(t, p.Available(context.Background(), e))
	assert.Zero(t, inv.calls)
}

func TestComposeLocal(t *testing.T) {
	out := ComposeLocal("Scout", "haiku", "First line\n\nSecond line\n# Heading line")

	assert.Contains(t, out, "# Scout (local haiku)")
	assert.Contains(t, out, "Composed locally")
	assert.Contains(t, out, "- First line")
	assert.Contains(t, out, "- Second line")
	assert.Contains(t, out, "- Heading line")

	t.Run("empty prompt", func(t *testing.T) {
		assert.Contains(t, ComposeLocal("Scout", "haiku", ""), "(empty prompt)")
	})

	t.Run("highlights are capped", func(t *testing.T) {
		prompt := "a\nb\nc\nd\ne\nf\ng\nh"
		out := ComposeLocal("Scout", "haiku", prompt)
		assert.Contains(t, out, "- f")
		assert.NotContains(t, out, "- g")
	})
}
