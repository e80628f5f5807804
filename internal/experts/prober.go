package experts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/athola/warcouncil/internal/logging"
	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ports"
)

const probePrompt = "Reply with the single word: ready"

// Prober answers backing-service liveness, memoized per service+model for
// one run. The cache and fallback notices are instance state, not package
// globals, so concurrent top-level runs with separate probers cannot
// interfere. Reset is called at the start of every run.
type Prober struct {
	resolver *Resolver
	invoker  ports.Invoker
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cache   map[string]bool
	noticed map[string]bool
	notices []string
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeTimeout overrides the per-probe timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) { p.timeout = d }
}

// WithProberLogger sets the prober's logger.
func WithProberLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) { p.logger = logger }
}

// NewProber creates a run-scoped availability prober.
func NewProber(resolver *Resolver, invoker ports.Invoker, opts ...ProberOption) *Prober {
	p := &Prober{
		resolver: resolver,
		invoker:  invoker,
		timeout:  DefaultProbeTimeout,
		logger:   logging.NewNop(),
		cache:    make(map[string]bool),
		noticed:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether the expert's backing service answers. Native
// experts are always available. Process experts are probed once with a
// minimal prompt and a short timeout; the verdict is cached per
// service+model until Reset.
func (p *Prober) Available(ctx context.Context, e domain.Expert) bool {
	if e.Native {
		return true
	}

	key := e.Service + ":" + e.Model

	p.mu.Lock()
	if ok, cached := p.cache[key]; cached {
		p.mu.Unlock()
		return ok
	}
	p.mu.Unlock()

	ok := p.probe(ctx, e)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[key] = ok
	if !ok && !p.noticed[key] {
		p.noticed[key] = true
		p.notices = append(p.notices,
			fmt.Sprintf("%s (%s) unavailable, using %s as fallback", e.Role, e.Model, FallbackModel))
	}
	return ok
}

func (p *Prober) probe(ctx context.Context, e domain.Expert) bool {
	argv, err := p.resolver.Resolve(e)
	if err != nil {
		p.logger.Warn("probe resolution failed", "expert", e.Key, "err", err)
		return false
	}
	result := p.invoker.Invoke(ctx, argv, e.Role, probePrompt, p.timeout)
	if IsDiagnostic(result) || result == "" {
		p.logger.Warn("backing service unavailable", "service", e.Service, "model", e.Model)
		return false
	}
	return true
}

// Notices returns the de-duplicated fallback notices accumulated this run.
func (p *Prober) Notices() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notices...)
}

// Reset clears the availability cache and notices for a fresh run.
func (p *Prober) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]bool)
	p.noticed = make(map[string]bool)
	p.notices = nil
}
