package experts

import (
	"context"
	"log/slog"
	"time"

	"github.com/athola/warcouncil/internal/logging"
	"github.com/athola/warcouncil/internal/metrics"
	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ports"
)

// Contribution is the outcome of consulting one expert. Model is the model
// that actually answered, which differs from the descriptor's model on the
// fallback path.
type Contribution struct {
	Expert  domain.Expert
	Model   string
	Content string
}

// Panel bundles registry, resolver, prober, and invoker behind a single
// Consult operation the phase executor fans out over.
type Panel struct {
	Registry *Registry

	resolver     *Resolver
	prober       ports.Prober
	invoker      ports.Invoker
	timeout      time.Duration
	probeTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithTimeouts overrides the per-invocation and per-probe timeouts.
func WithTimeouts(invoke, probe time.Duration) PanelOption {
	return func(p *Panel) {
		if invoke > 0 {
			p.timeout = invoke
		}
		if probe > 0 {
			p.probeTimeout = probe
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) PanelOption {
	return func(p *Panel) { p.metrics = m }
}

// WithLogger sets the panel's logger.
func WithLogger(logger *slog.Logger) PanelOption {
	return func(p *Panel) { p.logger = logger }
}

// WithProber replaces the availability prober (used by tests).
func WithProber(prober ports.Prober) PanelOption {
	return func(p *Panel) { p.prober = prober }
}

// WithInvoker replaces the process invoker (used by tests).
func WithInvoker(invoker ports.Invoker) PanelOption {
	return func(p *Panel) { p.invoker = invoker }
}

// NewPanel wires the default catalog, resolver, prober, and CLI invoker.
func NewPanel(opts ...PanelOption) *Panel {
	p := &Panel{
		Registry:     NewRegistry(),
		resolver:     NewResolver(),
		timeout:      DefaultInvokeTimeout,
		probeTimeout: DefaultProbeTimeout,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.invoker == nil {
		p.invoker = NewCLIInvoker(p.logger)
	}
	if p.prober == nil {
		p.prober = NewProber(p.resolver, p.invoker,
			WithProbeTimeout(p.probeTimeout),
			WithProberLogger(p.logger))
	}
	return p
}

// Reset clears run-scoped state (availability cache, fallback notices).
// Called at the start of every top-level run.
func (p *Panel) Reset() {
	p.prober.Reset()
}

// Notices returns the fallback notices accumulated this run.
func (p *Panel) Notices() []string {
	return p.prober.Notices()
}

// Consult obtains one contribution from one expert. Native experts and
// unavailable backing services are answered by the local composer; process
// failures come back as embedded diagnostics. The only error returned is a
// command-resolution configuration error, which is fatal to the run.
func (p *Panel) Consult(ctx context.Context, e domain.Expert, prompt string) (Contribution, error) {
	start := time.Now()

	if e.Native {
		content := ComposeLocal(e.Role, e.Model, prompt)
		p.metrics.ObserveInvocation(e.Key, "native", time.Since(start))
		return Contribution{Expert: e, Model: e.Model, Content: content}, nil
	}

	if !p.prober.Available(ctx, e) {
		p.logger.Info("falling back to local model", "expert", e.Key, "service", e.Service)
		content := ComposeLocal(e.Role, FallbackModel, prompt)
		p.metrics.ObserveInvocation(e.Key, "fallback", time.Since(start))
		return Contribution{Expert: e, Model: FallbackModel, Content: content}, nil
	}

	argv, err := p.resolver.Resolve(e)
	if err != nil {
		return Contribution{}, err
	}

	content := p.invoker.Invoke(ctx, argv, e.Role, prompt, p.timeout)
	status := "ok"
	if IsDiagnostic(content) {
		status = "error"
	}
	p.metrics.ObserveInvocation(e.Key, status, time.Since(start))
	return Contribution{Expert: e, Model: e.Model, Content: content}, nil
}
