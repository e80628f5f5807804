package ports

import (
	"context"
	"time"

	"github.com/athola/warcouncil/pkg/domain"
)

// Invoker runs an external expert process. The prompt is always appended as
// the final argument; the process is never run through a shell. Failures
// (timeout, missing binary, non-zero exit) come back as bracketed
// diagnostic text in the result, never as an error, so one failed expert
// cannot abort a deliberation.
type Invoker interface {
	Invoke(ctx context.Context, argv []string, role, prompt string, timeout time.Duration) string
}

// Prober answers per-expert liveness, memoized per service+model for the
// lifetime of one top-level run. It also accumulates the de-duplicated
// fallback notices emitted when a backing service is down.
type Prober interface {
	Available(ctx context.Context, expert domain.Expert) bool
	Notices() []string

	// Reset clears the availability cache and notices. Called at the start
	// of every top-level run.
	Reset()
}
