package experts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/athola/warcouncil/internal/logging"
)

// Default timeouts for real invocations and availability probes.
const (
	DefaultInvokeTimeout = 120 * time.Second
	DefaultProbeTimeout  = 10 * time.Second
)

const maxStderr = 200

// CLIInvoker spawns argument-vector processes directly (never through a
// shell) with the prompt as the final argument. Failures are returned as
// bracketed diagnostic text so a dead expert reads like any other
// contribution instead of aborting the deliberation.
type CLIInvoker struct {
	logger *slog.Logger
}

// NewCLIInvoker creates a process invoker.
func NewCLIInvoker(logger *slog.Logger) *CLIInvoker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CLIInvoker{logger: logger}
}

// Invoke runs argv + [prompt] under the given timeout and returns captured
// stdout, or a bracketed diagnostic on timeout, missing binary, or
// non-zero exit.
func (i *CLIInvoker) Invoke(ctx context.Context, argv []string, role, prompt string, timeout time.Duration) string {
	if len(argv) == 0 {
		return fmt.Sprintf("[%s command not found: empty argument vector]", role)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, argv[0], append(append([]string(nil), argv[1:]...), prompt)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if cctx.Err() == context.DeadlineExceeded {
		i.logger.Warn("expert invocation timed out", "role", role, "cmd", argv[0], "timeout", timeout)
		return fmt.Sprintf("[%s timed out after %ds]", role, int(timeout.Seconds()))
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Sprintf("[%s command not found: %s]", role, argv[0])
		}
		i.logger.Warn("expert invocation failed", "role", role, "cmd", argv[0], "err", err)
		return fmt.Sprintf("[%s failed: %s]", role, truncate(strings.TrimSpace(stderr.String()), maxStderr))
	}

	return strings.TrimSpace(stdout.String())
}

// IsDiagnostic reports whether an invocation result is an inline failure
// diagnostic rather than real output.
func IsDiagnostic(result string) bool {
	return strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")
}

// truncate cuts s to at most n bytes, backing up to a rune boundary so the
// diagnostic stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
