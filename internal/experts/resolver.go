package experts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/athola/warcouncil/pkg/domain"
)

// resolverFunc turns a descriptor into an executable argument vector.
type resolverFunc func(r *Resolver, e domain.Expert) ([]string, error)

// Resolver maps resolver names to implementations. The dispatch set is
// fixed at construction, so every reachable resolver is statically known.
type Resolver struct {
	byName   map[string]resolverFunc
	lookPath func(file string) (string, error)
	homeDir  func() (string, error)
}

// NewResolver builds the resolver registry for the claude, codex, and
// gemini backing services.
func NewResolver() *Resolver {
	r := &Resolver{
		lookPath: exec.LookPath,
		homeDir:  os.UserHomeDir,
	}
	r.byName = map[string]resolverFunc{
		"claude": (*Resolver).resolveClaude,
		"codex":  (*Resolver).resolveCodex,
		"gemini": (*Resolver).resolveGemini,
	}
	return r
}

// Resolve produces the argument vector for an expert. Native experts need
// no process and resolve to nil. A descriptor with a fixed Argv wins over
// its named resolver. Resolution failures are configuration errors: fatal,
// not retried.
func (r *Resolver) Resolve(e domain.Expert) ([]string, error) {
	if e.Native {
		return nil, nil
	}
	if len(e.Argv) > 0 {
		return append([]string(nil), e.Argv...), nil
	}
	fn, ok := r.byName[e.Resolver]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expert %s)", domain.ErrUnknownResolver, e.Resolver, e.Key)
	}
	return fn(r, e)
}

// locate tries candidate commands in order: an aliased short command, the
// canonical executable, and a well-known local install path. Home-relative
// candidates use "~/" prefixes.
func (r *Resolver) locate(candidates ...string) (string, bool) {
	for _, c := range candidates {
		if strings.HasPrefix(c, "~/") {
			home, err := r.homeDir()
			if err != nil {
				continue
			}
			c = filepath.Join(home, c[2:])
		}
		if path, err := r.lookPath(c); err == nil {
			return path, true
		}
	}
	return "", false
}

func (r *Resolver) resolveClaude(e domain.Expert) ([]string, error) {
	path, ok := r.locate("cl", "claude", "~/.claude/local/claude")
	if !ok {
		return nil, fmt.Errorf("%w: claude (needed by %s; install the Claude CLI or add it to PATH)",
			domain.ErrCommandNotFound, e.Role)
	}
	argv := []string{path, "--print", "--model", e.Model}
	if e.SkipConfirmFlag != "" {
		argv = append(argv, e.SkipConfirmFlag)
	}
	return argv, nil
}

func (r *Resolver) resolveCodex(e domain.Expert) ([]string, error) {
	path, ok := r.locate("cdx", "codex", "~/.local/bin/codex")
	if !ok {
		return nil, fmt.Errorf("%w: codex (needed by %s; install the Codex CLI or add it to PATH)",
			domain.ErrCommandNotFound, e.Role)
	}
	argv := []string{path, "exec", "--model", e.Model}
	if e.SkipConfirmFlag != "" {
		argv = append(argv, e.SkipConfirmFlag)
	}
	return argv, nil
}

func (r *Resolver) resolveGemini(e domain.Expert) ([]string, error) {
	path, ok := r.locate("gmi", "gemini", "~/.local/bin/gemini")
	if !ok {
		return nil, fmt.Errorf("%w: gemini (needed by %s; install the Gemini CLI or add it to PATH)",
			domain.ErrCommandNotFound, e.Role)
	}
	argv := []string{path, "-m", e.Model}
	if e.SkipConfirmFlag != "" {
		argv = append(argv, e.SkipConfirmFlag)
	}
	argv = append(argv, "-p")
	return argv, nil
}
