package experts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athola/warcouncil/pkg/domain"
)

func testResolver(found map[string]string) *Resolver {
	r := NewResolver()
	r.lookPath = func(file string) (string, error) {
		if path, ok := found[file]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}
	r.homeDir = func() (string, error) { return "/home/general", nil }
	return r
}

func TestResolve_Native(t *testing.T) {
	r := testResolver(nil)
	argv, err := r.Resolve(domain.Expert{Key: "scout", Native: true})
	require.NoError(t, err)
	assert.Nil(t, argv)
}

func TestResolve_FixedArgvWins(t *testing.T) {
	r := testResolver(nil)
	e := domain.Expert{Key: "custom", Resolver: "claude", Argv: []string{"/opt/llm", "--fast"}}

	argv, err := r.Resolve(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/llm", "--fast"}, argv)

	// The returned slice is a copy; mutating it must not touch the
	// descriptor.
	argv[0] = "changed"
	assert.Equal(t, "/opt/llm", e.Argv[0])
}

func TestResolve_UnknownResolver(t *testing.T) {
	r := testResolver(nil)
	_, err := r.Resolve(domain.Expert{Key: "oracle", Resolver: "mystery"})
	assert.ErrorIs(t, err, domain.ErrUnknownResolver)
	assert.Contains(t, err.Error(), "mystery")
}

func TestResolveClaude(t *testing.T) {
	e := domain.Expert{
		Key: "strategist", Role: "Strategist", Model: "sonnet",
		Resolver: "claude", SkipConfirmFlag: "--dangerously-skip-permissions",
	}

	t.Run("aliased short command is preferred", func(t *testing.T) {
		r := testResolver(map[string]string{"cl": "/usr/local/bin/cl", "claude": "/usr/local/bin/claude"})
		argv, err := r.Resolve(e)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/usr/local/bin/cl", "--print", "--model", "sonnet", "--dangerously-skip-permissions",
		}, argv)
	})

	t.Run("canonical command second", func(t *testing.T) {
		r := testResolver(map[string]string{"claude": "/usr/local/bin/claude"})
		argv, err := r.Resolve(e)
		require.NoError(t, err)
		assert.Equal(t, "/usr/local/bin/claude", argv[0])
	})

	t.Run("home relative install last", func(t *testing.T) {
		r := testResolver(map[string]string{
			"/home/general/.claude/local/claude": "/home/general/.claude/local/claude",
		})
		argv, err := r.Resolve(e)
		require.NoError(t, err)
		assert.Equal(t, "/home/general/.claude/local/claude", argv[0])
	})

	t.Run("not installed", func(t *testing.T) {
		r := testResolver(nil)
		_, err := r.Resolve(e)
		assert.ErrorIs(t, err, domain.ErrCommandNotFound)
		assert.Contains(t, err.Error(), "Strategist")
	})

	t.Run("no skip flag", func(t *testing.T) {
		r := testResolver(map[string]string{"claude": "/usr/local/bin/claude"})
		plain := e
		plain.SkipConfirmFlag = ""
		argv, err := r.Resolve(plain)
		require.NoError(t, err)
		assert.Equal(t, []string{"/usr/local/bin/claude", "--print", "--model", "sonnet"}, argv)
	})
}

func TestResolveCodex(t *testing.T) {
	r := testResolver(map[string]string{"codex": "/usr/bin/codex"})
	argv, err := r.Resolve(domain.Expert{
		Key: "field_commander", Role: "Field Commander", Model: "gpt-5",
		Resolver: "codex", SkipConfirmFlag: "--full-auto",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/bin/codex", "exec", "--model", "gpt-5", "--full-auto"}, argv)
}

func TestResolveGemini(t *testing.T) {
	r := testResolver(map[string]string{"gemini": "/usr/bin/gemini"})
	argv, err := r.Resolve(domain.Expert{
		Key: "intel_officer", Role: "Intel Officer", Model: "gemini-pro",
		Resolver: "gemini", SkipConfirmFlag: "--yolo",
	})
	require.NoError(t, err)
	// The prompt flag must come last so the invoker's appended prompt
	// becomes its value.
	assert.Equal(t, []string{"/usr/bin/gemini", "-m", "gemini-pro", "--yolo", "-p"}, argv)
}
