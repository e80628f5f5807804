package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athola/warcouncil/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// No config file anywhere under a scratch working directory.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ".warcouncil", cfg.Root)
	assert.Equal(t, 120*time.Second, cfg.InvokeTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 0.5, cfg.Delphi.Threshold)
	assert.Equal(t, 3, cfg.Delphi.MaxRounds)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "warcouncil.yaml", `
root: /srv/warcouncil
experts_file: /etc/warcouncil/experts.yaml
invoke_timeout: 30s
probe_timeout: 2s
delphi:
  threshold: 0.7
  max_rounds: 5
redis:
  addr: localhost:6379
  db: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/warcouncil", cfg.Root)
	assert.Equal(t, "/etc/warcouncil/experts.yaml", cfg.ExpertsFile)
	assert.Equal(t, 30*time.Second, cfg.InvokeTimeout)
	assert.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 0.7, cfg.Delphi.Threshold)
	assert.Equal(t, 5, cfg.Delphi.MaxRounds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadExpertOverrides(t *testing.T) {
	path := writeFile(t, "experts.yaml", `
- key: strategist
  role: Chief Strategist
  service: claude
  model: opus
  phases: [assessment, coa, voting, premortem]
  resolver: claude
  skip_confirm_flag: --dangerously-skip-permissions
- key: house_model
  role: House Model
  service: local
  model: llama
  phases: [coa, voting]
  argv: ["/opt/llama", "--quiet"]
`)

	overrides, err := LoadExpertOverrides(path)
	require.NoError(t, err)
	require.Len(t, overrides, 2)

	strategist := overrides[0]
	assert.Equal(t, "strategist", strategist.Key)
	assert.Equal(t, "Chief Strategist", strategist.Role)
	assert.Equal(t, "opus", strategist.Model)
	assert.Equal(t, []domain.Phase{
		domain.PhaseAssessment, domain.PhaseCOA, domain.PhaseVoting, domain.PhasePremortem,
	}, strategist.Phases)

	house := overrides[1]
	assert.Equal(t, []string{"/opt/llama", "--quiet"}, house.Argv)
	assert.Equal(t, domain.Phase("coa"), house.Phases[0])
}

func TestLoadExpertOverrides_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadExpertOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadExpertOverrides(writeFile(t, "bad.yaml", "{not yaml"))
		assert.Error(t, err)
	})

	t.Run("entry without key", func(t *testing.T) {
		_, err := LoadExpertOverrides(writeFile(t, "nokey.yaml", "- role: Ghost\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no key")
	})
}
