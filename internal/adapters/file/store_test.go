package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ledger"
	"github.com/athola/warcouncil/pkg/ports"
)

var _ ports.SessionStore = (*Store)(nil)
var _ ports.Archiver = (*Store)(nil)

func testSession(id string) *domain.Session {
	sess := domain.NewSession(id, "Should we adopt event sourcing for the order service?", domain.ModeLightweight)
	sess.Ledger.Add("scout findings", "intel", 0, "Scout", "haiku")
	sess.Ledger.Add("plan a", "coa", 0, "Strategist", "sonnet")
	sess.Artifacts[domain.ArtifactScoutReport] = "scout findings"
	sess.Artifacts[domain.ArtifactAssessment] = "the assessment"
	sess.Artifacts[domain.ArtifactRedTeam] = "the critique"
	sess.Artifacts[domain.ArtifactPremortem] = "the premortem"
	sess.Artifacts[domain.ArtifactDecision] = "the decision"
	sess.Artifacts[domain.COAArtifactKey("strategist")] = "plan a"
	sess.Artifacts[domain.ArtifactFallbackNotices] = "Intel Officer (gemini-pro) unavailable, using haiku as fallback"
	return sess
}

func TestStore_SaveLayout(t *testing.T) {
	store := New(t.TempDir())
	sess := testSession("sess-1")
	require.NoError(t, store.Save(context.Background(), sess))

	dir := filepath.Join(store.Root, "war-table", "sess-1")
	for _, rel := range []string{
		"session.json",
		filepath.Join("intelligence", "scout-report.md"),
		filepath.Join("intelligence", "situation-assessment.md"),
		filepath.Join("battle-plans", "coa-strategist.md"),
		filepath.Join("wargames", "red-team-challenges.md"),
		filepath.Join("wargames", "premortem-analyses.md"),
		filepath.Join("orders", "supreme-commander-decision.md"),
	} {
		assert.FileExists(t, filepath.Join(dir, rel))
	}

	t.Run("fallback notices stay in session.json only", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), "fallback")
		}
	})

	t.Run("artifact content round trips", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "orders", "supreme-commander-decision.md"))
		require.NoError(t, err)
		assert.Equal(t, "the decision", string(data))
	})
}

func TestStore_SaveRejectsEmptyID(t *testing.T) {
	store := New(t.TempDir())
	assert.Error(t, store.Save(context.Background(), &domain.Session{}))
	assert.Error(t, store.Save(context.Background(), nil))
}

func TestStore_LoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	sess := testSession("sess-1")
	require.NoError(t, store.Save(context.Background(), sess))

	got, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)

	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Problem, got.Problem)
	assert.Equal(t, sess.Mode, got.Mode)
	assert.Equal(t, sess.Artifacts, got.Artifacts)

	t.Run("sealed ledger comes back masked", func(t *testing.T) {
		require.NotNil(t, got.Ledger)
		assert.True(t, got.Ledger.Sealed())
		assert.Equal(t, sess.Ledger.RootHash(), got.Ledger.RootHash())
		for _, n := range got.Ledger.Nodes() {
			assert.Equal(t, ledger.SealedMarker, n.Role)
			assert.Equal(t, ledger.SealedMarker, n.Model)
		}
	})

	t.Run("unsealed ledger keeps attribution", func(t *testing.T) {
		sess.Ledger.Unseal()
		require.NoError(t, store.Save(context.Background(), sess))

		got, err := store.Load(context.Background(), "sess-1")
		require.NoError(t, err)
		assert.False(t, got.Ledger.Sealed())
		roles := make(map[string]bool)
		for _, n := range got.Ledger.Nodes() {
			roles[n.Role] = true
		}
		assert.True(t, roles["Scout"])
		assert.True(t, roles["Strategist"])
	})
}

func TestStore_LoadMissing(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Load(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = store.Load(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_Archive(t *testing.T) {
	store := New(t.TempDir())
	store.now = func() time.Time { return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("refuses incomplete sessions", func(t *testing.T) {
		sess := testSession("sess-open")
		require.NoError(t, store.Save(ctx, sess))

		_, err := store.Archive(ctx, "sess-open", "alpha")
		assert.ErrorIs(t, err, domain.ErrSessionNotCompleted)
		assert.DirExists(t, filepath.Join(store.Root, "war-table", "sess-open"))
	})

	t.Run("moves completed sessions", func(t *testing.T) {
		sess := testSession("sess-done")
		sess.Status = domain.StatusCompleted
		require.NoError(t, store.Save(ctx, sess))

		dest, err := store.Archive(ctx, "sess-done", "alpha")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(store.Root, "campaign-archive", "alpha", "2026-08-24", "sess-done"), dest)

		assert.NoDirExists(t, filepath.Join(store.Root, "war-table", "sess-done"))
		assert.FileExists(t, filepath.Join(dest, "session.json"))
		assert.FileExists(t, filepath.Join(dest, "orders", "supreme-commander-decision.md"))
	})

	t.Run("archived sessions remain loadable", func(t *testing.T) {
		got, err := store.Load(ctx, "sess-done")
		require.NoError(t, err)
		assert.Equal(t, "sess-done", got.ID)
	})

	t.Run("empty project defaults", func(t *testing.T) {
		sess := testSession("sess-default")
		sess.Status = domain.StatusCompleted
		require.NoError(t, store.Save(ctx, sess))

		dest, err := store.Archive(ctx, "sess-default", "")
		require.NoError(t, err)
		assert.Contains(t, dest, filepath.Join("campaign-archive", "default"))
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Archive(ctx, "sess-ghost", "alpha")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}

func TestStore_List(t *testing.T) {
	store := New(t.TempDir())
	store.now = func() time.Time { return time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	t.Run("empty root", func(t *testing.T) {
		summaries, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	active := testSession("sess-active")
	require.NoError(t, store.Save(ctx, active))

	archived := testSession("sess-archived")
	archived.Status = domain.StatusCompleted
	require.NoError(t, store.Save(ctx, archived))
	_, err := store.Archive(ctx, "sess-archived", "alpha")
	require.NoError(t, err)

	// A stray directory without session.json is skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root, "war-table", "junk"), 0755))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := make(map[string]ports.SessionSummary)
	for _, s := range summaries {
		byID[s.ID] = s
	}
	assert.False(t, byID["sess-active"].Archived)
	assert.True(t, byID["sess-archived"].Archived)
	assert.Equal(t, domain.StatusCompleted, byID["sess-archived"].Status)
	assert.NotEmpty(t, byID["sess-active"].Problem)
}

func TestStore_DefaultRoot(t *testing.T) {
	assert.Equal(t, ".warcouncil", New("").Root)
}
