// Package file implements the session store on the local filesystem, one
// directory per session with session.json plus the human-readable artifact
// layout (intelligence/, battle-plans/, wargames/, orders/).
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ports"
)

const (
	warTableDir = "war-table"
	archiveDir  = "campaign-archive"

	sessionFile = "session.json"

	problemTruncateLen = 80
)

// Store persists sessions under <Root>/war-table and archives them under
// <Root>/campaign-archive/<project>/<date>.
type Store struct {
	Root string
	now  func() time.Time
}

// New creates a file store rooted at the given directory. An empty root
// defaults to ".warcouncil".
func New(root string) *Store {
	if root == "" {
		root = ".warcouncil"
	}
	return &Store{Root: root, now: time.Now}
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.Root, warTableDir, sessionID)
}

// artifactPath maps an artifact key to its file within the session
// directory. Unknown keys (including fallback notices) stay in
// session.json only.
func artifactPath(key string) (string, bool) {
	switch key {
	case domain.ArtifactScoutReport:
		return filepath.Join("intelligence", "scout-report.md"), true
	case domain.ArtifactIntelReport:
		return filepath.Join("intelligence", "intel-officer-report.md"), true
	case domain.ArtifactAssessment:
		return filepath.Join("intelligence", "situation-assessment.md"), true
	case domain.ArtifactRedTeam:
		return filepath.Join("wargames", "red-team-challenges.md"), true
	case domain.ArtifactPremortem:
		return filepath.Join("wargames", "premortem-analyses.md"), true
	case domain.ArtifactDecision:
		return filepath.Join("orders", "supreme-commander-decision.md"), true
	}
	if strings.HasPrefix(key, domain.ArtifactCOAPrefix) {
		expert := strings.TrimPrefix(key, domain.ArtifactCOAPrefix)
		return filepath.Join("battle-plans", "coa-"+expert+".md"), true
	}
	return "", false
}

// Save writes session.json and every mapped artifact file. The ledger's
// sealed flag at call time controls whether attribution lands on disk.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	dir := s.sessionDir(session.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sessionFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	for key, content := range session.Artifacts {
		rel, ok := artifactPath(key)
		if !ok {
			continue
		}
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to ensure artifact directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write artifact %s: %w", key, err)
		}
	}
	return nil
}

// Load reconstructs a session from war-table, falling back to the archive
// hierarchy. Role/model come back exactly as written, including "[SEALED]"
// markers where the ledger was sealed at save time.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	path := filepath.Join(s.sessionDir(sessionID), sessionFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		archived, found := s.findArchived(sessionID)
		if !found {
			return nil, domain.ErrSessionNotFound
		}
		path = archived
	}
	return readSession(path)
}

func readSession(path string) (*domain.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// findArchived scans campaign-archive/<project>/<date>/<id>/session.json.
func (s *Store) findArchived(sessionID string) (string, bool) {
	root := filepath.Join(s.Root, archiveDir)
	projects, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		dates, err := os.ReadDir(filepath.Join(root, project.Name()))
		if err != nil {
			continue
		}
		for _, date := range dates {
			if !date.IsDir() {
				continue
			}
			candidate := filepath.Join(root, project.Name(), date.Name(), sessionID, sessionFile)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
	}
	return "", false
}

// Archive moves (not copies) a completed session under
// campaign-archive/<project>/<date>/<session-id> and returns the new path.
// Sessions that are not completed are refused.
func (s *Store) Archive(ctx context.Context, sessionID, project string) (string, error) {
	if project == "" {
		project = "default"
	}

	src := s.sessionDir(sessionID)
	session, err := readSession(filepath.Join(src, sessionFile))
	if err != nil {
		return "", err
	}
	if session.Status != domain.StatusCompleted {
		return "", fmt.Errorf("%w: session %s has status %q", domain.ErrSessionNotCompleted, sessionID, session.Status)
	}

	date := s.now().Format("2006-01-02")
	dest := filepath.Join(s.Root, archiveDir, project, date, sessionID)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to ensure archive directory: %w", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("failed to move session into archive: %w", err)
	}
	return dest, nil
}

// List scans war-table (active) and the two-level archive hierarchy,
// returning one summary per session. Directories without a readable
// session.json are skipped.
func (s *Store) List(ctx context.Context) ([]ports.SessionSummary, error) {
	summaries := []ports.SessionSummary{}

	active := filepath.Join(s.Root, warTableDir)
	entries, err := os.ReadDir(active)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		session, err := readSession(filepath.Join(active, entry.Name(), sessionFile))
		if err != nil {
			continue
		}
		summaries = append(summaries, summarize(session, false))
	}

	root := filepath.Join(s.Root, archiveDir)
	projects, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return summaries, nil
		}
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	for _, project := range projects {
		if !project.IsDir() {
			continue
		}
		dates, err := os.ReadDir(filepath.Join(root, project.Name()))
		if err != nil {
			continue
		}
		for _, date := range dates {
			if !date.IsDir() {
				continue
			}
			ids, err := os.ReadDir(filepath.Join(root, project.Name(), date.Name()))
			if err != nil {
				continue
			}
			for _, id := range ids {
				if !id.IsDir() {
					continue
				}
				session, err := readSession(filepath.Join(root, project.Name(), date.Name(), id.Name(), sessionFile))
				if err != nil {
					continue
				}
				summaries = append(summaries, summarize(session, true))
			}
		}
	}
	return summaries, nil
}

func summarize(session *domain.Session, archived bool) ports.SessionSummary {
	return ports.SessionSummary{
		ID:       session.ID,
		Problem:  session.TruncatedProblem(problemTruncateLen),
		Status:   session.Status,
		Mode:     session.Mode,
		Archived: archived,
	}
}
