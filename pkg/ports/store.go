// Package ports defines the interfaces between the council core and its
// adapters (stores, process invokers, probes).
package ports

import (
	"context"

	"github.com/athola/warcouncil/pkg/domain"
)

// SessionSummary is one row of a store listing.
type SessionSummary struct {
	ID       string      `json:"session_id"`
	Problem  string      `json:"problem"`
	Status   string      `json:"status"`
	Mode     domain.Mode `json:"mode"`
	Archived bool        `json:"archived"`
}

// SessionStore persists full session state.
type SessionStore interface {
	// Save persists the session, honoring the ledger's sealed flag at call
	// time.
	Save(ctx context.Context, session *domain.Session) error

	// Load reconstructs a session exactly as written. Returns
	// domain.ErrSessionNotFound when the id is unknown.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// List returns summaries of every known session, active and archived.
	List(ctx context.Context) ([]SessionSummary, error)
}

// Archiver moves completed sessions into long-term storage. Archival of a
// session that is not completed fails with domain.ErrSessionNotCompleted.
type Archiver interface {
	Archive(ctx context.Context, sessionID, project string) (string, error)
}
