package domain

import (
	"strings"

	"github.com/athola/warcouncil/pkg/ledger"
)

// Session status values. Failures carry a reason: "failed: <message>".
const (
	StatusInitialized = "initialized"
	StatusCompleted   = "completed"
	statusFailed      = "failed"
)

// FailedStatus formats a terminal failure status.
func FailedStatus(reason string) string {
	return statusFailed + ": " + reason
}

// IsFailedStatus reports whether a status string is a failure.
func IsFailedStatus(status string) bool {
	return status == statusFailed || strings.HasPrefix(status, statusFailed+": ")
}

// Artifact keys used in Session.Artifacts. COA artifacts are keyed
// "coa:<expert-key>".
const (
	ArtifactScoutReport     = "scout_report"
	ArtifactIntelReport     = "intel_report"
	ArtifactAssessment      = "assessment"
	ArtifactRedTeam         = "red_team"
	ArtifactPremortem       = "premortem"
	ArtifactDecision        = "decision"
	ArtifactFallbackNotices = "fallback_notices"
	ArtifactCOAPrefix       = "coa:"
)

// COAArtifactKey returns the artifact key for one expert's course of action.
func COAArtifactKey(expertKey string) string {
	return ArtifactCOAPrefix + expertKey
}

// Session is the aggregate root of one deliberation: the unit of
// durability. It is created at run start, mutated in place by the phase
// executor (its sole mutator), and persisted once at the end.
type Session struct {
	ID               string            `json:"session_id"`
	Problem          string            `json:"problem_statement"`
	Mode             Mode              `json:"mode"`
	Status           string            `json:"status"`
	Escalated        bool              `json:"escalated"`
	EscalationReason string            `json:"escalation_reason,omitempty"`
	PhasesCompleted  []Phase           `json:"phases_completed"`
	Artifacts        map[string]string `json:"artifacts"`
	Metrics          map[string]float64 `json:"metrics"`

	// Ledger is exclusively owned (1:1). The JSON key predates the flat
	// ledger design.
	Ledger *ledger.Ledger `json:"merkle_dag"`
}

// NewSession creates an initialized session owning a fresh sealed ledger.
func NewSession(id, problem string, mode Mode) *Session {
	return &Session{
		ID:              id,
		Problem:         problem,
		Mode:            mode,
		Status:          StatusInitialized,
		PhasesCompleted: []Phase{},
		Artifacts:       make(map[string]string),
		Metrics:         make(map[string]float64),
		Ledger:          ledger.New(id),
	}
}

// CompletePhase appends a phase to the completed list.
func (s *Session) CompletePhase(p Phase) {
	s.PhasesCompleted = append(s.PhasesCompleted, p)
}

// COAArtifacts returns the expert-key → content map of recorded courses of
// action.
func (s *Session) COAArtifacts() map[string]string {
	out := make(map[string]string)
	for k, v := range s.Artifacts {
		if strings.HasPrefix(k, ArtifactCOAPrefix) {
			out[strings.TrimPrefix(k, ArtifactCOAPrefix)] = v
		}
	}
	return out
}

// TruncatedProblem returns the problem statement cut to n runes for
// listings.
func (s *Session) TruncatedProblem(n int) string {
	runes := []rune(s.Problem)
	if len(runes) <= n {
		return s.Problem
	}
	return string(runes[:n]) + "..."
}
