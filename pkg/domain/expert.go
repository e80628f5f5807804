// Package domain holds the core types of a deliberation: expert
// descriptors, the session aggregate, and the sentinel errors shared by
// every adapter.
package domain

// Phase identifies one stage of the deliberation sequence.
type Phase string

const (
	PhaseIntel      Phase = "intel"
	PhaseAssessment Phase = "assessment"
	PhaseCOA        Phase = "coa"
	PhaseRedTeam    Phase = "red_team"
	PhaseVoting     Phase = "voting"
	PhasePremortem  Phase = "premortem"
	PhaseSynthesis  Phase = "synthesis"
)

// Mode selects the panel size. Lightweight runs the core panel only;
// full council seats every expert.
type Mode string

const (
	ModeLightweight Mode = "lightweight"
	ModeFullCouncil Mode = "full_council"
)

// Expert describes one council member: its identity, the service and model
// backing it, and where it participates. Descriptors are immutable once the
// catalog is built; config overrides replace whole entries.
type Expert struct {
	// Key is the stable catalog identifier ("scout", "strategist", ...).
	Key  string `json:"key" mapstructure:"key"`
	Role string `json:"role" mapstructure:"role"`

	// Service names the backing CLI family; Model the model it is asked
	// to run.
	Service string `json:"service" mapstructure:"service"`
	Model   string `json:"model" mapstructure:"model"`

	Description string  `json:"description,omitempty" mapstructure:"description"`
	Phases      []Phase `json:"phases" mapstructure:"phases"`

	// FullCouncilOnly experts are excluded from lightweight sessions.
	FullCouncilOnly bool `json:"full_council_only,omitempty" mapstructure:"full_council_only"`

	// Native experts are answered locally, without spawning a process.
	Native bool `json:"native,omitempty" mapstructure:"native"`

	// SkipConfirmFlag is the service's non-interactive flag, appended to
	// the resolved command line.
	SkipConfirmFlag string `json:"skip_confirm_flag,omitempty" mapstructure:"skip_confirm_flag"`

	// Argv, when set, fixes the exact command line and bypasses the named
	// resolver.
	Argv     []string `json:"argv,omitempty" mapstructure:"argv"`
	Resolver string   `json:"resolver,omitempty" mapstructure:"resolver"`
}

// ParticipatesIn reports whether the expert is seated for the given phase.
func (e Expert) ParticipatesIn(p Phase) bool {
	for _, ph := range e.Phases {
		if ph == p {
			return true
		}
	}
	return false
}
