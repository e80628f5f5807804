// Package experts holds the static expert catalog and everything needed to
// consult one expert: command resolution, availability probing, process
// invocation, and the local fallback composer.
package experts

import (
	"fmt"

	"github.com/athola/warcouncil/pkg/domain"
)

// FallbackModel is the local model credited when a backing service is down.
const FallbackModel = "haiku"

// Registry is the static catalog of expert descriptors. Entries are created
// once at startup and never mutated; config overrides replace whole
// descriptors before the first run.
type Registry struct {
	experts map[string]domain.Expert
	order   []string
}

// NewRegistry returns the default council catalog.
func NewRegistry() *Registry {
	r := &Registry{experts: make(map[string]domain.Expert)}
	for _, e := range defaultCatalog() {
		r.put(e)
	}
	return r
}

func defaultCatalog() []domain.Expert {
	return []domain.Expert{
		{
			Key:         "scout",
			Role:        "Scout",
			Service:     "claude",
			Model:       "haiku",
			Description: "Fast, low-cost reconnaissance of the problem terrain.",
			Phases:      []domain.Phase{domain.PhaseIntel},
			Native:      true,
		},
		{
			Key:             "intel_officer",
			Role:            "Intel Officer",
			Service:         "gemini",
			Model:           "gemini-pro",
			Description:     "Deep-context intelligence gathering across the whole repository.",
			Phases:          []domain.Phase{domain.PhaseIntel},
			FullCouncilOnly: true,
			Resolver:        "gemini",
			SkipConfirmFlag: "--yolo",
		},
		{
			Key:         "strategist",
			Role:        "Strategist",
			Service:     "claude",
			Model:       "sonnet",
			Description: "Refines the problem framing and proposes a course of action.",
			Phases: []domain.Phase{
				domain.PhaseAssessment, domain.PhaseCOA,
				domain.PhaseVoting, domain.PhasePremortem,
			},
			Resolver:        "claude",
			SkipConfirmFlag: "--dangerously-skip-permissions",
		},
		{
			Key:         "field_commander",
			Role:        "Field Commander",
			Service:     "codex",
			Model:       "gpt-5",
			Description: "Pragmatic execution-focused planning.",
			Phases: []domain.Phase{
				domain.PhaseCOA, domain.PhaseVoting, domain.PhasePremortem,
			},
			Resolver:        "codex",
			SkipConfirmFlag: "--full-auto",
		},
		{
			Key:         "logistics_officer",
			Role:        "Logistics Officer",
			Service:     "gemini",
			Model:       "gemini-pro",
			Description: "Resourcing, sequencing, and operational constraints.",
			Phases: []domain.Phase{
				domain.PhaseCOA, domain.PhaseVoting, domain.PhasePremortem,
			},
			FullCouncilOnly: true,
			Resolver:        "gemini",
			SkipConfirmFlag: "--yolo",
		},
		{
			Key:         "siege_engineer",
			Role:        "Siege Engineer",
			Service:     "codex",
			Model:       "gpt-5-codex",
			Description: "Deep technical feasibility and architecture.",
			Phases: []domain.Phase{
				domain.PhaseCOA, domain.PhaseVoting, domain.PhasePremortem,
			},
			FullCouncilOnly: true,
			Resolver:        "codex",
			SkipConfirmFlag: "--full-auto",
		},
		{
			Key:             "red_team",
			Role:            "Red Team Leader",
			Service:         "codex",
			Model:           "gpt-5",
			Description:     "Adversarial critique of the anonymized proposals.",
			Phases:          []domain.Phase{domain.PhaseRedTeam},
			Resolver:        "codex",
			SkipConfirmFlag: "--full-auto",
		},
		{
			Key:             "supreme_commander",
			Role:            "Supreme Commander",
			Service:         "claude",
			Model:           "opus",
			Description:     "Authoritative synthesis of the unsealed record into a decision.",
			Phases:          []domain.Phase{domain.PhaseSynthesis},
			Resolver:        "claude",
			SkipConfirmFlag: "--dangerously-skip-permissions",
		},
	}
}

func (r *Registry) put(e domain.Expert) {
	if _, exists := r.experts[e.Key]; !exists {
		r.order = append(r.order, e.Key)
	}
	r.experts[e.Key] = e
}

// Override replaces (or adds) a descriptor. Intended for config-time setup
// only, before any run starts.
func (r *Registry) Override(e domain.Expert) {
	r.put(e)
}

// Get looks up an expert by key.
func (r *Registry) Get(key string) (domain.Expert, error) {
	e, ok := r.experts[key]
	if !ok {
		return domain.Expert{}, fmt.Errorf("%w: %s", domain.ErrUnknownExpert, key)
	}
	return e, nil
}

// All returns every descriptor in catalog order.
func (r *Registry) All() []domain.Expert {
	out := make([]domain.Expert, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.experts[key])
	}
	return out
}

// ForPhase returns the experts participating in a phase under the given
// mode, in catalog order. Full-council-only experts are excluded in
// lightweight mode.
func (r *Registry) ForPhase(p domain.Phase, mode domain.Mode) []domain.Expert {
	var out []domain.Expert
	for _, key := range r.order {
		e := r.experts[key]
		if !e.ParticipatesIn(p) {
			continue
		}
		if e.FullCouncilOnly && mode != domain.ModeFullCouncil {
			continue
		}
		out = append(out, e)
	}
	return out
}
