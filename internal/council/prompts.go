package council

import (
	"fmt"
	"strings"

	"github.com/athola/warcouncil/pkg/ledger"
)

// Prompt builders. Experts receive free text and return free text; only the
// voting prompt imposes any structure (a numbered ranking), and even that
// is parsed heuristically.

func intelPrompt(problem string) string {
	return fmt.Sprintf(`You are gathering intelligence for a strategic deliberation.

Problem statement:
%s

Report the relevant facts, constraints, prior art, and unknowns. Be concise
and concrete; flag anything that would change the shape of the decision.`, problem)
}

func assessmentPrompt(problem string, intel []ledger.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are refining the framing of a strategic problem.

Problem statement:
%s

Intelligence reports:
`, problem)
	writeEntries(&b, intel)
	b.WriteString(`
Produce a situation assessment: what is actually being decided, what
constraints bind, and what failure would look like.`)
	return b.String()
}

func coaPrompt(problem, assessment string) string {
	return fmt.Sprintf(`You are one member of a strategy panel.

Problem statement:
%s

Situation assessment:
%s

Propose exactly one course of action: a concrete approach with its key
steps, main risk, and the condition under which you would abandon it.`, problem, assessment)
}

func revisionPrompt(problem, prior, critique string, others []ledger.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You previously proposed a course of action for this problem:

%s

Your proposal:
%s

Red-team critique of all proposals:
%s

Other (anonymized) positions:
`, problem, prior, critique)
	writeEntries(&b, others)
	b.WriteString(`
Revise your course of action. Keep what survived the critique, change what
did not, and say what changed your mind.`)
	return b.String()
}

func redTeamPrompt(coas []ledger.Entry) string {
	var b strings.Builder
	b.WriteString(`You are the adversary. Attack every proposal below on feasibility, hidden
coupling, failure modes, and wishful assumptions. Authors are anonymous;
spare nothing.

Proposals:
`)
	writeEntries(&b, coas)
	return b.String()
}

func votingPrompt(coas []ledger.Entry, critique string) string {
	var b strings.Builder
	b.WriteString(`Rank the following anonymized courses of action from best to worst, taking
the red-team critique into account. Use a numbered list: "1. <label>" for
your top choice, "2. <label>" for the next, and so on. Briefly justify each
placement.

Courses of action:
`)
	writeEntries(&b, coas)
	fmt.Fprintf(&b, "\nRed-team critique:\n%s\n", critique)
	return b.String()
}

func premortemPrompt(top Finalist) string {
	return fmt.Sprintf(`Assume the panel adopted %s and it failed completely six months later.

The adopted course of action:
%s

Write the post-mortem now, in advance: what went wrong, what early warning
was missed, and what would have prevented it.`, top.Label, top.Content)
}

func synthesisPrompt(problem string, records []*ledger.Node, finalists []Finalist, notices []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are the final authority. The ledger is unsealed: every contribution
below carries its true author.

Problem statement:
%s

Finalists by Borda count:
`, problem)
	for _, f := range finalists {
		fmt.Fprintf(&b, "- %s (score %d)\n", f.Label, f.Score)
	}
	if len(notices) > 0 {
		b.WriteString("\nDegraded participants this run:\n")
		for _, n := range notices {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	b.WriteString("\nFull record:\n")
	for _, n := range records {
		fmt.Fprintf(&b, "\n--- %s | %s (%s, %s) round %d ---\n%s\n",
			n.Label, n.Role, n.Model, n.Phase, n.Round, n.Content)
	}
	b.WriteString(`
Issue the decision: the chosen course of action, concrete implementation
steps, watch points that would indicate it is going wrong, and an explicit
acknowledgment of the strongest dissent.`)
	return b.String()
}

func writeEntries(b *strings.Builder, entries []ledger.Entry) {
	for _, e := range entries {
		fmt.Fprintf(b, "\n### %s\n%s\n", e.Label, e.Content)
	}
}
