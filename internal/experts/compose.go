package experts

import (
	"fmt"
	"strings"
)

// ComposeLocal produces a contribution without an external process. It
// backs native experts and the fallback path when a backing service is
// down. The content is a best-effort structured response; the engine never
// interprets contribution semantics, so a terse local composition is a
// valid utterance.
func ComposeLocal(role, model, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (local %s)\n\n", role, model)
	b.WriteString("Composed locally; no external backing service was consulted.\n\n")
	b.WriteString("## Considerations\n\n")
	for _, line := range promptHighlights(prompt, 6) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// promptHighlights pulls up to n non-empty lines from the prompt so the
// local composition stays anchored to what was asked.
func promptHighlights(prompt string, n int) []string {
	var out []string
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#-* "))
		if line == "" {
			continue
		}
		out = append(out, truncate(line, 120))
		if len(out) == n {
			break
		}
	}
	if len(out) == 0 {
		out = []string{"(empty prompt)"}
	}
	return out
}
