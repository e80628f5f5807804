// Package ledger implements the append-only, content-addressed contribution
// store backing a deliberation session. Every expert utterance becomes an
// immutable node keyed by a hash of its content and attribution; an
// aggregate fingerprint over all node ids is recomputed after each insert.
//
// Attribution is hidden behind per-phase anonymous labels until the ledger
// is unsealed for synthesis. Serialization honors the sealed flag at call
// time: a sealed ledger persists "[SEALED]" in place of role and model.
package ledger

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SealedMarker replaces role and model in serialized form while the ledger
// is sealed.
const SealedMarker = "[SEALED]"

// letteredPhases receive letter labels ("COA A") instead of numbers.
var letteredPhases = map[string]bool{"coa": true}

// Node is one recorded contribution. Immutable after insertion; never
// deleted within a session.
type Node struct {
	ID           string    `json:"id"`
	ContentHash  string    `json:"content_hash"`
	MetadataHash string    `json:"metadata_hash"`
	// ParentID records lineage for revision rounds. It is not used for
	// traversal or verification.
	ParentID  string    `json:"parent_id,omitempty"`
	Round     int       `json:"round"`
	Phase     string    `json:"phase"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is an attribution-free view of a node.
type Entry struct {
	Label   string
	Phase   string
	Round   int
	Content string
}

// Ledger owns the nodes of one session. The zero value is not usable; use New.
type Ledger struct {
	sessionID  string
	sealed     bool
	nodes      map[string]*Node
	order      []string
	labelCount map[string]int
	rootHash   string
	now        func() time.Time
}

// New creates a sealed, empty ledger for the given session.
func New(sessionID string) *Ledger {
	return &Ledger{
		sessionID:  sessionID,
		sealed:     true,
		nodes:      make(map[string]*Node),
		labelCount: make(map[string]int),
		now:        time.Now,
	}
}

// Add records a contribution and returns the stored node. Identical
// (content, role, model) triples always produce identical hashes; a triple
// already in the ledger returns the existing node untouched, without
// burning a label. The anonymous label is allocated from a monotonic
// per-phase counter that is never reused, in insertion (completion) order.
func (l *Ledger) Add(content, phase string, round int, role, model string) *Node {
	return l.AddChild(content, phase, round, role, model, "")
}

// AddChild records a contribution that revises an earlier node. The parent
// id is stored for lineage only.
func (l *Ledger) AddChild(content, phase string, round int, role, model, parentID string) *Node {
	contentHash := Digest(content)
	metadataHash := Digest(role + ":" + model)
	id := Digest(contentHash + ":" + metadataHash)

	if existing, ok := l.nodes[id]; ok {
		return existing
	}

	node := &Node{
		ID:           id,
		ContentHash:  contentHash,
		MetadataHash: metadataHash,
		ParentID:     parentID,
		Round:        round,
		Phase:        phase,
		Label:        l.nextLabel(phase),
		Content:      content,
		Role:         role,
		Model:        model,
		Timestamp:    l.now(),
	}

	l.nodes[id] = node
	l.order = append(l.order, id)
	l.recomputeRoot()
	return node
}

func (l *Ledger) nextLabel(phase string) string {
	n := l.labelCount[phase]
	l.labelCount[phase] = n + 1
	if letteredPhases[phase] {
		return "COA " + letters(n)
	}
	return fmt.Sprintf("Expert %d", n+1)
}

// letters converts a zero-based index to A, B, ... Z, AA, AB, ...
func letters(n int) string {
	s := ""
	for {
		s = string(rune('A'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return s
}

func (l *Ledger) recomputeRoot() {
	ids := make([]string, 0, len(l.nodes))
	for id := range l.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	joined := ""
	for _, id := range ids {
		joined += id
	}
	l.rootHash = Digest(joined)
}

// SessionID returns the owning session id.
func (l *Ledger) SessionID() string { return l.sessionID }

// Sealed reports whether attribution is currently hidden.
func (l *Ledger) Sealed() bool { return l.sealed }

// RootHash returns the aggregate fingerprint over all node ids.
func (l *Ledger) RootHash() string { return l.rootHash }

// Len returns the number of recorded nodes.
func (l *Ledger) Len() int { return len(l.nodes) }

// LabelCount returns how many labels have been allocated for a phase.
func (l *Ledger) LabelCount(phase string) int { return l.labelCount[phase] }

// Get returns the node with the given id, or nil.
func (l *Ledger) Get(id string) *Node { return l.nodes[id] }

// Nodes returns all nodes in insertion order.
func (l *Ledger) Nodes() []*Node {
	out := make([]*Node, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.nodes[id])
	}
	return out
}

// PhaseNodes returns the nodes of one phase in insertion order.
func (l *Ledger) PhaseNodes(phase string) []*Node {
	var out []*Node
	for _, id := range l.order {
		if n := l.nodes[id]; n.Phase == phase {
			out = append(out, n)
		}
	}
	return out
}

// AnonymizedView returns attribution-free entries, restricted to the given
// phases (all phases when none are given). It never exposes role or model,
// regardless of the sealed flag.
func (l *Ledger) AnonymizedView(phases ...string) []Entry {
	want := make(map[string]bool, len(phases))
	for _, p := range phases {
		want[p] = true
	}
	var out []Entry
	for _, id := range l.order {
		n := l.nodes[id]
		if len(want) > 0 && !want[n.Phase] {
			continue
		}
		out = append(out, Entry{Label: n.Label, Phase: n.Phase, Round: n.Round, Content: n.Content})
	}
	return out
}

// Unseal exposes attribution and returns the full records in insertion
// order. The transition is one-way; there is no way to re-seal.
func (l *Ledger) Unseal() []*Node {
	l.sealed = false
	return l.Nodes()
}

// ledgerJSON is the persisted shape. The "merkle_dag" object key used by
// stores predates the flat-ledger naming and is kept for layout
// compatibility.
type ledgerJSON struct {
	SessionID    string           `json:"session_id"`
	Sealed       bool             `json:"sealed"`
	RootHash     string           `json:"root_hash"`
	LabelCounter map[string]int   `json:"label_counter"`
	Nodes        map[string]*Node `json:"nodes"`
}

// MarshalJSON serializes the ledger, masking role and model with
// SealedMarker when the ledger is sealed at call time.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	nodes := make(map[string]*Node, len(l.nodes))
	for id, n := range l.nodes {
		if l.sealed {
			masked := *n
			masked.Role = SealedMarker
			masked.Model = SealedMarker
			nodes[id] = &masked
		} else {
			nodes[id] = n
		}
	}
	return json.Marshal(ledgerJSON{
		SessionID:    l.sessionID,
		Sealed:       l.sealed,
		RootHash:     l.rootHash,
		LabelCounter: l.labelCount,
		Nodes:        nodes,
	})
}

// UnmarshalJSON reconstructs a ledger exactly as written, including sealed
// markers where attribution was masked at write time. Insertion order is
// rebuilt from node timestamps.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var raw ledgerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.sessionID = raw.SessionID
	l.sealed = raw.Sealed
	l.rootHash = raw.RootHash
	l.labelCount = raw.LabelCounter
	if l.labelCount == nil {
		l.labelCount = make(map[string]int)
	}
	l.nodes = raw.Nodes
	if l.nodes == nil {
		l.nodes = make(map[string]*Node)
	}
	l.order = l.order[:0]
	for id := range l.nodes {
		l.order = append(l.order, id)
	}
	sort.Slice(l.order, func(i, j int) bool {
		a, b := l.nodes[l.order[i]], l.nodes[l.order[j]]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return l.order[i] < l.order[j]
	})
	if l.now == nil {
		l.now = time.Now
	}
	return nil
}
