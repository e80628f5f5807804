// Package council implements the deliberation engine: the phase state
// machine, rank-aggregation voting, and the Delphi refinement variant.
package council

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/athola/warcouncil/internal/experts"
	"github.com/athola/warcouncil/internal/logging"
	"github.com/athola/warcouncil/internal/metrics"
	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ledger"
	"github.com/athola/warcouncil/pkg/ports"
)

// Executor drives the phase sequence intel → assessment → coa →
// [escalation] → red_team → voting → premortem → synthesis. It is the sole
// mutator of a Session and is never re-entered for the same session, so the
// session needs no locking. Within a phase it fans out to experts
// concurrently and records results in completion order.
type Executor struct {
	panel   *experts.Panel
	store   ports.SessionStore
	logger  *slog.Logger
	metrics *metrics.Metrics

	delphiThreshold float64
	delphiMaxRounds int

	newID func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithDelphi overrides the convergence threshold and round budget for
// Delphi runs.
func WithDelphi(threshold float64, maxRounds int) Option {
	return func(e *Executor) {
		e.delphiThreshold = threshold
		e.delphiMaxRounds = maxRounds
	}
}

// WithIDGenerator replaces session id generation (used by tests).
func WithIDGenerator(fn func() string) Option {
	return func(e *Executor) { e.newID = fn }
}

// New creates an executor over the given panel and store.
func New(panel *experts.Panel, store ports.SessionStore, opts ...Option) *Executor {
	e := &Executor{
		panel:           panel,
		store:           store,
		logger:          logging.NewNop(),
		delphiThreshold: DefaultDelphiThreshold,
		delphiMaxRounds: DefaultDelphiMaxRounds,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one standard deliberation. The session is persisted exactly
// once, on success, failure, or panic; any unhandled phase error becomes a
// "failed: <message>" status with whatever was gathered still on disk.
func (ex *Executor) Run(ctx context.Context, problem string, mode domain.Mode) (sess *domain.Session, err error) {
	if mode == "" {
		mode = domain.ModeLightweight
	}
	sess = domain.NewSession(ex.newID(), problem, mode)
	ex.panel.Reset()
	ex.logger.Info("deliberation started", "session", sess.ID, "mode", mode)

	defer ex.finalize(ctx, sess, &err)

	st, coreErr := ex.runCore(ctx, sess)
	if coreErr != nil {
		err = coreErr
		return sess, err
	}
	if closeErr := ex.runClosing(ctx, sess, st); closeErr != nil {
		err = closeErr
		return sess, err
	}
	sess.Status = domain.StatusCompleted
	return sess, nil
}

// finalize is the guaranteed cleanup path: it converts panics into failed
// status and always persists the session plus accumulated fallback notices.
func (ex *Executor) finalize(ctx context.Context, sess *domain.Session, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("phase panicked: %v", r)
	}
	if *errp != nil {
		sess.Status = domain.FailedStatus((*errp).Error())
		ex.logger.Error("deliberation failed", "session", sess.ID, "error", *errp)
	}
	if notices := ex.panel.Notices(); len(notices) > 0 {
		sess.Artifacts[domain.ArtifactFallbackNotices] = strings.Join(notices, "\n")
	}
	if saveErr := ex.store.Save(ctx, sess); saveErr != nil {
		ex.logger.Error("failed to persist session", "session", sess.ID, "error", saveErr)
		if *errp == nil {
			*errp = fmt.Errorf("persist session: %w", saveErr)
		}
		return
	}
	ex.logger.Info("session persisted", "session", sess.ID, "status", sess.Status)
}

// coreState carries cross-phase working data within one run.
type coreState struct {
	assessment string
	critique   string
	scores     map[string]int
	finalists  []Finalist
	round      int

	// coaNodes maps expert key to that expert's latest COA node id.
	coaNodes map[string]string
}

// runCore executes intel through voting.
func (ex *Executor) runCore(ctx context.Context, sess *domain.Session) (*coreState, error) {
	st := &coreState{coaNodes: make(map[string]string)}

	if err := ex.runIntel(ctx, sess); err != nil {
		return nil, err
	}
	if err := ex.runAssessment(ctx, sess, st); err != nil {
		return nil, err
	}
	if err := ex.runCOA(ctx, sess, st, nil); err != nil {
		return nil, err
	}
	if err := ex.maybeEscalate(ctx, sess, st); err != nil {
		return nil, err
	}
	if err := ex.runRedTeam(ctx, sess, st, 0); err != nil {
		return nil, err
	}
	if err := ex.runVoting(ctx, sess, st, 0); err != nil {
		return nil, err
	}
	return st, nil
}

// runClosing executes premortem and synthesis.
func (ex *Executor) runClosing(ctx context.Context, sess *domain.Session, st *coreState) error {
	if err := ex.runPremortem(ctx, sess, st); err != nil {
		return err
	}
	return ex.runSynthesis(ctx, sess, st)
}

type consultJob struct {
	expert domain.Expert
	prompt string
	parent string
}

type consulted struct {
	experts.Contribution
	parent string
}

// fanOut launches every job concurrently and joins on all of them.
// Invocation failures are already embedded as diagnostic text by the panel
// and never cancel siblings; the only error here is a fatal configuration
// error. Results arrive in completion order, which is the order the ledger
// will record them in.
func (ex *Executor) fanOut(ctx context.Context, jobs []consultJob) ([]consulted, error) {
	results := make(chan consulted, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			c, err := ex.panel.Consult(gctx, job.expert, job.prompt)
			if err != nil {
				return err
			}
			results <- consulted{Contribution: c, parent: job.parent}
			return nil
		})
	}
	err := g.Wait()
	close(results)

	out := make([]consulted, 0, len(jobs))
	for c := range results {
		out = append(out, c)
	}
	return out, err
}

func (ex *Executor) record(sess *domain.Session, phase domain.Phase, round int, c consulted) *ledger.Node {
	return sess.Ledger.AddChild(c.Content, string(phase), round, c.Expert.Role, c.Model, c.parent)
}

// completePhase marks a phase done (once) and records its duration.
func (ex *Executor) completePhase(sess *domain.Session, phase domain.Phase, start time.Time) {
	d := time.Since(start)
	seen := false
	for _, p := range sess.PhasesCompleted {
		if p == phase {
			seen = true
			break
		}
	}
	if !seen {
		sess.CompletePhase(phase)
	}
	sess.Metrics["phase_"+string(phase)+"_seconds"] = d.Seconds()
	ex.metrics.ObservePhase(string(phase), d)
	ex.logger.Info("phase complete", "session", sess.ID, "phase", phase, "duration", d)
}

func (ex *Executor) runIntel(ctx context.Context, sess *domain.Session) error {
	start := time.Now()
	prompt := intelPrompt(sess.Problem)

	var jobs []consultJob
	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseIntel, sess.Mode) {
		jobs = append(jobs, consultJob{expert: e, prompt: prompt})
	}
	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	for _, c := range res {
		ex.record(sess, domain.PhaseIntel, 0, c)
		switch c.Expert.Key {
		case "scout":
			sess.Artifacts[domain.ArtifactScoutReport] = c.Content
		default:
			sess.Artifacts[domain.ArtifactIntelReport] = c.Content
		}
	}
	ex.completePhase(sess, domain.PhaseIntel, start)
	return nil
}

// runAssessment is strictly sequential: it depends on recorded intel.
func (ex *Executor) runAssessment(ctx context.Context, sess *domain.Session, st *coreState) error {
	start := time.Now()
	prompt := assessmentPrompt(sess.Problem, sess.Ledger.AnonymizedView(string(domain.PhaseIntel)))

	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseAssessment, sess.Mode) {
		c, err := ex.panel.Consult(ctx, e, prompt)
		if err != nil {
			return err
		}
		ex.record(sess, domain.PhaseAssessment, 0, consulted{Contribution: c})
		st.assessment = c.Content
		sess.Artifacts[domain.ArtifactAssessment] = c.Content
	}
	ex.completePhase(sess, domain.PhaseAssessment, start)
	return nil
}

// runCOA fans the panel out for one proposal each. exclude holds expert
// keys that already contributed (the escalation merge path).
func (ex *Executor) runCOA(ctx context.Context, sess *domain.Session, st *coreState, exclude map[string]bool) error {
	start := time.Now()
	prompt := coaPrompt(sess.Problem, st.assessment)

	var jobs []consultJob
	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseCOA, sess.Mode) {
		if exclude[e.Key] {
			continue
		}
		jobs = append(jobs, consultJob{expert: e, prompt: prompt})
	}
	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	for _, c := range res {
		node := ex.record(sess, domain.PhaseCOA, st.round, c)
		sess.Artifacts[domain.COAArtifactKey(c.Expert.Key)] = c.Content
		st.coaNodes[c.Expert.Key] = node.ID
	}
	ex.completePhase(sess, domain.PhaseCOA, start)
	return nil
}

// maybeEscalate promotes a lightweight session to full council when the
// COA set is too thin or the assessment reads high-stakes. Evaluated once:
// after promotion the mode is full_council and this is a no-op.
func (ex *Executor) maybeEscalate(ctx context.Context, sess *domain.Session, st *coreState) error {
	if sess.Mode != domain.ModeLightweight {
		return nil
	}
	reason, ok := escalationReason(len(st.coaNodes), st.assessment)
	if !ok {
		return nil
	}

	sess.Escalated = true
	sess.EscalationReason = reason
	sess.Mode = domain.ModeFullCouncil
	ex.logger.Info("escalating to full council", "session", sess.ID, "reason", reason)

	already := make(map[string]bool, len(st.coaNodes))
	for key := range st.coaNodes {
		already[key] = true
	}
	return ex.runCOA(ctx, sess, st, already)
}

// votingCandidates returns the anonymized COA entries of the latest round.
// Labels stay monotonic across rounds; revised proposals get fresh labels.
func (ex *Executor) votingCandidates(sess *domain.Session) []ledger.Entry {
	nodes := sess.Ledger.PhaseNodes(string(domain.PhaseCOA))
	maxRound := 0
	for _, n := range nodes {
		if n.Round > maxRound {
			maxRound = n.Round
		}
	}
	var out []ledger.Entry
	for _, n := range nodes {
		if n.Round == maxRound {
			out = append(out, ledger.Entry{Label: n.Label, Phase: n.Phase, Round: n.Round, Content: n.Content})
		}
	}
	return out
}

// runRedTeam has the adversarial expert critique the anonymized COA set.
func (ex *Executor) runRedTeam(ctx context.Context, sess *domain.Session, st *coreState, round int) error {
	start := time.Now()
	prompt := redTeamPrompt(ex.votingCandidates(sess))

	var jobs []consultJob
	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseRedTeam, sess.Mode) {
		jobs = append(jobs, consultJob{expert: e, prompt: prompt})
	}
	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	var critiques []string
	for _, c := range res {
		ex.record(sess, domain.PhaseRedTeam, round, c)
		critiques = append(critiques, c.Content)
	}
	st.critique = strings.Join(critiques, "\n\n")
	sess.Artifacts[domain.ArtifactRedTeam] = st.critique
	ex.completePhase(sess, domain.PhaseRedTeam, start)
	return nil
}

// runVoting collects free-text rankings from the voting panel and
// aggregates them into Borda scores; the top candidates become finalists.
func (ex *Executor) runVoting(ctx context.Context, sess *domain.Session, st *coreState, round int) error {
	start := time.Now()
	candidates := ex.votingCandidates(sess)
	labels := make([]string, 0, len(candidates))
	contents := make(map[string]string, len(candidates))
	for _, c := range candidates {
		labels = append(labels, c.Label)
		contents[c.Label] = c.Content
	}
	prompt := votingPrompt(candidates, st.critique)

	var jobs []consultJob
	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseVoting, sess.Mode) {
		jobs = append(jobs, consultJob{expert: e, prompt: prompt})
	}
	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	votes := make([]string, 0, len(res))
	for _, c := range res {
		ex.record(sess, domain.PhaseVoting, round, c)
		votes = append(votes, c.Content)
	}

	st.scores = BordaScores(votes, labels)
	st.finalists = topFinalists(st.scores, contents)
	for label, score := range st.scores {
		sess.Metrics[bordaMetricKey(label)] = float64(score)
	}
	ex.completePhase(sess, domain.PhaseVoting, start)
	return nil
}

func bordaMetricKey(label string) string {
	return "borda_" + strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// runPremortem has every remaining panel member imagine the top finalist
// failing, concurrently.
func (ex *Executor) runPremortem(ctx context.Context, sess *domain.Session, st *coreState) error {
	if len(st.finalists) == 0 {
		return fmt.Errorf("no finalists to premortem")
	}
	start := time.Now()
	prompt := premortemPrompt(st.finalists[0])

	var jobs []consultJob
	for _, e := range ex.panel.Registry.ForPhase(domain.PhasePremortem, sess.Mode) {
		jobs = append(jobs, consultJob{expert: e, prompt: prompt})
	}
	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	var sections []string
	for _, c := range res {
		node := ex.record(sess, domain.PhasePremortem, st.round, c)
		sections = append(sections, fmt.Sprintf("## %s\n\n%s", node.Label, c.Content))
	}
	sess.Artifacts[domain.ArtifactPremortem] = strings.Join(sections, "\n\n")
	ex.completePhase(sess, domain.PhasePremortem, start)
	return nil
}

// runSynthesis unseals the ledger and has the authoritative expert issue
// the decision from the full attributed record.
func (ex *Executor) runSynthesis(ctx context.Context, sess *domain.Session, st *coreState) error {
	start := time.Now()
	records := sess.Ledger.Unseal()
	prompt := synthesisPrompt(sess.Problem, records, st.finalists, ex.panel.Notices())

	for _, e := range ex.panel.Registry.ForPhase(domain.PhaseSynthesis, sess.Mode) {
		c, err := ex.panel.Consult(ctx, e, prompt)
		if err != nil {
			return err
		}
		ex.record(sess, domain.PhaseSynthesis, st.round, consulted{Contribution: c})
		sess.Artifacts[domain.ArtifactDecision] = c.Content
	}
	ex.completePhase(sess, domain.PhaseSynthesis, start)
	return nil
}
