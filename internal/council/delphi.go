package council

import (
	"context"
	"fmt"

	"github.com/athola/warcouncil/pkg/domain"
	"github.com/athola/warcouncil/pkg/ledger"
)

// Delphi defaults. The loop stops as soon as the panel's score
// distribution is differentiated enough, or the round budget runs out.
const (
	DefaultDelphiThreshold = 0.5
	DefaultDelphiMaxRounds = 3
)

// RunDelphi executes the iterative-refinement variant: the standard phases
// through voting, then repeated revision/critique/voting rounds until
// convergence reaches the threshold or rounds are exhausted, then premortem
// and synthesis over the final candidate set. Delphi always runs full
// council. Per-round convergence lands in session metrics.
func (ex *Executor) RunDelphi(ctx context.Context, problem string) (sess *domain.Session, err error) {
	sess = domain.NewSession(ex.newID(), problem, domain.ModeFullCouncil)
	ex.panel.Reset()
	ex.logger.Info("delphi deliberation started", "session", sess.ID,
		"threshold", ex.delphiThreshold, "max_rounds", ex.delphiMaxRounds)

	defer ex.finalize(ctx, sess, &err)

	st, coreErr := ex.runCore(ctx, sess)
	if coreErr != nil {
		err = coreErr
		return sess, err
	}

	conv := Convergence(st.scores)
	sess.Metrics["delphi_round_0_convergence"] = conv

	for round := 1; conv < ex.delphiThreshold && round <= ex.delphiMaxRounds; round++ {
		ex.logger.Info("delphi round", "session", sess.ID, "round", round, "convergence", conv)
		st.round = round

		if revErr := ex.runRevision(ctx, sess, st); revErr != nil {
			err = revErr
			return sess, err
		}
		if rtErr := ex.runRedTeam(ctx, sess, st, round); rtErr != nil {
			err = rtErr
			return sess, err
		}
		if voteErr := ex.runVoting(ctx, sess, st, round); voteErr != nil {
			err = voteErr
			return sess, err
		}

		conv = Convergence(st.scores)
		sess.Metrics[fmt.Sprintf("delphi_round_%d_convergence", round)] = conv
	}

	if closeErr := ex.runClosing(ctx, sess, st); closeErr != nil {
		err = closeErr
		return sess, err
	}
	sess.Status = domain.StatusCompleted
	return sess, nil
}

// runRevision re-prompts every COA contributor with the prior critique and
// the other anonymized positions. Revisions are recorded as children of the
// expert's previous proposal (lineage only) under the current round.
func (ex *Executor) runRevision(ctx context.Context, sess *domain.Session, st *coreState) error {
	candidates := ex.votingCandidates(sess)

	var jobs []consultJob
	for key, nodeID := range st.coaNodes {
		e, err := ex.panel.Registry.Get(key)
		if err != nil {
			return err
		}
		prior := sess.Ledger.Get(nodeID)
		if prior == nil {
			return fmt.Errorf("missing prior coa node for expert %s", key)
		}
		var others []ledger.Entry
		for _, c := range candidates {
			if c.Label != prior.Label {
				others = append(others, c)
			}
		}
		jobs = append(jobs, consultJob{
			expert: e,
			prompt: revisionPrompt(sess.Problem, prior.Content, st.critique, others),
			parent: nodeID,
		})
	}

	res, err := ex.fanOut(ctx, jobs)
	if err != nil {
		return err
	}
	for _, c := range res {
		node := ex.record(sess, domain.PhaseCOA, st.round, c)
		st.coaNodes[c.Expert.Key] = node.ID
		sess.Artifacts[domain.COAArtifactKey(c.Expert.Key)] = c.Content
	}
	return nil
}
