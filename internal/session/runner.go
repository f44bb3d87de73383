package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadsearch"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Runner drives one search through the session: single-flight guard, stage
// strip animation around the call, dedupe-and-apply of the result.
type Runner struct {
	searcher *leadsearch.Searcher
	session  *Session

	// StageDelay is the cosmetic pause for the interpret and compile stages,
	// which do no real work. Zero disables the pause.
	StageDelay time.Duration
}

// NewRunner creates a Runner with the default 300ms stage pause.
func NewRunner(searcher *leadsearch.Searcher, sess *Session) *Runner {
	return &Runner{searcher: searcher, session: sess, StageDelay: 300 * time.Millisecond}
}

// Run executes a search. The exclusion suffix sent upstream always comes
// from the session's own history in addition to req.Exclude. Returns the
// leads actually added to the visible set.
func (r *Runner) Run(ctx context.Context, req leadsearch.Request, mode Mode) ([]model.Lead, error) {
	if err := r.session.Begin(); err != nil {
		return nil, err
	}
	defer r.session.End()

	tracker := r.session.Pipeline()
	tracker.Start()

	// Stage 1: interpret query. Pure presentation.
	r.pause(ctx)
	tracker.Advance()

	// Stages 2 and 3 bracket the single real unit of work.
	req.Exclude = append(req.Exclude, r.session.ExclusionSuffix()...)
	leads, err := r.searcher.Search(ctx, req)
	if err != nil {
		tracker.Fail()
		return nil, err
	}
	tracker.Advance()
	tracker.Advance()

	// Stage 4: compile results.
	added := r.session.Apply(leads, mode)
	r.pause(ctx)
	tracker.Advance()

	zap.L().Info("search applied",
		zap.String("query", req.Query),
		zap.Int("returned", len(leads)),
		zap.Int("added", added),
		zap.Int("visible", len(r.session.Leads())),
	)

	return r.session.Leads(), nil
}

func (r *Runner) pause(ctx context.Context) {
	if r.StageDelay <= 0 {
		return
	}
	timer := time.NewTimer(r.StageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
