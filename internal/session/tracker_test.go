package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/leadsearch"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/gemini"
)

func statuses(tr *Tracker) []model.StageStatus {
	states := tr.States()
	out := make([]model.StageStatus, len(states))
	for i, st := range states {
		out[i] = st.Status
	}
	return out
}

func TestTracker_Lifecycle(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	assert.Equal(t, []model.StageStatus{
		model.StageIdle, model.StageIdle, model.StageIdle, model.StageIdle,
	}, statuses(tr))

	tr.Start()
	assert.Equal(t, []model.StageStatus{
		model.StageRunning, model.StageIdle, model.StageIdle, model.StageIdle,
	}, statuses(tr))

	tr.Advance()
	tr.Advance()
	assert.Equal(t, []model.StageStatus{
		model.StageCompleted, model.StageCompleted, model.StageRunning, model.StageIdle,
	}, statuses(tr))

	tr.Advance()
	tr.Advance()
	assert.Equal(t, []model.StageStatus{
		model.StageCompleted, model.StageCompleted, model.StageCompleted, model.StageCompleted,
	}, statuses(tr))
}

func TestTracker_FailMarksActiveStage(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.Start()
	tr.Advance() // discover running
	tr.Fail()

	assert.Equal(t, []model.StageStatus{
		model.StageCompleted, model.StageError, model.StageIdle, model.StageIdle,
	}, statuses(tr))

	// Fail and Advance after terminal state are no-ops.
	tr.Fail()
	tr.Advance()
	assert.Equal(t, model.StageError, tr.States()[1].Status)
}

// fakeClient returns a fixed payload for runner tests.
type fakeClient struct {
	text string
	err  error
}

func (f *fakeClient) GenerateContent(context.Context, gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Parts: []gemini.Part{{Text: f.text}}},
	}}}, nil
}

func newRunner(client gemini.Client) (*Runner, *Session) {
	searcher := leadsearch.New(client, leadsearch.Config{RetryDelay: time.Millisecond})
	sess := New(0)
	r := NewRunner(searcher, sess)
	r.StageDelay = 0
	return r, sess
}

func TestRunner_SuccessCompletesStrip(t *testing.T) {
	t.Parallel()

	r, sess := newRunner(&fakeClient{text: `[{"name":"A","address":"1"}]`})
	leads, err := r.Run(context.Background(), leadsearch.Request{Query: "q", Location: "l"}, ModeReplace)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	for _, st := range sess.Pipeline().States() {
		assert.Equal(t, model.StageCompleted, st.Status)
	}
}

func TestRunner_FailureMarksDiscoverErrored(t *testing.T) {
	t.Parallel()

	r, sess := newRunner(&fakeClient{err: &gemini.APIError{StatusCode: 429, Body: "quota"}})
	_, err := r.Run(context.Background(), leadsearch.Request{Query: "q", Location: "l"}, ModeReplace)
	require.ErrorIs(t, err, leadsearch.ErrRateLimited)

	states := sess.Pipeline().States()
	assert.Equal(t, model.StageCompleted, states[0].Status)
	assert.Equal(t, model.StageError, states[1].Status)
}

func TestRunner_ReleasesGuardAfterRun(t *testing.T) {
	t.Parallel()

	r, sess := newRunner(&fakeClient{text: `[{"name":"A","address":"1"}]`})
	_, err := r.Run(context.Background(), leadsearch.Request{Query: "q", Location: "l"}, ModeReplace)
	require.NoError(t, err)
	assert.NoError(t, sess.Begin(), "guard must be released after a run")
	sess.End()
}

func TestRunner_AppendFeedsExclusions(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: `[{"name":"A","address":"1"}]`}
	r, sess := newRunner(client)

	_, err := r.Run(context.Background(), leadsearch.Request{Query: "q", Location: "l"}, ModeReplace)
	require.NoError(t, err)

	// Second run returns the same lead; append mode must not duplicate it.
	leads, err := r.Run(context.Background(), leadsearch.Request{Query: "q", Location: "l"}, ModeAppend)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
	assert.Equal(t, []string{"A"}, sess.ExclusionSuffix())
}
