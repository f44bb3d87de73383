package session

import (
	"sync"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Tracker projects the lifecycle of the single search call onto the four
// named UI stages. It is a status strip, not a scheduler: stages do not
// correspond to independently executing work.
type Tracker struct {
	mu     sync.Mutex
	status map[model.Stage]model.StageStatus
	active int // index into model.Stages(), -1 when idle
}

// NewTracker creates a tracker with all stages idle.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset returns every stage to idle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = make(map[model.Stage]model.StageStatus, len(model.Stages()))
	for _, st := range model.Stages() {
		t.status[st] = model.StageIdle
	}
	t.active = -1
}

// Start marks the first stage running. Implicitly resets.
func (t *Tracker) Start() {
	t.Reset()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = 0
	t.status[model.Stages()[0]] = model.StageRunning
}

// Advance completes the active stage and starts the next one. Calling it on
// the last stage completes the whole strip.
func (t *Tracker) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := model.Stages()
	if t.active < 0 {
		return
	}
	t.status[stages[t.active]] = model.StageCompleted
	t.active++
	if t.active >= len(stages) {
		t.active = -1
		return
	}
	t.status[stages[t.active]] = model.StageRunning
}

// Fail marks the active stage errored and leaves the rest idle.
func (t *Tracker) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active < 0 {
		return
	}
	t.status[model.Stages()[t.active]] = model.StageError
	t.active = -1
}

// States returns the strip in display order.
func (t *Tracker) States() []model.StageState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.StageState, 0, len(model.Stages()))
	for _, st := range model.Stages() {
		out = append(out, model.StageState{Stage: st, Status: t.status[st]})
	}
	return out
}
