// Package session holds the caller-side view of a lead search: the
// accumulated visible result set, the bounded exclusion suffix fed back into
// the next prompt, and the cosmetic pipeline status strip.
package session

import (
	"errors"
	"sync"

	"github.com/sells-group/leadgen-cli/internal/leadsearch"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// ErrSearchInFlight is returned when a search is started while another is
// still outstanding. Re-entry is rejected, not queued.
var ErrSearchInFlight = errors.New("session: a search is already in flight")

// Mode selects what happens to the current result set when new leads arrive.
type Mode int

const (
	// ModeReplace discards the current result set first.
	ModeReplace Mode = iota
	// ModeAppend keeps current results and adds only unseen names.
	ModeAppend
)

// Session is safe for concurrent use; the serve mode shares one instance
// across requests.
type Session struct {
	mu             sync.Mutex
	busy           bool
	leads          []model.Lead
	seen           map[string]bool // normalized names ever shown
	names          []string        // insertion-ordered names for the suffix
	exclusionBound int
	tracker        *Tracker
}

// New creates a session. exclusionBound caps ExclusionSuffix; <= 0 means
// the default of 120.
func New(exclusionBound int) *Session {
	if exclusionBound <= 0 {
		exclusionBound = 120
	}
	return &Session{
		seen:           make(map[string]bool),
		exclusionBound: exclusionBound,
		tracker:        NewTracker(),
	}
}

// Begin claims the single search slot. Mutual exclusion is the whole
// re-entrancy story: there is no queueing and no cancellation of the holder.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSearchInFlight
	}
	s.busy = true
	return nil
}

// End releases the search slot.
func (s *Session) End() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Apply merges newly returned leads into the visible set and returns how
// many were actually added. Dedupe is by normalized name against everything
// already held, and happens before appending, so the visible list never
// shows the same business twice.
func (s *Session) Apply(leads []model.Lead, mode Mode) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ModeReplace {
		s.leads = nil
		s.seen = make(map[string]bool)
		s.names = nil
	}

	added := 0
	for _, lead := range leads {
		key := model.NormalizeName(lead.Name)
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.leads = append(s.leads, lead)
		s.names = append(s.names, lead.Name)
		added++
	}
	return added
}

// Leads returns a copy of the visible result set.
func (s *Session) Leads() []model.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// ExclusionSuffix returns the most recent names up to the configured bound,
// a suffix view of the full history, never the unbounded history itself.
func (s *Session) ExclusionSuffix() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := leadsearch.BoundExclusions(s.names, s.exclusionBound)
	out := make([]string, len(suffix))
	copy(out, suffix)
	return out
}

// Pipeline exposes the stage tracker for status projection.
func (s *Session) Pipeline() *Tracker {
	return s.tracker
}

// Fixed user-facing messages for terminal faults.
const (
	msgRateLimited = "Search quota reached. Please try again in a few minutes."
	msgNoLeads     = "No new leads found. Try a different query or location."
	msgGeneric     = "The search failed. Please try again."
)

// UserMessage maps a terminal orchestrator error to the message shown in the
// UI. Only terminal faults ever reach this layer.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, leadsearch.ErrRateLimited):
		return msgRateLimited
	case errors.Is(err, leadsearch.ErrNoLeads):
		return msgNoLeads
	default:
		return msgGeneric
	}
}
