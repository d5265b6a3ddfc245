package council

import (
	"maps"
	"slices"

	"github.com/Iron-Ham/hivecouncil/internal/ledger"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// responseKey identifies one participant contribution. At most one record is
// committed per key.
type responseKey struct {
	provider  string
	iteration int
	kind      stream.Kind
}

// partial accumulates incremental deliveries of a response.
type partial struct {
	content string
	model   string
	id      string
}

// State is the full session state. It is a value: Reduce returns a new State
// and never modifies the one it was given. Read it through Snapshot.
type State struct {
	SessionID        string
	Status           Status
	CurrentIteration int
	TotalIterations  int
	Responses        []ResponseRecord
	MergedResponses  []ResponseRecord
	StatusMessage    string
	Ledger           ledger.Ledger

	// Err is the failure that moved the session to StatusError.
	Err       error
	ErrorCode string

	pending   map[responseKey]partial
	committed map[responseKey]struct{}
	queue     []stream.Event
}

// IdleState returns the baseline state before any session starts.
func IdleState() State {
	return State{Status: StatusIdle}
}

// NewState returns a fresh running session for cfg. The session id stays
// empty until the remote confirms the session.
func NewState(cfg Config) State {
	return State{
		Status:           StatusRunning,
		CurrentIteration: 1,
		TotalIterations:  cfg.Iterations,
		StatusMessage:    "Starting session...",
	}
}

// Queued returns the number of events held while paused.
func (s State) Queued() int {
	return len(s.queue)
}

// Pending returns the number of responses with incomplete deliveries.
func (s State) Pending() int {
	return len(s.pending)
}

// hasMergeFrom reports whether a merged response exists for iteration or a
// later one. A merge past the last iteration is clamped to it.
func (s State) hasMergeFrom(iteration int) bool {
	for _, r := range s.MergedResponses {
		if r.Iteration >= iteration {
			return true
		}
	}
	return false
}

// The helpers below copy on write so a State handed out earlier never sees
// a later change.

func (s *State) setPending(k responseKey, p partial) {
	m := maps.Clone(s.pending)
	if m == nil {
		m = make(map[responseKey]partial)
	}
	m[k] = p
	s.pending = m
}

func (s *State) dropPending(k responseKey) {
	if _, ok := s.pending[k]; !ok {
		return
	}
	m := maps.Clone(s.pending)
	delete(m, k)
	s.pending = m
}

func (s *State) markCommitted(k responseKey) {
	m := maps.Clone(s.committed)
	if m == nil {
		m = make(map[responseKey]struct{})
	}
	m[k] = struct{}{}
	s.committed = m
}

func (s *State) enqueue(ev stream.Event) {
	s.queue = append(slices.Clip(s.queue), ev)
}

func (s *State) appendRecord(rec ResponseRecord) {
	if rec.Kind == stream.KindMerge {
		s.MergedResponses = append(slices.Clip(s.MergedResponses), rec)
	} else {
		s.Responses = append(slices.Clip(s.Responses), rec)
	}
	s.Ledger = s.Ledger.Add(rec.LedgerEntry())
}
