package council

import (
	"slices"

	"github.com/Iron-Ham/hivecouncil/internal/ledger"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// Snapshot is an immutable point-in-time copy of session state, shaped for
// observers and JSON output.
type Snapshot struct {
	SessionID        string           `json:"sessionId"`
	Status           Status           `json:"status"`
	CurrentIteration int              `json:"currentIteration"`
	TotalIterations  int              `json:"totalIterations"`
	Responses        []ResponseRecord `json:"responses"`
	MergedResponses  []ResponseRecord `json:"mergedResponses"`
	StatusMessage    string           `json:"statusMessage"`
	TotalCost        float64          `json:"totalCost"`
	TotalTokens      stream.Tokens    `json:"totalTokens"`
	Error            string           `json:"error,omitempty"`
	ErrorCode        string           `json:"errorCode,omitempty"`
	QueuedEvents     int              `json:"queuedEvents"`
}

// Snapshot returns a deep copy of the observable state.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:        s.SessionID,
		Status:           s.Status,
		CurrentIteration: s.CurrentIteration,
		TotalIterations:  s.TotalIterations,
		Responses:        slices.Clone(s.Responses),
		MergedResponses:  slices.Clone(s.MergedResponses),
		StatusMessage:    s.StatusMessage,
		TotalCost:        s.Ledger.TotalCost,
		TotalTokens:      s.Ledger.TotalTokens,
		ErrorCode:        s.ErrorCode,
		QueuedEvents:     len(s.queue),
	}
	if snap.Responses == nil {
		snap.Responses = []ResponseRecord{}
	}
	if snap.MergedResponses == nil {
		snap.MergedResponses = []ResponseRecord{}
	}
	if s.Err != nil {
		snap.Error = s.Err.Error()
	}
	return snap
}

// Ledger returns the snapshot's running totals.
func (s Snapshot) Ledger() ledger.Ledger {
	return ledger.Ledger{
		TotalCost:   s.TotalCost,
		TotalTokens: s.TotalTokens,
		Entries:     len(s.Responses) + len(s.MergedResponses),
	}
}

// LedgerEntries returns the accounting entries of every record, responses
// first.
func (s Snapshot) LedgerEntries() []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(s.Responses)+len(s.MergedResponses))
	for _, r := range s.Responses {
		entries = append(entries, r.LedgerEntry())
	}
	for _, r := range s.MergedResponses {
		entries = append(entries, r.LedgerEntry())
	}
	return entries
}

// Terminal reports whether the session has ended.
func (s Snapshot) Terminal() bool {
	return s.Status.Terminal()
}

// Round groups the records of one iteration.
type Round struct {
	Iteration int
	Responses []ResponseRecord
	Merge     *ResponseRecord
}

// Rounds groups responses and merges by iteration in ascending order.
func (s Snapshot) Rounds() []Round {
	byIteration := make(map[int]*Round)
	get := func(i int) *Round {
		r, ok := byIteration[i]
		if !ok {
			r = &Round{Iteration: i}
			byIteration[i] = r
		}
		return r
	}
	for _, rec := range s.Responses {
		r := get(rec.Iteration)
		r.Responses = append(r.Responses, rec)
	}
	for _, rec := range s.MergedResponses {
		r := get(rec.Iteration)
		if r.Merge == nil {
			r.Merge = &rec
		}
	}

	rounds := make([]Round, 0, len(byIteration))
	for _, r := range byIteration {
		rounds = append(rounds, *r)
	}
	slices.SortFunc(rounds, func(a, b Round) int { return a.Iteration - b.Iteration })
	return rounds
}
