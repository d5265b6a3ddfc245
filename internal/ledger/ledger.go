// Package ledger keeps the running token and cost totals of a council session.
//
// A [Ledger] is a value. [Ledger.Add] folds one entry in and returns the new
// totals, so the cost of an update does not depend on how many responses the
// session already holds. [Sum] recomputes the same totals by rescanning and
// exists for reconciliation.
package ledger

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// costEpsilon absorbs float drift between a running fold and a rescan.
const costEpsilon = 1e-9

// Entry is the accounting view of one committed response.
type Entry struct {
	Tokens stream.Tokens
	Cost   float64
}

// Ledger holds running totals.
type Ledger struct {
	TotalCost   float64       `json:"totalCost"`
	TotalTokens stream.Tokens `json:"totalTokens"`
	Entries     int           `json:"-"`
}

// Add returns the ledger with e folded in.
func (l Ledger) Add(e Entry) Ledger {
	l.TotalCost += e.Cost
	l.TotalTokens.Input += e.Tokens.Input
	l.TotalTokens.Output += e.Tokens.Output
	l.Entries++
	return l
}

// Sum recomputes totals over entries from scratch.
func Sum(entries []Entry) Ledger {
	var l Ledger
	for _, e := range entries {
		l = l.Add(e)
	}
	return l
}

// Reconcile checks the running totals against a rescan of entries. A mismatch
// is returned as a *errors.ConsistencyAnomaly.
func (l Ledger) Reconcile(entries []Entry) error {
	want := Sum(entries)
	if l.TotalTokens != want.TotalTokens {
		return errors.NewConsistencyAnomaly("ledger_mismatch", "",
			fmt.Sprintf("tokens %d+%d, records sum to %d+%d",
				l.TotalTokens.Input, l.TotalTokens.Output, want.TotalTokens.Input, want.TotalTokens.Output))
	}
	if math.Abs(l.TotalCost-want.TotalCost) > costEpsilon {
		return errors.NewConsistencyAnomaly("ledger_mismatch", "",
			fmt.Sprintf("cost %v, records sum to %v", l.TotalCost, want.TotalCost))
	}
	if l.Entries != len(entries) {
		return errors.NewConsistencyAnomaly("ledger_mismatch", "",
			fmt.Sprintf("%d entries folded, %d records", l.Entries, len(entries)))
	}
	return nil
}

// TotalTokenCount returns input plus output tokens.
func (l Ledger) TotalTokenCount() int64 {
	return l.TotalTokens.Input + l.TotalTokens.Output
}

// FormatTokens formats a token count for display (e.g., "45.2K")
func FormatTokens(tokens int64) string {
	if tokens >= 1000000 {
		return strconv.FormatFloat(float64(tokens)/1000000.0, 'f', 1, 64) + "M"
	}
	if tokens >= 1000 {
		return strconv.FormatFloat(float64(tokens)/1000.0, 'f', 1, 64) + "K"
	}
	return strconv.FormatInt(tokens, 10)
}

// FormatCost formats a cost with four decimals (e.g., "$0.0030"). Council
// responses are often fractions of a cent.
func FormatCost(cost float64) string {
	if cost < 0 {
		cost = 0
	}
	return "$" + strconv.FormatFloat(cost, 'f', 4, 64)
}

// Summary renders the status bar line, e.g. "1.2K tokens (800 in / 400 out) · $0.0030".
func (l Ledger) Summary() string {
	return fmt.Sprintf("%s tokens (%s in / %s out) · %s",
		FormatTokens(l.TotalTokenCount()),
		FormatTokens(l.TotalTokens.Input),
		FormatTokens(l.TotalTokens.Output),
		FormatCost(l.TotalCost))
}
