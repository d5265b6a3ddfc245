package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
	"github.com/Iron-Ham/hivecouncil/internal/util"
)

// maxLineContent bounds the response excerpt on a progress line.
const maxLineContent = 160

// printer writes one plain line per change between consecutive snapshots:
// a status change, a new response or a new consensus.
type printer struct {
	w io.Writer

	mu        sync.Mutex
	status    council.Status
	responses int
	merged    int
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, status: council.StatusIdle}
}

// Print is a snapshot subscriber.
func (p *printer) Print(snap council.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A shorter history means a new or cleared session.
	if len(snap.Responses) < p.responses || len(snap.MergedResponses) < p.merged {
		p.responses, p.merged = 0, 0
	}

	for _, rec := range snap.Responses[p.responses:] {
		label := "response"
		if rec.Kind == stream.KindFeedback {
			label = "feedback"
		}
		fmt.Fprintf(p.w, "[iteration %d] %s from %s: %s\n", rec.Iteration, label, author(rec), util.Excerpt(rec.Content, maxLineContent))
	}
	for _, rec := range snap.MergedResponses[p.merged:] {
		fmt.Fprintf(p.w, "[iteration %d] consensus from %s: %s\n", rec.Iteration, author(rec), util.Excerpt(rec.Content, maxLineContent))
	}
	p.responses = len(snap.Responses)
	p.merged = len(snap.MergedResponses)

	if snap.Status == p.status {
		return
	}
	p.status = snap.Status

	switch snap.Status {
	case council.StatusCompleted:
		fmt.Fprintf(p.w, "completed: %s\n", snap.Ledger().Summary())
	case council.StatusError:
		fmt.Fprintf(p.w, "error: %s\n", snap.Error)
	default:
		line := string(snap.Status)
		if snap.StatusMessage != "" {
			line += ": " + snap.StatusMessage
		}
		fmt.Fprintln(p.w, line)
	}
}

func author(rec council.ResponseRecord) string {
	if rec.Model != "" {
		return rec.Provider + " (" + rec.Model + ")"
	}
	return rec.Provider
}
