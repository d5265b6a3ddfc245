package council

import (
	"fmt"

	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
	"github.com/google/uuid"
)

// Anomaly kinds reported by Reduce.
const (
	AnomalyEventWhileIdle       = "event_while_idle"
	AnomalySessionIDConflict    = "session_id_conflict"
	AnomalyDuplicateResponse    = "duplicate_response"
	AnomalyIterationRegression  = "iteration_regression"
	AnomalyIterationOutOfRange  = "iteration_out_of_range"
	AnomalyCompleteWithoutMerge = "complete_without_merge"
	AnomalyIncompleteDiscarded  = "incomplete_response_discarded"
	AnomalyPostTerminal         = "post_terminal_event"
)

// Reduce applies ev to s and returns the next state together with any
// consistency anomalies the event exposed. Anomalies never stop a
// transition. Unknown event kinds leave the state unchanged.
func Reduce(s State, ev stream.Event) (State, []*errors.ConsistencyAnomaly) {
	r := reducer{state: s}
	r.apply(ev)
	return r.state, r.anomalies
}

type reducer struct {
	state     State
	anomalies []*errors.ConsistencyAnomaly
}

func (r *reducer) flag(kind string, ev stream.Event, format string, args ...any) {
	r.anomalies = append(r.anomalies, errors.NewConsistencyAnomaly(kind, string(ev.Kind), fmt.Sprintf(format, args...)))
}

func (r *reducer) apply(ev stream.Event) {
	if !ev.Kind.Known() || (ev.Kind.LocalOnly() && ev.Origin != stream.OriginLocal) {
		return
	}
	if ev.Kind == stream.KindClear {
		r.state = IdleState()
		return
	}

	local := ev.Kind.LocalOnly()
	switch st := r.state.Status; {
	case st == StatusIdle:
		if !local {
			r.flag(AnomalyEventWhileIdle, ev, "no session is running")
		}
		return
	case st.Terminal():
		if !local {
			r.flag(AnomalyPostTerminal, ev, "session already %s", st)
		}
		return
	case ev.Kind == stream.KindAbort:
		r.state.queue = nil
		r.applyError(ev)
		return
	case st == StatusPaused:
		r.applyPaused(ev)
		return
	}

	switch ev.Kind {
	case stream.KindSessionCreated:
		r.applySessionCreated(ev)
	case stream.KindStatus:
		if ev.Message != "" {
			r.state.StatusMessage = ev.Message
		}
	case stream.KindInitialResponse, stream.KindFeedback, stream.KindMerge:
		r.applyResponse(ev)
	case stream.KindPauseRequested, stream.KindPaused:
		r.state.Status = StatusPaused
		r.state.StatusMessage = messageOr(ev, "Paused")
	case stream.KindResume:
		// Already running; a late confirmation of a local resume.
	case stream.KindComplete:
		r.applyComplete(ev)
	case stream.KindError:
		r.applyError(ev)
	case stream.KindStreamClosed:
		r.applyError(stream.Failure(errors.NewTransportError("stream ended without a terminal event", errors.ErrStreamClosed)))
	}
}

// applyPaused holds every stream event in arrival order until resume. The end
// of the stream is held too, so it lands after the events before it, but the
// status message says the stream is gone.
func (r *reducer) applyPaused(ev stream.Event) {
	switch ev.Kind {
	case stream.KindResume:
		r.applyResume(ev)
	case stream.KindPauseRequested, stream.KindPaused:
		// Confirmation of the pause already in effect.
	default:
		r.state.enqueue(ev)
		if ev.Kind == stream.KindStreamClosed || (ev.Kind == stream.KindError && ev.Origin == stream.OriginLocal) {
			r.state.StatusMessage = fmt.Sprintf("Paused; stream ended, resume to apply %d held events", len(r.state.queue))
		}
	}
}

// applyResume drains the pause queue through the reducer in arrival order.
func (r *reducer) applyResume(ev stream.Event) {
	queued := r.state.queue
	r.state.queue = nil
	r.state.Status = StatusRunning
	r.state.StatusMessage = messageOr(ev, "Resumed")

	for _, q := range queued {
		r.apply(q)
	}
}

func (r *reducer) applySessionCreated(ev stream.Event) {
	switch {
	case ev.SessionID == "":
		// Nothing to record.
	case r.state.SessionID == "":
		r.state.SessionID = ev.SessionID
	case r.state.SessionID != ev.SessionID:
		r.flag(AnomalySessionIDConflict, ev, "session %q already confirmed, ignoring %q", r.state.SessionID, ev.SessionID)
		return
	}
	r.state.StatusMessage = messageOr(ev, "Session created")
}

func (r *reducer) applyResponse(ev stream.Event) {
	iteration := ev.Iteration
	if iteration <= 0 {
		iteration = r.state.CurrentIteration
	}
	key := responseKey{provider: ev.Provider, iteration: iteration, kind: ev.Kind}

	if _, done := r.state.committed[key]; done {
		r.flag(AnomalyDuplicateResponse, ev, "%s already delivered %s for iteration %d", ev.Provider, ev.Kind, iteration)
		return
	}

	buffered := r.state.pending[key]
	if !ev.Done {
		buffered.content += ev.Content
		if ev.Model != "" {
			buffered.model = ev.Model
		}
		if ev.ResponseID != "" {
			buffered.id = ev.ResponseID
		}
		r.state.setPending(key, buffered)
		return
	}

	rec := ResponseRecord{
		ID:        firstNonEmpty(ev.ResponseID, buffered.id),
		Provider:  ev.Provider,
		Model:     firstNonEmpty(ev.Model, buffered.model),
		Content:   firstNonEmpty(ev.Content, buffered.content),
		Iteration: iteration,
		Kind:      ev.Kind,
		Tokens: stream.Tokens{
			Input:  max(ev.Tokens.Input, 0),
			Output: max(ev.Tokens.Output, 0),
		},
		Cost: max(ev.Cost, 0),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	r.state.dropPending(key)
	r.state.markCommitted(key)
	r.state.appendRecord(rec)

	if ev.Kind == stream.KindMerge {
		r.advanceIteration(ev, iteration)
		r.state.StatusMessage = messageOr(ev, fmt.Sprintf("%s merged iteration %d", ev.Provider, iteration))
		return
	}

	verb := "initial response"
	if ev.Kind == stream.KindFeedback {
		verb = "feedback"
	}
	r.state.StatusMessage = messageOr(ev, fmt.Sprintf("Received %s from %s", verb, ev.Provider))
}

// advanceIteration moves CurrentIteration forward to a merged iteration.
func (r *reducer) advanceIteration(ev stream.Event, iteration int) {
	if iteration < r.state.CurrentIteration {
		r.flag(AnomalyIterationRegression, ev, "merge for iteration %d after iteration %d", iteration, r.state.CurrentIteration)
		return
	}
	if r.state.TotalIterations > 0 && iteration > r.state.TotalIterations {
		r.flag(AnomalyIterationOutOfRange, ev, "merge for iteration %d of %d", iteration, r.state.TotalIterations)
		iteration = r.state.TotalIterations
	}
	r.state.CurrentIteration = max(r.state.CurrentIteration, iteration)
}

func (r *reducer) applyComplete(ev stream.Event) {
	if !r.state.hasMergeFrom(r.state.CurrentIteration) {
		r.flag(AnomalyCompleteWithoutMerge, ev, "no merged response for iteration %d", r.state.CurrentIteration)
	}
	r.discardPending(ev)
	r.state.Status = StatusCompleted
	r.state.StatusMessage = messageOr(ev, "Session complete")
}

func (r *reducer) applyError(ev stream.Event) {
	err := ev.Err
	if err == nil {
		err = errors.NewRemoteError(ev.Message, ev.ErrorCode)
	}
	r.discardPending(ev)
	r.state.Status = StatusError
	r.state.Err = err
	r.state.ErrorCode = ev.ErrorCode
	r.state.StatusMessage = messageOr(ev, err.Error())
}

// discardPending drops incomplete deliveries when the session ends.
func (r *reducer) discardPending(ev stream.Event) {
	if len(r.state.pending) == 0 {
		return
	}
	for k := range r.state.pending {
		r.flag(AnomalyIncompleteDiscarded, ev, "%s %s for iteration %d never completed", k.provider, k.kind, k.iteration)
	}
	r.state.pending = nil
}

func messageOr(ev stream.Event, fallback string) string {
	if ev.Message != "" {
		return ev.Message
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
