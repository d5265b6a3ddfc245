package stream

import (
	"encoding/json"

	"github.com/Iron-Ham/hivecouncil/internal/errors"
)

// Kind identifies a decoded event. The set is closed for the kinds the
// session reducer understands; any other value is carried through as-is.
type Kind string

// Remote event kinds, as named by the "type" field on the wire.
const (
	KindSessionCreated  Kind = "session_created"
	KindStatus          Kind = "status"
	KindInitialResponse Kind = "initial_response"
	KindFeedback        Kind = "feedback"
	KindMerge           Kind = "merge"
	KindComplete        Kind = "complete"
	KindError           Kind = "error"
	KindPauseRequested  Kind = "pause_requested"
	KindPaused          Kind = "paused"
	KindResume          Kind = "resume"
)

// Local kinds never appear on the wire; the controller synthesizes them.
const (
	KindClear        Kind = "clear"
	KindStreamClosed Kind = "stream_closed"
	KindAbort        Kind = "abort"
)

// Known reports whether the reducer acts on events of this kind.
func (k Kind) Known() bool {
	switch k {
	case KindSessionCreated, KindStatus, KindInitialResponse, KindFeedback, KindMerge,
		KindComplete, KindError, KindPauseRequested, KindPaused, KindResume,
		KindClear, KindStreamClosed, KindAbort:
		return true
	}
	return false
}

// LocalOnly reports whether the kind is one the controller synthesizes. A
// record on the wire that claims such a kind is not acted on.
func (k Kind) LocalOnly() bool {
	return k == KindClear || k == KindStreamClosed || k == KindAbort
}

// IsResponse reports whether the kind carries a participant response.
func (k Kind) IsResponse() bool {
	return k == KindInitialResponse || k == KindFeedback || k == KindMerge
}

// Origin says where an event came from.
type Origin int

const (
	// OriginRemote marks events decoded from the stream.
	OriginRemote Origin = iota
	// OriginLocal marks events synthesized by the controller.
	OriginLocal
)

func (o Origin) String() string {
	if o == OriginLocal {
		return "local"
	}
	return "remote"
}

// Tokens holds per-response token counts.
type Tokens struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
}

// Event is one decoded record. All fields except Kind are optional.
type Event struct {
	Kind       Kind
	SessionID  string
	Message    string
	Provider   string
	Model      string
	Content    string
	Iteration  int
	ResponseID string
	Tokens     Tokens
	Cost       float64
	// Done is the completion flag. A response event without a "done" field is
	// treated as complete.
	Done      bool
	ErrorCode string
	Origin    Origin

	// Err carries the typed failure behind a local error event.
	Err error

	// Raw holds the original JSON payload for remote events.
	Raw json.RawMessage
}

// Local returns an event of the given kind synthesized by the controller.
func Local(kind Kind) Event {
	return Event{Kind: kind, Done: true, Origin: OriginLocal}
}

// Failure returns a local error event carrying err.
func Failure(err error) Event {
	return Event{
		Kind:      KindError,
		Message:   err.Error(),
		ErrorCode: errors.Code(err),
		Done:      true,
		Origin:    OriginLocal,
		Err:       err,
	}
}

// Abort returns a local event that ends the session with err at once. Unlike
// Failure it is not held behind a pause; events still queued are dropped.
func Abort(err error) Event {
	ev := Failure(err)
	ev.Kind = KindAbort
	return ev
}

// wireEvent is the JSON shape on the wire. Both the nested "tokens" object and
// the flat input_tokens/output_tokens/estimated_cost fields are accepted.
type wireEvent struct {
	Type          string   `json:"type"`
	SessionID     string   `json:"session_id"`
	Message       string   `json:"message"`
	Provider      string   `json:"provider"`
	Model         string   `json:"model"`
	Content       string   `json:"content"`
	Iteration     int      `json:"iteration"`
	ResponseID    string   `json:"response_id"`
	Tokens        *Tokens  `json:"tokens"`
	InputTokens   int64    `json:"input_tokens"`
	OutputTokens  int64    `json:"output_tokens"`
	Cost          *float64 `json:"cost"`
	EstimatedCost float64  `json:"estimated_cost"`
	Done          *bool    `json:"done"`
	Error         string   `json:"error"`
	ErrorCode     string   `json:"error_code"`
}

func (w wireEvent) toEvent(raw []byte) Event {
	ev := Event{
		Kind:       Kind(w.Type),
		SessionID:  w.SessionID,
		Message:    w.Message,
		Provider:   w.Provider,
		Model:      w.Model,
		Content:    w.Content,
		Iteration:  w.Iteration,
		ResponseID: w.ResponseID,
		ErrorCode:  w.ErrorCode,
		Done:       w.Done == nil || *w.Done,
		Origin:     OriginRemote,
		Raw:        append(json.RawMessage(nil), raw...),
	}

	if w.Tokens != nil {
		ev.Tokens = *w.Tokens
	} else {
		ev.Tokens = Tokens{Input: w.InputTokens, Output: w.OutputTokens}
	}

	if w.Cost != nil {
		ev.Cost = *w.Cost
	} else {
		ev.Cost = w.EstimatedCost
	}

	if ev.Message == "" && w.Error != "" {
		ev.Message = w.Error
	}

	return ev
}
