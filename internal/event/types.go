package event

import (
	"time"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/errors"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "session.snapshot").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeSessionStarted = "session.started"
	TypeSnapshot       = "session.snapshot"
	TypeAnomaly        = "session.anomaly"
	TypeSessionEnded   = "session.ended"
	TypeRecordSkipped  = "stream.record_skipped"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// SessionStartedEvent is emitted when Start accepts a configuration.
type SessionStartedEvent struct {
	baseEvent
	Generation      uint64
	TotalIterations int
	Members         int
}

// NewSessionStartedEvent creates a SessionStartedEvent.
func NewSessionStartedEvent(generation uint64, cfg council.Config) SessionStartedEvent {
	return SessionStartedEvent{
		baseEvent:       newBaseEvent(TypeSessionStarted),
		Generation:      generation,
		TotalIterations: cfg.Iterations,
		Members:         len(cfg.Members),
	}
}

// SnapshotEvent carries the session state after one reducer transition.
type SnapshotEvent struct {
	baseEvent
	Snapshot council.Snapshot
}

// NewSnapshotEvent creates a SnapshotEvent.
func NewSnapshotEvent(snap council.Snapshot) SnapshotEvent {
	return SnapshotEvent{
		baseEvent: newBaseEvent(TypeSnapshot),
		Snapshot:  snap,
	}
}

// AnomalyEvent reports a consistency anomaly found while applying an event.
type AnomalyEvent struct {
	baseEvent
	SessionID string
	Anomaly   *errors.ConsistencyAnomaly
}

// NewAnomalyEvent creates an AnomalyEvent.
func NewAnomalyEvent(sessionID string, anomaly *errors.ConsistencyAnomaly) AnomalyEvent {
	return AnomalyEvent{
		baseEvent: newBaseEvent(TypeAnomaly),
		SessionID: sessionID,
		Anomaly:   anomaly,
	}
}

// RecordSkippedEvent reports a stream record dropped by the decoder.
type RecordSkippedEvent struct {
	baseEvent
	Err *errors.ProtocolError
}

// NewRecordSkippedEvent creates a RecordSkippedEvent.
func NewRecordSkippedEvent(err *errors.ProtocolError) RecordSkippedEvent {
	return RecordSkippedEvent{
		baseEvent: newBaseEvent(TypeRecordSkipped),
		Err:       err,
	}
}

// SessionEndedEvent is emitted when the pipeline of a current session stops
// in a terminal state. Cleared or replaced sessions end silently.
type SessionEndedEvent struct {
	baseEvent
	Snapshot council.Snapshot
	Err      error // nil when the session completed
}

// NewSessionEndedEvent creates a SessionEndedEvent.
func NewSessionEndedEvent(snap council.Snapshot, err error) SessionEndedEvent {
	return SessionEndedEvent{
		baseEvent: newBaseEvent(TypeSessionEnded),
		Snapshot:  snap,
		Err:       err,
	}
}
