// Package event provides a pub-sub event bus that decouples the session
// controller from the views observing it.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Session:
//   - [SessionStartedEvent]: Start accepted a configuration
//   - [SnapshotEvent]: State after one reducer transition
//   - [AnomalyEvent]: A consistency anomaly was observed
//   - [SessionEndedEvent]: The pipeline stopped
//
// Stream:
//   - [RecordSkippedEvent]: The decoder dropped a malformed record
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine and protected against panics:
// a panicking handler will not prevent other handlers from being called.
//
// # Basic Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//
//	bus.Subscribe(event.TypeSnapshot, func(e event.Event) {
//	    snap := e.(event.SnapshotEvent).Snapshot
//	    fmt.Println(snap.StatusMessage)
//	})
//
//	id := bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//	bus.Unsubscribe(id)
package event
