// Package council holds the council session domain: member and session
// configuration, the response records a session accumulates, and the session
// reducer that turns decoded stream events into state.
//
// # State Machine
//
//	idle -> running <-> paused -> completed | error
//
// [Reduce] is a pure transition function. It never blocks and never fails;
// protocol oddities come back as anomalies for the caller to log. Partial
// response deliveries are held in a buffer keyed by provider, iteration and
// kind until the delivery marked done arrives. While paused, events are held
// in a FIFO queue and applied in order on resume.
//
// # Basic Usage
//
//	state := council.NewState(cfg)
//	for _, ev := range events {
//	    var anomalies []*errors.ConsistencyAnomaly
//	    state, anomalies = council.Reduce(state, ev)
//	    // log anomalies
//	}
//	snap := state.Snapshot()
package council
