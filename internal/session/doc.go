// Package session runs council sessions against a live or recorded event
// stream.
//
// A Controller owns at most one session at a time. Start validates the
// configuration, publishes a running snapshot and opens the stream through a
// Transport in the background. Each decoded event is applied with
// council.Reduce on a single pipeline goroutine, and the resulting snapshot
// is published on the controller's event.Bus.
//
// # Lifecycle
//
//	idle --Start--> running --pause--> paused --resume--> running
//	running --complete--> completed
//	running --error, stall, transport failure--> error
//	any --Clear--> idle
//
// While paused, incoming events are queued and applied in order on resume.
// A running session that receives nothing for the inactivity window fails
// with a StallError. Clear aborts the stream; no snapshot from the cleared
// session is published after Clear returns.
//
// # Basic Usage
//
//	client, err := api.NewClient(baseURL)
//	if err != nil {
//		return err
//	}
//	ctrl := session.New(client, session.WithLogger(logger))
//	ctrl.Subscribe(func(s council.Snapshot) { render(s) })
//	if err := ctrl.Start(ctx, cfg); err != nil {
//		return err
//	}
//	final, err := ctrl.Wait(ctx)
//
// Recorded streams replay through FileTransport. They carry no start
// configuration, so they are started with Observe instead of Start:
//
//	ctrl := session.New(session.FileTransport{Path: path, Follow: true})
//	ctrl.Observe(ctx, iterations)
package session
