package session

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/Iron-Ham/hivecouncil/internal/event"
	"github.com/Iron-Ham/hivecouncil/internal/logging"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// Controller runs one council session at a time. A single pipeline goroutine
// per session owns the state: it reads the stream, applies each event through
// council.Reduce and publishes the resulting snapshot. Every other method
// either sends a command to that goroutine or reads the last published
// snapshot.
//
// Snapshot observers run synchronously on the pipeline goroutine. They must
// not call Start, Clear or Close directly; hand those off to another
// goroutine.
type Controller struct {
	transport Transport
	cfg       config
	logger    *logging.Logger
	bus       *event.Bus

	mu  sync.Mutex // guards run
	run *pipeline

	// pubMu orders publication against Start and Clear. A pipeline publishes
	// only while gen still matches its own generation.
	pubMu   sync.Mutex
	gen     atomic.Uint64
	current atomic.Pointer[council.Snapshot]

	anomalies atomic.Int64
	skipped   atomic.Int64
}

// pipeline is the state of one started session.
type pipeline struct {
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan stream.Event
	done   chan struct{}

	// Written by the pipeline goroutine before done is closed.
	final council.Snapshot
	err   error
}

// item is one unit handed from the reader goroutine to the pipeline.
type item struct {
	ev   stream.Event
	skip *errors.ProtocolError
}

// Diagnostics reports counters that never reach the session state.
type Diagnostics struct {
	Anomalies      int64
	SkippedRecords int64
	QueuedEvents   int
}

// New creates a Controller that opens streams through transport.
func New(transport Transport, opts ...Option) *Controller {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	bus := cfg.bus
	if bus == nil {
		bus = event.NewBus(event.WithLogger(logger))
	}

	c := &Controller{
		transport: transport,
		cfg:       cfg,
		logger:    logger.WithComponent("controller"),
		bus:       bus,
	}
	idle := council.IdleState().Snapshot()
	c.current.Store(&idle)
	return c
}

// Bus returns the bus snapshots and diagnostics are published on.
func (c *Controller) Bus() *event.Bus {
	return c.bus
}

// Start validates cfg, resets to a fresh running session and launches the
// pipeline. It returns once the running snapshot has been published; the
// stream is opened in the background. A session already in progress is
// canceled. Canceling ctx aborts the session.
func (c *Controller) Start(ctx context.Context, cfg council.Config) error {
	if err := cfg.Validate(c.cfg.limits); err != nil {
		return err
	}
	c.launch(ctx, cfg)
	return nil
}

// Observe starts a session whose configuration lives elsewhere, such as a
// recorded stream. Nothing is validated; iterations only seeds the iteration
// total and is raised to at least one.
func (c *Controller) Observe(ctx context.Context, iterations int) {
	c.launch(ctx, council.Config{Iterations: max(iterations, 1)})
}

func (c *Controller) launch(ctx context.Context, cfg council.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.run
	state := council.NewState(cfg)

	c.pubMu.Lock()
	gen := c.gen.Add(1)
	snap := state.Snapshot()
	c.current.Store(&snap)
	c.bus.Publish(event.NewSessionStartedEvent(gen, cfg))
	c.bus.Publish(event.NewSnapshotEvent(snap))
	c.pubMu.Unlock()

	pctx, cancel := context.WithCancel(ctx)
	p := &pipeline{
		gen:    gen,
		ctx:    pctx,
		cancel: cancel,
		cmds:   make(chan stream.Event, commandBuffer),
		done:   make(chan struct{}),
	}
	c.run = p
	if old != nil {
		old.cancel()
	}

	c.logger.Info("session started",
		"generation", gen,
		"iterations", cfg.Iterations,
		"members", len(cfg.Members))

	go c.runPipeline(p, state, cfg)
}

// Pause asks the pipeline to hold incoming events. It is a no-op unless the
// session is running. When the transport supports it and the session id is
// known, the remote service is notified in the background.
func (c *Controller) Pause() {
	if c.Snapshot().Status != council.StatusRunning {
		return
	}
	if c.send(stream.Local(stream.KindPauseRequested)) {
		c.notifyRemote("pause", func(rc RemoteControl, ctx context.Context, id string) error {
			return rc.PauseSession(ctx, id)
		})
	}
}

// Resume applies the held events in arrival order. It is a no-op unless the
// session is paused.
func (c *Controller) Resume() {
	if c.Snapshot().Status != council.StatusPaused {
		return
	}
	if c.send(stream.Local(stream.KindResume)) {
		c.notifyRemote("resume", func(rc RemoteControl, ctx context.Context, id string) error {
			return rc.ResumeSession(ctx, id)
		})
	}
}

// Clear resets to the idle baseline and aborts the open stream. The idle
// snapshot is the last one published for the cleared session; nothing from
// it is published after Clear returns.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pubMu.Lock()
	c.gen.Add(1)
	idle, _ := council.Reduce(council.IdleState(), stream.Local(stream.KindClear))
	snap := idle.Snapshot()
	c.current.Store(&snap)
	c.bus.Publish(event.NewSnapshotEvent(snap))
	c.pubMu.Unlock()

	if c.run != nil {
		c.run.cancel()
		c.logger.Info("session cleared", "generation", c.run.gen)
	}
}

// Snapshot returns the last published snapshot.
func (c *Controller) Snapshot() council.Snapshot {
	return *c.current.Load()
}

// Subscribe registers fn to receive a snapshot after every transition.
// Returns an id for Unsubscribe.
func (c *Controller) Subscribe(fn func(council.Snapshot)) string {
	return c.bus.Subscribe(event.TypeSnapshot, func(e event.Event) {
		if se, ok := e.(event.SnapshotEvent); ok {
			fn(se.Snapshot)
		}
	})
}

// SubscribeAnomalies registers fn to receive every consistency anomaly.
func (c *Controller) SubscribeAnomalies(fn func(*errors.ConsistencyAnomaly)) string {
	return c.bus.Subscribe(event.TypeAnomaly, func(e event.Event) {
		if ae, ok := e.(event.AnomalyEvent); ok {
			fn(ae.Anomaly)
		}
	})
}

// Unsubscribe removes a subscription.
func (c *Controller) Unsubscribe(id string) bool {
	return c.bus.Unsubscribe(id)
}

// Wait blocks until the current session's pipeline stops and returns its
// final snapshot. The error is nil when the session completed, the typed
// failure when it ended in error and errors.ErrCanceled when it was cleared
// or replaced. Without a started session Wait returns immediately.
func (c *Controller) Wait(ctx context.Context) (council.Snapshot, error) {
	c.mu.Lock()
	p := c.run
	c.mu.Unlock()

	if p == nil {
		return c.Snapshot(), nil
	}

	select {
	case <-p.done:
		return p.final, p.err
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

// Diagnostics returns anomaly and skipped-record counts across all sessions.
func (c *Controller) Diagnostics() Diagnostics {
	return Diagnostics{
		Anomalies:      c.anomalies.Load(),
		SkippedRecords: c.skipped.Load(),
		QueuedEvents:   c.Snapshot().QueuedEvents,
	}
}

// Close clears the controller and waits for the pipeline to exit.
func (c *Controller) Close() {
	c.Clear()

	c.mu.Lock()
	p := c.run
	c.mu.Unlock()
	if p != nil {
		<-p.done
	}
}

// send hands a command to the running pipeline.
func (c *Controller) send(ev stream.Event) bool {
	c.mu.Lock()
	p := c.run
	c.mu.Unlock()
	if p == nil {
		return false
	}

	select {
	case p.cmds <- ev:
		return true
	case <-p.done:
		return false
	}
}

func (c *Controller) notifyRemote(action string, call func(RemoteControl, context.Context, string) error) {
	rc, ok := c.transport.(RemoteControl)
	if !ok {
		return
	}
	id := c.Snapshot().SessionID
	if id == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteControlTimeout)
		defer cancel()
		if err := call(rc, ctx, id); err != nil {
			c.logger.WithSession(id).Warn("remote "+action+" failed", "error", err)
		}
	}()
}

// runPipeline is the single writer of a session's state.
func (c *Controller) runPipeline(p *pipeline, state council.State, cfg council.Config) {
	defer close(p.done)
	defer p.cancel()

	body, err := c.transport.Open(p.ctx, cfg)
	if err != nil {
		if p.ctx.Err() != nil {
			c.abort(p, state)
			return
		}
		var transportErr *errors.TransportError
		if !errors.As(err, &transportErr) {
			err = errors.NewTransportError("failed to open stream", err)
		}
		state = c.apply(p, state, stream.Failure(err))
		c.finish(p, state)
		return
	}
	defer body.Close()

	items := make(chan item)
	go c.read(p, body, items)

	timeout := c.cfg.inactivityTimeout
	lastActivity := time.Now()
	var (
		timer *time.Timer
		stall <-chan time.Time
	)
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		stall = timer.C
	}

	for !state.Status.Terminal() {
		select {
		case <-p.ctx.Done():
			c.abort(p, state)
			return

		case ev := <-p.cmds:
			if ev.Kind == stream.KindResume {
				lastActivity = time.Now()
			}
			state = c.apply(p, state, ev)

		case it, ok := <-items:
			if !ok {
				items = nil
				continue
			}
			if it.skip != nil {
				c.recordSkip(p, it.skip)
				continue
			}
			lastActivity = time.Now()
			state = c.apply(p, state, it.ev)

		case <-stall:
			idle := time.Since(lastActivity)
			if state.Status == council.StatusRunning && idle >= timeout {
				state = c.apply(p, state, stream.Failure(errors.NewStallError(idle)))
				continue
			}
			wait := timeout - idle
			if state.Status != council.StatusRunning || wait <= 0 {
				wait = timeout
			}
			timer.Reset(wait)
		}
	}

	c.finish(p, state)
}

// read decodes the body and forwards events until the stream ends or the
// pipeline stops.
func (c *Controller) read(p *pipeline, body io.Reader, items chan<- item) {
	defer close(items)

	send := func(it item) bool {
		select {
		case items <- it:
			return true
		case <-p.ctx.Done():
			return false
		}
	}

	dec := stream.NewDecoder(body,
		stream.WithMaxRecordBytes(c.cfg.maxRecordBytes),
		stream.WithSkipFunc(func(err error) {
			var pe *errors.ProtocolError
			if errors.As(err, &pe) {
				send(item{skip: pe})
			}
		}))

	for {
		ev, err := dec.Next()
		switch {
		case err == nil:
			if !send(item{ev: ev}) {
				return
			}
		case err == io.EOF:
			send(item{ev: stream.Local(stream.KindStreamClosed)})
			return
		default:
			send(item{ev: stream.Failure(err)})
			return
		}
	}
}

// apply runs one event through the reducer, logs what it exposed and
// publishes the result.
func (c *Controller) apply(p *pipeline, state council.State, ev stream.Event) council.State {
	next, anomalies := council.Reduce(state, ev)

	log := c.logger
	if next.SessionID != "" {
		log = log.WithSession(next.SessionID)
	}
	if next.CurrentIteration > 0 {
		log = log.WithIteration(next.CurrentIteration)
	}

	for _, a := range anomalies {
		c.anomalies.Add(1)
		log.Warn("consistency anomaly",
			"anomaly", a.Kind,
			"event_type", a.EventType,
			"detail", a.Message())
	}

	if next.Status != state.Status {
		switch next.Status {
		case council.StatusError:
			log.Error("session failed", "error", next.Err, "error_code", next.ErrorCode)
		case council.StatusCompleted:
			log.Info("session completed",
				"responses", len(next.Responses),
				"merged", len(next.MergedResponses),
				"total_cost", next.Ledger.TotalCost)
		default:
			log.Info("session status changed", "from", state.Status, "to", next.Status)
		}
	}

	c.publish(p, next, anomalies)
	return next
}

// publish stores and broadcasts a snapshot unless the session was replaced.
func (c *Controller) publish(p *pipeline, state council.State, anomalies []*errors.ConsistencyAnomaly) bool {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	if c.gen.Load() != p.gen {
		return false
	}

	snap := state.Snapshot()
	c.current.Store(&snap)
	for _, a := range anomalies {
		c.bus.Publish(event.NewAnomalyEvent(snap.SessionID, a))
	}
	c.bus.Publish(event.NewSnapshotEvent(snap))
	return true
}

func (c *Controller) recordSkip(p *pipeline, pe *errors.ProtocolError) {
	c.skipped.Add(1)

	reason := "unknown"
	if cause := pe.Unwrap(); cause != nil {
		reason = cause.Error()
	}
	c.logger.Warn("skipped malformed record", "line", pe.Line, "reason", reason, "record", pe.Record)

	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.gen.Load() == p.gen {
		c.bus.Publish(event.NewRecordSkippedEvent(pe))
	}
}

// abort ends a pipeline whose context was canceled. A session that is still
// current (its caller's context ended) is moved to the error state; one that
// was cleared or replaced ends silently.
func (c *Controller) abort(p *pipeline, state council.State) {
	if c.gen.Load() != p.gen {
		p.final = state.Snapshot()
		p.err = errors.ErrCanceled
		return
	}

	cause := errors.Wrap(errors.ErrCanceled, context.Cause(p.ctx).Error())
	state = c.apply(p, state, stream.Abort(cause))
	c.finish(p, state)
}

// finish records the outcome for Wait and announces the end.
func (c *Controller) finish(p *pipeline, state council.State) {
	p.final = state.Snapshot()
	if state.Status == council.StatusError {
		p.err = state.Err
	}

	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if c.gen.Load() == p.gen {
		c.bus.Publish(event.NewSessionEndedEvent(p.final, p.err))
	}
}
