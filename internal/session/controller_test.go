package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/Iron-Ham/hivecouncil/internal/event"
	"github.com/Iron-Ham/hivecouncil/internal/logging"
	"github.com/Iron-Ham/hivecouncil/internal/testutil"
)

const waitTimeout = 2 * time.Second

func testConfig() council.Config {
	return council.Config{
		Prompt:     "Should we rewrite the billing service?",
		Iterations: 1,
		Members: []council.Member{
			{Provider: "openai", Model: "gpt-4o"},
			{Provider: "anthropic", Model: "claude-sonnet", IsChair: true},
		},
	}
}

// staticTransport serves a fixed stream body.
func staticTransport(body string) Transport {
	return TransportFunc(func(context.Context, council.Config) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	})
}

// pipeTransport serves a PipeStream and records remote control calls.
type pipeTransport struct {
	stream *testutil.PipeStream

	mu    sync.Mutex
	calls []string
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{stream: testutil.NewPipeStream()}
}

func (p *pipeTransport) Open(context.Context, council.Config) (io.ReadCloser, error) {
	return p.stream, nil
}

func (p *pipeTransport) PauseSession(_ context.Context, id string) error {
	p.record("pause " + id)
	return nil
}

func (p *pipeTransport) ResumeSession(_ context.Context, id string) error {
	p.record("resume " + id)
	return nil
}

func (p *pipeTransport) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *pipeTransport) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []council.Snapshot
}

func (r *recorder) add(s council.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []council.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]council.Snapshot(nil), r.snaps...)
}

func wait(t *testing.T, c *Controller) (council.Snapshot, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	snap, err := c.Wait(ctx)
	if ctx.Err() != nil {
		t.Fatalf("Wait() did not return within %v", waitTimeout)
	}
	return snap, err
}

func start(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Start(context.Background(), testConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestController_CompletesSession(t *testing.T) {
	body := testutil.NewStream().
		Event("session_created", "session_id", "S1").
		Event("initial_response", "provider", "openai", "content", "Yes", "iteration", 1,
			"tokens", map[string]int{"input": 100, "output": 50}, "cost", 0.002).
		Event("initial_response", "provider", "anthropic", "content", "No", "iteration", 1,
			"tokens", map[string]int{"input": 80, "output": 40}, "cost", 0.001).
		Event("merge", "provider", "anthropic", "content", "Maybe", "iteration", 1).
		Event("complete").
		String()

	c := New(staticTransport(body))
	rec := &recorder{}
	c.Subscribe(rec.add)

	ended := make(chan event.SessionEndedEvent, 1)
	c.Bus().Subscribe(event.TypeSessionEnded, func(e event.Event) {
		ended <- e.(event.SessionEndedEvent)
	})

	start(t, c)
	final, err := wait(t, c)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if final.Status != council.StatusCompleted {
		t.Errorf("Status = %v, want completed", final.Status)
	}
	if final.SessionID != "S1" {
		t.Errorf("SessionID = %q, want S1", final.SessionID)
	}
	if len(final.Responses) != 2 || len(final.MergedResponses) != 1 {
		t.Errorf("got %d responses and %d merges, want 2 and 1", len(final.Responses), len(final.MergedResponses))
	}
	if final.TotalTokens.Input != 180 || final.TotalTokens.Output != 90 {
		t.Errorf("TotalTokens = %+v, want 180/90", final.TotalTokens)
	}
	if got := c.Snapshot(); got.Status != council.StatusCompleted {
		t.Errorf("Snapshot().Status = %v, want completed", got.Status)
	}

	snaps := rec.all()
	if len(snaps) < 2 || snaps[0].Status != council.StatusRunning {
		t.Fatalf("first published snapshot should be running, got %d snapshots", len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if len(snaps[i].Responses) < len(snaps[i-1].Responses) {
			t.Errorf("snapshot %d lost responses", i)
		}
	}

	select {
	case e := <-ended:
		if e.Err != nil || e.Snapshot.Status != council.StatusCompleted {
			t.Errorf("SessionEndedEvent = %+v", e)
		}
	case <-time.After(waitTimeout):
		t.Error("no SessionEndedEvent published")
	}
}

func TestController_PauseQueuesUntilResume(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)
	start(t, c)

	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "session id")

	c.Pause()
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().Status == council.StatusPaused }, "paused")

	tr.stream.Write(testutil.NewStream().
		Event("initial_response", "provider", "openai", "content", "Yes", "iteration", 1).
		Event("status", "message", "thinking").
		String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().QueuedEvents == 2 }, "two queued events")

	if got := c.Snapshot(); len(got.Responses) != 0 || got.StatusMessage == "thinking" {
		t.Fatalf("paused snapshot applied queued events: %+v", got)
	}
	if d := c.Diagnostics(); d.QueuedEvents != 2 {
		t.Errorf("Diagnostics().QueuedEvents = %d, want 2", d.QueuedEvents)
	}

	c.Resume()
	testutil.Eventually(t, waitTimeout, func() bool {
		s := c.Snapshot()
		return s.Status == council.StatusRunning && len(s.Responses) == 1
	}, "queued events applied on resume")
	if got := c.Snapshot(); got.StatusMessage != "thinking" || got.QueuedEvents != 0 {
		t.Errorf("after resume: message %q, queued %d", got.StatusMessage, got.QueuedEvents)
	}

	tr.stream.Write(testutil.NewStream().
		Event("merge", "provider", "anthropic", "content", "Merged", "iteration", 1).
		Event("complete").
		String())

	final, err := wait(t, c)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if final.Status != council.StatusCompleted {
		t.Errorf("Status = %v, want completed", final.Status)
	}

	testutil.Eventually(t, waitTimeout, func() bool { return len(tr.Calls()) == 2 }, "remote control calls")
	calls := tr.Calls()
	if calls[0] != "pause S1" || calls[1] != "resume S1" {
		t.Errorf("remote calls = %v", calls)
	}
	testutil.Eventually(t, waitTimeout, tr.stream.Closed, "body closed")
}

func TestController_PauseResumeNoops(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)

	c.Pause()
	c.Resume()
	if got := c.Snapshot().Status; got != council.StatusIdle {
		t.Fatalf("Status = %v, want idle", got)
	}

	start(t, c)
	c.Resume()
	time.Sleep(20 * time.Millisecond)
	if got := c.Snapshot().Status; got != council.StatusRunning {
		t.Errorf("Resume while running changed status to %v", got)
	}
	if calls := tr.Calls(); len(calls) != 0 {
		t.Errorf("unexpected remote calls %v", calls)
	}

	// Without a confirmed session id there is nobody to notify.
	c.Pause()
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().Status == council.StatusPaused }, "paused")
	time.Sleep(20 * time.Millisecond)
	if calls := tr.Calls(); len(calls) != 0 {
		t.Errorf("unexpected remote calls %v", calls)
	}

	c.Close()
}

func TestController_SkipsMalformedRecords(t *testing.T) {
	body := testutil.NewStream().
		Event("session_created", "session_id", "S1").
		Data(`{"type": "status", "message":`).
		Event("status", "message", "thinking").
		Data(`{"message": "no type"}`).
		Event("merge", "provider", "anthropic", "content", "Merged", "iteration", 1).
		Event("complete").
		String()

	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, "debug")
	c := New(staticTransport(body), WithLogger(logger))

	rec := &recorder{}
	c.Subscribe(rec.add)
	var skipped []*errors.ProtocolError
	var mu sync.Mutex
	c.Bus().Subscribe(event.TypeRecordSkipped, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		skipped = append(skipped, e.(event.RecordSkippedEvent).Err)
	})

	start(t, c)
	if _, err := wait(t, c); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(skipped) != 2 {
		t.Fatalf("skipped %d records, want 2", len(skipped))
	}
	if !errors.Is(skipped[0], errors.ErrMalformedRecord) || !errors.Is(skipped[1], errors.ErrMissingType) {
		t.Errorf("skip causes = %v, %v", skipped[0], skipped[1])
	}
	if d := c.Diagnostics(); d.SkippedRecords != 2 {
		t.Errorf("Diagnostics().SkippedRecords = %d, want 2", d.SkippedRecords)
	}

	sawStatus := false
	for _, s := range rec.all() {
		if s.StatusMessage == "thinking" {
			sawStatus = true
		}
	}
	if !sawStatus {
		t.Error("status event after a malformed record was not applied")
	}
	if !strings.Contains(buf.String(), "skipped malformed record") {
		t.Error("skip was not logged")
	}
}

func TestController_Anomalies(t *testing.T) {
	body := testutil.NewStream().
		Event("session_created", "session_id", "S1").
		Event("initial_response", "provider", "openai", "content", "Yes", "iteration", 1).
		Event("initial_response", "provider", "openai", "content", "Yes again", "iteration", 1).
		Event("merge", "provider", "anthropic", "content", "Merged", "iteration", 1).
		Event("complete").
		String()

	c := New(staticTransport(body))
	var kinds []string
	var mu sync.Mutex
	c.SubscribeAnomalies(func(a *errors.ConsistencyAnomaly) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, a.Kind)
	})

	start(t, c)
	final, err := wait(t, c)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(final.Responses) != 1 {
		t.Errorf("Responses = %d, want 1", len(final.Responses))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 1 || kinds[0] != council.AnomalyDuplicateResponse {
		t.Errorf("anomalies = %v, want [%s]", kinds, council.AnomalyDuplicateResponse)
	}
	if d := c.Diagnostics(); d.Anomalies != 1 {
		t.Errorf("Diagnostics().Anomalies = %d, want 1", d.Anomalies)
	}
}

func TestController_Stall(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr, WithInactivityTimeout(50*time.Millisecond))
	start(t, c)

	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())

	final, err := wait(t, c)
	var stall *errors.StallError
	if !errors.As(err, &stall) {
		t.Fatalf("Wait() error = %v, want StallError", err)
	}
	if stall.Idle < 50*time.Millisecond {
		t.Errorf("Idle = %v, want at least 50ms", stall.Idle)
	}
	if final.Status != council.StatusError || final.ErrorCode != "stalled" {
		t.Errorf("final = %v/%q, want error/stalled", final.Status, final.ErrorCode)
	}
	testutil.Eventually(t, waitTimeout, tr.stream.Closed, "body closed after stall")
}

func TestController_StallSuspendedWhilePaused(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr, WithInactivityTimeout(100*time.Millisecond))
	start(t, c)

	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "session id")
	c.Pause()
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().Status == council.StatusPaused }, "paused")

	time.Sleep(300 * time.Millisecond)
	if got := c.Snapshot().Status; got != council.StatusPaused {
		t.Fatalf("Status = %v while paused, want paused", got)
	}

	c.Resume()
	_, err := wait(t, c)
	if !errors.Is(err, errors.ErrStalled) {
		t.Errorf("Wait() error = %v, want stall after resume", err)
	}
}

func TestController_StallDisabled(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr, WithInactivityTimeout(0))
	start(t, c)

	time.Sleep(100 * time.Millisecond)
	if got := c.Snapshot().Status; got != council.StatusRunning {
		t.Errorf("Status = %v, want running", got)
	}
	c.Close()
}

func TestController_ClearStopsPublication(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)
	rec := &recorder{}
	c.Subscribe(rec.add)

	start(t, c)
	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "session id")

	c.Clear()
	published := len(rec.all())
	if got := c.Snapshot(); got.Status != council.StatusIdle || got.SessionID != "" {
		t.Fatalf("Snapshot() after Clear = %+v, want idle", got)
	}

	go tr.stream.Write(testutil.NewStream().
		Event("initial_response", "provider", "openai", "content", "late", "iteration", 1).
		Event("complete").
		String())

	_, err := wait(t, c)
	if !errors.Is(err, errors.ErrCanceled) {
		t.Errorf("Wait() error = %v, want ErrCanceled", err)
	}
	testutil.Eventually(t, waitTimeout, tr.stream.Closed, "body closed after Clear")

	snaps := rec.all()
	if len(snaps) != published {
		t.Errorf("%d snapshots published after Clear", len(snaps)-published)
	}
	if last := snaps[len(snaps)-1]; last.Status != council.StatusIdle {
		t.Errorf("last published status = %v, want idle", last.Status)
	}
	if got := c.Snapshot(); got.Status != council.StatusIdle {
		t.Errorf("Snapshot() = %v, want idle", got.Status)
	}
}

func TestController_StartReplacesSession(t *testing.T) {
	first := testutil.NewPipeStream()
	second := testutil.NewStream().
		Event("session_created", "session_id", "S2").
		Event("merge", "provider", "anthropic", "content", "Merged", "iteration", 1).
		Event("complete").
		String()

	var mu sync.Mutex
	opens := 0
	c := New(TransportFunc(func(context.Context, council.Config) (io.ReadCloser, error) {
		mu.Lock()
		defer mu.Unlock()
		opens++
		if opens == 1 {
			return first, nil
		}
		return io.NopCloser(strings.NewReader(second)), nil
	}))

	start(t, c)
	first.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "first session id")

	start(t, c)
	final, err := wait(t, c)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if final.SessionID != "S2" || final.Status != council.StatusCompleted {
		t.Errorf("final = %s/%v, want S2/completed", final.SessionID, final.Status)
	}
	testutil.Eventually(t, waitTimeout, first.Closed, "first body closed")
}

func TestController_StartRejectsInvalidConfig(t *testing.T) {
	c := New(staticTransport(""))

	cfg := testConfig()
	cfg.Prompt = "  "
	cfg.Iterations = 0

	err := c.Start(context.Background(), cfg)
	var invalid *errors.InvalidConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("Start() error = %v, want InvalidConfigurationError", err)
	}
	if len(invalid.Problems) != 2 {
		t.Errorf("Problems = %v, want 2", invalid.Problems)
	}

	snap, err := c.Wait(context.Background())
	if err != nil || snap.Status != council.StatusIdle {
		t.Errorf("Wait() = %v, %v; want idle, nil", snap.Status, err)
	}
}

func TestController_OpenFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"plain error is wrapped", errors.New("connection refused"), 0},
		{"transport error kept", errors.NewTransportError("start rejected", nil).WithStatusCode(503), 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(TransportFunc(func(context.Context, council.Config) (io.ReadCloser, error) {
				return nil, tt.err
			}))
			start(t, c)

			final, err := wait(t, c)
			var transport *errors.TransportError
			if !errors.As(err, &transport) {
				t.Fatalf("Wait() error = %v, want TransportError", err)
			}
			if transport.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", transport.StatusCode, tt.wantStatus)
			}
			if final.Status != council.StatusError || final.ErrorCode != "transport" {
				t.Errorf("final = %v/%q, want error/transport", final.Status, final.ErrorCode)
			}
			if final.Error == "" {
				t.Error("final snapshot has no error message")
			}
		})
	}
}

func TestController_StreamEndsWithoutTerminal(t *testing.T) {
	body := testutil.NewStream().
		Event("session_created", "session_id", "S1").
		Event("initial_response", "provider", "openai", "content", "Yes", "iteration", 1).
		String()

	c := New(staticTransport(body))
	start(t, c)

	final, err := wait(t, c)
	var transport *errors.TransportError
	if !errors.As(err, &transport) || !errors.Is(err, errors.ErrStreamClosed) {
		t.Fatalf("Wait() error = %v, want TransportError wrapping ErrStreamClosed", err)
	}
	if len(final.Responses) != 1 {
		t.Errorf("Responses = %d, want the one delivered before the drop", len(final.Responses))
	}
}

func TestController_RecordTooLarge(t *testing.T) {
	body := testutil.NewStream().
		Event("session_created", "session_id", "S1").
		Event("initial_response", "provider", "openai", "content", strings.Repeat("x", 4096), "iteration", 1).
		String()

	c := New(staticTransport(body), WithMaxRecordBytes(1024))
	start(t, c)

	final, err := wait(t, c)
	if !errors.Is(err, errors.ErrRecordTooLarge) {
		t.Fatalf("Wait() error = %v, want ErrRecordTooLarge", err)
	}
	if final.ErrorCode != "protocol" {
		t.Errorf("ErrorCode = %q, want protocol", final.ErrorCode)
	}
}

func TestController_ContextCanceled(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Start(ctx, testConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	final, err := wait(t, c)
	if !errors.Is(err, errors.ErrCanceled) {
		t.Fatalf("Wait() error = %v, want ErrCanceled", err)
	}
	if final.Status != council.StatusError || final.ErrorCode != "canceled" {
		t.Errorf("final = %v/%q, want error/canceled", final.Status, final.ErrorCode)
	}
	if got := c.Snapshot(); got.Status != council.StatusError {
		t.Errorf("Snapshot().Status = %v, want error", got.Status)
	}
}

func TestController_SharedBus(t *testing.T) {
	bus := event.NewBus()
	var started []uint64
	var mu sync.Mutex
	bus.Subscribe(event.TypeSessionStarted, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		started = append(started, e.(event.SessionStartedEvent).Generation)
	})

	c := New(staticTransport(testutil.NewStream().Event("complete").String()), WithBus(bus))
	if c.Bus() != bus {
		t.Fatal("Bus() did not return the supplied bus")
	}
	start(t, c)
	_, _ = wait(t, c)
	start(t, c)
	_, _ = wait(t, c)

	mu.Lock()
	defer mu.Unlock()
	if len(started) != 2 || started[1] <= started[0] {
		t.Errorf("generations = %v, want two increasing values", started)
	}
}

func TestController_ObserveReplaysFile(t *testing.T) {
	path := testutil.WriteFile(t, "session.sse", testutil.NewStream().
		Event("session_created", "session_id", "S9").
		Event("initial_response", "provider", "openai", "content", "Recorded", "iteration", 1).
		Event("merge", "provider", "openai", "content", "Done", "iteration", 1).
		Event("complete").
		String())

	c := New(FileTransport{Path: path})
	c.Observe(context.Background(), 1)

	final, err := wait(t, c)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if final.Status != council.StatusCompleted || final.SessionID != "S9" {
		t.Errorf("final = %v/%q, want completed/S9", final.Status, final.SessionID)
	}
	if final.TotalIterations != 1 || len(final.Responses) != 1 || len(final.MergedResponses) != 1 {
		t.Errorf("final = %+v", final)
	}
}

func TestController_ContextCanceledWhilePaused(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx, testConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "session id")

	c.Pause()
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().Status == council.StatusPaused }, "paused")
	tr.stream.Write(testutil.NewStream().
		Event("initial_response", "provider", "openai", "content", "Yes", "iteration", 1).
		String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().QueuedEvents == 1 }, "queued event")

	cancel()

	final, err := wait(t, c)
	if !errors.Is(err, errors.ErrCanceled) {
		t.Fatalf("Wait() error = %v, want ErrCanceled", err)
	}
	if final.Status != council.StatusError || final.QueuedEvents != 0 || len(final.Responses) != 0 {
		t.Errorf("final = %v queued=%d responses=%d, want error with held events dropped",
			final.Status, final.QueuedEvents, len(final.Responses))
	}

	c.Resume()
	if got := c.Snapshot(); got.Status != council.StatusError {
		t.Errorf("Snapshot().Status after Resume = %v, want error", got.Status)
	}
}

func TestController_StreamDropWhilePaused(t *testing.T) {
	tr := newPipeTransport()
	c := New(tr)
	start(t, c)

	tr.stream.Write(testutil.NewStream().Event("session_created", "session_id", "S1").String())
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().SessionID == "S1" }, "session id")

	c.Pause()
	testutil.Eventually(t, waitTimeout, func() bool { return c.Snapshot().Status == council.StatusPaused }, "paused")
	_ = tr.stream.W.Close()

	testutil.Eventually(t, waitTimeout, func() bool {
		return strings.Contains(c.Snapshot().StatusMessage, "stream ended")
	}, "stream end shown while paused")
	if got := c.Snapshot(); got.Status != council.StatusPaused || got.QueuedEvents != 1 {
		t.Fatalf("status=%v queued=%d, want paused with the drop held", got.Status, got.QueuedEvents)
	}

	c.Resume()
	_, err := wait(t, c)
	if !errors.Is(err, errors.ErrStreamClosed) {
		t.Errorf("Wait() error = %v, want ErrStreamClosed", err)
	}
}

func TestController_ObserveWithoutIterations(t *testing.T) {
	path := testutil.WriteFile(t, "session.sse", testutil.NewStream().
		Event("merge", "provider", "openai", "content", "Done", "iteration", 1).
		Event("complete").
		String())

	c := New(FileTransport{Path: path})
	if got := c.Snapshot(); got.Status != council.StatusIdle {
		t.Fatalf("initial status = %v", got.Status)
	}
	c.Observe(context.Background(), 0)
	if got := c.Snapshot(); got.TotalIterations != 1 || got.CurrentIteration > got.TotalIterations {
		t.Errorf("iteration %d of %d, want 1 of 1", got.CurrentIteration, got.TotalIterations)
	}

	final, err := wait(t, c)
	if err != nil || final.Status != council.StatusCompleted {
		t.Errorf("final = %v, err = %v", final.Status, err)
	}
}
