// Package testutil provides testing utilities for HiveCouncil tests.
package testutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Stream builds an SSE-framed event stream for tests.
//
//	s := testutil.NewStream().
//		Event("session_created", "session_id", "S1").
//		Event("complete")
type Stream struct {
	b strings.Builder
}

// NewStream returns an empty Stream builder.
func NewStream() *Stream {
	return &Stream{}
}

// Event appends a record of the given type. kv is a list of alternating JSON
// field names and values; values are marshaled with encoding/json.
func (s *Stream) Event(typ string, kv ...any) *Stream {
	fields := map[string]any{"type": typ}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		// Only reachable with unsupported value types, which is a test bug.
		panic(err)
	}
	s.b.WriteString("data: ")
	s.b.Write(payload)
	s.b.WriteString("\n\n")
	return s
}

// Raw appends text verbatim.
func (s *Stream) Raw(text string) *Stream {
	s.b.WriteString(text)
	return s
}

// Data appends a record with a raw payload, valid JSON or not.
func (s *Stream) Data(payload string) *Stream {
	s.b.WriteString("data: ")
	s.b.WriteString(payload)
	s.b.WriteString("\n\n")
	return s
}

// String returns the accumulated stream.
func (s *Stream) String() string {
	return s.b.String()
}

// Bytes returns the accumulated stream as bytes.
func (s *Stream) Bytes() []byte {
	return []byte(s.b.String())
}

// Reader returns a reader over the accumulated stream.
func (s *Stream) Reader() io.Reader {
	return strings.NewReader(s.b.String())
}

// ChunkReader delivers data in chunks of at most size bytes per Read,
// simulating a network body that splits records at arbitrary points.
func ChunkReader(data []byte, size int) io.Reader {
	if size < 1 {
		size = 1
	}
	return &chunkReader{data: data, size: size}
}

type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(r.size, len(p), len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

// PipeStream is a stream body the test writes to while the code under test
// reads from it. Close the writer side to end the stream.
type PipeStream struct {
	*io.PipeReader
	W *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

// NewPipeStream returns a connected PipeStream.
func NewPipeStream() *PipeStream {
	r, w := io.Pipe()
	return &PipeStream{PipeReader: r, W: w}
}

// Write writes text to the stream. Errors are ignored because the reader may
// already have been closed by the code under test.
func (p *PipeStream) Write(text string) {
	_, _ = io.WriteString(p.W, text)
}

// Close closes the reader side, as a consumer of the body would.
func (p *PipeStream) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.PipeReader.Close()
}

// Closed reports whether the consumer closed the stream.
func (p *PipeStream) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// WriteFile writes content to name inside a fresh temp directory and returns
// the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// Eventually polls cond until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %v: %s", timeout, msg)
	}
}
