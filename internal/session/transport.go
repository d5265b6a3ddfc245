package session

import (
	"context"
	"io"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// Transport opens the event stream for a session. The returned body is read
// until the session ends and then closed. Canceling ctx must abort both the
// open and any read in progress.
type Transport interface {
	Open(ctx context.Context, cfg council.Config) (io.ReadCloser, error)
}

// RemoteControl is implemented by transports that can tell the remote
// service about pause and resume.
type RemoteControl interface {
	PauseSession(ctx context.Context, sessionID string) error
	ResumeSession(ctx context.Context, sessionID string) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, cfg council.Config) (io.ReadCloser, error)

// Open calls f.
func (f TransportFunc) Open(ctx context.Context, cfg council.Config) (io.ReadCloser, error) {
	return f(ctx, cfg)
}

// FileTransport replays a recorded stream from disk. With Follow set it keeps
// reading as the file grows.
type FileTransport struct {
	Path   string
	Follow bool
}

// Open opens the recorded stream. The configuration is not sent anywhere.
func (t FileTransport) Open(ctx context.Context, _ council.Config) (io.ReadCloser, error) {
	return stream.OpenFile(ctx, t.Path, t.Follow)
}
