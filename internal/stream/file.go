package stream

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// OpenFile opens a recorded event stream. Without follow the reader ends at
// the current end of file. With follow it behaves like `tail -f`: at end of
// file it waits for the file to grow and only returns io.EOF once ctx is done
// or the file is removed or renamed.
func OpenFile(ctx context.Context, path string, follow bool) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream file: %w", err)
	}
	if !follow {
		return f, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory; editors and log writers often replace files.
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		f.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &followReader{ctx: ctx, file: f, path: abs, watcher: watcher}, nil
}

type followReader struct {
	ctx     context.Context
	file    *os.File
	path    string
	watcher *fsnotify.Watcher
	gone    bool
}

func (r *followReader) Read(p []byte) (int, error) {
	for {
		n, err := r.file.Read(p)
		if n > 0 || err != io.EOF {
			return n, err
		}
		if r.gone {
			return 0, io.EOF
		}
		if err := r.wait(); err != nil {
			return 0, err
		}
	}
}

// wait blocks until the followed file changes.
func (r *followReader) wait() error {
	for {
		select {
		case <-r.ctx.Done():
			return io.EOF
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return io.EOF
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Drain whatever was written before the file went away.
				r.gone = true
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return nil
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return io.EOF
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}

func (r *followReader) Close() error {
	werr := r.watcher.Close()
	if err := r.file.Close(); err != nil {
		return err
	}
	return werr
}
