// Package tui renders a live view of a council session. It is a passive
// observer: it draws the snapshots the session controller publishes and
// forwards pause, resume and clear requests back to it.
package tui

import (
	"context"
	"errors"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of session.Controller the viewer needs.
type Controller interface {
	Snapshot() council.Snapshot
	Pause()
	Resume()
	Clear()
	Subscribe(fn func(council.Snapshot)) string
	Unsubscribe(id string) bool
}

// App wraps the Bubbletea program
type App struct {
	ctrl Controller
	opts []ModelOption
}

// New creates a new TUI application for ctrl.
func New(ctrl Controller, opts ...ModelOption) *App {
	return &App{ctrl: ctrl, opts: opts}
}

// Run shows the viewer until the user quits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	// Snapshots are handed to the model one at a time through updates so they
	// arrive in publication order. The subscriber blocks until the model
	// takes the snapshot or the program exits.
	updates := make(chan council.Snapshot)
	done := make(chan struct{})
	id := a.ctrl.Subscribe(func(s council.Snapshot) {
		select {
		case updates <- s:
		case <-done:
		}
	})
	defer a.ctrl.Unsubscribe(id)
	defer close(done)

	model := NewModel(a.ctrl, updates, a.opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := program.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
