package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/hivecouncil/internal/config"
	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/errors"
	"github.com/Iron-Ham/hivecouncil/internal/logging"
	"github.com/Iron-Ham/hivecouncil/internal/session"
	"github.com/Iron-Ham/hivecouncil/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// viewOptions selects how a followed session is shown.
type viewOptions struct {
	noTUI bool
	json  bool
	title string
}

func (v *viewOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&v.noTUI, "no-tui", false, "print plain progress lines instead of the live viewer")
	cmd.Flags().BoolVar(&v.json, "json", false, "print only the final session snapshot as JSON")
}

// runSession wires a controller for transport, starts the session with start
// and follows it until it ends, the user quits the viewer or the process is
// interrupted. A failed session is returned as an error.
func runSession(cmd *cobra.Command, cfg *config.Config, transport session.Transport, view viewOptions, start func(context.Context, *session.Controller) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctrl := session.New(transport,
		session.WithInactivityTimeout(cfg.Stream.InactivityTimeout()),
		session.WithMaxRecordBytes(cfg.Stream.MaxRecordBytes),
		session.WithLimits(cfg.Limits.CouncilLimits()),
		session.WithLogger(logger),
	)
	defer ctrl.Close()

	out := cmd.OutOrStdout()
	useTUI := !view.noTUI && !view.json && cfg.TUI.Enabled && isTerminal(out)

	if !useTUI && !view.json {
		p := newPrinter(out)
		id := ctrl.Subscribe(p.Print)
		defer ctrl.Unsubscribe(id)
	}

	if err := start(ctx, ctrl); err != nil {
		return err
	}

	if useTUI {
		app := tui.New(ctrl,
			tui.WithTitle(view.title),
			tui.WithCostWarning(cfg.Session.CostWarningThreshold))
		if err := app.Run(ctx); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		// Quitting the viewer abandons a session still in progress.
		if snap := ctrl.Snapshot(); !snap.Terminal() {
			logger.Info("viewer closed before the session ended", "status", string(snap.Status))
			return nil
		}
	}

	// The pipeline's context derives from ctx, so an interrupt ends the
	// session and Wait returns promptly with a canceled error.
	final, err := ctrl.Wait(context.Background())
	if view.json {
		if jerr := writeJSON(out, final); jerr != nil {
			return jerr
		}
	}
	if err != nil {
		return fmt.Errorf("session failed (%s): %w", errors.Code(err), err)
	}
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.LogDir(), cfg.Logging.Level)
}

func writeJSON(w io.Writer, snap council.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
