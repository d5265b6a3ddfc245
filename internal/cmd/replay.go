package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Iron-Ham/hivecouncil/internal/config"
	"github.com/Iron-Ham/hivecouncil/internal/session"
	"github.com/spf13/cobra"
)

type replayOptions struct {
	follow     bool
	iterations int
	view       viewOptions
}

func newReplayCmd() *cobra.Command {
	var opts replayOptions

	replayCmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay a recorded session stream",
		Long: `Replay a recorded event stream through the same pipeline a live session
uses. With --follow the file is watched and new events are applied as they
are appended, until the file is removed or the session ends.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], opts)
		},
	}

	flags := replayCmd.Flags()
	flags.BoolVar(&opts.follow, "follow", false, "keep reading as the file grows")
	flags.IntVarP(&opts.iterations, "iterations", "n", 0, "iterations in the recording (default from config)")
	opts.view.register(replayCmd)

	return replayCmd
}

func runReplay(cmd *cobra.Command, path string, opts replayOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot replay %s: %w", path, err)
	}

	iterations := opts.iterations
	if iterations <= 0 {
		iterations = cfg.Session.DefaultIterations
	}

	transport := session.FileTransport{Path: path, Follow: opts.follow}
	opts.view.title = "Replay of " + path
	return runSession(cmd, cfg, transport, opts.view, func(ctx context.Context, ctrl *session.Controller) error {
		ctrl.Observe(ctx, iterations)
		return nil
	})
}
