package cmd

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/hivecouncil/internal/api"
	"github.com/Iron-Ham/hivecouncil/internal/config"
	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runOptions struct {
	prompt       string
	members      []string
	councilFile  string
	iterations   int
	preset       string
	template     string
	systemPrompt string
	files        []string
	autopilot    bool
	view         viewOptions
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start a council session and follow it",
		Long: `Start a council session on the HiveCouncil service and follow it until it
completes.

Members are given as provider:model, with ":chair" appended to the member
that merges the answers:

  hivecouncil run --prompt "Monolith or services?" \
    --member openai:gpt-4o --member anthropic:claude-sonnet-4:chair

A saved council file can supply any of these settings; flags override it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	flags := runCmd.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "question for the council")
	flags.StringArrayVarP(&opts.members, "member", "m", nil, "council member as provider:model[:chair] (repeatable)")
	flags.StringVar(&opts.councilFile, "council", "", "YAML file with a saved council definition")
	flags.IntVarP(&opts.iterations, "iterations", "n", 0, "number of critique iterations (default from config)")
	flags.StringVar(&opts.preset, "preset", "", "model preset: creative, balanced or precise")
	flags.StringVar(&opts.template, "template", "", "merge template: analytical, creative, technical or balanced")
	flags.StringVar(&opts.systemPrompt, "system-prompt", "", "system prompt for every member")
	flags.StringArrayVarP(&opts.files, "file", "f", nil, "file to attach to the prompt (repeatable)")
	flags.BoolVar(&opts.autopilot, "autopilot", false, "let the service run every iteration without pausing")
	flags.String("server", "", "HiveCouncil service URL (default from config)")
	_ = viper.BindPFlag("server.base_url", flags.Lookup("server"))
	opts.view.register(runCmd)

	return runCmd
}

func runRun(cmd *cobra.Command, opts runOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	councilCfg, err := buildCouncilConfig(opts, cfg)
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.Server.BaseURL, api.WithStreamPath(cfg.Server.StreamPath))
	if err != nil {
		return err
	}

	opts.view.title = councilCfg.Prompt
	return runSession(cmd, cfg, client, opts.view, func(ctx context.Context, ctrl *session.Controller) error {
		return ctrl.Start(ctx, councilCfg)
	})
}

// buildCouncilConfig merges the council file, flags and configured defaults,
// in increasing order of precedence: defaults, file, flags.
func buildCouncilConfig(opts runOptions, cfg *config.Config) (council.Config, error) {
	var cc council.Config
	if opts.councilFile != "" {
		loaded, err := council.LoadFile(opts.councilFile, cfg.Limits.MaxFileBytes)
		if err != nil {
			return council.Config{}, err
		}
		cc = loaded
	}

	if opts.prompt != "" {
		cc.Prompt = opts.prompt
	}
	if len(opts.members) > 0 {
		members, err := parseMembers(opts.members)
		if err != nil {
			return council.Config{}, err
		}
		cc.Members = members
	}
	if opts.iterations > 0 {
		cc.Iterations = opts.iterations
	}
	if opts.preset != "" {
		cc.Preset = opts.preset
	}
	if opts.template != "" {
		cc.Template = opts.template
	}
	if opts.systemPrompt != "" {
		cc.SystemPrompt = opts.systemPrompt
	}
	if opts.autopilot {
		cc.Autopilot = true
	}

	for _, path := range opts.files {
		att, err := council.ReadAttachment(path, cfg.Limits.MaxFileBytes)
		if err != nil {
			return council.Config{}, err
		}
		cc.Files = append(cc.Files, att)
	}

	if cc.Iterations == 0 {
		cc.Iterations = cfg.Session.DefaultIterations
	}
	if cc.Preset == "" {
		cc.Preset = cfg.Session.DefaultPreset
	}
	if cc.Template == "" {
		cc.Template = cfg.Session.DefaultTemplate
	}

	return cc, nil
}
