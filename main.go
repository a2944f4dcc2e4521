package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cloudguide/backend"
	"cloudguide/config"
	"cloudguide/ui"
)

const Version = "v0.1.0"

// errReported marks failures whose message was already printed
var errReported = errors.New("already reported")

// rootOptions holds the global flags shared by every command
type rootOptions struct {
	apiBase string
	useRAG  bool
	debug   bool
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "cloudguide",
		Short: "CloudGuide - terminal chat client for the CloudGuide AWS assistant",
		Long: `CloudGuide asks the CloudGuide backend questions about AWS services and
pricing and shows each answer with its source.

Run without arguments to start the interactive chat interface.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			config.SyncDebugLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiBase, "api-base", "", "backend base URL (default "+config.DefaultAPIBase+")")
	flags.BoolVar(&opts.useRAG, "rag", false, "prefix questions with \"ask:\" so the backend retrieves documents first")
	flags.BoolVar(&opts.debug, "debug", false, "write a debug log to <data_dir>/debug.log")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default 30s)")

	rootCmd.AddCommand(
		newAskCmd(opts),
		newHealthCmd(opts),
		newIngestCmd(opts),
	)

	return rootCmd
}

// loadConfig resolves the layered configuration and applies flags on top
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-base") {
		if err := config.ValidateAPIBase(opts.apiBase); err != nil {
			return nil, fmt.Errorf("--api-base: %w", err)
		}
		cfg.APIBase = opts.apiBase
	}
	if flags.Changed("rag") {
		cfg.UseRAG = opts.useRAG
	}
	if flags.Changed("timeout") {
		if opts.timeout <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %v", opts.timeout)
		}
		cfg.RequestTimeout = opts.timeout
	}

	config.InitDebugLog(cfg.DataDir(), opts.debug)
	config.DebugLog.Debugf("Config resolved: api_base=%s rag=%t timeout=%v data_dir=%s",
		cfg.APIBase, cfg.UseRAG, cfg.RequestTimeout, cfg.DataDir())

	return cfg, nil
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.APIBase, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewAppView(cfg, client, Version),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running cloudguide: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(1)
}
