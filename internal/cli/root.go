// Package cli implements the scentctl operator commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/utafrali/ScentGo/internal/app"
	"github.com/utafrali/ScentGo/internal/config"
	"github.com/utafrali/ScentGo/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// deps are the seams commands reach the outside world through.
type deps struct {
	loadConfig  func() (*config.Config, error)
	openBackend func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Backend, error)
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		openBackend: func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Backend, error) {
			return app.OpenBackend(ctx, cfg, nil, logger)
		},
	}
}

// NewRootCommand creates the root command for scentctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDeps())
}

func newRootCommand(d deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scentctl",
		Short: "Operate the ScentGo catalog",
		Long:  "Apply migrations, seed demo data and query the ScentGo catalog from the command line.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(opts, d))
	cmd.AddCommand(newSeedCommand(opts, d))
	cmd.AddCommand(newSearchCommand(opts, d))
	cmd.AddCommand(newStatsCommand(opts, d))

	return cmd
}

// session is the loaded config, a stderr logger and an open backend.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *app.Backend
}

// open loads configuration and connects to the remote store. Logs go to
// stderr so JSON output on stdout stays clean.
func open(cmd *cobra.Command, opts *RootOptions, d deps, tweak func(*config.Config)) (*session, error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if tweak != nil {
		tweak(cfg)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log := logger.NewWithOptions(logger.Options{
		Service: "scentctl",
		Level:   level,
		Format:  "text",
		Writer:  cmd.ErrOrStderr(),
	})

	backend, err := d.openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: log, backend: backend}, nil
}

