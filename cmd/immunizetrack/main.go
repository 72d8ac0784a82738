// Command immunizetrack serves and queries the immunization dashboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"immunizetrack/internal/config"
	"immunizetrack/internal/core"
	"immunizetrack/internal/logging"
	"immunizetrack/internal/seed"
	"immunizetrack/pkg/domain"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	logLevel   string

	cfg    config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "immunizetrack",
		Short: "Immunization dashboard and parent portal",
		Long: `immunizetrack serves the staff dashboard and parent portal API and
offers the same list, summary and export operations from the command line.

Configuration is read from --config (or $IMMUNIZETRACK_CONFIG) and then
overridden by IMMUNIZETRACK_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newSummaryCmd(a),
		newShowCmd(a),
		newDashboardCmd(a),
		newPortalCmd(a),
		newExportCmd(a),
		newSeedCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Verbose = true
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// snapshot returns the configured seed records.
func (a *app) snapshot() (domain.Snapshot, error) {
	if a.cfg.SeedFile != "" {
		return seed.LoadFile(a.cfg.SeedFile)
	}
	return seed.Default()
}

// openService opens the configured backend and builds a service over it.
func (a *app) openService(ctx context.Context, extra ...core.Option) (*core.Service, error) {
	snap, err := a.snapshot()
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.ServiceOptions()
	if err != nil {
		return nil, err
	}
	store, err := core.OpenPersistentStore(ctx, a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	opts = append(opts, core.WithPersistentStore(store), core.WithLogger(a.logger.Named("core")))
	opts = append(opts, extra...)
	svc, err := core.NewService(ctx, snap, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.logger.Debug("service ready", "storage", a.cfg.Storage.Driver)
	return svc, nil
}

func parseKind(name string) (domain.EntityType, error) {
	kind, ok := domain.ParseEntityType(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownKind, name)
	}
	return kind, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
