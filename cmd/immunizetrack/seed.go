package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"immunizetrack/internal/core"
	"immunizetrack/internal/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the seed records to the configured storage backend",
		Long: `Loads the built-in records (or --file) and saves them to the storage
backend. A backend that already holds records is left untouched unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			snap, err := a.snapshot()
			if file != "" {
				snap, err = seed.LoadFile(file)
			}
			if err != nil {
				return err
			}
			store, err := core.OpenPersistentStore(ctx, a.cfg.Storage)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()
			existing, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if !existing.Empty() && !force {
				return fmt.Errorf("storage %s already holds records; use --force to overwrite", a.cfg.Storage.Driver)
			}
			if err := store.Save(ctx, snap); err != nil {
				return err
			}
			a.logger.Info("seeded storage", "driver", a.cfg.Storage.Driver, "patients", len(snap.Patients))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %s storage\n", a.cfg.Storage.Driver)
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (default: the configured seed)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing records")
	return cmd
}
