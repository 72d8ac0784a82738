package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"immunizetrack/internal/adapters/exports"
	"immunizetrack/internal/blob"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		q       string
		fields  []string
		format  string
		out     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Export a filtered listing to the blob store and print or save it",
		Long: `Runs an export job through the configured blob store and writes the
rendered artifact to --out, or to stdout when --out is empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			f, err := exports.ParseFormat(format)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			svc, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()
			store, err := blob.Open(ctx, a.cfg.Blob)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}
			worker := exports.NewWorker(svc, store, exports.WithLogger(a.logger.Named("exports")))
			worker.Start()
			defer func() { _ = worker.Stop(context.Background()) }()

			rec, err := worker.Enqueue(ctx, exports.Request{Kind: kind, Query: q, Fields: fields, Formats: []exports.Format{f}, RequestedBy: "cli"})
			if err != nil {
				return err
			}
			rec, err = worker.Wait(ctx, rec.ID)
			if err != nil {
				return err
			}
			if rec.Status != exports.StatusSucceeded {
				return fmt.Errorf("export %s failed: %s", rec.ID, rec.Error)
			}
			artifact, data, err := worker.Download(ctx, rec.ID, f)
			if err != nil {
				return err
			}
			a.logger.Info("export stored", "id", rec.ID, "key", artifact.Key, "matched", rec.Matched)
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "search text")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "search fields")
	cmd.Flags().StringVarP(&format, "format", "f", string(exports.FormatCSV), "artifact format (csv or json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the artifact to this file")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall export timeout")
	return cmd
}
