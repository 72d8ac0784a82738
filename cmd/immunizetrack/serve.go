package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"immunizetrack/internal/adapters/exports"
	"immunizetrack/internal/adapters/httpapi"
	"immunizetrack/internal/blob"
	"immunizetrack/internal/core"
)

// server bundles the pieces the serve command starts and stops together.
type server struct {
	svc     *core.Service
	worker  *exports.Worker
	handler *httpapi.Handler
}

func (a *app) newServer(ctx context.Context) (*server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return nil, err
	}
	svc, err := a.openService(ctx, core.WithMetrics(recorder))
	if err != nil {
		return nil, err
	}
	store, err := blob.Open(ctx, a.cfg.Blob)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	worker := exports.NewWorker(svc, store, exports.WithLogger(a.logger.Named("exports")))
	handler := httpapi.NewHandler(svc)
	handler.Exports = worker
	handler.Metrics = reg
	handler.Logger = a.logger.Named("http")
	return &server{svc: svc, worker: worker, handler: handler}, nil
}

func (s *server) close(ctx context.Context) error {
	return errors.Join(s.worker.Stop(ctx), s.svc.Close())
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and portal API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv, err := a.newServer(ctx)
			if err != nil {
				return err
			}
			srv.worker.Start()
			httpServer := &http.Server{Addr: addr, Handler: srv.handler}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", addr, "storage", a.cfg.Storage.Driver, "blob", a.cfg.Blob.Driver)
				errCh <- httpServer.ListenAndServe()
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				a.logger.Info("received shutdown signal")
			case serveErr = <-errCh:
				if errors.Is(serveErr, http.ErrServerClosed) {
					serveErr = nil
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("http shutdown", "error", err)
			}
			return errors.Join(serveErr, srv.close(shutdownCtx))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config http.addr)")
	return cmd
}
