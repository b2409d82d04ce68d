package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tripdesk/supplier-contracts/internal/auth"
	httphandler "github.com/tripdesk/supplier-contracts/internal/http"
	"github.com/tripdesk/supplier-contracts/internal/http/middleware"
	"github.com/tripdesk/supplier-contracts/internal/worker"
)

func newServeCommand() *cobra.Command {
	var withoutMonitor bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the release monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), !withoutMonitor)
		},
	}
	cmd.Flags().BoolVar(&withoutMonitor, "no-monitor", false, "do not start the release monitor")
	return cmd
}

func serve(parent context.Context, monitor bool) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := httphandler.NewHandler(a.services, a.log)
	authMiddleware := middleware.Auth(auth.NewParser(a.cfg.Auth.AccessSecret))
	router := httphandler.NewRouter(handler, authMiddleware, a.cfg.Environment, a.cfg.HTTP.AllowedOrigins, a.log)

	addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().Str("addr", addr).Msg("starting contracts service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info().Msg("shutting down http server")
		return server.Shutdown(shutdownCtx)
	})
	if monitor {
		m := worker.NewReleaseMonitor(a.services.Allocations, a.cfg.Release.MonitorInterval, a.cfg.Release.AutoReturn, a.log)
		g.Go(func() error { return m.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		a.log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}
