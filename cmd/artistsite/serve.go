package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/artistsite"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and admin panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := ctx.load()
			if err != nil {
				return err
			}
			defer log.Sync()
			if addr != "" {
				cfg.Addr = addr
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := artistsite.New(cfg, artistsite.WithLogger(log))
			errc := make(chan error, 1)
			go func() { errc <- app.Start(sigCtx) }()

			select {
			case err := <-errc:
				_ = app.Close()
				return err
			case <-sigCtx.Done():
			}
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
