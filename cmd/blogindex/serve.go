package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog and its admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := newApp()
		defer app.Close()
		if err := app.Setup(); err != nil {
			return err
		}

		if watch {
			go func() {
				if err := app.Watch(ctx); err != nil {
					logger.Error("watcher stopped", zap.Error(err))
				}
			}()
		}

		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", siteConfig.Addr), zap.String("url", siteConfig.URL))
			if err := app.Echo.Start(siteConfig.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Echo.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload posts when content or images change")
	rootCmd.AddCommand(serveCmd)
}
