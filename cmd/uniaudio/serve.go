package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uniaudio/internal/handlers"
	"uniaudio/internal/router"
)

func newServeCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(logger)
			if err != nil {
				return err
			}

			registry := handlers.NewRegistry()
			taskHandler := handlers.NewTaskHandler(a.orch, a.voices, registry, logger)
			podcastHandler := handlers.NewPodcastHandler(a.pipeline, a.scratch, registry, logger)
			r := router.New(taskHandler, podcastHandler, logger)

			srv := &http.Server{
				Addr:         a.cfg.HTTP.Addr,
				Handler:      r,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Failed to start server", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
}
