package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"market/analyzer/internal/container"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Info("Starting market analyzer...")

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log.Infof("Configuration loaded successfully (mirror mode: %s)", cfg.Mirror.Mode)

			if !log.IsLevelEnabled(log.DebugLevel) {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := container.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize container: %w", err)
			}
			defer app.Close()

			if err := app.Run(ctx); err != nil {
				return fmt.Errorf("application exited with error: %w", err)
			}

			log.Info("Application finished successfully")
			return nil
		},
	}
}
