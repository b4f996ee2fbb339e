package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/qarelay/internal/audit"
	"github.com/ziadkadry99/qarelay/internal/config"
	"github.com/ziadkadry99/qarelay/internal/db"
	"github.com/ziadkadry99/qarelay/internal/qa"
	"github.com/ziadkadry99/qarelay/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the question-and-answer HTTP server",
	Long:  `Starts the HTTP server exposing POST /api/question-and-answer, POST /api/ask and the GET / health check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = serverPort
		}

		if !cfg.HasAPIKey() {
			fmt.Fprintf(os.Stderr, "Warning: %s is not set; every question will fail until it is configured.\n", config.APIKeyEnvVar)
		}

		dispatcher := createDispatcherFromConfig(cfg)

		srv := server.New(server.Config{
			Port:           cfg.Port,
			HandlerTimeout: handlerTimeout(cfg),
		})

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var recorder qa.Recorder
		if cfg.AuditEnabled {
			database, err := db.Open(cfg.AuditPath)
			if err != nil {
				return fmt.Errorf("opening audit database: %w", err)
			}
			defer database.Close()

			auditStore := audit.NewStore(database)
			audit.RegisterRoutes(srv.Router(), auditStore)
			recorder = auditStore

			go audit.RunPruner(ctx, auditStore, cfg.AuditRetention, audit.PruneInterval)
		}

		qa.RegisterRoutes(srv.Router(), dispatcher, recorder)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("Graceful shutdown failed")
			}
		}()

		fmt.Fprintf(os.Stderr, "qarelay server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Endpoint: %s\n", cfg.BaseURL)
		fmt.Fprintf(os.Stderr, "  Models: %v\n", dispatcher.Models())
		if cfg.AuditEnabled {
			fmt.Fprintf(os.Stderr, "  Audit log: %s (retention %s)\n", cfg.AuditPath, retentionLabel(cfg.AuditRetention))
		}

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 5000, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
