package main

import (
	"fmt"
	"os"

	"github.com/devzoku/devzoku-api/internal/config"
	"github.com/devzoku/devzoku-api/internal/database"
	"github.com/devzoku/devzoku-api/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var embeddedWorker bool

func init() {
	serveCmd.Flags().BoolVar(&embeddedWorker, "embedded-worker", false, "Run the email worker inside the API process")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
}

var rootCmd = &cobra.Command{
	Use:          "devzoku",
	Short:        "DevZoku hackathon and team matching API",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and realtime hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := bootstrap()
		defer log.Sync()
		return serve(cmd.Context(), cfg, log, embeddedWorker)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the email worker and dead-letter retry loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := bootstrap()
		defer log.Sync()
		return work(cmd.Context(), cfg, log)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := bootstrap()
		defer log.Sync()

		db, err := database.Connect(cfg, log)
		if err != nil {
			return err
		}
		return database.MigrateDatabase(db, log)
	},
}

func bootstrap() (*config.Config, *zap.Logger) {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.LogDevelopment,
	})
	return cfg, log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
