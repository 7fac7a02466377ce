package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "teagate/cmd/management-service/docs"
	"teagate/internal/config"
	"teagate/internal/constants"
	"teagate/internal/logger"
	"teagate/pkg/logging"
	"teagate/pkg/migrations"
)

var (
	configFile string
)

// @title           Teagate Management Service API
// @version         1.0
// @description     REST API for tea lots, quality gate rules and shipment simulation

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	rootCmd := &cobra.Command{
		Use:   "management-service",
		Short: "Tea lot quality gate management service",
		Long:  "Management Service stores tea lots and quality gate rules and simulates shipments against them",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and builds the logger shared by every subcommand.
func setup() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	if sugared, ok := log.(*logger.SugaredLogger); ok {
		sugared.SetServiceName(constants.ServiceManagement)
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the management service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Management Service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				_ = app.Shutdown(context.Background())
				return err
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the PostgreSQL schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := migrations.ParseDirection(args[0])
			if err != nil {
				return err
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			app := NewApp(cfg, log)
			if err := app.initDatabase(cmd.Context()); err != nil {
				return err
			}
			defer app.db.Close()

			if err := migrations.RunPostgres(app.db, cfg.Database.MigrationsDir, direction); err != nil {
				return err
			}
			log.InfowCtx(cmd.Context(), "Migrations applied", "direction", direction)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo tea lots and rules into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			app := NewApp(cfg, log)
			if err := app.initDatabase(cmd.Context()); err != nil {
				return err
			}
			defer app.db.Close()

			result, err := app.newManagementService().Seed(cmd.Context())
			if err != nil {
				return err
			}
			log.InfowCtx(cmd.Context(), "Seed finished", "tea_lots", result.TeaLots, "rules", result.Rules)
			return nil
		},
	}
}
