package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/atlas-backend/internal/app"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

var Version = "dev"

// NewRootCmd builds the atlas command tree. Running it without a subcommand
// serves the API.
func NewRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "atlas",
		Short:         "Atlas - 52-week engineering curriculum backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	serve := serveCmd(&envFile)
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd(&envFile))
	rootCmd.AddCommand(seedCmd(&envFile))
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads config and builds the logger every command shares.
func bootstrap(envFile string) (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig(envFile)
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Start(ctx); err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			svc, err := app.Open(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()
			log.Info("Migration complete", "driver", svc.Driver())
			return nil
		},
	}
}

func seedCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the embedded 52-mission catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			cfg.SeedOnStart = false
			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Services.Curriculum.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed curriculum: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "curriculum version %d (%d missions, checksum %s, skipped=%t)\n",
				res.Version, res.MissionCount, res.Checksum, res.Skipped)
			return nil
		},
	}
}
