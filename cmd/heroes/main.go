package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-heroes/internal/config"
	"github.com/goliatone/go-heroes/internal/logger"
	"github.com/goliatone/go-heroes/internal/storage"
	"github.com/goliatone/go-heroes/pkg/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile string
		envFile    string
		migrate    bool
	)

	load := func() (*config.Config, error) {
		return config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
	}

	root := &cobra.Command{
		Use:           "heroes",
		Short:         "Heroes catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml when present)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema and seed the catalog before serving")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema in both stores and seed the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	var opts []di.Option
	if migrate {
		opts = append(opts, di.WithMigrations())
	}

	c, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			c.Logger().Warn("close stores", zap.Error(err))
		}
	}()
	log := c.Logger()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      c.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrations(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(cfg.Logger())

	primary, err := storage.Open(ctx, cfg.Primary, log.Named("primary"))
	if err != nil {
		return fmt.Errorf("primary store: %w", err)
	}
	defer primary.Close()

	secondary, err := storage.Open(ctx, cfg.Secondary, log.Named("secondary"))
	if err != nil {
		return fmt.Errorf("secondary store: %w", err)
	}
	defer secondary.Close()

	if err := storage.Migrate(ctx, primary, secondary); err != nil {
		return err
	}
	log.Info("migrated", zap.String("primary_driver", cfg.Primary.Driver), zap.String("secondary_driver", cfg.Secondary.Driver))
	return nil
}
