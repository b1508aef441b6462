package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"satisfaction/internal/cli"
	"satisfaction/internal/config"
	apphttp "satisfaction/internal/http"
	"satisfaction/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard (default)",
	Long: `Load the ratings, build the table and serve the dashboard.

Endpoints:
  GET /           - dashboard page
  GET /_chart     - chart for ?year=..&month=.. (repeatable)
  GET /static/*   - page assets
  GET /healthz    - liveness
  GET /readyz     - readiness`,
	RunE: runServe,
}

var (
	servePort     string
	serveDataFile string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&serveDataFile, "data-file", "", "ratings JSON file (overrides DATA_FILE)")
}

// loadConfig applies flag overrides on top of the environment.
func loadConfig() (*config.Config, error) {
	if servePort != "" {
		if err := os.Setenv("PORT", servePort); err != nil {
			return nil, err
		}
	}
	if serveDataFile != "" {
		if err := os.Setenv("DATA_FILE", serveDataFile); err != nil {
			return nil, err
		}
	}
	return cli.LoadAndValidateConfig()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := cli.LoadTable(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(cfg.Addr(), table, apphttp.Options{
		Logger:            logger,
		RequestsPerMinute: cfg.RateLimitRPM,
		TrustProxy:        cfg.TrustProxy,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
