package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/breed-twin/internal/constants"
	"github.com/kozaktomas/breed-twin/internal/database"
	"github.com/kozaktomas/breed-twin/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Breed Twin API server.
The server accepts photo uploads, returns extracted features and breed
matches, and serves the breed catalog and coat-color similarity queries.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (defaults to WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (defaults to WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("hair-table", "", "Calibrated hair table YAML to use instead of stored profiles")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openProfileStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	profiles, err := store.List(ctx)
	if err != nil {
		logger.Warn("failed to load profiles for similarity index", zap.Error(err))
	}
	index := database.NewProfileIndex()
	index.Build(profiles)
	logger.Info("profile index built", zap.Int("profiles", index.Count()))

	tables, err := loadTables(ctx, mustGetString(cmd, "hair-table"), store, logger)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, cfg, logger, tables, 0)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg, web.Dependencies{
		Extractor: p.extractor,
		Matcher:   p.matcher,
		Catalog:   p.catalog,
		Images:    p.dogs,
		Index:     index,
		Profiles:  store,
	}, logger)

	go func() {
		<-ctx.Done()
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Breed Twin API on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
