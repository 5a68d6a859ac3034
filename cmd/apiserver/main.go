// API server entry point for Prologos jurimetrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/Prologos-Jurimetrics/internal/bootstrap"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults to $JURIS_CONFIG, then environment only)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrate := flag.Bool("migrate", false, "apply pending schema migrations on startup")
	flag.Parse()

	cfg, err := config.LoadAuto(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *migrate {
		cfg.Database.AutoMigrate = true
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting Prologos API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.String("built", BuildDate),
		logging.Int("port", cfg.Server.Port),
		logging.String("database", cfg.Database.Driver))

	platform, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Source: "apiserver"})
	if err != nil {
		return err
	}
	defer platform.Close()

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerConfig(platform, Version)), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

//Personal.AI order the ending
