// Background worker for Prologos jurimetrics. It consumes queued harvest
// requests, clones the requested profiles and optionally runs the classifier.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Prologos-Jurimetrics/internal/bootstrap"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/worker"
)

const (
	defaultHealthPort = 8081
	retryBackoff      = time.Second
	maxRetryBackoff   = 30 * time.Second
	shutdownTimeout   = 2 * time.Minute
)

var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults to $JURIS_CONFIG, then environment only)")
	workers := flag.Int("workers", 0, "number of concurrent consumers in the group (default: CPU count)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics endpoint; 0 disables it")
	createTopics := flag.Bool("create-topics", false, "create the platform topics before consuming")
	flag.Parse()

	cfg, err := config.LoadAuto(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
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

	n := *workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if err := run(cfg, logger, n, *healthPort, *createTopics); err != nil {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger, workers, healthPort int, createTopics bool) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is empty; the worker has nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting Prologos worker",
		logging.String("version", Version),
		logging.Int("workers", workers),
		logging.String("topic", cfg.Kafka.RequestTopic))

	platform, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{Source: "worker"})
	if err != nil {
		return err
	}
	defer platform.Close()

	if createTopics {
		if err := ensureTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	var health *httpserver.Server
	if healthPort > 0 {
		serverCfg := cfg.Server
		serverCfg.Port = healthPort
		health = httpserver.NewServer(serverCfg, httpserver.NewRouter(httpserver.RouterConfig{
			HealthHandler:    handlers.NewHealthHandler(Version, platform.Metrics, handlers.NewChecker("database", platform.Conn.HealthCheck)),
			Logger:           logger,
			Metrics:          platform.Metrics,
			MetricsCollector: platform.Collector,
		}), logger)
		go func() {
			if err := health.Start(); err != nil {
				logger.Error("health server failed", logging.Err(err))
			}
		}()
	}

	handler := worker.NewHarvestHandler(platform.Harvests, platform.Classification, logger.Named("worker"))

	// Each consumer owns a reader in the same group, so the broker spreads
	// partitions across them.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topics:  []string{cfg.Kafka.RequestTopic},
			RetryConfig: kafka.RetryConfig{
				MaxRetries:      cfg.Kafka.MaxRetries,
				RetryBackoff:    retryBackoff,
				MaxRetryBackoff: maxRetryBackoff,
				DeadLetterTopic: kafka.TopicDeadLetter,
			},
		}, logger.With(logging.Int("worker_id", i)), platform.Metrics)
		if err != nil {
			return err
		}
		consumer.Subscribe(cfg.Kafka.RequestTopic, handler.Handle)
		consumer.WithDeadLetter(platform.Producer)

		g.Go(func() error {
			defer func() { _ = consumer.Close() }()
			if err := consumer.Run(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	<-gctx.Done()
	logger.Info("waiting for consumers to finish current messages")

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
		logger.Info("all consumers stopped")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}

	if health != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := health.Shutdown(shutdownCtx); err != nil {
			logger.Error("health server shutdown error", logging.Err(err))
		}
	}
	logger.Info("Prologos worker stopped")
	return runErr
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer func() { _ = tm.Close() }()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(kafka.TopicNames{
		Requests:   cfg.RequestTopic,
		Cloned:     cfg.ClonedTopic,
		Classified: cfg.ClassifyTopic,
	}))
}

//Personal.AI order the ending
