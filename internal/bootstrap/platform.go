// Package bootstrap assembles the infrastructure adapters and application
// services from a Config. The API server, the worker and the CLI share it.
package bootstrap

import (
	"context"
	"strings"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/advisory"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/query"
	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb/repositories"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/document"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/embedding"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/llm"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/search/datajud"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/storage/minio"
)

// Platform holds every adapter and service built from one Config. Optional
// adapters are nil when their section is not configured.
type Platform struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Conn     *sqldb.Connection
	Migrator *sqldb.Migrator
	Store    *repositories.Store
	Redis    *redis.Client
	Cache    redis.Cache
	MinIO    *minio.MinIOClient
	Producer *kafka.Producer

	Harvests       *harvest.Service
	Classification *classification.Service
	Adherence      *adherence.Service
	Advisory       *advisory.Service
	Queries        *query.Service
	Maintenance    *maintenance.Service

	closers []func() error
}

// Options tune what New builds.
type Options struct {
	// Source names this process on published events.
	Source string
	// SkipMetrics keeps the AppMetrics in-process only.
	SkipMetrics bool
}

// New connects the configured adapters and wires the services. On error
// everything already opened is closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (*Platform, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	p := &Platform{Config: cfg, Logger: logger, Metrics: prometheus.NewNopMetrics()}
	if err := p.open(ctx, cfg, opts); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Platform) open(ctx context.Context, cfg *config.Config, opts Options) (err error) {
	if cfg.Metrics.Enabled && !opts.SkipMetrics {
		p.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, p.Logger)
		if err != nil {
			return err
		}
		p.Metrics = prometheus.NewAppMetrics(p.Collector)
	}

	if err = p.openStore(cfg.Database); err != nil {
		return err
	}
	if err = p.openRedis(cfg.Redis); err != nil {
		return err
	}
	if err = p.openMinIO(ctx, cfg.MinIO); err != nil {
		return err
	}
	if err = p.openProducer(cfg.Kafka, opts.Source); err != nil {
		return err
	}
	return p.buildServices(ctx, cfg)
}

func (p *Platform) onClose(fn func() error) {
	p.closers = append(p.closers, fn)
}

// Close releases adapters in reverse order of opening.
func (p *Platform) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			p.Logger.Warn("failed to release adapter", logging.Err(err))
		}
	}
	p.closers = nil
}

// SQLConfig maps the database section onto the connection settings.
func SQLConfig(c config.DatabaseConfig) sqldb.Config {
	dialect := sqldb.DialectPostgres
	if strings.EqualFold(c.Driver, config.DriverSQLite) {
		dialect = sqldb.DialectSQLite
	}
	return sqldb.Config{
		Dialect:          dialect,
		Host:             c.Host,
		Port:             c.Port,
		Database:         c.DBName,
		Username:         c.User,
		Password:         c.Password,
		SSLMode:          c.SSLMode,
		Path:             c.Path,
		MaxOpenConns:     c.MaxOpenConns,
		MaxIdleConns:     c.MaxIdleConns,
		ConnMaxLifetime:  c.ConnMaxLifetime,
		StatementTimeout: c.StatementTimeout,
	}
}

func (p *Platform) openStore(c config.DatabaseConfig) error {
	conn, err := sqldb.NewConnection(SQLConfig(c), p.Logger)
	if err != nil {
		return err
	}
	p.Conn = conn
	p.onClose(conn.Close)
	p.Migrator = sqldb.NewMigrator(conn, p.Logger)
	if c.AutoMigrate {
		if err := p.Migrator.Up(); err != nil {
			return err
		}
	}
	p.Store = repositories.NewStore(conn, p.Logger)
	return nil
}

func (p *Platform) openRedis(c config.RedisConfig) error {
	if c.Addr == "" {
		p.Logger.Info("redis not configured, caches and harvest locks disabled")
		return nil
	}
	client, err := redis.NewClient(redis.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}, p.Logger)
	if err != nil {
		return err
	}
	p.Redis = client
	p.onClose(client.Close)
	p.Cache = redis.NewRedisCache(client, p.Logger, redis.WithPrefix(c.KeyPrefix))
	return nil
}

func (p *Platform) openMinIO(ctx context.Context, c config.MinIOConfig) error {
	if c.Endpoint == "" {
		p.Logger.Info("object storage not configured, petitions will not be archived")
		return nil
	}
	client, err := minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		UseSSL:          c.UseSSL,
		Region:          c.Region,
		PetitionBucket:  c.PetitionBucket,
	}, p.Logger)
	if err != nil {
		return err
	}
	p.MinIO = client
	p.onClose(client.Close)
	return client.EnsureBuckets(ctx)
}

func (p *Platform) openProducer(c config.KafkaConfig, source string) error {
	if len(c.Brokers) == 0 {
		p.Logger.Info("kafka not configured, queued harvests disabled")
		return nil
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      c.Brokers,
		MaxRetries:   c.MaxRetries,
		WriteTimeout: c.WriteTimeout,
		Source:       source,
	}, p.Logger, p.Metrics)
	if err != nil {
		return err
	}
	p.Producer = producer
	p.onClose(producer.Close)
	return nil
}

func (p *Platform) buildServices(ctx context.Context, cfg *config.Config) error {
	source, err := datajud.NewClient(datajud.ClientConfig{
		BaseURL: cfg.DataJud.BaseURL,
		APIKey:  cfg.DataJud.APIKey,
		Timeout: cfg.DataJud.Timeout,
	}, p.Logger.Named("datajud"), p.Metrics)
	if err != nil {
		return err
	}

	var harvestOpts []harvest.Option
	var classifyOpts []classification.Option
	if p.Redis != nil {
		harvestOpts = append(harvestOpts, harvest.WithLocker(redis.NewLocker(p.Redis, cfg.Redis.KeyPrefix+"lock:", p.Logger)))
	}
	if p.Producer != nil {
		harvestOpts = append(harvestOpts, harvest.WithPublisher(p.Producer))
		classifyOpts = append(classifyOpts, classification.WithPublisher(p.Producer, cfg.Kafka.ClassifyTopic))
	}
	p.Harvests = harvest.NewService(
		judiciary.NewCourtRouter(cfg.DataJud.BaseURL),
		source,
		p.Store,
		harvest.Config{
			HistorySize:  cfg.DataJud.HistorySize,
			RequestTopic: cfg.Kafka.RequestTopic,
			ClonedTopic:  cfg.Kafka.ClonedTopic,
		},
		p.Logger.Named("harvest"),
		p.Metrics,
		harvestOpts...,
	)

	classifier, err := classification.BuildClassifier(cfg.Classifier)
	if err != nil {
		return err
	}
	p.Classification = classification.NewService(classifier, p.Store, p.Logger.Named("classification"), p.Metrics, classifyOpts...)
	p.Queries = query.NewService(p.Store, p.Logger.Named("query"))
	p.Maintenance = maintenance.NewService(p.Store, p.Logger.Named("maintenance"))

	if err := p.buildAdherence(ctx, cfg); err != nil {
		return err
	}
	return p.buildAdvisory(cfg)
}

func (p *Platform) buildAdherence(ctx context.Context, cfg *config.Config) error {
	if cfg.Embedding.APIKey == "" {
		p.Logger.Info("embedding api key not set, adherence scoring disabled")
		return nil
	}
	gemini, err := embedding.NewGeminiEmbedder(ctx, embedding.GeminiConfig{
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: cfg.Embedding.Timeout,
	}, p.Logger.Named("embedding"), p.Metrics)
	if err != nil {
		return err
	}
	p.onClose(gemini.Close)

	var embedder embedding.Embedder = gemini
	if p.Cache != nil {
		embedder = embedding.NewCachedEmbedder(gemini, p.Cache, cfg.Embedding.CacheTTL, p.Logger, p.Metrics)
	}

	opts := []adherence.Option{adherence.WithExtractor(document.NewExtractor())}
	if p.MinIO != nil {
		opts = append(opts, adherence.WithArchive(minio.NewPetitionArchive(p.MinIO, p.Logger)))
	}
	p.Adherence = adherence.NewService(
		p.Store,
		adherence.NewScorer(embedder, cfg.Embedding.MaxDocumentChars),
		adherence.Config{MinRecords: cfg.Embedding.MinRecords, TopTopics: cfg.Embedding.TopTopics},
		p.Logger.Named("adherence"),
		p.Metrics,
		opts...,
	)
	return nil
}

func (p *Platform) buildAdvisory(cfg *config.Config) error {
	if cfg.LLM.APIKey == "" || p.Adherence == nil {
		p.Logger.Info("text-generation provider not configured, dossier and opinion disabled")
		return nil
	}
	generator, err := llm.NewClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		PreferredPrefixes: cfg.LLM.PreferredPrefixes,
		FallbackModel:     cfg.LLM.FallbackModel,
		Timeout:           cfg.LLM.Timeout,
	}, p.Logger.Named("llm"), p.Metrics)
	if err != nil {
		return err
	}
	p.Advisory = advisory.NewService(p.Store, generator, p.Adherence, p.Cache, advisory.Config{
		SampleSize:         cfg.LLM.DossierSampleSize,
		DossierTTL:         cfg.LLM.DossierTTL,
		DossierTemperature: cfg.LLM.DossierTemperature,
		OpinionTemperature: cfg.LLM.OpinionTemperature,
	}, p.Logger.Named("advisory"), p.Metrics)
	return nil
}

//Personal.AI order the ending
