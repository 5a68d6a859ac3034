// Package config provides configuration loading, defaults, and validation for
// the jurimetrics platform.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 15 * time.Second
	DefaultServerWriteTimeout = 90 * time.Second // two upstream calls plus a batch write
	DefaultMaxBodySize        = 10 << 20
	DefaultShutdownTimeout    = 15 * time.Second
	DefaultUpstreamBurst      = 5

	DefaultDBDriver        = DriverPostgres
	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBUser          = "prologos"
	DefaultDBName          = "prologos"
	DefaultDBSSLMode       = "disable"
	DefaultDBPath          = "prologos.db"
	DefaultDBMaxOpenConns  = 10
	DefaultDBMaxIdleConns  = 5
	DefaultDBConnLifetime  = 30 * time.Minute
	DefaultDBStmtTimeout   = 30 * time.Second
	DefaultRedisDB         = 0
	DefaultRedisPoolSize   = 10
	DefaultRedisTimeout    = 3 * time.Second
	DefaultRedisKeyPrefix  = "prologos:"
	DefaultKafkaGroupID    = "prologos-harvest"
	DefaultRequestTopic    = "juris.harvest.requests"
	DefaultClonedTopic     = "juris.profile.cloned"
	DefaultClassifyTopic   = "juris.cases.classified"
	DefaultKafkaTimeout    = 10 * time.Second
	DefaultKafkaMaxRetries = 3
	DefaultPetitionBucket  = "petitions"
	DefaultMinIORegion     = "us-east-1"

	DefaultDataJudBaseURL = "https://api-publica.datajud.cnj.jus.br"
	DefaultDataJudTimeout = 30 * time.Second
	DefaultHistorySize    = 50

	DefaultEmbeddingModel   = "text-embedding-004"
	DefaultEmbeddingTimeout = 30 * time.Second
	DefaultMaxDocumentChars = 6000
	DefaultTopTopics        = 10
	DefaultMinRecords       = 5
	DefaultEmbeddingTTL     = 7 * 24 * time.Hour

	DefaultLLMBaseURL         = "https://api.groq.com/openai/v1"
	DefaultLLMFallbackModel   = "llama-3.3-70b-versatile"
	DefaultDossierTemperature = 0.4
	DefaultOpinionTemperature = 0.3
	DefaultDossierSampleSize  = 50
	DefaultDossierTTL         = 24 * time.Hour
	DefaultLLMTimeout         = 120 * time.Second
	DefaultLLMRouteTimeout    = 5 * time.Minute

	DefaultDomainLabel = "Outros"
	DefaultRiskLabel   = "Indefinido"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "prologos"
	DefaultMetricsPath      = "/metrics"
)

// DefaultLLMPrefixes is the model-name preference order used during discovery.
func DefaultLLMPrefixes() []string { return []string{"llama3", "llama"} }

// DefaultDomainRules returns the legal-domain table in evaluation order.
func DefaultDomainRules() []RuleConfig {
	return []RuleConfig{
		{Label: "consumidor", Keywords: []string{"banco", "telefonia", "indemnização", "danos morais", "consumidor", "aérea"}},
		{Label: "trabalhista", Keywords: []string{"horas extras", "rescisão", "trabalho", "vínculo"}},
		{Label: "tributario", Keywords: []string{"imposto", "taxa", "execução fiscal", "icms"}},
		{Label: "civil", Keywords: []string{"contrato", "posse", "família", "sucessões"}},
	}
}

// DefaultRiskRules returns the risk-tier table in evaluation order.
func DefaultRiskRules() []RuleConfig {
	return []RuleConfig{
		{Label: "alto", Keywords: []string{"tutela", "liminar", "urgência", "crime"}},
		{Label: "medio", Keywords: []string{"indenização", "cobranca", "monitória"}},
		{Label: "baixo", Keywords: []string{"homologação", "administrativo"}},
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields in cfg. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.UpstreamRate > 0 && cfg.Server.UpstreamBurst == 0 {
		cfg.Server.UpstreamBurst = DefaultUpstreamBurst
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDBDriver
	}
	if cfg.Database.Driver == DriverPostgres {
		if cfg.Database.Host == "" {
			cfg.Database.Host = DefaultDBHost
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = DefaultDBPort
		}
		if cfg.Database.User == "" {
			cfg.Database.User = DefaultDBUser
		}
		if cfg.Database.DBName == "" {
			cfg.Database.DBName = DefaultDBName
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = DefaultDBSSLMode
		}
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDBPath
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnLifetime
	}
	if cfg.Database.StatementTimeout == 0 {
		cfg.Database.StatementTimeout = DefaultDBStmtTimeout
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultRequestTopic
	}
	if cfg.Kafka.ClonedTopic == "" {
		cfg.Kafka.ClonedTopic = DefaultClonedTopic
	}
	if cfg.Kafka.ClassifyTopic == "" {
		cfg.Kafka.ClassifyTopic = DefaultClassifyTopic
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaTimeout
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.PetitionBucket == "" {
		cfg.MinIO.PetitionBucket = DefaultPetitionBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	// ── DataJud ───────────────────────────────────────────────────────────────
	if cfg.DataJud.BaseURL == "" {
		cfg.DataJud.BaseURL = DefaultDataJudBaseURL
	}
	if cfg.DataJud.Timeout == 0 {
		cfg.DataJud.Timeout = DefaultDataJudTimeout
	}
	if cfg.DataJud.HistorySize == 0 {
		cfg.DataJud.HistorySize = DefaultHistorySize
	}

	// ── Embedding ─────────────────────────────────────────────────────────────
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = DefaultEmbeddingTimeout
	}
	if cfg.Embedding.MaxDocumentChars == 0 {
		cfg.Embedding.MaxDocumentChars = DefaultMaxDocumentChars
	}
	if cfg.Embedding.TopTopics == 0 {
		cfg.Embedding.TopTopics = DefaultTopTopics
	}
	if cfg.Embedding.MinRecords == 0 {
		cfg.Embedding.MinRecords = DefaultMinRecords
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = DefaultEmbeddingTTL
	}

	// ── LLM ───────────────────────────────────────────────────────────────────
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if len(cfg.LLM.PreferredPrefixes) == 0 {
		cfg.LLM.PreferredPrefixes = DefaultLLMPrefixes()
	}
	if cfg.LLM.FallbackModel == "" {
		cfg.LLM.FallbackModel = DefaultLLMFallbackModel
	}
	if cfg.LLM.DossierTemperature == 0 {
		cfg.LLM.DossierTemperature = DefaultDossierTemperature
	}
	if cfg.LLM.OpinionTemperature == 0 {
		cfg.LLM.OpinionTemperature = DefaultOpinionTemperature
	}
	if cfg.LLM.DossierSampleSize == 0 {
		cfg.LLM.DossierSampleSize = DefaultDossierSampleSize
	}
	if cfg.LLM.DossierTTL == 0 {
		cfg.LLM.DossierTTL = DefaultDossierTTL
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.RouteTimeout == 0 {
		cfg.LLM.RouteTimeout = DefaultLLMRouteTimeout
	}

	// ── Classifier ────────────────────────────────────────────────────────────
	if len(cfg.Classifier.Domains) == 0 {
		cfg.Classifier.Domains = DefaultDomainRules()
	}
	if len(cfg.Classifier.Risks) == 0 {
		cfg.Classifier.Risks = DefaultRiskRules()
	}
	if cfg.Classifier.DefaultDomain == "" {
		cfg.Classifier.DefaultDomain = DefaultDomainLabel
	}
	if cfg.Classifier.DefaultRisk == "" {
		cfg.Classifier.DefaultRisk = DefaultRiskLabel
	}

	// ── Log / Metrics ─────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// registerKeys declares every scalar key on v so that AutomaticEnv resolves
// JURIS_* variables during Unmarshal even when no config file sets them.
// Values are left for ApplyDefaults.
func registerKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.max_body_size",
		"server.shutdown_timeout", "server.allowed_origins", "server.upstream_rate", "server.upstream_burst",
		"database.driver", "database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.path", "database.max_open_conns",
		"database.max_idle_conns", "database.conn_max_lifetime", "database.statement_timeout",
		"database.auto_migrate",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.key_prefix",
		"kafka.brokers", "kafka.group_id", "kafka.request_topic", "kafka.cloned_topic", "kafka.classify_topic",
		"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.use_ssl", "minio.region",
		"minio.petition_bucket",
		"datajud.base_url", "datajud.api_key", "datajud.timeout", "datajud.history_size",
		"embedding.api_key", "embedding.model", "embedding.max_document_chars", "embedding.top_topics",
		"embedding.min_records", "embedding.cache_ttl",
		"llm.base_url", "llm.api_key", "llm.fallback_model", "llm.dossier_temperature",
		"llm.opinion_temperature", "llm.timeout", "llm.route_timeout",
		"log.level", "log.format",
		"metrics.enabled", "metrics.namespace", "metrics.path",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

//Personal.AI order the ending
