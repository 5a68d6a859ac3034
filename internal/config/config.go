// Package config defines the configuration structures for the jurimetrics
// platform. Only plain data types and validation live in this file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`

	// UpstreamRate throttles, per client, the endpoints that call DataJud or
	// the text-generation provider. Zero disables the throttle.
	UpstreamRate  float64 `mapstructure:"upstream_rate"`
	UpstreamBurst int     `mapstructure:"upstream_burst"`
}

// DatabaseConfig holds relational store parameters. Driver is "postgres" or
// "sqlite"; for sqlite only Path is used.
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	Path             string        `mapstructure:"path"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables the
// embedding and dossier caches.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds harvest queue parameters. No brokers disables the
// asynchronous harvest path and event publishing.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	GroupID       string        `mapstructure:"group_id"`
	RequestTopic  string        `mapstructure:"request_topic"`
	ClonedTopic   string        `mapstructure:"cloned_topic"`
	ClassifyTopic string        `mapstructure:"classify_topic"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// MinIOConfig holds the petition archive parameters. An empty Endpoint
// disables archiving.
type MinIOConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	Region         string `mapstructure:"region"`
	PetitionBucket string `mapstructure:"petition_bucket"`
}

// DataJudConfig holds the public case-record API parameters.
type DataJudConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HistorySize int           `mapstructure:"history_size"`
}

// EmbeddingConfig holds adherence scoring parameters.
type EmbeddingConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxDocumentChars int           `mapstructure:"max_document_chars"`
	TopTopics        int           `mapstructure:"top_topics"`
	MinRecords       int           `mapstructure:"min_records"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

// LLMConfig holds the text-generation provider parameters.
type LLMConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	PreferredPrefixes  []string      `mapstructure:"preferred_prefixes"`
	FallbackModel      string        `mapstructure:"fallback_model"`
	DossierTemperature float64       `mapstructure:"dossier_temperature"`
	OpinionTemperature float64       `mapstructure:"opinion_temperature"`
	DossierSampleSize  int           `mapstructure:"dossier_sample_size"`
	DossierTTL         time.Duration `mapstructure:"dossier_ttl"`
	Timeout            time.Duration `mapstructure:"timeout"`

	// RouteTimeout bounds a whole dossier or opinion request, across every
	// model Complete tries. It overrides server.write_timeout on those routes.
	RouteTimeout time.Duration `mapstructure:"route_timeout"`
}

// RuleConfig is one ordered entry of a keyword rule table.
type RuleConfig struct {
	Label    string   `mapstructure:"label"`
	Keywords []string `mapstructure:"keywords"`
}

// ClassifierConfig holds the ordered rule tables. Order is significant: the
// first matching entry wins.
type ClassifierConfig struct {
	Domains       []RuleConfig `mapstructure:"domains"`
	Risks         []RuleConfig `mapstructure:"risks"`
	DefaultDomain string       `mapstructure:"default_domain"`
	DefaultRisk   string       `mapstructure:"default_risk"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	DataJud    DataJudConfig    `mapstructure:"datajud"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required for postgres")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required for postgres")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required for postgres")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("config: database.driver %q is invalid; expected postgres|sqlite", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.max_open_conns must be >= 1, got %d", c.Database.MaxOpenConns)
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required when brokers are set")
	}

	if u, err := url.Parse(c.DataJud.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: datajud.base_url %q is not an absolute URL", c.DataJud.BaseURL)
	}
	if c.DataJud.Timeout <= 0 {
		return fmt.Errorf("config: datajud.timeout must be positive")
	}
	if c.DataJud.HistorySize < 1 || c.DataJud.HistorySize > DefaultHistorySize {
		return fmt.Errorf("config: datajud.history_size must be in [1, %d], got %d", DefaultHistorySize, c.DataJud.HistorySize)
	}

	if c.Embedding.MaxDocumentChars < 1 {
		return fmt.Errorf("config: embedding.max_document_chars must be >= 1")
	}
	if c.Embedding.TopTopics < 1 || c.Embedding.TopTopics > 10 {
		return fmt.Errorf("config: embedding.top_topics must be in [1, 10], got %d", c.Embedding.TopTopics)
	}

	if c.LLM.RouteTimeout < c.LLM.Timeout {
		return fmt.Errorf("config: llm.route_timeout (%s) must be >= llm.timeout (%s)", c.LLM.RouteTimeout, c.LLM.Timeout)
	}
	if c.LLM.FallbackModel == "" {
		return fmt.Errorf("config: llm.fallback_model is required")
	}
	for name, t := range map[string]float64{"dossier_temperature": c.LLM.DossierTemperature, "opinion_temperature": c.LLM.OpinionTemperature} {
		if t < 0 || t > 2 {
			return fmt.Errorf("config: llm.%s %.2f is out of range [0, 2]", name, t)
		}
	}

	if err := validateRules("domains", c.Classifier.Domains); err != nil {
		return err
	}
	if err := validateRules("risks", c.Classifier.Risks); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func validateRules(table string, rules []RuleConfig) error {
	if len(rules) == 0 {
		return fmt.Errorf("config: classifier.%s must not be empty", table)
	}
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("config: classifier.%s[%d] has an empty label", table, i)
		}
		if _, dup := seen[r.Label]; dup {
			return fmt.Errorf("config: classifier.%s label %q is duplicated", table, r.Label)
		}
		seen[r.Label] = struct{}{}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("config: classifier.%s[%s] has no keywords", table, r.Label)
		}
	}
	return nil
}

//Personal.AI order the ending
