// Package sqldb owns the relational store connection. PostgreSQL (through the
// pgx stdlib driver) is used in production; the pure-Go SQLite driver backs
// single-node deployments, the CLI and tests.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// Dialect selects SQL flavour and driver.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// driverName returns the database/sql driver registered for d.
func (d Dialect) driverName() string {
	if d == DialectSQLite {
		return "sqlite"
	}
	return "pgx"
}

// sqlOpen is a variable to allow mocking in tests.
var sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// Config holds the connection parameters.
type Config struct {
	Dialect          Dialect
	Host             string
	Port             int
	Database         string
	Username         string
	Password         string
	SSLMode          string
	Path             string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
}

// Connection manages the connection pool.
type Connection struct {
	db      *sql.DB
	cfg     Config
	dialect Dialect
	logger  logging.Logger
	once    sync.Once
}

// NewConnection opens the pool and verifies it with a ping.
func NewConnection(cfg Config, log logging.Logger) (*Connection, error) {
	if cfg.Dialect == "" {
		cfg.Dialect = DialectPostgres
	}
	if cfg.Dialect != DialectPostgres && cfg.Dialect != DialectSQLite {
		return nil, errors.InvalidParam(fmt.Sprintf("unsupported database dialect %q", cfg.Dialect))
	}

	db, err := sqlOpen(cfg.Dialect.driverName(), BuildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open database connection")
	}

	if cfg.Dialect == DialectSQLite {
		// A single writer avoids SQLITE_BUSY inside units of work.
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		} else {
			db.SetMaxOpenConns(10)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		} else {
			db.SetMaxIdleConns(5)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	log.Info("Connected to relational store",
		logging.String("dialect", string(cfg.Dialect)),
		logging.String("host", cfg.Host),
		logging.String("database", databaseLabel(cfg)),
	)

	return &Connection{
		db:      db,
		cfg:     cfg,
		dialect: cfg.Dialect,
		logger:  log,
	}, nil
}

// NewConnectionWithDB wraps an existing pool (for testing).
func NewConnectionWithDB(db *sql.DB, dialect Dialect, log logging.Logger) *Connection {
	return &Connection{
		db:      db,
		cfg:     Config{Dialect: dialect},
		dialect: dialect,
		logger:  log,
	}
}

// DB returns the underlying sql.DB instance.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect of the pool.
func (c *Connection) Dialect() Dialect {
	return c.dialect
}

// Config returns the parameters the connection was opened with.
func (c *Connection) Config() Config {
	return c.cfg
}

// HealthCheck pings the store and warns on pool saturation.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}

	stats := c.Stats()
	if stats.OpenConnections > 0 && stats.MaxOpenConnections > 1 {
		usage := float64(stats.InUse) / float64(stats.OpenConnections)
		if usage > 0.8 {
			c.logger.Warn("High database connection pool usage",
				logging.Int("in_use", stats.InUse),
				logging.Int("open", stats.OpenConnections),
				logging.Float64("usage", usage),
			)
		}
	}
	return nil
}

// Stats returns pool statistics.
func (c *Connection) Stats() sql.DBStats {
	return c.db.Stats()
}

// Close closes the pool once.
func (c *Connection) Close() error {
	var err error
	c.once.Do(func() {
		err = c.db.Close()
		if err == nil {
			c.logger.Info("Closed relational store connection")
		} else {
			c.logger.Error("Failed to close relational store connection", logging.Err(err))
		}
	})
	return err
}

// BuildDSN renders the driver connection string for cfg.
func BuildDSN(cfg Config) string {
	if cfg.Dialect == DialectSQLite {
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.Database,
	}

	q := u.Query()
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	} else {
		q.Set("sslmode", "disable")
	}
	if cfg.StatementTimeout > 0 {
		q.Set("statement_timeout", fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds()))
	} else {
		q.Set("statement_timeout", "30000")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func databaseLabel(cfg Config) string {
	if cfg.Dialect == DialectSQLite {
		return cfg.Path
	}
	return cfg.Database
}

//Personal.AI order the ending
