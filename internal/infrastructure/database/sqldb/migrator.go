package sqldb

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrator applies the embedded schema migrations for the connection's
// dialect.
type Migrator struct {
	conn   *Connection
	logger logging.Logger
}

// NewMigrator returns a Migrator bound to conn.
func NewMigrator(conn *Connection, log logging.Logger) *Migrator {
	return &Migrator{conn: conn, logger: log}
}

// open builds a migrate instance. PostgreSQL migrations run on their own
// connection (closed by release); SQLite ones share the pool, since an
// in-memory database only exists on that pool, and release leaves it open.
func (m *Migrator) open() (*migrate.Migrate, func(), error) {
	dialect := m.conn.Dialect()
	src, err := iofs.New(migrationFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	if dialect == DialectSQLite {
		driver, err := sqlite.WithInstance(m.conn.DB(), &sqlite.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		mg, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
		return mg, func() {}, nil
	}

	mg, err := migrate.NewWithSourceInstance("iofs", src, BuildDSN(m.conn.Config()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, func() { _, _ = mg.Close() }, nil
}

// Up applies every pending migration. No pending migration is not an error.
func (m *Migrator) Up() error {
	mg, release, err := m.open()
	if err != nil {
		return err
	}
	defer release()

	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		m.logger.Warn("Failed to get migration version", logging.Err(err))
	}
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	mg, release, err := m.open()
	if err != nil {
		return err
	}
	defer release()

	if err := mg.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	return nil
}

// Status returns the applied version and the dirty flag. A database with no
// migrations reports version 0.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	mg, release, err := m.open()
	if err != nil {
		return 0, false, err
	}
	defer release()

	version, dirty, err = mg.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force marks version as applied without running it. Used to recover from a
// dirty state.
func (m *Migrator) Force(version int) error {
	mg, release, err := m.open()
	if err != nil {
		return err
	}
	defer release()

	if err := mg.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

//Personal.AI order the ending
