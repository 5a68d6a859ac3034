package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type unitRepo struct {
	base
	log logging.Logger
}

// NewJudicialUnitRepository returns a repository over the pool of conn.
func NewJudicialUnitRepository(conn *sqldb.Connection, log logging.Logger) judiciary.JudicialUnitRepository {
	return newUnitRepo(conn.DB(), conn.Dialect(), log)
}

func newUnitRepo(exec queryExecutor, dialect sqldb.Dialect, log logging.Logger) *unitRepo {
	return &unitRepo{base: newBase(exec, dialect), log: log}
}

func (r *unitRepo) FindByName(ctx context.Context, name string) (*judiciary.JudicialUnit, error) {
	row, err := r.queryRow(ctx, r.sb.Select("id", "nome", "estado").
		From(tableUnits).
		Where(sq.Eq{"nome": name}))
	if err != nil {
		return nil, err
	}

	u := &judiciary.JudicialUnit{}
	if err := row.Scan(&u.ID, &u.Name, &u.Jurisdiction); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("judicial unit not found: " + name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load judicial unit")
	}
	return u, nil
}

func (r *unitRepo) Create(ctx context.Context, u *judiciary.JudicialUnit) error {
	row, err := r.queryRow(ctx, r.sb.Insert(tableUnits).
		Columns("nome", "estado").
		Values(u.Name, u.Jurisdiction).
		Suffix("ON CONFLICT (nome) DO NOTHING RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&u.ID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.log.Debug("judicial unit insert lost a race", logging.String("name", u.Name))
			return errors.New(errors.ErrCodePersistenceConflict, "judicial unit already exists: "+u.Name)
		}
		return translateWriteError(err, "judicial unit")
	}
	return nil
}

func (r *unitRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From(tableUnits))
}

//Personal.AI order the ending
