package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

var adjudicatorColumns = []string{"id", "nome", "vara", "tribunal_id"}

type adjudicatorRepo struct {
	base
	log logging.Logger
}

// NewAdjudicatorRepository returns a repository over the pool of conn.
func NewAdjudicatorRepository(conn *sqldb.Connection, log logging.Logger) judiciary.AdjudicatorRepository {
	return newAdjudicatorRepo(conn.DB(), conn.Dialect(), log)
}

func newAdjudicatorRepo(exec queryExecutor, dialect sqldb.Dialect, log logging.Logger) *adjudicatorRepo {
	return &adjudicatorRepo{base: newBase(exec, dialect), log: log}
}

func scanAdjudicator(s scanner) (*judiciary.Adjudicator, error) {
	a := &judiciary.Adjudicator{}
	if err := s.Scan(&a.ID, &a.Name, &a.Vara, &a.UnitID); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *adjudicatorRepo) findOne(ctx context.Context, where sq.Sqlizer, label string) (*judiciary.Adjudicator, error) {
	row, err := r.queryRow(ctx, r.sb.Select(adjudicatorColumns...).From(tableAdjudicators).Where(where))
	if err != nil {
		return nil, err
	}
	a, err := scanAdjudicator(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeAdjudicatorNotFound, "adjudicator not found: "+label)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load adjudicator")
	}
	return a, nil
}

func (r *adjudicatorRepo) FindByName(ctx context.Context, name string) (*judiciary.Adjudicator, error) {
	return r.findOne(ctx, sq.Eq{"nome": name}, name)
}

func (r *adjudicatorRepo) GetByID(ctx context.Context, id int64) (*judiciary.Adjudicator, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, fmt.Sprintf("id=%d", id))
}

func (r *adjudicatorRepo) Create(ctx context.Context, a *judiciary.Adjudicator) error {
	row, err := r.queryRow(ctx, r.sb.Insert(tableAdjudicators).
		Columns("nome", "vara", "tribunal_id").
		Values(a.Name, a.Vara, a.UnitID).
		Suffix("ON CONFLICT (nome) DO NOTHING RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&a.ID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.log.Debug("adjudicator insert lost a race", logging.String("name", a.Name))
			return errors.New(errors.ErrCodePersistenceConflict, "adjudicator already exists: "+a.Name)
		}
		return translateWriteError(err, "adjudicator")
	}
	return nil
}

func (r *adjudicatorRepo) List(ctx context.Context, skip, limit int) ([]*judiciary.Adjudicator, error) {
	q := r.sb.Select(adjudicatorColumns...).
		From(tableAdjudicators).
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(skip))

	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list adjudicators")
	}
	defer rows.Close()

	var out []*judiciary.Adjudicator
	for rows.Next() {
		a, err := scanAdjudicator(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan adjudicator")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate adjudicators")
	}
	return out, nil
}

func (r *adjudicatorRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From(tableAdjudicators))
}

//Personal.AI order the ending
