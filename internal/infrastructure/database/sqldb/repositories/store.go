package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// repoSet binds the three repositories to one executor.
type repoSet struct {
	units        *unitRepo
	adjudicators *adjudicatorRepo
	cases        *caseRepo
}

func newRepoSet(exec queryExecutor, dialect sqldb.Dialect, log logging.Logger) repoSet {
	return repoSet{
		units:        newUnitRepo(exec, dialect, log),
		adjudicators: newAdjudicatorRepo(exec, dialect, log),
		cases:        newCaseRepo(exec, dialect, log),
	}
}

func (s repoSet) Units() judiciary.JudicialUnitRepository       { return s.units }
func (s repoSet) Adjudicators() judiciary.AdjudicatorRepository { return s.adjudicators }
func (s repoSet) Cases() judiciary.CaseRepository               { return s.cases }

// Store serves autocommit reads through its repositories and opens units of
// work for batched writes.
type Store struct {
	repoSet
	conn *sqldb.Connection
	log  logging.Logger
}

var (
	_ judiciary.Repositories      = (*Store)(nil)
	_ judiciary.UnitOfWorkFactory = (*Store)(nil)
)

// NewStore builds a Store over conn.
func NewStore(conn *sqldb.Connection, log logging.Logger) *Store {
	return &Store{
		repoSet: newRepoSet(conn.DB(), conn.Dialect(), log),
		conn:    conn,
		log:     log,
	}
}

// Begin opens a transaction-backed unit of work.
func (s *Store) Begin(ctx context.Context) (judiciary.UnitOfWork, error) {
	tx, err := s.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	return &unitOfWork{
		repoSet: newRepoSet(tx, s.conn.Dialect(), s.log),
		tx:      tx,
		log:     s.log,
	}, nil
}

type unitOfWork struct {
	repoSet
	tx   *sql.Tx
	log  logging.Logger
	done bool
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return errors.Internal("unit of work already finished")
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
		u.log.Warn("rollback failed", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to roll back transaction")
	}
	return nil
}

//Personal.AI order the ending
