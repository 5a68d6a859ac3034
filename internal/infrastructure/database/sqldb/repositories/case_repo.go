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

var caseColumns = []string{"id", "numero_processo", "texto_decisao", "resultado", "tema", "data_decisao", "juiz_id"}

type caseRepo struct {
	base
	log logging.Logger
}

// NewCaseRepository returns a repository over the pool of conn.
func NewCaseRepository(conn *sqldb.Connection, log logging.Logger) judiciary.CaseRepository {
	return newCaseRepo(conn.DB(), conn.Dialect(), log)
}

func newCaseRepo(exec queryExecutor, dialect sqldb.Dialect, log logging.Logger) *caseRepo {
	return &caseRepo{base: newBase(exec, dialect), log: log}
}

// scanCase tolerates NULL text, label and topic; they come back empty.
func scanCase(s scanner) (*judiciary.CaseRecord, error) {
	var (
		c                  judiciary.CaseRecord
		text, label, topic sql.NullString
		filed              nullDate
	)
	if err := s.Scan(&c.ID, &c.Number, &text, &label, &topic, &filed, &c.AdjudicatorID); err != nil {
		return nil, err
	}
	c.Text = text.String
	c.Label = label.String
	c.Topic = topic.String
	c.FiledOn = filed.ptr()
	return &c, nil
}

func (r *caseRepo) list(ctx context.Context, q sq.SelectBuilder, what string) ([]*judiciary.CaseRecord, error) {
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list "+what)
	}
	defer rows.Close()

	var out []*judiciary.CaseRecord
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan case record")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate "+what)
	}
	return out, nil
}

func (r *caseRepo) FindByNumber(ctx context.Context, number string) (*judiciary.CaseRecord, error) {
	row, err := r.queryRow(ctx, r.sb.Select(caseColumns...).
		From(tableCases).
		Where(sq.Eq{"numero_processo": number}).
		OrderBy("id DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	c, err := scanCase(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("case record not found: " + number)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load case record")
	}
	return c, nil
}

func (r *caseRepo) Create(ctx context.Context, c *judiciary.CaseRecord) error {
	row, err := r.queryRow(ctx, r.sb.Insert(tableCases).
		Columns("numero_processo", "texto_decisao", "resultado", "tema", "data_decisao", "juiz_id").
		Values(c.Number, c.Text, c.Label, c.Topic, dateValue(c.FiledOn), c.AdjudicatorID).
		Suffix("ON CONFLICT (numero_processo) DO NOTHING RETURNING id"))
	if err != nil {
		return err
	}
	if err := row.Scan(&c.ID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.log.Debug("case insert lost a race", logging.String("case_number", c.Number))
			return errors.New(errors.ErrCodePersistenceConflict, "case record already exists: "+c.Number)
		}
		return translateWriteError(err, "case record")
	}
	return nil
}

func (r *caseRepo) updateColumn(ctx context.Context, id int64, column, value string) error {
	res, err := r.execute(ctx, r.sb.Update(tableCases).Set(column, value).Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update case record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound(fmt.Sprintf("case record not found: id=%d", id))
	}
	return nil
}

func (r *caseRepo) UpdateText(ctx context.Context, id int64, text string) error {
	return r.updateColumn(ctx, id, "texto_decisao", text)
}

func (r *caseRepo) UpdateLabel(ctx context.Context, id int64, label string) error {
	return r.updateColumn(ctx, id, "resultado", label)
}

func (r *caseRepo) ListAll(ctx context.Context) ([]*judiciary.CaseRecord, error) {
	return r.list(ctx, r.sb.Select(caseColumns...).From(tableCases).OrderBy("id ASC"), "case records")
}

func (r *caseRepo) ListByIDs(ctx context.Context, ids []int64) ([]*judiciary.CaseRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, r.sb.Select(caseColumns...).
		From(tableCases).
		Where(sq.Eq{"id": ids}).
		OrderBy("id ASC"), "case records")
}

// SearchByTopic matches with strpos/instr rather than LIKE so that % and _
// in the fragment are literal and the match stays case-sensitive on both
// dialects. An empty fragment matches every record.
func (r *caseRepo) SearchByTopic(ctx context.Context, fragment string, limit int) ([]*judiciary.CaseRecord, error) {
	fn := "strpos"
	if r.dialect == sqldb.DialectSQLite {
		fn = "instr"
	}
	q := r.sb.Select(caseColumns...).
		From(tableCases).
		OrderBy("id ASC").
		Limit(uint64(limit))
	if fragment != "" {
		q = q.Where(sq.Expr(fn+"(tema, ?) > 0", fragment))
	}
	return r.list(ctx, q, "case records by topic")
}

func (r *caseRepo) ListByAdjudicator(ctx context.Context, adjudicatorID int64, limit int) ([]*judiciary.CaseRecord, error) {
	q := r.sb.Select(caseColumns...).
		From(tableCases).
		Where(sq.Eq{"juiz_id": adjudicatorID}).
		OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.list(ctx, q, "adjudicator case records")
}

func (r *caseRepo) TopicDistribution(ctx context.Context, adjudicatorID int64, limit int) ([]judiciary.TopicCount, error) {
	q := r.sb.Select("COALESCE(tema, '"+judiciary.DefaultTopic+"') AS topic", "COUNT(*) AS total").
		From(tableCases).
		Where(sq.Eq{"juiz_id": adjudicatorID}).
		GroupBy("topic").
		OrderBy("total DESC", "topic ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to aggregate topics")
	}
	defer rows.Close()

	var out []judiciary.TopicCount
	for rows.Next() {
		var tc judiciary.TopicCount
		if err := rows.Scan(&tc.Topic, &tc.Count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan topic count")
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate topic counts")
	}
	return out, nil
}

func (r *caseRepo) CountByAdjudicator(ctx context.Context, adjudicatorID int64) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From(tableCases).Where(sq.Eq{"juiz_id": adjudicatorID}))
}

func (r *caseRepo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, r.sb.Select("COUNT(*)").From(tableCases))
}

func (r *caseRepo) PurgeDuplicates(ctx context.Context) (int64, error) {
	keep := r.sb.Select("MAX(id)").From(tableCases).GroupBy("numero_processo")
	keepSQL, keepArgs, err := keep.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to build query")
	}

	res, err := r.execute(ctx, r.sb.Delete(tableCases).Where("id NOT IN ("+keepSQL+")", keepArgs...))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to purge duplicate case records")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read purge result")
	}
	return n, nil
}

//Personal.AI order the ending
