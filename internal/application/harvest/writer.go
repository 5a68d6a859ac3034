package harvest

import (
	"context"
	"strings"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// Batch is one upstream result set and the court it was read from.
type Batch struct {
	Court        string
	Jurisdiction string
	Records      []judiciary.CaseSource
}

// WriteStats counts what a batch did to the store. WithText counts every
// record of the batch for which a decision excerpt was mined, whether it was
// inserted or already stored.
type WriteStats struct {
	New      int `json:"novos"`
	WithText int `json:"com_teor"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// StoreWriter upserts harvested records. It never commits: the unit of work
// belongs to the caller.
type StoreWriter struct {
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func NewStoreWriter(logger logging.Logger, metrics *prometheus.AppMetrics) *StoreWriter {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &StoreWriter{logger: logger, metrics: metrics}
}

// Write resolves the court, then every adjudicating body and record of batch.
// New records are inserted with the pending label. Stored records only get
// their text replaced when this pass mined an excerpt that differs from it.
func (w *StoreWriter) Write(ctx context.Context, uow judiciary.UnitOfWork, batch Batch) (WriteStats, error) {
	var stats WriteStats

	unit, err := w.resolveUnit(ctx, uow.Units(), batch.Court, batch.Jurisdiction)
	if err != nil {
		return stats, err
	}

	adjudicators := make(map[string]*judiciary.Adjudicator)
	for _, src := range batch.Records {
		number := strings.TrimSpace(src.Number)
		if number == "" {
			w.logger.Warn("record without case number skipped", logging.String("court", batch.Court))
			stats.Skipped++
			continue
		}

		excerpt, mined := judiciary.MineDecisionText(src)
		if mined {
			stats.WithText++
		}
		topic := src.Subjects.Topic()
		text := judiciary.ComposeDecisionText(topic, excerpt)

		name := judiciary.AdjudicatorName(src.Body.Name)
		adj, ok := adjudicators[name]
		if !ok {
			adj, err = w.resolveAdjudicator(ctx, uow.Adjudicators(), unit, src.Body.Name)
			if err != nil {
				return stats, err
			}
			adjudicators[name] = adj
		}

		existing, err := uow.Cases().FindByNumber(ctx, number)
		if err != nil && !errors.IsNotFound(err) {
			return stats, err
		}

		if existing == nil {
			rec := &judiciary.CaseRecord{
				Number:        number,
				Text:          text,
				Label:         judiciary.PendingLabel,
				Topic:         topic,
				FiledOn:       judiciary.ParseFilingDate(src.FiledAt),
				AdjudicatorID: adj.ID,
			}
			err := uow.Cases().Create(ctx, rec)
			if err == nil {
				stats.New++
				continue
			}
			if !errors.IsConflict(err) {
				return stats, err
			}
			w.conflict("case_record", number)
			if existing, err = uow.Cases().FindByNumber(ctx, number); err != nil {
				return stats, errors.Wrap(err, errors.ErrCodePersistenceConflict, "case record missing after conflict: "+number)
			}
		}

		if !mined || existing.HasMinedText() {
			stats.Skipped++
			continue
		}
		if err := uow.Cases().UpdateText(ctx, existing.ID, text); err != nil {
			return stats, err
		}
		stats.Updated++
	}

	w.logger.Info("batch written",
		logging.String("court", batch.Court),
		logging.Int("records", len(batch.Records)),
		logging.Int("new", stats.New),
		logging.Int("with_text", stats.WithText),
		logging.Int("updated", stats.Updated))
	return stats, nil
}

// resolveUnit is a get-or-create that tolerates one lost insert race.
func (w *StoreWriter) resolveUnit(ctx context.Context, repo judiciary.JudicialUnitRepository, name, jurisdiction string) (*judiciary.JudicialUnit, error) {
	u, err := repo.FindByName(ctx, name)
	if err == nil {
		return u, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	u = &judiciary.JudicialUnit{Name: name, Jurisdiction: jurisdiction}
	if err = repo.Create(ctx, u); err == nil {
		return u, nil
	}
	if !errors.IsConflict(err) {
		return nil, err
	}
	w.conflict("judicial_unit", name)
	if u, err = repo.FindByName(ctx, name); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceConflict, "judicial unit missing after conflict: "+name)
	}
	return u, nil
}

func (w *StoreWriter) resolveAdjudicator(ctx context.Context, repo judiciary.AdjudicatorRepository, unit *judiciary.JudicialUnit, vara string) (*judiciary.Adjudicator, error) {
	name := judiciary.AdjudicatorName(vara)
	a, err := repo.FindByName(ctx, name)
	if err == nil {
		return a, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	a = &judiciary.Adjudicator{Name: name, Vara: judiciary.NormalizeVara(vara), UnitID: unit.ID}
	if err = repo.Create(ctx, a); err == nil {
		return a, nil
	}
	if !errors.IsConflict(err) {
		return nil, err
	}
	w.conflict("adjudicator", name)
	if a, err = repo.FindByName(ctx, name); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistenceConflict, "adjudicator missing after conflict: "+name)
	}
	return a, nil
}

func (w *StoreWriter) conflict(entity, key string) {
	w.metrics.StoreConflicts.WithLabelValues(entity).Inc()
	w.logger.Warn("insert lost a race; re-reading", logging.String("entity", entity), logging.String("key", key))
}

//Personal.AI order the ending
