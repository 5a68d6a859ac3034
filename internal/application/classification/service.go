// Package classification relabels stored case records with the rule-based
// "[DOMAIN] Risco: TIER" classifier.
package classification

import (
	"context"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/config"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// Result summarises one classification pass.
type Result struct {
	Scanned  int           `json:"scanned"`
	Updated  int           `json:"updated"`
	Duration time.Duration `json:"duration_ns"`
}

// EventPublisher delivers the CasesClassified event.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ev common.DomainEvent) error
}

type Option func(*Service)

// WithPublisher announces every pass that changed at least one label.
func WithPublisher(p EventPublisher, topic string) Option {
	return func(s *Service) {
		s.publisher = p
		s.topic = topic
	}
}

type Service struct {
	classifier *judiciary.Classifier
	uow        judiciary.UnitOfWorkFactory
	publisher  EventPublisher
	topic      string
	logger     logging.Logger
	metrics    *prometheus.AppMetrics
}

func NewService(classifier *judiciary.Classifier, uow judiciary.UnitOfWorkFactory, logger logging.Logger, metrics *prometheus.AppMetrics, opts ...Option) *Service {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	s := &Service{classifier: classifier, uow: uow, logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildClassifier turns the configured rule tables into a Classifier.
func BuildClassifier(cfg config.ClassifierConfig) (*judiciary.Classifier, error) {
	domains, err := judiciary.NewRuleTable(toRules(cfg.Domains))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleTableInvalid, "invalid domain rule table")
	}
	risks, err := judiciary.NewRuleTable(toRules(cfg.Risks))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleTableInvalid, "invalid risk rule table")
	}
	c, err := judiciary.NewClassifier(domains, risks, cfg.DefaultDomain, cfg.DefaultRisk)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRuleTableInvalid, "invalid classifier configuration")
	}
	return c, nil
}

func toRules(in []config.RuleConfig) []judiciary.Rule {
	out := make([]judiciary.Rule, 0, len(in))
	for _, r := range in {
		out = append(out, judiciary.Rule{Label: r.Label, Keywords: r.Keywords})
	}
	return out
}

// Run classifies every stored record.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	return s.run(ctx, nil)
}

// RunSubset classifies only the records with the given ids.
func (s *Service) RunSubset(ctx context.Context, ids []int64) (*Result, error) {
	if len(ids) == 0 {
		return &Result{}, nil
	}
	return s.run(ctx, ids)
}

// run reads, relabels and commits inside one unit of work. A label is only
// written when it differs from the stored one, so a second pass over
// unchanged data writes nothing.
func (s *Service) run(ctx context.Context, ids []int64) (*Result, error) {
	start := time.Now()
	res, err := s.classify(ctx, ids)
	if err != nil {
		s.metrics.ClassifyRunsTotal.WithLabelValues("error").Inc()
		s.logger.Error("classification failed", logging.Err(err))
		return nil, err
	}
	res.Duration = time.Since(start)

	s.metrics.ClassifyRunsTotal.WithLabelValues("success").Inc()
	s.metrics.ClassifyUpdated.WithLabelValues().Add(float64(res.Updated))
	s.logger.Info("classification finished",
		logging.Int("scanned", res.Scanned),
		logging.Int("updated", res.Updated),
		logging.Duration("took", res.Duration))

	if res.Updated > 0 && s.publisher != nil && s.topic != "" {
		ev := judiciary.NewCasesClassified(res.Scanned, res.Updated)
		if err := s.publisher.PublishEvent(ctx, s.topic, ev); err != nil {
			s.logger.Warn("failed to publish cases-classified event", logging.Err(err))
		}
	}
	return res, nil
}

func (s *Service) classify(ctx context.Context, ids []int64) (*Result, error) {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	var records []*judiciary.CaseRecord
	if ids == nil {
		records, err = uow.Cases().ListAll(ctx)
	} else {
		records, err = uow.Cases().ListByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Scanned: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := s.classifier.Label(rec.Topic, rec.Text)
		if label == rec.Label {
			continue
		}
		if err := uow.Cases().UpdateLabel(ctx, rec.ID, label); err != nil {
			return nil, err
		}
		res.Updated++
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

//Personal.AI order the ending
