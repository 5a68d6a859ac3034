// Package advisory asks the text-generation service for a behavioural
// dossier of an adjudicating body and for strategic opinions on petitions.
package advisory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/llm"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	DefaultSampleSize         = 50
	DefaultDossierTTL         = 24 * time.Hour
	DefaultDossierTemperature = 0.4
	DefaultOpinionTemperature = 0.3

	dossierCache = "dossier"
)

// Generator is the text-generation provider.
type Generator interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Completion, error)
	Models(ctx context.Context) []string
}

// Evaluator scores a petition against an adjudicating body.
type Evaluator interface {
	Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error)
}

type Config struct {
	SampleSize         int
	DossierTTL         time.Duration
	DossierTemperature float64
	OpinionTemperature float64
}

// Dossier is a generated behavioural profile.
type Dossier struct {
	AdjudicatorID int64     `json:"adjudicator_id"`
	Adjudicator   string    `json:"adjudicator"`
	Records       int       `json:"records"`
	Text          string    `json:"text"`
	Model         string    `json:"model"`
	GeneratedAt   time.Time `json:"generated_at"`
	Cached        bool      `json:"cached"`
}

// Opinion is a strategic opinion on one petition.
type Opinion struct {
	AdjudicatorID int64   `json:"adjudicator_id"`
	Adjudicator   string  `json:"adjudicator"`
	Topic         string  `json:"topic"`
	Score         float64 `json:"score"`
	Text          string  `json:"text"`
	Model         string  `json:"model"`
	UsedDossier   bool    `json:"used_dossier"`
	ArchiveKey    string  `json:"archive_key,omitempty"`
	Notice        string  `json:"notice"`
}

type Service struct {
	repos     judiciary.Repositories
	generator Generator
	evaluator Evaluator
	cache     redis.Cache
	cfg       Config
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
	now       func() time.Time
}

// NewService builds the advisory service. cache may be nil, in which case
// dossiers are never reused by opinions.
func NewService(repos judiciary.Repositories, generator Generator, evaluator Evaluator, cache redis.Cache, cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics) *Service {
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.DossierTTL <= 0 {
		cfg.DossierTTL = DefaultDossierTTL
	}
	if cfg.DossierTemperature <= 0 {
		cfg.DossierTemperature = DefaultDossierTemperature
	}
	if cfg.OpinionTemperature <= 0 {
		cfg.OpinionTemperature = DefaultOpinionTemperature
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	return &Service{
		repos:     repos,
		generator: generator,
		evaluator: evaluator,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

func dossierKey(adjudicatorID int64) string {
	return fmt.Sprintf("%s:%d", dossierCache, adjudicatorID)
}

// Models lists the candidate text-generation models in preference order.
func (s *Service) Models(ctx context.Context) []string {
	return s.generator.Models(ctx)
}

// Dossier returns the cached dossier of an adjudicator, generating it when
// there is none or refresh is set.
func (s *Service) Dossier(ctx context.Context, adjudicatorID int64, refresh bool) (*Dossier, error) {
	adj, err := s.repos.Adjudicators().GetByID(ctx, adjudicatorID)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if d, ok := s.cachedDossier(ctx, adjudicatorID); ok {
			d.Cached = true
			return d, nil
		}
	}

	records, err := s.repos.Cases().ListByAdjudicator(ctx, adjudicatorID, s.cfg.SampleSize)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientHistory, adj.Name+" não tem decisões coletadas")
	}

	reply, err := s.generator.Complete(ctx, llm.Request{
		Operation:   "dossier",
		Prompt:      buildDossierPrompt(adj.Name, records),
		Temperature: s.cfg.DossierTemperature,
	})
	if err != nil {
		return nil, err
	}

	d := &Dossier{
		AdjudicatorID: adjudicatorID,
		Adjudicator:   adj.Name,
		Records:       len(records),
		Text:          reply.Text,
		Model:         reply.Model,
		GeneratedAt:   s.now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, dossierKey(adjudicatorID), d, s.cfg.DossierTTL); err != nil {
			s.logger.Warn("failed to cache dossier", logging.Int64("adjudicator_id", adjudicatorID), logging.Err(err))
		}
	}
	s.logger.Info("dossier generated",
		logging.Int64("adjudicator_id", adjudicatorID),
		logging.Int("records", d.Records),
		logging.String("model", d.Model))
	return d, nil
}

func (s *Service) cachedDossier(ctx context.Context, adjudicatorID int64) (*Dossier, bool) {
	if s.cache == nil {
		return nil, false
	}
	var d Dossier
	err := s.cache.Get(ctx, dossierKey(adjudicatorID), &d)
	s.metrics.RecordCacheAccess(dossierCache, err == nil)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("dossier cache read failed", logging.Int64("adjudicator_id", adjudicatorID), logging.Err(err))
		}
		return nil, false
	}
	return &d, true
}

// Opinion scores the petition and asks for a strategic opinion. A cached
// dossier of the same adjudicator is added as privileged context.
func (s *Service) Opinion(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*Opinion, error) {
	ev, err := s.evaluator.Evaluate(ctx, adjudicatorID, p)
	if err != nil {
		return nil, err
	}

	dossier := ""
	if d, ok := s.cachedDossier(ctx, adjudicatorID); ok {
		dossier = d.Text
	}

	reply, err := s.generator.Complete(ctx, llm.Request{
		Operation:   "opinion",
		Prompt:      buildOpinionPrompt(ev.Adjudicator.Name, ev.Match.Topic, ev.Match.Score, dossier, ev.Text),
		Temperature: s.cfg.OpinionTemperature,
	})
	if err != nil {
		return nil, err
	}

	op := &Opinion{
		AdjudicatorID: adjudicatorID,
		Adjudicator:   ev.Adjudicator.Name,
		Topic:         ev.Match.Topic,
		Score:         ev.Match.Score,
		Text:          reply.Text,
		Model:         reply.Model,
		UsedDossier:   dossier != "",
		Notice:        EthicalNotice,
	}
	if ev.Archive != nil {
		op.ArchiveKey = ev.Archive.Key
	}
	if !strings.Contains(op.Text, EthicalNotice) {
		op.Text = strings.TrimRight(op.Text, "\n") + "\n\n" + EthicalNotice
	}
	return op, nil
}

//Personal.AI order the ending
