package adherence

import (
	"context"
	"fmt"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/document"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	DefaultMinRecords = 5
	DefaultTopTopics  = 10
)

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(contentType string, data []byte) (string, error)
}

// Petition is an uploaded document.
type Petition struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Evaluation is the outcome of scoring one petition against one body.
type Evaluation struct {
	Adjudicator *judiciary.Adjudicator  `json:"adjudicator"`
	Records     int64                   `json:"records"`
	Topics      []judiciary.TopicCount  `json:"topics"`
	Match       *Match                  `json:"match"`
	Archive     *minio.ArchivedPetition `json:"archive,omitempty"`
	Text        string                  `json:"-"`
}

type Config struct {
	MinRecords int
	TopTopics  int
}

type Option func(*Service)

// WithArchive stores every scored petition before it is embedded.
func WithArchive(a minio.PetitionArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithExtractor replaces the default document extractor.
func WithExtractor(e TextExtractor) Option {
	return func(s *Service) { s.extractor = e }
}

type Service struct {
	repos     judiciary.Repositories
	scorer    *Scorer
	extractor TextExtractor
	archive   minio.PetitionArchive
	cfg       Config
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

func NewService(repos judiciary.Repositories, scorer *Scorer, cfg Config, logger logging.Logger, metrics *prometheus.AppMetrics, opts ...Option) *Service {
	if cfg.MinRecords <= 0 {
		cfg.MinRecords = DefaultMinRecords
	}
	if cfg.TopTopics <= 0 {
		cfg.TopTopics = DefaultTopTopics
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	s := &Service{
		repos:     repos,
		scorer:    scorer,
		extractor: document.NewExtractor(),
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topics returns the adjudicator and its most frequent topics, refusing
// bodies with too short a history.
func (s *Service) Topics(ctx context.Context, adjudicatorID int64) (*judiciary.Adjudicator, int64, []judiciary.TopicCount, error) {
	adj, err := s.repos.Adjudicators().GetByID(ctx, adjudicatorID)
	if err != nil {
		return nil, 0, nil, err
	}
	n, err := s.repos.Cases().CountByAdjudicator(ctx, adjudicatorID)
	if err != nil {
		return nil, 0, nil, err
	}
	if n < int64(s.cfg.MinRecords) {
		return adj, n, nil, errors.New(errors.ErrCodeInsufficientHistory,
			fmt.Sprintf("%s tem %d decisões; são necessárias ao menos %d", adj.Name, n, s.cfg.MinRecords))
	}
	topics, err := s.repos.Cases().TopicDistribution(ctx, adjudicatorID, s.cfg.TopTopics)
	if err != nil {
		return nil, 0, nil, err
	}
	return adj, n, topics, nil
}

// Evaluate extracts the petition text, archives the upload and scores it
// against the body's top topics.
func (s *Service) Evaluate(ctx context.Context, adjudicatorID int64, p Petition) (*Evaluation, error) {
	ev, err := s.evaluate(ctx, adjudicatorID, p)
	if err != nil {
		s.metrics.AdherenceTotal.WithLabelValues(string(errors.GetCode(err))).Inc()
		s.logger.Warn("adherence evaluation failed", logging.Int64("adjudicator_id", adjudicatorID), logging.Err(err))
		return nil, err
	}
	s.metrics.AdherenceTotal.WithLabelValues("success").Inc()
	s.metrics.AdherenceScore.WithLabelValues().Observe(ev.Match.Score)
	s.logger.Info("adherence evaluated",
		logging.Int64("adjudicator_id", adjudicatorID),
		logging.String("topic", ev.Match.Topic),
		logging.Float64("score", ev.Match.Score))
	return ev, nil
}

func (s *Service) evaluate(ctx context.Context, adjudicatorID int64, p Petition) (*Evaluation, error) {
	adj, n, topics, err := s.Topics(ctx, adjudicatorID)
	if err != nil {
		return nil, err
	}

	contentType := document.ContentTypeFor(p.ContentType, p.Filename)
	text, err := s.extractor.Extract(contentType, p.Data)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{Adjudicator: adj, Records: n, Topics: topics, Text: text}
	if s.archive != nil {
		stored, err := s.archive.Store(ctx, &minio.StoreRequest{
			AdjudicatorID: adjudicatorID,
			Filename:      p.Filename,
			ContentType:   contentType,
			Data:          p.Data,
		})
		if err != nil {
			s.logger.Warn("petition archive unavailable; scoring anyway", logging.Err(err))
		} else {
			ev.Archive = stored
		}
	}

	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Topic
	}
	match, err := s.scorer.Score(ctx, text, names)
	if err != nil {
		return nil, err
	}
	ev.Match = match
	return ev, nil
}

//Personal.AI order the ending
