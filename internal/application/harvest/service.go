// Package harvest clones the profile of an adjudicating body: it finds a
// reference case on the public API, downloads the latest filings of the same
// body and stores them through the deduplicating StoreWriter.
package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// FailureKind tags why a harvest did not succeed.
type FailureKind string

const (
	FailureCourtRejected FailureKind = "court_rejected"
	FailureNotFound      FailureKind = "not_found"
	FailureMissingUnit   FailureKind = "missing_unit"
	FailureBusy          FailureKind = "busy"
	FailureTechnical     FailureKind = "technical"
)

// User-facing messages.
const (
	msgCourtRejected = "O Tribunal %s rejeitou a conexão (Erro %d)."
	msgNotFound      = "Não encontrado no %s. Motivos possíveis: 1) Segredo de Justiça (não público); 2) Processo muito recente (delay de indexação)."
	msgMissingUnit   = "O processo de referência no %s não informa o órgão julgador; não é possível montar o perfil."
	msgBusy          = "Já existe uma coleta em andamento para este órgão julgador. Tente novamente em instantes."
	msgTechnical     = "Erro técnico: %s"
	msgSuccess       = "%d novos, %d com teor completo."
)

// CloneResult is what the caller sees. Errors never escape CloneProfile.
type CloneResult struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message"`
	AdjudicatorName string      `json:"unit_display_name,omitempty"`
	Court           string      `json:"court,omitempty"`
	Warning         string      `json:"warning,omitempty"`
	Failure         FailureKind `json:"failure,omitempty"`
	Stats           *WriteStats `json:"stats,omitempty"`
}

// Locker serialises harvests of the same adjudicating body across processes.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// EventPublisher delivers domain events to the broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ev common.DomainEvent) error
}

type Config struct {
	HistorySize  int
	LockTTL      time.Duration
	RequestTopic string
	ClonedTopic  string
}

type Option func(*Service)

// WithLocker enables the per-body harvest lock.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithPublisher enables queued harvests and ProfileCloned events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

type Service struct {
	router    *judiciary.CourtRouter
	source    judiciary.CaseRecordSource
	uow       judiciary.UnitOfWorkFactory
	writer    *StoreWriter
	locker    Locker
	publisher EventPublisher
	cfg       Config
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

func NewService(
	router *judiciary.CourtRouter,
	source judiciary.CaseRecordSource,
	uow judiciary.UnitOfWorkFactory,
	cfg Config,
	logger logging.Logger,
	metrics *prometheus.AppMetrics,
	opts ...Option,
) *Service {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	s := &Service{
		router:  router,
		source:  source,
		uow:     uow,
		writer:  NewStoreWriter(logger, metrics),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route exposes the court router to the transport layer.
func (s *Service) Route(caseID string) judiciary.Route {
	return s.router.Route(caseID)
}

// CloneProfile harvests the adjudicating body behind caseID.
func (s *Service) CloneProfile(ctx context.Context, caseID string) *CloneResult {
	start := time.Now()
	route := s.router.Route(caseID)
	log := s.logger.With(logging.String("case_id", caseID), logging.String("court", route.Court))

	if route.Fallback {
		reason := "unmapped_court"
		if route.InvalidIdentifier {
			reason = "invalid_identifier"
		}
		s.metrics.RouterFallbacks.WithLabelValues(reason).Inc()
		log.Warn("court router fell back", logging.String("warning", route.Warning))
	}

	res := s.clone(ctx, route, caseID, log)
	res.Court = route.Court
	res.Warning = route.Warning

	created, withText := 0, 0
	if res.Stats != nil {
		created, withText = res.Stats.New, res.Stats.WithText
	}
	s.metrics.RecordHarvest(route.Court, res.Success, created, withText, time.Since(start))

	if res.Success {
		log.Info("profile cloned", logging.String("adjudicator", res.AdjudicatorName), logging.String("message", res.Message))
		s.publishCloned(ctx, caseID, route.Court, res)
	} else {
		log.Warn("profile clone failed", logging.String("failure", string(res.Failure)), logging.String("message", res.Message))
	}
	return res
}

func (s *Service) clone(ctx context.Context, route judiciary.Route, caseID string, log logging.Logger) *CloneResult {
	log.Debug("looking up reference case", logging.String("endpoint", route.Endpoint))
	ref, err := s.source.FindCase(ctx, route, caseID)
	if err != nil {
		return upstreamFailure(route, err)
	}
	if ref == nil {
		return &CloneResult{Failure: FailureNotFound, Message: fmt.Sprintf(msgNotFound, route.Court)}
	}
	if !ref.Body.HasCode() {
		return &CloneResult{Failure: FailureMissingUnit, Message: fmt.Sprintf(msgMissingUnit, route.Court)}
	}
	name := judiciary.AdjudicatorName(ref.Body.Name)
	log.Debug("reference case found", logging.String("adjudicator", name), logging.String("body_code", ref.Body.CodeString()))

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, "harvest:"+route.Court+":"+ref.Body.CodeString(), s.cfg.LockTTL)
		switch {
		case err != nil:
			log.Warn("harvest lock unavailable; continuing without it", logging.Err(err))
		case !ok:
			return &CloneResult{Failure: FailureBusy, Message: msgBusy, AdjudicatorName: name}
		default:
			defer release()
		}
	}

	history, err := s.source.ListByBody(ctx, route, ref.Body, s.cfg.HistorySize)
	if err != nil {
		return upstreamFailure(route, err)
	}
	log.Debug("history downloaded", logging.Int("records", len(history)))

	stats, err := s.store(ctx, Batch{Court: route.Court, Jurisdiction: route.Jurisdiction, Records: history})
	if err != nil {
		return &CloneResult{Failure: FailureTechnical, Message: fmt.Sprintf(msgTechnical, err.Error()), AdjudicatorName: name}
	}

	return &CloneResult{
		Success:         true,
		Message:         fmt.Sprintf(msgSuccess, stats.New, stats.WithText),
		AdjudicatorName: name,
		Stats:           &stats,
	}
}

// store runs the writer inside one unit of work.
func (s *Service) store(ctx context.Context, batch Batch) (WriteStats, error) {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return WriteStats{}, err
	}
	defer func() { _ = uow.Rollback() }()

	stats, err := s.writer.Write(ctx, uow, batch)
	if err != nil {
		return stats, err
	}
	if err := uow.Commit(); err != nil {
		return stats, err
	}
	return stats, nil
}

func upstreamFailure(route judiciary.Route, err error) *CloneResult {
	var rejected *judiciary.CourtRejectedError
	if errors.As(err, &rejected) {
		return &CloneResult{
			Failure: FailureCourtRejected,
			Message: fmt.Sprintf(msgCourtRejected, route.Court, rejected.StatusCode),
		}
	}
	if errors.IsCode(err, errors.ErrCodeMissingJudicialUnit) {
		return &CloneResult{Failure: FailureMissingUnit, Message: fmt.Sprintf(msgMissingUnit, route.Court)}
	}
	return &CloneResult{Failure: FailureTechnical, Message: fmt.Sprintf(msgTechnical, err.Error())}
}

func (s *Service) publishCloned(ctx context.Context, caseID, court string, res *CloneResult) {
	if s.publisher == nil || s.cfg.ClonedTopic == "" {
		return
	}
	ev := judiciary.NewProfileCloned(caseID, court, res.AdjudicatorName, res.Stats.New, res.Stats.WithText)
	if err := s.publisher.PublishEvent(ctx, s.cfg.ClonedTopic, ev); err != nil {
		s.logger.Warn("failed to publish profile-cloned event", logging.String("case_id", caseID), logging.Err(err))
	}
}

// Enqueue publishes a harvest request for a worker to pick up.
func (s *Service) Enqueue(ctx context.Context, caseID string, classify bool) (*judiciary.HarvestRequested, error) {
	if s.publisher == nil || s.cfg.RequestTopic == "" {
		return nil, errors.New(errors.ErrCodeHarvestQueueDisabled, "harvest queue is not configured")
	}
	if judiciary.DigitsOnly(caseID) == "" {
		return nil, errors.InvalidParam("case id is required")
	}
	ev := judiciary.NewHarvestRequested(caseID, classify)
	if err := s.publisher.PublishEvent(ctx, s.cfg.RequestTopic, ev); err != nil {
		s.metrics.QueuedHarvests.WithLabelValues("failed").Inc()
		return nil, err
	}
	s.metrics.QueuedHarvests.WithLabelValues("queued").Inc()
	s.logger.Info("harvest queued", logging.String("case_id", caseID), logging.String("event_id", ev.EventID()))
	return ev, nil
}

//Personal.AI order the ending
