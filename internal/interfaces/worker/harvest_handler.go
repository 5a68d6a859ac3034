// Package worker consumes queued harvest requests from the broker.
package worker

import (
	"context"
	"strings"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// Harvester clones the profile behind a case number.
type Harvester interface {
	CloneProfile(ctx context.Context, caseID string) *harvest.CloneResult
}

// Classifier relabels pending case records.
type Classifier interface {
	Run(ctx context.Context) (*classification.Result, error)
}

// HarvestHandler turns HarvestRequested events into profile harvests.
type HarvestHandler struct {
	harvests   Harvester
	classifier Classifier
	logger     logging.Logger
}

// NewHarvestHandler creates a HarvestHandler. classifier may be nil, in which
// case the classify flag of requests is ignored.
func NewHarvestHandler(harvests Harvester, classifier Classifier, logger logging.Logger) *HarvestHandler {
	return &HarvestHandler{harvests: harvests, classifier: classifier, logger: logger}
}

// retryable reports whether running the same request again may succeed.
func retryable(kind harvest.FailureKind) bool {
	return kind == harvest.FailureBusy || kind == harvest.FailureTechnical
}

// Handle is a kafka.MessageHandler. Malformed messages and permanent
// failures are acknowledged; busy and technical failures are returned so the
// consumer retries them and eventually dead-letters them.
func (h *HarvestHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	req, ok := h.decode(msg)
	if !ok {
		return nil
	}
	log := h.logger.With(logging.String("case_id", req.CaseID), logging.String("event_id", req.EventID()))

	res := h.harvests.CloneProfile(ctx, req.CaseID)
	if !res.Success {
		if retryable(res.Failure) {
			return errors.New(errors.ErrCodeHarvestTechnical, res.Message)
		}
		log.Info("harvest request finished without a profile",
			logging.String("failure", string(res.Failure)),
			logging.String("message", res.Message))
		return nil
	}

	log.Info("queued harvest completed",
		logging.String("adjudicator", res.AdjudicatorName),
		logging.String("court", res.Court))

	if req.Classify && h.classifier != nil {
		if _, err := h.classifier.Run(ctx); err != nil {
			log.Warn("classification after harvest failed", logging.Err(err))
		}
	}
	return nil
}

func (h *HarvestHandler) decode(msg *kafka.Message) (*judiciary.HarvestRequested, bool) {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		h.logger.Warn("discarding malformed message", logging.String("topic", msg.Topic), logging.Int64("offset", msg.Offset), logging.Err(err))
		return nil, false
	}
	if env.EventType != judiciary.EventHarvestRequested {
		h.logger.Debug("ignoring event", logging.String("event_type", env.EventType))
		return nil, false
	}
	var req judiciary.HarvestRequested
	if err := env.DecodePayload(&req); err != nil {
		h.logger.Warn("discarding harvest request", logging.String("event_id", env.EventID), logging.Err(err))
		return nil, false
	}
	if strings.TrimSpace(req.CaseID) == "" {
		h.logger.Warn("discarding harvest request without case id", logging.String("event_id", env.EventID))
		return nil, false
	}
	return &req, true
}

//Personal.AI order the ending
