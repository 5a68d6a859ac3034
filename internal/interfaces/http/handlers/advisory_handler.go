package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/advisory"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
)

// AdherenceService scores petitions against an adjudicator's history.
type AdherenceService interface {
	Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error)
}

// AdvisoryService produces dossiers and strategic opinions.
type AdvisoryService interface {
	Dossier(ctx context.Context, adjudicatorID int64, refresh bool) (*advisory.Dossier, error)
	Opinion(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*advisory.Opinion, error)
	Models(ctx context.Context) []string
}

// AdvisoryHandler serves adherence scoring and the text-generation features.
type AdvisoryHandler struct {
	scorer    AdherenceService
	advisor   AdvisoryService
	maxUpload int64
	logger    logging.Logger
}

// NewAdvisoryHandler creates an AdvisoryHandler. advisor may be nil when no
// text-generation provider is configured; its routes are then not mounted.
func NewAdvisoryHandler(scorer AdherenceService, advisor AdvisoryService, maxUpload int64, logger logging.Logger) *AdvisoryHandler {
	return &AdvisoryHandler{scorer: scorer, advisor: advisor, maxUpload: maxUpload, logger: logger}
}

// HasAdvisor reports whether the text-generation routes are available.
func (h *AdvisoryHandler) HasAdvisor() bool { return h.advisor != nil }

// Score handles POST /api/v1/adjudicators/{adjudicatorID}/score.
func (h *AdvisoryHandler) Score(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "adjudicatorID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	p, err := readPetition(r, h.maxUpload)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	ev, err := h.scorer.Evaluate(r.Context(), id, p)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Dossier handles POST /api/v1/adjudicators/{adjudicatorID}/dossier?refresh=.
func (h *AdvisoryHandler) Dossier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "adjudicatorID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	d, err := h.advisor.Dossier(r.Context(), id, queryBool(r, "refresh"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Opinion handles POST /api/v1/adjudicators/{adjudicatorID}/opinion.
func (h *AdvisoryHandler) Opinion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "adjudicatorID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	p, err := readPetition(r, h.maxUpload)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	op, err := h.advisor.Opinion(r.Context(), id, p)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

// Models handles GET /api/v1/llm/models.
func (h *AdvisoryHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"models": h.advisor.Models(r.Context())})
}

//Personal.AI order the ending
