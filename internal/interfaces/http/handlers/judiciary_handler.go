package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/query"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// QueryService is the read side.
type QueryService interface {
	ListAdjudicators(ctx context.Context, page common.Page) (*query.AdjudicatorPage, error)
	SearchCases(ctx context.Context, fragment string, limit int) ([]*judiciary.CaseRecord, error)
	Overview(ctx context.Context) (*query.Overview, error)
	Dashboard(ctx context.Context, adjudicatorID int64) (*query.Dashboard, error)
}

// JudiciaryHandler serves adjudicator listings, case search and dashboards.
type JudiciaryHandler struct {
	queries QueryService
	logger  logging.Logger
}

func NewJudiciaryHandler(queries QueryService, logger logging.Logger) *JudiciaryHandler {
	return &JudiciaryHandler{queries: queries, logger: logger}
}

// ListAdjudicators handles GET /api/v1/adjudicators?skip=&limit=.
func (h *JudiciaryHandler) ListAdjudicators(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit", common.DefaultPageLimit)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	page := common.Page{Skip: skip, Limit: limit}
	if err := page.Validate(); err != nil {
		writeAppError(w, r, h.logger, errors.InvalidParam(err.Error()))
		return
	}

	out, err := h.queries.ListAdjudicators(r.Context(), page)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// SearchCases handles GET /api/v1/cases?topic=. At most 50 records.
func (h *JudiciaryHandler) SearchCases(w http.ResponseWriter, r *http.Request) {
	out, err := h.queries.SearchCases(r.Context(), r.URL.Query().Get("topic"), query.MaxTopicResults)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Overview handles GET /api/v1/metrics.
func (h *JudiciaryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.queries.Overview(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Dashboard handles GET /api/v1/adjudicators/{adjudicatorID}/dashboard.
func (h *JudiciaryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "adjudicatorID")
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	out, err := h.queries.Dashboard(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

//Personal.AI order the ending
