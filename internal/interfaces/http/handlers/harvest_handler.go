package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// HarvestService is the part of harvest.Service the transport needs.
type HarvestService interface {
	Route(caseID string) judiciary.Route
	CloneProfile(ctx context.Context, caseID string) *harvest.CloneResult
	Enqueue(ctx context.Context, caseID string, classify bool) (*judiciary.HarvestRequested, error)
}

// ClassificationService runs the batch classifier.
type ClassificationService interface {
	Run(ctx context.Context) (*classification.Result, error)
}

// HarvestHandler triggers profile harvests and exposes the court router.
type HarvestHandler struct {
	harvests   HarvestService
	classifier ClassificationService
	logger     logging.Logger
}

// NewHarvestHandler creates a HarvestHandler. classifier may be nil, in which
// case the classify flag of synchronous harvests is ignored.
func NewHarvestHandler(harvests HarvestService, classifier ClassificationService, logger logging.Logger) *HarvestHandler {
	return &HarvestHandler{harvests: harvests, classifier: classifier, logger: logger}
}

// HarvestRequest is the body of POST /harvests.
type HarvestRequest struct {
	CaseID   string `json:"case_id"`
	Classify bool   `json:"classify"`
}

// HarvestResponse wraps the clone result with the optional classifier pass.
type HarvestResponse struct {
	*harvest.CloneResult
	Classification *classification.Result `json:"classification,omitempty"`
}

// QueuedResponse acknowledges an asynchronous harvest.
type QueuedResponse struct {
	EventID string `json:"event_id"`
	CaseID  string `json:"case_id"`
	Status  string `json:"status"`
}

// Create handles POST /api/v1/harvests. The case id may come in the JSON
// body or as ?case_id=. With ?async=true the request is queued and 202 is
// returned. Harvest failures are reported in the body with status 200.
func (h *HarvestHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := HarvestRequest{CaseID: r.URL.Query().Get("case_id"), Classify: queryBool(r, "classify")}
	if r.ContentLength != 0 && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, r, h.logger, errors.InvalidParam("invalid request body"))
			return
		}
	}
	req.CaseID = strings.TrimSpace(req.CaseID)
	if req.CaseID == "" {
		writeAppError(w, r, h.logger, errors.InvalidParam("case_id is required"))
		return
	}

	if queryBool(r, "async") {
		ev, err := h.harvests.Enqueue(r.Context(), req.CaseID, req.Classify)
		if err != nil {
			writeAppError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, QueuedResponse{EventID: ev.EventID(), CaseID: ev.CaseID, Status: "queued"})
		return
	}

	res := h.harvests.CloneProfile(r.Context(), req.CaseID)
	resp := HarvestResponse{CloneResult: res}
	if res.Success && req.Classify && h.classifier != nil {
		out, err := h.classifier.Run(r.Context())
		if err != nil {
			h.logger.Warn("classification after harvest failed", logging.String("case_id", req.CaseID), logging.Err(err))
		} else {
			resp.Classification = out
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Route handles GET /api/v1/route?id=. It never fails: undecodable ids
// resolve to the fallback court with a warning.
func (h *HarvestHandler) Route(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if strings.TrimSpace(id) == "" {
		writeAppError(w, r, h.logger, errors.InvalidParam("id is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.harvests.Route(id))
}

//Personal.AI order the ending
