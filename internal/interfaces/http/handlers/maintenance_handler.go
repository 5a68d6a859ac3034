package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
)

// PurgeService removes duplicate case records.
type PurgeService interface {
	PurgeDuplicates(ctx context.Context) (*maintenance.PurgeReport, error)
}

// MaintenanceHandler exposes store maintenance and the batch classifier.
type MaintenanceHandler struct {
	purger     PurgeService
	classifier ClassificationService
	logger     logging.Logger
}

func NewMaintenanceHandler(purger PurgeService, classifier ClassificationService, logger logging.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{purger: purger, classifier: classifier, logger: logger}
}

// PurgeDuplicates handles POST /api/v1/maintenance/purge-duplicates.
func (h *MaintenanceHandler) PurgeDuplicates(w http.ResponseWriter, r *http.Request) {
	report, err := h.purger.PurgeDuplicates(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Classify handles POST /api/v1/maintenance/classify.
func (h *MaintenanceHandler) Classify(w http.ResponseWriter, r *http.Request) {
	out, err := h.classifier.Run(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

//Personal.AI order the ending
