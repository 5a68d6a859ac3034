package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/advisory"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/query"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/testutil"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

const caseID = "0001234-56.2023.8.26.0100"

func decodeError(t *testing.T, body string) *common.ErrorDetail {
	t.Helper()
	var resp common.APIResponse[any]
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

// --- Harvest ---

func TestHarvest_SyncSuccess(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("CloneProfile", mock.Anything, caseID).Return(&harvest.CloneResult{
		Success:         true,
		Message:         "3 novos, 2 com teor completo.",
		AdjudicatorName: "Juízo da 1ª Vara Cível",
		Court:           "TJSP",
	})
	h := NewHarvestHandler(svc, nil, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests", h.Create,
		strings.NewReader(`{"case_id":"`+caseID+`"}`), "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "3 novos, 2 com teor completo.", got["message"])
	assert.Equal(t, "Juízo da 1ª Vara Cível", got["unit_display_name"])
	assert.NotContains(t, got, "classification")
}

func TestHarvest_FailureIsNotAServerError(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("CloneProfile", mock.Anything, caseID).Return(&harvest.CloneResult{
		Message: "O Tribunal TJSP rejeitou a conexão (Erro 403).",
		Failure: harvest.FailureCourtRejected,
	})
	h := NewHarvestHandler(svc, nil, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests?case_id="+caseID, h.Create, nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "rejeitou a conexão")
}

func TestHarvest_ClassifiesAfterSuccess(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("CloneProfile", mock.Anything, caseID).Return(&harvest.CloneResult{Success: true, Message: "1 novos, 0 com teor completo."})
	cls := new(mockClassificationService)
	cls.On("Run", mock.Anything).Return(&classification.Result{Scanned: 10, Updated: 1}, nil).Once()
	h := NewHarvestHandler(svc, cls, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests", h.Create,
		strings.NewReader(`{"case_id":"`+caseID+`","classify":true}`), "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"classification":{"scanned":10,"updated":1`)
	cls.AssertExpectations(t)
}

func TestHarvest_ClassifierFailureKeepsHarvest(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("CloneProfile", mock.Anything, caseID).Return(&harvest.CloneResult{Success: true})
	cls := new(mockClassificationService)
	cls.On("Run", mock.Anything).Return(nil, errors.New(errors.ErrCodeDatabaseError, "locked"))
	log := testutil.NewMockLogger()
	h := NewHarvestHandler(svc, cls, log)

	w := serve(http.MethodPost, "/harvests", "/harvests?classify=true&case_id="+caseID, h.Create, nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.True(t, log.HasMessage("warn", "classification after harvest failed"))
}

func TestHarvest_Async(t *testing.T) {
	svc := new(mockHarvestService)
	ev := judiciary.NewHarvestRequested(caseID, true)
	svc.On("Enqueue", mock.Anything, caseID, true).Return(ev, nil)
	h := NewHarvestHandler(svc, nil, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests?async=true", h.Create,
		strings.NewReader(`{"case_id":"`+caseID+`","classify":true}`), "application/json")

	assert.Equal(t, http.StatusAccepted, w.Code)
	var got QueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, ev.EventID(), got.EventID)
	assert.Equal(t, "queued", got.Status)
	svc.AssertNotCalled(t, "CloneProfile", mock.Anything, mock.Anything)
}

func TestHarvest_AsyncDisabled(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("Enqueue", mock.Anything, caseID, false).
		Return(nil, errors.New(errors.ErrCodeHarvestQueueDisabled, "harvest queue is not configured"))
	h := NewHarvestHandler(svc, nil, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests?async=1&case_id="+caseID, h.Create, nil, "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "HARVEST_005", decodeError(t, w.Body.String()).Code)
}

func TestHarvest_BadRequests(t *testing.T) {
	h := NewHarvestHandler(new(mockHarvestService), nil, logging.NewNopLogger())

	w := serve(http.MethodPost, "/harvests", "/harvests", h.Create, strings.NewReader(`{"case_id":"  "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "case_id is required", decodeError(t, w.Body.String()).Message)

	w = serve(http.MethodPost, "/harvests", "/harvests", h.Create, strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoute(t *testing.T) {
	svc := new(mockHarvestService)
	svc.On("Route", "123").Return(judiciary.Route{Court: "TJSP", Jurisdiction: "SP", Fallback: true, InvalidIdentifier: true, Warning: "identificador inválido"})
	h := NewHarvestHandler(svc, nil, logging.NewNopLogger())

	w := serve(http.MethodGet, "/route", "/route?id=123", h.Route, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var got judiciary.Route
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, "TJSP", got.Court)

	w = serve(http.MethodGet, "/route", "/route", h.Route, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Judiciary ---

func TestListAdjudicators(t *testing.T) {
	q := new(mockQueryService)
	q.On("ListAdjudicators", mock.Anything, common.Page{Skip: 10, Limit: 5}).Return(&query.AdjudicatorPage{
		Items: []*judiciary.Adjudicator{{ID: 11, Name: "Juízo da 3ª Vara", Vara: "3ª Vara"}},
		Total: 11, Skip: 10, Limit: 5,
	}, nil)
	h := NewJudiciaryHandler(q, logging.NewNopLogger())

	w := serve(http.MethodGet, "/adjudicators", "/adjudicators?skip=10&limit=5", h.ListAdjudicators, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":11`)
	assert.Contains(t, w.Body.String(), `"vara":"3ª Vara"`)

	for _, target := range []string{"/adjudicators?limit=abc", "/adjudicators?limit=501", "/adjudicators?skip=-1"} {
		w = serve(http.MethodGet, "/adjudicators", target, h.ListAdjudicators, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestSearchCases_PassesCap(t *testing.T) {
	q := new(mockQueryService)
	q.On("SearchCases", mock.Anything, "Dano Moral", 50).Return([]*judiciary.CaseRecord{{ID: 1, Number: "N1", Topic: "Dano Moral"}}, nil)
	h := NewJudiciaryHandler(q, logging.NewNopLogger())

	w := serve(http.MethodGet, "/cases", "/cases?topic=Dano+Moral", h.SearchCases, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"case_number":"N1"`)
	q.AssertExpectations(t)
}

func TestOverview(t *testing.T) {
	q := new(mockQueryService)
	q.On("Overview", mock.Anything).Return(&query.Overview{TotalAdjudicators: 2, TotalCases: 40, Status: query.StatusOperational}, nil)
	h := NewJudiciaryHandler(q, logging.NewNopLogger())

	w := serve(http.MethodGet, "/metrics", "/metrics", h.Overview, nil, "")
	assert.JSONEq(t, `{"total_adjudicators":2,"total_cases":40,"status":"operational"}`, w.Body.String())
}

func TestDashboard(t *testing.T) {
	q := new(mockQueryService)
	q.On("Dashboard", mock.Anything, int64(7)).Return(&query.Dashboard{
		Adjudicator: &judiciary.Adjudicator{ID: 7},
		Volume:      3,
		Topics:      []judiciary.TopicCount{{Topic: "Juros", Count: 3}},
		Latest:      []*judiciary.CaseRecord{},
	}, nil)
	q.On("Dashboard", mock.Anything, int64(8)).Return(nil, errors.New(errors.ErrCodeAdjudicatorNotFound, "adjudicator 8 not found"))
	h := NewJudiciaryHandler(q, logging.NewNopLogger())
	pattern := "/adjudicators/{adjudicatorID}/dashboard"

	w := serve(http.MethodGet, pattern, "/adjudicators/7/dashboard", h.Dashboard, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topics":[{"topic":"Juros","count":3}]`)

	w = serve(http.MethodGet, pattern, "/adjudicators/8/dashboard", h.Dashboard, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "adjudicator 8 not found", decodeError(t, w.Body.String()).Message)

	w = serve(http.MethodGet, pattern, "/adjudicators/x/dashboard", h.Dashboard, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	q := new(mockQueryService)
	q.On("Overview", mock.Anything).Return(nil, errors.Wrap(assert.AnError, errors.ErrCodeDatabaseError, "failed to count adjudicators"))
	log := testutil.NewMockLogger()
	h := NewJudiciaryHandler(q, log)

	w := serve(http.MethodGet, "/metrics", "/metrics", h.Overview, nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	detail := decodeError(t, w.Body.String())
	assert.Equal(t, "COMMON_012", detail.Code)
	assert.Equal(t, "database error", detail.Message)
	assert.True(t, log.HasMessage("error", "request failed"))
}

// --- Advisory ---

func TestScore_Multipart(t *testing.T) {
	scorer := new(mockAdherenceService)
	want := adherence.Petition{Filename: "inicial.txt", ContentType: "text/plain", Data: []byte("Ação de cobrança.")}
	scorer.On("Evaluate", mock.Anything, int64(3), want).Return(&adherence.Evaluation{
		Adjudicator: &judiciary.Adjudicator{ID: 3},
		Records:     12,
		Match:       &adherence.Match{Topic: "Cobrança", Score: 80},
		Text:        "Ação de cobrança.",
	}, nil)
	h := NewAdvisoryHandler(scorer, nil, 0, logging.NewNopLogger())

	body, ct := multipartBody("inicial.txt", "text/plain", []byte("Ação de cobrança."))
	w := serve(http.MethodPost, "/adjudicators/{adjudicatorID}/score", "/adjudicators/3/score", h.Score, body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"topic":"Cobrança"`)
	assert.NotContains(t, w.Body.String(), "Ação de cobrança.", "extracted text is not echoed")
	assert.False(t, h.HasAdvisor())
}

func TestScore_RawBodyAndErrors(t *testing.T) {
	scorer := new(mockAdherenceService)
	scorer.On("Evaluate", mock.Anything, int64(3), adherence.Petition{ContentType: "application/pdf", Data: []byte("%PDF")}).
		Return(nil, errors.New(errors.ErrCodeUnsupportedDocument, "unsupported document type: application/pdf"))
	scorer.On("Evaluate", mock.Anything, int64(4), mock.Anything).
		Return(nil, errors.New(errors.ErrCodeInsufficientHistory, "Juízo X tem apenas 2 decisões; são necessárias 5"))
	h := NewAdvisoryHandler(scorer, nil, 0, logging.NewNopLogger())
	pattern := "/adjudicators/{adjudicatorID}/score"

	w := serve(http.MethodPost, pattern, "/adjudicators/3/score", h.Score, strings.NewReader("%PDF"), "application/pdf")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = serve(http.MethodPost, pattern, "/adjudicators/4/score", h.Score, strings.NewReader("texto"), "text/plain")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ADHERENCE_001", decodeError(t, w.Body.String()).Code)
}

func TestScore_UploadLimit(t *testing.T) {
	h := NewAdvisoryHandler(new(mockAdherenceService), nil, 4, logging.NewNopLogger())
	w := serve(http.MethodPost, "/adjudicators/{adjudicatorID}/score", "/adjudicators/3/score", h.Score,
		strings.NewReader("texto longo"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDossierAndOpinion(t *testing.T) {
	adv := new(mockAdvisoryService)
	adv.On("Dossier", mock.Anything, int64(5), true).Return(&advisory.Dossier{AdjudicatorID: 5, Text: "Perfil garantista."}, nil)
	adv.On("Opinion", mock.Anything, int64(5), mock.MatchedBy(func(p adherence.Petition) bool {
		return p.Filename == "inicial.md" && string(p.Data) == "# Inicial"
	})).Return(&advisory.Opinion{AdjudicatorID: 5, Text: "Parecer.", Notice: advisory.EthicalNotice}, nil)
	adv.On("Models", mock.Anything).Return([]string{"llama3-70b-8192", "llama-3.3-70b-versatile"})
	h := NewAdvisoryHandler(new(mockAdherenceService), adv, 0, logging.NewNopLogger())
	require.True(t, h.HasAdvisor())

	w := serve(http.MethodPost, "/adjudicators/{adjudicatorID}/dossier", "/adjudicators/5/dossier?refresh=true", h.Dossier, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Perfil garantista.")

	body, ct := multipartBody("inicial.md", "application/octet-stream", []byte("# Inicial"))
	w = serve(http.MethodPost, "/adjudicators/{adjudicatorID}/opinion", "/adjudicators/5/opinion", h.Opinion, body, ct)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "simulação estatística")

	w = serve(http.MethodGet, "/llm/models", "/llm/models", h.Models, nil, "")
	assert.JSONEq(t, `{"models":["llama3-70b-8192","llama-3.3-70b-versatile"]}`, w.Body.String())
	adv.AssertExpectations(t)
}

func TestOpinion_MissingFile(t *testing.T) {
	h := NewAdvisoryHandler(new(mockAdherenceService), new(mockAdvisoryService), 0, logging.NewNopLogger())
	body, ct := multipartBody("inicial.txt", "text/plain", []byte("x"))
	raw := strings.Replace(body.String(), `name="file"`, `name="doc"`, 1)

	w := serve(http.MethodPost, "/adjudicators/{adjudicatorID}/opinion", "/adjudicators/5/opinion", h.Opinion, strings.NewReader(raw), ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Maintenance ---

func TestMaintenance(t *testing.T) {
	purger := new(mockPurgeService)
	purger.On("PurgeDuplicates", mock.Anything).Return(&maintenance.PurgeReport{Before: 6, After: 3, Removed: 3}, nil)
	cls := new(mockClassificationService)
	cls.On("Run", mock.Anything).Return(&classification.Result{Scanned: 3, Updated: 0}, nil)
	h := NewMaintenanceHandler(purger, cls, logging.NewNopLogger())

	w := serve(http.MethodPost, "/purge", "/purge", h.PurgeDuplicates, nil, "")
	assert.JSONEq(t, `{"before":6,"after":3,"removed":3}`, w.Body.String())

	w = serve(http.MethodPost, "/classify", "/classify", h.Classify, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"scanned":3`)
}

// --- Health ---

func TestHealth(t *testing.T) {
	up := NewChecker("database", func(ctx context.Context) error { return nil })
	down := NewChecker("redis", func(ctx context.Context) error { return assert.AnError })

	h := NewHealthHandler("1.0.0", nil, up)
	w := serve(http.MethodGet, "/healthz", "/healthz", h.Liveness, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)

	w = serve(http.MethodGet, "/readyz", "/readyz", h.Readiness, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	h = NewHealthHandler("1.0.0", nil, down, up)
	w = serve(http.MethodGet, "/readyz", "/readyz", h.Readiness, nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var got ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "not_ready", got.Status)
	require.Len(t, got.Components, 2)
	assert.Equal(t, "database", got.Components[0].Name)
	assert.Equal(t, common.HealthDown, got.Components[1].Status)
	assert.Equal(t, assert.AnError.Error(), got.Components[1].Message)
}

//Personal.AI order the ending
