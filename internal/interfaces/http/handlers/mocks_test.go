package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/advisory"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/classification"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/harvest"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/maintenance"
	"github.com/turtacn/Prologos-Jurimetrics/internal/application/query"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

type mockHarvestService struct{ mock.Mock }

func (m *mockHarvestService) Route(caseID string) judiciary.Route {
	return m.Called(caseID).Get(0).(judiciary.Route)
}

func (m *mockHarvestService) CloneProfile(ctx context.Context, caseID string) *harvest.CloneResult {
	return m.Called(ctx, caseID).Get(0).(*harvest.CloneResult)
}

func (m *mockHarvestService) Enqueue(ctx context.Context, caseID string, classify bool) (*judiciary.HarvestRequested, error) {
	args := m.Called(ctx, caseID, classify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*judiciary.HarvestRequested), args.Error(1)
}

type mockClassificationService struct{ mock.Mock }

func (m *mockClassificationService) Run(ctx context.Context) (*classification.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*classification.Result), args.Error(1)
}

type mockQueryService struct{ mock.Mock }

func (m *mockQueryService) ListAdjudicators(ctx context.Context, page common.Page) (*query.AdjudicatorPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.AdjudicatorPage), args.Error(1)
}

func (m *mockQueryService) SearchCases(ctx context.Context, fragment string, limit int) ([]*judiciary.CaseRecord, error) {
	args := m.Called(ctx, fragment, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*judiciary.CaseRecord), args.Error(1)
}

func (m *mockQueryService) Overview(ctx context.Context) (*query.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Overview), args.Error(1)
}

func (m *mockQueryService) Dashboard(ctx context.Context, adjudicatorID int64) (*query.Dashboard, error) {
	args := m.Called(ctx, adjudicatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*query.Dashboard), args.Error(1)
}

type mockAdherenceService struct{ mock.Mock }

func (m *mockAdherenceService) Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error) {
	args := m.Called(ctx, adjudicatorID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*adherence.Evaluation), args.Error(1)
}

type mockAdvisoryService struct{ mock.Mock }

func (m *mockAdvisoryService) Dossier(ctx context.Context, adjudicatorID int64, refresh bool) (*advisory.Dossier, error) {
	args := m.Called(ctx, adjudicatorID, refresh)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advisory.Dossier), args.Error(1)
}

func (m *mockAdvisoryService) Opinion(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*advisory.Opinion, error) {
	args := m.Called(ctx, adjudicatorID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advisory.Opinion), args.Error(1)
}

func (m *mockAdvisoryService) Models(ctx context.Context) []string {
	return m.Called(ctx).Get(0).([]string)
}

type mockPurgeService struct{ mock.Mock }

func (m *mockPurgeService) PurgeDuplicates(ctx context.Context) (*maintenance.PurgeReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*maintenance.PurgeReport), args.Error(1)
}

// serve mounts h on pattern so chi URL params resolve, then sends one
// request.
func serve(method, pattern, target string, h http.HandlerFunc, body io.Reader, contentType string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// multipartBody builds a form with one "file" part.
func multipartBody(filename, contentType string, data []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, _ := mw.CreatePart(header)
	_, _ = part.Write(data)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

//Personal.AI order the ending
