// Package datajud queries the CNJ public case-record API. DataJud is an
// Elasticsearch cluster exposed per court under api_publica_<code>, so the
// OpenSearch client speaks its search protocol directly.
package datajud

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

const (
	indexPrefix        = "api_publica_"
	defaultTimeout     = 30 * time.Second
	defaultHistorySize = 50
	defaultMaxRetries  = 2
)

// ClientConfig holds the DataJud connection parameters.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Transport  http.RoundTripper
}

// Client implements judiciary.CaseRecordSource.
type Client struct {
	os      *opensearch.Client
	timeout time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

var _ judiciary.CaseRecordSource = (*Client)(nil)

// NewClient builds a DataJud client. No request is sent until the first search.
func NewClient(cfg ClientConfig, logger logging.Logger, metrics *prometheus.AppMetrics) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = judiciary.DefaultDataJudURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}

	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "APIKey "+cfg.APIKey)
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:     []string{base},
		Header:        header,
		Transport:     cfg.Transport,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 200 * time.Millisecond },
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to create datajud client")
	}

	return &Client{os: client, timeout: cfg.Timeout, logger: logger, metrics: metrics}, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FindCase looks up a single case by its CNJ number.
func (c *Client) FindCase(ctx context.Context, route judiciary.Route, caseID string) (*judiciary.CaseSource, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"numeroProcesso": judiciary.QueryNumber(caseID)},
		},
	}

	sources, err := c.search(ctx, route, "find_case", query)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return &sources[0], nil
}

// ListByBody fetches the latest filings of an adjudicating body. The body
// code is sent back exactly as DataJud returned it.
func (c *Client) ListByBody(ctx context.Context, route judiciary.Route, body judiciary.BodyRef, size int) ([]judiciary.CaseSource, error) {
	if !body.HasCode() {
		return nil, errors.New(errors.ErrCodeMissingJudicialUnit, "adjudicating body has no code")
	}
	if size <= 0 {
		size = defaultHistorySize
	}

	query := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"match": map[string]interface{}{"orgaoJulgador.codigo": body.Code},
		},
		"sort": []interface{}{
			map[string]interface{}{"dataAjuizamento": "desc"},
		},
	}
	return c.search(ctx, route, "list_by_body", query)
}

func (c *Client) search(ctx context.Context, route judiciary.Route, op string, query map[string]interface{}) ([]judiciary.CaseSource, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode datajud query")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	req := opensearchapi.SearchRequest{
		Index: []string{indexPrefix + route.APICode},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.os)
	c.metrics.RecordUpstreamCall(route.Court, op, time.Since(start))
	if err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(route.Court, "transport").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeHarvestTechnical, "datajud request failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.metrics.UpstreamErrors.WithLabelValues(route.Court, "status").Inc()
		return nil, c.handleErrorResponse(route, resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(route.Court, "decode").Inc()
		return nil, errors.Wrap(err, errors.ErrCodeHarvestTechnical, "failed to decode datajud response")
	}

	out := make([]judiciary.CaseSource, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, judiciary.DecodeCaseSource(h.Source))
	}

	c.logger.Debug("datajud search executed",
		logging.String("court", route.Court),
		logging.String("operation", op),
		logging.Int("hits", len(out)),
		logging.Duration("took", time.Since(start)))
	return out, nil
}

func (c *Client) handleErrorResponse(route judiciary.Route, resp *opensearchapi.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.logger.Warn("datajud rejected request",
		logging.String("court", route.Court),
		logging.Int("status", resp.StatusCode),
		logging.String("body", string(snippet)))

	rejected := &judiciary.CourtRejectedError{Court: route.Court, StatusCode: resp.StatusCode}
	return errors.Wrap(rejected, errors.ErrCodeCourtUnreachable, rejected.Error())
}

//Personal.AI order the ending
