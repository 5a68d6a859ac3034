package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// JudiciaryClient triggers harvests and reads adjudicators, cases and
// dashboards.
type JudiciaryClient struct {
	client *Client
}

// Route is the court a CNJ number resolves to.
type Route struct {
	Endpoint          string `json:"endpoint"`
	Court             string `json:"court"`
	Jurisdiction      string `json:"jurisdiction"`
	APICode           string `json:"api_code"`
	Fallback          bool   `json:"fallback"`
	Warning           string `json:"warning,omitempty"`
	InvalidIdentifier bool   `json:"invalid_identifier"`
}

// HarvestStats are the store counters of one harvest.
type HarvestStats struct {
	New      int `json:"novos"`
	WithText int `json:"com_teor"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// ClassificationResult summarises a classifier pass.
type ClassificationResult struct {
	Scanned  int           `json:"scanned"`
	Updated  int           `json:"updated"`
	Duration time.Duration `json:"duration_ns"`
}

// HarvestResult is the outcome of a synchronous harvest. Success false is a
// regular answer, not an error: Message explains what to do next.
type HarvestResult struct {
	Success         bool                  `json:"success"`
	Message         string                `json:"message"`
	AdjudicatorName string                `json:"unit_display_name,omitempty"`
	Court           string                `json:"court,omitempty"`
	Warning         string                `json:"warning,omitempty"`
	Failure         string                `json:"failure,omitempty"`
	Stats           *HarvestStats         `json:"stats,omitempty"`
	Classification  *ClassificationResult `json:"classification,omitempty"`
}

// QueuedHarvest acknowledges an asynchronous harvest.
type QueuedHarvest struct {
	EventID string `json:"event_id"`
	CaseID  string `json:"case_id"`
	Status  string `json:"status"`
}

// Adjudicator is an adjudicating body.
type Adjudicator struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Vara           string `json:"vara"`
	JudicialUnitID int64  `json:"judicial_unit_id"`
}

// AdjudicatorPage is one window of the adjudicator listing.
type AdjudicatorPage struct {
	Items []*Adjudicator `json:"items"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// CaseRecord is a stored case.
type CaseRecord struct {
	ID            int64      `json:"id"`
	Number        string     `json:"case_number"`
	DecisionText  string     `json:"decision_text"`
	Label         string     `json:"label"`
	Topic         string     `json:"topic"`
	FiledOn       *time.Time `json:"filed_on,omitempty"`
	AdjudicatorID int64      `json:"adjudicator_id"`
}

// TopicCount is one entry of a topic distribution.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

// Dashboard summarises one adjudicating body.
type Dashboard struct {
	Adjudicator *Adjudicator  `json:"adjudicator"`
	Volume      int64         `json:"volume"`
	Topics      []TopicCount  `json:"topics"`
	Latest      []*CaseRecord `json:"latest"`
}

// Overview is the platform-wide counter block.
type Overview struct {
	TotalAdjudicators int64  `json:"total_adjudicators"`
	TotalCases        int64  `json:"total_cases"`
	Status            string `json:"status"`
}

// PurgeReport is the outcome of a duplicate purge.
type PurgeReport struct {
	Before  int64 `json:"before"`
	After   int64 `json:"after"`
	Removed int64 `json:"removed"`
}

type harvestRequest struct {
	CaseID   string `json:"case_id"`
	Classify bool   `json:"classify"`
}

// Harvest clones the profile behind caseID and waits for the result. With
// classify the server runs the classifier after a successful harvest.
func (j *JudiciaryClient) Harvest(ctx context.Context, caseID string, classify bool) (*HarvestResult, error) {
	if strings.TrimSpace(caseID) == "" {
		return nil, fmt.Errorf("%w: case id is required", ErrInvalidConfig)
	}
	var out HarvestResult
	if err := j.client.post(ctx, "/api/v1/harvests", harvestRequest{CaseID: caseID, Classify: classify}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnqueueHarvest queues a harvest for the background worker.
func (j *JudiciaryClient) EnqueueHarvest(ctx context.Context, caseID string, classify bool) (*QueuedHarvest, error) {
	if strings.TrimSpace(caseID) == "" {
		return nil, fmt.Errorf("%w: case id is required", ErrInvalidConfig)
	}
	var out QueuedHarvest
	if err := j.client.post(ctx, "/api/v1/harvests?async=true", harvestRequest{CaseID: caseID, Classify: classify}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Route asks the server which court caseID belongs to.
func (j *JudiciaryClient) Route(ctx context.Context, caseID string) (*Route, error) {
	var out Route
	if err := j.client.get(ctx, "/api/v1/route?id="+url.QueryEscape(caseID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAdjudicators pages through adjudicating bodies.
func (j *JudiciaryClient) ListAdjudicators(ctx context.Context, skip, limit int) (*AdjudicatorPage, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out AdjudicatorPage
	if err := j.client.get(ctx, "/api/v1/adjudicators?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchCases returns up to 50 records whose topic contains fragment
// (case-sensitive).
func (j *JudiciaryClient) SearchCases(ctx context.Context, fragment string) ([]*CaseRecord, error) {
	var out []*CaseRecord
	if err := j.client.get(ctx, "/api/v1/cases?topic="+url.QueryEscape(fragment), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dashboard returns the volume, topic distribution and latest records of an
// adjudicating body.
func (j *JudiciaryClient) Dashboard(ctx context.Context, adjudicatorID int64) (*Dashboard, error) {
	var out Dashboard
	if err := j.client.get(ctx, fmt.Sprintf("/api/v1/adjudicators/%d/dashboard", adjudicatorID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Overview returns the platform totals.
func (j *JudiciaryClient) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	if err := j.client.get(ctx, "/api/v1/metrics", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Classify runs the batch classifier over every stored record.
func (j *JudiciaryClient) Classify(ctx context.Context) (*ClassificationResult, error) {
	var out ClassificationResult
	if err := j.client.post(ctx, "/api/v1/maintenance/classify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurgeDuplicates removes duplicate case rows, keeping the newest per number.
func (j *JudiciaryClient) PurgeDuplicates(ctx context.Context) (*PurgeReport, error) {
	var out PurgeReport
	if err := j.client.post(ctx, "/api/v1/maintenance/purge-duplicates", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
