// Package query serves the read side: adjudicator listings, topic search,
// platform totals and the per-adjudicator dashboard.
package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

const (
	MaxTopicResults   = 50
	LatestRecords     = 10
	StatusOperational = "operational"
)

// AdjudicatorPage is one window of the adjudicator listing.
type AdjudicatorPage struct {
	Items []*judiciary.Adjudicator `json:"items"`
	Total int64                    `json:"total"`
	Skip  int                      `json:"skip"`
	Limit int                      `json:"limit"`
}

// Overview is the platform-wide counter block.
type Overview struct {
	TotalAdjudicators int64  `json:"total_adjudicators"`
	TotalCases        int64  `json:"total_cases"`
	Status            string `json:"status"`
}

// Dashboard summarises one adjudicating body.
type Dashboard struct {
	Adjudicator *judiciary.Adjudicator  `json:"adjudicator"`
	Volume      int64                   `json:"volume"`
	Topics      []judiciary.TopicCount  `json:"topics"`
	Latest      []*judiciary.CaseRecord `json:"latest"`
}

type Service struct {
	repos  judiciary.Repositories
	logger logging.Logger
}

func NewService(repos judiciary.Repositories, logger logging.Logger) *Service {
	return &Service{repos: repos, logger: logger}
}

// ListAdjudicators pages through adjudicating bodies ordered by id.
func (s *Service) ListAdjudicators(ctx context.Context, page common.Page) (*AdjudicatorPage, error) {
	page = page.Normalize()

	var (
		items []*judiciary.Adjudicator
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.repos.Adjudicators().List(gctx, page.Skip, page.Limit)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repos.Adjudicators().Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*judiciary.Adjudicator{}
	}
	return &AdjudicatorPage{Items: items, Total: total, Skip: page.Skip, Limit: page.Limit}, nil
}

// SearchCases returns at most MaxTopicResults records whose topic contains
// fragment verbatim. The match is case-sensitive and whitespace counts; an
// empty fragment lists the first records.
func (s *Service) SearchCases(ctx context.Context, fragment string, limit int) ([]*judiciary.CaseRecord, error) {
	if limit <= 0 || limit > MaxTopicResults {
		limit = MaxTopicResults
	}
	out, err := s.repos.Cases().SearchByTopic(ctx, fragment, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*judiciary.CaseRecord{}
	}
	return out, nil
}

// Overview counts adjudicators and case records.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	ov := &Overview{Status: StatusOperational}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.TotalAdjudicators, err = s.repos.Adjudicators().Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		ov.TotalCases, err = s.repos.Cases().Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ov, nil
}

// Dashboard gathers the volume, full topic distribution and latest records
// of one adjudicating body.
func (s *Service) Dashboard(ctx context.Context, adjudicatorID int64) (*Dashboard, error) {
	adj, err := s.repos.Adjudicators().GetByID(ctx, adjudicatorID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Adjudicator: adj}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Volume, err = s.repos.Cases().CountByAdjudicator(gctx, adjudicatorID)
		return err
	})
	g.Go(func() (err error) {
		d.Topics, err = s.repos.Cases().TopicDistribution(gctx, adjudicatorID, 0)
		return err
	})
	g.Go(func() (err error) {
		d.Latest, err = s.repos.Cases().ListByAdjudicator(gctx, adjudicatorID, LatestRecords)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard query failed", logging.Int64("adjudicator_id", adjudicatorID), logging.Err(err))
		return nil, err
	}
	if d.Topics == nil {
		d.Topics = []judiciary.TopicCount{}
	}
	if d.Latest == nil {
		d.Latest = []*judiciary.CaseRecord{}
	}
	return d, nil
}

//Personal.AI order the ending
