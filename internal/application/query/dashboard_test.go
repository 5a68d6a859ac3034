package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb/repositories"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

type DashboardSuite struct {
	suite.Suite
	conn  *sqldb.Connection
	svc   *Service
	busy  *judiciary.Adjudicator
	quiet *judiciary.Adjudicator
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}

func (s *DashboardSuite) SetupTest() {
	log := logging.NewNopLogger()
	conn, err := sqldb.NewConnection(sqldb.Config{Dialect: sqldb.DialectSQLite, Path: ":memory:"}, log)
	s.Require().NoError(err)
	s.Require().NoError(sqldb.NewMigrator(conn, log).Up())
	s.conn = conn
	store := repositories.NewStore(conn, log)

	ctx := context.Background()
	uow, err := store.Begin(ctx)
	s.Require().NoError(err)
	defer func() { _ = uow.Rollback() }()

	unit := &judiciary.JudicialUnit{Name: "TJMG", Jurisdiction: "MG"}
	s.Require().NoError(uow.Units().Create(ctx, unit))

	s.busy = &judiciary.Adjudicator{Name: "Juízo da 1ª Vara Cível", Vara: "1ª Vara Cível", UnitID: unit.ID}
	s.Require().NoError(uow.Adjudicators().Create(ctx, s.busy))
	s.quiet = &judiciary.Adjudicator{Name: "Juízo da 2ª Vara Cível", Vara: "2ª Vara Cível", UnitID: unit.ID}
	s.Require().NoError(uow.Adjudicators().Create(ctx, s.quiet))
	for i := 3; i <= 5; i++ {
		a := &judiciary.Adjudicator{Name: fmt.Sprintf("Juízo da %dª Vara Cível", i), Vara: fmt.Sprintf("%dª Vara Cível", i), UnitID: unit.ID}
		s.Require().NoError(uow.Adjudicators().Create(ctx, a))
	}

	// 12 records: Dano Moral x7, Cobrança x3, dano moral reflexo x2.
	for i := 0; i < 12; i++ {
		topic := "Dano Moral"
		switch {
		case i >= 10:
			topic = "dano moral reflexo"
		case i >= 7:
			topic = "Cobrança"
		}
		c := &judiciary.CaseRecord{Number: fmt.Sprintf("B%02d", i), Topic: topic, Label: judiciary.PendingLabel, AdjudicatorID: s.busy.ID}
		s.Require().NoError(uow.Cases().Create(ctx, c))
	}
	for i := 0; i < 60; i++ {
		c := &judiciary.CaseRecord{Number: fmt.Sprintf("Q%02d", i), Topic: "Execução Fiscal", Label: judiciary.PendingLabel, AdjudicatorID: s.quiet.ID}
		s.Require().NoError(uow.Cases().Create(ctx, c))
	}
	s.Require().NoError(uow.Commit())

	s.svc = NewService(store, log)
}

func (s *DashboardSuite) TearDownTest() {
	_ = s.conn.Close()
}

func (s *DashboardSuite) TestListAdjudicators_Pages() {
	page, err := s.svc.ListAdjudicators(context.Background(), common.Page{Skip: 1, Limit: 2})
	s.Require().NoError(err)

	s.Equal(int64(5), page.Total)
	s.Require().Len(page.Items, 2)
	s.Equal(s.quiet.ID, page.Items[0].ID)
	s.Equal("2ª Vara Cível", page.Items[0].Vara)
	s.Equal(1, page.Skip)
	s.Equal(2, page.Limit)
}

func (s *DashboardSuite) TestListAdjudicators_DefaultsAndEmptyTail() {
	page, err := s.svc.ListAdjudicators(context.Background(), common.Page{})
	s.Require().NoError(err)
	s.Len(page.Items, 5)
	s.Equal(100, page.Limit)

	tail, err := s.svc.ListAdjudicators(context.Background(), common.Page{Skip: 10, Limit: 5})
	s.Require().NoError(err)
	s.NotNil(tail.Items)
	s.Empty(tail.Items)
}

func (s *DashboardSuite) TestSearchCases_CaseSensitive() {
	got, err := s.svc.SearchCases(context.Background(), "Dano", 0)
	s.Require().NoError(err)
	s.Len(got, 7)
	for _, c := range got {
		s.Equal("Dano Moral", c.Topic)
	}

	lower, err := s.svc.SearchCases(context.Background(), "dano", 0)
	s.Require().NoError(err)
	s.Len(lower, 2)
}

func (s *DashboardSuite) TestSearchCases_Capped() {
	got, err := s.svc.SearchCases(context.Background(), "Fiscal", 500)
	s.Require().NoError(err)
	s.Len(got, MaxTopicResults)

	few, err := s.svc.SearchCases(context.Background(), "Fiscal", 5)
	s.Require().NoError(err)
	s.Len(few, 5)
}

func (s *DashboardSuite) TestSearchCases_NoMatchAndBlank() {
	got, err := s.svc.SearchCases(context.Background(), "Usucapião", 0)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)

	all, err := s.svc.SearchCases(context.Background(), "", 0)
	s.Require().NoError(err)
	s.Len(all, MaxTopicResults)
	s.Equal("B00", all[0].Number)
}

func (s *DashboardSuite) TestSearchCases_WhitespaceIsLiteral() {
	blank, err := s.svc.SearchCases(context.Background(), "   ", 0)
	s.Require().NoError(err)
	s.Empty(blank)

	spaced, err := s.svc.SearchCases(context.Background(), " Moral", 0)
	s.Require().NoError(err)
	s.Len(spaced, 7)
}

func (s *DashboardSuite) TestOverview() {
	ov, err := s.svc.Overview(context.Background())
	s.Require().NoError(err)
	s.Equal(&Overview{TotalAdjudicators: 5, TotalCases: 72, Status: StatusOperational}, ov)
}

func (s *DashboardSuite) TestDashboard() {
	d, err := s.svc.Dashboard(context.Background(), s.busy.ID)
	s.Require().NoError(err)

	s.Equal(s.busy.Name, d.Adjudicator.Name)
	s.Equal(int64(12), d.Volume)
	s.Equal([]judiciary.TopicCount{
		{Topic: "Dano Moral", Count: 7},
		{Topic: "Cobrança", Count: 3},
		{Topic: "dano moral reflexo", Count: 2},
	}, d.Topics)

	s.Require().Len(d.Latest, LatestRecords)
	s.Equal("B11", d.Latest[0].Number)
	s.Equal("B02", d.Latest[LatestRecords-1].Number)
}

func (s *DashboardSuite) TestDashboard_EmptyAndUnknown() {
	log := logging.NewNopLogger()
	store := repositories.NewStore(s.conn, log)
	uow, err := store.Begin(context.Background())
	s.Require().NoError(err)
	idle := &judiciary.Adjudicator{Name: "Juízo da 9ª Vara Cível", Vara: "9ª Vara Cível", UnitID: s.busy.UnitID}
	s.Require().NoError(uow.Adjudicators().Create(context.Background(), idle))
	s.Require().NoError(uow.Commit())

	d, err := s.svc.Dashboard(context.Background(), idle.ID)
	s.Require().NoError(err)
	s.Zero(d.Volume)
	s.NotNil(d.Topics)
	s.Empty(d.Topics)
	s.NotNil(d.Latest)
	s.Empty(d.Latest)

	_, err = s.svc.Dashboard(context.Background(), 9999)
	s.True(errors.IsNotFound(err))
}

//Personal.AI order the ending
