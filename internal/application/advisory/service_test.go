package advisory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/domain/judiciary"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb/repositories"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/llm"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*llm.Completion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGenerator) Models(ctx context.Context) []string {
	return m.Called(ctx).Get(0).([]string)
}

type stubEvaluator struct {
	ev  *adherence.Evaluation
	err error
}

func (s stubEvaluator) Evaluate(ctx context.Context, adjudicatorID int64, p adherence.Petition) (*adherence.Evaluation, error) {
	return s.ev, s.err
}

type AdvisorySuite struct {
	suite.Suite
	conn  *sqldb.Connection
	store *repositories.Store
	mr    *miniredis.Miniredis
	cache redis.Cache
	gen   *MockGenerator
	adj   *judiciary.Adjudicator
	empty *judiciary.Adjudicator
}

func TestAdvisorySuite(t *testing.T) {
	suite.Run(t, new(AdvisorySuite))
}

func (s *AdvisorySuite) SetupTest() {
	log := logging.NewNopLogger()
	conn, err := sqldb.NewConnection(sqldb.Config{Dialect: sqldb.DialectSQLite, Path: ":memory:"}, log)
	s.Require().NoError(err)
	s.Require().NoError(sqldb.NewMigrator(conn, log).Up())
	s.conn = conn
	s.store = repositories.NewStore(conn, log)

	ctx := context.Background()
	uow, err := s.store.Begin(ctx)
	s.Require().NoError(err)
	defer func() { _ = uow.Rollback() }()

	unit := &judiciary.JudicialUnit{Name: "TJSP", Jurisdiction: "SP"}
	s.Require().NoError(uow.Units().Create(ctx, unit))
	s.adj = &judiciary.Adjudicator{Name: "Juízo da 5ª Vara Cível", Vara: "5ª Vara Cível", UnitID: unit.ID}
	s.Require().NoError(uow.Adjudicators().Create(ctx, s.adj))
	s.empty = &judiciary.Adjudicator{Name: "Juízo da 9ª Vara Cível", Vara: "9ª Vara Cível", UnitID: unit.ID}
	s.Require().NoError(uow.Adjudicators().Create(ctx, s.empty))
	for i := 0; i < 60; i++ {
		c := &judiciary.CaseRecord{Number: fmt.Sprintf("N%02d", i), Topic: "Dano Moral", Label: "[CONSUMIDOR] Risco: MEDIO", AdjudicatorID: s.adj.ID}
		s.Require().NoError(uow.Cases().Create(ctx, c))
	}
	s.Require().NoError(uow.Commit())

	s.mr = miniredis.RunT(s.T())
	client, err := redis.NewClient(redis.Config{Addr: s.mr.Addr()}, log)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = client.Close() })
	s.cache = redis.NewRedisCache(client, log, redis.WithPrefix("test:"), redis.WithJitter(false))
	s.gen = new(MockGenerator)
}

func (s *AdvisorySuite) TearDownTest() {
	_ = s.conn.Close()
}

func (s *AdvisorySuite) newService(ev Evaluator) *Service {
	return NewService(s.store, s.gen, ev, s.cache, Config{}, logging.NewNopLogger(), nil)
}

func (s *AdvisorySuite) evaluation() *adherence.Evaluation {
	return &adherence.Evaluation{
		Adjudicator: s.adj,
		Records:     60,
		Match:       &adherence.Match{Topic: "Dano Moral", Score: 87.5},
		Archive:     &minio.ArchivedPetition{Key: "petitions/1/abc.txt"},
		Text:        "Texto da petição inicial.",
	}
}

func (s *AdvisorySuite) TestDossier_GeneratesAndCaches() {
	var prompt llm.Request
	s.gen.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool { return r.Operation == "dossier" })).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(llm.Request) }).
		Return(&llm.Completion{Text: "Perfil garantista.", Model: "llama3-70b"}, nil).Once()

	svc := s.newService(nil)
	d, err := svc.Dossier(context.Background(), s.adj.ID, false)
	s.Require().NoError(err)

	s.Equal("Perfil garantista.", d.Text)
	s.Equal(50, d.Records)
	s.False(d.Cached)
	s.InDelta(0.4, prompt.Temperature, 1e-9)
	s.Contains(prompt.Prompt, "Crie um Perfil do juiz: Juízo da 5ª Vara Cível.")
	s.Contains(prompt.Prompt, "- Tema 'Dano Moral', Risco: [CONSUMIDOR] Risco: MEDIO\n")
	s.Equal(50, strings.Count(prompt.Prompt, "- Tema "))

	ttl := s.mr.TTL(fmt.Sprintf("test:dossier:%d", s.adj.ID))
	s.Equal(24*time.Hour, ttl)

	again, err := svc.Dossier(context.Background(), s.adj.ID, false)
	s.Require().NoError(err)
	s.True(again.Cached)
	s.Equal("Perfil garantista.", again.Text)
	s.gen.AssertExpectations(s.T())
}

func (s *AdvisorySuite) TestDossier_RefreshBypassesCache() {
	s.gen.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Text: "v1", Model: "m"}, nil).Once()
	s.gen.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Completion{Text: "v2", Model: "m"}, nil).Once()

	svc := s.newService(nil)
	_, err := svc.Dossier(context.Background(), s.adj.ID, false)
	s.Require().NoError(err)
	d, err := svc.Dossier(context.Background(), s.adj.ID, true)
	s.Require().NoError(err)
	s.Equal("v2", d.Text)
}

func (s *AdvisorySuite) TestDossier_Errors() {
	svc := s.newService(nil)

	_, err := svc.Dossier(context.Background(), 999, false)
	s.True(errors.IsNotFound(err))

	_, err = svc.Dossier(context.Background(), s.empty.ID, false)
	s.True(errors.IsCode(err, errors.ErrCodeInsufficientHistory))

	s.gen.On("Complete", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeLLMUnavailable, "no model answered")).Once()
	_, err = svc.Dossier(context.Background(), s.adj.ID, false)
	s.True(errors.IsCode(err, errors.ErrCodeLLMUnavailable))
}

func (s *AdvisorySuite) TestOpinion_WithoutDossier() {
	var prompt llm.Request
	s.gen.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(llm.Request) }).
		Return(&llm.Completion{Text: "Parecer.", Model: "llama3-8b"}, nil).Once()

	op, err := s.newService(stubEvaluator{ev: s.evaluation()}).Opinion(context.Background(), s.adj.ID, adherence.Petition{})
	s.Require().NoError(err)

	s.Equal("opinion", prompt.Operation)
	s.InDelta(0.3, prompt.Temperature, 1e-9)
	s.Contains(prompt.Prompt, "Tema do Processo: Dano Moral")
	s.Contains(prompt.Prompt, "Aderência ao histórico: 87.5%")
	s.Contains(prompt.Prompt, "PETIÇÃO: Texto da petição inicial.")
	s.NotContains(prompt.Prompt, "INFORMAÇÃO PRIVILEGIADA")

	s.False(op.UsedDossier)
	s.Equal("petitions/1/abc.txt", op.ArchiveKey)
	s.True(strings.HasSuffix(op.Text, EthicalNotice))
	s.Equal(EthicalNotice, op.Notice)
}

func (s *AdvisorySuite) TestOpinion_InjectsCachedDossier() {
	s.Require().NoError(s.cache.Set(context.Background(), fmt.Sprintf("dossier:%d", s.adj.ID),
		&Dossier{AdjudicatorID: s.adj.ID, Text: "Juiz rígido com provas."}, time.Hour))

	var prompt llm.Request
	s.gen.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(llm.Request) }).
		Return(&llm.Completion{Text: "Parecer.\n" + EthicalNotice, Model: "m"}, nil).Once()

	op, err := s.newService(stubEvaluator{ev: s.evaluation()}).Opinion(context.Background(), s.adj.ID, adherence.Petition{})
	s.Require().NoError(err)

	s.True(op.UsedDossier)
	s.Contains(prompt.Prompt, "INFORMAÇÃO PRIVILEGIADA")
	s.Contains(prompt.Prompt, "Juiz rígido com provas.")
	s.Equal(1, strings.Count(op.Text, EthicalNotice))
}

func (s *AdvisorySuite) TestOpinion_EvaluationFailureStops() {
	svc := s.newService(stubEvaluator{err: errors.New(errors.ErrCodeInsufficientHistory, "poucas decisões")})
	_, err := svc.Opinion(context.Background(), s.adj.ID, adherence.Petition{})
	s.True(errors.IsCode(err, errors.ErrCodeInsufficientHistory))
	s.gen.AssertNotCalled(s.T(), "Complete", mock.Anything, mock.Anything)
}

func (s *AdvisorySuite) TestModels_Delegates() {
	s.gen.On("Models", mock.Anything).Return([]string{"llama3-70b", llm.DefaultFallbackModel})
	s.Equal([]string{"llama3-70b", llm.DefaultFallbackModel}, s.newService(nil).Models(context.Background()))
}

func (s *AdvisorySuite) TestDossierContext() {
	got := DossierContext([]*judiciary.CaseRecord{
		{Topic: "Cobrança", Label: "[CIVIL] Risco: BAIXO"},
		{Topic: "Geral", Label: judiciary.PendingLabel},
	})
	s.Equal("- Tema 'Cobrança', Risco: [CIVIL] Risco: BAIXO\n- Tema 'Geral', Risco: Aguardando Análise\n", got)
}

//Personal.AI order the ending
