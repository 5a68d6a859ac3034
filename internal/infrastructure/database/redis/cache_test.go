package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientFromUniversal(db, logging.NewNopLogger())
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithDefaultTTL(time.Hour))
}

func (s *CacheTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

type dossier struct {
	Adjudicator string `json:"adjudicator"`
	Text        string `json:"text"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	want := dossier{Adjudicator: "Juiz da 1ª Vara", Text: "garantista"}
	raw, _ := json.Marshal(want)
	s.mock.ExpectGet("test:dossier:7").SetVal(string(raw))

	var got dossier
	s.Require().NoError(s.cache.Get(context.Background(), "dossier:7", &got))
	s.Equal(want, got)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:dossier:7").RedisNil()

	var got dossier
	err := s.cache.Get(context.Background(), "dossier:7", &got)
	s.ErrorIs(err, ErrCacheMiss)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_Failure() {
	s.mock.ExpectGet("test:k").SetErr(errors.New("READONLY"))

	var got dossier
	s.True(pkgerrors.IsCode(s.cache.Get(context.Background(), "k", &got), pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_DefaultTTL() {
	raw, _ := json.Marshal(dossier{Text: "x"})
	s.mock.ExpectSet("test:k", raw, time.Hour).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "k", dossier{Text: "x"}, 0))
}

func (s *CacheTestSuite) TestSet_ExplicitTTL() {
	raw, _ := json.Marshal([]float32{0.5, 1})
	s.mock.ExpectSet("test:emb", raw, 24*time.Hour).SetVal("OK")

	s.NoError(s.cache.Set(context.Background(), "emb", []float32{0.5, 1}, 24*time.Hour))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "k1", "k2"))
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	raw, _ := json.Marshal(dossier{Text: "cached"})
	s.mock.ExpectGet("test:k").SetVal(string(raw))

	var got dossier
	err := s.cache.GetOrSet(context.Background(), "k", &got, time.Minute, func(context.Context) (interface{}, error) {
		s.Fail("loader must not run on a hit")
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal("cached", got.Text)
}

func (s *CacheTestSuite) TestGetOrSet_MissLoadsAndStores() {
	loaded := dossier{Text: "fresh"}
	raw, _ := json.Marshal(loaded)
	s.mock.ExpectGet("test:k").RedisNil()
	s.mock.ExpectSet("test:k", raw, time.Minute).SetVal("OK")

	var got dossier
	err := s.cache.GetOrSet(context.Background(), "k", &got, time.Minute, func(context.Context) (interface{}, error) {
		return loaded, nil
	})
	s.Require().NoError(err)
	s.Equal(loaded, got)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:k").RedisNil()

	var got dossier
	err := s.cache.GetOrSet(context.Background(), "k", &got, time.Minute, func(context.Context) (interface{}, error) {
		return nil, errors.New("upstream down")
	})
	s.EqualError(err, "upstream down")
}

//Personal.AI order the ending
