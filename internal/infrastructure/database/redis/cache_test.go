package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/wealthdesk/wealthdesk/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := NewClientWithRedis(db, logging.NewNopLogger())
	s.cache = NewCache(client, WithPrefix("test:"), WithDefaultTTL(time.Minute))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedSummary struct {
	ClientID string  `json:"client_id"`
	Total    float64 `json:"total"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := cachedSummary{ClientID: "c1", Total: 44800}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:portfolio:c1").SetVal(string(data))

	var dest cachedSummary
	err := s.cache.Get(context.Background(), "portfolio:c1", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:missing").RedisNil()

	var dest cachedSummary
	err := s.cache.Get(context.Background(), "missing", &dest)

	assert.ErrorIs(s.T(), err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestGet_NullSentinel() {
	s.mock.ExpectGet("test:absent").SetVal(nullSentinel)

	var dest cachedSummary
	err := s.cache.Get(context.Background(), "absent", &dest)

	assert.ErrorIs(s.T(), err, ErrCacheMiss)
}

func (s *CacheTestSuite) TestGet_CorruptPayload() {
	s.mock.ExpectGet("test:bad").SetVal("{not-json")

	var dest cachedSummary
	err := s.cache.Get(context.Background(), "bad", &dest)

	assert.ErrorIs(s.T(), err, ErrSerializationFailed)
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)

	err := s.cache.Delete(context.Background(), "a", "b")
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestDelete_NoKeys() {
	err := s.cache.Delete(context.Background())
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestIncr() {
	s.mock.ExpectIncr("test:ratelimit:1.2.3.4").SetVal(3)

	n, err := s.cache.Incr(context.Background(), "ratelimit:1.2.3.4")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), n)
}

func (s *CacheTestSuite) TestExpire() {
	s.mock.ExpectExpire("test:ratelimit:1.2.3.4", time.Minute).SetVal(true)

	err := s.cache.Expire(context.Background(), "ratelimit:1.2.3.4", time.Minute)
	assert.NoError(s.T(), err)
}

func (s *CacheTestSuite) TestGet_ServerError() {
	s.mock.ExpectGet("test:k").SetErr(fmt.Errorf("connection reset"))

	var dest cachedSummary
	err := s.cache.Get(context.Background(), "k", &dest)

	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

// Set and GetOrSet write with a jittered TTL, which strict redismock argument
// matching cannot express, so those paths are covered through the pure pieces
// and the NopCache loader behavior instead.

func TestJitterTTL_Bounds(t *testing.T) {
	base := 10 * time.Minute
	for i := 0; i < 100; i++ {
		got := jitterTTL(base)
		assert.GreaterOrEqual(t, got, base-base/10)
		assert.LessOrEqual(t, got, base+base/10)
	}
	assert.Equal(t, time.Duration(0), jitterTTL(0))
}

func TestNopCache_GetOrSetRunsLoader(t *testing.T) {
	var cache Cache = NopCache{}

	calls := 0
	var dest cachedSummary
	err := cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(ctx context.Context) (any, error) {
		calls++
		return cachedSummary{ClientID: "c1", Total: 100}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, cachedSummary{ClientID: "c1", Total: 100}, dest)
}

func TestNopCache_GetOrSetNilLoaderResult(t *testing.T) {
	var cache Cache = NopCache{}

	var dest cachedSummary
	err := cache.GetOrSet(context.Background(), "k", &dest, time.Minute, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNopCache_AlwaysMisses(t *testing.T) {
	var cache Cache = NopCache{}

	var dest cachedSummary
	assert.ErrorIs(t, cache.Get(context.Background(), "k", &dest), ErrCacheMiss)
	assert.NoError(t, cache.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, cache.Delete(context.Background(), "k"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "portfolio:summary:c1", CacheKey("portfolio", "summary", "c1"))
}
