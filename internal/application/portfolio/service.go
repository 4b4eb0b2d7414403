// Package portfolio provides the application service that joins the
// transaction ledger to the aggregation engine: recording and listing ledger
// entries, and serving the derived portfolio views with a cache-aside layer.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	domainportfolio "github.com/wealthdesk/wealthdesk/internal/domain/portfolio"
	domaintxn "github.com/wealthdesk/wealthdesk/internal/domain/transaction"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/redis"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/messaging/kafka"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Service defines ledger and portfolio-analytics operations.
type Service interface {
	RecordTransaction(ctx context.Context, input RecordInput) (*domaintxn.Transaction, error)
	DeleteTransaction(ctx context.Context, clientID, transactionID string) error
	ListTransactions(ctx context.Context, input ListInput) (*common.PageResponse[*domaintxn.Transaction], error)

	GetSummary(ctx context.Context, clientID string) (*domainportfolio.Summary, error)
	GetTransactionSummary(ctx context.Context, clientID, groupBy string, rng common.DateRange) ([]domainportfolio.PeriodSummary, error)
	GetPerformance(ctx context.Context, clientID string) ([]domainportfolio.PerformancePeriod, error)
}

// RecordInput carries the fields for a new ledger entry. Amounts arrive as
// strings so the handler never round-trips money through float64.
type RecordInput struct {
	ClientID    string `json:"-"`
	Type        string `json:"transaction_type"`
	ProductType string `json:"product_type"`
	ProductName string `json:"product_name"`
	Amount      string `json:"amount"`
	Fees        string `json:"fees"`
	Taxes       string `json:"taxes"`
	TradeDate   string `json:"transaction_date"` // 2006-01-02
	Notes       string `json:"notes"`
}

// ListInput narrows and pages a ledger listing for one client.
type ListInput struct {
	ClientID string
	Range    common.DateRange
	Page     int
	PageSize int
}

type serviceImpl struct {
	clients    domainclient.Repository
	ledger     domaintxn.Repository
	engine     *domainportfolio.Engine
	cache      redis.Cache
	publisher  kafka.Publisher
	metrics    *prometheus.Metrics
	logger     logging.Logger
	summaryTTL time.Duration
	now        func() time.Time
}

// NewService creates the portfolio application service.
func NewService(
	clients domainclient.Repository,
	ledger domaintxn.Repository,
	engine *domainportfolio.Engine,
	cache redis.Cache,
	publisher kafka.Publisher,
	metrics *prometheus.Metrics,
	logger logging.Logger,
	summaryTTL time.Duration,
) Service {
	return &serviceImpl{
		clients:    clients,
		ledger:     ledger,
		engine:     engine,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
		summaryTTL: summaryTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func summaryCacheKey(clientID common.ID) string {
	return redis.CacheKey("portfolio", "summary", string(clientID))
}

func (s *serviceImpl) RecordTransaction(ctx context.Context, input RecordInput) (*domaintxn.Transaction, error) {
	cid, err := s.resolveClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(input.Amount, "amount")
	if err != nil {
		return nil, err
	}
	fees, err := parseOptionalAmount(input.Fees, "fees")
	if err != nil {
		return nil, err
	}
	taxes, err := parseOptionalAmount(input.Taxes, "taxes")
	if err != nil {
		return nil, err
	}
	tradeDate, err := time.Parse("2006-01-02", input.TradeDate)
	if err != nil {
		return nil, errors.New(errors.ErrCodeTransactionDateInvalid,
			fmt.Sprintf("transaction date %q is not in YYYY-MM-DD form", input.TradeDate))
	}

	t, err := domaintxn.New(cid, input.Type, input.ProductType, input.ProductName, amount, fees, taxes, tradeDate)
	if err != nil {
		return nil, err
	}
	t.Notes = input.Notes

	if err := s.ledger.Create(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cid)
	s.emit(ctx, kafka.TopicTransactionRecorded, string(cid), kafka.TransactionRecordedPayload{
		TransactionID: string(t.ID),
		ClientID:      string(cid),
		Type:          string(t.Type),
		ProductType:   t.ProductType,
		TotalAmount:   t.TotalAmount.String(),
		TradeDate:     t.TradeDate,
	})
	return t, nil
}

func (s *serviceImpl) DeleteTransaction(ctx context.Context, clientID, transactionID string) error {
	cid, err := parseClientID(clientID)
	if err != nil {
		return err
	}
	tid := common.ID(transactionID)
	if err := tid.Validate(); err != nil {
		return errors.InvalidParam("malformed transaction id")
	}

	t, err := s.ledger.GetByID(ctx, tid)
	if err != nil {
		return err
	}
	if t.ClientID != cid {
		return errors.New(errors.ErrCodeTransactionNotFound, "transaction does not belong to client")
	}

	if err := s.ledger.Delete(ctx, tid); err != nil {
		return err
	}

	s.invalidate(ctx, cid)
	s.emit(ctx, kafka.TopicTransactionDeleted, string(cid), kafka.TransactionDeletedPayload{
		TransactionID: string(tid),
		ClientID:      string(cid),
		DeletedAt:     s.now(),
	})
	return nil
}

func (s *serviceImpl) ListTransactions(ctx context.Context, input ListInput) (*common.PageResponse[*domaintxn.Transaction], error) {
	cid, err := s.resolveClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if err := input.Range.Validate(); err != nil {
		return nil, err
	}

	p := common.Pagination{Page: input.Page, PageSize: input.PageSize}
	if p.Page == 0 && p.PageSize == 0 {
		p = common.DefaultPagination()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	txns, total, err := s.ledger.List(ctx, domaintxn.Filter{ClientID: cid, Range: input.Range}, p)
	if err != nil {
		return nil, err
	}
	page := common.NewPageResponse(txns, total, p)
	return &page, nil
}

// GetSummary serves the cached portfolio summary, recomputing from the full
// ledger on a miss. An empty ledger yields the zero-state summary, never an
// error.
func (s *serviceImpl) GetSummary(ctx context.Context, clientID string) (*domainportfolio.Summary, error) {
	cid, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var summary domainportfolio.Summary
	missed := false
	err = s.cache.GetOrSet(ctx, summaryCacheKey(cid), &summary, s.summaryTTL,
		func(ctx context.Context) (any, error) {
			missed = true
			txns, err := s.ledger.ListByClient(ctx, cid, common.DateRange{})
			if err != nil {
				return nil, err
			}
			start := s.now()
			computed := s.engine.ComputeSummary(txns)
			s.metrics.ObserveCompute("summary", time.Since(start))
			return computed, nil
		})
	if err != nil {
		return nil, err
	}

	if missed {
		s.metrics.PortfolioCacheMisses.Inc()
	} else {
		s.metrics.PortfolioCacheHits.Inc()
	}
	return &summary, nil
}

func (s *serviceImpl) GetTransactionSummary(ctx context.Context, clientID, groupBy string, rng common.DateRange) ([]domainportfolio.PeriodSummary, error) {
	cid, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	period, err := domainportfolio.ParsePeriod(groupBy)
	if err != nil {
		return nil, err
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	txns, err := s.ledger.ListByClient(ctx, cid, common.DateRange{})
	if err != nil {
		return nil, err
	}

	start := s.now()
	buckets, skipped := s.engine.ComputeTransactionSummary(txns, period, rng)
	s.metrics.ObserveCompute("transaction_summary", time.Since(start))

	if skipped > 0 {
		s.logger.Warn("transactions with zero dates excluded from period buckets",
			logging.String("client_id", string(cid)),
			logging.Int("skipped", skipped))
	}
	return buckets, nil
}

func (s *serviceImpl) GetPerformance(ctx context.Context, clientID string) ([]domainportfolio.PerformancePeriod, error) {
	cid, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	txns, err := s.ledger.ListByClient(ctx, cid, common.DateRange{})
	if err != nil {
		return nil, err
	}

	start := s.now()
	periods := s.engine.ComputePerformancePeriods(txns, s.now())
	s.metrics.ObserveCompute("performance", time.Since(start))
	return periods, nil
}

// resolveClient validates the ID and confirms the client exists so portfolio
// routes 404 on unknown clients rather than returning an empty summary.
func (s *serviceImpl) resolveClient(ctx context.Context, clientID string) (common.ID, error) {
	cid, err := parseClientID(clientID)
	if err != nil {
		return "", err
	}
	if _, err := s.clients.GetByID(ctx, cid); err != nil {
		return "", err
	}
	return cid, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, cid common.ID) {
	if err := s.cache.DeleteByPrefix(ctx, redis.CacheKey("portfolio", "summary", string(cid))); err != nil {
		s.logger.Warn("portfolio cache invalidation failed",
			logging.String("client_id", string(cid)),
			logging.Err(err))
	}
}

func (s *serviceImpl) emit(ctx context.Context, topic, key string, payload any) {
	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		s.logger.Warn("activity event publish failed",
			logging.String("topic", topic),
			logging.Err(err))
	}
}

func parseClientID(id string) (common.ID, error) {
	cid := common.ID(id)
	if err := cid.Validate(); err != nil {
		return "", errors.InvalidParam("malformed client id")
	}
	return cid, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, errors.InvalidParam(field + " is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.InvalidParam(fmt.Sprintf("%s %q is not a valid decimal", field, raw))
	}
	return d, nil
}

func parseOptionalAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw, field)
}
