// Package insights provides book-level business metrics for the RM
// dashboard: an AUM/client-count snapshot and per-metric drill-downs.
package insights

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	domainportfolio "github.com/wealthdesk/wealthdesk/internal/domain/portfolio"
	domaintxn "github.com/wealthdesk/wealthdesk/internal/domain/transaction"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/redis"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Metric names accepted by Drilldown.
const (
	MetricRevenue  = "revenue"
	MetricAUM      = "aum"
	MetricActivity = "activity"
)

// bookCacheKey caches the snapshot; invalidation is TTL-only since the
// snapshot tolerates short staleness.
const bookCacheKey = "insights:book"

// drilldownPageSize sizes the ledger pages pulled for activity bucketing.
const drilldownPageSize = 500

// BookSnapshot is the book-level headline view.
type BookSnapshot struct {
	TotalClients    int64           `json:"total_clients"`
	Prospects       int64           `json:"prospects"`
	ActiveClients   int64           `json:"active_clients"`
	InactiveClients int64           `json:"inactive_clients"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
	AUM             decimal.Decimal `json:"aum"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// ClientMetricRow is one client's contribution to a revenue or AUM
// drill-down, ordered descending by value.
type ClientMetricRow struct {
	ClientID string          `json:"client_id"`
	Value    decimal.Decimal `json:"value"`
	Count    int64           `json:"count,omitempty"`
}

// Drilldown is the result of one metric query. Exactly one of Clients or
// Periods is populated, depending on the metric.
type Drilldown struct {
	Metric  string                          `json:"metric"`
	Clients []ClientMetricRow               `json:"clients,omitempty"`
	Periods []domainportfolio.PeriodSummary `json:"periods,omitempty"`
}

// Service defines book-level metric operations.
type Service interface {
	Book(ctx context.Context) (*BookSnapshot, error)
	Drilldown(ctx context.Context, metric, groupBy string, rng common.DateRange) (*Drilldown, error)
}

type serviceImpl struct {
	clients  domainclient.Repository
	ledger   domaintxn.Repository
	engine   *domainportfolio.Engine
	cache    redis.Cache
	logger   logging.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService creates the insights service.
func NewService(
	clients domainclient.Repository,
	ledger domaintxn.Repository,
	engine *domainportfolio.Engine,
	cache redis.Cache,
	logger logging.Logger,
	cacheTTL time.Duration,
) Service {
	return &serviceImpl{
		clients:  clients,
		ledger:   ledger,
		engine:   engine,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *serviceImpl) Book(ctx context.Context) (*BookSnapshot, error) {
	var snapshot BookSnapshot
	err := s.cache.GetOrSet(ctx, bookCacheKey, &snapshot, s.cacheTTL,
		func(ctx context.Context) (any, error) {
			return s.buildSnapshot(ctx)
		})
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *serviceImpl) buildSnapshot(ctx context.Context) (*BookSnapshot, error) {
	counts, err := s.clients.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	buyVolumes, err := s.ledger.SumBuyAmounts(ctx)
	if err != nil {
		return nil, err
	}

	invested := decimal.Zero
	for _, v := range buyVolumes {
		invested = invested.Add(v)
	}
	growth := decimal.NewFromFloat(s.engine.GrowthRate())
	aum := invested.Add(invested.Mul(growth))

	snap := &BookSnapshot{
		Prospects:       counts[domainclient.StatusProspect],
		ActiveClients:   counts[domainclient.StatusActive],
		InactiveClients: counts[domainclient.StatusInactive],
		TotalInvestment: invested,
		AUM:             aum,
		GeneratedAt:     s.now(),
	}
	snap.TotalClients = snap.Prospects + snap.ActiveClients + snap.InactiveClients
	return snap, nil
}

func (s *serviceImpl) Drilldown(ctx context.Context, metric, groupBy string, rng common.DateRange) (*Drilldown, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	switch metric {
	case MetricRevenue:
		return s.revenueDrilldown(ctx, rng)
	case MetricAUM:
		return s.aumDrilldown(ctx)
	case MetricActivity:
		return s.activityDrilldown(ctx, groupBy, rng)
	default:
		return nil, errors.New(errors.ErrCodeMetricUnknown, "unknown drill-down metric "+metric)
	}
}

func (s *serviceImpl) revenueDrilldown(ctx context.Context, rng common.DateRange) (*Drilldown, error) {
	rows, err := s.ledger.FeeRevenue(ctx, rng)
	if err != nil {
		return nil, err
	}

	out := make([]ClientMetricRow, len(rows))
	for i, r := range rows {
		out[i] = ClientMetricRow{
			ClientID: string(r.ClientID),
			Value:    r.TotalFees,
			Count:    r.Count,
		}
	}
	return &Drilldown{Metric: MetricRevenue, Clients: out}, nil
}

func (s *serviceImpl) aumDrilldown(ctx context.Context) (*Drilldown, error) {
	buyVolumes, err := s.ledger.SumBuyAmounts(ctx)
	if err != nil {
		return nil, err
	}

	growth := decimal.NewFromFloat(s.engine.GrowthRate())
	out := make([]ClientMetricRow, 0, len(buyVolumes))
	for cid, invested := range buyVolumes {
		out = append(out, ClientMetricRow{
			ClientID: string(cid),
			Value:    invested.Add(invested.Mul(growth)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Equal(out[j].Value) {
			return out[i].ClientID < out[j].ClientID
		}
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return &Drilldown{Metric: MetricAUM, Clients: out}, nil
}

// activityDrilldown buckets the whole book's ledger by period, paging
// through the store to bound memory per query.
func (s *serviceImpl) activityDrilldown(ctx context.Context, groupBy string, rng common.DateRange) (*Drilldown, error) {
	period, err := domainportfolio.ParsePeriod(groupBy)
	if err != nil {
		return nil, err
	}

	var all []*domaintxn.Transaction
	p := common.Pagination{Page: 1, PageSize: drilldownPageSize}
	for {
		txns, total, err := s.ledger.List(ctx, domaintxn.Filter{Range: rng}, p)
		if err != nil {
			return nil, err
		}
		all = append(all, txns...)
		if int64(len(all)) >= total || len(txns) == 0 {
			break
		}
		p.Page++
	}

	buckets, skipped := s.engine.ComputeTransactionSummary(all, period, rng)
	if skipped > 0 {
		s.logger.Warn("transactions with zero dates excluded from activity drill-down",
			logging.Int("skipped", skipped))
	}
	return &Drilldown{Metric: MetricActivity, Periods: buckets}, nil
}
