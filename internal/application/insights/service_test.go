package insights

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	domainportfolio "github.com/wealthdesk/wealthdesk/internal/domain/portfolio"
	domaintxn "github.com/wealthdesk/wealthdesk/internal/domain/transaction"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/redis"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

type mockClientRepo struct {
	counts map[domainclient.Status]int64
}

func (m *mockClientRepo) Create(context.Context, *domainclient.Client) error { return nil }
func (m *mockClientRepo) GetByID(context.Context, common.ID) (*domainclient.Client, error) {
	return nil, nil
}
func (m *mockClientRepo) GetByEmail(context.Context, string) (*domainclient.Client, error) {
	return nil, nil
}
func (m *mockClientRepo) Update(context.Context, *domainclient.Client) error { return nil }
func (m *mockClientRepo) Delete(context.Context, common.ID) error            { return nil }
func (m *mockClientRepo) List(context.Context, domainclient.Filter, common.Pagination) ([]*domainclient.Client, int64, error) {
	return nil, 0, nil
}
func (m *mockClientRepo) CountByStatus(context.Context) (map[domainclient.Status]int64, error) {
	return m.counts, nil
}

type mockLedger struct {
	txns       []*domaintxn.Transaction
	buyVolumes map[common.ID]decimal.Decimal
	revenue    []domaintxn.RevenueRow
}

func (m *mockLedger) Create(context.Context, *domaintxn.Transaction) error { return nil }
func (m *mockLedger) GetByID(context.Context, common.ID) (*domaintxn.Transaction, error) {
	return nil, nil
}
func (m *mockLedger) Delete(context.Context, common.ID) error { return nil }
func (m *mockLedger) ListByClient(context.Context, common.ID, common.DateRange) ([]*domaintxn.Transaction, error) {
	return m.txns, nil
}
func (m *mockLedger) List(_ context.Context, _ domaintxn.Filter, p common.Pagination) ([]*domaintxn.Transaction, int64, error) {
	start := (p.Page - 1) * p.PageSize
	if start >= len(m.txns) {
		return nil, int64(len(m.txns)), nil
	}
	end := start + p.PageSize
	if end > len(m.txns) {
		end = len(m.txns)
	}
	return m.txns[start:end], int64(len(m.txns)), nil
}
func (m *mockLedger) SumBuyAmounts(context.Context) (map[common.ID]decimal.Decimal, error) {
	return m.buyVolumes, nil
}
func (m *mockLedger) FeeRevenue(context.Context, common.DateRange) ([]domaintxn.RevenueRow, error) {
	return m.revenue, nil
}

func newTestService(clients *mockClientRepo, ledger *mockLedger) Service {
	return NewService(clients, ledger, domainportfolio.NewEngine(),
		redis.NopCache{}, logging.NewNopLogger(), time.Minute)
}

func TestBook(t *testing.T) {
	c1, c2 := common.NewID(), common.NewID()
	svc := newTestService(
		&mockClientRepo{counts: map[domainclient.Status]int64{
			domainclient.StatusProspect: 3,
			domainclient.StatusActive:   10,
			domainclient.StatusInactive: 2,
		}},
		&mockLedger{buyVolumes: map[common.ID]decimal.Decimal{
			c1: decimal.RequireFromString("100000"),
			c2: decimal.RequireFromString("50000"),
		}},
	)

	snap, err := svc.Book(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(15), snap.TotalClients)
	assert.Equal(t, int64(3), snap.Prospects)
	assert.Equal(t, int64(10), snap.ActiveClients)
	assert.True(t, snap.TotalInvestment.Equal(decimal.RequireFromString("150000")))
	assert.True(t, snap.AUM.Equal(decimal.RequireFromString("168000")))
}

func TestBook_EmptyBook(t *testing.T) {
	svc := newTestService(&mockClientRepo{counts: map[domainclient.Status]int64{}}, &mockLedger{})

	snap, err := svc.Book(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.TotalClients)
	assert.True(t, snap.AUM.IsZero())
}

func TestDrilldown_Revenue(t *testing.T) {
	c1 := common.NewID()
	svc := newTestService(&mockClientRepo{}, &mockLedger{
		revenue: []domaintxn.RevenueRow{
			{ClientID: c1, TotalFees: decimal.RequireFromString("1250.50"), Count: 8},
		},
	})

	got, err := svc.Drilldown(context.Background(), "revenue", "", common.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, MetricRevenue, got.Metric)
	require.Len(t, got.Clients, 1)
	assert.Equal(t, string(c1), got.Clients[0].ClientID)
	assert.True(t, got.Clients[0].Value.Equal(decimal.RequireFromString("1250.50")))
	assert.Equal(t, int64(8), got.Clients[0].Count)
}

func TestDrilldown_AUMOrdering(t *testing.T) {
	small, big := common.NewID(), common.NewID()
	svc := newTestService(&mockClientRepo{}, &mockLedger{
		buyVolumes: map[common.ID]decimal.Decimal{
			small: decimal.RequireFromString("1000"),
			big:   decimal.RequireFromString("90000"),
		},
	})

	got, err := svc.Drilldown(context.Background(), "aum", "", common.DateRange{})
	require.NoError(t, err)

	require.Len(t, got.Clients, 2)
	assert.Equal(t, string(big), got.Clients[0].ClientID)
	assert.True(t, got.Clients[0].Value.Equal(decimal.RequireFromString("100800")))
}

func TestDrilldown_Activity(t *testing.T) {
	cid := common.NewID()
	mk := func(amount string, date time.Time) *domaintxn.Transaction {
		txn, err := domaintxn.New(cid, "buy", "equity", "Fund A",
			decimal.RequireFromString(amount), decimal.Zero, decimal.Zero, date)
		require.NoError(t, err)
		return txn
	}
	svc := newTestService(&mockClientRepo{}, &mockLedger{
		txns: []*domaintxn.Transaction{
			mk("100", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
			mk("200", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
			mk("300", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)),
		},
	})

	got, err := svc.Drilldown(context.Background(), "activity", "month", common.DateRange{})
	require.NoError(t, err)

	require.Len(t, got.Periods, 2)
	assert.Equal(t, "2024-01", got.Periods[0].Period)
	assert.Equal(t, 2, got.Periods[0].TransactionCount)
	assert.Equal(t, "2024-02", got.Periods[1].Period)
}

func TestDrilldown_ActivityBadGroupBy(t *testing.T) {
	svc := newTestService(&mockClientRepo{}, &mockLedger{})

	_, err := svc.Drilldown(context.Background(), "activity", "decade", common.DateRange{})
	assert.True(t, errors.IsCode(err, errors.ErrCodePeriodInvalid))
}

func TestDrilldown_UnknownMetric(t *testing.T) {
	svc := newTestService(&mockClientRepo{}, &mockLedger{})

	_, err := svc.Drilldown(context.Background(), "sharpe", "", common.DateRange{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMetricUnknown))
}
