package transaction

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Filter narrows ledger queries. Zero-value fields are ignored.
type Filter struct {
	ClientID common.ID
	Types    []Type
	Range    common.DateRange
}

// RevenueRow is a fee-revenue aggregate per client, produced in SQL so the
// insights service does not have to pull full ledgers for book-level views.
type RevenueRow struct {
	ClientID  common.ID
	TotalFees decimal.Decimal
	Count     int64
}

// Repository defines the persistence contract for the transaction ledger.
// The ledger is append-only: entries can be created and deleted (to correct
// mistakes) but never updated.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id common.ID) (*Transaction, error)
	Delete(ctx context.Context, id common.ID) error

	// ListByClient returns the full ledger for one client, optionally
	// filtered by date range. Order is unspecified; the aggregation engine
	// must not depend on it.
	ListByClient(ctx context.Context, clientID common.ID, rng common.DateRange) ([]*Transaction, error)

	List(ctx context.Context, filter Filter, p common.Pagination) ([]*Transaction, int64, error)

	// SumBuyAmounts returns total buy volume per client across the whole
	// book, used for AUM-style insights.
	SumBuyAmounts(ctx context.Context) (map[common.ID]decimal.Decimal, error)

	// FeeRevenue aggregates fees per client within a date range.
	FeeRevenue(ctx context.Context, rng common.DateRange) ([]RevenueRow, error)
}
