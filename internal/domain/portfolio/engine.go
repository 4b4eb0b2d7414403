// Package portfolio implements the portfolio aggregation engine: a pure,
// stateless fold over a client's transaction ledger that derives allocation
// percentages, top holdings, period-bucketed transaction summaries, and
// coarse performance-period figures. The engine holds no persistent state;
// every call re-derives its output from the transaction list it is given,
// so concurrent invocations never share anything.
package portfolio

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthdesk/wealthdesk/internal/domain/transaction"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// DefaultGrowthRate is the assumed annual growth applied to total buy volume
// to synthesise a current valuation. Real valuations need a market-data feed
// the system does not have; the constant keeps the summary shape honest
// while the numbers stay synthetic.
const DefaultGrowthRate = 0.12

// Holding is one entry of the top-holdings ranking.
type Holding struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Allocation float64 `json:"allocation"`
}

// Summary is the full derived view of one client's portfolio. It is
// recomputed per request and never persisted.
type Summary struct {
	TotalInvestment       decimal.Decimal       `json:"total_investment"`
	TotalSellAmount       decimal.Decimal       `json:"total_sell_amount"`
	CurrentValue          decimal.Decimal       `json:"current_value"`
	UnrealizedGain        decimal.Decimal       `json:"unrealized_gain"`
	UnrealizedGainPercent float64               `json:"unrealized_gain_percent"`
	AssetAllocation       map[AssetClass]float64 `json:"asset_allocation"`
	SectorAllocation      map[string]float64    `json:"sector_allocation"`
	GeographicAllocation  map[string]float64    `json:"geographic_allocation"`
	Holdings              []Holding             `json:"holdings"`
}

// PeriodSummary aggregates the transactions falling into one bucket.
type PeriodSummary struct {
	Period           string          `json:"period"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TotalFees        decimal.Decimal `json:"total_fees"`
	TotalTaxes       decimal.Decimal `json:"total_taxes"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	BuyCount         int             `json:"buy_count"`
	SellCount        int             `json:"sell_count"`
	OtherCount       int             `json:"other_count"`
}

// PerformancePeriod is one row of the trailing-window performance view.
// Value carries the assumed growth rate as a percentage whenever the window
// has buy volume; Benchmark and Alpha are derived from it with fixed ratios.
type PerformancePeriod struct {
	Label         string          `json:"label"`
	Value         float64         `json:"value"`
	Benchmark     float64         `json:"benchmark"`
	Alpha         float64         `json:"alpha"`
	TotalInvested decimal.Decimal `json:"total_invested"`
}

// performanceLabels fixes the trailing windows and their order.
var performanceLabels = []string{"1M", "3M", "6M", "YTD", "1Y", "3Y"}

// maxHoldings caps the holdings ranking.
const maxHoldings = 10

// Engine computes portfolio summaries. It is safe for concurrent use; its
// only state is the configured growth rate.
type Engine struct {
	growthRate float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithGrowthRate overrides the assumed annual growth rate. Non-finite or
// negative rates fall back to the default.
func WithGrowthRate(rate float64) Option {
	return func(e *Engine) {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
			return
		}
		e.growthRate = rate
	}
}

// NewEngine constructs an Engine with the default growth rate unless
// overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{growthRate: DefaultGrowthRate}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GrowthRate returns the configured assumed growth rate.
func (e *Engine) GrowthRate() float64 {
	return e.growthRate
}

// ComputeSummary folds the full ledger for one client into a Summary.
// Input order is irrelevant; calling it twice with the same set of rows
// yields identical output. Only buy entries count as allocated capital;
// sells accumulate into TotalSellAmount, and dividends, interest, fees,
// deposits, and withdrawals do not enter the allocation model at all.
func (e *Engine) ComputeSummary(txns []*transaction.Transaction) *Summary {
	totalInvestment := decimal.Zero
	totalSell := decimal.Zero
	byClass := make(map[AssetClass]decimal.Decimal)
	bySector := make(map[string]decimal.Decimal)
	byProduct := make(map[string]decimal.Decimal)
	productClass := make(map[string]AssetClass)

	for _, t := range txns {
		if t == nil {
			continue
		}
		switch t.Type {
		case transaction.TypeBuy:
			amount := t.Amount.Abs()
			totalInvestment = totalInvestment.Add(amount)

			class := NormalizeAssetClass(t.ProductType)
			byClass[class] = byClass[class].Add(amount)

			sector := SectorFor(class)
			bySector[sector] = bySector[sector].Add(amount)

			byProduct[t.ProductName] = byProduct[t.ProductName].Add(amount)
			productClass[t.ProductName] = class

		case transaction.TypeSell:
			totalSell = totalSell.Add(t.Amount.Abs())
		}
	}

	s := &Summary{
		TotalInvestment:      totalInvestment,
		TotalSellAmount:      totalSell,
		AssetAllocation:      make(map[AssetClass]float64, len(byClass)),
		SectorAllocation:     make(map[string]float64, len(bySector)),
		GeographicAllocation: make(map[string]float64),
	}

	for class, amount := range byClass {
		s.AssetAllocation[class] = percentOf(amount, totalInvestment)
	}
	for sector, amount := range bySector {
		s.SectorAllocation[sector] = percentOf(amount, totalInvestment)
	}
	if totalInvestment.IsPositive() {
		// Single-region attribution: all allocated capital maps to one
		// geography. Multi-region support would need per-product data the
		// ledger does not carry.
		s.GeographicAllocation[GeographicRegion] = 100
	}

	s.Holdings = rankHoldings(byProduct, productClass, totalInvestment)

	growth := decimal.NewFromFloat(e.growthRate)
	s.CurrentValue = totalInvestment.Add(totalInvestment.Mul(growth))
	s.UnrealizedGain = s.CurrentValue.Sub(totalInvestment)
	s.UnrealizedGainPercent = percentOf(s.UnrealizedGain, totalInvestment)

	return s
}

// ComputeTransactionSummary buckets the ledger by the given granularity,
// after applying an optional inclusive date-range filter. Every in-range
// transaction with a usable date lands in exactly one bucket; rows with a
// zero date cannot be bucketed and are counted in the second return value
// so callers can log them. Buckets come back sorted ascending by key.
func (e *Engine) ComputeTransactionSummary(
	txns []*transaction.Transaction,
	groupBy Period,
	rng common.DateRange,
) ([]PeriodSummary, int) {
	buckets := make(map[string]*PeriodSummary)
	skipped := 0

	for _, t := range txns {
		if t == nil {
			continue
		}
		if t.TradeDate.IsZero() {
			skipped++
			continue
		}
		if !inRangeInclusive(t.TradeDate, rng) {
			continue
		}

		key := groupBy.BucketKey(t.TradeDate)
		b, ok := buckets[key]
		if !ok {
			b = &PeriodSummary{
				Period:      key,
				TotalAmount: decimal.Zero,
				TotalFees:   decimal.Zero,
				TotalTaxes:  decimal.Zero,
				NetAmount:   decimal.Zero,
			}
			buckets[key] = b
		}

		b.TransactionCount++
		b.TotalAmount = b.TotalAmount.Add(t.Amount)
		b.TotalFees = b.TotalFees.Add(t.Fees)
		b.TotalTaxes = b.TotalTaxes.Add(t.Taxes)
		b.NetAmount = b.NetAmount.Add(t.TotalAmount)

		switch t.Type {
		case transaction.TypeBuy:
			b.BuyCount++
		case transaction.TypeSell:
			b.SellCount++
		default:
			b.OtherCount++
		}
	}

	result := make([]PeriodSummary, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period < result[j].Period
	})
	return result, skipped
}

// ComputePerformancePeriods produces the fixed 1M/3M/6M/YTD/1Y/3Y rows for
// trailing windows ending at now. Value is the configured growth rate as a
// percentage whenever the window has buy volume and 0 otherwise; Benchmark
// is 85% of Value and Alpha the difference. These are synthetic figures, not
// a realized-return calculation.
func (e *Engine) ComputePerformancePeriods(
	txns []*transaction.Transaction,
	now time.Time,
) []PerformancePeriod {
	now = now.UTC()
	result := make([]PerformancePeriod, 0, len(performanceLabels))

	for _, label := range performanceLabels {
		from := windowStart(label, now)
		invested := decimal.Zero
		for _, t := range txns {
			if t == nil || t.Type != transaction.TypeBuy || t.TradeDate.IsZero() {
				continue
			}
			if t.TradeDate.Before(from) || t.TradeDate.After(now) {
				continue
			}
			invested = invested.Add(t.Amount.Abs())
		}

		row := PerformancePeriod{Label: label, TotalInvested: invested}
		if invested.IsPositive() {
			row.Value = round2(e.growthRate * 100)
			row.Benchmark = round2(row.Value * 0.85)
			row.Alpha = round2(row.Value - row.Benchmark)
		}
		result = append(result, row)
	}
	return result
}

// windowStart returns the opening bound of a trailing window label.
func windowStart(label string, now time.Time) time.Time {
	switch label {
	case "1M":
		return now.AddDate(0, -1, 0)
	case "3M":
		return now.AddDate(0, -3, 0)
	case "6M":
		return now.AddDate(0, -6, 0)
	case "YTD":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case "1Y":
		return now.AddDate(-1, 0, 0)
	case "3Y":
		return now.AddDate(-3, 0, 0)
	}
	return now
}

// rankHoldings converts per-product buy totals into the capped descending
// ranking. Ties break on product name so the output is stable regardless of
// map iteration order. With no buy volume it returns the UI sentinel row.
func rankHoldings(
	byProduct map[string]decimal.Decimal,
	productClass map[string]AssetClass,
	total decimal.Decimal,
) []Holding {
	if len(byProduct) == 0 || !total.IsPositive() {
		return []Holding{{Name: "No Holdings", Type: "N/A", Allocation: 0}}
	}

	holdings := make([]Holding, 0, len(byProduct))
	for name, amount := range byProduct {
		holdings = append(holdings, Holding{
			Name:       name,
			Type:       string(productClass[name]),
			Allocation: percentOf(amount, total),
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Allocation != holdings[j].Allocation {
			return holdings[i].Allocation > holdings[j].Allocation
		}
		return holdings[i].Name < holdings[j].Name
	})

	if len(holdings) > maxHoldings {
		holdings = holdings[:maxHoldings]
	}
	return holdings
}

// percentOf returns 100*part/total rounded to two decimal places, forcing 0
// when the denominator is zero.
func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := part.Mul(decimal.NewFromInt(100)).Div(total).Round(2).Float64()
	return pct
}

// inRangeInclusive applies the summary date filter with inclusive bounds.
// Zero-valued bounds are open.
func inRangeInclusive(t time.Time, rng common.DateRange) bool {
	if !rng.From.IsZero() && t.Before(rng.From) {
		return false
	}
	if !rng.To.IsZero() && t.After(rng.To) {
		return false
	}
	return true
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
