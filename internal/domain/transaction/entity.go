// Package transaction implements the transaction ledger bounded context: the
// immutable Transaction entity, its type enums, and the repository port. A
// transaction is append-only; the aggregation engine folds it into summaries
// but never mutates it.
package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Type classifies a ledger entry.
type Type string

const (
	TypeBuy        Type = "buy"
	TypeSell       Type = "sell"
	TypeDividend   Type = "dividend"
	TypeInterest   Type = "interest"
	TypeFee        Type = "fee"
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
)

// validTypes is the closed set of transaction types the ledger accepts.
var validTypes = map[Type]bool{
	TypeBuy:        true,
	TypeSell:       true,
	TypeDividend:   true,
	TypeInterest:   true,
	TypeFee:        true,
	TypeDeposit:    true,
	TypeWithdrawal: true,
}

// ParseType normalises a free-form tag into a Type, case-insensitively.
// Unknown tags are rejected rather than silently coerced.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !validTypes[t] {
		return "", errors.New(errors.ErrCodeTransactionTypeInvalid,
			fmt.Sprintf("unknown transaction type %q", s))
	}
	return t, nil
}

// IsTrade reports whether the type moves allocated capital (buy or sell).
func (t Type) IsTrade() bool {
	return t == TypeBuy || t == TypeSell
}

// Transaction is an immutable ledger entry for a single client. Amounts are
// decimals to keep money arithmetic exact; TotalAmount is derived at write
// time and must always equal Amount + Fees + Taxes.
type Transaction struct {
	common.BaseEntity

	ClientID    common.ID       `json:"client_id"`
	Type        Type            `json:"transaction_type"`
	ProductType string          `json:"product_type"`
	ProductName string          `json:"product_name"`
	Amount      decimal.Decimal `json:"amount"`
	Fees        decimal.Decimal `json:"fees"`
	Taxes       decimal.Decimal `json:"taxes"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TradeDate   time.Time       `json:"transaction_date"`
	Notes       string          `json:"notes,omitempty"`
}

// New creates a Transaction, enforcing construction invariants:
//   - clientID must be a valid entity ID.
//   - the type tag must parse to a known Type.
//   - productName must be non-empty for buy and sell entries.
//   - fees and taxes must be non-negative.
//   - tradeDate must be non-zero.
//
// TotalAmount is derived here and nowhere else.
func New(
	clientID common.ID,
	typeTag, productType, productName string,
	amount, fees, taxes decimal.Decimal,
	tradeDate time.Time,
) (*Transaction, error) {
	if err := clientID.Validate(); err != nil {
		return nil, errors.InvalidParam(fmt.Sprintf("client id: %v", err))
	}

	t, err := ParseType(typeTag)
	if err != nil {
		return nil, err
	}

	if t.IsTrade() && productName == "" {
		return nil, errors.InvalidParam("product name must not be empty for buy/sell transactions")
	}
	if fees.IsNegative() {
		return nil, errors.InvalidParam("fees must not be negative")
	}
	if taxes.IsNegative() {
		return nil, errors.InvalidParam("taxes must not be negative")
	}
	if tradeDate.IsZero() {
		return nil, errors.InvalidParam("transaction date must not be zero")
	}

	now := time.Now().UTC()
	return &Transaction{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID:    clientID,
		Type:        t,
		ProductType: strings.ToLower(strings.TrimSpace(productType)),
		ProductName: productName,
		Amount:      amount,
		Fees:        fees,
		Taxes:       taxes,
		TotalAmount: amount.Add(fees).Add(taxes),
		TradeDate:   tradeDate.UTC(),
	}, nil
}

// CheckTotal verifies the stored TotalAmount against its defining sum.
// Repositories call it on read to catch rows corrupted outside the API.
func (t *Transaction) CheckTotal() error {
	want := t.Amount.Add(t.Fees).Add(t.Taxes)
	if !t.TotalAmount.Equal(want) {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("transaction %s total %s does not equal amount+fees+taxes %s",
				t.ID, t.TotalAmount, want))
	}
	return nil
}
