package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/wealthdesk/wealthdesk/internal/domain/transaction"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

const transactionColumns = `id, client_id, transaction_type, product_type, product_name,
	amount, fees, taxes, total_amount, transaction_date, notes, created_at, updated_at, version`

type postgresTransactionRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresTransactionRepo builds the transaction.Repository implementation.
func NewPostgresTransactionRepo(conn *postgres.Connection, log logging.Logger) transaction.Repository {
	return &postgresTransactionRepo{conn: conn, log: log}
}

func (r *postgresTransactionRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

func (r *postgresTransactionRepo) Create(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, client_id, transaction_type, product_type, product_name,
			amount, fees, taxes, total_amount, transaction_date, notes, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.executor().ExecContext(ctx, query,
		t.ID, t.ClientID, t.Type, t.ProductType, t.ProductName,
		t.Amount, t.Fees, t.Taxes, t.TotalAmount, t.TradeDate, t.Notes,
		t.CreatedAt, t.UpdatedAt, t.Version,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New(errors.ErrCodeClientNotFound,
				fmt.Sprintf("client %s not found for transaction", t.ClientID))
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create transaction")
	}
	return nil
}

func (r *postgresTransactionRepo) GetByID(ctx context.Context, id common.ID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransactionRow(r.executor().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeTransactionNotFound,
			fmt.Sprintf("transaction %s not found", id))
	}
	return t, err
}

func (r *postgresTransactionRepo) Delete(ctx context.Context, id common.ID) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete transaction")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeTransactionNotFound,
			fmt.Sprintf("transaction %s not found", id))
	}
	return nil
}

func (r *postgresTransactionRepo) ListByClient(ctx context.Context, clientID common.ID, rng common.DateRange) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE client_id = $1`
	args := []interface{}{clientID}

	if !rng.From.IsZero() {
		args = append(args, rng.From)
		query += fmt.Sprintf(` AND transaction_date >= $%d`, len(args))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		query += fmt.Sprintf(` AND transaction_date <= $%d`, len(args))
	}

	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list transactions")
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *postgresTransactionRepo) List(ctx context.Context, filter transaction.Filter, p common.Pagination) ([]*transaction.Transaction, int64, error) {
	baseQuery := `FROM transactions WHERE 1=1`
	args := []interface{}{}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		baseQuery += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		baseQuery += fmt.Sprintf(` AND transaction_type = ANY($%d)`, len(args))
	}
	if !filter.Range.From.IsZero() {
		args = append(args, filter.Range.From)
		baseQuery += fmt.Sprintf(` AND transaction_date >= $%d`, len(args))
	}
	if !filter.Range.To.IsZero() {
		args = append(args, filter.Range.To)
		baseQuery += fmt.Sprintf(` AND transaction_date <= $%d`, len(args))
	}

	var total int64
	if err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count transactions")
	}

	dataQuery := fmt.Sprintf(`SELECT %s %s ORDER BY transaction_date DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list transactions")
	}
	defer rows.Close()

	txns, err := collectTransactions(rows)
	return txns, total, err
}

func (r *postgresTransactionRepo) SumBuyAmounts(ctx context.Context) (map[common.ID]decimal.Decimal, error) {
	query := `
		SELECT client_id, COALESCE(SUM(ABS(amount)), 0)
		FROM transactions
		WHERE transaction_type = 'buy'
		GROUP BY client_id
	`
	rows, err := r.executor().QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to sum buy amounts")
	}
	defer rows.Close()

	sums := make(map[common.ID]decimal.Decimal)
	for rows.Next() {
		var clientID common.ID
		var total decimal.Decimal
		if err := rows.Scan(&clientID, &total); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan buy sum")
		}
		sums[clientID] = total
	}
	return sums, rows.Err()
}

func (r *postgresTransactionRepo) FeeRevenue(ctx context.Context, rng common.DateRange) ([]transaction.RevenueRow, error) {
	query := `
		SELECT client_id, COALESCE(SUM(fees), 0), COUNT(*)
		FROM transactions
		WHERE 1=1
	`
	args := []interface{}{}
	if !rng.From.IsZero() {
		args = append(args, rng.From)
		query += fmt.Sprintf(` AND transaction_date >= $%d`, len(args))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		query += fmt.Sprintf(` AND transaction_date <= $%d`, len(args))
	}
	query += ` GROUP BY client_id ORDER BY SUM(fees) DESC`

	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to aggregate fee revenue")
	}
	defer rows.Close()

	var result []transaction.RevenueRow
	for rows.Next() {
		var row transaction.RevenueRow
		if err := rows.Scan(&row.ClientID, &row.TotalFees, &row.Count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan revenue row")
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func collectTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var txns []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate transactions")
	}
	return txns, nil
}

func scanTransactionRow(row scanner) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID, &t.ClientID, &t.Type, &t.ProductType, &t.ProductName,
		&t.Amount, &t.Fees, &t.Taxes, &t.TotalAmount, &t.TradeDate, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt, &t.Version,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan transaction row")
	}
	return &t, nil
}
