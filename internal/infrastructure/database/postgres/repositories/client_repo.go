package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/wealthdesk/wealthdesk/internal/domain/client"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

const clientColumns = `id, name, email, phone, status, risk_profile, notes, converted_at, created_at, updated_at, version`

type postgresClientRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresClientRepo builds the client.Repository implementation.
func NewPostgresClientRepo(conn *postgres.Connection, log logging.Logger) client.Repository {
	return &postgresClientRepo{conn: conn, log: log}
}

func (r *postgresClientRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

func (r *postgresClientRepo) Create(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, status, risk_profile, notes, converted_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.executor().ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Status, c.RiskProfile, c.Notes,
		timePtrValue(c.ConvertedAt), c.CreatedAt, c.UpdatedAt, c.Version,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.New(errors.ErrCodeClientAlreadyExists,
				fmt.Sprintf("client with email %s already exists", c.Email))
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create client")
	}
	return nil
}

func (r *postgresClientRepo) GetByID(ctx context.Context, id common.ID) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.executor().QueryRowContext(ctx, query, id), string(id))
}

func (r *postgresClientRepo) GetByEmail(ctx context.Context, email string) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`
	return scanClient(r.executor().QueryRowContext(ctx, query, email), email)
}

func (r *postgresClientRepo) Update(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, status = $4, risk_profile = $5,
		    notes = $6, converted_at = $7, updated_at = $8, version = $9
		WHERE id = $10 AND version = $11
	`
	res, err := r.executor().ExecContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Status, c.RiskProfile, c.Notes,
		timePtrValue(c.ConvertedAt), c.UpdatedAt, c.Version,
		c.ID, c.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update client")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("client %s updated concurrently or not found", c.ID))
	}
	return nil
}

func (r *postgresClientRepo) Delete(ctx context.Context, id common.ID) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete client")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.NotFound(fmt.Sprintf("client %s not found", id))
	}
	return nil
}

func (r *postgresClientRepo) List(ctx context.Context, filter client.Filter, p common.Pagination) ([]*client.Client, int64, error) {
	baseQuery := `FROM clients WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		baseQuery += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		baseQuery += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}

	var total int64
	if err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count clients")
	}

	dataQuery := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		clientColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list clients")
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		c, err := scanClientRow(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate clients")
	}
	return clients, total, nil
}

func (r *postgresClientRepo) CountByStatus(ctx context.Context) (map[client.Status]int64, error) {
	rows, err := r.executor().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM clients GROUP BY status`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count clients by status")
	}
	defer rows.Close()

	counts := make(map[client.Status]int64)
	for rows.Next() {
		var status client.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan status count")
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanClient(row scanner, key string) (*client.Client, error) {
	c, err := scanClientRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeClientNotFound,
			fmt.Sprintf("client %s not found", key))
	}
	return c, err
}

func scanClientRow(row scanner) (*client.Client, error) {
	var c client.Client
	var convertedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.RiskProfile, &c.Notes,
		&convertedAt, &c.CreatedAt, &c.UpdatedAt, &c.Version,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan client row")
	}
	c.ConvertedAt = nullableTime(convertedAt)
	return &c, nil
}
