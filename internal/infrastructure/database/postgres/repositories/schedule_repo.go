package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/domain/schedule"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

const taskColumns = `id, client_id, title, description, priority, status, due_date, completed_at, created_at, updated_at, version`

type postgresTaskRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresTaskRepo builds the schedule.TaskRepository implementation.
func NewPostgresTaskRepo(conn *postgres.Connection, log logging.Logger) schedule.TaskRepository {
	return &postgresTaskRepo{conn: conn, log: log}
}

func (r *postgresTaskRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

func (r *postgresTaskRepo) Create(ctx context.Context, t *schedule.Task) error {
	query := `
		INSERT INTO tasks (id, client_id, title, description, priority, status, due_date, completed_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.executor().ExecContext(ctx, query,
		t.ID, nullableID(t.ClientID), t.Title, t.Description, t.Priority, t.Status,
		t.DueDate, timePtrValue(t.CompletedAt), t.CreatedAt, t.UpdatedAt, t.Version,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create task")
	}
	return nil
}

func (r *postgresTaskRepo) GetByID(ctx context.Context, id common.ID) (*schedule.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTaskRow(r.executor().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeTaskNotFound, fmt.Sprintf("task %s not found", id))
	}
	return t, err
}

func (r *postgresTaskRepo) Update(ctx context.Context, t *schedule.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, due_date = $5,
		    completed_at = $6, updated_at = $7, version = $8
		WHERE id = $9 AND version = $10
	`
	res, err := r.executor().ExecContext(ctx, query,
		t.Title, t.Description, t.Priority, t.Status, t.DueDate,
		timePtrValue(t.CompletedAt), t.UpdatedAt, t.Version,
		t.ID, t.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update task")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("task %s updated concurrently or not found", t.ID))
	}
	return nil
}

func (r *postgresTaskRepo) Delete(ctx context.Context, id common.ID) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete task")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeTaskNotFound, fmt.Sprintf("task %s not found", id))
	}
	return nil
}

func (r *postgresTaskRepo) List(ctx context.Context, filter schedule.TaskFilter, p common.Pagination) ([]*schedule.Task, int64, error) {
	baseQuery := `FROM tasks WHERE 1=1`
	args := []interface{}{}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		baseQuery += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		baseQuery += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		baseQuery += fmt.Sprintf(` AND priority = $%d`, len(args))
	}

	var total int64
	if err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count tasks")
	}

	dataQuery := fmt.Sprintf(`SELECT %s %s ORDER BY due_date ASC LIMIT $%d OFFSET $%d`,
		taskColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list tasks")
	}
	defer rows.Close()

	var tasks []*schedule.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

func (r *postgresTaskRepo) ListDue(ctx context.Context, by time.Time, limit int) ([]*schedule.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = $1 AND due_date <= $2
		ORDER BY due_date ASC LIMIT $3`
	rows, err := r.executor().QueryContext(ctx, query, schedule.TaskOpen, by, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list due tasks")
	}
	defer rows.Close()

	var tasks []*schedule.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTaskRow(row scanner) (*schedule.Task, error) {
	var t schedule.Task
	var clientID sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&t.ID, &clientID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueDate, &completedAt, &t.CreatedAt, &t.UpdatedAt, &t.Version,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan task row")
	}
	if clientID.Valid {
		t.ClientID = common.ID(clientID.String)
	}
	t.CompletedAt = nullableTime(completedAt)
	return &t, nil
}

const appointmentColumns = `id, client_id, title, location, notes, status, starts_at, ends_at, created_at, updated_at, version`

type postgresAppointmentRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresAppointmentRepo builds the schedule.AppointmentRepository
// implementation.
func NewPostgresAppointmentRepo(conn *postgres.Connection, log logging.Logger) schedule.AppointmentRepository {
	return &postgresAppointmentRepo{conn: conn, log: log}
}

func (r *postgresAppointmentRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

func (r *postgresAppointmentRepo) Create(ctx context.Context, a *schedule.Appointment) error {
	query := `
		INSERT INTO appointments (id, client_id, title, location, notes, status, starts_at, ends_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.executor().ExecContext(ctx, query,
		a.ID, a.ClientID, a.Title, a.Location, a.Notes, a.Status,
		a.StartsAt, a.EndsAt, a.CreatedAt, a.UpdatedAt, a.Version,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create appointment")
	}
	return nil
}

func (r *postgresAppointmentRepo) GetByID(ctx context.Context, id common.ID) (*schedule.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	a, err := scanAppointmentRow(r.executor().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeAppointmentNotFound,
			fmt.Sprintf("appointment %s not found", id))
	}
	return a, err
}

func (r *postgresAppointmentRepo) Update(ctx context.Context, a *schedule.Appointment) error {
	query := `
		UPDATE appointments
		SET title = $1, location = $2, notes = $3, status = $4, starts_at = $5,
		    ends_at = $6, updated_at = $7, version = $8
		WHERE id = $9 AND version = $10
	`
	res, err := r.executor().ExecContext(ctx, query,
		a.Title, a.Location, a.Notes, a.Status, a.StartsAt, a.EndsAt,
		a.UpdatedAt, a.Version, a.ID, a.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update appointment")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeConflict,
			fmt.Sprintf("appointment %s updated concurrently or not found", a.ID))
	}
	return nil
}

func (r *postgresAppointmentRepo) Delete(ctx context.Context, id common.ID) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete appointment")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeAppointmentNotFound,
			fmt.Sprintf("appointment %s not found", id))
	}
	return nil
}

func (r *postgresAppointmentRepo) List(ctx context.Context, filter schedule.AppointmentFilter, p common.Pagination) ([]*schedule.Appointment, int64, error) {
	baseQuery := `FROM appointments WHERE 1=1`
	args := []interface{}{}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		baseQuery += fmt.Sprintf(` AND client_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		baseQuery += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !filter.Range.From.IsZero() {
		args = append(args, filter.Range.From)
		baseQuery += fmt.Sprintf(` AND starts_at >= $%d`, len(args))
	}
	if !filter.Range.To.IsZero() {
		args = append(args, filter.Range.To)
		baseQuery += fmt.Sprintf(` AND starts_at <= $%d`, len(args))
	}

	var total int64
	if err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) `+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count appointments")
	}

	dataQuery := fmt.Sprintf(`SELECT %s %s ORDER BY starts_at ASC LIMIT $%d OFFSET $%d`,
		appointmentColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, p.PageSize, p.Offset())

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list appointments")
	}
	defer rows.Close()

	var appts []*schedule.Appointment
	for rows.Next() {
		a, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

func (r *postgresAppointmentRepo) ListUpcoming(ctx context.Context, from time.Time, horizon time.Duration, limit int) ([]*schedule.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE status = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC LIMIT $4`
	rows, err := r.executor().QueryContext(ctx, query,
		schedule.AppointmentScheduled, from, from.Add(horizon), limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list upcoming appointments")
	}
	defer rows.Close()

	var appts []*schedule.Appointment
	for rows.Next() {
		a, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

func scanAppointmentRow(row scanner) (*schedule.Appointment, error) {
	var a schedule.Appointment
	err := row.Scan(
		&a.ID, &a.ClientID, &a.Title, &a.Location, &a.Notes, &a.Status,
		&a.StartsAt, &a.EndsAt, &a.CreatedAt, &a.UpdatedAt, &a.Version,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan appointment row")
	}
	return &a, nil
}

// nullableID maps an empty ID to NULL for optional foreign keys.
func nullableID(id common.ID) interface{} {
	if id == "" {
		return nil
	}
	return id
}
