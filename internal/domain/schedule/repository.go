package schedule

import (
	"context"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// TaskFilter narrows task listings. Zero-value fields are ignored.
type TaskFilter struct {
	ClientID common.ID
	Status   TaskStatus
	Priority TaskPriority
}

// TaskRepository defines the persistence contract for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id common.ID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id common.ID) error

	List(ctx context.Context, filter TaskFilter, p common.Pagination) ([]*Task, int64, error)

	// ListDue returns open tasks whose due date falls on or before the
	// given instant, ordered by due date ascending.
	ListDue(ctx context.Context, by time.Time, limit int) ([]*Task, error)
}

// AppointmentFilter narrows appointment listings. Zero-value fields are
// ignored.
type AppointmentFilter struct {
	ClientID common.ID
	Status   AppointmentStatus
	Range    common.DateRange
}

// AppointmentRepository defines the persistence contract for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id common.ID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id common.ID) error

	List(ctx context.Context, filter AppointmentFilter, p common.Pagination) ([]*Appointment, int64, error)

	// ListUpcoming returns scheduled appointments starting between now and
	// the horizon, ordered by start time ascending.
	ListUpcoming(ctx context.Context, from time.Time, horizon time.Duration, limit int) ([]*Appointment, error)
}
