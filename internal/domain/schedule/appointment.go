package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a scheduled meeting with a client.
type Appointment struct {
	common.BaseEntity

	ClientID common.ID         `json:"client_id"`
	Title    string            `json:"title"`
	Location string            `json:"location,omitempty"`
	Notes    string            `json:"notes,omitempty"`
	Status   AppointmentStatus `json:"status"`
	StartsAt time.Time         `json:"starts_at"`
	EndsAt   time.Time         `json:"ends_at"`
}

// NewAppointment creates a scheduled Appointment, enforcing:
//   - clientID must be a valid entity ID.
//   - title must be non-empty.
//   - the interval must be non-zero with EndsAt strictly after StartsAt.
func NewAppointment(clientID common.ID, title, location string, startsAt, endsAt time.Time) (*Appointment, error) {
	if err := clientID.Validate(); err != nil {
		return nil, errors.InvalidParam(fmt.Sprintf("client id: %v", err))
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidParam("appointment title must not be empty")
	}
	if startsAt.IsZero() || endsAt.IsZero() {
		return nil, errors.InvalidParam("appointment start and end must be set")
	}
	if !endsAt.After(startsAt) {
		return nil, errors.InvalidParam("appointment end must be after its start")
	}

	now := time.Now().UTC()
	return &Appointment{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID: clientID,
		Title:    strings.TrimSpace(title),
		Location: strings.TrimSpace(location),
		Status:   AppointmentScheduled,
		StartsAt: startsAt.UTC(),
		EndsAt:   endsAt.UTC(),
	}, nil
}

// Reschedule moves a scheduled appointment to a new interval.
func (a *Appointment) Reschedule(startsAt, endsAt time.Time) error {
	if a.Status != AppointmentScheduled {
		return errors.New(errors.ErrCodeScheduleConflict,
			fmt.Sprintf("appointment %s has status %q; only scheduled appointments can move", a.ID, a.Status))
	}
	if !endsAt.After(startsAt) {
		return errors.InvalidParam("appointment end must be after its start")
	}
	a.StartsAt = startsAt.UTC()
	a.EndsAt = endsAt.UTC()
	a.Touch()
	return nil
}

// Cancel withdraws a scheduled appointment.
func (a *Appointment) Cancel() error {
	if a.Status != AppointmentScheduled {
		return errors.New(errors.ErrCodeScheduleConflict,
			fmt.Sprintf("appointment %s has status %q; only scheduled appointments can be cancelled", a.ID, a.Status))
	}
	a.Status = AppointmentCancelled
	a.Touch()
	return nil
}

// MarkCompleted closes out a scheduled appointment after it takes place.
func (a *Appointment) MarkCompleted() error {
	if a.Status != AppointmentScheduled {
		return errors.New(errors.ErrCodeScheduleConflict,
			fmt.Sprintf("appointment %s has status %q; only scheduled appointments can complete", a.ID, a.Status))
	}
	a.Status = AppointmentCompleted
	a.Touch()
	return nil
}

// Overlaps reports whether two appointment intervals intersect.
func (a *Appointment) Overlaps(other *Appointment) bool {
	return a.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(a.EndsAt)
}
