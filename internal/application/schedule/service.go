// Package schedule provides the application service for the RM worklist:
// tasks with due dates and client appointments.
package schedule

import (
	"context"
	"time"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	domainschedule "github.com/wealthdesk/wealthdesk/internal/domain/schedule"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/messaging/kafka"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// defaultUpcomingHorizon bounds the "upcoming appointments" view.
const defaultUpcomingHorizon = 7 * 24 * time.Hour

// defaultDueLimit caps the due-task and upcoming-appointment lists.
const defaultDueLimit = 50

// Service defines task and appointment operations.
type Service interface {
	CreateTask(ctx context.Context, input TaskInput) (*domainschedule.Task, error)
	UpdateTask(ctx context.Context, id string, input TaskInput) (*domainschedule.Task, error)
	CompleteTask(ctx context.Context, id string) (*domainschedule.Task, error)
	CancelTask(ctx context.Context, id string) (*domainschedule.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, input TaskListInput) (*common.PageResponse[*domainschedule.Task], error)
	DueTasks(ctx context.Context, by time.Time, limit int) ([]*domainschedule.Task, error)

	CreateAppointment(ctx context.Context, input AppointmentInput) (*domainschedule.Appointment, error)
	RescheduleAppointment(ctx context.Context, id string, startsAt, endsAt time.Time) (*domainschedule.Appointment, error)
	CancelAppointment(ctx context.Context, id string) error
	CompleteAppointment(ctx context.Context, id string) (*domainschedule.Appointment, error)
	ListAppointments(ctx context.Context, input AppointmentListInput) (*common.PageResponse[*domainschedule.Appointment], error)
	UpcomingAppointments(ctx context.Context, from time.Time, limit int) ([]*domainschedule.Appointment, error)
}

// TaskInput carries the fields for a new or updated task.
type TaskInput struct {
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"` // 2006-01-02
}

// TaskListInput narrows and pages a task listing.
type TaskListInput struct {
	ClientID string
	Status   string
	Priority string
	Page     int
	PageSize int
}

// AppointmentInput carries the fields for a new appointment.
type AppointmentInput struct {
	ClientID string    `json:"client_id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// AppointmentListInput narrows and pages an appointment listing.
type AppointmentListInput struct {
	ClientID string
	Status   string
	Range    common.DateRange
	Page     int
	PageSize int
}

type serviceImpl struct {
	tasks        domainschedule.TaskRepository
	appointments domainschedule.AppointmentRepository
	clients      domainclient.Repository
	publisher    kafka.Publisher
	logger       logging.Logger
}

// NewService creates the schedule application service.
func NewService(
	tasks domainschedule.TaskRepository,
	appointments domainschedule.AppointmentRepository,
	clients domainclient.Repository,
	publisher kafka.Publisher,
	logger logging.Logger,
) Service {
	return &serviceImpl{
		tasks:        tasks,
		appointments: appointments,
		clients:      clients,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *serviceImpl) CreateTask(ctx context.Context, input TaskInput) (*domainschedule.Task, error) {
	cid, err := s.optionalClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate(input.DueDate, "due date")
	if err != nil {
		return nil, err
	}

	t, err := domainschedule.NewTask(cid, input.Title, input.Description,
		domainschedule.TaskPriority(input.Priority), dueDate)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *serviceImpl) UpdateTask(ctx context.Context, id string, input TaskInput) (*domainschedule.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != domainschedule.TaskOpen {
		return nil, errors.New(errors.ErrCodeScheduleConflict, "only open tasks can be edited")
	}

	if input.Title != "" {
		t.Title = input.Title
	}
	if input.Description != "" {
		t.Description = input.Description
	}
	if input.Priority != "" {
		p := domainschedule.TaskPriority(input.Priority)
		switch p {
		case domainschedule.PriorityLow, domainschedule.PriorityMedium, domainschedule.PriorityHigh:
			t.Priority = p
		default:
			return nil, errors.InvalidParam("unknown task priority")
		}
	}
	if input.DueDate != "" {
		dueDate, err := parseDate(input.DueDate, "due date")
		if err != nil {
			return nil, err
		}
		t.DueDate = dueDate
	}
	t.Touch()

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *serviceImpl) CompleteTask(ctx context.Context, id string) (*domainschedule.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Complete(); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	s.emit(ctx, kafka.TopicTaskCompleted, string(t.ID), kafka.TaskCompletedPayload{
		TaskID:      string(t.ID),
		ClientID:    string(t.ClientID),
		Title:       t.Title,
		CompletedAt: t.CompletedAt,
	})
	return t, nil
}

func (s *serviceImpl) CancelTask(ctx context.Context, id string) (*domainschedule.Task, error) {
	t, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Cancel(); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *serviceImpl) DeleteTask(ctx context.Context, id string) error {
	tid, err := parseID(id, "task")
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, tid)
}

func (s *serviceImpl) ListTasks(ctx context.Context, input TaskListInput) (*common.PageResponse[*domainschedule.Task], error) {
	p, err := pagination(input.Page, input.PageSize)
	if err != nil {
		return nil, err
	}

	filter := domainschedule.TaskFilter{
		Status:   domainschedule.TaskStatus(input.Status),
		Priority: domainschedule.TaskPriority(input.Priority),
	}
	if input.ClientID != "" {
		cid, err := parseID(input.ClientID, "client")
		if err != nil {
			return nil, err
		}
		filter.ClientID = cid
	}

	tasks, total, err := s.tasks.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	page := common.NewPageResponse(tasks, total, p)
	return &page, nil
}

func (s *serviceImpl) DueTasks(ctx context.Context, by time.Time, limit int) ([]*domainschedule.Task, error) {
	if by.IsZero() {
		by = time.Now().UTC()
	}
	if limit <= 0 {
		limit = defaultDueLimit
	}
	return s.tasks.ListDue(ctx, by, limit)
}

// CreateAppointment books a meeting after checking the new interval against
// the client's scheduled appointments.
func (s *serviceImpl) CreateAppointment(ctx context.Context, input AppointmentInput) (*domainschedule.Appointment, error) {
	cid, err := parseID(input.ClientID, "client")
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.GetByID(ctx, cid); err != nil {
		return nil, err
	}

	a, err := domainschedule.NewAppointment(cid, input.Title, input.Location, input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}
	a.Notes = input.Notes

	if err := s.checkConflicts(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.emit(ctx, kafka.TopicAppointmentScheduled, string(cid), kafka.AppointmentScheduledPayload{
		AppointmentID: string(a.ID),
		ClientID:      string(cid),
		Title:         a.Title,
		StartsAt:      a.StartsAt,
		EndsAt:        a.EndsAt,
	})
	return a, nil
}

func (s *serviceImpl) RescheduleAppointment(ctx context.Context, id string, startsAt, endsAt time.Time) (*domainschedule.Appointment, error) {
	a, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Reschedule(startsAt, endsAt); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *serviceImpl) CancelAppointment(ctx context.Context, id string) error {
	a, err := s.getAppointment(ctx, id)
	if err != nil {
		return err
	}
	if err := a.Cancel(); err != nil {
		return err
	}
	return s.appointments.Update(ctx, a)
}

func (s *serviceImpl) CompleteAppointment(ctx context.Context, id string) (*domainschedule.Appointment, error) {
	a, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.MarkCompleted(); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *serviceImpl) ListAppointments(ctx context.Context, input AppointmentListInput) (*common.PageResponse[*domainschedule.Appointment], error) {
	p, err := pagination(input.Page, input.PageSize)
	if err != nil {
		return nil, err
	}
	if err := input.Range.Validate(); err != nil {
		return nil, err
	}

	filter := domainschedule.AppointmentFilter{
		Status: domainschedule.AppointmentStatus(input.Status),
		Range:  input.Range,
	}
	if input.ClientID != "" {
		cid, err := parseID(input.ClientID, "client")
		if err != nil {
			return nil, err
		}
		filter.ClientID = cid
	}

	appts, total, err := s.appointments.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	page := common.NewPageResponse(appts, total, p)
	return &page, nil
}

func (s *serviceImpl) UpcomingAppointments(ctx context.Context, from time.Time, limit int) ([]*domainschedule.Appointment, error) {
	if from.IsZero() {
		from = time.Now().UTC()
	}
	if limit <= 0 {
		limit = defaultDueLimit
	}
	return s.appointments.ListUpcoming(ctx, from, defaultUpcomingHorizon, limit)
}

// checkConflicts rejects an interval that overlaps another scheduled
// appointment for the same client.
func (s *serviceImpl) checkConflicts(ctx context.Context, a *domainschedule.Appointment) error {
	existing, _, err := s.appointments.List(ctx, domainschedule.AppointmentFilter{
		ClientID: a.ClientID,
		Status:   domainschedule.AppointmentScheduled,
		Range:    common.DateRange{From: a.StartsAt.Add(-24 * time.Hour), To: a.EndsAt.Add(24 * time.Hour)},
	}, common.Pagination{Page: 1, PageSize: 100})
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == a.ID {
			continue
		}
		if a.Overlaps(other) {
			return errors.New(errors.ErrCodeScheduleConflict,
				"appointment overlaps an existing scheduled appointment")
		}
	}
	return nil
}

func (s *serviceImpl) getTask(ctx context.Context, id string) (*domainschedule.Task, error) {
	tid, err := parseID(id, "task")
	if err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, tid)
}

func (s *serviceImpl) getAppointment(ctx context.Context, id string) (*domainschedule.Appointment, error) {
	aid, err := parseID(id, "appointment")
	if err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, aid)
}

// optionalClient validates and resolves a client reference when one is
// given; book-level tasks carry none.
func (s *serviceImpl) optionalClient(ctx context.Context, clientID string) (common.ID, error) {
	if clientID == "" {
		return "", nil
	}
	cid, err := parseID(clientID, "client")
	if err != nil {
		return "", err
	}
	if _, err := s.clients.GetByID(ctx, cid); err != nil {
		return "", err
	}
	return cid, nil
}

func (s *serviceImpl) emit(ctx context.Context, topic, key string, payload any) {
	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		s.logger.Warn("activity event publish failed",
			logging.String("topic", topic),
			logging.Err(err))
	}
}

func parseID(id, kind string) (common.ID, error) {
	v := common.ID(id)
	if err := v.Validate(); err != nil {
		return "", errors.InvalidParam("malformed " + kind + " id")
	}
	return v, nil
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.InvalidParam(field + " must be in YYYY-MM-DD form")
	}
	return t, nil
}

func pagination(page, pageSize int) (common.Pagination, error) {
	p := common.Pagination{Page: page, PageSize: pageSize}
	if p.Page == 0 && p.PageSize == 0 {
		p = common.DefaultPagination()
	}
	if err := p.Validate(); err != nil {
		return common.Pagination{}, err
	}
	return p, nil
}
