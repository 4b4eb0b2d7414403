package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appschedule "github.com/wealthdesk/wealthdesk/internal/application/schedule"
	domainschedule "github.com/wealthdesk/wealthdesk/internal/domain/schedule"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

type mockScheduleService struct {
	createTaskFn   func(ctx context.Context, input appschedule.TaskInput) (*domainschedule.Task, error)
	updateTaskFn   func(ctx context.Context, id string, input appschedule.TaskInput) (*domainschedule.Task, error)
	completeTaskFn func(ctx context.Context, id string) (*domainschedule.Task, error)
	cancelTaskFn   func(ctx context.Context, id string) (*domainschedule.Task, error)
	deleteTaskFn   func(ctx context.Context, id string) error
	listTasksFn    func(ctx context.Context, input appschedule.TaskListInput) (*common.PageResponse[*domainschedule.Task], error)
	dueTasksFn     func(ctx context.Context, by time.Time, limit int) ([]*domainschedule.Task, error)

	createApptFn     func(ctx context.Context, input appschedule.AppointmentInput) (*domainschedule.Appointment, error)
	rescheduleApptFn func(ctx context.Context, id string, startsAt, endsAt time.Time) (*domainschedule.Appointment, error)
	cancelApptFn     func(ctx context.Context, id string) error
	completeApptFn   func(ctx context.Context, id string) (*domainschedule.Appointment, error)
	listApptsFn      func(ctx context.Context, input appschedule.AppointmentListInput) (*common.PageResponse[*domainschedule.Appointment], error)
	upcomingApptsFn  func(ctx context.Context, from time.Time, limit int) ([]*domainschedule.Appointment, error)
}

func (m *mockScheduleService) CreateTask(ctx context.Context, input appschedule.TaskInput) (*domainschedule.Task, error) {
	return m.createTaskFn(ctx, input)
}
func (m *mockScheduleService) UpdateTask(ctx context.Context, id string, input appschedule.TaskInput) (*domainschedule.Task, error) {
	return m.updateTaskFn(ctx, id, input)
}
func (m *mockScheduleService) CompleteTask(ctx context.Context, id string) (*domainschedule.Task, error) {
	return m.completeTaskFn(ctx, id)
}
func (m *mockScheduleService) CancelTask(ctx context.Context, id string) (*domainschedule.Task, error) {
	return m.cancelTaskFn(ctx, id)
}
func (m *mockScheduleService) DeleteTask(ctx context.Context, id string) error {
	return m.deleteTaskFn(ctx, id)
}
func (m *mockScheduleService) ListTasks(ctx context.Context, input appschedule.TaskListInput) (*common.PageResponse[*domainschedule.Task], error) {
	return m.listTasksFn(ctx, input)
}
func (m *mockScheduleService) DueTasks(ctx context.Context, by time.Time, limit int) ([]*domainschedule.Task, error) {
	return m.dueTasksFn(ctx, by, limit)
}
func (m *mockScheduleService) CreateAppointment(ctx context.Context, input appschedule.AppointmentInput) (*domainschedule.Appointment, error) {
	return m.createApptFn(ctx, input)
}
func (m *mockScheduleService) RescheduleAppointment(ctx context.Context, id string, startsAt, endsAt time.Time) (*domainschedule.Appointment, error) {
	return m.rescheduleApptFn(ctx, id, startsAt, endsAt)
}
func (m *mockScheduleService) CancelAppointment(ctx context.Context, id string) error {
	return m.cancelApptFn(ctx, id)
}
func (m *mockScheduleService) CompleteAppointment(ctx context.Context, id string) (*domainschedule.Appointment, error) {
	return m.completeApptFn(ctx, id)
}
func (m *mockScheduleService) ListAppointments(ctx context.Context, input appschedule.AppointmentListInput) (*common.PageResponse[*domainschedule.Appointment], error) {
	return m.listApptsFn(ctx, input)
}
func (m *mockScheduleService) UpcomingAppointments(ctx context.Context, from time.Time, limit int) ([]*domainschedule.Appointment, error) {
	return m.upcomingApptsFn(ctx, from, limit)
}

func scheduleRouter(h *ScheduleHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/due", h.DueTasks)
	r.Put("/tasks/{taskID}", h.UpdateTask)
	r.Delete("/tasks/{taskID}", h.DeleteTask)
	r.Post("/tasks/{taskID}/complete", h.CompleteTask)
	r.Post("/appointments", h.CreateAppointment)
	r.Put("/appointments/{appointmentID}", h.RescheduleAppointment)
	return r
}

func TestCreateTask(t *testing.T) {
	mock := &mockScheduleService{
		createTaskFn: func(_ context.Context, input appschedule.TaskInput) (*domainschedule.Task, error) {
			require.Equal(t, "Quarterly review prep", input.Title)
			return &domainschedule.Task{
				Title:    input.Title,
				Priority: domainschedule.PriorityHigh,
				Status:   domainschedule.TaskOpen,
				DueDate:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	}

	body := `{"title":"Quarterly review prep","priority":"high","due_date":"2026-09-15"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tasks", strings.NewReader(body))
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domainschedule.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domainschedule.TaskOpen, got.Status)
}

func TestCompleteTask_Conflict(t *testing.T) {
	mock := &mockScheduleService{
		completeTaskFn: func(_ context.Context, id string) (*domainschedule.Task, error) {
			return nil, errors.New(errors.ErrCodeScheduleConflict, "task is not open")
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tasks/t-1/complete", nil)
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.ErrCodeScheduleConflict))
}

func TestDueTasks_QueryParsing(t *testing.T) {
	var gotBy time.Time
	var gotLimit int
	mock := &mockScheduleService{
		dueTasksFn: func(_ context.Context, by time.Time, limit int) ([]*domainschedule.Task, error) {
			gotBy, gotLimit = by, limit
			return []*domainschedule.Task{}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tasks/due?by=2026-09-01&limit=10", nil)
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), gotBy)
	assert.Equal(t, 10, gotLimit)
}

func TestDueTasks_BadDate(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tasks/due?by=tomorrow", nil)
	scheduleRouter(NewScheduleHandler(&mockScheduleService{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAppointment_ConflictSurfaces(t *testing.T) {
	mock := &mockScheduleService{
		createApptFn: func(_ context.Context, _ appschedule.AppointmentInput) (*domainschedule.Appointment, error) {
			return nil, errors.New(errors.ErrCodeScheduleConflict, "appointment overlaps an existing booking")
		},
	}

	body := `{"client_id":"c-1","title":"Review","starts_at":"2026-09-01T10:00:00Z","ends_at":"2026-09-01T11:00:00Z"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/appointments", strings.NewReader(body))
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), string(errors.ErrCodeScheduleConflict))
}

func TestRescheduleAppointment(t *testing.T) {
	mock := &mockScheduleService{
		rescheduleApptFn: func(_ context.Context, id string, startsAt, endsAt time.Time) (*domainschedule.Appointment, error) {
			require.Equal(t, "a-1", id)
			return &domainschedule.Appointment{
				Title:    "Review",
				Status:   domainschedule.AppointmentScheduled,
				StartsAt: startsAt,
				EndsAt:   endsAt,
			}, nil
		},
	}

	body := `{"starts_at":"2026-09-02T10:00:00Z","ends_at":"2026-09-02T11:00:00Z"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/appointments/a-1", strings.NewReader(body))
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domainschedule.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC), got.StartsAt)
}

func TestListTasks_FiltersPassed(t *testing.T) {
	var got appschedule.TaskListInput
	mock := &mockScheduleService{
		listTasksFn: func(_ context.Context, input appschedule.TaskListInput) (*common.PageResponse[*domainschedule.Task], error) {
			got = input
			return &common.PageResponse[*domainschedule.Task]{Items: []*domainschedule.Task{}}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tasks?status=open&priority=high&page=2&page_size=5", nil)
	scheduleRouter(NewScheduleHandler(mock)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open", got.Status)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.PageSize)
}
