package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appschedule "github.com/wealthdesk/wealthdesk/internal/application/schedule"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
)

// ScheduleHandler serves the task and appointment routes.
type ScheduleHandler struct {
	service appschedule.Service
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(service appschedule.Service) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// CreateTask handles POST /tasks.
func (h *ScheduleHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input appschedule.TaskInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/{taskID}.
func (h *ScheduleHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var input appschedule.TaskInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "taskID"), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CompleteTask handles POST /tasks/{taskID}/complete.
func (h *ScheduleHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.CompleteTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CancelTask handles POST /tasks/{taskID}/cancel.
func (h *ScheduleHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.CancelTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}.
func (h *ScheduleHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /tasks.
func (h *ScheduleHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	result, err := h.service.ListTasks(r.Context(), appschedule.TaskListInput{
		ClientID: r.URL.Query().Get("client_id"),
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DueTasks handles GET /tasks/due?by=&limit=.
func (h *ScheduleHandler) DueTasks(w http.ResponseWriter, r *http.Request) {
	var by time.Time
	if v := r.URL.Query().Get("by"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeAppError(w, errors.InvalidParam("by must be in YYYY-MM-DD form"))
			return
		}
		by = t
	}

	tasks, err := h.service.DueTasks(r.Context(), by, queryInt(r, "limit"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateAppointment handles POST /appointments.
func (h *ScheduleHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var input appschedule.AppointmentInput
	if err := decodeBody(r, &input); err != nil {
		writeAppError(w, err)
		return
	}

	appt, err := h.service.CreateAppointment(r.Context(), input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// RescheduleAppointment handles PUT /appointments/{appointmentID}.
func (h *ScheduleHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartsAt time.Time `json:"starts_at"`
		EndsAt   time.Time `json:"ends_at"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeAppError(w, err)
		return
	}

	appt, err := h.service.RescheduleAppointment(r.Context(),
		chi.URLParam(r, "appointmentID"), body.StartsAt, body.EndsAt)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// CancelAppointment handles DELETE /appointments/{appointmentID}.
func (h *ScheduleHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelAppointment(r.Context(), chi.URLParam(r, "appointmentID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteAppointment handles POST /appointments/{appointmentID}/complete.
func (h *ScheduleHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.service.CompleteAppointment(r.Context(), chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListAppointments handles GET /appointments.
func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	page, pageSize := parsePagination(r)

	result, err := h.service.ListAppointments(r.Context(), appschedule.AppointmentListInput{
		ClientID: r.URL.Query().Get("client_id"),
		Status:   r.URL.Query().Get("status"),
		Range:    rng,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpcomingAppointments handles GET /appointments/upcoming?limit=.
func (h *ScheduleHandler) UpcomingAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.service.UpcomingAppointments(r.Context(), time.Time{}, queryInt(r, "limit"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

func queryInt(r *http.Request, name string) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
