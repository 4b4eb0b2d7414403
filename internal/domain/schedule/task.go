// Package schedule implements the scheduling bounded context: RM tasks and
// client appointments, with their lifecycle rules and repository port.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

// TaskPriority orders the RM's worklist.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var validPriorities = map[TaskPriority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// Task is a follow-up item on the RM's worklist, optionally tied to a
// client.
type Task struct {
	common.BaseEntity

	ClientID    common.ID    `json:"client_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     time.Time    `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewTask creates an open Task. Title and due date are required; an empty
// priority defaults to medium. clientID may be empty for book-level tasks.
func NewTask(clientID common.ID, title, description string, priority TaskPriority, dueDate time.Time) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.InvalidParam("task title must not be empty")
	}
	if dueDate.IsZero() {
		return nil, errors.InvalidParam("task due date must not be zero")
	}
	if clientID != "" {
		if err := clientID.Validate(); err != nil {
			return nil, errors.InvalidParam(fmt.Sprintf("client id: %v", err))
		}
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !validPriorities[priority] {
		return nil, errors.InvalidParam(fmt.Sprintf("unknown task priority %q", priority))
	}

	now := time.Now().UTC()
	return &Task{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		ClientID:    clientID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Priority:    priority,
		Status:      TaskOpen,
		DueDate:     dueDate.UTC(),
	}, nil
}

// Complete marks the task done and stamps CompletedAt. Completing a task
// twice, or a cancelled task, is rejected.
func (t *Task) Complete() error {
	if t.Status != TaskOpen {
		return errors.New(errors.ErrCodeScheduleConflict,
			fmt.Sprintf("task %s has status %q; only open tasks can be completed", t.ID, t.Status))
	}
	now := time.Now().UTC()
	t.Status = TaskCompleted
	t.CompletedAt = &now
	t.Touch()
	return nil
}

// Cancel withdraws an open task.
func (t *Task) Cancel() error {
	if t.Status != TaskOpen {
		return errors.New(errors.ErrCodeScheduleConflict,
			fmt.Sprintf("task %s has status %q; only open tasks can be cancelled", t.ID, t.Status))
	}
	t.Status = TaskCancelled
	t.Touch()
	return nil
}

// IsOverdue reports whether an open task's due date has passed relative to
// now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status == TaskOpen && now.After(t.DueDate)
}
