// Package kafka publishes advisory activity events. Downstream consumers
// (notification fan-out, analytics) subscribe to these topics; the API server
// itself only produces.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicClientCreated        = "client.created"
	TopicClientConverted      = "client.converted"
	TopicClientStatusChanged  = "client.status_changed"
	TopicTransactionRecorded  = "transaction.recorded"
	TopicTransactionDeleted   = "transaction.deleted"
	TopicTaskCompleted        = "task.completed"
	TopicAppointmentScheduled = "appointment.scheduled"
)

const (
	eventSource   = "wealthdesk-api"
	schemaVersion = "1.0"
)

// EventEnvelope is the wire format shared by every topic.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload for the given topic. The topic name doubles as
// the event type.
func NewEnvelope(topic string, payload any) (EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     topic,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
	}, nil
}

type ClientCreatedPayload struct {
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ClientStatusChangedPayload struct {
	ClientID  string    `json:"client_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}

type TransactionRecordedPayload struct {
	TransactionID string    `json:"transaction_id"`
	ClientID      string    `json:"client_id"`
	Type          string    `json:"type"`
	ProductType   string    `json:"product_type"`
	TotalAmount   string    `json:"total_amount"`
	TradeDate     time.Time `json:"trade_date"`
}

type TransactionDeletedPayload struct {
	TransactionID string    `json:"transaction_id"`
	ClientID      string    `json:"client_id"`
	DeletedAt     time.Time `json:"deleted_at"`
}

type TaskCompletedPayload struct {
	TaskID      string     `json:"task_id"`
	ClientID    string     `json:"client_id,omitempty"`
	Title       string     `json:"title"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type AppointmentScheduledPayload struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      string    `json:"client_id"`
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}
