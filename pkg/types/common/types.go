// Package common holds the shared value types used across bounded contexts:
// identifiers, audit metadata, pagination, and date ranges. Domain packages
// depend on it; it depends on nothing inside the module.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// NewID generates a new UUID v4.
func NewID() ID {
	return ID(uuid.New().String())
}

// Validate checks that the ID is a parseable UUID.
func (id ID) Validate() error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid ID format: %w", err)
	}
	return nil
}

// BaseEntity carries identity and audit metadata for domain entities.
type BaseEntity struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// Touch updates UpdatedAt and bumps the optimistic-lock Version. Mutating
// entity methods call it last.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
	e.Version++
}

// Pagination defines parameters for paginated list requests.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// Validate checks pagination bounds: Page >= 1, PageSize in [1, 500].
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if p.PageSize < 1 || p.PageSize > 500 {
		return fmt.Errorf("page_size must be between 1 and 500")
	}
	return nil
}

// Offset returns the SQL OFFSET value corresponding to Page and PageSize.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DefaultPagination returns page 1 with a page size of 20.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: 20}
}

// DateRange defines a half-open time interval [From, To).
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Validate checks that From does not come after To.
func (dr DateRange) Validate() error {
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return fmt.Errorf("invalid date range: 'from' must be before or equal to 'to'")
	}
	return nil
}

// Contains reports whether t falls within the range. A zero From or To side
// is treated as unbounded.
func (dr DateRange) Contains(t time.Time) bool {
	if !dr.From.IsZero() && t.Before(dr.From) {
		return false
	}
	if !dr.To.IsZero() && !t.Before(dr.To) {
		return false
	}
	return true
}

// PageResponse is a generic wrapper for paginated results.
type PageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse assembles a PageResponse, computing TotalPages from the
// total row count and the page size.
func NewPageResponse[T any](items []T, total int64, p Pagination) PageResponse[T] {
	pages := 0
	if p.PageSize > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return PageResponse[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: pages,
	}
}

// ContextKey is the type for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID is the context key for the request correlation ID.
	ContextKeyRequestID ContextKey = "request_id"
)
