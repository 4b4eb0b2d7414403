package client

import (
	"context"

	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Filter narrows client listings. Zero-value fields are ignored.
type Filter struct {
	Status Status
	Search string // matches name or email, case-insensitive substring
}

// Repository defines the persistence contract for the client context.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id common.ID) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id common.ID) error

	List(ctx context.Context, filter Filter, p common.Pagination) ([]*Client, int64, error)

	// CountByStatus returns record counts per lifecycle status across the
	// whole book, used by the insights service.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
