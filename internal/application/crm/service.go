// Package crm provides the application service for client and prospect
// management. It sits between the HTTP handlers and the client domain.
package crm

import (
	"context"
	"time"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/messaging/kafka"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// Service defines client application operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	Update(ctx context.Context, input UpdateInput) (*Client, error)
	Convert(ctx context.Context, id string) (*Client, error)
	ChangeStatus(ctx context.Context, id string, status string) (*Client, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, input ListInput) (*common.PageResponse[*Client], error)
}

// CreateInput carries the fields for a new client record.
type CreateInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RiskProfile string `json:"risk_profile"`
	Notes       string `json:"notes"`
}

// UpdateInput carries a partial update; empty fields keep current values.
type UpdateInput struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RiskProfile string `json:"risk_profile"`
	Notes       string `json:"notes"`
}

// ListInput narrows and pages a client listing.
type ListInput struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// Client is the application-level client DTO.
type Client struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Status      string     `json:"status"`
	RiskProfile string     `json:"risk_profile"`
	Notes       string     `json:"notes,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type serviceImpl struct {
	repo      domainclient.Repository
	publisher kafka.Publisher
	logger    logging.Logger
}

// NewService creates the client application service.
func NewService(repo domainclient.Repository, publisher kafka.Publisher, logger logging.Logger) Service {
	return &serviceImpl{repo: repo, publisher: publisher, logger: logger}
}

func (s *serviceImpl) Create(ctx context.Context, input CreateInput) (*Client, error) {
	c, err := domainclient.New(input.Name, input.Email, input.Phone, domainclient.RiskProfile(input.RiskProfile))
	if err != nil {
		return nil, err
	}
	c.Notes = input.Notes

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, kafka.TopicClientCreated, string(c.ID), kafka.ClientCreatedPayload{
		ClientID:  string(c.ID),
		Name:      c.Name,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	})
	return toDTO(c), nil
}

func (s *serviceImpl) GetByID(ctx context.Context, id string) (*Client, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	return toDTO(c), nil
}

func (s *serviceImpl) Update(ctx context.Context, input UpdateInput) (*Client, error) {
	cid, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateDetails(input.Name, input.Email, input.Phone, input.Notes, domainclient.RiskProfile(input.RiskProfile)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toDTO(c), nil
}

func (s *serviceImpl) Convert(ctx context.Context, id string) (*Client, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	if err := c.Convert(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, kafka.TopicClientConverted, string(c.ID), kafka.ClientStatusChangedPayload{
		ClientID:  string(c.ID),
		OldStatus: string(domainclient.StatusProspect),
		NewStatus: string(c.Status),
		ChangedAt: c.UpdatedAt,
	})
	return toDTO(c), nil
}

func (s *serviceImpl) ChangeStatus(ctx context.Context, id string, status string) (*Client, error) {
	cid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, cid)
	if err != nil {
		return nil, err
	}
	old := c.Status
	if err := c.UpdateStatus(domainclient.Status(status)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, kafka.TopicClientStatusChanged, string(c.ID), kafka.ClientStatusChangedPayload{
		ClientID:  string(c.ID),
		OldStatus: string(old),
		NewStatus: string(c.Status),
		ChangedAt: c.UpdatedAt,
	})
	return toDTO(c), nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	cid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, cid)
}

func (s *serviceImpl) List(ctx context.Context, input ListInput) (*common.PageResponse[*Client], error) {
	p := common.Pagination{Page: input.Page, PageSize: input.PageSize}
	if p.Page == 0 && p.PageSize == 0 {
		p = common.DefaultPagination()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	filter := domainclient.Filter{Search: input.Search}
	if input.Status != "" {
		st := domainclient.Status(input.Status)
		switch st {
		case domainclient.StatusProspect, domainclient.StatusActive, domainclient.StatusInactive:
			filter.Status = st
		default:
			return nil, errors.InvalidParam("unknown client status filter")
		}
	}

	clients, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, err
	}
	items := make([]*Client, len(clients))
	for i, c := range clients {
		items[i] = toDTO(c)
	}
	page := common.NewPageResponse(items, total, p)
	return &page, nil
}

// emit publishes an activity event. Events are advisory; a broker failure is
// logged and never surfaces to the caller.
func (s *serviceImpl) emit(ctx context.Context, topic, key string, payload any) {
	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		s.logger.Warn("activity event publish failed",
			logging.String("topic", topic),
			logging.Err(err))
	}
}

func parseID(id string) (common.ID, error) {
	cid := common.ID(id)
	if err := cid.Validate(); err != nil {
		return "", errors.InvalidParam("malformed client id")
	}
	return cid, nil
}

func toDTO(c *domainclient.Client) *Client {
	return &Client{
		ID:          string(c.ID),
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Status:      string(c.Status),
		RiskProfile: string(c.RiskProfile),
		Notes:       c.Notes,
		ConvertedAt: c.ConvertedAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
