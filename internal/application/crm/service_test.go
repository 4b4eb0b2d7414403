package crm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainclient "github.com/wealthdesk/wealthdesk/internal/domain/client"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/messaging/kafka"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

type mockClientRepo struct {
	createFn        func(ctx context.Context, c *domainclient.Client) error
	getByIDFn       func(ctx context.Context, id common.ID) (*domainclient.Client, error)
	getByEmailFn    func(ctx context.Context, email string) (*domainclient.Client, error)
	updateFn        func(ctx context.Context, c *domainclient.Client) error
	deleteFn        func(ctx context.Context, id common.ID) error
	listFn          func(ctx context.Context, f domainclient.Filter, p common.Pagination) ([]*domainclient.Client, int64, error)
	countByStatusFn func(ctx context.Context) (map[domainclient.Status]int64, error)
}

func (m *mockClientRepo) Create(ctx context.Context, c *domainclient.Client) error {
	return m.createFn(ctx, c)
}
func (m *mockClientRepo) GetByID(ctx context.Context, id common.ID) (*domainclient.Client, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockClientRepo) GetByEmail(ctx context.Context, email string) (*domainclient.Client, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockClientRepo) Update(ctx context.Context, c *domainclient.Client) error {
	return m.updateFn(ctx, c)
}
func (m *mockClientRepo) Delete(ctx context.Context, id common.ID) error {
	return m.deleteFn(ctx, id)
}
func (m *mockClientRepo) List(ctx context.Context, f domainclient.Filter, p common.Pagination) ([]*domainclient.Client, int64, error) {
	return m.listFn(ctx, f, p)
}
func (m *mockClientRepo) CountByStatus(ctx context.Context) (map[domainclient.Status]int64, error) {
	return m.countByStatusFn(ctx)
}

type capturingPublisher struct {
	topics []string
	keys   []string
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, topic, key string, _ any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	return nil
}
func (p *capturingPublisher) Close() error { return nil }

func newTestService(repo *mockClientRepo, pub kafka.Publisher) Service {
	if pub == nil {
		pub = kafka.NopPublisher{}
	}
	return NewService(repo, pub, logging.NewNopLogger())
}

func mustClient(t *testing.T) *domainclient.Client {
	t.Helper()
	c, err := domainclient.New("Asha Rao", "asha@example.com", "+91-98000", domainclient.RiskModerate)
	require.NoError(t, err)
	return c
}

func TestCreate(t *testing.T) {
	var saved *domainclient.Client
	repo := &mockClientRepo{
		createFn: func(_ context.Context, c *domainclient.Client) error {
			saved = c
			return nil
		},
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, pub)

	got, err := svc.Create(context.Background(), CreateInput{
		Name:  "Asha Rao",
		Email: "Asha@Example.com",
		Phone: "+91-98000",
		Notes: "referred by Mehta family",
	})
	require.NoError(t, err)

	assert.Equal(t, "prospect", got.Status)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Equal(t, "moderate", got.RiskProfile)
	assert.Equal(t, "referred by Mehta family", saved.Notes)
	assert.Equal(t, []string{kafka.TopicClientCreated}, pub.topics)
	assert.Equal(t, []string{got.ID}, pub.keys)
}

func TestCreate_InvalidEmail(t *testing.T) {
	svc := newTestService(&mockClientRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "not-an-email"})
	assert.True(t, errors.IsValidation(err))
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := &mockClientRepo{
		createFn: func(_ context.Context, _ *domainclient.Client) error {
			return errors.New(errors.ErrCodeClientAlreadyExists, "client exists")
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "x@example.com"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeClientAlreadyExists))
}

func TestCreate_PublishFailureDoesNotSurface(t *testing.T) {
	repo := &mockClientRepo{
		createFn: func(_ context.Context, _ *domainclient.Client) error { return nil },
	}
	pub := &capturingPublisher{err: errors.Internal("broker down")}
	svc := newTestService(repo, pub)

	_, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "x@example.com"})
	assert.NoError(t, err)
}

func TestGetByID_MalformedID(t *testing.T) {
	svc := newTestService(&mockClientRepo{}, nil)

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	assert.True(t, errors.IsValidation(err))
}

func TestConvert(t *testing.T) {
	c := mustClient(t)
	repo := &mockClientRepo{
		getByIDFn: func(_ context.Context, id common.ID) (*domainclient.Client, error) {
			require.Equal(t, c.ID, id)
			return c, nil
		},
		updateFn: func(_ context.Context, _ *domainclient.Client) error { return nil },
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, pub)

	got, err := svc.Convert(context.Background(), string(c.ID))
	require.NoError(t, err)

	assert.Equal(t, "active", got.Status)
	require.NotNil(t, got.ConvertedAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.ConvertedAt, 5*time.Second)
	assert.Equal(t, []string{kafka.TopicClientConverted}, pub.topics)
}

func TestConvert_AlreadyActive(t *testing.T) {
	c := mustClient(t)
	require.NoError(t, c.Convert())
	repo := &mockClientRepo{
		getByIDFn: func(_ context.Context, _ common.ID) (*domainclient.Client, error) { return c, nil },
	}
	svc := newTestService(repo, nil)

	_, err := svc.Convert(context.Background(), string(c.ID))
	assert.True(t, errors.IsCode(err, errors.ErrCodeClientStatusInvalid))
}

func TestChangeStatus_EmitsOldAndNew(t *testing.T) {
	c := mustClient(t)
	require.NoError(t, c.Convert())
	repo := &mockClientRepo{
		getByIDFn: func(_ context.Context, _ common.ID) (*domainclient.Client, error) { return c, nil },
		updateFn:  func(_ context.Context, _ *domainclient.Client) error { return nil },
	}
	pub := &capturingPublisher{}
	svc := newTestService(repo, pub)

	got, err := svc.ChangeStatus(context.Background(), string(c.ID), "inactive")
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)
	assert.Equal(t, []string{kafka.TopicClientStatusChanged}, pub.topics)
}

func TestUpdate_PartialKeepsFields(t *testing.T) {
	c := mustClient(t)
	repo := &mockClientRepo{
		getByIDFn: func(_ context.Context, _ common.ID) (*domainclient.Client, error) { return c, nil },
		updateFn:  func(_ context.Context, _ *domainclient.Client) error { return nil },
	}
	svc := newTestService(repo, nil)

	got, err := svc.Update(context.Background(), UpdateInput{ID: string(c.ID), Phone: "+91-97111"})
	require.NoError(t, err)
	assert.Equal(t, "+91-97111", got.Phone)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, "asha@example.com", got.Email)
}

func TestList_Defaults(t *testing.T) {
	c := mustClient(t)
	repo := &mockClientRepo{
		listFn: func(_ context.Context, f domainclient.Filter, p common.Pagination) ([]*domainclient.Client, int64, error) {
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 20, p.PageSize)
			assert.Empty(t, f.Status)
			return []*domainclient.Client{c}, 1, nil
		},
	}
	svc := newTestService(repo, nil)

	page, err := svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, string(c.ID), page.Items[0].ID)
}

func TestList_UnknownStatus(t *testing.T) {
	svc := newTestService(&mockClientRepo{}, nil)

	_, err := svc.List(context.Background(), ListInput{Status: "archived"})
	assert.True(t, errors.IsValidation(err))
}

func TestDelete_NotFoundPassesThrough(t *testing.T) {
	c := mustClient(t)
	repo := &mockClientRepo{
		deleteFn: func(_ context.Context, _ common.ID) error {
			return errors.New(errors.ErrCodeClientNotFound, "client not found")
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Delete(context.Background(), string(c.ID))
	assert.True(t, errors.IsNotFound(err))
}
