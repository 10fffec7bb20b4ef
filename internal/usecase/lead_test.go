package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/artisan-crm/internal/entity"
	"github.com/xavierca1/artisan-crm/internal/event"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, params entity.ListParams) (*entity.LeadPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadPage), args.Error(1)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// captureNotifier records published messages synchronously.
type captureNotifier struct {
	msgs []string
}

func (n *captureNotifier) Publish(msg string) {
	n.msgs = append(n.msgs, msg)
}

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) PublishLeadEvent(ctx context.Context, e event.LeadEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

var actor = event.Actor{ID: 7, Username: "jdoe", Name: "Jane Doe"}

func TestCreatePublishesEventAfterCommit(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	lead, err := uc.Create(context.Background(), entity.LeadCreate{
		Name:          "Ana Souza",
		Email:         "ana@acme.com",
		Company:       "Acme",
		LastContacted: &when,
	}, actor)
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "New", lead.Stage) // default stage

	require.Len(t, notifier.msgs, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(notifier.msgs[0]), &payload))
	assert.Equal(t, "lead_created", payload["event"])
	assert.Equal(t, lead.ID, payload["lead_id"])
	assert.Equal(t, float64(7), payload["source"])
	assert.Equal(t, "Jane Doe", payload["sourceName"])
	assert.Equal(t, "Jane Doe added a new lead: Ana Souza", payload["message"])

	leadData := payload["lead_data"].(map[string]any)
	assert.Equal(t, "ana@acme.com", leadData["email"])
	assert.NotContains(t, leadData, "last_contacted")
}

func TestCreateConflictPublishesNothing(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(entity.ErrEmailAlreadyExists)

	_, err := uc.Create(context.Background(), entity.LeadCreate{
		Name:  "Ana Souza",
		Email: "ana@acme.com",
	}, actor)

	assert.ErrorIs(t, err, entity.ErrEmailAlreadyExists)
	assert.Empty(t, notifier.msgs)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	_, err := uc.Create(context.Background(), entity.LeadCreate{Email: "ana@acme.com"}, actor)
	assert.ErrorIs(t, err, entity.ErrValidation)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, notifier.msgs)
}

func TestUpdateEventCarriesChangedFieldsOnly(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	stage := "Qualified"
	when := time.Now()
	update := entity.LeadUpdate{Stage: &stage, LastContacted: &when}

	updated := &entity.Lead{ID: "lead-1", Name: "Ana Souza", Stage: stage}
	repo.On("Update", mock.Anything, "lead-1", update).Return(updated, nil)

	_, err := uc.Update(context.Background(), "lead-1", update, actor)
	require.NoError(t, err)

	require.Len(t, notifier.msgs, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(notifier.msgs[0]), &payload))
	assert.Equal(t, "lead_updated", payload["event"])

	changed := payload["updated_data"].(map[string]any)
	assert.Equal(t, map[string]any{"stage": "Qualified"}, changed)
}

func TestUpdateNotFoundPublishesNothing(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	repo.On("Update", mock.Anything, "missing", mock.Anything).Return(nil, entity.ErrLeadNotFound)

	_, err := uc.Update(context.Background(), "missing", entity.LeadUpdate{}, actor)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.Empty(t, notifier.msgs)
}

func TestDeleteReturnsPriorStateAndPublishes(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	uc := NewLeadUseCase(repo, notifier, nil)

	prior := &entity.Lead{ID: "lead-2", Name: "Bruno Lima", Email: "bruno@acme.com"}
	repo.On("Delete", mock.Anything, "lead-2").Return(prior, nil)

	lead, err := uc.Delete(context.Background(), "lead-2", actor)
	require.NoError(t, err)
	assert.Equal(t, prior, lead)

	require.Len(t, notifier.msgs, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(notifier.msgs[0]), &payload))
	assert.Equal(t, "lead_deleted", payload["event"])
	assert.Equal(t, "lead-2", payload["lead_id"])
	assert.NotContains(t, payload, "lead_data")
}

func TestMirrorFailureDoesNotFailMutation(t *testing.T) {
	repo := new(MockLeadRepository)
	notifier := &captureNotifier{}
	mirror := new(MockMirror)
	uc := NewLeadUseCase(repo, notifier, mirror)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mirror.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	lead, err := uc.Create(context.Background(), entity.LeadCreate{
		Name:  "Carla Dias",
		Email: "carla@acme.com",
	}, actor)

	require.NoError(t, err)
	assert.NotNil(t, lead)
	require.Len(t, notifier.msgs, 1)
	mirror.AssertExpectations(t)
}
