package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/passvault/passvault-server/internal/model"
)

// MockAuthService mocks the authService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, masterPassword string) (model.Account, error) {
	args := m.Called(ctx, email, masterPassword)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, masterPassword string) (string, error) {
	args := m.Called(ctx, email, masterPassword)
	return args.String(0), args.Error(1)
}

// MockVaultService mocks the vaultService interface
type MockVaultService struct {
	mock.Mock
}

func (m *MockVaultService) CreateRecord(ctx context.Context, params model.CreateRecordParams) (model.Record, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockVaultService) GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (model.Record, error) {
	args := m.Called(ctx, ownerID, recordID)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockVaultService) ListRecords(ctx context.Context, ownerID uuid.UUID, filter model.RecordFilter) ([]model.Record, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockVaultService) UpdateRecord(ctx context.Context, params model.UpdateRecordParams) (model.Record, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockVaultService) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	args := m.Called(ctx, ownerID, recordID)
	return args.Error(0)
}

// MockSubscriptionService mocks the subscriptionService interface
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) ApplyEvent(ctx context.Context, event model.SubscriptionEvent) (model.Account, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockSubscriptionService) QuotaStatus(ctx context.Context, accountID uuid.UUID) (model.QuotaStatus, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.QuotaStatus), args.Error(1)
}
