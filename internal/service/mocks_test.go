package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/passvault/passvault-server/internal/model"
)

// MockAccountStore mocks the AccountStore interface
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccountStore) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockAccountStore) AddRecordCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountStore) SetRecordCount(ctx context.Context, id uuid.UUID, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockAccountStore) UpdateSubscription(ctx context.Context, id uuid.UUID, update model.SubscriptionUpdate) (model.Account, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(model.Account), args.Error(1)
}

// MockRecordStore mocks the RecordStore interface
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Create(ctx context.Context, record model.Record) (model.Record, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockRecordStore) GetByID(ctx context.Context, id uuid.UUID) (model.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockRecordStore) GetByOwnerID(ctx context.Context, ownerID uuid.UUID, filter model.RecordFilter) ([]model.Record, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordStore) Update(ctx context.Context, record model.Record) (model.Record, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockRecordStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordStore) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Issue(accountID uuid.UUID) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) Verify(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockQuotaChecker mocks the quotaChecker interface
type MockQuotaChecker struct {
	mock.Mock
}

func (m *MockQuotaChecker) QuotaStatus(ctx context.Context, accountID uuid.UUID) (model.QuotaStatus, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.QuotaStatus), args.Error(1)
}

// MockEventVerifier mocks the eventVerifier interface
type MockEventVerifier struct {
	mock.Mock
}

func (m *MockEventVerifier) Verify(event model.SubscriptionEvent) error {
	args := m.Called(event)
	return args.Error(0)
}
