package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

const testOffloadThreshold = 64

func newTestVault(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) *Vault {
	return NewVault(recordStore, accountStore, storage, quota, testOffloadThreshold, logger.New(0))
}

func TestVault_CreateRecord(t *testing.T) {
	ownerID := uuid.New()

	openQuota := model.QuotaStatus{
		Status:          model.SubscriptionFree,
		RecordCount:     3,
		Limit:           25,
		CanCreateRecord: true,
	}

	tests := []struct {
		name      string
		params    model.CreateRecordParams
		mockSetup func(*MockRecordStore, *MockAccountStore, *MockStorage, *MockQuotaChecker)
		check     func(*testing.T, model.Record)
		wantErr   bool
	}{
		{
			name: "successful creation",
			params: model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "GitHub",
				EncryptedPayload: "AQAAGGoS...short",
				Category:         "Work",
			},
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) {
				quota.On("QuotaStatus", mock.Anything, ownerID).Return(openQuota, nil)
				recordStore.On("Create", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
					return r.OwnerID == ownerID && r.Title == "GitHub" && r.Category == "Work" && r.BlobKey == ""
				})).Return(model.Record{
					ID:               uuid.New(),
					OwnerID:          ownerID,
					Title:            "GitHub",
					EncryptedPayload: "AQAAGGoS...short",
					Category:         "Work",
				}, nil)
				accountStore.On("AddRecordCount", mock.Anything, ownerID, 1).Return(4, nil)
			},
			check: func(t *testing.T, record model.Record) {
				assert.Equal(t, "Work", record.Category)
			},
		},
		{
			name: "empty category defaults to General",
			params: model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "GitHub",
				EncryptedPayload: "AQAAGGoS...short",
			},
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) {
				quota.On("QuotaStatus", mock.Anything, ownerID).Return(openQuota, nil)
				recordStore.On("Create", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
					return r.Category == model.DefaultCategory
				})).Return(model.Record{
					ID:       uuid.New(),
					OwnerID:  ownerID,
					Category: model.DefaultCategory,
				}, nil)
				accountStore.On("AddRecordCount", mock.Anything, ownerID, 1).Return(4, nil)
			},
			check: func(t *testing.T, record model.Record) {
				assert.Equal(t, model.DefaultCategory, record.Category)
			},
		},
		{
			name: "large payload is offloaded",
			params: model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "Big",
				EncryptedPayload: strings.Repeat("A", testOffloadThreshold+1),
			},
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) {
				quota.On("QuotaStatus", mock.Anything, ownerID).Return(openQuota, nil)
				storage.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				recordStore.On("Create", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
					return r.BlobKey != "" && r.EncryptedPayload == ""
				})).Return(model.Record{
					ID:      uuid.New(),
					OwnerID: ownerID,
					Title:   "Big",
					BlobKey: "blob-key",
				}, nil)
				accountStore.On("AddRecordCount", mock.Anything, ownerID, 1).Return(4, nil)
				storage.On("Download", mock.Anything, "blob-key").
					Return(io.NopCloser(strings.NewReader(strings.Repeat("A", testOffloadThreshold+1))), nil)
			},
			check: func(t *testing.T, record model.Record) {
				assert.Equal(t, strings.Repeat("A", testOffloadThreshold+1), record.EncryptedPayload)
				assert.Empty(t, record.BlobKey)
			},
		},
		{
			name: "quota exceeded",
			params: model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "One too many",
				EncryptedPayload: "AQAAGGoS...short",
			},
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) {
				quota.On("QuotaStatus", mock.Anything, ownerID).Return(model.QuotaStatus{
					Status:          model.SubscriptionFree,
					RecordCount:     25,
					Limit:           25,
					CanCreateRecord: false,
				}, nil)
			},
			wantErr: true,
		},
		{
			name: "record store error",
			params: model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "GitHub",
				EncryptedPayload: "AQAAGGoS...short",
			},
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage, quota *MockQuotaChecker) {
				quota.On("QuotaStatus", mock.Anything, ownerID).Return(openQuota, nil)
				recordStore.On("Create", mock.Anything, mock.Anything).
					Return(model.Record{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecordStore := &MockRecordStore{}
			mockAccountStore := &MockAccountStore{}
			mockStorage := &MockStorage{}
			mockQuota := &MockQuotaChecker{}
			tt.mockSetup(mockRecordStore, mockAccountStore, mockStorage, mockQuota)

			vault := newTestVault(mockRecordStore, mockAccountStore, mockStorage, mockQuota)

			record, err := vault.CreateRecord(context.Background(), tt.params)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, record)
			}
			mockRecordStore.AssertExpectations(t)
			mockAccountStore.AssertExpectations(t)
		})
	}
}

func TestVault_CreateRecord_QuotaErrorCarriesLimit(t *testing.T) {
	ownerID := uuid.New()

	mockQuota := &MockQuotaChecker{}
	mockQuota.On("QuotaStatus", mock.Anything, ownerID).Return(model.QuotaStatus{
		Status:          model.SubscriptionFree,
		RecordCount:     25,
		Limit:           25,
		CanCreateRecord: false,
	}, nil)

	vault := newTestVault(&MockRecordStore{}, &MockAccountStore{}, &MockStorage{}, mockQuota)

	_, err := vault.CreateRecord(context.Background(), model.CreateRecordParams{OwnerID: ownerID, Title: "x"})

	var quotaErr *model.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 25, quotaErr.Limit)
}

func TestVault_GetRecord(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(*MockRecordStore, *MockStorage)
		wantErr   error
	}{
		{
			name: "owned record",
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).Return(model.Record{
					ID:               recordID,
					OwnerID:          ownerID,
					Title:            "GitHub",
					EncryptedPayload: "ciphertext",
				}, nil)
			},
		},
		{
			name: "foreign record reports not found",
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).Return(model.Record{
					ID:      recordID,
					OwnerID: uuid.New(),
				}, nil)
			},
			wantErr: model.ErrNotFound,
		},
		{
			name: "absent record",
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).
					Return(model.Record{}, model.ErrNotFound)
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecordStore := &MockRecordStore{}
			mockStorage := &MockStorage{}
			tt.mockSetup(mockRecordStore, mockStorage)

			vault := newTestVault(mockRecordStore, &MockAccountStore{}, mockStorage, &MockQuotaChecker{})

			record, err := vault.GetRecord(context.Background(), ownerID, recordID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, recordID, record.ID)
		})
	}
}

func TestVault_GetRecord_MaterializesBlob(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	mockRecordStore := &MockRecordStore{}
	mockRecordStore.On("GetByID", mock.Anything, recordID).Return(model.Record{
		ID:      recordID,
		OwnerID: ownerID,
		Title:   "Big",
		BlobKey: "owner/record",
	}, nil)

	mockStorage := &MockStorage{}
	mockStorage.On("Download", mock.Anything, "owner/record").
		Return(io.NopCloser(strings.NewReader("offloaded ciphertext")), nil)

	vault := newTestVault(mockRecordStore, &MockAccountStore{}, mockStorage, &MockQuotaChecker{})

	record, err := vault.GetRecord(context.Background(), ownerID, recordID)
	require.NoError(t, err)

	assert.Equal(t, "offloaded ciphertext", record.EncryptedPayload)
	assert.Empty(t, record.BlobKey)
}

func TestVault_GetRecord_ReportsMissingBlob(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	mockRecordStore := &MockRecordStore{}
	mockRecordStore.On("GetByID", mock.Anything, recordID).Return(model.Record{
		ID:      recordID,
		OwnerID: ownerID,
		Title:   "Big",
		BlobKey: "owner/record",
	}, nil)

	mockStorage := &MockStorage{}
	mockStorage.On("Download", mock.Anything, "owner/record").
		Return(nil, errors.New("no such key"))
	mockStorage.On("Exists", mock.Anything, "owner/record").Return(false, nil)

	vault := newTestVault(mockRecordStore, &MockAccountStore{}, mockStorage, &MockQuotaChecker{})

	_, err := vault.GetRecord(context.Background(), ownerID, recordID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	mockStorage.AssertExpectations(t)
}

func TestVault_ListRecords(t *testing.T) {
	ownerID := uuid.New()
	filter := model.RecordFilter{Category: "Work"}

	mockRecordStore := &MockRecordStore{}
	mockRecordStore.On("GetByOwnerID", mock.Anything, ownerID, filter).Return([]model.Record{
		{ID: uuid.New(), OwnerID: ownerID, Title: "GitHub", EncryptedPayload: "a", Category: "Work"},
		{ID: uuid.New(), OwnerID: ownerID, Title: "GitLab", EncryptedPayload: "b", Category: "Work"},
	}, nil)

	vault := newTestVault(mockRecordStore, &MockAccountStore{}, &MockStorage{}, &MockQuotaChecker{})

	records, err := vault.ListRecords(context.Background(), ownerID, filter)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestVault_UpdateRecord(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	stored := model.Record{
		ID:               recordID,
		OwnerID:          ownerID,
		Title:            "GitHub",
		EncryptedPayload: "old ciphertext",
		Category:         "Work",
	}

	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name      string
		params    model.UpdateRecordParams
		mockSetup func(*MockRecordStore, *MockStorage)
		check     func(*testing.T, model.Record)
		wantErr   error
	}{
		{
			name: "partial update keeps other fields",
			params: model.UpdateRecordParams{
				OwnerID:  ownerID,
				RecordID: recordID,
				Title:    strPtr("GitHub (work)"),
			},
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).Return(stored, nil)
				recordStore.On("Update", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
					return r.Title == "GitHub (work)" && r.EncryptedPayload == "old ciphertext" && r.Category == "Work"
				})).Return(model.Record{
					ID:               recordID,
					OwnerID:          ownerID,
					Title:            "GitHub (work)",
					EncryptedPayload: "old ciphertext",
					Category:         "Work",
				}, nil)
			},
			check: func(t *testing.T, record model.Record) {
				assert.Equal(t, "GitHub (work)", record.Title)
				assert.Equal(t, "old ciphertext", record.EncryptedPayload)
			},
		},
		{
			name: "payload update",
			params: model.UpdateRecordParams{
				OwnerID:          ownerID,
				RecordID:         recordID,
				EncryptedPayload: strPtr("new ciphertext"),
			},
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).Return(stored, nil)
				recordStore.On("Update", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
					return r.EncryptedPayload == "new ciphertext" && r.BlobKey == ""
				})).Return(model.Record{
					ID:               recordID,
					OwnerID:          ownerID,
					Title:            "GitHub",
					EncryptedPayload: "new ciphertext",
					Category:         "Work",
				}, nil)
			},
			check: func(t *testing.T, record model.Record) {
				assert.Equal(t, "new ciphertext", record.EncryptedPayload)
			},
		},
		{
			name: "foreign record reports not found",
			params: model.UpdateRecordParams{
				OwnerID:  uuid.New(),
				RecordID: recordID,
				Title:    strPtr("stolen"),
			},
			mockSetup: func(recordStore *MockRecordStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).Return(stored, nil)
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecordStore := &MockRecordStore{}
			mockStorage := &MockStorage{}
			tt.mockSetup(mockRecordStore, mockStorage)

			vault := newTestVault(mockRecordStore, &MockAccountStore{}, mockStorage, &MockQuotaChecker{})

			record, err := vault.UpdateRecord(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, record)
			}
			mockRecordStore.AssertExpectations(t)
		})
	}
}

func TestVault_UpdateRecord_DeletesStaleBlob(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	mockRecordStore := &MockRecordStore{}
	mockRecordStore.On("GetByID", mock.Anything, recordID).Return(model.Record{
		ID:      recordID,
		OwnerID: ownerID,
		Title:   "Big",
		BlobKey: "stale-key",
	}, nil)
	mockRecordStore.On("Update", mock.Anything, mock.MatchedBy(func(r model.Record) bool {
		return r.EncryptedPayload == "small now" && r.BlobKey == ""
	})).Return(model.Record{
		ID:               recordID,
		OwnerID:          ownerID,
		Title:            "Big",
		EncryptedPayload: "small now",
	}, nil)

	mockStorage := &MockStorage{}
	mockStorage.On("Delete", mock.Anything, "stale-key").Return(nil)

	vault := newTestVault(mockRecordStore, &MockAccountStore{}, mockStorage, &MockQuotaChecker{})

	payload := "small now"
	record, err := vault.UpdateRecord(context.Background(), model.UpdateRecordParams{
		OwnerID:          ownerID,
		RecordID:         recordID,
		EncryptedPayload: &payload,
	})
	require.NoError(t, err)

	assert.Equal(t, "small now", record.EncryptedPayload)
	mockStorage.AssertExpectations(t)
}

func TestVault_DeleteRecord(t *testing.T) {
	ownerID := uuid.New()
	recordID := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(*MockRecordStore, *MockAccountStore, *MockStorage)
		wantErr   error
	}{
		{
			name: "successful deletion decrements counter",
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).
					Return(model.Record{ID: recordID, OwnerID: ownerID}, nil)
				recordStore.On("Delete", mock.Anything, recordID).Return(nil)
				accountStore.On("AddRecordCount", mock.Anything, ownerID, -1).Return(2, nil)
			},
		},
		{
			name: "offloaded record also deletes blob",
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).
					Return(model.Record{ID: recordID, OwnerID: ownerID, BlobKey: "owner/record"}, nil)
				storage.On("Delete", mock.Anything, "owner/record").Return(nil)
				recordStore.On("Delete", mock.Anything, recordID).Return(nil)
				accountStore.On("AddRecordCount", mock.Anything, ownerID, -1).Return(2, nil)
			},
		},
		{
			name: "foreign record reports not found",
			mockSetup: func(recordStore *MockRecordStore, accountStore *MockAccountStore, storage *MockStorage) {
				recordStore.On("GetByID", mock.Anything, recordID).
					Return(model.Record{ID: recordID, OwnerID: uuid.New()}, nil)
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecordStore := &MockRecordStore{}
			mockAccountStore := &MockAccountStore{}
			mockStorage := &MockStorage{}
			tt.mockSetup(mockRecordStore, mockAccountStore, mockStorage)

			vault := newTestVault(mockRecordStore, mockAccountStore, mockStorage, &MockQuotaChecker{})

			err := vault.DeleteRecord(context.Background(), ownerID, recordID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			mockRecordStore.AssertExpectations(t)
			mockAccountStore.AssertExpectations(t)
			mockStorage.AssertExpectations(t)
		})
	}
}

// countingQuota evaluates the free-tier gate against a live shared counter,
// the way the subscription service does against the database.
type countingQuota struct {
	count *int64
	limit int
}

func (q *countingQuota) QuotaStatus(_ context.Context, _ uuid.UUID) (model.QuotaStatus, error) {
	n := int(atomic.LoadInt64(q.count))
	return model.QuotaStatus{
		Status:          model.SubscriptionFree,
		RecordCount:     n,
		Limit:           q.limit,
		CanCreateRecord: n < q.limit,
	}, nil
}

func TestVault_CreateRecord_ConcurrentAtQuotaBoundary(t *testing.T) {
	ownerID := uuid.New()
	const limit = 25
	const workers = 8

	count := int64(limit - 1)

	mockRecordStore := &MockRecordStore{}
	mockRecordStore.On("Create", mock.Anything, mock.Anything).
		Return(model.Record{OwnerID: ownerID, Title: "Boundary"}, nil)

	mockAccountStore := &MockAccountStore{}
	mockAccountStore.On("AddRecordCount", mock.Anything, ownerID, 1).
		Run(func(mock.Arguments) { atomic.AddInt64(&count, 1) }).
		Return(0, nil)

	quota := &countingQuota{count: &count, limit: limit}
	vault := NewVault(mockRecordStore, mockAccountStore, &MockStorage{}, quota, testOffloadThreshold, logger.New(0))

	var successes, rejections int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := vault.CreateRecord(context.Background(), model.CreateRecordParams{
				OwnerID:          ownerID,
				Title:            "Boundary",
				EncryptedPayload: "AQAA...short",
			})
			if err == nil {
				atomic.AddInt64(&successes, 1)
				return
			}
			var quotaErr *model.QuotaError
			if errors.As(err, &quotaErr) {
				atomic.AddInt64(&rejections, 1)
			}
		}()
	}
	wg.Wait()

	// Every call either created a record or was turned away at the gate, and
	// the overshoot never exceeds the number of in-flight calls.
	assert.Equal(t, int64(workers), successes+rejections)
	assert.GreaterOrEqual(t, successes, int64(1))
	assert.Equal(t, int64(limit-1)+successes, atomic.LoadInt64(&count))

	// With the counter settled at or past the limit, the next create is
	// rejected outright.
	_, err := vault.CreateRecord(context.Background(), model.CreateRecordParams{
		OwnerID:          ownerID,
		Title:            "One more",
		EncryptedPayload: "AQAA...short",
	})
	var quotaErr *model.QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, limit, quotaErr.Limit)
}
