package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

// quotaChecker is the slice of the subscription service the vault needs for
// the creation gate.
type quotaChecker interface {
	QuotaStatus(ctx context.Context, accountID uuid.UUID) (model.QuotaStatus, error)
}

// Vault orchestrates credential record storage. Payloads are opaque
// ciphertext; the vault routes them between the database and object storage
// but never interprets them.
type Vault struct {
	recordStore      model.RecordStore
	accountStore     model.AccountStore
	storage          model.Storage
	quota            quotaChecker
	offloadThreshold int
	logger           *logger.Logger
}

func NewVault(
	recordStore model.RecordStore,
	accountStore model.AccountStore,
	storage model.Storage,
	quota quotaChecker,
	offloadThreshold int,
	logger *logger.Logger,
) *Vault {
	return &Vault{
		recordStore:      recordStore,
		accountStore:     accountStore,
		storage:          storage,
		quota:            quota,
		offloadThreshold: offloadThreshold,
		logger:           logger,
	}
}

// CreateRecord gates creation on the owner's quota, persists the record and
// bumps the owner's record counter. Payloads above the offload threshold are
// written to object storage and the row keeps only the blob key.
func (s *Vault) CreateRecord(ctx context.Context, params model.CreateRecordParams) (model.Record, error) {
	status, err := s.quota.QuotaStatus(ctx, params.OwnerID)
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to get quota status: %w", err)
	}
	if !status.CanCreateRecord {
		s.logger.Info("Vault service: record limit reached",
			"account_id", params.OwnerID,
			"limit", status.Limit)
		return model.Record{}, &model.QuotaError{Limit: status.Limit}
	}

	category := params.Category
	if category == "" {
		category = model.DefaultCategory
	}

	record := model.Record{
		ID:               uuid.New(),
		OwnerID:          params.OwnerID,
		Title:            params.Title,
		EncryptedPayload: params.EncryptedPayload,
		Category:         category,
	}

	if err := s.offloadPayload(ctx, &record); err != nil {
		return model.Record{}, fmt.Errorf("failed to offload payload: %w", err)
	}

	created, err := s.recordStore.Create(ctx, record)
	if err != nil {
		s.logger.Error("Vault service: failed to create record",
			"account_id", params.OwnerID,
			"error", err.Error())
		return model.Record{}, fmt.Errorf("failed to create record: %w", err)
	}

	if _, err := s.accountStore.AddRecordCount(ctx, params.OwnerID, 1); err != nil {
		s.logger.Error("Vault service: failed to increment record count",
			"account_id", params.OwnerID,
			"error", err.Error())
		return model.Record{}, fmt.Errorf("failed to increment record count: %w", err)
	}

	if err := s.materializePayload(ctx, &created); err != nil {
		return model.Record{}, err
	}

	s.logger.Info("Vault service: record created",
		"account_id", params.OwnerID,
		"record_id", created.ID)

	return created, nil
}

// GetRecord returns a single record owned by ownerID. Records owned by other
// accounts report model.ErrNotFound, indistinguishable from absent ones.
func (s *Vault) GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (model.Record, error) {
	record, err := s.recordStore.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Record{}, model.ErrNotFound
		}
		return model.Record{}, fmt.Errorf("failed to get record by id: %w", err)
	}

	if record.OwnerID != ownerID {
		return model.Record{}, model.ErrNotFound
	}

	if err := s.materializePayload(ctx, &record); err != nil {
		return model.Record{}, err
	}

	return record, nil
}

// ListRecords returns the owner's records, newest update first, optionally
// narrowed by category and title substring.
func (s *Vault) ListRecords(ctx context.Context, ownerID uuid.UUID, filter model.RecordFilter) ([]model.Record, error) {
	records, err := s.recordStore.GetByOwnerID(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get records by owner id: %w", err)
	}

	for i := range records {
		if err := s.materializePayload(ctx, &records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// UpdateRecord replaces the provided fields of an owned record. Nil fields
// keep their stored value. A payload change re-evaluates offloading, so a
// record can move between row storage and object storage across updates.
func (s *Vault) UpdateRecord(ctx context.Context, params model.UpdateRecordParams) (model.Record, error) {
	record, err := s.recordStore.GetByID(ctx, params.RecordID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Record{}, model.ErrNotFound
		}
		return model.Record{}, fmt.Errorf("failed to get record by id: %w", err)
	}

	if record.OwnerID != params.OwnerID {
		return model.Record{}, model.ErrNotFound
	}

	if params.Title != nil {
		record.Title = *params.Title
	}
	if params.Category != nil {
		record.Category = *params.Category
		if record.Category == "" {
			record.Category = model.DefaultCategory
		}
	}
	if params.EncryptedPayload != nil {
		previousBlobKey := record.BlobKey
		record.EncryptedPayload = *params.EncryptedPayload
		record.BlobKey = ""

		if err := s.offloadPayload(ctx, &record); err != nil {
			return model.Record{}, fmt.Errorf("failed to offload payload: %w", err)
		}

		if previousBlobKey != "" && previousBlobKey != record.BlobKey {
			if err := s.storage.Delete(ctx, previousBlobKey); err != nil {
				s.logger.Error("Vault service: failed to delete stale blob",
					"record_id", record.ID,
					"blob_key", previousBlobKey,
					"error", err.Error())
			}
		}
	}

	updated, err := s.recordStore.Update(ctx, record)
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to update record: %w", err)
	}

	if err := s.materializePayload(ctx, &updated); err != nil {
		return model.Record{}, err
	}

	s.logger.Info("Vault service: record updated",
		"account_id", params.OwnerID,
		"record_id", updated.ID)

	return updated, nil
}

// DeleteRecord removes an owned record, its offloaded blob if any, and
// decrements the owner's record counter.
func (s *Vault) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	record, err := s.recordStore.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get record by id: %w", err)
	}

	if record.OwnerID != ownerID {
		return model.ErrNotFound
	}

	if record.BlobKey != "" {
		if err := s.storage.Delete(ctx, record.BlobKey); err != nil {
			s.logger.Error("Vault service: failed to delete blob",
				"record_id", record.ID,
				"blob_key", record.BlobKey,
				"error", err.Error())
		}
	}

	if err := s.recordStore.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if _, err := s.accountStore.AddRecordCount(ctx, ownerID, -1); err != nil {
		s.logger.Error("Vault service: failed to decrement record count",
			"account_id", ownerID,
			"error", err.Error())
		return fmt.Errorf("failed to decrement record count: %w", err)
	}

	s.logger.Info("Vault service: record deleted",
		"account_id", ownerID,
		"record_id", recordID)

	return nil
}

// offloadPayload moves the payload to object storage when it exceeds the
// threshold. The row then carries only the blob key.
func (s *Vault) offloadPayload(ctx context.Context, record *model.Record) error {
	if len(record.EncryptedPayload) <= s.offloadThreshold {
		return nil
	}

	key := blobKey(record.OwnerID, record.ID)
	if err := s.storage.Upload(ctx, key, strings.NewReader(record.EncryptedPayload)); err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	record.BlobKey = key
	record.EncryptedPayload = ""

	return nil
}

// materializePayload loads an offloaded payload back into the record before
// it is returned to the owner. Callers never see blob keys.
func (s *Vault) materializePayload(ctx context.Context, record *model.Record) error {
	if record.BlobKey == "" {
		return nil
	}

	reader, err := s.storage.Download(ctx, record.BlobKey)
	if err != nil {
		// A missing blob is lost data, not a transient storage failure.
		if exists, existsErr := s.storage.Exists(ctx, record.BlobKey); existsErr == nil && !exists {
			s.logger.Error("Vault service: offloaded payload missing",
				"record_id", record.ID,
				"blob_key", record.BlobKey)
			return fmt.Errorf("offloaded payload for record %s is missing", record.ID)
		}
		return fmt.Errorf("failed to download blob: %w", err)
	}
	defer reader.Close()

	payload, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	record.EncryptedPayload = string(payload)
	record.BlobKey = ""

	return nil
}

func blobKey(ownerID, recordID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", ownerID, recordID)
}
