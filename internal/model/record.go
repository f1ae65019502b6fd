package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is applied to records created without a category.
const DefaultCategory = "General"

// RecordStore defines persistence operations for credential records.
type RecordStore interface {
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID, filter RecordFilter) ([]Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int, error)
}

// Record represents a stored credential record. EncryptedPayload is opaque
// ciphertext produced on the client; the server stores and returns it without
// ever interpreting it. Large payloads are offloaded to object storage, in
// which case BlobKey is set and EncryptedPayload is empty on the row.
type Record struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Title            string
	EncryptedPayload string
	BlobKey          string
	Category         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RecordFilter narrows owner-scoped listing. Zero values mean no filtering.
type RecordFilter struct {
	Category      string
	TitleContains string
}

// CreateRecordParams contains parameters to create a record.
type CreateRecordParams struct {
	OwnerID          uuid.UUID
	Title            string
	EncryptedPayload string
	Category         string
}

// UpdateRecordParams contains parameters to update a record. Nil fields keep
// the stored value; the replacement of the non-nil fields is atomic.
type UpdateRecordParams struct {
	OwnerID          uuid.UUID
	RecordID         uuid.UUID
	Title            *string
	EncryptedPayload *string
	Category         *string
}
