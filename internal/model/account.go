package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	// AddRecordCount atomically adds delta to the account's record counter,
	// flooring the result at zero, and returns the resulting count.
	AddRecordCount(ctx context.Context, id uuid.UUID, delta int) (int, error)
	// SetRecordCount overwrites the record counter with an exact value.
	SetRecordCount(ctx context.Context, id uuid.UUID, count int) error
	UpdateSubscription(ctx context.Context, id uuid.UUID, update SubscriptionUpdate) (Account, error)
}

// Account represents a stored account with authentication material and
// subscription state. The master password itself is never stored; only the
// bcrypt hash and the account salt are.
type Account struct {
	ID                    uuid.UUID
	Email                 string
	MasterPasswordHash    []byte
	MasterPasswordSalt    string
	SubscriptionStatus    SubscriptionStatus
	SubscriptionID        string
	SubscriptionStartDate *time.Time
	RecordCount           int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SubscriptionUpdate carries the fields changed by a subscription transition.
type SubscriptionUpdate struct {
	Status         SubscriptionStatus
	SubscriptionID string
	StartDate      *time.Time
}

// QuotaStatus is the reconciled quota view returned to the owner.
type QuotaStatus struct {
	Status          SubscriptionStatus
	RecordCount     int
	Limit           int
	CanCreateRecord bool
}
