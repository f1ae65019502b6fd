package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager moves the authenticated account ID in and out of a request
// context.
type ContextManager interface {
	SetAccountID(ctx context.Context, accountID uuid.UUID) context.Context
	AccountID(ctx context.Context) (uuid.UUID, bool)
}
