// Package httpctx carries the authenticated account ID through request
// contexts.
package httpctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/model"
)

type contextKey int

const accountIDKey contextKey = iota

var _ model.ContextManager = (*Manager)(nil)

// Manager implements model.ContextManager on top of context values.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetAccountID(ctx context.Context, accountID uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func (m *Manager) AccountID(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return accountID, ok
}
