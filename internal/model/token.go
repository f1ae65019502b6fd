package model

import "github.com/google/uuid"

// TokenManager issues and verifies stateless session tokens. Tokens are
// self-contained: there is no server-side revocation list, so a token stays
// valid until its natural expiry.
type TokenManager interface {
	Issue(accountID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
}
