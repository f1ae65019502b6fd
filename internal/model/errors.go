package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for absent entities and for records that exist
	// but belong to another account. The two cases must stay
	// indistinguishable to the caller.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrInvalidCredentials covers both wrong password and unknown email.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredToken is returned for any unusable session token.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// ErrInvalidSignature is returned for subscription events whose signature
	// does not verify. Such events are logged and dropped.
	ErrInvalidSignature = errors.New("invalid event signature")

	// ErrInvalidTransition is returned for subscription events that name a
	// status the state machine does not permit from the current one.
	ErrInvalidTransition = errors.New("invalid subscription transition")
)

// QuotaError is returned when record creation would exceed the free-tier
// limit. It carries the limit so callers can surface the upgrade path.
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("record limit of %d reached", e.Limit)
}
