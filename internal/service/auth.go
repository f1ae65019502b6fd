// Package service implements the application services behind the HTTP API:
// account authentication, vault record orchestration and subscription state.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
	"github.com/passvault/passvault-server/internal/password"
)

// Auth registers accounts and exchanges master-password proofs for session
// tokens. The master password is received over the transport, hashed, and
// discarded; only the hash and salt persist.
type Auth struct {
	accountStore model.AccountStore
	hasher       *password.Hasher
	tokenManager model.TokenManager
	logger       *logger.Logger
}

func NewAuth(
	accountStore model.AccountStore,
	hasher *password.Hasher,
	tokenManager model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		accountStore: accountStore,
		hasher:       hasher,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

// NormalizeEmail canonicalizes an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new free-tier account. The email is normalized before
// the uniqueness check so case variants of one address cannot register twice.
func (a *Auth) Register(ctx context.Context, email, masterPassword string) (model.Account, error) {
	email = NormalizeEmail(email)

	a.logger.Debug("Auth service: registering account",
		"email", email)

	salt, err := password.NewSalt()
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash, err := a.hasher.Hash(masterPassword, salt)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to hash master password: %w", err)
	}

	account := model.Account{
		ID:                 uuid.New(),
		Email:              email,
		MasterPasswordHash: hash,
		MasterPasswordSalt: salt,
		SubscriptionStatus: model.SubscriptionFree,
	}

	created, err := a.accountStore.Create(ctx, account)
	if errors.Is(err, model.ErrDuplicateAccount) {
		a.logger.Info("Auth service: email already registered",
			"email", email)
		return model.Account{}, model.ErrDuplicateAccount
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create account",
			"email", email,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	a.logger.Info("Auth service: account registered",
		"account_id", created.ID)

	return created, nil
}

// Login verifies the master password and issues a session token. Unknown
// emails still pay a full hash comparison so response timing does not reveal
// whether an address is registered. Both failure modes come back as
// model.ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, masterPassword string) (string, error) {
	email = NormalizeEmail(email)

	account, err := a.accountStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.hasher.VerifyDummy(masterPassword)
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get account by email",
			"email", email,
			"error", err.Error())
		return "", fmt.Errorf("failed to get account by email: %w", err)
	}

	ok, err := a.hasher.Verify(account.MasterPasswordHash, masterPassword, account.MasterPasswordSalt)
	if err != nil {
		a.logger.Error("Auth service: failed to verify master password",
			"account_id", account.ID,
			"error", err.Error())
		return "", fmt.Errorf("failed to verify master password: %w", err)
	}
	if !ok {
		a.logger.Info("Auth service: wrong master password",
			"account_id", account.ID)
		return "", model.ErrInvalidCredentials
	}

	token, err := a.tokenManager.Issue(account.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue token",
			"account_id", account.ID,
			"error", err.Error())
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login successful",
		"account_id", account.ID)

	return token, nil
}
