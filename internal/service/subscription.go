package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

// eventVerifier checks payment-gateway signatures over subscription events.
type eventVerifier interface {
	Verify(event model.SubscriptionEvent) error
}

// Subscription applies payment-gateway events to the account state machine
// and answers quota questions. It is the only writer of subscription status.
type Subscription struct {
	accountStore  model.AccountStore
	recordStore   model.RecordStore
	verifier      eventVerifier
	freeTierLimit int
	logger        *logger.Logger
	now           func() time.Time
}

func NewSubscription(
	accountStore model.AccountStore,
	recordStore model.RecordStore,
	verifier eventVerifier,
	freeTierLimit int,
	logger *logger.Logger,
) *Subscription {
	return &Subscription{
		accountStore:  accountStore,
		recordStore:   recordStore,
		verifier:      verifier,
		freeTierLimit: freeTierLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// ApplyEvent verifies a payment-gateway event and moves the referenced
// account through the state machine. Events with bad signatures are dropped
// with model.ErrInvalidSignature; disallowed transitions report
// model.ErrInvalidTransition. Same-state events succeed without a write.
func (s *Subscription) ApplyEvent(ctx context.Context, event model.SubscriptionEvent) (model.Account, error) {
	if !event.Status.Valid() {
		return model.Account{}, model.ErrInvalidTransition
	}

	if err := s.verifier.Verify(event); err != nil {
		s.logger.Info("Subscription service: dropping event with bad signature",
			"reference", event.Reference,
			"payment_id", event.PaymentID)
		return model.Account{}, err
	}

	account, err := s.accountStore.GetByEmail(ctx, NormalizeEmail(event.Reference))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account by reference: %w", err)
	}

	if !account.SubscriptionStatus.CanTransitionTo(event.Status) {
		s.logger.Info("Subscription service: transition not allowed",
			"account_id", account.ID,
			"from", account.SubscriptionStatus,
			"to", event.Status)
		return model.Account{}, model.ErrInvalidTransition
	}

	if account.SubscriptionStatus == event.Status {
		return account, nil
	}

	update := model.SubscriptionUpdate{
		Status:         event.Status,
		SubscriptionID: event.SubscriptionID,
	}
	if event.Status == model.SubscriptionActive {
		startDate := s.now()
		update.StartDate = &startDate
	}

	updated, err := s.accountStore.UpdateSubscription(ctx, account.ID, update)
	if err != nil {
		s.logger.Error("Subscription service: failed to update subscription",
			"account_id", account.ID,
			"error", err.Error())
		return model.Account{}, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.Info("Subscription service: subscription updated",
		"account_id", updated.ID,
		"from", account.SubscriptionStatus,
		"to", updated.SubscriptionStatus)

	return updated, nil
}

// QuotaStatus returns the account's reconciled quota view. The cached record
// counter is checked against a live count and overwritten when it drifts, so
// a missed increment or decrement heals on the next read.
func (s *Subscription) QuotaStatus(ctx context.Context, accountID uuid.UUID) (model.QuotaStatus, error) {
	account, err := s.accountStore.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.QuotaStatus{}, model.ErrNotFound
		}
		return model.QuotaStatus{}, fmt.Errorf("failed to get account by id: %w", err)
	}

	count, err := s.recordStore.CountByOwnerID(ctx, accountID)
	if err != nil {
		return model.QuotaStatus{}, fmt.Errorf("failed to count records: %w", err)
	}

	if count != account.RecordCount {
		s.logger.Info("Subscription service: record count drifted, reconciling",
			"account_id", accountID,
			"cached", account.RecordCount,
			"actual", count)
		if err := s.accountStore.SetRecordCount(ctx, accountID, count); err != nil {
			return model.QuotaStatus{}, fmt.Errorf("failed to reconcile record count: %w", err)
		}
	}

	return model.QuotaStatus{
		Status:          account.SubscriptionStatus,
		RecordCount:     count,
		Limit:           s.freeTierLimit,
		CanCreateRecord: account.SubscriptionStatus == model.SubscriptionActive || count < s.freeTierLimit,
	}, nil
}
