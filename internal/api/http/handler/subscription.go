package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

type subscriptionService interface {
	ApplyEvent(ctx context.Context, event model.SubscriptionEvent) (model.Account, error)
	QuotaStatus(ctx context.Context, accountID uuid.UUID) (model.QuotaStatus, error)
}

// Subscription handles the quota status endpoint and the payment-gateway
// event sink. The event sink is unauthenticated; the event signature is the
// only gate, so it is verified before anything else happens.
type Subscription struct {
	service    subscriptionService
	ctxManager model.ContextManager
	logger     *logger.Logger
}

func NewSubscription(service subscriptionService, ctxManager model.ContextManager, logger *logger.Logger) *Subscription {
	return &Subscription{
		service:    service,
		ctxManager: ctxManager,
		logger:     logger,
	}
}

type quotaStatusResponse struct {
	Status          string `json:"status"`
	RecordCount     int    `json:"recordCount"`
	Limit           int    `json:"limit"`
	CanCreateRecord bool   `json:"canCreateRecord"`
}

// Status handles GET /api/subscription/status.
func (h *Subscription) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.service.QuotaStatus(r.Context(), accountID)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, quotaStatusResponse{
		Status:          string(status.Status),
		RecordCount:     status.RecordCount,
		Limit:           status.Limit,
		CanCreateRecord: status.CanCreateRecord,
	})
}

// ApplyEvent handles POST /api/billing/events.
func (h *Subscription) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	var event model.SubscriptionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.Reference == "" || event.Signature == "" {
		writeError(w, http.StatusBadRequest, "reference and signature are required")
		return
	}

	account, err := h.service.ApplyEvent(r.Context(), event)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(account.SubscriptionStatus),
	})
}
