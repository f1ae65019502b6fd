package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

type authService interface {
	Register(ctx context.Context, email, masterPassword string) (model.Account, error)
	Login(ctx context.Context, email, masterPassword string) (string, error)
}

// Auth handles registration and login.
type Auth struct {
	service authService
	logger  *logger.Logger
}

func NewAuth(service authService, logger *logger.Logger) *Auth {
	return &Auth{
		service: service,
		logger:  logger,
	}
}

type credentialsRequest struct {
	Email          string `json:"email"`
	MasterPassword string `json:"masterPassword"`
}

type accountResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.MasterPassword == "" {
		writeError(w, http.StatusBadRequest, "email and masterPassword are required")
		return
	}

	account, err := h.service.Register(r.Context(), req.Email, req.MasterPassword)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, accountResponse{
		ID:                 account.ID.String(),
		Email:              account.Email,
		SubscriptionStatus: string(account.SubscriptionStatus),
		CreatedAt:          account.CreatedAt,
	})
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.MasterPassword == "" {
		writeError(w, http.StatusBadRequest, "email and masterPassword are required")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.MasterPassword)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
