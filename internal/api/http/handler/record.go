package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

type vaultService interface {
	CreateRecord(ctx context.Context, params model.CreateRecordParams) (model.Record, error)
	GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (model.Record, error)
	ListRecords(ctx context.Context, ownerID uuid.UUID, filter model.RecordFilter) ([]model.Record, error)
	UpdateRecord(ctx context.Context, params model.UpdateRecordParams) (model.Record, error)
	DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error
}

// Record handles the credential record CRUD endpoints. All of them require
// an authenticated account in the request context.
type Record struct {
	service    vaultService
	ctxManager model.ContextManager
	logger     *logger.Logger
}

func NewRecord(service vaultService, ctxManager model.ContextManager, logger *logger.Logger) *Record {
	return &Record{
		service:    service,
		ctxManager: ctxManager,
		logger:     logger,
	}
}

type createRecordRequest struct {
	Title            string `json:"title"`
	EncryptedPayload string `json:"encryptedPayload"`
	Category         string `json:"category"`
}

type updateRecordRequest struct {
	Title            *string `json:"title"`
	EncryptedPayload *string `json:"encryptedPayload"`
	Category         *string `json:"category"`
}

type recordResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	EncryptedPayload string    `json:"encryptedPayload"`
	Category         string    `json:"category"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toRecordResponse(record model.Record) recordResponse {
	return recordResponse{
		ID:               record.ID.String(),
		Title:            record.Title,
		EncryptedPayload: record.EncryptedPayload,
		Category:         record.Category,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

// Create handles POST /api/records.
func (h *Record) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.EncryptedPayload == "" {
		writeError(w, http.StatusBadRequest, "title and encryptedPayload are required")
		return
	}

	record, err := h.service.CreateRecord(r.Context(), model.CreateRecordParams{
		OwnerID:          ownerID,
		Title:            req.Title,
		EncryptedPayload: req.EncryptedPayload,
		Category:         req.Category,
	})
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordResponse(record))
}

// List handles GET /api/records with optional category and q filters.
func (h *Record) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := model.RecordFilter{
		Category:      r.URL.Query().Get("category"),
		TitleContains: r.URL.Query().Get("q"),
	}

	records, err := h.service.ListRecords(r.Context(), ownerID, filter)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	response := make([]recordResponse, 0, len(records))
	for _, record := range records {
		response = append(response, toRecordResponse(record))
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/records/{id}.
func (h *Record) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	record, err := h.service.GetRecord(r.Context(), ownerID, recordID)
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// Update handles PUT /api/records/{id}.
func (h *Record) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil && req.EncryptedPayload == nil && req.Category == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Title != nil && *req.Title == "" {
		writeError(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if req.EncryptedPayload != nil && *req.EncryptedPayload == "" {
		writeError(w, http.StatusBadRequest, "encryptedPayload must not be empty")
		return
	}

	record, err := h.service.UpdateRecord(r.Context(), model.UpdateRecordParams{
		OwnerID:          ownerID,
		RecordID:         recordID,
		Title:            req.Title,
		EncryptedPayload: req.EncryptedPayload,
		Category:         req.Category,
	})
	if err != nil {
		mapError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

// Delete handles DELETE /api/records/{id}.
func (h *Record) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ctxManager.AccountID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.service.DeleteRecord(r.Context(), ownerID, recordID); err != nil {
		mapError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
