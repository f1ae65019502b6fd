package handler

import (
	"context"
	"net/http"

	"github.com/passvault/passvault-server/internal/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the server can reach its database.
type Health struct {
	db     pinger
	logger *logger.Logger
}

func NewHealth(db pinger, logger *logger.Logger) *Health {
	return &Health{
		db:     db,
		logger: logger,
	}
}

// Check handles GET /api/health.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed",
			"error", err.Error())
		writeError(w, http.StatusServiceUnavailable, "unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
