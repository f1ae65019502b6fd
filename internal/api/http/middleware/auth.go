// Package middleware contains HTTP middleware for authentication and request
// logging.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

// Auth rejects requests without a valid Bearer session token and stores the
// authenticated account ID in the request context.
type Auth struct {
	tokenManager model.TokenManager
	ctxManager   model.ContextManager
	logger       *logger.Logger
}

func NewAuth(tokenManager model.TokenManager, ctxManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		tokenManager: tokenManager,
		ctxManager:   ctxManager,
		logger:       logger,
	}
}

// Authenticate is the middleware handler. All failure modes get the same
// generic 401 body.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			a.unauthorized(w)
			return
		}

		accountID, err := a.tokenManager.Verify(token)
		if err != nil {
			a.logger.Debug("Auth middleware: token rejected",
				"error", err.Error())
			a.unauthorized(w)
			return
		}

		ctx := a.ctxManager.SetAccountID(r.Context(), accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"}); err != nil {
		a.logger.Error("Auth middleware: failed to write response",
			"error", err.Error())
	}
}
