package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/passvault/passvault-server/internal/logger"
	"github.com/passvault/passvault-server/internal/model"
)

func TestAuth_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockAuthService)
		wantStatus int
	}{
		{
			name: "successful registration",
			body: `{"email":"user@example.com","masterPassword":"correct horse"}`,
			mockSetup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "user@example.com", "correct horse").
					Return(model.Account{
						ID:                 uuid.New(),
						Email:              "user@example.com",
						SubscriptionStatus: model.SubscriptionFree,
					}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: `{"email":"taken@example.com","masterPassword":"correct horse"}`,
			mockSetup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "taken@example.com", "correct horse").
					Return(model.Account{}, model.ErrDuplicateAccount)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "missing fields",
			body:       `{"email":"user@example.com"}`,
			mockSetup:  func(svc *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{not json`,
			mockSetup:  func(svc *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{}
			tt.mockSetup(svc)

			h := NewAuth(svc, logger.New(0))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockAuthService)
		wantStatus int
		wantToken  string
	}{
		{
			name: "successful login",
			body: `{"email":"user@example.com","masterPassword":"correct horse"}`,
			mockSetup: func(svc *MockAuthService) {
				svc.On("Login", mock.Anything, "user@example.com", "correct horse").
					Return("session-token", nil)
			},
			wantStatus: http.StatusOK,
			wantToken:  "session-token",
		},
		{
			name: "invalid credentials",
			body: `{"email":"user@example.com","masterPassword":"wrong"}`,
			mockSetup: func(svc *MockAuthService) {
				svc.On("Login", mock.Anything, "user@example.com", "wrong").
					Return("", model.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password",
			body:       `{"email":"user@example.com"}`,
			mockSetup:  func(svc *MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAuthService{}
			tt.mockSetup(svc)

			h := NewAuth(svc, logger.New(0))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantToken != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantToken, body["token"])
			}
		})
	}
}
