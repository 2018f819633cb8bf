package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		serviceErr     error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "success",
			body:           RegisterRequest{Username: "reader1", Password: "secret1"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "name taken",
			body:           RegisterRequest{Username: "reader1", Password: "secret1"},
			serviceErr:     store.ErrNameExists,
			expectedStatus: http.StatusConflict,
			expectedMsg:    "User with this name already exists",
		},
		{
			name:           "short password",
			body:           RegisterRequest{Username: "reader1", Password: "abc"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid password: too short",
		},
		{
			name:           "non alphanumeric name",
			body:           RegisterRequest{Username: "reader one", Password: "secret1"},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid username: must contain only letters and digits",
		},
		{
			name:           "domain validation failure",
			body:           RegisterRequest{Username: "reader1", Password: "secret1"},
			serviceErr:     domain.ErrPasswordTooShort,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "password must be at least 6 characters long",
		},
		{
			name:           "empty body",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request format",
		},
		{
			name:           "store failure",
			body:           RegisterRequest{Username: "reader1", Password: "secret1"},
			serviceErr:     errors.New("pq: deadlock detected"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Failed to create user",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAuthService{
				RegisterFn: func(_ context.Context, name, password string) (*service.AuthResult, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					user := testUser(name)
					return &service.AuthResult{User: user, Token: "token-" + user.ID.String()}, nil
				},
			}
			h := NewAuthHandler(svc, nil)

			rec := httptest.NewRecorder()
			h.Register(rec, newRequest(t, http.MethodPost, "/api/auth/register", tc.body, uuid.Nil, nil))

			require.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
			if tc.expectedStatus == http.StatusCreated {
				resp := decodeBody[AuthResponse](t, rec)
				assert.Equal(t, "reader1", resp.User.Name)
				assert.Equal(t, "token-"+resp.User.ID.String(), resp.Token)
				assert.NotContains(t, rec.Body.String(), "hashed")
				return
			}
			assert.Equal(t, tc.expectedMsg, errorMessage(t, rec))
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	user := testUser("reader1")

	svc := &fakeAuthService{
		LoginFn: func(_ context.Context, name, password string) (*service.AuthResult, error) {
			if name != user.Name || password != "secret1" {
				return nil, service.ErrInvalidCredentials
			}
			return &service.AuthResult{User: user, Token: "signed"}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	t.Run("valid credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "reader1", Password: "secret1"}, uuid.Nil, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[AuthResponse](t, rec)
		assert.Equal(t, user.ID, resp.User.ID)
		assert.Equal(t, "signed", resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(t, http.MethodPost, "/api/auth/login",
			LoginRequest{Username: "reader1", Password: "nope"}, uuid.Nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", errorMessage(t, rec))
	})

	t.Run("missing password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Login(rec, newRequest(t, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "reader1"}, uuid.Nil, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid password: required field", errorMessage(t, rec))
	})
}
