package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bookswap-api/internal/api/shared"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/service/auth"
	"github.com/phrazzld/bookswap-api/internal/service/trade"
	"github.com/phrazzld/bookswap-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"trade not found", &trade.Error{Kind: trade.ErrNotFound, Op: trade.OpRespond}, http.StatusNotFound},
		{"trade forbidden", &trade.Error{Kind: trade.ErrForbidden, Op: trade.OpCancel}, http.StatusForbidden},
		{"trade invalid op", &trade.Error{Kind: trade.ErrInvalidOperation, Op: trade.OpPropose}, http.StatusBadRequest},
		{"trade conflict", &trade.Error{Kind: trade.ErrConflict, Op: trade.OpPropose}, http.StatusConflict},
		{
			"trade kind wins over wrapped store error",
			&trade.Error{Kind: trade.ErrInvalidOperation, Op: trade.OpCancel, Err: store.ErrTradeNotFound},
			http.StatusBadRequest,
		},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", fmt.Errorf("validate: %w", auth.ErrExpiredToken), http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"admin required", service.ErrAdminRequired, http.StatusForbidden},
		{"user not found", fmt.Errorf("failed to retrieve user: %w", store.ErrUserNotFound), http.StatusNotFound},
		{"book not found", store.ErrBookNotFound, http.StatusNotFound},
		{"name exists", store.ErrNameExists, http.StatusConflict},
		{"validation", domain.ErrPriceRequired, http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"self delete", service.ErrSelfDelete, http.StatusBadRequest},
		{"invalid amount", service.ErrInvalidAmount, http.StatusBadRequest},
		{"empty update", service.ErrEmptyUpdate, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			"trade message",
			&trade.Error{Kind: trade.ErrConflict, Op: trade.OpPropose, Message: "a pending trade already exists for these books"},
			"a pending trade already exists for these books",
		},
		{"validation message", fmt.Errorf("create: %w", domain.ErrPriceRequired), "price is required when book is for sale"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"book not found", store.ErrBookNotFound, "Book not found"},
		{"trade not found", store.ErrTradeNotFound, "Trade not found"},
		{"name exists", store.ErrNameExists, "User with this name already exists"},
		{"admin required", service.ErrAdminRequired, "Admin access required"},
		{
			"unknown error hides details",
			errors.New(`pq: duplicate key value violates unique constraint "users_name_key"`),
			defaultErrorMessage,
		},
		{"nil", nil, defaultErrorMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&RespondTradeRequest{Response: "maybe"})
	assert.Equal(t, "Invalid response: invalid value", SanitizeValidationError(err))

	err = shared.ValidateRequest(&RegisterRequest{Username: "reader1"})
	assert.Equal(t, "Invalid password: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("Key: 'X.Y' Error:Field validation")))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("uses default message for server errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(rec, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"), "Failed to list books")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to list books", errorMessage(t, rec))
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})

	t.Run("keeps specific message for client errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(rec, req, store.ErrUserNotFound, "Failed to get user")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", errorMessage(t, rec))
	})
}
