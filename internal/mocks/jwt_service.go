package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
// Without overrides, tokens are "token-<user id>" and validate back to that user.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

var _ auth.JWTService = (*MockJWTService)(nil)

const tokenPrefix = "token-"

// TokenFor returns the token the default GenerateToken issues for userID.
func TokenFor(userID uuid.UUID) string {
	return tokenPrefix + userID.String()
}

// GenerateToken implements auth.JWTService
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return TokenFor(userID), nil
}

// ValidateToken implements auth.JWTService
func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	if len(token) <= len(tokenPrefix) || token[:len(tokenPrefix)] != tokenPrefix {
		return nil, auth.ErrInvalidToken
	}
	id, err := uuid.Parse(token[len(tokenPrefix):])
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id, Subject: id.String()}, nil
}
