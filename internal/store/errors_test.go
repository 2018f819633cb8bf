package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{"nil error", nil, false, false},
		{"generic error", errors.New("some error"), false, false},
		{"generic not found", ErrNotFound, true, false},
		{"user not found", ErrUserNotFound, true, false},
		{"book not found", ErrBookNotFound, true, false},
		{"wrapped trade not found", fmt.Errorf("lookup: %w", ErrTradeNotFound), true, false},
		{"name exists", ErrNameExists, false, true},
		{"pending trade exists", ErrPendingTradeExists, false, true},
		{"trade not pending", ErrTradeNotPending, false, false},
		{
			"store error wrapping not found",
			NewStoreError("trade", "get", "lookup failed", ErrTradeNotFound),
			true,
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.notFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.duplicate, IsDuplicateError(tc.err))
		})
	}
}

func TestEntityErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrBookNotFound, ErrTradeNotFound))
	assert.False(t, errors.Is(ErrTradeNotFound, ErrUserNotFound))
	assert.True(t, errors.Is(ErrTradeNotPending, ErrConditionFailed))
	assert.Equal(t, "entity not found: trade", ErrTradeNotFound.Error())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("book", "update", "query failed", cause)

	assert.Equal(t, "update operation on book failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on user failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
