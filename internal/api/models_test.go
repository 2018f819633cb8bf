package api

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalPrice(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{name: "omitted", body: `{}`},
		{name: "null", body: `{"priceValue":null}`, wantSet: true},
		{name: "number", body: `{"priceValue":9.5}`, wantSet: true, wantValid: true, wantValue: "9.5"},
		{name: "string", body: `{"priceValue":"9.50"}`, wantSet: true, wantValid: true, wantValue: "9.5"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateBookRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))

			assert.Equal(t, tc.wantSet, req.Price.Set)
			assert.Equal(t, tc.wantValid, req.Price.Value.Valid)
			if tc.wantValid {
				assert.True(t, decimal.RequireFromString(tc.wantValue).Equal(req.Price.Value.Decimal))
			}

			update := req.toUpdate()
			assert.Equal(t, tc.wantSet, update.Price != nil)
		})
	}
}

func TestCreateBookRequestToInput(t *testing.T) {
	price := decimal.RequireFromString("4.20")
	req := CreateBookRequest{Title: "Dune", IsForSale: true, Price: &price, PublicationYear: 1965}

	input := req.toInput()
	assert.True(t, input.Price.Valid)
	assert.True(t, price.Equal(input.Price.Decimal))

	req.Price = nil
	assert.False(t, req.toInput().Price.Valid)
}

func TestUserResponseOmitsPassword(t *testing.T) {
	user := &domain.User{
		ID:             uuid.New(),
		Name:           "reader1",
		Password:       "plaintext",
		HashedPassword: "$2a$10$hash",
		Role:           domain.RoleUser,
	}

	data, err := json.Marshal(userToResponse(user))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "plaintext")
	assert.NotContains(t, string(data), "$2a$10$hash")
	assert.Contains(t, string(data), `"role":"user"`)
}

func TestTradeResponseFieldNames(t *testing.T) {
	tr, err := domain.NewTrade(uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	data, err := json.Marshal(tradeToResponse(tr))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "initiatorId", "initiatorBookId", "recipientId", "recipientBookId", "status"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "pending", fields["status"])
}
