package validation

import (
	"testing"

	apperrors "storeadmin/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v := New()
	v.Required("name", "  ")
	v.Email("email", "not-an-email")
	v.OneOf("status", "archived", "active", "inactive")
	v.PositiveAmount("amount", decimal.Zero)
	v.NonNegativeAmount("discount", decimal.NewFromInt(-1))
	rating := 6
	v.IntRange("rating", &rating, 1, 5)
	v.IntRange("sellerRating", nil, 1, 5)

	assert.False(t, v.Valid())
	assert.Len(t, v.Errors, 6)
	assert.Equal(t, "must be one of: active, inactive", v.Errors["status"])
	assert.NotContains(t, v.Errors, "sellerRating")

	err := v.Err()
	require.Error(t, err)
	de := apperrors.From(err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, v.Errors, de.Fields)
}

func TestValidator_FirstErrorWins(t *testing.T) {
	v := New()
	v.Password("password", "abc")
	assert.Equal(t, "must be at least 8 characters long", v.Errors["password"])
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	v.Email("email", "jane@example.com")
	v.Phone("phone", "+1 (555) 010-2000")
	v.Password("password", "Str0ngPass")
	v.PositiveAmount("amount", decimal.RequireFromString("0.01"))

	assert.True(t, v.Valid())
	assert.NoError(t, v.Err())
}
