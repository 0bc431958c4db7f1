package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorUnwraps(t *testing.T) {
	err := NewProviderError("alpha_vantage", "GetQuote", "AAPL", ErrTimeout)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "alpha_vantage")
	assert.Contains(t, err.Error(), "AAPL")
}

func TestDataErrorUnwraps(t *testing.T) {
	err := NewDataError("candles", "AAPL", "empty series", ErrInsufficientData)

	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "AAPL")
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrUnknownCondition, "condition %d: %q", 2, "sentiment")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCondition)
	assert.Contains(t, err.Error(), "sentiment")

	assert.Nil(t, Wrap(nil, "never wraps nil"))
}

func TestWrapDatabaseTagsAndPreserves(t *testing.T) {
	underlying := NewProviderError("sqlite", "exec", "", ErrTimeout)
	err := WrapDatabase(underlying, "saving screening run")

	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "saving screening run")

	assert.Nil(t, WrapDatabase(nil, "never wraps nil"))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("weight", -1.0, "condition weight must be non-negative")

	assert.Contains(t, err.Error(), "weight")
	assert.Contains(t, err.Error(), "non-negative")
}
