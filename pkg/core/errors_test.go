package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewProviderError("anthropic", cause)

	assert.Contains(t, err.Error(), "anthropic")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)

	var cerr *Error
	require.ErrorAs(t, error(err), &cerr)
	assert.Equal(t, ErrProvider, cerr.Type)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("API key missing")
	assert.Equal(t, ErrConfiguration, err.Type)
	assert.Nil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "API key missing")
}

func TestToolExecutionErrorf(t *testing.T) {
	err := NewToolExecutionErrorf("invalid characters in expression: %q", ";")
	assert.Equal(t, ErrToolExecution, err.Type)
	assert.Contains(t, err.Error(), `";"`)
}

func TestNoProviderAvailableSentinel(t *testing.T) {
	var err error = ErrNoProviderAvailable
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
	assert.Equal(t, ErrNoProvider, ErrNoProviderAvailable.Type)
}
