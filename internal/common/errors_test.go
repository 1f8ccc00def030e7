package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwraps(t *testing.T) {
	appErr := NewAppError("CONFIG_ERROR", "GROQ_API_KEY is required", ErrInvalidInput)
	assert.Equal(t, "CONFIG_ERROR: GROQ_API_KEY is required: invalid input", appErr.Error())
	assert.ErrorIs(t, appErr, ErrInvalidInput)
}

func TestAppErrorWithoutCause(t *testing.T) {
	appErr := NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", nil)
	assert.Equal(t, "CONFIG_ERROR: HTTP_ADDR is required", appErr.Error())
	assert.NoError(t, appErr.Unwrap())
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(cause, "insert job")
	require.Error(t, err)
	assert.Equal(t, "insert job: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapErrorPassesNilThrough(t *testing.T) {
	assert.NoError(t, WrapError(nil, "insert job"))
}

func TestErrInternalIsMatchable(t *testing.T) {
	err := fmt.Errorf("%w: document pipeline panic: boom", ErrInternal)
	assert.ErrorIs(t, err, ErrInternal)
}
