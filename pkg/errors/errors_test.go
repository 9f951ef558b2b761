package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err.Unwrap(), "boom")
}

func TestFromErrorKeepsTyped(t *testing.T) {
	original := Clone(ErrNotFound, "student not found")
	wrapped := fmt.Errorf("lookup: %w", original)
	assert.Same(t, original, FromError(wrapped))
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrForbidden, "admins only")
	assert.True(t, errors.Is(clone, ErrForbidden))
	assert.False(t, errors.Is(clone, ErrUnauthorized))
	assert.Equal(t, "admins only", clone.Message)
	assert.Equal(t, "forbidden", ErrForbidden.Message)
}

func TestInternalAndInvalid(t *testing.T) {
	cause := errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, Internal(cause, "failed").Status)
	invalid := Invalid(cause, "bad payload")
	assert.Equal(t, ErrValidation.Code, invalid.Code)
	assert.ErrorIs(t, invalid, cause)
}

func TestAsUsesSentinelCodeAndStatus(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := As(ErrNotReady, cause, "database unreachable")
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database unreachable: dial tcp: refused", err.Error())

	unsupported := Clone(ErrUnsupportedMedia, "evil.html has an unsupported file type")
	assert.Equal(t, http.StatusUnsupportedMediaType, unsupported.Status)
	assert.False(t, errors.Is(unsupported, ErrValidation))
}
