package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	meta := MetadataFor(CodeNotFound)
	assert.Equal(t, http.StatusNotFound, meta.HTTPStatus)
	assert.False(t, meta.Retryable)

	meta = MetadataFor(CodeOutOfStock)
	assert.Equal(t, http.StatusConflict, meta.HTTPStatus)
	assert.True(t, meta.DetailsAllowed)

	meta = MetadataFor(CodeInsufficientFunds)
	assert.Equal(t, http.StatusBadRequest, meta.HTTPStatus)

	meta = MetadataFor(CodeDependency)
	assert.True(t, meta.Retryable)
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")

	assert.Equal(t, CodeDependency, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DEPENDENCY_ERROR")
	assert.Contains(t, err.Error(), "redis unavailable")
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	typed := New(CodeStateConflict, "withdrawal already approved")
	wrapped := fmt.Errorf("approving withdrawal: %w", typed)

	found := As(wrapped)
	require.NotNil(t, found)
	assert.Equal(t, CodeStateConflict, found.Code())
	assert.Equal(t, "withdrawal already approved", found.Message())

	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestWithDetails(t *testing.T) {
	err := New(CodeOutOfStock, "insufficient stock").
		WithDetails(map[string]any{"available": 2, "requested": 3})

	details, ok := err.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, details["available"])
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeInternal, nil, "fallback")
	assert.Equal(t, CodeInternal, err.Code())
	assert.Nil(t, err.Unwrap())
}
