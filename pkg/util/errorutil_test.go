package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughWrapped(t *testing.T) {
	orig := NewNotFound("Bug", nil)
	wrapped := fmt.Errorf("get bug: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "Bug not found", de.Message)
}

func TestToDomainErrorWrapsUnknownAsInternal(t *testing.T) {
	de := ToDomainError(errors.New("connection refused"))
	require.NotNil(t, de)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, "connection refused", de.Message)
	assert.Equal(t, "connection refused", de.Error())
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestNewInvalidID(t *testing.T) {
	de := ToDomainError(NewInvalidID("bug"))
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "Invalid bug ID format", de.Message)
}
