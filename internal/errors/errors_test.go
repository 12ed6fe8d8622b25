package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := domainerrors.NotFoundf("review %s not found", "rev-1")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.False(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "review rev-1 not found", err.Error())
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("move review: %w", domainerrors.Validation("sort order required"))

	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := domainerrors.Wrap(cause, domainerrors.CodeInternal, "save review orders")

	assert.Equal(t, "save review orders: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := map[domainerrors.Code]int{
		domainerrors.CodeNotFound:           http.StatusNotFound,
		domainerrors.CodeValidation:         http.StatusBadRequest,
		domainerrors.CodeConflict:           http.StatusConflict,
		domainerrors.CodeAlreadyExists:      http.StatusConflict,
		domainerrors.CodeForbidden:          http.StatusForbidden,
		domainerrors.CodeUnauthorized:       http.StatusUnauthorized,
		domainerrors.CodeInvalidCredentials: http.StatusUnauthorized,
		domainerrors.CodeRateLimited:        http.StatusTooManyRequests,
		domainerrors.CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestError_WithDetails(t *testing.T) {
	base := domainerrors.Validation("sort order required")
	withDetails := base.WithDetails(map[string]string{"form-1-sort_order": "is required"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.True(t, domainerrors.Is(withDetails, domainerrors.ErrValidation))
}

func TestCode_UnknownIsInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, domainerrors.Code("TEAPOT").HTTPStatus())
}

func TestError_WithCauseCopies(t *testing.T) {
	cause := fmt.Errorf("locked")
	base := domainerrors.Conflict("song is closed")
	wrapped := base.WithCause(cause)

	assert.Equal(t, "song is closed", base.Error())
	assert.Equal(t, "song is closed: locked", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
	assert.ErrorIs(t, wrapped, domainerrors.ErrConflict)
}
