package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestI18nError_Is(t *testing.T) {
	t.Parallel()

	base := NewNotFound()

	wrapped := Wrap(base, "op.Something")
	assert.ErrorIs(t, wrapped, NewNotFound())

	withCause := base.WithCause(errors.New("row missing"))
	assert.ErrorIs(t, withCause, NewNotFound())

	assert.NotErrorIs(t, wrapped, NewConflict())
}

func TestI18nError_WithCause_DoesNotMutateSentinel(t *testing.T) {
	t.Parallel()

	sentinel := NewInternalError()
	derived := sentinel.WithCause(errors.New("boom"))

	require.NotSame(t, sentinel, derived)
	assert.Nil(t, sentinel.cause)
	assert.ErrorContains(t, derived, "boom")
}

func TestWrap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap(nil, "op"))

	err := Wrap(fmt.Errorf("inner"), "pkg.Op")
	assert.EqualError(t, err, "pkg.Op: inner")
}

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeNoCodeIssued, http.StatusNotFound},
		{CodeCodeExpired, http.StatusBadRequest},
		{CodeCodeMismatch, http.StatusBadRequest},
		{CodeMailDispatchFailed, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeUpstreamError, http.StatusBadGateway},
		{Code("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.code.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HTTPStatusCode(tt.code))
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := Wrap(NewAlreadyProcessed(), "op")
	assert.True(t, IsCode(err, CodeAlreadyProcessed))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(nil, CodeNotFound))
}
