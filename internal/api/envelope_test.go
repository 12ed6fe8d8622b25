package api

import (
	"errors"
	"net/http"
	"testing"

	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"song_id": "song-1"}

	out, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	env, ok := out.(SuccessEnvelope)
	require.True(t, ok)
	assert.Equal(t, 1, env.Version)
	assert.True(t, env.Success)
	assert.Equal(t, data, env.Data)
}

func TestEnvelopeTransformer_Error(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "404", &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "review rev-1 not found"})
	require.NoError(t, err)

	env, ok := out.(ErrorEnvelope)
	require.True(t, ok)
	assert.False(t, env.Success)
	assert.Equal(t, "review rev-1 not found", env.Error)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestEnvelopeTransformer_AlreadyWrapped(t *testing.T) {
	wrapped := SuccessEnvelope{Version: 1, Success: true, Data: "x"}

	out, err := EnvelopeTransformer(nil, "200", wrapped)
	require.NoError(t, err)
	assert.Equal(t, wrapped, out)
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "validation with details",
			err:    domainerrors.ValidationWithDetails("sort order required", map[string]string{"form-0-sort_order": "is required"}),
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "conflict",
			err:    domainerrors.Conflict("song is already published"),
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "store not found",
			err:    store.ErrNotFound,
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := toAPIError(tt.err)
			require.NotNil(t, apiErr)
			assert.Equal(t, tt.status, apiErr.GetStatus())
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}

	assert.Nil(t, toAPIError(errors.New("plain")))
}

func TestDecodeBulk(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		entries, err := decodeBulk("application/x-www-form-urlencoded; charset=utf-8",
			[]byte("form-0-id=A&form-0-sort_order=2&form-1-id=B&form-1-sort_order=1"))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "A", entries[0].ID)
		assert.Equal(t, "2", entries[0].SortOrder)
	})

	t.Run("json accepts numbers, strings and null", func(t *testing.T) {
		entries, err := decodeBulk("application/json",
			[]byte(`{"reviews":[{"id":"A","sort_order":2},{"id":"B","sort_order":"1"},{"id":"C","sort_order":null},{"id":"D"}]}`))
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "2", entries[0].SortOrder)
		assert.Equal(t, "1", entries[1].SortOrder)
		assert.Empty(t, entries[2].SortOrder)
		assert.Empty(t, entries[3].SortOrder)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeBulk("application/json", []byte("{"))
		assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		_, err := decodeBulk("text/csv", []byte("A,1"))
		assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	})
}

func TestExtractIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", extractIP("10.0.0.1, 172.16.0.1", "192.168.1.1"))
	assert.Equal(t, "192.168.1.1", extractIP("", "192.168.1.1"))
	assert.Empty(t, extractIP("", ""))
}
