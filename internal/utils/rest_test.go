package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{name: "bad request", code: http.StatusBadRequest, message: "Invalid request body"},
		{name: "unauthorized", code: http.StatusUnauthorized, message: "Password required"},
		{name: "internal server error", code: http.StatusInternalServerError, message: "Error loading session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			RespondWithError(w, tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.message, response.Error)
		})
	}
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("struct payload", func(t *testing.T) {
		w := httptest.NewRecorder()
		payload := struct {
			Panels []string `json:"panels"`
		}{Panels: []string{"a", "b", "c"}}

		require.NoError(t, RespondWithJSON(w, http.StatusOK, payload))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"panels":["a","b","c"]}`, w.Body.String())
	})

	t.Run("nil payload", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, RespondWithJSON(w, http.StatusOK, nil))
		assert.Equal(t, "null\n", w.Body.String())
	})

	t.Run("unencodable payload", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := RespondWithJSON(w, http.StatusOK, map[string]interface{}{"ch": make(chan int)})

		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	type request struct {
		Prompt string `json:"prompt"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
		fails   bool
	}{
		{name: "valid", body: `{"prompt":"What is 2+2?"}`, want: "What is 2+2?"},
		{name: "empty prompt", body: `{"prompt":""}`, want: ""},
		{name: "empty body", body: ``, wantErr: ErrEmptyBody, fails: true},
		{name: "malformed", body: `{"prompt":`, fails: true},
		{name: "unknown field", body: `{"prompt":"x","model":"y"}`, fails: true},
		{name: "trailing data", body: `{"prompt":"x"}{"prompt":"y"}`, fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var got request
			err := DecodeJSON(w, req, &got)

			if tt.fails {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.True(t, errors.Is(err, tt.wantErr))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Prompt)
		})
	}
}
