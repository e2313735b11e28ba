package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/log"
)

func TestLogging(t *testing.T) {
	sent := uuid.NewString()
	tests := []struct {
		name      string
		requestID string
		keep      bool
	}{
		{name: "given caller request id should keep it", requestID: sent, keep: true},
		{name: "given no request id should generate one", requestID: ""},
		{name: "given malformed request id should replace it", requestID: "not-an-id"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got string
			handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = log.RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			r := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
			r.Header.Set(inHttp.KeyHeaderRequestID, test.requestID)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusNoContent, w.Code)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
			if test.keep {
				assert.Equal(t, sent, got)
			} else {
				assert.NotEqual(t, test.requestID, got)
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	handler := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := map[string]any{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "Error interno del servidor", body["message"])
}
