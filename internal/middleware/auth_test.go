package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhamir14/restaurant/internal"
)

func TestAuth(t *testing.T) {
	secret := "secret"
	customer := internal.Identity{UserID: 9, Username: "luis"}
	token, err := internal.SignToken(customer, secret, time.Hour)
	assert.NoError(t, err)

	tests := []struct {
		name             string
		authorization    string
		expectedStatus   int
		expectedIdentity internal.Identity
	}{
		{
			name:             "given valid bearer token should attach identity",
			authorization:    "Bearer " + token,
			expectedStatus:   http.StatusOK,
			expectedIdentity: customer,
		},
		{
			name:           "given missing header should answer unauthorized",
			authorization:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "given invalid token should answer unauthorized",
			authorization:  "Bearer nope",
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got internal.Identity
			handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity, err := internal.IdentityFromContext(r.Context())
				assert.NoError(t, err)
				got = identity
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/cart/", nil)
			if test.authorization != "" {
				req.Header.Set("Authorization", test.authorization)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			assert.EqualValues(t, test.expectedStatus, recorder.Code)
			assert.EqualValues(t, test.expectedIdentity, got)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		identity       *internal.Identity
		expectedStatus int
	}{
		{
			name:           "given admin should pass through",
			identity:       &internal.Identity{UserID: 1, IsAdmin: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "given customer should answer forbidden",
			identity:       &internal.Identity{UserID: 2},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "given no identity should answer unauthorized",
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPut, "/api/orders/1/status", nil)
			if test.identity != nil {
				req = req.WithContext(internal.AttachIdentity(req.Context(), *test.identity))
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, req)

			assert.Equal(t, test.expectedStatus, recorder.Code)
		})
	}
}
