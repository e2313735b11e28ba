package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/internal"
	"github.com/jhamir14/restaurant/internal/config"
	inHttp "github.com/jhamir14/restaurant/internal/http"
)

const secret = "secret"

func newTestConfig() *config.Config {
	return &config.Config{
		Application: config.Application{SecretKey: secret},
		Cache:       config.Cache{CartTTL: time.Minute},
	}
}

func TestRoutes(t *testing.T) {
	router := NewRouter(newTestConfig(), nil, nil, nil)

	routes := []string{}
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, method := range methods {
			routes = append(routes, method+" "+path)
		}
		return nil
	})
	require.NoError(t, err)

	expected := []string{
		"GET /metrics",
		"GET /api/health",
		"GET /api/products/",
		"GET /api/products/{productId:[0-9]+}",
		"GET /api/menu/today",
		"GET /api/cart/",
		"POST /api/cart/",
		"POST /api/cart/checkout",
		"PUT /api/cart/{itemId:[0-9]+}",
		"DELETE /api/cart/{itemId:[0-9]+}",
		"GET /api/orders/",
		"GET /api/orders/history",
		"PUT /api/orders/{orderId:[0-9]+}/status",
		"POST /api/admin/orders",
		"GET /api/admin/users/",
	}
	for _, route := range expected {
		assert.Contains(t, routes, route)
	}
	for _, route := range routes {
		assert.False(t, strings.Contains(route, "/api/api"), route)
	}
}

func TestAuthorization(t *testing.T) {
	router := NewRouter(newTestConfig(), nil, nil, nil)

	customer, err := internal.SignToken(internal.Identity{UserID: 2, Username: "ana"}, secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name            string
		method          string
		path            string
		token           string
		body            string
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:           "given no token cart should answer unauthorized",
			method:         http.MethodGet,
			path:           "/api/cart/",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "given no token checkout should answer unauthorized",
			method:         http.MethodPost,
			path:           "/api/cart/checkout",
			body:           `{"order_type":"mesa","table_number":5}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "given no token status update should answer unauthorized",
			method:         http.MethodPut,
			path:           "/api/orders/1/status",
			body:           `{"status":"pagado"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:            "given customer status update should answer forbidden",
			method:          http.MethodPut,
			path:            "/api/orders/1/status",
			token:           customer,
			body:            `{"status":"pagado"}`,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "No autorizado",
		},
		{
			name:            "given customer with invalid status should still answer forbidden",
			method:          http.MethodPut,
			path:            "/api/orders/1/status",
			token:           customer,
			body:            `{"status":"cocinando"}`,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "No autorizado",
		},
		{
			name:            "given customer admin order creation should answer forbidden",
			method:          http.MethodPost,
			path:            "/api/admin/orders",
			token:           customer,
			body:            `{"user_id":3}`,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "No autorizado",
		},
		{
			name:            "given customer customer list should answer forbidden",
			method:          http.MethodGet,
			path:            "/api/admin/users/",
			token:           customer,
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "No autorizado",
		},
		{
			name:           "given unknown path should answer not found",
			method:         http.MethodGet,
			path:           "/api/api/cart/",
			token:          customer,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:            "given health should answer ok without token",
			method:          http.MethodGet,
			path:            "/api/health",
			expectedStatus:  http.StatusOK,
			expectedMessage: "ok",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(test.method, test.path, strings.NewReader(test.body))
			if test.token != "" {
				r.Header.Set(inHttp.KeyHeaderAuthorization, inHttp.BearerPrefix+test.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, test.expectedStatus, w.Code)
			if test.expectedMessage == "" {
				return
			}
			body := map[string]any{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, test.expectedMessage, body["message"])
		})
	}
}
