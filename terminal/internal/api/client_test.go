package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func writeEnvelope(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "success",
		"statusCode": statusCode,
		"message":    message,
		"data":       data,
	})
}

func TestClient(t *testing.T) {
	var lastBody map[string]any
	var lastHeader http.Header
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart/", func(w http.ResponseWriter, r *http.Request) {
		lastHeader = r.Header.Clone()
		writeEnvelope(w, http.StatusOK, "ok", map[string]any{
			"items": []map[string]any{{
				"id":       4,
				"product":  map[string]any{"id": 1, "name": "Lomo saltado", "price": "10.00"},
				"quantity": 2,
				"subtotal": "20.00",
			}},
			"total": "20.00",
		})
	})
	mux.HandleFunc("POST /api/cart/checkout", func(w http.ResponseWriter, r *http.Request) {
		lastBody = map[string]any{}
		json.NewDecoder(r.Body).Decode(&lastBody)
		writeEnvelope(w, http.StatusCreated, "Pedido finalizado", map[string]any{
			"message": "Pedido finalizado", "order_id": 12, "total": "20.00", "order_type": "mesa",
		})
	})
	mux.HandleFunc("PUT /api/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, "No autorizado", nil)
	})
	mux.HandleFunc("DELETE /api/cart/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL+"/", 5*time.Second, staticToken("abc"))
	c := context.Background()

	t.Run("decodes the envelope data", func(t *testing.T) {
		cart, err := client.GetCart(c)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, "Lomo saltado", cart.Items[0].Product.Name)
		assert.True(t, decimal.NewFromInt(20).Equal(cart.Total))
		assert.Equal(t, "Bearer abc", lastHeader.Get("Authorization"))
		assert.NotEmpty(t, lastHeader.Get("X-Request-Id"))
	})

	t.Run("omits the fields of the other order type", func(t *testing.T) {
		table := int32(5)
		result, err := client.Checkout(c, cartRequest.Checkout{
			Fulfillment: orderRequest.Fulfillment{
				OrderType:     orderRequest.OrderTypeMesa,
				TableNumber:   &table,
				PaymentMethod: orderRequest.PaymentMethodCash,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), result.OrderID)
		assert.Equal(t, orderRequest.OrderTypeMesa, result.OrderType)

		assert.Equal(t, map[string]any{
			"order_type":     "mesa",
			"table_number":   float64(5),
			"payment_method": "efectivo",
		}, lastBody)
	})

	t.Run("non 2xx carries the server message", func(t *testing.T) {
		_, err := client.UpdateOrderStatus(c, 3, orderRequest.UpdateStatus{Status: orderRequest.StatusPaid})
		responseErr := &inErrors.ResponseError{}
		require.True(t, errors.As(err, &responseErr))
		assert.Equal(t, http.StatusForbidden, responseErr.StatusCode)
		assert.Equal(t, "No autorizado", responseErr.Message)
	})

	t.Run("non json error body", func(t *testing.T) {
		err := client.RemoveCartItem(c, 4)
		responseErr := &inErrors.ResponseError{}
		require.True(t, errors.As(err, &responseErr))
		assert.Equal(t, http.StatusBadGateway, responseErr.StatusCode)
		assert.Empty(t, responseErr.Message)
	})
}
