package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

func TestBuild(t *testing.T) {
	testCases := []struct {
		name     string
		draft    Draft
		expected string
	}{
		{
			name:     "mesa",
			draft:    Draft{OrderType: "mesa", TableNumber: 5, DeliveryAddress: "Av. Sol 123", PaymentMethod: "yape"},
			expected: `{"order_type":"mesa","table_number":5,"payment_method":"yape"}`,
		},
		{
			name:     "delivery without phone",
			draft:    Draft{OrderType: "delivery", DeliveryAddress: " Av. Sol 123 ", TableNumber: 5, PaymentMethod: "Plin"},
			expected: `{"order_type":"delivery","delivery_address":"Av. Sol 123","payment_method":"plin"}`,
		},
		{
			name:     "delivery with phone",
			draft:    Draft{OrderType: " Delivery", DeliveryAddress: "Jr. Lima 45", DeliveryPhone: "987654321", PaymentMethod: "tarjeta"},
			expected: `{"order_type":"delivery","delivery_address":"Jr. Lima 45","delivery_phone":"987654321","payment_method":"tarjeta"}`,
		},
		{
			name:     "payment defaults to cash",
			draft:    Draft{OrderType: "mesa", TableNumber: 2},
			expected: `{"order_type":"mesa","table_number":2,"payment_method":"efectivo"}`,
		},
		{
			name:     "target user is not part of the payload",
			draft:    Draft{OrderType: "mesa", TableNumber: 1, TargetUserID: 3},
			expected: `{"order_type":"mesa","table_number":1,"payment_method":"efectivo"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := Build(tc.draft)
			require.NoError(t, err)
			assert.Nil(t, payload.UserID)

			body, err := json.Marshal(payload)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestBuildRejects(t *testing.T) {
	testCases := []struct {
		name    string
		draft   Draft
		field   string
		message string
	}{
		{name: "unknown order type", draft: Draft{OrderType: "llevar"}, field: "order_type", message: orderRequest.MessageInvalidOrderType},
		{name: "mesa without table", draft: Draft{OrderType: "mesa"}, field: "table_number", message: orderRequest.MessageInvalidTableNumber},
		{name: "mesa with negative table", draft: Draft{OrderType: "mesa", TableNumber: -1}, field: "table_number", message: orderRequest.MessageInvalidTableNumber},
		{name: "delivery without address", draft: Draft{OrderType: "delivery", DeliveryPhone: "987"}, field: "delivery_address", message: orderRequest.MessageMissingAddress},
		{name: "delivery with blank address", draft: Draft{OrderType: "delivery", DeliveryAddress: "   "}, field: "delivery_address", message: orderRequest.MessageMissingAddress},
		{name: "unknown payment", draft: Draft{OrderType: "mesa", TableNumber: 1, PaymentMethod: "bitcoin"}, field: "payment_method", message: orderRequest.MessageInvalidPaymentMethod},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.draft)
			assert.ErrorIs(t, err, inErrors.ErrValidation)

			var validationErr *inErrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
			assert.Equal(t, tc.message, validationErr.Message)
		})
	}
}
