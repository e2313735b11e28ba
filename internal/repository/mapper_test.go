package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, value := range []string{"0", "10.00", "3.50", "1234.56"} {
		d := decimal.RequireFromString(value)
		assert.True(t, d.Equal(Decimal(Numeric(d))), value)
	}
	assert.True(t, decimal.Zero.Equal(Decimal(pgtype.Numeric{})))
}

func TestFindOrdersRowResponse(t *testing.T) {
	tests := []struct {
		name             string
		row              FindOrdersRow
		expectedUserName string
		expectedType     orderRequest.OrderType
		expectedStatus   orderRequest.Status
		expectedSubtotal string
	}{
		{
			name: "given customer with names and delivery info should map every field",
			row: FindOrdersRow{
				ID:              5,
				UserID:          2,
				Username:        "ana",
				FirstName:       pgtype.Text{String: "Ana", Valid: true},
				LastName:        pgtype.Text{String: "Quispe", Valid: true},
				Total:           Numeric(decimal.RequireFromString("20.00")),
				CreatedAt:       pgtype.Timestamptz{Time: time.Now(), Valid: true},
				OrderType:       pgtype.Text{String: "delivery", Valid: true},
				DeliveryAddress: pgtype.Text{String: "Av. Arequipa 123", Valid: true},
				PaymentMethod:   pgtype.Text{String: "yape", Valid: true},
				Status:          "entregado",
				OrderItems:      []byte(`[{"id":1,"product_name":"Lomo saltado","quantity":2,"price_at_purchase":10.00}]`),
			},
			expectedUserName: "Ana Quispe",
			expectedType:     orderRequest.OrderTypeDelivery,
			expectedStatus:   orderRequest.StatusDelivered,
			expectedSubtotal: "20",
		},
		{
			name: "given customer without names and no info should fall back",
			row: FindOrdersRow{
				ID:         6,
				UserID:     3,
				Username:   "luis",
				Total:      Numeric(decimal.RequireFromString("5.00")),
				Status:     "pendiente",
				OrderItems: []byte(`[{"id":2,"product_name":"Ceviche","quantity":1,"price_at_purchase":5.00}]`),
			},
			expectedUserName: "luis",
			expectedType:     orderRequest.OrderTypeMesa,
			expectedStatus:   orderRequest.StatusPending,
			expectedSubtotal: "5",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			order, err := test.row.Response()
			assert.NoError(t, err)
			assert.EqualValues(t, test.expectedUserName, order.UserName)
			assert.EqualValues(t, test.expectedType, order.OrderType)
			assert.EqualValues(t, test.expectedStatus, order.Status)
			assert.Len(t, order.Items, 1)
			assert.True(t, decimal.RequireFromString(test.expectedSubtotal).Equal(order.Items[0].Subtotal))
		})
	}
}
