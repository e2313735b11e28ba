package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/internal"
	"github.com/jhamir14/restaurant/internal/constants"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/testutil"
	"github.com/jhamir14/restaurant/order/pkg/request"
	"github.com/jhamir14/restaurant/order/pkg/response"
)

var (
	admin = internal.Identity{UserID: 1, Username: "admin", IsAdmin: true}
	ana   = internal.Identity{UserID: 2, Username: "ana"}
	luis  = internal.Identity{UserID: 3, Username: "luis"}
)

func int32Ptr(i int32) *int32 { return &i }

func stringPtr(s string) *string { return &s }

func mesa(table int32) request.Fulfillment {
	return request.Fulfillment{OrderType: request.OrderTypeMesa, TableNumber: int32Ptr(table)}
}

func orderIds(orders []response.Order) []int64 {
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}

func TestOrderService(t *testing.T) {
	c := context.Background()
	pool, queries := testutil.RunPostgres(t, c)
	cache := testutil.RunRedis(t, c)
	service := NewOrderService(pool, queries, cache)

	anaOrder, err := service.CreateOrder(c, admin, request.CreateOrder{
		UserID: ana.UserID,
		Items: []request.CreateOrderItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 3, Quantity: 0},
		},
		Fulfillment: request.Fulfillment{
			OrderType:       request.OrderTypeDelivery,
			DeliveryAddress: stringPtr(" Av. Arequipa 123 "),
			PaymentMethod:   request.PaymentMethodPlin,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pedido creado", anaOrder.Message)
	assert.True(t, decimal.RequireFromString("23.50").Equal(anaOrder.Total), anaOrder.Total.String())

	luisOrder, err := service.CreateOrder(c, admin, request.CreateOrder{
		UserID:      luis.UserID,
		Items:       []request.CreateOrderItem{{ProductID: 2, Quantity: 1}},
		Fulfillment: mesa(5),
	})
	require.NoError(t, err)

	t.Run("create order rejections", func(t *testing.T) {
		tests := []struct {
			name            string
			identity        internal.Identity
			param           request.CreateOrder
			expectedErr     error
			expectedMessage string
		}{
			{
				name:        "customer cannot create orders",
				identity:    ana,
				param:       request.CreateOrder{UserID: ana.UserID, Items: []request.CreateOrderItem{{ProductID: 1}}, Fulfillment: mesa(1)},
				expectedErr: inErrors.ErrForbidden,
			},
			{
				name:            "missing user",
				identity:        admin,
				param:           request.CreateOrder{Items: []request.CreateOrderItem{{ProductID: 1}}, Fulfillment: mesa(1)},
				expectedErr:     inErrors.ErrValidation,
				expectedMessage: "user_id es requerido",
			},
			{
				name:            "missing items",
				identity:        admin,
				param:           request.CreateOrder{UserID: ana.UserID, Fulfillment: mesa(1)},
				expectedErr:     inErrors.ErrValidation,
				expectedMessage: "items es requerido",
			},
			{
				name:            "unknown product",
				identity:        admin,
				param:           request.CreateOrder{UserID: ana.UserID, Items: []request.CreateOrderItem{{ProductID: 77, Quantity: 1}}, Fulfillment: mesa(1)},
				expectedErr:     inErrors.ErrNotFound,
				expectedMessage: "Producto 77 no existe",
			},
			{
				name:            "table order without table",
				identity:        admin,
				param:           request.CreateOrder{UserID: ana.UserID, Items: []request.CreateOrderItem{{ProductID: 1}}, Fulfillment: request.Fulfillment{OrderType: request.OrderTypeMesa}},
				expectedErr:     inErrors.ErrValidation,
				expectedMessage: request.MessageInvalidTableNumber,
			},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				_, err := service.CreateOrder(c, test.identity, test.param)
				assert.ErrorIs(t, err, test.expectedErr)
				if test.expectedMessage != "" {
					assert.Equal(t, test.expectedMessage, inErrors.PublicMessage(err))
				}
			})
		}
	})

	t.Run("orders are scoped by role", func(t *testing.T) {
		all, err := service.FindOrders(c, admin)
		require.NoError(t, err)
		assert.Equal(t, []int64{luisOrder.OrderID, anaOrder.OrderID}, orderIds(all))

		own, err := service.FindOrders(c, ana)
		require.NoError(t, err)
		require.Len(t, own, 1)

		order := own[0]
		assert.Equal(t, "Ana Quispe", order.UserName)
		assert.Equal(t, request.OrderTypeDelivery, order.OrderType)
		assert.Equal(t, request.StatusPending, order.Status)
		assert.Nil(t, order.TableNumber)
		require.NotNil(t, order.DeliveryAddress)
		assert.Equal(t, "Av. Arequipa 123", *order.DeliveryAddress)
		require.NotNil(t, order.PaymentMethod)
		assert.Equal(t, request.PaymentMethodPlin, *order.PaymentMethod)
		require.Len(t, order.Items, 2)
		assert.Equal(t, int32(1), order.Items[1].Quantity)
		assert.True(t, decimal.NewFromInt(20).Equal(order.Items[0].Subtotal))

		luisOrders, err := service.FindOrders(c, luis)
		require.NoError(t, err)
		require.Len(t, luisOrders, 1)
		assert.Equal(t, "luis", luisOrders[0].UserName)
		assert.Equal(t, int32(5), *luisOrders[0].TableNumber)
	})

	t.Run("customer cannot update status", func(t *testing.T) {
		_, err := service.UpdateStatus(c, ana, anaOrder.OrderID, request.UpdateStatus{Status: request.StatusPaid})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
	})

	t.Run("unknown status and order", func(t *testing.T) {
		_, err := service.UpdateStatus(c, admin, anaOrder.OrderID, request.UpdateStatus{Status: "cocinando"})
		assert.ErrorIs(t, err, inErrors.ErrValidation)

		_, err = service.UpdateStatus(c, admin, 9999, request.UpdateStatus{Status: request.StatusPaid})
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
		assert.Equal(t, "Pedido no encontrado", inErrors.PublicMessage(err))
	})

	t.Run("paid order moves to history and is published", func(t *testing.T) {
		sub := cache.Subscribe(c, constants.ChannelOrderStatusUpdated)
		defer sub.Close()
		_, err := sub.Receive(c)
		require.NoError(t, err)

		requestID := uuid.New()
		reqCtx := log.AttachRequestIDToContext(c, requestID.String())
		updated, err := service.UpdateStatus(reqCtx, admin, anaOrder.OrderID, request.UpdateStatus{Status: "PAGADO"})
		require.NoError(t, err)
		assert.Equal(t, request.StatusPaid, updated.Status)

		select {
		case msg := <-sub.Channel():
			event := response.StatusEvent{}
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
			assert.Equal(t, anaOrder.OrderID, event.OrderID)
			assert.Equal(t, request.StatusPaid, event.Status)
			assert.Equal(t, admin.UserID, event.ChangedBy)
			assert.Equal(t, requestID.String(), event.RequestID)
		case <-time.After(5 * time.Second):
			t.Fatal("status event was not published")
		}

		active, err := service.FindOrders(c, admin)
		require.NoError(t, err)
		assert.Equal(t, []int64{luisOrder.OrderID}, orderIds(active))

		history, err := service.FindOrderHistory(c, ana)
		require.NoError(t, err)
		assert.Equal(t, []int64{anaOrder.OrderID}, orderIds(history))

		events, err := queries.FindOrderStatusEventsByOrderId(c, anaOrder.OrderID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, requestID, events[0].RequestID)
	})

	t.Run("any status may follow any other", func(t *testing.T) {
		_, err := service.UpdateStatus(c, admin, anaOrder.OrderID, request.UpdateStatus{Status: request.StatusPending})
		require.NoError(t, err)

		history, err := service.FindOrderHistory(c, admin)
		require.NoError(t, err)
		assert.Empty(t, history)

		active, err := service.FindOrders(c, ana)
		require.NoError(t, err)
		assert.Equal(t, []int64{anaOrder.OrderID}, orderIds(active))
	})
}
