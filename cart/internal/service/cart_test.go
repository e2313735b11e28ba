package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/cart/pkg/request"
	"github.com/jhamir14/restaurant/internal"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/internal/testutil"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

const (
	adminID int64 = 1
	anaID   int64 = 2
	luisID  int64 = 3
)

func int32Ptr(i int32) *int32 { return &i }

func int64Ptr(i int64) *int64 { return &i }

func stringPtr(s string) *string { return &s }

func newService(t *testing.T) (*CartService, *repository.Queries, func()) {
	c := context.Background()
	pool, queries := testutil.RunPostgres(t, c)
	cache := testutil.RunRedis(t, c)
	service := NewCartService(pool, queries, cache, time.Minute)

	reset := func() {
		_, err := pool.Exec(c, "DELETE FROM cart_items")
		require.NoError(t, err)
		require.NoError(t, cache.FlushAll(c).Err())
	}
	return service, queries, reset
}

func TestCartService(t *testing.T) {
	service, queries, reset := newService(t)
	c := context.Background()

	t.Run("add increments an existing line and clamps quantity", func(t *testing.T) {
		reset()

		first, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, "Agregado al carrito", first.Message)

		second, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 1, Quantity: 0})
		require.NoError(t, err)
		assert.Equal(t, first.ItemID, second.ItemID)

		_, err = service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 2, Quantity: 1})
		require.NoError(t, err)

		cart, err := service.FindCart(c, anaID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		assert.Equal(t, int32(3), cart.Items[0].Quantity)
		assert.Equal(t, "Lomo saltado", cart.Items[0].Product.Name)
		assert.True(t, decimal.NewFromInt(30).Equal(cart.Items[0].Subtotal))
		assert.True(t, decimal.NewFromInt(35).Equal(cart.Total), cart.Total.String())
	})

	t.Run("add unknown product", func(t *testing.T) {
		reset()

		_, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 999, Quantity: 1})
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
		assert.Equal(t, "Producto no existe", inErrors.PublicMessage(err))
	})

	t.Run("empty cart is never nil", func(t *testing.T) {
		reset()

		cart, err := service.FindCart(c, luisID)
		require.NoError(t, err)
		assert.NotNil(t, cart.Items)
		assert.Empty(t, cart.Items)
		assert.True(t, decimal.Zero.Equal(cart.Total))
	})

	t.Run("cached cart follows mutations", func(t *testing.T) {
		reset()

		cart, err := service.FindCart(c, anaID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		added, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 3, Quantity: 1})
		require.NoError(t, err)
		cart, err = service.FindCart(c, anaID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)

		require.NoError(t, service.UpdateCartItem(c, anaID, added.ItemID, request.UpdateCartItem{Quantity: int32Ptr(4)}))
		cart, err = service.FindCart(c, anaID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, int32(4), cart.Items[0].Quantity)

		require.NoError(t, service.RemoveCartItem(c, anaID, added.ItemID))
		cart, err = service.FindCart(c, anaID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("update and remove check ownership", func(t *testing.T) {
		reset()

		added, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 1, Quantity: 2})
		require.NoError(t, err)

		err = service.UpdateCartItem(c, luisID, added.ItemID, request.UpdateCartItem{Quantity: int32Ptr(5)})
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		err = service.RemoveCartItem(c, luisID, added.ItemID)
		assert.ErrorIs(t, err, inErrors.ErrForbidden)

		err = service.UpdateCartItem(c, anaID, 999, request.UpdateCartItem{Quantity: int32Ptr(5)})
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
		assert.Equal(t, "Item no encontrado", inErrors.PublicMessage(err))

		require.NoError(t, service.UpdateCartItem(c, anaID, added.ItemID, request.UpdateCartItem{}))
		require.NoError(t, service.UpdateCartItem(c, anaID, added.ItemID, request.UpdateCartItem{Quantity: int32Ptr(-3)}))
		item, err := queries.FindCartItemById(c, added.ItemID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), item.Quantity)
	})

	t.Run("checkout empty cart", func(t *testing.T) {
		reset()

		_, err := service.Checkout(c, internal.Identity{UserID: anaID}, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{OrderType: orderRequest.OrderTypeMesa, TableNumber: int32Ptr(4)},
		})
		assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	})

	t.Run("checkout table order", func(t *testing.T) {
		reset()

		_, err := service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		_, err = service.AddCartItem(c, anaID, request.AddCartItem{ProductID: 2, Quantity: 1})
		require.NoError(t, err)
		_, err = service.FindCart(c, anaID)
		require.NoError(t, err)

		result, err := service.Checkout(c, internal.Identity{UserID: anaID}, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{
				OrderType:     " MESA ",
				TableNumber:   int32Ptr(4),
				PaymentMethod: orderRequest.PaymentMethodYape,
			},
			UserID: int64Ptr(luisID),
		})
		require.NoError(t, err)
		assert.Equal(t, "Pedido finalizado", result.Message)
		assert.Equal(t, orderRequest.OrderTypeMesa, result.OrderType)
		assert.True(t, decimal.NewFromInt(25).Equal(result.Total), result.Total.String())

		order, err := queries.FindOrderById(c, result.OrderID)
		require.NoError(t, err)
		assert.Equal(t, anaID, order.UserID, "non admin cannot place an order for someone else")

		cart, err := service.FindCart(c, anaID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("admin checkout for a customer consumes the admin cart", func(t *testing.T) {
		reset()

		_, err := service.AddCartItem(c, adminID, request.AddCartItem{ProductID: 3, Quantity: 2})
		require.NoError(t, err)

		admin := internal.Identity{UserID: adminID, IsAdmin: true}
		result, err := service.Checkout(c, admin, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{
				OrderType:       orderRequest.OrderTypeDelivery,
				DeliveryAddress: stringPtr("Av. Arequipa 123"),
				TableNumber:     int32Ptr(9),
			},
			UserID: int64Ptr(anaID),
		})
		require.NoError(t, err)
		assert.Equal(t, orderRequest.OrderTypeDelivery, result.OrderType)

		order, err := queries.FindOrderById(c, result.OrderID)
		require.NoError(t, err)
		assert.Equal(t, anaID, order.UserID)

		cart, err := service.FindCart(c, adminID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("failed checkout leaves the cart untouched", func(t *testing.T) {
		reset()

		_, err := service.AddCartItem(c, adminID, request.AddCartItem{ProductID: 1, Quantity: 1})
		require.NoError(t, err)
		admin := internal.Identity{UserID: adminID, IsAdmin: true}

		_, err = service.Checkout(c, admin, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{OrderType: orderRequest.OrderTypeMesa, TableNumber: int32Ptr(1)},
			UserID:      int64Ptr(999),
		})
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
		assert.Equal(t, "Cliente destino no existe", inErrors.PublicMessage(err))

		_, err = service.Checkout(c, admin, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{OrderType: orderRequest.OrderTypeDelivery, DeliveryAddress: stringPtr("  ")},
		})
		assert.ErrorIs(t, err, inErrors.ErrValidation)
		assert.Equal(t, orderRequest.MessageMissingAddress, inErrors.PublicMessage(err))

		_, err = service.Checkout(c, admin, request.Checkout{
			Fulfillment: orderRequest.Fulfillment{OrderType: orderRequest.OrderTypeMesa, TableNumber: int32Ptr(0)},
		})
		assert.ErrorIs(t, err, inErrors.ErrValidation)

		cart, err := service.FindCart(c, adminID)
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)
	})
}
