package orders

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
	"github.com/jhamir14/restaurant/terminal/internal/notify"
	"github.com/jhamir14/restaurant/terminal/internal/remotetest"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

// blockingRemote holds UpdateOrderStatus until release is closed.
type blockingRemote struct {
	*remotetest.Remote
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (r *blockingRemote) UpdateOrderStatus(c context.Context, orderID int64, param orderRequest.UpdateStatus) (orderResponse.StatusUpdated, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	return r.Remote.UpdateOrderStatus(c, orderID, param)
}

func placeOrder(t *testing.T, remote *remotetest.Remote, userID int64, productID int64, table int32) int64 {
	t.Helper()
	c := context.Background()
	remote.ActAs(userID)
	_, err := remote.AddCartItem(c, cartRequest.AddCartItem{ProductID: productID, Quantity: 1})
	require.NoError(t, err)
	result, err := remote.Checkout(c, cartRequest.Checkout{Fulfillment: orderRequest.Fulfillment{
		OrderType:   orderRequest.OrderTypeMesa,
		TableNumber: &table,
	}})
	require.NoError(t, err)
	return result.OrderID
}

func TestListScoping(t *testing.T) {
	c := context.Background()
	remote := remotetest.Seeded()
	anaOrder := placeOrder(t, remote, 2, 1, 1)
	luisOrder := placeOrder(t, remote, 3, 2, 2)
	sess := session.New()
	ctl := NewController(remote, sess, &notify.Recorder{})

	remotetest.Login(t, sess, remote, 1)
	orders, err := ctl.List(c)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, luisOrder, orders[0].ID, "newest first")
	assert.Equal(t, anaOrder, orders[1].ID)

	remotetest.Login(t, sess, remote, 2)
	orders, err = ctl.List(c)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, anaOrder, orders[0].ID)
}

func TestSetStatus(t *testing.T) {
	c := context.Background()

	t.Run("paid moves to history", func(t *testing.T) {
		remote := remotetest.Seeded()
		orderID := placeOrder(t, remote, 2, 1, 1)
		sess := session.New()
		recorder := &notify.Recorder{}
		ctl := NewController(remote, sess, recorder)
		remotetest.Login(t, sess, remote, 1)

		orders, err := ctl.SetStatus(c, orderID, "pagado")
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Equal(t, 1, remote.Requests("FindOrders"))

		history, err := ctl.ListHistory(c)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, orderRequest.StatusPaid, history[0].Status)

		last, _ := recorder.Last()
		assert.Equal(t, notify.Notification{Message: MessageStatusUpdated, Severity: notify.SeveritySuccess}, last)

		orders, err = ctl.SetStatus(c, orderID, "pendiente")
		require.NoError(t, err, "any status may follow any other")
		require.Len(t, orders, 1)
		assert.Equal(t, orderRequest.StatusPending, orders[0].Status)
	})

	t.Run("customer is refused locally", func(t *testing.T) {
		remote := remotetest.Seeded()
		orderID := placeOrder(t, remote, 2, 1, 1)
		sess := session.New()
		recorder := &notify.Recorder{}
		ctl := NewController(remote, sess, recorder)
		remotetest.Login(t, sess, remote, 2)
		requests := remote.Requests("")

		_, err := ctl.SetStatus(c, orderID, "pagado")
		assert.ErrorIs(t, err, inErrors.ErrForbidden)
		assert.Equal(t, requests, remote.Requests(""))
		last, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, notify.Notification{Message: inErrors.ErrForbidden.Error(), Severity: notify.SeverityError}, last)

		sess.Logout()
		_, err = ctl.SetStatus(c, orderID, "pagado")
		assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)
		assert.Equal(t, requests, remote.Requests(""))
		last, ok = recorder.Last()
		require.True(t, ok)
		assert.Equal(t, notify.Notification{Message: inErrors.ErrUnauthenticated.Error(), Severity: notify.SeverityError}, last)
	})

	t.Run("unknown status", func(t *testing.T) {
		remote := remotetest.Seeded()
		orderID := placeOrder(t, remote, 2, 1, 1)
		sess := session.New()
		ctl := NewController(remote, sess, &notify.Recorder{})
		remotetest.Login(t, sess, remote, 1)
		requests := remote.Requests("")

		_, err := ctl.SetStatus(c, orderID, "cocinando")
		assert.ErrorIs(t, err, inErrors.ErrValidation)
		assert.Equal(t, requests, remote.Requests(""))
	})

	t.Run("remote failure", func(t *testing.T) {
		remote := remotetest.Seeded()
		sess := session.New()
		recorder := &notify.Recorder{}
		ctl := NewController(remote, sess, recorder)
		remotetest.Login(t, sess, remote, 1)

		_, err := ctl.SetStatus(c, 404, "entregado")
		assert.ErrorIs(t, err, inErrors.ErrStatusUpdate)
		var remoteErr *inErrors.RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
		assert.Equal(t, 0, remote.Requests("FindOrders"))

		last, _ := recorder.Last()
		assert.Equal(t, notify.Notification{Message: "Pedido no encontrado", Severity: notify.SeverityError}, last)
	})

	t.Run("one update per order at a time", func(t *testing.T) {
		remote := &blockingRemote{Remote: remotetest.Seeded(), started: make(chan struct{}), release: make(chan struct{})}
		orderID := placeOrder(t, remote.Remote, 2, 1, 1)
		otherID := placeOrder(t, remote.Remote, 3, 1, 1)
		sess := session.New()
		recorder := &notify.Recorder{}
		ctl := NewController(remote, sess, recorder)
		remotetest.Login(t, sess, remote.Remote, 1)

		done := make(chan error, 1)
		go func() {
			_, err := ctl.SetStatus(c, orderID, "entregado")
			done <- err
		}()
		<-remote.started

		_, err := ctl.SetStatus(c, orderID, "pagado")
		assert.ErrorIs(t, err, inErrors.ErrUpdateInFlight)
		last, ok := recorder.Last()
		require.True(t, ok)
		assert.Equal(t, notify.Notification{Message: inErrors.ErrUpdateInFlight.Error(), Severity: notify.SeverityError}, last)

		close(remote.release)
		require.NoError(t, <-done)

		_, err = ctl.SetStatus(c, orderID, "pagado")
		require.NoError(t, err, "the guard is released after the update")

		orders, err := ctl.SetStatus(c, otherID, "entregado")
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, orderRequest.StatusDelivered, orders[0].Status)
	})
}
