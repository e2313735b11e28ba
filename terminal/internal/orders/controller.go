// Package orders is the terminal's view of the order board and the status
// changes staff make on it.
package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
	"github.com/jhamir14/restaurant/terminal/internal/notify"
	"github.com/jhamir14/restaurant/terminal/internal/otel"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

const (
	MessageStatusUpdated      = "Estado actualizado"
	MessageStatusUpdateFailed = "No se pudo actualizar el estado"
	MessageLoadFailed         = "No se pudieron cargar los pedidos"
)

type Remote interface {
	FindOrders(c context.Context) ([]orderResponse.Order, error)
	FindOrderHistory(c context.Context) ([]orderResponse.Order, error)
	UpdateOrderStatus(c context.Context, orderID int64, param orderRequest.UpdateStatus) (orderResponse.StatusUpdated, error)
}

type Authenticator interface {
	Current() (session.Identity, bool)
}

type Controller struct {
	remote   Remote
	auth     Authenticator
	notifier notify.Notifier

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewController(remote Remote, auth Authenticator, notifier notify.Notifier) *Controller {
	return &Controller{remote: remote, auth: auth, notifier: notifier, inFlight: map[int64]struct{}{}}
}

// List returns the active board, every order but the paid ones, newest first.
func (ctl *Controller) List(c context.Context) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Controller List")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Controller List").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Trace().Msg("finding orders")
	orders, err := ctl.remote.FindOrders(c)
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrLoad, err, MessageLoadFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	logger.Trace().Int(log.KeyOrders, len(orders)).Msg("found orders")

	return orders, nil
}

func (ctl *Controller) ListHistory(c context.Context) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Controller ListHistory")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Controller ListHistory").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order history").Logger()
	logger.Trace().Msg("finding order history")
	orders, err := ctl.remote.FindOrderHistory(c)
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrLoad, err, MessageLoadFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	logger.Trace().Int(log.KeyOrders, len(orders)).Msg("found order history")

	return orders, nil
}

func (ctl *Controller) acquire(orderID int64) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if _, ok := ctl.inFlight[orderID]; ok {
		return false
	}
	ctl.inFlight[orderID] = struct{}{}
	return true
}

func (ctl *Controller) release(orderID int64) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	delete(ctl.inFlight, orderID)
}

// SetStatus moves an order to status and returns the refreshed board. Only
// admins may do it and only one change per order runs at a time.
func (ctl *Controller) SetStatus(c context.Context, orderID int64, status string) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Controller SetStatus", trace.WithAttributes(attribute.Int64(log.KeyOrderID, orderID)))
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Controller SetStatus").
		Int64(log.KeyOrderID, orderID).
		Str(log.KeyOrderStatus, status).
		Logger()

	identity, ok := ctl.auth.Current()
	if !ok {
		err := inErrors.ErrUnauthenticated
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	if !identity.IsAdmin {
		err := inErrors.ErrForbidden
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	logger = logger.With().Int64(log.KeyUserID, identity.UserID).Logger()

	parsed, err := orderRequest.ParseStatus(status)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}

	if !ctl.acquire(orderID) {
		err = inErrors.ErrUpdateInFlight
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	defer ctl.release(orderID)

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Info().Msg("updating order status")
	_, err = ctl.remote.UpdateOrderStatus(c, orderID, orderRequest.UpdateStatus{Status: parsed})
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrStatusUpdate, err, MessageStatusUpdateFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		ctl.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return nil, err
	}
	logger.Info().Msg("updated order status")
	ctl.notifier.Notify(c, MessageStatusUpdated, notify.SeveritySuccess)

	orders, err := ctl.List(c)
	if err != nil {
		return nil, fmt.Errorf("failed refreshing orders with error=%w", err)
	}
	return orders, nil
}
