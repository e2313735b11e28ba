// Package checkout turns the session's cart and the checkout form into one
// order.
package checkout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	cartResponse "github.com/jhamir14/restaurant/cart/pkg/response"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	"github.com/jhamir14/restaurant/terminal/internal/metadata"
	"github.com/jhamir14/restaurant/terminal/internal/notify"
	"github.com/jhamir14/restaurant/terminal/internal/otel"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

type Cart interface {
	Snapshot() cartResponse.Cart
	Checkout(c context.Context, payload cartRequest.Checkout) (cartResponse.CheckoutResult, error)
}

type Placed struct {
	OrderID   int64
	OrderType orderRequest.OrderType
}

type Orchestrator struct {
	cart     Cart
	notifier notify.Notifier
}

func NewOrchestrator(cart Cart, notifier notify.Notifier) *Orchestrator {
	return &Orchestrator{cart: cart, notifier: notifier}
}

// Submit places the order for the cart currently held by the store. An admin
// acting with a target customer places it on that customer's behalf.
func (o *Orchestrator) Submit(c context.Context, draft metadata.Draft, acting session.Identity) (Placed, error) {
	c, span := otel.Tracer.Start(c, "Orchestrator Submit")
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Orchestrator Submit").
		Int64(log.KeyUserID, acting.UserID).
		Bool(log.KeyIsAdmin, acting.IsAdmin).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating cart").Logger()
	logger.Trace().Msg("validating cart")
	if o.cart.Snapshot().IsEmpty() {
		err := inErrors.ErrEmptyCart
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.notifier.Notify(c, err.Error(), notify.SeverityError)
		return Placed{}, err
	}
	logger.Trace().Msg("validated cart")

	logger = logger.With().Str(log.KeyProcess, "building checkout").Logger()
	logger.Trace().Msg("building checkout")
	payload, err := metadata.Build(draft)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return Placed{}, err
	}
	if acting.IsAdmin && draft.TargetUserID > 0 {
		target := draft.TargetUserID
		payload.UserID = &target
		logger = logger.With().Int64(log.KeyTargetUserID, target).Logger()
	}
	logger = logger.With().Str(log.KeyOrderType, string(payload.OrderType)).Logger()
	logger.Trace().Msg("built checkout")

	logger = logger.With().Str(log.KeyProcess, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	result, err := o.cart.Checkout(c, payload)
	if err != nil && result.OrderID == 0 {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return Placed{}, err
	}
	if err != nil {
		// the order exists, only the reload of the emptied cart failed
		logger.Warn().Err(err).Msg(err.Error())
	}
	logger.Info().Int64(log.KeyOrderID, result.OrderID).Msg("submitted checkout")

	o.notifier.Notify(c, fmt.Sprintf("Pedido #%d creado — %s", result.OrderID, result.OrderType), notify.SeveritySuccess)
	return Placed{OrderID: result.OrderID, OrderType: result.OrderType}, nil
}
