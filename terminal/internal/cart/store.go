// Package cart keeps the terminal's view of the logged in user's cart. Every
// mutation is sent to the api and followed by a full reload; the snapshot is
// only ever replaced, never patched.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhamir14/restaurant/cart/pkg/request"
	"github.com/jhamir14/restaurant/cart/pkg/response"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/terminal/internal/notify"
	"github.com/jhamir14/restaurant/terminal/internal/otel"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

const (
	MessageAdded          = "Producto agregado al carrito"
	MessageAddFailed      = "No se pudo agregar al carrito"
	MessageUpdated        = "Cantidad actualizada"
	MessageUpdateFailed   = "No se pudo actualizar la cantidad"
	MessageRemoved        = "Producto eliminado del carrito"
	MessageRemoveFailed   = "No se pudo eliminar el producto"
	MessageLoadFailed     = "No se pudo cargar el carrito"
	MessageCheckoutFailed = "No se pudo finalizar el pedido"
)

type Remote interface {
	GetCart(c context.Context) (response.Cart, error)
	AddCartItem(c context.Context, param request.AddCartItem) (response.AddedItem, error)
	UpdateCartItem(c context.Context, itemID int64, param request.UpdateCartItem) error
	RemoveCartItem(c context.Context, itemID int64) error
	Checkout(c context.Context, param request.Checkout) (response.CheckoutResult, error)
}

type Authenticator interface {
	Current() (session.Identity, bool)
}

type Store struct {
	mu       sync.Mutex
	remote   Remote
	auth     Authenticator
	notifier notify.Notifier
	cart     response.Cart
}

func NewStore(remote Remote, auth Authenticator, notifier notify.Notifier) *Store {
	return &Store{remote: remote, auth: auth, notifier: notifier, cart: response.NewCart(nil)}
}

// Bind resets the store whenever the session logs in or out.
func (s *Store) Bind(sess *session.Session) {
	sess.OnChange(s.Reset)
}

func (s *Store) Snapshot() response.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = response.NewCart(nil)
}

func (s *Store) replace(cart response.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart.Clone()
}

// Load replaces the snapshot with the api's cart. Without a logged in user it
// only resets.
func (s *Store) Load(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Store Load")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Store Load").Logger()

	identity, ok := s.auth.Current()
	if !ok {
		logger.Trace().Msg("no identity resetting cart")
		s.Reset()
		return nil
	}
	logger = logger.With().Int64(log.KeyUserID, identity.UserID).Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Trace().Msg("loading cart")
	cart, err := s.remote.GetCart(c)
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrLoad, err, MessageLoadFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return err
	}
	s.replace(cart)
	logger.Trace().Int("items", len(cart.Items)).Msg("loaded cart")

	return nil
}

func (s *Store) Add(c context.Context, productID int64, quantity int32) error {
	c, span := otel.Tracer.Start(c, "Store Add", trace.WithAttributes(attribute.Int64(log.KeyProductID, productID)))
	defer span.End()

	quantity = request.ClampQuantity(quantity)
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Store Add").
		Int64(log.KeyProductID, productID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	_, err := s.remote.AddCartItem(c, request.AddCartItem{ProductID: productID, Quantity: quantity})
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrCartMutation, err, MessageAddFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return err
	}
	logger.Info().Msg("added cart item")

	if err = s.Load(c); err != nil {
		return fmt.Errorf("failed reloading cart with error=%w", err)
	}
	s.notifier.Notify(c, MessageAdded, notify.SeveritySuccess)
	return nil
}

// UpdateQuantity sets the quantity of a line from raw user input, see
// ParseQuantity.
func (s *Store) UpdateQuantity(c context.Context, itemID int64, raw string) error {
	c, span := otel.Tracer.Start(c, "Store UpdateQuantity", trace.WithAttributes(attribute.Int64(log.KeyCartItemID, itemID)))
	defer span.End()

	quantity := ParseQuantity(raw)
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Store UpdateQuantity").
		Int64(log.KeyCartItemID, itemID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Info().Msg("updating cart item")
	if err := s.remote.UpdateCartItem(c, itemID, request.UpdateCartItem{Quantity: &quantity}); err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrCartMutation, err, MessageUpdateFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return err
	}
	logger.Info().Msg("updated cart item")

	if err := s.Load(c); err != nil {
		return fmt.Errorf("failed reloading cart with error=%w", err)
	}
	s.notifier.Notify(c, MessageUpdated, notify.SeverityInfo)
	return nil
}

func (s *Store) Remove(c context.Context, itemID int64) error {
	c, span := otel.Tracer.Start(c, "Store Remove", trace.WithAttributes(attribute.Int64(log.KeyCartItemID, itemID)))
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Store Remove").
		Int64(log.KeyCartItemID, itemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	if err := s.remote.RemoveCartItem(c, itemID); err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrCartMutation, err, MessageRemoveFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.notifier.Notify(c, inErrors.PublicMessage(err), notify.SeverityError)
		return err
	}
	logger.Info().Msg("removed cart item")

	if err := s.Load(c); err != nil {
		return fmt.Errorf("failed reloading cart with error=%w", err)
	}
	s.notifier.Notify(c, MessageRemoved, notify.SeverityInfo)
	return nil
}

// Checkout submits payload and reloads the now empty cart. Notifying the user
// is left to the caller.
func (s *Store) Checkout(c context.Context, payload request.Checkout) (response.CheckoutResult, error) {
	c, span := otel.Tracer.Start(c, "Store Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Store Checkout").
		Str(log.KeyOrderType, string(payload.OrderType)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Info().Msg("checking out cart")
	result, err := s.remote.Checkout(c, payload)
	if err != nil {
		err = inErrors.NewRemoteError(inErrors.ErrCheckout, err, MessageCheckoutFailed)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger.Info().Int64(log.KeyOrderID, result.OrderID).Msg("checked out cart")

	if err = s.Load(c); err != nil {
		return result, fmt.Errorf("failed reloading cart with error=%w", err)
	}
	return result, nil
}
