package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jhamir14/restaurant/cart/internal/otel"
	"github.com/jhamir14/restaurant/cart/pkg/request"
	"github.com/jhamir14/restaurant/cart/pkg/response"
	"github.com/jhamir14/restaurant/internal"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/metrics"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/internal/repository"
)

const defaultCartTTL = 5 * time.Minute

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	ttl     time.Duration
	group   *singleflight.Group
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	ttl time.Duration,
) *CartService {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &CartService{pool: pool, queries: queries, cache: cache, ttl: ttl, group: &singleflight.Group{}}
}

func generationKey(userID int64) string {
	return fmt.Sprintf("carts:user:%d:generation", userID)
}

// cartKey is versioned by a per user generation so a load racing with a
// mutation can only ever fill a key nobody reads anymore.
func (s *CartService) cartKey(c context.Context, userID int64) (string, error) {
	generation, err := s.cache.Get(c, generationKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("carts:user:%d:v%d", userID, generation), nil
}

func (s *CartService) FindCart(c context.Context, userID int64) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart", trace.WithAttributes(attribute.Int64(log.KeyUserID, userID)))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCart").
		Int64(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting cart from cache").Logger()
	logger.Trace().Msg("getting cart from cache")
	key, err := s.cartKey(c, userID)
	if err == nil {
		logger = logger.With().Str(log.KeyCacheKey, key).Logger()
		cached, err := s.cache.Get(c, key).Bytes()
		switch {
		case err == nil:
			cart := response.Cart{}
			if err := json.Unmarshal(cached, &cart); err == nil {
				metrics.CartCacheLookups.WithLabelValues("hit").Inc()
				span.AddEvent("cart cache hit")
				logger.Trace().Msg("got cart from cache")
				return cart, nil
			}
			logger.Warn().Msg("cached cart is corrupted reloading from db")
		case errors.Is(err, redis.Nil):
			metrics.CartCacheLookups.WithLabelValues("miss").Inc()
			logger.Trace().Msg("cart cache miss")
		default:
			metrics.CartCacheLookups.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Msg("failed getting cart from cache")
		}
	} else {
		metrics.CartCacheLookups.WithLabelValues("error").Inc()
		logger.Warn().Err(err).Msg("failed getting cart generation from cache")
	}

	logger = logger.With().Str(log.KeyProcess, "loading cart from db").Logger()
	logger.Trace().Msg("loading cart from db")
	flightKey := key
	if flightKey == "" {
		flightKey = fmt.Sprintf("carts:user:%d", userID)
	}
	loadCtx := logger.WithContext(context.WithoutCancel(c))
	result, err, shared := s.group.Do(flightKey, func() (interface{}, error) {
		return s.loadCart(loadCtx, userID, key)
	})
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	cart := result.(response.Cart)
	if shared {
		cart = cart.Clone()
	}
	logger.Trace().Bool("shared", shared).Msg("loaded cart from db")

	return cart, nil
}

func (s *CartService) loadCart(c context.Context, userID int64, key string) (response.Cart, error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService loadCart").Logger()

	rows, err := s.queries.FindCartItemsByUserId(c, userID)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed finding cart items with error=%w", err)
	}
	cart := repository.CartResponse(rows)

	if key == "" {
		return cart, nil
	}
	encoded, err := json.Marshal(cart)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	if err = s.cache.Set(c, key, encoded, s.ttl).Err(); err != nil {
		logger.Warn().Err(err).Str(log.KeyCacheKey, key).Msg("failed caching cart")
	}
	return cart, nil
}

// invalidate bumps the cart generation. A failure is only logged because the
// write it follows is already committed.
func (s *CartService) invalidate(c context.Context, userID int64) {
	if err := s.cache.Incr(c, generationKey(userID)).Err(); err != nil {
		err = fmt.Errorf("failed invalidating cart cache with error=%w", err)
		zerolog.Ctx(c).Warn().Err(err).Int64(log.KeyUserID, userID).Msg(err.Error())
	}
}

func (s *CartService) AddCartItem(c context.Context, userID int64, param request.AddCartItem) (response.AddedItem, error) {
	c, span := otel.Tracer.Start(c, "CartService AddCartItem", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, userID),
		attribute.Int64(log.KeyProductID, param.ProductID),
	))
	defer span.End()

	quantity := request.ClampQuantity(param.Quantity)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddCartItem").
		Int64(log.KeyUserID, userID).
		Int64(log.KeyProductID, param.ProductID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	_, err := s.queries.FindProductById(c, param.ProductID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding product with error=%w", inErrors.New(inErrors.ErrNotFound, "Producto no existe"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AddedItem{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AddedItem{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "upserting cart item").Logger()
	logger.Info().Msg("upserting cart item")
	item, err := s.queries.UpsertCartItem(c, repository.UpsertCartItemParams{
		UserID:    userID,
		ProductID: param.ProductID,
		Quantity:  quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed upserting cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.AddedItem{}, err
	}
	logger = logger.With().Int64(log.KeyCartItemID, item.ID).Logger()
	logger.Info().Msg("upserted cart item")

	s.invalidate(c, userID)
	metrics.CartMutations.WithLabelValues("add").Inc()

	return response.AddedItem{Message: "Agregado al carrito", ItemID: item.ID}, nil
}

// ownedItem loads the cart item and checks that it belongs to userID.
func (s *CartService) ownedItem(c context.Context, userID int64, itemID int64) (repository.CartItem, error) {
	item, err := s.queries.FindCartItemById(c, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.CartItem{}, inErrors.New(inErrors.ErrNotFound, "Item no encontrado")
	}
	if err != nil {
		return repository.CartItem{}, fmt.Errorf("failed finding cart item with error=%w", err)
	}
	if item.UserID != userID {
		return repository.CartItem{}, inErrors.ErrForbidden
	}
	return item, nil
}

func (s *CartService) UpdateCartItem(c context.Context, userID int64, itemID int64, param request.UpdateCartItem) error {
	c, span := otel.Tracer.Start(c, "CartService UpdateCartItem", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, userID),
		attribute.Int64(log.KeyCartItemID, itemID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateCartItem").
		Int64(log.KeyUserID, userID).
		Int64(log.KeyCartItemID, itemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart item").Logger()
	logger.Info().Msg("finding cart item")
	item, err := s.ownedItem(c, userID, itemID)
	if err != nil {
		err = fmt.Errorf("failed finding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("found cart item")

	quantity := item.Quantity
	if param.Quantity != nil {
		quantity = request.ClampQuantity(*param.Quantity)
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Int32(log.KeyQuantity, quantity).Logger()
	logger.Info().Msg("updating cart item quantity")
	_, err = s.queries.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{ID: itemID, Quantity: quantity})
	if err != nil {
		err = fmt.Errorf("failed updating cart item quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated cart item quantity")

	s.invalidate(c, userID)
	metrics.CartMutations.WithLabelValues("update").Inc()

	return nil
}

func (s *CartService) RemoveCartItem(c context.Context, userID int64, itemID int64) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveCartItem", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, userID),
		attribute.Int64(log.KeyCartItemID, itemID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveCartItem").
		Int64(log.KeyUserID, userID).
		Int64(log.KeyCartItemID, itemID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart item").Logger()
	logger.Info().Msg("finding cart item")
	if _, err := s.ownedItem(c, userID, itemID); err != nil {
		err = fmt.Errorf("failed finding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("found cart item")

	logger = logger.With().Str(log.KeyProcess, "deleting cart item").Logger()
	logger.Info().Msg("deleting cart item")
	if _, err := s.queries.DeleteCartItem(c, itemID); err != nil {
		err = fmt.Errorf("failed deleting cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted cart item")

	s.invalidate(c, userID)
	metrics.CartMutations.WithLabelValues("remove").Inc()

	return nil
}

// Checkout converts the caller's cart into an order in one transaction. An
// admin may name another customer as the owner; the admin's cart is consumed.
func (s *CartService) Checkout(c context.Context, identity internal.Identity, param request.Checkout) (response.CheckoutResult, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, identity.UserID),
		attribute.Bool(log.KeyIsAdmin, identity.IsAdmin),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Int64(log.KeyUserID, identity.UserID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	queries := s.queries.WithTx(tx)
	logger.Info().Msg("initialized transaction")

	logger = logger.With().Str(log.KeyProcess, "locking cart items").Logger()
	logger.Info().Msg("locking cart items")
	rows, err := queries.LockCartItemsByUserId(c, identity.UserID)
	if err != nil {
		err = fmt.Errorf("failed locking cart items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	if len(rows) == 0 {
		err = fmt.Errorf("failed checkout with error=%w", inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger.Info().Int("items", len(rows)).Msg("locked cart items")

	ownerID := identity.UserID
	if identity.IsAdmin && param.UserID != nil && *param.UserID > 0 {
		logger = logger.With().
			Str(log.KeyProcess, "finding target customer").
			Int64(log.KeyTargetUserID, *param.UserID).
			Logger()
		logger.Info().Msg("finding target customer")
		_, err = queries.FindUserById(c, *param.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding target customer with error=%w", inErrors.New(inErrors.ErrNotFound, "Cliente destino no existe"))
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CheckoutResult{}, err
		}
		if err != nil {
			err = fmt.Errorf("failed finding target customer with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.CheckoutResult{}, err
		}
		ownerID = *param.UserID
		logger.Info().Msg("found target customer")
	}

	logger = logger.With().Str(log.KeyProcess, "validating fulfillment").Logger()
	logger.Info().Msg("validating fulfillment")
	fulfillment := param.Fulfillment.Normalize()
	if err = fulfillment.Validate(); err != nil {
		err = fmt.Errorf("failed validating fulfillment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger = logger.With().Str(log.KeyOrderType, string(fulfillment.OrderType)).Logger()
	logger.Info().Msg("validated fulfillment")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	lines := make([]repository.OrderLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, repository.OrderLine{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Price:     repository.Decimal(row.ProductPrice),
		})
	}
	order, err := queries.CreateOrderWithItems(c, repository.CreateOrderWithItemsParams{
		UserID:      ownerID,
		Lines:       lines,
		Fulfillment: fulfillment,
	})
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger = logger.With().Int64(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if _, err = queries.DeleteCartItemsByUserId(c, identity.UserID); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger.Info().Msg("cleared cart")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.CheckoutResult{}, err
	}
	logger.Info().Msg("committed transaction")

	s.invalidate(c, identity.UserID)
	metrics.OrdersCreated.WithLabelValues(string(fulfillment.OrderType), "checkout").Inc()

	return response.CheckoutResult{
		Message:   "Pedido finalizado",
		OrderID:   order.ID,
		Total:     repository.Decimal(order.Total),
		OrderType: fulfillment.OrderType,
	}, nil
}
