package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhamir14/restaurant/internal"
	"github.com/jhamir14/restaurant/internal/constants"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/metrics"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/order/internal/otel"
	"github.com/jhamir14/restaurant/order/pkg/request"
	"github.com/jhamir14/restaurant/order/pkg/response"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewOrderService(pool *pgxpool.Pool, queries *repository.Queries, cache *redis.Client) *OrderService {
	return &OrderService{pool: pool, queries: queries, cache: cache}
}

// FindOrders lists the active board: every order that is not paid yet, all of
// them for admins and only the caller's own otherwise.
func (s *OrderService) FindOrders(c context.Context, identity internal.Identity) ([]response.Order, error) {
	return s.findOrders(c, identity, false)
}

// FindOrderHistory lists paid orders with the same scoping as FindOrders.
func (s *OrderService) FindOrderHistory(c context.Context, identity internal.Identity) ([]response.Order, error) {
	return s.findOrders(c, identity, true)
}

func (s *OrderService) findOrders(c context.Context, identity internal.Identity, paid bool) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService findOrders", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, identity.UserID),
		attribute.Bool(log.KeyIsAdmin, identity.IsAdmin),
		attribute.Bool("paid", paid),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService findOrders").
		Int64(log.KeyUserID, identity.UserID).
		Bool(log.KeyIsAdmin, identity.IsAdmin).
		Bool("paid", paid).
		Logger()

	param := repository.FindOrdersParams{Paid: paid}
	if !identity.IsAdmin {
		param.UserID = pgtype.Int8{Int64: identity.UserID, Valid: true}
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	rows, err := s.queries.FindOrders(c, param)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(rows)).Msg("found orders")

	logger = logger.With().Str(log.KeyProcess, "mapping orders").Logger()
	logger.Trace().Msg("mapping orders")
	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.Response()
		if err != nil {
			err = fmt.Errorf("failed mapping order id=%d with error=%w", row.ID, err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders = append(orders, order)
	}
	logger.Trace().Msg("mapped orders")

	return orders, nil
}

// UpdateStatus sets the order status, appends an audit event and publishes
// it. Any allowed status may follow any other.
func (s *OrderService) UpdateStatus(
	c context.Context,
	identity internal.Identity,
	orderID int64,
	param request.UpdateStatus,
) (response.StatusUpdated, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateStatus", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, identity.UserID),
		attribute.Int64(log.KeyOrderID, orderID),
		attribute.String(log.KeyOrderStatus, string(param.Status)),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService UpdateStatus").
		Int64(log.KeyUserID, identity.UserID).
		Int64(log.KeyOrderID, orderID).
		Logger()

	if !identity.IsAdmin {
		err := fmt.Errorf("failed updating order status with error=%w", inErrors.ErrForbidden)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating status").Logger()
	logger.Info().Msg("validating status")
	status, err := request.ParseStatus(string(param.Status))
	if err != nil {
		err = fmt.Errorf("failed validating status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}
	logger = logger.With().Str(log.KeyOrderStatus, string(status)).Logger()
	logger.Info().Msg("validated status")

	requestID, err := uuid.Parse(log.RequestIDFromContext(c))
	if err != nil {
		requestID = uuid.New()
	}

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
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

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Info().Msg("finding order")
	if _, err = queries.FindOrderById(c, orderID); errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding order with error=%w", inErrors.New(inErrors.ErrNotFound, "Pedido no encontrado"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	} else if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}
	logger.Info().Msg("found order")

	logger = logger.With().Str(log.KeyProcess, "upserting order status").Logger()
	logger.Info().Msg("upserting order status")
	_, err = queries.UpsertOrderStatus(c, repository.UpsertOrderStatusParams{OrderID: orderID, Status: string(status)})
	if err != nil {
		err = fmt.Errorf("failed upserting order status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}
	logger.Info().Msg("upserted order status")

	logger = logger.With().Str(log.KeyProcess, "inserting order status event").Logger()
	logger.Info().Msg("inserting order status event")
	event, err := queries.InsertOrderStatusEvent(c, repository.InsertOrderStatusEventParams{
		OrderID:   orderID,
		Status:    string(status),
		ChangedBy: identity.UserID,
		RequestID: requestID,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order status event with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}
	logger.Info().Msg("inserted order status event")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StatusUpdated{}, err
	}
	logger.Info().Msg("committed transaction")

	metrics.OrderStatusUpdates.WithLabelValues(string(status)).Inc()
	changedAt := time.Now()
	if event.CreatedAt.Valid {
		changedAt = event.CreatedAt.Time
	}
	s.publishStatus(c, response.StatusEvent{
		OrderID:   orderID,
		Status:    status,
		ChangedBy: identity.UserID,
		RequestID: requestID.String(),
		ChangedAt: changedAt,
	})

	return response.StatusUpdated{Message: "Estado actualizado", OrderID: orderID, Status: status}, nil
}

// publishStatus only logs a failure because the status change is committed.
func (s *OrderService) publishStatus(c context.Context, event response.StatusEvent) {
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "OrderService publishStatus").
		Str(log.KeyChannel, constants.ChannelOrderStatusUpdated).
		Logger()

	encoded, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("failed marshaling status event")
		return
	}
	if err = s.cache.Publish(c, constants.ChannelOrderStatusUpdated, encoded).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed publishing status event")
		return
	}
	logger.Trace().Msg("published status event")
}

// CreateOrder places an order for a customer straight from a list of
// products. Carts are not touched.
func (s *OrderService) CreateOrder(
	c context.Context,
	identity internal.Identity,
	param request.CreateOrder,
) (response.Created, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrder", trace.WithAttributes(
		attribute.Int64(log.KeyUserID, identity.UserID),
		attribute.Int64(log.KeyTargetUserID, param.UserID),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrder").
		Int64(log.KeyUserID, identity.UserID).
		Int64(log.KeyTargetUserID, param.UserID).
		Logger()

	if !identity.IsAdmin {
		err := fmt.Errorf("failed creating order with error=%w", inErrors.ErrForbidden)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating request").Logger()
	logger.Info().Msg("validating request")
	param.Fulfillment = param.Fulfillment.Normalize()
	if err := param.Validate(); err != nil {
		err = fmt.Errorf("failed validating request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}
	logger = logger.With().Str(log.KeyOrderType, string(param.OrderType)).Logger()
	logger.Info().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
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

	logger = logger.With().Str(log.KeyProcess, "finding customer").Logger()
	logger.Info().Msg("finding customer")
	if _, err = queries.FindUserById(c, param.UserID); errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding customer with error=%w", inErrors.New(inErrors.ErrNotFound, "Cliente no existe"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	} else if err != nil {
		err = fmt.Errorf("failed finding customer with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}
	logger.Info().Msg("found customer")

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	ids := make([]int64, 0, len(param.Items))
	for _, item := range param.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := queries.FindProductsByIds(c, ids)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}
	prices := make(map[int64]pgtype.Numeric, len(products))
	for _, product := range products {
		prices[product.ID] = product.Price
	}
	lines := make([]repository.OrderLine, 0, len(param.Items))
	for _, item := range param.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			err = fmt.Errorf("failed finding products with error=%w", inErrors.New(inErrors.ErrNotFound, "Producto %d no existe", item.ProductID))
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Created{}, err
		}
		lines = append(lines, repository.OrderLine{
			ProductID: item.ProductID,
			Quantity:  max(1, item.Quantity),
			Price:     repository.Decimal(price),
		})
	}
	logger.Info().Int("count", len(products)).Msg("found products")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := queries.CreateOrderWithItems(c, repository.CreateOrderWithItemsParams{
		UserID:      param.UserID,
		Lines:       lines,
		Fulfillment: param.Fulfillment,
	})
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}
	logger = logger.With().Int64(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err = tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Created{}, err
	}
	logger.Info().Msg("committed transaction")

	metrics.OrdersCreated.WithLabelValues(string(param.OrderType), "admin").Inc()

	return response.Created{Message: "Pedido creado", OrderID: order.ID, Total: repository.Decimal(order.Total)}, nil
}
