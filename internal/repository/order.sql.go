package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findOrderById = `-- name: FindOrderById :one
SELECT id, user_id, total, created_at FROM orders WHERE id = $1
`

func (q *Queries) FindOrderById(ctx context.Context, id int64) (Order, error) {
	row := q.db.QueryRow(ctx, findOrderById, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Total,
		&i.CreatedAt,
	)
	return i, err
}

const findOrders = `-- name: FindOrders :many
SELECT o.id, o.user_id, u.username, u.first_name, u.last_name, o.total, o.created_at,
       oi.order_type, oi.table_number, oi.delivery_address, oi.delivery_phone, oi.payment_method,
       COALESCE(os.status, 'pendiente')::varchar AS status,
       COALESCE((
           SELECT json_agg(json_build_object(
               'id', it.id,
               'product_name', p.name,
               'quantity', it.quantity,
               'price_at_purchase', it.price_at_purchase
           ) ORDER BY it.id)
           FROM order_items it
           JOIN products p ON p.id = it.product_id
           WHERE it.order_id = o.id
       ), '[]'::json) AS order_items
FROM orders o
JOIN users u ON u.id = o.user_id
LEFT JOIN order_info oi ON oi.order_id = o.id
LEFT JOIN order_status os ON os.order_id = o.id
WHERE ($1::bigint IS NULL OR o.user_id = $1::bigint)
  AND ((COALESCE(os.status, 'pendiente') = 'pagado') = $2::boolean)
ORDER BY o.created_at DESC, o.id DESC
`

type FindOrdersParams struct {
	UserID pgtype.Int8 `json:"user_id"`
	Paid   bool        `json:"paid"`
}

type FindOrdersRow struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	Username        string             `json:"username"`
	FirstName       pgtype.Text        `json:"first_name"`
	LastName        pgtype.Text        `json:"last_name"`
	Total           pgtype.Numeric     `json:"total"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	OrderType       pgtype.Text        `json:"order_type"`
	TableNumber     pgtype.Int4        `json:"table_number"`
	DeliveryAddress pgtype.Text        `json:"delivery_address"`
	DeliveryPhone   pgtype.Text        `json:"delivery_phone"`
	PaymentMethod   pgtype.Text        `json:"payment_method"`
	Status          string             `json:"status"`
	OrderItems      []byte             `json:"order_items"`
}

func (q *Queries) FindOrders(ctx context.Context, arg FindOrdersParams) ([]FindOrdersRow, error) {
	rows, err := q.db.Query(ctx, findOrders, arg.UserID, arg.Paid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindOrdersRow{}
	for rows.Next() {
		var i FindOrdersRow
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Username,
			&i.FirstName,
			&i.LastName,
			&i.Total,
			&i.CreatedAt,
			&i.OrderType,
			&i.TableNumber,
			&i.DeliveryAddress,
			&i.DeliveryPhone,
			&i.PaymentMethod,
			&i.Status,
			&i.OrderItems,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (user_id, total) VALUES ($1, $2) RETURNING id, user_id, total, created_at
`

type InsertOrderParams struct {
	UserID int64          `json:"user_id"`
	Total  pgtype.Numeric `json:"total"`
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder, arg.UserID, arg.Total)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Total,
		&i.CreatedAt,
	)
	return i, err
}

const insertOrderInfo = `-- name: InsertOrderInfo :one
INSERT INTO order_info (order_id, order_type, table_number, delivery_address, delivery_phone, payment_method)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, order_type, table_number, delivery_address, delivery_phone, payment_method, created_at
`

type InsertOrderInfoParams struct {
	OrderID         int64       `json:"order_id"`
	OrderType       string      `json:"order_type"`
	TableNumber     pgtype.Int4 `json:"table_number"`
	DeliveryAddress pgtype.Text `json:"delivery_address"`
	DeliveryPhone   pgtype.Text `json:"delivery_phone"`
	PaymentMethod   pgtype.Text `json:"payment_method"`
}

func (q *Queries) InsertOrderInfo(ctx context.Context, arg InsertOrderInfoParams) (OrderInfo, error) {
	row := q.db.QueryRow(ctx, insertOrderInfo,
		arg.OrderID,
		arg.OrderType,
		arg.TableNumber,
		arg.DeliveryAddress,
		arg.DeliveryPhone,
		arg.PaymentMethod,
	)
	var i OrderInfo
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.OrderType,
		&i.TableNumber,
		&i.DeliveryAddress,
		&i.DeliveryPhone,
		&i.PaymentMethod,
		&i.CreatedAt,
	)
	return i, err
}

type InsertOrderItemsParams struct {
	OrderID         int64          `json:"order_id"`
	ProductID       int64          `json:"product_id"`
	Quantity        int32          `json:"quantity"`
	PriceAtPurchase pgtype.Numeric `json:"price_at_purchase"`
}

const insertOrderStatusEvent = `-- name: InsertOrderStatusEvent :one
INSERT INTO order_status_events (order_id, status, changed_by, request_id)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, status, changed_by, request_id, created_at
`

type InsertOrderStatusEventParams struct {
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy int64     `json:"changed_by"`
	RequestID uuid.UUID `json:"request_id"`
}

func (q *Queries) InsertOrderStatusEvent(ctx context.Context, arg InsertOrderStatusEventParams) (OrderStatusEvent, error) {
	row := q.db.QueryRow(ctx, insertOrderStatusEvent,
		arg.OrderID,
		arg.Status,
		arg.ChangedBy,
		arg.RequestID,
	)
	var i OrderStatusEvent
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Status,
		&i.ChangedBy,
		&i.RequestID,
		&i.CreatedAt,
	)
	return i, err
}

const upsertOrderStatus = `-- name: UpsertOrderStatus :one
INSERT INTO order_status (order_id, status)
VALUES ($1, $2)
ON CONFLICT (order_id)
DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
RETURNING id, order_id, status, created_at, updated_at
`

type UpsertOrderStatusParams struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

func (q *Queries) UpsertOrderStatus(ctx context.Context, arg UpsertOrderStatusParams) (OrderStatus, error) {
	row := q.db.QueryRow(ctx, upsertOrderStatus, arg.OrderID, arg.Status)
	var i OrderStatus
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findOrderStatusEventsByOrderId = `-- name: FindOrderStatusEventsByOrderId :many
SELECT id, order_id, status, changed_by, request_id, created_at
FROM order_status_events WHERE order_id = $1 ORDER BY id
`

func (q *Queries) FindOrderStatusEventsByOrderId(ctx context.Context, orderID int64) ([]OrderStatusEvent, error) {
	rows, err := q.db.Query(ctx, findOrderStatusEventsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderStatusEvent{}
	for rows.Next() {
		var i OrderStatusEvent
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.Status,
			&i.ChangedBy,
			&i.RequestID,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
