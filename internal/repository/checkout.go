package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

type OrderLine struct {
	ProductID int64
	Quantity  int32
	Price     decimal.Decimal
}

type CreateOrderWithItemsParams struct {
	UserID      int64
	Lines       []OrderLine
	Fulfillment orderRequest.Fulfillment
}

// CreateOrderWithItems writes the order, its lines priced at purchase, the
// fulfillment info and the initial pendiente status. Callers run it inside a
// transaction through WithTx.
func (q *Queries) CreateOrderWithItems(ctx context.Context, arg CreateOrderWithItemsParams) (Order, error) {
	total := decimal.Zero
	for _, line := range arg.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt32(line.Quantity)))
	}

	order, err := q.InsertOrder(ctx, InsertOrderParams{UserID: arg.UserID, Total: Numeric(total)})
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}

	items := make([]InsertOrderItemsParams, 0, len(arg.Lines))
	for _, line := range arg.Lines {
		items = append(items, InsertOrderItemsParams{
			OrderID:         order.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: Numeric(line.Price),
		})
	}
	if _, err = q.InsertOrderItems(ctx, items); err != nil {
		return Order{}, fmt.Errorf("failed inserting order items with error=%w", err)
	}

	info := InsertOrderInfoParams{
		OrderID:         order.ID,
		OrderType:       string(arg.Fulfillment.OrderType),
		DeliveryAddress: Text(arg.Fulfillment.DeliveryAddress),
		DeliveryPhone:   Text(arg.Fulfillment.DeliveryPhone),
	}
	if arg.Fulfillment.TableNumber != nil {
		info.TableNumber = pgtype.Int4{Int32: *arg.Fulfillment.TableNumber, Valid: true}
	}
	if arg.Fulfillment.PaymentMethod != "" {
		info.PaymentMethod = pgtype.Text{String: string(arg.Fulfillment.PaymentMethod), Valid: true}
	}
	if _, err = q.InsertOrderInfo(ctx, info); err != nil {
		return Order{}, fmt.Errorf("failed inserting order info with error=%w", err)
	}

	_, err = q.UpsertOrderStatus(ctx, UpsertOrderStatusParams{OrderID: order.ID, Status: string(orderRequest.StatusPending)})
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order status with error=%w", err)
	}

	return order, nil
}
