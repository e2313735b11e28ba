package response

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhamir14/restaurant/order/pkg/request"
)

type OrderItem struct {
	ID              int64           `json:"id"`
	ProductName     string          `json:"product_name"`
	Quantity        int32           `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"user_id"`
	UserName        string                 `json:"user_name"`
	Total           decimal.Decimal        `json:"total"`
	CreatedAt       time.Time              `json:"created_at"`
	Items           []OrderItem            `json:"items"`
	OrderType       request.OrderType      `json:"order_type"`
	TableNumber     *int32                 `json:"table_number"`
	DeliveryAddress *string                `json:"delivery_address"`
	DeliveryPhone   *string                `json:"delivery_phone"`
	PaymentMethod   *request.PaymentMethod `json:"payment_method"`
	Status          request.Status         `json:"status"`
}

type Created struct {
	Message string          `json:"message"`
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

type StatusUpdated struct {
	Message string         `json:"message"`
	OrderID int64          `json:"order_id"`
	Status  request.Status `json:"status"`
}

// StatusEvent is published on every accepted status change.
type StatusEvent struct {
	OrderID   int64          `json:"order_id"`
	Status    request.Status `json:"status"`
	ChangedBy int64          `json:"changed_by"`
	RequestID string         `json:"request_id"`
	ChangedAt time.Time      `json:"changed_at"`
}
