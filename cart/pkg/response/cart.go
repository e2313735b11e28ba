package response

import (
	"github.com/shopspring/decimal"

	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"image_url"`
}

type CartItem struct {
	ID       int64           `json:"id"`
	Product  Product         `json:"product"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddedItem struct {
	Message string `json:"message"`
	ItemID  int64  `json:"item_id"`
}

type CheckoutResult struct {
	Message   string                 `json:"message"`
	OrderID   int64                  `json:"order_id"`
	Total     decimal.Decimal        `json:"total"`
	OrderType orderRequest.OrderType `json:"order_type"`
}
