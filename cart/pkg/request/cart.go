package request

import (
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

type AddCartItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity"`
}

type UpdateCartItem struct {
	Quantity *int32 `json:"quantity"`
}

// Checkout turns the caller's cart into an order. UserID is honored only for
// admins, who then place the order on behalf of that customer.
type Checkout struct {
	orderRequest.Fulfillment
	UserID *int64 `json:"user_id,omitempty"`
}

// ClampQuantity keeps a requested quantity at one or more.
func ClampQuantity(quantity int32) int32 {
	return max(1, quantity)
}
