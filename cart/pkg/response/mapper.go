package response

import "github.com/shopspring/decimal"

// NewCart prices every line from its product and sums the total.
func NewCart(items []CartItem) Cart {
	cart := Cart{Items: make([]CartItem, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		item.Subtotal = item.Product.Price.Mul(decimal.NewFromInt32(item.Quantity))
		cart.Total = cart.Total.Add(item.Subtotal)
		cart.Items = append(cart.Items, item)
	}
	return cart
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Item(id int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items, Total: c.Total}
}
