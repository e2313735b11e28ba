package repository

import (
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/jhamir14/restaurant/cart/pkg/response"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
	productResponse "github.com/jhamir14/restaurant/product/pkg/response"
	userResponse "github.com/jhamir14/restaurant/user/pkg/response"
)

func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

func Decimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func Text(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func stringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func (r FindCartItemsByUserIdRow) Response() cartResponse.CartItem {
	return cartResponse.CartItem{
		ID: r.ID,
		Product: cartResponse.Product{
			ID:       r.ProductID,
			Name:     r.ProductName,
			Price:    Decimal(r.ProductPrice),
			ImageURL: stringPtr(r.ProductImageUrl),
		},
		Quantity: r.Quantity,
	}
}

func CartResponse(rows []FindCartItemsByUserIdRow) cartResponse.Cart {
	items := make([]cartResponse.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Response())
	}
	return cartResponse.NewCart(items)
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: stringPtr(p.Description),
		Price:       Decimal(p.Price),
		ImageURL:    stringPtr(p.ImageUrl),
	}
}

func (r FindOrdersRow) Response() (orderResponse.Order, error) {
	items := []orderResponse.OrderItem{}
	if err := json.Unmarshal(r.OrderItems, &items); err != nil {
		return orderResponse.Order{}, err
	}
	for i := range items {
		items[i].Subtotal = items[i].PriceAtPurchase.Mul(decimal.NewFromInt32(items[i].Quantity))
	}

	userName := strings.TrimSpace(r.FirstName.String + " " + r.LastName.String)
	if userName == "" {
		userName = r.Username
	}

	orderType := orderRequest.OrderTypeMesa
	if r.OrderType.Valid {
		orderType = orderRequest.OrderType(r.OrderType.String)
	}

	order := orderResponse.Order{
		ID:              r.ID,
		UserID:          r.UserID,
		UserName:        userName,
		Total:           Decimal(r.Total),
		CreatedAt:       r.CreatedAt.Time,
		Items:           items,
		OrderType:       orderType,
		DeliveryAddress: stringPtr(r.DeliveryAddress),
		DeliveryPhone:   stringPtr(r.DeliveryPhone),
		Status:          orderRequest.Status(r.Status),
	}
	if r.TableNumber.Valid {
		tableNumber := r.TableNumber.Int32
		order.TableNumber = &tableNumber
	}
	if r.PaymentMethod.Valid {
		paymentMethod := orderRequest.PaymentMethod(r.PaymentMethod.String)
		order.PaymentMethod = &paymentMethod
	}
	return order, nil
}

func (u FindUsersRow) Response() userResponse.Customer {
	return userResponse.Customer{
		ID:        u.ID,
		Username:  u.Username,
		Email:     stringPtr(u.Email),
		IsAdmin:   u.IsAdmin,
		FirstName: stringPtr(u.FirstName),
		LastName:  stringPtr(u.LastName),
		Phone:     stringPtr(u.Phone),
		Address:   stringPtr(u.Address),
		Orders:    u.OrdersCount,
	}
}
