// Package remotetest is an in-memory stand-in for the restaurant api with the
// same cart, checkout and order rules, used by the terminal tests.
package remotetest

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	cartResponse "github.com/jhamir14/restaurant/cart/pkg/response"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
)

type user struct {
	name    string
	isAdmin bool
}

type cartLine struct {
	id        int64
	userID    int64
	productID int64
	quantity  int32
}

type Remote struct {
	mu       sync.Mutex
	products map[int64]cartResponse.Product
	users    map[int64]user
	lines    []cartLine
	orders   []orderResponse.Order
	actor    int64
	nextID   int64
	requests map[string]int
	failures map[string]*inErrors.ResponseError
	now      func() time.Time
}

func New() *Remote {
	return &Remote{
		products: map[int64]cartResponse.Product{},
		users:    map[int64]user{},
		requests: map[string]int{},
		failures: map[string]*inErrors.ResponseError{},
		now:      time.Now,
	}
}

func (r *Remote) AddProduct(id int64, name string, price string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[id] = cartResponse.Product{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func (r *Remote) AddUser(id int64, name string, isAdmin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = user{name: name, isAdmin: isAdmin}
}

// ActAs makes every following request come from userID.
func (r *Remote) ActAs(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actor = userID
}

// FailNext makes the next call of op answer with statusCode and message.
func (r *Remote) FailNext(op string, statusCode int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = &inErrors.ResponseError{StatusCode: statusCode, Message: message}
}

// Requests counts the calls of op, or of every op when op is empty.
func (r *Remote) Requests(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if op != "" {
		return r.requests[op]
	}
	total := 0
	for _, n := range r.requests {
		total += n
	}
	return total
}

func (r *Remote) call(op string) error {
	r.requests[op]++
	if err, ok := r.failures[op]; ok {
		delete(r.failures, op)
		return err
	}
	if _, ok := r.users[r.actor]; !ok {
		return &inErrors.ResponseError{StatusCode: http.StatusUnauthorized, Message: "Token requerido"}
	}
	return nil
}

func (r *Remote) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *Remote) GetCart(_ context.Context) (cartResponse.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("GetCart"); err != nil {
		return cartResponse.Cart{}, err
	}
	return r.cartOf(r.actor), nil
}

func (r *Remote) cartOf(userID int64) cartResponse.Cart {
	items := []cartResponse.CartItem{}
	for _, line := range r.lines {
		if line.userID == userID {
			items = append(items, cartResponse.CartItem{ID: line.id, Product: r.products[line.productID], Quantity: line.quantity})
		}
	}
	return cartResponse.NewCart(items)
}

func (r *Remote) AddCartItem(_ context.Context, param cartRequest.AddCartItem) (cartResponse.AddedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("AddCartItem"); err != nil {
		return cartResponse.AddedItem{}, err
	}
	if _, ok := r.products[param.ProductID]; !ok {
		return cartResponse.AddedItem{}, &inErrors.ResponseError{StatusCode: http.StatusNotFound, Message: "Producto no existe"}
	}
	quantity := cartRequest.ClampQuantity(param.Quantity)
	for i, line := range r.lines {
		if line.userID == r.actor && line.productID == param.ProductID {
			r.lines[i].quantity += quantity
			return cartResponse.AddedItem{Message: "Producto agregado al carrito", ItemID: line.id}, nil
		}
	}
	line := cartLine{id: r.id(), userID: r.actor, productID: param.ProductID, quantity: quantity}
	r.lines = append(r.lines, line)
	return cartResponse.AddedItem{Message: "Producto agregado al carrito", ItemID: line.id}, nil
}

func (r *Remote) line(itemID int64) (int, error) {
	for i, line := range r.lines {
		if line.id != itemID {
			continue
		}
		if line.userID != r.actor {
			return 0, &inErrors.ResponseError{StatusCode: http.StatusForbidden, Message: "No autorizado"}
		}
		return i, nil
	}
	return 0, &inErrors.ResponseError{StatusCode: http.StatusNotFound, Message: "Item no encontrado"}
}

func (r *Remote) UpdateCartItem(_ context.Context, itemID int64, param cartRequest.UpdateCartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("UpdateCartItem"); err != nil {
		return err
	}
	i, err := r.line(itemID)
	if err != nil {
		return err
	}
	if param.Quantity != nil {
		r.lines[i].quantity = cartRequest.ClampQuantity(*param.Quantity)
	}
	return nil
}

func (r *Remote) RemoveCartItem(_ context.Context, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("RemoveCartItem"); err != nil {
		return err
	}
	i, err := r.line(itemID)
	if err != nil {
		return err
	}
	r.lines = slices.Delete(r.lines, i, i+1)
	return nil
}

func (r *Remote) Checkout(_ context.Context, param cartRequest.Checkout) (cartResponse.CheckoutResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("Checkout"); err != nil {
		return cartResponse.CheckoutResult{}, err
	}
	fulfillment := param.Fulfillment.Normalize()
	if err := fulfillment.Validate(); err != nil {
		return cartResponse.CheckoutResult{}, &inErrors.ResponseError{StatusCode: http.StatusBadRequest, Message: inErrors.PublicMessage(err)}
	}

	owner := r.actor
	if param.UserID != nil && r.users[r.actor].isAdmin {
		if _, ok := r.users[*param.UserID]; !ok {
			return cartResponse.CheckoutResult{}, &inErrors.ResponseError{StatusCode: http.StatusNotFound, Message: "Cliente destino no existe"}
		}
		owner = *param.UserID
	}

	cart := r.cartOf(r.actor)
	if cart.IsEmpty() {
		return cartResponse.CheckoutResult{}, &inErrors.ResponseError{StatusCode: http.StatusBadRequest, Message: "Carrito vacío"}
	}
	order := orderResponse.Order{
		ID:              r.id(),
		UserID:          owner,
		UserName:        r.users[owner].name,
		Total:           cart.Total,
		CreatedAt:       r.now(),
		OrderType:       fulfillment.OrderType,
		TableNumber:     fulfillment.TableNumber,
		DeliveryAddress: fulfillment.DeliveryAddress,
		DeliveryPhone:   fulfillment.DeliveryPhone,
		PaymentMethod:   paymentMethod(fulfillment.PaymentMethod),
		Status:          orderRequest.StatusPending,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, orderResponse.OrderItem{
			ID:              r.id(),
			ProductName:     item.Product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Product.Price,
			Subtotal:        item.Subtotal,
		})
	}
	r.orders = append(r.orders, order)
	r.lines = slices.DeleteFunc(r.lines, func(line cartLine) bool { return line.userID == r.actor })

	return cartResponse.CheckoutResult{
		Message:   "Pedido creado",
		OrderID:   order.ID,
		Total:     order.Total,
		OrderType: order.OrderType,
	}, nil
}

func (r *Remote) findOrders(paid bool) []orderResponse.Order {
	orders := []orderResponse.Order{}
	for _, order := range slices.Backward(r.orders) {
		if (order.Status == orderRequest.StatusPaid) != paid {
			continue
		}
		if !r.users[r.actor].isAdmin && order.UserID != r.actor {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

func (r *Remote) FindOrders(_ context.Context) ([]orderResponse.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("FindOrders"); err != nil {
		return nil, err
	}
	return r.findOrders(false), nil
}

func (r *Remote) FindOrderHistory(_ context.Context) ([]orderResponse.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("FindOrderHistory"); err != nil {
		return nil, err
	}
	return r.findOrders(true), nil
}

func (r *Remote) UpdateOrderStatus(_ context.Context, orderID int64, param orderRequest.UpdateStatus) (orderResponse.StatusUpdated, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.call("UpdateOrderStatus"); err != nil {
		return orderResponse.StatusUpdated{}, err
	}
	if !r.users[r.actor].isAdmin {
		return orderResponse.StatusUpdated{}, &inErrors.ResponseError{StatusCode: http.StatusForbidden, Message: "No autorizado"}
	}
	status, err := orderRequest.ParseStatus(string(param.Status))
	if err != nil {
		return orderResponse.StatusUpdated{}, &inErrors.ResponseError{StatusCode: http.StatusBadRequest, Message: orderRequest.MessageInvalidStatus}
	}
	for i, order := range r.orders {
		if order.ID == orderID {
			r.orders[i].Status = status
			return orderResponse.StatusUpdated{Message: "Estado actualizado", OrderID: orderID, Status: status}, nil
		}
	}
	return orderResponse.StatusUpdated{}, &inErrors.ResponseError{StatusCode: http.StatusNotFound, Message: "Pedido no encontrado"}
}

func paymentMethod(m orderRequest.PaymentMethod) *orderRequest.PaymentMethod {
	if m == "" {
		return nil
	}
	return &m
}
