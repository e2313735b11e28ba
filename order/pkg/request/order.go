package request

import (
	"strings"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
)

type OrderType string

const (
	OrderTypeMesa     OrderType = "mesa"
	OrderTypeDelivery OrderType = "delivery"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "efectivo"
	PaymentMethodCard PaymentMethod = "tarjeta"
	PaymentMethodYape PaymentMethod = "yape"
	PaymentMethodPlin PaymentMethod = "plin"
)

var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodYape, PaymentMethodPlin}

type Status string

const (
	StatusPending   Status = "pendiente"
	StatusDelivered Status = "entregado"
	StatusPaid      Status = "pagado"
)

var AllowedStatuses = []Status{StatusPending, StatusDelivered, StatusPaid}

const (
	MessageInvalidOrderType     = "order_type debe ser 'mesa' o 'delivery'"
	MessageInvalidTableNumber   = "Número de mesa inválido"
	MessageMissingAddress       = "Dirección de entrega requerida"
	MessageInvalidPaymentMethod = "Método de pago inválido"
	MessageInvalidStatus        = "Estado inválido"
)

func ParseOrderType(s string) (OrderType, error) {
	switch t := OrderType(strings.ToLower(strings.TrimSpace(s))); t {
	case OrderTypeMesa, OrderTypeDelivery:
		return t, nil
	default:
		return "", inErrors.NewValidationError("order_type", MessageInvalidOrderType)
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, allowed := range PaymentMethods {
		if m == allowed {
			return m, nil
		}
	}
	return "", inErrors.NewValidationError("payment_method", MessageInvalidPaymentMethod)
}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, allowed := range AllowedStatuses {
		if status == allowed {
			return status, nil
		}
	}
	return "", inErrors.NewValidationError("status", MessageInvalidStatus)
}

// Fulfillment says how an order reaches the customer. Only the fields of the
// chosen order type travel on the wire.
type Fulfillment struct {
	OrderType       OrderType     `json:"order_type"`
	TableNumber     *int32        `json:"table_number,omitempty"`
	DeliveryAddress *string       `json:"delivery_address,omitempty"`
	DeliveryPhone   *string       `json:"delivery_phone,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method,omitempty"`
}

// Normalize trims and lowercases the enums, turns blank strings into absent
// fields and drops the fields that do not belong to the order type.
func (f Fulfillment) Normalize() Fulfillment {
	normalized := Fulfillment{
		OrderType:     OrderType(strings.ToLower(strings.TrimSpace(string(f.OrderType)))),
		PaymentMethod: PaymentMethod(strings.ToLower(strings.TrimSpace(string(f.PaymentMethod)))),
	}
	switch normalized.OrderType {
	case OrderTypeMesa:
		normalized.TableNumber = f.TableNumber
	case OrderTypeDelivery:
		normalized.DeliveryAddress = trimmed(f.DeliveryAddress)
		normalized.DeliveryPhone = trimmed(f.DeliveryPhone)
	}
	return normalized
}

func (f Fulfillment) Validate() error {
	if _, err := ParseOrderType(string(f.OrderType)); err != nil {
		return err
	}
	switch f.OrderType {
	case OrderTypeMesa:
		if f.TableNumber == nil || *f.TableNumber <= 0 {
			return inErrors.NewValidationError("table_number", MessageInvalidTableNumber)
		}
	case OrderTypeDelivery:
		if f.DeliveryAddress == nil || *f.DeliveryAddress == "" {
			return inErrors.NewValidationError("delivery_address", MessageMissingAddress)
		}
	}
	if f.PaymentMethod != "" {
		if _, err := ParsePaymentMethod(string(f.PaymentMethod)); err != nil {
			return err
		}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

type UpdateStatus struct {
	Status Status `json:"status" validate:"required,orderstatus"`
}

type CreateOrderItem struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int32 `json:"quantity"`
}

// CreateOrder is an order placed by an admin for a customer without going
// through a cart.
type CreateOrder struct {
	UserID int64             `json:"user_id"`
	Items  []CreateOrderItem `json:"items"   validate:"dive"`
	Fulfillment
}

func (o CreateOrder) Validate() error {
	if o.UserID <= 0 {
		return inErrors.NewValidationError("user_id", "user_id es requerido")
	}
	if len(o.Items) == 0 {
		return inErrors.NewValidationError("items", "items es requerido")
	}
	return o.Fulfillment.Validate()
}
