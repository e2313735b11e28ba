// Package metadata turns what the user filled in at checkout into the
// fulfillment part of a checkout request.
package metadata

import (
	"strings"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

// Draft is the checkout form. It outlives a failed checkout so the user can
// retry without filling it in again.
type Draft struct {
	OrderType       string
	TableNumber     int32
	DeliveryAddress string
	DeliveryPhone   string
	PaymentMethod   string
	TargetUserID    int64
}

// Build validates draft and keeps only the fields of its order type. It never
// sets UserID, that is up to the caller.
func Build(draft Draft) (cartRequest.Checkout, error) {
	orderType, err := orderRequest.ParseOrderType(draft.OrderType)
	if err != nil {
		return cartRequest.Checkout{}, err
	}

	fulfillment := orderRequest.Fulfillment{OrderType: orderType, PaymentMethod: orderRequest.PaymentMethodCash}
	if strings.TrimSpace(draft.PaymentMethod) != "" {
		if fulfillment.PaymentMethod, err = orderRequest.ParsePaymentMethod(draft.PaymentMethod); err != nil {
			return cartRequest.Checkout{}, err
		}
	}

	switch orderType {
	case orderRequest.OrderTypeMesa:
		if draft.TableNumber <= 0 {
			return cartRequest.Checkout{}, inErrors.NewValidationError("table_number", orderRequest.MessageInvalidTableNumber)
		}
		table := draft.TableNumber
		fulfillment.TableNumber = &table
	case orderRequest.OrderTypeDelivery:
		fulfillment.DeliveryAddress = &draft.DeliveryAddress
		fulfillment.DeliveryPhone = &draft.DeliveryPhone
	}

	fulfillment = fulfillment.Normalize()
	if err = fulfillment.Validate(); err != nil {
		return cartRequest.Checkout{}, err
	}
	return cartRequest.Checkout{Fulfillment: fulfillment}, nil
}
