package validate

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator with the restaurant tags registered:
// orderstatus, ordertype and paymentmethod.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("orderstatus", ValidateOrderStatus)
		validate.RegisterValidation("ordertype", ValidateOrderType)
		validate.RegisterValidation("paymentmethod", ValidatePaymentMethod)
	})
	return validate
}

func ValidateOrderStatus(fl validator.FieldLevel) bool {
	_, err := orderRequest.ParseStatus(stringValue(fl.Field()))
	return err == nil
}

func ValidateOrderType(fl validator.FieldLevel) bool {
	_, err := orderRequest.ParseOrderType(stringValue(fl.Field()))
	return err == nil
}

func ValidatePaymentMethod(fl validator.FieldLevel) bool {
	value := stringValue(fl.Field())
	if value == "" {
		return true
	}
	_, err := orderRequest.ParsePaymentMethod(value)
	return err == nil
}

func stringValue(v reflect.Value) string {
	if v.Kind() != reflect.String {
		return ""
	}
	return v.String()
}
