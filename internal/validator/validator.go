package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/coupon-redemption-service/internal/model"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings, used for coupon codes
	// and usernames that must have meaningful content.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// "couponstatus" restricts a field to the closed status set, keeping
	// free-text statuses out at the API boundary.
	_ = v.RegisterValidation("couponstatus", func(fl validator.FieldLevel) bool {
		switch val := fl.Field().Interface().(type) {
		case model.Status:
			return val.Valid()
		case string:
			return model.Status(val).Valid()
		default:
			return false
		}
	})

	return v
}
