package dto

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RegisterValidators teaches v about decimal amounts. Decimal fields are validated
// through their string form so that the dgt0 (> 0) and dgte0 (>= 0) tags can be
// combined with the stock ones.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("dgt0", decimalRule(func(d decimal.Decimal) bool { return d.IsPositive() })); err != nil {
		return fmt.Errorf("register dgt0: %w", err)
	}
	if err := v.RegisterValidation("dgte0", decimalRule(func(d decimal.Decimal) bool { return !d.IsNegative() })); err != nil {
		return fmt.Errorf("register dgte0: %w", err)
	}
	if err := v.RegisterValidation("money", decimalRule(func(d decimal.Decimal) bool { return d.Equal(d.Truncate(2)) })); err != nil {
		return fmt.Errorf("register money: %w", err)
	}
	return nil
}

func decimalRule(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ok(d)
	}
}

// ParseDate parses a DateLayout string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
