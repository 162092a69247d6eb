package accountdelivery

import (
	"github.com/go-petr/trade-ledger/pkg/currencypkg"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers the custom binding tags used by account requests.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("currency", currencypkg.ValidCurrency); err != nil {
		return err
	}

	return v.RegisterValidation("decimal", currencypkg.ValidDecimal)
}
