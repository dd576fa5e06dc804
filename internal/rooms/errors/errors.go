package errors

import "errors"

var (
	ErrPriceFormat   = errors.New("price_per_night must be a decimal number")
	ErrPriceNegative = errors.New("price_per_night cannot be negative")
	ErrPriceScale    = errors.New("price_per_night allows at most 2 decimal places")
	ErrPriceTooLarge = errors.New("price_per_night allows at most 10 digits")
)
