package offers

import "errors"

var (
	ErrTargetRequired   = errors.New("offer must target exactly one of item_id or category_id")
	ErrInvalidOfferType = errors.New("offer type must be FLAT or PERCENT")
	ErrInvalidAmount    = errors.New("invalid offer amount")
	ErrInvalidWindow    = errors.New("invalid offer window")
	ErrTargetNotFound   = errors.New("offer target not found")
)
