package menu

import "errors"

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuNotFound       = errors.New("menu not found")
	ErrInvalidRestaurant  = errors.New("invalid restaurant")
	ErrInvalidMenu        = errors.New("invalid menu")
)
