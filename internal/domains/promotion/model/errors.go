package model

import "errors"

var (
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrInvalidCart       = errors.New("cart items are invalid")
)
