package domain

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrDuplicateReference   = errors.New("duplicate_payment_reference")
	ErrInvalidActivation    = errors.New("invalid_activation")
)
