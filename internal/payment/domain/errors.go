package domain

import "errors"

var (
	ErrProviderNotFound      = errors.New("provider_not_found")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrDuplicateReference    = errors.New("duplicate_payment_reference")
	ErrVerificationFailed    = errors.New("verification_failed")
	ErrChargeNotSettled      = errors.New("charge_not_settled")
	ErrUnknownReference      = errors.New("unknown_reference")
	ErrUnknownCustomer       = errors.New("unknown_customer")
)
