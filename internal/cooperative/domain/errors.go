package domain

import "errors"

var (
	ErrCooperativeNotFound  = errors.New("cooperative_not_found")
	ErrContributionNotFound = errors.New("contribution_not_found")
	ErrDuplicateReference   = errors.New("duplicate_payment_reference")
	ErrInvalidCooperative   = errors.New("invalid_cooperative")
	ErrInvalidContribution  = errors.New("invalid_contribution")
	ErrInvalidTransition    = errors.New("invalid_status_transition")
)
