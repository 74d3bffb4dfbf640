package domain

import "errors"

var (
	ErrAgentNotFound  = errors.New("agent_not_found")
	ErrDuplicateEmail = errors.New("duplicate_email")
	ErrInvalidAgent   = errors.New("invalid_agent")
	ErrInvalidTier    = errors.New("invalid_tier")
)
