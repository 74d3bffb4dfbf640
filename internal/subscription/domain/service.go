package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
)

type ActivateRequest struct {
	// AgentID binds the subscription directly when the verified
	// metadata names the agent. Zero means bind by email instead.
	AgentID    snowflake.ID
	AgentEmail string
	Tier       agentdomain.Tier
	Reference  string
	Provider   string
	Amount     int64
	Currency   string
	PaidAt     time.Time
}

type ISubscriptionService interface {
	// Activate reconciles a verified charge into an active
	// subscription. Redelivery of the same reference is a no-op
	// reported as ErrDuplicateReference. Any previously active
	// subscription for the agent is superseded in the same
	// transaction.
	Activate(ctx context.Context, req ActivateRequest) (*Subscription, error)

	// DisableByEmail cancels the agent's active subscription and
	// downgrades them to the free tier immediately.
	DisableByEmail(ctx context.Context, email string) error

	GetActiveForAgent(ctx context.Context, agentID snowflake.ID) (*Subscription, error)

	// ExpireDue downgrades agents whose subscription window has
	// elapsed. Returns how many subscriptions were expired.
	ExpireDue(ctx context.Context) (int, error)
}
