package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateAgentRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`
	Agency string `json:"agency"`
}

type IAgentService interface {
	Create(ctx context.Context, req CreateAgentRequest) (*Agent, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Agent, error)
	GetByEmail(ctx context.Context, email string) (*Agent, error)

	// ApplyTier moves the agent onto the given tier and refreshes the
	// cached listing quota. Reconcilers call this after a verified
	// payment event, so it must be idempotent.
	ApplyTier(ctx context.Context, id snowflake.ID, tier Tier) (*Agent, error)

	// RemainingQuota reports how many more listings the agent may
	// publish. UnlimitedListings means no cap.
	RemainingQuota(ctx context.Context, id snowflake.ID) (int, error)
}
