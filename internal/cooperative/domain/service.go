package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateCooperativeRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"target_amount" binding:"required"`
	Currency     string `json:"currency"`
}

type InitiateContributionRequest struct {
	CooperativeID snowflake.ID `json:"cooperative_id" binding:"required"`
	MemberID      snowflake.ID `json:"member_id" binding:"required"`
	Amount        int64        `json:"amount" binding:"required"`
	Provider      string       `json:"provider"`
}

type ICooperativeService interface {
	Create(ctx context.Context, req CreateCooperativeRequest) (*Cooperative, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Cooperative, error)
	List(ctx context.Context, limit, offset int) ([]Cooperative, int64, error)
	ListContributions(ctx context.Context, coopID snowflake.ID, limit, offset int) ([]Contribution, int64, error)

	// Initiate records a pending contribution and mints the payment
	// reference the member must pay with. The reference is how the
	// webhook later routes the charge back to this cooperative.
	Initiate(ctx context.Context, req InitiateContributionRequest) (*Contribution, error)

	// RecordVerified applies a verified charge to its pending
	// contribution: marks it verified, adds the verified amount to
	// the pooled total, and advances the cooperative status. A
	// reference with no pending contribution is ErrContributionNotFound;
	// one already verified is ErrDuplicateReference.
	RecordVerified(ctx context.Context, reference string, amount int64, paidAt time.Time) (*Cooperative, error)

	// Complete and Dissolve are operator actions. Both require the
	// cooperative to be past forming.
	Complete(ctx context.Context, id snowflake.ID) (*Cooperative, error)
	Dissolve(ctx context.Context, id snowflake.ID) (*Cooperative, error)
}
