package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ISubscriptionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Subscription, error)
	FindActiveByAgent(ctx context.Context, db *gorm.DB, agentID snowflake.ID) (*Subscription, error)

	// FindActiveByAgentForUpdate locks the agent's active row inside
	// the caller's transaction so concurrent activations serialize.
	FindActiveByAgentForUpdate(ctx context.Context, tx *gorm.DB, agentID snowflake.ID) (*Subscription, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error

	// FindDue returns active subscriptions whose window has elapsed.
	FindDue(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]Subscription, error)
}
