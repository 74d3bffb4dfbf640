package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// IAgentRepository is the persistence boundary for agent profiles.
// Methods accept the *gorm.DB handle so callers can pass a transaction.
type IAgentRepository interface {
	Insert(ctx context.Context, db *gorm.DB, agent *Agent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Agent, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Agent, error)
	UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, tier Tier, maxListings int) error
	CountActiveListings(ctx context.Context, db *gorm.DB, agentID snowflake.ID) (int64, error)
}
