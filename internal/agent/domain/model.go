// Package domain contains the agent profile model and tier quota rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tier is a named subscription level determining an agent's listing quota.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// UnlimitedListings marks a quota with no upper bound.
const UnlimitedListings = -1

// MaxListingsForTier is the single source of truth for listing quotas.
// The agents.max_listings column is a cache of this function, never
// authoritative on its own.
func MaxListingsForTier(tier Tier) int {
	switch tier {
	case TierBasic:
		return 20
	case TierPro:
		return 100
	case TierEnterprise:
		return UnlimitedListings
	default:
		return 3
	}
}

// ParseTier maps a provider-supplied tier string to a known tier.
func ParseTier(raw string) (Tier, bool) {
	switch Tier(raw) {
	case TierFree, TierBasic, TierPro, TierEnterprise:
		return Tier(raw), true
	default:
		return "", false
	}
}

// Agent is a marketplace agent profile.
type Agent struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Email       string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Phone       string       `json:"phone" gorm:"type:text"`
	Agency      string       `json:"agency" gorm:"type:text"`
	Tier        Tier         `json:"tier" gorm:"type:text;not null"`
	MaxListings int          `json:"max_listings" gorm:"not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Agent) TableName() string { return "agents" }
