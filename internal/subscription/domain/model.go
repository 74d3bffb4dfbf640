// Package domain contains agent subscription models and the
// reconciliation contracts applied to verified payment events.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusSuperseded Status = "superseded"
	StatusExpired    Status = "expired"
	StatusCancelled  Status = "cancelled"
)

// Window is how long a paid subscription stays active before the
// expiry sweep downgrades the agent.
const Window = 30 * 24 * time.Hour

type Subscription struct {
	ID               snowflake.ID     `json:"id" gorm:"primaryKey"`
	AgentID          snowflake.ID     `json:"agent_id" gorm:"not null;index"`
	Tier             agentdomain.Tier `json:"tier" gorm:"type:text;not null"`
	PaymentReference string           `json:"payment_reference" gorm:"type:text;not null;uniqueIndex"`
	Provider         string           `json:"provider" gorm:"type:text;not null"`
	Amount           int64            `json:"amount" gorm:"not null"`
	Currency         string           `json:"currency" gorm:"type:text;not null"`
	Status           Status           `json:"status" gorm:"type:text;not null"`
	StartsAt         time.Time        `json:"starts_at" gorm:"not null"`
	EndsAt           time.Time        `json:"ends_at" gorm:"not null"`
	CreatedAt        time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"not null"`
}

func (Subscription) TableName() string { return "subscriptions" }
