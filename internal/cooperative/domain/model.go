// Package domain contains cooperative pooled-fund models. A
// cooperative collects member contributions toward a property
// purchase target; its lifecycle is driven by verified payments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	// StatusForming is the initial state before any verified
	// contribution lands.
	StatusForming Status = "forming"
	// StatusActive means at least one contribution has been verified.
	StatusActive Status = "active"
	// StatusTargetReached means the pooled total met the target. The
	// cooperative stays here until an operator completes or dissolves
	// it.
	StatusTargetReached Status = "target_reached"
	StatusCompleted     Status = "completed"
	StatusDissolved     Status = "dissolved"
)

type Cooperative struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	Name             string       `json:"name" gorm:"type:text;not null"`
	Description      string       `json:"description" gorm:"type:text"`
	TargetAmount     int64        `json:"target_amount" gorm:"not null"`
	TotalContributed int64        `json:"total_contributed" gorm:"not null"`
	Currency         string       `json:"currency" gorm:"type:text;not null"`
	Status           Status       `json:"status" gorm:"type:text;not null"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null"`
}

func (Cooperative) TableName() string { return "cooperatives" }

type ContributionStatus string

const (
	ContributionPending  ContributionStatus = "pending"
	ContributionVerified ContributionStatus = "verified"
)

type Contribution struct {
	ID               snowflake.ID       `json:"id" gorm:"primaryKey"`
	CooperativeID    snowflake.ID       `json:"cooperative_id" gorm:"not null;index"`
	MemberID         snowflake.ID       `json:"member_id" gorm:"not null"`
	Amount           int64              `json:"amount" gorm:"not null"`
	Currency         string             `json:"currency" gorm:"type:text;not null"`
	PaymentReference string             `json:"payment_reference" gorm:"type:text;not null;uniqueIndex"`
	Provider         string             `json:"provider" gorm:"type:text;not null"`
	Status           ContributionStatus `json:"status" gorm:"type:text;not null"`
	VerifiedAt       *time.Time         `json:"verified_at"`
	CreatedAt        time.Time          `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time          `json:"updated_at" gorm:"not null"`
}

func (Contribution) TableName() string { return "contributions" }
