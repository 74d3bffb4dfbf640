// Package domain contains property listing models owned by agents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

type Listing struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	AgentID     snowflake.ID `json:"agent_id" gorm:"not null;index"`
	Title       string       `json:"title" gorm:"type:text;not null"`
	Slug        string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Description string       `json:"description" gorm:"type:text"`
	PriceAmount int64        `json:"price_amount" gorm:"not null"`
	Currency    string       `json:"currency" gorm:"type:text;not null"`
	Location    string       `json:"location" gorm:"type:text"`
	Status      Status       `json:"status" gorm:"type:text;not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Listing) TableName() string { return "listings" }
