package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateListingRequest struct {
	AgentID     snowflake.ID `json:"agent_id" binding:"required"`
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	PriceAmount int64        `json:"price_amount" binding:"required"`
	Currency    string       `json:"currency"`
	Location    string       `json:"location"`
}

type IListingService interface {
	// Create publishes a new listing, enforcing the owning agent's
	// tier quota before insert.
	Create(ctx context.Context, req CreateListingRequest) (*Listing, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Listing, error)
	GetBySlug(ctx context.Context, slug string) (*Listing, error)
	List(ctx context.Context, filter ListFilter) ([]Listing, int64, error)
	Archive(ctx context.Context, id snowflake.ID) error
}
