package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	AgentID snowflake.ID
	Status  Status
	Limit   int
	Offset  int
}

type IListingRepository interface {
	Insert(ctx context.Context, db *gorm.DB, listing *Listing) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Listing, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Listing, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Listing, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
	CountBySlugPrefix(ctx context.Context, db *gorm.DB, prefix string) (int64, error)
}
