package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ICooperativeRepository interface {
	Insert(ctx context.Context, db *gorm.DB, coop *Cooperative) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Cooperative, error)
	List(ctx context.Context, db *gorm.DB, limit, offset int) ([]Cooperative, int64, error)

	// FindByIDForUpdate locks the cooperative row inside the caller's
	// transaction so total and status move atomically.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Cooperative, error)
	ApplyContribution(ctx context.Context, tx *gorm.DB, id snowflake.ID, amount int64, status Status) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
}

type IContributionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, c *Contribution) error
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Contribution, error)
	FindByReferenceForUpdate(ctx context.Context, tx *gorm.DB, reference string) (*Contribution, error)
	MarkVerified(ctx context.Context, tx *gorm.DB, id snowflake.ID, amount int64, verifiedAt time.Time) error
	ListByCooperative(ctx context.Context, db *gorm.DB, coopID snowflake.ID, limit, offset int) ([]Contribution, int64, error)
}
