package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/listing/domain"
)

type listingRepository struct{}

func New() domain.IListingRepository {
	return &listingRepository{}
}

func (r *listingRepository) Insert(ctx context.Context, db *gorm.DB, listing *domain.Listing) error {
	return db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Listing, error) {
	var listing domain.Listing
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM listings WHERE id = ? LIMIT 1`, id).
		Scan(&listing).Error
	if err != nil {
		return nil, err
	}
	if listing.ID == 0 {
		return nil, domain.ErrListingNotFound
	}
	return &listing, nil
}

func (r *listingRepository) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Listing, error) {
	var listing domain.Listing
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM listings WHERE slug = ? LIMIT 1`, slug).
		Scan(&listing).Error
	if err != nil {
		return nil, err
	}
	if listing.ID == 0 {
		return nil, domain.ErrListingNotFound
	}
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Listing, int64, error) {
	q := db.WithContext(ctx).Model(&domain.Listing{})
	if filter.AgentID != 0 {
		q = q.Where("agent_id = ?", filter.AgentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var listings []domain.Listing
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE listings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) CountBySlugPrefix(ctx context.Context, db *gorm.DB, prefix string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM listings WHERE slug LIKE ?`, prefix+"%").
		Scan(&count).Error
	return count, err
}
