package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/cooperative/domain"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type cooperativeRepository struct{}

func NewCooperativeRepository() domain.ICooperativeRepository {
	return &cooperativeRepository{}
}

func (r *cooperativeRepository) Insert(ctx context.Context, db *gorm.DB, coop *domain.Cooperative) error {
	return db.WithContext(ctx).Create(coop).Error
}

func (r *cooperativeRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Cooperative, error) {
	var coop domain.Cooperative
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM cooperatives WHERE id = ? LIMIT 1`, id).
		Scan(&coop).Error
	if err != nil {
		return nil, err
	}
	if coop.ID == 0 {
		return nil, domain.ErrCooperativeNotFound
	}
	return &coop, nil
}

func (r *cooperativeRepository) List(ctx context.Context, db *gorm.DB, limit, offset int) ([]domain.Cooperative, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := db.WithContext(ctx).Model(&domain.Cooperative{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var coops []domain.Cooperative
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM cooperatives ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset).
		Scan(&coops).Error
	if err != nil {
		return nil, 0, err
	}
	return coops, total, nil
}

func (r *cooperativeRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*domain.Cooperative, error) {
	var coop domain.Cooperative
	err := db.LockForUpdate(tx.WithContext(ctx)).
		Where("id = ?", id).
		Limit(1).
		Find(&coop).Error
	if err != nil {
		return nil, err
	}
	if coop.ID == 0 {
		return nil, domain.ErrCooperativeNotFound
	}
	return &coop, nil
}

func (r *cooperativeRepository) ApplyContribution(ctx context.Context, tx *gorm.DB, id snowflake.ID, amount int64, status domain.Status) error {
	res := tx.WithContext(ctx).Exec(
		`UPDATE cooperatives SET total_contributed = total_contributed + ?, status = ?, updated_at = ? WHERE id = ?`,
		amount, status, time.Now().UTC(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCooperativeNotFound
	}
	return nil
}

func (r *cooperativeRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE cooperatives SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCooperativeNotFound
	}
	return nil
}

type contributionRepository struct{}

func NewContributionRepository() domain.IContributionRepository {
	return &contributionRepository{}
}

func (r *contributionRepository) Insert(ctx context.Context, db *gorm.DB, c *domain.Contribution) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *contributionRepository) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Contribution, error) {
	var c domain.Contribution
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM contributions WHERE payment_reference = ? LIMIT 1`, reference).
		Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, domain.ErrContributionNotFound
	}
	return &c, nil
}

func (r *contributionRepository) FindByReferenceForUpdate(ctx context.Context, tx *gorm.DB, reference string) (*domain.Contribution, error) {
	var c domain.Contribution
	err := db.LockForUpdate(tx.WithContext(ctx)).
		Where("payment_reference = ?", reference).
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, domain.ErrContributionNotFound
	}
	return &c, nil
}

func (r *contributionRepository) MarkVerified(ctx context.Context, tx *gorm.DB, id snowflake.ID, amount int64, verifiedAt time.Time) error {
	res := tx.WithContext(ctx).Exec(
		`UPDATE contributions SET status = ?, amount = ?, verified_at = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.ContributionVerified, amount, verifiedAt, time.Now().UTC(), id, domain.ContributionPending,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrDuplicateReference
	}
	return nil
}

func (r *contributionRepository) ListByCooperative(ctx context.Context, db *gorm.DB, coopID snowflake.ID, limit, offset int) ([]domain.Contribution, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	err := db.WithContext(ctx).Model(&domain.Contribution{}).
		Where("cooperative_id = ?", coopID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var contributions []domain.Contribution
	err = db.WithContext(ctx).
		Raw(`SELECT * FROM contributions WHERE cooperative_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
			coopID, limit, offset).
		Scan(&contributions).Error
	if err != nil {
		return nil, 0, err
	}
	return contributions, total, nil
}
