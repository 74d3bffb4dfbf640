package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/subscription/domain"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type subscriptionRepository struct{}

func New() domain.ISubscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM subscriptions WHERE payment_reference = ? LIMIT 1`, reference).
		Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindActiveByAgent(ctx context.Context, db *gorm.DB, agentID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM subscriptions WHERE agent_id = ? AND status = ? LIMIT 1`, agentID, domain.StatusActive).
		Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindActiveByAgentForUpdate(ctx context.Context, tx *gorm.DB, agentID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.LockForUpdate(tx.WithContext(ctx)).
		Where("agent_id = ? AND status = ?", agentID, domain.StatusActive).
		Limit(1).
		Find(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, domain.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE subscriptions SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) FindDue(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]domain.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	var subs []domain.Subscription
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM subscriptions WHERE status = ? AND ends_at <= ? ORDER BY ends_at ASC LIMIT ?`,
			domain.StatusActive, asOf, limit).
		Scan(&subs).Error
	return subs, err
}
