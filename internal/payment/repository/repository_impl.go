package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nyumbahq/nyumba/internal/payment/domain"
)

type paymentEventRepository struct{}

func New() domain.IPaymentEventRepository {
	return &paymentEventRepository{}
}

// InsertIgnoreDuplicate relies on ux_payment_events_provider_event:
// ON CONFLICT DO NOTHING makes the first delivery win and every
// redelivery report inserted=false.
func (r *paymentEventRepository) InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, event *domain.PaymentEvent) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentEventRepository) MarkProcessed(ctx context.Context, db *gorm.DB, event *domain.PaymentEvent, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_events SET processed_at = ? WHERE provider = ? AND provider_event_id = ?`,
		at, event.Provider, event.ProviderEventID,
	).Error
}

func (r *paymentEventRepository) FindByProviderEventID(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.PaymentEvent, error) {
	var event domain.PaymentEvent
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM payment_events WHERE provider = ? AND provider_event_id = ? LIMIT 1`,
			provider, providerEventID).
		Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &event, nil
}

func (r *paymentEventRepository) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]domain.PaymentEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var events []domain.PaymentEvent
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM payment_events ORDER BY received_at DESC LIMIT ?`, limit).
		Scan(&events).Error
	return events, err
}
