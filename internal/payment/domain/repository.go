package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type IPaymentEventRepository interface {
	// InsertIgnoreDuplicate appends the event to the ledger. It
	// returns false, without error, when the (provider, dedupe key)
	// pair was already recorded.
	InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, event *PaymentEvent) (bool, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, event *PaymentEvent, at time.Time) error
	FindByProviderEventID(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*PaymentEvent, error)
	ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]PaymentEvent, error)
}
