// Package domain contains the normalized payment event model shared
// by provider adapters, the webhook ingest pipeline, and the
// reconcilers.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventKind is the provider-neutral event type.
type EventKind string

const (
	EventChargeSuccess       EventKind = "charge.success"
	EventSubscriptionCreate  EventKind = "subscription.create"
	EventSubscriptionDisable EventKind = "subscription.disable"
)

// Intent says which reconciler a charge belongs to.
type Intent string

const (
	IntentSubscription Intent = "subscription"
	IntentContribution Intent = "contribution"
	IntentUnknown      Intent = "unknown"
)

// Event is a webhook payload normalized by a provider adapter.
type Event struct {
	Provider string
	// DedupeKey uniquely identifies one logical delivery. Providers
	// without native event ids get a deterministic key derived from
	// the event type and reference.
	DedupeKey     string
	Kind          EventKind
	Reference     string
	Amount        int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
	PaidAt        time.Time
	Raw           json.RawMessage
}

// MetadataAgentID is the metadata key binding a charge to an agent
// profile, and MetadataTier the key naming the purchased tier. Both
// are set at checkout initiation and echoed back by the provider.
const (
	MetadataAgentID = "agent_profile_id"
	MetadataTier    = "tier"
)

// Intent classifies the event from its metadata, falling back to the
// reference prefix minted at initiation time. Merchants tag checkouts
// with either a type or a purpose key; both spellings are honored.
func (e *Event) Intent() Intent {
	switch strings.ToLower(e.Metadata["type"]) {
	case "cooperative_contribution":
		return IntentContribution
	case "subscription":
		return IntentSubscription
	}
	switch strings.ToLower(e.Metadata["purpose"]) {
	case "contribution":
		return IntentContribution
	case "subscription":
		return IntentSubscription
	}
	if strings.HasPrefix(e.Reference, "coop_") {
		return IntentContribution
	}
	if _, ok := e.Metadata["tier"]; ok {
		return IntentSubscription
	}
	if strings.HasPrefix(e.Reference, "sub_") {
		return IntentSubscription
	}
	return IntentUnknown
}

// Charge is the provider's authoritative view of a transaction,
// fetched over its API after signature verification.
type Charge struct {
	Reference     string
	Status        string
	Amount        int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
	PaidAt        time.Time
}

// Paid reports whether the provider considers the charge settled.
func (c *Charge) Paid() bool {
	return strings.EqualFold(c.Status, "success")
}

// PaymentEvent is the persisted ledger row backing idempotency. The
// unique (provider, provider_event_id) index makes re-inserting a
// redelivered event a no-op.
type PaymentEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Reference       string         `json:"reference" gorm:"type:text"`
	Intent          Intent         `json:"intent" gorm:"type:text"`
	Payload         datatypes.JSON `json:"payload" gorm:"not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (PaymentEvent) TableName() string { return "payment_events" }
