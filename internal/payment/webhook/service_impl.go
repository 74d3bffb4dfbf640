// Package webhook runs the payment event pipeline: verify the
// signature, parse, dedupe against the event ledger, re-verify the
// charge with the provider, then hand off to a reconciler.
package webhook

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	"github.com/nyumbahq/nyumba/internal/clock"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
	"github.com/nyumbahq/nyumba/internal/observability/metrics"
	"github.com/nyumbahq/nyumba/internal/payment/domain"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

const (
	OutcomeProcessed  = "processed"
	OutcomeDuplicate  = "duplicate"
	OutcomeIgnored    = "ignored"
	OutcomeInvalid    = "invalid"
	OutcomeUnverified = "unverified"
	OutcomeUnmatched  = "unmatched"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Node          *snowflake.Node
	Clock         clock.Clock
	Registry      domain.IRegistry
	Verifier      domain.IVerifier
	Events        domain.IPaymentEventRepository
	Subscriptions subdomain.ISubscriptionService
	Cooperatives  coopdomain.ICooperativeService
	Metrics       *metrics.Metrics `optional:"true"`
	Log           *zap.Logger
}

type webhookService struct {
	db            *gorm.DB
	node          *snowflake.Node
	clock         clock.Clock
	registry      domain.IRegistry
	verifier      domain.IVerifier
	events        domain.IPaymentEventRepository
	subscriptions subdomain.ISubscriptionService
	cooperatives  coopdomain.ICooperativeService
	metrics       *metrics.Metrics
	log           *zap.Logger
}

func New(p Params) domain.IWebhookService {
	return &webhookService{
		db:            p.DB,
		node:          p.Node,
		clock:         p.Clock,
		registry:      p.Registry,
		verifier:      p.Verifier,
		events:        p.Events,
		subscriptions: p.Subscriptions,
		cooperatives:  p.Cooperatives,
		metrics:       p.Metrics,
		log:           p.Log.Named("payment.webhook"),
	}
}

func (s *webhookService) Ingest(ctx context.Context, provider, signature string, body []byte) (*domain.IngestResult, error) {
	adapter, err := s.registry.Adapter(provider)
	if err != nil {
		return nil, err
	}

	if err := adapter.VerifySignature(signature, body); err != nil {
		s.log.Warn("signature rejected", zap.String("provider", adapter.Provider()))
		return nil, err
	}

	event, err := adapter.Parse(body)
	if err != nil {
		// Post-signature failures are acknowledged so the provider
		// stops redelivering what we will never accept.
		outcome := OutcomeInvalid
		if errors.Is(err, domain.ErrEventIgnored) {
			outcome = OutcomeIgnored
		} else {
			s.log.Warn("payload rejected", zap.String("provider", adapter.Provider()), zap.Error(err))
		}
		s.metrics.RecordWebhookEvent(ctx, adapter.Provider(), outcome)
		return &domain.IngestResult{Provider: adapter.Provider(), Outcome: outcome}, nil
	}

	intent := event.Intent()
	result := &domain.IngestResult{
		Provider: event.Provider,
		Kind:     event.Kind,
		Intent:   intent,
	}
	s.metrics.RecordWebhookEvent(ctx, event.Provider, string(event.Kind))

	ledger := &domain.PaymentEvent{
		ID:              s.node.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.DedupeKey,
		EventType:       string(event.Kind),
		Reference:       event.Reference,
		Intent:          intent,
		Payload:         []byte(event.Raw),
		ReceivedAt:      s.clock.Now(),
	}
	inserted, err := s.events.InsertIgnoreDuplicate(ctx, s.db, ledger)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := s.events.FindByProviderEventID(ctx, s.db, event.Provider, event.DedupeKey)
		if err != nil {
			return nil, err
		}
		// Only fully processed deliveries count as duplicates. A row
		// without processed_at means an earlier attempt died before
		// reconciling, so this redelivery is the retry.
		if existing.ProcessedAt != nil {
			s.log.Info("duplicate delivery",
				zap.String("provider", event.Provider),
				zap.String("dedupe_key", event.DedupeKey),
			)
			result.Outcome = OutcomeDuplicate
			s.metrics.RecordReconciliation(ctx, string(intent), OutcomeDuplicate)
			return result, nil
		}
	}

	outcome, err := s.reconcile(ctx, event, intent)
	if err != nil {
		return nil, err
	}
	result.Outcome = outcome
	s.metrics.RecordReconciliation(ctx, string(intent), outcome)

	// Leave unverified events unprocessed so a redelivery retries the
	// provider lookup.
	if outcome != OutcomeUnverified {
		if err := s.events.MarkProcessed(ctx, s.db, ledger, s.clock.Now()); err != nil {
			s.log.Warn("mark processed failed",
				zap.String("dedupe_key", event.DedupeKey),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

func (s *webhookService) reconcile(ctx context.Context, event *domain.Event, intent domain.Intent) (string, error) {
	switch event.Kind {
	case domain.EventChargeSuccess:
		return s.reconcileCharge(ctx, event, intent)
	case domain.EventSubscriptionDisable:
		return s.reconcileDisable(ctx, event)
	default:
		return OutcomeIgnored, nil
	}
}

func (s *webhookService) reconcileCharge(ctx context.Context, event *domain.Event, intent domain.Intent) (string, error) {
	charge, err := s.verifier.VerifyTransaction(ctx, event.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownReference) {
			s.metrics.RecordVerifierCall(ctx, event.Provider, "unknown_reference")
			s.log.Warn("reference unknown to provider", zap.String("reference", event.Reference))
			return OutcomeUnmatched, nil
		}
		s.metrics.RecordVerifierCall(ctx, event.Provider, "error")
		s.log.Warn("transaction verify failed",
			zap.String("reference", event.Reference),
			zap.Error(err),
		)
		return OutcomeUnverified, nil
	}
	s.metrics.RecordVerifierCall(ctx, event.Provider, "ok")

	if !charge.Paid() {
		s.log.Info("charge not settled",
			zap.String("reference", event.Reference),
			zap.String("status", charge.Status),
		)
		return OutcomeIgnored, nil
	}

	// When the webhook copy carried no routing signal, classify from
	// the metadata the provider returned on verification.
	if intent == domain.IntentUnknown && len(charge.Metadata) > 0 {
		verified := domain.Event{Reference: event.Reference, Metadata: charge.Metadata}
		intent = verified.Intent()
	}

	switch intent {
	case domain.IntentSubscription:
		return s.activateSubscription(ctx, event, charge)
	case domain.IntentContribution:
		return s.recordContribution(ctx, event, charge)
	default:
		s.log.Warn("charge matches no reconciler", zap.String("reference", event.Reference))
		return OutcomeUnmatched, nil
	}
}

func (s *webhookService) activateSubscription(ctx context.Context, event *domain.Event, charge *domain.Charge) (string, error) {
	// The verified transaction's metadata is authoritative; the webhook
	// copy only fills gaps the provider API omitted.
	tier, ok := agentdomain.ParseTier(chargeMeta(event, charge, domain.MetadataTier))
	if !ok {
		s.log.Warn("charge carries no usable tier", zap.String("reference", event.Reference))
		return OutcomeUnmatched, nil
	}

	var agentID snowflake.ID
	if raw := chargeMeta(event, charge, domain.MetadataAgentID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			s.log.Warn("charge carries unparseable agent id",
				zap.String("reference", event.Reference),
				zap.String("agent_profile_id", raw),
			)
		} else {
			agentID = id
		}
	}

	email := charge.CustomerEmail
	if email == "" {
		email = event.CustomerEmail
	}

	_, err := s.subscriptions.Activate(ctx, subdomain.ActivateRequest{
		AgentID:    agentID,
		AgentEmail: email,
		Tier:       tier,
		Reference:  charge.Reference,
		Provider:   event.Provider,
		Amount:     charge.Amount,
		Currency:   charge.Currency,
		PaidAt:     charge.PaidAt,
	})
	switch {
	case err == nil:
		return OutcomeProcessed, nil
	case errors.Is(err, subdomain.ErrDuplicateReference):
		return OutcomeDuplicate, nil
	case errors.Is(err, agentdomain.ErrAgentNotFound):
		s.log.Warn("charge for unknown agent", zap.String("reference", event.Reference))
		return OutcomeUnmatched, nil
	default:
		return "", err
	}
}

// chargeMeta reads a metadata key from the verified charge first,
// falling back to the webhook payload.
func chargeMeta(event *domain.Event, charge *domain.Charge, key string) string {
	if v := charge.Metadata[key]; v != "" {
		return v
	}
	return event.Metadata[key]
}

func (s *webhookService) recordContribution(ctx context.Context, event *domain.Event, charge *domain.Charge) (string, error) {
	_, err := s.cooperatives.RecordVerified(ctx, charge.Reference, charge.Amount, charge.PaidAt)
	switch {
	case err == nil:
		return OutcomeProcessed, nil
	case errors.Is(err, coopdomain.ErrDuplicateReference):
		return OutcomeDuplicate, nil
	case errors.Is(err, coopdomain.ErrContributionNotFound):
		s.log.Warn("charge matches no pending contribution", zap.String("reference", event.Reference))
		return OutcomeUnmatched, nil
	default:
		return "", err
	}
}

func (s *webhookService) reconcileDisable(ctx context.Context, event *domain.Event) (string, error) {
	err := s.subscriptions.DisableByEmail(ctx, event.CustomerEmail)
	switch {
	case err == nil:
		return OutcomeProcessed, nil
	case errors.Is(err, agentdomain.ErrAgentNotFound),
		errors.Is(err, subdomain.ErrSubscriptionNotFound):
		return OutcomeUnmatched, nil
	default:
		return "", err
	}
}
