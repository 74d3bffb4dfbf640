package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	agentrepo "github.com/nyumbahq/nyumba/internal/agent/repository"
	agentservice "github.com/nyumbahq/nyumba/internal/agent/service"
	"github.com/nyumbahq/nyumba/internal/clock"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
	cooprepo "github.com/nyumbahq/nyumba/internal/cooperative/repository"
	coopservice "github.com/nyumbahq/nyumba/internal/cooperative/service"
	"github.com/nyumbahq/nyumba/internal/payment/adapters"
	"github.com/nyumbahq/nyumba/internal/payment/adapters/paystack"
	"github.com/nyumbahq/nyumba/internal/payment/domain"
	paymentrepo "github.com/nyumbahq/nyumba/internal/payment/repository"
	"github.com/nyumbahq/nyumba/internal/providers/notify"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
	subrepo "github.com/nyumbahq/nyumba/internal/subscription/repository"
	subservice "github.com/nyumbahq/nyumba/internal/subscription/service"
)

const testSecret = "sk_test_webhook_secret"

const testSchema = `
CREATE TABLE agents (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	agency TEXT,
	tier TEXT NOT NULL,
	max_listings INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX ux_agents_email ON agents (LOWER(email));
CREATE TABLE subscriptions (
	id INTEGER PRIMARY KEY,
	agent_id INTEGER NOT NULL,
	tier TEXT NOT NULL,
	payment_reference TEXT NOT NULL UNIQUE,
	provider TEXT NOT NULL,
	amount INTEGER NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL,
	starts_at DATETIME NOT NULL,
	ends_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE listings (
	id INTEGER PRIMARY KEY,
	agent_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT,
	price_amount INTEGER NOT NULL,
	currency TEXT NOT NULL,
	location TEXT,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE cooperatives (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	target_amount INTEGER NOT NULL,
	total_contributed INTEGER NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'NGN',
	status TEXT NOT NULL DEFAULT 'forming',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE contributions (
	id INTEGER PRIMARY KEY,
	cooperative_id INTEGER NOT NULL,
	member_id INTEGER NOT NULL,
	amount INTEGER NOT NULL,
	currency TEXT NOT NULL DEFAULT 'NGN',
	payment_reference TEXT NOT NULL UNIQUE,
	provider TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	verified_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE payment_events (
	id INTEGER PRIMARY KEY,
	provider TEXT NOT NULL,
	provider_event_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	reference TEXT,
	intent TEXT,
	payload TEXT NOT NULL,
	received_at DATETIME NOT NULL,
	processed_at DATETIME
);
CREATE UNIQUE INDEX ux_payment_events_provider_event ON payment_events (provider, provider_event_id);
`

// fakeVerifier answers from a fixture map instead of the provider API.
type fakeVerifier struct {
	charges map[string]*domain.Charge
	err     error
}

func (f *fakeVerifier) VerifyTransaction(ctx context.Context, reference string) (*domain.Charge, error) {
	if f.err != nil {
		return nil, f.err
	}
	charge, ok := f.charges[reference]
	if !ok {
		return nil, domain.ErrUnknownReference
	}
	return charge, nil
}

type env struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	adapter  *paystack.Adapter
	verifier *fakeVerifier
	agents   agentdomain.IAgentService
	subs     subdomain.ISubscriptionService
	coops    coopdomain.ICooperativeService
	ingest   domain.IWebhookService
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	agents := agentservice.New(agentservice.Params{
		DB: db, Node: node, Clock: fake, Repo: agentrepo.New(), Log: log,
	})
	subs := subservice.New(subservice.Params{
		DB: db, Node: node, Clock: fake, Repo: subrepo.New(),
		Agents: agents, Notifier: notify.NoOp{}, Log: log,
	})
	coops := coopservice.New(coopservice.Params{
		DB: db, Node: node, Clock: fake,
		Cooperatives:  cooprepo.NewCooperativeRepository(),
		Contributions: cooprepo.NewContributionRepository(),
		Log:           log,
	})

	adapter := paystack.NewAdapter(testSecret)
	registry := adapters.NewRegistry(adapters.RegistryParams{
		Adapters: []domain.IAdapter{adapter},
	})
	verifier := &fakeVerifier{charges: map[string]*domain.Charge{}}

	ingest := New(Params{
		DB: db, Node: node, Clock: fake,
		Registry:      registry,
		Verifier:      verifier,
		Events:        paymentrepo.New(),
		Subscriptions: subs,
		Cooperatives:  coops,
		Log:           log,
	})

	return &env{
		db: db, clock: fake, adapter: adapter, verifier: verifier,
		agents: agents, subs: subs, coops: coops, ingest: ingest,
	}
}

func (e *env) newAgent(t *testing.T, email string) *agentdomain.Agent {
	t.Helper()
	agent, err := e.agents.Create(context.Background(), agentdomain.CreateAgentRequest{
		Name:  "Test Agent",
		Email: email,
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func (e *env) settle(reference string, amount int64, email string) {
	e.verifier.charges[reference] = &domain.Charge{
		Reference:     reference,
		Status:        "success",
		Amount:        amount,
		Currency:      "NGN",
		CustomerEmail: email,
		PaidAt:        e.clock.Now(),
	}
}

func chargeBody(reference, email, tier string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"amount": %d,
			"currency": "NGN",
			"customer": {"email": %q},
			"metadata": {"purpose": "subscription", "tier": %q}
		}
	}`, reference, amount, email, tier))
}

func (e *env) deliver(t *testing.T, body []byte) *domain.IngestResult {
	t.Helper()
	result, err := e.ingest.Ingest(context.Background(), "paystack", e.adapter.Sign(body), body)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return result
}

func TestIngestRejectsBadSignature(t *testing.T) {
	e := setup(t)
	body := chargeBody("sub_ref_1", "agent@example.com", "pro", 250000)

	_, err := e.ingest.Ingest(context.Background(), "paystack", "deadbeef", body)
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	var count int64
	e.db.Model(&domain.PaymentEvent{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected delivery reached the ledger, count = %d", count)
	}
}

func TestIngestUnknownProvider(t *testing.T) {
	e := setup(t)
	body := chargeBody("sub_ref_1", "agent@example.com", "pro", 250000)

	_, err := e.ingest.Ingest(context.Background(), "flutterwave", e.adapter.Sign(body), body)
	if !errors.Is(err, domain.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestIngestSubscriptionCharge(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")
	e.settle("sub_ref_1", 250000, "agent@example.com")

	result := e.deliver(t, chargeBody("sub_ref_1", "agent@example.com", "pro", 250000))
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %q, want processed", result.Outcome)
	}
	if result.Intent != domain.IntentSubscription {
		t.Fatalf("intent = %q", result.Intent)
	}

	got, err := e.agents.GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Tier != agentdomain.TierPro {
		t.Fatalf("tier = %q, want pro", got.Tier)
	}
}

func TestIngestBindsAgentFromVerifiedMetadata(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	// The charge was paid from a different mailbox; the verified
	// metadata names the profile the subscription belongs to.
	e.verifier.charges["sub_ref_1"] = &domain.Charge{
		Reference:     "sub_ref_1",
		Status:        "success",
		Amount:        50000,
		Currency:      "NGN",
		CustomerEmail: "payer@example.com",
		Metadata: map[string]string{
			"type":             "subscription",
			"agent_profile_id": agent.ID.String(),
			"tier":             "basic",
		},
		PaidAt: e.clock.Now(),
	}

	body := []byte(fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": "sub_ref_1",
			"amount": 50000,
			"currency": "NGN",
			"customer": {"email": "payer@example.com"},
			"metadata": {"type": "subscription", "agent_profile_id": %q, "tier": "basic"}
		}
	}`, agent.ID.String()))

	result := e.deliver(t, body)
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %q, want processed", result.Outcome)
	}
	if result.Intent != domain.IntentSubscription {
		t.Fatalf("intent = %q", result.Intent)
	}

	sub, err := e.subs.GetActiveForAgent(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if sub.PaymentReference != "sub_ref_1" {
		t.Fatalf("reference = %q", sub.PaymentReference)
	}
	got, _ := e.agents.GetByID(context.Background(), agent.ID)
	if got.Tier != agentdomain.TierBasic {
		t.Fatalf("tier = %q, want basic", got.Tier)
	}
}

func TestIngestConcurrentDeliveries(t *testing.T) {
	e := setup(t)
	e.newAgent(t, "agent@example.com")
	e.settle("sub_ref_1", 250000, "agent@example.com")
	body := chargeBody("sub_ref_1", "agent@example.com", "pro", 250000)

	const deliveries = 8
	outcomes := make(chan string, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := e.ingest.Ingest(context.Background(), "paystack", e.adapter.Sign(body), body)
			if err != nil {
				t.Errorf("ingest: %v", err)
				return
			}
			outcomes <- result.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	processed := 0
	for outcome := range outcomes {
		if outcome == OutcomeProcessed {
			processed++
		}
	}
	if processed != 1 {
		t.Fatalf("processed %d deliveries, want exactly 1", processed)
	}

	var events, subs int64
	e.db.Model(&domain.PaymentEvent{}).Count(&events)
	e.db.Table("subscriptions").Count(&subs)
	if events != 1 {
		t.Fatalf("ledger rows = %d, want 1", events)
	}
	if subs != 1 {
		t.Fatalf("subscription rows = %d, want 1", subs)
	}
}

func TestIngestDuplicateDelivery(t *testing.T) {
	e := setup(t)
	e.newAgent(t, "agent@example.com")
	e.settle("sub_ref_1", 250000, "agent@example.com")
	body := chargeBody("sub_ref_1", "agent@example.com", "pro", 250000)

	if result := e.deliver(t, body); result.Outcome != OutcomeProcessed {
		t.Fatalf("first outcome = %q", result.Outcome)
	}
	if result := e.deliver(t, body); result.Outcome != OutcomeDuplicate {
		t.Fatalf("second outcome = %q, want duplicate", result.Outcome)
	}

	var count int64
	e.db.Table("subscriptions").Count(&count)
	if count != 1 {
		t.Fatalf("subscription count = %d, want 1", count)
	}
}

func TestIngestUsesVerifiedAmount(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")
	// Webhook claims a different amount than the provider's ledger.
	e.settle("sub_ref_1", 250000, "agent@example.com")

	result := e.deliver(t, chargeBody("sub_ref_1", "agent@example.com", "pro", 999999))
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %q", result.Outcome)
	}

	sub, err := e.subs.GetActiveForAgent(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if sub.Amount != 250000 {
		t.Fatalf("amount = %d, want verified 250000", sub.Amount)
	}
}

func TestIngestContribution(t *testing.T) {
	e := setup(t)

	coop, err := e.coops.Create(context.Background(), coopdomain.CreateCooperativeRequest{
		Name:         "Lekki Land Pool",
		TargetAmount: 1000000,
	})
	if err != nil {
		t.Fatalf("create cooperative: %v", err)
	}
	pending, err := e.coops.Initiate(context.Background(), coopdomain.InitiateContributionRequest{
		CooperativeID: coop.ID,
		MemberID:      snowflake.ID(7),
		Amount:        100000,
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	e.settle(pending.PaymentReference, 100000, "member@example.com")

	body := []byte(fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"amount": 100000,
			"currency": "NGN",
			"customer": {"email": "member@example.com"}
		}
	}`, pending.PaymentReference))

	result := e.deliver(t, body)
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %q", result.Outcome)
	}
	if result.Intent != domain.IntentContribution {
		t.Fatalf("intent = %q", result.Intent)
	}

	got, err := e.coops.GetByID(context.Background(), coop.ID)
	if err != nil {
		t.Fatalf("get cooperative: %v", err)
	}
	if got.Status != coopdomain.StatusActive || got.TotalContributed != 100000 {
		t.Fatalf("coop = %+v", got)
	}

	// Redelivery must not double count.
	if result := e.deliver(t, body); result.Outcome != OutcomeDuplicate {
		t.Fatalf("redelivery outcome = %q", result.Outcome)
	}
	got, _ = e.coops.GetByID(context.Background(), coop.ID)
	if got.TotalContributed != 100000 {
		t.Fatalf("total = %d after redelivery", got.TotalContributed)
	}
}

func TestIngestIgnoresUnhandledEvent(t *testing.T) {
	e := setup(t)
	body := []byte(`{"event":"transfer.success","data":{"reference":"tr_1"}}`)

	result := e.deliver(t, body)
	if result.Outcome != OutcomeIgnored {
		t.Fatalf("outcome = %q, want ignored", result.Outcome)
	}
}

func TestIngestUnverifiedIsRetriable(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")
	body := chargeBody("sub_ref_1", "agent@example.com", "pro", 250000)

	e.verifier.err = domain.ErrVerificationFailed
	if result := e.deliver(t, body); result.Outcome != OutcomeUnverified {
		t.Fatalf("outcome = %q, want unverified", result.Outcome)
	}

	// Provider comes back; the redelivery completes reconciliation
	// instead of reporting a duplicate.
	e.verifier.err = nil
	e.settle("sub_ref_1", 250000, "agent@example.com")
	if result := e.deliver(t, body); result.Outcome != OutcomeProcessed {
		t.Fatalf("retry outcome = %q, want processed", result.Outcome)
	}

	got, _ := e.agents.GetByID(context.Background(), agent.ID)
	if got.Tier != agentdomain.TierPro {
		t.Fatalf("tier = %q after retry", got.Tier)
	}
}

func TestIngestUnsettledCharge(t *testing.T) {
	e := setup(t)
	e.newAgent(t, "agent@example.com")
	e.verifier.charges["sub_ref_1"] = &domain.Charge{
		Reference: "sub_ref_1",
		Status:    "abandoned",
		Amount:    250000,
	}

	result := e.deliver(t, chargeBody("sub_ref_1", "agent@example.com", "pro", 250000))
	if result.Outcome != OutcomeIgnored {
		t.Fatalf("outcome = %q, want ignored", result.Outcome)
	}

	var count int64
	e.db.Table("subscriptions").Count(&count)
	if count != 0 {
		t.Fatalf("unsettled charge created a subscription")
	}
}

func TestIngestUnknownCustomer(t *testing.T) {
	e := setup(t)
	e.settle("sub_ref_1", 250000, "ghost@example.com")

	result := e.deliver(t, chargeBody("sub_ref_1", "ghost@example.com", "pro", 250000))
	if result.Outcome != OutcomeUnmatched {
		t.Fatalf("outcome = %q, want unmatched", result.Outcome)
	}

	// Unmatched events are final; redelivery is a duplicate.
	if result := e.deliver(t, chargeBody("sub_ref_1", "ghost@example.com", "pro", 250000)); result.Outcome != OutcomeDuplicate {
		t.Fatalf("redelivery outcome = %q, want duplicate", result.Outcome)
	}
}

func TestIngestSubscriptionDisable(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")
	e.settle("sub_ref_1", 250000, "agent@example.com")
	e.deliver(t, chargeBody("sub_ref_1", "agent@example.com", "pro", 250000))

	body := []byte(`{
		"event": "subscription.disable",
		"data": {
			"subscription_code": "SUB_xyz",
			"customer": {"email": "agent@example.com"}
		}
	}`)
	result := e.deliver(t, body)
	if result.Outcome != OutcomeProcessed {
		t.Fatalf("outcome = %q", result.Outcome)
	}

	got, _ := e.agents.GetByID(context.Background(), agent.ID)
	if got.Tier != agentdomain.TierFree {
		t.Fatalf("tier = %q, want free after disable", got.Tier)
	}
}
