package service

import (
	"context"
	"errors"
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
	"github.com/nyumbahq/nyumba/internal/providers/notify"
	"github.com/nyumbahq/nyumba/internal/subscription/domain"
	"github.com/nyumbahq/nyumba/internal/subscription/repository"
)

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
`

func setupDB(t *testing.T) *gorm.DB {
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
	return db
}

type env struct {
	db     *gorm.DB
	clock  *clock.FakeClock
	agents agentdomain.IAgentService
	subs   domain.ISubscriptionService
}

func setup(t *testing.T) *env {
	t.Helper()
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	agents := agentservice.New(agentservice.Params{
		DB:    db,
		Node:  node,
		Clock: fake,
		Repo:  agentrepo.New(),
		Log:   log,
	})
	subs := New(Params{
		DB:       db,
		Node:     node,
		Clock:    fake,
		Repo:     repository.New(),
		Agents:   agents,
		Notifier: notify.NoOp{},
		Log:      log,
	})
	return &env{db: db, clock: fake, agents: agents, subs: subs}
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

func TestActivateUpgradesAgent(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	sub, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierPro,
		Reference:  "sub_ref_1",
		Amount:     250000,
		Currency:   "NGN",
		PaidAt:     e.clock.Now(),
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if sub.Status != domain.StatusActive {
		t.Fatalf("status = %q", sub.Status)
	}
	if want := e.clock.Now().Add(domain.Window); !sub.EndsAt.Equal(want) {
		t.Fatalf("ends_at = %v, want %v", sub.EndsAt, want)
	}
	if sub.Provider != "paystack" {
		t.Fatalf("provider = %q, want paystack", sub.Provider)
	}

	got, err := e.agents.GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Tier != agentdomain.TierPro {
		t.Fatalf("tier = %q, want pro", got.Tier)
	}
	if got.MaxListings != 100 {
		t.Fatalf("max_listings = %d, want 100", got.MaxListings)
	}
}

func TestActivateBindsByAgentID(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	// Payer email differs from the profile email; the id carried in
	// the verified metadata decides who gets the subscription.
	sub, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentID:    agent.ID,
		AgentEmail: "payer@example.com",
		Tier:       agentdomain.TierBasic,
		Reference:  "sub_ref_1",
		Amount:     50000,
		Currency:   "NGN",
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if sub.AgentID != agent.ID {
		t.Fatalf("agent_id = %v, want %v", sub.AgentID, agent.ID)
	}

	got, err := e.agents.GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Tier != agentdomain.TierBasic {
		t.Fatalf("tier = %q, want basic", got.Tier)
	}
}

func TestActivateDuplicateReferenceIsNoOp(t *testing.T) {
	e := setup(t)
	e.newAgent(t, "agent@example.com")

	req := domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierBasic,
		Reference:  "sub_ref_1",
		Amount:     50000,
		Currency:   "NGN",
	}
	if _, err := e.subs.Activate(context.Background(), req); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if _, err := e.subs.Activate(context.Background(), req); !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}

	var count int64
	e.db.Model(&domain.Subscription{}).Count(&count)
	if count != 1 {
		t.Fatalf("subscription count = %d, want 1", count)
	}
}

func TestActivateSupersedesCurrent(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	first, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierBasic,
		Reference:  "sub_ref_1",
		Amount:     50000,
		Currency:   "NGN",
	})
	if err != nil {
		t.Fatalf("first activate: %v", err)
	}

	second, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierPro,
		Reference:  "sub_ref_2",
		Amount:     250000,
		Currency:   "NGN",
	})
	if err != nil {
		t.Fatalf("second activate: %v", err)
	}

	var old domain.Subscription
	if err := e.db.Raw(`SELECT * FROM subscriptions WHERE id = ?`, first.ID).Scan(&old).Error; err != nil {
		t.Fatalf("reload first: %v", err)
	}
	if old.Status != domain.StatusSuperseded {
		t.Fatalf("first status = %q, want superseded", old.Status)
	}

	active, err := e.subs.GetActiveForAgent(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("active id = %v, want %v", active.ID, second.ID)
	}
}

func TestActivateUnknownAgent(t *testing.T) {
	e := setup(t)

	_, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "ghost@example.com",
		Tier:       agentdomain.TierBasic,
		Reference:  "sub_ref_1",
		Amount:     50000,
	})
	if !errors.Is(err, agentdomain.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestDisableDowngradesToFree(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	if _, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierEnterprise,
		Reference:  "sub_ref_1",
		Amount:     900000,
	}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := e.subs.DisableByEmail(context.Background(), "agent@example.com"); err != nil {
		t.Fatalf("disable: %v", err)
	}

	got, err := e.agents.GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Tier != agentdomain.TierFree {
		t.Fatalf("tier = %q, want free", got.Tier)
	}
	if _, err := e.subs.GetActiveForAgent(context.Background(), agent.ID); !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("expected no active subscription, got %v", err)
	}
}

func TestExpireDueDowngrades(t *testing.T) {
	e := setup(t)
	agent := e.newAgent(t, "agent@example.com")

	if _, err := e.subs.Activate(context.Background(), domain.ActivateRequest{
		AgentEmail: "agent@example.com",
		Tier:       agentdomain.TierPro,
		Reference:  "sub_ref_1",
		Amount:     250000,
		PaidAt:     e.clock.Now(),
	}); err != nil {
		t.Fatalf("activate: %v", err)
	}

	n, err := e.subs.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("sweep before window: %v", err)
	}
	if n != 0 {
		t.Fatalf("expired %d before window elapsed", n)
	}

	e.clock.Advance(domain.Window + time.Hour)

	n, err = e.subs.ExpireDue(context.Background())
	if err != nil {
		t.Fatalf("sweep after window: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	got, err := e.agents.GetByID(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if got.Tier != agentdomain.TierFree {
		t.Fatalf("tier = %q, want free", got.Tier)
	}
}
