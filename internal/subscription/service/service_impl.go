package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	"github.com/nyumbahq/nyumba/internal/clock"
	"github.com/nyumbahq/nyumba/internal/providers/notify"
	"github.com/nyumbahq/nyumba/internal/subscription/domain"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Node     *snowflake.Node
	Clock    clock.Clock
	Repo     domain.ISubscriptionRepository
	Agents   agentdomain.IAgentService
	Notifier notify.Notifier
	Log      *zap.Logger
}

type subscriptionService struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    clock.Clock
	repo     domain.ISubscriptionRepository
	agents   agentdomain.IAgentService
	notifier notify.Notifier
	log      *zap.Logger
}

func New(p Params) domain.ISubscriptionService {
	return &subscriptionService{
		db:       p.DB,
		node:     p.Node,
		clock:    p.Clock,
		repo:     p.Repo,
		agents:   p.Agents,
		notifier: p.Notifier,
		log:      p.Log.Named("subscription.service"),
	}
}

func (s *subscriptionService) Activate(ctx context.Context, req domain.ActivateRequest) (*domain.Subscription, error) {
	reference := strings.TrimSpace(req.Reference)
	email := strings.TrimSpace(strings.ToLower(req.AgentEmail))
	if reference == "" || (req.AgentID == 0 && email == "") {
		return nil, domain.ErrInvalidActivation
	}
	tier, ok := agentdomain.ParseTier(string(req.Tier))
	if !ok {
		return nil, agentdomain.ErrInvalidTier
	}
	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		provider = "paystack"
	}

	agent, err := s.resolveAgent(ctx, req.AgentID, email)
	if err != nil {
		return nil, err
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}

	sub := &domain.Subscription{
		ID:               s.node.Generate(),
		AgentID:          agent.ID,
		Tier:             tier,
		PaymentReference: reference,
		Provider:         provider,
		Amount:           req.Amount,
		Currency:         strings.ToUpper(req.Currency),
		Status:           domain.StatusActive,
		StartsAt:         paidAt,
		EndsAt:           paidAt.Add(domain.Window),
		CreatedAt:        s.clock.Now(),
		UpdatedAt:        s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindActiveByAgentForUpdate(ctx, tx, agent.ID)
		if err != nil && !errors.Is(err, domain.ErrSubscriptionNotFound) {
			return err
		}
		if current != nil {
			if current.PaymentReference == reference {
				return domain.ErrDuplicateReference
			}
			if err := s.repo.UpdateStatus(ctx, tx, current.ID, domain.StatusSuperseded); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, tx, sub)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateReference
		}
		return nil, err
	}

	if _, err := s.agents.ApplyTier(ctx, agent.ID, tier); err != nil {
		return nil, err
	}

	s.log.Info("subscription activated",
		zap.String("agent_id", agent.ID.String()),
		zap.String("tier", string(tier)),
		zap.String("reference", reference),
	)
	return sub, nil
}

// resolveAgent prefers the agent id carried in verified transaction
// metadata over the payer email, which can belong to someone paying on
// the agent's behalf.
func (s *subscriptionService) resolveAgent(ctx context.Context, id snowflake.ID, email string) (*agentdomain.Agent, error) {
	if id != 0 {
		agent, err := s.agents.GetByID(ctx, id)
		if err == nil {
			return agent, nil
		}
		if !errors.Is(err, agentdomain.ErrAgentNotFound) || email == "" {
			return nil, err
		}
	}
	return s.agents.GetByEmail(ctx, email)
}

func (s *subscriptionService) DisableByEmail(ctx context.Context, email string) error {
	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindActiveByAgentForUpdate(ctx, tx, agent.ID)
		if err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, tx, current.ID, domain.StatusCancelled)
	})
	if err != nil {
		return err
	}

	if _, err := s.agents.ApplyTier(ctx, agent.ID, agentdomain.TierFree); err != nil {
		return err
	}

	s.log.Info("subscription disabled",
		zap.String("agent_id", agent.ID.String()),
	)
	return nil
}

func (s *subscriptionService) GetActiveForAgent(ctx context.Context, agentID snowflake.ID) (*domain.Subscription, error) {
	return s.repo.FindActiveByAgent(ctx, s.db, agentID)
}

func (s *subscriptionService) ExpireDue(ctx context.Context) (int, error) {
	due, err := s.repo.FindDue(ctx, s.db, s.clock.Now(), 100)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range due {
		if err := s.repo.UpdateStatus(ctx, s.db, sub.ID, domain.StatusExpired); err != nil {
			s.log.Warn("expire subscription failed",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err),
			)
			continue
		}
		agent, err := s.agents.ApplyTier(ctx, sub.AgentID, agentdomain.TierFree)
		if err != nil {
			s.log.Warn("downgrade after expiry failed",
				zap.String("agent_id", sub.AgentID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++

		if err := s.notifier.Send(ctx, notify.Message{
			To:      agent.Email,
			Subject: "Your subscription has expired",
			Body:    "Your " + string(sub.Tier) + " subscription has ended and your account is back on the free tier. Renew to restore your listing quota.",
		}); err != nil {
			s.log.Warn("expiry notice failed",
				zap.String("agent_id", sub.AgentID.String()),
				zap.Error(err),
			)
		}
	}

	if expired > 0 {
		s.log.Info("subscriptions expired", zap.Int("count", expired))
	}
	return expired, nil
}
