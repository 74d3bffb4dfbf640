package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/agent/domain"
	"github.com/nyumbahq/nyumba/internal/clock"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Node  *snowflake.Node
	Clock clock.Clock
	Repo  domain.IAgentRepository
	Log   *zap.Logger
}

type agentService struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock clock.Clock
	repo  domain.IAgentRepository
	log   *zap.Logger
}

func New(p Params) domain.IAgentService {
	return &agentService{
		db:    p.DB,
		node:  p.Node,
		clock: p.Clock,
		repo:  p.Repo,
		log:   p.Log.Named("agent.service"),
	}
}

func (s *agentService) Create(ctx context.Context, req domain.CreateAgentRequest) (*domain.Agent, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if name == "" || email == "" {
		return nil, domain.ErrInvalidAgent
	}

	now := s.clock.Now()
	agent := &domain.Agent{
		ID:          s.node.Generate(),
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Agency:      strings.TrimSpace(req.Agency),
		Tier:        domain.TierFree,
		MaxListings: domain.MaxListingsForTier(domain.TierFree),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, agent); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	s.log.Info("agent created",
		zap.String("agent_id", agent.ID.String()),
		zap.String("tier", string(agent.Tier)),
	)
	return agent, nil
}

func (s *agentService) GetByID(ctx context.Context, id snowflake.ID) (*domain.Agent, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *agentService) GetByEmail(ctx context.Context, email string) (*domain.Agent, error) {
	return s.repo.FindByEmail(ctx, s.db, email)
}

func (s *agentService) ApplyTier(ctx context.Context, id snowflake.ID, tier domain.Tier) (*domain.Agent, error) {
	if _, ok := domain.ParseTier(string(tier)); !ok {
		return nil, domain.ErrInvalidTier
	}
	if err := s.repo.UpdateTier(ctx, s.db, id, tier, domain.MaxListingsForTier(tier)); err != nil {
		return nil, err
	}
	agent, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("agent tier applied",
		zap.String("agent_id", id.String()),
		zap.String("tier", string(tier)),
	)
	return agent, nil
}

func (s *agentService) RemainingQuota(ctx context.Context, id snowflake.ID) (int, error) {
	agent, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if agent.MaxListings == domain.UnlimitedListings {
		return domain.UnlimitedListings, nil
	}
	used, err := s.repo.CountActiveListings(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	remaining := agent.MaxListings - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
