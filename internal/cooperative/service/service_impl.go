package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/clock"
	"github.com/nyumbahq/nyumba/internal/cooperative/domain"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Node          *snowflake.Node
	Clock         clock.Clock
	Cooperatives  domain.ICooperativeRepository
	Contributions domain.IContributionRepository
	Log           *zap.Logger
}

type cooperativeService struct {
	db            *gorm.DB
	node          *snowflake.Node
	clock         clock.Clock
	cooperatives  domain.ICooperativeRepository
	contributions domain.IContributionRepository
	log           *zap.Logger
}

func New(p Params) domain.ICooperativeService {
	return &cooperativeService{
		db:            p.DB,
		node:          p.Node,
		clock:         p.Clock,
		cooperatives:  p.Cooperatives,
		contributions: p.Contributions,
		log:           p.Log.Named("cooperative.service"),
	}
}

func (s *cooperativeService) Create(ctx context.Context, req domain.CreateCooperativeRequest) (*domain.Cooperative, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.TargetAmount <= 0 {
		return nil, domain.ErrInvalidCooperative
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "NGN"
	}

	now := s.clock.Now()
	coop := &domain.Cooperative{
		ID:               s.node.Generate(),
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		TargetAmount:     req.TargetAmount,
		TotalContributed: 0,
		Currency:         currency,
		Status:           domain.StatusForming,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.cooperatives.Insert(ctx, s.db, coop); err != nil {
		return nil, err
	}

	s.log.Info("cooperative created",
		zap.String("cooperative_id", coop.ID.String()),
		zap.Int64("target_amount", coop.TargetAmount),
	)
	return coop, nil
}

func (s *cooperativeService) GetByID(ctx context.Context, id snowflake.ID) (*domain.Cooperative, error) {
	return s.cooperatives.FindByID(ctx, s.db, id)
}

func (s *cooperativeService) List(ctx context.Context, limit, offset int) ([]domain.Cooperative, int64, error) {
	return s.cooperatives.List(ctx, s.db, limit, offset)
}

func (s *cooperativeService) ListContributions(ctx context.Context, coopID snowflake.ID, limit, offset int) ([]domain.Contribution, int64, error) {
	return s.contributions.ListByCooperative(ctx, s.db, coopID, limit, offset)
}

func (s *cooperativeService) Initiate(ctx context.Context, req domain.InitiateContributionRequest) (*domain.Contribution, error) {
	if req.CooperativeID == 0 || req.MemberID == 0 || req.Amount <= 0 {
		return nil, domain.ErrInvalidContribution
	}

	coop, err := s.cooperatives.FindByID(ctx, s.db, req.CooperativeID)
	if err != nil {
		return nil, err
	}
	if coop.Status == domain.StatusCompleted || coop.Status == domain.StatusDissolved {
		return nil, domain.ErrInvalidTransition
	}

	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = "paystack"
	}

	now := s.clock.Now()
	contribution := &domain.Contribution{
		ID:               s.node.Generate(),
		CooperativeID:    coop.ID,
		MemberID:         req.MemberID,
		Amount:           req.Amount,
		Currency:         coop.Currency,
		PaymentReference: "coop_" + ulid.Make().String(),
		Provider:         provider,
		Status:           domain.ContributionPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.contributions.Insert(ctx, s.db, contribution); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateReference
		}
		return nil, err
	}

	s.log.Info("contribution initiated",
		zap.String("cooperative_id", coop.ID.String()),
		zap.String("reference", contribution.PaymentReference),
	)
	return contribution, nil
}

func (s *cooperativeService) RecordVerified(ctx context.Context, reference string, amount int64, paidAt time.Time) (*domain.Cooperative, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" || amount <= 0 {
		return nil, domain.ErrInvalidContribution
	}

	var coopID snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contribution, err := s.contributions.FindByReferenceForUpdate(ctx, tx, reference)
		if err != nil {
			return err
		}
		if contribution.Status == domain.ContributionVerified {
			return domain.ErrDuplicateReference
		}
		coopID = contribution.CooperativeID

		coop, err := s.cooperatives.FindByIDForUpdate(ctx, tx, coopID)
		if err != nil {
			return err
		}

		verifiedAt := paidAt
		if verifiedAt.IsZero() {
			verifiedAt = s.clock.Now()
		}
		if err := s.contributions.MarkVerified(ctx, tx, contribution.ID, amount, verifiedAt); err != nil {
			return err
		}

		next := coop.Status
		if next == domain.StatusForming {
			next = domain.StatusActive
		}
		if coop.TotalContributed+amount >= coop.TargetAmount {
			next = domain.StatusTargetReached
		}
		return s.cooperatives.ApplyContribution(ctx, tx, coop.ID, amount, next)
	})
	if err != nil {
		return nil, err
	}

	coop, err := s.cooperatives.FindByID(ctx, s.db, coopID)
	if err != nil {
		return nil, err
	}

	s.log.Info("contribution verified",
		zap.String("cooperative_id", coop.ID.String()),
		zap.String("reference", reference),
		zap.Int64("amount", amount),
		zap.String("status", string(coop.Status)),
	)
	return coop, nil
}

func (s *cooperativeService) Complete(ctx context.Context, id snowflake.ID) (*domain.Cooperative, error) {
	return s.transition(ctx, id, domain.StatusCompleted)
}

func (s *cooperativeService) Dissolve(ctx context.Context, id snowflake.ID) (*domain.Cooperative, error) {
	return s.transition(ctx, id, domain.StatusDissolved)
}

func (s *cooperativeService) transition(ctx context.Context, id snowflake.ID, target domain.Status) (*domain.Cooperative, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		coop, err := s.cooperatives.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if coop.Status == domain.StatusCompleted || coop.Status == domain.StatusDissolved {
			return domain.ErrInvalidTransition
		}
		if target == domain.StatusCompleted && coop.Status != domain.StatusTargetReached {
			return domain.ErrInvalidTransition
		}
		return s.cooperatives.UpdateStatus(ctx, tx, id, target)
	})
	if err != nil {
		return nil, err
	}

	coop, err := s.cooperatives.FindByID(ctx, s.db, id)
	if err != nil && !errors.Is(err, domain.ErrCooperativeNotFound) {
		return nil, err
	}
	s.log.Info("cooperative status changed",
		zap.String("cooperative_id", id.String()),
		zap.String("status", string(target)),
	)
	return coop, err
}
