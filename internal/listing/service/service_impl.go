package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	"github.com/nyumbahq/nyumba/internal/clock"
	"github.com/nyumbahq/nyumba/internal/listing/domain"
	"github.com/nyumbahq/nyumba/pkg/db"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Node   *snowflake.Node
	Clock  clock.Clock
	Repo   domain.IListingRepository
	Agents agentdomain.IAgentService
	Log    *zap.Logger
}

type listingService struct {
	db     *gorm.DB
	node   *snowflake.Node
	clock  clock.Clock
	repo   domain.IListingRepository
	agents agentdomain.IAgentService
	log    *zap.Logger
}

func New(p Params) domain.IListingService {
	return &listingService{
		db:     p.DB,
		node:   p.Node,
		clock:  p.Clock,
		repo:   p.Repo,
		agents: p.Agents,
		log:    p.Log.Named("listing.service"),
	}
}

func (s *listingService) Create(ctx context.Context, req domain.CreateListingRequest) (*domain.Listing, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.AgentID == 0 || req.PriceAmount <= 0 {
		return nil, domain.ErrInvalidListing
	}

	remaining, err := s.agents.RemainingQuota(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}
	if remaining != agentdomain.UnlimitedListings && remaining <= 0 {
		return nil, domain.ErrQuotaExceeded
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "NGN"
	}

	base := slug.Make(title)
	unique, err := s.uniqueSlug(ctx, base)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	listing := &domain.Listing{
		ID:          s.node.Generate(),
		AgentID:     req.AgentID,
		Title:       title,
		Slug:        unique,
		Description: strings.TrimSpace(req.Description),
		PriceAmount: req.PriceAmount,
		Currency:    currency,
		Location:    strings.TrimSpace(req.Location),
		Status:      domain.StatusPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, listing); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSlug
		}
		return nil, err
	}

	s.log.Info("listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("agent_id", listing.AgentID.String()),
		zap.String("slug", listing.Slug),
	)
	return listing, nil
}

// uniqueSlug appends a numeric suffix when the base slug is taken.
func (s *listingService) uniqueSlug(ctx context.Context, base string) (string, error) {
	if _, err := s.repo.FindBySlug(ctx, s.db, base); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return base, nil
		}
		return "", err
	}
	count, err := s.repo.CountBySlugPrefix(ctx, s.db, base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", base, count+1), nil
}

func (s *listingService) GetByID(ctx context.Context, id snowflake.ID) (*domain.Listing, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *listingService) GetBySlug(ctx context.Context, sl string) (*domain.Listing, error) {
	return s.repo.FindBySlug(ctx, s.db, sl)
}

func (s *listingService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Listing, int64, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *listingService) Archive(ctx context.Context, id snowflake.ID) error {
	return s.repo.UpdateStatus(ctx, s.db, id, domain.StatusArchived)
}
