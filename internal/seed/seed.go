// Package seed bootstraps demo data for development environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
)

const (
	demoAgentEmail = "demo-agent@nyumba.dev"
	demoAgentName  = "Demo Agent"
	demoCoopName   = "Demo Savings Cooperative"
)

// EnsureDemoData inserts a demo agent and cooperative if they are
// missing. Safe to run on every startup.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDemoAgent(ctx, tx, node); err != nil {
			return err
		}
		return ensureDemoCooperative(ctx, tx, node)
	})
}

func ensureDemoAgent(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var agent agentdomain.Agent
	err := tx.WithContext(ctx).
		Where("LOWER(email) = ?", demoAgentEmail).
		First(&agent).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	agent = agentdomain.Agent{
		ID:          node.Generate(),
		Name:        demoAgentName,
		Email:       demoAgentEmail,
		Agency:      "Nyumba Demo Realty",
		Tier:        agentdomain.TierFree,
		MaxListings: agentdomain.MaxListingsForTier(agentdomain.TierFree),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return tx.WithContext(ctx).Create(&agent).Error
}

func ensureDemoCooperative(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var coop coopdomain.Cooperative
	err := tx.WithContext(ctx).
		Where("name = ?", demoCoopName).
		First(&coop).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	coop = coopdomain.Cooperative{
		ID:           node.Generate(),
		Name:         demoCoopName,
		Description:  "Pooled savings toward a first demo property.",
		TargetAmount: 10_000_000,
		Currency:     "NGN",
		Status:       coopdomain.StatusForming,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return tx.WithContext(ctx).Create(&coop).Error
}
