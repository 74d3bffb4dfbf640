package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/nyumbahq/nyumba/internal/agent/domain"
)

type agentRepository struct{}

func New() domain.IAgentRepository {
	return &agentRepository{}
}

func (r *agentRepository) Insert(ctx context.Context, db *gorm.DB, agent *domain.Agent) error {
	return db.WithContext(ctx).Create(agent).Error
}

func (r *agentRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Agent, error) {
	var agent domain.Agent
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM agents WHERE id = ? LIMIT 1`, id).
		Scan(&agent).Error
	if err != nil {
		return nil, err
	}
	if agent.ID == 0 {
		return nil, domain.ErrAgentNotFound
	}
	return &agent, nil
}

func (r *agentRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Agent, error) {
	var agent domain.Agent
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM agents WHERE LOWER(email) = LOWER(?) LIMIT 1`, strings.TrimSpace(email)).
		Scan(&agent).Error
	if err != nil {
		return nil, err
	}
	if agent.ID == 0 {
		return nil, domain.ErrAgentNotFound
	}
	return &agent, nil
}

func (r *agentRepository) UpdateTier(ctx context.Context, db *gorm.DB, id snowflake.ID, tier domain.Tier, maxListings int) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE agents SET tier = ?, max_listings = ?, updated_at = ? WHERE id = ?`,
		tier, maxListings, time.Now().UTC(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

func (r *agentRepository) CountActiveListings(ctx context.Context, db *gorm.DB, agentID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM listings WHERE agent_id = ? AND status = 'published'`, agentID).
		Scan(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return count, nil
}
