package repository

import (
	"context"

	"gorm.io/gorm"
	"kolibri.dev/communityquest/internal/entity"
)

type LeaderboardRepository interface {
	// ListByXP returns members ordered by total XP descending. limit <= 0
	// returns everyone. Ties order by join date so positions stay stable.
	ListByXP(ctx context.Context, limit int) ([]entity.Member, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) ListByXP(ctx context.Context, limit int) ([]entity.Member, error) {
	var members []entity.Member
	q := r.db.WithContext(ctx).
		Order("total_xp DESC").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&members).Error
	return members, err
}
