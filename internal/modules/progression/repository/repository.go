package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"kolibri.dev/communityquest/internal/entity"
)

type Repository interface {
	// GetOrCreateMember upserts the member, refreshing the last-seen display
	// name, and returns the current row.
	GetOrCreateMember(ctx context.Context, discordID, discordName string) (*entity.Member, error)
	FindMember(ctx context.Context, discordID string) (*entity.Member, error)
	CompletedTaskIDs(ctx context.Context, discordID string) ([]string, error)
	CompletionsByMember(ctx context.Context, discordID string) ([]entity.CompletionRecord, error)
	// RecordCompletion appends the record and increments the member's total
	// XP in one transaction. Returns the new total.
	RecordCompletion(ctx context.Context, rec *entity.CompletionRecord) (int, error)
	// ClaimAward atomically claims the (message, emoji) pair. Returns false
	// when the pair was already claimed. Never a separate check-then-insert.
	ClaimAward(ctx context.Context, messageID, emoji string) (bool, error)
	// SumXPEarned totals the member's ledger; must always equal the member's
	// TotalXP column.
	SumXPEarned(ctx context.Context, discordID string) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateMember(ctx context.Context, discordID, discordName string) (*entity.Member, error) {
	member := entity.Member{DiscordID: discordID, DiscordName: discordName}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"discord_name": discordName,
		}),
	}).Create(&member).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the struct above does not carry the stored XP.
	return r.FindMember(ctx, discordID)
}

func (r *repository) FindMember(ctx context.Context, discordID string) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) CompletedTaskIDs(ctx context.Context, discordID string) ([]string, error) {
	var taskIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.CompletionRecord{}).
		Where("discord_id = ?", discordID).
		Order("id ASC").
		Pluck("task_id", &taskIDs).Error
	return taskIDs, err
}

func (r *repository) CompletionsByMember(ctx context.Context, discordID string) ([]entity.CompletionRecord, error) {
	var records []entity.CompletionRecord
	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		Order("id ASC").
		Find(&records).Error
	return records, err
}

func (r *repository) RecordCompletion(ctx context.Context, rec *entity.CompletionRecord) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		res := tx.Model(&entity.Member{}).
			Where("discord_id = ?", rec.DiscordID).
			UpdateColumn("total_xp", gorm.Expr("total_xp + ?", rec.XPEarned))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&entity.Member{}).
			Select("total_xp").
			Where("discord_id = ?", rec.DiscordID).
			Scan(&total).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) ClaimAward(ctx context.Context, messageID, emoji string) (bool, error) {
	claim := entity.AwardClaim{MessageID: messageID, Emoji: emoji}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&claim)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SumXPEarned(ctx context.Context, discordID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).
		Model(&entity.CompletionRecord{}).
		Select("COALESCE(SUM(xp_earned), 0)").
		Where("discord_id = ?", discordID).
		Scan(&sum).Error
	return sum, err
}
