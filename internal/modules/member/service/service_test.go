package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kolibri.dev/communityquest/internal/entity"
	progressionRepo "kolibri.dev/communityquest/internal/modules/progression/repository"
)

func setupTestRepo(t *testing.T) progressionRepo.Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.Member{}, &entity.CompletionRecord{}))
	return progressionRepo.NewRepository(db)
}

func TestProfileNewMember(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewMemberService(repo)

	profile, err := svc.Profile(context.Background(), "1001", "alice")
	require.NoError(t, err)

	assert.Equal(t, "1001", profile.DiscordID)
	assert.Equal(t, "alice", profile.DiscordName)
	assert.Equal(t, 0, profile.TotalXP)
	assert.Equal(t, 1, profile.Tier)
	assert.Equal(t, "Concerned Citizen", profile.TierName)
	require.NotNil(t, profile.NextTierXP)
	assert.Equal(t, 150, *profile.NextTierXP)
	assert.Equal(t, []string{}, profile.CompletedTasks)
}

func TestProfileWithCompletions(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewMemberService(repo)
	ctx := context.Background()

	_, err := repo.GetOrCreateMember(ctx, "1001", "alice")
	require.NoError(t, err)
	_, err = repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "1001", TaskID: "on1", XPEarned: 10,
	})
	require.NoError(t, err)
	_, err = repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "1001", TaskID: "s3", XPEarned: 150,
	})
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, "1001", "alice")
	require.NoError(t, err)

	assert.Equal(t, 160, profile.TotalXP)
	assert.Equal(t, "Activist", profile.TierName)
	assert.Equal(t, []string{"on1", "s3"}, profile.CompletedTasks)
	require.NotNil(t, profile.NextTierXP)
	assert.Equal(t, 400, *profile.NextTierXP)
}
