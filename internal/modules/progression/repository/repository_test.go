package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kolibri.dev/communityquest/internal/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Member{},
		&entity.CompletionRecord{},
		&entity.AwardClaim{},
	))
	return db
}

func TestGetOrCreateMember(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	member, err := repo.GetOrCreateMember(ctx, "1001", "alice")
	require.NoError(t, err)
	assert.Equal(t, "1001", member.DiscordID)
	assert.Equal(t, "alice", member.DiscordName)
	assert.Equal(t, 0, member.TotalXP)

	// Second call refreshes the display name but keeps the stored XP.
	_, err = repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "1001", TaskID: "on1", XPEarned: 10,
	})
	require.NoError(t, err)

	member, err = repo.GetOrCreateMember(ctx, "1001", "alice-renamed")
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", member.DiscordName)
	assert.Equal(t, 10, member.TotalXP)
}

func TestGetOrCreateMemberNonNumericID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Gateway ids are opaque text; the full ledger path must work for ids
	// that no database would coerce to a number.
	member, err := repo.GetOrCreateMember(ctx, "member-alpha", "alice")
	require.NoError(t, err)
	assert.Equal(t, "member-alpha", member.DiscordID)

	total, err := repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "member-alpha", TaskID: "on1", XPEarned: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	member, err = repo.FindMember(ctx, "member-alpha")
	require.NoError(t, err)
	assert.Equal(t, 10, member.TotalXP)

	// The identity column itself must be migrated as text, never integer.
	columns, err := db.Migrator().ColumnTypes(&entity.Member{})
	require.NoError(t, err)
	for _, col := range columns {
		if col.Name() == "discord_id" {
			assert.NotEqual(t, "integer", strings.ToLower(col.DatabaseTypeName()))
		}
	}
}

func TestRecordCompletion(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetOrCreateMember(ctx, "1001", "alice")
	require.NoError(t, err)

	total, err := repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "1001", TaskID: "on1", XPEarned: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	total, err = repo.RecordCompletion(ctx, &entity.CompletionRecord{
		DiscordID: "1001", TaskID: "on2", XPEarned: 15, Comment: "done",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	sum, err := repo.SumXPEarned(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, total, sum)

	ids, err := repo.CompletedTaskIDs(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, []string{"on1", "on2"}, ids)

	records, err := repo.CompletionsByMember(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "done", records[1].Comment)
}

func TestRecordCompletionUnknownMember(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.RecordCompletion(context.Background(), &entity.CompletionRecord{
		DiscordID: "ghost", TaskID: "on1", XPEarned: 10,
	})
	assert.Error(t, err)
}

func TestClaimAward(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	claimed, err := repo.ClaimAward(ctx, "msg-1", "⭐")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimAward(ctx, "msg-1", "⭐")
	require.NoError(t, err)
	assert.False(t, claimed)

	// A different emoji on the same message is an independent claim.
	claimed, err = repo.ClaimAward(ctx, "msg-1", "🌟")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestClaimAwardConcurrent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.ClaimAward(ctx, "msg-race", "💫")
			if err == nil {
				results <- claimed
			}
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for claimed := range results {
		if claimed {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent claim must win")
}
