package service

import (
	"context"
	"errors"
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

	"kolibri.dev/communityquest/internal/catalog"
	"kolibri.dev/communityquest/internal/entity"
	"kolibri.dev/communityquest/internal/modules/progression/repository"
	"kolibri.dev/communityquest/internal/tier"
)

func newTestEngine(t *testing.T) (Engine, repository.Repository) {
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

	repo := repository.NewRepository(db)
	return NewEngine(catalog.Default(), repo, nil, nil, nil), repo
}

func requireRejection(t *testing.T, err error, reason Reason) *Rejection {
	t.Helper()
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, reason, rej.Reason)
	return rej
}

// completeAll drives the member through the given tasks, failing the test on
// any rejection. Used to set up gate preconditions.
func completeAll(t *testing.T, e Engine, memberID string, taskIDs ...string) {
	t.Helper()
	for _, id := range taskIDs {
		_, err := e.CompleteTask(context.Background(), memberID, "tester", id, "")
		require.NoError(t, err, "setup completion of %s", id)
	}
}

func TestCompleteTaskUnknownID(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CompleteTask(context.Background(), "u1", "alice", "bogus", "")
	requireRejection(t, err, ReasonTaskNotFound)
}

func TestCompleteTaskSpecialForbidden(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.CompleteTask(context.Background(), "u1", "alice", "s1", "")
	requireRejection(t, err, ReasonSpecialForbidden)
}

func TestCompleteTaskAlreadyCompleted(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := e.CompleteTask(ctx, "u1", "alice", "on1", "")
	require.NoError(t, err)
	assert.Equal(t, 10, result.XPEarned)
	assert.Equal(t, 10, result.TotalXP)

	_, err = e.CompleteTask(ctx, "u1", "alice", "on1", "")
	requireRejection(t, err, ReasonAlreadyCompleted)
}

func TestCompleteTaskRepeatable(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	completeAll(t, e, "u1", "on1", "on2")

	// o1 is repeatable: every completion earns XP again.
	first, err := e.CompleteTask(ctx, "u1", "alice", "o1", "")
	require.NoError(t, err)
	second, err := e.CompleteTask(ctx, "u1", "alice", "o1", "")
	require.NoError(t, err)
	assert.Equal(t, first.TotalXP+10, second.TotalXP)
}

func TestOnboardingGate(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// No onboarding at all: both outreach and lobbying stay closed.
	_, err := e.CompleteTask(ctx, "u1", "alice", "o1", "")
	rej := requireRejection(t, err, ReasonOnboardingIncomplete)
	assert.Equal(t, catalog.PathOnboarding, rej.Path)
	assert.Equal(t, 2, rej.Required)

	_, err = e.CompleteTask(ctx, "u1", "alice", "l1", "")
	requireRejection(t, err, ReasonOnboardingIncomplete)

	// One onboarding task is not enough.
	completeAll(t, e, "u1", "on1")
	_, err = e.CompleteTask(ctx, "u1", "alice", "o1", "")
	requireRejection(t, err, ReasonOnboardingIncomplete)

	// Two distinct onboarding completions open the gate.
	completeAll(t, e, "u1", "on3")
	_, err = e.CompleteTask(ctx, "u1", "alice", "o1", "")
	assert.NoError(t, err)
}

func TestLevelGate(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	completeAll(t, e, "u1", "on1", "on2")

	// Level 2 needs 3 distinct level-1 completions on the same path.
	_, err := e.CompleteTask(ctx, "u1", "alice", "o4", "")
	rej := requireRejection(t, err, ReasonLevelPrerequisiteUnmet)
	assert.Equal(t, catalog.PathOutreach, rej.Path)
	assert.Equal(t, 1, rej.Level)
	assert.Equal(t, 3, rej.Required)

	// Repeating the same level-1 task does not add to the distinct count.
	completeAll(t, e, "u1", "o1", "o1", "o1")
	_, err = e.CompleteTask(ctx, "u1", "alice", "o4", "")
	requireRejection(t, err, ReasonLevelPrerequisiteUnmet)

	completeAll(t, e, "u1", "o2", "o3")
	_, err = e.CompleteTask(ctx, "u1", "alice", "o4", "")
	assert.NoError(t, err)

	// Progress on one path never satisfies another path's gate.
	_, err = e.CompleteTask(ctx, "u1", "alice", "l4", "")
	rej = requireRejection(t, err, ReasonLevelPrerequisiteUnmet)
	assert.Equal(t, catalog.PathLobbying, rej.Path)
}

func TestLevelThreeGate(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	completeAll(t, e, "u1", "on1", "on2", "o1", "o2", "o3", "o4")

	// Level 3 needs only 2 distinct level-2 completions.
	_, err := e.CompleteTask(ctx, "u1", "alice", "o6", "")
	rej := requireRejection(t, err, ReasonLevelPrerequisiteUnmet)
	assert.Equal(t, 2, rej.Level)
	assert.Equal(t, 2, rej.Required)

	completeAll(t, e, "u1", "o5")
	result, err := e.CompleteTask(ctx, "u1", "alice", "o6", "")
	require.NoError(t, err)
	assert.Equal(t, 120, result.XPEarned)
}

func TestProgressionScenario(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	// on1 + on2 = 25 XP
	completeAll(t, e, "u1", "on1", "on2")
	member, err := repo.FindMember(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, member.TotalXP)

	// + o1 + o2 + o3 = 70 XP
	completeAll(t, e, "u1", "o1", "o2", "o3")
	// + o4 = 120 XP
	result, err := e.CompleteTask(ctx, "u1", "alice", "o4", "")
	require.NoError(t, err)
	assert.Equal(t, 120, result.TotalXP)
	assert.Equal(t, tier.ConcernedCitizen, result.Tier)

	// Crossing 150 promotes to Activist.
	result, err = e.CompleteTask(ctx, "u1", "alice", "o5", "")
	require.NoError(t, err)
	assert.Equal(t, 200, result.TotalXP)
	assert.Equal(t, tier.Activist, result.Tier)

	// The ledger must always reconcile with the counter.
	sum, err := repo.SumXPEarned(ctx, "u1")
	require.NoError(t, err)
	member, err = repo.FindMember(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, member.TotalXP, sum)
}

func TestCompleteTaskSanitizesComment(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	_, err := e.CompleteTask(ctx, "u1", "alice", "on1", "<script>alert(1)</script>did the thing")
	require.NoError(t, err)

	records, err := repo.CompletionsByMember(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "did the thing", records[0].Comment)
}

func TestAwardSpecial(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	result, err := e.AwardSpecial(ctx, "u1", "alice", "s2", "", "ModName")
	require.NoError(t, err)
	assert.Equal(t, 75, result.XPEarned)
	assert.Equal(t, "Awarded by ModName", result.Comment)

	// Special awards bypass every gate and repeat freely.
	result, err = e.AwardSpecial(ctx, "u1", "alice", "s2", "great work", "ModName")
	require.NoError(t, err)
	assert.Equal(t, 150, result.TotalXP)
	assert.Equal(t, "great work", result.Comment)
	assert.Equal(t, tier.Activist, result.Tier)
}

func TestAwardSpecialLongCommentFitsColumn(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	// Command-sourced comments arrive without a request-size cap; the stored
	// value must still fit the 500-rune comment column, ellipsis included.
	result, err := e.AwardSpecial(ctx, "u1", "alice", "s1", strings.Repeat("x", 600), "ModName")
	require.NoError(t, err)
	assert.Len(t, []rune(result.Comment), maxCommentLen)
	assert.Equal(t, strings.Repeat("x", maxCommentLen-3)+"...", result.Comment)

	// A comment at exactly the limit is stored untouched.
	result, err = e.AwardSpecial(ctx, "u1", "alice", "s1", strings.Repeat("y", maxCommentLen), "ModName")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("y", maxCommentLen), result.Comment)

	records, err := repo.CompletionsByMember(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.LessOrEqual(t, len([]rune(rec.Comment)), maxCommentLen)
	}
}

func TestAwardSpecialInvalidTask(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AwardSpecial(ctx, "u1", "alice", "on1", "", "ModName")
	requireRejection(t, err, ReasonInvalidSpecialTask)

	_, err = e.AwardSpecial(ctx, "u1", "alice", "nope", "", "ModName")
	requireRejection(t, err, ReasonInvalidSpecialTask)
}

func TestHandleReactionIgnoresNonModerator(t *testing.T) {
	e, repo := newTestEngine(t)

	result, err := e.HandleReaction(context.Background(), ReactionEvent{
		MessageID: "m1", Emoji: "⭐", ReactorID: "mod", ReactorIsModerator: false,
		AuthorID: "u1", AuthorName: "alice", MessageText: "I did a thing",
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	// An ignored event must not burn the claim for a later moderator.
	claimed, err := repo.ClaimAward(context.Background(), "m1", "⭐")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestHandleReactionIgnoresUnknownEmoji(t *testing.T) {
	e, _ := newTestEngine(t)

	result, err := e.HandleReaction(context.Background(), ReactionEvent{
		MessageID: "m1", Emoji: "👍", ReactorID: "mod", ReactorIsModerator: true,
		AuthorID: "u1", AuthorName: "alice",
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHandleReactionAwards(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	longMessage := strings.Repeat("x", 140)
	result, err := e.HandleReaction(ctx, ReactionEvent{
		MessageID: "m1", Emoji: "⭐", ReactorID: "mod", ReactorIsModerator: true,
		AuthorID: "u1", AuthorName: "alice", MessageText: longMessage,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "s1", result.Task.ID)
	assert.Equal(t, 30, result.XPEarned)
	assert.Equal(t, strings.Repeat("x", 100)+"...", result.Comment)

	// The second delivery of the same pair is a silent no-op.
	result, err = e.HandleReaction(ctx, ReactionEvent{
		MessageID: "m1", Emoji: "⭐", ReactorID: "mod", ReactorIsModerator: true,
		AuthorID: "u1", AuthorName: "alice", MessageText: longMessage,
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	// A different emoji on the same message grants its own award.
	result, err = e.HandleReaction(ctx, ReactionEvent{
		MessageID: "m1", Emoji: "🌟", ReactorID: "mod", ReactorIsModerator: true,
		AuthorID: "u1", AuthorName: "alice", MessageText: "short",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "s2", result.Task.ID)
	assert.Equal(t, 30+75, result.TotalXP)
}

func TestHandleReactionConcurrentDuplicates(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	ev := ReactionEvent{
		MessageID: "m-race", Emoji: "💫", ReactorID: "mod", ReactorIsModerator: true,
		AuthorID: "u1", AuthorName: "alice", MessageText: "huge effort",
	}

	const deliveries = 8
	var wg sync.WaitGroup
	grants := make(chan *AwardResult, deliveries)

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := e.HandleReaction(ctx, ev)
			if err == nil && result != nil {
				grants <- result
			}
		}()
	}
	wg.Wait()
	close(grants)

	count := 0
	for range grants {
		count++
	}
	assert.Equal(t, 1, count, "duplicate deliveries must grant exactly once")

	sum, err := repo.SumXPEarned(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 150, sum)
}

func TestConcurrentNonRepeatableCompletions(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	var successes, rejections int
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.CompleteTask(ctx, "u1", "alice", "on3", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			default:
				var rej *Rejection
				if errors.As(err, &rej) && rej.Reason == ReasonAlreadyCompleted {
					rejections++
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejections)

	member, err := repo.FindMember(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 20, member.TotalXP)
}
