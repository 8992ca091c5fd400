package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"kolibri.dev/communityquest/internal/tier"
)

// Event describes one committed award. It carries everything an external
// announcer or role synchronizer needs. Events are emitted only after the
// ledger write has committed; a failed side effect never undoes the grant.
type Event struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	TaskID      string    `json:"task_id"`
	TaskName    string    `json:"task_name"`
	XPEarned    int       `json:"xp_earned"`
	TotalXP     int       `json:"total_xp"`
	Tier        tier.Tier `json:"tier"`
	TierName    string    `json:"tier_name"`
	Comment     string    `json:"comment,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewEvent(memberID, memberName, taskID, taskName string, xpEarned, totalXP int, comment string) Event {
	t := tier.ForXP(totalXP)
	return Event{
		ID:          uuid.NewString(),
		MemberID:    memberID,
		MemberName:  memberName,
		TaskID:      taskID,
		TaskName:    taskName,
		XPEarned:    xpEarned,
		TotalXP:     totalXP,
		Tier:        t,
		TierName:    t.Name(),
		Comment:     comment,
		CompletedAt: time.Now(),
	}
}

// Announcer posts a human-readable announcement of a committed award.
type Announcer interface {
	AnnounceAward(ctx context.Context, ev Event) error
}

// RoleSynchronizer reassigns a member's tier role after a committed award.
type RoleSynchronizer interface {
	SyncTierRole(ctx context.Context, memberID string, t tier.Tier) error
}

// FeedChannel is the redis pub/sub channel the live award feed bridges from.
const FeedChannel = "award_feed"

// PublishFeed pushes the event onto the live feed channel. A nil client is a
// no-op so the engine works without redis.
func PublishFeed(ctx context.Context, rdb *redis.Client, ev Event) error {
	if rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, FeedChannel, payload).Err()
}

// LogAnnouncer and LogRoleSync are the fallbacks used when no chat gateway
// client is configured (local development, tests).

type LogAnnouncer struct{}

func (LogAnnouncer) AnnounceAward(_ context.Context, ev Event) error {
	log.Printf("🎉 %s earned +%d XP for %q (total %d, %s)", ev.MemberName, ev.XPEarned, ev.TaskName, ev.TotalXP, ev.TierName)
	return nil
}

type LogRoleSync struct{}

func (LogRoleSync) SyncTierRole(_ context.Context, memberID string, t tier.Tier) error {
	log.Printf("role sync: member %s is now %s", memberID, t.Name())
	return nil
}
