package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"kolibri.dev/communityquest/internal/catalog"
	"kolibri.dev/communityquest/internal/entity"
	"kolibri.dev/communityquest/internal/modules/progression/repository"
	"kolibri.dev/communityquest/internal/notify"
	"kolibri.dev/communityquest/internal/tier"
)

const (
	// Number of distinct onboarding tasks required before outreach/lobbying
	// tasks at level >= 1 open up.
	onboardingRequired = 2

	maxCommentLen        = 500
	reactionCommentRunes = 100
)

// SpecialEmojiTasks maps a reaction emoji to the special task it grants.
var SpecialEmojiTasks = map[string]string{
	"⭐": "s1",
	"🌟": "s2",
	"💫": "s3",
}

// AwardResult is an accepted completion: the committed record plus everything
// downstream announcers and role sync need.
type AwardResult struct {
	Task     catalog.Task
	Member   entity.Member
	XPEarned int
	TotalXP  int
	Tier     tier.Tier
	Comment  string
}

// ReactionEvent is one reaction-add delivery from the chat gateway. Duplicate
// deliveries of the same (message, emoji) pair are expected.
type ReactionEvent struct {
	MessageID          string
	Emoji              string
	ReactorID          string
	ReactorIsModerator bool
	AuthorID           string
	AuthorName         string
	MessageText        string
}

// Engine validates completion attempts against the catalog and the ledger and
// performs the atomic award writes. It is the only component with progression
// rules.
type Engine interface {
	CompleteTask(ctx context.Context, memberID, memberName, taskID, comment string) (*AwardResult, error)
	AwardSpecial(ctx context.Context, memberID, memberName, taskID, comment, awardedBy string) (*AwardResult, error)
	// HandleReaction processes a reaction trigger. A nil result with a nil
	// error means the event was ignored (non-moderator, unknown emoji, or an
	// already-claimed pair).
	HandleReaction(ctx context.Context, ev ReactionEvent) (*AwardResult, error)
}

type engine struct {
	catalog     *catalog.Catalog
	repo        repository.Repository
	announcer   notify.Announcer
	roleSync    notify.RoleSynchronizer
	redisClient *redis.Client
	sanitizer   *bluemonday.Policy

	// memberLocks serializes validate-then-write per member so two
	// concurrent attempts cannot both pass a gate only one should satisfy.
	memberLocks sync.Map // discord id -> *sync.Mutex
}

func NewEngine(cat *catalog.Catalog, repo repository.Repository, announcer notify.Announcer, roleSync notify.RoleSynchronizer, redisClient *redis.Client) Engine {
	return &engine{
		catalog:     cat,
		repo:        repo,
		announcer:   announcer,
		roleSync:    roleSync,
		redisClient: redisClient,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (e *engine) lockMember(discordID string) func() {
	v, _ := e.memberLocks.LoadOrStore(discordID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (e *engine) CompleteTask(ctx context.Context, memberID, memberName, taskID, comment string) (*AwardResult, error) {
	task, ok := e.catalog.Lookup(taskID)
	if !ok {
		return nil, rejectTaskNotFound(taskID)
	}
	if task.Path == catalog.PathSpecial {
		return nil, rejectSpecialForbidden()
	}

	unlock := e.lockMember(memberID)
	defer unlock()

	member, err := e.repo.GetOrCreateMember(ctx, memberID, memberName)
	if err != nil {
		return nil, fmt.Errorf("load member %s: %w", memberID, err)
	}

	completed, err := e.repo.CompletedTaskIDs(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load completions for %s: %w", memberID, err)
	}

	if !task.Repeatable && containsString(completed, taskID) {
		return nil, rejectAlreadyCompleted(taskID)
	}

	// Onboarding gate: the outreach and lobbying paths open only after the
	// member has completed enough onboarding tasks.
	if (task.Path == catalog.PathOutreach || task.Path == catalog.PathLobbying) && task.Level >= 1 {
		if e.distinctCompletedOnPath(completed, catalog.PathOnboarding) < onboardingRequired {
			return nil, rejectOnboardingIncomplete(onboardingRequired)
		}
	}

	// Level gate: advancing within a path requires distinct completions at
	// the immediately preceding level. Entering level 2 needs 3, any higher
	// level needs 2.
	if task.Level > 1 {
		required := 2
		if task.Level == 2 {
			required = 3
		}
		prevLevel := task.Level - 1
		if e.distinctCompletedAt(completed, task.Path, prevLevel) < required {
			return nil, rejectLevelPrerequisiteUnmet(task.Path, prevLevel, required)
		}
	}

	return e.commitAward(ctx, *member, task, comment)
}

func (e *engine) AwardSpecial(ctx context.Context, memberID, memberName, taskID, comment, awardedBy string) (*AwardResult, error) {
	task, ok := e.catalog.Lookup(taskID)
	if !ok || task.Path != catalog.PathSpecial {
		return nil, rejectInvalidSpecialTask(taskID)
	}

	unlock := e.lockMember(memberID)
	defer unlock()

	member, err := e.repo.GetOrCreateMember(ctx, memberID, memberName)
	if err != nil {
		return nil, fmt.Errorf("load member %s: %w", memberID, err)
	}

	if comment == "" && awardedBy != "" {
		comment = "Awarded by " + awardedBy
	}
	if awardedBy != "" {
		log.Printf("special award: %s grants %s to %s", awardedBy, taskID, memberID)
	}

	return e.commitAward(ctx, *member, task, comment)
}

func (e *engine) HandleReaction(ctx context.Context, ev ReactionEvent) (*AwardResult, error) {
	if !ev.ReactorIsModerator {
		return nil, nil
	}
	taskID, ok := SpecialEmojiTasks[ev.Emoji]
	if !ok {
		return nil, nil
	}

	claimed, err := e.repo.ClaimAward(ctx, ev.MessageID, ev.Emoji)
	if err != nil {
		return nil, fmt.Errorf("claim award %s/%s: %w", ev.MessageID, ev.Emoji, err)
	}
	if !claimed {
		// Duplicate delivery; the first claim already won. Silent no-op.
		return nil, nil
	}

	comment := truncateRunes(ev.MessageText, reactionCommentRunes)
	result, err := e.AwardSpecial(ctx, ev.AuthorID, ev.AuthorName, taskID, comment, "")
	if err != nil {
		// The claim stays committed: this pair will never be retried.
		log.Printf("award after claim %s/%s failed: %v", ev.MessageID, ev.Emoji, err)
		return nil, err
	}
	return result, nil
}

// commitAward performs the atomic ledger write and dispatches the post-commit
// side effects. Callers hold the member lock.
func (e *engine) commitAward(ctx context.Context, member entity.Member, task catalog.Task, comment string) (*AwardResult, error) {
	rec := &entity.CompletionRecord{
		DiscordID: member.DiscordID,
		TaskID:    task.ID,
		XPEarned:  task.XP,
		Comment:   e.cleanComment(comment),
	}

	total, err := e.repo.RecordCompletion(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record completion of %s for %s: %w", task.ID, member.DiscordID, err)
	}

	member.TotalXP = total
	result := &AwardResult{
		Task:     task,
		Member:   member,
		XPEarned: task.XP,
		TotalXP:  total,
		Tier:     tier.ForXP(total),
		Comment:  rec.Comment,
	}

	e.dispatchSideEffects(result)
	return result, nil
}

// dispatchSideEffects runs the fire-and-forget notifications for an already
// committed award. Failures are logged and never surfaced to the caller.
func (e *engine) dispatchSideEffects(result *AwardResult) {
	ev := notify.NewEvent(
		result.Member.DiscordID, result.Member.DiscordName,
		result.Task.ID, result.Task.Name,
		result.XPEarned, result.TotalXP, result.Comment,
	)

	go func() {
		ctx := context.Background()

		if e.announcer != nil {
			if err := e.announcer.AnnounceAward(ctx, ev); err != nil {
				log.Printf("❌ announce award %s: %v", ev.ID, err)
			}
		}
		if e.roleSync != nil {
			if err := e.roleSync.SyncTierRole(ctx, ev.MemberID, ev.Tier); err != nil {
				log.Printf("❌ tier role sync for %s: %v", ev.MemberID, err)
			}
		}
		if err := notify.PublishFeed(ctx, e.redisClient, ev); err != nil {
			log.Printf("❌ publish award feed event %s: %v", ev.ID, err)
		}
	}()
}

func (e *engine) cleanComment(comment string) string {
	comment = strings.TrimSpace(e.sanitizer.Sanitize(comment))
	// The ellipsis counts against the column size, so truncate short of it.
	if len([]rune(comment)) > maxCommentLen {
		comment = truncateRunes(comment, maxCommentLen-3)
	}
	return comment
}

// distinctCompletedOnPath counts distinct completed task ids whose catalog
// path matches, across all levels.
func (e *engine) distinctCompletedOnPath(completed []string, path catalog.Path) int {
	seen := make(map[string]struct{})
	for _, id := range completed {
		task, ok := e.catalog.Lookup(id)
		if ok && task.Path == path {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// distinctCompletedAt counts distinct completed task ids at exactly the given
// path and level.
func (e *engine) distinctCompletedAt(completed []string, path catalog.Path, level int) int {
	wanted := make(map[string]struct{})
	for _, id := range e.catalog.IDsAt(path, level) {
		wanted[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, id := range completed {
		if _, ok := wanted[id]; ok {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
