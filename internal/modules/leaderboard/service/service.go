package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	leaderboardDto "kolibri.dev/communityquest/internal/modules/leaderboard/dto"
	leaderboardRepo "kolibri.dev/communityquest/internal/modules/leaderboard/repository"
	"kolibri.dev/communityquest/internal/tier"
)

// Standings change only on awards; a short cache keeps the hot endpoint off
// the database without an invalidation protocol.
const cacheTTL = 30 * time.Second

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo        leaderboardRepo.LeaderboardRepository
	redisClient *redis.Client
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, redisClient *redis.Client) LeaderboardService {
	return &leaderboardService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]leaderboardDto.LeaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:top:%d", limit)

	if s.redisClient != nil {
		if payload, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var cached []leaderboardDto.LeaderboardEntry
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				return cached, nil
			}
		}
	}

	members, err := s.repo.ListByXP(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboardDto.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		t := tier.ForXP(member.TotalXP)
		entry := leaderboardDto.LeaderboardEntry{
			Position:    i + 1,
			DiscordID:   member.DiscordID,
			DiscordName: member.DiscordName,
			TotalXP:     member.TotalXP,
			Tier:        int(t),
			TierName:    t.Name(),
		}
		if target, ok := tier.NextTargetXP(member.TotalXP); ok {
			entry.NextTierXP = &target
		}
		entries = append(entries, entry)
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, payload, cacheTTL).Err(); err != nil {
				log.Printf("leaderboard cache write failed: %v", err)
			}
		}
	}

	return entries, nil
}
