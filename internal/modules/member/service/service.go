package service

import (
	"context"

	memberDto "kolibri.dev/communityquest/internal/modules/member/dto"
	progressionRepo "kolibri.dev/communityquest/internal/modules/progression/repository"
	"kolibri.dev/communityquest/internal/tier"
)

type MemberService interface {
	// Profile returns the member's current standing. Members are created
	// lazily on first interaction, so an unknown id yields a fresh profile.
	Profile(ctx context.Context, memberID, memberName string) (*memberDto.ProfileResponse, error)
}

type memberService struct {
	repo progressionRepo.Repository
}

func NewMemberService(repo progressionRepo.Repository) MemberService {
	return &memberService{repo: repo}
}

func (s *memberService) Profile(ctx context.Context, memberID, memberName string) (*memberDto.ProfileResponse, error) {
	member, err := s.repo.GetOrCreateMember(ctx, memberID, memberName)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.CompletedTaskIDs(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		completed = []string{}
	}

	t := tier.ForXP(member.TotalXP)
	resp := &memberDto.ProfileResponse{
		DiscordID:      member.DiscordID,
		DiscordName:    member.DiscordName,
		TotalXP:        member.TotalXP,
		Tier:           int(t),
		TierName:       t.Name(),
		CompletedTasks: completed,
	}
	if target, ok := tier.NextTargetXP(member.TotalXP); ok {
		resp.NextTierXP = &target
	}
	return resp, nil
}
