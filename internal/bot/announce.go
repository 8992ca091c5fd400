package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"kolibri.dev/communityquest/internal/notify"
	"kolibri.dev/communityquest/internal/tier"
)

const embedColor = 0x4caf50

// DiscordAnnouncer posts award embeds to the announce channel. It only needs
// the REST side of the session, so the API process can use it without ever
// opening a gateway connection.
type DiscordAnnouncer struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAnnouncer(session *discordgo.Session, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{session: session, channelID: channelID}
}

func (a *DiscordAnnouncer) AnnounceAward(_ context.Context, ev notify.Event) error {
	embed := &discordgo.MessageEmbed{
		Title: "✅ Task completed!",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("<@%s>", ev.MemberID), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("+%d", ev.XPEarned), Inline: true},
			{Name: "Total", Value: fmt.Sprintf("%d XP", ev.TotalXP), Inline: true},
			{Name: "Task", Value: ev.TaskName, Inline: false},
		},
	}
	if ev.Comment != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Comment", Value: ev.Comment, Inline: false,
		})
	}

	_, err := a.session.ChannelMessageSendEmbed(a.channelID, embed)
	return err
}

// DiscordRoleSync reassigns the guild tier roles to match the resolved tier.
type DiscordRoleSync struct {
	session *discordgo.Session
	guildID string
	roleIDs [3]string // index tier-1
}

func NewDiscordRoleSync(session *discordgo.Session, guildID string, roleIDs [3]string) *DiscordRoleSync {
	return &DiscordRoleSync{session: session, guildID: guildID, roleIDs: roleIDs}
}

func (r *DiscordRoleSync) SyncTierRole(_ context.Context, memberID string, t tier.Tier) error {
	member, err := r.session.GuildMember(r.guildID, memberID)
	if err != nil {
		return fmt.Errorf("fetch guild member %s: %w", memberID, err)
	}

	target := r.roleIDs[int(t)-1]
	if target == "" {
		return fmt.Errorf("no role configured for tier %d", t)
	}

	held := make(map[string]bool, len(member.Roles))
	for _, roleID := range member.Roles {
		held[roleID] = true
	}

	for _, roleID := range r.roleIDs {
		if roleID == "" || roleID == target || !held[roleID] {
			continue
		}
		if err := r.session.GuildMemberRoleRemove(r.guildID, memberID, roleID); err != nil {
			return fmt.Errorf("remove role %s: %w", roleID, err)
		}
	}

	if !held[target] {
		if err := r.session.GuildMemberRoleAdd(r.guildID, memberID, target); err != nil {
			return fmt.Errorf("add role %s: %w", target, err)
		}
	}
	return nil
}
