package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"kolibri.dev/communityquest/internal/config"
	"kolibri.dev/communityquest/internal/modules/progression/service"
)

const commandPrefix = "!addxp"

// Bot is the chat-gateway process. All progression decisions live in the
// engine; the bot only translates gateway events into engine calls and
// engine results into messages.
type Bot struct {
	session *discordgo.Session
	engine  service.Engine
	cfg     *config.Config
}

func New(cfg *config.Config, engine service.Engine, session *discordgo.Session) *Bot {
	return &Bot{
		session: session,
		engine:  engine,
		cfg:     cfg,
	}
}

func (b *Bot) Start() error {
	b.session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onReactionAdd)
	b.session.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway connection: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	log.Printf("✅ bot is online as %s", s.State.User.Username)
}

// onReactionAdd turns a moderator reaction in the announce channel into a
// special award. Deduplication happens inside the engine's idempotency
// guard, so duplicate gateway deliveries are safe here.
func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.ChannelID != b.cfg.AnnounceChannelID {
		return
	}
	if s.State.User != nil && r.UserID == s.State.User.ID {
		return
	}

	emoji := r.Emoji.Name
	if _, ok := service.SpecialEmojiTasks[emoji]; !ok {
		return
	}

	isMod, err := b.hasManageRoles(s, r.UserID, r.ChannelID)
	if err != nil {
		log.Printf("permission check for reactor %s failed: %v", r.UserID, err)
		return
	}

	msg, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		log.Printf("fetch message %s failed: %v", r.MessageID, err)
		return
	}
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	ev := service.ReactionEvent{
		MessageID:          r.MessageID,
		Emoji:              emoji,
		ReactorID:          r.UserID,
		ReactorIsModerator: isMod,
		AuthorID:           msg.Author.ID,
		AuthorName:         displayName(msg.Author),
		MessageText:        msg.Content,
	}

	result, err := b.engine.HandleReaction(context.Background(), ev)
	if err != nil {
		log.Printf("reaction award on message %s failed: %v", r.MessageID, err)
		return
	}
	if result == nil {
		// Ignored: non-moderator, unknown emoji, or already claimed.
		return
	}

	_, err = s.ChannelMessageSend(r.ChannelID, fmt.Sprintf(
		"🎉 <@%s> earns **+%d XP** for: %s!",
		result.Member.DiscordID, result.XPEarned, result.Task.Name,
	))
	if err != nil {
		log.Printf("send reaction confirmation failed: %v", err)
	}
}

// onMessageCreate implements the moderator command:
//
//	!addxp @member <s1|s2|s3> [comment...]
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, commandPrefix) {
		return
	}

	isMod, err := b.hasManageRoles(s, m.Author.ID, m.ChannelID)
	if err != nil {
		log.Printf("permission check for %s failed: %v", m.Author.ID, err)
		return
	}
	if !isMod {
		b.reply(s, m.ChannelID, "❌ You need the Manage Roles permission for this command.")
		return
	}

	fields := strings.Fields(m.Content)
	if len(fields) < 3 || len(m.Mentions) == 0 {
		b.reply(s, m.ChannelID, "Usage: `!addxp @member <s1|s2|s3> [comment]`")
		return
	}

	target := m.Mentions[0]
	taskID := strings.ToLower(fields[2])
	comment := strings.Join(fields[3:], " ")

	result, err := b.engine.AwardSpecial(
		context.Background(),
		target.ID, displayName(target),
		taskID, comment, displayName(m.Author),
	)
	if err != nil {
		var rej *service.Rejection
		if errors.As(err, &rej) {
			b.reply(s, m.ChannelID, "❌ "+rej.Message)
		} else {
			log.Printf("addxp for %s failed: %v", target.ID, err)
			b.reply(s, m.ChannelID, "❌ Something went wrong, try again later.")
		}
		return
	}

	b.reply(s, m.ChannelID, fmt.Sprintf(
		"✅ **%s** recorded for %s!\n+%d XP → Total: **%d XP**",
		result.Task.Name, target.Mention(), result.XPEarned, result.TotalXP,
	))
}

func (b *Bot) hasManageRoles(s *discordgo.Session, userID, channelID string) (bool, error) {
	perms, err := s.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionManageRoles != 0, nil
}

func (b *Bot) reply(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.Printf("send reply failed: %v", err)
	}
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
