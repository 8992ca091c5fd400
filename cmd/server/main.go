package main

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"kolibri.dev/communityquest/internal/bot"
	"kolibri.dev/communityquest/internal/config"
	"kolibri.dev/communityquest/internal/entity"
	"kolibri.dev/communityquest/internal/notify"
	"kolibri.dev/communityquest/internal/server"
	"kolibri.dev/communityquest/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := db.AutoMigrate(
		&entity.Member{},
		&entity.CompletionRecord{},
		&entity.AwardClaim{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		log.Println("✅ redis connected, live feed and rate limiting enabled")
	} else {
		log.Println("⚠️ REDIS_URL not set, live feed and rate limiting disabled")
	}

	var announcer notify.Announcer = &notify.LogAnnouncer{}
	var roleSync notify.RoleSynchronizer = &notify.LogRoleSync{}
	if cfg.DiscordToken != "" {
		// REST-only session: announcements and role updates work without
		// a gateway connection, that is the bot process's job.
		session, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			log.Fatalf("failed to create discord session: %v", err)
		}
		announcer = bot.NewDiscordAnnouncer(session, cfg.AnnounceChannelID)
		roleSync = bot.NewDiscordRoleSync(session, cfg.GuildID, cfg.TierRoleIDs)
	} else {
		log.Println("⚠️ DISCORD_TOKEN not set, announcements will be logged only")
	}

	srv := server.NewServer(cfg, db, redisClient, announcer, roleSync)

	log.Printf("🚀 server starting on port %s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
