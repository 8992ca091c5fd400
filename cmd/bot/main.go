package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"kolibri.dev/communityquest/internal/bot"
	"kolibri.dev/communityquest/internal/catalog"
	"kolibri.dev/communityquest/internal/config"
	"kolibri.dev/communityquest/internal/entity"
	progressionRepo "kolibri.dev/communityquest/internal/modules/progression/repository"
	progressionService "kolibri.dev/communityquest/internal/modules/progression/service"
	"kolibri.dev/communityquest/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is required for the bot process")
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
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("failed to create discord session: %v", err)
	}

	announcer := bot.NewDiscordAnnouncer(session, cfg.AnnounceChannelID)
	roleSync := bot.NewDiscordRoleSync(session, cfg.GuildID, cfg.TierRoleIDs)

	repo := progressionRepo.NewRepository(db)
	engine := progressionService.NewEngine(catalog.Default(), repo, announcer, roleSync, redisClient)

	b := bot.New(cfg, engine, session)
	if err := b.Start(); err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}
	defer b.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down bot")
}
