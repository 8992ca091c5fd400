package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	DiscordToken      string
	GuildID           string
	AnnounceChannelID string
	TierRoleIDs       [3]string // role ids for tiers 1..3, index tier-1

	RateLimitComplete time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		GuildID:           os.Getenv("GUILD_ID"),
		AnnounceChannelID: os.Getenv("DID_A_THING_CHANNEL_ID"),
		TierRoleIDs: [3]string{
			os.Getenv("ROLE_TIER_1"),
			os.Getenv("ROLE_TIER_2"),
			os.Getenv("ROLE_TIER_3"),
		},
	}

	var err error
	cfg.RateLimitComplete, err = time.ParseDuration(getEnv("RATE_LIMIT_COMPLETE", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMPLETE: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
