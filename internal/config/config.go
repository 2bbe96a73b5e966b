package config

import (
	"fmt"
	"os"
)

// Config holds the process-level settings loaded from the environment.
type Config struct {
	DiscordToken   string
	DatabaseURL    string
	OwnerID        string
	RankingBaseURL string
	SyncCron       string
	HealthAddr     string
}

// LoadConfig reads the required environment variables. The Discord token and
// database URL are mandatory; everything else has a sensible default.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		OwnerID:        os.Getenv("OWNER_ID"),
		RankingBaseURL: getEnvString("RANKING_BASE_URL", "https://ranking.dungeon-striker.com"),
		SyncCron:       getEnvString("SYNC_CRON", "0 */6 * * *"),
		HealthAddr:     getEnvString("HEALTH_ADDR", ":8080"),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
