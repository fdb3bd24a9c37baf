package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	SlackBotToken      string
	SlackSigningSecret string
	TargetChannel      string

	StorePath string
	BackupDir string

	ReconcileCron string
	BackupCron    string

	LeaderboardURL string
	RedisURL       string

	MetricsUser string
	MetricsPass string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3333"),

		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		TargetChannel:      os.Getenv("TARGET_CHANNEL"),

		StorePath: getEnv("STORE_PATH", "./data/streaks.db"),
		BackupDir: getEnv("BACKUP_DIR", "./backups"),

		// Reconcile shortly after the UTC day boundary, once the prior
		// day's last events have landed.
		ReconcileCron: getEnv("RECONCILE_CRON", "10 0 * * *"),
		BackupCron:    getEnv("BACKUP_CRON", "0 */6 * * *"),

		LeaderboardURL: getEnv("LEADERBOARD_URL", "http://localhost:3333/assets/leaderboard.html"),
		RedisURL:       os.Getenv("REDIS_URL"),

		MetricsUser: os.Getenv("METRICS_USER"),
		MetricsPass: os.Getenv("METRICS_PASS"),
	}

	if cfg.SlackBotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN environment variable is not set")
	}
	if cfg.SlackSigningSecret == "" {
		return nil, fmt.Errorf("SLACK_SIGNING_SECRET environment variable is not set")
	}
	if cfg.TargetChannel == "" {
		return nil, fmt.Errorf("TARGET_CHANNEL environment variable is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
