package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string

	ListenAddr string

	// YouTubeAPIKey authenticates calls to the YouTube Data API.
	// If empty, poll cycles still run but resolve no statistics.
	YouTubeAPIKey string

	// Timezone is the single zone used to derive sample dates and
	// timestamps and to align the poll schedule. Not per-video.
	Timezone string
	Location *time.Location

	// PollInterval is the wall-clock-aligned polling period.
	PollInterval time.Duration

	// PollCooldown is how long the poller waits after a failed cycle
	// before rescheduling.
	PollCooldown time.Duration

	// FetchChunkSize caps how many video IDs go into a single
	// statistics request.
	FetchChunkSize int

	// AdminToken guards mutating registry endpoints. If empty, those
	// endpoints are open (single-operator deployments behind a proxy).
	AdminToken string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("APP_DATABASE_URL"),
		ListenAddr:     getenv("APP_LISTEN_ADDR", ":8080"),
		YouTubeAPIKey:  getenv("APP_YOUTUBE_API_KEY", ""),
		Timezone:       getenv("APP_TIMEZONE", "Asia/Kolkata"),
		PollInterval:   5 * time.Minute,
		PollCooldown:   60 * time.Second,
		FetchChunkSize: 50,
		AdminToken:     getenv("APP_ADMIN_TOKEN", ""),
	}

	if v := os.Getenv("APP_POLL_INTERVAL_MINUTES"); v != "" {
		// The poll grid is anchored to the top of the hour, so the
		// interval must divide 60 or the boundaries shift every hour.
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 60 && 60%n == 0 {
			cfg.PollInterval = time.Duration(n) * time.Minute
		} else {
			log.Printf("invalid APP_POLL_INTERVAL_MINUTES %q (must be a divisor of 60), keeping %s", v, cfg.PollInterval)
		}
	}
	if v := os.Getenv("APP_POLL_COOLDOWN_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollCooldown = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("APP_FETCH_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchChunkSize = n
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("invalid APP_TIMEZONE %q, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	cfg.Location = loc

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
