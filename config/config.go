package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Placement policy names accepted in WALL_PLACEMENT.
const (
	PlacementFixed   = "fixed"
	PlacementScatter = "scatter"
)

// Config is the full environment surface, loaded once at process start.
type Config struct {
	BotToken  string
	MongoURL  string
	MongoName string
	WebAppURL string
	Port      string
	RedisAddr string
	AdminIDs  []int64
	Placement string
	LogLevel  string
}

// FromEnv reads configuration from the environment. Only ADMIN_IDS and
// WALL_PLACEMENT can fail validation; everything else falls back to the
// defaults the original deployment used.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:  strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		MongoURL:  envOr("MONGODB_URL", "mongodb://localhost:27017"),
		MongoName: envOr("MONGODB_NAME", "graffiti_wall"),
		WebAppURL: envOr("WEBAPP_URL", "http://localhost:8080"),
		Port:      normalizePort(os.Getenv("PORT")),
		RedisAddr: strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Placement: envOr("WALL_PLACEMENT", PlacementFixed),
		LogLevel:  envOr("LOG_LEVEL", "info"),
	}

	admins, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return Config{}, err
	}
	cfg.AdminIDs = admins

	switch cfg.Placement {
	case PlacementFixed, PlacementScatter:
	default:
		return Config{}, fmt.Errorf("unknown WALL_PLACEMENT %q", cfg.Placement)
	}

	return cfg, nil
}

// parseAdminIDs parses the comma-separated delete allow-list. Empty input is
// valid and means nobody can delete.
func parseAdminIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
