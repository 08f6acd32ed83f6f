package config

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "MONGODB_URL", "MONGODB_NAME", "WEBAPP_URL",
		"PORT", "REDIS_ADDR", "ADMIN_IDS", "WALL_PLACEMENT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.MongoURL != "mongodb://localhost:27017" {
		t.Fatalf("mongo url: %q", cfg.MongoURL)
	}
	if cfg.MongoName != "graffiti_wall" {
		t.Fatalf("mongo db: %q", cfg.MongoName)
	}
	if cfg.Port != ":8080" {
		t.Fatalf("port: %q", cfg.Port)
	}
	if cfg.Placement != PlacementFixed {
		t.Fatalf("placement: %q", cfg.Placement)
	}
	if len(cfg.AdminIDs) != 0 {
		t.Fatalf("admin ids: %v", cfg.AdminIDs)
	}
}

func TestFromEnvParsesAdminIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_IDS", " 7, 8 ,9,")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := []int64{7, 8, 9}
	if len(cfg.AdminIDs) != len(want) {
		t.Fatalf("admin ids: %v", cfg.AdminIDs)
	}
	for i, id := range want {
		if cfg.AdminIDs[i] != id {
			t.Fatalf("admin ids: %v", cfg.AdminIDs)
		}
	}
}

func TestFromEnvRejectsBadAdminIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_IDS", "7,bob")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for non-numeric admin id")
	}
}

func TestFromEnvRejectsUnknownPlacement(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALL_PLACEMENT", "pile")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown placement policy")
	}
}

func TestFromEnvNormalizesPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != ":9090" {
		t.Fatalf("port: %q", cfg.Port)
	}
}
