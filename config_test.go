package main

import (
	"os"
	"path/filepath"
	"testing"
)

func loadTestConfig(t *testing.T, yaml string) Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AP_PASSWORD", "")
	t.Setenv("OBS_PASSWORD", "")
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AP_PASSWORD", "")
	t.Setenv("DISCORD_BOT_TOKEN", "")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Archipelago.Host != "archipelago.gg" {
		t.Errorf("default host = %q", cfg.Archipelago.Host)
	}
	if cfg.Source.Strategy != "protocol" {
		t.Errorf("default strategy = %q", cfg.Source.Strategy)
	}
	if action := cfg.Actions["goal_completed"]; action.Type != "scene_switch" {
		t.Errorf("default goal action = %+v", action)
	}
	if !cfg.Ticker.Animation.Bounce.Enabled {
		t.Error("bounce should default to enabled")
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	cfg := loadTestConfig(t, `
archipelago:
  host: localhost
ticker:
  animation:
    steps: 16
actions:
  goal_completed:
    type: scene_switch
    scene_name: Celebrate
`)

	// overridden keys
	if cfg.Archipelago.Host != "localhost" {
		t.Errorf("host = %q", cfg.Archipelago.Host)
	}
	if cfg.Ticker.Animation.Steps != 16 {
		t.Errorf("steps = %d", cfg.Ticker.Animation.Steps)
	}
	if cfg.Actions["goal_completed"].SceneName != "Celebrate" {
		t.Errorf("goal scene = %q", cfg.Actions["goal_completed"].SceneName)
	}

	// sibling keys keep their defaults: nested objects merge, they are not
	// replaced wholesale
	if cfg.Archipelago.Port != "38281" {
		t.Errorf("port lost its default: %q", cfg.Archipelago.Port)
	}
	if cfg.Ticker.Animation.Exponent != 2 {
		t.Errorf("exponent lost its default: %v", cfg.Ticker.Animation.Exponent)
	}
	if cfg.Actions["item_received"].SourceName != "LastItemReceived" {
		t.Errorf("item_received action lost its default: %+v", cfg.Actions["item_received"])
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	cfg := loadTestConfig(t, "archipelago: {host: filehost}\n")
	if cfg.Archipelago.Host != "filehost" {
		t.Fatalf("host = %q", cfg.Archipelago.Host)
	}

	t.Setenv("AP_HOST", "envhost")
	t.Setenv("AP_PASSWORD", "hunter2")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Archipelago.Host != "envhost" {
		t.Errorf("env host override lost: %q", cfg.Archipelago.Host)
	}
	if cfg.Archipelago.Password != "hunter2" {
		t.Errorf("password = %q", cfg.Archipelago.Password)
	}
}

func TestLoadConfigRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: {strategy: telepathy}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DISCORD_BOT_TOKEN", "")

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected an error for an unknown strategy")
	}
}

func TestEventFilters(t *testing.T) {
	cfg := defaultConfig()

	if !cfg.tickerEventAllowed(EventItemReceived) {
		t.Error("item_received should be ticker-eligible by default")
	}
	if cfg.tickerEventAllowed(EventRoomUpdate) {
		t.Error("room_update should not hit the ticker by default")
	}

	cfg.Discord.Enabled = true
	cfg.Discord.Events = []string{"goal_completed"}
	if cfg.discordEventAllowed(EventChat) {
		t.Error("chat should be filtered from discord")
	}
	if !cfg.discordEventAllowed(EventGoalCompleted) {
		t.Error("goal_completed should pass the discord filter")
	}

	cfg.Export.Enabled = true
	cfg.Export.Events = "all"
	if !cfg.exportEventAllowed(EventChat) {
		t.Error("export 'all' should pass everything")
	}
	cfg.Export.Events = []interface{}{"hint"}
	if cfg.exportEventAllowed(EventChat) || !cfg.exportEventAllowed(EventHint) {
		t.Error("export list filter broken")
	}
}
