package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Archipelago ArchipelagoConfig       `yaml:"archipelago"`
	OBS         OBSConfig               `yaml:"obs"`
	Source      SourceConfig            `yaml:"source"`
	Actions     map[string]ActionConfig `yaml:"actions"`
	Ticker      TickerConfig            `yaml:"ticker"`
	Discord     DiscordConfig           `yaml:"discord"`
	OTel        OTelConfig              `yaml:"otel"`
	Metrics     MetricsConfig           `yaml:"metrics"`
	Export      ExportConfig            `yaml:"export"`
	Logging     LoggingConfig           `yaml:"logging"`
}

type ArchipelagoConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	SlotName string `yaml:"slot_name"`
	Password string `yaml:"-"` // from env only
}

type OBSConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"-"` // from env only
}

// SourceConfig selects the ingestion strategy.
type SourceConfig struct {
	Strategy  string `yaml:"strategy"`   // "protocol", "subprocess" or "logfile"
	ClientDir string `yaml:"client_dir"` // Archipelago install dir (subprocess)
	Python    string `yaml:"python"`     // interpreter for the text client
	LogFile   string `yaml:"log_file"`   // client log path (logfile)
}

// ActionConfig declares the control-surface action for one event type.
type ActionConfig struct {
	Type         string `yaml:"type"` // scene_switch, source_visibility, text_update, filter_toggle, media_restart
	SceneName    string `yaml:"scene_name"`
	SourceName   string `yaml:"source_name"`
	TextTemplate string `yaml:"text_template"`
	FilterName   string `yaml:"filter_name"`
	Visible      *bool  `yaml:"visible"`
	Enabled      *bool  `yaml:"enabled"`
}

// visible and enabled default to true when the key is omitted.
func (a ActionConfig) visible() bool { return a.Visible == nil || *a.Visible }
func (a ActionConfig) enabled() bool { return a.Enabled == nil || *a.Enabled }

type TickerConfig struct {
	Enabled       bool              `yaml:"enabled"`
	SceneName     string            `yaml:"scene_name"`
	TextSource    string            `yaml:"text_source"`
	PlayerImage   string            `yaml:"player_image"`
	EventImage    string            `yaml:"event_image"`
	ItemImage     string            `yaml:"item_image"`
	LocationImage string            `yaml:"location_image"`
	Events        []string          `yaml:"events"` // event types to animate, or ["all"]
	Animation     AnimationSpec     `yaml:"animation"`
	Images        ImageConfig       `yaml:"images"`
	Celebration   CelebrationConfig `yaml:"celebration"`
}

// AnimationSpec holds the ticker motion parameters. Pure configuration.
type AnimationSpec struct {
	Enabled       bool          `yaml:"enabled"`
	StartX        float64       `yaml:"start_x"` // off-screen text start
	EndX          float64       `yaml:"end_x"`   // on-screen rest position
	Duration      time.Duration `yaml:"duration"`
	Steps         int           `yaml:"steps"`
	Exponent      float64       `yaml:"exponent"` // ease-out power, >1
	ImageDuration time.Duration `yaml:"image_duration"`
	ImageSteps    int           `yaml:"image_steps"`
	ImageStagger  time.Duration `yaml:"image_stagger"` // per-slot start delay
	Bounce        BounceSpec    `yaml:"bounce"`
}

// BounceSpec shapes the three-phase image scale-up: grow to Overshoot by
// GrowUntil, settle back to Intermediate by SettleUntil, then ease to 1.0.
type BounceSpec struct {
	Enabled      bool    `yaml:"enabled"`
	Overshoot    float64 `yaml:"overshoot"`
	GrowUntil    float64 `yaml:"grow_until"`
	SettleUntil  float64 `yaml:"settle_until"`
	Intermediate float64 `yaml:"intermediate"`
}

type ImageConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Dir          string `yaml:"dir"`
	DefaultImage string `yaml:"default_image"`
}

type CelebrationConfig struct {
	Enabled    bool          `yaml:"enabled"`
	SceneName  string        `yaml:"scene_name"`
	MainScene  string        `yaml:"main_scene"`
	TextSource string        `yaml:"text_source"` // optional, best-effort
	Duration   time.Duration `yaml:"duration"`
}

type DiscordConfig struct {
	Enabled   bool     `yaml:"enabled"`
	BotToken  string   `yaml:"-"` // from env only
	ChannelID string   `yaml:"-"` // from env only
	Events    []string `yaml:"events"`
}

type OTelConfig struct {
	ServiceName string `yaml:"service_name"`
}

type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

type ExportConfig struct {
	Enabled bool        `yaml:"enabled"`
	Events  interface{} `yaml:"events"` // "all" or []string
}

type LoggingConfig struct {
	AllEvents bool `yaml:"all_events"`
	EventData bool `yaml:"event_data"`
}

func defaultConfig() Config {
	return Config{
		Archipelago: ArchipelagoConfig{
			Host:     "archipelago.gg",
			Port:     "38281",
			SlotName: "OBS_Observer_Bot",
		},
		OBS: OBSConfig{
			Host: "localhost",
			Port: "4455",
		},
		Source: SourceConfig{
			Strategy: "protocol",
			Python:   "python3",
		},
		Actions: map[string]ActionConfig{
			"item_received":    {Type: "text_update", SourceName: "LastItemReceived", TextTemplate: "{text}"},
			"item_sent":        {Type: "text_update", SourceName: "LastItemSent", TextTemplate: "{text}"},
			"location_checked": {Type: "text_update", SourceName: "LastLocationChecked", TextTemplate: "{text}"},
			"player_joined":    {Type: "text_update", SourceName: "PlayerStatus", TextTemplate: "{text}"},
			"player_left":      {Type: "text_update", SourceName: "PlayerStatus", TextTemplate: "{text}"},
			"goal_completed":   {Type: "scene_switch", SceneName: "GoalCompleted"},
			"hint":             {Type: "text_update", SourceName: "LastHint", TextTemplate: "{text}"},
			"chat":             {Type: "text_update", SourceName: "LastChatMessage", TextTemplate: "{text}"},
			"server_message":   {Type: "text_update", SourceName: "ServerMessage", TextTemplate: "{text}"},
		},
		Ticker: TickerConfig{
			Enabled:       true,
			SceneName:     "Main",
			TextSource:    "TickerText",
			PlayerImage:   "TickerPlayerImage",
			EventImage:    "TickerEventImage",
			ItemImage:     "TickerItemImage",
			LocationImage: "TickerLocationImage",
			Events: []string{
				"item_received", "item_sent", "location_checked",
				"player_joined", "player_left", "goal_completed", "hint",
			},
			Animation: AnimationSpec{
				Enabled:       true,
				StartX:        -400,
				EndX:          200,
				Duration:      1500 * time.Millisecond,
				Steps:         8,
				Exponent:      2,
				ImageDuration: 750 * time.Millisecond,
				ImageSteps:    5,
				ImageStagger:  150 * time.Millisecond,
				Bounce: BounceSpec{
					Enabled:      true,
					Overshoot:    1.15,
					GrowUntil:    0.6,
					SettleUntil:  0.8,
					Intermediate: 0.95,
				},
			},
			Images: ImageConfig{
				Enabled: true,
				Dir:     "images",
			},
			Celebration: CelebrationConfig{
				Enabled:    true,
				SceneName:  "GoalCompleted",
				MainScene:  "Main",
				TextSource: "CelebrationText",
				Duration:   8 * time.Second,
			},
		},
		Discord: DiscordConfig{
			Enabled: false,
			Events:  []string{"all"},
		},
		OTel: OTelConfig{
			ServiceName: "archipelago-obs-bridge",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Interval: 15 * time.Second,
		},
		Export: ExportConfig{
			Enabled: false,
			Events:  "all",
		},
		Logging: LoggingConfig{
			AllEvents: true,
		},
	}
}

func loadConfig() (Config, error) {
	cfg := defaultConfig()

	configPath := envOr("CONFIG_PATH", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}
	// config file is optional — missing file is not an error

	// Env overrides (secrets + runtime values)
	cfg.Archipelago.Password = os.Getenv("AP_PASSWORD")
	if v := os.Getenv("AP_HOST"); v != "" {
		cfg.Archipelago.Host = v
	}
	if v := os.Getenv("AP_PORT"); v != "" {
		cfg.Archipelago.Port = v
	}
	if v := os.Getenv("AP_SLOT_NAME"); v != "" {
		cfg.Archipelago.SlotName = v
	}
	cfg.OBS.Password = os.Getenv("OBS_PASSWORD")
	if v := os.Getenv("OBS_HOST"); v != "" {
		cfg.OBS.Host = v
	}
	if v := os.Getenv("OBS_PORT"); v != "" {
		cfg.OBS.Port = v
	}
	cfg.Discord.BotToken = os.Getenv("DISCORD_BOT_TOKEN")
	cfg.Discord.ChannelID = os.Getenv("DISCORD_CHANNEL_ID")

	if cfg.Discord.BotToken != "" && cfg.Discord.ChannelID == "" {
		return cfg, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_BOT_TOKEN is set")
	}
	if cfg.Discord.BotToken == "" {
		cfg.Discord.Enabled = false
	}

	switch cfg.Source.Strategy {
	case "protocol", "subprocess", "logfile":
	default:
		return cfg, fmt.Errorf("unknown source strategy %q", cfg.Source.Strategy)
	}
	if cfg.Source.Strategy == "logfile" && cfg.Source.LogFile == "" {
		return cfg, fmt.Errorf("source.log_file is required for the logfile strategy")
	}

	return cfg, nil
}

// tickerEventAllowed returns whether the ticker animates a given event type.
func (c *Config) tickerEventAllowed(eventType EventType) bool {
	if !c.Ticker.Enabled {
		return false
	}
	for _, e := range c.Ticker.Events {
		if e == "all" || e == string(eventType) {
			return true
		}
	}
	return false
}

// discordEventAllowed returns whether a given event type is mirrored to Discord.
func (c *Config) discordEventAllowed(eventType EventType) bool {
	if !c.Discord.Enabled {
		return false
	}
	for _, e := range c.Discord.Events {
		if e == "all" || e == string(eventType) {
			return true
		}
	}
	return false
}

// exportEventAllowed returns whether a given event type is exported via OTLP.
func (c *Config) exportEventAllowed(eventType EventType) bool {
	if !c.Export.Enabled {
		return false
	}
	if s, ok := c.Export.Events.(string); ok && s == "all" {
		return true
	}
	if list, ok := c.Export.Events.([]interface{}); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && s == string(eventType) {
				return true
			}
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
