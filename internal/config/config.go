// Package config provides YAML-based configuration loading for Switchboard.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Switchboard configuration, loaded from
// switchboard.yaml.
type Config struct {
	Platform  string          `yaml:"platform"` // "discord" or "slack"
	Discord   DiscordConfig   `yaml:"discord"`
	Slack     SlackConfig     `yaml:"slack"`
	Store     StoreConfig     `yaml:"store"`
	Agent     AgentConfig     `yaml:"agent"`
	Turns     TurnsConfig     `yaml:"turns"`
	Retention RetentionConfig `yaml:"retention"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken string `yaml:"bot_token"`
}

// SlackConfig holds Slack Socket Mode credentials.
type SlackConfig struct {
	AppToken string `yaml:"app_token"` // xapp-...
	BotToken string `yaml:"bot_token"` // xoxb-...
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"` // "sqlite" (default) or "mysql"
	Path     string `yaml:"path"`    // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AgentConfig describes the external agent-pipeline runner.
type AgentConfig struct {
	Command      string   `yaml:"command"` // agent runtime binary
	Args         []string `yaml:"args"`
	WorkDir      string   `yaml:"work_dir"`
	TimeoutSec   int      `yaml:"timeout_sec"`   // per-turn wall clock limit
	InitialStage string   `yaml:"initial_stage"` // stage for brand-new conversations
}

// TurnsConfig tunes turn aggregation and processing.
type TurnsConfig struct {
	MaxHistory        int `yaml:"max_history"`         // turn-history bound
	GroupWindowMS     int `yaml:"group_window_ms"`     // grouped-upload debounce window
	TypingIntervalSec int `yaml:"typing_interval_sec"` // liveness signal cadence
}

// RetentionConfig schedules the stale-conversation sweep. Empty cron
// disables it.
type RetentionConfig struct {
	Cron       string `yaml:"cron"` // 5-field cron expression
	MaxAgeDays int    `yaml:"max_age_days"`
}

// DashboardConfig configures the status HTTP server. Port 0 disables it.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		c.Store.Path = "data/switchboard.sqlite"
	}
	if c.Store.Backend == "mysql" {
		if c.Store.Host == "" {
			c.Store.Host = "127.0.0.1"
		}
		if c.Store.Port == 0 {
			c.Store.Port = 3306
		}
	}
	if c.Agent.TimeoutSec == 0 {
		c.Agent.TimeoutSec = 300
	}
	if c.Agent.InitialStage == "" {
		c.Agent.InitialStage = "hub"
	}
	if c.Turns.MaxHistory == 0 {
		c.Turns.MaxHistory = 64
	}
	if c.Turns.GroupWindowMS == 0 {
		c.Turns.GroupWindowMS = 2000
	}
	if c.Turns.TypingIntervalSec == 0 {
		c.Turns.TypingIntervalSec = 3
	}
	if c.Retention.Cron != "" && c.Retention.MaxAgeDays == 0 {
		c.Retention.MaxAgeDays = 30
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Platform {
	case "discord":
		if c.Discord.BotToken == "" {
			errs = append(errs, "discord.bot_token is required")
		}
	case "slack":
		if c.Slack.AppToken == "" {
			errs = append(errs, "slack.app_token is required")
		}
		if c.Slack.BotToken == "" {
			errs = append(errs, "slack.bot_token is required")
		}
	case "":
		errs = append(errs, "platform is required")
	default:
		errs = append(errs, fmt.Sprintf("unknown platform %q", c.Platform))
	}
	switch c.Store.Backend {
	case "sqlite":
	case "mysql":
		if c.Store.Database == "" {
			errs = append(errs, "store.database is required for mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown store.backend %q", c.Store.Backend))
	}
	if c.Agent.Command == "" {
		errs = append(errs, "agent.command is required")
	}
	if c.Turns.MaxHistory < 0 {
		errs = append(errs, "turns.max_history must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GroupWindow returns the debounce window as a duration.
func (c *Config) GroupWindow() time.Duration {
	return time.Duration(c.Turns.GroupWindowMS) * time.Millisecond
}

// TypingInterval returns the liveness signal cadence as a duration.
func (c *Config) TypingInterval() time.Duration {
	return time.Duration(c.Turns.TypingIntervalSec) * time.Second
}

// AgentTimeout returns the per-turn agent wall clock limit as a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutSec) * time.Second
}

// RetentionMaxAge returns the retention cutoff age as a duration.
func (c *Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeDays) * 24 * time.Hour
}
