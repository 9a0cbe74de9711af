package main

import (
	"testing"

	"github.com/zulandar/switchboard/internal/config"
)

func TestCreateAdapter_Discord(t *testing.T) {
	cfg := &config.Config{Platform: "discord"}
	cfg.Discord.BotToken = "test-token"

	adapter, err := createAdapter(cfg)
	if err != nil {
		t.Fatalf("createAdapter(discord): %v", err)
	}
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
}

func TestCreateAdapter_Slack(t *testing.T) {
	cfg := &config.Config{Platform: "slack"}
	cfg.Slack.AppToken = "xapp-1"
	cfg.Slack.BotToken = "xoxb-1"

	adapter, err := createAdapter(cfg)
	if err != nil {
		t.Fatalf("createAdapter(slack): %v", err)
	}
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
}

func TestCreateAdapter_Unsupported(t *testing.T) {
	cfg := &config.Config{Platform: "telegram"}
	if _, err := createAdapter(cfg); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestStoreOptions_Mapping(t *testing.T) {
	cfg := &config.Config{}
	cfg.Store.Backend = "mysql"
	cfg.Store.Host = "db.internal"
	cfg.Store.Port = 3307
	cfg.Store.Database = "switchboard"
	cfg.Store.User = "sb"
	cfg.Store.Password = "secret"

	opts := storeOptions(cfg)
	if opts.Backend != "mysql" || opts.Host != "db.internal" || opts.Port != 3307 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Database != "switchboard" || opts.User != "sb" || opts.Password != "secret" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestStart_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"start", "-c", "/nonexistent/switchboard.yaml"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing config file")
	}
}
