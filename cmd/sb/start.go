package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/agent"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/messenger"
	discordadapter "github.com/zulandar/switchboard/internal/messenger/discord"
	slackadapter "github.com/zulandar/switchboard/internal/messenger/slack"
	"github.com/zulandar/switchboard/internal/operator"
	"github.com/zulandar/switchboard/internal/store"
)

func newStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the Switchboard daemon",
		Long:  "Connects to the configured chat platform and routes conversations through the agent pipeline until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	return cmd
}

func runStart(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	runner := &agent.CLIRunner{
		Command: cfg.Agent.Command,
		Args:    cfg.Agent.Args,
		WorkDir: cfg.Agent.WorkDir,
		Timeout: cfg.AgentTimeout(),
	}

	daemon, err := operator.NewDaemon(operator.DaemonOpts{
		Store:           st,
		Adapter:         adapter,
		Runner:          runner,
		MaxHistory:      cfg.Turns.MaxHistory,
		GroupWindow:     cfg.GroupWindow(),
		TypingInterval:  cfg.TypingInterval(),
		InitialStage:    cfg.Agent.InitialStage,
		RetentionCron:   cfg.Retention.Cron,
		RetentionMaxAge: cfg.RetentionMaxAge(),
		Out:             out,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if cfg.Dashboard.Port > 0 {
		go func() {
			if err := dashboard.Start(ctx, dashboard.StartOpts{
				Store:    st,
				Provider: daemon,
				Port:     cfg.Dashboard.Port,
				Out:      out,
			}); err != nil {
				fmt.Fprintf(out, "dashboard: %v\n", err)
			}
		}()
	}

	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config.
func createAdapter(cfg *config.Config) (messenger.Adapter, error) {
	switch cfg.Platform {
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken: cfg.Discord.BotToken,
		})
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken: cfg.Slack.AppToken,
			BotToken: cfg.Slack.BotToken,
		})
	default:
		return nil, fmt.Errorf("unsupported platform %q", cfg.Platform)
	}
}

// storeOptions maps the store section of the config to store options.
func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Backend:  cfg.Store.Backend,
		Path:     cfg.Store.Path,
		Host:     cfg.Store.Host,
		Port:     cfg.Store.Port,
		Database: cfg.Store.Database,
		User:     cfg.Store.User,
		Password: cfg.Store.Password,
	}
}
