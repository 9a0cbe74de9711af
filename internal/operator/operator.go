// Package operator is the Switchboard core: it coalesces inbound message
// bursts into logical turns, serializes turn processing per conversation,
// keeps the typing signal alive while the agent pipeline works, and
// persists conversation state between turns.
package operator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zulandar/switchboard/internal/agent"
	"github.com/zulandar/switchboard/internal/messenger"
	"github.com/zulandar/switchboard/internal/store"
)

// Daemon is the main Switchboard process. It connects to a chat platform
// via an Adapter, pumps inbound messages through the aggregator and
// dispatcher, and runs the retention sweep alongside.
type Daemon struct {
	store      *store.Store
	adapter    messenger.Adapter
	aggregator *Aggregator
	dispatcher *Dispatcher
	retention  *RetentionSweeper
	out        io.Writer
}

// DaemonOpts holds parameters for creating a Daemon.
type DaemonOpts struct {
	Store   *store.Store
	Adapter messenger.Adapter
	Runner  agent.Runner

	MaxHistory     int           // defaults to 64
	GroupWindow    time.Duration // defaults to 2s
	TypingInterval time.Duration // defaults to 3s
	InitialStage   string        // defaults to "hub"

	RetentionCron   string        // optional; 5-field cron expression
	RetentionMaxAge time.Duration // required when RetentionCron is set

	Out io.Writer // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("operator: store is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("operator: adapter is required")
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("operator: runner is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	window := opts.GroupWindow
	if window <= 0 {
		window = 2 * time.Second
	}

	disp, err := NewDispatcher(DispatcherOpts{
		Store:          opts.Store,
		Adapter:        opts.Adapter,
		Runner:         opts.Runner,
		MaxHistory:     opts.MaxHistory,
		TypingInterval: opts.TypingInterval,
		InitialStage:   opts.InitialStage,
		Out:            out,
	})
	if err != nil {
		return nil, err
	}

	agg, err := NewAggregator(AggregatorOpts{
		Window:   window,
		Dispatch: disp.Dispatch,
		Out:      out,
	})
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		store:      opts.Store,
		adapter:    opts.Adapter,
		aggregator: agg,
		dispatcher: disp,
		out:        out,
	}

	if opts.RetentionCron != "" {
		sweeper, err := NewRetentionSweeper(RetentionOpts{
			Store:  opts.Store,
			Cron:   opts.RetentionCron,
			MaxAge: opts.RetentionMaxAge,
			Out:    out,
		})
		if err != nil {
			return nil, err
		}
		d.retention = sweeper
	}

	return d, nil
}

// Run starts the daemon. It connects the adapter, pumps inbound messages
// until the context is cancelled or the adapter closes its channel, then
// shuts the adapter down gracefully. Each inbound message is handled on its
// own goroutine so one slow turn never stalls the pump.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "switchboard connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("operator: connect: %w", err)
	}

	ch, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("operator: listen: %w", err)
	}

	if d.retention != nil {
		go d.retention.Run(ctx)
	}

	fmt.Fprintf(d.out, "switchboard ready\n")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "switchboard shutting down\n")
			return d.adapter.Close()
		case msg, ok := <-ch:
			if !ok {
				fmt.Fprintf(d.out, "switchboard: inbound channel closed\n")
				return nil
			}
			go d.aggregator.Handle(ctx, msg)
		}
	}
}

// BusyCount reports conversations with a turn in flight (dashboard).
func (d *Daemon) BusyCount() int { return d.dispatcher.BusyCount() }

// PendingGroups reports grouped uploads waiting out their window (dashboard).
func (d *Daemon) PendingGroups() int { return d.aggregator.PendingGroups() }
