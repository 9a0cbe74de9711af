package operator

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zulandar/switchboard/internal/store"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom,
// month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RetentionSweeper periodically deletes conversations that have not been
// updated within the configured age. Concluded conversations delete their
// own row; the sweep catches the ones users simply abandoned.
type RetentionSweeper struct {
	store  *store.Store
	sched  cron.Schedule
	maxAge time.Duration
	out    io.Writer
}

// RetentionOpts holds parameters for creating a RetentionSweeper.
type RetentionOpts struct {
	Store  *store.Store
	Cron   string        // 5-field cron expression
	MaxAge time.Duration // rows older than this are removed
	Out    io.Writer     // defaults to io.Discard
}

// NewRetentionSweeper creates a RetentionSweeper.
func NewRetentionSweeper(opts RetentionOpts) (*RetentionSweeper, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("operator: retention: store is required")
	}
	if opts.MaxAge <= 0 {
		return nil, fmt.Errorf("operator: retention: max age must be positive")
	}
	sched, err := cronParser.Parse(opts.Cron)
	if err != nil {
		return nil, fmt.Errorf("operator: retention: parse cron %q: %w", opts.Cron, err)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &RetentionSweeper{
		store:  opts.Store,
		sched:  sched,
		maxAge: opts.MaxAge,
		out:    out,
	}, nil
}

// Run fires the sweep on the cron schedule until the context is cancelled.
func (r *RetentionSweeper) Run(ctx context.Context) {
	for {
		next := r.sched.Next(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}
		r.sweep()
	}
}

// sweep runs one purge pass.
func (r *RetentionSweeper) sweep() {
	cutoff := time.Now().Add(-r.maxAge)
	n, err := r.store.PurgeOlderThan(cutoff)
	if err != nil {
		log.Printf("operator: retention: %v", err)
		return
	}
	if n > 0 {
		fmt.Fprintf(r.out, "operator: retention: purged %d stale conversations\n", n)
	}
}
