package operator

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/zulandar/switchboard/internal/agent"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/messenger"
	"github.com/zulandar/switchboard/internal/store"
)

// apologyText is the fixed message shown when the agent pipeline fails.
const apologyText = "Sorry, I ran into an error while processing your message. Please try again later."

// Dispatcher serializes turn processing per conversation. While a turn is
// in flight the chat is busy: further batches for it are dropped, not
// queued. For each admitted batch it keeps the typing signal alive, hands
// the turn to the agent pipeline, and writes the resulting state back.
type Dispatcher struct {
	store          *store.Store
	adapter        messenger.Adapter
	runner         agent.Runner
	maxHistory     int
	typingInterval time.Duration
	initialStage   string
	out            io.Writer

	mu     sync.Mutex
	busy   map[string]bool
	typing map[string]context.CancelFunc
}

// DispatcherOpts holds parameters for creating a Dispatcher.
type DispatcherOpts struct {
	Store          *store.Store
	Adapter        messenger.Adapter
	Runner         agent.Runner
	MaxHistory     int           // turn-history bound; defaults to 64
	TypingInterval time.Duration // liveness cadence; defaults to 3s
	InitialStage   string        // stage for brand-new conversations; defaults to "hub"
	Out            io.Writer     // defaults to io.Discard
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts DispatcherOpts) (*Dispatcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("operator: dispatcher: store is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("operator: dispatcher: adapter is required")
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("operator: dispatcher: runner is required")
	}
	maxHistory := opts.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 64
	}
	interval := opts.TypingInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	stage := opts.InitialStage
	if stage == "" {
		stage = "hub"
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Dispatcher{
		store:          opts.Store,
		adapter:        opts.Adapter,
		runner:         opts.Runner,
		maxHistory:     maxHistory,
		typingInterval: interval,
		initialStage:   stage,
		out:            out,
		busy:           make(map[string]bool),
		typing:         make(map[string]context.CancelFunc),
	}, nil
}

// Dispatch processes one complete batch. If the batch's conversation is
// already busy it is dropped: at most one turn per conversation is ever in
// flight, and a second burst during a slow pipeline call is discarded
// rather than queued.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []messenger.InboundMessage) {
	if len(batch) == 0 {
		return
	}
	chatID := batch[0].ChatID

	d.mu.Lock()
	if d.busy[chatID] {
		d.mu.Unlock()
		fmt.Fprintf(d.out, "operator: chat %s busy, dropping batch of %d\n", chatID, len(batch))
		return
	}
	d.busy[chatID] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.busy, chatID)
		d.mu.Unlock()
	}()

	stopTyping := d.startTyping(ctx, chatID)
	defer stopTyping()

	fmt.Fprintf(d.out, "operator: chat %s: processing %d messages\n", chatID, len(batch))
	d.processTurn(ctx, chatID, batch)
}

// processTurn loads state, applies the history bound, runs the pipeline,
// and persists the outcome. Pipeline failure leaves the stored state
// untouched so the previous turn remains authoritative.
func (d *Dispatcher) processTurn(ctx context.Context, chatID string, batch []messenger.InboundMessage) {
	stage := d.initialStage
	var items history.Items

	state, err := d.store.Get(chatID)
	if err != nil {
		log.Printf("operator: chat %s: load state: %v", chatID, err)
		// Carry on with a fresh conversation rather than dropping the turn.
	} else if state != nil {
		stage = state.Stage
		items = state.Items
	}

	items = history.Trim(items, d.maxHistory)
	items = append(items, history.NewUserTurn(BuildTurnContent(batch)))

	res, err := d.runner.Run(ctx, agent.Request{
		ChatID:   chatID,
		UserName: batch[0].UserName,
		Stage:    stage,
		History:  items,
	})
	if err != nil {
		log.Printf("operator: chat %s: agent pipeline: %v", chatID, err)
		if sendErr := d.adapter.Send(ctx, chatID, apologyText); sendErr != nil {
			log.Printf("operator: chat %s: could not deliver error notice: %v", chatID, sendErr)
		}
		return
	}

	if res.Output == "" {
		// Conversation concluded; the pipeline delivered any final artifact
		// itself.
		if err := d.store.Delete(chatID); err != nil {
			log.Printf("operator: chat %s: delete state: %v", chatID, err)
		}
		fmt.Fprintf(d.out, "operator: chat %s: conversation concluded\n", chatID)
		return
	}

	if err := d.adapter.Send(ctx, chatID, res.Output); err != nil {
		log.Printf("operator: chat %s: send reply: %v", chatID, err)
	}
	if err := d.store.Save(chatID, res.History, res.Stage); err != nil {
		log.Printf("operator: chat %s: save state: %v", chatID, err)
	}
}

// BusyCount returns how many conversations currently have a turn in flight.
func (d *Dispatcher) BusyCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.busy)
}

// typingActive reports whether a typing task is registered for a chat.
func (d *Dispatcher) typingActive(chatID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.typing[chatID]
	return ok
}
