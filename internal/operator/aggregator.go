package operator

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zulandar/switchboard/internal/messenger"
)

// DispatchFunc receives one complete, ordered batch of messages forming a
// logical turn.
type DispatchFunc func(ctx context.Context, batch []messenger.InboundMessage)

// Aggregator coalesces grouped-upload bursts into single logical turns.
// Messages without a group ID pass straight through as one-message batches;
// grouped messages are collected until the debounce window closes, then
// emitted once in server order.
type Aggregator struct {
	window   time.Duration
	dispatch DispatchFunc
	out      io.Writer

	mu     sync.Mutex // guards groups and locks
	groups map[string][]messenger.InboundMessage
	locks  map[string]*sync.Mutex
}

// AggregatorOpts holds parameters for creating an Aggregator.
type AggregatorOpts struct {
	Window   time.Duration // debounce window for grouped uploads
	Dispatch DispatchFunc
	Out      io.Writer // defaults to io.Discard
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts AggregatorOpts) (*Aggregator, error) {
	if opts.Dispatch == nil {
		return nil, fmt.Errorf("operator: aggregator: dispatch func is required")
	}
	if opts.Window <= 0 {
		return nil, fmt.Errorf("operator: aggregator: window must be positive")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Aggregator{
		window:   opts.Window,
		dispatch: opts.Dispatch,
		out:      out,
		groups:   make(map[string][]messenger.InboundMessage),
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// Handle processes one inbound message. It never lets a per-message failure
// escape: a malformed message is logged and dropped so one bad update cannot
// take the pump down for other conversations.
func (a *Aggregator) Handle(ctx context.Context, msg messenger.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("operator: aggregator: recovered handling message from chat %s: %v", msg.ChatID, r)
		}
	}()

	if msg.ChatID == "" || msg.UserID == "" {
		log.Printf("operator: aggregator: message without sender/chat identity, dropping")
		return
	}

	if msg.GroupID == "" {
		batch := []messenger.InboundMessage{msg}
		fmt.Fprintf(a.out, "operator: turn %s: single message from chat %s\n", shortID(), msg.ChatID)
		a.dispatch(ctx, batch)
		return
	}

	first := a.appendToGroup(msg)
	// The debounce is scheduled outside the group lock: flushGroup re-takes
	// it, and scheduling from inside would deadlock on re-entry.
	if first {
		go a.flushGroup(ctx, msg.GroupID)
	}
}

// appendToGroup adds msg to its pending group under the group's lock and
// reports whether it was the group's first message.
func (a *Aggregator) appendToGroup(msg messenger.InboundMessage) bool {
	grpLock := a.lockFor(msg.GroupID)
	grpLock.Lock()
	defer grpLock.Unlock()

	a.mu.Lock()
	a.groups[msg.GroupID] = append(a.groups[msg.GroupID], msg)
	first := len(a.groups[msg.GroupID]) == 1
	a.mu.Unlock()
	return first
}

// flushGroup waits out the debounce window, then takes the accumulated
// messages, restores server order, and hands the batch off. If the group
// has vanished (already consumed) it aborts silently. The wait itself is
// deliberately not cancellable: it either completes or finds nothing to do.
func (a *Aggregator) flushGroup(ctx context.Context, groupID string) {
	time.Sleep(a.window)

	grpLock := a.lockFor(groupID)
	grpLock.Lock()
	a.mu.Lock()
	batch, ok := a.groups[groupID]
	delete(a.groups, groupID)
	delete(a.locks, groupID)
	a.mu.Unlock()
	grpLock.Unlock()

	if !ok || len(batch) == 0 {
		log.Printf("operator: aggregator: group %s empty after window, skipping", groupID)
		return
	}

	// Restore upload order; network arrival order is not reliable.
	sort.Slice(batch, func(i, j int) bool { return batch[i].Seq < batch[j].Seq })

	fmt.Fprintf(a.out, "operator: turn %s: group %s closed with %d messages from chat %s\n",
		shortID(), groupID, len(batch), batch[0].ChatID)
	a.dispatch(ctx, batch)
}

// lockFor returns the mutex guarding a group, creating it on first use.
func (a *Aggregator) lockFor(groupID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[groupID] = l
	}
	return l
}

// PendingGroups returns how many grouped uploads are currently waiting out
// their debounce window.
func (a *Aggregator) PendingGroups() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// shortID returns a short correlation tag for turn log lines.
func shortID() string {
	return uuid.NewString()[:8]
}
