package operator

import (
	"context"
	"log"
	"time"
)

// startTyping launches the liveness task for a chat: a typing signal every
// typingInterval until the returned stop func is called. At most one task
// runs per chat; a second start while one is registered is a caller error
// and is refused. The task deregisters itself on every exit path.
func (d *Dispatcher) startTyping(ctx context.Context, chatID string) (stop func()) {
	tctx, cancel := context.WithCancel(ctx)

	d.mu.Lock()
	if _, exists := d.typing[chatID]; exists {
		d.mu.Unlock()
		cancel()
		log.Printf("operator: chat %s: typing task already registered, not starting another", chatID)
		return func() {}
	}
	d.typing[chatID] = cancel
	d.mu.Unlock()

	go d.typingLoop(tctx, chatID)
	return cancel
}

// typingLoop emits the signal, then sleeps, until cancelled. A delivery
// failure ends the loop quietly: if the platform refuses the signal once,
// retrying every few seconds only spams the log.
func (d *Dispatcher) typingLoop(ctx context.Context, chatID string) {
	defer func() {
		d.mu.Lock()
		delete(d.typing, chatID)
		d.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		if err := d.adapter.Typing(ctx, chatID); err != nil {
			log.Printf("operator: chat %s: typing signal: %v", chatID, err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.typingInterval):
		}
	}
}
