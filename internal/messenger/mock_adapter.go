package messenger

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter implements Adapter for testing. It records sent messages and
// typing signals and allows simulating inbound messages via SimulateInbound.
type MockAdapter struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	inbound   chan InboundMessage
	sent      []SentMessage
	typings   []string // chat IDs that received a typing signal
	botUserID string

	failSend   bool
	failTyping bool
}

// SentMessage records one outbound Send call.
type SentMessage struct {
	ChatID string
	Text   string
}

// NewMockAdapter creates a MockAdapter with a buffered inbound channel.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		inbound: make(chan InboundMessage, 100),
	}
}

// BotUserID returns the configured bot user ID (implements BotUserIDer).
func (m *MockAdapter) BotUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.botUserID
}

// SetBotUserID sets the bot user ID for testing.
func (m *MockAdapter) SetBotUserID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.botUserID = id
}

// FailSends makes subsequent Send calls return an error.
func (m *MockAdapter) FailSends(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = fail
}

// FailTypings makes subsequent Typing calls return an error.
func (m *MockAdapter) FailTypings(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTyping = fail
}

// Connect marks the adapter as connected.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock adapter: already closed")
	}
	m.connected = true
	return nil
}

// Listen returns the inbound message channel. Must be called after Connect.
func (m *MockAdapter) Listen(ctx context.Context) (<-chan InboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, fmt.Errorf("mock adapter: not connected")
	}
	return m.inbound, nil
}

// Send records the outbound message.
func (m *MockAdapter) Send(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return fmt.Errorf("mock adapter: send failed")
	}
	m.sent = append(m.sent, SentMessage{ChatID: chatID, Text: text})
	return nil
}

// Typing records the typing signal.
func (m *MockAdapter) Typing(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTyping {
		return fmt.Errorf("mock adapter: typing failed")
	}
	m.typings = append(m.typings, chatID)
	return nil
}

// Close shuts down the mock adapter and closes the inbound channel.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.connected = false
	close(m.inbound)
	return nil
}

// SimulateInbound queues an inbound message as if the platform delivered it.
func (m *MockAdapter) SimulateInbound(msg InboundMessage) {
	m.inbound <- msg
}

// Sent returns a copy of all recorded outbound messages.
func (m *MockAdapter) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]SentMessage, len(m.sent))
	copy(cp, m.sent)
	return cp
}

// Typings returns a copy of all recorded typing signals.
func (m *MockAdapter) Typings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.typings))
	copy(cp, m.typings)
	return cp
}
