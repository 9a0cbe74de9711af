// Package messenger defines the chat-platform contract consumed by the
// Switchboard core (Discord, Slack, mocks).
package messenger

import (
	"context"
	"time"
)

// Adapter is the interface that platform-specific implementations must
// satisfy. Each adapter handles connection management, inbound message
// delivery, outbound sends, and the typing (liveness) signal for a single
// chat platform.
type Adapter interface {
	// Connect establishes a connection to the chat platform.
	Connect(ctx context.Context) error

	// Listen returns a channel of inbound messages from the platform.
	// The channel is closed when the context is cancelled or the adapter
	// is closed. Listen must only be called after Connect.
	Listen(ctx context.Context) (<-chan InboundMessage, error)

	// Send delivers a text message to the given chat.
	Send(ctx context.Context, chatID, text string) error

	// Typing emits one "bot is typing" signal to the given chat. Platforms
	// without a typing API return nil without doing anything.
	Typing(ctx context.Context, chatID string) error

	// Close gracefully shuts down the adapter connection.
	Close() error
}

// BotUserIDer is an optional interface that adapters can implement to
// expose the bot's own user ID. This enables self-message filtering.
type BotUserIDer interface {
	BotUserID() string
}

// Attachment kinds recognized by the turn formatter.
const (
	AttachmentPhoto    = "photo"
	AttachmentDocument = "document"
)

// Attachment is one uploaded file carried by an inbound message. FileID is
// the platform handle the downstream document glue uses to fetch the bytes;
// the core never dereferences it.
type Attachment struct {
	Kind   string // "photo" or "document"
	FileID string
}

// InboundMessage represents a message received from the chat platform.
//
// GroupID is set when the platform splits one logical upload burst across
// several messages (or when the adapter expands a multi-file message into
// per-file entries); messages sharing a GroupID belong to one logical turn.
// Seq is the platform's strictly increasing server-assigned ordinal, used to
// restore upload order regardless of network arrival order.
type InboundMessage struct {
	Platform    string // e.g. "slack", "discord"
	ChatID      string // conversation identity, stable per remote chat
	GroupID     string // grouped-upload identifier; empty for standalone messages
	Seq         int64  // server-assigned ordering key
	UserID      string
	UserName    string
	Text        string
	Attachments []Attachment
	Timestamp   time.Time
}
