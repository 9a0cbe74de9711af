// Package models defines the GORM models persisted by Switchboard.
package models

import "time"

// Conversation is the persisted state of one remote chat: the serialized
// turn history plus the pipeline stage that should resume the next turn.
// One row per chat; overwritten after every processed turn and deleted when
// the pipeline reports the conversation concluded.
type Conversation struct {
	ChatID    string `gorm:"primaryKey;size:128"`
	Stage     string `gorm:"size:64;not null"`
	History   []byte `gorm:"type:mediumblob;not null"` // JSON-encoded history.Items
	CreatedAt time.Time
	UpdatedAt time.Time
}
