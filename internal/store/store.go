// Package store persists per-conversation state (turn history + current
// pipeline stage) in a SQL database, keyed by chat ID.
package store

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/models"
)

// State is the decoded conversation state returned by Get.
type State struct {
	Items history.Items
	Stage string
}

// Store wraps the database handle with the conversation-state contract.
// Construct one per process with Open, hand it to the dispatcher, and Close
// it exactly once during shutdown (Close tolerates repeats).
type Store struct {
	db        *gorm.DB
	closeOnce sync.Once
	closeErr  error
}

// Open connects to the configured backend and migrates the schema.
func Open(opts Options) (*Store, error) {
	db, err := openDB(opts)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Conversation{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing GORM handle. Used by tests and by callers that
// manage the connection themselves; the schema must already be migrated.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is required")
	}
	return &Store{db: db}, nil
}

// Get returns the decoded state for a chat, or (nil, nil) when no row
// exists. A row whose history blob fails to decode is treated as absent so
// the conversation restarts fresh rather than wedging the chat.
func (s *Store) Get(chatID string) (*State, error) {
	var row models.Conversation
	err := s.db.Where("chat_id = ?", chatID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", chatID, err)
	}

	items, err := history.Decode(row.History)
	if err != nil {
		log.Printf("store: chat %s: undecodable history (%v), treating as new conversation", chatID, err)
		return nil, nil
	}
	return &State{Items: items, Stage: row.Stage}, nil
}

// Save upserts the state for a chat. UpdatedAt is refreshed on conflict so
// the retention sweep sees the row as live.
func (s *Store) Save(chatID string, items history.Items, stage string) error {
	blob, err := history.Encode(items)
	if err != nil {
		return fmt.Errorf("store: encode history for %s: %w", chatID, err)
	}
	row := models.Conversation{
		ChatID:  chatID,
		Stage:   stage,
		History: blob,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stage", "history", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store: save %s: %w", chatID, err)
	}
	return nil
}

// Delete removes the state for a chat. Deleting a chat that has no row is
// not an error.
func (s *Store) Delete(chatID string) error {
	err := s.db.Where("chat_id = ?", chatID).Delete(&models.Conversation{}).Error
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", chatID, err)
	}
	return nil
}

// Count returns the number of stored conversations.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Conversation{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// PurgeOlderThan deletes conversations not updated since cutoff and returns
// how many rows were removed.
func (s *Store) PurgeOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("updated_at < ?", cutoff).Delete(&models.Conversation{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: purge: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Reset deletes every stored conversation. Used by `sb db reset`.
func (s *Store) Reset() error {
	if err := s.db.Where("1 = 1").Delete(&models.Conversation{}).Error; err != nil {
		return fmt.Errorf("store: reset: %w", err)
	}
	return nil
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		sqlDB, err := s.db.DB()
		if err != nil {
			s.closeErr = fmt.Errorf("store: close: %w", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			s.closeErr = fmt.Errorf("store: close: %w", err)
		}
	})
	return s.closeErr
}
