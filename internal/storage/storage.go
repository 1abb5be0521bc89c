// /internal/storage/storage.go
package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/swanny246/TuroApp/datastore"
	"github.com/swanny246/TuroApp/internal/lock"
)

const commandHistoryLimit int = 20

// Backend is the durable key-value store behind Storage.
type Backend interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any) error
	Flush() error
	Keys() []string
	Close() error
}

// Storage keeps one Record per guild and implements lock.ConfigStore.
type Storage struct {
	backend  Backend
	defaults lock.GuildConfig

	mu sync.Mutex // serialises read-modify-write of records
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Datetime    time.Time `json:"datetime"`
}

// PolicyRecord is the stored form of a lock.Policy.
type PolicyRecord struct {
	Value         int  `json:"value"`
	PermanentLock bool `json:"permanent_lock"`
}

type Record struct {
	LockDelay       *int                    `json:"lock_delay,omitempty"`
	Policies        map[string]PolicyRecord `json:"policies,omitempty"`
	CommandsHistory []CommandHistoryRecord  `json:"cmd_history"`
	CommandHashes   map[string]string       `json:"command_hashes,omitempty"`
}

// New opens the datastore file at filePath.
func New(filePath string, defaults lock.GuildConfig) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(ds, defaults), nil
}

func NewWithBackend(backend Backend, defaults lock.GuildConfig) *Storage {
	return &Storage{backend: backend, defaults: defaults.Clone()}
}

func (s *Storage) Close() error {
	return s.backend.Close()
}

// Guilds returns the ids of every guild with a stored record.
func (s *Storage) Guilds() []string {
	return s.backend.Keys()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.backend.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("error reading record for guild %s: %w", guildID, err)
	}
	if record.Policies == nil {
		record.Policies = map[string]PolicyRecord{}
	}
	if record.CommandsHistory == nil {
		record.CommandsHistory = []CommandHistoryRecord{}
	}
	if record.CommandHashes == nil {
		record.CommandHashes = map[string]string{}
	}
	return &record, nil
}

// GetGuildRecord returns the raw stored record of a guild.
func (s *Storage) GetGuildRecord(guildID string) (*Record, error) {
	return s.getOrCreateGuildRecord(guildID)
}

// update applies fn to the guild's record and stores the result. When
// flush is set the record is persisted before returning.
func (s *Storage) update(guildID string, flush bool, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)

	if err := s.backend.Put(guildID, record); err != nil {
		return fmt.Errorf("%w: %v", lock.ErrConfigWrite, err)
	}
	if !flush {
		return nil
	}
	if err := s.backend.Flush(); err != nil {
		return fmt.Errorf("%w: %v", lock.ErrConfigWrite, err)
	}
	return nil
}
