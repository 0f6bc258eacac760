package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"
)

// MemoryStore keeps settings in process memory; they reset on restart
type MemoryStore struct {
	mu      sync.RWMutex
	current UserSettings
}

// NewMemoryStore creates a MemoryStore holding the defaults
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{current: Defaults()}
}

// Get returns the current settings
func (m *MemoryStore) Get(ctx context.Context) (UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, nil
}

// Replace overwrites the current settings
func (m *MemoryStore) Replace(ctx context.Context, s UserSettings) error {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

const (
	bucketName = "settings"
	currentKey = "current"
)

// BoltStore persists the settings record in a bbolt bucket
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates the settings bucket if needed
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating settings bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Get returns the stored settings, or the defaults if none were saved
func (b *BoltStore) Get(ctx context.Context) (UserSettings, error) {
	s := Defaults()
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(currentKey))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &s)
	})
	if err != nil {
		return UserSettings{}, fmt.Errorf("reading settings: %w", err)
	}
	return s, nil
}

// Replace stores the settings
func (b *BoltStore) Replace(ctx context.Context, s UserSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(currentKey), data)
	})
}
