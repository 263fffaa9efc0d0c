package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is the persistent tier: an embedded key -> serialized-JSON store
// that outlives the process. Entries are only ever written by this system, so
// anything unparsable is treated as corruption and repaired by deletion.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the store at the configured path
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger store requires a path")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the value for a key. A stored value that is not valid JSON is
// deleted on read and reported as missing; corrupt data is never surfaced.
func (bs *BadgerStore) Get(key string) ([]byte, bool) {
	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("BadgerStore: Error reading key %s: %v", key, err)
		}
		return nil, false
	}

	if !json.Valid(data) {
		log.Printf("BadgerStore: Corrupted entry for key %s, deleting", key)
		bs.Delete(key)
		return nil, false
	}
	return data, true
}

// Set stores a value under a key. Errors are returned so the caller can log
// them; a failed durable write must not invalidate the memory tier.
func (bs *BadgerStore) Set(key string, data []byte) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes a key from the store
func (bs *BadgerStore) Delete(key string) {
	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		log.Printf("BadgerStore: Error deleting key %s: %v", key, err)
	}
}

// Close closes the underlying database
func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}
