// Package cache stores nesting results under a content hash of their input,
// so identical requests are answered without packing again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/piwi3910/marcenapp/internal/model"
)

const keyPrefix = "nest:"

// Cache is a badger-backed result store. An empty directory keeps it in memory.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens or creates the cache. A zero ttl keeps entries forever.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening result cache: %w", err)
	}
	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

type keyInput struct {
	Parts    []model.Part          `json:"parts"`
	Settings model.NestingSettings `json:"settings"`
}

// Key returns the hex SHA-256 of the canonical JSON of parts and settings.
// Part order is significant because it decides ties in placement.
func Key(parts []model.Part, settings model.NestingSettings) (string, error) {
	data, err := json.Marshal(keyInput{Parts: parts, Settings: settings})
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the stored result for key. ok is false on a miss.
func (c *Cache) Get(key string) (result model.NestingResult, ok bool, err error) {
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &result); err != nil {
				return fmt.Errorf("decoding cached result: %w", err)
			}
			ok = true
			return nil
		})
	})
	if err != nil {
		return model.NestingResult{}, false, err
	}
	return result, ok, nil
}

func (c *Cache) Put(key string, result model.NestingResult) error {
	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+key), val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes one entry; a missing key is not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}

// Len counts the stored results.
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
