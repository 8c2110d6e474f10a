// Package tokenstore caches session tokens between CLI invocations in a
// small Badger database, keyed by wallet address. A cached token is only a
// convenience: callers still run the lifetime guard before using one, and a
// stale entry simply forces a fresh login.
package tokenstore

import (
	"encoding/json"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/arborter/arborter-go/arb/types"
)

// Store wraps the Badger handle. Open one per process; Badger takes a
// directory lock.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tokenstore: path is required")
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open token store")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func key(address string) []byte {
	return []byte("session/" + strings.ToLower(strings.TrimSpace(address)))
}

// Put stores the token under its address, expiring the entry at the token's
// own expiry so Badger garbage-collects dead sessions.
func (s *Store) Put(tok types.SessionToken) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return errors.Wrap(err, "encode session token")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key(tok.Address), raw)
		if ttl := time.Until(time.Unix(int64(tok.ExpiresAt), 0)); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get returns the cached token for an address, with found=false when no
// live entry exists.
func (s *Store) Get(address string) (types.SessionToken, bool, error) {
	var tok types.SessionToken
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(address))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &tok); err != nil {
				return errors.Wrap(err, "decode session token")
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return types.SessionToken{}, false, err
	}
	return tok, found, nil
}

// Delete drops the cached token for an address. Missing entries are fine.
func (s *Store) Delete(address string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(address))
	})
}
