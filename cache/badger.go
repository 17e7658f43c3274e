package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "quandl:doc:"

// Badger stores documents in a Badger database, expiring them with
// Badger's native TTL.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
	// owned databases are closed by Close
	owned bool
}

// OpenBadger opens a database in dir, or an in-memory one when dir is empty.
func OpenBadger(dir string, ttl time.Duration) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger cache: open: %w", err)
	}
	return &Badger{db: db, ttl: ttl, owned: true}, nil
}

// NewBadger uses an already opened database. Close leaves it open.
func NewBadger(db *badger.DB, ttl time.Duration) (*Badger, error) {
	if db == nil {
		return nil, errors.New("badger cache: db is required")
	}
	return &Badger{db: db, ttl: ttl}, nil
}

func (b *Badger) key(url string) []byte { return []byte(badgerPrefix + Key(url)) }

func (b *Badger) Get(_ context.Context, url string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(url))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger cache: get: %w", err)
	}
	return data, true, nil
}

func (b *Badger) Set(_ context.Context, url string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(b.key(url), data)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger cache: set: %w", err)
	}
	return nil
}

func (b *Badger) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
