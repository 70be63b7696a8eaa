// Package store provides a transactional document store over named
// collections with point reads, filtered/ordered queries, partial-merge
// updates and live-subscribed query snapshots.
//
// Documents are JSON blobs keyed "<collection>/<id>". Multi-document
// transactions run under badger's serializable snapshot isolation; commit
// conflicts are retried a bounded number of times.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Collection names used by the platform.
const (
	Posts    = "posts"
	Comments = "comments"
	Users    = "users"
	Ratings  = "ratings"
)

const maxTxnAttempts = 5

type Store struct {
	db  *badger.DB
	bus *gochannel.GoChannel
}

// Open opens (or creates) a store rooted at dir. An empty dir opens an
// in-memory store, used by tests.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}

	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
	}, watermill.NopLogger{})

	return &Store{db: db, bus: bus}, nil
}

func (s *Store) Close() error {
	if err := s.bus.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

// Collection returns a handle to a named collection.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

func docKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

// Tx is a serializable multi-document transaction. All reads observe a
// consistent snapshot; writes apply atomically on commit or not at all.
type Tx struct {
	txn     *badger.Txn
	touched map[string]struct{}
}

// Get reads a document into out. Returns ErrNotFound if absent.
func (tx *Tx) Get(collection, id string, out any) error {
	item, err := tx.txn.Get(docKey(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return json.Unmarshal(raw, out)
}

// Set writes the full document under id, creating or replacing it.
func (tx *Tx) Set(collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	if err := tx.txn.Set(docKey(collection, id), raw); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	tx.touched[collection] = struct{}{}
	return nil
}

// Update merges fields into an existing document. Values may be plain
// replacements or the ArrayUnion/ArrayRemove set mutations.
// Returns ErrNotFound if the document does not exist.
func (tx *Tx) Update(collection, id string, fields map[string]any) error {
	var current map[string]any
	if err := tx.Get(collection, id, &current); err != nil {
		return err
	}
	if err := mergeFields(current, fields); err != nil {
		return fmt.Errorf("merge %s/%s: %w", collection, id, err)
	}
	return tx.Set(collection, id, current)
}

// Delete removes a document. Deleting an absent document is not an error.
func (tx *Tx) Delete(collection, id string) error {
	if err := tx.txn.Delete(docKey(collection, id)); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	tx.touched[collection] = struct{}{}
	return nil
}

// RunTransaction executes fn inside a serializable transaction, retrying on
// commit conflict up to maxTxnAttempts. If fn returns an error the
// transaction is discarded and nothing is written.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		txn := s.db.NewTransaction(true)
		tx := &Tx{txn: txn, touched: make(map[string]struct{})}

		if err := fn(tx); err != nil {
			txn.Discard()
			return err
		}

		err := txn.Commit()
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
		}

		s.notify(tx.touched)
		return nil
	}
	return fmt.Errorf("%w: transaction conflict persisted after %d attempts", ErrUnavailable, maxTxnAttempts)
}

// notify publishes an invalidation for every collection a committed
// transaction touched, waking any live subscriptions on it.
func (s *Store) notify(collections map[string]struct{}) {
	for name := range collections {
		msg := message.NewMessage(watermill.NewUUID(), nil)
		// Best effort: a closed bus during shutdown is not an error the
		// committed write should inherit.
		_ = s.bus.Publish(topicFor(name), msg)
	}
}

func topicFor(collection string) string {
	return "store." + strings.ToLower(collection)
}

// Collection is a handle to one named collection. All single-operation
// methods run inside their own transaction so subscribers are notified.
type Collection struct {
	store *Store
	name  string
}

func (c *Collection) Name() string { return c.name }

// Get reads the document with the given id into out.
func (c *Collection) Get(ctx context.Context, id string, out any) error {
	return c.store.db.View(func(txn *badger.Txn) error {
		tx := &Tx{txn: txn, touched: make(map[string]struct{})}
		return tx.Get(c.name, id, out)
	})
}

// Insert stores doc under a generated id and returns it. The id is also
// written into the document's "id" field.
func (c *Collection) Insert(ctx context.Context, doc any) (string, error) {
	id := uuid.NewString()

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal %s doc: %w", c.name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", fmt.Errorf("reshape %s doc: %w", c.name, err)
	}
	m["id"] = id

	err = c.store.RunTransaction(ctx, func(tx *Tx) error {
		return tx.Set(c.name, id, m)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces the document with the given id.
func (c *Collection) Set(ctx context.Context, id string, doc any) error {
	return c.store.RunTransaction(ctx, func(tx *Tx) error {
		return tx.Set(c.name, id, doc)
	})
}

// Update partially merges fields into the document with the given id.
func (c *Collection) Update(ctx context.Context, id string, fields map[string]any) error {
	return c.store.RunTransaction(ctx, func(tx *Tx) error {
		return tx.Update(c.name, id, fields)
	})
}

// Delete removes the document with the given id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.store.RunTransaction(ctx, func(tx *Tx) error {
		return tx.Delete(c.name, id)
	})
}
