package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	pendingBucket = []byte("pending")
	deadBucket    = []byte("dead")
)

// Store persists task writes in BoltDB while Postgres is unreachable. Entries
// are keyed by a monotonically increasing sequence so replay follows the order
// the writes were accepted in.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open initializes the BoltDB file and ensures both buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, deadBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Enqueue appends an entry to the replay queue.
func (s *Store) Enqueue(entry Entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	entry.normalize(s.now())

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry.seq = seq
		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), payload)
	})
}

// Peek returns up to limit pending entries, oldest first, without removing them.
func (s *Store) Peek(limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil && len(entries) < limit; k, v = c.Next() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode entry %d: %w", keySeq(k), err)
			}
			entry.seq = keySeq(k)
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Remove drops a replayed entry.
func (s *Store) Remove(entry Entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(seqKey(entry.seq))
	})
}

// RecordFailure bumps the attempt counter in place so the entry keeps its
// position in the queue.
func (s *Store) RecordFailure(entry Entry, cause error) (Entry, error) {
	if s == nil || s.db == nil {
		return entry, bolt.ErrDatabaseNotOpen
	}
	entry.Attempts++
	if cause != nil {
		entry.LastError = cause.Error()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return entry, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Put(seqKey(entry.seq), payload)
	})
	return entry, err
}

// Bury moves an entry that will never succeed out of the replay queue.
func (s *Store) Bury(entry Entry) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(pendingBucket).Delete(seqKey(entry.seq)); err != nil {
			return err
		}
		return tx.Bucket(deadBucket).Put(seqKey(entry.seq), payload)
	})
}

// Size returns the number of pending entries.
func (s *Store) Size() (int, error) {
	return s.count(pendingBucket)
}

// DeadCount returns the number of buried entries.
func (s *Store) DeadCount() (int, error) {
	return s.count(deadBucket)
}

// Cleanup removes buried entries queued before olderThan.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var stale [][]byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(deadBucket)
		if err := b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err == nil && !entry.QueuedAt.Before(olderThan) {
				return nil
			}
			stale = append(stale, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

// Ping reports whether the database file is still open.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(*bolt.Tx) error { return nil })
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) count(bucket []byte) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return count, err
}
