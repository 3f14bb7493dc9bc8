package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"jlink-update/internal/config"
	"jlink-update/pkg/version"
)

// Layout: runs maps entry ID to the JSON entry. Since IDs are fixed-width
// timestamps, cursor order is chronological. byTarget holds one nested
// bucket per target version whose keys are the IDs of runs towards it.
var (
	bucketRuns     = []byte("runs")
	bucketByTarget = []byte("by_target")
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("no recorded runs")

// Store is the run log.
type Store struct {
	db *bbolt.DB
}

// Open opens the log in the data directory, creating it if needed.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return OpenAt(config.HistoryPath())
}

// OpenAt opens the log at dbPath.
func OpenAt(dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Update(createBuckets); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	return &Store{db: db}, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketRuns, bucketByTarget} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

// targetKey files "v7.94a" and "V7.94a" under the same index bucket.
func targetKey(name string) []byte {
	if canonical, err := version.Normalize(name); err == nil {
		return []byte(canonical)
	}
	return []byte(name)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and indexes it under its target version.
func (s *Store) Record(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		id := []byte(entry.ID)
		if err := tx.Bucket(bucketRuns).Put(id, data); err != nil {
			return err
		}

		idx, err := tx.Bucket(bucketByTarget).CreateBucketIfNotExists(targetKey(entry.To))
		if err != nil {
			return err
		}
		return idx.Put(id, nil)
	})
}

// List returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil && !full(entries, limit); k, v = c.Prev() {
			if e, ok := decode(v); ok {
				entries = append(entries, e)
			}
		}
		return nil
	})
	return entries, err
}

// ForTarget returns up to limit runs towards the given version, newest first.
func (s *Store) ForTarget(target string, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		idx := tx.Bucket(bucketByTarget).Bucket(targetKey(target))
		if idx == nil {
			return nil
		}

		runs := tx.Bucket(bucketRuns)
		c := idx.Cursor()
		for id, _ := c.Last(); id != nil && !full(entries, limit); id, _ = c.Prev() {
			if e, ok := decode(runs.Get(id)); ok {
				entries = append(entries, e)
			}
		}
		return nil
	})
	return entries, err
}

// Last returns the newest run, or ErrNotFound when the log is empty.
func (s *Store) Last() (*Entry, error) {
	entries, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}
	return &entries[0], nil
}

// Count returns the number of recorded runs.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketRuns).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear forgets every run.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRuns, bucketByTarget} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
				return err
			}
		}
		return createBuckets(tx)
	})
}

// Prune forgets runs older than maxAge and returns how many were removed.
// Index buckets left empty are dropped.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var removed int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket(bucketRuns)
		byTarget := tx.Bucket(bucketByTarget)

		var stale []Entry
		c := runs.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if e, ok := decode(v); ok && e.Timestamp.Before(cutoff) {
				stale = append(stale, e)
			}
		}

		for _, e := range stale {
			if err := runs.Delete([]byte(e.ID)); err != nil {
				return err
			}
			removed++

			key := targetKey(e.To)
			idx := byTarget.Bucket(key)
			if idx == nil {
				continue
			}
			if err := idx.Delete([]byte(e.ID)); err != nil {
				return err
			}
			if k, _ := idx.Cursor().First(); k == nil {
				if err := byTarget.DeleteBucket(key); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return removed, err
}

func full(entries []Entry, limit int) bool {
	return limit > 0 && len(entries) >= limit
}

// decode skips values that are missing or not valid entries.
func decode(data []byte) (Entry, bool) {
	var e Entry
	if data == nil || json.Unmarshal(data, &e) != nil {
		return Entry{}, false
	}
	return e, true
}
