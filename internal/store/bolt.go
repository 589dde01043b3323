package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var outcomesBucket = []byte("outcomes")

const maxOutcomes = 500

// Outcome is the diagnostics record of one generate request. It never holds
// the message text or the caller's API key.
type Outcome struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id,omitempty"`
	Status      int       `json:"status"`
	FailedStep  string    `json:"failed_step,omitempty"`
	ErrorType   string    `json:"error_type,omitempty"`
	Degraded    bool      `json:"degraded,omitempty"`
	OptionCount int       `json:"option_count"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store interface {
	Record(o Outcome) error
	Recent(limit int) ([]Outcome, error)
	Close() error
}

type BoltStore struct {
	db          *bolt.DB
	maxOutcomes int
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(outcomesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating outcomes bucket: %w", err)
	}

	return &BoltStore{db: db, maxOutcomes: maxOutcomes}, nil
}

// Record stores o under a time-ordered UUIDv7 key, assigning ID and CreatedAt
// when unset, and prunes the oldest records beyond the retention cap.
func (s *BoltStore) Record(o Outcome) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating outcome id: %w", err)
	}
	if o.ID == "" {
		o.ID = id.String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(o)
		if err != nil {
			return err
		}
		b := tx.Bucket(outcomesBucket)
		if err := b.Put(id[:], data); err != nil {
			return err
		}
		return prune(b, s.maxOutcomes)
	})
}

// Recent returns up to limit outcomes, newest first.
func (s *BoltStore) Recent(limit int) ([]Outcome, error) {
	outcomes := []Outcome{}
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(outcomesBucket).Cursor()
		for k, v := c.Last(); k != nil && len(outcomes) < limit; k, v = c.Prev() {
			var o Outcome
			if err := json.Unmarshal(v, &o); err != nil {
				return fmt.Errorf("decoding outcome %x: %w", k, err)
			}
			outcomes = append(outcomes, o)
		}
		return nil
	})
	return outcomes, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func prune(b *bolt.Bucket, keep int) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	if len(keys) <= keep {
		return nil
	}
	for _, k := range keys[:len(keys)-keep] {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
