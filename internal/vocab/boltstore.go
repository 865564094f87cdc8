package vocab

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	vocabBucket = "vocabulary"
	snapshotKey = "snapshot"
)

// BoltStore persists vocabulary snapshots locally so a restart can
// serve matches before the external store has been reached.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (or creates) the local snapshot database.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(vocabBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating vocabulary bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Save persists the snapshot, replacing any previous one.
func (b *BoltStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding vocabulary snapshot: %w", err)
	}
	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(vocabBucket)).Put([]byte(snapshotKey), data)
	})
	if err != nil {
		return fmt.Errorf("persisting vocabulary snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot, or nil when none exists.
func (b *BoltStore) Load() (*Snapshot, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(vocabBucket)).Get([]byte(snapshotKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary snapshot: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding vocabulary snapshot: %w", err)
	}
	return &snap, nil
}

// Close closes the underlying database.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
