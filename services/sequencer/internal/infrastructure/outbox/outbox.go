package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/muhammadchandra19/exchange/pkg/errors"
	settlementv1 "github.com/muhammadchandra19/exchange/services/sequencer/internal/domain/settlement/v1"
)

const (
	keyPrefix = "outbox/"
	keyUpper  = "outbox/\xff"
)

// Store is a pebble-backed settlement outbox. It records every delivery
// attempt durably so a restart resumes retries where they stopped.
type Store struct {
	db *pebble.DB
}

var _ settlementv1.Outbox = (*Store)(nil)

// Open opens or creates the outbox under dir.
func Open(dir string) (*Store, error) {
	return open(dir, &pebble.Options{})
}

// OpenInMemory opens an outbox that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()})
}

func open(dir string, opts *pebble.Options) (*Store, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// Get returns the entry of a batch.
func (s *Store) Get(marketID string, batchID int64) (*settlementv1.OutboxEntry, bool, error) {
	val, closer, err := s.db.Get(keyFor(marketID, batchID))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.TracerFromError(err)
	}
	defer closer.Close()

	entry, err := decode(val)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Put writes the entry, replacing any previous record of the batch.
func (s *Store) Put(entry *settlementv1.OutboxEntry) error {
	val, err := json.Marshal(entry)
	if err != nil {
		return errors.TracerFromError(err)
	}
	if err := s.db.Set(keyFor(entry.MarketID, entry.BatchID), val, pebble.Sync); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// Delete removes a settled batch.
func (s *Store) Delete(marketID string, batchID int64) error {
	if err := s.db.Delete(keyFor(marketID, batchID), pebble.Sync); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// Due scans for entries in state whose next attempt is not after now,
// in key order, stopping at limit when limit is positive.
func (s *Store) Due(state settlementv1.OutboxState, now time.Time, limit int) ([]*settlementv1.OutboxEntry, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpper),
	})
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer iter.Close()

	var due []*settlementv1.OutboxEntry
	for iter.First(); iter.Valid(); iter.Next() {
		entry, err := decode(iter.Value())
		if err != nil {
			return nil, err
		}
		if entry.State != state || entry.NextAttempt.After(now) {
			continue
		}
		due = append(due, entry)
		if limit > 0 && len(due) == limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return due, nil
}

func keyFor(marketID string, batchID int64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", keyPrefix, marketID, batchID))
}

func decode(val []byte) (*settlementv1.OutboxEntry, error) {
	var entry settlementv1.OutboxEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, errors.TracerFromError(err)
	}
	return &entry, nil
}
