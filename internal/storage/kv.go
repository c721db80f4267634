// ABOUTME: Badger key/value backend: lifecycle, prefix keys and generic helpers.
// ABOUTME: Values are JSON; multi-step writes run inside a single badger transaction.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/harperreed/journey/internal/apperr"
)

// Key prefixes, one per collection.
const (
	CheckInPrefix    = "checkin:"
	MealPrefix       = "meal:"
	GymSessionPrefix = "gym_session:"
	ExercisePrefix   = "exercise:"
	HabitPrefix      = "habit:"
	GoalPrefix       = "goal:"
	PRPrefix         = "pr:"
	SettingPrefix    = "setting:"
)

var _ Repository = (*KVStore)(nil)

// KVStore is the Badger-backed Repository.
type KVStore struct {
	db  *badger.DB
	dir string

	// Failure-injection points mirroring DB.
	beforeSessionDelete func() error
	beforeImportCommit  func() error
}

// OpenKV opens or creates a Badger store in dir.
func OpenKV(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(log.StandardLogger()))
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	log.Debugf("storage: opened badger store at %s", dir)
	return &KVStore{db: db, dir: dir}, nil
}

// OpenKVInMemory opens a Badger store that lives only in memory.
func OpenKVInMemory() (*KVStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(log.StandardLogger()))
	if err != nil {
		return nil, fmt.Errorf("open in-memory kv store: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Path returns the store directory, empty for in-memory stores.
func (s *KVStore) Path() string {
	return s.dir
}

// Close closes the store.
func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func recordKey(prefix string, id uuid.UUID) []byte {
	return []byte(prefix + id.String())
}

// kvGet decodes the value at key. A missing key returns badger.ErrKeyNotFound.
func kvGet[T any](txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

func kvPut(txn *badger.Txn, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, raw)
}

func kvExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// kvList decodes every value under prefix. An undecodable value fails the
// whole list as a storage error.
func kvList[T any](txn *badger.Txn, prefix string) ([]*T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []*T
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		item := it.Item()
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return nil, apperr.Storage("list", fmt.Errorf("read %s: %w", item.Key(), err))
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperr.Storage("list", fmt.Errorf("decode %s: %w", item.Key(), err))
		}
		out = append(out, &v)
	}
	return out, nil
}

// kvKeys returns every key under prefix.
func kvKeys(txn *badger.Txn, prefix string) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// kvResolve finds the full key for an ID or unique ID prefix.
func kvResolve(txn *badger.Txn, prefix, op, idOrPrefix string) ([]byte, error) {
	idPrefix, ok := normalizePrefix(idOrPrefix)
	if !ok {
		return nil, apperr.NotFound(op, idOrPrefix)
	}
	if isFullID(idPrefix) {
		key := []byte(prefix + idPrefix)
		found, err := kvExists(txn, key)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		if !found {
			return nil, apperr.NotFound(op, idOrPrefix)
		}
		return key, nil
	}

	var matches []string
	for _, k := range kvKeys(txn, prefix+idPrefix) {
		matches = append(matches, string(k))
		if len(matches) > 1 {
			break
		}
	}
	key, err := pickMatch(op, idOrPrefix, matches)
	if err != nil {
		return nil, err
	}
	return []byte(key), nil
}

// kvFetch resolves idOrPrefix and decodes the record.
func kvFetch[T any](txn *badger.Txn, prefix, op, idOrPrefix string) (*T, []byte, error) {
	key, err := kvResolve(txn, prefix, op, idOrPrefix)
	if err != nil {
		return nil, nil, err
	}
	v, err := kvGet[T](txn, key)
	if err != nil {
		return nil, nil, apperr.Storage(op, err)
	}
	return v, key, nil
}

// kvDelete resolves and removes one record.
func (s *KVStore) kvDelete(prefix, op, idOrPrefix string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		key, err := kvResolve(txn, prefix, op, idOrPrefix)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return apperr.Storage(op, err)
		}
		log.Debugf("storage: %s %s", op, bytes.TrimPrefix(key, []byte(prefix)))
		return nil
	})
	return wrapKV(op, err)
}

// wrapKV classifies errors escaping a badger transaction.
func wrapKV(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Storage(op, err)
}

// inRange reports whether t falls in the query's [From, To) window.
func inRange(t time.Time, q Query) bool {
	if q.From != nil && t.Before(*q.From) {
		return false
	}
	if q.To != nil && !t.Before(*q.To) {
		return false
	}
	return true
}

// applyQuery filters, orders and limits records the way rangeClause does
// in SQL: by timestamp, then by ID string.
func applyQuery[T any](items []*T, q Query, at func(*T) time.Time, id func(*T) uuid.UUID) []*T {
	var out []*T
	for _, v := range items {
		if inRange(at(v), q) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		c := at(out[i]).Compare(at(out[j]))
		if c == 0 {
			c = strings.Compare(id(out[i]).String(), id(out[j]).String())
		}
		if q.Order == Oldest {
			return c < 0
		}
		return c > 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
