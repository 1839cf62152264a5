package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/config"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyTotals      = "totals"
	recordPrefix   = "record/"
)

// Preferences are engine settings kept between sessions.
type Preferences struct {
	Setup         string               `json:"setup"`
	Strength      config.Strength      `json:"strength"`
	EvaluatorType config.EvaluatorType `json:"evaluator_type"`
	ModelPath     string               `json:"model_path,omitempty"`
	ConfigPath    string               `json:"config_path,omitempty"`
	LastUsed      time.Time            `json:"last_used"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Setup:         "shogi",
		Strength:      config.Medium,
		EvaluatorType: config.Handcrafted,
	}
}

// SearchRecord is the stored outcome of one search of a named fixture
// under one configuration.
type SearchRecord struct {
	Fixture    string    `json:"fixture"`
	ConfigHash uint64    `json:"config_hash"`
	Position   uint64    `json:"position_hash"`
	BestMove   string    `json:"best_move"`
	Score      int       `json:"score"`
	Depth      int       `json:"depth"`
	Nodes      uint64    `json:"nodes"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SameResult reports whether two records describe the same search outcome.
// Timing is ignored.
func (r SearchRecord) SameResult(o SearchRecord) bool {
	return r.Position == o.Position && r.BestMove == o.BestMove &&
		r.Score == o.Score && r.Depth == o.Depth && r.Nodes == o.Nodes
}

// SearchTotals aggregates every recorded search.
type SearchTotals struct {
	Searches  int           `json:"searches"`
	Nodes     uint64        `json:"nodes"`
	TotalTime time.Duration `json:"total_time"`
	MaxDepth  int           `json:"max_depth"`
	Mates     int           `json:"mates"`
}

// NodesPerSecond returns the average search speed.
func (t *SearchTotals) NodesPerSecond() float64 {
	if t.TotalTime <= 0 {
		return 0
	}
	return float64(t.Nodes) / t.TotalTime.Seconds()
}

// Fingerprint hashes the JSON form of v, typically a configuration, so
// records made under different settings never collide.
func Fingerprint(v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("fingerprint: %w", err)
	}
	return xxhash.Sum64(data), nil
}

func recordKey(fixture string, configHash uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%016x", recordPrefix, fixture, configHash))
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens or creates a database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = badgerLogger{log.With().Str("component", "badger").Logger()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// getJSON decodes the value at key into v. found is false when the key
// does not exist.
func getJSON(txn *badger.Txn, key []byte, v any) (found bool, err error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUsed = time.Now()
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(keyPreferences), prefs)
	})
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, []byte(keyPreferences), prefs)
		return err
	})
	return prefs, err
}

// LoadTotals loads aggregate statistics, returns empty totals if not found
func (s *Storage) LoadTotals() (*SearchTotals, error) {
	totals := &SearchTotals{}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, []byte(keyTotals), totals)
		return err
	})
	return totals, err
}

// RecordSearch stores rec under its fixture and configuration and adds it
// to the totals, in one transaction. It returns the record it replaced,
// if any, so callers can compare results across runs.
func (s *Storage) RecordSearch(rec SearchRecord, mate bool) (prev *SearchRecord, err error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	key := recordKey(rec.Fixture, rec.ConfigHash)

	err = s.db.Update(func(txn *badger.Txn) error {
		var old SearchRecord
		found, err := getJSON(txn, key, &old)
		if err != nil {
			return err
		}
		if found {
			prev = &old
		}

		totals := &SearchTotals{}
		if _, err := getJSON(txn, []byte(keyTotals), totals); err != nil {
			return err
		}
		totals.Searches++
		totals.Nodes += rec.Nodes
		totals.TotalTime += time.Duration(rec.ElapsedMs) * time.Millisecond
		totals.MaxDepth = max(totals.MaxDepth, rec.Depth)
		if mate {
			totals.Mates++
		}

		if err := setJSON(txn, key, rec); err != nil {
			return err
		}
		return setJSON(txn, []byte(keyTotals), totals)
	})
	if err != nil {
		return nil, fmt.Errorf("record search %s: %w", rec.Fixture, err)
	}
	return prev, nil
}

// LoadRecord returns the stored record of a fixture under a configuration.
func (s *Storage) LoadRecord(fixture string, configHash uint64) (rec SearchRecord, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		found, err = getJSON(txn, recordKey(fixture, configHash), &rec)
		return err
	})
	return rec, found, err
}

// ListRecords returns every stored record in key order.
func (s *Storage) ListRecords() ([]SearchRecord, error) {
	var records []SearchRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec SearchRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error().Msgf(format, args...)
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn().Msgf(format, args...)
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Debug().Msgf(format, args...)
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Trace().Msgf(format, args...)
}
