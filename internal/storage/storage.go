// Package storage provides persistent storage for harmonized study rows
// between the fetch and training stages. It uses BoltDB as the underlying
// engine with one bucket for rows and one for per-source fetch provenance.
//
// The package provides thread-safe operations for storing and retrieving
// rows with efficient per-source range queries and automatic bucket
// management.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"affair-radar/internal/dataset"
)

const (
	rowsBucket = "rows" // Bucket name for harmonized rows
	metaBucket = "meta" // Bucket name for per-source fetch records
)

// Origin values recorded with each fetch.
const (
	OriginDownload  = "download"
	OriginSynthetic = "synthetic"
)

// FileName is the database file created under the data directory.
const FileName = "affair-radar.db"

// Store provides persistent storage for study rows using BoltDB.
// Rows are keyed source_index so one source can be replaced wholesale
// without touching the others.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
// Returns an error if the database cannot be opened or buckets cannot be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, FileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(rowsBucket)); err != nil {
			return fmt.Errorf("create rows bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FetchInfo records how a source's rows got into the store.
type FetchInfo struct {
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Origin    string    `json:"origin"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ReplaceSource atomically swaps all rows of one source for the given set
// and records the fetch. Rows keep their slice order under keys of the
// form source_00000042.
func (s *Store) ReplaceSource(source string, rows []dataset.Row, origin string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(rowsBucket))

		c := b.Cursor()
		prefix := []byte(source + "_")
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return fmt.Errorf("delete stale row: %w", err)
			}
		}

		for i, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("marshal row: %w", err)
			}
			key := fmt.Sprintf("%s_%08d", source, i)
			if err := b.Put([]byte(key), data); err != nil {
				return fmt.Errorf("store row: %w", err)
			}
		}

		info := FetchInfo{
			Source:    source,
			Rows:      len(rows),
			Origin:    origin,
			FetchedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("marshal fetch info: %w", err)
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(source), data)
	})
}

// RowsBySource retrieves one source's rows in stored order.
func (s *Store) RowsBySource(source string) ([]dataset.Row, error) {
	var rows []dataset.Row

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(rowsBucket)).Cursor()
		prefix := []byte(source + "_")
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var row dataset.Row
			if err := json.Unmarshal(v, &row); err != nil {
				continue // Skip malformed records
			}
			rows = append(rows, row)
		}
		return nil
	})

	return rows, err
}

// AllRows retrieves every stored row, ordered by source then insertion.
func (s *Store) AllRows() ([]dataset.Row, error) {
	var rows []dataset.Row

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(rowsBucket)).ForEach(func(k, v []byte) error {
			var row dataset.Row
			if err := json.Unmarshal(v, &row); err != nil {
				return nil // Skip malformed records
			}
			rows = append(rows, row)
			return nil
		})
	})

	return rows, err
}

// Sources lists fetch records for every stored source, sorted by name.
func (s *Store) Sources() ([]FetchInfo, error) {
	var infos []FetchInfo

	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).ForEach(func(k, v []byte) error {
			var info FetchInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return nil
			}
			infos = append(infos, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Source < infos[j].Source })
	return infos, nil
}
