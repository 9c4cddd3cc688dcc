// Package storage provides the append-only audit sinks for prediction
// records. Store uses BoltDB as an embedded engine; SQLSink appends to a
// warehouse table through database/sql.
//
// Sinks only ever append. Keys are derived from the record identity so a
// retried append of the same record never produces a second row.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	predictionsBucket = "predictions" // Bucket name for prediction records
	dbFileName        = "predictions.db"
)

// Store provides persistent storage for prediction records using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates the predictions bucket.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, dbFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
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

// recordKey orders records by model and time: "modelID_unixnano_id".
func recordKey(r PredictionRecord) []byte {
	return []byte(fmt.Sprintf("%s_%019d_%s", r.ModelID, r.Timestamp.UnixNano(), r.ID))
}

// AppendPrediction stores a prediction record. A record whose key already
// exists is left untouched.
func (s *Store) AppendPrediction(ctx context.Context, record PredictionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("prediction record has no id")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		key := recordKey(record)
		if b.Get(key) != nil {
			return nil
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal prediction record: %w", err)
		}
		return b.Put(key, data)
	})
}

// CountPredictions returns the number of stored records.
func (s *Store) CountPredictions() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(predictionsBucket)).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	return n, err
}

// ListPredictions returns the records of one model within a time range,
// ordered by timestamp. The range is inclusive of both ends.
func (s *Store) ListPredictions(modelID string, start, end time.Time) ([]PredictionRecord, error) {
	var records []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()

		prefix := []byte(modelID + "_")
		startKey := []byte(fmt.Sprintf("%s_%019d", modelID, start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%s_%019d~", modelID, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}
