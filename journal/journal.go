// Package journal persists acquisition diagnostics to a local bolt file.
//
// Long-running acquisition hosts keep a journal of clock probes and
// lifecycle events so that timestamp anomalies in recorded data can be
// audited after the fact.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/openbci/go-galea/galea"
)

var (
	probeBucket = []byte("probes")
	eventBucket = []byte("events")
)

// openTimeout bounds how long Open waits for the file lock held by
// another process.
const openTimeout = 5 * time.Second

// Event is one recorded lifecycle event.
type Event struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// probeRecord wraps a probe result with its record time.
type probeRecord struct {
	Time time.Time `json:"time"`
	galea.ProbeResult
}

// Journal is an append-only record of clock probes and session events.
// It is safe for concurrent use.
type Journal struct {
	db *bolt.DB
}

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{probeBucket, eventBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: create buckets: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordProbe appends one clock probe result.
func (j *Journal) RecordProbe(res *galea.ProbeResult) error {
	rec := probeRecord{Time: time.Now().UTC(), ProbeResult: *res}

	return j.append(probeBucket, rec)
}

// RecordEvent appends one lifecycle event, e.g. a stream start or a
// synchronization timeout.
func (j *Journal) RecordEvent(kind, message string) error {
	return j.append(eventBucket, Event{Time: time.Now().UTC(), Kind: kind, Message: message})
}

func (j *Journal) append(bucket []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("journal: encode record: %w", err)
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)

		return b.Put(key[:], data)
	})
}

// Probes returns every recorded probe result in insertion order.
func (j *Journal) Probes() ([]galea.ProbeResult, error) {
	var out []galea.ProbeResult

	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(probeBucket).ForEach(func(_, v []byte) error {
			var rec probeRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("journal: decode probe record: %w", err)
			}
			out = append(out, rec.ProbeResult)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Events returns every recorded event in insertion order.
func (j *Journal) Events() ([]Event, error) {
	var out []Event

	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(eventBucket).ForEach(func(_, v []byte) error {
			var ev Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("journal: decode event record: %w", err)
			}
			out = append(out, ev)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Close releases the underlying database file.
func (j *Journal) Close() error {
	return j.db.Close()
}
