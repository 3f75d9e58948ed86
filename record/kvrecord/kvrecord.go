// Package kvrecord keeps scan history in a Badger key-value store.
package kvrecord

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-json-experiment/json"

	"github.com/zephyrtronium/slidewin/record"
)

/*
Run key structure:
Digest × Mode × K
- Digest is the hex content address of the input values.
- Mode is "max" or "min".
- K is the window size as 8 bytes big-endian.
- Fields are separated by \xff sentinels, which cannot appear in hex or in
	mode names.

Each key holds the JSON encoding of the most recent run, so the store is a
content-addressed memo of scans: recording a run over the same input, mode,
and window replaces the previous one, and Latest is a point lookup.
*/

// Recorder is a scan history in a Badger database.
type Recorder struct {
	db *badger.DB
}

var _ record.Recorder = (*Recorder)(nil)

// New returns a recorder within the given database. The database must remain
// open for the lifetime of the recorder.
func New(db *badger.DB) *Recorder {
	return &Recorder{db: db}
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

func runKey(digest, mode string, k int) []byte {
	b := make([]byte, 0, len(digest)+len(mode)+10)
	b = append(b, digest...)
	b = append(b, 0xff)
	b = append(b, mode...)
	b = append(b, 0xff)
	b = binary.BigEndian.AppendUint64(b, uint64(k))
	return b
}

// stored is the JSON representation of a run.
type stored struct {
	ID      string  `json:"id"`
	Time    int64   `json:"time"` // unix nanoseconds
	Mode    string  `json:"mode"`
	N       int     `json:"n"`
	K       int     `json:"k"`
	Digest  string  `json:"digest"`
	Cost    int64   `json:"cost"` // nanoseconds
	Results []int64 `json:"results"`
}

// Record stores a run, replacing any previous run over the same input,
// mode, and window size.
func (r *Recorder) Record(ctx context.Context, run *record.Run) error {
	v, err := json.Marshal(&stored{
		ID:      run.ID,
		Time:    run.Time.UnixNano(),
		Mode:    run.Mode,
		N:       run.N,
		K:       run.K,
		Digest:  run.Digest,
		Cost:    run.Cost.Nanoseconds(),
		Results: run.Results,
	})
	if err != nil {
		return fmt.Errorf("couldn't encode run: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run.Digest, run.Mode, run.K), v)
	})
	if err != nil {
		return fmt.Errorf("couldn't store run: %w", err)
	}
	return nil
}

// Latest returns the recorded run over the input with the given digest using
// the given mode and window size, or nil if there is none.
func (r *Recorder) Latest(ctx context.Context, digest, mode string, k int) (*record.Run, error) {
	var run *record.Run
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(digest, mode, k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var st stored
		if err := json.Unmarshal(v, &st); err != nil {
			return err
		}
		run = &record.Run{
			ID:      st.ID,
			Time:    time.Unix(0, st.Time),
			Mode:    st.Mode,
			N:       st.N,
			K:       st.K,
			Digest:  st.Digest,
			Cost:    time.Duration(st.Cost),
			Results: st.Results,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't find run: %w", err)
	}
	return run, nil
}
