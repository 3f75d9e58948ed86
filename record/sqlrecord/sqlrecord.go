// Package sqlrecord keeps scan history in an SQLite database.
package sqlrecord

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/slidewin/record"
)

// Recorder is a scan history in an SQLite database.
type Recorder struct {
	db *sqlitex.Pool
}

var _ record.Recorder = (*Recorder)(nil)

//go:embed schema.sql
var schemaSQL string

// Open returns a recorder within the given database, creating its schema if
// needed. The pool must remain open for the lifetime of the recorder.
func Open(ctx context.Context, db *sqlitex.Pool) (*Recorder, error) {
	conn, err := db.Take(ctx)
	defer db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection from pool: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return nil, fmt.Errorf("couldn't run migration: %w", err)
	}
	return &Recorder{db}, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record stores a run.
func (r *Recorder) Record(ctx context.Context, run *record.Run) error {
	conn, err := r.db.Take(ctx)
	defer r.db.Put(conn)
	if err != nil {
		return fmt.Errorf("couldn't get conn to record run: %w", err)
	}
	const insert = `INSERT INTO runs (id, time, mode, n, k, digest, cost, results) VALUES (:id, :time, :mode, :n, :k, :digest, :cost, JSONB(CAST(:results AS TEXT)))`
	st, err := conn.Prepare(insert)
	if err != nil {
		return fmt.Errorf("couldn't prepare statement to record run: %w", err)
	}
	res, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("couldn't encode results: %w", err)
	}
	st.SetText(":id", run.ID)
	st.SetInt64(":time", run.Time.UnixNano())
	st.SetText(":mode", run.Mode)
	st.SetInt64(":n", int64(run.N))
	st.SetInt64(":k", int64(run.K))
	st.SetText(":digest", run.Digest)
	st.SetInt64(":cost", run.Cost.Nanoseconds())
	st.SetBytes(":results", res)
	if _, err := st.Step(); err != nil {
		return fmt.Errorf("couldn't insert run: %w", err)
	}
	return nil
}

// Latest returns the most recent run over the input with the given digest
// using the given mode and window size, or nil if there is none.
func (r *Recorder) Latest(ctx context.Context, digest, mode string, k int) (*record.Run, error) {
	conn, err := r.db.Take(ctx)
	defer r.db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get conn to find run: %w", err)
	}
	const sel = `SELECT id, time, n, cost, JSON(results) FROM runs WHERE digest=:digest AND mode=:mode AND k=:k ORDER BY time DESC LIMIT 1`
	st, err := conn.Prepare(sel)
	if err != nil {
		return nil, fmt.Errorf("couldn't prepare statement to find run: %w", err)
	}
	st.SetText(":digest", digest)
	st.SetText(":mode", mode)
	st.SetInt64(":k", int64(k))
	ok, err := st.Step()
	if err != nil {
		return nil, fmt.Errorf("couldn't find run: %w", err)
	}
	if !ok {
		return nil, nil
	}
	run := &record.Run{
		ID:     st.ColumnText(0),
		Time:   time.Unix(0, st.ColumnInt64(1)),
		Mode:   mode,
		N:      int(st.ColumnInt64(2)),
		K:      k,
		Digest: digest,
		Cost:   time.Duration(st.ColumnInt64(3)),
	}
	res := st.ColumnText(4)
	if err := json.Unmarshal([]byte(res), &run.Results); err != nil {
		return nil, fmt.Errorf("couldn't decode results: %w", err)
	}
	// Clean up the statement.
	st.Step()
	return run, nil
}
