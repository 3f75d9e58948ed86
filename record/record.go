// Package record defines the history of completed scans.
package record

import (
	"context"
	"time"
)

// Run is one completed scan.
type Run struct {
	// ID uniquely identifies the run.
	ID string
	// Time is when the scan started.
	Time time.Time
	// Mode is the scan mode, "max" or "min".
	Mode string
	// N is the input length and K the window size.
	N, K int
	// Digest is the content address of the input values.
	Digest string
	// Cost is how long the scan took.
	Cost time.Duration
	// Results are the emitted extrema, one per window position.
	Results []int64
}

// Recorder persists completed scans.
type Recorder interface {
	// Record stores a run.
	Record(ctx context.Context, r *Run) error
	// Latest returns the most recent run over the input with the given
	// digest using the given mode and window size. If no such run has been
	// recorded, the result is nil with a nil error.
	Latest(ctx context.Context, digest, mode string, k int) (*Run, error)
	// Close releases the recorder's resources.
	Close() error
}
