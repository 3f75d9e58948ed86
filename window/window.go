// Package window computes extrema of fixed-size windows sliding over integer
// sequences in amortized linear time.
//
// The core is a monotonic deque of indices into the input: the values at the
// queued indices are ordered from front to back, so the front always indexes
// the current window's extremum. Each index is pushed once and popped at most
// once over a whole scan, so the total work is O(n) regardless of the window
// size.
package window

import (
	"errors"
	"iter"

	"github.com/zephyrtronium/slidewin/deque"
)

var (
	// ErrEmpty indicates a scan over no input values.
	ErrEmpty = errors.New("no input values")
	// ErrWindow indicates a window size below 1 or beyond the input length.
	ErrWindow = errors.New("window size out of range")
)

// Scanner is a single pass of a fixed-size window over an integer sequence,
// yielding the extremum of each window position.
//
// A Scanner is single-use. Values may be resumed after an early break, but
// once the input is exhausted the Scanner yields nothing more.
type Scanner struct {
	nums []int64
	k    int
	// dominated reports whether the value at an already queued index can
	// never again be the window extremum once next has been seen to its
	// right. The comparison is strict, so equal values are retained and the
	// rightmost extremal index survives longest.
	dominated func(queued, next int64) bool
	// dq holds indices into nums. Values at the queued indices are ordered
	// front to back; all queued indices are within the current window.
	dq deque.Deque[int]
	// pos is the next input index to process.
	pos    int
	pushes int64
	pops   int64
}

// NewMax returns a Scanner yielding the maximum of each k-wide window of
// nums, in order. It returns ErrEmpty if nums is empty and ErrWindow if
// k < 1 or k > len(nums). The Scanner reads but never modifies nums.
func NewMax(nums []int64, k int) (*Scanner, error) {
	return newScanner(nums, k, func(queued, next int64) bool { return queued < next })
}

// NewMin returns a Scanner yielding the minimum of each k-wide window of
// nums, in order, under the same conditions as [NewMax].
func NewMin(nums []int64, k int) (*Scanner, error) {
	return newScanner(nums, k, func(queued, next int64) bool { return queued > next })
}

func newScanner(nums []int64, k int, dominated func(queued, next int64) bool) (*Scanner, error) {
	if len(nums) == 0 {
		return nil, ErrEmpty
	}
	if k < 1 || k > len(nums) {
		return nil, ErrWindow
	}
	s := &Scanner{
		nums:      nums,
		k:         k,
		dominated: dominated,
		// The deque holds at most k indices at a time.
		dq: deque.Deque[int]{}.GrowEnd(k),
	}
	return s, nil
}

// Count returns the total number of windows the scan yields.
func (s *Scanner) Count() int {
	return len(s.nums) - s.k + 1
}

// Ops returns the number of deque pushes and pops performed so far.
// After a full scan, pushes equals the input length and pops never
// exceeds it.
func (s *Scanner) Ops() (pushes, pops int64) {
	return s.pushes, s.pops
}

// Values yields the extremum of each window position, in order. The sequence
// is finite and single-use: breaking early leaves the Scanner resumable from
// the next unseen window, and exhausting it leaves nothing to yield.
func (s *Scanner) Values() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for s.pos < len(s.nums) {
			i := s.pos
			// Drop indices that fell out of the window's left edge.
			s.dq = s.dq.DropFrontWhile(func(j int) bool {
				if j <= i-s.k {
					s.pops++
					return true
				}
				return false
			})
			// Drop indices whose values the new one dominates. This keeps
			// the queued values ordered, so admitting i preserves the
			// invariant by construction.
			v := s.nums[i]
			s.dq = s.dq.DropEndWhile(func(j int) bool {
				if s.dominated(s.nums[j], v) {
					s.pops++
					return true
				}
				return false
			})
			s.dq = s.dq.Append(i)
			s.pushes++
			s.pos++
			if i >= s.k-1 {
				if !yield(s.nums[s.dq.Front()]) {
					return
				}
			}
		}
	}
}

// Max returns the maximum of each k-wide window of nums, in order. It returns
// ErrEmpty if nums is empty and ErrWindow if k < 1 or k > len(nums).
func Max(nums []int64, k int) ([]int64, error) {
	s, err := NewMax(nums, k)
	if err != nil {
		return nil, err
	}
	return collect(s), nil
}

// Min returns the minimum of each k-wide window of nums, in order, under the
// same conditions as [Max].
func Min(nums []int64, k int) ([]int64, error) {
	s, err := NewMin(nums, k)
	if err != nil {
		return nil, err
	}
	return collect(s), nil
}

func collect(s *Scanner) []int64 {
	r := make([]int64, 0, s.Count())
	for v := range s.Values() {
		r = append(r, v)
	}
	return r
}
