package deque_test

import (
	"slices"
	"testing"

	"github.com/zephyrtronium/slidewin/deque"
)

func TestDeque(t *testing.T) {
	cases := []struct {
		name    string
		append  []int
		prepend []int
		want    []int
	}{
		{
			name:    "empty",
			append:  nil,
			prepend: nil,
			want:    nil,
		},
		{
			name:    "append",
			append:  []int{1, 2},
			prepend: nil,
			want:    []int{1, 2},
		},
		{
			name:    "prepend",
			append:  nil,
			prepend: []int{1, 2},
			want:    []int{1, 2},
		},
		{
			name:    "both",
			append:  []int{1, 2},
			prepend: []int{3, 4},
			want:    []int{3, 4, 1, 2},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			var d deque.Deque[int]
			invariants := func() {
				if d.Len() != len(d.Slice()) {
					t.Errorf("lens disagree: d.Len gave %d, len(d.Slice) gave %d", d.Len(), len(d.Slice()))
				}
			}
			invariants()
			d = d.Append(c.append...)
			invariants()
			d = d.Prepend(c.prepend...)
			invariants()
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
			if d.Len() > 0 {
				if got := d.Front(); got != c.want[0] {
					t.Errorf("wrong front: want %d, got %d", c.want[0], got)
				}
				if got := d.Back(); got != c.want[len(c.want)-1] {
					t.Errorf("wrong back: want %d, got %d", c.want[len(c.want)-1], got)
				}
			}
		})
	}
}

func TestDropFront(t *testing.T) {
	cases := []struct {
		name  string
		start []int
		n     int
		want  []int
	}{
		{
			name:  "empty",
			start: nil,
			n:     1,
			want:  nil,
		},
		{
			name:  "none",
			start: []int{1, 2},
			n:     0,
			want:  []int{1, 2},
		},
		{
			name:  "negative",
			start: []int{1, 2},
			n:     -1,
			want:  []int{1, 2},
		},
		{
			name:  "one",
			start: []int{1, 2},
			n:     1,
			want:  []int{2},
		},
		{
			name:  "all",
			start: []int{1, 2},
			n:     2,
			want:  nil,
		},
		{
			name:  "over",
			start: []int{1, 2},
			n:     5,
			want:  nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deque.Deque[int]{}.Append(c.start...)
			d = d.DropFront(c.n)
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
		})
	}
}

func TestDropFrontWhile(t *testing.T) {
	cases := []struct {
		name  string
		start []bool
		want  []bool
	}{
		{
			name:  "empty",
			start: nil,
			want:  nil,
		},
		{
			name:  "none",
			start: []bool{false, false},
			want:  []bool{false, false},
		},
		{
			name:  "one",
			start: []bool{true, false},
			want:  []bool{false},
		},
		{
			name:  "front",
			start: []bool{false, true},
			want:  []bool{false, true},
		},
		{
			name:  "all",
			start: []bool{true, true},
			want:  nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deque.Deque[bool]{}.Append(c.start...)
			d = d.DropFrontWhile(func(b bool) bool { return b })
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
		})
	}
}

func TestDropEndWhile(t *testing.T) {
	cases := []struct {
		name  string
		start []bool
		want  []bool
	}{
		{
			name:  "empty",
			start: nil,
			want:  nil,
		},
		{
			name:  "none",
			start: []bool{false, false},
			want:  []bool{false, false},
		},
		{
			name:  "one",
			start: []bool{false, true},
			want:  []bool{false},
		},
		{
			name:  "end",
			start: []bool{true, false},
			want:  []bool{true, false},
		},
		{
			name:  "all",
			start: []bool{true, true},
			want:  nil,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := deque.Deque[bool]{}.Append(c.start...)
			d = d.DropEndWhile(func(b bool) bool { return b })
			if !slices.Equal(d.Slice(), c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, d.Slice())
			}
		})
	}
}

func TestMixedEnds(t *testing.T) {
	var d deque.Deque[int]
	d = d.Append(1, 2, 3, 4)
	d = d.DropFront(1)
	d = d.DropEnd(1)
	d = d.Append(5)
	d = d.DropFrontWhile(func(v int) bool { return v < 3 })
	want := []int{3, 5}
	if !slices.Equal(d.Slice(), want) {
		t.Errorf("wrong result: want %v, got %v", want, d.Slice())
	}
}
