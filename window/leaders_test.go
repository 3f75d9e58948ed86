package window_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/slidewin/window"
)

func TestLeaders(t *testing.T) {
	cases := []struct {
		name string
		nums []int64
		want []int64
	}{
		{
			name: "empty",
			nums: nil,
			want: nil,
		},
		{
			name: "single",
			nums: []int64{3},
			want: []int64{3},
		},
		{
			name: "classic",
			nums: []int64{16, 17, 4, 3, 5, 2},
			want: []int64{17, 5, 2},
		},
		{
			name: "ascending",
			nums: []int64{1, 2, 3},
			want: []int64{3},
		},
		{
			name: "descending",
			nums: []int64{3, 2, 1},
			want: []int64{3, 2, 1},
		},
		{
			name: "ties-lead",
			nums: []int64{4, 4, 2, 4},
			want: []int64{4, 4},
		},
		{
			name: "negative",
			nums: []int64{-3, -1, -2},
			want: []int64{-1, -2},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := window.Leaders(c.nums)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong leaders (+got/-want):\n%s", diff)
			}
		})
	}
}
