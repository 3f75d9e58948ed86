package window

// Leaders returns the elements of nums which are greater than or equal to
// every element to their right, in their original order. The last element is
// always a leader. The scan is a single right-to-left pass.
func Leaders(nums []int64) []int64 {
	if len(nums) == 0 {
		return nil
	}
	r := []int64{}
	best := nums[len(nums)-1]
	for i := len(nums) - 1; i >= 0; i-- {
		if nums[i] >= best {
			best = nums[i]
			r = append(r, nums[i])
		}
	}
	// The pass collected leaders right to left.
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return r
}
