package envs

// Subset identifies which of the parallel environment instances an operation
// applies to. A nil Subset means all instances.
type Subset []int

// All is the unrestricted subset
func All() Subset {
	return nil
}

// Indices materializes the subset for a batch of n instances
func (s Subset) Indices(n int) []int {
	if s == nil {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return s
}

// Count is the number of instances the subset covers in a batch of n
func (s Subset) Count(n int) int {
	if s == nil {
		return n
	}
	return len(s)
}

// Contains reports whether instance i is part of the subset
func (s Subset) Contains(i int) bool {
	if s == nil {
		return true
	}
	for _, v := range s {
		if v == i {
			return true
		}
	}
	return false
}
