package layout

// Combinations returns every k-element subset of set.
//
// Subsets are built by a recursive split: all subsets that contain the first
// element, followed by all subsets that exclude it. Within each subset the
// elements keep their order from set, so the output is deterministic for a
// given input.
//
//	Combinations([]string{"A", "B", "C"}, 2)
//	// [[A B] [A C] [B C]]
//
// Combinations(set, 0) yields a single empty subset. A negative k, or k larger
// than the set, yields no subsets. The input slice is never modified.
func Combinations[T any](set []T, k int) [][]T {
	if k == 0 {
		return [][]T{{}}
	}
	if k < 0 || k > len(set) {
		return nil
	}

	first, rest := set[0], set[1:]

	var out [][]T
	for _, tail := range Combinations(rest, k-1) {
		combo := make([]T, 0, k)
		combo = append(combo, first)
		combo = append(combo, tail...)
		out = append(out, combo)
	}
	out = append(out, Combinations(rest, k)...)
	return out
}

// Binomial returns C(n, k), the number of k-element subsets of an n-element set.
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		result = result * (n - k + i) / i
	}
	return result
}
