package sequence

import (
	"slices"
	"sort"
)

// IsGraphical reports whether degs can be realized as a simple undirected
// graph, using the Erdős–Gallai inequalities.
func IsGraphical(degs []int) bool {
	n := len(degs)
	if n == 0 {
		return true
	}

	sum := 0
	for _, d := range degs {
		if d < 0 {
			return false
		}
		sum += d
	}
	if sum%2 != 0 {
		return false
	}

	d := slices.Clone(degs)
	slices.SortFunc(d, func(a, b int) int { return b - a })

	prefix := make([]int, n+1)
	for i, v := range d {
		prefix[i+1] = prefix[i] + v
	}

	for k := 1; k <= n; k++ {
		// d[k:p] >= k, d[p:] < k
		p := k + sort.Search(n-k, func(i int) bool { return d[k+i] < k })
		rhs := k*(k-1) + k*(p-k) + (prefix[n] - prefix[p])
		if prefix[k] > rhs {
			return false
		}
	}
	return true
}
