package sequence

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dd0wney/cluso-rdyn/pkg/powerlaw"
)

// communitySizeExponent is the power-law exponent of community sizes.
const communitySizeExponent = 2

// CommunitySizes returns community sizes, sorted descending, that sum to
// exactly n with every size at least mins. A pool of n candidate sizes is
// drawn over [mins, n/avgDeg]; growing random subsets of the pool are taken
// until they cover n, and the tail entries are then shaved one unit at a
// time back down to n.
func CommunitySizes(n int, avgDeg float64, mins int, rng *rand.Rand) ([]int, error) {
	if err := CheckCommunitySizes(n, avgDeg, mins); err != nil {
		return nil, err
	}

	maxs := maxCommunitySize(n, avgDeg, mins)

	sampler, err := powerlaw.New(communitySizeExponent, mins, maxs, rng)
	if err != nil {
		return nil, err
	}

	for {
		pool := sampler.DrawN(n)
		cms := cover(pool, n, rng)
		if cms == nil {
			continue
		}
		if trim(cms, n, mins) {
			slices.SortFunc(cms, func(a, b int) int { return b - a })
			return cms, nil
		}
	}
}

// CheckCommunitySizes returns ErrInvalidParams when CommunitySizes could
// never terminate. At least four sizes in [mins, maxs] are drawn, their
// total must exceed n before the tail is shaved, and shaving stops at mins,
// so some count k >= 4 must satisfy k*mins <= n < k*maxs.
func CheckCommunitySizes(n int, avgDeg float64, mins int) error {
	if n < 1 || avgDeg <= 0 || mins < 1 || mins > n {
		return fmt.Errorf("%w: n=%d avg_deg=%v mins=%d", ErrInvalidParams, n, avgDeg, mins)
	}
	k := n / mins
	if k < 4 || k*maxCommunitySize(n, avgDeg, mins) <= n {
		return fmt.Errorf("%w: no community sizes in [%d, %d] sum to %d",
			ErrInvalidParams, mins, maxCommunitySize(n, avgDeg, mins), n)
	}
	return nil
}

func maxCommunitySize(n int, avgDeg float64, mins int) int {
	return max(int(float64(n)/avgDeg), mins)
}

// cover samples subsets of pool of increasing length, starting at 4, until
// one sums to more than n. It returns nil if the whole pool does not.
func cover(pool []int, n int, rng *rand.Rand) []int {
	for nc := 4; nc <= len(pool); nc++ {
		cms := sample(pool, nc, rng)
		if sum(cms) > n {
			return cms
		}
	}
	return nil
}

// trim decrements entries from the end of cms, never touching the first
// entry and never going below mins, until the total equals n.
func trim(cms []int, n, mins int) bool {
	total := sum(cms)
	for total > n {
		progressed := false
		for i := len(cms) - 1; i >= 1 && total > n; i-- {
			if cms[i] > mins {
				cms[i]--
				total--
				progressed = true
			}
		}
		if !progressed {
			return false
		}
	}
	return total == n
}

// sample picks k distinct positions of pool uniformly at random.
func sample(pool []int, k int, rng *rand.Rand) []int {
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = pool[idx[i]]
	}
	return out
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
