// Package sequence generates the degree and community-size sequences that
// seed a dynamic benchmark graph.
package sequence

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-rdyn/pkg/powerlaw"
)

// MinDegree returns the smallest expected degree that keeps the mean of a
// truncated power law with exponent alpha at avgDeg.
func MinDegree(avgDeg, alpha float64) float64 {
	return avgDeg / math.Pow(2, 1/(alpha-1))
}

// DegreeSequence draws n expected degrees from a power law over
// [ceil(MinDegree), n] until the sample is graphical. It returns the
// accepted sequence and the floor of the minimum degree.
//
// There is no retry cap: parameters that can never produce a graphical
// sequence loop forever.
func DegreeSequence(n int, avgDeg, alpha float64, rng *rand.Rand) ([]int, int, error) {
	if n < 1 || avgDeg <= 0 || alpha <= 1 {
		return nil, 0, fmt.Errorf("%w: n=%d avg_deg=%v alpha=%v", ErrInvalidParams, n, avgDeg, alpha)
	}

	minx := MinDegree(avgDeg, alpha)
	lo := max(int(math.Ceil(minx)), 1)
	if lo >= n {
		return nil, 0, fmt.Errorf("%w: minimum degree %d not below size %d", ErrInvalidParams, lo, n)
	}

	sampler, err := powerlaw.New(alpha, lo, n, rng)
	if err != nil {
		return nil, 0, err
	}

	for {
		degs := sampler.DrawN(n)
		if IsGraphical(degs) {
			return degs, int(minx), nil
		}
	}
}
