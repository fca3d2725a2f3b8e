// Package powerlaw samples integers from a truncated, Zipf-like power law.
package powerlaw

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

var ErrInvalidBounds = errors.New("powerlaw: invalid bounds")

// Sampler draws values from {Min..Max} with mass proportional to x^-Alpha.
type Sampler struct {
	Alpha float64
	Min   int
	Max   int

	dist distuv.Categorical
}

// New builds a sampler over [minv, maxv]. The returned sampler consumes
// randomness from src only.
func New(alpha float64, minv, maxv int, src rand.Source) (*Sampler, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("%w: alpha=%v", ErrInvalidBounds, alpha)
	}
	if minv < 1 || maxv < minv {
		return nil, fmt.Errorf("%w: min=%d max=%d", ErrInvalidBounds, minv, maxv)
	}

	weights := make([]float64, maxv-minv+1)
	var total float64
	for i := range weights {
		weights[i] = math.Pow(float64(minv+i), -alpha)
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}

	return &Sampler{
		Alpha: alpha,
		Min:   minv,
		Max:   maxv,
		dist:  distuv.NewCategorical(weights, src),
	}, nil
}

// Prob returns the normalized probability mass of x.
func (s *Sampler) Prob(x int) float64 {
	if x < s.Min || x > s.Max {
		return 0
	}
	return s.dist.Prob(float64(x - s.Min))
}

// Draw returns a single value.
func (s *Sampler) Draw() int {
	return s.Min + int(s.dist.Rand())
}

// DrawN returns n independent values, with replacement.
func (s *Sampler) DrawN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = s.Draw()
	}
	return out
}
