package snapshot

import (
	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/parallel"
)

// Check is the verification outcome of one snapshot.
type Check struct {
	Iteration int
	Reports   []algorithms.CommunityReport
	Err       error
}

// Stable reports whether the snapshot loaded and every community passed.
func (c Check) Stable() bool {
	if c.Err != nil {
		return false
	}
	for _, r := range c.Reports {
		if !r.Stable {
			return false
		}
	}
	return true
}

// VerifyAll reads and verifies the given iterations of dir on up to
// workers goroutines. Results are in the order of its.
func VerifyAll(dir string, its []int, conductance float64, workers int) []Check {
	reports, errs := parallel.Map(workers, its, func(it int) ([]algorithms.CommunityReport, error) {
		s, err := Read(dir, it)
		if err != nil {
			return nil, err
		}
		return s.Verify(conductance), nil
	})

	checks := make([]Check, len(its))
	for i, it := range its {
		checks[i] = Check{Iteration: it, Reports: reports[i], Err: errs[i]}
	}
	return checks
}
