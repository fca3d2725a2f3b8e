package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/snapshot"
)

func main() {
	dir := flag.String("dir", "", "Run directory")
	it := flag.Int("it", -1, "Iteration to check (default: the last snapshot)")
	conductance := flag.Float64("conductance", 0.7, "Conductance bound")
	all := flag.Bool("all", false, "Check every snapshot in the directory")
	workers := flag.Int("workers", 0, "Snapshots checked concurrently (default: GOMAXPROCS)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	flag.Parse()

	logger := logging.DefaultLogger(*logLevel).With(logging.Component("verify"))

	if *dir == "" {
		logger.Error("-dir is required")
		os.Exit(2)
	}

	its, err := selectIterations(*dir, *it, *all)
	if err != nil {
		logger.Error("failed to list snapshots", logging.Path(*dir), logging.Error(err))
		os.Exit(1)
	}

	failed := 0
	for _, c := range snapshot.VerifyAll(*dir, its, *conductance, *workers) {
		if c.Err != nil {
			logger.Error("failed to read snapshot", logging.Iteration(c.Iteration), logging.Error(c.Err))
			os.Exit(1)
		}
		if !report(os.Stdout, c.Iteration, c.Reports) {
			failed++
		}
	}

	if failed > 0 {
		logger.Warn("unstable snapshots", logging.Count(failed), logging.Int("checked", len(its)))
		os.Exit(1)
	}
}

func selectIterations(dir string, it int, all bool) ([]int, error) {
	if it >= 0 && !all {
		return []int{it}, nil
	}
	its, err := snapshot.Iterations(dir)
	if err != nil {
		return nil, err
	}
	if len(its) == 0 {
		return nil, fmt.Errorf("no snapshots in %s", dir)
	}
	if all {
		return its, nil
	}
	return its[len(its)-1:], nil
}

// report prints the unstable communities of one snapshot and reports
// whether all passed.
func report(w io.Writer, it int, reports []algorithms.CommunityReport) bool {
	var bad []algorithms.CommunityReport
	for _, r := range reports {
		if !r.Stable {
			bad = append(bad, r)
		}
	}
	if len(bad) == 0 {
		fmt.Fprintf(w, "iteration %d: %d communities stable\n", it, len(reports))
		return true
	}

	fmt.Fprintf(w, "iteration %d: %d of %d communities unstable\n", it, len(bad), len(reports))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tREASON\tCOMPONENTS\tCONDUCTANCE")
	for _, r := range bad {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%.3f\n", r.ID, r.Size, r.Reason, r.Components, r.Conductance)
	}
	tw.Flush()
	return false
}
