package main

import (
	"flag"

	"github.com/dd0wney/cluso-rdyn/pkg/config"
)

func bindFlags(fs *flag.FlagSet, p *config.Params) {
	fs.IntVar(&p.Size, "size", p.Size, "Number of nodes (at least 1000)")
	fs.IntVar(&p.Iterations, "iterations", p.Iterations, "Number of iterations")
	fs.Float64Var(&p.AvgDeg, "avg-deg", p.AvgDeg, "Average expected degree")
	fs.Float64Var(&p.Sigma, "sigma", p.Sigma, "Share of each node's edges kept inside its community")
	fs.Float64Var(&p.Lambda, "lambda", p.Lambda, "Rate of the exponential edge lifetime")
	fs.Float64Var(&p.Alpha, "alpha", p.Alpha, "Degree distribution exponent")
	fs.Float64Var(&p.PAction, "paction", p.PAction, "Probability a node acts in an iteration")
	fs.Float64Var(&p.PRenewal, "prenewal", p.PRenewal, "Edge renewal probability")
	fs.Float64Var(&p.Conductance, "conductance", p.Conductance, "Community conductance bound")
	fs.Float64Var(&p.NewNode, "new-node", p.NewNode, "Per-iteration node arrival probability")
	fs.Float64Var(&p.DelNode, "del-node", p.DelNode, "Per-iteration node removal probability")
	fs.IntVar(&p.MaxEvents, "max-events", p.MaxEvents, "Maximum community events per checkpoint")
	fs.Uint64Var(&p.Seed, "seed", p.Seed, "Random seed")
	fs.StringVar(&p.OutputRoot, "out", p.OutputRoot, "Directory that receives the run directory")
	fs.BoolVar(&p.SnapshotAll, "snapshot-all", p.SnapshotAll, "Write a snapshot at every iteration")
	fs.StringVar(&p.Publish, "publish", p.Publish, "Mirror records to a PUB socket at this URL")
	fs.StringVar(&p.Archive.Bucket, "s3-bucket", p.Archive.Bucket, "Upload the run directory to this bucket")
	fs.StringVar(&p.Archive.Prefix, "s3-prefix", p.Archive.Prefix, "Key prefix for uploaded files")
	fs.StringVar(&p.Archive.Region, "s3-region", p.Archive.Region, "Bucket region")
	fs.StringVar(&p.Archive.Endpoint, "s3-endpoint", p.Archive.Endpoint, "S3-compatible endpoint URL")
}

// override copies the field behind flag name from src into dst.
func override(dst, src *config.Params, name string) {
	switch name {
	case "size":
		dst.Size = src.Size
	case "iterations":
		dst.Iterations = src.Iterations
	case "avg-deg":
		dst.AvgDeg = src.AvgDeg
	case "sigma":
		dst.Sigma = src.Sigma
	case "lambda":
		dst.Lambda = src.Lambda
	case "alpha":
		dst.Alpha = src.Alpha
	case "paction":
		dst.PAction = src.PAction
	case "prenewal":
		dst.PRenewal = src.PRenewal
	case "conductance":
		dst.Conductance = src.Conductance
	case "new-node":
		dst.NewNode = src.NewNode
	case "del-node":
		dst.DelNode = src.DelNode
	case "max-events":
		dst.MaxEvents = src.MaxEvents
	case "seed":
		dst.Seed = src.Seed
	case "out":
		dst.OutputRoot = src.OutputRoot
	case "snapshot-all":
		dst.SnapshotAll = src.SnapshotAll
	case "publish":
		dst.Publish = src.Publish
	case "s3-bucket":
		dst.Archive.Bucket = src.Archive.Bucket
	case "s3-prefix":
		dst.Archive.Prefix = src.Archive.Prefix
	case "s3-region":
		dst.Archive.Region = src.Archive.Region
	case "s3-endpoint":
		dst.Archive.Endpoint = src.Archive.Endpoint
	}
}
