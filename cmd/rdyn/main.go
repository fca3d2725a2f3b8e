package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-rdyn/pkg/archive"
	"github.com/dd0wney/cluso-rdyn/pkg/config"
	"github.com/dd0wney/cluso-rdyn/pkg/engine"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/metrics"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

const metricsFile = "metrics.prom"

func main() {
	configPath := flag.String("config", "", "YAML parameter file; flags override its values")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	flagged := config.Defaults()
	bindFlags(flag.CommandLine, &flagged)
	flag.Parse()

	logger := logging.DefaultLogger(*logLevel)

	params := config.Defaults()
	if *configPath != "" {
		var err error
		if params, err = config.Load(*configPath); err != nil {
			logger.Error("failed to load config", logging.Error(err))
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		override(&params, &flagged, f.Name)
	})

	if err := params.Validate(); err != nil {
		logger.Error("invalid parameters", logging.Error(err))
		os.Exit(1)
	}

	res, err := run(params, logger)
	if err != nil {
		logger.Error("run failed", logging.Error(err))
		os.Exit(1)
	}

	fmt.Printf("run %s: %d of %d iterations stable, %d nodes, %d edges, %d communities\n",
		res.RunID, res.Stable, res.Iterations, res.Nodes, res.Edges, res.Communities)
	fmt.Printf("output: %s\n", res.Dir)
}

func run(params config.Params, logger logging.Logger) (*engine.Result, error) {
	runID := uuid.NewString()
	logger = logger.With(logging.RunID(runID))

	files, err := sink.NewFileSink(params.RunDir())
	if err != nil {
		return nil, err
	}
	out := sink.Multi{files}

	if params.Publish != "" {
		pub, err := sink.NewPublisher(params.Publish)
		if err != nil {
			files.Close()
			return nil, err
		}
		out = append(out, pub)
		logger.Info("publishing run records", logging.String("url", params.Publish))
	}

	reg := metrics.NewRegistry()
	eng, err := engine.New(engine.Config{
		Params:  params,
		Sink:    out,
		Logger:  logger,
		Metrics: reg,
		RunID:   runID,
		Dir:     files.Dir(),
	})
	if err != nil {
		out.Close()
		return nil, err
	}

	res, err := eng.Run()
	if err != nil {
		return nil, err
	}

	if err := reg.WriteTextfile(filepath.Join(res.Dir, metricsFile)); err != nil {
		logger.Warn("failed to write metrics", logging.Error(err))
	}

	if params.Archive.Enabled() {
		if err := upload(params.Archive, res, logger); err != nil {
			return res, err
		}
	}
	return res, nil
}

func upload(cfg config.Archive, res *engine.Result, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := archive.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	up, err := archive.NewUploader(client, cfg.Bucket, cfg.Prefix, logger)
	if err != nil {
		return err
	}
	_, err = up.UploadDir(ctx, res.Dir, res.RunID)
	return err
}
