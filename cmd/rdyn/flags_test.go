package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rdyn/pkg/config"
)

func TestFlagsOverrideOnlyWhatWasSet(t *testing.T) {
	fs := flag.NewFlagSet("rdyn", flag.ContinueOnError)
	flagged := config.Defaults()
	bindFlags(fs, &flagged)
	require.NoError(t, fs.Parse([]string{"-size", "2000", "-snapshot-all", "-s3-bucket", "runs"}))

	fromFile := config.Defaults()
	fromFile.Iterations = 77
	fromFile.Size = 1500
	fs.Visit(func(f *flag.Flag) {
		override(&fromFile, &flagged, f.Name)
	})

	assert.Equal(t, 2000, fromFile.Size)
	assert.Equal(t, 77, fromFile.Iterations, "unset flag keeps file value")
	assert.True(t, fromFile.SnapshotAll)
	assert.Equal(t, "runs", fromFile.Archive.Bucket)
}

func TestEveryFlagHasOverride(t *testing.T) {
	fs := flag.NewFlagSet("rdyn", flag.ContinueOnError)
	zero := config.Params{}
	bindFlags(fs, &zero)

	src := config.Defaults()
	src.Publish = "tcp://*:9190"
	src.Archive = config.Archive{Bucket: "b", Prefix: "p", Region: "r", Endpoint: "http://e"}
	src.SnapshotAll = true

	dst := config.Params{}
	fs.VisitAll(func(f *flag.Flag) {
		override(&dst, &src, f.Name)
	})
	src.Archive.AccessKey, src.Archive.SecretKey = "", ""
	assert.Equal(t, src, dst)
}
