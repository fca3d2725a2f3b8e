// Package config holds the generator parameters, their defaults, YAML
// loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-rdyn/pkg/sequence"
)

// MinSize is the smallest network the generator accepts.
const MinSize = 1000

var (
	// ErrSizeTooSmall is the fatal precondition checked before any state is built.
	ErrSizeTooSmall = errors.New("minimum network size: 1000 nodes")
	// ErrInvalidParams wraps every other validation failure.
	ErrInvalidParams = errors.New("invalid parameters")
)

// validate is a singleton validator instance
var validate = validator.New()

// Params are the construction parameters of a generator run.
type Params struct {
	Size        int     `yaml:"size"`
	Iterations  int     `yaml:"iterations" validate:"min=1"`
	AvgDeg      float64 `yaml:"avg_deg" validate:"gt=0"`
	Sigma       float64 `yaml:"sigma" validate:"gt=0,lte=1"`
	Lambda      float64 `yaml:"lambda" validate:"gt=0"`
	Alpha       float64 `yaml:"alpha" validate:"gt=1"`
	PAction     float64 `yaml:"paction" validate:"gte=0,lte=1"`
	PRenewal    float64 `yaml:"prenewal" validate:"gte=0,lte=1"`
	Conductance float64 `yaml:"conductance" validate:"gte=0"`
	NewNode     float64 `yaml:"new_node" validate:"gte=0,lte=1"`
	DelNode     float64 `yaml:"del_node" validate:"gte=0,lte=1"`
	MaxEvents   int     `yaml:"max_evts" validate:"min=1"`

	Seed        uint64  `yaml:"seed"`
	OutputRoot  string  `yaml:"output_root" validate:"required"`
	SnapshotAll bool    `yaml:"snapshot_all"`
	Publish     string  `yaml:"publish"`
	Archive     Archive `yaml:"archive"`
}

// Archive configures the optional upload of a finished run.
type Archive struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// Endpoint overrides the S3 endpoint for compatible stores; it implies
	// path-style addressing.
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	// Static credentials. When empty the default AWS chain is used.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key" validate:"required_with=AccessKey"`
}

// Enabled reports whether a bucket was configured.
func (a Archive) Enabled() bool {
	return a.Bucket != ""
}

// Defaults returns the reference parameter set.
func Defaults() Params {
	return Params{
		Size:        1000,
		Iterations:  1000,
		AvgDeg:      6,
		Sigma:       0.8,
		Lambda:      0.15,
		Alpha:       2.5,
		PAction:     0.5,
		PRenewal:    0.1,
		Conductance: 0.7,
		NewNode:     0,
		DelNode:     0,
		MaxEvents:   1,
		Seed:        1,
		OutputRoot:  "results",
	}
}

// Load reads a YAML file on top of Defaults.
func Load(path string) (Params, error) {
	p := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the size precondition first, then the remaining bounds.
func (p Params) Validate() error {
	if p.Size < MinSize {
		return fmt.Errorf("%w (got %d)", ErrSizeTooSmall, p.Size)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, formatValidationError(err))
	}
	// Community sizes start one above the floor of the minimum degree.
	mins := int(sequence.MinDegree(p.AvgDeg, p.Alpha)) + 1
	if err := sequence.CheckCommunitySizes(p.Size, p.AvgDeg, mins); err != nil {
		return fmt.Errorf("%w: AvgDeg %v: %v", ErrInvalidParams, p.AvgDeg, err)
	}
	return nil
}

// RunDirName names the output directory after the run's parameters.
func (p Params) RunDirName() string {
	return fmt.Sprintf("%d_%d_%s_%s_%s_%s_%d",
		p.Size, p.Iterations, formatFloat(p.AvgDeg), formatFloat(p.Sigma),
		formatFloat(p.PRenewal), formatFloat(p.Conductance), p.MaxEvents)
}

// RunDir is RunDirName under OutputRoot.
func (p Params) RunDir() string {
	return filepath.Join(p.OutputRoot, p.RunDirName())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lte", "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
