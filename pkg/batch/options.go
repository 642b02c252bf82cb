package batch

import (
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/specdiff/pkg/errors"
	"github.com/matzehuels/specdiff/pkg/facts"
	"github.com/matzehuels/specdiff/pkg/versions"
)

// Options configures a [Runner].
type Options struct {
	// Workers bounds the number of concurrent fact derivations and pair
	// comparisons. Zero selects runtime.NumCPU(); 1 runs sequentially.
	Workers int

	// RangePolicy selects how version ranges are measured.
	RangePolicy versions.RangePolicy

	// Strict fails the whole directory on a broken manifest or a
	// compiler/package name collision instead of skipping the manifest.
	Strict bool

	// Loader resolves manifests before fact derivation.
	Loader facts.Loader

	// Deriver produces fact sets.
	Deriver facts.Deriver

	Logger *log.Logger
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.RangePolicy == "" {
		o.RangePolicy = versions.DefaultRangePolicy
	}
	if o.Loader == nil {
		o.Loader = facts.ConcreteLoader{}
	}
	if o.Deriver == nil {
		o.Deriver = facts.ManifestDeriver{}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Validate checks option values.
func (o *Options) Validate() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be >= 0, got %d", o.Workers)
	}
	if _, err := versions.ParseRangePolicy(string(o.RangePolicy)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "range policy")
	}
	return nil
}

// ValidateAndSetDefaults validates o and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.SetDefaults()
	return nil
}
