package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/guided-depth/guidedfilter"
)

// Config controls the processing pipeline. It is process wide and does not
// vary per frame; the two booleans may be flipped at runtime through the
// pipeline's setters, which reprocess the most recent bundle immediately.
type Config struct {
	// UpsampleEnabled selects between passing the sensor depth through
	// unchanged and running the guided-filter upsampling branch.
	UpsampleEnabled bool
	// UseSmoothedSource selects the temporally smoothed depth and confidence
	// rasters instead of the raw ones.
	UseSmoothedSource bool

	// TargetWidth and TargetHeight are the upsampled depth resolution.
	TargetWidth  int
	TargetHeight int

	// KernelDiameter is the guided filter regression window size.
	KernelDiameter int
	// Epsilon regularizes the guided filter regression.
	Epsilon float64
}

// DefaultConfig returns the configuration used for a typical mobile depth
// sensor: 256x192 depth upsampled to 960x720 against a 1920x1440 color frame.
func DefaultConfig() Config {
	return Config{
		UpsampleEnabled: true,
		TargetWidth:     960,
		TargetHeight:    720,
		KernelDiameter:  guidedfilter.DefaultDiameter,
		Epsilon:         1e-4,
	}
}

// Validate checks the fixed constants. It reports every problem it finds.
func (c Config) Validate() error {
	var err error
	if c.TargetWidth <= 0 || c.TargetHeight <= 0 {
		err = multierr.Combine(err,
			errors.Errorf("target dimensions must be positive, got (%d, %d)", c.TargetWidth, c.TargetHeight))
	}
	if c.KernelDiameter <= 0 {
		err = multierr.Combine(err,
			errors.Errorf("kernel diameter must be positive, got %d", c.KernelDiameter))
	}
	if c.Epsilon <= 0 {
		err = multierr.Combine(err,
			errors.Errorf("epsilon must be positive, got %g", c.Epsilon))
	}
	return err
}
