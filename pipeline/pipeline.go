// Package pipeline sequences format conversion, rescaling and guided
// filtering over a stream of frame bundles, and publishes one processed
// output per completed cycle.
package pipeline

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/viam-labs/guided-depth/guidedfilter"
	"github.com/viam-labs/guided-depth/rimage"
)

// Pipeline runs one processing cycle per incoming frame bundle or
// configuration change. Cycles never overlap: a new frame waits for the
// in-flight cycle to finish, so working state is never torn. The published
// output is swapped in atomically and is immutable afterward, so readers
// always see either the previous complete cycle or the new one.
type Pipeline struct {
	mu     sync.Mutex
	cfg    Config
	last   *FrameBundle
	closed bool

	outMu sync.RWMutex
	out   *ProcessedOutput

	logger golog.Logger
}

// ErrClosed is returned by operations on a pipeline after Close.
var ErrClosed = errors.New("pipeline is closed")

// New returns a pipeline with the given configuration.
func New(cfg Config, logger golog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugw("starting depth pipeline",
		"upsample", cfg.UpsampleEnabled,
		"smoothed_source", cfg.UseSmoothedSource,
		"target_width", cfg.TargetWidth,
		"target_height", cfg.TargetHeight,
	)
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// ProcessFrame runs one cycle over the bundle. On success the bundle becomes
// the pipeline's most recent bundle and the new output is published. On
// failure the previous output stays published untouched and the error is
// returned; a malformed bundle will not self-correct, so it is not retained
// for reprocessing either.
func (p *Pipeline) ProcessFrame(ctx context.Context, bundle FrameBundle) error {
	ctx, span := trace.StartSpan(ctx, "pipeline::Pipeline::ProcessFrame")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	out, err := p.processLocked(ctx, &bundle)
	if err != nil {
		return err
	}
	p.last = &bundle
	p.publish(out)
	return nil
}

// SetUpsampleEnabled flips the upsampling branch and synchronously
// reprocesses the most recent bundle under the new configuration.
func (p *Pipeline) SetUpsampleEnabled(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.cfg.UpsampleEnabled == enabled {
		return nil
	}
	p.cfg.UpsampleEnabled = enabled
	return p.reprocessLocked(ctx)
}

// SetUseSmoothedSource flips the raw/smoothed source selection and
// synchronously reprocesses the most recent bundle.
func (p *Pipeline) SetUseSmoothedSource(ctx context.Context, smoothed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.cfg.UseSmoothedSource == smoothed {
		return nil
	}
	p.cfg.UseSmoothedSource = smoothed
	return p.reprocessLocked(ctx)
}

// Output returns the most recently published output, or nil before the first
// completed cycle. The returned value is never written again.
func (p *Pipeline) Output() *ProcessedOutput {
	p.outMu.RLock()
	defer p.outMu.RUnlock()
	return p.out
}

// Run consumes bundles from the channel until it closes or the context ends.
// Frames are processed strictly one at a time; a frame that fails its cycle
// is logged and dropped, keeping the previous output live.
func (p *Pipeline) Run(ctx context.Context, frames <-chan FrameBundle) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bundle, ok := <-frames:
			if !ok {
				return nil
			}
			if err := p.ProcessFrame(ctx, bundle); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				p.logger.Errorw("dropping frame", "error", err)
			}
		}
	}
}

// Close waits for any in-flight cycle, then releases the retained bundle and
// rejects further processing. The last published output stays readable.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.last = nil
	p.logger.Debug("depth pipeline closed")
	return nil
}

func (p *Pipeline) publish(out *ProcessedOutput) {
	p.outMu.Lock()
	p.out = out
	p.outMu.Unlock()
}

func (p *Pipeline) reprocessLocked(ctx context.Context) error {
	if p.last == nil {
		return nil
	}
	out, err := p.processLocked(ctx, p.last)
	if err != nil {
		return err
	}
	p.publish(out)
	return nil
}

// processLocked is one full cycle. All precondition failures happen before
// any parallel per-pixel dispatch; the phases themselves run strictly in
// sequence, each ParallelForEachPixel call acting as its completion barrier.
func (p *Pipeline) processLocked(ctx context.Context, fb *FrameBundle) (*ProcessedOutput, error) {
	_, span := trace.StartSpan(ctx, "pipeline::Pipeline::processLocked")
	defer span.End()

	depth, conf, err := fb.depthSource(p.cfg.UseSmoothedSource)
	if err != nil {
		return nil, err
	}

	rgb, err := rimage.ConvertYCbCr(fb.Color)
	if err != nil {
		return nil, err
	}

	out := &ProcessedOutput{
		Color:      rgb,
		Depth:      depth,
		Confidence: conf,
		CapturedAt: fb.CapturedAt,
	}
	if !p.cfg.UpsampleEnabled {
		return out, nil
	}

	// Two distinct guide buffers: one at the depth resolution for the
	// regression, one at the target resolution for the reconstruction.
	regGuide, err := rimage.ResizeImage(rgb, depth.Width(), depth.Height())
	if err != nil {
		return nil, err
	}
	reconGuide, err := rimage.ResizeImage(rgb, p.cfg.TargetWidth, p.cfg.TargetHeight)
	if err != nil {
		return nil, err
	}
	upConf, err := rimage.ResizeConfidenceMap(conf, p.cfg.TargetWidth, p.cfg.TargetHeight)
	if err != nil {
		return nil, err
	}

	coeffs, err := guidedfilter.Regress(depth, regGuide, p.cfg.KernelDiameter, p.cfg.Epsilon)
	if err != nil {
		return nil, err
	}
	upDepth, err := guidedfilter.Reconstruct(coeffs, reconGuide)
	if err != nil {
		return nil, err
	}

	out.RegressionGuide = regGuide
	out.ReconstructionGuide = reconGuide
	out.Coefficients = coeffs
	out.Depth = upDepth
	out.Confidence = upConf
	out.Upsampled = true
	return out, nil
}
