package pipeline

import (
	"time"

	"github.com/pkg/errors"

	"github.com/viam-labs/guided-depth/guidedfilter"
	"github.com/viam-labs/guided-depth/rimage"
	"github.com/viam-labs/guided-depth/rimage/transform"
)

// FrameBundle is everything the capture subsystem hands over for one instant:
// the raw and temporally smoothed depth rasters with their confidence maps,
// the color planes, and the camera geometry. A bundle is owned by the
// pipeline for the duration of one processing cycle and is superseded, never
// mutated, by the next one.
type FrameBundle struct {
	Depth              *rimage.DepthMap
	SmoothedDepth      *rimage.DepthMap
	Confidence         *rimage.ConfidenceMap
	SmoothedConfidence *rimage.ConfidenceMap

	Color rimage.YCbCrPlanes

	Intrinsics *transform.PinholeCameraIntrinsics
	Extrinsics *transform.CameraExtrinsics

	CapturedAt time.Time
}

// depthSource picks the raw or smoothed rasters out of the bundle.
func (fb *FrameBundle) depthSource(smoothed bool) (*rimage.DepthMap, *rimage.ConfidenceMap, error) {
	depth, conf := fb.Depth, fb.Confidence
	if smoothed {
		depth, conf = fb.SmoothedDepth, fb.SmoothedConfidence
	}
	if depth == nil || conf == nil {
		return nil, nil, errors.Errorf("frame bundle is missing its %s depth or confidence raster",
			sourceName(smoothed))
	}
	if depth.Width() != conf.Width() || depth.Height() != conf.Height() {
		return nil, nil, errors.Errorf("depth (%d, %d) and confidence (%d, %d) rasters disagree",
			depth.Width(), depth.Height(), conf.Width(), conf.Height())
	}
	return depth, conf, nil
}

func sourceName(smoothed bool) string {
	if smoothed {
		return "smoothed"
	}
	return "raw"
}

// ProcessedOutput is one cycle's derived state. Nothing in it is written
// after publication: derived rasters are allocated by the cycle itself, and
// the passthrough branch shares the bundle's rasters, which are never
// mutated. A consumer may keep reading a snapshot while the pipeline
// produces the next one.
type ProcessedOutput struct {
	// Color is the converted full-resolution linear RGB frame.
	Color *rimage.Image

	// RegressionGuide and ReconstructionGuide are the color frame downscaled
	// to the depth resolution and to the upsample target resolution. They are
	// only populated when upsampling ran.
	RegressionGuide     *rimage.Image
	ReconstructionGuide *rimage.Image

	// Coefficients is the intermediate regression output, kept for
	// inspection and debugging.
	Coefficients *guidedfilter.Coefficients

	// Depth is the cycle's final depth raster: the selected source raster
	// when upsampling is disabled, the guided reconstruction otherwise.
	Depth *rimage.DepthMap
	// Confidence matches Depth's resolution.
	Confidence *rimage.ConfidenceMap

	// Upsampled reports which branch produced Depth.
	Upsampled  bool
	CapturedAt time.Time
}
