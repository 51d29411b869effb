package rimage

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/viam-labs/guided-depth/utils"
)

// ErrInvalidDimensions is returned when a resample is requested with a zero
// or negative target size.
var ErrInvalidDimensions = errors.New("raster dimensions must be positive")

// bilinearTaps maps a destination index to its two source indices and the
// blend weight of the second one, using uniform center-aligned scaling with
// edge clamping. The same rule serves both upscaling and downscaling; there
// is deliberately no anti-aliasing prefilter, matching plain bilinear
// behavior at the cost of some aliasing on heavy downscales.
func bilinearTaps(d, dstSize, srcSize int) (i0, i1 int, frac float64) {
	src := (float64(d)+0.5)*float64(srcSize)/float64(dstSize) - 0.5
	f := math.Floor(src)
	frac = src - f
	// clamp each tap independently so border pixels blend with themselves
	i0 = utils.MinInt(utils.MaxInt(int(f), 0), srcSize-1)
	i1 = utils.MinInt(utils.MaxInt(int(f)+1, 0), srcSize-1)
	return i0, i1, frac
}

func checkResize(srcW, srcH, dstW, dstH int) error {
	if srcW <= 0 || srcH <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "source raster is (%d, %d)", srcW, srcH)
	}
	if dstW <= 0 || dstH <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "requested target size is (%d, %d)", dstW, dstH)
	}
	return nil
}

// ResizeImage resamples an image to the given dimensions with bilinear
// interpolation, in either direction.
func ResizeImage(src *Image, width, height int) (*Image, error) {
	if err := checkResize(src.Width(), src.Height(), width, height); err != nil {
		return nil, err
	}

	out := NewImage(width, height)
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		x0, x1, fx := bilinearTaps(x, width, src.Width())
		y0, y1, fy := bilinearTaps(y, height, src.Height())

		r00, g00, b00 := src.GetRGB(x0, y0)
		r10, g10, b10 := src.GetRGB(x1, y0)
		r01, g01, b01 := src.GetRGB(x0, y1)
		r11, g11, b11 := src.GetRGB(x1, y1)

		out.SetRGB(x, y,
			blend(r00, r10, r01, r11, fx, fy),
			blend(g00, g10, g01, g11, fx, fy),
			blend(b00, b10, b01, b11, fx, fy),
		)
	})
	return out, nil
}

// ResizeDepthMap resamples a depth map to the given dimensions with bilinear
// interpolation.
func ResizeDepthMap(src *DepthMap, width, height int) (*DepthMap, error) {
	if err := checkResize(src.Width(), src.Height(), width, height); err != nil {
		return nil, err
	}

	out := NewEmptyDepthMap(width, height)
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		x0, x1, fx := bilinearTaps(x, width, src.Width())
		y0, y1, fy := bilinearTaps(y, height, src.Height())
		out.Set(x, y, Depth(blend(
			float32(src.GetDepth(x0, y0)),
			float32(src.GetDepth(x1, y0)),
			float32(src.GetDepth(x0, y1)),
			float32(src.GetDepth(x1, y1)),
			fx, fy,
		)))
	})
	return out, nil
}

// ResizeConfidenceMap resamples a confidence map to the given dimensions.
// Levels are blended bilinearly in numeric space and rounded back to the
// nearest level, so the result never contains a value outside the
// low/medium/high scale.
func ResizeConfidenceMap(src *ConfidenceMap, width, height int) (*ConfidenceMap, error) {
	if err := checkResize(src.Width(), src.Height(), width, height); err != nil {
		return nil, err
	}

	out := NewEmptyConfidenceMap(width, height)
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		x0, x1, fx := bilinearTaps(x, width, src.Width())
		y0, y1, fy := bilinearTaps(y, height, src.Height())
		level := blend(
			float32(src.Get(x0, y0)),
			float32(src.Get(x1, y0)),
			float32(src.Get(x0, y1)),
			float32(src.Get(x1, y1)),
			fx, fy,
		)
		rounded := Confidence(math.Round(float64(level)))
		if rounded > ConfidenceHigh {
			rounded = ConfidenceHigh
		}
		out.Set(x, y, rounded)
	})
	return out, nil
}

func blend(v00, v10, v01, v11 float32, fx, fy float64) float32 {
	top := float64(v00) + (float64(v10)-float64(v00))*fx
	bottom := float64(v01) + (float64(v11)-float64(v01))*fx
	return float32(top + (bottom-top)*fy)
}
