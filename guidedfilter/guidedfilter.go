// Package guidedfilter implements joint upsampling of a low resolution depth
// raster guided by a co-registered color image.
//
// The filter runs in two phases. Regression fits, for every low resolution
// pixel, a local linear model relating guide luma to depth within a small
// square window. Reconstruction then evaluates those models against a higher
// resolution guide, so that depth transitions land where the color image has
// edges instead of being smeared by plain interpolation.
package guidedfilter

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"github.com/viam-labs/guided-depth/rimage"
	"github.com/viam-labs/guided-depth/utils"
)

// DefaultDiameter is the default regression window diameter, in pixels.
const DefaultDiameter = 5

// ErrDimensionMismatch is returned when the regression target and guide
// rasters do not share the same dimensions.
var ErrDimensionMismatch = errors.New("guide and target dimensions do not match")

// Coefficients is a raster of per-pixel linear models: depth ~ a*luma + b.
// It lives at the regression target's resolution and is sampled by
// normalized coordinates during reconstruction, so the reconstruction guide
// may be any resolution.
type Coefficients struct {
	width  int
	height int

	a []float64
	b []float64
}

// Width returns the horizontal dimension of the coefficient raster.
func (c *Coefficients) Width() int {
	return c.width
}

// Height returns the vertical dimension of the coefficient raster.
func (c *Coefficients) Height() int {
	return c.height
}

// At returns the (a, b) model at a coefficient pixel.
func (c *Coefficients) At(x, y int) (float64, float64) {
	k := (y * c.width) + x
	return c.a[k], c.b[k]
}

// atNormalized bilinearly samples the coefficient pair at normalized
// coordinates, where (0, 0) and (1, 1) are the raster corners.
func (c *Coefficients) atNormalized(u, v float64) (float64, float64) {
	sx := u*float64(c.width) - 0.5
	sy := v*float64(c.height) - 0.5

	fx := math.Floor(sx)
	fy := math.Floor(sy)
	wx := sx - fx
	wy := sy - fy

	// clamp each tap independently so border pixels blend with themselves
	x0 := utils.MinInt(utils.MaxInt(int(fx), 0), c.width-1)
	y0 := utils.MinInt(utils.MaxInt(int(fy), 0), c.height-1)
	x1 := utils.MinInt(utils.MaxInt(int(fx)+1, 0), c.width-1)
	y1 := utils.MinInt(utils.MaxInt(int(fy)+1, 0), c.height-1)

	a00, b00 := c.At(x0, y0)
	a10, b10 := c.At(x1, y0)
	a01, b01 := c.At(x0, y1)
	a11, b11 := c.At(x1, y1)

	aTop := a00 + (a10-a00)*wx
	aBottom := a01 + (a11-a01)*wx
	bTop := b00 + (b10-b00)*wx
	bBottom := b01 + (b11-b01)*wx
	return aTop + (aBottom-aTop)*wy, bTop + (bBottom-bTop)*wy
}

// Regress fits the local linear models relating guide luma to the target
// depth. target and guide must share dimensions; windows are clamped at the
// raster borders. Guidance is single component: the Rec. 601 luma of the
// guide image. epsilon regularizes the fit; larger values push the slope a
// toward zero and the output toward the local depth mean.
func Regress(target *rimage.DepthMap, guide *rimage.Image, diameter int, epsilon float64) (*Coefficients, error) {
	if target == nil || guide == nil {
		return nil, errors.New("regression needs both a target and a guide raster")
	}
	if target.Width() != guide.Width() || target.Height() != guide.Height() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "target (%d, %d) vs guide (%d, %d)",
			target.Width(), target.Height(), guide.Width(), guide.Height())
	}
	if diameter <= 0 {
		return nil, errors.Errorf("window diameter must be positive, got %d", diameter)
	}

	width, height := target.Width(), target.Height()
	radius := diameter / 2
	coeffs := &Coefficients{
		width:  width,
		height: height,
		a:      make([]float64, width*height),
		b:      make([]float64, width*height),
	}

	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		x0 := utils.MaxInt(0, x-radius)
		x1 := utils.MinInt(width-1, x+radius)
		y0 := utils.MaxInt(0, y-radius)
		y1 := utils.MinInt(height-1, y+radius)

		var sumG, sumT, sumGG, sumGT float64
		n := 0
		for yy := y0; yy <= y1; yy++ {
			for xx := x0; xx <= x1; xx++ {
				g := guide.Luma(xx, yy)
				t := float64(target.GetDepth(xx, yy))
				sumG += g
				sumT += t
				sumGG += g * g
				sumGT += g * t
				n++
			}
		}

		inv := 1.0 / float64(n)
		meanG := sumG * inv
		meanT := sumT * inv
		varG := sumGG*inv - meanG*meanG
		if varG < 0 {
			// tiny negative values from float cancellation
			varG = 0
		}
		cov := sumGT*inv - meanG*meanT

		a := cov / (varG + epsilon)
		k := (y * width) + x
		coeffs.a[k] = a
		coeffs.b[k] = meanT - a*meanG
	})

	return coeffs, nil
}

// Reconstruct evaluates the coefficient raster against a guide image,
// producing a depth map at the guide's resolution. The coefficients are
// sampled at each guide pixel's normalized position, so the guide resolution
// is independent of the regression resolution.
func Reconstruct(coeffs *Coefficients, guide *rimage.Image) (*rimage.DepthMap, error) {
	if coeffs == nil || guide == nil {
		return nil, errors.New("reconstruction needs both coefficients and a guide raster")
	}
	if coeffs.width <= 0 || coeffs.height <= 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "empty coefficient raster")
	}

	width, height := guide.Width(), guide.Height()
	out := rimage.NewEmptyDepthMap(width, height)
	utils.ParallelForEachPixel(image.Point{width, height}, func(x, y int) {
		u := (float64(x) + 0.5) / float64(width)
		v := (float64(y) + 0.5) / float64(height)
		a, b := coeffs.atNormalized(u, v)
		d := a*guide.Luma(x, y) + b
		if d < 0 {
			// depth cannot be negative
			d = 0
		}
		out.Set(x, y, rimage.Depth(d))
	})
	return out, nil
}
