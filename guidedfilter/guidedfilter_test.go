package guidedfilter

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viam-labs/guided-depth/rimage"
)

// grayImage builds an image whose luma at (x, y) is exactly v(x, y).
func grayImage(width, height int, v func(x, y int) float32) *rimage.Image {
	img := rimage.NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := v(x, y)
			img.SetRGB(x, y, g, g, g)
		}
	}
	return img
}

func TestRegressDimensionMismatch(t *testing.T) {
	target := rimage.NewEmptyDepthMap(8, 8)
	guide := grayImage(8, 6, func(x, y int) float32 { return 0.5 })
	_, err := Regress(target, guide, DefaultDiameter, 1e-4)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)

	_, err = Regress(nil, guide, DefaultDiameter, 1e-4)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Regress(target, nil, DefaultDiameter, 1e-4)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegressBadDiameter(t *testing.T) {
	target := rimage.NewEmptyDepthMap(4, 4)
	guide := grayImage(4, 4, func(x, y int) float32 { return 0.5 })
	_, err := Regress(target, guide, 0, 1e-4)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSelfConsistency(t *testing.T) {
	// when the guide is an exact linear function of the target, regression
	// followed by same-resolution reconstruction reproduces the target
	width, height := 16, 12
	depthAt := func(x, y int) float64 { return 1 + 0.1*float64(x) + 0.05*float64(y) }

	target := rimage.NewEmptyDepthMap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			target.Set(x, y, rimage.Depth(depthAt(x, y)))
		}
	}
	guide := grayImage(width, height, func(x, y int) float32 {
		return float32(depthAt(x, y) / 4)
	})

	coeffs, err := Regress(target, guide, DefaultDiameter, 1e-8)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, coeffs.Width(), test.ShouldEqual, width)
	test.That(t, coeffs.Height(), test.ShouldEqual, height)

	out, err := Reconstruct(coeffs, guide)
	test.That(t, err, test.ShouldBeNil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			test.That(t, float64(out.GetDepth(x, y)), test.ShouldAlmostEqual, depthAt(x, y), .01)
		}
	}
}

func TestHugeEpsilonFlattens(t *testing.T) {
	// epsilon >> var(G) forces a toward 0, so reconstruction degenerates to
	// the local mean of the target
	width, height := 12, 12
	depthAt := func(x, y int) float64 { return 2 + 0.2*float64(x) }

	target := rimage.NewEmptyDepthMap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			target.Set(x, y, rimage.Depth(depthAt(x, y)))
		}
	}
	guide := grayImage(width, height, func(x, y int) float32 {
		return float32(x%2) * 0.8
	})

	coeffs, err := Regress(target, guide, DefaultDiameter, 1e9)
	test.That(t, err, test.ShouldBeNil)

	out, err := Reconstruct(coeffs, guide)
	test.That(t, err, test.ShouldBeNil)

	radius := DefaultDiameter / 2
	for y := radius; y < height-radius; y++ {
		for x := radius; x < width-radius; x++ {
			a, b := coeffs.At(x, y)
			test.That(t, a, test.ShouldAlmostEqual, 0, 1e-6)

			// interior windows are symmetric, so the local mean is the
			// center value itself
			test.That(t, b, test.ShouldAlmostEqual, depthAt(x, y), 1e-6)
			test.That(t, float64(out.GetDepth(x, y)), test.ShouldAlmostEqual, depthAt(x, y), 1e-5)
		}
	}
}

func TestReconstructResolutionIndependence(t *testing.T) {
	target := rimage.NewEmptyDepthMap(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			target.Set(x, y, rimage.Depth(1+float32(x)*0.25))
		}
	}
	guide := grayImage(8, 8, func(x, y int) float32 { return float32(x) / 8 })
	coeffs, err := Regress(target, guide, DefaultDiameter, 1e-4)
	test.That(t, err, test.ShouldBeNil)

	// reconstruction at a different resolution than the coefficients
	bigGuide := grayImage(24, 24, func(x, y int) float32 { return float32(x) / 24 })
	out, err := Reconstruct(coeffs, bigGuide)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Width(), test.ShouldEqual, 24)
	test.That(t, out.Height(), test.ShouldEqual, 24)

	_, err = Reconstruct(nil, bigGuide)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = Reconstruct(coeffs, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestStepEdgeSharperThanBilinear(t *testing.T) {
	// a depth step co-registered with a color step should come out sharper
	// than plain bilinear upsampling of the depth alone
	lowW, lowH := 8, 8
	highW, highH := 32, 32

	target := rimage.NewEmptyDepthMap(lowW, lowH)
	for y := 0; y < lowH; y++ {
		for x := 0; x < lowW; x++ {
			if x < lowW/2 {
				target.Set(x, y, 1.0)
			} else {
				target.Set(x, y, 2.0)
			}
		}
	}
	lowGuide := grayImage(lowW, lowH, func(x, y int) float32 {
		if x < lowW/2 {
			return 0.25
		}
		return 0.75
	})
	highGuide := grayImage(highW, highH, func(x, y int) float32 {
		if x < highW/2 {
			return 0.25
		}
		return 0.75
	})

	coeffs, err := Regress(target, lowGuide, DefaultDiameter, 1e-4)
	test.That(t, err, test.ShouldBeNil)
	guided, err := Reconstruct(coeffs, highGuide)
	test.That(t, err, test.ShouldBeNil)

	bilinear, err := rimage.ResizeDepthMap(target, highW, highH)
	test.That(t, err, test.ShouldBeNil)

	countTransitional := func(dm *rimage.DepthMap) int {
		n := 0
		for y := 0; y < highH; y++ {
			for x := 0; x < highW; x++ {
				d := float64(dm.GetDepth(x, y))
				if d > 1.1 && d < 1.9 {
					n++
				}
			}
		}
		return n
	}

	test.That(t, countTransitional(guided), test.ShouldBeLessThan, countTransitional(bilinear))
}
