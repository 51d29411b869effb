package rimage

import (
	"bufio"
	"bytes"
	"image"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestDepthMapBasics(t *testing.T) {
	dm := NewEmptyDepthMap(6, 4)
	test.That(t, dm.HasData(), test.ShouldBeTrue)
	test.That(t, dm.Width(), test.ShouldEqual, 6)
	test.That(t, dm.Height(), test.ShouldEqual, 4)
	test.That(t, dm.Contains(5, 3), test.ShouldBeTrue)
	test.That(t, dm.Contains(6, 3), test.ShouldBeFalse)
	test.That(t, dm.Contains(-1, 0), test.ShouldBeFalse)

	dm.Set(2, 3, 1.5)
	test.That(t, float64(dm.GetDepth(2, 3)), test.ShouldAlmostEqual, 1.5, 1e-6)
	test.That(t, float64(dm.Get(image.Point{2, 3})), test.ShouldAlmostEqual, 1.5, 1e-6)
}

func TestDepthMapClone(t *testing.T) {
	dm := NewEmptyDepthMap(3, 3)
	dm.Set(1, 1, 2.0)
	clone := dm.Clone()
	clone.Set(1, 1, 9.0)
	test.That(t, float64(dm.GetDepth(1, 1)), test.ShouldAlmostEqual, 2.0, 1e-6)
	test.That(t, float64(clone.GetDepth(1, 1)), test.ShouldAlmostEqual, 9.0, 1e-6)
}

func TestDepthMapMinMax(t *testing.T) {
	dm := NewEmptyDepthMap(4, 4)
	dm.Set(0, 0, 0.5)
	dm.Set(3, 3, 4.25)
	min, max := dm.MinMax()
	test.That(t, float64(min), test.ShouldAlmostEqual, 0.5, 1e-6)
	test.That(t, float64(max), test.ShouldAlmostEqual, 4.25, 1e-6)

	// zeros are treated as missing data
	empty := NewEmptyDepthMap(2, 2)
	min, max = empty.MinMax()
	test.That(t, float64(min), test.ShouldEqual, 0.0)
	test.That(t, float64(max), test.ShouldEqual, 0.0)
}

func TestDepthMapRoundTrip(t *testing.T) {
	dm := NewEmptyDepthMap(5, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			dm.Set(x, y, Depth(0.1*float32(x)+float32(y)))
		}
	}

	var buf bytes.Buffer
	test.That(t, dm.WriteTo(&buf), test.ShouldBeNil)
	back, err := ReadDepthMap(bufio.NewReader(&buf))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.Width(), test.ShouldEqual, 5)
	test.That(t, back.Height(), test.ShouldEqual, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			test.That(t, float64(back.GetDepth(x, y)), test.ShouldAlmostEqual, float64(dm.GetDepth(x, y)), 1e-6)
		}
	}
}

func TestDepthMapFileRoundTripGzip(t *testing.T) {
	dm := NewEmptyDepthMap(4, 4)
	dm.Set(2, 2, 3.25)

	fn := filepath.Join(t.TempDir(), "depth.dat.gz")
	test.That(t, dm.WriteToFile(fn), test.ShouldBeNil)
	back, err := ParseDepthMap(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, float64(back.GetDepth(2, 2)), test.ShouldAlmostEqual, 3.25, 1e-6)
	test.That(t, float64(back.GetDepth(0, 0)), test.ShouldEqual, 0.0)
}

func TestDepthMapReadRejectsBadHeader(t *testing.T) {
	dm := NewEmptyDepthMap(1, 1)
	var buf bytes.Buffer
	test.That(t, dm.WriteTo(&buf), test.ShouldBeNil)
	raw := buf.Bytes()
	raw[0] = 0 // zero width
	_, err := ReadDepthMap(bufio.NewReader(bytes.NewReader(raw)))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestToPrettyPicture(t *testing.T) {
	dm := NewEmptyDepthMap(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			dm.Set(x, y, Depth(1+x))
		}
	}
	img := dm.ToPrettyPicture(0, 0)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 8)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 8)

	// near and far pixels should render with different hues
	near := img.At(0, 0)
	far := img.At(7, 0)
	test.That(t, near, test.ShouldNotResemble, far)
}

func TestConfidenceMap(t *testing.T) {
	cm := NewEmptyConfidenceMap(3, 2)
	test.That(t, cm.Get(0, 0), test.ShouldEqual, ConfidenceLow)
	cm.Set(2, 1, ConfidenceHigh)
	test.That(t, cm.Get(2, 1), test.ShouldEqual, ConfidenceHigh)
	test.That(t, cm.Contains(2, 1), test.ShouldBeTrue)
	test.That(t, cm.Contains(3, 1), test.ShouldBeFalse)
	cm.Fill(ConfidenceMedium)
	test.That(t, cm.Get(0, 0), test.ShouldEqual, ConfidenceMedium)
}
