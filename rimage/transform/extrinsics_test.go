package transform

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestNewCameraExtrinsics(t *testing.T) {
	_, err := NewCameraExtrinsics(nil, r3.Vector{})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewCameraExtrinsics(mat.NewDense(3, 4, nil), r3.Vector{})
	test.That(t, err, test.ShouldNotBeNil)

	ext, err := NewCameraExtrinsics(NewIdentityExtrinsics().Pose, r3.Vector{X: 0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ext.Orientation.X, test.ShouldAlmostEqual, 0.1)
}

func TestTransformPoint(t *testing.T) {
	ident := NewIdentityExtrinsics()
	p := ident.TransformPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, p.X, test.ShouldAlmostEqual, 1)
	test.That(t, p.Y, test.ShouldAlmostEqual, 2)
	test.That(t, p.Z, test.ShouldAlmostEqual, 3)

	// pure translation
	pose := mat.NewDense(4, 4, []float64{
		1, 0, 0, 10,
		0, 1, 0, -5,
		0, 0, 1, 2,
		0, 0, 0, 1,
	})
	ext, err := NewCameraExtrinsics(pose, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	p = ext.TransformPoint(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, p.X, test.ShouldAlmostEqual, 11)
	test.That(t, p.Y, test.ShouldAlmostEqual, -4)
	test.That(t, p.Z, test.ShouldAlmostEqual, 3)
}
