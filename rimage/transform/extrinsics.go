package transform

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CameraExtrinsics is the rigid camera-to-world transform captured with a
// frame, plus the device orientation angles reported by the tracking system.
type CameraExtrinsics struct {
	// Pose is the 4x4 homogeneous camera-to-world transform.
	Pose *mat.Dense
	// Orientation holds device roll, pitch and yaw in radians.
	Orientation r3.Vector
}

// NewCameraExtrinsics validates the pose matrix shape and wraps it.
func NewCameraExtrinsics(pose *mat.Dense, orientation r3.Vector) (*CameraExtrinsics, error) {
	if pose == nil {
		return nil, errors.New("extrinsics need a pose matrix")
	}
	r, c := pose.Dims()
	if r != 4 || c != 4 {
		return nil, errors.Errorf("extrinsics pose must be 4x4, got %dx%d", r, c)
	}
	return &CameraExtrinsics{Pose: pose, Orientation: orientation}, nil
}

// NewIdentityExtrinsics returns extrinsics for a camera at the world origin.
func NewIdentityExtrinsics() *CameraExtrinsics {
	pose := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		pose.Set(i, i, 1)
	}
	return &CameraExtrinsics{Pose: pose}
}

// TransformPoint applies the pose to a point in the camera frame, returning
// the corresponding world-frame point.
func (e *CameraExtrinsics) TransformPoint(p r3.Vector) r3.Vector {
	v := mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1})
	var out mat.VecDense
	out.MulVec(e.Pose, v)
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
