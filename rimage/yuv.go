package rimage

import (
	"image"

	"github.com/pkg/errors"

	"github.com/viam-labs/guided-depth/utils"
)

// ErrConversion is returned when color plane geometry is malformed or the
// planes do not share the expected 2x2 chroma subsampling relationship.
var ErrConversion = errors.New("malformed color plane geometry")

// YCbCrPlanes holds one video frame as a planar full-range luma plane plus an
// interleaved, 2x2 subsampled chroma plane (the common bi-planar 4:2:0
// layout produced by mobile capture hardware).
type YCbCrPlanes struct {
	Width  int
	Height int
	// Y is the luma plane, YStride bytes per row.
	Y       []uint8
	YStride int
	// CbCr is the chroma plane, Cb and Cr bytes interleaved, one pair per
	// 2x2 luma block, CbCrStride bytes per row of pairs.
	CbCr       []uint8
	CbCrStride int
}

func (p YCbCrPlanes) chromaDims() (int, int) {
	return (p.Width + 1) / 2, (p.Height + 1) / 2
}

func (p YCbCrPlanes) check() error {
	if p.Width <= 0 || p.Height <= 0 {
		return errors.Wrapf(ErrConversion, "invalid luma dimensions (%d, %d)", p.Width, p.Height)
	}
	if p.YStride < p.Width {
		return errors.Wrapf(ErrConversion, "luma stride %d shorter than width %d", p.YStride, p.Width)
	}
	if len(p.Y) < p.YStride*(p.Height-1)+p.Width {
		return errors.Wrapf(ErrConversion, "luma plane has %d bytes, need at least %d",
			len(p.Y), p.YStride*(p.Height-1)+p.Width)
	}
	cw, ch := p.chromaDims()
	if p.CbCrStride < 2*cw {
		return errors.Wrapf(ErrConversion, "chroma stride %d cannot hold %d interleaved pairs", p.CbCrStride, cw)
	}
	if len(p.CbCr) < p.CbCrStride*(ch-1)+2*cw {
		return errors.Wrapf(ErrConversion, "chroma plane has %d bytes, need at least %d for a %dx%d subsampled plane",
			len(p.CbCr), p.CbCrStride*(ch-1)+2*cw, cw, ch)
	}
	return nil
}

// ConvertYCbCr converts planar luma plus subsampled chroma into a linear RGB
// image using the full-range BT.601 transform. Every output pixel depends
// only on its own luma sample and its 2x2 block's chroma pair, so the
// conversion is dispatched in parallel.
func ConvertYCbCr(planes YCbCrPlanes) (*Image, error) {
	if err := planes.check(); err != nil {
		return nil, err
	}

	out := NewImage(planes.Width, planes.Height)
	utils.ParallelForEachPixel(image.Point{planes.Width, planes.Height}, func(x, y int) {
		yy := float64(planes.Y[y*planes.YStride+x])
		ci := (y/2)*planes.CbCrStride + (x/2)*2
		cb := float64(planes.CbCr[ci]) - 128
		cr := float64(planes.CbCr[ci+1]) - 128

		r := yy + 1.402*cr
		g := yy - 0.344136*cb - 0.714136*cr
		b := yy + 1.772*cb
		out.SetRGB(x, y, float32(r/255), float32(g/255), float32(b/255))
	})
	return out, nil
}
