// Package rimage defines the raster types the depth pipeline operates on, and
// the per-pixel operations that convert and resample them.
package rimage

import (
	"image"
	"image/color"

	"github.com/viam-labs/guided-depth/utils"
)

// Image is a full-precision linear RGB raster. Channel values live in [0, 1]
// and are stored row major, three floats per pixel.
type Image struct {
	width, height int
	data          []float32
}

// NewImage returns a black image of the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		width:  width,
		height: height,
		data:   make([]float32, 3*width*height),
	}
}

// Width returns the horizontal dimension of the image.
func (i *Image) Width() int {
	return i.width
}

// Height returns the vertical dimension of the image.
func (i *Image) Height() int {
	return i.height
}

// Bounds returns the rectangle of valid pixel coordinates.
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// In returns whether (x, y) is a valid pixel position.
func (i *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

func (i *Image) kxy(x, y int) int {
	return 3 * ((y * i.width) + x)
}

// GetRGB returns the linear RGB channels at (x, y).
func (i *Image) GetRGB(x, y int) (r, g, b float32) {
	k := i.kxy(x, y)
	return i.data[k], i.data[k+1], i.data[k+2]
}

// SetRGB stores linear RGB channels at (x, y), clamped to [0, 1].
func (i *Image) SetRGB(x, y int, r, g, b float32) {
	k := i.kxy(x, y)
	i.data[k] = utils.ClampF32(r, 0, 1)
	i.data[k+1] = utils.ClampF32(g, 0, 1)
	i.data[k+2] = utils.ClampF32(b, 0, 1)
}

// Luma returns the Rec. 601 luma of the pixel at (x, y), in [0, 1].
func (i *Image) Luma(x, y int) float64 {
	k := i.kxy(x, y)
	return 0.299*float64(i.data[k]) + 0.587*float64(i.data[k+1]) + 0.114*float64(i.data[k+2])
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image so an Image can be handed to standard encoders.
func (i *Image) At(x, y int) color.Color {
	r, g, b := i.GetRGB(x, y)
	return color.RGBA{
		R: uint8(utils.ClampF64(float64(r)*255+0.5, 0, 255)),
		G: uint8(utils.ClampF64(float64(g)*255+0.5, 0, 255)),
		B: uint8(utils.ClampF64(float64(b)*255+0.5, 0, 255)),
		A: 255,
	}
}

// ConvertImage copies any standard image into a linear RGB Image.
func ConvertImage(img image.Image) *Image {
	bounds := img.Bounds()
	out := NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.SetRGB(x, y, float32(r)/65535, float32(g)/65535, float32(b)/65535)
		}
	}
	return out
}
