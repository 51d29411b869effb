package rimage

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// Depth is a single depth measurement, in meters.
type Depth float32

// DepthMap is a raster of depth measurements, one per sensor texel.
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a zeroed depth map of the given dimensions.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// HasData returns whether the map contains any pixel storage at all.
func (dm *DepthMap) HasData() bool {
	return dm.width > 0 && dm.data != nil
}

// Width returns the horizontal dimension of the depth map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical dimension of the depth map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle of valid pixel coordinates.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// Contains returns whether (x, y) is a valid position in the map.
func (dm *DepthMap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < dm.width && y < dm.height
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// GetDepth returns the depth at (x, y).
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Get returns the depth at a point.
func (dm *DepthMap) Get(p image.Point) Depth {
	return dm.data[dm.kxy(p.X, p.Y)]
}

// Set stores a depth value at (x, y).
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Clone returns a deep copy of the depth map.
func (dm *DepthMap) Clone() *DepthMap {
	out := NewEmptyDepthMap(dm.width, dm.height)
	copy(out.data, dm.data)
	return out
}

// MinMax returns the smallest and largest non-zero depth values in the map.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	var min, max Depth
	min = Depth(1e9)
	for _, z := range dm.data {
		if z == 0 {
			continue
		}
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}
	if min > max {
		min = 0
	}
	return min, max
}

// ToPrettyPicture renders the depth map as a false-color image, sweeping hue
// from orange (near) to blue (far). Zero depth pixels stay black. hardMin and
// hardMax pin the color ramp; pass 0, 0 to span the map's own range.
func (dm *DepthMap) ToPrettyPicture(hardMin, hardMax Depth) image.Image {
	min, max := dm.MinMax()

	if hardMin > 0 && min < hardMin {
		min = hardMin
	}
	if hardMax > 0 && max > hardMax {
		max = hardMax
	}

	img := image.NewRGBA(image.Rect(0, 0, dm.width, dm.height))
	span := float64(max) - float64(min)
	if span <= 0 {
		span = 1
	}

	for y := 0; y < dm.height; y++ {
		for x := 0; x < dm.width; x++ {
			z := dm.GetDepth(x, y)
			if z == 0 {
				continue
			}
			if z < min {
				z = min
			}
			if z > max {
				z = max
			}
			ratio := (float64(z) - float64(min)) / span
			hue := 30 + (200.0 * ratio)
			img.Set(x, y, colorful.Hsv(hue, 1.0, 1.0))
		}
	}

	return img
}
