package rimage

import "image"

// Confidence is the categorical reliability of a single depth measurement.
type Confidence uint8

// Confidence levels, ordered from least to most reliable.
const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// ConfidenceMap is a raster of per-texel depth reliability estimates. It
// shares the depth map's coordinate system.
type ConfidenceMap struct {
	width  int
	height int

	data []Confidence
}

// NewEmptyConfidenceMap returns a confidence map of the given dimensions with
// every texel marked low.
func NewEmptyConfidenceMap(width, height int) *ConfidenceMap {
	return &ConfidenceMap{
		width:  width,
		height: height,
		data:   make([]Confidence, width*height),
	}
}

// Width returns the horizontal dimension of the map.
func (cm *ConfidenceMap) Width() int {
	return cm.width
}

// Height returns the vertical dimension of the map.
func (cm *ConfidenceMap) Height() int {
	return cm.height
}

// Bounds returns the rectangle of valid texel coordinates.
func (cm *ConfidenceMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, cm.width, cm.height)
}

// Contains returns whether (x, y) is a valid position in the map.
func (cm *ConfidenceMap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < cm.width && y < cm.height
}

// Get returns the confidence at (x, y).
func (cm *ConfidenceMap) Get(x, y int) Confidence {
	return cm.data[(y*cm.width)+x]
}

// Set stores a confidence level at (x, y).
func (cm *ConfidenceMap) Set(x, y int, c Confidence) {
	cm.data[(y*cm.width)+x] = c
}

// Fill sets every texel to the given level.
func (cm *ConfidenceMap) Fill(c Confidence) {
	for i := range cm.data {
		cm.data[i] = c
	}
}
