package utils

import (
	"image"
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestParallelForEachPixel(t *testing.T) {
	size := image.Point{37, 23}
	visits := make([]int32, size.X*size.Y)
	ParallelForEachPixel(size, func(x, y int) {
		atomic.AddInt32(&visits[y*size.X+x], 1)
	})
	for _, v := range visits {
		test.That(t, v, test.ShouldEqual, int32(1))
	}
}

func TestParallelForEachPixelSmallRaster(t *testing.T) {
	// fewer rows than workers
	size := image.Point{4, 2}
	var count int32
	ParallelForEachPixel(size, func(x, y int) {
		atomic.AddInt32(&count, 1)
	})
	test.That(t, count, test.ShouldEqual, int32(8))
}

func TestParallelForEachPixelEmpty(t *testing.T) {
	called := false
	ParallelForEachPixel(image.Point{0, 0}, func(x, y int) {
		called = true
	})
	test.That(t, called, test.ShouldBeFalse)
}
