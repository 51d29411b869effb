package utils

import (
	"image"
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// ParallelForEachPixel calls f for every [x, y] position of a raster with the
// given size. Rows are split into contiguous bands, one goroutine per band.
// The call returns only once every band has finished, so callers may rely on
// it as a completion barrier between sequential processing phases.
func ParallelForEachPixel(size image.Point, f func(x, y int)) {
	bands := ParallelFactor
	if bands > size.Y {
		bands = size.Y
	}
	if bands <= 1 {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				f(x, y)
			}
		}
		return
	}

	rowsPerBand := size.Y / bands
	extra := size.Y % bands

	var waitGroup sync.WaitGroup
	waitGroup.Add(bands)
	start := 0
	for i := 0; i < bands; i++ {
		rows := rowsPerBand
		if i < extra {
			rows++
		}
		startY, endY := start, start+rows
		start = endY
		utils.PanicCapturingGo(func() {
			defer waitGroup.Done()
			for y := startY; y < endY; y++ {
				for x := 0; x < size.X; x++ {
					f(x, y)
				}
			}
		})
	}
	waitGroup.Wait()
}
