// Package main upsamples a captured depth raster against its color frame and
// writes the result as raw data and as a false-color picture.
package main

import (
	"flag"

	"github.com/edaniels/golog"

	"github.com/viam-labs/guided-depth/guidedfilter"
	"github.com/viam-labs/guided-depth/rimage"
)

func main() {
	diameter := flag.Int("diameter", guidedfilter.DefaultDiameter, "regression window diameter")
	epsilon := flag.Float64("epsilon", 1e-4, "regression regularization")
	hardMin := flag.Float64("min", 0, "min depth for the color ramp, meters")
	hardMax := flag.Float64("max", 0, "max depth for the color ramp, meters")

	flag.Parse()
	logger := golog.NewLogger("depthupsample")

	if flag.NArg() < 3 {
		logger.Fatal("need three args <depth-in> <color-in> <out-prefix>")
	}

	dm, err := rimage.ParseDepthMap(flag.Arg(0))
	if err != nil {
		logger.Fatalw("cannot read depth map", "path", flag.Arg(0), "error", err)
	}
	img, err := rimage.NewImageFromFile(flag.Arg(1))
	if err != nil {
		logger.Fatalw("cannot read color image", "path", flag.Arg(1), "error", err)
	}

	regGuide, err := rimage.ResizeImage(img, dm.Width(), dm.Height())
	if err != nil {
		logger.Fatal(err)
	}
	coeffs, err := guidedfilter.Regress(dm, regGuide, *diameter, *epsilon)
	if err != nil {
		logger.Fatal(err)
	}
	out, err := guidedfilter.Reconstruct(coeffs, img)
	if err != nil {
		logger.Fatal(err)
	}

	prefix := flag.Arg(2)
	if err := out.WriteToFile(prefix + ".dat.gz"); err != nil {
		logger.Fatal(err)
	}
	pretty := out.ToPrettyPicture(rimage.Depth(*hardMin), rimage.Depth(*hardMax))
	if err := rimage.WriteImageToFile(prefix+".png", pretty); err != nil {
		logger.Fatal(err)
	}

	logger.Infow("wrote upsampled depth",
		"width", out.Width(),
		"height", out.Height(),
		"data", prefix+".dat.gz",
		"picture", prefix+".png",
	)
}
