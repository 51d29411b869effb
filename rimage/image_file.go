package rimage

import (
	"image"

	"github.com/disintegration/imaging"
)

// NewImageFromFile loads a color image from disk and converts it to a linear
// RGB Image.
func NewImageFromFile(fn string) (*Image, error) {
	img, err := imaging.Open(fn)
	if err != nil {
		return nil, err
	}
	return ConvertImage(img), nil
}

// WriteImageToFile writes any image to disk; the format follows the file
// extension.
func WriteImageToFile(fn string, img image.Image) error {
	return imaging.Save(img, fn)
}
