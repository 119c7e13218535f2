package model

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// LoadWeights decodes a PNG, JPEG, GIF, BMP or TIFF image and converts it to a
// w x h grid of weights in [0,1], where white is 1. Images of a different size
// are resampled bilinearly.
func LoadWeights(path string, w, h int) ([][]float64, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return WeightsFromImage(img, w, h), nil
}

// WeightsFromImage converts img to grayscale weights indexed [y][x].
func WeightsFromImage(img image.Image, w, h int) [][]float64 {
	gray := image.NewGray(image.Rect(0, 0, w, h))
	if img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(gray, gray.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	weights := make([][]float64, h)
	for y := range weights {
		row := make([]float64, w)
		for x := range row {
			row[x] = float64(gray.GrayAt(x, y).Y) / 255
		}
		weights[y] = row
	}
	return weights
}
