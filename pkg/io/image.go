package io

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/terrain/pkg/terrain"
)

// level maps v onto [0, 1] relative to g's range. NaN maps to 0.
func level(g *terrain.Grid, v float64) float64 {
	n := g.Normalize(v)
	if math.IsNaN(n) {
		return 0
	}
	return min(max(n, 0), 1)
}

// Gray8 renders g as an 8-bit grayscale image, one pixel per cell.
func Gray8(g *terrain.Grid) *image.Gray {
	w, h := g.Size()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range g.Values() {
		y, x := i/w, i%w
		img.Pix[y*img.Stride+x] = uint8(math.Round(level(g, v) * 255))
	}
	return img
}

// Gray16 renders g as a 16-bit grayscale image, one pixel per cell.
func Gray16(g *terrain.Grid) *image.Gray16 {
	w, h := g.Size()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for i, v := range g.Values() {
		img.SetGray16(i%w, i/w, color.Gray16{Y: uint16(math.Round(level(g, v) * 65535))})
	}
	return img
}

// upscale resamples src to scale times its size with Catmull-Rom filtering.
func upscale(src draw.Image, scale int) draw.Image {
	if scale == 1 {
		return src
	}
	b := src.Bounds()
	r := image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale)
	var dst draw.Image
	switch src.(type) {
	case *image.Gray16:
		dst = image.NewGray16(r)
	default:
		dst = image.NewGray(r)
	}
	draw.CatmullRom.Scale(dst, r, src, b, draw.Src, nil)
	return dst
}

// WritePNG encodes g as an 8-bit grayscale PNG.
func WritePNG(g *terrain.Grid, scale int, w io.Writer) error {
	if err := png.Encode(w, upscale(Gray8(g), scale)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WriteTIFF encodes g as a deflate-compressed 16-bit grayscale TIFF.
func WriteTIFF(g *terrain.Grid, scale int, w io.Writer) error {
	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(w, upscale(Gray16(g), scale), opts); err != nil {
		return fmt.Errorf("encode tiff: %w", err)
	}
	return nil
}
