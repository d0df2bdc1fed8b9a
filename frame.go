package mpeg

import (
	"image"
)

// Plane is one decoded picture plane.
// Plane sizes are rounded up to whole macroblocks (16 pixels for luma, 8 for
// chroma), so they are usually larger than the displayed frame.
type Plane struct {
	Width  int
	Height int
	Data   []byte
}

// Frame is a decoded video frame in YCbCr 4:2:0.
// The chroma planes have half the width and height of the luma plane.
type Frame struct {
	Time   float64 // presentation time in seconds
	Width  int     // display width
	Height int     // display height

	Y  Plane
	Cb Plane
	Cr Plane
}

// YCbCr returns the frame as an image.YCbCr.
// The image shares its pixel data with the frame.
func (f *Frame) YCbCr() *image.YCbCr {
	return &image.YCbCr{
		Y:              f.Y.Data,
		Cb:             f.Cb.Data,
		Cr:             f.Cr.Data,
		YStride:        f.Y.Width,
		CStride:        f.Cb.Width,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, f.Width, f.Height),
	}
}

// RGBA converts the frame to a new image.RGBA.
func (f *Frame) RGBA() *image.RGBA {
	// Convert whole 2x2 blocks, odd sizes get their last row and column from the padding.
	w := (f.Width + 1) &^ 1
	h := (f.Height + 1) &^ 1

	img := &image.RGBA{
		Pix:    make([]byte, 4*w*h),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}

	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	f.convert(img.Pix, img.Stride, w, h, layoutRGBA)

	return img
}
