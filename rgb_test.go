package mpeg

import (
	"image/color"
	"testing"
)

// newFlatFrame returns a width x height frame with constant planes, padded
// to whole macroblocks like the decoder does.
func newFlatFrame(width, height int, y, cb, cr byte) *Frame {
	lw := (width + 15) &^ 15
	lh := (height + 15) &^ 15

	fill := func(w, h int, v byte) Plane {
		data := make([]byte, w*h)
		for i := range data {
			data[i] = v
		}

		return Plane{Width: w, Height: h, Data: data}
	}

	return &Frame{
		Width:  width,
		Height: height,
		Y:      fill(lw, lh, y),
		Cb:     fill(lw/2, lh/2, cb),
		Cr:     fill(lw/2, lh/2, cr),
	}
}

func TestConvertLayouts(t *testing.T) {
	// Y=100 with Cr at its maximum: r=+178, g=91, b=0.
	frame := newFlatFrame(4, 2, 100, 128, 255)
	const r, g, b = 255, 9, 100

	testCases := []struct {
		name    string
		bpp     int
		convert func(dst []byte, stride int)
		want    []byte // first pixel, 0 marks an untouched alpha byte
	}{
		{"RGB", 3, frame.ToRGB, []byte{r, g, b}},
		{"BGR", 3, frame.ToBGR, []byte{b, g, r}},
		{"RGBA", 4, frame.ToRGBA, []byte{r, g, b, 0}},
		{"BGRA", 4, frame.ToBGRA, []byte{b, g, r, 0}},
		{"ARGB", 4, frame.ToARGB, []byte{0, r, g, b}},
		{"ABGR", 4, frame.ToABGR, []byte{0, b, g, r}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stride := tc.bpp * frame.Width
			dst := make([]byte, stride*frame.Height)

			tc.convert(dst, stride)

			for px := 0; px < len(dst); px += tc.bpp {
				for i, want := range tc.want {
					if got := dst[px+i]; got != want {
						t.Fatalf("pixel %d byte %d: got %d, want %d", px/tc.bpp, i, got, want)
					}
				}
			}
		})
	}
}

func TestConvertGray(t *testing.T) {
	for _, y := range []byte{0, 16, 128, 235, 255} {
		frame := newFlatFrame(2, 2, y, 128, 128)

		dst := make([]byte, 3*2*2)
		frame.ToRGB(dst, 3*2)

		for i, v := range dst {
			if v != y {
				t.Errorf("Y=%d: byte %d = %d, want %d", y, i, v, y)
			}
		}
	}
}

func TestConvertStride(t *testing.T) {
	frame := newFlatFrame(2, 2, 50, 128, 128)

	// Padding bytes at the end of each row must be left alone.
	stride := 3*2 + 5
	dst := make([]byte, stride*2)
	for i := range dst {
		dst[i] = 0xAA
	}

	frame.ToRGB(dst, stride)

	for row := range 2 {
		for i := range stride {
			got := dst[row*stride+i]

			want := byte(50)
			if i >= 6 {
				want = 0xAA
			}

			if got != want {
				t.Errorf("row %d byte %d = %#x, want %#x", row, i, got, want)
			}
		}
	}
}

func TestFrameRGBA(t *testing.T) {
	frame := newFlatFrame(5, 3, 128, 128, 128)

	img := frame.RGBA()

	if got := img.Bounds().Dx(); got != 5 {
		t.Errorf("width = %d, want 5", got)
	}

	if got := img.Bounds().Dy(); got != 3 {
		t.Errorf("height = %d, want 3", got)
	}

	want := color.RGBA{128, 128, 128, 255}
	for y := range 3 {
		for x := range 5 {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFrameYCbCr(t *testing.T) {
	frame := newFlatFrame(20, 10, 90, 60, 200)

	img := frame.YCbCr()

	if got := img.Bounds(); got.Dx() != 20 || got.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", got)
	}

	c := img.YCbCrAt(19, 9)
	if c.Y != 90 || c.Cb != 60 || c.Cr != 200 {
		t.Errorf("YCbCrAt(19, 9) = %v, want {90 60 200}", c)
	}

	// The image shares the frame's memory.
	frame.Y.Data[0] = 1
	if got := img.YCbCrAt(0, 0).Y; got != 1 {
		t.Errorf("Y after frame update = %d, want 1", got)
	}
}

func BenchmarkFrameToRGBA(b *testing.B) {
	frame := newFlatFrame(640, 480, 100, 110, 140)
	dst := make([]byte, 4*640*480)

	b.ReportAllocs()
	b.SetBytes(int64(len(dst)))

	for b.Loop() {
		frame.ToRGBA(dst, 4*640)
	}
}
