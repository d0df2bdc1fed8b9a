package mpeg

import (
	"testing"
)

// TestIDCTDCOnly verifies that a block with only a DC coefficient becomes a
// flat block with the same value the DC-only fast path of the decoder produces.
func TestIDCTDCOnly(t *testing.T) {
	testCases := []struct {
		name string
		dc   int32
		want int32
	}{
		{"Zero", 0, 0},
		{"Mid", 128 << 8, 128},
		{"Max", 255 << 8, 255},
		{"Negative", -20 << 8, -20},
		{"RoundUp", 100<<8 + 128, 101},
		{"RoundDown", 100<<8 + 127, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var blk [64]int32
			blk[0] = tc.dc

			idct(&blk)

			for i, v := range blk {
				if v != tc.want {
					t.Fatalf("idct(dc=%d)[%d] = %d, want %d", tc.dc, i, v, tc.want)
				}
			}

			if fast := (tc.dc + 128) >> 8; fast != tc.want {
				t.Errorf("fast path = %d, want %d", fast, tc.want)
			}
		})
	}
}

// TestIDCTHorizontal verifies the first horizontal frequency: every row is
// the same half cosine, falling from left to right.
func TestIDCTHorizontal(t *testing.T) {
	var blk [64]int32
	blk[1] = 64 << 8

	idct(&blk)

	row := blk[:8]
	if row[0] != 64 || row[7] != -64 {
		t.Errorf("row ends = %d, %d, want 64, -64", row[0], row[7])
	}

	for x := 1; x < 8; x++ {
		if row[x] >= row[x-1] {
			t.Errorf("row not falling at %d: %v", x, row)
		}
	}

	for y := 1; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if blk[y*8+x] != row[x] {
				t.Fatalf("row %d differs from row 0: %v vs %v", y, blk[y*8:y*8+8], row)
			}
		}
	}
}

// TestIDCTVertical verifies that the transform is separable: a vertical
// frequency produces the transpose of the horizontal one.
func TestIDCTVertical(t *testing.T) {
	var h, v [64]int32
	h[1] = 40 << 8
	v[8] = 40 << 8

	idct(&h)
	idct(&v)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if h[y*8+x] != v[x*8+y] {
				t.Fatalf("vertical[%d][%d] = %d, want %d", x, y, v[x*8+y], h[y*8+x])
			}
		}
	}
}

func TestClip(t *testing.T) {
	testCases := []struct {
		in   int32
		want byte
	}{
		{-1000, 0},
		{-1, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{256, 255},
		{1 << 20, 255},
	}

	for _, tc := range testCases {
		if got := clip(tc.in); got != tc.want {
			t.Errorf("clip(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func BenchmarkIDCT(b *testing.B) {
	var src [64]int32
	for i := range src {
		src[i] = int32((i*37)%255-127) << 4
	}

	b.ReportAllocs()

	for b.Loop() {
		blk := src
		idct(&blk)
	}
}
