package mpeg

// Inverse Discrete Cosine Transform

// Fixed point constants (scaled by 2^8). The remaining factors of the
// transform are folded into the premultiplier matrix.
const (
	c473 = 473 // 256*2*cos(pi/8)
	c196 = 196 // 256*2*sin(pi/8)
	c362 = 362 // 256*sqrt(2)
)

// idct performs the separable 8x8 IDCT in place, columns first.
// The output is scaled back to pixel range.
func idct(blk *[64]int32) {
	for i := 0; i < 8; i++ {
		colIdct(blk, i)
	}

	for i := 0; i < 64; i += 8 {
		rowIdct(blk, i)
	}
}

// colIdct performs a 1D IDCT on a single column.
func colIdct(blk *[64]int32, i int) {
	b1 := blk[4*8+i]
	b3 := blk[2*8+i] + blk[6*8+i]
	b4 := blk[5*8+i] - blk[3*8+i]
	tmp1 := blk[1*8+i] + blk[7*8+i]
	tmp2 := blk[3*8+i] + blk[5*8+i]
	b6 := blk[1*8+i] - blk[7*8+i]
	b7 := tmp1 + tmp2
	m0 := blk[0*8+i]

	x4 := ((b6*c473 - b4*c196 + 128) >> 8) - b7
	x0 := x4 - (((tmp1-tmp2)*c362 + 128) >> 8)
	x1 := m0 - b1
	x2 := (((blk[2*8+i]-blk[6*8+i])*c362 + 128) >> 8) - b3
	x3 := m0 + b1
	y3 := x1 + x2
	y4 := x3 + b3
	y5 := x1 - x2
	y6 := x3 - b3
	y7 := -x0 - ((b4*c473 + b6*c196 + 128) >> 8)

	blk[0*8+i] = b7 + y4
	blk[1*8+i] = x4 + y3
	blk[2*8+i] = y5 - x0
	blk[3*8+i] = y6 - y7
	blk[4*8+i] = y6 + y7
	blk[5*8+i] = x0 + y5
	blk[6*8+i] = y3 - x4
	blk[7*8+i] = y4 - b7
}

// rowIdct performs a 1D IDCT on a single row starting at offset and rounds the result.
func rowIdct(blk *[64]int32, offset int) {
	b := blk[offset : offset+8]

	// Hint BCE.
	_ = b[7]

	b1 := b[4]
	b3 := b[2] + b[6]
	b4 := b[5] - b[3]
	tmp1 := b[1] + b[7]
	tmp2 := b[3] + b[5]
	b6 := b[1] - b[7]
	b7 := tmp1 + tmp2
	m0 := b[0]

	x4 := ((b6*c473 - b4*c196 + 128) >> 8) - b7
	x0 := x4 - (((tmp1-tmp2)*c362 + 128) >> 8)
	x1 := m0 - b1
	x2 := (((b[2]-b[6])*c362 + 128) >> 8) - b3
	x3 := m0 + b1
	y3 := x1 + x2
	y4 := x3 + b3
	y5 := x1 - x2
	y6 := x3 - b3
	y7 := -x0 - ((b4*c473 + b6*c196 + 128) >> 8)

	b[0] = (b7 + y4 + 128) >> 8
	b[1] = (x4 + y3 + 128) >> 8
	b[2] = (y5 - x0 + 128) >> 8
	b[3] = (y6 - y7 + 128) >> 8
	b[4] = (y6 + y7 + 128) >> 8
	b[5] = (x0 + y5 + 128) >> 8
	b[6] = (y3 - x4 + 128) >> 8
	b[7] = (y4 - b7 + 128) >> 8
}

// clip clamps an int32 value to the valid 8-bit pixel range [0, 255].
func clip(x int32) byte {
	if x < 0 {
		return 0
	}

	if x > 255 {
		return 255
	}

	return byte(x)
}
