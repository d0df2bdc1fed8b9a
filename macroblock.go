package mpeg

import "fmt"

// Macroblock address increment codes that are not increments.
const (
	incrementStuffing = 34
	incrementEscape   = 35
)

// Macroblock type flags.
const (
	mbIntra    = 0x01
	mbPattern  = 0x02
	mbBackward = 0x04
	mbForward  = 0x08
	mbQuant    = 0x10
)

func (v *Video) decodeMacroblock() {
	// Decode the macroblock address increment
	increment := 0
	t := v.readVLC(macroblockAddressIncrement)

	for t == incrementStuffing {
		t = v.readVLC(macroblockAddressIncrement)
	}

	for t == incrementEscape {
		increment += 33
		t = v.readVLC(macroblockAddressIncrement)
	}

	increment += t

	// Process any skipped macroblocks
	if v.sliceBegin {
		// The first increment of each slice is relative to the beginning of
		// the previous row, not the previous macroblock
		v.sliceBegin = false
		v.macroblockAddress += increment
	} else {
		if v.macroblockAddress+increment >= v.mbSize {
			v.panic(fmt.Errorf("%w: macroblock address %d out of range", ErrSyntax, v.macroblockAddress+increment))
		}

		if increment > 1 {
			// Skipped macroblocks reset DC predictors
			v.resetDCPredictors()

			// Skipped macroblocks in P-pictures reset motion vectors
			if v.pictureType == pictureTypePredictive {
				v.motionForward.h = 0
				v.motionForward.v = 0
			}
		}

		// Predict skipped macroblocks
		for ; increment > 1; increment-- {
			v.macroblockAddress++
			v.mbRow = v.macroblockAddress / v.mbWidth
			v.mbCol = v.macroblockAddress % v.mbWidth

			v.predictMacroblock()
		}

		v.macroblockAddress++
	}

	v.mbRow = v.macroblockAddress / v.mbWidth
	v.mbCol = v.macroblockAddress % v.mbWidth

	if v.mbRow >= v.mbHeight {
		v.panic(fmt.Errorf("%w: macroblock %d outside of picture", ErrSyntax, v.macroblockAddress))
	}

	// Process the current macroblock
	v.macroblockType = v.readVLC(macroblockType[v.pictureType])

	v.macroblockIntra = v.macroblockType&mbIntra != 0
	v.motionForward.isSet = v.macroblockType&mbForward != 0
	v.motionBackward.isSet = v.macroblockType&mbBackward != 0

	if v.macroblockType&mbQuant != 0 {
		v.quantizerScale = v.buf.read(5)
	}

	if v.macroblockIntra {
		// Intra-coded macroblocks reset motion vectors
		v.motionBackward.h, v.motionForward.h = 0, 0
		v.motionBackward.v, v.motionForward.v = 0, 0
	} else {
		// Non-intra macroblocks reset DC predictors
		v.resetDCPredictors()

		v.decodeMotionVectors()
		v.predictMacroblock()
	}

	// Decode blocks
	cbp := 0
	switch {
	case v.macroblockType&mbPattern != 0:
		cbp = v.readVLC(codedBlockPattern)
	case v.macroblockIntra:
		cbp = 0x3f
	}

	for block, mask := 0, 0x20; block < 6; block++ {
		if cbp&mask != 0 {
			v.decodeBlock(block)
		}

		mask >>= 1
	}
}

func (v *Video) decodeMotionVectors() {
	// Forward
	if v.motionForward.isSet {
		rSize := v.motionForward.rSize
		v.motionForward.h = v.decodeMotionVector(rSize, v.motionForward.h)
		v.motionForward.v = v.decodeMotionVector(rSize, v.motionForward.v)
	} else if v.pictureType == pictureTypePredictive {
		// No motion information in P-picture, reset vectors
		v.motionForward.h = 0
		v.motionForward.v = 0
	}

	if v.motionBackward.isSet {
		rSize := v.motionBackward.rSize
		v.motionBackward.h = v.decodeMotionVector(rSize, v.motionBackward.h)
		v.motionBackward.v = v.decodeMotionVector(rSize, v.motionBackward.v)
	}
}

// decodeMotionVector adds the next motion delta to the predictor m and wraps
// the result into [-fscale*16, fscale*16-1].
func (v *Video) decodeMotionVector(rSize, m int) int {
	fscale := 1 << rSize
	code := v.readVLC(motionCode)

	d := code
	if code != 0 && fscale != 1 {
		r := v.buf.read(rSize)
		d = ((abs(code) - 1) << rSize) + r + 1
		if code < 0 {
			d = -d
		}
	}

	m += d
	if m > (fscale<<4)-1 {
		m -= fscale << 5
	} else if m < (-fscale)<<4 {
		m += fscale << 5
	}

	return m
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

func (v *Video) predictMacroblock() {
	fwH := v.motionForward.h
	fwV := v.motionForward.v

	if v.motionForward.fullPx {
		fwH <<= 1
		fwV <<= 1
	}

	if v.pictureType != pictureTypeB {
		v.copyMacroblock(fwH, fwV, v.frame(roleForward))

		return
	}

	bwH := v.motionBackward.h
	bwV := v.motionBackward.v

	if v.motionBackward.fullPx {
		bwH <<= 1
		bwV <<= 1
	}

	if v.motionForward.isSet {
		v.copyMacroblock(fwH, fwV, v.frame(roleForward))
		if v.motionBackward.isSet {
			v.interpolateMacroblock(bwH, bwV, v.frame(roleBackward))
		}
	} else {
		v.copyMacroblock(bwH, bwV, v.frame(roleBackward))
	}
}

// copyMacroblock predicts the current macroblock from ref.
func (v *Video) copyMacroblock(motionH, motionV int, ref *Frame) {
	cur := v.frame(roleCurrent)
	v.processMacroblock(cur.Y.Data, ref.Y.Data, motionH, motionV, 16, false)
	v.processMacroblock(cur.Cr.Data, ref.Cr.Data, motionH/2, motionV/2, 8, false)
	v.processMacroblock(cur.Cb.Data, ref.Cb.Data, motionH/2, motionV/2, 8, false)
}

// interpolateMacroblock averages the prediction from ref into the current macroblock.
func (v *Video) interpolateMacroblock(motionH, motionV int, ref *Frame) {
	cur := v.frame(roleCurrent)
	v.processMacroblock(cur.Y.Data, ref.Y.Data, motionH, motionV, 16, true)
	v.processMacroblock(cur.Cr.Data, ref.Cr.Data, motionH/2, motionV/2, 8, true)
	v.processMacroblock(cur.Cb.Data, ref.Cb.Data, motionH/2, motionV/2, 8, true)
}

// processMacroblock writes the motion compensated block of size bs from s to d.
// The motion vector is in half pixels. Vectors pointing outside of the plane
// leave the block untouched.
func (v *Video) processMacroblock(d, s []byte, motionH, motionV, bs int, interpolate bool) {
	dw := v.mbWidth * bs

	hp := motionH >> 1
	vp := motionV >> 1
	oddH := motionH&1 == 1
	oddV := motionV&1 == 1

	si := ((v.mbRow*bs)+vp)*dw + (v.mbCol * bs) + hp
	di := (v.mbRow*dw + v.mbCol) * bs

	maxAddress := dw*(v.mbHeight*bs-bs+1) - bs
	if si < 0 || si > maxAddress || di > maxAddress {
		return // corrupt video
	}

	// Half pixel interpolation reads one more row or column.
	last := si + (bs-1)*dw + bs - 1
	if oddH {
		last++
	}
	if oddV {
		last += dw
	}
	if last >= len(s) || di+(bs-1)*dw+bs > len(d) {
		return
	}

	scan := dw - bs

	switch {
	case !interpolate && !oddH && !oddV:
		for y := 0; y < bs; y++ {
			copy(d[di:di+bs], s[si:si+bs])
			si += dw
			di += dw
		}
	case !interpolate && !oddH && oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				d[di] = byte((int(s[si]) + int(s[si+dw]) + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	case !interpolate && oddH && !oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				d[di] = byte((int(s[si]) + int(s[si+1]) + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	case !interpolate && oddH && oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				d[di] = byte((int(s[si]) + int(s[si+1]) + int(s[si+dw]) + int(s[si+dw+1]) + 2) >> 2)
				si++
				di++
			}
			si += scan
			di += scan
		}
	case !oddH && !oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				d[di] = byte((int(d[di]) + int(s[si]) + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	case !oddH && oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				p := (int(s[si]) + int(s[si+dw]) + 1) >> 1
				d[di] = byte((int(d[di]) + p + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	case oddH && !oddV:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				p := (int(s[si]) + int(s[si+1]) + 1) >> 1
				d[di] = byte((int(d[di]) + p + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	default:
		for y := 0; y < bs; y++ {
			for x := 0; x < bs; x++ {
				p := (int(s[si]) + int(s[si+1]) + int(s[si+dw]) + int(s[si+dw+1]) + 2) >> 2
				d[di] = byte((int(d[di]) + p + 1) >> 1)
				si++
				di++
			}
			si += scan
			di += scan
		}
	}
}

// decodeBlock decodes the coefficients of one 8x8 block and writes it into the current frame.
// Blocks 0..3 are the luma quadrants, 4 is Cb and 5 is Cr.
func (v *Video) decodeBlock(block int) {
	n := 0
	var quantMatrix *[64]uint8

	// Decode DC coefficient of intra-coded blocks
	if v.macroblockIntra {
		// DC prediction
		plane := 0
		if block > 3 {
			plane = block - 3
		}

		predictor := v.dcPredictor[plane]
		size := v.readVLC(dctSize[plane])

		// Read DC coeff
		dc := predictor
		if size > 0 {
			differential := v.buf.read(size)
			if differential&(1<<(size-1)) != 0 {
				dc = predictor + differential
			} else {
				dc = predictor + (-(1 << size) | (differential + 1))
			}
		}

		// Save predictor value
		v.dcPredictor[plane] = dc

		// Dequantize + premultiply
		v.block[0] = int32(dc) << (3 + 5)

		quantMatrix = &v.intraQuantMatrix
		n = 1
	} else {
		quantMatrix = &v.nonIntraQuantMatrix
	}

	// Decode AC coefficients (+DC for non-intra)
	for {
		var run, level int
		coeff, ok := v.buf.readVLCUint(dctCoeff)
		if !ok {
			v.panic(ErrSyntax)
		}

		if coeff == 0x0001 && n > 0 && v.buf.read(1) == 0 {
			// end_of_block
			break
		}

		if coeff == 0xffff {
			// escape
			run = v.buf.read(6)
			level = v.buf.read(8)
			switch {
			case level == 0:
				level = v.buf.read(8)
			case level == 128:
				level = v.buf.read(8) - 256
			case level > 128:
				level -= 256
			}
		} else {
			run = int(coeff >> 8)
			level = int(coeff & 0xff)
			if v.buf.read1() {
				level = -level
			}
		}

		n += run
		if n < 0 || n >= 64 {
			v.block = [64]int32{}
			v.log.Debug("mpeg: abandoning block", "block", block, "position", n)

			return
		}

		deZigZagged := zigZag[n]
		n++

		// Dequantize, oddify, clip
		level <<= 1
		if !v.macroblockIntra {
			if level < 0 {
				level--
			} else {
				level++
			}
		}

		level = (level * v.quantizerScale * int(quantMatrix[deZigZagged])) >> 4
		if level&1 == 0 {
			if level > 0 {
				level--
			} else {
				level++
			}
		}

		level = max(-2048, min(level, 2047))

		// Save premultiplied coefficient
		v.block[deZigZagged] = int32(level) * int32(premultiplier[deZigZagged])
	}

	// Move block to its place
	var d []byte
	var dw, di int

	cur := v.frame(roleCurrent)
	if block < 4 {
		d = cur.Y.Data
		dw = v.lumaWidth
		di = (v.mbRow*v.lumaWidth + v.mbCol) << 4
		if block&1 != 0 {
			di += 8
		}
		if block&2 != 0 {
			di += v.lumaWidth << 3
		}
	} else {
		d = cur.Cb.Data
		if block == 5 {
			d = cur.Cr.Data
		}
		dw = v.chromaWidth
		di = ((v.mbRow * v.lumaWidth) << 2) + (v.mbCol << 3)
	}

	s := &v.block
	scan := dw - 8

	if v.macroblockIntra {
		// Overwrite (no prediction)
		if n == 1 {
			value := clip((s[0] + 128) >> 8)
			for y := 0; y < 8; y++ {
				row := d[di : di+8]
				for x := range row {
					row[x] = value
				}
				di += dw
			}
			s[0] = 0
		} else {
			idct(s)
			si := 0
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					d[di] = clip(s[si])
					si++
					di++
				}
				di += scan
			}
			*s = [64]int32{}
		}

		return
	}

	// Add data to the predicted macroblock
	if n == 1 {
		value := (s[0] + 128) >> 8
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				d[di] = clip(int32(d[di]) + value)
				di++
			}
			di += scan
		}
		s[0] = 0
	} else {
		idct(s)
		si := 0
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				d[di] = clip(int32(d[di]) + s[si])
				si++
				di++
			}
			di += scan
		}
		*s = [64]int32{}
	}
}
