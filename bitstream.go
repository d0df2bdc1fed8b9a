package mpeg

// Bitstream handling

// has reports whether at least count bits can be read. If not, the load
// callback gets one chance to provide more data.
func (b *Buffer) has(count int) bool {
	if (b.length<<3)-b.bitIndex >= count {
		return true
	}

	if b.loadCallback != nil {
		b.loadCallback(b)

		if (b.length<<3)-b.bitIndex >= count {
			return true
		}
	}

	if b.totalSize != 0 && b.length == b.totalSize {
		b.hasEnded = true
	}

	return false
}

// read reads count bits (at most 32), MSB first.
// It returns 0 and does not move if the bits are not available.
func (b *Buffer) read(count int) int {
	if !b.has(count) {
		return 0
	}

	value := 0
	for count != 0 {
		current := int(b.data[b.bitIndex>>3])
		remaining := 8 - (b.bitIndex & 7) // remaining bits in the current byte
		n := min(remaining, count)
		shift := remaining - n
		mask := 0xff >> (8 - n)

		value = (value << n) | ((current & (mask << shift)) >> shift)

		b.bitIndex += n
		count -= n
	}

	return value
}

// read1 reads a single bit as a bool.
func (b *Buffer) read1() bool {
	return b.read(1) != 0
}

func (b *Buffer) skip(count int) {
	if b.has(count) {
		b.bitIndex += count
	}
}

// align moves the cursor to the next byte boundary.
func (b *Buffer) align() {
	b.bitIndex = ((b.bitIndex + 7) >> 3) << 3
}

// skipBytes skips over repeated bytes equal to v and returns how many were skipped.
func (b *Buffer) skipBytes(v byte) int {
	b.align()

	skipped := 0
	for b.has(8) && b.data[b.bitIndex>>3] == v {
		b.bitIndex += 8
		skipped++
	}

	return skipped
}

// nextStartCode advances past the next 00 00 01 xx sequence and returns xx,
// or -1 if the data ran out first.
func (b *Buffer) nextStartCode() int {
	b.align()

	for b.has(5 << 3) {
		i := b.bitIndex >> 3
		if b.data[i] == 0x00 && b.data[i+1] == 0x00 && b.data[i+2] == 0x01 {
			b.bitIndex = (i + 4) << 3

			return int(b.data[i+3])
		}

		b.bitIndex += 8
	}

	return -1
}

// findStartCode advances past the next start code equal to code.
func (b *Buffer) findStartCode(code int) int {
	for {
		current := b.nextStartCode()
		if current == code || current == -1 {
			return current
		}
	}
}

// hasStartCode looks ahead for code without moving the cursor. Discarding is
// suspended during the lookahead so the bytes scanned stay in the buffer.
func (b *Buffer) hasStartCode(code int) int {
	prevBitIndex := b.bitIndex
	prevDiscard := b.discardReadBytes

	b.discardReadBytes = false
	current := b.findStartCode(code)

	b.bitIndex = prevBitIndex
	b.discardReadBytes = prevDiscard

	return current
}

// noStartCode reports whether the next byte-aligned position does not begin a start code.
func (b *Buffer) noStartCode() bool {
	if !b.has(5 << 3) {
		return false
	}

	i := (b.bitIndex + 7) >> 3

	return !(b.data[i] == 0x00 && b.data[i+1] == 0x00 && b.data[i+2] == 0x01)
}
