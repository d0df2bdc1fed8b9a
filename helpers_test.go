package mpeg

import (
	"math"
	"strings"
)

// bitWriter builds MSB-first bitstreams for the synthetic test streams.
type bitWriter struct {
	data  []byte
	acc   byte
	nbits int
}

func (w *bitWriter) write(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | byte(v>>i&1)
		w.nbits++
		if w.nbits == 8 {
			w.data = append(w.data, w.acc)
			w.acc, w.nbits = 0, 0
		}
	}
}

// bits writes a string of '0' and '1', spaces are ignored.
func (w *bitWriter) bits(s string) {
	for _, c := range strings.ReplaceAll(s, " ", "") {
		if c == '1' {
			w.write(1, 1)
		} else {
			w.write(0, 1)
		}
	}
}

// align pads with zero bits to the next byte boundary.
func (w *bitWriter) align() {
	for w.nbits != 0 {
		w.write(0, 1)
	}
}

func (w *bitWriter) bytes(p ...byte) {
	w.align()
	w.data = append(w.data, p...)
}

func (w *bitWriter) startCode(code byte) {
	w.bytes(0x00, 0x00, 0x01, code)
}

// result returns the byte-aligned stream.
func (w *bitWriter) result() []byte {
	w.align()

	return w.data
}

// writeTime writes a 33-bit 90kHz clock value with its marker bits.
func (w *bitWriter) writeTime(seconds float64) {
	clock := uint64(math.Round(seconds * 90000))
	w.write(clock>>30&0x7, 3)
	w.bits("1")
	w.write(clock>>15&0x7fff, 15)
	w.bits("1")
	w.write(clock&0x7fff, 15)
	w.bits("1")
}

// videoSequence writes a sequence header with the default quantizer matrices,
// followed by padding so the header can be read in one go.
func videoSequence(w *bitWriter, width, height, rateCode int) {
	w.startCode(startSequence)
	w.write(uint64(width), 12)
	w.write(uint64(height), 12)
	w.bits("0001") // aspect ratio
	w.write(uint64(rateCode), 4)
	w.write(0x3ffff, 18) // bit rate
	w.bits("1")          // marker
	w.write(16, 10)      // vbv buffer size
	w.bits("0")          // constrained
	w.bits("0 0")        // no custom quantizer matrices
	w.bytes(make([]byte, 136)...)
}

// intraPicture writes an I-picture of mbWidth x mbHeight macroblocks, one
// slice per row. lumaDC is the DC size code and differential of the first
// luma block in each slice, all other blocks repeat its value. Chroma is 128.
func intraPicture(w *bitWriter, temporalRef, mbWidth, mbHeight int, lumaDC string) {
	writePictureHeader(w, temporalRef, pictureTypeIntra)

	for row := range mbHeight {
		w.startCode(byte(row + 1))
		w.write(1, 5) // quantizer scale
		w.bits("0")   // no extra information

		for col := range mbWidth {
			w.bits("1") // address increment 1
			w.bits("1") // intra

			for block := range 4 {
				if col == 0 && block == 0 {
					w.bits(lumaDC)
				} else {
					w.bits("100") // size 0, keep the predictor
				}
				w.bits("10") // end of block
			}

			for range 2 {
				w.bits("00") // chroma size 0
				w.bits("10")
			}
		}
	}

	w.align()
}

// writePictureHeader writes a picture start code and header. P- and
// B-pictures use half pixel vectors with f_code 1, a range of -16..15.
func writePictureHeader(w *bitWriter, temporalRef, pictureType int) {
	w.startCode(startPicture)
	w.write(uint64(temporalRef), 10)
	w.write(uint64(pictureType), 3)
	w.write(0xffff, 16) // vbv delay

	if pictureType == pictureTypePredictive || pictureType == pictureTypeB {
		w.bits("0 001") // forward full_pel, f_code
	}

	if pictureType == pictureTypeB {
		w.bits("0 001") // backward full_pel, f_code
	}
}

// slicePicture writes a picture of a single macroblock row. Each entry of
// macroblocks is the complete bit string of one coded macroblock, starting
// with its address increment.
func slicePicture(w *bitWriter, temporalRef, pictureType, quantizer int, macroblocks ...string) {
	writePictureHeader(w, temporalRef, pictureType)

	w.startCode(1)
	w.write(uint64(quantizer), 5)
	w.bits("0")

	for _, mb := range macroblocks {
		w.bits(mb)
	}

	w.align()
}

func predictivePicture(w *bitWriter, temporalRef, quantizer int, macroblocks ...string) {
	slicePicture(w, temporalRef, pictureTypePredictive, quantizer, macroblocks...)
}

func bPicture(w *bitWriter, temporalRef, quantizer int, macroblocks ...string) {
	slicePicture(w, temporalRef, pictureTypeB, quantizer, macroblocks...)
}

// intraBlocks returns the six blocks of an intra macroblock whose luma
// blocks all take the value set by lumaDC. Chroma keeps its predictor.
func intraBlocks(lumaDC string) string {
	return lumaDC + " 10" + strings.Repeat(" 100 10", 3) + strings.Repeat(" 00 10", 2)
}

// Luma DC codes for intraPicture.
const (
	lumaDCPlus1 = "00 1"  // size 1, +1
	lumaDCPlus3 = "01 11" // size 2, +3
)

// videoStream returns an elementary stream of 16x16 I-pictures, one per lumaDC code.
func videoStream(lumaDC ...string) []byte {
	w := &bitWriter{}
	videoSequence(w, 16, 16, 3)

	for i, dc := range lumaDC {
		intraPicture(w, i, 1, 1, dc)
	}

	w.startCode(0xB7) // sequence end

	return w.result()
}

// audioFrameBytes is the size of an MP2 frame at 32 kbit/s and 44.1 kHz, without padding.
const audioFrameBytes = 104

// mp2Frame writes a mono 32 kbit/s 44.1 kHz Layer II frame. If loud is set
// subband 0 carries a full scale signal, otherwise the frame is silent.
func mp2Frame(w *bitWriter, loud bool) {
	start := len(w.result())

	w.write(0x7ff, 11) // sync
	w.bits("11")       // MPEG-1
	w.bits("10")       // Layer II
	w.bits("1")        // no CRC
	w.bits("0001")     // 32 kbit/s
	w.bits("00")       // 44.1 kHz
	w.bits("0 0")      // padding, private
	w.bits("11")       // mono
	w.bits("00 0 0 00")

	// Allocation, sblimit 8: 4+4 bits, then 6x3 bits.
	if loud {
		w.bits("0001")
	} else {
		w.bits("0000")
	}
	w.write(0, 4+6*3)

	if loud {
		w.bits("10")     // one scale factor for all parts
		w.write(0, 6)    // scale factor 0
		w.write(0, 5*12) // 12 grouped sample triplets
	}

	w.bytes(make([]byte, audioFrameBytes-(len(w.result())-start))...)
}

func mp2Stream(frames int, loud bool) []byte {
	w := &bitWriter{}
	for range frames {
		mp2Frame(w, loud)
	}

	return w.result()
}

// psPacket is one PES packet of a synthetic Program Stream.
type psPacket struct {
	code byte
	pts  float64 // negative for none
	data []byte
}

// programStream wraps packets into a Program Stream with one pack and system header.
func programStream(audioStreams, videoStreams int, packets ...psPacket) []byte {
	w := &bitWriter{}

	w.startCode(startPack)
	w.bits("0010")
	w.writeTime(0)
	w.bits("1")
	w.write(1000, 22) // mux rate
	w.bits("1")

	w.startCode(startSystem)
	w.write(6, 16) // header length
	w.bits("1")
	w.write(1000, 22) // rate bound
	w.bits("1")
	w.write(uint64(audioStreams), 6)
	w.bits("0 0 1 1 1") // fixed, csps, audio lock, video lock, marker
	w.write(uint64(videoStreams), 5)
	w.write(0xff, 8)

	for _, p := range packets {
		w.startCode(p.code)
		if p.pts >= 0 {
			w.write(uint64(len(p.data)+5), 16)
			w.bits("0010")
			w.writeTime(p.pts)
		} else {
			w.write(uint64(len(p.data)+1), 16)
			w.bytes(0x0f)
		}
		w.bytes(p.data...)
	}

	w.startCode(0xB9) // end code

	return w.result()
}
