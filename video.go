package mpeg

import (
	"log/slog"
)

// Frame roles. The three frames of a decoder never move, only the role each of them plays.
const (
	roleCurrent = iota
	roleForward
	roleBackward
	roleCount
)

// motion holds the state of one motion vector predictor.
type motion struct {
	fullPx bool
	isSet  bool
	rSize  int
	h, v   int
}

// errDecode is used for internal panics during the hot decoding path.
// It abandons the slice being decoded.
type errDecode struct{ error }

// Video decodes MPEG-1 video from a buffer of elementary stream data.
type Video struct {
	buf *Buffer
	log *slog.Logger

	framerate     float64 // frames per second
	time          float64 // presentation time of the next frame in seconds
	framesDecoded int

	width, height             int // picture size as coded
	mbWidth, mbHeight, mbSize int // size in macroblocks
	lumaWidth, lumaHeight     int // luma plane size, rounded up to whole macroblocks
	chromaWidth, chromaHeight int

	hasSequenceHeader bool
	startCode         int
	pictureType       int

	motionForward  motion
	motionBackward motion

	quantizerScale    int
	sliceBegin        bool
	macroblockAddress int
	mbRow, mbCol      int
	macroblockType    int
	macroblockIntra   bool
	dcPredictor       [3]int

	frames              [3]Frame       // stable storage, see roles
	roles               [roleCount]int // index into frames for each role
	block               [64]int32      // coefficients of the block being decoded
	intraQuantMatrix    [64]uint8
	nonIntraQuantMatrix [64]uint8

	hasReferenceFrame bool
	assumeNoBFrames   bool
}

// NewVideo creates a video decoder reading from buf.
// It attempts to decode the sequence header right away.
func NewVideo(buf *Buffer, opts ...*Options) *Video {
	o := resolveOptions(opts)

	v := &Video{
		buf:             buf,
		log:             o.Logger,
		assumeNoBFrames: o.NoDelay,
		roles:           [roleCount]int{roleCurrent: 0, roleForward: 1, roleBackward: 2},
	}

	v.startCode = v.buf.findStartCode(startSequence)
	if v.startCode != -1 {
		v.decodeSequenceHeader()
	}

	return v
}

// Buffer returns the source buffer.
func (v *Video) Buffer() *Buffer {
	return v.buf
}

// HasHeader reports whether the sequence header was found.
// It attempts to decode it if not.
func (v *Video) HasHeader() bool {
	if v.hasSequenceHeader {
		return true
	}

	if v.startCode != startSequence {
		v.startCode = v.buf.findStartCode(startSequence)
	}

	if v.startCode == -1 {
		return false
	}

	return v.decodeSequenceHeader()
}

// Framerate returns the frame rate in frames per second, or 0 without a header.
func (v *Video) Framerate() float64 {
	if !v.HasHeader() {
		return 0
	}

	return v.framerate
}

// Width returns the display width, or 0 without a header.
func (v *Video) Width() int {
	if !v.HasHeader() {
		return 0
	}

	return v.width
}

// Height returns the display height, or 0 without a header.
func (v *Video) Height() int {
	if !v.HasHeader() {
		return 0
	}

	return v.height
}

// SetNoDelay makes the decoder assume the stream has no B-frames. Every
// picture is then returned as soon as it is decoded. With B-frames present
// this results in frames out of display order.
func (v *Video) SetNoDelay(noDelay bool) {
	v.assumeNoBFrames = noDelay
}

// Time returns the presentation time of the next frame in seconds.
func (v *Video) Time() float64 {
	return v.time
}

// SetTime sets the presentation time of the next frame.
// The frame counter is derived from it, so the following frames continue from there.
func (v *Video) SetTime(t float64) {
	v.framesDecoded = int(v.framerate * t)
	v.time = t
}

// Rewind rewinds the buffer and resets the decoder clock.
func (v *Video) Rewind() {
	v.buf.Rewind()
	v.time = 0
	v.framesDecoded = 0
	v.hasReferenceFrame = false
	v.startCode = -1
}

// HasEnded reports whether the source is exhausted.
func (v *Video) HasEnded() bool {
	return v.buf.HasEnded()
}

// Decode decodes and returns the next frame in display order, or nil if
// there is not enough data. The frame is valid until the next call.
func (v *Video) Decode() *Frame {
	if !v.HasHeader() {
		return nil
	}

	var frame *Frame

	for frame == nil {
		if v.startCode != startPicture {
			v.startCode = v.buf.findStartCode(startPicture)

			if v.startCode == -1 {
				// The last reference frame is still held back at the end of the source.
				if v.hasReferenceFrame && !v.assumeNoBFrames && v.buf.HasEnded() &&
					(v.pictureType == pictureTypeIntra || v.pictureType == pictureTypePredictive) {
					v.hasReferenceFrame = false
					frame = v.frame(roleBackward)

					break
				}

				return nil
			}
		}

		// Only decode once the whole picture is in the buffer, which is known
		// when the next picture starts, or when the source ended.
		if v.buf.hasStartCode(startPicture) == -1 && !v.buf.HasEnded() {
			return nil
		}

		if !v.decodePicture() {
			v.startCode = -1

			continue
		}

		switch {
		case v.assumeNoBFrames:
			frame = v.frame(roleBackward)
		case v.pictureType == pictureTypeB:
			frame = v.frame(roleCurrent)
		case v.hasReferenceFrame:
			frame = v.frame(roleForward)
		default:
			v.hasReferenceFrame = true
		}
	}

	frame.Time = v.time
	v.framesDecoded++
	v.time = float64(v.framesDecoded) / v.framerate

	return frame
}

// frame returns the frame currently playing role r.
func (v *Video) frame(r int) *Frame {
	return &v.frames[v.roles[r]]
}

func (v *Video) decodeSequenceHeader() bool {
	maxHeaderSize := 64 + 2*64*8 // 64 bit header + 2x 64 byte matrix
	if !v.buf.has(maxHeaderSize) {
		return false
	}

	v.width = v.buf.read(12)
	v.height = v.buf.read(12)

	if v.width <= 0 || v.height <= 0 {
		return false
	}

	// Skip pixel aspect ratio
	v.buf.skip(4)

	v.framerate = pictureRate[v.buf.read(4)]

	// Skip bit_rate, marker, buffer_size and constrained bit
	v.buf.skip(18 + 1 + 10 + 1)

	v.intraQuantMatrix = defaultIntraQuantMatrix
	if v.buf.read1() {
		for i := range 64 {
			v.intraQuantMatrix[zigZag[i]] = uint8(v.buf.read(8))
		}
	}

	v.nonIntraQuantMatrix = defaultNonIntraQuantMatrix
	if v.buf.read1() {
		for i := range 64 {
			v.nonIntraQuantMatrix[zigZag[i]] = uint8(v.buf.read(8))
		}
	}

	v.mbWidth = (v.width + 15) >> 4
	v.mbHeight = (v.height + 15) >> 4
	v.mbSize = v.mbWidth * v.mbHeight

	v.lumaWidth = v.mbWidth << 4
	v.lumaHeight = v.mbHeight << 4

	v.chromaWidth = v.mbWidth << 3
	v.chromaHeight = v.mbHeight << 3

	// One allocation holds all 9 planes.
	lumaSize := v.lumaWidth * v.lumaHeight
	chromaSize := v.chromaWidth * v.chromaHeight
	frameSize := lumaSize + 2*chromaSize

	data := make([]byte, 3*frameSize)
	for i := range v.frames {
		v.initFrame(&v.frames[i], data[i*frameSize:(i+1)*frameSize:(i+1)*frameSize])
	}

	v.hasSequenceHeader = true

	return true
}

func (v *Video) initFrame(f *Frame, base []byte) {
	lumaSize := v.lumaWidth * v.lumaHeight
	chromaSize := v.chromaWidth * v.chromaHeight

	f.Width = v.width
	f.Height = v.height
	f.Y = Plane{Width: v.lumaWidth, Height: v.lumaHeight, Data: base[:lumaSize:lumaSize]}
	f.Cr = Plane{Width: v.chromaWidth, Height: v.chromaHeight, Data: base[lumaSize : lumaSize+chromaSize : lumaSize+chromaSize]}
	f.Cb = Plane{Width: v.chromaWidth, Height: v.chromaHeight, Data: base[lumaSize+chromaSize:]}
}

// decodePicture decodes one picture. It returns false if the picture header
// is invalid, in which case the reference frames are left as they were.
func (v *Video) decodePicture() bool {
	v.buf.skip(10) // skip temporalReference
	v.pictureType = v.buf.read(3)
	v.buf.skip(16) // skip vbv_delay

	// D frames or unknown coding type
	if v.pictureType <= 0 || v.pictureType > pictureTypeB {
		v.log.Debug("mpeg: skipping picture", "type", v.pictureType)

		return false
	}

	// Forward full_px, f_code
	if v.pictureType == pictureTypePredictive || v.pictureType == pictureTypeB {
		v.motionForward.fullPx = v.buf.read1()
		fCode := v.buf.read(3)
		if fCode == 0 {
			v.log.Debug("mpeg: skipping picture with zero forward f_code")

			return false
		}
		v.motionForward.rSize = fCode - 1
	}

	// Backward full_px, f_code
	if v.pictureType == pictureTypeB {
		v.motionBackward.fullPx = v.buf.read1()
		fCode := v.buf.read(3)
		if fCode == 0 {
			v.log.Debug("mpeg: skipping picture with zero backward f_code")

			return false
		}
		v.motionBackward.rSize = fCode - 1
	}

	reference := v.pictureType == pictureTypeIntra || v.pictureType == pictureTypePredictive

	tmp := v.roles[roleForward]
	if reference {
		v.roles[roleForward] = v.roles[roleBackward]
	}

	// Find the first slice; this skips extension and user data
	for {
		v.startCode = v.buf.nextStartCode()
		if isSliceStart(v.startCode) || v.startCode == -1 {
			break
		}
	}

	// Decode all slices
	for isSliceStart(v.startCode) {
		v.decodeSlice(v.startCode & 0xFF)
		if v.macroblockAddress == v.mbSize-1 {
			break
		}

		v.startCode = v.buf.nextStartCode()
	}

	// If this is a reference picture rotate the prediction roles
	if reference {
		v.roles[roleBackward] = v.roles[roleCurrent]
		v.roles[roleCurrent] = tmp
	}

	return true
}

// decodeSlice decodes the macroblocks of one slice. Corrupt data abandons
// the rest of the slice, decoding resumes with the next one.
func (v *Video) decodeSlice(slice int) {
	defer func() {
		if r := recover(); r != nil {
			de, ok := r.(errDecode)
			if !ok {
				panic(r)
			}

			v.block = [64]int32{}
			v.log.Debug("mpeg: abandoning slice", "slice", slice, "address", v.macroblockAddress, "error", de.error)
		}
	}()

	v.sliceBegin = true
	v.macroblockAddress = (slice-1)*v.mbWidth - 1

	// Reset motion vectors and DC predictors
	v.motionBackward.h, v.motionForward.h = 0, 0
	v.motionBackward.v, v.motionForward.v = 0, 0
	v.resetDCPredictors()

	v.quantizerScale = v.buf.read(5)

	// Skip extra
	for v.buf.read1() {
		v.buf.skip(8)
	}

	for {
		v.decodeMacroblock()

		if v.macroblockAddress >= v.mbSize-1 || !v.buf.noStartCode() {
			break
		}
	}
}

func (v *Video) resetDCPredictors() {
	v.dcPredictor = [3]int{128, 128, 128}
}

// panic triggers an internal panic to signal a decoding error in the hot path.
func (v *Video) panic(err error) {
	panic(errDecode{err})
}

// readVLC reads a code from table and panics on an invalid one.
func (v *Video) readVLC(table []vlcNode) int {
	value, ok := v.buf.readVLC(table)
	if !ok {
		v.panic(ErrSyntax)
	}

	return value
}
