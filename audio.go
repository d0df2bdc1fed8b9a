package mpeg

import (
	"encoding/binary"
	"log/slog"
	"math"
)

// SamplesPerFrame is the number of samples per channel in one MP2 frame.
const SamplesPerFrame = 1152

// SampleFormat is a PCM encoding produced by Samples.Bytes.
type SampleFormat int

const (
	// SampleFloat32 is 32-bit IEEE float, little-endian, in [-1, 1].
	SampleFloat32 SampleFormat = iota
	// SampleInt16 is signed 16-bit, little-endian.
	SampleInt16
)

func (f SampleFormat) String() string {
	switch f {
	case SampleFloat32:
		return "f32"
	case SampleInt16:
		return "s16"
	}

	return "unknown"
}

// BytesPerSample returns the size of one sample of one channel.
func (f SampleFormat) BytesPerSample() int {
	if f == SampleInt16 {
		return 2
	}

	return 4
}

// Samples is one decoded audio frame, always in stereo. Mono sources are
// duplicated into both channels.
// Depending on Options.SeparateChannels either Interleaved (LRLR...) or
// Left and Right are filled, the others are nil.
type Samples struct {
	Time        float64 // presentation time in seconds
	Count       int     // samples per channel, always SamplesPerFrame
	Interleaved []float32
	Left        []float32
	Right       []float32
}

// Bytes renders the samples as interleaved stereo PCM in format f.
func (s *Samples) Bytes(f SampleFormat) []byte {
	bps := f.BytesPerSample()
	out := make([]byte, 2*s.Count*bps)

	put := func(i int, v float32) {
		switch f {
		case SampleInt16:
			v = max(-1, min(v, 1))
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*math.MaxInt16)))
		default:
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
		}
	}

	if s.Interleaved != nil {
		for i, v := range s.Interleaved[:2*s.Count] {
			put(i, v)
		}

		return out
	}

	for i := range s.Count {
		put(2*i, s.Left[i])
		put(2*i+1, s.Right[i])
	}

	return out
}

// Audio decodes MPEG-1 Audio Layer II (MP2) from a buffer of elementary stream data.
type Audio struct {
	buf        *Buffer
	log        *slog.Logger
	strictSync bool

	time              float64 // presentation time of the next frame in seconds
	samplesDecoded    int
	samplerateIndex   int
	bitrateIndex      int
	version           int
	layer             int
	mode              int
	bound             int // first subband coded as joint stereo
	vPos              int
	nextFrameDataSize int
	hasHeader         bool

	allocation      [2][32]*quantizer
	scaleFactorInfo [2][32]uint8
	scaleFactor     [2][32][3]int
	sample          [2][32][3]int

	samples Samples
	d       [1024]float32 // synthesis window, stored twice
	v       [2][1024]float32
	u       [32]float32
}

// NewAudio creates an audio decoder reading from buf.
// It attempts to decode the first frame header right away.
func NewAudio(buf *Buffer, opts ...*Options) *Audio {
	o := resolveOptions(opts)

	a := &Audio{
		buf:             buf,
		log:             o.Logger,
		strictSync:      o.StrictAudioSync,
		samplerateIndex: 3, // Indicates 0
	}

	a.samples.Count = SamplesPerFrame
	if o.SeparateChannels {
		a.samples.Left = make([]float32, SamplesPerFrame)
		a.samples.Right = make([]float32, SamplesPerFrame)
	} else {
		a.samples.Interleaved = make([]float32, 2*SamplesPerFrame)
	}

	copy(a.d[:512], synthesisWindow[:])
	copy(a.d[512:], synthesisWindow[:])

	a.nextFrameDataSize = a.decodeHeader()

	return a
}

// Buffer returns the source buffer.
func (a *Audio) Buffer() *Buffer {
	return a.buf
}

// HasHeader reports whether a frame header was found.
// It attempts to decode one if not.
func (a *Audio) HasHeader() bool {
	if a.hasHeader {
		return true
	}

	a.nextFrameDataSize = a.decodeHeader()

	return a.hasHeader
}

// Samplerate returns the samplerate in samples per second, or 0 without a header.
func (a *Audio) Samplerate() int {
	if !a.HasHeader() {
		return 0
	}

	return audioSampleRate[a.samplerateIndex]
}

// Channels returns the number of channels coded in the stream (1 or 2), or 0
// without a header. Decoded samples are always stereo.
func (a *Audio) Channels() int {
	if !a.HasHeader() {
		return 0
	}

	if a.mode == audioModeMono {
		return 1
	}

	return 2
}

// Time returns the presentation time of the next frame in seconds.
func (a *Audio) Time() float64 {
	return a.time
}

// SetTime sets the presentation time of the next frame.
// The sample counter is derived from it.
func (a *Audio) SetTime(t float64) {
	a.samplesDecoded = int(t * float64(audioSampleRate[a.samplerateIndex]))
	a.time = t
}

// Rewind rewinds the buffer and resets the decoder clock.
func (a *Audio) Rewind() {
	a.buf.Rewind()
	a.time = 0
	a.samplesDecoded = 0
	a.nextFrameDataSize = 0
}

// HasEnded reports whether the source is exhausted.
func (a *Audio) HasEnded() bool {
	return a.buf.HasEnded()
}

// Decode decodes and returns the next frame of samples, or nil if there is
// not enough data. A frame holds SamplesPerFrame/Samplerate seconds of audio.
// The samples are valid until the next call.
func (a *Audio) Decode() *Samples {
	// Do we have at least enough information to decode the frame header?
	if a.nextFrameDataSize == 0 {
		if !a.buf.has(48) {
			return nil
		}

		a.nextFrameDataSize = a.decodeHeader()
	}

	if a.nextFrameDataSize == 0 || !a.buf.has(a.nextFrameDataSize<<3) {
		return nil
	}

	a.decodeFrame()
	a.nextFrameDataSize = 0

	a.samples.Time = a.time

	a.samplesDecoded += SamplesPerFrame
	a.time = float64(a.samplesDecoded) / float64(audioSampleRate[a.samplerateIndex])

	return &a.samples
}

// findFrameSync scans for the next byte pair that looks like an MPEG-1 Layer II
// sync word and positions the cursor right after its sync bits.
func (a *Audio) findFrameSync() bool {
	data := a.buf.data[:a.buf.length]

	i := a.buf.bitIndex >> 3
	for ; i < len(data)-1; i++ {
		if data[i] != 0xFF || data[i+1]&0xFE != 0xFC {
			continue
		}

		if a.strictSync && !a.plausibleHeader(data[i:]) {
			continue
		}

		a.buf.bitIndex = ((i + 1) << 3) + 3

		return true
	}

	a.buf.bitIndex = len(data) << 3

	return false
}

// plausibleHeader checks the fields following a sync word candidate in h:
// the bitrate and samplerate indexes must be valid and, once a header was
// accepted, match it along with the channel mode.
func (a *Audio) plausibleHeader(h []byte) bool {
	if len(h) < 4 {
		return false
	}

	bitrateIndex := int(h[2]>>4) - 1
	samplerateIndex := int(h[2]>>2) & 3
	mode := int(h[3] >> 6)

	if bitrateIndex < 0 || bitrateIndex > 13 || samplerateIndex == 3 {
		return false
	}

	if a.hasHeader && (bitrateIndex != a.bitrateIndex || samplerateIndex != a.samplerateIndex || mode != a.mode) {
		return false
	}

	return true
}

// decodeHeader decodes the next frame header and returns the size of the
// frame data following it in bytes, or 0 if no valid header was found.
func (a *Audio) decodeHeader() int {
	if !a.buf.has(48) {
		return 0
	}

	a.buf.skipBytes(0x00)
	sync := a.buf.read(11)

	// The sync word is not guaranteed to be unique in the stream, so after a
	// resync the header must also match the previous one.
	if sync != audioFrameSync && !a.findFrameSync() {
		return 0
	}

	a.version = a.buf.read(2)
	a.layer = a.buf.read(2)
	hasCRC := !a.buf.read1()

	if a.version != audioMPEG1 || a.layer != audioLayerII {
		a.log.Debug("mpeg: unsupported audio frame", "version", a.version, "layer", a.layer)

		return 0
	}

	bitrateIndex := a.buf.read(4) - 1
	if bitrateIndex < 0 || bitrateIndex > 13 {
		// Index 0 is free format, 15 is forbidden.
		a.log.Debug("mpeg: rejecting audio frame", "bitrate_index", bitrateIndex+1)

		return 0
	}

	samplerateIndex := a.buf.read(2)
	if samplerateIndex == 3 {
		return 0
	}

	padding := a.buf.read(1)
	a.buf.skip(1) // f_private
	mode := a.buf.read(2)

	// If we already have a header, make sure the samplerate, bitrate and mode
	// are still the same, otherwise we might have missed sync.
	if a.hasHeader && (a.bitrateIndex != bitrateIndex || a.samplerateIndex != samplerateIndex || a.mode != mode) {
		a.log.Debug("mpeg: audio header changed, assuming lost sync")

		return 0
	}

	a.bitrateIndex = bitrateIndex
	a.samplerateIndex = samplerateIndex
	a.mode = mode
	a.hasHeader = true

	// Parse the mode_extension, set up the stereo bound
	if mode == audioModeJointStereo {
		a.bound = (a.buf.read(2) + 1) << 2
	} else {
		a.buf.skip(2)
		if mode == audioModeMono {
			a.bound = 0
		} else {
			a.bound = 32
		}
	}

	// Discard the last 4 bits of the header and the CRC value, if present
	a.buf.skip(4)
	if hasCRC {
		a.buf.skip(16)
	}

	bitrate := audioBitRate[a.bitrateIndex]
	samplerate := audioSampleRate[a.samplerateIndex]
	frameSize := (144000 * bitrate / samplerate) + padding

	if hasCRC {
		return frameSize - 6
	}

	return frameSize - 4
}

func (a *Audio) decodeFrame() {
	// Prepare the quantizer table lookups
	tab1 := 1
	if a.mode == audioModeMono {
		tab1 = 0
	}

	tab2 := quantLUTStep1[tab1][a.bitrateIndex]
	tab3 := int(quantLUTStep2[tab2][a.samplerateIndex])
	sblimit := tab3 & 63
	tab3 >>= 6

	a.bound = min(a.bound, sblimit)

	// Read the allocation information
	for sb := 0; sb < a.bound; sb++ {
		a.allocation[0][sb] = a.readAllocation(sb, tab3)
		a.allocation[1][sb] = a.readAllocation(sb, tab3)
	}

	for sb := a.bound; sb < sblimit; sb++ {
		q := a.readAllocation(sb, tab3)
		a.allocation[0][sb] = q
		a.allocation[1][sb] = q
	}

	// Read scale factor selector information
	channels := 2
	if a.mode == audioModeMono {
		channels = 1
	}

	for sb := range sblimit {
		for ch := range channels {
			if a.allocation[ch][sb] != nil {
				a.scaleFactorInfo[ch][sb] = uint8(a.buf.read(2))
			}
		}

		if a.mode == audioModeMono {
			a.scaleFactorInfo[1][sb] = a.scaleFactorInfo[0][sb]
		}
	}

	// Read scale factors
	for sb := range sblimit {
		for ch := range channels {
			if a.allocation[ch][sb] == nil {
				continue
			}

			sf := &a.scaleFactor[ch][sb]
			switch a.scaleFactorInfo[ch][sb] {
			case 0:
				sf[0] = a.buf.read(6)
				sf[1] = a.buf.read(6)
				sf[2] = a.buf.read(6)
			case 1:
				sf[0] = a.buf.read(6)
				sf[1] = sf[0]
				sf[2] = a.buf.read(6)
			case 2:
				sf[0] = a.buf.read(6)
				sf[1] = sf[0]
				sf[2] = sf[0]
			case 3:
				sf[0] = a.buf.read(6)
				sf[1] = a.buf.read(6)
				sf[2] = sf[1]
			}
		}

		if a.mode == audioModeMono {
			a.scaleFactor[1][sb] = a.scaleFactor[0][sb]
		}
	}

	// Coefficient input and reconstruction
	outPos := 0
	for part := range 3 {
		for range 4 { // granules
			// Read the samples
			for sb := 0; sb < a.bound; sb++ {
				a.readSamples(0, sb, part)
				a.readSamples(1, sb, part)
			}

			for sb := a.bound; sb < sblimit; sb++ {
				a.readSamples(0, sb, part)
				a.sample[1][sb] = a.sample[0][sb]
			}

			for sb := sblimit; sb < 32; sb++ {
				a.sample[0][sb] = [3]int{}
				a.sample[1][sb] = [3]int{}
			}

			// Synthesis loop
			for p := range 3 {
				// Shifting step
				a.vPos = (a.vPos - 64) & 1023

				for ch := range 2 {
					matrixTransform(&a.sample[ch], p, &a.v[ch], a.vPos)
					a.synthesize(ch)
					a.output(ch, outPos)
				}

				outPos += 32
			}
		}
	}

	a.buf.align()
}

// output stores the 32 samples in a.u for channel ch at position pos.
func (a *Audio) output(ch, pos int) {
	const scale = 2147418112.0

	if a.samples.Interleaved == nil {
		out := a.samples.Left
		if ch == 1 {
			out = a.samples.Right
		}

		for j := range 32 {
			out[pos+j] = a.u[j] / scale
		}

		return
	}

	for j := range 32 {
		a.samples.Interleaved[((pos+j)<<1)+ch] = a.u[j] / scale
	}
}

func (a *Audio) readAllocation(sb, tab3 int) *quantizer {
	tab4 := quantLUTStep3[tab3][sb]
	qtab := quantLUTStep4[tab4&15][a.buf.read(int(tab4>>4))]
	if qtab == 0 {
		return nil
	}

	return &quantTab[qtab-1]
}

func (a *Audio) readSamples(ch, sb, part int) {
	q := a.allocation[ch][sb]
	sf := a.scaleFactor[ch][sb][part]
	sample := &a.sample[ch][sb]

	if q == nil {
		// No bits allocated for this subband
		*sample = [3]int{}

		return
	}

	// Resolve scalefactor
	if sf == 63 {
		sf = 0
	} else {
		shift := sf / 3
		sf = (scalefactorBase[sf%3] + ((1 << shift) >> 1)) >> shift
	}

	// Decode samples
	adj := q.levels
	if q.group {
		// Decode grouped samples
		val := a.buf.read(q.bits)
		sample[0] = val % adj
		val /= adj
		sample[1] = val % adj
		sample[2] = val / adj
	} else {
		// Decode direct samples
		sample[0] = a.buf.read(q.bits)
		sample[1] = a.buf.read(q.bits)
		sample[2] = a.buf.read(q.bits)
	}

	// Postmultiply samples
	scale := 65536 / (adj + 1)
	adj = ((adj + 1) >> 1) - 1

	for i := range sample {
		val := (adj - sample[i]) * scale
		sample[i] = (val*(sf>>12) + ((val*(sf&4095) + 2048) >> 12)) >> 12
	}
}
