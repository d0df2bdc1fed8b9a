// Package mpeg implements an MPEG-1 Program Stream demuxer, an MPEG-1 Video
// decoder and an MPEG-1 Audio Layer II (MP2) decoder.
//
// The MPEG type combines the three into a playback session. It can be driven
// in two ways:
//
// 1. Decode with the time elapsed since the last call. Everything due up to
// then is decoded and handed to the callbacks set with SetVideoCallback and
// SetAudioCallback, any number of times.
//
// 2. DecodeVideo and DecodeAudio, which decode exactly one frame at a time.
// Synchronizing the two streams is then up to the caller.
//
// Video frames hold their three planes (Y, Cb, Cr) separately. Frame.YCbCr
// wraps them without copying, Frame.RGBA and the To* methods convert to
// interleaved pixels.
//
// Demux, Video and Audio can also be used on their own, for example to
// decode raw mpeg1video or mp2 data from another source, or to extract
// packets from a Program Stream.
package mpeg

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Standard error types.
var (
	ErrInvalidMPEG    = errors.New("invalid MPEG-PS")
	ErrInvalidHeader  = errors.New("invalid header")
	ErrReadOnlyBuffer = errors.New("buffer is read-only")
	ErrInvalidStream  = errors.New("invalid stream index")
	ErrSyntax         = errors.New("syntax error")
	ErrNilSource      = errors.New("nil source")
)

// VideoFunc is called with every frame decoded by MPEG.Decode.
type VideoFunc func(m *MPEG, frame *Frame)

// AudioFunc is called with every frame of samples decoded by MPEG.Decode.
type AudioFunc func(m *MPEG, samples *Samples)

// State is the playback state of a session.
type State int

const (
	// StateUninitialized means the pack and system headers were not read yet.
	StateUninitialized State = iota
	// StateHeadersPending means the decoders exist but some of them still wait for a header.
	StateHeadersPending
	// StateReady means all headers are known and decoding can proceed.
	StateReady
	// StateEnded means the source is exhausted and looping is off.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHeadersPending:
		return "headers-pending"
	case StateReady:
		return "ready"
	case StateEnded:
		return "ended"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// MPEG is a playback session over one Program Stream.
// It is not safe for concurrent use, independent sessions are.
type MPEG struct {
	opts   Options
	log    *slog.Logger
	demux  *Demux
	closer io.Closer

	time        float64
	loop        bool
	hasEnded    bool
	hasDecoders bool

	videoEnabled    bool
	videoPacketType PacketType // 0 while disabled
	videoBuffer     *Buffer
	videoDecoder    *Video

	audioEnabled     bool
	audioStreamIndex int
	audioPacketType  PacketType // 0 while disabled
	audioLeadTime    float64
	audioBuffer      *Buffer
	audioDecoder     *Audio

	videoCallback VideoFunc
	audioCallback AudioFunc

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a session reading from r.
// An io.ReadSeeker is read in chunks as needed, any other reader is read
// into memory first.
func New(r io.Reader, opts ...*Options) (*MPEG, error) {
	if r == nil {
		return nil, ErrNilSource
	}

	if rs, ok := r.(io.ReadSeeker); ok {
		buf, err := NewFileBuffer(rs, opts...)
		if err != nil {
			return nil, err
		}

		return NewFromBuffer(buf, opts...)
	}

	data, err := readAllData(r)
	if err != nil {
		return nil, err
	}

	return NewFromBytes(data, opts...)
}

// NewFromFile creates a session reading the file at path.
// Close releases the file.
func NewFromFile(path string, opts ...*Options) (*MPEG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	buf, err := NewFileBuffer(f, opts...)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	m, err := NewFromBuffer(buf, opts...)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	m.closer = f

	return m, nil
}

// NewFromBytes creates a session over data held in memory.
// The caller must not modify data while the session is in use.
func NewFromBytes(data []byte, opts ...*Options) (*MPEG, error) {
	return NewFromBuffer(NewMemoryBuffer(data, opts...), opts...)
}

// NewFromBuffer creates a session reading from buf.
// A Ring or Append buffer may be fed with Write while the session runs.
func NewFromBuffer(buf *Buffer, opts ...*Options) (*MPEG, error) {
	o := resolveOptions(opts)

	if o.AudioStream < 0 || o.AudioStream > 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStream, o.AudioStream)
	}

	demux, err := NewDemux(buf, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMPEG, err)
	}

	m := &MPEG{
		opts:             o,
		log:              o.Logger,
		demux:            demux,
		loop:             o.Loop,
		videoEnabled:     !o.DisableVideo,
		audioEnabled:     !o.DisableAudio,
		audioStreamIndex: o.AudioStream,
		audioLeadTime:    o.AudioLeadTime.Seconds(),
		done:             make(chan struct{}),
	}

	m.initDecoders()

	return m, nil
}

// readAllData reads data from r, pre-allocating if the size is known.
func readAllData(r io.Reader) ([]byte, error) {
	if rl, ok := r.(interface{ Len() int }); ok {
		size := rl.Len()
		if size > 0 {
			data := make([]byte, size)
			_, err := io.ReadFull(r, data)
			if err != nil {
				return nil, fmt.Errorf("failed to read stream data: %w", err)
			}

			return data, nil
		}
	}

	return io.ReadAll(r)
}

// Close releases the file opened by NewFromFile. It is a no-op otherwise.
func (m *MPEG) Close() error {
	if m.closer == nil {
		return nil
	}

	err := m.closer.Close()
	m.closer = nil

	return err
}

// HasHeaders reports whether the headers of all streams are known, so the
// stream counts, video dimensions, framerate and samplerate can be reported.
func (m *MPEG) HasHeaders() bool {
	if !m.demux.HasHeaders() {
		return false
	}

	if !m.initDecoders() {
		return false
	}

	if (m.videoDecoder != nil && !m.videoDecoder.HasHeader()) || (m.audioDecoder != nil && !m.audioDecoder.HasHeader()) {
		return false
	}

	return true
}

// State returns the playback state.
func (m *MPEG) State() State {
	switch {
	case m.hasEnded:
		return StateEnded
	case !m.initDecoders():
		return StateUninitialized
	case !m.HasHeaders():
		return StateHeadersPending
	}

	return StateReady
}

// Probe scans the first probeSize bytes for the streams actually present,
// which for some files (VideoCD) is more accurate than the system header.
// It should only be used on seekable sources. It reports whether any stream was found.
func (m *MPEG) Probe(probeSize int) bool {
	if !m.demux.Probe(probeSize) {
		return false
	}

	// Re-init decoders
	m.hasDecoders = false
	m.videoPacketType = 0
	m.audioPacketType = 0

	return m.initDecoders()
}

// Done returns a channel that is closed once the session ends without looping.
func (m *MPEG) Done() <-chan struct{} {
	return m.done
}

// Demux returns the demuxer.
func (m *MPEG) Demux() *Demux {
	return m.demux
}

// Video returns the video decoder, or nil if there is no video stream.
func (m *MPEG) Video() *Video {
	return m.videoDecoder
}

// Audio returns the audio decoder, or nil if there is no audio stream.
func (m *MPEG) Audio() *Audio {
	return m.audioDecoder
}

// VideoEnabled reports whether video decoding is enabled.
func (m *MPEG) VideoEnabled() bool {
	return m.videoEnabled
}

// SetVideoEnabled enables or disables video decoding.
func (m *MPEG) SetVideoEnabled(enabled bool) {
	m.videoEnabled = enabled

	if !enabled {
		m.videoPacketType = 0

		return
	}

	if m.initDecoders() && m.videoDecoder != nil {
		m.videoPacketType = PacketVideo1
	} else {
		m.videoPacketType = 0
	}
}

// NumVideoStreams returns the number of video streams (0 or 1) reported by the system header.
func (m *MPEG) NumVideoStreams() int {
	return m.demux.NumVideoStreams()
}

// Width returns the display width of the video, or 0.
func (m *MPEG) Width() int {
	if !m.initDecoders() || m.videoDecoder == nil {
		return 0
	}

	return m.videoDecoder.Width()
}

// Height returns the display height of the video, or 0.
func (m *MPEG) Height() int {
	if !m.initDecoders() || m.videoDecoder == nil {
		return 0
	}

	return m.videoDecoder.Height()
}

// Framerate returns the video frame rate in frames per second, or 0.
func (m *MPEG) Framerate() float64 {
	if !m.initDecoders() || m.videoDecoder == nil {
		return 0
	}

	return m.videoDecoder.Framerate()
}

// AudioEnabled reports whether audio decoding is enabled.
func (m *MPEG) AudioEnabled() bool {
	return m.audioEnabled
}

// SetAudioEnabled enables or disables audio decoding.
func (m *MPEG) SetAudioEnabled(enabled bool) {
	m.audioEnabled = enabled

	if !enabled {
		m.audioPacketType = 0

		return
	}

	if m.initDecoders() && m.audioDecoder != nil {
		m.audioPacketType = PacketAudio1 + PacketType(m.audioStreamIndex)
	} else {
		m.audioPacketType = 0
	}
}

// NumAudioStreams returns the number of audio streams (0 to 4) reported by the system header.
func (m *MPEG) NumAudioStreams() int {
	return m.demux.NumAudioStreams()
}

// AudioStream returns the index of the audio stream being decoded.
func (m *MPEG) AudioStream() int {
	return m.audioStreamIndex
}

// SetAudioStream selects the audio stream to decode, 0 to 3.
func (m *MPEG) SetAudioStream(index int) error {
	if index < 0 || index > 3 {
		return fmt.Errorf("%w: %d", ErrInvalidStream, index)
	}

	m.audioStreamIndex = index

	// Set the correct audio packet type
	m.SetAudioEnabled(m.audioEnabled)

	return nil
}

// Samplerate returns the audio samplerate in samples per second, or 0.
func (m *MPEG) Samplerate() int {
	if !m.initDecoders() || m.audioDecoder == nil {
		return 0
	}

	return m.audioDecoder.Samplerate()
}

// Channels returns the number of audio channels coded in the stream, or 0.
func (m *MPEG) Channels() int {
	if !m.initDecoders() || m.audioDecoder == nil {
		return 0
	}

	return m.audioDecoder.Channels()
}

// AudioLeadTime returns how far ahead of the video audio is decoded.
func (m *MPEG) AudioLeadTime() time.Duration {
	return secondsToDuration(m.audioLeadTime)
}

// SetAudioLeadTime sets how far ahead of the video audio is decoded by
// Decode. Audio playback usually needs some data queued in advance, this is
// typically the duration of that queue.
func (m *MPEG) SetAudioLeadTime(leadTime time.Duration) {
	m.audioLeadTime = leadTime.Seconds()
}

// Time returns the current presentation time.
func (m *MPEG) Time() time.Duration {
	return secondsToDuration(m.time)
}

// Duration returns the duration of the video stream.
func (m *MPEG) Duration() time.Duration {
	return secondsToDuration(m.demux.Duration(PacketVideo1))
}

// Rewind rewinds the session to the start.
func (m *MPEG) Rewind() {
	if m.videoDecoder != nil {
		m.videoDecoder.Rewind()
	}

	if m.audioDecoder != nil {
		m.audioDecoder.Rewind()
	}

	m.demux.Rewind()
	m.time = 0
	m.hasEnded = false
}

// Loop reports whether looping is enabled.
func (m *MPEG) Loop() bool {
	return m.loop
}

// SetLoop enables or disables rewinding at the end of the stream.
func (m *MPEG) SetLoop(loop bool) {
	m.loop = loop
}

// HasEnded reports whether the session reached the end of the stream.
// It is always false with looping enabled.
func (m *MPEG) HasEnded() bool {
	return m.hasEnded
}

// SetVideoCallback sets the function Decode hands decoded frames to.
func (m *MPEG) SetVideoCallback(fn VideoFunc) {
	m.videoCallback = fn
}

// SetAudioCallback sets the function Decode hands decoded samples to.
func (m *MPEG) SetAudioCallback(fn AudioFunc) {
	m.audioCallback = fn
}

// Decode advances the presentation time by tick and decodes all video and
// audio due until then, calling the callbacks for every decoded unit.
// Streams without a callback are not decoded.
func (m *MPEG) Decode(tick time.Duration) {
	m.decode(tick.Seconds())
}

func (m *MPEG) decode(tick float64) {
	if !m.initDecoders() {
		return
	}

	decodeVideo := m.videoCallback != nil && m.videoPacketType != 0
	decodeAudio := m.audioCallback != nil && m.audioPacketType != 0

	if !decodeVideo && !decodeAudio {
		// Nothing to do here
		return
	}

	var videoFailed, audioFailed bool

	videoTargetTime := m.time + tick
	audioTargetTime := m.time + tick + m.audioLeadTime

	for {
		didDecode := false

		if decodeVideo && m.videoDecoder.Time() < videoTargetTime {
			if frame := m.videoDecoder.Decode(); frame != nil {
				m.videoCallback(m, frame)
				didDecode = true
			} else {
				videoFailed = true
			}
		}

		if decodeAudio && m.audioDecoder.Time() < audioTargetTime {
			if samples := m.audioDecoder.Decode(); samples != nil {
				m.audioCallback(m, samples)
				didDecode = true
			} else {
				audioFailed = true
			}
		}

		if !didDecode {
			break
		}
	}

	// Did all sources we wanted to decode fail and the demuxer is at the end?
	if (!decodeVideo || videoFailed) && (!decodeAudio || audioFailed) && m.demux.HasEnded() {
		m.handleEnd()

		return
	}

	m.time += tick
}

// DecodeVideo decodes and returns a single video frame, or nil if there is none.
// Audio is not decoded, use DecodeAudio for that or disable it.
func (m *MPEG) DecodeVideo() *Frame {
	if !m.initDecoders() || m.videoPacketType == 0 {
		return nil
	}

	frame := m.videoDecoder.Decode()
	if frame != nil {
		m.time = frame.Time
	} else if m.demux.HasEnded() {
		m.handleEnd()
	}

	return frame
}

// DecodeAudio decodes and returns a single frame of samples, or nil if there is none.
func (m *MPEG) DecodeAudio() *Samples {
	if !m.initDecoders() || m.audioPacketType == 0 {
		return nil
	}

	samples := m.audioDecoder.Decode()
	if samples != nil {
		m.time = samples.Time
	} else if m.demux.HasEnded() {
		m.handleEnd()
	}

	return samples
}

// SeekFrame seeks to t and returns the frame there, or nil on failure.
// Without exact the frame is the intra frame at or before t, which is fast.
// With exact every frame from that intra frame up to t is decoded as well.
// The video callback is not called and audio is left untouched.
func (m *MPEG) SeekFrame(t time.Duration, exact bool) *Frame {
	if !m.initDecoders() || m.videoPacketType == 0 {
		return nil
	}

	typ := m.videoPacketType

	startTime := m.demux.StartTime(typ)
	duration := m.demux.Duration(typ)

	tm := max(0, min(t.Seconds(), duration))

	packet := m.demux.Seek(tm, typ, true)
	if packet == nil {
		return nil
	}

	// Disable writing to the audio buffer while decoding video
	prevAudioPacketType := m.audioPacketType
	m.audioPacketType = 0

	// Clear video buffer and decode the found packet
	m.videoDecoder.Rewind()
	m.videoDecoder.SetTime(packet.PTS - startTime)
	_, _ = m.videoBuffer.Write(packet.Data)
	frame := m.videoDecoder.Decode()

	// An exact seek decodes all frames on top of the intra frame
	if exact {
		for frame != nil && frame.Time < tm {
			frame = m.videoDecoder.Decode()
		}
	}

	m.audioPacketType = prevAudioPacketType

	if frame != nil {
		m.time = frame.Time
	}

	m.hasEnded = false

	return frame
}

// Seek seeks to t, hands the frame there to the video callback and
// resynchronizes the audio. See SeekFrame for exact. It reports whether the seek succeeded.
func (m *MPEG) Seek(t time.Duration, exact bool) bool {
	frame := m.SeekFrame(t, exact)
	if frame == nil {
		return false
	}

	if m.videoCallback != nil {
		m.videoCallback(m, frame)
	}

	// If audio is not enabled we are done here.
	if m.audioPacketType == 0 {
		return true
	}

	// Demux until the first audio packet past the current time, then decode
	// enough audio to satisfy the lead time.
	startTime := m.demux.StartTime(m.videoPacketType)
	m.audioDecoder.Rewind()

	for {
		packet := m.demux.Decode()
		if packet == nil {
			break
		}

		if packet.Type == m.videoPacketType {
			_, _ = m.videoBuffer.Write(packet.Data)
		} else if packet.Type == m.audioPacketType && packet.PTS-startTime > m.time {
			m.audioDecoder.SetTime(packet.PTS - startTime)
			_, _ = m.audioBuffer.Write(packet.Data)
			m.decode(0)

			break
		}
	}

	return true
}

// initDecoders creates the decoders once the demuxer knows its streams.
func (m *MPEG) initDecoders() bool {
	if m.hasDecoders {
		return true
	}

	if !m.demux.HasHeaders() {
		return false
	}

	if m.demux.NumVideoStreams() > 0 {
		if m.videoEnabled {
			m.videoPacketType = PacketVideo1
		}

		if m.videoBuffer == nil {
			m.videoBuffer = NewRingBuffer(m.opts.BufferSize, &m.opts)
			m.videoBuffer.SetLoadCallback(m.readVideoPacket)
		}
	}

	if m.demux.NumAudioStreams() > 0 {
		if m.audioEnabled {
			m.audioPacketType = PacketAudio1 + PacketType(m.audioStreamIndex)
		}

		if m.audioBuffer == nil {
			m.audioBuffer = NewRingBuffer(m.opts.BufferSize, &m.opts)
			m.audioBuffer.SetLoadCallback(m.readAudioPacket)
		}
	}

	// Both buffers must exist before a decoder pulls packets into them.
	// Decoders survive a re-init after Probe.
	if m.videoBuffer != nil && m.videoDecoder == nil {
		m.videoDecoder = NewVideo(m.videoBuffer, &m.opts)
	}

	if m.audioBuffer != nil && m.audioDecoder == nil {
		m.audioDecoder = NewAudio(m.audioBuffer, &m.opts)
	}

	m.hasDecoders = true

	return true
}

func (m *MPEG) handleEnd() {
	if m.loop {
		m.Rewind()

		return
	}

	m.hasEnded = true
	m.doneOnce.Do(func() {
		m.log.Debug("mpeg: end of stream")
		close(m.done)
	})
}

func (m *MPEG) readVideoPacket(*Buffer) {
	m.readPackets(m.videoPacketType)
}

func (m *MPEG) readAudioPacket(*Buffer) {
	m.readPackets(m.audioPacketType)
}

// readPackets demuxes into the decoder buffers until a packet of requestedType was written.
// The decoder of a disabled stream requests type 0 and reads nothing.
func (m *MPEG) readPackets(requestedType PacketType) {
	if requestedType == 0 {
		return
	}

	for {
		packet := m.demux.Decode()
		if packet == nil {
			break
		}

		if packet.Type == m.videoPacketType {
			_, _ = m.videoBuffer.Write(packet.Data)
		} else if packet.Type == m.audioPacketType {
			_, _ = m.audioBuffer.Write(packet.Data)
		}

		if packet.Type == requestedType {
			return
		}
	}

	if m.demux.HasEnded() {
		if m.videoBuffer != nil {
			m.videoBuffer.SignalEnd()
		}

		if m.audioBuffer != nil {
			m.audioBuffer.SignalEnd()
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
