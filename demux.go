package mpeg

import (
	"log/slog"
)

// System start codes.
const (
	startPack   = 0xBA
	startSystem = 0xBB
)

// Search ranges for the last time stamp, measured from the end of the source.
const (
	durationStartRange = 64 * 1024
	durationMaxRange   = 4096 * 1024
)

// seekRetries bounds the number of jumps a Seek makes before giving up.
const seekRetries = 32

// pendingPacket is a packet whose header was read but whose payload is not available yet.
type pendingPacket struct {
	typ    PacketType
	pts    float64
	length int
}

type streamTimes struct {
	start    float64
	duration float64
	fileSize int // source size the duration was computed for
}

// Demux splits an MPEG Program Stream into packets.
type Demux struct {
	buf *Buffer
	log *slog.Logger

	systemClockRef float64
	lastDecodedPTS float64
	times          map[PacketType]*streamTimes

	startCode       int // start code of a packet whose header is still incomplete, or -1
	hasPackHeader   bool
	hasSystemHeader bool
	hasHeaders      bool

	numAudioStreams int
	numVideoStreams int

	current       Packet
	currentLength int // bytes of the current packet to skip before the next one
	next          pendingPacket
}

// NewDemux creates a demuxer reading from buf.
// It fails with ErrInvalidHeader if buf is complete but holds no pack and system header.
// Streaming buffers that may still receive the headers are accepted.
func NewDemux(buf *Buffer, opts ...*Options) (*Demux, error) {
	if buf == nil {
		return nil, ErrNilSource
	}

	o := resolveOptions(opts)

	d := &Demux{
		buf:       buf,
		log:       o.Logger,
		times:     make(map[PacketType]*streamTimes),
		startCode: -1,
	}

	if !d.HasHeaders() && buf.HasEnded() {
		return nil, ErrInvalidHeader
	}

	return d, nil
}

// Buffer returns the source buffer.
func (d *Demux) Buffer() *Buffer {
	return d.buf
}

// HasHeaders reports whether the pack and system headers have been read.
// It attempts to read them if not.
func (d *Demux) HasHeaders() bool {
	if d.hasHeaders {
		return true
	}

	if !d.hasPackHeader {
		if d.startCode != startPack && d.buf.findStartCode(startPack) == -1 {
			return false
		}

		// Remember the start code in case the header is incomplete.
		d.startCode = startPack
		if !d.buf.has(64) {
			return false
		}
		d.startCode = -1

		if d.buf.read(4) != 0x02 {
			return false
		}

		d.systemClockRef = d.decodeTime()
		d.buf.skip(1)
		d.buf.skip(22) // mux_rate * 50
		d.buf.skip(1)

		d.hasPackHeader = true
	}

	if !d.hasSystemHeader {
		if d.startCode != startSystem && d.buf.findStartCode(startSystem) == -1 {
			return false
		}

		d.startCode = startSystem
		if !d.buf.has(56) {
			return false
		}
		d.startCode = -1

		d.buf.skip(16) // header_length
		d.buf.skip(24) // rate bound
		d.numAudioStreams = d.buf.read(6)
		d.buf.skip(5) // misc flags
		d.numVideoStreams = d.buf.read(5)

		d.hasSystemHeader = true
	}

	d.hasHeaders = true

	return true
}

// Probe scans up to probeSize bytes for the streams that are actually
// present and overrides the stream counts of the system header with what it found.
// Some sources (e.g. VideoCD) report counts that do not match their content.
// It reports whether any stream was found.
func (d *Demux) Probe(probeSize int) bool {
	prevPos := d.buf.Tell()

	video := false
	var audio [4]bool

	for {
		d.startCode = d.buf.nextStartCode()
		if t, ok := packetTypeOf(d.startCode); ok {
			switch t.Kind() {
			case KindVideo:
				video = true
			case KindAudio:
				audio[t.AudioStream()] = true
			}
		}

		if d.startCode == -1 || d.buf.Tell()-prevPos >= probeSize {
			break
		}
	}

	d.numVideoStreams = 0
	if video {
		d.numVideoStreams = 1
	}

	d.numAudioStreams = 0
	for _, found := range audio {
		if found {
			d.numAudioStreams++
		}
	}

	d.bufferSeek(prevPos)

	return d.numVideoStreams > 0 || d.numAudioStreams > 0
}

// NumVideoStreams returns the number of video streams reported by the system header.
func (d *Demux) NumVideoStreams() int {
	if !d.HasHeaders() {
		return 0
	}

	return d.numVideoStreams
}

// NumAudioStreams returns the number of audio streams reported by the system header.
func (d *Demux) NumAudioStreams() int {
	if !d.HasHeaders() {
		return 0
	}

	return d.numAudioStreams
}

// Rewind seeks back to the start of the source.
func (d *Demux) Rewind() {
	d.bufferSeek(0)
}

// HasEnded reports whether the source is exhausted.
func (d *Demux) HasEnded() bool {
	return d.buf.HasEnded()
}

func (d *Demux) bufferSeek(pos int) {
	d.buf.Seek(pos)
	d.currentLength = 0
	d.next.length = 0
	d.startCode = -1
}

func (d *Demux) streamTimes(typ PacketType) *streamTimes {
	st, ok := d.times[typ]
	if !ok {
		st = &streamTimes{start: PacketInvalidTS, duration: PacketInvalidTS}
		d.times[typ] = st
	}

	return st
}

// StartTime returns the time stamp of the first packet of type typ in seconds,
// or PacketInvalidTS if there is none. The result is cached.
func (d *Demux) StartTime(typ PacketType) float64 {
	st := d.streamTimes(typ)
	if st.start != PacketInvalidTS {
		return st.start
	}

	prevPos := d.buf.Tell()
	prevStartCode := d.startCode

	d.Rewind()
	for st.start == PacketInvalidTS {
		packet := d.Decode()
		if packet == nil {
			break
		}

		if packet.Type == typ {
			st.start = packet.PTS
		}
	}

	d.bufferSeek(prevPos)
	d.startCode = prevStartCode

	return st.start
}

// Duration returns the time between the first and the last time stamp of
// type typ in seconds, or PacketInvalidTS if it can not be determined.
// The last time stamp is searched near the end of the source. The result is
// cached until the size of the source changes.
func (d *Demux) Duration(typ PacketType) float64 {
	st := d.streamTimes(typ)
	fileSize := d.buf.Size()

	if st.duration != PacketInvalidTS && st.fileSize == fileSize {
		return st.duration
	}

	prevPos := d.buf.Tell()
	prevStartCode := d.startCode

	// Go further back from the end until a time stamp is found.
	for r := durationStartRange; r <= durationMaxRange; r *= 2 {
		seekPos := fileSize - r
		if seekPos < 0 {
			seekPos = 0
			r = durationMaxRange // bail after this round
		}

		d.bufferSeek(seekPos)

		lastPTS := float64(PacketInvalidTS)
		for packet := d.Decode(); packet != nil; packet = d.Decode() {
			if packet.HasPTS() && packet.Type == typ {
				lastPTS = packet.PTS
			}
		}

		if lastPTS != PacketInvalidTS {
			st.duration = lastPTS - d.StartTime(typ)

			break
		}
	}

	d.bufferSeek(prevPos)
	d.startCode = prevStartCode
	st.fileSize = fileSize

	return st.duration
}

// Seek jumps to the last packet of type typ before time t (in seconds,
// relative to the start time). If forceIntra is set, only video packets
// starting an intra picture qualify. Seek only works on seekable sources.
//
// The byte position is estimated from the average byte rate of the source,
// then packets around the target time are scanned. The estimate is refined
// on every jump. Seek returns nil if no packet was found.
func (d *Demux) Seek(t float64, typ PacketType, forceIntra bool) *Packet {
	if !d.HasHeaders() {
		return nil
	}

	// A byte rate needs at least two time stamps of typ.
	duration := d.Duration(typ)
	if duration <= 0 {
		d.log.Debug("mpeg: seek without a time range", "type", typ, "duration", duration)

		return nil
	}

	fileSize := d.buf.Size()
	byterate := int(float64(fileSize) / duration)

	curTime := d.lastDecodedPTS
	scanSpan := 1.0

	if t > duration {
		t = duration
	} else if t < 0 {
		t = 0
	}
	t += d.StartTime(typ)

	for range seekRetries {
		foundWithPTS := false
		foundInRange := false
		lastValidStart := -1
		firstPacketTime := float64(PacketInvalidTS)

		curPos := d.buf.Tell()

		// Estimate the byte offset and jump to it.
		offset := int((t - curTime - scanSpan) * float64(byterate))
		seekPos := curPos + offset
		if seekPos < 0 {
			seekPos = 0
		} else if seekPos > fileSize-256 {
			seekPos = max(fileSize-256, 0)
		}

		d.bufferSeek(seekPos)

		// Scan the packets up to the target time for the last one that qualifies.
		for d.buf.findStartCode(int(typ)) != -1 {
			packetStart := d.buf.Tell()

			packet := d.decodePacket(typ)
			if packet == nil || !packet.HasPTS() {
				continue
			}

			// Outside of the scan window, refine the estimate for the next jump.
			if packet.PTS > t || packet.PTS < t-scanSpan {
				foundWithPTS = true
				if dt := packet.PTS - curTime; dt != 0 {
					byterate = int(float64(seekPos-curPos) / dt)
				}
				curTime = packet.PTS

				break
			}

			// Remember where the window starts so a retry does not scan it again.
			if !foundInRange {
				foundInRange = true
				firstPacketTime = packet.PTS
			}

			if forceIntra {
				if startsIntraPicture(packet.Data) {
					lastValidStart = packetStart
				}
			} else {
				lastValidStart = packetStart
			}
		}

		switch {
		case lastValidStart != -1:
			d.bufferSeek(lastValidStart)

			return d.decodePacket(typ)
		case foundInRange:
			// No intra picture in range, widen the window.
			scanSpan *= 2
			t = firstPacketTime
		case !foundWithPTS:
			// Probably hit the end of the source.
			if dt := duration - curTime; dt != 0 {
				byterate = int(float64(seekPos-curPos) / dt)
			}
			curTime = duration
		}
	}

	d.log.Debug("mpeg: seek found no packet", "time", t, "type", typ)

	return nil
}

// startsIntraPicture reports whether the first picture header in data is an intra picture.
func startsIntraPicture(data []byte) bool {
	for i := 0; i < len(data)-6; i++ {
		if data[i] == 0x00 && data[i+1] == 0x00 && data[i+2] == 0x01 && data[i+3] == startPicture {
			// Bits 11..13 of the picture header hold the coding type.
			return data[i+5]&0x38 == pictureTypeIntra<<3
		}
	}

	return false
}

// Decode returns the next packet, or nil if no complete packet is available.
// The returned packet is valid until the next call.
func (d *Demux) Decode() *Packet {
	if !d.HasHeaders() {
		return nil
	}

	if d.currentLength != 0 {
		bitsTillNext := d.currentLength << 3
		if !d.buf.has(bitsTillNext) {
			return nil
		}

		d.buf.skip(bitsTillNext)
		d.currentLength = 0
	}

	// Pending packet waiting for its payload.
	if d.next.length != 0 {
		return d.getPacket()
	}

	// Pending packet waiting for its header.
	if d.startCode != -1 {
		return d.decodePacket(PacketType(d.startCode))
	}

	for {
		d.startCode = d.buf.nextStartCode()
		if d.startCode == -1 {
			return nil
		}

		if t, ok := packetTypeOf(d.startCode); ok {
			return d.decodePacket(t)
		}
	}
}

// decodeTime reads a 33-bit clock value split by marker bits, in seconds.
func (d *Demux) decodeTime() float64 {
	clock := int64(d.buf.read(3)) << 30
	d.buf.skip(1)
	clock |= int64(d.buf.read(15)) << 15
	d.buf.skip(1)
	clock |= int64(d.buf.read(15))
	d.buf.skip(1)

	return float64(clock) / 90000.0
}

// decodePacket reads a packet header following the start code of type typ.
func (d *Demux) decodePacket(typ PacketType) *Packet {
	if !d.buf.has(16 << 3) {
		return nil
	}

	d.startCode = -1

	d.next.typ = typ
	d.next.length = d.buf.read(16)
	d.next.length -= d.buf.skipBytes(0xff) // stuffing

	// skip P-STD
	if d.buf.read(2) == 0x01 {
		d.buf.skip(16)
		d.next.length -= 2
	}

	switch d.buf.read(2) {
	case 0x03:
		d.next.pts = d.decodeTime()
		d.lastDecodedPTS = d.next.pts
		d.buf.skip(40) // skip dts
		d.next.length -= 10
	case 0x02:
		d.next.pts = d.decodeTime()
		d.lastDecodedPTS = d.next.pts
		d.next.length -= 5
	case 0x00:
		d.next.pts = PacketInvalidTS
		d.buf.skip(4)
		d.next.length -= 1
	default:
		d.next.length = 0

		return nil
	}

	if d.next.length < 0 {
		d.next.length = 0

		return nil
	}

	return d.getPacket()
}

// getPacket returns the pending packet once its payload is in the buffer.
func (d *Demux) getPacket() *Packet {
	if !d.buf.has(d.next.length << 3) {
		return nil
	}

	start := d.buf.bitIndex >> 3
	d.current = Packet{
		Type: d.next.typ,
		PTS:  d.next.pts,
		Data: d.buf.data[start : start+d.next.length : start+d.next.length],
	}
	d.currentLength = d.next.length

	d.next.length = 0

	return &d.current
}
