package mpeg

import "fmt"

// PacketType identifies the elementary stream a packet belongs to.
// Its values are the MPEG-PES stream start codes. Values outside the
// constants below are never produced by the demuxer.
type PacketType int

// Packet types.
const (
	PacketPrivate PacketType = 0xBD
	PacketAudio1  PacketType = 0xC0
	PacketAudio2  PacketType = 0xC1
	PacketAudio3  PacketType = 0xC2
	PacketAudio4  PacketType = 0xC3
	PacketVideo1  PacketType = 0xE0
)

// PacketInvalidTS marks a packet without a presentation time stamp.
const PacketInvalidTS = -1

// StreamKind is the kind of elementary stream.
type StreamKind int

const (
	KindUnknown StreamKind = iota
	KindVideo
	KindAudio
	KindPrivate
)

func (k StreamKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindPrivate:
		return "private"
	}

	return "unknown"
}

// packetTypeOf maps a start code to the packet type the demuxer yields for it.
func packetTypeOf(code int) (PacketType, bool) {
	switch t := PacketType(code); t {
	case PacketPrivate, PacketAudio1, PacketAudio2, PacketAudio3, PacketAudio4, PacketVideo1:
		return t, true
	}

	return 0, false
}

// Kind returns the kind of stream t belongs to.
func (t PacketType) Kind() StreamKind {
	switch {
	case t == PacketVideo1:
		return KindVideo
	case t >= PacketAudio1 && t <= PacketAudio4:
		return KindAudio
	case t == PacketPrivate:
		return KindPrivate
	}

	return KindUnknown
}

// AudioStream returns the audio stream index 0..3, or -1 for non-audio types.
func (t PacketType) AudioStream() int {
	if t.Kind() != KindAudio {
		return -1
	}

	return int(t - PacketAudio1)
}

func (t PacketType) String() string {
	switch t.Kind() {
	case KindVideo:
		return "video1"
	case KindAudio:
		return fmt.Sprintf("audio%d", t.AudioStream()+1)
	case KindPrivate:
		return "private"
	}

	return fmt.Sprintf("PacketType(%#x)", int(t))
}

// Packet is a demuxed MPEG-PS packet.
// Data aliases the demuxer's buffer and is only valid until the next call to Decode or Seek.
type Packet struct {
	Type PacketType
	// PTS is the presentation time stamp in seconds, or PacketInvalidTS.
	PTS  float64
	Data []byte
}

// HasPTS reports whether the packet carries a presentation time stamp.
func (p *Packet) HasPTS() bool {
	return p.PTS != PacketInvalidTS
}
