package mpeg

import (
	"bytes"
	"errors"
	"testing"
)

// payload returns n bytes of filler that contain no start code.
func payload(n int, v byte) []byte {
	return bytes.Repeat([]byte{v}, n)
}

// pictureHeader returns a video payload of size n beginning with a picture header.
func pictureHeader(n, pictureType int) []byte {
	w := &bitWriter{}
	w.startCode(startPicture)
	w.write(0, 10)
	w.write(uint64(pictureType), 3)
	w.write(0xffff, 16)
	data := w.result()

	return append(data, make([]byte, n-len(data))...)
}

var testPackets = []psPacket{
	{code: byte(PacketVideo1), pts: 0.5, data: payload(20, 0x11)},
	{code: byte(PacketAudio1), pts: 0.5, data: payload(30, 0x22)},
	{code: byte(PacketPrivate), pts: -1, data: payload(16, 0x33)},
	{code: 0xBE, pts: -1, data: payload(16, 0x44)}, // padding stream, skipped
	{code: byte(PacketVideo1), pts: 1.5, data: payload(24, 0x55)},
	{code: byte(PacketAudio1), pts: 1.25, data: payload(32, 0x66)},
}

func TestDemuxHeaders(t *testing.T) {
	d, err := NewDemux(NewMemoryBuffer(programStream(2, 1, testPackets...)))
	if err != nil {
		t.Fatalf("NewDemux failed: %v", err)
	}

	if !d.HasHeaders() {
		t.Fatal("HasHeaders() = false")
	}

	if got := d.NumVideoStreams(); got != 1 {
		t.Errorf("NumVideoStreams() = %d, want 1", got)
	}

	if got := d.NumAudioStreams(); got != 2 {
		t.Errorf("NumAudioStreams() = %d, want 2", got)
	}
}

func TestDemuxInvalid(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"Garbage", payload(100, 0x47)},
		{"Short", []byte{0x00, 0x00, 0x01}},
		{"VideoES", videoStream(lumaDCPlus1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDemux(NewMemoryBuffer(tc.data))
			if !errors.Is(err, ErrInvalidHeader) {
				t.Errorf("NewDemux error = %v, want %v", err, ErrInvalidHeader)
			}
		})
	}

	if _, err := NewDemux(nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("NewDemux(nil) error = %v, want %v", err, ErrNilSource)
	}
}

// collect decodes all packets, copying their data.
func collect(d *Demux) []Packet {
	var packets []Packet
	for p := d.Decode(); p != nil; p = d.Decode() {
		packets = append(packets, Packet{Type: p.Type, PTS: p.PTS, Data: bytes.Clone(p.Data)})
	}

	return packets
}

func checkPackets(t *testing.T, got []Packet) {
	t.Helper()

	var want []psPacket
	for _, p := range testPackets {
		if _, ok := packetTypeOf(int(p.code)); ok {
			want = append(want, p)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("got %d packets, want %d", len(got), len(want))
	}

	for i, p := range got {
		wantPTS := want[i].pts
		if wantPTS < 0 {
			wantPTS = PacketInvalidTS
		}

		if p.Type != PacketType(want[i].code) || p.PTS != wantPTS || !bytes.Equal(p.Data, want[i].data) {
			t.Errorf("packet %d = {%v %v %d bytes}, want {%v %v %d bytes}",
				i, p.Type, p.PTS, len(p.Data), PacketType(want[i].code), wantPTS, len(want[i].data))
		}
	}
}

func TestDemuxDecode(t *testing.T) {
	d, err := NewDemux(NewMemoryBuffer(programStream(1, 1, testPackets...)))
	if err != nil {
		t.Fatalf("NewDemux failed: %v", err)
	}

	checkPackets(t, collect(d))

	if !d.HasEnded() {
		t.Error("HasEnded() = false after the last packet")
	}

	d.Rewind()
	checkPackets(t, collect(d))
}

func TestDemuxStreaming(t *testing.T) {
	for _, chunk := range []int{1, 7, 64} {
		buf := NewRingBuffer(32)

		d, err := NewDemux(buf)
		if err != nil {
			t.Fatalf("NewDemux on an empty ring buffer failed: %v", err)
		}

		var packets []Packet

		data := programStream(1, 1, testPackets...)
		for len(data) > 0 {
			n := min(chunk, len(data))
			if _, err := buf.Write(data[:n]); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			data = data[n:]

			packets = append(packets, collect(d)...)
		}

		buf.SignalEnd()
		packets = append(packets, collect(d)...)

		checkPackets(t, packets)
	}
}

func TestDemuxPacketTypes(t *testing.T) {
	testCases := []struct {
		typ    PacketType
		kind   StreamKind
		stream int
		name   string
	}{
		{PacketVideo1, KindVideo, -1, "video1"},
		{PacketAudio1, KindAudio, 0, "audio1"},
		{PacketAudio4, KindAudio, 3, "audio4"},
		{PacketPrivate, KindPrivate, -1, "private"},
		{PacketType(0xBE), KindUnknown, -1, "PacketType(0xbe)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.Kind(); got != tc.kind {
				t.Errorf("Kind() = %v, want %v", got, tc.kind)
			}

			if got := tc.typ.AudioStream(); got != tc.stream {
				t.Errorf("AudioStream() = %d, want %d", got, tc.stream)
			}

			if got := tc.typ.String(); got != tc.name {
				t.Errorf("String() = %q, want %q", got, tc.name)
			}

			if _, ok := packetTypeOf(int(tc.typ)); ok != (tc.kind != KindUnknown) {
				t.Errorf("packetTypeOf() ok = %v", ok)
			}
		})
	}
}

func TestDemuxTimes(t *testing.T) {
	d, err := NewDemux(NewMemoryBuffer(programStream(1, 1, testPackets...)))
	if err != nil {
		t.Fatalf("NewDemux failed: %v", err)
	}

	testCases := []struct {
		typ       PacketType
		startTime float64
		duration  float64
	}{
		{PacketVideo1, 0.5, 1.0},
		{PacketAudio1, 0.5, 0.75},
		{PacketAudio2, PacketInvalidTS, PacketInvalidTS},
	}

	for _, tc := range testCases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			if got := d.StartTime(tc.typ); got != tc.startTime {
				t.Errorf("StartTime() = %v, want %v", got, tc.startTime)
			}

			if got := d.Duration(tc.typ); got != tc.duration {
				t.Errorf("Duration() = %v, want %v", got, tc.duration)
			}
		})
	}

	// The position is kept.
	checkPackets(t, collect(d))
}

func TestDemuxProbe(t *testing.T) {
	// The system header claims four audio streams and no video.
	d, err := NewDemux(NewMemoryBuffer(programStream(4, 0, testPackets...)))
	if err != nil {
		t.Fatalf("NewDemux failed: %v", err)
	}

	if got := d.NumAudioStreams(); got != 4 {
		t.Fatalf("NumAudioStreams() = %d, want 4", got)
	}

	if !d.Probe(1 << 20) {
		t.Fatal("Probe() = false")
	}

	if got := d.NumAudioStreams(); got != 1 {
		t.Errorf("NumAudioStreams() after Probe = %d, want 1", got)
	}

	if got := d.NumVideoStreams(); got != 1 {
		t.Errorf("NumVideoStreams() after Probe = %d, want 1", got)
	}

	checkPackets(t, collect(d))
}

func TestDemuxSeek(t *testing.T) {
	testCases := []struct {
		name       string
		predictive int // index of the one P-picture packet, or -1
		forceIntra bool
		want       float64
	}{
		{"Intra", -1, true, 5},
		{"SkipPredictive", 5, true, 4},
		{"AnyPicture", 5, false, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var packets []psPacket
			for i := range 10 {
				typ := pictureTypeIntra
				if i == tc.predictive {
					typ = pictureTypePredictive
				}

				packets = append(packets, psPacket{code: byte(PacketVideo1), pts: float64(i), data: pictureHeader(2000, typ)})
			}

			d, err := NewDemux(NewMemoryBuffer(programStream(0, 1, packets...)))
			if err != nil {
				t.Fatalf("NewDemux failed: %v", err)
			}

			p := d.Seek(5.5, PacketVideo1, tc.forceIntra)
			if p == nil {
				t.Fatal("Seek() = nil")
			}

			if p.PTS != tc.want {
				t.Errorf("Seek() PTS = %v, want %v", p.PTS, tc.want)
			}

			if !bytes.Equal(p.Data[:4], []byte{0x00, 0x00, 0x01, startPicture}) {
				t.Errorf("Seek() data starts with % x", p.Data[:4])
			}
		})
	}
}

func TestDemuxSeekWithoutTimeRange(t *testing.T) {
	testCases := []struct {
		name string
		pts  []float64
	}{
		{"NoTimeStamps", []float64{-1, -1, -1}},
		{"SingleTimeStamp", []float64{-1, 2, -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var packets []psPacket
			for _, pts := range tc.pts {
				packets = append(packets, psPacket{code: byte(PacketVideo1), pts: pts, data: pictureHeader(200, pictureTypeIntra)})
			}

			d, err := NewDemux(NewMemoryBuffer(programStream(0, 1, packets...)))
			if err != nil {
				t.Fatalf("NewDemux failed: %v", err)
			}

			if p := d.Seek(1, PacketVideo1, true); p != nil {
				t.Errorf("Seek() = packet at %v, want nil", p.PTS)
			}

			// The position is left where it was.
			if got := len(collect(d)); got != len(tc.pts) {
				t.Errorf("%d packets after a failed seek, want %d", got, len(tc.pts))
			}
		})
	}
}

func TestStartsIntraPicture(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		want bool
	}{
		{"Intra", pictureHeader(16, pictureTypeIntra), true},
		{"Predictive", pictureHeader(16, pictureTypePredictive), false},
		{"B", pictureHeader(16, pictureTypeB), false},
		{"NoPicture", payload(16, 0x11), false},
		{"Offset", append(payload(5, 0x11), pictureHeader(16, pictureTypeIntra)...), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := startsIntraPicture(tc.data); got != tc.want {
				t.Errorf("startsIntraPicture() = %v, want %v", got, tc.want)
			}
		})
	}
}
