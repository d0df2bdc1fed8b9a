package mpeg

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestAudioHeader(t *testing.T) {
	a := NewAudio(NewMemoryBuffer(mp2Stream(2, false)))

	if !a.HasHeader() {
		t.Fatal("HasHeader() = false")
	}

	if got := a.Samplerate(); got != 44100 {
		t.Errorf("Samplerate() = %d, want 44100", got)
	}

	if got := a.Channels(); got != 1 {
		t.Errorf("Channels() = %d, want 1", got)
	}
}

func TestAudioNoHeader(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{"FreeFormat", "1111 1111 1111 1101 0000 0000 1100 0000"},
		{"BadBitrate", "1111 1111 1111 1101 1111 0000 1100 0000"},
		{"BadSamplerate", "1111 1111 1111 1101 0001 1100 1100 0000"},
		{"Layer3", "1111 1111 1111 1011 0001 0000 1100 0000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := &bitWriter{}
			w.bits(tc.header)
			w.bytes(make([]byte, 200)...)

			a := NewAudio(NewMemoryBuffer(w.result()))

			if a.HasHeader() {
				t.Error("HasHeader() = true")
			}

			if got := a.Samplerate(); got != 0 {
				t.Errorf("Samplerate() = %d, want 0", got)
			}

			if samples := a.Decode(); samples != nil {
				t.Error("Decode() returned samples")
			}
		})
	}
}

func TestAudioDecodeSilence(t *testing.T) {
	a := NewAudio(NewMemoryBuffer(mp2Stream(3, false)))

	for i := range 3 {
		samples := a.Decode()
		if samples == nil {
			t.Fatalf("Decode() #%d = nil", i)
		}

		wantTime := float64(i*SamplesPerFrame) / 44100
		if samples.Time != wantTime {
			t.Errorf("frame %d: Time = %v, want %v", i, samples.Time, wantTime)
		}

		if samples.Count != SamplesPerFrame || len(samples.Interleaved) != 2*SamplesPerFrame {
			t.Errorf("frame %d: Count = %d, len(Interleaved) = %d", i, samples.Count, len(samples.Interleaved))
		}

		for j, v := range samples.Interleaved {
			if v != 0 {
				t.Fatalf("frame %d: sample %d = %v, want 0", i, j, v)
			}
		}
	}

	if samples := a.Decode(); samples != nil {
		t.Error("Decode() after the last frame returned samples")
	}

	if !a.HasEnded() {
		t.Error("HasEnded() = false")
	}

	a.Rewind()
	if samples := a.Decode(); samples == nil || samples.Time != 0 {
		t.Error("Decode() after Rewind did not restart at 0")
	}
}

// checkSignal verifies that samples are finite, not all zero and equal in both channels.
func checkSignal(t *testing.T, left, right []float32) {
	t.Helper()

	nonZero := 0
	for i := range left {
		l, r := float64(left[i]), float64(right[i])
		if math.IsNaN(l) || math.IsInf(l, 0) {
			t.Fatalf("sample %d = %v", i, l)
		}

		if l != r {
			t.Fatalf("sample %d: left %v != right %v for a mono source", i, l, r)
		}

		if l != 0 {
			nonZero++
		}
	}

	if nonZero == 0 {
		t.Error("all samples are zero")
	}
}

func TestAudioDecodeSignal(t *testing.T) {
	t.Run("Interleaved", func(t *testing.T) {
		a := NewAudio(NewMemoryBuffer(mp2Stream(2, true)))

		for range 2 {
			samples := a.Decode()
			if samples == nil {
				t.Fatal("Decode() = nil")
			}

			left := make([]float32, samples.Count)
			right := make([]float32, samples.Count)
			for i := range samples.Count {
				left[i] = samples.Interleaved[2*i]
				right[i] = samples.Interleaved[2*i+1]
			}

			checkSignal(t, left, right)
		}
	})

	t.Run("SeparateChannels", func(t *testing.T) {
		a := NewAudio(NewMemoryBuffer(mp2Stream(2, true)), &Options{SeparateChannels: true})

		samples := a.Decode()
		if samples == nil {
			t.Fatal("Decode() = nil")
		}

		if samples.Interleaved != nil {
			t.Error("Interleaved is set with SeparateChannels")
		}

		checkSignal(t, samples.Left, samples.Right)
	})
}

func TestAudioStrictSync(t *testing.T) {
	// A stray sync word with a forbidden bitrate precedes the first frame.
	data := append([]byte{0x12, 0xFF, 0xFD, 0xF0, 0x00}, mp2Stream(2, false)...)

	testCases := []struct {
		name          string
		strict        bool
		headerAtStart bool
	}{
		{"Lenient", false, false},
		{"Strict", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAudio(NewMemoryBuffer(data), &Options{StrictAudioSync: tc.strict})

			if a.hasHeader != tc.headerAtStart {
				t.Errorf("header found right away = %v, want %v", a.hasHeader, tc.headerAtStart)
			}

			frames := 0
			for a.Decode() != nil {
				frames++
			}

			if frames != 2 {
				t.Errorf("decoded %d frames, want 2", frames)
			}
		})
	}
}

func TestAudioSetTime(t *testing.T) {
	a := NewAudio(NewMemoryBuffer(mp2Stream(2, false)))

	a.SetTime(1)
	if got := a.Time(); got != 1 {
		t.Errorf("Time() = %v, want 1", got)
	}

	if samples := a.Decode(); samples == nil || samples.Time != 1 {
		t.Fatal("first frame after SetTime(1) not at 1")
	}

	want := float64(44100+SamplesPerFrame) / 44100
	if got := a.Time(); got != want {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

func TestSamplesBytes(t *testing.T) {
	interleaved := &Samples{Count: 2, Interleaved: []float32{0.5, -0.5, 1.5, -2}}
	separate := &Samples{Count: 2, Left: []float32{0.5, 1.5}, Right: []float32{-0.5, -2}}

	testCases := []struct {
		name    string
		samples *Samples
		format  SampleFormat
		want    []int
	}{
		{"Int16", interleaved, SampleInt16, []int{16383, -16383, 32767, -32767}},
		{"Int16Separate", separate, SampleInt16, []int{16383, -16383, 32767, -32767}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := tc.samples.Bytes(tc.format)
			if len(out) != 2*len(tc.want) {
				t.Fatalf("len = %d, want %d", len(out), 2*len(tc.want))
			}

			for i, want := range tc.want {
				if got := int(int16(binary.LittleEndian.Uint16(out[2*i:]))); got != want {
					t.Errorf("sample %d = %d, want %d", i, got, want)
				}
			}
		})
	}

	for _, s := range []*Samples{interleaved, separate} {
		out := s.Bytes(SampleFloat32)
		if len(out) != 16 {
			t.Fatalf("len = %d, want 16", len(out))
		}

		// Float output is not clamped.
		want := []float32{0.5, -0.5, 1.5, -2}
		for i, w := range want {
			if got := math.Float32frombits(binary.LittleEndian.Uint32(out[4*i:])); got != w {
				t.Errorf("sample %d = %v, want %v", i, got, w)
			}
		}
	}
}

func TestSampleFormat(t *testing.T) {
	testCases := []struct {
		format SampleFormat
		name   string
		size   int
	}{
		{SampleFloat32, "f32", 4},
		{SampleInt16, "s16", 2},
	}

	for _, tc := range testCases {
		if got := tc.format.String(); got != tc.name {
			t.Errorf("String() = %q, want %q", got, tc.name)
		}

		if got := tc.format.BytesPerSample(); got != tc.size {
			t.Errorf("%s: BytesPerSample() = %d, want %d", tc.name, got, tc.size)
		}
	}
}

func BenchmarkAudioDecode(b *testing.B) {
	data := mp2Stream(64, true)

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	for b.Loop() {
		a := NewAudio(NewMemoryBuffer(data))
		for a.Decode() != nil {
		}
	}
}
