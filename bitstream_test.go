package mpeg

import (
	"testing"
)

func TestNextStartCode(t *testing.T) {
	buf := NewMemoryBuffer([]byte{
		0x12, 0x00, 0x00, 0x01, 0xB3,
		0x55, 0x00, 0x00, 0x01, 0x00,
		0xFF, 0xFF,
	})

	for _, want := range []int{startSequence, startPicture, -1} {
		if got := buf.nextStartCode(); got != want {
			t.Errorf("nextStartCode() = %#x, want %#x", got, want)
		}
	}
}

func TestHasStartCode(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x01, 0xB3, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x00,
		0x00, 0x00,
	}
	buf := NewMemoryBuffer(data)

	if got := buf.hasStartCode(startPicture); got != startPicture {
		t.Errorf("hasStartCode() = %#x, want %#x", got, startPicture)
	}

	if got := buf.Tell(); got != 0 {
		t.Errorf("Tell() after hasStartCode = %d, want 0", got)
	}

	if got := buf.findStartCode(startPicture); got != startPicture {
		t.Errorf("findStartCode() = %#x, want %#x", got, startPicture)
	}

	if got := buf.Tell(); got != 9 {
		t.Errorf("Tell() after findStartCode = %d, want 9", got)
	}

	if got := buf.hasStartCode(startSequence); got != -1 {
		t.Errorf("hasStartCode() past the code = %#x, want -1", got)
	}
}

func TestNoStartCode(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		want bool
	}{
		{"StartCode", []byte{0x00, 0x00, 0x01, 0x01, 0x00}, false},
		{"Data", []byte{0x00, 0x01, 0x01, 0x01, 0x00}, true},
		{"Short", []byte{0x12, 0x34}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewMemoryBuffer(tc.data).noStartCode(); got != tc.want {
				t.Errorf("noStartCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSkipBytes(t *testing.T) {
	buf := NewMemoryBuffer([]byte{0x7F, 0xFF, 0xFF, 0x12})
	buf.skip(3)

	if got := buf.skipBytes(0xFF); got != 2 {
		t.Errorf("skipBytes() = %d, want 2", got)
	}

	if got := buf.read(8); got != 0x12 {
		t.Errorf("read after skipBytes = %#x, want 0x12", got)
	}
}

func TestReadVLC(t *testing.T) {
	testCases := []struct {
		name   string
		bits   string
		table  []vlcNode
		want   int
		wantOK bool
	}{
		{"AddressIncrement1", "1", macroblockAddressIncrement, 1, true},
		{"AddressIncrement2", "011", macroblockAddressIncrement, 2, true},
		{"AddressIncrement3", "010", macroblockAddressIncrement, 3, true},
		{"AddressIncrementInvalid", "0000 0000", macroblockAddressIncrement, 0, false},
		{"IntraType", "1", macroblockTypeIntra, 0x01, true},
		{"IntraTypeQuant", "01", macroblockTypeIntra, 0x11, true},
		{"IntraTypeInvalid", "00", macroblockTypeIntra, 0, false},
		{"LumaSize0", "100", dctSizeLuminance, 0, true},
		{"LumaSize1", "00", dctSizeLuminance, 1, true},
		{"LumaSize2", "01", dctSizeLuminance, 2, true},
		{"ChromaSize0", "00", dctSizeChrominance, 0, true},
		{"ChromaSize2", "10", dctSizeChrominance, 2, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := &bitWriter{}
			w.bits(tc.bits)
			w.bytes(0x55)

			got, ok := NewMemoryBuffer(w.result()).readVLC(tc.table)
			if ok != tc.wantOK {
				t.Fatalf("readVLC() ok = %v, want %v", ok, tc.wantOK)
			}

			if got != tc.want {
				t.Errorf("readVLC() = %d, want %d", got, tc.want)
			}
		})
	}
}
