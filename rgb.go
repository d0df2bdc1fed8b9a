package mpeg

// pixelLayout describes the byte order of an interleaved pixel format.
type pixelLayout struct {
	bpp     int // bytes per pixel
	r, g, b int // byte offsets within a pixel
}

var (
	layoutRGB  = pixelLayout{bpp: 3, r: 0, g: 1, b: 2}
	layoutBGR  = pixelLayout{bpp: 3, r: 2, g: 1, b: 0}
	layoutRGBA = pixelLayout{bpp: 4, r: 0, g: 1, b: 2}
	layoutBGRA = pixelLayout{bpp: 4, r: 2, g: 1, b: 0}
	layoutARGB = pixelLayout{bpp: 4, r: 1, g: 2, b: 3}
	layoutABGR = pixelLayout{bpp: 4, r: 3, g: 2, b: 1}
)

// ToRGB converts the frame to packed RGB. dst must hold stride*Height bytes,
// stride is the length of one row in bytes (at least 3*Width).
func (f *Frame) ToRGB(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutRGB)
}

// ToBGR converts the frame to packed BGR. See ToRGB.
func (f *Frame) ToBGR(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutBGR)
}

// ToRGBA converts the frame to RGBA, 4 bytes per pixel. The alpha bytes of dst are left as they are.
func (f *Frame) ToRGBA(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutRGBA)
}

// ToBGRA converts the frame to BGRA. See ToRGBA.
func (f *Frame) ToBGRA(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutBGRA)
}

// ToARGB converts the frame to ARGB. See ToRGBA.
func (f *Frame) ToARGB(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutARGB)
}

// ToABGR converts the frame to ABGR. See ToRGBA.
func (f *Frame) ToABGR(dst []byte, stride int) {
	f.convert(dst, stride, f.Width, f.Height, layoutABGR)
}

// convert writes the top left width x height pixels of the frame in layout l.
// Pixels are converted in 2x2 blocks sharing one chroma sample, using an
// integer approximation of BT.601.
func (f *Frame) convert(dst []byte, stride, width, height int, l pixelLayout) {
	cols := width >> 1
	rows := height >> 1
	yw := f.Y.Width
	cw := f.Cb.Width

	put := func(y, r, g, b, di int) {
		dst[di+l.r] = clip(int32(y + r))
		dst[di+l.g] = clip(int32(y - g))
		dst[di+l.b] = clip(int32(y + b))
	}

	for row := 0; row < rows; row++ {
		ci := row * cw
		yi := row * 2 * yw
		di := row * 2 * stride

		for col := 0; col < cols; col++ {
			cr := int(f.Cr.Data[ci])
			cb := int(f.Cb.Data[ci])

			r := (cr + ((cr * 103) >> 8)) - 179
			g := ((cb * 88) >> 8) - 44 + ((cr * 183) >> 8) - 91
			b := (cb + ((cb * 198) >> 8)) - 227

			put(int(f.Y.Data[yi]), r, g, b, di)
			put(int(f.Y.Data[yi+1]), r, g, b, di+l.bpp)
			put(int(f.Y.Data[yi+yw]), r, g, b, di+stride)
			put(int(f.Y.Data[yi+yw+1]), r, g, b, di+stride+l.bpp)

			ci++
			yi += 2
			di += 2 * l.bpp
		}
	}
}
