package colormatrix

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	// ErrDimensions is returned for non-positive image dimensions.
	ErrDimensions = errors.New("colormatrix: invalid image dimensions")
	// ErrBufferSize is returned when a buffer length does not match its dimensions.
	ErrBufferSize = errors.New("colormatrix: pixel buffer size mismatch")
)

// Apply parses desc and applies the resulting filter chain in place to pix,
// an interleaved 8-bit RGBA buffer of width*height pixels. Alpha bytes are
// never modified. Apply only fails on a malformed buffer; any description is
// accepted and unrecognized parts of it are ignored.
func Apply(pix []byte, width, height int, desc string) error {
	if err := checkBuffer(pix, width, height); err != nil {
		return err
	}
	m := Parse(desc).Matrix()
	if m.IsIdentity() {
		return nil
	}
	ApplyMatrix(pix, m)
	return nil
}

// Filtered is like Apply but leaves pix untouched and returns a new buffer
// with the filtered pixels.
func Filtered(pix []byte, width, height int, desc string) ([]byte, error) {
	if err := checkBuffer(pix, width, height); err != nil {
		return nil, err
	}
	out := make([]byte, len(pix))
	copy(out, pix)
	m := Parse(desc).Matrix()
	if !m.IsIdentity() {
		ApplyMatrix(out, m)
	}
	return out, nil
}

// ApplyImage applies desc in place to img. Sub-images with a stride larger
// than their row size are supported.
func ApplyImage(img *image.RGBA, desc string) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: %v", ErrDimensions, b)
	}
	m := Parse(desc).Matrix()
	if m.IsIdentity() {
		return nil
	}
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		off := y * img.Stride
		if off+rowLen > len(img.Pix) {
			return fmt.Errorf("%w: row %d exceeds buffer of %d bytes", ErrBufferSize, y, len(img.Pix))
		}
		ApplyMatrix(img.Pix[off:off+rowLen], m)
	}
	return nil
}

// ApplyMatrix applies m in place to every pixel of an RGBA8888 buffer.
// Trailing bytes that do not form a whole pixel are left untouched.
// Results are clamped to [0,255]; alpha bytes are never modified.
func ApplyMatrix(pix []byte, m Matrix) {
	r1, r2, r3, r5 := m[0], m[1], m[2], m[4]
	g1, g2, g3, g5 := m[5], m[6], m[7], m[9]
	b1, b2, b3, b5 := m[10], m[11], m[12], m[14]
	n := len(pix) &^ 3
	for i := 0; i < n; i += 4 {
		p := pix[i : i+3 : i+3]
		r, g, b := float32(p[0]), float32(p[1]), float32(p[2])
		p[0] = clamp8(r*r1 + g*r2 + b*r3 + r5)
		p[1] = clamp8(r*g1 + g*g2 + b*g3 + g5)
		p[2] = clamp8(r*b1 + g*b2 + b*b3 + b5)
	}
}

// ApplyMatrixRGB is ApplyMatrix for tightly packed RGB888 buffers.
func ApplyMatrixRGB(pix []byte, m Matrix) {
	n := len(pix) - len(pix)%3
	for i := 0; i < n; i += 3 {
		pix[i], pix[i+1], pix[i+2] = m.Transform(pix[i], pix[i+1], pix[i+2])
	}
}

func checkBuffer(pix []byte, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if len(pix)%4 != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of 4", ErrBufferSize, len(pix))
	}
	if width > math.MaxInt/4/height {
		return fmt.Errorf("%w: %dx%dx4 overflows int", ErrDimensions, width, height)
	}
	if want := width * height * 4; len(pix) != want {
		return fmt.Errorf("%w: got %d bytes, want %dx%dx4=%d", ErrBufferSize, len(pix), width, height, want)
	}
	return nil
}
