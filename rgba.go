package boothpix

import (
	"fmt"
	"image"
	"io"
	"math"
)

// RGBA is an in-memory interleaved 8-bit RGBA pixel buffer. It implements [ImageBuffered].
// The buffer is owned by the caller; filters processing an RGBA in place mutate Pix.
type RGBA struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

var _ ImageBuffered = (*RGBA)(nil)

// NewRGBA wraps a tightly packed RGBA buffer of width*height*4 bytes.
func NewRGBA(pix []byte, width, height int) (*RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	} else if width > math.MaxInt/4/height {
		return nil, fmt.Errorf("dimensions %dx%d overflow int", width, height)
	}
	if want := width * height * 4; len(pix) != want {
		return nil, fmt.Errorf("rgba buffer length %d does not match %dx%dx4=%d", len(pix), width, height, want)
	}
	return &RGBA{Pix: pix, Width: width, Height: height, Stride: width * 4}, nil
}

// WrapImage returns an RGBA sharing memory with img. Sub-images are supported.
func WrapImage(img *image.RGBA) *RGBA {
	b := img.Bounds()
	return &RGBA{Pix: img.Pix, Width: b.Dx(), Height: b.Dy(), Stride: img.Stride}
}

func (p *RGBA) Dims() Dims {
	return Dims{Width: p.Width, Height: p.Height, Stride: p.Stride, Shape: ShapeRGBA8888}
}

func (p *RGBA) Buffer() []byte { return p.Pix }

func (p *RGBA) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	} else if off >= int64(len(p.Pix)) {
		return 0, io.EOF
	}
	n := copy(b, p.Pix[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}
