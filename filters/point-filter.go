package filters

import (
	"errors"
	"image"

	"github.com/soypat/boothpix"
)

var errShapeMismatch = errors.New("pixel shape mismatch")

// PointFunc processes a contiguous row of pixels.
// dst and src contain the same number of pixels and may alias for in-place processing.
// The function should iterate through pixels: for i := 0; i < len(src); i += bytesPerPixel { ... }
type PointFunc func(dst, src []byte)

// PointFilter applies a per-pixel transformation using a callback function.
// It handles the iteration, buffering, and ROI logic common to all per-pixel filters.
// The callback is invoked once per row with contiguous pixel data.
type PointFilter struct {
	In    boothpix.Shape
	Out   boothpix.Shape
	Fn    PointFunc
	Ctrls []boothpix.Control
}

var _ boothpix.Filter = (*PointFilter)(nil)

// ShapeIO implements [boothpix.Filter].
func (f *PointFilter) ShapeIO() (output, input boothpix.Shape) {
	return f.Out, f.In
}

// Controls implements [boothpix.Filter].
func (f *PointFilter) Controls() []boothpix.Control {
	return f.Ctrls
}

// Process implements [boothpix.Filter]. When dst is nil src is processed in place,
// keeping the source stride.
func (f *PointFilter) Process(dst []byte, src boothpix.Image, roi *image.Rectangle) (boothpix.Dims, error) {
	if f.Fn == nil {
		return boothpix.Dims{}, errNilPixelFunc
	}

	outShape, inShape := f.ShapeIO()
	srcDims := src.Dims()
	if srcDims.Shape != inShape {
		return boothpix.Dims{}, errShapeMismatch
	}

	inBytesPerPixel := inShape.BytesPerPixel()
	outBytesPerPixel := outShape.BytesPerPixel()

	var outWidth, outHeight int
	if roi != nil {
		outWidth, outHeight = roi.Dx(), roi.Dy()
	} else {
		outWidth, outHeight = srcDims.Width, srcDims.Height
	}
	outStride := outWidth * outBytesPerPixel
	if dst == nil && srcDims.Stride > outStride {
		outStride = srcDims.Stride
	}

	dstDims := boothpix.Dims{
		Width:  outWidth,
		Height: outHeight,
		Stride: outStride,
		Shape:  outShape,
	}

	// Size is checked against the tight layout since the last in-place row may be short.
	check := dstDims
	check.Stride = outWidth * outBytesPerPixel
	dst, _, err := boothpix.ValidateProcessArgs(dst, check, src, roi)
	if err != nil {
		return boothpix.Dims{}, err
	}

	startX, startY := 0, 0
	endX, endY := srcDims.Width, srcDims.Height
	if roi != nil {
		startX, startY = roi.Min.X, roi.Min.Y
		endX, endY = roi.Max.X, roi.Max.Y
	}

	var srcBuf []byte
	if buffered, ok := src.(boothpix.ImageBuffered); ok {
		srcBuf = buffered.Buffer()
	}

	srcRowBytes := srcDims.SizeRow()
	rowBuf := make([]byte, srcRowBytes) // Fallback buffer for ReadAt.
	rowOutBytes := outWidth * outBytesPerPixel

	for y := startY; y < endY; y++ {
		var srcRow []byte
		srcRowStart := y * srcDims.Stride
		if srcBuf != nil {
			srcRow = srcBuf[srcRowStart : srcRowStart+srcRowBytes]
		} else {
			_, err := src.ReadAt(rowBuf, int64(srcRowStart))
			if err != nil {
				return boothpix.Dims{}, err
			}
			srcRow = rowBuf
		}

		dstRowStart := (y - startY) * outStride
		srcStart := startX * inBytesPerPixel
		srcEnd := endX * inBytesPerPixel
		f.Fn(dst[dstRowStart:dstRowStart+rowOutBytes], srcRow[srcStart:srcEnd])
	}

	return dstDims, nil
}

var errNilPixelFunc = errorString("nil PointFunc")

type errorString string

func (e errorString) Error() string { return string(e) }
