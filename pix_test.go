package boothpix

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestNewRGBA(t *testing.T) {
	if _, err := NewRGBA(make([]byte, 15), 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
	if _, err := NewRGBA(nil, 0, 2); err == nil {
		t.Error("expected dimension error")
	}
	if _, err := NewRGBA(make([]byte, 16), math.MaxInt/2, 1); err == nil {
		t.Error("expected overflow error for wrapping dimensions")
	}
	img, err := NewRGBA(make([]byte, 16), 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	d := img.Dims()
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if d.Size() != 16 || d.NumPixels() != 4 || d.SizeRow() != 8 {
		t.Errorf("unexpected dims %+v", d)
	}
}

func TestWrapImageSubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range full.Pix {
		full.Pix[i] = uint8(i)
	}
	sub := full.SubImage(image.Rect(2, 1, 5, 3)).(*image.RGBA)
	img := WrapImage(sub)
	if img.Width != 3 || img.Height != 2 || img.Stride != full.Stride {
		t.Fatalf("unexpected wrap %+v", img.Dims())
	}
	row, err := ImageRow(nil, img, 1)
	if err == nil {
		t.Fatal("expected short buffer error")
	}
	row, err = ImageRow(make([]byte, 12), img, 1)
	if err != nil {
		t.Fatal(err)
	}
	off := full.PixOffset(2, 2)
	if !bytes.Equal(row, full.Pix[off:off+12]) {
		t.Errorf("row mismatch: %v", row)
	}
}

func TestRGBAReadAt(t *testing.T) {
	img, _ := NewRGBA([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 2, 1)
	b := make([]byte, 4)
	n, err := img.ReadAt(b, 6)
	if n != 2 || err != io.EOF {
		t.Errorf("got n=%d err=%v", n, err)
	}
	if _, err := img.ReadAt(b, 8); err != io.EOF {
		t.Errorf("expected EOF past end, got %v", err)
	}
	if _, err := img.ReadAt(b, -1); err == nil {
		t.Error("expected negative offset error")
	}
}

func TestValidateProcessArgs(t *testing.T) {
	img, _ := NewRGBA(make([]byte, 4*4*4), 4, 4)
	out := Dims{Width: 4, Height: 4, Stride: 16, Shape: ShapeRGBA8888}
	tests := []struct {
		name    string
		dst     []byte
		dstDims Dims
		roi     *image.Rectangle
		wantErr bool
	}{
		{"in-place", nil, out, nil, false},
		{"in-place roi", nil, out, &image.Rectangle{Max: image.Pt(2, 2)}, true},
		{"in-place shape", nil, Dims{Shape: ShapeRGB888}, nil, true},
		{"small dst", make([]byte, 10), out, nil, true},
		{"roi out of bounds", make([]byte, 64), out, &image.Rectangle{Max: image.Pt(5, 2)}, true},
		{"empty roi", make([]byte, 64), out, &image.Rectangle{}, true},
		{"roi ok", make([]byte, 32), Dims{Stride: 16}, &image.Rectangle{Max: image.Pt(4, 2)}, false},
	}
	for _, tt := range tests {
		_, _, err := ValidateProcessArgs(tt.dst, tt.dstDims, img, tt.roi)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err=%v, wantErr=%v", tt.name, err, tt.wantErr)
		}
	}
}

type mode uint8

func (m mode) String() string { return [...]string{"a", "b", "c"}[m] }

func TestControls(t *testing.T) {
	var changed float32
	slider := &ControlOrdered[float32]{Name: "Level", Min: 0, Max: 10, OnChange: func(v float32) error {
		changed = v
		return nil
	}}
	if err := slider.ChangeValue(float32(5)); err != nil || changed != 5 || slider.ActualValue() != float32(5) {
		t.Errorf("slider change failed: %v", err)
	}
	if err := slider.ChangeValue(float32(11)); err == nil {
		t.Error("expected limit error")
	}
	if err := slider.ChangeValue("5"); err == nil {
		t.Error("expected type error")
	}
	if name, _ := slider.Describe(); name != "Level" {
		t.Errorf("unexpected name %q", name)
	}

	dropdown := &ControlEnum[mode]{ValidValues: []mode{0, 2}}
	if err := dropdown.ChangeValue(mode(2)); err != nil || dropdown.ActualValue() != mode(2) {
		t.Errorf("enum change failed: %v", err)
	}
	if err := dropdown.ChangeValue(mode(1)); err == nil {
		t.Error("expected invalid value error")
	}
}

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	Logger().Debug("hello", "k", 1)
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output, got %q", buf.String())
	}
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}
