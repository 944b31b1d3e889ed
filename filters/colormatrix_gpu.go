package filters

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/soypat/boothpix"
	"github.com/soypat/boothpix/colormatrix"
)

// colorMatrixTransform applies the uniform color matrix in 0..255 space so
// offsets match the CPU path. pack4x8unorm clamps and rounds the result.
const colorMatrixTransform = `
fn transform(c: vec4<f32>) -> vec4<f32> {
    let p = c.rgb * 255.0;
    let r = p.r * coef(0u) + p.g * coef(1u) + p.b * coef(2u) + coef(4u);
    let g = p.r * coef(5u) + p.g * coef(6u) + p.b * coef(7u) + coef(9u);
    let b = p.r * coef(10u) + p.g * coef(11u) + p.b * coef(12u) + coef(14u);
    return vec4<f32>(clamp(vec3<f32>(r, g, b) / 255.0, vec3<f32>(0.0), vec3<f32>(1.0)), c.a);
}
`

// ColorMatrixFilterGPU applies a cumulative color matrix using GPU compute.
// Alpha is passed through unchanged.
type ColorMatrixFilterGPU struct {
	PointFilterGPU
	matrix colormatrix.Matrix
	desc   string
	custom string
	ctrls  []boothpix.Control
}

// NewColorMatrixGPU creates a GPU-accelerated filter applying the chain described by desc.
func NewColorMatrixGPU(device *wgpu.Device, queue *wgpu.Queue, desc string) (*ColorMatrixFilterGPU, error) {
	f := &ColorMatrixFilterGPU{}
	if err := f.Init(device, queue, colorMatrixTransform); err != nil {
		return nil, err
	}
	f.SetDescription(desc)
	p := matchPreset(desc)
	if p == colormatrix.PresetCustom {
		f.custom = desc
	}
	f.ctrls = []boothpix.Control{
		&boothpix.ControlEnum[colormatrix.Preset]{
			Name:        "Preset",
			Description: "Filter chain applied on the GPU",
			Value:       p,
			ValidValues: presetValues(f.custom != ""),
			OnChange: func(p colormatrix.Preset) error {
				if p == colormatrix.PresetCustom {
					f.SetDescription(f.custom)
				} else {
					f.SetDescription(p.Description())
				}
				return nil
			},
		},
	}
	return f, nil
}

// SetDescription parses desc and uploads its cumulative matrix on the next Process.
func (f *ColorMatrixFilterGPU) SetDescription(desc string) {
	f.desc = desc
	f.SetMatrix(colormatrix.Parse(desc).Matrix())
}

// Description returns the last description set. It is empty if only SetMatrix was used.
func (f *ColorMatrixFilterGPU) Description() string { return f.desc }

// SetMatrix sets the color matrix directly.
func (f *ColorMatrixFilterGPU) SetMatrix(m colormatrix.Matrix) {
	f.matrix = m
	f.SetMatrixParams(m)
}

// Matrix returns the current color matrix.
func (f *ColorMatrixFilterGPU) Matrix() colormatrix.Matrix {
	return f.matrix
}

// Controls returns the filter's adjustable parameters.
func (f *ColorMatrixFilterGPU) Controls() []boothpix.Control {
	return f.ctrls
}

// ProcessImage is a convenience method matching common image processing signatures.
// Identity matrices skip the GPU round trip and return img unchanged.
func (f *ColorMatrixFilterGPU) ProcessImage(img *image.RGBA) (*image.RGBA, error) {
	if f.matrix.IsIdentity() {
		return img, nil
	}
	return f.Process(img)
}
