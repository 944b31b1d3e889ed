package filters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soypat/boothpix"
	"github.com/soypat/boothpix/colormatrix"
)

// ColorMatrixFilter applies a filter chain description as a single
// cumulative color matrix. The chain is the base description (a preset or
// a custom description) followed by the slider adjustments exposed as controls.
//
// A description that matches no preset is reported by the Preset control as
// [colormatrix.PresetCustom], which stays selectable so switching to a preset
// and back restores the custom chain.
type ColorMatrixFilter struct {
	PointFilter
	base   string
	custom string
	preset colormatrix.Preset
	adjust adjustments
	matrix colormatrix.Matrix

	presetCtrl *boothpix.ControlEnum[colormatrix.Preset]
}

// adjustments are slider values. Percentages for brightness, contrast and
// saturate where 100 is neutral, degrees for hue.
type adjustments struct {
	brightness float32
	contrast   float32
	saturate   float32
	hue        float32
}

var neutral = adjustments{brightness: 100, contrast: 100, saturate: 100}

// NewColorMatrix creates a filter applying desc to pixels of the given shape,
// which must be [boothpix.ShapeRGBA8888] or [boothpix.ShapeRGB888].
func NewColorMatrix(shape boothpix.Shape, desc string) (*ColorMatrixFilter, error) {
	var apply func(pix []byte, m colormatrix.Matrix)
	switch shape {
	case boothpix.ShapeRGBA8888:
		apply = colormatrix.ApplyMatrix
	case boothpix.ShapeRGB888:
		apply = colormatrix.ApplyMatrixRGB
	default:
		return nil, fmt.Errorf("color matrix: unsupported shape %v", shape)
	}
	f := &ColorMatrixFilter{adjust: neutral}
	f.setBase(desc)
	f.PointFilter = PointFilter{
		In:  shape,
		Out: shape,
		Fn: func(dst, src []byte) {
			copy(dst, src)
			if !f.matrix.IsIdentity() {
				apply(dst, f.matrix)
			}
		},
	}
	f.Ctrls = f.newControls()
	f.rebuild()
	return f, nil
}

// NewPreset creates a filter applying the chain of preset p.
func NewPreset(shape boothpix.Shape, p colormatrix.Preset) (*ColorMatrixFilter, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("color matrix: invalid preset %d", p)
	}
	f, err := NewColorMatrix(shape, p.Description())
	if err != nil {
		return nil, err
	}
	f.preset = p
	f.presetCtrl.Value = p
	return f, nil
}

// setBase sets the base description and the preset it corresponds to.
// Descriptions matching no preset become the custom chain.
func (f *ColorMatrixFilter) setBase(desc string) {
	f.base = desc
	f.preset = matchPreset(desc)
	if f.preset == colormatrix.PresetCustom {
		f.custom = desc
	}
}

// matchPreset returns the preset whose chain is desc, or PresetCustom.
func matchPreset(desc string) colormatrix.Preset {
	if isNone(desc) {
		return colormatrix.PresetNormal
	}
	desc = strings.TrimSpace(desc)
	for _, info := range colormatrix.Presets() {
		if info.Description == desc {
			return info.Preset
		}
	}
	return colormatrix.PresetCustom
}

func isNone(desc string) bool {
	desc = strings.TrimSpace(desc)
	return desc == "" || strings.EqualFold(desc, "none")
}

func (f *ColorMatrixFilter) newControls() []boothpix.Control {
	percent := func(name, desc string, v *float32) *boothpix.ControlOrdered[float32] {
		return &boothpix.ControlOrdered[float32]{
			Name:        name,
			Description: desc,
			Value:       *v,
			Min:         0,
			Max:         200,
			Step:        1,
			OnChange: func(nv float32) error {
				*v = nv
				f.rebuild()
				return nil
			},
		}
	}
	f.presetCtrl = &boothpix.ControlEnum[colormatrix.Preset]{
		Name:        "Preset",
		Description: "Base filter chain",
		Value:       f.preset,
		ValidValues: presetValues(f.custom != ""),
		OnChange: func(p colormatrix.Preset) error {
			f.preset = p
			if p == colormatrix.PresetCustom {
				f.base = f.custom
			} else {
				f.base = p.Description()
			}
			f.rebuild()
			return nil
		},
	}
	return []boothpix.Control{
		f.presetCtrl,
		percent("Brightness", "Brightness in percent applied after the preset", &f.adjust.brightness),
		percent("Contrast", "Contrast in percent applied after brightness", &f.adjust.contrast),
		percent("Saturation", "Saturation in percent applied after contrast", &f.adjust.saturate),
		&boothpix.ControlOrdered[float32]{
			Name:        "Hue",
			Description: "Hue rotation in degrees applied last",
			Value:       f.adjust.hue,
			Min:         -180,
			Max:         180,
			Step:        1,
			OnChange: func(nv float32) error {
				f.adjust.hue = nv
				f.rebuild()
				return nil
			},
		},
	}
}

// presetValues lists the table presets, followed by PresetCustom when a
// custom chain can be restored.
func presetValues(custom bool) []colormatrix.Preset {
	infos := colormatrix.Presets()
	values := make([]colormatrix.Preset, len(infos), len(infos)+1)
	for i, info := range infos {
		values[i] = info.Preset
	}
	if custom {
		values = append(values, colormatrix.PresetCustom)
	}
	return values
}

// SetDescription replaces the base description. Slider adjustments are kept.
func (f *ColorMatrixFilter) SetDescription(desc string) {
	f.setBase(desc)
	f.presetCtrl.Value = f.preset
	f.presetCtrl.ValidValues = presetValues(f.custom != "")
	f.rebuild()
}

// Description returns the effective filter chain description.
func (f *ColorMatrixFilter) Description() string {
	var parts []string
	if !isNone(f.base) {
		parts = append(parts, strings.TrimSpace(f.base))
	}
	a := f.adjust
	if a.brightness != neutral.brightness {
		parts = append(parts, "brightness("+formatFloat(a.brightness)+"%)")
	}
	if a.contrast != neutral.contrast {
		parts = append(parts, "contrast("+formatFloat(a.contrast)+"%)")
	}
	if a.saturate != neutral.saturate {
		parts = append(parts, "saturate("+formatFloat(a.saturate)+"%)")
	}
	if a.hue != neutral.hue {
		parts = append(parts, "hue-rotate("+formatFloat(a.hue)+"deg)")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// Matrix returns the cumulative matrix currently applied.
func (f *ColorMatrixFilter) Matrix() colormatrix.Matrix { return f.matrix }

func (f *ColorMatrixFilter) rebuild() {
	desc := f.Description()
	f.matrix = colormatrix.Parse(desc).Matrix()
	boothpix.Logger().Debug("color matrix rebuilt", "description", desc, "identity", f.matrix.IsIdentity())
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
