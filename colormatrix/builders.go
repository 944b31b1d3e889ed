package colormatrix

import "github.com/chewxy/math32"

// Luma coefficients shared by grayscale and saturate.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// BuildFunc returns the matrix of an operation given its normalized parameter.
type BuildFunc func(v float32) Matrix

// builders is the dispatch table from operation name to matrix builder.
// A nil entry marks a recognized operation that is not a color matrix.
var builders = map[string]BuildFunc{
	"brightness": Brightness,
	"contrast":   Contrast,
	"grayscale":  Grayscale,
	"sepia":      Sepia,
	"saturate":   Saturate,
	"hue-rotate": HueRotate,
	"blur":       nil,
}

// Builder returns the builder registered for name. known is false for
// unrecognized names. For "blur" known is true and fn is nil since a blur
// samples neighboring pixels and cannot be expressed as a color matrix.
func Builder(name string) (fn BuildFunc, known bool) {
	fn, known = builders[name]
	return fn, known
}

// Brightness scales R, G and B by v. v=1 leaves colors unchanged.
func Brightness(v float32) Matrix {
	return Matrix{
		v, 0, 0, 0, 0,
		0, v, 0, 0, 0,
		0, 0, v, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales R, G and B by v around the midpoint 128.
func Contrast(v float32) Matrix {
	intercept := 128 * (1 - v)
	return Matrix{
		v, 0, 0, 0, intercept,
		0, v, 0, 0, intercept,
		0, 0, v, 0, intercept,
		0, 0, 0, 1, 0,
	}
}

// Grayscale blends identity (v=0) with the luma projection (v=1).
func Grayscale(v float32) Matrix {
	const r, g, b = lumaR, lumaG, lumaB
	return Matrix{
		(1 - v) + v*r, v * g, v * b, 0, 0,
		v * r, (1 - v) + v*g, v * b, 0, 0,
		v * r, v * g, (1 - v) + v*b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Sepia blends identity (v=0) with the sepia tone projection (v=1).
func Sepia(v float32) Matrix {
	return Matrix{
		(1 - v) + v*0.393, v * 0.769, v * 0.189, 0, 0,
		v * 0.349, (1 - v) + v*0.686, v * 0.168, 0, 0,
		v * 0.272, v * 0.534, (1 - v) + v*0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturate interpolates between the luma projection (v=0) and identity (v=1).
// Values above 1 extrapolate, over-saturating the image.
func Saturate(v float32) Matrix {
	const r, g, b = lumaR, lumaG, lumaB
	return Matrix{
		r*(1-v) + v, g * (1 - v), b * (1 - v), 0, 0,
		r * (1 - v), g*(1-v) + v, b * (1 - v), 0, 0,
		r * (1 - v), g * (1 - v), b*(1-v) + v, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// HueRotate rotates hue by deg degrees holding luma fixed, as defined by
// the feColorMatrix hueRotate type of the W3C filter effects module.
func HueRotate(deg float32) Matrix {
	rad := deg * math32.Pi / 180
	c := math32.Cos(rad)
	s := math32.Sin(rad)
	return Matrix{
		0.213 + 0.787*c - 0.213*s, 0.715 - 0.715*c - 0.715*s, 0.072 - 0.072*c + 0.928*s, 0, 0,
		0.213 - 0.213*c + 0.143*s, 0.715 + 0.285*c + 0.140*s, 0.072 - 0.072*c - 0.283*s, 0, 0,
		0.213 - 0.213*c - 0.787*s, 0.715 - 0.715*c + 0.715*s, 0.072 + 0.928*c + 0.072*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}
