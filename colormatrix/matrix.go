package colormatrix

// Matrix is an affine color transform from (R,G,B,A) to (R,G,B,A) stored as
// 4 rows of 5 coefficients, row-major. Rows are the output channels R,G,B,A and
// columns are [inR, inG, inB, inA, offset]. Offsets are in 0..255 units.
//
// The alpha row of every Matrix produced by this package is [0,0,0,1,0].
type Matrix [20]float32

// Identity leaves every color unchanged.
var Identity = Matrix{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// At returns the coefficient at output row r and column c.
func (m Matrix) At(r, c int) float32 { return m[r*5+c] }

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool { return m == Identity }

// Then returns the matrix equivalent to applying m followed by next.
func (m Matrix) Then(next Matrix) Matrix { return Concat(m, next) }

// Concat returns the matrix equivalent to applying first and then then,
// that is the affine product then∘first. Offsets of then are added unscaled
// since they apply after the linear part.
func Concat(first, then Matrix) Matrix {
	var result Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += then[r*5+k] * first[k*5+c]
			}
			if c == 4 {
				sum += then[r*5+4]
			}
			result[r*5+c] = sum
		}
	}
	return result
}

// Transform maps a single color through m, returning clamped and rounded
// channels. Alpha is not an input to the color rows of supported operations.
func (m *Matrix) Transform(r, g, b uint8) (uint8, uint8, uint8) {
	fr, fg, fb := float32(r), float32(g), float32(b)
	return clamp8(fr*m[0] + fg*m[1] + fb*m[2] + m[4]),
		clamp8(fr*m[5] + fg*m[6] + fb*m[7] + m[9]),
		clamp8(fr*m[10] + fg*m[11] + fb*m[12] + m[14])
}

// clamp8 clamps v to [0,255] and rounds half up. NaN maps to 0.
func clamp8(v float32) uint8 {
	if !(v > 0) {
		return 0
	} else if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
