package colormatrix

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/soypat/boothpix"
)

// Operation is a single parsed filter function such as brightness(110%).
// Value is normalized: percentages are divided by 100 and hue-rotate
// angles are in degrees.
type Operation struct {
	Name  string
	Value float32
}

// Applied reports whether the operation contributes a color matrix.
// It is false for blur and for unrecognized names.
func (op Operation) Applied() bool {
	fn, _ := Builder(op.Name)
	return fn != nil
}

// Matrix returns the matrix of the operation or Identity if it is not applied.
func (op Operation) Matrix() Matrix {
	fn, _ := Builder(op.Name)
	if fn == nil {
		return Identity
	}
	return fn(op.Value)
}

func (op Operation) String() string {
	v := op.Value
	var unit string
	switch fn, known := Builder(op.Name); {
	case op.Name == "hue-rotate":
		unit = "deg"
	case op.Name == "blur":
		unit = "px"
	case known && fn != nil:
		unit = "%"
		v *= 100
	}
	return op.Name + "(" + strconv.FormatFloat(float64(v), 'g', -1, 32) + unit + ")"
}

// Chain is an ordered sequence of operations. Order is significant:
// each operation applies to the output of the ones before it.
type Chain []Operation

// tokenRE matches function-call-like tokens name(value).
var tokenRE = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9-]*)\(([^)]*)\)`)

// Parse extracts the filter functions of desc in left-to-right order.
// Parsing is lenient: tokens without a numeric value are dropped and
// unknown names are kept so callers may inspect them, but they never
// contribute to [Chain.Matrix]. An empty desc or "none" yields an empty Chain.
func Parse(desc string) Chain {
	desc = strings.TrimSpace(desc)
	if desc == "" || strings.EqualFold(desc, "none") {
		return nil
	}
	log := boothpix.Logger()
	var chain Chain
	for _, match := range tokenRE.FindAllStringSubmatch(desc, -1) {
		name := strings.ToLower(match[1])
		arg := strings.TrimSpace(match[2])
		v, unit, ok := leadingFloat(arg)
		if !ok {
			log.Debug("colormatrix: skipping malformed token", "token", match[0])
			continue
		}
		if name == "hue-rotate" {
			v = toDegrees(v, unit)
		} else if strings.Contains(unit, "%") {
			v /= 100
		}
		chain = append(chain, Operation{Name: name, Value: float32(v)})
	}
	return chain
}

// Matrix composes the chain into a single cumulative matrix. Each new
// operation is applied to the already filtered color: M_total = M_new∘M_total.
func (c Chain) Matrix() Matrix {
	m := Identity
	for _, op := range c {
		fn, known := Builder(op.Name)
		if fn == nil {
			if !known {
				boothpix.Logger().Debug("colormatrix: skipping unknown operation", "name", op.Name)
			}
			continue
		}
		m = Concat(m, fn(op.Value))
	}
	return m
}

// Applied returns the operations of c that contribute to its matrix.
func (c Chain) Applied() Chain {
	var applied Chain
	for _, op := range c {
		if op.Applied() {
			applied = append(applied, op)
		}
	}
	return applied
}

// String returns the canonical description of the chain. An empty chain is "none".
func (c Chain) String() string {
	if len(c) == 0 {
		return "none"
	}
	var sb strings.Builder
	for i, op := range c {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

// leadingFloat parses the longest numeric prefix of s, returning the
// remainder as unit. ok is false if s does not start with a number.
func leadingFloat(s string) (v float64, unit string, ok bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, "", false
	}
	// Exponent only if followed by at least one digit.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.TrimSpace(s[end:]), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// toDegrees converts a CSS angle to degrees. Unitless and unknown units are degrees.
func toDegrees(v float64, unit string) float64 {
	switch strings.ToLower(unit) {
	case "rad":
		return v * 180 / math.Pi
	case "grad":
		return v * 0.9
	case "turn":
		return v * 360
	}
	return v
}
