// Package fixedpoint implements deterministic Q16.16 signed fixed-point
// arithmetic used throughout the simulation engine in place of floats.
package fixedpoint

import "math"

// Fixed is a Q16.16 signed fixed-point number: 16 integer bits, 16
// fractional bits, packed into an int32.
type Fixed int32

const (
	// FractionalBits is the number of bits reserved for the fractional part.
	FractionalBits = 16
	// Scale is 2^FractionalBits, the unit used to convert to and from real values.
	Scale = 1 << FractionalBits

	maxFixed = Fixed(math.MaxInt32)
	minFixed = Fixed(math.MinInt32)
)

// FromFloat converts a real value to Q16.16, saturating at the signed
// 32-bit limits rather than overflowing.
func FromFloat(x float64) Fixed {
	scaled := x * float64(Scale)
	if scaled >= float64(maxFixed) {
		return maxFixed
	}
	if scaled <= float64(minFixed) {
		return minFixed
	}
	return Fixed(scaled)
}

// ToFloat converts a Q16.16 value back to a real value.
func (f Fixed) ToFloat() float64 {
	return float64(f) / float64(Scale)
}

// Add performs a saturating 32-bit add.
func (f Fixed) Add(other Fixed) Fixed {
	sum := int64(f) + int64(other)
	return saturate32(sum)
}

// Sub performs a saturating 32-bit subtract.
func (f Fixed) Sub(other Fixed) Fixed {
	diff := int64(f) - int64(other)
	return saturate32(diff)
}

// Mul widens to signed 64-bit, multiplies, shifts right by FractionalBits,
// and saturates the result back to 32 bits.
func (f Fixed) Mul(other Fixed) Fixed {
	product := (int64(f) * int64(other)) >> FractionalBits
	return saturate32(product)
}

func saturate32(v int64) Fixed {
	if v > int64(maxFixed) {
		return maxFixed
	}
	if v < int64(minFixed) {
		return minFixed
	}
	return Fixed(v)
}
