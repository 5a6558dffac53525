package common

import "cmp"

// Clamp limits v to the closed interval [lo, hi].
// If hi < lo, lo wins.
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - T: the clamped value
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// SwapRedBlue swaps the first and third byte of every 4-byte pixel in place, converting RGBA to BGRA and back.
//
// Parameters:
//   - pix: packed 4-byte pixels; a trailing partial pixel is left untouched
func SwapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
