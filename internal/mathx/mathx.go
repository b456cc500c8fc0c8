// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports lo <= v && v <= hi.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

// MapRound maps x in [inMin,inMax] to [outMin,outMax], rounding to nearest.
// x is clamped to the input range first, so the result always lies in the
// output range. A degenerate input range returns outMin.
func MapRound[T constraints.Signed](x, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	x = Clamp(x, inMin, inMax)
	num := int64(x-inMin) * int64(outMax-outMin)
	den := int64(inMax - inMin)
	if den < 0 {
		num, den = -num, -den
	}
	// Round half away from zero.
	var q int64
	if num >= 0 {
		q = (2*num + den) / (2 * den)
	} else {
		q = -((-2*num + den) / (2 * den))
	}
	return outMin + T(q)
}
