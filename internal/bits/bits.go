// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package bits provides generic bit manipulation helpers.
//
package bits

import "golang.org/x/exp/constraints"

// Mask truncates v to its n least significant bits.
//
func Mask[T constraints.Unsigned](v T, n uint) T {
	if n >= 64 {
		return v
	}
	return v & (T(1)<<n - 1)
}

// Test returns true if bit i of v is set.
//
func Test[T constraints.Integer](v T, i uint) bool {
	return v>>i&1 != 0
}

// MSBFirst returns the bit positions of an n bit word in transmission order,
// most significant bit first.
//
func MSBFirst(n int) []uint {
	out := make([]uint, n)
	for i := range out {
		out[i] = uint(n - 1 - i)
	}
	return out
}

// FromBits assembles a word from bits given most significant bit first.
//
func FromBits[T constraints.Unsigned](msbFirst []bool) T {
	var v T
	for _, b := range msbFirst {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}
