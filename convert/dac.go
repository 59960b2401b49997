// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package convert

import (
	"github.com/db47h/sigtrace/internal/bits"
	"github.com/pkg/errors"
)

// Switch is the position of an R-2R ladder bit switch.
//
type Switch uint8

// Switch positions.
//
const (
	Ground Switch = iota
	Reference
)

func (s Switch) String() string {
	if s == Reference {
		return "ref"
	}
	return "gnd"
}

// MarshalText implements encoding.TextMarshaler.
//
func (s Switch) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Ladder is the state of an R-2R ladder DAC for a given input code.
//
type Ladder struct {
	Code     uint64
	Bits     int
	Vref     float64
	Voltage  float64  // Vref * Code / 2^Bits
	Switches []Switch // index 0 is the least significant bit
}

// DAC returns the state of an n bit R-2R ladder with reference voltage vref
// for the given code. The code is masked to n bits.
//
func DAC(code uint64, vref float64, n int) Ladder {
	f := full(n)
	mustVref(vref)
	code = bits.Mask(code, uint(n))
	l := Ladder{
		Code:     code,
		Bits:     n,
		Vref:     vref,
		Voltage:  vref * float64(code) / f,
		Switches: make([]Switch, n),
	}
	for i := range l.Switches {
		if bits.Test(code, uint(i)) {
			l.Switches[i] = Reference
		}
	}
	return l
}

// Weight returns the contribution of bit i to the output voltage, regardless
// of its switch position.
//
func (l Ladder) Weight(i int) float64 {
	return l.Vref * float64(uint64(1)<<uint(i)) / full(l.Bits)
}

// MaxSweepBits is the largest resolution accepted by Sweep.
//
const MaxSweepBits = 16

// Sweep returns the output voltage of an n bit ladder for every code, in code
// order. n must not exceed MaxSweepBits.
//
func Sweep(vref float64, n int) []float64 {
	f := full(n)
	mustVref(vref)
	if n > MaxSweepBits {
		panic(errors.Errorf("cannot sweep %d bits, max is %d", n, MaxSweepBits))
	}
	out := make([]float64, uint64(1)<<uint(n))
	for code := range out {
		out[code] = vref * float64(code) / f
	}
	return out
}
