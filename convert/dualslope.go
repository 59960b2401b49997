// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package convert

import (
	"math"

	"github.com/pkg/errors"
)

// DualSlope is the result of a dual-slope conversion.
//
type DualSlope struct {
	Vin      float64
	Vref     float64
	Bits     int
	T1       float64 // fixed run-up (integration) time
	Code     uint64
	Estimate float64 // Code / (2^Bits - 1) * Vref
}

// T2 returns the run-down (de-integration) time. It only depends on T1 and
// the ratio of the input and reference voltages, not on the integrator
// components.
//
func (d DualSlope) T2() float64 {
	return d.T1 * d.Vin / d.Vref
}

// Integrate converts vin with an n bit dual-slope ADC of reference voltage
// vref, integrating the input for t1 time units. The model is scale
// invariant: t1 can be any positive value.
//
// Inputs outside of [0, vref] saturate the output code.
//
func Integrate(vin, vref float64, n int, t1 float64) DualSlope {
	top := full(n) - 1
	mustVref(vref)
	if !(t1 > 0) {
		panic(errors.Errorf("integration time %v must be positive", t1))
	}
	d := DualSlope{Vin: vin, Vref: vref, Bits: n, T1: t1}
	ratio := d.T2() / t1
	switch {
	case !(ratio > 0):
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	d.Code = uint64(math.Round(ratio * top))
	d.Estimate = float64(d.Code) / top * vref
	return d
}

// RampPoint is a sample of the integrator output.
//
type RampPoint struct {
	T float64
	V float64
}

// Ramp returns the integrator output over the run-up and run-down phases,
// with a unit RC time constant: the output rises at rate Vin for T1, then
// falls at rate Vref for T2 back to zero. Each phase is sampled with the
// given number of points (at least 2), including both ends.
//
func (d DualSlope) Ramp(samples int) []RampPoint {
	if samples < 2 {
		panic(errors.Errorf("ramp needs at least 2 samples per phase, got %d", samples))
	}
	t2 := d.T2()
	peak := d.Vin * d.T1
	out := make([]RampPoint, 0, 2*samples)
	for i := 0; i < samples; i++ {
		t := d.T1 * float64(i) / float64(samples-1)
		out = append(out, RampPoint{T: t, V: d.Vin * t})
	}
	for i := 0; i < samples; i++ {
		t := t2 * float64(i) / float64(samples-1)
		out = append(out, RampPoint{T: d.T1 + t, V: peak - d.Vref*t})
	}
	return out
}
