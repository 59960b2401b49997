// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package convert

import (
	"math"

	"github.com/db47h/sigtrace"
)

// Step is one comparison of a successive approximation conversion.
//
type Step struct {
	Bit    int            // bit under test, from n-1 down to 0
	Trial  float64        // trial voltage compared to the input
	Keep   sigtrace.Level // High if the bit was kept
	Approx float64        // running approximation after this step
}

// SAR is the result of a successive approximation conversion.
//
type SAR struct {
	Vin   float64
	Vref  float64
	Bits  int
	Code  uint64
	Steps []Step  // exactly Bits steps, most significant bit first
	LSB   float64 // Vref / 2^Bits
}

// Approx returns the analog estimate of the conversion: the running
// approximation after the last step.
//
func (r SAR) Approx() float64 {
	return r.Steps[len(r.Steps)-1].Approx
}

// Error returns the quantization error, Vin - Approx().
//
func (r SAR) Error() float64 {
	return r.Vin - r.Approx()
}

// SuccessiveApproximation converts vin with an n bit successive approximation
// ADC of reference voltage vref.
//
// Each step tests one bit, most significant first: the trial voltage is the
// running approximation plus the bit weight. The bit is kept if vin is
// greater than or equal to the trial voltage. The conversion always takes
// exactly n steps.
//
func SuccessiveApproximation(vin, vref float64, n int) SAR {
	f := full(n)
	mustVref(vref)
	r := SAR{
		Vin:   vin,
		Vref:  vref,
		Bits:  n,
		Steps: make([]Step, 0, n),
		LSB:   vref / f,
	}
	var approx float64
	for bit := n - 1; bit >= 0; bit-- {
		s := Step{Bit: bit, Trial: approx + math.Ldexp(vref, -(n-bit))}
		s.Keep = sigtrace.LevelOf(vin >= s.Trial)
		r.Code = r.Code<<1 | uint64(s.Keep)
		if s.Keep == sigtrace.High {
			approx = s.Trial
		}
		s.Approx = approx
		r.Steps = append(r.Steps, s)
	}
	return r
}
