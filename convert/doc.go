// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package convert simulates data converters: an R-2R ladder DAC, a successive
// approximation ADC and a dual-slope integrating ADC.
//
// All functions are pure. Digital codes are masked to the converter
// resolution, never rejected. A resolution outside of [1, 32] bits, a
// non-positive reference voltage or integration time are programming errors
// and cause a panic.
//
package convert

import (
	"github.com/db47h/sigtrace"
	"github.com/pkg/errors"
)

func mustVref(vref float64) {
	if !(vref > 0) {
		panic(errors.Errorf("reference voltage %v must be positive", vref))
	}
}

// full returns 2^n.
func full(n int) float64 {
	sigtrace.MustResolution(n)
	return float64(uint64(1) << uint(n))
}
