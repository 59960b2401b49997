// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sigtest provides utility functions for testing trace generators.
//
package sigtest

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/db47h/sigtrace"
)

// Quiescent reports whether a frame is in the idle line state of its protocol.
//
type Quiescent func(f sigtrace.Frame) bool

// AllHigh is a Quiescent for protocols whose lines all idle high (UART, I2C).
//
func AllHigh(f sigtrace.Frame) bool {
	for _, l := range f.Levels() {
		if l != sigtrace.High {
			return false
		}
	}
	return true
}

// LineHigh returns a Quiescent checking only line n, for protocols idling with
// a single inactive-high select line (SPI).
//
func LineHigh(n int) Quiescent {
	return func(f sigtrace.Frame) bool {
		return f.Levels()[n] == sigtrace.High
	}
}

// CheckTrace checks the invariants every generated trace must satisfy:
// non-empty, strictly increasing indices, strictly positive durations, and
// quiescent first and last frames.
//
func CheckTrace(t testing.TB, fs []sigtrace.Frame, idle Quiescent) {
	t.Helper()
	if len(fs) == 0 {
		t.Fatal("empty trace")
	}
	prev := -1
	for _, f := range fs {
		h := f.Head()
		if h.Index <= prev {
			t.Fatalf("frame %d (%s): index not strictly increasing (previous %d)", h.Index, h.Label, prev)
		}
		prev = h.Index
		if !(h.Duration > 0) {
			t.Fatalf("frame %d (%s): duration %v not strictly positive", h.Index, h.Label, h.Duration)
		}
	}
	if !idle(fs[0]) {
		t.Fatalf("trace does not start quiescent: %s", Dump(fs[:1]))
	}
	if !idle(fs[len(fs)-1]) {
		t.Fatalf("trace does not end quiescent: %s", Dump(fs[len(fs)-1:]))
	}
}

// Idempotent calls gen twice and fails if the results differ in any field.
//
func Idempotent(t testing.TB, gen func() interface{}) {
	t.Helper()
	a, b := gen(), gen()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("generator is not deterministic:\n%v\n%v", a, b)
	}
}

// Dump returns a compact, one frame per line representation of a trace,
// suitable for test failure messages.
//
func Dump(fs []sigtrace.Frame) string {
	var b strings.Builder
	for _, f := range fs {
		h := f.Head()
		fmt.Fprintf(&b, "\n%4d %-8s %-8s %4v ", h.Index, h.Label, h.Tag, h.Duration)
		for _, l := range f.Levels() {
			b.WriteString(l.String())
		}
	}
	return b.String()
}
