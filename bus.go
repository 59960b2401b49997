// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sigtrace

import "github.com/pkg/errors"

// Bus is a set of named lines whose states are updated in lock-step.
//
// Line states are double buffered: Set and Drive update the state of the next
// frame while Get returns the state of the current frame. Step commits the
// next state and returns it as a new frame. Lines that are not updated between
// two steps keep their level.
//
// A Bus also numbers the frames it produces. Generators must create a new Bus
// for every trace so that frame indices never leak from one trace to another.
//
type Bus struct {
	names []string
	m     map[string]int
	s0    []Level   // line states, current frame
	s1    []Level   // line states, next frame
	od0   [][]Level // open-drain driver outputs, current frame
	od1   [][]Level // open-drain driver outputs, next frame
	tick  int
}

// NewBus returns a new bus with the given line names. All lines start high.
// Line names must be distinct.
//
func NewBus(names ...string) *Bus {
	b := &Bus{
		names: names,
		m:     make(map[string]int, len(names)),
		s0:    make([]Level, len(names)),
		s1:    make([]Level, len(names)),
		od0:   make([][]Level, len(names)),
		od1:   make([][]Level, len(names)),
	}
	for i, n := range names {
		if _, ok := b.m[n]; ok {
			panic(errors.Errorf("duplicate line name %q", n))
		}
		b.m[n] = i
		b.s0[i] = High
		b.s1[i] = High
	}
	return b
}

// Line returns the line number for the given name.
// This function panics if the line does not exist.
//
func (b *Bus) Line(name string) int {
	n, ok := b.m[name]
	if !ok {
		panic("line " + name + " does not exist")
	}
	return n
}

// Names returns the line names, in line number order.
//
func (b *Bus) Names() []string {
	return append([]string(nil), b.names...)
}

// OpenDrain turns line n into an open-drain line with the given number of
// drivers. The line level is the wired-AND of all driver outputs. All drivers
// start released (high).
//
func (b *Bus) OpenDrain(n int, drivers int) {
	if drivers < 1 {
		panic(errors.Errorf("line %s: open-drain line needs at least one driver", b.names[n]))
	}
	b.od0[n] = make([]Level, drivers)
	b.od1[n] = make([]Level, drivers)
	for i := range b.od0[n] {
		b.od0[n][i] = High
		b.od1[n][i] = High
	}
	b.s1[n] = High
}

// Set sets the next state of push-pull line n.
//
func (b *Bus) Set(n int, l Level) {
	if b.od1[n] != nil {
		panic("Set called on open-drain line " + b.names[n])
	}
	b.s1[n] = l
}

// Drive sets the next output of driver d on open-drain line n.
// Driving High releases the line.
//
func (b *Bus) Drive(n, d int, l Level) {
	b.od1[n][d] = l
}

// Release releases all drivers of open-drain line n.
//
func (b *Bus) Release(n int) {
	for d := range b.od1[n] {
		b.od1[n][d] = High
	}
}

// Get returns the current state of line n.
//
func (b *Bus) Get(n int) Level {
	return b.s0[n]
}

// Driver returns the current output of driver d on open-drain line n.
//
func (b *Bus) Driver(n, d int) Level {
	return b.od0[n][d]
}

// Toggle inverts the next state of push-pull line n.
//
func (b *Bus) Toggle(n int) {
	b.Set(n, b.s0[n]^1)
}

// Step commits the next state and returns the index of the new frame
// together with a copy of the committed line levels.
//
func (b *Bus) Step() (int, []Level) {
	for n, drv := range b.od1 {
		if drv != nil {
			b.s1[n] = And(drv...)
			copy(b.od0[n], drv)
		}
	}
	copy(b.s0, b.s1)
	i := b.tick
	b.tick++
	return i, append([]Level(nil), b.s0...)
}

// Steps returns the number of frames produced so far.
//
func (b *Bus) Steps() int {
	return b.tick
}
