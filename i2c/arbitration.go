// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package i2c

import (
	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/internal/bits"
)

// Master is the outcome of arbitration for one contending master.
//
type Master struct {
	Address uint8 // 7 bit target address
	LostAt  int   // address bit at which arbitration was lost, -1 if never
}

// Lost returns true if the master lost arbitration.
//
func (m Master) Lost() bool { return m.LostAt >= 0 }

// Arbitration is the result of two masters contending for the bus.
//
type Arbitration struct {
	Frames  []Frame
	Masters [2]Master

	// SDA output of each master as committed on the bus, one per frame.
	drives [][2]sigtrace.Level
}

// Winner returns the index of the master that won arbitration, or -1 if both
// masters targeted the same address and neither lost.
//
func (a *Arbitration) Winner() int {
	switch {
	case a.Masters[0].Lost():
		return 1
	case a.Masters[1].Lost():
		return 0
	}
	return -1
}

// Arbitrate returns the trace of two masters starting a write transaction at
// the same time, each to its own 7 bit address.
//
// Both masters drive SDA during the address phase. A master that releases SDA
// (drives 1) but reads back 0 has lost arbitration: it stops driving the line
// from the next bit on and never becomes active again within the trace. The
// bit in which the loss occurs is still on the bus with both original drive
// levels. After the address phase, the remaining master(s) send the write bit,
// the slave acknowledges and the transaction ends with a stop condition.
//
// If both addresses are identical, neither master loses.
//
func Arbitrate(a, b uint) *Arbitration {
	r := &Arbitration{Masters: [2]Master{
		{Address: uint8(bits.Mask(a, AddrBits)), LostAt: -1},
		{Address: uint8(bits.Mask(b, AddrBits)), LostAt: -1},
	}}
	t := newTx(len(r.Masters))
	t.stepped = func() {
		r.drives = append(r.drives, [2]sigtrace.Level{t.b.Driver(t.sda, 0), t.b.Driver(t.sda, 1)})
	}

	// drive returns the level master m puts on SDA for the given level: its
	// own level while active, released once lost.
	drive := func(m int, l sigtrace.Level) sigtrace.Level {
		if r.Masters[m].Lost() {
			return sigtrace.High
		}
		return l
	}
	active := func() []int {
		var ms []int
		for m := range r.Masters {
			if !r.Masters[m].Lost() {
				ms = append(ms, m)
			}
		}
		return ms
	}

	t.idle()
	t.start(0, 1)
	for _, i := range bits.MSBFirst(AddrBits) {
		bit := int(i)
		t.clock(addrLabel(i), sigtrace.Address, bit, func() {
			for m := range r.Masters {
				t.b.Drive(t.sda, m, drive(m, sigtrace.Bit(uint64(r.Masters[m].Address), i)))
			}
		}, func() {
			// read back: a master releasing the line that sees it low has
			// lost. Its released drive only applies from the next bit.
			bus := t.b.Get(t.sda)
			for m := range r.Masters {
				if !r.Masters[m].Lost() && t.b.Driver(t.sda, m) == sigtrace.High && bus == sigtrace.Low {
					r.Masters[m].LostAt = bit
				}
			}
		})
	}
	t.clock("W", sigtrace.Address, -1, func() {
		for m := range r.Masters {
			t.b.Drive(t.sda, m, drive(m, sigtrace.Low))
		}
	}, nil)
	t.ack()
	t.stop(active()...)
	t.idle()

	r.Frames = t.fs
	return r
}
