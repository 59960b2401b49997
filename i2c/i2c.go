// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package i2c generates I2C bus traces for single master write transactions
// and for two masters contending for the bus.
//
// SDA is modelled as an open-drain line: every device on the bus is a driver
// that either pulls the line low or releases it, and the line level is the
// wired-AND of all drivers. SCL is driven by the master.
//
package i2c

import (
	"strconv"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/internal/bits"
)

// Address and data widths.
//
const (
	AddrBits = 7
	DataBits = 8
)

// Lines returns the line names of an I2C trace.
//
func Lines() []string { return []string{"sda", "scl"} }

// Frame is a two line frame.
//
type Frame struct {
	sigtrace.Header
	SDA sigtrace.Level
	SCL sigtrace.Level
	// Bit is the position of the address (6..0) or data (7..0) bit carried by
	// the frame, or -1.
	Bit int
}

// Levels implements sigtrace.Frame.
//
func (f Frame) Levels() []sigtrace.Level { return []sigtrace.Level{f.SDA, f.SCL} }

// tx builds a transaction on a fresh bus. The last SDA driver is always the
// addressed slave, the others are masters.
//
type tx struct {
	b        *sigtrace.Bus
	sda, scl int
	slave    int
	fs       []Frame
	stepped  func() // called after each frame is committed, may be nil
}

func newTx(masters int) *tx {
	b := sigtrace.NewBus(Lines()...)
	t := &tx{b: b, sda: b.Line("sda"), scl: b.Line("scl"), slave: masters}
	b.OpenDrain(t.sda, masters+1)
	return t
}

func (t *tx) emit(label string, tag sigtrace.Tag, bit int, d sigtrace.Duration) {
	i, lv := t.b.Step()
	t.fs = append(t.fs, Frame{
		Header: sigtrace.Header{Index: i, Label: label, Tag: tag, Duration: d},
		SDA:    lv[t.sda],
		SCL:    lv[t.scl],
		Bit:    bit,
	})
	if t.stepped != nil {
		t.stepped()
	}
}

func (t *tx) idle() {
	t.b.Release(t.sda)
	t.b.Set(t.scl, sigtrace.High)
	t.emit("IDLE", sigtrace.Idle, -1, sigtrace.Unit)
}

// start emits a start condition (SDA falls while SCL is high) followed by
// SCL going low.
//
func (t *tx) start(masters ...int) {
	for _, m := range masters {
		t.b.Drive(t.sda, m, sigtrace.Low)
	}
	t.emit("START", sigtrace.Start, -1, sigtrace.HalfUnit)
	t.b.Set(t.scl, sigtrace.Low)
	t.emit("SCL↓", sigtrace.Start, -1, sigtrace.HalfUnit)
}

// clock emits one bit slot: SDA is set while SCL is low, then SCL is raised
// and lowered. SDA is stable while SCL is high.
//
// set is called before the first frame to update the SDA drivers, and sampled,
// if not nil, right after the data is on the bus, before the clock rises.
//
func (t *tx) clock(label string, tag sigtrace.Tag, bit int, set func(), sampled func()) {
	set()
	t.b.Set(t.scl, sigtrace.Low)
	t.emit(label, tag, bit, sigtrace.HalfUnit)
	if sampled != nil {
		sampled()
	}
	t.b.Set(t.scl, sigtrace.High)
	t.emit(label, tag, bit, sigtrace.HalfUnit)
	t.b.Set(t.scl, sigtrace.Low)
	t.emit(label, tag, bit, sigtrace.HalfUnit)
}

// ack emits an acknowledge slot: all masters release SDA and the slave pulls
// it low.
//
func (t *tx) ack() {
	t.clock("ACK", sigtrace.Ack, -1, func() {
		t.b.Release(t.sda)
		t.b.Drive(t.sda, t.slave, sigtrace.Low)
	}, nil)
}

// stop emits a stop condition: the masters hold SDA low while SCL rises, then
// release SDA while SCL is high.
//
func (t *tx) stop(masters ...int) {
	t.b.Release(t.sda)
	for _, m := range masters {
		t.b.Drive(t.sda, m, sigtrace.Low)
	}
	t.b.Set(t.scl, sigtrace.High)
	t.emit("STOP", sigtrace.Stop, -1, sigtrace.HalfUnit)
	t.b.Release(t.sda)
	t.emit("STOP", sigtrace.Stop, -1, sigtrace.HalfUnit)
}

func addrLabel(i uint) string { return "A" + strconv.Itoa(int(i)) }
func dataLabel(i uint) string { return "D" + strconv.Itoa(int(i)) }

// Write returns the trace of a single master write of one data byte to the
// slave at the given 7 bit address. Both the address and data are masked to
// their respective widths. The slave always acknowledges.
//
func Write(addr, data uint) []Frame {
	const master = 0
	addr, data = bits.Mask(addr, AddrBits), bits.Mask(data, DataBits)
	t := newTx(1)

	t.idle()
	t.start(master)
	for _, i := range bits.MSBFirst(AddrBits) {
		l := sigtrace.Bit(uint64(addr), i)
		t.clock(addrLabel(i), sigtrace.Address, int(i), func() {
			t.b.Drive(t.sda, master, l)
		}, nil)
	}
	t.clock("W", sigtrace.Address, -1, func() {
		t.b.Drive(t.sda, master, sigtrace.Low)
	}, nil)
	t.ack()
	for _, i := range bits.MSBFirst(DataBits) {
		l := sigtrace.Bit(uint64(data), i)
		t.clock(dataLabel(i), sigtrace.Data, int(i), func() {
			t.b.Release(t.sda)
			t.b.Drive(t.sda, master, l)
		}, nil)
	}
	t.ack()
	t.stop(master)
	t.idle()
	return t.fs
}
