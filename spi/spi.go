// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package spi generates full-duplex SPI traces for the four clock modes.
//
package spi

import (
	"strconv"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/internal/bits"
	"github.com/pkg/errors"
)

// Mode is an SPI clock mode: bit 1 is the clock polarity (CPOL) and bit 0 the
// clock phase (CPHA).
//
//	Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on rising edge)
//	Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on falling edge)
//	Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on falling edge)
//	Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on rising edge)
//
type Mode uint8

// Clock modes.
//
const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// CPOL returns the clock idle level.
//
func (m Mode) CPOL() sigtrace.Level { return sigtrace.Level(m >> 1 & 1) }

// CPHA returns the clock phase: 0 if data is sampled on the leading (idle to
// active) clock edge, 1 if sampled on the trailing edge.
//
func (m Mode) CPHA() int { return int(m & 1) }

// Valid returns true if m is one of the four clock modes.
//
func (m Mode) Valid() bool { return m <= Mode3 }

func (m Mode) String() string { return "mode " + strconv.Itoa(int(m)) }

// Lines returns the line names of an SPI trace.
//
func Lines() []string { return []string{"cs", "sck", "mosi", "miso"} }

// Frame is a four line frame.
//
type Frame struct {
	sigtrace.Header
	CS   sigtrace.Level // chip select, active low
	SCK  sigtrace.Level
	MOSI sigtrace.Level // controller out
	MISO sigtrace.Level // peripheral out
}

// Levels implements sigtrace.Frame.
//
func (f Frame) Levels() []sigtrace.Level {
	return []sigtrace.Level{f.CS, f.SCK, f.MOSI, f.MISO}
}

// Exchange returns the trace of a single byte exchange where the controller
// shifts out `out` while the peripheral shifts out `in`, most significant bit
// first. Only the 2 least significant bits of mode and the 8 least significant
// bits of out and in are used.
//
// Data lines only change on the clock edge that is not the sampling edge of
// the mode, or while the clock does not move.
//
func Exchange(mode Mode, out, in uint) []Frame {
	mode &= 3
	out, in = bits.Mask(out, 8), bits.Mask(in, 8)
	b := sigtrace.NewBus(Lines()...)
	cs, sck, mosi, miso := b.Line("cs"), b.Line("sck"), b.Line("mosi"), b.Line("miso")
	idle := mode.CPOL()
	active := idle ^ 1
	fs := make([]Frame, 0, 22)

	emit := func(label string, tag sigtrace.Tag, d sigtrace.Duration) {
		i, lv := b.Step()
		fs = append(fs, Frame{
			Header: sigtrace.Header{Index: i, Label: label, Tag: tag, Duration: d},
			CS:     lv[cs],
			SCK:    lv[sck],
			MOSI:   lv[mosi],
			MISO:   lv[miso],
		})
	}

	b.Set(cs, sigtrace.High)
	b.Set(sck, idle)
	b.Set(mosi, sigtrace.Low)
	b.Set(miso, sigtrace.Low)
	emit("IDLE", sigtrace.Idle, sigtrace.Unit)

	b.Set(cs, sigtrace.Low)
	emit("CS↓", sigtrace.Setup, sigtrace.HalfUnit)

	for _, i := range bits.MSBFirst(8) {
		label := "D" + strconv.Itoa(int(i))
		if mode.CPHA() == 0 {
			// data out before the leading edge, sampled on the leading edge.
			b.Set(sck, idle)
			b.Set(mosi, sigtrace.Bit(uint64(out), i))
			b.Set(miso, sigtrace.Bit(uint64(in), i))
			emit(label, sigtrace.Data, sigtrace.HalfUnit)
			b.Toggle(sck)
			emit(label, sigtrace.Data, sigtrace.HalfUnit)
		} else {
			// data changes on the leading edge, sampled on the trailing edge.
			b.Set(sck, active)
			b.Set(mosi, sigtrace.Bit(uint64(out), i))
			b.Set(miso, sigtrace.Bit(uint64(in), i))
			emit(label, sigtrace.Data, sigtrace.HalfUnit)
			b.Toggle(sck)
			emit(label, sigtrace.Data, sigtrace.HalfUnit)
		}
	}
	if mode.CPHA() == 0 {
		b.Set(sck, idle)
		emit("SCK", sigtrace.Setup, sigtrace.HalfUnit)
	}

	b.Set(cs, sigtrace.High)
	emit("CS↑", sigtrace.Setup, sigtrace.HalfUnit)

	b.Set(mosi, sigtrace.Low)
	b.Set(miso, sigtrace.Low)
	emit("IDLE", sigtrace.Idle, sigtrace.Unit)
	return fs
}

// SampleEdge returns true if the transition from prev to cur is the clock
// edge on which mode samples data, while the peripheral is selected.
//
func SampleEdge(mode Mode, prev, cur Frame) bool {
	if cur.CS != sigtrace.Low || prev.SCK == cur.SCK {
		return false
	}
	leading := prev.SCK == mode.CPOL()
	return leading == (mode&1 == 0)
}

// Decode reads back the bytes exchanged in a trace, sampling both data lines
// on the sampling edges of mode only.
//
func Decode(mode Mode, fs []Frame) (out, in byte, err error) {
	mode &= 3
	var n int
	for i := 1; i < len(fs); i++ {
		if !SampleEdge(mode, fs[i-1], fs[i]) {
			continue
		}
		if n == 8 {
			return out, in, errors.Errorf("frame %d: more than 8 sampling edges", fs[i].Index)
		}
		out = out<<1 | byte(fs[i].MOSI)
		in = in<<1 | byte(fs[i].MISO)
		n++
	}
	if n != 8 {
		return out, in, errors.Errorf("got %d sampling edges for %v, expected 8", n, mode)
	}
	return out, in, nil
}
