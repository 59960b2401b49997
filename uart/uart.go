// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package uart generates asynchronous serial (8N1) traces.
//
package uart

import (
	"strconv"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/internal/bits"
	"github.com/pkg/errors"
)

// FrameLen is the number of frames in a character trace:
// idle, start, 8 data bits, stop, idle.
//
const FrameLen = 12

// Lines returns the line names of a UART trace.
//
func Lines() []string { return []string{"tx"} }

// Frame is a single line frame.
//
type Frame struct {
	sigtrace.Header
	TX sigtrace.Level
}

// Levels implements sigtrace.Frame.
//
func (f Frame) Levels() []sigtrace.Level { return []sigtrace.Level{f.TX} }

// Trace returns the trace for a single character with the given ordinal
// value. Only the 8 least significant bits of ord are transmitted, least
// significant bit first.
//
func Trace(ord uint) []Frame {
	ord = bits.Mask(ord, 8)
	b := sigtrace.NewBus(Lines()...)
	tx := b.Line("tx")
	fs := make([]Frame, 0, FrameLen)

	emit := func(label string, tag sigtrace.Tag, l sigtrace.Level) {
		b.Set(tx, l)
		i, lv := b.Step()
		fs = append(fs, Frame{
			Header: sigtrace.Header{Index: i, Label: label, Tag: tag, Duration: sigtrace.Unit},
			TX:     lv[tx],
		})
	}

	emit("IDLE", sigtrace.Idle, sigtrace.High)
	emit("START", sigtrace.Start, sigtrace.Low)
	for i := uint(0); i < 8; i++ {
		emit("D"+strconv.Itoa(int(i)), sigtrace.Data, sigtrace.Bit(uint64(ord), i))
	}
	emit("STOP", sigtrace.Stop, sigtrace.High)
	emit("IDLE", sigtrace.Idle, sigtrace.High)
	return fs
}

// Decode reads back the character carried by a trace. It looks for the
// first start bit and expects 8 data bits followed by a stop bit.
//
func Decode(fs []Frame) (byte, error) {
	start := -1
	for i, f := range fs {
		if f.Tag == sigtrace.Start {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, errors.New("no start bit")
	}
	if fs[start].TX != sigtrace.Low {
		return 0, errors.Errorf("frame %d: start bit is high", fs[start].Index)
	}
	if len(fs) < start+10 {
		return 0, errors.Errorf("truncated character: %d frames after start bit", len(fs)-start-1)
	}
	var c byte
	for i := 0; i < 8; i++ {
		if fs[start+1+i].TX == sigtrace.High {
			c |= 1 << uint(i)
		}
	}
	if stop := fs[start+9]; stop.Tag != sigtrace.Stop || stop.TX != sigtrace.High {
		return c, errors.Errorf("frame %d: framing error", stop.Index)
	}
	return c, nil
}
