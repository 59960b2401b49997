// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package i2c

import (
	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/internal/bits"
	"github.com/pkg/errors"
)

// write transaction: 7 address bits, R/W, ACK, 8 data bits, ACK
const writePulses = AddrBits + 1 + 1 + DataBits + 1

// Decode reads back the address and data byte of a write transaction from the
// line levels only, the way a logic analyzer would: START and STOP are SDA
// edges while SCL is high, and bits are sampled on SCL rising edges.
//
func Decode(fs []Frame) (addr, data byte, err error) {
	var (
		pulses           []bool
		started, stopped bool
		pending          bool // SCL is high after a sampled rising edge
	)
	for i := 1; i < len(fs) && !stopped; i++ {
		p, c := fs[i-1], fs[i]
		switch {
		case p.SCL == sigtrace.High && c.SCL == sigtrace.High:
			if p.SDA == sigtrace.High && c.SDA == sigtrace.Low {
				if started {
					return 0, 0, errors.Errorf("frame %d: repeated start not supported", c.Index)
				}
				started = true
			} else if p.SDA == sigtrace.Low && c.SDA == sigtrace.High && started {
				stopped = true
				if pending {
					// SCL rise preceding the stop condition, not a bit.
					pulses = pulses[:len(pulses)-1]
				}
			}
		case !started:
		case p.SCL == sigtrace.Low && c.SCL == sigtrace.High:
			pulses = append(pulses, c.SDA.Bool())
			pending = true
		case c.SCL == sigtrace.Low:
			pending = false
		}
	}
	switch {
	case !started:
		return 0, 0, errors.New("no start condition")
	case !stopped:
		return 0, 0, errors.New("no stop condition")
	case len(pulses) != writePulses:
		return 0, 0, errors.Errorf("got %d clock pulses, expected %d", len(pulses), writePulses)
	}
	addr = bits.FromBits[byte](pulses[:AddrBits])
	if pulses[AddrBits] {
		return addr, 0, errors.New("not a write transaction")
	}
	if pulses[AddrBits+1] {
		return addr, 0, errors.New("address not acknowledged")
	}
	data = bits.FromBits[byte](pulses[AddrBits+2 : AddrBits+2+DataBits])
	if pulses[writePulses-1] {
		return addr, data, errors.New("data not acknowledged")
	}
	return addr, data, nil
}
