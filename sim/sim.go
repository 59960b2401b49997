// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sim dispatches simulation requests to the protocol and converter
// packages.
//
// Unlike the generator packages, which panic on programming errors, Run
// validates its input and reports invalid parameters as errors, making it
// suitable for user input.
//
package sim

import (
	"context"
	"sort"
	"strconv"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/convert"
	"github.com/db47h/sigtrace/i2c"
	"github.com/db47h/sigtrace/internal/params"
	"github.com/db47h/sigtrace/spi"
	"github.com/db47h/sigtrace/uart"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Protocol identifies a simulation.
//
type Protocol string

// Supported simulations.
//
const (
	UART        Protocol = "uart"
	I2C         Protocol = "i2c"
	Arbitration Protocol = "arbitration"
	SPI         Protocol = "spi"
	DAC         Protocol = "dac"
	SAR         Protocol = "sar"
	DualSlope   Protocol = "dualslope"
)

// Request is a simulation request.
//
type Request struct {
	Protocol Protocol
	Params   params.Set
}

// Result is the result of a simulation. Frames and Lines are empty for
// converter simulations. Value holds the protocol specific result:
//
//	uart         []uart.Frame
//	i2c          []i2c.Frame
//	arbitration  *i2c.Arbitration
//	spi          []spi.Frame
//	dac          convert.Ladder
//	sar          convert.SAR
//	dualslope    convert.DualSlope
//
type Result struct {
	Protocol Protocol
	Frames   []sigtrace.Frame
	Lines    []string
	Value    interface{}
}

type simulation struct {
	keys []string
	help string
	run  func(p params.Set) (*Result, error)
}

var simulations = map[Protocol]simulation{
	UART: {
		[]string{"char"}, "char=<c>",
		func(p params.Set) (*Result, error) {
			c, err := p.Rune("char", 'K')
			if err != nil {
				return nil, err
			}
			fs := uart.Trace(uint(c))
			return &Result{UART, sigtrace.Erase(fs), uart.Lines(), fs}, nil
		},
	},
	I2C: {
		[]string{"addr", "data"}, "addr=<7 bits> data=<8 bits>",
		func(p params.Set) (*Result, error) {
			addr, err := p.Uint("addr", 0x21)
			if err != nil {
				return nil, err
			}
			data, err := p.Uint("data", 0x42)
			if err != nil {
				return nil, err
			}
			fs := i2c.Write(uint(addr), uint(data))
			return &Result{I2C, sigtrace.Erase(fs), i2c.Lines(), fs}, nil
		},
	},
	Arbitration: {
		[]string{"a", "b"}, "a=<7 bits> b=<7 bits>",
		func(p params.Set) (*Result, error) {
			a, err := p.Uint("a", 0x21)
			if err != nil {
				return nil, err
			}
			b, err := p.Uint("b", 0x25)
			if err != nil {
				return nil, err
			}
			r := i2c.Arbitrate(uint(a), uint(b))
			return &Result{Arbitration, sigtrace.Erase(r.Frames), i2c.Lines(), r}, nil
		},
	},
	SPI: {
		[]string{"mode", "out", "in"}, "mode=<0-3> out=<8 bits> in=<8 bits>",
		func(p params.Set) (*Result, error) {
			m, err := p.Uint("mode", 0)
			if err != nil {
				return nil, err
			}
			if m > uint64(spi.Mode3) {
				return nil, errors.Errorf("invalid SPI mode %d", m)
			}
			out, err := p.Uint("out", 0xa5)
			if err != nil {
				return nil, err
			}
			in, err := p.Uint("in", 0x3c)
			if err != nil {
				return nil, err
			}
			fs := spi.Exchange(spi.Mode(m), uint(out), uint(in))
			return &Result{SPI, sigtrace.Erase(fs), spi.Lines(), fs}, nil
		},
	},
	DAC: {
		[]string{"code", "vref", "bits"}, "code=<n> vref=<volts> bits=<1-32>",
		func(p params.Set) (*Result, error) {
			n, vref, err := converter(p, 4)
			if err != nil {
				return nil, err
			}
			code, err := p.Uint("code", 10)
			if err != nil {
				return nil, err
			}
			return &Result{Protocol: DAC, Value: convert.DAC(code, vref, n)}, nil
		},
	},
	SAR: {
		[]string{"vin", "vref", "bits"}, "vin=<volts> vref=<volts> bits=<1-32>",
		func(p params.Set) (*Result, error) {
			n, vref, err := converter(p, 8)
			if err != nil {
				return nil, err
			}
			vin, err := p.Float("vin", 3.3)
			if err != nil {
				return nil, err
			}
			return &Result{Protocol: SAR, Value: convert.SuccessiveApproximation(vin, vref, n)}, nil
		},
	},
	DualSlope: {
		[]string{"vin", "vref", "bits", "t1"}, "vin=<volts> vref=<volts> bits=<1-32> t1=<time>",
		func(p params.Set) (*Result, error) {
			n, vref, err := converter(p, 8)
			if err != nil {
				return nil, err
			}
			vin, err := p.Float("vin", 2.5)
			if err != nil {
				return nil, err
			}
			t1, err := p.Float("t1", 1)
			if err != nil {
				return nil, err
			}
			if !(t1 > 0) {
				return nil, errors.Errorf("integration time %v must be positive", t1)
			}
			return &Result{Protocol: DualSlope, Value: convert.Integrate(vin, vref, n, t1)}, nil
		},
	},
}

// converter reads and validates the parameters common to all converters.
//
func converter(p params.Set, defBits int) (int, float64, error) {
	n, err := p.Int("bits", defBits)
	if err != nil {
		return 0, 0, err
	}
	if err = sigtrace.CheckResolution(n); err != nil {
		return 0, 0, err
	}
	vref, err := p.Float("vref", 5)
	if err != nil {
		return 0, 0, err
	}
	if !(vref > 0) {
		return 0, 0, errors.Errorf("reference voltage %v must be positive", vref)
	}
	return n, vref, nil
}

// Protocols returns the names of all supported simulations, sorted.
//
func Protocols() []Protocol {
	ps := make([]Protocol, 0, len(simulations))
	for p := range simulations {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}

// Usage returns the parameter synopsis of the given protocol.
//
func Usage(p Protocol) string {
	return simulations[p].help
}

// Run runs a single simulation.
//
func Run(req Request) (*Result, error) {
	s, ok := simulations[req.Protocol]
	if !ok {
		return nil, errors.Errorf("unknown protocol %q", req.Protocol)
	}
	if err := req.Params.Check(s.keys...); err != nil {
		return nil, errors.Wrap(err, string(req.Protocol))
	}
	r, err := s.run(req.Params)
	if err != nil {
		return nil, errors.Wrap(err, string(req.Protocol))
	}
	return r, nil
}

// RunAll runs the given requests concurrently, with at most limit simulations
// in flight (no limit if limit <= 0). Results are returned in request order.
// The first error cancels the remaining requests.
//
func RunAll(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	out := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Run(req)
			if err != nil {
				return errors.Wrapf(err, "request %d", i)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Describe returns a one line summary of a request, suitable as the context
// of an explanation request.
//
func Describe(req Request) string {
	s := string(req.Protocol)
	if len(req.Params) > 0 {
		s += ": " + req.Params.Encode()
	}
	return s
}

// Summary returns a short human readable summary of a result.
//
func Summary(r *Result) string {
	switch v := r.Value.(type) {
	case []uart.Frame:
		return "UART frame " + levels(r.Frames, 0)
	case []i2c.Frame:
		return "I2C write, " + strconv.Itoa(len(v)) + " frames"
	case *i2c.Arbitration:
		switch w := v.Winner(); w {
		case -1:
			return "arbitration tie, both masters keep the bus"
		default:
			l := v.Masters[1-w]
			return "master " + string(rune('A'+w)) + " wins, master " + string(rune('A'+1-w)) +
				" lost at address bit " + strconv.Itoa(l.LostAt)
		}
	case []spi.Frame:
		return "SPI exchange, " + strconv.Itoa(len(v)) + " frames"
	case convert.Ladder:
		return "DAC code " + strconv.FormatUint(v.Code, 10) + " -> " + strconv.FormatFloat(v.Voltage, 'g', 6, 64) + " V"
	case convert.SAR:
		return "SAR code " + strconv.FormatUint(v.Code, 10) + ", error " + strconv.FormatFloat(v.Error(), 'g', 4, 64) + " V"
	case convert.DualSlope:
		return "dual-slope code " + strconv.FormatUint(v.Code, 10) + ", T2 " + strconv.FormatFloat(v.T2(), 'g', 6, 64)
	}
	return string(r.Protocol)
}

func levels(fs []sigtrace.Frame, line int) string {
	b := make([]byte, len(fs))
	for i, f := range fs {
		b[i] = '0' + byte(f.Levels()[line])
	}
	return string(b)
}
