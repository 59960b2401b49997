// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package script runs Lua scripts driving the simulators.
//
// The following global functions are available to scripts:
//
//	uart(char)                   UART frame for a character or character code
//	i2c(addr, data)              I2C single byte write
//	arbitrate(a, b)              I2C arbitration between two masters
//	spi(mode, out, in)           SPI full duplex byte exchange
//	dac(code, vref, bits)        R-2R ladder DAC
//	sar(vin, vref, bits)         successive approximation ADC
//	dualslope(vin, vref, bits, t1)  dual-slope ADC
//	run(protocol, params)        any simulation, with a parameter string
//
// Omitted arguments take the same defaults as the command line. Each function
// returns a table with the fields "protocol" and "summary". Traces also have
// "lines", "frames" (one table per frame with "index", "label", "tag",
// "duration" and one field per line) and "levels" (one '0'/'1' string per
// line). Converter results carry their numeric fields in lower case.
//
// print writes to the output given to Run.
//
package script

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/convert"
	"github.com/db47h/sigtrace/i2c"
	"github.com/db47h/sigtrace/internal/params"
	"github.com/db47h/sigtrace/sim"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// Run executes the Lua source src. The script is aborted when ctx is done.
//
func Run(ctx context.Context, name, src string, out io.Writer) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	Register(L, out)
	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return errors.Wrap(err, name)
	}
	L.Push(fn)
	if err = L.PCall(0, lua.MultRet, nil); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), name)
		}
		return errors.Wrap(err, name)
	}
	return nil
}

type arg struct {
	key  string
	kind byte // 'c' character, 'n' number
}

var funcs = []struct {
	name  string
	proto sim.Protocol
	args  []arg
}{
	{"uart", sim.UART, []arg{{"char", 'c'}}},
	{"i2c", sim.I2C, []arg{{"addr", 'n'}, {"data", 'n'}}},
	{"arbitrate", sim.Arbitration, []arg{{"a", 'n'}, {"b", 'n'}}},
	{"spi", sim.SPI, []arg{{"mode", 'n'}, {"out", 'n'}, {"in", 'n'}}},
	{"dac", sim.DAC, []arg{{"code", 'n'}, {"vref", 'n'}, {"bits", 'n'}}},
	{"sar", sim.SAR, []arg{{"vin", 'n'}, {"vref", 'n'}, {"bits", 'n'}}},
	{"dualslope", sim.DualSlope, []arg{{"vin", 'n'}, {"vref", 'n'}, {"bits", 'n'}, {"t1", 'n'}}},
}

// Register installs the simulation functions and a print function writing
// to out in L's global table.
//
func Register(L *lua.LState, out io.Writer) {
	for _, f := range funcs {
		L.SetGlobal(f.name, L.NewFunction(func(L *lua.LState) int {
			p := make(params.Set)
			for i, a := range f.args {
				v := L.Get(i + 1)
				if v == lua.LNil {
					continue
				}
				switch a.kind {
				case 'c':
					// a number is a character code
					if n, ok := v.(lua.LNumber); ok {
						if float64(n) != math.Trunc(float64(n)) || n < 0 || n > utf8.MaxRune {
							L.ArgError(i+1, "invalid character code "+n.String())
						}
						p[a.key] = string(rune(n))
						break
					}
					p[a.key] = L.CheckString(i + 1)
				default:
					p[a.key] = strconv.FormatFloat(float64(L.CheckNumber(i+1)), 'g', -1, 64)
				}
			}
			return simulate(L, sim.Request{Protocol: f.proto, Params: p})
		}))
	}
	L.SetGlobal("run", L.NewFunction(func(L *lua.LState) int {
		proto := L.CheckString(1)
		p, err := params.Parse(L.OptString(2, ""))
		if err != nil {
			L.ArgError(2, err.Error())
		}
		return simulate(L, sim.Request{Protocol: sim.Protocol(proto), Params: p})
	}))
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		for i := 1; i <= n; i++ {
			if i > 1 {
				io.WriteString(out, "\t")
			}
			io.WriteString(out, L.ToStringMeta(L.Get(i)).String())
		}
		io.WriteString(out, "\n")
		return 0
	}))
}

func simulate(L *lua.LState, req sim.Request) int {
	r, err := sim.Run(req)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(result(L, r))
	return 1
}

func result(L *lua.LState, r *sim.Result) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("protocol", lua.LString(r.Protocol))
	t.RawSetString("summary", lua.LString(sim.Summary(r)))
	if len(r.Frames) > 0 {
		t.RawSetString("lines", stringList(L, r.Lines))
		t.RawSetString("frames", frames(L, r.Lines, r.Frames))
		lv := L.NewTable()
		for n, name := range r.Lines {
			b := make([]byte, len(r.Frames))
			for i, f := range r.Frames {
				b[i] = '0' + byte(f.Levels()[n])
			}
			lv.RawSetString(name, lua.LString(b))
		}
		t.RawSetString("levels", lv)
	}
	switch v := r.Value.(type) {
	case *i2c.Arbitration:
		t.RawSetString("winner", lua.LNumber(v.Winner()))
		lost := L.NewTable()
		for _, m := range v.Masters {
			lost.Append(lua.LNumber(m.LostAt))
		}
		t.RawSetString("lost_at", lost)
	case convert.Ladder:
		t.RawSetString("code", lua.LNumber(v.Code))
		t.RawSetString("bits", lua.LNumber(v.Bits))
		t.RawSetString("vref", lua.LNumber(v.Vref))
		t.RawSetString("voltage", lua.LNumber(v.Voltage))
		sw := L.NewTable()
		for _, s := range v.Switches {
			sw.Append(lua.LString(s.String()))
		}
		t.RawSetString("switches", sw)
	case convert.SAR:
		t.RawSetString("code", lua.LNumber(v.Code))
		t.RawSetString("bits", lua.LNumber(v.Bits))
		t.RawSetString("approx", lua.LNumber(v.Approx()))
		t.RawSetString("error", lua.LNumber(v.Error()))
		t.RawSetString("lsb", lua.LNumber(v.LSB))
		steps := L.NewTable()
		for _, s := range v.Steps {
			st := L.NewTable()
			st.RawSetString("bit", lua.LNumber(s.Bit))
			st.RawSetString("trial", lua.LNumber(s.Trial))
			st.RawSetString("keep", lua.LBool(s.Keep.Bool()))
			st.RawSetString("approx", lua.LNumber(s.Approx))
			steps.Append(st)
		}
		t.RawSetString("steps", steps)
	case convert.DualSlope:
		t.RawSetString("code", lua.LNumber(v.Code))
		t.RawSetString("bits", lua.LNumber(v.Bits))
		t.RawSetString("t1", lua.LNumber(v.T1))
		t.RawSetString("t2", lua.LNumber(v.T2()))
		t.RawSetString("estimate", lua.LNumber(v.Estimate))
	}
	return t
}

func stringList(L *lua.LState, ss []string) *lua.LTable {
	t := L.CreateTable(len(ss), 0)
	for _, s := range ss {
		t.Append(lua.LString(s))
	}
	return t
}

func frames(L *lua.LState, lines []string, fs []sigtrace.Frame) *lua.LTable {
	t := L.CreateTable(len(fs), 0)
	for _, f := range fs {
		h := f.Head()
		ft := L.CreateTable(0, 4+len(lines))
		ft.RawSetString("index", lua.LNumber(h.Index))
		ft.RawSetString("label", lua.LString(h.Label))
		ft.RawSetString("tag", lua.LString(h.Tag.String()))
		ft.RawSetString("duration", lua.LNumber(h.Duration))
		for i, l := range f.Levels() {
			ft.RawSetString(lines[i], lua.LNumber(l))
		}
		t.Append(ft)
	}
	return t
}

// Eval runs a single Lua expression and returns its value formatted as a
// string. It is used by the interactive shell.
//
func Eval(ctx context.Context, L *lua.LState, expr string) (string, error) {
	L.SetContext(ctx)
	defer L.RemoveContext()
	top := L.GetTop()
	fn, err := L.LoadString("return " + expr)
	if err != nil {
		return "", err
	}
	L.Push(fn)
	if err = L.PCall(0, lua.MultRet, nil); err != nil {
		return "", err
	}
	n := L.GetTop() - top
	vs := make([]string, n)
	for i := range vs {
		vs[i] = format(L.Get(top + 1 + i))
	}
	L.SetTop(top)
	return strings.Join(vs, "\t"), nil
}

func format(v lua.LValue) string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return v.String()
	}
	if s := t.RawGetString("summary"); s != lua.LNil {
		return s.String()
	}
	return fmt.Sprintf("table(%d)", t.Len())
}
