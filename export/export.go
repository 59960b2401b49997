// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package export writes signal traces in various formats: plain text tables,
// JSON, Value Change Dump (VCD) files and WAV audio.
//
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/db47h/sigtrace"
	"github.com/pkg/errors"
)

// Trace is a trace together with the names of its lines.
//
type Trace struct {
	Lines  []string
	Frames []sigtrace.Frame
}

func (t *Trace) check() error {
	for _, f := range t.Frames {
		if n := len(f.Levels()); n != len(t.Lines) {
			return errors.Errorf("frame %d: %d levels for %d lines", f.Head().Index, n, len(t.Lines))
		}
	}
	return nil
}

// WriteTable writes t as a text table, one frame per row.
//
func WriteTable(w io.Writer, t *Trace) error {
	if err := t.check(); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprint(tw, "#\tlabel\ttag\tduration")
	for _, n := range t.Lines {
		fmt.Fprint(tw, "\t", n)
	}
	fmt.Fprintln(tw)
	for _, f := range t.Frames {
		h := f.Head()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g", h.Index, h.Label, h.Tag, float64(h.Duration))
		for _, l := range f.Levels() {
			fmt.Fprint(tw, "\t", l)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

type jsonFrame struct {
	sigtrace.Header
	Levels []int `json:"levels"` // not []Level: byte slices encode as base64
}

// WriteJSON writes t as a JSON object with a "lines" array and a "frames"
// array. Protocol specific extras are not included.
//
func WriteJSON(w io.Writer, t *Trace) error {
	if err := t.check(); err != nil {
		return err
	}
	out := struct {
		Lines  []string    `json:"lines"`
		Frames []jsonFrame `json:"frames"`
	}{Lines: t.Lines, Frames: make([]jsonFrame, len(t.Frames))}
	for i, f := range t.Frames {
		ls := f.Levels()
		jf := jsonFrame{Header: f.Head(), Levels: make([]int, len(ls))}
		for j, l := range ls {
			jf.Levels[j] = int(l)
		}
		out.Frames[i] = jf
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "json")
}

// VCD time is counted in half units, the shortest frame duration in use.
//
const vcdTicksPerUnit = 2

func vcdID(i int) string {
	// printable ASCII identifiers, base 94 starting at '!'
	var b []byte
	for {
		b = append(b, byte('!'+i%94))
		i /= 94
		if i == 0 {
			return string(b)
		}
	}
}

// WriteVCD writes t as a Value Change Dump, with one timescale tick per half
// unit. Only level changes are recorded after the initial dump.
//
func WriteVCD(w io.Writer, module string, t *Trace) error {
	if err := t.check(); err != nil {
		return err
	}
	if len(t.Frames) == 0 {
		return errors.New("empty trace")
	}
	ew := &errWriter{w: w}
	ew.printf("$comment sigtrace, 1 unit = %d ticks $end\n", vcdTicksPerUnit)
	ew.printf("$timescale 1 us $end\n$scope module %s $end\n", module)
	for i, n := range t.Lines {
		ew.printf("$var wire 1 %s %s $end\n", vcdID(i), n)
	}
	ew.printf("$upscope $end\n$enddefinitions $end\n")

	var (
		prev []sigtrace.Level
		now  sigtrace.Duration
	)
	for _, f := range t.Frames {
		ls := f.Levels()
		tick := int64(math.Round(float64(now) * vcdTicksPerUnit))
		if prev == nil {
			ew.printf("#%d\n$dumpvars\n", tick)
			for i, l := range ls {
				ew.printf("%s%s\n", l, vcdID(i))
			}
			ew.printf("$end\n")
		} else {
			stamped := false
			for i, l := range ls {
				if l == prev[i] {
					continue
				}
				if !stamped {
					ew.printf("#%d\n", tick)
					stamped = true
				}
				ew.printf("%s%s\n", l, vcdID(i))
			}
		}
		prev = ls
		now += f.Head().Duration
	}
	ew.printf("#%d\n", int64(math.Round(float64(now)*vcdTicksPerUnit)))
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
	if e.err != nil {
		e.err = errors.Wrap(e.err, "vcd")
	}
}

// Levels returns the levels of line n over the whole trace as a string of
// '0' and '1' characters, one per frame.
//
func Levels(fs []sigtrace.Frame, n int) string {
	b := make([]byte, 0, len(fs))
	for _, f := range fs {
		b = strconv.AppendUint(b, uint64(f.Levels()[n]), 10)
	}
	return string(b)
}
