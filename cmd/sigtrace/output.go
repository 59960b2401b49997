// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/db47h/sigtrace/convert"
	"github.com/db47h/sigtrace/export"
	"github.com/db47h/sigtrace/i2c"
	"github.com/db47h/sigtrace/internal/params"
	"github.com/db47h/sigtrace/sim"
	"github.com/google/shlex"
	"github.com/pkg/errors"
)

// write writes r in the selected format to the selected output.
//
func (a *app) write(r *sim.Result) (err error) {
	var w io.Writer = a.stdout
	if a.output != "" {
		f, cerr := os.Create(a.output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return a.writeTo(w, r)
}

func (a *app) writeTo(w io.Writer, r *sim.Result) error {
	t := &export.Trace{Lines: r.Lines, Frames: r.Frames}
	switch a.format {
	case "summary":
		_, err := fmt.Fprintln(w, sim.Summary(r))
		return err
	case "table":
		if len(r.Frames) > 0 {
			if err := export.WriteTable(w, t); err != nil {
				return err
			}
		}
		if err := writeValue(w, r.Value); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, sim.Summary(r))
		return err
	case "json":
		if len(r.Frames) > 0 {
			return export.WriteJSON(w, t)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Value)
	case "vcd":
		if len(r.Frames) == 0 {
			return errors.Errorf("%s has no trace to dump", r.Protocol)
		}
		return export.WriteVCD(w, string(r.Protocol), t)
	case "wav":
		ws, ok := w.(io.WriteSeeker)
		if !ok || a.output == "" {
			return errors.New("wav output needs an output file (-o)")
		}
		if len(r.Frames) > 0 {
			return export.WriteWAV(ws, t, a.spu)
		}
		if d, ok := r.Value.(convert.DualSlope); ok {
			return export.WriteRampWAV(ws, d.Ramp(a.spu))
		}
		return errors.Errorf("%s has no waveform", r.Protocol)
	}
	return errors.Errorf("unknown output format %q", a.format)
}

// writeValue writes the protocol specific part of a result as a table.
//
func writeValue(w io.Writer, v interface{}) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	switch v := v.(type) {
	case *i2c.Arbitration:
		fmt.Fprintln(tw, "#\tlabel\tA drive\tA state\tB drive\tB state")
		for _, m := range v.View() {
			f := v.Frames[m.Index]
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", m.Index, f.Label, m.Drive[0], m.State[0], m.Drive[1], m.State[1])
		}
	case convert.Ladder:
		fmt.Fprintln(tw, "bit\tweight\tswitch")
		for i := len(v.Switches) - 1; i >= 0; i-- {
			fmt.Fprintf(tw, "%d\t%g\t%s\n", i, v.Weight(i), v.Switches[i])
		}
		fmt.Fprintf(tw, "code\t%d\t\nvoltage\t%g\t\n", v.Code, v.Voltage)
	case convert.SAR:
		fmt.Fprintln(tw, "bit\ttrial\tkeep\tapprox")
		for _, s := range v.Steps {
			fmt.Fprintf(tw, "%d\t%g\t%s\t%g\n", s.Bit, s.Trial, s.Keep, s.Approx)
		}
		fmt.Fprintf(tw, "code\t%d\t\t\nlsb\t%g\t\t\nerror\t%g\t\t\n", v.Code, v.LSB, v.Error())
	case convert.DualSlope:
		fmt.Fprintf(tw, "t1\t%g\nt2\t%g\ncode\t%d\nestimate\t%g\n", v.T1, v.T2(), v.Code, v.Estimate)
	}
	return tw.Flush()
}

// parseLine parses a command line of the form "protocol key=value ...",
// honoring shell style quoting.
//
func parseLine(line string) (sim.Request, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return sim.Request{}, err
	}
	if len(words) == 0 {
		return sim.Request{}, errors.New("empty command")
	}
	ps, err := params.ParseArgs(words[1:])
	if err != nil {
		return sim.Request{}, err
	}
	return sim.Request{Protocol: sim.Protocol(words[0]), Params: ps}, nil
}

// batch runs one simulation per input line, concurrently. Blank lines and
// lines starting with # are ignored.
//
func (a *app) batch(ctx context.Context, args []string) error {
	var in io.Reader = a.stdin
	switch len(args) {
	case 0:
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		return errors.New("usage: sigtrace batch [file]")
	}
	if a.format == "wav" || a.format == "vcd" {
		return errors.Errorf("%s output is not supported in batch mode", a.format)
	}

	var reqs []sim.Request
	s := bufio.NewScanner(in)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		req, err := parseLine(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", n)
		}
		reqs = append(reqs, req)
	}
	if err := s.Err(); err != nil {
		return err
	}
	a.log.Logf("batch", "%d requests, %d jobs", len(reqs), a.jobs)
	rs, err := sim.RunAll(ctx, reqs, a.jobs)
	if err != nil {
		return err
	}
	for i, r := range rs {
		if a.format != "summary" {
			fmt.Fprintf(a.stdout, "== %s\n", sim.Describe(reqs[i]))
		}
		if err := a.writeTo(a.stdout, r); err != nil {
			return err
		}
	}
	return nil
}
