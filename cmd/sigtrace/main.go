// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command sigtrace generates and explains serial bus signal traces and data
// converter simulations.
//
// Usage:
//
//	sigtrace [flags] <protocol> [key=value ...]
//	sigtrace [flags] batch [file]
//	sigtrace [flags] script <file.lua>
//	sigtrace [flags] explain <protocol> [key=value ...] [-- question]
//	sigtrace [flags] repl
//
// The explanation service endpoint and credentials are read from the
// SIGTRACE_EXPLAIN_URL and SIGTRACE_API_KEY environment variables.
//
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/db47h/sigtrace/explain"
	"github.com/db47h/sigtrace/internal/logger"
	"github.com/db47h/sigtrace/internal/params"
	"github.com/db47h/sigtrace/script"
	"github.com/db47h/sigtrace/sim"
	"github.com/pkg/errors"
)

type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	getenv         func(string) string
	log            *logger.Logger

	format string
	output string
	spu    int
	jobs   int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, getenv: getenv}
	fs := flag.NewFlagSet("sigtrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.format, "format", "table", "output `format`: table, json, vcd, wav or summary")
	fs.StringVar(&a.output, "o", "", "write output to `file` instead of stdout (required for wav)")
	fs.IntVar(&a.spu, "spu", 64, "WAV samples per time unit")
	fs.IntVar(&a.jobs, "j", 4, "maximum number of concurrent simulations in batch mode")
	verbose := fs.Bool("v", false, "echo log entries to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: sigtrace [flags] <command|protocol> [args]\n\nProtocols:\n")
		for _, p := range sim.Protocols() {
			fmt.Fprintf(stderr, "  %-12s %s\n", p, sim.Usage(p))
		}
		fmt.Fprintf(stderr, "\nCommands: batch, script, explain, repl\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	var echo io.Writer
	if *verbose {
		echo = stderr
	}
	a.log = logger.New(256, echo)

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "batch":
		err = a.batch(ctx, rest)
	case "script":
		err = a.script(ctx, rest)
	case "explain":
		err = a.explain(ctx, rest)
	case "repl":
		err = a.repl(ctx)
	default:
		err = a.simulate(sim.Protocol(cmd), rest)
	}
	if err != nil {
		a.log.Log("error", err.Error())
		fmt.Fprintf(stderr, "sigtrace: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) simulate(p sim.Protocol, args []string) error {
	ps, err := params.ParseArgs(args)
	if err != nil {
		return err
	}
	r, err := sim.Run(sim.Request{Protocol: p, Params: ps})
	if err != nil {
		return err
	}
	a.log.Logf("sim", "%s", sim.Describe(sim.Request{Protocol: p, Params: ps}))
	return a.write(r)
}

func (a *app) script(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: sigtrace script <file.lua>")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	a.log.Logf("script", "running %s", args[0])
	return script.Run(ctx, args[0], string(src), a.stdout)
}

func (a *app) explainer() *explain.Service {
	return &explain.Service{
		Client: &explain.HTTPClient{
			Endpoint: a.getenv("SIGTRACE_EXPLAIN_URL"),
			APIKey:   a.getenv("SIGTRACE_API_KEY"),
		},
		Log:     a.log,
		Timeout: 30 * time.Second,
	}
}

func (a *app) explain(ctx context.Context, args []string) error {
	var question string
	for i, s := range args {
		if s == "--" {
			question = strings.Join(args[i+1:], " ")
			args = args[:i]
			break
		}
	}
	if len(args) == 0 {
		return errors.New("usage: sigtrace explain <protocol> [key=value ...] [-- question]")
	}
	ps, err := params.ParseArgs(args[1:])
	if err != nil {
		return err
	}
	req := sim.Request{Protocol: sim.Protocol(args[0]), Params: ps}
	// validate the request, an explanation of a bogus simulation is useless.
	if _, err = sim.Run(req); err != nil {
		return err
	}
	text, _ := a.explainer().Explain(ctx, explain.Request{
		Protocol: args[0],
		Context:  sim.Describe(req),
		Question: question,
	})
	_, err = fmt.Fprintln(a.stdout, text)
	return err
}
