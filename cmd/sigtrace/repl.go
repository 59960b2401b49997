// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/db47h/sigtrace/explain"
	"github.com/db47h/sigtrace/script"
	"github.com/db47h/sigtrace/sim"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/term"
)

const replHelp = `commands:
  <protocol> [key=value ...]   run a simulation and print it
  format <name>                set the output format
  lua <expression>             evaluate a Lua expression
  explain [question]           explain the last simulation
  log [n]                      show the last n log entries
  help                         show this help
  quit                         exit`

// isTerminal reports whether the app reads from an interactive terminal.
//
func (a *app) isTerminal() bool {
	f, ok := a.stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// repl runs an interactive session. The prompt is only shown when reading
// from a terminal.
//
func (a *app) repl(ctx context.Context) error {
	prompt := ""
	if a.isTerminal() {
		prompt = "sigtrace> "
		fmt.Fprintln(a.stdout, "type help for a list of commands")
	}
	L := lua.NewState()
	defer L.Close()
	script.Register(L, a.stdout)
	exp := a.explainer()

	var last *sim.Request
	s := bufio.NewScanner(a.stdin)
	for {
		fmt.Fprint(a.stdout, prompt)
		if ctx.Err() != nil || !s.Scan() {
			break
		}
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(a.stdout, replHelp)
		case "format":
			a.format = arg
		case "log":
			n := 10
			if arg != "" {
				if _, err := fmt.Sscan(arg, &n); err != nil || n < 0 {
					a.replError(errors.Errorf("log: bad entry count %q", arg))
					continue
				}
			}
			a.log.Tail(a.stdout, n)
		case "lua":
			v, err := script.Eval(ctx, L, arg)
			if err != nil {
				a.replError(err)
				continue
			}
			fmt.Fprintln(a.stdout, v)
		case "explain":
			if last == nil {
				a.replError(errors.New("nothing to explain, run a simulation first"))
				continue
			}
			text, _ := exp.Explain(ctx, explain.Request{
				Protocol: string(last.Protocol),
				Context:  sim.Describe(*last),
				Question: arg,
			})
			fmt.Fprintln(a.stdout, text)
		default:
			req, err := parseLine(line)
			if err != nil {
				a.replError(err)
				continue
			}
			r, err := sim.Run(req)
			if err != nil {
				a.replError(err)
				continue
			}
			a.log.Logf("sim", "%s", sim.Describe(req))
			last = &req
			if err = a.writeTo(a.stdout, r); err != nil {
				a.replError(err)
			}
		}
	}
	return s.Err()
}

func (a *app) replError(err error) {
	a.log.Log("repl", err.Error())
	fmt.Fprintf(a.stdout, "* %v\n", err)
}
