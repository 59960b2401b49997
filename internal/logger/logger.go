// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logger implements a small tagged logger. Loggers are created by
// the command and injected where needed; there is no package level logger.
//
// Consecutive identical entries are folded into a single entry with a repeat
// count. A nil *Logger discards everything.
//
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// Entry is a single log entry.
//
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	s := e.Tag + ": " + e.Detail
	if e.Repeated > 0 {
		s += fmt.Sprintf(" (repeat x%d)", e.Repeated+1)
	}
	return s
}

// Logger keeps the most recent entries in memory and optionally echoes new
// entries to a writer.
//
type Logger struct {
	mu      sync.Mutex
	max     int
	entries []Entry
	echo    *log.Logger
	now     func() time.Time
}

// New returns a logger keeping at most max entries. If echo is not nil, every
// new entry is also written to it.
//
func New(max int, echo io.Writer) *Logger {
	if max < 1 {
		max = 1
	}
	l := &Logger{max: max, now: time.Now}
	if echo != nil {
		l.echo = log.New(echo, "", log.LstdFlags)
	}
	return l
}

// Log adds an entry.
//
func (l *Logger) Log(tag, detail string) {
	if l == nil {
		return
	}
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e := &l.entries[n-1]
		e.Repeated++
		e.Timestamp = l.now()
		return
	}
	e := Entry{Timestamp: l.now(), Tag: tag, Detail: detail}
	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.max:]...)
	}
	if l.echo != nil {
		l.echo.Print(e.String())
	}
}

// Logf adds a formatted entry.
//
func (l *Logger) Logf(tag, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.Log(tag, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the current entries.
//
func (l *Logger) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Tail writes the last n entries to w, one per line. Nothing is written if
// n <= 0.
//
func (l *Logger) Tail(w io.Writer, n int) {
	es := l.Entries()
	switch {
	case n <= 0:
		return
	case n > len(es):
		n = len(es)
	}
	for _, e := range es[len(es)-n:] {
		io.WriteString(w, e.String()+"\n")
	}
}
