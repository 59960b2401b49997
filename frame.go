// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sigtrace

import "strconv"

// Tag is the semantic tag of a frame.
//
type Tag uint8

// Frame tags. Not all protocols use all tags.
//
const (
	Idle Tag = iota
	Start
	Data
	Stop
	Address
	Ack
	Setup
)

var tagNames = [...]string{
	Idle:    "idle",
	Start:   "start",
	Data:    "data",
	Stop:    "stop",
	Address: "address",
	Ack:     "ack",
	Setup:   "setup",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(" + strconv.Itoa(int(t)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
//
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Duration is a frame duration in abstract time units.
//
type Duration float64

// Common durations.
//
const (
	Unit     Duration = 1
	HalfUnit Duration = 0.5
)

// Header holds the fields common to all frame shapes.
//
type Header struct {
	Index    int      `json:"index"`    // position in the trace, strictly increasing
	Label    string   `json:"label"`    // short human readable label
	Tag      Tag      `json:"tag"`      // semantic tag
	Duration Duration `json:"duration"` // always > 0
}

// Head returns h. Protocol frames embedding a Header get it for free.
//
func (h Header) Head() Header { return h }

// Frame is the interface implemented by all protocol specific frames.
//
// Levels returns the level of each line, in the order of the line names
// reported by the protocol package.
//
type Frame interface {
	Head() Header
	Levels() []Level
}

// Erase converts a slice of protocol specific frames to a slice of Frame.
//
func Erase[F Frame](fs []F) []Frame {
	out := make([]Frame, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

// Elapsed returns the total duration of a trace.
//
func Elapsed(fs []Frame) Duration {
	var d Duration
	for _, f := range fs {
		d += f.Head().Duration
	}
	return d
}
