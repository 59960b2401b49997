// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sigtrace

// Level is the logic level of a line.
//
type Level uint8

// Logic levels.
//
const (
	Low Level = iota
	High
)

// LevelOf converts a boolean to a Level.
//
func LevelOf(b bool) Level {
	if b {
		return High
	}
	return Low
}

// Bit returns the level of bit i of v.
//
func Bit(v uint64, i uint) Level {
	return Level(v >> i & 1)
}

// And returns the level of an open-drain line driven by all the given
// drivers: any driver pulling the line low wins. A line with no driver is
// pulled high.
//
func And(levels ...Level) Level {
	for _, l := range levels {
		if l == Low {
			return Low
		}
	}
	return High
}

// Bool returns true if l is High.
//
func (l Level) Bool() bool { return l != Low }

func (l Level) String() string {
	if l == Low {
		return "0"
	}
	return "1"
}
