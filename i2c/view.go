// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package i2c

import (
	"strconv"

	"github.com/db47h/sigtrace"
)

// MasterState is the display state of a contending master.
//
type MasterState uint8

// Master states. Idle is the zero value, for a master not taking part in a
// transaction.
//
const (
	Idle MasterState = iota
	Active
	Lost
)

func (s MasterState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Lost:
		return "lost"
	}
	return "MasterState(" + strconv.Itoa(int(s)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
//
func (s MasterState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MasterView holds the per master display fields of one arbitration frame.
//
type MasterView struct {
	Index int
	Drive [2]sigtrace.Level // effective SDA drive level of each master
	State [2]MasterState
}

// View projects the arbitration result onto per frame master drive levels and
// states, for display purposes. Drive levels are the SDA driver outputs
// committed on the bus by Arbitrate; states are derived from the arbitration
// outcome. A master is shown as lost from the bit in which it lost.
//
func (a *Arbitration) View() []MasterView {
	out := make([]MasterView, len(a.Frames))
	var lost [2]bool
	for i, f := range a.Frames {
		v := MasterView{Index: f.Index, Drive: [2]sigtrace.Level{sigtrace.High, sigtrace.High}}
		if i < len(a.drives) {
			v.Drive = a.drives[i]
		}
		for m, ms := range a.Masters {
			if ms.Lost() && f.Tag == sigtrace.Address && f.Bit == ms.LostAt {
				lost[m] = true
			}
			v.State[m] = Active
			if lost[m] {
				v.State[m] = Lost
			}
		}
		out[i] = v
	}
	return out
}
