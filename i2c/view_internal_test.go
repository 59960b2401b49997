package i2c

import (
	"testing"

	"github.com/db47h/sigtrace"
)

// replayDrive is the SDA drive rule of a contending master, restated from the
// protocol: own address bits until lost, released from the bit after the
// loss, low for the write bit and the stop condition while still active,
// released otherwise.
func replayDrive(m Master, f Frame, lostBefore bool) sigtrace.Level {
	switch f.Tag {
	case sigtrace.Start:
		return sigtrace.Low
	case sigtrace.Address:
		if lostBefore {
			return sigtrace.High
		}
		if f.Bit < 0 {
			return sigtrace.Low
		}
		return sigtrace.Bit(uint64(m.Address), uint(f.Bit))
	case sigtrace.Stop:
		if m.Lost() {
			return sigtrace.High
		}
		return f.SDA
	}
	return sigtrace.High
}

func TestView_committedDrives(t *testing.T) {
	for a := uint(0); a < 1<<AddrBits; a += 5 {
		for b := uint(0); b < 1<<AddrBits; b += 3 {
			r := Arbitrate(a, b)
			if len(r.drives) != len(r.Frames) {
				t.Fatalf("%#x/%#x: %d recorded drives for %d frames", a, b, len(r.drives), len(r.Frames))
			}
			for i, v := range r.View() {
				f := r.Frames[i]
				if v.Drive != r.drives[i] {
					t.Fatalf("%#x/%#x frame %d: view drives %v, bus drivers %v", a, b, f.Index, v.Drive, r.drives[i])
				}
				for m, ms := range r.Masters {
					lostBefore := ms.Lost() && (f.Tag != sigtrace.Address || f.Bit < ms.LostAt)
					if f.Tag == sigtrace.Idle || f.Tag == sigtrace.Ack {
						lostBefore = false
					}
					if want := replayDrive(ms, f, lostBefore); v.Drive[m] != want {
						t.Fatalf("%#x/%#x frame %d (%s): master %d drives %v, want %v", a, b, f.Index, f.Label, m, v.Drive[m], want)
					}
				}
			}
		}
	}
}

func TestView_literal(t *testing.T) {
	r := &Arbitration{Frames: Write(0x21, 0x42), Masters: [2]Master{{LostAt: -1}, {LostAt: -1}}}
	for _, v := range r.View() {
		if v.Drive != [2]sigtrace.Level{sigtrace.High, sigtrace.High} {
			t.Fatalf("frame %d: unrecorded drives should read released, got %v", v.Index, v.Drive)
		}
	}
}
