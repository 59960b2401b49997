package i2c_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/i2c"
	"github.com/db47h/sigtrace/sigtest"
)

// sampled returns the SDA levels of frames tagged tag, sampled while SCL is
// high, in trace order.
func sampled(fs []i2c.Frame, tag sigtrace.Tag) []i2c.Frame {
	var out []i2c.Frame
	for _, f := range fs {
		if f.Tag == tag && f.SCL == sigtrace.High {
			out = append(out, f)
		}
	}
	return out
}

func TestWrite(t *testing.T) {
	f := func(a, d uint8) bool {
		addr, data := uint(a&0x7f), uint(d)
		fs := i2c.Write(addr, data)
		sigtest.CheckTrace(t, sigtrace.Erase(fs), sigtest.AllHigh)

		var gotA, gotD uint
		for _, f := range sampled(fs, sigtrace.Address) {
			if f.Bit < 0 {
				if f.SDA != sigtrace.Low {
					t.Errorf("Write(%#02x, %#02x): R/W bit is not a write", addr, data)
					return false
				}
				continue
			}
			gotA = gotA<<1 | uint(f.SDA)
		}
		for _, f := range sampled(fs, sigtrace.Data) {
			gotD = gotD<<1 | uint(f.SDA)
		}
		acks := sampled(fs, sigtrace.Ack)
		if len(acks) != 2 {
			t.Errorf("Write(%#02x, %#02x): got %d acknowledge samples", addr, data, len(acks))
			return false
		}
		for _, f := range acks {
			if f.SDA != sigtrace.Low {
				t.Errorf("Write(%#02x, %#02x): ACK not asserted at frame %d", addr, data, f.Index)
				return false
			}
		}
		return gotA == addr && gotD == data
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}

// TestWrite_stable checks that SDA never changes while SCL is high, except
// for the start and stop conditions.
func TestWrite_stable(t *testing.T) {
	fs := i2c.Write(0x55, 0xaa)
	for i := 1; i < len(fs); i++ {
		p, c := fs[i-1], fs[i]
		if p.SCL == sigtrace.High && c.SCL == sigtrace.High && p.SDA != c.SDA {
			if c.Tag != sigtrace.Start && c.Tag != sigtrace.Stop {
				t.Fatalf("frame %d (%s): SDA changed while SCL high", c.Index, c.Label)
			}
		}
	}
	// start: SDA falls while SCL high
	if fs[1].Tag != sigtrace.Start || fs[1].SDA != sigtrace.Low || fs[1].SCL != sigtrace.High {
		t.Fatalf("bad start condition: %+v", fs[1])
	}
	// stop: SDA rises while SCL high
	stop := fs[len(fs)-2]
	if stop.Tag != sigtrace.Stop || stop.SDA != sigtrace.High || stop.SCL != sigtrace.High {
		t.Fatalf("bad stop condition: %+v", stop)
	}
	if prev := fs[len(fs)-3]; prev.SDA != sigtrace.Low || prev.SCL != sigtrace.High {
		t.Fatalf("SCL must rise before SDA on stop: %+v", prev)
	}
}

func TestWrite_mask(t *testing.T) {
	sigtest.Idempotent(t, func() interface{} { return i2c.Write(0x21, 0x42) })
	a, b := i2c.Write(0xa1, 0x142), i2c.Write(0x21, 0x42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestDecode(t *testing.T) {
	f := func(a, d uint8) bool {
		addr, data, err := i2c.Decode(i2c.Write(uint(a), uint(d)))
		if err != nil {
			t.Error(err)
			return false
		}
		return addr == a&0x7f && data == d
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}

	fs := i2c.Write(0x10, 0x20)
	if _, _, err := i2c.Decode(fs[3:]); err == nil {
		t.Fatal("expected missing start condition")
	}
	if _, _, err := i2c.Decode(fs[:len(fs)-3]); err == nil {
		t.Fatal("expected missing stop condition")
	}
	// NACK on the data byte
	for i := range fs {
		if fs[i].Tag == sigtrace.Ack && fs[i].Index > 40 {
			fs[i].SDA = sigtrace.High
		}
	}
	if _, _, err := i2c.Decode(fs); err == nil {
		t.Fatal("expected data not acknowledged")
	}
}
