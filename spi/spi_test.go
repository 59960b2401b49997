package spi_test

import (
	"fmt"
	"testing"
	"testing/quick"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/sigtest"
	"github.com/db47h/sigtrace/spi"
)

var modes = []spi.Mode{spi.Mode0, spi.Mode1, spi.Mode2, spi.Mode3}

func TestExchange(t *testing.T) {
	for _, m := range modes {
		m := m
		t.Run(m.String(), func(t *testing.T) {
			f := func(out, in uint8) bool {
				fs := spi.Exchange(m, uint(out), uint(in))
				sigtest.CheckTrace(t, sigtrace.Erase(fs), sigtest.LineHigh(0))
				if first, last := fs[0], fs[len(fs)-1]; first.SCK != m.CPOL() || last.SCK != m.CPOL() {
					t.Errorf("clock not at idle level %v at trace ends", m.CPOL())
					return false
				}
				gotOut, gotIn, err := spi.Decode(m, fs)
				if err != nil {
					t.Error(err)
					return false
				}
				return gotOut == out && gotIn == in
			}
			if err := quick.Check(f, nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}

// TestExchange_edges checks that the data lines never change on a sampling
// edge and that the clock is idle whenever chip select is inactive.
func TestExchange_edges(t *testing.T) {
	for _, m := range modes {
		fs := spi.Exchange(m, 0xa5, 0x5a)
		for i := 1; i < len(fs); i++ {
			p, c := fs[i-1], fs[i]
			if spi.SampleEdge(m, p, c) && (p.MOSI != c.MOSI || p.MISO != c.MISO) {
				t.Fatalf("%v frame %d: data changed on sampling edge", m, c.Index)
			}
			if c.CS == sigtrace.High && c.SCK != m.CPOL() {
				t.Fatalf("%v frame %d: clock active while not selected", m, c.Index)
			}
		}
		want := 20
		if m.CPHA() == 0 {
			want = 21
		}
		if len(fs) != want {
			t.Fatalf("%v: got %d frames, expected %d", m, len(fs), want)
		}
	}
}

// TestExchange_clock checks that every data bit spans one full clock pulse,
// starting at the idle level for CPHA=0 and at the active level for CPHA=1.
func TestExchange_clock(t *testing.T) {
	for _, m := range modes {
		var sck []sigtrace.Level
		for _, f := range spi.Exchange(m, 0xff, 0x00) {
			if f.Tag == sigtrace.Data {
				sck = append(sck, f.SCK)
			}
		}
		if len(sck) != 16 {
			t.Fatalf("%v: %d data frames", m, len(sck))
		}
		first := m.CPOL()
		if m.CPHA() == 1 {
			first ^= 1
		}
		for i := 0; i < len(sck); i += 2 {
			if sck[i] != first || sck[i+1] != first^1 {
				t.Fatalf("%v bit %d: clock %v%v", m, i/2, sck[i], sck[i+1])
			}
		}
	}
}

func TestExchange_mask(t *testing.T) {
	sigtest.Idempotent(t, func() interface{} { return spi.Exchange(spi.Mode3, 0x3c, 0xc3) })
	a, b := spi.Exchange(spi.Mode(6), 0x13c, 0x1c3), spi.Exchange(spi.Mode2, 0x3c, 0xc3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestDecode_wrongMode(t *testing.T) {
	// mode 0 and mode 1 sample on opposite edges: decoding a mode 0 trace as
	// mode 1 reads the wrong bits.
	fs := spi.Exchange(spi.Mode0, 0x80, 0x01)
	out, in, err := spi.Decode(spi.Mode1, fs)
	if err == nil && out == 0x80 && in == 0x01 {
		t.Fatal("decoding with the wrong mode should not round-trip")
	}
	if _, _, err := spi.Decode(spi.Mode0, fs[:10]); err == nil {
		t.Fatal("expected error on truncated trace")
	}
}

func ExampleExchange() {
	for _, f := range spi.Exchange(spi.Mode1, 0xf0, 0x0f) {
		fmt.Printf("%-4s cs=%v sck=%v mosi=%v miso=%v\n", f.Label, f.CS, f.SCK, f.MOSI, f.MISO)
	}
	// Output:
	// IDLE cs=1 sck=0 mosi=0 miso=0
	// CS↓  cs=0 sck=0 mosi=0 miso=0
	// D7   cs=0 sck=1 mosi=1 miso=0
	// D7   cs=0 sck=0 mosi=1 miso=0
	// D6   cs=0 sck=1 mosi=1 miso=0
	// D6   cs=0 sck=0 mosi=1 miso=0
	// D5   cs=0 sck=1 mosi=1 miso=0
	// D5   cs=0 sck=0 mosi=1 miso=0
	// D4   cs=0 sck=1 mosi=1 miso=0
	// D4   cs=0 sck=0 mosi=1 miso=0
	// D3   cs=0 sck=1 mosi=0 miso=1
	// D3   cs=0 sck=0 mosi=0 miso=1
	// D2   cs=0 sck=1 mosi=0 miso=1
	// D2   cs=0 sck=0 mosi=0 miso=1
	// D1   cs=0 sck=1 mosi=0 miso=1
	// D1   cs=0 sck=0 mosi=0 miso=1
	// D0   cs=0 sck=1 mosi=0 miso=1
	// D0   cs=0 sck=0 mosi=0 miso=1
	// CS↑  cs=1 sck=0 mosi=0 miso=1
	// IDLE cs=1 sck=0 mosi=0 miso=0
}
