package uart_test

import (
	"fmt"
	"testing"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/sigtest"
	"github.com/db47h/sigtrace/uart"
)

func TestTrace(t *testing.T) {
	for c := uint(0); c < 256; c++ {
		fs := uart.Trace(c)
		sigtest.CheckTrace(t, sigtrace.Erase(fs), sigtest.AllHigh)
		if len(fs) != uart.FrameLen {
			t.Fatalf("Trace(%#02x): got %d frames, want %d", c, len(fs), uart.FrameLen)
		}
		if fs[0].Tag != sigtrace.Idle || fs[11].Tag != sigtrace.Idle {
			t.Fatalf("Trace(%#02x): first and last frames must be idle", c)
		}
		if fs[1].Tag != sigtrace.Start || fs[1].TX != sigtrace.Low {
			t.Fatalf("Trace(%#02x): bad start bit %+v", c, fs[1])
		}
		if fs[10].Tag != sigtrace.Stop || fs[10].TX != sigtrace.High {
			t.Fatalf("Trace(%#02x): bad stop bit %+v", c, fs[10])
		}
		var got uint
		for i := 0; i < 8; i++ {
			f := fs[2+i]
			if f.Tag != sigtrace.Data || f.Duration != sigtrace.Unit {
				t.Fatalf("Trace(%#02x): bad data frame %+v", c, f)
			}
			got |= uint(f.TX) << uint(i)
		}
		if got != c {
			t.Fatalf("Trace(%#02x): data bits read back as %#02x", c, got)
		}
	}
}

func TestTrace_mask(t *testing.T) {
	sigtest.Idempotent(t, func() interface{} { return uart.Trace('A') })
	a, b := uart.Trace(0x141), uart.Trace(0x41)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestDecode(t *testing.T) {
	for c := uint(0); c < 256; c++ {
		got, err := uart.Decode(uart.Trace(c))
		if err != nil {
			t.Fatal(err)
		}
		if uint(got) != c {
			t.Fatalf("Decode(Trace(%#02x)) = %#02x", c, got)
		}
	}
	fs := uart.Trace('x')
	fs[10].TX = sigtrace.Low
	if _, err := uart.Decode(fs); err == nil {
		t.Fatal("expected framing error")
	}
	if _, err := uart.Decode(fs[:5]); err == nil {
		t.Fatal("expected error on truncated trace")
	}
	if _, err := uart.Decode(nil); err == nil {
		t.Fatal("expected error on empty trace")
	}
}

func ExampleTrace() {
	for _, f := range uart.Trace('K') {
		fmt.Print(f.TX)
	}
	fmt.Println()
	// Output:
	// 101101001011
}
