package sigtrace_test

import (
	"testing"

	"github.com/db47h/sigtrace"
	"github.com/pkg/errors"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func TestBus_doubleBuffer(t *testing.T) {
	b := sigtrace.NewBus("a", "b")
	a, bb := b.Line("a"), b.Line("b")
	b.Set(a, sigtrace.Low)
	if b.Get(a) != sigtrace.High {
		t.Fatal("Set visible before Step")
	}
	i, ls := b.Step()
	if i != 0 || ls[a] != sigtrace.Low || ls[bb] != sigtrace.High {
		t.Fatalf("Step() = %d, %v", i, ls)
	}
	if b.Get(a) != sigtrace.Low {
		t.Fatal("Set not committed by Step")
	}
	// returned levels are a copy
	ls[a] = sigtrace.High
	b.Toggle(bb)
	i, ls = b.Step()
	if i != 1 || ls[a] != sigtrace.Low || ls[bb] != sigtrace.Low {
		t.Fatalf("Step() = %d, %v", i, ls)
	}
	if b.Steps() != 2 {
		t.Fatalf("Steps() = %d", b.Steps())
	}
	if n := b.Names(); len(n) != 2 || n[0] != "a" || n[1] != "b" {
		t.Fatalf("Names() = %v", n)
	}
}

func TestBus_openDrain(t *testing.T) {
	b := sigtrace.NewBus("sda")
	sda := b.Line("sda")
	b.OpenDrain(sda, 3)
	b.Drive(sda, 1, sigtrace.Low)
	if _, ls := b.Step(); ls[sda] != sigtrace.Low {
		t.Fatal("one driver low should pull the line low")
	}
	if b.Driver(sda, 1) != sigtrace.Low || b.Driver(sda, 0) != sigtrace.High {
		t.Fatal("bad driver readback")
	}
	b.Drive(sda, 0, sigtrace.Low)
	b.Drive(sda, 1, sigtrace.High)
	if _, ls := b.Step(); ls[sda] != sigtrace.Low {
		t.Fatal("line should still be low")
	}
	b.Release(sda)
	if _, ls := b.Step(); ls[sda] != sigtrace.High {
		t.Fatal("released line should be high")
	}
	expectPanic(t, "Set on open-drain", func() { b.Set(sda, sigtrace.Low) })
	expectPanic(t, "no drivers", func() { b.OpenDrain(sda, 0) })
}

func TestNewBus_errors(t *testing.T) {
	expectPanic(t, "duplicate", func() { sigtrace.NewBus("a", "a") })
	expectPanic(t, "unknown line", func() { sigtrace.NewBus("a").Line("b") })
}

func TestLevel(t *testing.T) {
	if sigtrace.LevelOf(true) != sigtrace.High || sigtrace.LevelOf(false) != sigtrace.Low {
		t.Error("LevelOf")
	}
	if sigtrace.Bit(0x4b, 2) != sigtrace.Low || sigtrace.Bit(0x4b, 3) != sigtrace.High {
		t.Error("Bit")
	}
	if sigtrace.And() != sigtrace.High || sigtrace.And(sigtrace.High, sigtrace.Low) != sigtrace.Low {
		t.Error("And")
	}
}

func TestResolution(t *testing.T) {
	for _, n := range []int{1, 8, 32} {
		if err := sigtrace.CheckResolution(n); err != nil {
			t.Errorf("%d: %v", n, err)
		}
	}
	for _, n := range []int{-1, 0, 33} {
		if err := sigtrace.CheckResolution(n); errors.Cause(err) != sigtrace.ErrResolution {
			t.Errorf("%d: got %v", n, err)
		}
	}
	expectPanic(t, "MustResolution", func() { sigtrace.MustResolution(0) })
}

func TestTag(t *testing.T) {
	if s := sigtrace.Ack.String(); s != "ack" {
		t.Errorf("Ack.String() = %q", s)
	}
	if s := sigtrace.Tag(42).String(); s != "Tag(42)" {
		t.Errorf("Tag(42).String() = %q", s)
	}
}
