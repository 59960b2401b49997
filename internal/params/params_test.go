package params

import (
	"testing"
)

func TestParse(t *testing.T) {
	td := []struct {
		in   string
		want Set
		err  bool
	}{
		{"", Set{}, false},
		{"addr=0x21", Set{"addr": "0x21"}, false},
		{"addr=0x21, data=0b1010", Set{"addr": "0x21", "data": "0b1010"}, false},
		{"  mode=3 out=0xa5,in=7 ", Set{"mode": "3", "out": "0xa5", "in": "7"}, false},
		{"vin=-1.5e-1", Set{"vin": "-1.5e-1"}, false},
		{"q=a=b", Set{"q": "a=b"}, false},
		{"addr", nil, true},
		{"addr=", nil, true},
		{"=3", nil, true},
		{"1x=3", nil, true},
		{"a=1, a=2", nil, true},
	}
	for _, d := range td {
		got, err := Parse(d.in)
		if d.err {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %v", d.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", d.in, err)
			continue
		}
		if len(got) != len(d.want) {
			t.Errorf("Parse(%q) = %v, want %v", d.in, got, d.want)
			continue
		}
		for k, v := range d.want {
			if got[k] != v {
				t.Errorf("Parse(%q)[%s] = %q, want %q", d.in, k, got[k], v)
			}
		}
	}
}

func TestGetters(t *testing.T) {
	s, err := ParseArgs([]string{"addr=0x21", "bits=8", "vin=3.3", "c=K", "bad=zz"})
	if err != nil {
		t.Fatal(err)
	}
	if v, err := s.Uint("addr", 0); err != nil || v != 0x21 {
		t.Errorf("Uint(addr) = %v, %v", v, err)
	}
	if v, err := s.Uint("data", 7); err != nil || v != 7 {
		t.Errorf("Uint(data) default = %v, %v", v, err)
	}
	if v, err := s.Int("bits", 0); err != nil || v != 8 {
		t.Errorf("Int(bits) = %v, %v", v, err)
	}
	if v, err := s.Float("vin", 0); err != nil || v != 3.3 {
		t.Errorf("Float(vin) = %v, %v", v, err)
	}
	if v, err := s.Rune("c", 0); err != nil || v != 'K' {
		t.Errorf("Rune(c) = %v, %v", v, err)
	}
	if _, err := s.Uint("bad", 0); err == nil {
		t.Error("Uint(bad): expected error")
	}
	if _, err := s.Rune("addr", 0); err == nil {
		t.Error("Rune(addr): expected error")
	}
	if err := s.Check("addr", "bits", "vin", "c"); err == nil {
		t.Error("Check: expected unknown parameter error")
	}
	if err := s.Check("addr", "bits", "vin", "c", "bad"); err != nil {
		t.Error(err)
	}
	if got, want := (Set{"b": "2", "a": "1"}).Encode(), "a=1, b=2"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}
