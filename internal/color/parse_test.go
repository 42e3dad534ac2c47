package color

import (
	"testing"
)

var badColors = []string{"EFCA39", "#89ACB", "#", "", "#GG8000", "#AG0", "xtup"}

var goodColors = []struct {
	in  string
	out Color
}{
	{"#ABCDEF", Color{0xAB, 0xCD, 0xEF}},
	{"#8950BE", Color{0x89, 0x50, 0xBE}},
	{"#000000", Color{}},
	{"#FFFFFF", Color{255, 255, 255}},
	{"#fff", Color{255, 255, 255}},
	{"#e53", Color{0xEE, 0x55, 0x33}},
}

func TestBadColors(t *testing.T) {
	for _, s := range badColors {
		if c, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) = %+v; want error", s, c)
		}
	}
}

func TestGoodColors(t *testing.T) {
	for _, tt := range goodColors {
		if c, err := Parse(tt.in); err != nil {
			t.Errorf("Parse(%q) got error, want %+v", tt.in, tt.out)
		} else if c != tt.out {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, c, tt.out)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	var c Color
	if err := c.UnmarshalText([]byte("#8950be")); err != nil {
		t.Fatal(err)
	}
	out, err := c.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "#8950be" {
		t.Errorf("round trip: got %q, want %q", out, "#8950be")
	}
}
