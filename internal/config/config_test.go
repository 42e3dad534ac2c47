package config

import (
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/neoscript/nse/internal/color"
)

const sampleConfig = `
TabWidth = 8
ScrollSpeed = 3
AutosaveDelay = "500ms"

[TextStyle.Comment]
Foreground = "#888888"
Italic = true

[TextStyle.Error]
CurlyUnderline = true
UnderlineColor = "#ff8800"

[Lang.".py"]
Formatter = ["black", "-q", "-"]
Linter = ["pyflakes"]
`

func loadSample(t *testing.T) *Config {
	t.Helper()
	c := &Config{TabWidth: 4, ScrollSpeed: 1, Lang: make(map[string]LangConfig)}
	if _, err := toml.Decode(sampleConfig, c); err != nil {
		t.Fatal(err)
	}
	applyDefaults(c)
	return c
}

func TestDecode(t *testing.T) {
	c := loadSample(t)
	if c.TabWidth != 8 || c.ScrollSpeed != 3 {
		t.Errorf("got TabWidth=%d ScrollSpeed=%d, want 8 and 3", c.TabWidth, c.ScrollSpeed)
	}
	if c.AutosaveDelay.Duration != 500*time.Millisecond {
		t.Errorf("AutosaveDelay = %v, want 500ms", c.AutosaveDelay.Duration)
	}
	lc := c.ConfigForExt(".py")
	if len(lc.Formatter) != 3 || lc.Formatter[0] != "black" {
		t.Errorf("Formatter = %v", lc.Formatter)
	}
	if len(lc.Linter) != 1 || lc.Linter[0] != "pyflakes" {
		t.Errorf("Linter = %v", lc.Linter)
	}
	if lc := c.ConfigForExt(".mel"); len(lc.Formatter) != 0 || len(lc.Linter) != 0 {
		t.Errorf("ConfigForExt(.mel) = %v, want zero value", lc)
	}
}

func TestStyleDefaults(t *testing.T) {
	c := loadSample(t)
	// Explicitly configured styles survive.
	if got, want := c.TextStyle.Comment, (Style{Foreground: &color.Color{R: 0x88, G: 0x88, B: 0x88}, Italic: true}); *got.Foreground != *want.Foreground || !got.Italic {
		t.Errorf("Comment style = %+v, want %+v", got, want)
	}
	if c.TextStyle.Error.UnderlineColor == nil || *c.TextStyle.Error.UnderlineColor != (color.Color{R: 0xff, G: 0x88, B: 0}) {
		t.Errorf("Error underline color = %v", c.TextStyle.Error.UnderlineColor)
	}
	// Unconfigured styles fall back to the built-in defaults.
	if c.TextStyle.String.Foreground == nil {
		t.Error("String style has no default foreground")
	}
	if !c.TextStyle.Keyword.Bold {
		t.Error("Keyword default should be bold")
	}
	// FString deliberately has no default: the highlighter falls back to
	// the String style when it is left blank.
	if c.TextStyle.FString != (Style{}) {
		t.Errorf("FString = %+v, want zero value", c.TextStyle.FString)
	}
}

func TestPaletteConversion(t *testing.T) {
	c := loadSample(t)
	p := c.Palette()
	if p.Comment.Foreground != c.TextStyle.Comment.Foreground {
		t.Error("palette comment foreground doesn't match config")
	}
	if !p.Error.CurlyUnderline || p.Error.UnderlineColor != c.TextStyle.Error.UnderlineColor {
		t.Errorf("palette error style = %+v", p.Error)
	}
}
