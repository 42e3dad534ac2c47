// Package config defines configuration settings for nse and functions for loading them from a file.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/neoscript/nse/internal/color"
	"github.com/neoscript/nse/internal/highlight"

	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	TabWidth    int
	ScrollSpeed int
	// AutosaveDelay is how long after the last edit the buffer is written
	// back to disk. Zero or negative disables autosave.
	AutosaveDelay Duration
	TextStyle     TextStyles
	Lang          map[string]LangConfig
}

// TextStyles is the configurable half of the highlighting palette; any style
// left unset in the config file gets a built-in default.
type TextStyles struct {
	Comment, String, FString   Style
	Keyword, Import, Constant  Style
	Builtin, Number, Decorator Style
	Definition, Dunder         Style
	Framework, Exception       Style
	Identity, TypeHint         Style
	Operator, Placeholder      Style
	Variable                   Style
	Error                      Style
}

type Style struct {
	Foreground, Background  *color.Color
	Bold, Italic, Underline bool
	CurlyUnderline          bool
	UnderlineColor          *color.Color
}

type LangConfig struct {
	Formatter []string // Formatter program and arguments to pass to it
	Linter    []string // Linter program and arguments; run on save
}

// Duration wraps time.Duration so it can be written as a string ("1.5s") in
// the config file.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	d.Duration = v
	return err
}

// ConfigForExt returns the appropriate LangConfig for a file with the given filename extension.
// If none exists, returns a zero LangConfig.
func (c *Config) ConfigForExt(ext string) LangConfig { return c.Lang[ext] }

// Palette converts the configured text styles into a highlighting palette.
func (c *Config) Palette() *highlight.Palette {
	t := &c.TextStyle
	return &highlight.Palette{
		Comment:     hlStyle(t.Comment),
		String:      hlStyle(t.String),
		FString:     hlStyle(t.FString),
		Keyword:     hlStyle(t.Keyword),
		Import:      hlStyle(t.Import),
		Constant:    hlStyle(t.Constant),
		Builtin:     hlStyle(t.Builtin),
		Number:      hlStyle(t.Number),
		Decorator:   hlStyle(t.Decorator),
		Definition:  hlStyle(t.Definition),
		Dunder:      hlStyle(t.Dunder),
		Framework:   hlStyle(t.Framework),
		Exception:   hlStyle(t.Exception),
		Identity:    hlStyle(t.Identity),
		TypeHint:    hlStyle(t.TypeHint),
		Operator:    hlStyle(t.Operator),
		Placeholder: hlStyle(t.Placeholder),
		Variable:    hlStyle(t.Variable),
		Error:       hlStyle(t.Error),
	}
}

func hlStyle(s Style) highlight.Style {
	return highlight.Style{
		Foreground: s.Foreground, Background: s.Background,
		Bold: s.Bold, Italic: s.Italic, Underline: s.Underline,
		CurlyUnderline: s.CurlyUnderline, UnderlineColor: s.UnderlineColor,
	}
}

// Path returns the location of the primary configuration file, which need not exist yet.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nse", "config.toml"), nil
}

// Load finds and reads the primary configuration file for the current user, according to the
// XDG base directory specification for configuration files. It always returns a usable *Config,
// even if it also returns a non-nil error.
// The file is expected to be at nse/config.toml in one of the appropriate configuration directories.
func Load() (c *Config, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("error loading config file: %w", err)
		}
		applyDefaults(c)
	}()
	c = &Config{
		TabWidth:      4,
		ScrollSpeed:   1,
		AutosaveDelay: Duration{2 * time.Second},
		Lang:          make(map[string]LangConfig),
	}
	path, err := Path()
	if err != nil {
		return c, err
	}
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()
	_, err = toml.NewDecoder(f).Decode(c)
	return c, err
}

func applyDefaults(c *Config) {
	t := &c.TextStyle
	defaults := []struct {
		s *Style
		d Style
	}{
		{&t.Comment, Style{Foreground: &color.Color{R: 0, G: 200, B: 0}}},
		{&t.String, Style{Foreground: &color.Color{R: 0, G: 0, B: 200}}},
		{&t.Keyword, Style{Foreground: &color.Color{R: 200, G: 100, B: 0}, Bold: true}},
		{&t.Import, Style{Foreground: &color.Color{R: 200, G: 100, B: 0}}},
		{&t.Constant, Style{Foreground: &color.Color{R: 150, G: 0, B: 150}}},
		{&t.Builtin, Style{Foreground: &color.Color{R: 0, G: 150, B: 150}}},
		{&t.Number, Style{Foreground: &color.Color{R: 150, G: 150, B: 0}}},
		{&t.Decorator, Style{Foreground: &color.Color{R: 100, G: 100, B: 200}}},
		{&t.Definition, Style{Foreground: &color.Color{R: 0, G: 100, B: 200}, Bold: true}},
		{&t.Dunder, Style{Foreground: &color.Color{R: 150, G: 0, B: 150}, Italic: true}},
		{&t.Framework, Style{Foreground: &color.Color{R: 0, G: 150, B: 100}}},
		{&t.Exception, Style{Foreground: &color.Color{R: 200, G: 0, B: 0}}},
		{&t.Identity, Style{Foreground: &color.Color{R: 150, G: 0, B: 150}, Italic: true}},
		{&t.TypeHint, Style{Foreground: &color.Color{R: 0, G: 100, B: 150}, Italic: true}},
		{&t.Operator, Style{Foreground: &color.Color{R: 100, G: 100, B: 100}}},
		{&t.Placeholder, Style{Foreground: &color.Color{R: 200, G: 0, B: 200}}},
		{&t.Variable, Style{Foreground: &color.Color{R: 0, G: 100, B: 200}}},
		{&t.Error, Style{CurlyUnderline: true, UnderlineColor: &color.Color{R: 255, G: 0, B: 0}}},
	}
	for _, x := range defaults {
		if *x.s == (Style{}) {
			*x.s = x.d
		}
	}
}
