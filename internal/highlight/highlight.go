// Package highlight provides incremental syntax highlighting for the script
// languages nse edits: Maya-style Python and MEL.
//
// Highlighting is computed one line at a time, top to bottom. Each line's
// scan receives the state carried out of the previous line (whether a
// multi-line construct is still open) and publishes its own exit state for
// the next line; a highlighter caches these states so that only lines past
// the last edit need rescanning.
package highlight

import (
	"fmt"
	"sort"

	"github.com/neoscript/nse/internal/color"
)

// A Highlighter provides syntax highlighting for a specific language.
type Highlighter interface {
	// Invalidate notifies the highlighter that the source text starting at
	// line ty has changed.
	Invalidate(ty int)
	// Regions returns all highlighted regions belonging to lines in the
	// interval [startY, endY[. It may also return additional regions past
	// the end of that interval. Callers should not modify the returned
	// slice.
	Regions(startY, endY int) []StyledRegion
	// SetErrors replaces the full set of error annotations with errs, keyed
	// by 1-indexed line number. All cached line states are discarded.
	SetErrors(errs map[int]Annotation)
	// SetErrorLines is like SetErrors for callers that only know line
	// numbers; the column of each annotation is recorded as unknown.
	SetErrorLines(lines []int)
	// ErrorAt returns the annotation for the 1-indexed line number, if any.
	ErrorAt(line int) (Annotation, bool)
}

// LineSource is the interface used to fetch lines to be highlighted.
// It is implemented by *buffer.Buffer.
type LineSource interface {
	SliceLines(i, j int) []string
}

// An Annotation describes one diagnostic attached to a line, as produced by
// an external linter. The highlighter only renders annotations; it never
// creates or modifies them.
type Annotation struct {
	Column  int // 1-indexed; 0 means the column is unknown
	Message string
}

// Language returns a Highlighter appropriate for the specified language.
// The styles returned by Regions can point to fields of the given palette;
// modifying the palette will change these styles automatically.
// It always returns a non-nil Highlighter.
func Language(lang string, src LineSource, pal *Palette) Highlighter {
	switch lang {
	case "python", "py":
		return &pythonHighlighter{src: src, palette: pal}
	case "mel":
		return &melHighlighter{src: src, palette: pal}
	default:
		// If no highlighter is available for the desired language, return
		// one that doesn't do anything.
		return nullFormatter{}
	}
}

// LanguageForExtension maps a filename extension (with leading dot) to the
// language name understood by Language. Unknown extensions map to "".
func LanguageForExtension(ext string) string {
	switch ext {
	case ".py", ".pyw":
		return "python"
	case ".mel":
		return "mel"
	}
	return ""
}

// A Palette defines the colours to be used to highlight the types of text
// recognized by the highlighters.
// Typically, Default will be left blank, to use the output device's defaults.
type Palette struct {
	Default     Style
	Comment     Style
	String      Style
	FString     Style // distinct style for f-strings; zero value falls back to String
	Keyword     Style
	Import      Style
	Constant    Style
	Builtin     Style
	Number      Style
	Decorator   Style
	Definition  Style // names bound by class/def and MEL proc declarations
	Dunder      Style
	Framework   Style // Maya and Qt framework identifiers
	Exception   Style
	Identity    Style // self and cls
	TypeHint    Style
	Operator    Style
	Placeholder Style
	Variable    Style // MEL $variables
	Error       Style // decoration added to lines carrying lint errors
}

// fstring returns the style for f-string text: the FString style if one is
// configured, else the plain String style.
func (p *Palette) fstring() *Style {
	if p.FString == (Style{}) {
		return &p.String
	}
	return &p.FString
}

// A StyledRegion is a region of text that should be rendered with the
// associated style. The indexes reference the slice of strings that was
// passed to the highlighter.
type StyledRegion struct {
	Line       int
	Start, End int // Measured in bytes
	*Style
}

func (r StyledRegion) String() string {
	return fmt.Sprintf("style=%+v text=(%d)[%d:%d]", *r.Style, r.Line, r.Start, r.End)
}

// A Style describes the appearance of a chunk of text.
// The zero Style means non-bold, non-underline text with the default colors
// for the output device.
type Style struct {
	Foreground, Background  *color.Color
	Bold, Italic, Underline bool

	// CurlyUnderline selects the curly underline variant, drawn in
	// UnderlineColor where supported. It is combined with whatever other
	// attributes the style carries, which is how error decoration layers
	// over token coloring without erasing it.
	CurlyUnderline bool
	UnderlineColor *color.Color
}

// appendRegion appends r to out, coalescing it with the last region in out
// if they're adjacent and share a style. It returns the extended slice,
// just like append.
func appendRegion(out []StyledRegion, r StyledRegion) []StyledRegion {
	if r.Start == r.End {
		return out
	}
	if n := len(out); n != 0 && out[n-1].Line == r.Line && out[n-1].End == r.Start && out[n-1].Style == r.Style {
		out[n-1].End = r.End
		return out
	}
	return append(out, r)
}

// appendLineRegions converts a line's per-character style slots into
// StyledRegions appended to out. Adjacent characters sharing a style pointer
// become a single region; characters with no style are gaps.
func appendLineRegions(out []StyledRegion, ty int, slots []*Style) []StyledRegion {
	start := 0
	for i := 1; i <= len(slots); i++ {
		if i == len(slots) || slots[i] != slots[start] {
			if slots[start] != nil {
				out = appendRegion(out, StyledRegion{Line: ty, Start: start, End: i, Style: slots[start]})
			}
			start = i
		}
	}
	return out
}

// fillSlots assigns style to the slot of every character in [from, to[,
// optionally recording the claim in the protection mask.
func fillSlots(slots []*Style, protected []bool, from, to int, style *Style, protect bool) {
	if from < 0 {
		from = 0
	}
	if to > len(slots) {
		to = len(slots)
	}
	for i := from; i < to; i++ {
		slots[i] = style
		if protect {
			protected[i] = true
		}
	}
}

// regionIndexForLine returns the index of the first region in rs whose
// line >= ty, or len(rs) if no such region exists.
func regionIndexForLine(rs []StyledRegion, ty int) int {
	return sort.Search(len(rs), func(j int) bool { return rs[j].Line >= ty })
}

type nullFormatter struct{}

func (nullFormatter) Invalidate(int)                  {}
func (nullFormatter) Regions(int, int) []StyledRegion { return nil }
func (nullFormatter) SetErrors(map[int]Annotation)    {}
func (nullFormatter) SetErrorLines([]int)             {}
func (nullFormatter) ErrorAt(int) (Annotation, bool)  { return Annotation{}, false }
