package highlight

import (
	"strings"
)

// melState is the continuation state for MEL lines. MEL has no multi-line
// strings, so the only construct threaded across lines is the C-style block
// comment.
type melState int8

const (
	melStateUninitialized melState = -1
	melStateNormal        melState = 0
	melStateComment       melState = 1
)

// melHighlighter is the MEL variant of the per-line engine: the same scan
// shape as Python's, without the triple-quote states.
type melHighlighter struct {
	state   []melState
	regions []StyledRegion

	src     LineSource
	palette *Palette
	errors  map[int]Annotation
}

func (f *melHighlighter) Invalidate(ty int) {
	if ty < len(f.state) {
		f.state = f.state[:ty]
	}
	f.regions = f.regions[:regionIndexForLine(f.regions, ty)]
}

func (f *melHighlighter) Regions(startY, endY int) []StyledRegion {
	if endY > len(f.state) {
		f.run(len(f.state), f.src.SliceLines(len(f.state), endY))
	}
	return f.regions[regionIndexForLine(f.regions, startY):]
}

func (f *melHighlighter) SetErrors(errs map[int]Annotation) {
	f.errors = errs
	f.reset()
}

func (f *melHighlighter) SetErrorLines(lines []int) {
	m := make(map[int]Annotation, len(lines))
	for _, l := range lines {
		m[l] = Annotation{}
	}
	f.errors = m
	f.reset()
}

func (f *melHighlighter) ErrorAt(line int) (Annotation, bool) {
	a, ok := f.errors[line]
	return a, ok
}

func (f *melHighlighter) reset() {
	for i := range f.state {
		f.state[i] = melStateUninitialized
	}
	f.state = f.state[:0]
	f.regions = f.regions[:0]
}

func (f *melHighlighter) currentState() melState {
	if len(f.state) == 0 {
		return melStateNormal
	}
	return f.state[len(f.state)-1]
}

func (f *melHighlighter) run(startY int, lines []string) {
	st := f.currentState()
	for j, line := range lines {
		st = f.scanLine(startY+j, line, st)
		f.state = append(f.state, st)
	}
}

// scanLine highlights one MEL line: block-comment continuation first, then
// strings and comments (protected), then the MEL token rule table, then the
// error overlay.
func (f *melHighlighter) scanLine(ty int, line string, entry melState) melState {
	line = strings.TrimSuffix(line, "\n")
	n := len(line)
	st := entry
	if st != melStateComment {
		st = melStateNormal
	}
	slots := make([]*Style, n)
	protected := make([]bool, n)
	cursor := 0

	if st == melStateComment {
		p := strings.Index(line, "*/")
		if p < 0 {
			fillSlots(slots, protected, 0, n, &f.palette.Comment, true)
			f.regions = appendLineRegions(f.regions, ty, slots)
			return st
		}
		fillSlots(slots, protected, 0, p+2, &f.palette.Comment, true)
		cursor = p + 2
		st = melStateNormal
	}

scan:
	for i := cursor; i < n; {
		if protected[i] {
			i++
			continue
		}
		switch c := line[i]; {
		case c == '"':
			end := findClosingQuote(line, i+1, '"', false)
			fillSlots(slots, protected, i, end, &f.palette.String, true)
			i = end
		case c == '/' && i+1 < n && line[i+1] == '/':
			fillSlots(slots, protected, i, n, &f.palette.Comment, true)
			break scan
		case c == '/' && i+1 < n && line[i+1] == '*':
			q := strings.Index(line[i+2:], "*/")
			if q < 0 {
				fillSlots(slots, protected, i, n, &f.palette.Comment, true)
				st = melStateComment
				break scan
			}
			end := i + 2 + q + 2
			fillSlots(slots, protected, i, end, &f.palette.Comment, true)
			i = end
		default:
			i++
		}
	}

	for _, rule := range melRules {
		applyRule(line, rule, f.palette, slots, protected)
	}

	if ann, ok := f.errors[ty+1]; ok {
		overlayError(f.palette, line, ann, slots)
	}

	f.regions = appendLineRegions(f.regions, ty, slots)
	return st
}
