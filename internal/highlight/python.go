package highlight

import (
	"strings"
)

// lineState is the continuation state threaded from each line to the next.
// It records whether a triple-quoted string literal is still open at the end
// of the line, and which delimiter/variant closes it.
type lineState int8

const (
	// stateUninitialized marks a line whose state has been discarded by a
	// full reset; it is distinct from stateNormal so an incremental pass
	// can't short-circuit on stale data. Scanning normalizes it (and any
	// other out-of-range value) to stateNormal.
	stateUninitialized lineState = -1

	stateNormal        lineState = 0
	stateTripleDouble  lineState = 1
	stateTripleSingle  lineState = 2
	stateFTripleDouble lineState = 3
	stateFTripleSingle lineState = 4
)

// closingDelimiter returns the delimiter that closes the string literal the
// given state says is open.
func closingDelimiter(st lineState) string {
	if st == stateTripleSingle || st == stateFTripleSingle {
		return "'''"
	}
	return `"""`
}

type pythonHighlighter struct {
	// state contains the scanner state at the end of each input line.
	// len(state) equals the number of lines - starting at the top - that
	// currently have highlights computed.
	state   []lineState
	regions []StyledRegion

	src     LineSource
	palette *Palette
	errors  map[int]Annotation // keyed by 1-indexed line number
}

func (f *pythonHighlighter) Invalidate(ty int) {
	if ty < len(f.state) {
		f.state = f.state[:ty]
	}
	f.regions = f.regions[:regionIndexForLine(f.regions, ty)]
}

func (f *pythonHighlighter) Regions(startY, endY int) []StyledRegion {
	if endY > len(f.state) {
		f.run(len(f.state), f.src.SliceLines(len(f.state), endY))
	}
	return f.regions[regionIndexForLine(f.regions, startY):]
}

func (f *pythonHighlighter) SetErrors(errs map[int]Annotation) {
	f.errors = errs
	f.reset()
}

func (f *pythonHighlighter) SetErrorLines(lines []int) {
	m := make(map[int]Annotation, len(lines))
	for _, l := range lines {
		m[l] = Annotation{}
	}
	f.errors = m
	f.reset()
}

func (f *pythonHighlighter) ErrorAt(line int) (Annotation, bool) {
	a, ok := f.errors[line]
	return a, ok
}

// reset discards all cached highlights. Every stored state is first forced
// to the uninitialized sentinel: a stale Normal must never be mistaken for
// a freshly computed one once the annotation set has been replaced.
func (f *pythonHighlighter) reset() {
	for i := range f.state {
		f.state[i] = stateUninitialized
	}
	f.state = f.state[:0]
	f.regions = f.regions[:0]
}

func (f *pythonHighlighter) currentState() lineState {
	if len(f.state) == 0 {
		return stateNormal
	}
	return f.state[len(f.state)-1]
}

func (f *pythonHighlighter) run(startY int, lines []string) {
	st := f.currentState()
	for j, line := range lines {
		st = f.scanLine(startY+j, line, st)
		f.state = append(f.state, st)
	}
}

// scanLine highlights a single line given the state carried out of the
// previous one, appends the resulting regions, and returns the exit state.
//
// The order of the steps is load-bearing: string continuation, then
// single-line strings, then new triple-quote openings, then comments, then
// the token rule table, then the error overlay. String and comment claims
// are recorded in the protection mask so the token rules can't restyle
// them; the error overlay runs last and derives from whatever style each
// character ended up with, so it decorates rather than overwrites.
func (f *pythonHighlighter) scanLine(ty int, line string, entry lineState) lineState {
	line = strings.TrimSuffix(line, "\n")
	n := len(line)
	st := entry
	if st < stateNormal || st > stateFTripleSingle {
		st = stateNormal
	}
	slots := make([]*Style, n)
	protected := make([]bool, n)
	cursor := 0

	// Step 1: resolve a triple-quoted string still open from the previous
	// line. If it doesn't close here, the whole line is inside the string
	// and nothing else applies.
	if st != stateNormal {
		delim := closingDelimiter(st)
		style := f.tripleStyle(st)
		p := strings.Index(line, delim)
		if p < 0 {
			fillSlots(slots, protected, 0, n, style, true)
			f.regions = appendLineRegions(f.regions, ty, slots)
			return st
		}
		fillSlots(slots, protected, 0, p+len(delim), style, true)
		cursor = p + len(delim)
		st = stateNormal
	}

	// Step 2: single-line string literals.
	f.scanSingleLineStrings(line, cursor, slots, protected)

	// Step 3: new multi-line string openings.
	st = f.scanTripleQuotes(line, cursor, slots, protected)

	// Step 4: comments. A '#' inside a string literal is protected by now
	// and can't start a comment; the first unprotected '#' claims the rest
	// of the line outright.
	for p := cursor; p < n; p++ {
		if line[p] == '#' && !protected[p] {
			fillSlots(slots, protected, p, n, &f.palette.Comment, true)
			break
		}
	}

	// Step 5: the token rule table, in its fixed order. A later rule's
	// claim on an unprotected character beats an earlier rule's.
	for _, rule := range pythonRules {
		applyRule(line, rule, f.palette, slots, protected)
	}

	// Step 6: error overlay.
	if ann, ok := f.errors[ty+1]; ok {
		overlayError(f.palette, line, ann, slots)
	}

	f.regions = appendLineRegions(f.regions, ty, slots)
	return st
}

// tripleStyle returns the style for text inside a triple-quoted string in
// the given state.
func (f *pythonHighlighter) tripleStyle(st lineState) *Style {
	if st == stateFTripleDouble || st == stateFTripleSingle {
		return f.palette.fstring()
	}
	return &f.palette.String
}

// scanSingleLineStrings extracts single-line string literals: plain,
// r-prefixed and f-prefixed. A prefix letter only counts when the character
// before it is not alphanumeric, so it can't be the tail of an identifier.
// Sequences that actually start a triple-quoted string are skipped whole
// and left for scanTripleQuotes.
func (f *pythonHighlighter) scanSingleLineStrings(line string, cursor int, slots []*Style, protected []bool) {
	n := len(line)
	for i := cursor; i < n; {
		c := line[i]
		if protected[i] || (c != '"' && c != '\'') {
			i++
			continue
		}
		if i+3 <= n && line[i+1] == c && line[i+2] == c {
			i += 3
			continue
		}
		start := i
		style := &f.palette.String
		raw := false
		if i > 0 {
			switch p := line[i-1]; p {
			case 'f', 'F', 'r', 'R':
				if i < 2 || !isAlnum(line[i-2]) {
					start = i - 1
					if p == 'f' || p == 'F' {
						style = f.palette.fstring()
					} else {
						raw = true
					}
				}
			}
		}
		end := findClosingQuote(line, i+1, c, raw)
		fillSlots(slots, protected, start, end, style, true)
		i = end
	}
}

// findClosingQuote returns the index just past the quote that closes a
// string opened before from, or len(line) if the string runs to the end of
// the line. Outside raw strings, a quote preceded by an odd number of
// consecutive backslashes is literal, not closing.
func findClosingQuote(line string, from int, quote byte, raw bool) int {
	for j := from; j < len(line); j++ {
		if line[j] != quote {
			continue
		}
		if !raw {
			bs := 0
			for p := j - 1; p >= from && line[p] == '\\'; p-- {
				bs++
			}
			if bs%2 == 1 {
				continue
			}
		}
		return j + 1
	}
	return len(line)
}

// scanTripleQuotes discovers triple-quoted strings opening at unprotected
// positions, testing the f-prefixed variant before the bare one. A string
// that closes on the same line is styled whole and scanning continues; one
// that doesn't close styles the rest of the line and its state carries over
// to the next line.
func (f *pythonHighlighter) scanTripleQuotes(line string, cursor int, slots []*Style, protected []bool) lineState {
	n := len(line)
	for i := cursor; i < n; {
		c := line[i]
		if protected[i] || (c != '"' && c != '\'') || i+3 > n || line[i+1] != c || line[i+2] != c {
			i++
			continue
		}
		start := i
		fprefix := i > 0 && (line[i-1] == 'f' || line[i-1] == 'F') && (i < 2 || !isAlnum(line[i-2]))
		if fprefix {
			start = i - 1
		}
		var st lineState
		switch {
		case c == '"' && fprefix:
			st = stateFTripleDouble
		case c == '"':
			st = stateTripleDouble
		case fprefix:
			st = stateFTripleSingle
		default:
			st = stateTripleSingle
		}
		style := f.tripleStyle(st)
		delim := line[i : i+3]
		q := strings.Index(line[i+3:], delim)
		if q < 0 {
			fillSlots(slots, protected, start, n, style, true)
			return st
		}
		end := i + 3 + q + 3
		fillSlots(slots, protected, start, end, style, true)
		i = end
	}
	return stateNormal
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
