// Package buffer implements the line-oriented text buffer that nse edits.
package buffer

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Point represents a two-dimensional integer point in text or window space.
// Text-space X coordinates are measured in characters, as defined by
// NextCharBoundary.
type Point struct{ X, Y int }

// Less reports whether p comes before q in the text.
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Range represents the region of text lying between two Points, as defined
// by Point.Less. For any valid Range r, r.End.Less(r.Begin) is false.
type Range struct{ Begin, End Point }

// Normalize returns r with its endpoints swapped if necessary so that it is valid.
func (r Range) Normalize() Range {
	if r.End.Less(r.Begin) {
		return Range{r.End, r.Begin}
	}
	return r
}

// Empty reports whether r spans no characters.
func (r Range) Empty() bool { return r.Begin == r.End }

// Buffer is a text buffer that supports efficient access to individual lines
// of text. It implements the io.ReaderFrom and io.WriterTo interfaces.
// All lines except possibly the last include their trailing newline.
type Buffer struct {
	lines []string
}

func New() *Buffer { return &Buffer{lines: []string{""}} }

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	newLines := make([]string, len(b.lines))
	copy(newLines, b.lines)
	return &Buffer{lines: newLines}
}

// ReadFrom replaces the buffer's contents with the data read from r.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	b.lines = nil
	br := bufio.NewReader(r)
	for {
		var line string
		line, err = br.ReadString('\n')
		b.lines = append(b.lines, line)
		n += int64(len(line))
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return
		}
	}
}

// WriteTo writes the full content of the buffer to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, line := range b.lines {
		nw, err := io.WriteString(w, line)
		n += int64(nw)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// SliceLines returns the lines of the buffer in the interval [i, j[.
func (b *Buffer) SliceLines(i, j int) []string {
	if j > len(b.lines) {
		j = len(b.lines)
	}
	if i > j {
		i = j
	}
	return b.lines[i:j]
}

// Line returns line i in the buffer, or the last line if i is past the end.
func (b *Buffer) Line(i int) string {
	if i >= len(b.lines) {
		i = len(b.lines) - 1
	}
	return b.lines[i]
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int { return len(b.lines) }

// ByteIndexForChar returns the byte offset of the character at text-space
// column col within line.
func ByteIndexForChar(line string, col int) int {
	p := 0
	for i := 0; p < len(line) && i < col; i++ {
		p += NextCharBoundary(line[p:])
	}
	return p
}

// Insert inserts text, which may contain line breaks, at tp.
func (b *Buffer) Insert(text string, tp Point) {
	line := b.Line(tp.Y)
	insPoint := ByteIndexForChar(line, tp.X)
	numNewLines := strings.Count(text, "\n")
	if numNewLines == 0 {
		b.lines[tp.Y] = line[:insPoint] + text + line[insPoint:]
		return
	}
	b.lines = append(b.lines, make([]string, numNewLines)...)
	copy(b.lines[tp.Y+1+numNewLines:], b.lines[tp.Y+1:])
	p := strings.IndexByte(text, '\n')
	carry := line[insPoint:]
	b.lines[tp.Y] = line[:insPoint] + text[:p+1]
	text = text[p+1:]
	for i := tp.Y + 1; p != -1; i++ {
		newLine := text
		q := strings.IndexByte(text, '\n')
		if q != -1 {
			q++
			newLine, text = text[:q], text[q:]
		}
		b.lines[i] = newLine
		p = q
	}
	b.lines[tp.Y+numNewLines] += carry
}

// InsertLineBreak inserts a line break at tp.
func (b *Buffer) InsertLineBreak(tp Point) {
	line := b.Line(tp.Y)
	b.lines = append(b.lines, "")
	copy(b.lines[tp.Y+1:], b.lines[tp.Y:])
	p := ByteIndexForChar(line, tp.X)
	b.lines[tp.Y] = line[:p] + "\n"
	b.lines[tp.Y+1] = line[p:]
}

// ReplaceLine replaces the entire content of line ty with text.
// The text should not contain a line break except possibly at the end.
func (b *Buffer) ReplaceLine(ty int, text string) {
	if ty < len(b.lines) {
		if ty < len(b.lines)-1 && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		b.lines[ty] = text
	}
}

// DeleteChar deletes the character preceding the one at tp.
func (b *Buffer) DeleteChar(tp Point) {
	// Deleting before the start of a line concatenates it into the
	// previous one.
	if tp.X == 0 {
		if tp.Y == 0 {
			return
		}
		prevLine := b.lines[tp.Y-1]
		b.lines[tp.Y-1] = strings.TrimSuffix(prevLine, "\n") + b.lines[tp.Y]
		copy(b.lines[tp.Y:], b.lines[tp.Y+1:])
		b.lines = b.lines[:len(b.lines)-1]
	} else {
		line := b.lines[tp.Y]
		p := ByteIndexForChar(line, tp.X-1)
		n := NextCharBoundary(line[p:])
		b.lines[tp.Y] = line[:p] + line[p+n:]
	}
}

// DeleteRange deletes all characters in the given range, including line
// breaks. The range is treated as a half-open range.
func (b *Buffer) DeleteRange(tr Range) {
	tr = tr.Normalize()
	p := ByteIndexForChar(b.Line(tr.Begin.Y), tr.Begin.X)
	q := ByteIndexForChar(b.Line(tr.End.Y), tr.End.X)
	if tr.Begin.Y == tr.End.Y {
		line := b.lines[tr.Begin.Y]
		b.lines[tr.Begin.Y] = line[:p] + line[q:]
		return
	}
	b.lines[tr.Begin.Y] = b.lines[tr.Begin.Y][:p] + b.lines[tr.End.Y][q:]
	// The lines entirely between the endpoints disappear, as does the end
	// line, which was merged into the start line.
	copy(b.lines[tr.Begin.Y+1:], b.lines[tr.End.Y+1:])
	b.lines = b.lines[:len(b.lines)-(tr.End.Y-tr.Begin.Y)]
}

// CopyRange returns a copy of the characters in the given range, as a
// contiguous slice.
func (b *Buffer) CopyRange(tr Range) []byte {
	tr = tr.Normalize()
	p := ByteIndexForChar(b.Line(tr.Begin.Y), tr.Begin.X)
	q := ByteIndexForChar(b.Line(tr.End.Y), tr.End.X)
	if tr.Begin.Y == tr.End.Y {
		return []byte(b.Line(tr.Begin.Y)[p:q])
	}
	out := []byte(b.Line(tr.Begin.Y)[p:])
	for i := tr.Begin.Y + 1; i < tr.End.Y; i++ {
		out = append(out, b.lines[i]...)
	}
	return append(out, b.Line(tr.End.Y)[:q]...)
}

// WordBoundsAt returns the range spanned by the word containing the
// character at p. If that character is not part of a word, it returns the
// empty range at p.
func (b *Buffer) WordBoundsAt(p Point) Range {
	line := b.Line(p.Y)
	start, end := p.X, p.X
	// Classify the line's characters once, by character index.
	isWord := make([]bool, 0, len(line))
	for i := 0; i < len(line); i += NextCharBoundary(line[i:]) {
		r, _ := utf8.DecodeRuneInString(line[i:])
		isWord = append(isWord, r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
	}
	if p.X >= len(isWord) || !isWord[p.X] {
		return Range{p, p}
	}
	for start > 0 && isWord[start-1] {
		start--
	}
	for end < len(isWord) && isWord[end] {
		end++
	}
	return Range{Point{start, p.Y}, Point{end, p.Y}}
}

// Indicates a buffer indented with tabs.
const IndentTabs = 0

// IndentType returns the number of spaces used for each leading indentation
// level in the text, or IndentTabs if the text is indented using tabs.
// If it cannot determine the indentation type, returns IndentTabs.
func (b *Buffer) IndentType() int {
	multiplesSeen := make([]int, 32)
lineScan:
	for _, line := range b.lines {
		numSpaces := 0
		hasTabs := false
	prefixScan:
		for i := range line {
			switch line[i] {
			case '\t':
				if numSpaces > 0 {
					// A line that mixes tabs and spaces tells us nothing;
					// skip it and hope the rest of the text settles it.
					continue lineScan
				}
				hasTabs = true
			case ' ':
				if hasTabs {
					continue lineScan
				}
				numSpaces++
			default:
				break prefixScan
			}
		}
		switch {
		case hasTabs:
			multiplesSeen[0]++
		case numSpaces > 0:
			for i := 1; i < len(multiplesSeen); i++ {
				if numSpaces%i == 0 {
					multiplesSeen[i]++
				}
			}
		}
	}
	best := IndentTabs
	bestCount := 0
	for i, n := range multiplesSeen {
		if n >= bestCount {
			best = i
			bestCount = n
		}
	}
	if bestCount > 0 {
		return best
	}
	return IndentTabs
}
