package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/neoscript/nse/internal/buffer"
	"github.com/neoscript/nse/internal/clipboard"
	"github.com/neoscript/nse/internal/dlog"
	"github.com/neoscript/nse/internal/highlight"
	"github.com/neoscript/nse/internal/streak"
	"github.com/neoscript/nse/internal/termesc"

	"github.com/mattn/go-runewidth"
)

type point = buffer.Point

type optionalPoint struct {
	point
	Set bool
}

func (p *optionalPoint) Put(q point) { p.point, p.Set = q, true }

type optionalTextRange struct {
	buffer.Range
	Set bool
}

func (r *optionalTextRange) Put(tr buffer.Range) { r.Range, r.Set = tr, true }

// A window edits one buffer within a rectangle of the terminal. The main
// window covers the whole viewport; prompt windows are one line tall.
type window struct {
	width, height int
	topLine       int   // index of the topmost visible line, in window space
	cursorPos     point // viewport space

	buf         *buffer.Buffer
	wrappedBuf  *buffer.WrappedBuffer
	highlighter highlight.Highlighter

	tabWidth         int
	scrollSpeed      int
	customGutterText string

	selection            optionalTextRange // a completed selection, in text space
	selectionAnchor      optionalPoint     // first bound of a keyboard selection
	mouseSelectionAnchor optionalPoint     // text position where a mouse drag started

	undoStack []undoState

	clickStreak streak.Tracker // distinguishes single, double and triple clicks
	moveStreak  streak.Tracker // accelerates held-down arrow keys

	onChange    func() // called after every buffer modification
	needsRedraw bool
	drawBuffer  []byte
}

type undoState struct {
	buf    *buffer.Buffer
	cursor point
}

// windowSource adapts a window to highlight.LineSource through the window's
// current buffer, so that the highlighter keeps working across undo, which
// swaps the buffer out.
type windowSource struct{ w *window }

func (s windowSource) SliceLines(i, j int) []string { return s.w.buf.SliceLines(i, j) }

func newWindow(width, height int, buf *buffer.Buffer, tabWidth int) *window {
	w := &window{
		width: width, height: height,
		buf:         buf,
		tabWidth:    tabWidth,
		scrollSpeed: 1,
		clickStreak: streak.Tracker{Interval: 400 * time.Millisecond},
		moveStreak:  streak.Tracker{Interval: 50 * time.Millisecond},
		needsRedraw: true,
	}
	w.highlighter = highlight.Language("", windowSource{w}, nil)
	w.wrappedBuf = buffer.NewWrapped(buf, w.textAreaWidth(), w.displayWidth)
	return w
}

// setLanguage switches the window's highlighter; lang is a name understood by
// highlight.Language.
func (w *window) setLanguage(lang string, pal *highlight.Palette) {
	w.highlighter = highlight.Language(lang, windowSource{w}, pal)
	w.needsRedraw = true
}

// setErrors replaces the window's lint annotations.
func (w *window) setErrors(errs map[int]highlight.Annotation) {
	w.highlighter.SetErrors(errs)
	w.needsRedraw = true
}

func (w *window) textAreaWidth() int {
	tw := w.width - w.gutterWidth()
	if tw < 1 {
		tw = 1
	}
	return tw
}

func (w *window) gutterWidth() int {
	if w.customGutterText != "" {
		return runewidth.StringWidth(w.customGutterText) + 1
	}
	n := len(strconv.Itoa(w.buf.LineCount()))
	if n < 3 {
		n = 3
	}
	return n + 1
}

func (w *window) setGutterText(text string) {
	w.customGutterText = text
	w.wrappedBuf.SetWidth(w.textAreaWidth())
	w.needsRedraw = true
}

// getTabWidth returns the visual width of one indentation step: the buffer's
// own indentation if it uses spaces, the configured tab width otherwise.
func (w *window) getTabWidth() int {
	if n := w.buf.IndentType(); n > 0 {
		return n
	}
	return w.tabWidth
}

func (w *window) displayWidth(c string) int {
	switch {
	case c == "\t":
		return w.tabWidth
	case len(c) == 1 && c[0] < ' ':
		return 1
	default:
		return runewidth.StringWidth(c)
	}
}

func (w *window) resize(height, width int) {
	w.height, w.width = height, width
	w.wrappedBuf.SetWidth(w.textAreaWidth())
	w.roundCursorPos()
	w.needsRedraw = true
}

// charCount returns the number of characters in s, not counting a trailing
// line break.
func charCount(s string) int {
	s = strings.TrimSuffix(s, "\n")
	n := 0
	for i := 0; i < len(s); i += buffer.NextCharBoundary(s[i:]) {
		n++
	}
	return n
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Window coordinates: a (y, x) position within the viewport.
// Text coordinates: a (column, line) position within the text.

func (w *window) windowCoordsToTextCoords(wp point) buffer.Point {
	wl := w.wrappedBuf.Line(w.topLine + wp.Y)
	line := strings.TrimSuffix(wl.Text, "\n")
	tx := wl.Start.X
	for i, wx := 0, 0; i < len(line) && wx < wp.X; tx++ {
		n := buffer.NextCharBoundary(line[i:])
		wx += w.displayWidth(line[i : i+n])
		i += n
	}
	return buffer.Point{X: tx, Y: wl.Start.Y}
}

func (w *window) textCoordsToWindowCoords(tp buffer.Point) point {
	wy := w.wrappedBuf.WindowYForTextPos(tp)
	wl := w.wrappedBuf.Line(wy)
	line := strings.TrimSuffix(wl.Text, "\n")
	wx := 0
	for i, tx := 0, wl.Start.X; i < len(line) && tx < tp.X; tx++ {
		n := buffer.NextCharBoundary(line[i:])
		wx += w.displayWidth(line[i : i+n])
		i += n
	}
	return point{X: wx, Y: wy - w.topLine}
}

func (w *window) roundCursorPos() {
	w.cursorPos = w.textCoordsToWindowCoords(w.windowCoordsToTextCoords(w.cursorPos))
}

// setCursorTextPos moves the cursor to the given text position, scrolling if
// it lies outside the viewport.
func (w *window) setCursorTextPos(tp buffer.Point) {
	wy := w.wrappedBuf.WindowYForTextPos(tp)
	if wy < w.topLine || wy >= w.topLine+w.height {
		w.topLine = wy - w.height/2
		if w.topLine < 0 {
			w.topLine = 0
		}
		w.needsRedraw = true
	}
	w.cursorPos = w.textCoordsToWindowCoords(tp)
}

func (w *window) viewportCursorPos() point { return w.cursorPos }

func (w *window) cursorInViewport() bool {
	return w.cursorPos.Y >= 0 && w.cursorPos.Y < w.height && w.cursorPos.X < w.width
}

func (w *window) moveCursorDown() {
	if !w.wrappedBuf.HasLine(w.topLine + w.cursorPos.Y + 1) {
		return
	}
	if w.cursorPos.Y < w.height-1 {
		w.cursorPos.Y++
	} else {
		w.topLine++
		w.needsRedraw = true
	}
	w.roundCursorPos()
}

func (w *window) moveCursorUp() {
	switch {
	case w.cursorPos.Y > 0:
		w.cursorPos.Y--
	case w.topLine > 0:
		w.topLine--
		w.needsRedraw = true
	}
	w.roundCursorPos()
}

// repeatMove performs a cursor movement, twice if movement commands are
// arriving as fast as terminals auto-repeat held keys.
func (w *window) repeatMove(move func()) {
	n := w.moveStreak.Tick()
	move()
	if n >= 5 {
		move()
	}
}

func (w *window) moveCursorLeft() {
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	switch {
	case tp.X > 0:
		w.setCursorTextPos(buffer.Point{X: tp.X - 1, Y: tp.Y})
	case tp.Y > 0:
		w.setCursorTextPos(buffer.Point{X: charCount(w.buf.Line(tp.Y - 1)), Y: tp.Y - 1})
	}
}

func (w *window) moveCursorRight() {
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	switch {
	case tp.X < charCount(w.buf.Line(tp.Y)):
		w.setCursorTextPos(buffer.Point{X: tp.X + 1, Y: tp.Y})
	case tp.Y < w.buf.LineCount()-1:
		w.setCursorTextPos(buffer.Point{X: 0, Y: tp.Y + 1})
	}
}

func (w *window) moveCursorLeftWord() {
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	if tp.X == 0 {
		w.moveCursorLeft()
		return
	}
	line := strings.TrimSuffix(w.buf.Line(tp.Y), "\n")
	x := tp.X
	for x > 0 && !isWordCharAt(line, x-1) {
		x--
	}
	for x > 0 && isWordCharAt(line, x-1) {
		x--
	}
	w.setCursorTextPos(buffer.Point{X: x, Y: tp.Y})
}

func (w *window) moveCursorRightWord() {
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	line := strings.TrimSuffix(w.buf.Line(tp.Y), "\n")
	n := charCount(line)
	if tp.X >= n {
		w.moveCursorRight()
		return
	}
	x := tp.X
	for x < n && !isWordCharAt(line, x) {
		x++
	}
	for x < n && isWordCharAt(line, x) {
		x++
	}
	w.setCursorTextPos(buffer.Point{X: x, Y: tp.Y})
}

func isWordCharAt(line string, col int) bool {
	p := buffer.ByteIndexForChar(line, col)
	if p >= len(line) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line[p:])
	return isWordChar(r)
}

// touch records that the text starting at line ty has changed.
func (w *window) touch(ty int) {
	w.highlighter.Invalidate(ty)
	w.needsRedraw = true
	if w.onChange != nil {
		w.onChange()
	}
}

func (w *window) pushUndoState() {
	w.undoStack = append(w.undoStack, undoState{buf: w.buf.Copy(), cursor: w.cursorPos})
}

func (w *window) undo() {
	if n := len(w.undoStack); n > 0 {
		st := w.undoStack[n-1]
		w.undoStack = w.undoStack[:n-1]
		w.restore(st)
	}
}

func (w *window) undoAll() {
	if len(w.undoStack) > 0 {
		st := w.undoStack[0]
		w.undoStack = w.undoStack[:0]
		w.restore(st)
	}
}

func (w *window) restore(st undoState) {
	w.buf = st.buf
	w.wrappedBuf.Reset(st.buf)
	w.highlighter.Invalidate(0)
	w.resetSelectionState()
	w.cursorPos = st.cursor
	w.roundCursorPos()
	w.needsRedraw = true
	if w.onChange != nil {
		w.onChange()
	}
}

// typeText inserts printable text, a line break ("\r") or a tab at the cursor
// position, replacing the selection if one is active.
func (w *window) typeText(text string) {
	w.pushUndoState()
	if w.selection.Set {
		w.deleteSelection()
	}
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	switch text {
	case "\r":
		w.wrappedBuf.InsertLineBreak(tp)
		w.setCursorTextPos(buffer.Point{X: 0, Y: tp.Y + 1})
	case "\t":
		if n := w.buf.IndentType(); n > 0 {
			text = strings.Repeat(" ", n)
		}
		fallthrough
	default:
		w.insertAt(text, tp)
	}
	w.touch(tp.Y)
}

// insertAt inserts text (possibly spanning several lines) at tp and leaves
// the cursor at the end of the insertion.
func (w *window) insertAt(text string, tp buffer.Point) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	w.wrappedBuf.Insert(text, tp)
	if i := strings.LastIndexByte(text, '\n'); i != -1 {
		w.setCursorTextPos(buffer.Point{X: charCount(text[i+1:]), Y: tp.Y + strings.Count(text, "\n")})
	} else {
		w.setCursorTextPos(buffer.Point{X: tp.X + charCount(text), Y: tp.Y})
	}
}

func (w *window) backspace() {
	w.pushUndoState()
	if w.selection.Set {
		ty := w.deleteSelection()
		w.touch(ty)
		return
	}
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	if tp == (buffer.Point{}) {
		return
	}
	newPos := buffer.Point{X: tp.X - 1, Y: tp.Y}
	if tp.X == 0 {
		newPos = buffer.Point{X: charCount(w.buf.Line(tp.Y - 1)), Y: tp.Y - 1}
	}
	w.wrappedBuf.DeleteChar(tp)
	w.setCursorTextPos(newPos)
	w.touch(newPos.Y)
}

// deleteSelection removes the selected text and returns the first affected
// line. The caller is responsible for calling touch.
func (w *window) deleteSelection() int {
	tr := w.selection.Normalize()
	w.wrappedBuf.DeleteRange(tr)
	w.resetSelectionState()
	w.setCursorTextPos(tr.Begin)
	return tr.Begin.Y
}

// markSelectionBound sets one end of a keyboard selection; the second call
// completes it.
func (w *window) markSelectionBound() {
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	if w.selectionAnchor.Set {
		w.selection.Put(buffer.Range{Begin: w.selectionAnchor.point, End: tp}.Normalize())
		w.selectionAnchor = optionalPoint{}
	} else {
		w.selectionAnchor.Put(tp)
	}
	w.needsRedraw = true
}

func (w *window) resetSelectionState() {
	w.selection = optionalTextRange{}
	w.selectionAnchor = optionalPoint{}
	w.mouseSelectionAnchor = optionalPoint{}
	w.needsRedraw = true
}

func (w *window) inMouseSelection() bool { return w.mouseSelectionAnchor.Set }

func (w *window) copySelection() {
	if !w.selection.Set {
		return
	}
	if err := clipboard.Copy(w.buf.CopyRange(w.selection.Range)); err != nil {
		dlog.ErrorErr(dlog.CatBuffer, "copy failed", err)
	}
}

func (w *window) cutSelection() {
	if !w.selection.Set {
		return
	}
	w.copySelection()
	w.pushUndoState()
	ty := w.deleteSelection()
	w.touch(ty)
}

func (w *window) paste() {
	data, err := clipboard.Paste()
	if err != nil || len(data) == 0 {
		return
	}
	w.pushUndoState()
	if w.selection.Set {
		w.deleteSelection()
	}
	tp := w.windowCoordsToTextCoords(w.cursorPos)
	w.insertAt(string(data), tp)
	w.touch(tp.Y)
}

// searchRegexp moves the cursor to the first match of re at or after line
// startY, wrapping around the end of the buffer.
func (w *window) searchRegexp(re *regexp.Regexp, startY int) {
	nl := w.buf.LineCount()
	if nl == 0 {
		return
	}
	if startY < 0 {
		startY = 0
	}
	for i := 0; i < nl; i++ {
		y := (startY + i) % nl
		line := strings.TrimSuffix(w.buf.Line(y), "\n")
		if loc := re.FindStringIndex(line); loc != nil {
			w.setCursorTextPos(buffer.Point{X: charCount(line[:loc[0]]), Y: y})
			w.needsRedraw = true
			return
		}
	}
}

// replaceRegexp replaces every match of re in the buffer with the given
// replacement, which may use the usual $1-style group references.
func (w *window) replaceRegexp(re *regexp.Regexp, replacement string) {
	w.pushUndoState()
	for y := 0; y < w.buf.LineCount(); y++ {
		line := w.buf.Line(y)
		hasBreak := strings.HasSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\n")
		if !re.MatchString(line) {
			continue
		}
		newLine := re.ReplaceAllString(line, replacement)
		if hasBreak {
			newLine += "\n"
		}
		w.wrappedBuf.ReplaceLine(y, newLine)
	}
	w.roundCursorPos()
	w.touch(0)
}

func (w *window) gotoLine(y int) {
	if y < 0 {
		y = 0
	}
	if n := w.buf.LineCount(); y >= n {
		y = n - 1
	}
	w.setCursorTextPos(buffer.Point{X: 0, Y: y})
	w.needsRedraw = true
}

func (w *window) scroll(delta int) {
	w.topLine += delta
	if w.topLine < 0 {
		w.topLine = 0
	}
	for w.topLine > 0 && !w.wrappedBuf.HasLine(w.topLine) {
		w.topLine--
	}
	w.roundCursorPos()
	w.needsRedraw = true
}

func (w *window) handleMouseEvent(ev termesc.MouseEvent) {
	switch ev.Button {
	case termesc.LeftButton:
		wp := point{X: ev.X - w.gutterWidth(), Y: ev.Y}
		if wp.X < 0 {
			wp.X = 0
		}
		tp := w.windowCoordsToTextCoords(wp)
		if ev.Move {
			if w.mouseSelectionAnchor.Set && tp != w.mouseSelectionAnchor.point {
				w.selection.Put(buffer.Range{Begin: w.mouseSelectionAnchor.point, End: tp}.Normalize())
				w.needsRedraw = true
			}
			return
		}
		switch w.clickStreak.Tick() {
		case 2:
			if r := w.buf.WordBoundsAt(tp); !r.Empty() {
				w.selection.Put(r)
			}
		case 3:
			w.selection.Put(buffer.Range{
				Begin: buffer.Point{X: 0, Y: tp.Y},
				End:   buffer.Point{X: charCount(w.buf.Line(tp.Y)), Y: tp.Y},
			})
		default:
			w.selection = optionalTextRange{}
			w.selectionAnchor = optionalPoint{}
			w.mouseSelectionAnchor.Put(tp)
		}
		w.setCursorTextPos(tp)
		w.needsRedraw = true
	case termesc.ReleaseButton:
		if w.mouseSelectionAnchor.Set {
			wp := point{X: ev.X - w.gutterWidth(), Y: ev.Y}
			if wp.X < 0 {
				wp.X = 0
			}
			tp := w.windowCoordsToTextCoords(wp)
			if tp != w.mouseSelectionAnchor.point {
				w.selection.Put(buffer.Range{Begin: w.mouseSelectionAnchor.point, End: tp}.Normalize())
			}
			w.mouseSelectionAnchor = optionalPoint{}
			w.needsRedraw = true
		}
	case termesc.ScrollUpButton:
		w.scroll(-w.scrollSpeed)
	case termesc.ScrollDownButton:
		w.scroll(w.scrollSpeed)
	}
}
