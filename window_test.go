package main

import (
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/neoscript/nse/internal/buffer"
	"github.com/neoscript/nse/internal/color"
	"github.com/neoscript/nse/internal/highlight"
	"github.com/neoscript/nse/internal/termesc"
)

func testRenderPalette() *highlight.Palette {
	return &highlight.Palette{
		Comment: highlight.Style{Foreground: &color.Color{R: 0x88, G: 0x88, B: 0x88}},
		String:  highlight.Style{Foreground: &color.Color{R: 0x00, G: 0xaa, B: 0x00}},
		Keyword: highlight.Style{Foreground: &color.Color{R: 0xcc, G: 0x66, B: 0x00}, Bold: true},
		Error:   highlight.Style{CurlyUnderline: true, UnderlineColor: &color.Color{R: 0xff}},
	}
}

const testDocument = `import maya.cmds as cmds

def make_cubes(count):
    """Builds a row of cubes."""
    for i in range(count):
        cmds.polyCube(name="cube_%d" % i)
        cmds.move(i * 2, 0, 0)

make_cubes(5)`

func newTestWindow(t testing.TB, width, height int, content string) *window {
	buf := buffer.New()
	if _, err := buf.ReadFrom(strings.NewReader(content)); err != nil {
		t.Fatal(err)
	}
	w := newWindow(width, height, buf, 4)
	if err := w.redraw(io.Discard); err != nil {
		t.Fatal(err)
	}
	return w
}

func newTestWindowA(t *testing.T) *window {
	return newTestWindow(t, 80, 32, testDocument)
}

func checkCursorPos(t *testing.T, stepN int, w *window, p point) {
	t.Helper()
	if w.cursorPos != p {
		t.Errorf("step %d: cursor at %v, want %v", stepN, w.cursorPos, p)
	}
}

func checkLineContent(t *testing.T, stepN int, w *window, lineNum int, want string) {
	t.Helper()
	if got := strings.TrimSuffix(w.buf.Line(lineNum), "\n"); got != want {
		t.Errorf("step %d: line %d is %q, want %q", stepN, lineNum, got, want)
	}
}

func TestArrowKeyNavigation(t *testing.T) {
	w := newTestWindowA(t)
	checkCursorPos(t, 0, w, point{X: 0, Y: 0})
	w.moveCursorLeft()
	checkCursorPos(t, 1, w, point{X: 0, Y: 0})
	w.moveCursorRight()
	w.moveCursorRight()
	checkCursorPos(t, 2, w, point{X: 2, Y: 0})
	w.moveCursorDown()
	checkCursorPos(t, 3, w, point{X: 0, Y: 1})
	w.moveCursorUp()
	checkCursorPos(t, 4, w, point{X: 0, Y: 0})
}

func TestCursorLineWrapAround(t *testing.T) {
	w := newTestWindow(t, 80, 32, "ab\ncd")
	w.moveCursorRight()
	w.moveCursorRight()
	w.moveCursorRight()
	checkCursorPos(t, 0, w, point{X: 0, Y: 1})
	w.moveCursorLeft()
	checkCursorPos(t, 1, w, point{X: 2, Y: 0})
}

func TestTypeAndBackspace(t *testing.T) {
	w := newTestWindow(t, 80, 32, "")
	for _, c := range "x = 1" {
		w.typeText(string(c))
	}
	checkLineContent(t, 0, w, 0, "x = 1")
	checkCursorPos(t, 0, w, point{X: 5, Y: 0})
	w.typeText("\r")
	checkCursorPos(t, 1, w, point{X: 0, Y: 1})
	w.typeText("y")
	checkLineContent(t, 2, w, 1, "y")
	w.backspace()
	w.backspace()
	checkLineContent(t, 3, w, 0, "x = 1")
	if w.buf.LineCount() != 1 {
		t.Errorf("after backspacing over the line break, buffer has %d lines, want 1", w.buf.LineCount())
	}
	checkCursorPos(t, 4, w, point{X: 5, Y: 0})
}

func TestBackspaceSelection(t *testing.T) {
	w := newTestWindow(t, 80, 32, "hello world")
	w.selection.Put(buffer.Range{Begin: point{X: 5, Y: 0}, End: point{X: 11, Y: 0}})
	w.backspace()
	checkLineContent(t, 0, w, 0, "hello")
	if w.selection.Set {
		t.Error("selection still set after deleting it")
	}
}

func TestUndo(t *testing.T) {
	w := newTestWindow(t, 80, 32, "stable")
	w.typeText("X")
	checkLineContent(t, 0, w, 0, "Xstable")
	w.undo()
	checkLineContent(t, 1, w, 0, "stable")
	checkCursorPos(t, 1, w, point{X: 0, Y: 0})
	w.undo() // empty undo stack; shouldn't do anything
	checkLineContent(t, 2, w, 0, "stable")
}

func TestUndoAll(t *testing.T) {
	w := newTestWindow(t, 80, 32, "one")
	for _, c := range " two three" {
		w.typeText(string(c))
	}
	w.undoAll()
	checkLineContent(t, 0, w, 0, "one")
	if len(w.undoStack) != 0 {
		t.Errorf("undo stack has %d entries after undoAll, want 0", len(w.undoStack))
	}
}

func TestWordMovement(t *testing.T) {
	w := newTestWindow(t, 80, 32, "foo bar_baz  qux")
	w.moveCursorRightWord()
	checkCursorPos(t, 0, w, point{X: 3, Y: 0})
	w.moveCursorRightWord()
	checkCursorPos(t, 1, w, point{X: 11, Y: 0})
	w.moveCursorRightWord()
	checkCursorPos(t, 2, w, point{X: 16, Y: 0})
	w.moveCursorLeftWord()
	checkCursorPos(t, 3, w, point{X: 13, Y: 0})
	w.moveCursorLeftWord()
	checkCursorPos(t, 4, w, point{X: 4, Y: 0})
}

func TestSearchRegexp(t *testing.T) {
	w := newTestWindowA(t)
	w.searchRegexp(regexp.MustCompile(`polyCube`), 0)
	if tp := w.windowCoordsToTextCoords(w.cursorPos); tp.Y != 5 {
		t.Errorf("cursor at line %d after search, want 5", tp.Y)
	}
	// Searching again from past the only match wraps around.
	w.searchRegexp(regexp.MustCompile(`import`), 6)
	if tp := w.windowCoordsToTextCoords(w.cursorPos); tp.Y != 0 {
		t.Errorf("cursor at line %d after wrapped search, want 0", tp.Y)
	}
}

func TestReplaceRegexp(t *testing.T) {
	w := newTestWindow(t, 80, 32, "ab ab\ncd\nab")
	w.replaceRegexp(regexp.MustCompile(`ab`), "xy")
	checkLineContent(t, 0, w, 0, "xy xy")
	checkLineContent(t, 0, w, 1, "cd")
	checkLineContent(t, 0, w, 2, "xy")
	w.undo()
	checkLineContent(t, 1, w, 0, "ab ab")
}

func TestGotoLine(t *testing.T) {
	w := newTestWindowA(t)
	w.gotoLine(6)
	if tp := w.windowCoordsToTextCoords(w.cursorPos); tp.Y != 6 || tp.X != 0 {
		t.Errorf("cursor at %v after gotoLine, want line 6 column 0", tp)
	}
	w.gotoLine(1000)
	if tp := w.windowCoordsToTextCoords(w.cursorPos); tp.Y != w.buf.LineCount()-1 {
		t.Errorf("cursor at line %d after out-of-range gotoLine, want last line", tp.Y)
	}
}

func TestDoubleClickSelectsWord(t *testing.T) {
	w := newTestWindow(t, 80, 32, "select this_word here")
	g := w.gutterWidth()
	click := termesc.MouseEvent{Button: termesc.LeftButton, X: g + 9, Y: 0}
	w.handleMouseEvent(click)
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.ReleaseButton, X: g + 9, Y: 0})
	w.handleMouseEvent(click)
	want := buffer.Range{Begin: point{X: 7, Y: 0}, End: point{X: 16, Y: 0}}
	if !w.selection.Set || w.selection.Range != want {
		t.Errorf("after double click, selection = %+v, want %v", w.selection, want)
	}
}

func TestMouseDragSelects(t *testing.T) {
	w := newTestWindow(t, 80, 32, "drag across me")
	g := w.gutterWidth()
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.LeftButton, X: g, Y: 0})
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.LeftButton, Move: true, X: g + 4, Y: 0})
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.ReleaseButton, X: g + 4, Y: 0})
	want := buffer.Range{Begin: point{X: 0, Y: 0}, End: point{X: 4, Y: 0}}
	if !w.selection.Set || w.selection.Range != want {
		t.Errorf("after drag, selection = %+v, want %v", w.selection, want)
	}
	if w.inMouseSelection() {
		t.Error("mouse selection still in progress after release")
	}
}

func TestScrollClamping(t *testing.T) {
	w := newTestWindow(t, 80, 4, testDocument)
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.ScrollDownButton})
	if w.topLine != 1 {
		t.Errorf("topLine = %d after scroll down, want 1", w.topLine)
	}
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.ScrollUpButton})
	w.handleMouseEvent(termesc.MouseEvent{Button: termesc.ScrollUpButton})
	if w.topLine != 0 {
		t.Errorf("topLine = %d after scrolling past the top, want 0", w.topLine)
	}
}

func TestRenderSmoke(t *testing.T) {
	w := newTestWindow(t, 40, 8, testDocument)
	w.setLanguage("python", testRenderPalette())
	var sb strings.Builder
	w.needsRedraw = true
	if err := w.redraw(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "import") {
		t.Error("rendered output doesn't contain the first line's text")
	}
	if !strings.Contains(out, termesc.ClearScreenForward) {
		t.Error("rendered output doesn't clear the previous frame")
	}
}
