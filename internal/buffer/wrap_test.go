package buffer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

const wrapTestCode = `# wrapUntil wraps the source buffer until the end of wrapped line i
def wrap_until(self, i): return None`

const tabsAndSmiles = ":)\t\t\t\t\t:)\n"

var wrapped0 = []WrappedLine{
	{Point{0, 0}, 0, "# wrapUntil wraps th"}, {Point{20, 0}, 20, "e source buffer unti"}, {Point{40, 0}, 40, "l the end of wrapped"}, {Point{60, 0}, 60, " line i\n"},
	{Point{0, 1}, 0, "def wrap_until(self,"}, {Point{20, 1}, 20, " i): return None"},
}

var wrappedSmiles = []WrappedLine{{Point{0, 0}, 0, ":)\t\t\t\t"}, {Point{6, 0}, 6, "\t:)\n"}, {Point{0, 1}, 0, ""}}

func initWrapTest(t *testing.T, text string, width int) *WrappedBuffer {
	t.Helper()
	b := New()
	if _, err := b.ReadFrom(strings.NewReader(text)); err != nil {
		t.Fatal(err)
	}
	return NewWrapped(b, width, func(c string) int {
		if c == "\t" {
			return 4
		}
		return 1
	})
}

func (wl WrappedLine) String() string {
	return fmt.Sprintf("{%d %d %q}", wl.Start, wl.ByteStart, wl.Text)
}

func checkWrapResult(t *testing.T, text string, width int, expected []WrappedLine) {
	t.Helper()
	wb := initWrapTest(t, text, width)
	if lines := wb.Lines(0, len(expected)*2); !reflect.DeepEqual(lines, expected) {
		t.Errorf("got %v, want %v", lines, expected)
	}
}

func TestBasicWrap(t *testing.T) { checkWrapResult(t, wrapTestCode, 20, wrapped0) }
func TestTabWrap(t *testing.T)   { checkWrapResult(t, tabsAndSmiles, 20, wrappedSmiles) }

func TestRefreshAfterEdit(t *testing.T) {
	wb := initWrapTest(t, wrapTestCode, 20)
	wb.Lines(0, 10)
	wb.Insert("и", Point{0, 0})
	lines := wb.Lines(0, 1)
	if len(lines) != 1 || lines[0].Text != "и# wrapUntil wraps t" {
		t.Errorf("after insert: got %v", lines)
	}
}
