package highlight

import (
	"reflect"
	"testing"
)

func melExitStates(h Highlighter) []melState {
	return h.(*melHighlighter).state
}

func TestMELBasics(t *testing.T) {
	src := testSource{
		"string $name = \"hello\"; // greet\n",
		"move -r 1.5 0 0;\n",
		"print($name);",
	}
	want := []string{
		"kkkkkk.vvvvv.o.sssssss..cccccccc",
		"bbbb.o..nnn.n.n.",
		"bbbbb.vvvvv..",
	}
	checkStyles(t, "mel", src, want)
}

func TestMELProcName(t *testing.T) {
	src := testSource{`proc string greet(string $who) { return $who; }`}
	// proc, the return type and the two string keywords are keywords; the
	// procedure name gets the definition style.
	want := "kkkk.kkkkkk.ddddd.kkkkkk.vvvv....kkkkkk.vvvv..."
	checkStyles(t, "mel", src, []string{want})
}

func TestMELQuoteEscapes(t *testing.T) {
	checkStyles(t, "mel", testSource{`print("a\"b");`}, []string{"bbbbb.ssssss.."})
}

func TestMELLineCommentClaimsQuotes(t *testing.T) {
	src := testSource{`move; // not a "string" here`}
	want := "bbbb.." + "cccccccccccccccccccccc"
	checkStyles(t, "mel", src, []string{want})
}

func TestMELInlineBlockComment(t *testing.T) {
	src := testSource{`move /* up */ -y 2;`}
	checkStyles(t, "mel", src, []string{"bbbb.cccccccc.o..n."})
	h := Language("mel", src, testPalette)
	h.Regions(0, 1)
	if st := melExitStates(h); !reflect.DeepEqual(st, []melState{melStateNormal}) {
		t.Errorf("exit states = %v, want [Normal]", st)
	}
}

func TestMELBlockCommentSpansLines(t *testing.T) {
	src := testSource{"move /* start\n", "still comment */ -x 1;"}
	want := []string{
		"bbbb.cccccccc",
		"cccccccccccccccc.o..n.",
	}
	checkStyles(t, "mel", src, want)
	h := Language("mel", src, testPalette)
	h.Regions(0, 2)
	if st := melExitStates(h); !reflect.DeepEqual(st, []melState{melStateComment, melStateNormal}) {
		t.Errorf("exit states = %v, want [Comment Normal]", st)
	}
}

func TestMELCommentOpenerInsideString(t *testing.T) {
	// The /* inside the string must not open a block comment.
	src := testSource{`string $s = "a /* b";`, `move;`}
	checkStyles(t, "mel", src, []string{"kkkkkk.vv.o.ssssssss.", "bbbb."})
}

func TestMELErrorOverlay(t *testing.T) {
	src := testSource{"badCall -q;\n"}
	h := Language("mel", src, testPalette)
	h.SetErrors(map[int]Annotation{1: {Column: 1, Message: "unknown command"}})
	slots := slotsForLine(src, h.Regions(0, 1), 0)
	for k := 0; k <= 9; k++ {
		if slots[k] == nil || !slots[k].CurlyUnderline {
			t.Errorf("col %d: expected curly underline, got %v", k, slots[k])
		}
	}
	if ann, ok := h.ErrorAt(1); !ok || ann.Message != "unknown command" {
		t.Errorf("ErrorAt(1) = %v, %v", ann, ok)
	}
}

func TestMELInvalidateRecomputesCommentState(t *testing.T) {
	src := testSource{"/* a\n", "b */ move;\n", "sphere;"}
	h := Language("mel", src, testPalette)
	before := append([]StyledRegion(nil), h.Regions(0, len(src))...)
	h.Invalidate(0)
	after := h.Regions(0, len(src))
	if !reflect.DeepEqual(before, after) {
		t.Errorf("reprocessing changed output:\nbefore %v\nafter  %v", before, after)
	}
}
