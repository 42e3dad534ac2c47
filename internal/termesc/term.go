// Package termesc abstracts terminal ANSI escape codes.
package termesc

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const csi = "\x1B["

const (
	ClearScreen        = csi + "2J" // Clears the entire visible area of the console
	ClearScreenForward = csi + "J"  // Clears the console from the cursor position onward
	ClearLine          = csi + "2K" // Clears the line the cursor is on

	EnterAlternateScreen = csi + "?1049h" // Switches to the alternate screen
	ExitAlternateScreen  = csi + "?1049l" // Switches from the alternate screen to the regular one

	ShowCursor = csi + "?25h"
	HideCursor = csi + "?25l"

	// Enables reporting of mouse presses, releases and movement,
	// using the SGR extended protocol.
	EnableMouseReporting  = csi + "?1002h" + csi + "?1006h"
	DisableMouseReporting = csi + "?1006l" + csi + "?1002l"

	UpKey    = csi + "A"
	DownKey  = csi + "B"
	RightKey = csi + "C"
	LeftKey  = csi + "D"
	HomeKey  = csi + "H"
	EndKey   = csi + "F"
)

// SetCursorPos returns a code that sets the cursor's position to (y, x).
// Coordinates are 1-based.
func SetCursorPos(y, x int) string { return fmt.Sprintf(csi+"%d;%dH", y, x) }

// SetTitle returns a code that sets the terminal window's title.
func SetTitle(title string) string {
	return "\x1B]0;" + strings.Map(dropControlCharacters, title) + "\a"
}

func dropControlCharacters(c rune) rune {
	if c < ' ' || c == 0x7F {
		return -1
	}
	return c
}

// IsAltLeftKey reports whether s is one of the escape sequences commonly
// sent for Alt(or Option)+Left.
func IsAltLeftKey(s string) bool { return s == "\x1Bb" || s == csi+"1;3D" || s == csi+"1;9D" }

// IsAltRightKey reports whether s is one of the escape sequences commonly
// sent for Alt(or Option)+Right.
func IsAltRightKey(s string) bool { return s == "\x1Bf" || s == csi+"1;3C" || s == csi+"1;9C" }

// A ConsoleReader splits console input into tokens: a token is either a
// whole escape sequence or a single UTF-8 encoded character.
type ConsoleReader struct {
	src *bufio.Reader
}

// NewConsoleReader returns a ConsoleReader reading from r.
func NewConsoleReader(r io.Reader) *ConsoleReader {
	return &ConsoleReader{src: bufio.NewReader(r)}
}

// ReadToken returns the next input token.
// If the input ends mid-sequence, the bytes read so far are returned
// along with the underlying error.
func (cr *ConsoleReader) ReadToken() (string, error) {
	c, err := cr.src.ReadByte()
	if err != nil {
		return "", err
	}
	if c != 0x1B {
		if c < utf8.RuneSelf {
			return string(rune(c)), nil
		}
		cr.src.UnreadByte()
		r, _, err := cr.src.ReadRune()
		return string(r), err
	}
	tok := []byte{c}
	c, err = cr.src.ReadByte()
	if err != nil {
		return string(tok), err
	}
	tok = append(tok, c)
	if c != '[' && c != 'O' {
		// Alt+key sends ESC followed by the key itself.
		return string(tok), nil
	}
	for {
		c, err = cr.src.ReadByte()
		if err != nil {
			return string(tok), err
		}
		tok = append(tok, c)
		// CSI sequences end with a byte in the range 0x40-0x7E.
		if c >= 0x40 && c <= 0x7E {
			return string(tok), nil
		}
	}
}
