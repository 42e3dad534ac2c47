package termesc

import (
	"errors"
	"fmt"
	"strings"
)

// MouseEvent represents a mouse press, release or movement, or a scroll
// wheel tick.
type MouseEvent struct {
	Button              MouseButton // The mouse button involved, if any
	Shift, Alt, Control bool        // True if the corresponding modifier keys are held down
	Move                bool        // True if this is a movement event
	X, Y                int         // The coordinates of the character the mouse was over
}

// MouseButton identifies the different mouse buttons. This includes both
// directions of the scroll wheel, the release-button event, and the
// no-button marker used for pure movement events.
type MouseButton int8

// Identifiers for mouse buttons.
const (
	LeftButton MouseButton = iota
	MiddleButton
	RightButton
	ReleaseButton
	ScrollUpButton
	ScrollDownButton
	NoButton
)

// Errors returned for invalid mouse escape sequences.
var (
	ErrNotAMouseEvent = errors.New("invalid format for mouse event")
	ErrInvalidCoords  = errors.New("mouse event coordinates are negative")
)

// ParseMouseEvent interprets a string as a mouse escape sequence and returns
// a MouseEvent describing its content.
// It accepts SGR-style (DECSET 1006), urxvt-style (DECSET 1015) and old
// xterm-style (DECSET 1000) escape sequences.
func ParseMouseEvent(code string) (MouseEvent, error) {
	switch {
	case strings.HasPrefix(code, csi+"<"):
		return parseSGRMouseEvent(code)
	case len(code) == 6 && code[:3] == csi+"M":
		return parseXtermMouseEvent(code)
	}
	return parseRxvtMouseEvent(code)
}

func parseSGRMouseEvent(code string) (MouseEvent, error) {
	var ev MouseEvent
	var button int
	var final byte
	if _, err := fmt.Sscanf(code, csi+"<%d;%d;%d%c", &button, &ev.X, &ev.Y, &final); err != nil || (final != 'M' && final != 'm') {
		return MouseEvent{}, ErrNotAMouseEvent
	}
	ev.setButtonInfo(byte(button))
	// In the SGR protocol releases are reported with the original button
	// code and a lowercase final byte, rather than with a dedicated code.
	if final == 'm' {
		ev.Button = ReleaseButton
	}
	ev.X--
	ev.Y--
	if ev.X < 0 || ev.Y < 0 {
		return ev, ErrInvalidCoords
	}
	return ev, nil
}

func parseRxvtMouseEvent(code string) (MouseEvent, error) {
	var ev MouseEvent
	var button byte
	if _, err := fmt.Sscanf(code, csi+"%d;%d;%dM", &button, &ev.X, &ev.Y); err != nil {
		return MouseEvent{}, ErrNotAMouseEvent
	}
	ev.setButtonInfo(button)
	ev.X--
	ev.Y--
	if ev.X < 0 || ev.Y < 0 {
		return ev, ErrInvalidCoords
	}
	return ev, nil
}

func parseXtermMouseEvent(code string) (MouseEvent, error) {
	var ev MouseEvent
	ev.setButtonInfo(code[3] - 32)
	ev.X = int(code[4]) - 33
	ev.Y = int(code[5]) - 33
	if ev.X < 0 || ev.Y < 0 {
		return ev, ErrInvalidCoords
	}
	return ev, nil
}

func (ev *MouseEvent) setButtonInfo(button byte) {
	ev.Shift = button&4 != 0
	ev.Alt = button&8 != 0
	ev.Control = button&0x10 != 0
	ev.Move = button&0x20 != 0
	switch {
	case button&0x40 != 0:
		if button&1 != 0 {
			ev.Button = ScrollDownButton
		} else {
			ev.Button = ScrollUpButton
		}
	case ev.Move && button&3 == 3:
		ev.Button = NoButton
	default:
		ev.Button = MouseButton(button & 3)
	}
}
