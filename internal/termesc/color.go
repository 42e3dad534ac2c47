package termesc

import (
	"strconv"

	"github.com/neoscript/nse/internal/color"
)

// A GraphicAttribute is one parameter of an SGR escape sequence.
type GraphicAttribute interface {
	appendSGRCode(b []byte) []byte
}

// GraphicFlag is a GraphicAttribute represented by a single numeric code.
type GraphicFlag int

// Constants for non-color graphic attributes.
const (
	StyleNone           GraphicFlag = 0
	StyleBold           GraphicFlag = 1
	StyleItalic         GraphicFlag = 3
	StyleUnderline      GraphicFlag = 4
	StyleInverted       GraphicFlag = 7
	StyleNotBold        GraphicFlag = 22
	StyleNotItalic      GraphicFlag = 23
	StyleNotUnderline   GraphicFlag = 24
	StyleNotInverted    GraphicFlag = 27
	ResetUnderlineColor GraphicFlag = 59
)

// Constants for the 3-bit ANSI color palette and the default colors.
const (
	ColorBlack GraphicFlag = 30 + iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

const (
	ColorDefault           GraphicFlag = 39
	ColorDefaultBackground GraphicFlag = 49
)

func (c GraphicFlag) appendSGRCode(b []byte) []byte {
	return strconv.AppendInt(b, int64(c), 10)
}

// StyleCurlyUnderline is the curly ("wave") underline variant, rendered by
// terminals which support the colon subparameter form of SGR 4.
// Terminals which don't fall back to a straight underline.
type curlyUnderline struct{}

var StyleCurlyUnderline GraphicAttribute = curlyUnderline{}

func (curlyUnderline) appendSGRCode(b []byte) []byte { return append(b, "4:3"...) }

// sgrColor is a 24-bit color SGR parameter with an arbitrary introducer code
// (38 = foreground, 48 = background, 58 = underline color).
type sgrColor struct {
	code int
	c    color.Color
}

func (sc sgrColor) appendSGRCode(b []byte) []byte {
	b = strconv.AppendInt(b, int64(sc.code), 10)
	for _, ch := range [...]uint8{2, sc.c.R, sc.c.G, sc.c.B} {
		b = append(b, ';')
		b = strconv.AppendInt(b, int64(ch), 10)
	}
	return b
}

// OutputColor returns a GraphicAttribute that sets the foreground color to c.
func OutputColor(c color.Color) GraphicAttribute { return sgrColor{38, c} }

// OutputColorBackground returns a GraphicAttribute that sets the background color to c.
func OutputColorBackground(c color.Color) GraphicAttribute { return sgrColor{48, c} }

// UnderlineColor returns a GraphicAttribute that sets the underline color to c
// on terminals supporting SGR 58.
func UnderlineColor(c color.Color) GraphicAttribute { return sgrColor{58, c} }

// SetGraphicAttributes returns an SGR escape sequence combining all of attrs.
func SetGraphicAttributes(attrs ...GraphicAttribute) string {
	b := make([]byte, len(csi), 64)
	copy(b, csi)
	for i, attr := range attrs {
		if i > 0 {
			b = append(b, ';')
		}
		b = attr.appendSGRCode(b)
	}
	return string(append(b, 'm'))
}
