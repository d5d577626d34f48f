package render

import (
	"strconv"
	"strings"
)

// Segment is one stroke of a seven-segment glyph in screen space.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// digitGap is the spacing between glyphs in pixels.
const digitGap = 10

// sevenSegments lists which digits light each segment, as unit-square
// endpoints (x grows right, y grows down, the glyph is 1 by 1).
var sevenSegments = []struct {
	digits         string
	x1, y1, x2, y2 float64
}{
	{"02356789", 0, 0, 1, 0},    // top
	{"2345689", 0, 0.5, 1, 0.5}, // middle
	{"0235689", 0, 1, 1, 1},     // bottom
	{"045689", 0, 0, 0, 0.5},    // upper left
	{"01234789", 1, 0, 1, 0.5},  // upper right
	{"0268", 0, 0.5, 0, 1},      // lower left
	{"013456789", 1, 0.5, 1, 1}, // lower right
}

// numberSegments lays out number as seven-segment strokes with its top-left
// corner at (x, y). Glyphs are size*0.6 wide and size tall. Characters that
// are not digits (a minus sign) leave a blank glyph.
func numberSegments(number int, x, y, size float64) []Segment {
	w := size * 0.6
	h := size
	s := strconv.Itoa(number)

	segs := make([]Segment, 0, len(s)*7)
	cx := x
	for _, ch := range s {
		for _, seg := range sevenSegments {
			if !strings.ContainsRune(seg.digits, ch) {
				continue
			}
			segs = append(segs, Segment{
				X1: cx + seg.x1*w,
				Y1: y + seg.y1*h,
				X2: cx + seg.x2*w,
				Y2: y + seg.y2*h,
			})
		}
		cx += w + digitGap
	}
	return segs
}
