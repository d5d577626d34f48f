package render

import (
	"image/color"
	"math"
)

// FastRenderer writes straight into an RGBA pixel buffer for the few
// primitives gg cannot do: additive blending and flat overlays.
// The destination is assumed to be fully opaque.
type FastRenderer struct {
	buffer []byte
	width  int
	height int
	stride int // bytes per row (width * 4 for RGBA)
}

// NewFastRenderer creates a new fast renderer with the given dimensions.
// It uses the provided buffer or creates a new one if nil.
func NewFastRenderer(width, height int, buffer []byte) *FastRenderer {
	if buffer == nil {
		buffer = make([]byte, width*height*4)
	}
	return &FastRenderer{
		buffer: buffer,
		width:  width,
		height: height,
		stride: width * 4,
	}
}

// GetBuffer returns the underlying pixel buffer
func (r *FastRenderer) GetBuffer() []byte {
	return r.buffer
}

// Clear fills the entire buffer with a solid color
func (r *FastRenderer) Clear(c color.RGBA) {
	for i := 0; i+3 < len(r.buffer); i += 4 {
		r.buffer[i] = c.R
		r.buffer[i+1] = c.G
		r.buffer[i+2] = c.B
		r.buffer[i+3] = c.A
	}
}

// clip returns the rectangle intersected with the buffer bounds.
func (r *FastRenderer) clip(x, y, w, h int) (x1, y1, x2, y2 int, ok bool) {
	x1 = max(0, x)
	y1 = max(0, y)
	x2 = min(r.width, x+w)
	y2 = min(r.height, y+h)
	return x1, y1, x2, y2, x1 < x2 && y1 < y2
}

// DrawFilledRect draws an opaque filled rectangle
func (r *FastRenderer) DrawFilledRect(x, y, w, h int, c color.RGBA) {
	x1, y1, x2, y2, ok := r.clip(x, y, w, h)
	if !ok {
		return
	}
	for py := y1; py < y2; py++ {
		rowStart := py * r.stride
		for px := x1; px < x2; px++ {
			idx := rowStart + px*4
			r.buffer[idx] = c.R
			r.buffer[idx+1] = c.G
			r.buffer[idx+2] = c.B
			r.buffer[idx+3] = 255
		}
	}
}

// DrawFilledRectBlend draws a rectangle with source-over blending.
// c is non-premultiplied: c.A is the coverage of c's color.
func (r *FastRenderer) DrawFilledRectBlend(x, y, w, h int, c color.NRGBA) {
	if c.A == 0 {
		return
	}
	if c.A == 255 {
		r.DrawFilledRect(x, y, w, h, color.RGBA{c.R, c.G, c.B, 255})
		return
	}
	x1, y1, x2, y2, ok := r.clip(x, y, w, h)
	if !ok {
		return
	}

	srcA := float64(c.A) / 255.0
	invA := 1.0 - srcA

	for py := y1; py < y2; py++ {
		rowStart := py * r.stride
		for px := x1; px < x2; px++ {
			idx := rowStart + px*4
			r.buffer[idx] = uint8(float64(c.R)*srcA + float64(r.buffer[idx])*invA)
			r.buffer[idx+1] = uint8(float64(c.G)*srcA + float64(r.buffer[idx+1])*invA)
			r.buffer[idx+2] = uint8(float64(c.B)*srcA + float64(r.buffer[idx+2])*invA)
			r.buffer[idx+3] = 255
		}
	}
}

// addPixel adds the color scaled by its alpha, saturating at 255.
func (r *FastRenderer) addPixel(idx int, c color.NRGBA) {
	a := uint32(c.A)
	r.buffer[idx] = addChannel(r.buffer[idx], c.R, a)
	r.buffer[idx+1] = addChannel(r.buffer[idx+1], c.G, a)
	r.buffer[idx+2] = addChannel(r.buffer[idx+2], c.B, a)
	r.buffer[idx+3] = 255
}

func addChannel(dst, src uint8, a uint32) uint8 {
	v := uint32(dst) + uint32(src)*a/255
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// DrawFilledCircleAdd draws a filled circle with additive blending
func (r *FastRenderer) DrawFilledCircleAdd(cx, cy, radius float64, c color.NRGBA) {
	if radius <= 0 || c.A == 0 {
		return
	}
	radSq := radius * radius

	y1 := max(0, int(math.Floor(cy-radius)))
	y2 := min(r.height, int(math.Ceil(cy+radius))+1)

	for py := y1; py < y2; py++ {
		dy := float64(py) + 0.5 - cy
		dySq := dy * dy
		if dySq > radSq {
			continue
		}
		// Calculate x extent for this row
		xExtent := math.Sqrt(radSq - dySq)
		x1 := max(0, int(math.Floor(cx-xExtent)))
		x2 := min(r.width, int(math.Ceil(cx+xExtent))+1)

		rowStart := py * r.stride
		for px := x1; px < x2; px++ {
			dx := float64(px) + 0.5 - cx
			if dx*dx+dySq <= radSq {
				r.addPixel(rowStart+px*4, c)
			}
		}
	}
}

// DrawThickLineAdd draws a line segment with additive blending by stamping
// each covered pixel once.
func (r *FastRenderer) DrawThickLineAdd(x0, y0, x1, y1, width float64, c color.NRGBA) {
	dx := x1 - x0
	dy := y1 - y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 || width <= 0 || c.A == 0 {
		return
	}
	half := width / 2

	minX := max(0, int(math.Floor(min(x0, x1)-half)))
	maxX := min(r.width, int(math.Ceil(max(x0, x1)+half))+1)
	minY := max(0, int(math.Floor(min(y0, y1)-half)))
	maxY := min(r.height, int(math.Ceil(max(y0, y1)+half))+1)

	for py := minY; py < maxY; py++ {
		rowStart := py * r.stride
		fy := float64(py) + 0.5
		for px := minX; px < maxX; px++ {
			fx := float64(px) + 0.5
			// Distance from the pixel center to the segment
			t := ((fx-x0)*dx + (fy-y0)*dy) / lenSq
			t = math.Max(0, math.Min(1, t))
			ex := x0 + t*dx - fx
			ey := y0 + t*dy - fy
			if ex*ex+ey*ey <= half*half {
				r.addPixel(rowStart+px*4, c)
			}
		}
	}
}
