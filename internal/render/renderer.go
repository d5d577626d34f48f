package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"smash-master/internal/game"
)

// Palette
var (
	colorFloor      = color.RGBA{20, 25, 40, 255}
	colorFloorLine  = color.RGBA{60, 70, 90, 255}
	colorRed        = color.RGBA{239, 68, 68, 255}
	colorOrange     = color.RGBA{249, 115, 22, 255}
	colorYellow     = color.RGBA{250, 204, 21, 255}
	colorPurple     = color.RGBA{147, 51, 234, 255}
	colorBlue       = color.RGBA{59, 130, 246, 255}
	colorSkin       = color.RGBA{190, 140, 100, 255}
	colorReticle    = color.RGBA{0, 255, 0, 255}
	colorShadow     = color.NRGBA{0, 0, 0, 80}
	colorCrateEdge  = color.RGBA{120, 53, 15, 255}
	colorHexEdge    = color.RGBA{76, 29, 149, 255}
	colorSpikeEdge  = color.RGBA{127, 29, 29, 255}
	colorGloveShine = color.NRGBA{255, 255, 255, 80}
)

// BackgroundColor returns the clear color for a level.
func BackgroundColor(level int) color.RGBA {
	switch level {
	case 2:
		return color.RGBA{46, 16, 5, 255}
	case 3:
		return color.RGBA{30, 32, 16, 255}
	case 4:
		return color.RGBA{21, 5, 46, 255}
	default:
		return color.RGBA{26, 32, 44, 255}
	}
}

// GloveColor returns the glove and aura color for a level.
func GloveColor(level int) color.RGBA {
	switch level {
	case 2:
		return colorOrange
	case 3:
		return colorYellow
	case 4:
		return colorPurple
	default:
		return colorRed
	}
}

// camera maps world coordinates to the screen: zoom about the field
// center, then a shake offset.
type camera struct {
	cx, cy         float64
	zoom           float64
	shakeX, shakeY float64
}

func (c camera) apply(x, y float64) (float64, float64) {
	return (x-c.cx)*c.zoom + c.cx + c.shakeX, (y-c.cy)*c.zoom + c.cy + c.shakeY
}

// Renderer draws game snapshots into an RGBA frame with gg.
// It is not safe for concurrent use; the returned image is reused by the
// next Draw call.
type Renderer struct {
	dc     *gg.Context
	fast   *FastRenderer
	rng    *rand.Rand
	width  int
	height int
	cam    camera
}

// NewRenderer creates a renderer with an initial frame size.
// seed drives the screen shake jitter.
func NewRenderer(width, height int, seed int64) *Renderer {
	r := &Renderer{rng: rand.New(rand.NewSource(seed))}
	r.resize(max(1, width), max(1, height))
	return r
}

// resize recreates the drawing context for a new frame size.
func (r *Renderer) resize(width, height int) {
	r.width = width
	r.height = height
	r.dc = gg.NewContext(width, height)
	r.dc.SetFontFace(basicfont.Face7x13)
	r.dc.SetLineCap(gg.LineCapButt)
	r.dc.SetLineJoin(gg.LineJoinRound)

	// gg.NewContext always backs onto *image.RGBA
	img := r.dc.Image().(*image.RGBA)
	r.fast = NewFastRenderer(width, height, img.Pix)
}

// Size returns the current frame size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Draw renders one frame of the snapshot.
func (r *Renderer) Draw(snap *game.GameSnapshot) *image.RGBA {
	w, h := int(snap.Width), int(snap.Height)
	if w > 0 && h > 0 && (w != r.width || h != r.height) {
		r.resize(w, h)
	}
	fw, fh := float64(r.width), float64(r.height)

	r.dc.SetColor(BackgroundColor(snap.Level))
	r.dc.Clear()

	zoom := snap.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	r.cam = camera{cx: fw / 2, cy: fh / 2, zoom: zoom}
	if snap.Camera.Shake > 0 {
		r.cam.shakeX = (r.rng.Float64() - 0.5) * snap.Camera.Shake
		r.cam.shakeY = (r.rng.Float64() - 0.5) * snap.Camera.Shake
	}

	// Floor, in screen space below the transformed player line
	_, floorY := r.cam.apply(0, snap.Player.Y)
	r.fast.DrawFilledRect(0, int(floorY), r.width, r.height, colorFloor)

	r.pushCamera()
	r.strokeSegment(0, snap.Player.Y, fw, snap.Player.Y, 4, colorFloorLine)
	r.dc.Pop()

	r.drawAdditive(snap)

	r.pushCamera()
	r.drawDebris(snap.Particles)

	if snap.Session == game.SessionMenu {
		r.dc.Pop()
		r.drawMenu()
		return r.dc.Image().(*image.RGBA)
	}

	r.drawEnemies(snap.Enemies)
	r.drawReticle(snap.Reticle)
	r.drawExplosions(snap.Explosions)
	r.drawPlayer(snap)
	r.dc.Pop()

	r.drawGloveAuras(snap)
	r.pushCamera()
	r.drawGlove(snap.LeftArm, snap.Level, true)
	r.drawGlove(snap.RightArm, snap.Level, false)
	r.dc.Pop()

	// HUD
	r.drawNumber(snap.Score, 20, 50, 25, colorYellow)
	r.drawNumber(int(math.Max(0, snap.Health)), fw-150, 50, 25, colorRed)
	for _, t := range snap.Texts {
		r.drawNumber(t.Value, t.X, t.Y, 20, withAlpha(parseHexColor(t.Color), t.Alpha))
	}

	if snap.Camera.Flash > 0 {
		r.fast.DrawFilledRectBlend(0, 0, r.width, r.height, withAlpha(color.RGBA{255, 255, 255, 255}, snap.Camera.Flash))
	}

	if snap.Session == game.SessionGameOver {
		r.drawGameOver(snap.Score)
	}

	return r.dc.Image().(*image.RGBA)
}

// EncodePNG renders the snapshot and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap *game.GameSnapshot) error {
	if err := png.Encode(w, r.Draw(snap)); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}

// pushCamera saves the gg state and applies the world camera.
func (r *Renderer) pushCamera() {
	c := r.cam
	r.dc.Push()
	r.dc.Translate(c.cx+c.shakeX, c.cy+c.shakeY)
	r.dc.Scale(c.zoom, c.zoom)
	r.dc.Translate(-c.cx, -c.cy)
}

// drawAdditive draws shockwaves, glowing particles and sparks with additive
// blending directly into the pixel buffer.
func (r *Renderer) drawAdditive(snap *game.GameSnapshot) {
	z := r.cam.zoom
	for _, s := range snap.Shockwaves {
		x, y := r.cam.apply(s.X, s.Y)
		r.fast.DrawFilledCircleAdd(x, y, s.Radius*z, withAlpha(parseHexColor(s.Color), s.Alpha))
	}

	for _, p := range snap.Particles {
		c := withAlpha(parseHexColor(p.Color), p.Life)
		switch p.Kind {
		case game.ParticleNormal:
			x, y := r.cam.apply(p.X, p.Y)
			r.fast.DrawFilledCircleAdd(x, y, p.Size*z, c)
		case game.ParticleSpark:
			x0, y0 := r.cam.apply(p.X, p.Y)
			x1, y1 := r.cam.apply(p.X-p.VX*2, p.Y-p.VY*2)
			r.fast.DrawThickLineAdd(x0, y0, x1, y1, p.Size*z, c)
		case game.ParticleLightning:
			for i := 1; i < len(p.Path); i++ {
				x0, y0 := r.cam.apply(p.Path[i-1].X, p.Path[i-1].Y)
				x1, y1 := r.cam.apply(p.Path[i].X, p.Path[i].Y)
				r.fast.DrawThickLineAdd(x0, y0, x1, y1, 4*z, c)
			}
		}
	}
}

func (r *Renderer) drawDebris(particles []game.ParticleSnapshot) {
	for _, p := range particles {
		if p.Kind != game.ParticleDebris {
			continue
		}
		shape := []game.Vec2{
			{X: -p.W / 2, Y: -p.H / 2},
			{X: p.W / 2, Y: -p.H / 4},
			{X: 0, Y: p.H / 2},
			{X: -p.W / 2, Y: p.H / 4},
		}
		r.fillPolygon(p.X, p.Y, shape, p.Rotation, parseHexColor(p.Color))
	}
}

func (r *Renderer) drawEnemies(enemies []game.EnemySnapshot) {
	for _, e := range enemies {
		var shape []game.Vec2
		var edge color.RGBA
		edgeWidth := 3.0
		diagonals := false

		switch e.Kind {
		case game.EnemyCrate:
			hs := e.Size / 2
			shape = []game.Vec2{{X: -hs, Y: -hs}, {X: hs, Y: -hs}, {X: hs, Y: hs}, {X: -hs, Y: hs}}
			edge = colorCrateEdge
			diagonals = true
		case game.EnemyHex:
			shape = hexagon(e.Size / 1.5)
			edge = colorHexEdge
		default:
			shape = star(8, e.Size/1.3, e.Size/2)
			edge = colorSpikeEdge
			edgeWidth = 2
		}

		r.fillPolygon(e.X+10, e.Y+10, shape, e.Rotation, colorShadow)
		r.fillPolygon(e.X, e.Y, shape, e.Rotation, parseHexColor(e.Color))

		pts := make([]game.Vec2, len(shape))
		for i, v := range shape {
			pts[i] = rotate(v, e.Rotation)
			pts[i].X += e.X
			pts[i].Y += e.Y
		}
		for i := range pts {
			next := pts[(i+1)%len(pts)]
			r.strokeSegment(pts[i].X, pts[i].Y, next.X, next.Y, edgeWidth, edge)
		}
		if diagonals {
			r.strokeSegment(pts[0].X, pts[0].Y, pts[2].X, pts[2].Y, edgeWidth, edge)
			r.strokeSegment(pts[1].X, pts[1].Y, pts[3].X, pts[3].Y, edgeWidth, edge)
		}
	}
}

func (r *Renderer) drawReticle(ret game.ReticleSnapshot) {
	if !ret.Active {
		return
	}
	s := ret.Size / 2
	cx, cy := ret.X, ret.Y
	r.strokeSegment(cx-s, cy-s, cx+s, cy-s, 4, colorReticle)
	r.strokeSegment(cx+s, cy-s, cx+s, cy+s, 4, colorReticle)
	r.strokeSegment(cx+s, cy+s, cx-s, cy+s, 4, colorReticle)
	r.strokeSegment(cx-s, cy+s, cx-s, cy-s, 4, colorReticle)
}

// drawExplosions draws each burst as a spinning eight-point star.
func (r *Renderer) drawExplosions(explosions []game.ExplosionSnapshot) {
	for _, ex := range explosions {
		radius := 30 * ex.Scale
		r.fillPolygon(ex.X, ex.Y, star(8, radius, radius/2), ex.Rotation, withAlpha(colorOrange, ex.Life))
		r.fillPolygon(ex.X, ex.Y, star(8, radius/2, radius/4), -ex.Rotation, withAlpha(colorYellow, ex.Life))
	}
}

func (r *Renderer) drawPlayer(snap *game.GameSnapshot) {
	p := snap.Player
	shoulderL := game.Vec2{X: p.X - 15, Y: p.Y - 50}
	shoulderR := game.Vec2{X: p.X + 15, Y: p.Y - 50}

	midL := game.Vec2{X: (shoulderL.X+snap.LeftArm.X)/2 - 50, Y: (shoulderL.Y+snap.LeftArm.Y)/2 + 20}
	midR := game.Vec2{X: (shoulderR.X+snap.RightArm.X)/2 + 50, Y: (shoulderR.Y+snap.RightArm.Y)/2 + 20}
	r.strokeBezier(shoulderL, midL, snap.LeftArm, 24, colorSkin)
	r.strokeBezier(shoulderR, midR, snap.RightArm, 24, colorSkin)

	r.dc.SetColor(colorBlue)
	r.dc.DrawCircle(p.X, p.Y-60, 30)
	r.dc.Fill()
}

// gloveScale grows the gloves with the level.
func gloveScale(level int) float64 {
	return 1 + float64(level-1)*0.3
}

func (r *Renderer) drawGloveAuras(snap *game.GameSnapshot) {
	if snap.Level < 2 {
		return
	}
	s := gloveScale(snap.Level)
	pulse := math.Sin(float64(snap.Frame)*0.2) * 5
	aura := withAlpha(GloveColor(snap.Level), 60.0/255.0)
	for _, arm := range []game.Vec2{snap.LeftArm, snap.RightArm} {
		x, y := r.cam.apply(arm.X, arm.Y)
		r.fast.DrawFilledCircleAdd(x, y, (40+pulse)*s*r.cam.zoom, aura)
	}
}

func (r *Renderer) drawGlove(at game.Vec2, level int, isLeft bool) {
	s := gloveScale(level)
	side := 1.0
	if isLeft {
		side = -1
	}
	gc := GloveColor(level)

	// Cuff
	cuffX := at.X + side*20*s
	r.strokeSegment(cuffX, at.Y-15*s, cuffX, at.Y+15*s, 12*s, color.RGBA{255, 255, 255, 255})

	gloveX := at.X - side*5*s
	r.dc.SetColor(gc)
	r.dc.DrawCircle(gloveX, at.Y, 28*s)
	r.dc.Fill()

	// Thumb
	r.dc.DrawCircle(at.X-side*15*s, at.Y-10*s, 12*s)
	r.dc.Fill()

	r.dc.SetColor(colorGloveShine)
	r.dc.DrawCircle(gloveX, at.Y-10*s, 8*s)
	r.dc.Fill()
}

func (r *Renderer) drawMenu() {
	fw, fh := float64(r.width), float64(r.height)
	r.dc.SetColor(colorRed)
	r.dc.DrawCircle(fw/2, fh/2, 80)
	r.dc.Fill()

	r.dc.SetColor(color.White)
	r.dc.DrawStringAnchored("CLICK TO START", fw/2, fh/2+110, 0.5, 0.5)
}

func (r *Renderer) drawGameOver(score int) {
	fw, fh := float64(r.width), float64(r.height)
	r.fast.DrawFilledRectBlend(0, 0, r.width, r.height, color.NRGBA{0, 0, 0, 200})

	r.dc.SetColor(color.White)
	r.dc.DrawStringAnchored("GAME OVER", fw/2, fh/2-40, 0.5, 0.5)
	r.drawNumber(score, fw/2-50, fh/2, 60, colorYellow)
}

// drawNumber draws a number with seven-segment strokes in screen space.
func (r *Renderer) drawNumber(number int, x, y, size float64, c color.Color) {
	for _, seg := range numberSegments(number, x, y, size) {
		r.strokeSegment(seg.X1, seg.Y1, seg.X2, seg.Y2, 3, c)
	}
}

// strokeSegment draws a straight stroke in the current transform.
// Zero-length segments draw nothing.
func (r *Renderer) strokeSegment(x1, y1, x2, y2, width float64, c color.Color) {
	if x1 == x2 && y1 == y2 {
		return
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

func (r *Renderer) strokeBezier(start, control, end game.Vec2, width float64, c color.Color) {
	if start == end && start == control {
		return
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.MoveTo(start.X, start.Y)
	r.dc.QuadraticTo(control.X, control.Y, end.X, end.Y)
	r.dc.Stroke()
	r.dc.SetLineCap(gg.LineCapButt)
}

// fillPolygon fills shape, given relative to (x, y), rotated by rotation.
func (r *Renderer) fillPolygon(x, y float64, shape []game.Vec2, rotation float64, c color.Color) {
	if len(shape) < 3 {
		return
	}
	r.dc.NewSubPath()
	for i, v := range shape {
		p := rotate(v, rotation)
		if i == 0 {
			r.dc.MoveTo(x+p.X, y+p.Y)
		} else {
			r.dc.LineTo(x+p.X, y+p.Y)
		}
	}
	r.dc.ClosePath()
	r.dc.SetColor(c)
	r.dc.Fill()
}

func rotate(v game.Vec2, angle float64) game.Vec2 {
	sin, cos := math.Sincos(angle)
	return game.Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

func hexagon(radius float64) []game.Vec2 {
	pts := make([]game.Vec2, 6)
	for i := range pts {
		a := float64(i) * math.Pi / 3
		pts[i] = game.Vec2{X: math.Cos(a) * radius, Y: math.Sin(a) * radius}
	}
	return pts
}

// star returns 2*points vertices alternating outer and inner radius.
func star(points int, outer, inner float64) []game.Vec2 {
	pts := make([]game.Vec2, points*2)
	for i := range pts {
		a := float64(i) * math.Pi / float64(points)
		rad := inner
		if i%2 == 0 {
			rad = outer
		}
		pts[i] = game.Vec2{X: math.Cos(a) * rad, Y: math.Sin(a) * rad}
	}
	return pts
}

// withAlpha returns c with coverage a in [0, 1].
func withAlpha(c color.RGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	return color.NRGBA{c.R, c.G, c.B, uint8(a * 255)}
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{r, g, b, 255}
}
