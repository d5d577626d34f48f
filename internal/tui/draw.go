package tui

import (
	"fmt"
	"image/color"
	"math"

	"smash-master/internal/game"
	"smash-master/internal/render"

	"github.com/gdamore/tcell/v2"
)

var (
	colorFloor     = tcell.NewRGBColor(20, 25, 40)
	colorFloorLine = tcell.NewRGBColor(60, 70, 90)
	colorSkin      = tcell.NewRGBColor(190, 140, 100)
	colorHead      = tcell.NewRGBColor(59, 130, 246)
	colorHUDScore  = tcell.NewRGBColor(250, 204, 21)
	colorHUDHealth = tcell.NewRGBColor(239, 68, 68)
	colorReticle   = tcell.NewRGBColor(239, 68, 68)
	colorFlash     = tcell.NewRGBColor(200, 200, 210)
)

// canvas clips field-space drawing to the terminal grid.
type canvas struct {
	screen     tcell.Screen
	cols, rows int
	bg         tcell.Color
}

func (c *canvas) set(col, row int, r rune, fg tcell.Color) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	_, _, style, _ := c.screen.GetContent(col, row)
	_, bg, _ := style.Decompose()
	c.screen.SetContent(col, row, r, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
}

func (c *canvas) plot(x, y float64, r rune, fg tcell.Color) {
	col, row := FieldToCell(x, y)
	c.set(col, row, r, fg)
}

// line samples a segment once per cell it crosses.
func (c *canvas) line(x0, y0, x1, y1 float64, r rune, fg tcell.Color) {
	steps := int(math.Max(math.Abs(x1-x0)/CellWidth, math.Abs(y1-y0)/CellHeight))
	if steps == 0 {
		c.plot(x0, y0, r, fg)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.plot(x0+(x1-x0)*t, y0+(y1-y0)*t, r, fg)
	}
}

func (c *canvas) text(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		if col >= 0 && row >= 0 && col < c.cols && row < c.rows {
			c.screen.SetContent(col, row, r, nil, style.Background(c.bg))
		}
		col++
	}
}

func (c *canvas) centered(row int, s string, style tcell.Style) {
	c.text((c.cols-len([]rune(s)))/2, row, s, style)
}

// Draw renders one snapshot at cell resolution and shows it.
func (f *Frontend) Draw(snap *game.GameSnapshot) {
	cols, rows := f.screen.Size()
	bg := rgb(render.BackgroundColor(snap.Level))
	if snap.Camera.Flash > 0.3 {
		bg = colorFlash
	}
	c := &canvas{screen: f.screen, cols: cols, rows: rows, bg: bg}

	_, floorRow := FieldToCell(0, snap.Player.Y)
	for row := 0; row < rows; row++ {
		rowBG := bg
		if row > floorRow {
			rowBG = colorFloor
		}
		for col := 0; col < cols; col++ {
			f.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(rowBG))
		}
	}
	for col := 0; col < cols; col++ {
		c.set(col, floorRow, '─', colorFloorLine)
	}

	if snap.Session == game.SessionMenu {
		c.centered(rows/2, "[ CLICK TO START ]", tcell.StyleDefault.Foreground(colorHUDHealth).Bold(true))
		f.screen.Show()
		return
	}

	drawShockwaves(c, snap.Shockwaves)
	drawParticles(c, snap.Particles)
	drawEnemies(c, snap.Enemies)
	drawReticle(c, snap.Reticle)
	drawExplosions(c, snap.Explosions)
	drawPlayer(c, snap)

	for _, t := range snap.Texts {
		if t.Alpha <= 0 {
			continue
		}
		col, row := FieldToCell(t.X, t.Y)
		c.text(col, row, fmt.Sprintf("+%d", t.Value), tcell.StyleDefault.Foreground(hexColor(t.Color)).Bold(true))
	}

	drawHUD(c, snap)

	if snap.Session == game.SessionGameOver {
		c.centered(rows/2-1, "GAME OVER", tcell.StyleDefault.Foreground(colorHUDHealth).Bold(true))
		c.centered(rows/2+1, fmt.Sprintf("SCORE %d", snap.Score), tcell.StyleDefault.Foreground(colorHUDScore))
	}

	f.screen.Show()
}

func drawShockwaves(c *canvas, waves []game.ShockwaveSnapshot) {
	for _, s := range waves {
		if s.Alpha <= 0 || s.Radius <= 0 {
			continue
		}
		fg := hexColor(s.Color)
		steps := max(8, int(s.Radius/4))
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / float64(steps)
			c.plot(s.X+math.Cos(a)*s.Radius, s.Y+math.Sin(a)*s.Radius, '·', fg)
		}
	}
}

func drawParticles(c *canvas, particles []game.ParticleSnapshot) {
	for _, p := range particles {
		fg := hexColor(p.Color)
		switch p.Kind {
		case game.ParticleSpark:
			c.plot(p.X, p.Y, '*', fg)
		case game.ParticleDebris:
			c.plot(p.X, p.Y, '▪', fg)
		case game.ParticleLightning:
			for i := 1; i < len(p.Path); i++ {
				c.line(p.Path[i-1].X, p.Path[i-1].Y, p.Path[i].X, p.Path[i].Y, '+', fg)
			}
		default:
			c.plot(p.X, p.Y, '•', fg)
		}
	}
}

func enemyRune(kind game.EnemyKind) rune {
	switch kind {
	case game.EnemySpike:
		return '▲'
	case game.EnemyHex:
		return '◆'
	default:
		return '▓'
	}
}

func drawEnemies(c *canvas, enemies []game.EnemySnapshot) {
	for _, e := range enemies {
		half := e.Size / 2
		c0, r0 := FieldToCell(e.X-half, e.Y-half)
		c1, r1 := FieldToCell(e.X+half, e.Y+half)
		r := enemyRune(e.Kind)
		fg := hexColor(e.Color)
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				c.set(col, row, r, fg)
			}
		}
	}
}

func drawReticle(c *canvas, ret game.ReticleSnapshot) {
	if !ret.Active {
		return
	}
	half := ret.Size/2 + 10
	c0, r0 := FieldToCell(ret.X-half, ret.Y-half)
	c1, r1 := FieldToCell(ret.X+half, ret.Y+half)
	c.set(c0, r0, '┌', colorReticle)
	c.set(c1, r0, '┐', colorReticle)
	c.set(c0, r1, '└', colorReticle)
	c.set(c1, r1, '┘', colorReticle)
}

func drawExplosions(c *canvas, explosions []game.ExplosionSnapshot) {
	for _, ex := range explosions {
		if ex.Life <= 0 {
			continue
		}
		fg := hexColor(game.ColorOrange)
		if ex.Life < 0.5 {
			fg = hexColor(game.ColorYellow)
		}
		radius := 50 * ex.Scale
		c.plot(ex.X, ex.Y, '✸', fg)
		for i := 0; i < 8; i++ {
			a := ex.Rotation + float64(i)*math.Pi/4
			c.plot(ex.X+math.Cos(a)*radius, ex.Y+math.Sin(a)*radius, '*', fg)
		}
	}
}

func drawPlayer(c *canvas, snap *game.GameSnapshot) {
	p := snap.Player
	shoulderY := p.Y - 50

	c.line(p.X-15, shoulderY, snap.LeftArm.X, snap.LeftArm.Y, '·', colorSkin)
	c.line(p.X+15, shoulderY, snap.RightArm.X, snap.RightArm.Y, '·', colorSkin)
	c.line(p.X, shoulderY, p.X, p.Y, '│', colorHead)
	c.plot(p.X, p.Y-60, '●', colorHead)

	glove := rgb(render.GloveColor(snap.Level))
	c.plot(snap.LeftArm.X, snap.LeftArm.Y, '█', glove)
	c.plot(snap.RightArm.X, snap.RightArm.Y, '█', glove)
}

func drawHUD(c *canvas, snap *game.GameSnapshot) {
	c.text(1, 0, fmt.Sprintf("SCORE %d", snap.Score), tcell.StyleDefault.Foreground(colorHUDScore).Bold(true))
	c.centered(0, fmt.Sprintf("LV %d", snap.Level), tcell.StyleDefault.Foreground(rgb(render.GloveColor(snap.Level))))

	hp := fmt.Sprintf("HP %d", int(math.Ceil(snap.Health)))
	c.text(c.cols-len(hp)-1, 0, hp, tcell.StyleDefault.Foreground(colorHUDHealth).Bold(true))
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// hexColor maps "#rrggbb" to a terminal color, white when unparseable.
func hexColor(hex string) tcell.Color {
	if c := tcell.GetColor(hex); c != tcell.ColorDefault {
		return c
	}
	return tcell.ColorWhite
}
