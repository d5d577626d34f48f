package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"smash-master/internal/game"
)

func testSnapshot(session game.Session, level int) *game.GameSnapshot {
	return &game.GameSnapshot{
		Width:    200,
		Height:   150,
		Session:  session,
		Level:    level,
		Health:   100,
		Player:   game.Vec2{X: 150, Y: 50},
		LeftArm:  game.Vec2{X: 110, Y: 30},
		RightArm: game.Vec2{X: 190, Y: 30},
		Camera:   game.CameraSnapshot{Zoom: 1},
	}
}

func pixelAt(r *Renderer, x, y int) color.RGBA {
	return r.dc.Image().(*image.RGBA).RGBAAt(x, y)
}

func closeTo(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestBackgroundFollowsLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected color.RGBA
	}{
		{1, color.RGBA{26, 32, 44, 255}},
		{2, color.RGBA{46, 16, 5, 255}},
		{3, color.RGBA{30, 32, 16, 255}},
		{4, color.RGBA{21, 5, 46, 255}},
	}

	r := NewRenderer(200, 150, 1)
	for _, tt := range tests {
		r.Draw(testSnapshot(game.SessionPlaying, tt.level))
		if got := pixelAt(r, 1, 1); got != tt.expected {
			t.Errorf("Level %d: expected background %v, got %v", tt.level, tt.expected, got)
		}
	}
}

func TestFloorBelowPlayerLine(t *testing.T) {
	r := NewRenderer(200, 150, 1)
	r.Draw(testSnapshot(game.SessionPlaying, 1))

	if got := pixelAt(r, 1, 140); got != colorFloor {
		t.Errorf("Expected floor color %v, got %v", colorFloor, got)
	}
}

func TestMenuDrawsStartButton(t *testing.T) {
	r := NewRenderer(200, 150, 1)
	r.Draw(testSnapshot(game.SessionMenu, 1))

	if got := pixelAt(r, 100, 75); got != colorRed {
		t.Errorf("Expected start button at center, got %v", got)
	}
}

func TestFlashOverlay(t *testing.T) {
	r := NewRenderer(200, 150, 1)
	snap := testSnapshot(game.SessionPlaying, 1)
	snap.Camera.Flash = 0.5
	r.Draw(snap)

	got := pixelAt(r, 1, 1)
	if !closeTo(got.R, 140, 2) || !closeTo(got.B, 149, 2) {
		t.Errorf("Expected background blended halfway to white, got %v", got)
	}
}

func TestGameOverDarkens(t *testing.T) {
	r := NewRenderer(200, 150, 1)
	r.Draw(testSnapshot(game.SessionGameOver, 1))

	got := pixelAt(r, 1, 1)
	if got.R > 10 || got.G > 10 || got.B > 12 {
		t.Errorf("Expected darkened background, got %v", got)
	}
}

func TestDrawFollowsViewport(t *testing.T) {
	r := NewRenderer(100, 100, 1)
	snap := testSnapshot(game.SessionPlaying, 1)
	snap.Width, snap.Height = 320, 240

	img := r.Draw(snap)
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("Expected 320x240 frame, got %dx%d", b.Dx(), b.Dy())
	}

	// Invalid sizes keep the current frame
	snap.Width = 0
	img = r.Draw(snap)
	if b := img.Bounds(); b.Dx() != 320 {
		t.Errorf("Expected frame size kept, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodePNG(t *testing.T) {
	r := NewRenderer(200, 150, 1)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf, testSnapshot(game.SessionPlaying, 3)); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("Expected 200x150, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestZeroLengthSegmentDrawsNothing(t *testing.T) {
	r := NewRenderer(20, 20, 1)
	r.dc.SetColor(color.Black)
	r.dc.Clear()

	white := color.RGBA{255, 255, 255, 255}
	r.strokeSegment(10, 10, 10, 10, 6, white)
	if got := pixelAt(r, 10, 10); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Expected zero-length segment to draw nothing, got %v", got)
	}

	r.strokeSegment(2, 10, 18, 10, 6, white)
	if got := pixelAt(r, 10, 10); got != white {
		t.Errorf("Expected segment to cover its midpoint, got %v", got)
	}
}

func TestCameraTransform(t *testing.T) {
	c := camera{cx: 512, cy: 384, zoom: 2, shakeX: 3, shakeY: -4}

	x, y := c.apply(612, 384)
	if x != 715 || y != 380 {
		t.Errorf("Expected (715, 380), got (%f, %f)", x, y)
	}

	x, y = c.apply(512, 384)
	if x != 515 || y != 380 {
		t.Errorf("Expected center to move only by shake, got (%f, %f)", x, y)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex      string
		expected color.RGBA
	}{
		{"#d97706", color.RGBA{217, 119, 6, 255}},
		{"#8b5cf6", color.RGBA{139, 92, 246, 255}},
		{"d97706", color.RGBA{255, 255, 255, 255}},
		{"#zzzzzz", color.RGBA{255, 255, 255, 255}},
	}

	for _, tt := range tests {
		if got := parseHexColor(tt.hex); got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.hex, tt.expected, got)
		}
	}
}

func TestStarAlternatesRadius(t *testing.T) {
	pts := star(8, 20, 10)
	if len(pts) != 16 {
		t.Fatalf("Expected 16 vertices, got %d", len(pts))
	}
	if pts[0] != (game.Vec2{X: 20, Y: 0}) {
		t.Errorf("Expected first vertex on the outer radius, got %+v", pts[0])
	}
	if d := pts[1].X*pts[1].X + pts[1].Y*pts[1].Y; d < 99.99 || d > 100.01 {
		t.Errorf("Expected second vertex on the inner radius, got |v|^2=%f", d)
	}
}
