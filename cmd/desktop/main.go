package main

import (
	"log"

	"smash-master/internal/config"
	"smash-master/internal/game"
	"smash-master/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joho/godotenv"
)

// desktopGame adapts the engine to ebiten's Update/Draw/Layout loop.
// Update runs once per ebiten tick and is the only caller of Step.
type desktopGame struct {
	engine   *game.Engine
	renderer *render.Renderer
	frame    *ebiten.Image

	width, height int
}

func (g *desktopGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	g.engine.PointerMove(float64(x), float64(y))
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.engine.Press()
	}

	g.engine.Step()
	return nil
}

func (g *desktopGame) Draw(screen *ebiten.Image) {
	snap := g.engine.GetSnapshot()
	img := g.renderer.Draw(&snap)

	// The field can trail the window by a frame after a resize
	b := img.Bounds()
	if g.frame == nil || g.frame.Bounds().Dx() != b.Dx() || g.frame.Bounds().Dy() != b.Dy() {
		if g.frame != nil {
			g.frame.Deallocate()
		}
		g.frame = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.frame.WritePixels(img.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *desktopGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		if err := g.engine.Resize(float64(outsideWidth), float64(outsideHeight)); err != nil {
			log.Printf("⚠️ Window resize ignored: %v", err)
			return g.width, g.height
		}
		g.width, g.height = outsideWidth, outsideHeight
	}
	return g.width, g.height
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()
	videoCfg := appConfig.Video

	engine := game.NewEngine(videoCfg, appConfig.Game, appConfig.Limits)
	if path := appConfig.Game.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", path)
		}
	}
	defer engine.StopEventLog()

	g := &desktopGame{
		engine:   engine,
		renderer: render.NewRenderer(videoCfg.Width, videoCfg.Height, appConfig.Game.Seed),
		width:    videoCfg.Width,
		height:   videoCfg.Height,
	}

	ebiten.SetWindowSize(videoCfg.Width, videoCfg.Height)
	ebiten.SetWindowTitle("Smash Master")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(videoCfg.FPS)

	log.Printf("🎮 Desktop window %dx%d at %d TPS", videoCfg.Width, videoCfg.Height, videoCfg.FPS)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		log.Fatalf("❌ Game loop failed: %v", err)
	}
	log.Println("👋 Goodbye!")
}
