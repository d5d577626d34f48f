// Package tui plays the game inside a terminal using tcell.
//
// Every terminal cell stands for a CellWidth x CellHeight block of field
// pixels, so the simulation keeps its pixel tuning while the cell renderer
// samples the snapshot at cell resolution.
package tui

import (
	"fmt"
	"log"
	"time"

	"smash-master/internal/game"

	"github.com/gdamore/tcell/v2"
)

const (
	CellWidth  = 8
	CellHeight = 16
)

// Engine is the slice of the game engine the terminal frontend drives.
type Engine interface {
	GetSnapshot() game.GameSnapshot
	PointerMove(x, y float64)
	Press() bool
	Resize(width, height float64) error
}

// FieldToCell returns the cell that contains field point (x, y).
func FieldToCell(x, y float64) (col, row int) {
	return floorDiv(x, CellWidth), floorDiv(y, CellHeight)
}

// CellCenter returns the field point at the middle of a cell.
func CellCenter(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

func floorDiv(v float64, size int) int {
	c := int(v / float64(size))
	if v < 0 && float64(c*size) != v {
		c--
	}
	return c
}

// Frontend owns the tcell screen and forwards mouse input to the engine.
type Frontend struct {
	screen tcell.Screen
	engine Engine
	fps    int

	cols, rows int
	buttonDown bool
}

// NewFrontend wraps a screen. Call Init before Run.
func NewFrontend(screen tcell.Screen, engine Engine, fps int) *Frontend {
	if fps <= 0 {
		fps = 60
	}
	return &Frontend{
		screen: screen,
		engine: engine,
		fps:    fps,
	}
}

// Init initializes the screen, enables mouse reporting and sizes the field
// to the terminal.
func (f *Frontend) Init() error {
	if err := f.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	f.screen.EnableMouse(tcell.MouseMotionEvents)
	f.screen.HideCursor()
	return f.syncSize()
}

// Close restores the terminal.
func (f *Frontend) Close() {
	f.screen.DisableMouse()
	f.screen.Fini()
}

// Run draws at the configured rate and handles input until the player quits.
func (f *Frontend) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(f.fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := f.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok || !f.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			snap := f.engine.GetSnapshot()
			f.Draw(&snap)
		}
	}
}

// handleEvent applies one terminal event. Returns false on quit.
func (f *Frontend) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
		if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
			f.engine.Press()
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		f.engine.PointerMove(CellCenter(col, row))

		// Press fires on the button going down, not while it is held
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !f.buttonDown {
			f.engine.Press()
		}
		f.buttonDown = down

	case *tcell.EventResize:
		f.screen.Sync()
		if err := f.syncSize(); err != nil {
			log.Printf("⚠️ Terminal resize ignored: %v", err)
		}
	}

	return true
}

// syncSize resizes the field when the terminal grid changed.
func (f *Frontend) syncSize() error {
	cols, rows := f.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if cols == f.cols && rows == f.rows {
		return nil
	}
	if err := f.engine.Resize(float64(cols*CellWidth), float64(rows*CellHeight)); err != nil {
		return fmt.Errorf("resize field to %dx%d cells: %w", cols, rows, err)
	}
	f.cols, f.rows = cols, rows
	return nil
}
