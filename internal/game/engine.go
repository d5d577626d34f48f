package game

import (
	"errors"
	"log"
	"sync"
	"time"

	"smash-master/internal/config"
)

// MaxQueuedInputs bounds the input queue between two steps.
const MaxQueuedInputs = 64

// ErrInvalidViewport is returned for fields narrower than MinFieldWidth or
// without a positive height.
var ErrInvalidViewport = errors.New("viewport needs a width of at least 40 and a positive height")

type inputKind uint8

const (
	inputPointer inputKind = iota
	inputPress
	inputResize
)

type inputEvent struct {
	kind inputKind
	x, y float64 // pointer position or new width/height
}

// TickObserver is notified after every step, under the engine lock.
// It must not call back into the engine.
type TickObserver func(elapsed time.Duration, snap *GameSnapshot, events []Event)

// Engine owns the world and drives it one step per frame. Input methods only
// queue; Step applies the queue, ticks the world and publishes a snapshot.
type Engine struct {
	mu    sync.RWMutex
	world *World
	input []inputEvent

	fps      int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Stats
	stepCount int64

	limits       config.ResourceLimits
	snapshotPool *SnapshotPool
	eventLog     *EventLog
	observer     TickObserver
}

// NewEngine creates an engine with a world in the Menu state.
// A zero seed picks a time based one.
func NewEngine(video config.VideoConfig, game config.GameConfig, limits config.ResourceLimits) *Engine {
	seed := game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	fps := video.FPS
	if fps <= 0 {
		fps = config.DefaultVideo().FPS
	}

	e := &Engine{
		world:        NewWorld(float64(video.Width), float64(video.Height), seed, limits),
		input:        make([]inputEvent, 0, MaxQueuedInputs),
		fps:          fps,
		limits:       limits,
		snapshotPool: NewSnapshotPool(limits),
		eventLog:     NewEventLog(),
	}
	e.produceSnapshot()
	return e
}

// Start begins the frame loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.fps))
	// Each run gets its own stop channel so the engine can be restarted
	e.stopChan = make(chan struct{})
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.Step()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d FPS", e.fps)
}

// Stop stops the frame loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// Step runs one frame: queued input, world tick, event log, snapshot.
func (e *Engine) Step() {
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.applyInput()
	e.world.Tick()
	e.stepCount++

	events := e.world.DrainEvents()
	for _, ev := range events {
		switch ev.Type {
		case EventTypeSessionStart:
			log.Printf("🥊 New run started (seed %d)", e.world.Seed())
		case EventTypeGameOver:
			log.Printf("💀 Game over: score %d, level %d, %d frames", e.world.Score, e.world.Level, e.world.Frame)
		}
	}
	if len(events) > 0 {
		e.eventLog.EmitAll(events)
	}

	snap := e.produceSnapshot()
	if e.observer != nil {
		e.observer(time.Since(start), snap, events)
	}
}

func (e *Engine) applyInput() {
	for _, in := range e.input {
		switch in.kind {
		case inputPointer:
			e.world.SetPointer(in.x, in.y)
		case inputPress:
			e.world.HandlePress()
		case inputResize:
			e.world.Resize(in.x, in.y)
		}
	}
	e.input = e.input[:0]
}

func (e *Engine) enqueue(in inputEvent) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.input) >= MaxQueuedInputs {
		// Keep the newest pointer position even when flooded
		if in.kind == inputPointer {
			for i := len(e.input) - 1; i >= 0; i-- {
				if e.input[i].kind == inputPointer {
					e.input[i] = in
					return true
				}
			}
		}
		return false
	}
	e.input = append(e.input, in)
	return true
}

// PointerMove queues a pointer position in field pixels.
func (e *Engine) PointerMove(x, y float64) {
	e.enqueue(inputEvent{kind: inputPointer, x: x, y: y})
}

// Press queues a primary press. Returns false if the queue is full.
func (e *Engine) Press() bool {
	return e.enqueue(inputEvent{kind: inputPress})
}

// Resize queues a field size change.
func (e *Engine) Resize(width, height float64) error {
	if width < MinFieldWidth || height <= 0 {
		return ErrInvalidViewport
	}
	e.enqueue(inputEvent{kind: inputResize, x: width, y: height})
	return nil
}

// produceSnapshot publishes the current world. Called with e.mu held.
func (e *Engine) produceSnapshot() *GameSnapshot {
	snap := e.snapshotPool.AcquireWrite()
	e.world.FillSnapshot(snap)
	e.snapshotPool.PublishWrite()
	return snap
}

// GetSnapshot returns a copy of the latest published snapshot.
func (e *Engine) GetSnapshot() GameSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// EngineStats is a compact view of the session for status endpoints
type EngineStats struct {
	Session   Session `json:"session"`
	Score     int     `json:"score"`
	Level     int     `json:"level"`
	Health    float64 `json:"health"`
	Frame     int64   `json:"frame"`
	Steps     int64   `json:"steps"`
	Enemies   int     `json:"enemies"`
	Particles int     `json:"particles"`
	Seed      int64   `json:"seed"`
	FPS       int     `json:"fps"`
}

// Stats returns the current session numbers
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return EngineStats{
		Session:   e.world.Session,
		Score:     e.world.Score,
		Level:     e.world.Level,
		Health:    e.world.Health,
		Frame:     e.world.Frame,
		Steps:     e.stepCount,
		Enemies:   len(e.world.Enemies),
		Particles: len(e.world.Particles),
		Seed:      e.world.Seed(),
		FPS:       e.fps,
	}
}

// SetTickObserver installs a per-step callback (metrics)
func (e *Engine) SetTickObserver(obs TickObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer = obs
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// GetLimits returns the resource limits
func (e *Engine) GetLimits() config.ResourceLimits {
	return e.limits
}

// FPS returns the configured frame rate
func (e *Engine) FPS() int {
	return e.fps
}
