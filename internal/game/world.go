package game

import (
	"math/rand"

	"smash-master/internal/config"
)

// Session is the top-level game state.
type Session uint8

const (
	SessionMenu Session = iota
	SessionPlaying
	SessionGameOver
)

// String returns the session name.
func (s Session) String() string {
	switch s {
	case SessionMenu:
		return "menu"
	case SessionPlaying:
		return "playing"
	case SessionGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the session by name.
func (s Session) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Player is the boxer standing on the floor line.
type Player struct {
	Pos    Vec2
	Width  float64
	Height float64
}

// World owns every piece of mutable simulation state. Tick is its only
// per-frame mutator; it is not safe for concurrent use.
type World struct {
	Width, Height float64

	Session Session
	Score   int
	Health  float64
	Level   int
	Frame   int64
	HitStop int // Remaining frozen frames

	// Camera feedback
	Shake float64
	Flash float64
	Zoom  float64

	Player   Player
	Pointer  Vec2
	LeftArm  Vec2
	RightArm Vec2
	Punch    Punch

	Enemies    []Enemy
	Particles  []Particle
	Shockwaves []*Shockwave
	Texts      []*FloatingText
	Explosions []*Explosion

	rng         *rand.Rand
	seed        int64
	limits      config.ResourceLimits
	nextEnemyID uint64
	events      []Event
}

// NewWorld creates a world in the Menu state.
func NewWorld(width, height float64, seed int64, limits config.ResourceLimits) *World {
	w := &World{
		Width:   width,
		Height:  height,
		Session: SessionMenu,
		Pointer: Vec2{X: width / 2, Y: height / 2},
		rng:     rand.New(rand.NewSource(seed)),
		seed:    seed,
		limits:  limits,
	}
	w.Reset()
	return w
}

// Reset restores a fresh run without changing the session state.
func (w *World) Reset() {
	w.Score = 0
	w.Health = MaxHealth
	w.Level = 1
	w.Frame = 0
	w.HitStop = 0
	w.Shake = 0
	w.Flash = 0
	w.Zoom = 1

	clear(w.Enemies)
	w.Enemies = w.Enemies[:0]
	clear(w.Particles)
	w.Particles = w.Particles[:0]
	clear(w.Shockwaves)
	w.Shockwaves = w.Shockwaves[:0]
	clear(w.Texts)
	w.Texts = w.Texts[:0]
	clear(w.Explosions)
	w.Explosions = w.Explosions[:0]

	w.Player = Player{
		Pos:    Vec2{X: w.Width / 2, Y: w.Height - PlayerFloorOffset},
		Width:  PlayerWidth,
		Height: PlayerHeight,
	}
	w.Punch = Punch{state: idleState{}}
	w.LeftArm, w.RightArm = w.restPositions()
}

// SetPointer records the pointer position. The player follows it on the next tick.
func (w *World) SetPointer(x, y float64) {
	w.Pointer = Vec2{X: x, Y: y}
}

// Resize changes the field. Widths below MinFieldWidth and non-positive
// heights are ignored.
func (w *World) Resize(width, height float64) {
	if width < MinFieldWidth || height <= 0 {
		return
	}
	w.Width = width
	w.Height = height
	w.Player.Pos.Y = height - PlayerFloorOffset
}

// clampPlayerX keeps the player inside the edge margins, or centered when the
// field is too narrow to have any.
func (w *World) clampPlayerX(x float64) float64 {
	if w.Width < MinFieldWidth {
		return w.Width / 2
	}
	return clampFloat(x, PlayerEdgeMargin, w.Width-PlayerEdgeMargin)
}

// HandlePress applies a primary press: it starts a new run from Menu or
// GameOver, and triggers a punch while Playing with idle gloves.
func (w *World) HandlePress() {
	switch w.Session {
	case SessionMenu, SessionGameOver:
		w.Reset()
		w.Session = SessionPlaying
		w.emit(EventTypeSessionStart, SessionStartPayload{Seed: w.seed, Width: w.Width, Height: w.Height})
	case SessionPlaying:
		if w.Punch.Phase() == PunchIdle {
			w.triggerPunch()
		}
	}
}

// Tick advances the simulation by one frame. Nothing happens outside
// Playing; during hit-stop the whole frame is skipped.
func (w *World) Tick() {
	if w.Session != SessionPlaying {
		return
	}
	if w.HitStop > 0 {
		w.HitStop--
		return
	}

	w.Frame++
	w.decayCamera()
	w.updateLevel()

	w.Player.Pos.X = w.clampPlayerX(w.Pointer.X)
	w.Player.Pos.Y = w.Height - PlayerFloorOffset

	w.maybeSpawn()
	w.updateEnemies()
	w.compactEnemies()
	w.updateEffects()
	w.advancePunch()

	// Swept enemies leave the collection in the same frame
	w.compactEnemies()
}

func (w *World) decayCamera() {
	if w.Shake > 0 {
		w.Shake *= ShakeDecay
	}
	if w.Shake < ShakeFloor {
		w.Shake = 0
	}
	w.Flash = max(0, w.Flash-FlashDecay)
	w.Zoom = max(1, w.Zoom-ZoomDecay)
}

func (w *World) updateLevel() {
	level := min(MaxLevel, w.Score/PointsPerLevel+1)
	if level > w.Level {
		w.Level = level
		w.Shake = LevelUpShake
		w.Flash = LevelUpFlash
		w.emit(EventTypeLevelUp, LevelUpPayload{Level: level, Score: w.Score})
	}
}

// updateEnemies moves every active enemy, then runs the damage, block and
// off-screen checks in that order. An enemy consumed by one check skips the rest.
func (w *World) updateEnemies() {
	idle := w.Punch.Phase() == PunchIdle
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if !e.Active {
			continue
		}

		e.advance(w.Frame, w.Width)
		e.Rotation += e.RotSpeed

		if w.checkDamage(e) {
			continue
		}
		if idle && w.checkBlock(e) {
			continue
		}
		if e.Pos.Y > w.Height+e.Size/2 {
			e.Active = false
		}
	}
}

func (w *World) compactEnemies() {
	n := 0
	for _, e := range w.Enemies {
		if e.Active {
			w.Enemies[n] = e
			n++
		}
	}
	w.Enemies = w.Enemies[:n]
}

// LookupEnemy resolves a handle to the live enemy it names.
// Returns false if the enemy was destroyed or removed.
func (w *World) LookupEnemy(h EnemyHandle) (Enemy, bool) {
	if !h.Valid() {
		return Enemy{}, false
	}
	if h.hint >= 0 && h.hint < len(w.Enemies) && w.Enemies[h.hint].ID == h.id {
		e := w.Enemies[h.hint]
		return e, e.Active
	}
	for _, e := range w.Enemies {
		if e.ID == h.id {
			return e, e.Active
		}
	}
	return Enemy{}, false
}

// LockedEnemy returns the punch's locked enemy while it is still alive.
func (w *World) LockedEnemy() (Enemy, bool) {
	return w.LookupEnemy(w.Punch.Lock)
}

// Seed returns the RNG seed the world was created with.
func (w *World) Seed() int64 {
	return w.seed
}

// maxPendingEvents bounds the backlog when nobody drains the world.
const maxPendingEvents = 1024

func (w *World) emit(eventType EventType, payload interface{}) {
	if len(w.events) >= maxPendingEvents {
		return
	}
	w.events = append(w.events, NewEvent(eventType, w.Frame, payload))
}

// DrainEvents returns and clears the events produced since the last drain.
func (w *World) DrainEvents() []Event {
	if len(w.events) == 0 {
		return nil
	}
	out := w.events
	w.events = nil
	return out
}
