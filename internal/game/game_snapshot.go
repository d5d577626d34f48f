package game

import (
	"sync/atomic"
	"time"

	"smash-master/internal/config"
)

// EnemySnapshot is an immutable enemy for rendering
type EnemySnapshot struct {
	ID       uint64    `json:"id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Size     float64   `json:"size"`
	Rotation float64   `json:"rotation"`
	Kind     EnemyKind `json:"kind"`
	Color    string    `json:"color"`
}

// ParticleSnapshot is an immutable particle for rendering.
// Which fields are meaningful depends on Kind.
type ParticleSnapshot struct {
	Kind     ParticleKind `json:"kind"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	VX       float64      `json:"vx,omitempty"`
	VY       float64      `json:"vy,omitempty"`
	Life     float64      `json:"life"`
	Size     float64      `json:"size,omitempty"`     // Normal radius, Spark stroke width
	W        float64      `json:"w,omitempty"`        // Debris
	H        float64      `json:"h,omitempty"`        // Debris
	Rotation float64      `json:"rotation,omitempty"` // Debris
	Path     []Vec2       `json:"path,omitempty"`     // Lightning
	Color    string       `json:"color"`
}

// ShockwaveSnapshot is an immutable ring
type ShockwaveSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Width  float64 `json:"width"`
	Alpha  float64 `json:"alpha"`
	Color  string  `json:"color"`
}

// TextSnapshot is an immutable floating score
type TextSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value int     `json:"value"`
	Alpha float64 `json:"alpha"`
	Color string  `json:"color"`
}

// ExplosionSnapshot is an immutable burst
type ExplosionSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Life     float64 `json:"life"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// ReticleSnapshot marks the locked enemy while it is alive
type ReticleSnapshot struct {
	Active bool    `json:"active"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
}

// CameraSnapshot captures the decaying feedback scalars
type CameraSnapshot struct {
	Shake float64 `json:"shake"`
	Flash float64 `json:"flash"`
	Zoom  float64 `json:"zoom"`
}

// GameSnapshot is a complete immutable game state for rendering
type GameSnapshot struct {
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp time.Time `json:"timestamp"` // When snapshot was created
	Frame     int64     `json:"frame"`

	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Session Session `json:"session"`
	Score   int     `json:"score"`
	Health  float64 `json:"health"`
	Level   int     `json:"level"`
	HitStop int     `json:"hitStop"`

	Player      Vec2            `json:"player"`
	LeftArm     Vec2            `json:"leftArm"`
	RightArm    Vec2            `json:"rightArm"`
	Phase       PunchPhase      `json:"phase"`
	PunchTarget Vec2            `json:"punchTarget"`
	Reticle     ReticleSnapshot `json:"reticle"`
	Camera      CameraSnapshot  `json:"camera"`

	// Pre-allocated capped slices
	Enemies    []EnemySnapshot     `json:"enemies"`
	Particles  []ParticleSnapshot  `json:"particles"`
	Shockwaves []ShockwaveSnapshot `json:"shockwaves"`
	Texts      []TextSnapshot      `json:"texts"`
	Explosions []ExplosionSnapshot `json:"explosions"`
}

// Clone returns a deep copy that stays valid after the pool reuses the slot.
func (s *GameSnapshot) Clone() GameSnapshot {
	c := *s
	c.Enemies = append([]EnemySnapshot(nil), s.Enemies...)
	c.Particles = make([]ParticleSnapshot, len(s.Particles))
	for i, p := range s.Particles {
		if p.Path != nil {
			p.Path = append([]Vec2(nil), p.Path...)
		}
		c.Particles[i] = p
	}
	c.Shockwaves = append([]ShockwaveSnapshot(nil), s.Shockwaves...)
	c.Texts = append([]TextSnapshot(nil), s.Texts...)
	c.Explosions = append([]ExplosionSnapshot(nil), s.Explosions...)
	return c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering: the producer fills one slot while readers see the
// last published one.
type SnapshotPool struct {
	snapshots [3]GameSnapshot // Triple buffer
	writeIdx  uint32          // atomic - producer index
	readIdx   uint32          // atomic - consumer index
	sequence  uint64          // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Enemies:    make([]EnemySnapshot, 0, 64),
			Particles:  make([]ParticleSnapshot, 0, limits.MaxParticles),
			Shockwaves: make([]ShockwaveSnapshot, 0, limits.MaxShockwaves),
			Texts:      make([]TextSnapshot, 0, limits.MaxTexts),
			Explosions: make([]ExplosionSnapshot, 0, limits.MaxExplosions),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the engine step)
// Returns a snapshot with reset slices but preserved capacity
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Enemies = snap.Enemies[:0]
	clear(snap.Particles[:cap(snap.Particles)]) // drop lightning paths
	snap.Particles = snap.Particles[:0]
	snap.Shockwaves = snap.Shockwaves[:0]
	snap.Texts = snap.Texts[:0]
	snap.Explosions = snap.Explosions[:0]
	snap.Reticle = ReticleSnapshot{}

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances read pointer
// Called after snapshot is fully populated
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// FillSnapshot copies the world into snap. The world is only read.
func (w *World) FillSnapshot(snap *GameSnapshot) {
	snap.Frame = w.Frame
	snap.Width = w.Width
	snap.Height = w.Height
	snap.Session = w.Session
	snap.Score = w.Score
	snap.Health = w.Health
	snap.Level = w.Level
	snap.HitStop = w.HitStop
	snap.Player = w.Player.Pos
	snap.LeftArm = w.LeftArm
	snap.RightArm = w.RightArm
	snap.Phase = w.Punch.Phase()
	snap.PunchTarget = w.Punch.Target
	snap.Camera = CameraSnapshot{Shake: w.Shake, Flash: w.Flash, Zoom: w.Zoom}

	if e, ok := w.LockedEnemy(); ok {
		snap.Reticle = ReticleSnapshot{Active: true, X: e.Pos.X, Y: e.Pos.Y, Size: e.Size + 20}
	} else {
		snap.Reticle = ReticleSnapshot{}
	}

	for _, e := range w.Enemies {
		if !e.Active {
			continue
		}
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:       e.ID,
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			Size:     e.Size,
			Rotation: e.Rotation,
			Kind:     e.Kind,
			Color:    e.Color,
		})
	}

	for _, p := range w.Particles {
		snap.Particles = append(snap.Particles, particleSnapshot(p))
	}

	for _, s := range w.Shockwaves {
		snap.Shockwaves = append(snap.Shockwaves, ShockwaveSnapshot{
			X:      s.Pos.X,
			Y:      s.Pos.Y,
			Radius: s.Radius,
			Width:  s.Width,
			Alpha:  s.Alpha,
			Color:  s.Color,
		})
	}

	for _, t := range w.Texts {
		snap.Texts = append(snap.Texts, TextSnapshot{
			X:     t.Pos.X,
			Y:     t.Pos.Y,
			Value: t.Value,
			Alpha: clampFloat(t.Life, 0, 1),
			Color: t.Color,
		})
	}

	for _, e := range w.Explosions {
		snap.Explosions = append(snap.Explosions, ExplosionSnapshot{
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			Life:     e.Life,
			Rotation: e.Rotation,
			Scale:    e.Scale,
		})
	}
}

func particleSnapshot(p Particle) ParticleSnapshot {
	switch p := p.(type) {
	case *NormalParticle:
		return ParticleSnapshot{
			Kind: ParticleNormal, X: p.Pos.X, Y: p.Pos.Y, VX: p.Vel.X, VY: p.Vel.Y,
			Life: p.Life, Size: p.Size, Color: p.Color,
		}
	case *DebrisParticle:
		return ParticleSnapshot{
			Kind: ParticleDebris, X: p.Pos.X, Y: p.Pos.Y, VX: p.Vel.X, VY: p.Vel.Y,
			Life: p.Life, W: p.W, H: p.H, Rotation: p.Rotation, Color: p.Color,
		}
	case *SparkParticle:
		return ParticleSnapshot{
			Kind: ParticleSpark, X: p.Pos.X, Y: p.Pos.Y, VX: p.Vel.X, VY: p.Vel.Y,
			Life: p.Life, Size: p.Width, Color: p.Color,
		}
	case *LightningParticle:
		var x, y float64
		if len(p.Path) > 0 {
			last := p.Path[len(p.Path)-1]
			x, y = last.X, last.Y
		}
		return ParticleSnapshot{
			Kind: ParticleLightning, X: x, Y: y,
			Life: p.Life, Path: append([]Vec2(nil), p.Path...), Color: p.Color,
		}
	default:
		return ParticleSnapshot{}
	}
}
