package game

import (
	"math"
)

// ParticleKind discriminates particle variants in snapshots.
type ParticleKind uint8

const (
	ParticleNormal ParticleKind = iota
	ParticleLightning
	ParticleDebris
	ParticleSpark
)

// String returns the variant name.
func (k ParticleKind) String() string {
	switch k {
	case ParticleNormal:
		return "normal"
	case ParticleLightning:
		return "lightning"
	case ParticleDebris:
		return "debris"
	case ParticleSpark:
		return "spark"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ParticleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Particle is one of *NormalParticle, *DebrisParticle, *SparkParticle or
// *LightningParticle. The set is closed; code switches on the concrete type.
type Particle interface {
	Kind() ParticleKind
	Remaining() float64 // life left in [0, 1]; <= 0 means dead
}

// NormalParticle is a round additive dot.
type NormalParticle struct {
	Pos   Vec2
	Vel   Vec2
	Life  float64
	Size  float64
	Decay float64
	Color string
}

// DebrisParticle is a tumbling quad that falls under gravity.
type DebrisParticle struct {
	Pos      Vec2
	Vel      Vec2
	Life     float64
	W, H     float64
	Rotation float64
	Spin     float64
	Color    string
}

// SparkParticle is a fast streak drawn along its velocity.
type SparkParticle struct {
	Pos   Vec2
	Vel   Vec2
	Life  float64
	Width float64
	Color string
}

// LightningParticle is a jagged polyline that fades in place.
type LightningParticle struct {
	Path  []Vec2
	Life  float64
	Decay float64
	Color string
}

func (p *NormalParticle) Kind() ParticleKind    { return ParticleNormal }
func (p *DebrisParticle) Kind() ParticleKind    { return ParticleDebris }
func (p *SparkParticle) Kind() ParticleKind     { return ParticleSpark }
func (p *LightningParticle) Kind() ParticleKind { return ParticleLightning }

func (p *NormalParticle) Remaining() float64    { return p.Life }
func (p *DebrisParticle) Remaining() float64    { return p.Life }
func (p *SparkParticle) Remaining() float64     { return p.Life }
func (p *LightningParticle) Remaining() float64 { return p.Life }

// updateParticle advances one particle by a frame and reports whether it is
// still alive. Debris dies as soon as it leaves the field.
func updateParticle(p Particle, fieldW, fieldH float64) bool {
	switch p := p.(type) {
	case *NormalParticle:
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y
		p.Life -= p.Decay
	case *DebrisParticle:
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y
		p.Rotation += p.Spin
		p.Vel.Y += DebrisGravity
		p.Life -= DebrisDecay
		if p.Pos.Y > fieldH || p.Pos.Y < 0 || p.Pos.X > fieldW || p.Pos.X < 0 {
			p.Life = 0
		}
	case *SparkParticle:
		p.Pos.X += p.Vel.X
		p.Pos.Y += p.Vel.Y
		p.Life -= SparkDecay
	case *LightningParticle:
		p.Life -= p.Decay
	default:
		return false
	}
	return p.Remaining() > 0
}

// =============================================================================
// EMITTERS
// =============================================================================

// addParticle appends unless the particle cap is reached.
func (w *World) addParticle(p Particle) {
	if len(w.Particles) >= w.limits.MaxParticles {
		return // Silently drop
	}
	w.Particles = append(w.Particles, p)
}

// emitParticles sprays round particles in random directions.
func (w *World) emitParticles(at Vec2, color string, count int, scale float64) {
	for i := 0; i < count; i++ {
		angle := randomFloat(w.rng, 0, math.Pi*2)
		speed := randomFloat(w.rng, 1, 4) * scale
		w.addParticle(&NormalParticle{
			Pos:   at,
			Vel:   Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
			Life:  1,
			Size:  randomFloat(w.rng, 2, 7),
			Decay: NormalDecay,
			Color: color,
		})
	}
}

// emitDebris throws tumbling fragments of a destroyed enemy.
func (w *World) emitDebris(at Vec2, color string, count int, scale float64) {
	for i := 0; i < count; i++ {
		angle := randomFloat(w.rng, 0, math.Pi*2)
		force := randomFloat(w.rng, 5, 15) * scale
		w.addParticle(&DebrisParticle{
			Pos:      at,
			Vel:      Vec2{X: math.Cos(angle) * force, Y: math.Sin(angle) * force},
			Life:     1,
			Rotation: randomFloat(w.rng, 0, math.Pi),
			Spin:     (w.rng.Float64() - 0.5) * 0.8,
			W:        randomFloat(w.rng, 4, 16) * scale,
			H:        randomFloat(w.rng, 4, 16) * scale,
			Color:    color,
		})
	}
}

// emitSparks fires fast white streaks.
func (w *World) emitSparks(at Vec2, count int, scale float64) {
	for i := 0; i < count; i++ {
		angle := randomFloat(w.rng, 0, math.Pi*2)
		speed := randomFloat(w.rng, 10, 25)
		w.addParticle(&SparkParticle{
			Pos:   at,
			Vel:   Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
			Life:  1,
			Width: 3 * scale,
			Color: ColorWhite,
		})
	}
}

// emitLightning drops a jagged bolt from the top of the field onto a point.
func (w *World) emitLightning(to Vec2, color string) {
	const segments = 8
	path := make([]Vec2, 0, segments+1)
	from := Vec2{X: to.X + randomFloat(w.rng, -60, 60), Y: 0}
	for i := 0; i <= segments; i++ {
		t := float64(i) / segments
		pt := Vec2{
			X: from.X + (to.X-from.X)*t,
			Y: from.Y + (to.Y-from.Y)*t,
		}
		switch {
		case i == segments:
			pt = to
		case i > 0:
			pt.X += randomFloat(w.rng, -25, 25)
		}
		path = append(path, pt)
	}
	w.addParticle(&LightningParticle{
		Path:  path,
		Life:  1,
		Decay: LightningDecay,
		Color: color,
	})
}
