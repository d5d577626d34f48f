package game

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParticleUpdateRules(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		p := &NormalParticle{Pos: Vec2{X: 10, Y: 10}, Vel: Vec2{X: 2, Y: -1}, Life: 1, Decay: NormalDecay}
		alive := updateParticle(p, testWidth, testHeight)
		if !alive || p.Pos != (Vec2{X: 12, Y: 9}) || !almostEqual(p.Life, 0.97) {
			t.Errorf("Unexpected normal particle state: %+v alive=%v", p, alive)
		}
	})

	t.Run("debris falls and spins", func(t *testing.T) {
		p := &DebrisParticle{Pos: Vec2{X: 100, Y: 100}, Vel: Vec2{X: 1, Y: -3}, Life: 1, Spin: 0.2}
		updateParticle(p, testWidth, testHeight)
		if p.Pos != (Vec2{X: 101, Y: 97}) {
			t.Errorf("Expected position (101, 97), got %+v", p.Pos)
		}
		if !almostEqual(p.Vel.Y, -2.6) || !almostEqual(p.Rotation, 0.2) || !almostEqual(p.Life, 0.985) {
			t.Errorf("Unexpected debris state: %+v", p)
		}
	})

	t.Run("debris dies outside the field", func(t *testing.T) {
		p := &DebrisParticle{Pos: Vec2{X: 5, Y: 100}, Vel: Vec2{X: -10, Y: 0}, Life: 1}
		if updateParticle(p, testWidth, testHeight) {
			t.Error("Expected debris leaving the field to die")
		}
	})

	t.Run("spark", func(t *testing.T) {
		p := &SparkParticle{Pos: Vec2{X: 0, Y: 0}, Vel: Vec2{X: 20, Y: 5}, Life: 1, Width: 3}
		updateParticle(p, testWidth, testHeight)
		if p.Pos != (Vec2{X: 20, Y: 5}) || !almostEqual(p.Life, 0.95) {
			t.Errorf("Unexpected spark state: %+v", p)
		}
	})

	t.Run("lightning fades in place", func(t *testing.T) {
		path := []Vec2{{X: 0, Y: 0}, {X: 10, Y: 50}}
		p := &LightningParticle{Path: path, Life: 1, Decay: LightningDecay}
		alive := true
		frames := 0
		for alive {
			alive = updateParticle(p, testWidth, testHeight)
			frames++
		}
		if frames < 10 || frames > 11 {
			t.Errorf("Expected lightning to last about 10 frames, got %d", frames)
		}
		if p.Path[1] != (Vec2{X: 10, Y: 50}) {
			t.Error("Lightning path must not move")
		}
	})
}

func TestLifeNeverResurrects(t *testing.T) {
	w := newPlayingWorld(t)
	w.emitParticles(Vec2{X: 500, Y: 300}, ColorOrange, 50, 1)
	w.emitSparks(Vec2{X: 500, Y: 300}, 10, 1)

	prev := make(map[Particle]float64)
	for _, p := range w.Particles {
		prev[p] = p.Remaining()
	}

	for i := 0; i < 60; i++ {
		w.updateEffects()
		for _, p := range w.Particles {
			if p.Remaining() <= 0 {
				t.Fatal("Dead particle survived compaction")
			}
			last, ok := prev[p]
			if !ok {
				t.Fatal("Unexpected new particle")
			}
			if p.Remaining() >= last {
				t.Fatal("Particle life must decrease every frame")
			}
			prev[p] = p.Remaining()
		}
	}
	if len(w.Particles) != 0 {
		t.Errorf("Expected all particles dead after 60 frames, got %d", len(w.Particles))
	}
}

func TestShockwaveGrowth(t *testing.T) {
	s := &Shockwave{Radius: 20, Growth: 15, Alpha: 1, Width: 30}

	s.Update()
	if s.Radius != 35 || !almostEqual(s.Width, 24) || !almostEqual(s.Alpha, 0.95) {
		t.Errorf("Unexpected shockwave after one frame: %+v", s)
	}

	// Growth is a constant increment, not an approach to a cap
	s.Update()
	if s.Radius != 50 {
		t.Errorf("Expected radius 50, got %f", s.Radius)
	}

	frames := 2
	for s.Update() {
		frames++
	}
	if s.Alpha != 0 {
		t.Errorf("Expected alpha clamped at 0, got %f", s.Alpha)
	}
	if frames < 19 || frames > 20 {
		t.Errorf("Expected about 20 frames of life, got %d", frames)
	}
}

func TestFloatingTextRise(t *testing.T) {
	ft := &FloatingText{Pos: Vec2{X: 0, Y: 100}, VY: TextRiseSpeed, Life: 1}
	ft.Update()
	if ft.Pos.Y != 98 || !almostEqual(ft.VY, -1.8) || !almostEqual(ft.Life, 0.98) {
		t.Errorf("Unexpected text state: %+v", ft)
	}
}

func TestExplosionUpdate(t *testing.T) {
	e := &Explosion{Life: 1, Scale: 1}
	e.Update()
	if !almostEqual(e.Life, 0.95) || !almostEqual(e.Rotation, 0.1) || !almostEqual(e.Scale, 1.05) {
		t.Errorf("Unexpected explosion state: %+v", e)
	}
}

func TestEffectCaps(t *testing.T) {
	w := newPlayingWorld(t)
	w.limits.MaxParticles = 5
	w.limits.MaxShockwaves = 1
	w.limits.MaxTexts = 2

	w.emitParticles(Vec2{}, ColorWhite, 10, 1)
	w.addShockwave(Vec2{}, 1, 1, 1, ColorWhite)
	w.addShockwave(Vec2{}, 1, 1, 1, ColorWhite)
	for i := 0; i < 5; i++ {
		w.addText(Vec2{}, i)
	}

	if len(w.Particles) != 5 || len(w.Shockwaves) != 1 || len(w.Texts) != 2 {
		t.Errorf("Expected capped effects, got %d/%d/%d", len(w.Particles), len(w.Shockwaves), len(w.Texts))
	}
}

func TestLightningPathEndsAtImpact(t *testing.T) {
	w := newPlayingWorld(t)
	to := Vec2{X: 400, Y: 350}
	w.emitLightning(to, ColorPurple)

	bolt, ok := w.Particles[0].(*LightningParticle)
	if !ok {
		t.Fatalf("Expected lightning particle, got %T", w.Particles[0])
	}
	if bolt.Path[0].Y != 0 {
		t.Errorf("Expected bolt to start at the top edge, got y=%f", bolt.Path[0].Y)
	}
	if bolt.Path[len(bolt.Path)-1] != to {
		t.Errorf("Expected bolt to end at %+v, got %+v", to, bolt.Path[len(bolt.Path)-1])
	}
}
