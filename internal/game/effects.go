package game

// FloatingText is a score popup that rises and slows down.
type FloatingText struct {
	Pos   Vec2
	Value int
	VY    float64
	Life  float64
	Color string
}

// Update rises and fades the text. Returns false once it has faded out.
func (t *FloatingText) Update() bool {
	t.Pos.Y += t.VY
	t.VY *= TextDrag
	t.Life -= TextDecay
	return t.Life > 0
}

// Shockwave is an expanding additive ring.
type Shockwave struct {
	Pos    Vec2
	Radius float64
	Growth float64 // Radius added per frame; there is no cap
	Alpha  float64
	Width  float64
	Color  string
}

// Update grows the ring, thins its stroke and fades it.
func (s *Shockwave) Update() bool {
	s.Radius += s.Growth
	s.Width *= ShockwaveThin
	s.Alpha -= ShockwaveFade
	if s.Alpha < 0 {
		s.Alpha = 0
	}
	return s.Alpha > 0
}

// Explosion is a spinning burst left where the player was hit.
type Explosion struct {
	Pos      Vec2
	Life     float64
	Rotation float64
	Scale    float64
}

// Update spins, grows and fades the burst.
func (e *Explosion) Update() bool {
	e.Life -= ExplosionDecay
	e.Rotation += ExplosionSpin
	e.Scale += ExplosionGrowth
	return e.Life > 0
}

func (w *World) addText(at Vec2, value int) {
	if len(w.Texts) >= w.limits.MaxTexts {
		return
	}
	w.Texts = append(w.Texts, &FloatingText{
		Pos:   at,
		Value: value,
		VY:    TextRiseSpeed,
		Life:  1,
		Color: ColorYellow,
	})
}

func (w *World) addShockwave(at Vec2, radius, growth, width float64, color string) {
	if len(w.Shockwaves) >= w.limits.MaxShockwaves {
		return
	}
	w.Shockwaves = append(w.Shockwaves, &Shockwave{
		Pos:    at,
		Radius: radius,
		Growth: growth,
		Alpha:  1,
		Width:  width,
		Color:  color,
	})
}

func (w *World) addExplosion(at Vec2) {
	if len(w.Explosions) >= w.limits.MaxExplosions {
		return
	}
	w.Explosions = append(w.Explosions, &Explosion{
		Pos:   at,
		Life:  1,
		Scale: 1,
	})
}

// updateEffects advances every effect collection and compacts out the dead
// ones in place.
func (w *World) updateEffects() {
	n := 0
	for _, p := range w.Particles {
		if updateParticle(p, w.Width, w.Height) {
			w.Particles[n] = p
			n++
		}
	}
	clear(w.Particles[n:])
	w.Particles = w.Particles[:n]

	n = 0
	for _, s := range w.Shockwaves {
		if s.Update() {
			w.Shockwaves[n] = s
			n++
		}
	}
	clear(w.Shockwaves[n:])
	w.Shockwaves = w.Shockwaves[:n]

	n = 0
	for _, t := range w.Texts {
		if t.Update() {
			w.Texts[n] = t
			n++
		}
	}
	clear(w.Texts[n:])
	w.Texts = w.Texts[:n]

	n = 0
	for _, e := range w.Explosions {
		if e.Update() {
			w.Explosions[n] = e
			n++
		}
	}
	clear(w.Explosions[n:])
	w.Explosions = w.Explosions[:n]
}
