package game

import (
	"math"
)

// resolveSmash runs the glove clap and kill sweep for one Smash frame.
// x1 and x2 are the glove x positions, y the punch height. The impact effect
// fires only while impacted is false; the returned flag replaces it.
func (w *World) resolveSmash(x1, x2, y float64, impacted bool) bool {
	center := (x1 + x2) / 2
	gap := math.Abs(x2 - x1)
	scale := LevelScale(w.Level)
	reach := GloveReachBase * scale

	if gap <= reach*2 && !impacted {
		w.triggerImpact(Vec2{X: center, Y: y}, scale)
		impacted = true
	}

	halfH := KillBoxHalfBase * scale
	hits := 0
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if !e.Active {
			continue
		}
		if e.Pos.X > center-reach && e.Pos.X < center+reach &&
			e.Pos.Y > y-halfH && e.Pos.Y < y+halfH {
			w.killEnemy(e, scale)
			hits++
		}
	}

	if hits > 0 {
		w.Shake += HitShakePerKill * float64(hits)
		if w.Level >= 2 {
			w.HitStop = HitStopFrames
		}
	}
	return impacted
}

// killEnemy deactivates a swept enemy and pays out its points.
func (w *World) killEnemy(e *Enemy, scale float64) {
	e.Active = false
	points := int(e.Size * scale * 2)
	w.Score += points

	w.emitDebris(e.Pos, e.Color, 8+w.Level*4, scale)
	w.addText(e.Pos, points)
	w.emit(EventTypeKill, KillPayload{
		EnemyID: e.ID,
		Kind:    e.Kind.String(),
		Points:  points,
		Score:   w.Score,
	})
}

// triggerImpact plays the level-tiered glove clap effect.
func (w *World) triggerImpact(at Vec2, scale float64) {
	switch {
	case w.Level <= 1:
		w.Shake = 10
	case w.Level == 2:
		w.addShockwave(at, 20, 15, 30, ColorOrange)
		w.emitParticles(at, ColorOrange, 20, 1)
		w.Shake = 25
	default:
		w.addShockwave(at, 30, 25, 10, ColorYellow)
		w.emitSparks(at, 10, scale)
		w.Shake = 40
		w.Zoom = 1.4
		if w.Level >= MaxLevel {
			w.Flash = 0.8
			w.Zoom = 1.6
			w.addShockwave(at, 10, 40, 20, ColorPurple)
			w.emitLightning(at, ColorPurple)
		}
	}
	w.emit(EventTypeImpact, ImpactPayload{X: at.X, Y: at.Y, Level: w.Level})
}

// checkDamage hurts the player when the enemy reaches the head.
// Returns true if the enemy was consumed.
func (w *World) checkDamage(e *Enemy) bool {
	head := Vec2{X: w.Player.Pos.X, Y: w.Player.Pos.Y - PlayerHeight}
	if Dist(e.Pos, head) >= e.Size/2+PlayerWidth/2 {
		return false
	}

	e.Active = false
	w.Health = clampFloat(w.Health-ContactDamage, 0, MaxHealth)
	w.emitDebris(e.Pos, e.Color, ContactParticles, 1)
	w.addExplosion(e.Pos)
	w.Shake = DamageShake
	w.Flash = DamageFlash
	w.emit(EventTypeDamage, DamagePayload{EnemyID: e.ID, Damage: ContactDamage, Health: w.Health})

	if w.Health <= 0 && w.Session == SessionPlaying {
		w.Session = SessionGameOver
		w.emit(EventTypeGameOver, GameOverPayload{Score: w.Score, Level: w.Level, Frames: w.Frame})
	}
	return true
}

// checkBlock destroys an enemy that touches an idle glove.
// Returns true if the enemy was consumed.
func (w *World) checkBlock(e *Enemy) bool {
	radius := e.Size/2 + BlockRadiusBase*LevelScale(w.Level)
	if Dist(e.Pos, w.LeftArm) >= radius && Dist(e.Pos, w.RightArm) >= radius {
		return false
	}

	e.Active = false
	w.emitParticles(e.Pos, ColorBlockDust, ContactParticles, 1.2)
	w.Shake = BlockShake
	w.Score += BlockPoints
	w.emit(EventTypeBlock, BlockPayload{EnemyID: e.ID, Points: BlockPoints, Score: w.Score})
	return true
}
