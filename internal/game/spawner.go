package game

import (
	"math"
)

// SpawnInterval returns the number of frames between spawns at a score.
// It shrinks by one frame every 100 points down to a floor of 10.
func SpawnInterval(score int) int {
	return max(SpawnIntervalFloor, SpawnIntervalBase-score/SpawnScorePerFrame)
}

// SpeedBonus returns the extra fall speed granted by score, capped at +5.
func SpeedBonus(score int) float64 {
	return math.Min(SpeedBonusCap, float64(score)/SpeedBonusDivisor)
}

// maybeSpawn spawns one enemy when the frame lands on the spawn interval.
func (w *World) maybeSpawn() {
	if w.Frame%int64(SpawnInterval(w.Score)) == 0 {
		w.spawnEnemy()
	}
}

// spawnEnemy creates one enemy just above the top edge.
func (w *World) spawnEnemy() *Enemy {
	size := randomFloat(w.rng, EnemyMinSize, EnemyMaxSize)
	kind := EnemyKind(w.rng.Intn(int(enemyKindCount)))

	x := w.Width / 2
	if w.Width > 2*size {
		x = randomFloat(w.rng, size, w.Width-size)
	}

	w.nextEnemyID++
	w.Enemies = append(w.Enemies, Enemy{
		ID:            w.nextEnemyID,
		Pos:           Vec2{X: x, Y: -size},
		Size:          size,
		Speed:         randomFloat(w.rng, EnemyMinSpeed, EnemyMaxSpeed) + SpeedBonus(w.Score),
		VX:            randomFloat(w.rng, -EnemyDriftMax, EnemyDriftMax),
		SwayPhase:     randomFloat(w.rng, 0, math.Pi*2),
		SwaySpeed:     randomFloat(w.rng, SwaySpeedMin, SwaySpeedMax),
		SwayAmplitude: SwayAmplitude,
		RotSpeed:      randomFloat(w.rng, -RotSpeedMax, RotSpeedMax),
		Kind:          kind,
		Color:         kind.Color(),
		Active:        true,
	})
	return &w.Enemies[len(w.Enemies)-1]
}
