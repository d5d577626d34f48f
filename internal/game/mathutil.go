package game

import (
	"math"
	"math/rand"
)

// Vec2 is a point or displacement in field pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// lerp moves v toward target by factor k (exponential smoothing step).
func (v Vec2) lerp(target Vec2, k float64) Vec2 {
	return Vec2{
		X: v.X + (target.X-v.X)*k,
		Y: v.Y + (target.Y-v.Y)*k,
	}
}

// randomFloat samples uniformly from [min, max).
func randomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// FlightFrames returns how many frames an exponential approach with the given
// per-frame rate needs to close all but threshold of the remaining distance:
// ceil(ln(threshold) / ln(1 - speed)).
//
// The closed form only holds for 0 < speed < 1 and 0 < threshold < 1.
// Outside that range:
//   - threshold >= 1 is already met, so 0 frames;
//   - speed >= 1 lands on the target in one frame, so 1;
//   - speed <= 0, or threshold <= 0 with speed < 1, never arrives, so 0.
func FlightFrames(speed, threshold float64) int {
	switch {
	case threshold >= 1:
		return 0
	case speed >= 1:
		return 1
	case speed <= 0 || threshold <= 0:
		return 0
	}
	return int(math.Ceil(math.Log(threshold) / math.Log(1-speed)))
}

// LevelScale is the level-derived multiplier applied to reach, hitboxes and effect sizes.
func LevelScale(level int) float64 {
	return 1 + float64(level-1)*0.5
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
