package game

import (
	"math"
)

// EnemyKind selects the falling object's shape.
type EnemyKind uint8

const (
	EnemyCrate EnemyKind = iota
	EnemySpike
	EnemyHex
	enemyKindCount
)

// String returns the kind name used in snapshots and logs.
func (k EnemyKind) String() string {
	switch k {
	case EnemyCrate:
		return "crate"
	case EnemySpike:
		return "spike"
	case EnemyHex:
		return "hex"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k EnemyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Color returns the fixed color of the kind.
func (k EnemyKind) Color() string {
	switch k {
	case EnemySpike:
		return ColorSpike
	case EnemyHex:
		return ColorHex
	default:
		return ColorCrate
	}
}

// Enemy is a falling object.
type Enemy struct {
	ID       uint64 // Serial, never reused within a world
	Pos      Vec2
	Size     float64
	Speed    float64 // Fall speed (px/frame)
	VX       float64 // Horizontal drift (px/frame), flipped on wall bounce
	Rotation float64
	RotSpeed float64
	Kind     EnemyKind
	Color    string
	Active   bool

	SwayPhase     float64
	SwaySpeed     float64 // rad/frame
	SwayAmplitude float64
}

// advance applies one frame of the motion rule: fall, drift plus sinusoidal
// sway evaluated at the given frame number, and an elastic bounce off the
// side walls. The same rule drives the live tick and intercept prediction.
func (e *Enemy) advance(frame int64, fieldWidth float64) {
	e.Pos.Y += e.Speed
	sway := math.Sin(float64(frame)*e.SwaySpeed+e.SwayPhase) * e.SwayAmplitude
	e.Pos.X += e.VX + sway

	margin := e.Size / 2
	if e.Pos.X < margin {
		e.Pos.X = margin
		e.VX = -e.VX
	} else if e.Pos.X > fieldWidth-margin {
		e.Pos.X = fieldWidth - margin
		e.VX = -e.VX
	}
}

// PredictPosition forward-simulates a copy of the enemy for the given number
// of frames, numbered frame+1 through frame+steps, and returns where it ends up.
// The enemy itself is not modified.
func PredictPosition(e Enemy, frame int64, steps int, fieldWidth float64) Vec2 {
	for i := 1; i <= steps; i++ {
		e.advance(frame+int64(i), fieldWidth)
	}
	return e.Pos
}

// EnemyHandle is a weak reference to an enemy. It never keeps the enemy
// alive and must be resolved through World.LookupEnemy before every use.
type EnemyHandle struct {
	id   uint64
	hint int // Index at capture time; compaction may shift it
}

// Valid reports whether the handle was ever bound to an enemy.
func (h EnemyHandle) Valid() bool {
	return h.id != 0
}

// ID returns the serial of the referenced enemy (0 if unbound).
func (h EnemyHandle) ID() uint64 {
	return h.id
}
