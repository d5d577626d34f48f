package game

import (
	"math"
)

// PunchPhase names the punch state for presentation and events.
type PunchPhase uint8

const (
	PunchIdle PunchPhase = iota
	PunchWindup
	PunchSmash
	PunchHold
	PunchRecover
)

// String returns the phase name.
func (p PunchPhase) String() string {
	switch p {
	case PunchIdle:
		return "idle"
	case PunchWindup:
		return "windup"
	case PunchSmash:
		return "smash"
	case PunchHold:
		return "hold"
	case PunchRecover:
		return "recover"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p PunchPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// punchState is one state of the punch machine. step runs one frame and
// returns the state for the next frame. States are values; each carries
// only its own payload.
type punchState interface {
	phase() PunchPhase
	elapsed() int
	step(w *World) punchState
}

type idleState struct{}

type windupState struct{ timer int }

type smashState struct {
	timer    int
	impacted bool // Glove-clap impact already fired this punch
}

type holdState struct{ timer int }

type recoverState struct{ timer int }

func (idleState) phase() PunchPhase    { return PunchIdle }
func (windupState) phase() PunchPhase  { return PunchWindup }
func (smashState) phase() PunchPhase   { return PunchSmash }
func (holdState) phase() PunchPhase    { return PunchHold }
func (recoverState) phase() PunchPhase { return PunchRecover }

func (idleState) elapsed() int      { return 0 }
func (s windupState) elapsed() int  { return s.timer }
func (s smashState) elapsed() int   { return s.timer }
func (s holdState) elapsed() int    { return s.timer }
func (s recoverState) elapsed() int { return s.timer }

// Idle: gloves hover at rest with a slow bob.
func (s idleState) step(w *World) punchState {
	w.LeftArm, w.RightArm = w.restPositions()
	return s
}

// Windup: gloves spread wide around the target.
func (s windupState) step(w *World) punchState {
	s.timer++
	t := w.Punch.Target
	w.LeftArm = w.LeftArm.lerp(Vec2{X: t.X - WindupSpread, Y: t.Y}, WindupEase)
	w.RightArm = w.RightArm.lerp(Vec2{X: t.X + WindupSpread, Y: t.Y}, WindupEase)

	if s.timer > WindupFrames {
		return smashState{}
	}
	return s
}

// Smash: gloves slam together on the target without crossing it.
func (s smashState) step(w *World) punchState {
	s.timer++
	reach := SmashReachBase * LevelScale(w.Level)
	t := w.Punch.Target

	w.LeftArm = w.LeftArm.lerp(Vec2{X: t.X - reach, Y: t.Y}, SmashSpeed)
	w.RightArm = w.RightArm.lerp(Vec2{X: t.X + reach, Y: t.Y}, SmashSpeed)

	if w.LeftArm.X > t.X-reach {
		w.LeftArm.X = t.X - reach
	}
	if w.RightArm.X < t.X+reach {
		w.RightArm.X = t.X + reach
	}

	if math.Abs(w.RightArm.X-w.LeftArm.X) <= reach*2+SmashGapSlack {
		s.impacted = w.resolveSmash(w.LeftArm.X, w.RightArm.X, t.Y, s.impacted)
	}

	if s.timer > SmashHoldFrames {
		return holdState{}
	}
	return s
}

// Hold: gloves stay put.
func (s holdState) step(w *World) punchState {
	s.timer++
	if s.timer > HoldFrames {
		return recoverState{}
	}
	return s
}

// Recover: gloves ease back to rest, then snap.
func (s recoverState) step(w *World) punchState {
	s.timer++
	restL, restR := w.restPositions()
	w.LeftArm = w.LeftArm.lerp(restL, RecoverEase)
	w.RightArm = w.RightArm.lerp(restR, RecoverEase)

	if s.timer > RecoverFrames {
		w.LeftArm, w.RightArm = restL, restR
		return idleState{}
	}
	return s
}

// Punch is the single punch state machine of a world.
type Punch struct {
	state  punchState
	Target Vec2        // Predicted intercept point, fixed for the whole punch
	Lock   EnemyHandle // Enemy locked at trigger time, for the reticle only
}

// Phase returns the current phase (Idle for a zero Punch).
func (p *Punch) Phase() PunchPhase {
	if p.state == nil {
		return PunchIdle
	}
	return p.state.phase()
}

// Timer returns the frames spent in the current phase.
func (p *Punch) Timer() int {
	if p.state == nil {
		return 0
	}
	return p.state.elapsed()
}

// Impacted reports whether the current smash already fired its impact.
func (p *Punch) Impacted() bool {
	s, ok := p.state.(smashState)
	return ok && s.impacted
}

// advancePunch runs one frame of the punch machine.
func (w *World) advancePunch() {
	if w.Punch.state == nil {
		w.Punch.state = idleState{}
	}
	prev := w.Punch.state.phase()
	w.Punch.state = w.Punch.state.step(w)
	if next := w.Punch.state.phase(); next == PunchIdle && prev != PunchIdle {
		w.Punch.Lock = EnemyHandle{}
	}
}

// shoulders returns the arm anchor points on the player's body.
func (w *World) shoulders() (Vec2, Vec2) {
	p := w.Player.Pos
	return Vec2{X: p.X - ShoulderOffsetX, Y: p.Y - ShoulderOffsetY},
		Vec2{X: p.X + ShoulderOffsetX, Y: p.Y - ShoulderOffsetY}
}

// restPositions returns where idle gloves hover this frame.
func (w *World) restPositions() (Vec2, Vec2) {
	sl, sr := w.shoulders()
	bob := math.Sin(float64(w.Frame)*IdleBobFrequency) * IdleBobAmplitude
	return Vec2{X: sl.X - ArmRestOffsetX, Y: sl.Y + ArmRestOffsetY + bob},
		Vec2{X: sr.X + ArmRestOffsetX, Y: sr.Y + ArmRestOffsetY + bob}
}

// acquireTarget locks the nearest active enemy in reach of the pointer and
// predicts where it will be when the gloves arrive. With nothing in reach the
// pointer itself is the target.
func (w *World) acquireTarget(pointer Vec2) (EnemyHandle, Vec2) {
	best := -1
	closest := math.MaxFloat64
	for i := range w.Enemies {
		e := &w.Enemies[i]
		if !e.Active {
			continue
		}
		d := Dist(pointer, e.Pos)
		if d < e.Size+LockOnRadiusBonus && d < closest {
			closest = d
			best = i
		}
	}
	if best < 0 {
		return EnemyHandle{}, pointer
	}

	steps := WindupFrames + FlightFrames(SmashSpeed, FlightThreshold)
	e := w.Enemies[best]
	return EnemyHandle{id: e.ID, hint: best}, PredictPosition(e, w.Frame, steps, w.Width)
}

// triggerPunch starts a punch from Idle.
func (w *World) triggerPunch() {
	lock, target := w.acquireTarget(w.Pointer)
	w.Punch = Punch{
		state:  windupState{},
		Target: target,
		Lock:   lock,
	}
	w.emit(EventTypePunch, PunchPayload{
		TargetX: target.X,
		TargetY: target.Y,
		Locked:  lock.Valid(),
		EnemyID: lock.ID(),
	})
}
