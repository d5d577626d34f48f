package game

// Per-frame tuning. The simulation is frame-rate dependent: every value
// below is a per-tick delta at the display refresh rate.
const (
	// Punch timing
	WindupFrames      = 8
	SmashSpeed        = 0.6  // exponential approach factor during Smash
	FlightThreshold   = 0.05 // remaining-distance fraction that counts as "arrived"
	WindupEase        = 0.25
	WindupSpread      = 250.0 // horizontal offset of each glove from the target during Windup
	RecoverEase       = 0.2
	SmashHoldFrames   = 5 // Smash lasts until timer exceeds this
	HoldFrames        = 6
	RecoverFrames     = 10
	SmashReachBase    = 36.0 // scaled by level
	SmashGapSlack     = 15.0
	LockOnRadiusBonus = 100.0

	// Idle bob
	IdleBobAmplitude = 5.0
	IdleBobFrequency = 0.1 // rad/frame

	// Player geometry
	PlayerWidth       = 40.0
	PlayerHeight      = 60.0
	PlayerFloorOffset = 100.0 // player.y = field height - offset
	PlayerEdgeMargin  = 20.0
	MinFieldWidth     = 2 * PlayerEdgeMargin // narrowest field that accepts a resize
	ShoulderOffsetX   = 20.0
	ShoulderOffsetY   = 40.0
	ArmRestOffsetX    = 40.0
	ArmRestOffsetY    = 20.0

	// Collision
	GloveReachBase  = 44.0 // clap distance and kill box half-width
	KillBoxHalfBase = 80.0 // kill box half-height
	BlockRadiusBase = 30.0
	HitStopFrames   = 4
	HitShakePerKill = 5.0

	// Contact outcomes
	ContactDamage    = 20.0
	MaxHealth        = 100.0
	BlockPoints      = 10
	DamageShake      = 15.0
	DamageFlash      = 0.4
	BlockShake       = 5.0
	ContactParticles = 10

	// Camera feedback decay
	ShakeDecay     = 0.85
	ShakeFloor     = 0.5
	FlashDecay     = 0.1
	ZoomDecay      = 0.05
	LevelUpShake   = 30.0
	LevelUpFlash   = 0.5
	MaxLevel       = 4
	PointsPerLevel = 1000

	// Spawner
	SpawnIntervalBase  = 60
	SpawnIntervalFloor = 10
	SpawnScorePerFrame = 100 // every N points shave one frame off the interval
	EnemyMinSize       = 30.0
	EnemyMaxSize       = 70.0
	EnemyMinSpeed      = 2.0
	EnemyMaxSpeed      = 4.0
	SpeedBonusCap      = 5.0
	SpeedBonusDivisor  = 3000.0
	EnemyDriftMax      = 2.0
	SwaySpeedMin       = 0.05
	SwaySpeedMax       = 0.10
	SwayAmplitude      = 7.0
	RotSpeedMax        = 0.05
)

// Effect decay rates.
const (
	NormalDecay     = 0.03
	DebrisDecay     = 0.015
	DebrisGravity   = 0.4
	SparkDecay      = 0.05
	LightningDecay  = 0.1
	TextDecay       = 0.02
	TextDrag        = 0.9
	TextRiseSpeed   = -2.0
	ShockwaveFade   = 0.05
	ShockwaveThin   = 0.8
	ExplosionDecay  = 0.05
	ExplosionSpin   = 0.1
	ExplosionGrowth = 0.05
)

// Palette (hex, parsed by the presentation layer).
const (
	ColorCrate     = "#d97706"
	ColorSpike     = "#ef4444"
	ColorHex       = "#8b5cf6"
	ColorOrange    = "#f97316"
	ColorYellow    = "#facc15"
	ColorPurple    = "#9333ea"
	ColorWhite     = "#ffffff"
	ColorBlockDust = "#dcdcdc"
)
