package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown      EventType = iota
	EventTypeSessionStart           // Press from Menu or GameOver
	EventTypePunch
	EventTypeImpact
	EventTypeKill
	EventTypeBlock
	EventTypeDamage
	EventTypeLevelUp
	EventTypeGameOver
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence, assigned by the log
	Frame     int64           `json:"frame"`     // World frame this occurred in
	Payload   json.RawMessage `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeSessionStart:
		return "session_start"
	case EventTypePunch:
		return "punch"
	case EventTypeImpact:
		return "impact"
	case EventTypeKill:
		return "kill"
	case EventTypeBlock:
		return "block"
	case EventTypeDamage:
		return "damage"
	case EventTypeLevelUp:
		return "level_up"
	case EventTypeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so the JSONL log stays readable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// SessionStartPayload is emitted when a fresh run begins
type SessionStartPayload struct {
	Seed   int64   `json:"seed"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PunchPayload contains the trigger decision
type PunchPayload struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
	Locked  bool    `json:"locked"`
	EnemyID uint64  `json:"enemyId,omitempty"`
}

// ImpactPayload contains the glove clap location
type ImpactPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

// KillPayload contains kill sweep details
type KillPayload struct {
	EnemyID uint64 `json:"enemyId"`
	Kind    string `json:"kind"`
	Points  int    `json:"points"`
	Score   int    `json:"score"`
}

// BlockPayload contains block details
type BlockPayload struct {
	EnemyID uint64 `json:"enemyId"`
	Points  int    `json:"points"`
	Score   int    `json:"score"`
}

// DamagePayload contains player damage details
type DamagePayload struct {
	EnemyID uint64  `json:"enemyId"`
	Damage  float64 `json:"damage"`
	Health  float64 `json:"health"`
}

// LevelUpPayload contains the level transition
type LevelUpPayload struct {
	Level int `json:"level"`
	Score int `json:"score"`
}

// GameOverPayload contains the final result
type GameOverPayload struct {
	Score  int   `json:"score"`
	Level  int   `json:"level"`
	Frames int64 `json:"frames"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, frame int64, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Frame:     frame,
		Payload:   EncodePayload(payload),
	}
}
