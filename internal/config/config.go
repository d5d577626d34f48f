// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for field, server and game settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// VIDEO & FIELD CONFIGURATION
// =============================================================================

// VideoConfig holds the play field size and frame cadence.
// The simulation advances exactly one tick per frame, so FPS is also the tick rate.
type VideoConfig struct {
	Width  int // Play field width in pixels
	Height int // Play field height in pixels
	FPS    int // Frames (and simulation ticks) per second
}

// DefaultVideo returns the default video configuration.
func DefaultVideo() VideoConfig {
	return VideoConfig{
		Width:  1024,
		Height: 768,
		FPS:    60, // Tuning constants assume a 60 Hz display
	}
}

// VideoFromEnv returns video configuration with environment variable overrides.
func VideoFromEnv() VideoConfig {
	cfg := DefaultVideo()

	if w := getEnvInt("FIELD_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("FIELD_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if fps := getEnvInt("FPS", 0); fps > 0 {
		cfg.FPS = fps
	}

	return cfg
}

// =============================================================================
// GAME RESOURCE LIMITS
// =============================================================================

// ResourceLimits caps the ephemeral effect collections.
// Creations beyond a cap are dropped; gameplay entities are never capped.
type ResourceLimits struct {
	MaxParticles  int
	MaxTexts      int
	MaxShockwaves int
	MaxExplosions int
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxParticles:  2000,
		MaxTexts:      100,
		MaxShockwaves: 50,
		MaxExplosions: 50,
	}
}

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds simulation settings that are not tuning constants.
type GameConfig struct {
	Seed         int64  // RNG seed, 0 means time based
	EventLogPath string // JSONL event log, empty disables the log
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		Seed:         0,
		EventLogPath: "events.jsonl",
	}
}

// GameFromEnv returns game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if v := os.Getenv("GAME_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if v, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	DebugEnabled bool   // pprof + prometheus debug server
	DebugAddr    string // MUST stay on localhost in production
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		DebugEnabled: true,
		DebugAddr:    "127.0.0.1:6060",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if os.Getenv("DEBUG_SERVER") == "false" {
		cfg.DebugEnabled = false
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Video  VideoConfig
	Server ServerConfig
	Game   GameConfig
	Limits ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Video:  VideoFromEnv(),
		Server: ServerFromEnv(),
		Game:   GameFromEnv(),
		Limits: DefaultLimits(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
