package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestFlightFrames(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		threshold float64
		expected  int
	}{
		{"smash speed", SmashSpeed, FlightThreshold, 4},
		{"windup ease", 0.25, 0.05, 11},
		{"instant", 1, 0.05, 1},
		{"never arrives", 0, 0.05, 0},
		{"threshold already met", 0.6, 1, 0},
		{"threshold above one", 0.6, 2, 0},
		{"exact arrival", 0.6, 0, 0},
		{"negative threshold", 0.6, -0.5, 0},
		{"instant exact arrival", 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlightFrames(tt.speed, tt.threshold)
			if got != tt.expected {
				t.Errorf("Expected %d frames, got %d", tt.expected, got)
			}
		})
	}

	want := int(math.Ceil(math.Log(0.05) / math.Log(0.4)))
	if FlightFrames(0.6, 0.05) != want {
		t.Errorf("Expected closed form %d, got %d", want, FlightFrames(0.6, 0.05))
	}
}

func TestLevelScale(t *testing.T) {
	tests := []struct {
		level    int
		expected float64
	}{
		{1, 1.0},
		{2, 1.5},
		{3, 2.0},
		{4, 2.5},
	}

	for _, tt := range tests {
		if got := LevelScale(tt.level); got != tt.expected {
			t.Errorf("Level %d: expected scale %.1f, got %.2f", tt.level, tt.expected, got)
		}
	}
}

func TestDist(t *testing.T) {
	if d := Dist(Vec2{X: 0, Y: 0}, Vec2{X: 3, Y: 4}); d != 5 {
		t.Errorf("Expected distance 5, got %f", d)
	}
	if d := Dist(Vec2{X: 7, Y: -2}, Vec2{X: 7, Y: -2}); d != 0 {
		t.Errorf("Expected zero distance, got %f", d)
	}
}

func TestRandomFloatRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := randomFloat(rng, 30, 70)
		if v < 30 || v >= 70 {
			t.Fatalf("Sample %f outside [30, 70)", v)
		}
	}
}
