package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"smash-master/internal/config"
	"smash-master/internal/game"
	"smash-master/internal/tui"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	// The screen owns stdout while the game runs
	logOut := io.Discard
	if path := os.Getenv("TERMINAL_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.SetOutput(logOut)

	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()

	engine := game.NewEngine(appConfig.Video, appConfig.Game, appConfig.Limits)
	if path := appConfig.Game.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	frontend := tui.NewFrontend(screen, engine, appConfig.Video.FPS)
	if err := frontend.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	engine.Start()
	frontend.Run()

	frontend.Close()
	engine.Stop()
	engine.StopEventLog()

	stats := engine.Stats()
	fmt.Printf("🥊 Final score %d (level %d)\n", stats.Score, stats.Level)
}
