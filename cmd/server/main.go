package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"smash-master/internal/api"
	"smash-master/internal/config"
	"smash-master/internal/game"
	"smash-master/internal/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🥊 ================================")
	log.Println("🥊  SMASH MASTER - HEADLESS SERVER")
	log.Println("🥊 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	videoCfg := appConfig.Video
	serverCfg := appConfig.Server
	gameCfg := appConfig.Game

	log.Printf("🎮 Config: %d FPS, field %dx%d, seed %d", videoCfg.FPS, videoCfg.Width, videoCfg.Height, gameCfg.Seed)

	engine := game.NewEngine(videoCfg, gameCfg, appConfig.Limits)
	limits := engine.GetLimits()
	log.Printf("🛡️ Resource limits: %d particles, %d texts, %d shockwaves, %d explosions",
		limits.MaxParticles, limits.MaxTexts, limits.MaxShockwaves, limits.MaxExplosions)

	// Metrics are fed from the engine goroutine after every step
	engine.SetTickObserver(api.ObserveTick)

	if gameCfg.EventLogPath != "" {
		if err := engine.StartEventLog(gameCfg.EventLogPath); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", gameCfg.EventLogPath)
		}
	}

	if serverCfg.DebugEnabled {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = serverCfg.DebugAddr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	renderer := render.NewRenderer(videoCfg.Width, videoCfg.Height, gameCfg.Seed)
	server := api.NewServer(engine, renderer)

	engine.Start()

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		log.Printf("🖼️ Live frame: http://localhost%s/api/frame.png", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ %v", err)
	}
	engine.StopEventLog()
	engine.Stop()
	log.Println("👋 Goodbye!")
}
