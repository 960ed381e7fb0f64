package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scrawlhq/scrawl/backend/internal/api"
	"github.com/scrawlhq/scrawl/backend/internal/db"
	"github.com/scrawlhq/scrawl/backend/internal/game"
	"github.com/scrawlhq/scrawl/backend/internal/reaper"
	"github.com/scrawlhq/scrawl/backend/internal/words"
	"github.com/scrawlhq/scrawl/backend/internal/ws"
)

func main() {
	dbPath := os.Getenv("SCRAWL_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/scrawl.db"
	}

	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	wordList := words.Default()
	if path := os.Getenv("SCRAWL_WORDS_PATH"); path != "" {
		wordList, err = words.LoadFile(path)
		if err != nil {
			log.Fatalf("Failed to load word list: %v", err)
		}
	}
	log.Printf("Word list loaded (%d words)", wordList.Len())

	clock := game.NewClock()
	registry := game.NewRegistry(clock)

	hub := ws.NewHub()
	engine := game.NewEngine(registry, hub, clock, wordList, database)
	hub.SetHandler(engine)

	reaperService := reaper.New(registry, reaper.DefaultConfig())
	reaperService.Start()

	apiHandler := api.New(hub, registry, database)

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/create-room", apiHandler.CreateRoomHandler)
	http.HandleFunc("/api/leaderboard", apiHandler.LeaderboardHandler)

	// Apply CORS middleware
	handler := corsMiddleware(http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		reaperService.Stop()
		database.Close()
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🎨 Scrawl server starting on :%s", port)
	log.Printf("📁 Database: %s", dbPath)
	log.Println("Endpoints:")
	log.Println("  - WebSocket:    /ws")
	log.Println("  - Health:       GET /health")
	log.Println("  - Stats:        GET /api/stats")
	log.Println("  - Create room:  GET /create-room")
	log.Println("  - Leaderboard:  GET /api/leaderboard")

	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
