package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/scrawlhq/scrawl/backend/internal/db"
	"github.com/scrawlhq/scrawl/backend/internal/game"
	"github.com/scrawlhq/scrawl/backend/internal/ws"
)

type API struct {
	hub      *ws.Hub
	registry *game.Registry
	database *db.Database
}

func New(hub *ws.Hub, registry *game.Registry, database *db.Database) *API {
	return &API{
		hub:      hub,
		registry: registry,
		database: database,
	}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"active_rooms":   a.registry.Count(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}

	if a.database != nil {
		dbStats, err := a.database.GetStats()
		if err == nil {
			stats["total_games"] = dbStats["game_count"]
			stats["total_players"] = dbStats["player_count"]
		}
	}

	jsonResponse(w, http.StatusOK, stats)
}

// CreateRoomHandler mints a fresh room identifier. The room itself is
// created lazily when the first player joins over the websocket.
func (a *API) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"room_id": uuid.NewString()})
}

func (a *API) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if a.database == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Leaderboard unavailable")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := a.database.TopPlayers(limit)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	if entries == nil {
		entries = []db.LeaderboardEntry{}
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"limit":       limit,
	})
}
