package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// Database persists finished-game results for the leaderboard. Live
// room state never touches disk.
type Database struct {
	db *sql.DB
}

type GameRecord struct {
	ID         int
	RoomID     string
	Players    int
	FinishedAt time.Time
}

type LeaderboardEntry struct {
	Username    string `json:"username"`
	GamesPlayed int    `json:"games_played"`
	BestScore   int    `json:"best_score"`
	TotalScore  int    `json:"total_score"`
}

func New(dbPath string) (*Database, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return &Database{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id TEXT NOT NULL,
		players INTEGER NOT NULL DEFAULT 0,
		finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_games_room_id ON games(room_id);

	CREATE TABLE IF NOT EXISTS game_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		username TEXT NOT NULL,
		score INTEGER NOT NULL,
		placing INTEGER NOT NULL,
		FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_game_results_game_id ON game_results(game_id);
	CREATE INDEX IF NOT EXISTS idx_game_results_username ON game_results(username);
	`

	_, err := db.Exec(schema)
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordGame stores one finished game's final standings. Placings are
// derived from scores: highest score places first, ties share order of
// appearance.
func (d *Database) RecordGame(roomID string, usernames []string, scores []int) error {
	if len(usernames) != len(scores) {
		return fmt.Errorf("mismatched standings: %d usernames, %d scores", len(usernames), len(scores))
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO games (room_id, players) VALUES (?, ?)",
		roomID, len(usernames),
	)
	if err != nil {
		return err
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	for placing, i := range order {
		if _, err := tx.Exec(
			"INSERT INTO game_results (game_id, username, score, placing) VALUES (?, ?, ?, ?)",
			gameID, usernames[i], scores[i], placing+1,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// TopPlayers returns the leaderboard ordered by total score.
func (d *Database) TopPlayers(limit int) ([]LeaderboardEntry, error) {
	rows, err := d.db.Query(`
		SELECT username, COUNT(*) AS games_played, MAX(score) AS best_score, SUM(score) AS total_score
		FROM game_results
		GROUP BY username
		ORDER BY total_score DESC, best_score DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.GamesPlayed, &e.BestScore, &e.TotalScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetStats reports lifetime totals for the stats endpoint.
func (d *Database) GetStats() (map[string]int, error) {
	stats := make(map[string]int)

	var gameCount int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM games").Scan(&gameCount); err != nil {
		return nil, err
	}
	stats["game_count"] = gameCount

	var playerCount int
	if err := d.db.QueryRow("SELECT COUNT(DISTINCT username) FROM game_results").Scan(&playerCount); err != nil {
		return nil, err
	}
	stats["player_count"] = playerCount

	return stats, nil
}
