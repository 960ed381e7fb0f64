package game

import (
	"sync"
	"time"
)

// Active participant, eligible to draw and guess. The score lives in the
// room's ScoreBoard keyed by connection id.
type Player struct {
	ConnID   string
	Username string
}

// Observer with no turn rights; created only for joins after game start.
type Spectator struct {
	ConnID   string
	Username string
}

// Room holds the full state of one game session. Every mutation happens
// under mu, whether triggered by a client event or a timer callback, so
// handlers within a room are serialized.
type Room struct {
	mu sync.Mutex

	id         string
	players    []*Player
	spectators []*Spectator

	// Snapshot of player ids taken as the game starts; frozen afterwards
	// except for removals on disconnect.
	turnOrder        []string
	currentTurnIndex int
	currentDrawer    *Player

	currentWordOptions []string
	currentWord        string
	round              int
	guessedUsers       map[string]bool
	drawingCountdown   int

	started          bool
	countdownStarted bool
	gameOver         bool

	drawings *DrawingLog
	scores   *ScoreBoard
	sched    turnScheduler

	lastActivity time.Time
}

func newRoom(id string, now time.Time) *Room {
	return &Room{
		id:           id,
		players:      make([]*Player, 0),
		spectators:   make([]*Spectator, 0),
		turnOrder:    make([]string, 0),
		guessedUsers: make(map[string]bool),
		drawings:     NewDrawingLog(),
		scores:       NewScoreBoard(),
		lastActivity: now,
	}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) playerByConn(connID string) *Player {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerIndex(connID string) int {
	for i, p := range r.players {
		if p.ConnID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) spectatorIndex(connID string) int {
	for i, s := range r.spectators {
		if s.ConnID == connID {
			return i
		}
	}
	return -1
}

// standings reports every player's username and score in join order.
func (r *Room) standings() []Score {
	scores := make([]Score, len(r.players))
	for i, p := range r.players {
		scores[i] = Score{Username: p.Username, Score: r.scores.Get(p.ConnID)}
	}
	return scores
}

func (r *Room) memberCount() int {
	return len(r.players) + len(r.spectators)
}

func (r *Room) touch(now time.Time) {
	r.lastActivity = now
}
