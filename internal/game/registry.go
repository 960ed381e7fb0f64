package game

import (
	"log"
	"sync"
	"time"
)

// Registry is the process-wide map from room id to room. Rooms are
// created lazily on first join and evicted by the reaper once idle and
// empty. It also tracks which room each connection joined, so events
// that omit the room id (wordChosen, disconnect) can be resolved.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	conns map[string]string
	clock Clock
}

func NewRegistry(clock Clock) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		conns: make(map[string]string),
		clock: clock,
	}
}

// GetOrCreate is idempotent and safe to call on every join.
func (g *Registry) GetOrCreate(roomID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.rooms[roomID]; ok {
		return r
	}
	r := newRoom(roomID, g.clock.Now())
	g.rooms[roomID] = r
	log.Printf("Room %s created", roomID)
	return r
}

func (g *Registry) Get(roomID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[roomID]
}

func (g *Registry) Bind(connID, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[connID] = roomID
}

func (g *Registry) Unbind(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, connID)
}

// RoomFor resolves a connection to the room it joined, or nil.
func (g *Registry) RoomFor(connID string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	roomID, ok := g.conns[connID]
	if !ok {
		return nil
	}
	return g.rooms[roomID]
}

func (g *Registry) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// EvictIdle removes rooms that have no connected members and saw no
// activity since the cutoff. Pending timers are cancelled so a stale
// tick cannot resurrect state. Returns the number of rooms evicted.
func (g *Registry) EvictIdle(cutoff time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for id, r := range g.rooms {
		r.mu.Lock()
		idle := r.memberCount() == 0 && r.lastActivity.Before(cutoff)
		if idle {
			r.sched.cancelAll()
		}
		r.mu.Unlock()

		if idle {
			delete(g.rooms, id)
			evicted++
			log.Printf("Room %s evicted (idle)", id)
		}
	}
	return evicted
}
