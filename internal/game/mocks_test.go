package game

import (
	"sync"
	"time"
)

// fakeClock drives scheduler callbacks deterministically. Advance fires
// due timers in deadline order, letting each callback schedule its
// successor, so second-by-second countdowns run instantly.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	fn      func()
	fired   bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.when
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}

// fakeGateway records every outbound event for assertions.
type sentEvent struct {
	kind    string // "broadcast", "except", "unicast"
	roomID  string
	target  string // unicast recipient, or the excluded sender
	event   string
	payload any
}

type fakeGateway struct {
	mu     sync.Mutex
	events []sentEvent
}

func (g *fakeGateway) Broadcast(roomID, event string, payload any) {
	g.record(sentEvent{kind: "broadcast", roomID: roomID, event: event, payload: payload})
}

func (g *fakeGateway) BroadcastExcept(roomID, senderID, event string, payload any) {
	g.record(sentEvent{kind: "except", roomID: roomID, target: senderID, event: event, payload: payload})
}

func (g *fakeGateway) Unicast(connID, event string, payload any) {
	g.record(sentEvent{kind: "unicast", target: connID, event: event, payload: payload})
}

func (g *fakeGateway) record(e sentEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, e)
}

func (g *fakeGateway) named(event string) []sentEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	var matched []sentEvent
	for _, e := range g.events {
		if e.event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

func (g *fakeGateway) unicastsTo(connID, event string) []sentEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	var matched []sentEvent
	for _, e := range g.events {
		if e.kind == "unicast" && e.target == connID && e.event == event {
			matched = append(matched, e)
		}
	}
	return matched
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = nil
}

// fakeResults records finished games.
type fakeResults struct {
	mu        sync.Mutex
	roomIDs   []string
	usernames [][]string
	scores    [][]int
}

func (f *fakeResults) RecordGame(roomID string, usernames []string, scores []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomIDs = append(f.roomIDs, roomID)
	f.usernames = append(f.usernames, usernames)
	f.scores = append(f.scores, scores)
	return nil
}
