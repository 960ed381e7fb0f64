package game

type timerKind int

const (
	timerLobby timerKind = iota
	timerSelect
	timerDraw
	timerKindCount
)

// turnScheduler owns the timers driving one room: the pre-game lobby
// countdown, the word-selection deadline, and the drawing countdown.
// Arming a kind supersedes the previous timer of that kind. Each armed
// timer carries the generation it was scheduled under; a callback whose
// generation no longer matches is stale and must not run. The generation
// check happens under the room mutex, so a timer that fires in the same
// instant a client event cancels it can never drive a duplicate
// transition.
type turnScheduler struct {
	timers [timerKindCount]Timer
	gens   [timerKindCount]uint64
}

// arm supersedes any previous timer of this kind and returns the
// generation the new timer runs under.
func (s *turnScheduler) arm(kind timerKind, t Timer) {
	if old := s.timers[kind]; old != nil {
		old.Stop()
	}
	s.timers[kind] = t
}

func (s *turnScheduler) next(kind timerKind) uint64 {
	s.gens[kind]++
	return s.gens[kind]
}

func (s *turnScheduler) valid(kind timerKind, gen uint64) bool {
	return s.gens[kind] == gen
}

// cancel stops the timer of this kind and invalidates any callback from
// it that is already in flight.
func (s *turnScheduler) cancel(kind timerKind) {
	s.gens[kind]++
	if t := s.timers[kind]; t != nil {
		t.Stop()
		s.timers[kind] = nil
	}
}

func (s *turnScheduler) cancelAll() {
	for kind := timerKind(0); kind < timerKindCount; kind++ {
		s.cancel(kind)
	}
}
