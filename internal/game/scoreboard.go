package game

// ScoreBoard tracks per-player point totals, keyed by connection id.
type ScoreBoard struct {
	totals map[string]int
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{totals: make(map[string]int)}
}

// Init registers a player with a zero score.
func (s *ScoreBoard) Init(connID string) {
	s.totals[connID] = 0
}

func (s *ScoreBoard) Add(connID string, points int) {
	s.totals[connID] += points
}

func (s *ScoreBoard) Get(connID string) int {
	return s.totals[connID]
}

func (s *ScoreBoard) Remove(connID string) {
	delete(s.totals, connID)
}

// GuessPoints is the award for a correct guess given the seconds left on
// the drawing countdown and the 1-based order of the guess within the
// turn. Very late guesses far down the order can go negative; that is
// the observed behaviour and is deliberately not clamped.
func GuessPoints(remaining, order int) int {
	bonus := remaining / 10
	if remaining%10 != 0 {
		bonus++
	}
	return 10 + bonus - (order - 1)
}
