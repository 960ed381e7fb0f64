package game

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/scrawlhq/scrawl/backend/internal/words"
)

const (
	minPlayersToStart     = 2
	lobbyCountdownSeconds = 20
	wordChoiceCount       = 3
	wordSelectTimeout     = 20 * time.Second
	drawingSeconds        = 60
	totalRounds           = 2
	tickInterval          = time.Second
)

// Results receives final standings when a game ends. A nil sink is
// valid; the engine then only broadcasts the result.
type Results interface {
	RecordGame(roomID string, usernames []string, scores []int) error
}

// Engine is the single entry point for every inbound client event and
// every timer callback. Handlers lock the target room for their full
// duration, so per-room execution is serialized while rooms stay fully
// independent of each other.
type Engine struct {
	registry *Registry
	gw       Gateway
	clock    Clock
	words    *words.List
	results  Results
}

func NewEngine(registry *Registry, gw Gateway, clock Clock, list *words.List, results Results) *Engine {
	return &Engine{
		registry: registry,
		gw:       gw,
		clock:    clock,
		words:    list,
		results:  results,
	}
}

// schedule arms a room timer. The callback runs under the room mutex
// and only if the timer has not been superseded or cancelled since.
func (e *Engine) schedule(r *Room, kind timerKind, d time.Duration, fn func(*Room)) {
	gen := r.sched.next(kind)
	t := e.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.sched.valid(kind, gen) {
			return
		}
		fn(r)
	})
	r.sched.arm(kind, t)
}

// HandleJoin admits a connection to a room: as a player while the game
// has not started, as a spectator afterwards.
func (e *Engine) HandleJoin(connID, roomID, username string) {
	r := e.registry.GetOrCreate(roomID)
	e.registry.Bind(connID, roomID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if r.started {
		r.spectators = append(r.spectators, &Spectator{ConnID: connID, Username: username})
		e.gw.Unicast(connID, EventSpectator, NoticePayload{Message: "The game has already started, you are now a spectator."})
		log.Printf("Room %s: %s joined as spectator", roomID, username)
		return
	}

	r.players = append(r.players, &Player{ConnID: connID, Username: username})
	r.scores.Init(connID)
	r.turnOrder = append(r.turnOrder, connID)
	log.Printf("Room %s: %s joined (%d players)", roomID, username, len(r.players))

	e.gw.Unicast(connID, EventLoadDrawings, r.drawings.Snapshot())
	e.gw.BroadcastExcept(roomID, connID, EventMessage, systemMessage(username+" has joined the room!"))

	if r.countdownStarted {
		return
	}
	if len(r.players) < minPlayersToStart {
		e.gw.Broadcast(roomID, EventMessage, systemMessage("Waiting for more players to join..."))
		return
	}

	// Once running, the countdown is never restarted or cancelled, even
	// if players leave before it completes.
	r.countdownStarted = true
	e.startLobbyCountdown(r)
}

func (e *Engine) startLobbyCountdown(r *Room) {
	remaining := lobbyCountdownSeconds
	e.gw.Broadcast(r.id, EventCountdown, CountdownPayload{Countdown: remaining})

	var tick func(*Room)
	tick = func(r *Room) {
		remaining--
		e.gw.Broadcast(r.id, EventCountdown, CountdownPayload{Countdown: remaining})
		if remaining > 0 {
			e.schedule(r, timerLobby, tickInterval, tick)
			return
		}
		r.started = true
		log.Printf("Room %s: game started with %d players", r.id, len(r.players))
		e.gw.Broadcast(r.id, EventGameStart, NoticePayload{Message: "The game has started!"})
		e.startNextTurn(r)
	}
	e.schedule(r, timerLobby, tickInterval, tick)
}

// startNextTurn opens the word-selection phase for the player at the
// current turn index, or ends the game once all rounds are played.
func (e *Engine) startNextTurn(r *Room) {
	if r.gameOver {
		return
	}
	if r.round >= totalRounds {
		e.finishGame(r)
		return
	}
	if len(r.turnOrder) == 0 {
		return
	}
	if r.currentTurnIndex >= len(r.turnOrder) {
		r.currentTurnIndex = 0
	}

	drawer := r.playerByConn(r.turnOrder[r.currentTurnIndex])
	if drawer == nil {
		return
	}
	r.currentDrawer = drawer
	r.currentWord = ""
	r.currentWordOptions = e.words.Pick(wordChoiceCount)

	e.gw.Broadcast(r.id, EventLoading, nil)
	e.gw.Unicast(drawer.ConnID, EventWordOptions, WordOptionsPayload{Options: r.currentWordOptions})
	e.gw.Broadcast(r.id, EventTurnInfo, NoticePayload{Message: drawer.Username + " is choosing a word..."})

	e.schedule(r, timerSelect, wordSelectTimeout, func(r *Room) {
		word := r.currentWordOptions[rand.Intn(len(r.currentWordOptions))]
		log.Printf("Room %s: selection timed out, picked %q for %s", r.id, word, drawer.Username)
		e.selectWord(r, word)
	})
}

// HandleWordChosen applies the drawer's explicit word choice. A choice
// outside the offered options falls back to a random option.
func (e *Engine) HandleWordChosen(connID, chosenWord string) {
	r := e.registry.RoomFor(connID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if r.currentDrawer == nil || r.currentDrawer.ConnID != connID {
		log.Printf("Room %s: rejected wordChosen from non-drawer %s", r.id, connID)
		e.gw.Unicast(connID, EventError, NoticePayload{Message: "Only the current drawer can choose a word."})
		return
	}
	if len(r.currentWordOptions) == 0 {
		// Selection already resolved; stale client event.
		return
	}

	valid := false
	for _, w := range r.currentWordOptions {
		if w == chosenWord {
			valid = true
			break
		}
	}
	if !valid {
		chosenWord = r.currentWordOptions[rand.Intn(len(r.currentWordOptions))]
		log.Printf("Room %s: invalid word choice, falling back to %q", r.id, chosenWord)
	}
	e.selectWord(r, chosenWord)
}

// selectWord commits the secret word and enters the drawing phase. The
// word goes to the drawer only; everyone else just learns who draws.
func (e *Engine) selectWord(r *Room, word string) {
	r.sched.cancel(timerSelect)
	r.currentWord = word
	r.currentWordOptions = nil

	e.gw.Unicast(r.currentDrawer.ConnID, EventYourTurn, YourTurnPayload{Word: word})
	e.gw.Broadcast(r.id, EventWordSelected, WordSelectedPayload{Drawer: r.currentDrawer.Username})

	e.startDrawingPhase(r)
}

func (e *Engine) startDrawingPhase(r *Room) {
	r.guessedUsers = make(map[string]bool)
	r.drawings.Clear()

	e.gw.Broadcast(r.id, EventClearCanvas, nil)
	e.gw.Broadcast(r.id, EventDrawingPhase, DrawingPhasePayload{
		Message: r.currentDrawer.Username + " is drawing now!",
		Drawer:  r.currentDrawer.Username,
	})

	r.drawingCountdown = drawingSeconds
	e.gw.Broadcast(r.id, EventDrawingCountdown, CountdownPayload{Countdown: r.drawingCountdown})
	e.schedule(r, timerDraw, tickInterval, e.drawingTick)
}

func (e *Engine) drawingTick(r *Room) {
	r.drawingCountdown--
	e.gw.Broadcast(r.id, EventDrawingCountdown, CountdownPayload{Countdown: r.drawingCountdown})
	if r.drawingCountdown > 0 {
		e.schedule(r, timerDraw, tickInterval, e.drawingTick)
		return
	}
	e.gw.Broadcast(r.id, EventTurnEnded, NoticePayload{Message: "Time's up!"})
	e.proceedToNextTurn(r)
}

// proceedToNextTurn is the single convergence point for timer expiry,
// all-players-guessed completion, and drawer disconnection. A wrap of
// the turn index completes a round.
func (e *Engine) proceedToNextTurn(r *Room) {
	r.currentDrawer = nil
	r.currentWord = ""
	if len(r.turnOrder) == 0 {
		return
	}
	r.currentTurnIndex++
	if r.currentTurnIndex >= len(r.turnOrder) {
		r.currentTurnIndex = 0
		r.round++
	}
	e.startNextTurn(r)
}

func (e *Engine) finishGame(r *Room) {
	r.gameOver = true
	r.currentDrawer = nil
	r.currentWord = ""
	r.sched.cancelAll()

	standings := r.standings()
	e.gw.Broadcast(r.id, EventGameOver, ScoresPayload{Scores: standings})
	log.Printf("Room %s: game over after %d rounds", r.id, r.round)

	if e.results != nil {
		usernames := make([]string, len(standings))
		scores := make([]int, len(standings))
		for i, s := range standings {
			usernames[i] = s.Username
			scores[i] = s.Score
		}
		if err := e.results.RecordGame(r.id, usernames, scores); err != nil {
			log.Printf("Room %s: failed to record game result: %v", r.id, err)
		}
	}
}

// HandleDrawing validates and replicates one stroke segment. Only the
// current drawer may draw; malformed payloads never reach the log.
func (e *Engine) HandleDrawing(connID string, payload []byte) {
	var p DrawPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.Printf("Rejected malformed drawing payload from %s: %v", connID, err)
		e.gw.Unicast(connID, EventError, NoticePayload{Message: "Malformed drawing payload."})
		return
	}

	r := e.registry.Get(p.RoomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if !r.started || r.currentDrawer == nil || r.currentDrawer.ConnID != connID {
		log.Printf("Room %s: rejected drawing from non-drawer %s", p.RoomID, connID)
		e.gw.Unicast(connID, EventError, NoticePayload{Message: "You are not allowed to draw right now."})
		return
	}

	seg := StrokeSegment{X: p.X, Y: p.Y, LastX: p.LastX, LastY: p.LastY, Color: p.Color}
	r.drawings.Append(seg)
	// The drawer already rendered the stroke locally; no echo.
	e.gw.BroadcastExcept(p.RoomID, connID, EventDrawing, seg)
}

// HandleUndo removes the drawer's most recent segment and replaces the
// full log on every client so all canvases stay consistent.
func (e *Engine) HandleUndo(connID, roomID string) {
	r := e.registry.Get(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if !r.started || r.currentDrawer == nil || r.currentDrawer.ConnID != connID {
		log.Printf("Room %s: rejected undo from non-drawer %s", roomID, connID)
		e.gw.Unicast(connID, EventError, NoticePayload{Message: "You are not allowed to undo right now."})
		return
	}

	if r.drawings.Undo() {
		e.gw.Broadcast(roomID, EventLoadDrawings, r.drawings.Snapshot())
	}
}

// HandleChat scores correct guesses and relays everything else as plain
// chat. A message matching the secret word is never broadcast, no
// matter who sent it.
func (e *Engine) HandleChat(connID, roomID, username, text string) {
	r := e.registry.Get(roomID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if r.currentWord != "" && strings.EqualFold(text, r.currentWord) {
		guesser := r.playerByConn(connID)
		if guesser == nil || r.currentDrawer == nil || r.currentDrawer.ConnID == connID || r.guessedUsers[connID] {
			// Drawer, spectator, or repeat guesser typing the word:
			// swallow it so the word cannot leak.
			return
		}

		r.guessedUsers[connID] = true
		order := len(r.guessedUsers)
		points := GuessPoints(r.drawingCountdown, order)
		r.scores.Add(connID, points)

		e.gw.Broadcast(roomID, EventMessage, systemMessage(
			fmt.Sprintf("%s guessed the word! (+%d points)", guesser.Username, points)))
		e.gw.Broadcast(roomID, EventUpdateScores, ScoresPayload{Scores: r.standings()})

		if len(r.guessedUsers) == len(r.players)-1 {
			e.gw.Broadcast(roomID, EventTurnEnded, NoticePayload{Message: "Everyone has guessed the word!"})
			r.sched.cancel(timerDraw)
			e.proceedToNextTurn(r)
		}
		return
	}

	e.gw.Broadcast(roomID, EventMessage, MessagePayload{Username: username, Message: text})
}

// HandleDisconnect removes a departed connection from its room. A
// vanished drawer abandons the turn without revealing the word.
func (e *Engine) HandleDisconnect(connID string) {
	r := e.registry.RoomFor(connID)
	e.registry.Unbind(connID)
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch(e.clock.Now())

	if i := r.playerIndex(connID); i >= 0 {
		p := r.players[i]
		r.players = append(r.players[:i], r.players[i+1:]...)
		r.scores.Remove(connID)
		delete(r.guessedUsers, connID)

		for ti, id := range r.turnOrder {
			if id != connID {
				continue
			}
			r.turnOrder = append(r.turnOrder[:ti], r.turnOrder[ti+1:]...)
			if ti < r.currentTurnIndex {
				r.currentTurnIndex--
			}
			break
		}

		log.Printf("Room %s: player %s disconnected", r.id, p.Username)
		e.gw.Broadcast(r.id, EventMessage, systemMessage(p.Username+" has left the room."))

		if r.currentDrawer != nil && r.currentDrawer.ConnID == connID {
			r.sched.cancel(timerSelect)
			r.sched.cancel(timerDraw)
			// Removing the drawer shifted the next player onto the
			// drawer's old slot; back up one so the advance below lands
			// there. An index of -1 advances to 0 without counting as a
			// completed round.
			r.currentTurnIndex--
			e.proceedToNextTurn(r)
		}
		return
	}

	if i := r.spectatorIndex(connID); i >= 0 {
		s := r.spectators[i]
		r.spectators = append(r.spectators[:i], r.spectators[i+1:]...)
		log.Printf("Room %s: spectator %s disconnected", r.id, s.Username)
		e.gw.Broadcast(r.id, EventMessage, systemMessage(s.Username+" has left the room."))
	}
}

func systemMessage(text string) MessagePayload {
	return MessagePayload{Username: "System", Message: text}
}
