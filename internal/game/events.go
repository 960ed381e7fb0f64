package game

// Inbound client events
const (
	EventJoinRoom   = "joinRoom"
	EventWordChosen = "wordChosen"
	EventDrawing    = "drawing"
	EventUndo       = "undo"
	EventChat       = "chatMessage"
)

// Outbound events
const (
	EventSpectator        = "spectator"
	EventMessage          = "message"
	EventLoadDrawings     = "loadDrawings"
	EventCountdown        = "countdown"
	EventGameStart        = "gameStart"
	EventLoading          = "loading"
	EventTurnInfo         = "turnInfo"
	EventWordOptions      = "wordOptions"
	EventYourTurn         = "yourTurn"
	EventWordSelected     = "wordSelected"
	EventClearCanvas      = "clearCanvas"
	EventDrawingPhase     = "drawingPhase"
	EventDrawingCountdown = "drawingCountdown"
	EventTurnEnded        = "turnEnded"
	EventUpdateScores     = "updateScores"
	EventGameOver         = "gameOver"
	EventError            = "error"
)

// Gateway is the outbound half of the realtime transport. The hub
// implements it; tests substitute a recording fake.
type Gateway interface {
	Broadcast(roomID, event string, payload any)
	BroadcastExcept(roomID, senderID, event string, payload any)
	Unicast(connID, event string, payload any)
}

// Inbound payload shapes

type JoinPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type WordChosenPayload struct {
	ChosenWord string `json:"chosenWord"`
}

type DrawPayload struct {
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	LastX  float64 `json:"lastX"`
	LastY  float64 `json:"lastY"`
	Color  string  `json:"color"`
}

type UndoPayload struct {
	RoomID string `json:"roomId"`
}

type ChatPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Outbound payload shapes

type NoticePayload struct {
	Message string `json:"message"`
}

type MessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type CountdownPayload struct {
	Countdown int `json:"countdown"`
}

type WordOptionsPayload struct {
	Options []string `json:"options"`
}

type YourTurnPayload struct {
	Word string `json:"word"`
}

type WordSelectedPayload struct {
	Drawer string `json:"drawer"`
}

type DrawingPhasePayload struct {
	Message string `json:"message"`
	Drawer  string `json:"drawer"`
}

type Score struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type ScoresPayload struct {
	Scores []Score `json:"scores"`
}
