package ws

import (
	"encoding/json"
	"testing"

	"github.com/scrawlhq/scrawl/backend/internal/game"
)

type handlerCall struct {
	method string
	args   []string
}

// stubHandler records every engine call the hub dispatches.
type stubHandler struct {
	calls []handlerCall
}

func (s *stubHandler) HandleJoin(connID, roomID, username string) {
	s.calls = append(s.calls, handlerCall{"join", []string{connID, roomID, username}})
}

func (s *stubHandler) HandleWordChosen(connID, word string) {
	s.calls = append(s.calls, handlerCall{"wordChosen", []string{connID, word}})
}

func (s *stubHandler) HandleDrawing(connID string, payload []byte) {
	s.calls = append(s.calls, handlerCall{"drawing", []string{connID, string(payload)}})
}

func (s *stubHandler) HandleUndo(connID, roomID string) {
	s.calls = append(s.calls, handlerCall{"undo", []string{connID, roomID}})
}

func (s *stubHandler) HandleChat(connID, roomID, username, message string) {
	s.calls = append(s.calls, handlerCall{"chat", []string{connID, roomID, username, message}})
}

func (s *stubHandler) HandleDisconnect(connID string) {
	s.calls = append(s.calls, handlerCall{"disconnect", []string{connID}})
}

func (s *stubHandler) last() handlerCall {
	if len(s.calls) == 0 {
		return handlerCall{}
	}
	return s.calls[len(s.calls)-1]
}

func setupTestHub(t *testing.T) (*Hub, *stubHandler) {
	t.Helper()
	hub := NewHub()
	handler := &stubHandler{}
	hub.SetHandler(handler)
	return hub, handler
}

// newTestClient builds a client with a buffered send channel and no
// network connection; frames are read straight off the channel.
func newTestClient(hub *Hub, id string) *Client {
	c := &Client{
		hub:  hub,
		send: make(chan []byte, 16),
		id:   id,
	}
	hub.addClient(c)
	return c
}

func recvFrame(t *testing.T, c *Client) (string, json.RawMessage) {
	t.Helper()
	select {
	case data := <-c.send:
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("Undecodable frame %q: %v", data, err)
		}
		return env.Event, env.Data
	default:
		t.Fatal("Expected a frame, send buffer is empty")
		return "", nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("Expected no frame, got %q", data)
	default:
	}
}

func TestBroadcastReachesRoomMembersOnly(t *testing.T) {
	hub, _ := setupTestHub(t)
	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	outsider := newTestClient(hub, "c")
	hub.joinRoom(a, "r1")
	hub.joinRoom(b, "r1")
	hub.joinRoom(outsider, "r2")

	hub.Broadcast("r1", game.EventMessage, game.MessagePayload{Username: "System", Message: "hi"})

	for _, c := range []*Client{a, b} {
		event, data := recvFrame(t, c)
		if event != game.EventMessage {
			t.Errorf("Expected event %q, got %q", game.EventMessage, event)
		}
		var p game.MessagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("Failed to decode payload: %v", err)
		}
		if p.Message != "hi" {
			t.Errorf("Expected message 'hi', got %q", p.Message)
		}
	}
	assertNoFrame(t, outsider)
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	hub, _ := setupTestHub(t)
	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	hub.joinRoom(a, "r1")
	hub.joinRoom(b, "r1")

	hub.BroadcastExcept("r1", "a", game.EventDrawing, game.StrokeSegment{X: 1, Y: 2})

	assertNoFrame(t, a)
	event, _ := recvFrame(t, b)
	if event != game.EventDrawing {
		t.Errorf("Expected event %q, got %q", game.EventDrawing, event)
	}
}

func TestUnicastTargetsOneClient(t *testing.T) {
	hub, _ := setupTestHub(t)
	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	hub.joinRoom(a, "r1")
	hub.joinRoom(b, "r1")

	hub.Unicast("b", game.EventYourTurn, game.YourTurnPayload{Word: "cat"})

	assertNoFrame(t, a)
	event, data := recvFrame(t, b)
	if event != game.EventYourTurn {
		t.Errorf("Expected event %q, got %q", game.EventYourTurn, event)
	}
	var p game.YourTurnPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if p.Word != "cat" {
		t.Errorf("Expected word 'cat', got %q", p.Word)
	}

	// Unknown recipients are dropped silently.
	hub.Unicast("ghost", game.EventYourTurn, game.YourTurnPayload{Word: "dog"})
}

func TestDispatchRoutesEvents(t *testing.T) {
	hub, handler := setupTestHub(t)
	c := newTestClient(hub, "conn1")

	cases := []struct {
		frame  string
		method string
		args   []string
	}{
		{`{"event":"joinRoom","data":{"roomId":"r1","username":"alice"}}`, "join", []string{"conn1", "r1", "alice"}},
		{`{"event":"wordChosen","data":{"chosenWord":"cat"}}`, "wordChosen", []string{"conn1", "cat"}},
		{`{"event":"undo","data":{"roomId":"r1"}}`, "undo", []string{"conn1", "r1"}},
		{`{"event":"chatMessage","data":{"roomId":"r1","username":"alice","message":"hey"}}`, "chat", []string{"conn1", "r1", "alice", "hey"}},
	}

	for _, tc := range cases {
		hub.dispatch(c, []byte(tc.frame))
		call := handler.last()
		if call.method != tc.method {
			t.Errorf("Frame %s: expected handler %q, got %q", tc.frame, tc.method, call.method)
			continue
		}
		if len(call.args) != len(tc.args) {
			t.Errorf("Frame %s: expected args %v, got %v", tc.frame, tc.args, call.args)
			continue
		}
		for i := range tc.args {
			if call.args[i] != tc.args[i] {
				t.Errorf("Frame %s: expected args %v, got %v", tc.frame, tc.args, call.args)
				break
			}
		}
	}
}

func TestDispatchPassesRawDrawingData(t *testing.T) {
	hub, handler := setupTestHub(t)
	c := newTestClient(hub, "conn1")

	raw := `{"roomId":"r1","x":1,"y":2,"lastX":0,"lastY":1,"color":"#fff"}`
	hub.dispatch(c, []byte(`{"event":"drawing","data":`+raw+`}`))

	call := handler.last()
	if call.method != "drawing" {
		t.Fatalf("Expected drawing handler, got %q", call.method)
	}
	if call.args[1] != raw {
		t.Errorf("Expected raw payload %s, got %s", raw, call.args[1])
	}
}

func TestDispatchRejectsBadFrames(t *testing.T) {
	hub, handler := setupTestHub(t)
	c := newTestClient(hub, "conn1")

	bad := []string{
		`not json at all`,
		`{"event":"noSuchEvent","data":{}}`,
		`{"event":"joinRoom","data":{"roomId":"","username":"alice"}}`,
		`{"event":"joinRoom","data":{"roomId":"r1","username":""}}`,
		`{"event":"undo","data":"not-an-object"}`,
	}

	for _, frame := range bad {
		hub.dispatch(c, []byte(frame))
		event, _ := recvFrame(t, c)
		if event != game.EventError {
			t.Errorf("Frame %s: expected error frame, got %q", frame, event)
		}
	}
	if len(handler.calls) != 0 {
		t.Errorf("Expected no handler calls, got %v", handler.calls)
	}
}

func TestJoinRoomMovesClientBetweenGroups(t *testing.T) {
	hub, _ := setupTestHub(t)
	c := newTestClient(hub, "a")

	hub.joinRoom(c, "r1")
	hub.joinRoom(c, "r2")

	if hub.GetRoomCount() != 1 {
		t.Errorf("Expected 1 room group, got %d", hub.GetRoomCount())
	}
	active := hub.GetActiveRooms()
	if active["r2"] != 1 {
		t.Errorf("Expected client in r2, got %v", active)
	}

	hub.Broadcast("r1", game.EventMessage, game.MessagePayload{Message: "old room"})
	assertNoFrame(t, c)
}

func TestRemoveClientNotifiesEngineOnce(t *testing.T) {
	hub, handler := setupTestHub(t)
	c := newTestClient(hub, "a")
	hub.joinRoom(c, "r1")

	hub.removeClient(c)
	hub.removeClient(c)

	if len(handler.calls) != 1 {
		t.Fatalf("Expected 1 disconnect call, got %d", len(handler.calls))
	}
	if handler.calls[0].method != "disconnect" || handler.calls[0].args[0] != "a" {
		t.Errorf("Unexpected call %v", handler.calls[0])
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
	if hub.GetRoomCount() != 0 {
		t.Errorf("Expected empty room group to be dropped, got %d", hub.GetRoomCount())
	}

	// The send channel is closed so the write pump exits.
	if _, ok := <-c.send; ok {
		t.Error("Expected send channel to be closed")
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	hub, _ := setupTestHub(t)
	c := &Client{hub: hub, send: make(chan []byte, 1), id: "a"}
	hub.addClient(c)
	hub.joinRoom(c, "r1")

	hub.Broadcast("r1", game.EventMessage, game.MessagePayload{Message: "first"})
	hub.Broadcast("r1", game.EventMessage, game.MessagePayload{Message: "dropped"})

	event, data := recvFrame(t, c)
	if event != game.EventMessage {
		t.Fatalf("Expected message frame, got %q", event)
	}
	var p game.MessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if p.Message != "first" {
		t.Errorf("Expected the first frame to survive, got %q", p.Message)
	}
	assertNoFrame(t, c)
}
