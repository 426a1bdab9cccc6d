package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/testutil"
)

func newTestServer(t *testing.T, svc *testutil.ScriptedService) (*httptest.Server, *Hub) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub()
	e := engine.New(svc, testutil.FixtureIndex(t),
		engine.WithLogger(logger),
		engine.WithRoller(testutil.NewFixedRoller()),
		engine.WithPassIDs(testutil.NewSequentialPassIDs("api")),
		engine.WithObserver(hub.Broadcast),
	)
	d := engine.NewDriver(e)

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	server := httptest.NewServer(NewMux(NewHandler(d, hub, logger)))
	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return server, hub
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readReply skips pushed states until the reply to op arrives.
func readReply(t *testing.T, conn *websocket.Conn, op string) ServerMessage {
	t.Helper()
	for {
		msg := read(t, conn)
		if msg.Op == op || msg.Type == TypeError {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func fixtureService() *testutil.ScriptedService {
	return testutil.NewScriptedService(testutil.NewSave(1,
		testutil.Start("a01_a001_a001"), testutil.Play("01_001_001"), testutil.Play("01_001_002")))
}

func TestWebSocket_SendsStateOnConnect(t *testing.T) {
	server, _ := newTestServer(t, fixtureService())
	conn := dial(t, server)

	msg := read(t, conn)

	assert.Equal(t, TypeState, msg.Type)
	require.NotNil(t, msg.View)
	assert.Equal(t, int64(0), msg.SaveID)
	assert.Equal(t, engine.CursorIdle, msg.Cursor)
	assert.Empty(t, msg.Queue)
}

func TestWebSocket_CommandsRunOnEngine(t *testing.T) {
	server, _ := newTestServer(t, fixtureService())
	conn := dial(t, server)
	read(t, conn)

	send(t, conn, ClientMessage{Op: OpSync})
	msg := readReply(t, conn, OpSync)
	require.Equal(t, TypeState, msg.Type)
	assert.Equal(t, int64(1), msg.SaveID)
	assert.Equal(t, []string{"01_001_001", "01_001_002"}, ir.QueueVideos(msg.Queue))

	send(t, conn, ClientMessage{Op: OpStart})
	msg = readReply(t, conn, OpStart)
	assert.Equal(t, engine.CursorActive, msg.Cursor)
	assert.Equal(t, "01_001_001", msg.CurrentVideo)

	send(t, conn, ClientMessage{Op: OpAdvance})
	msg = readReply(t, conn, OpAdvance)
	assert.Equal(t, "01_001_002", msg.CurrentVideo)
}

func TestWebSocket_Errors(t *testing.T) {
	server, _ := newTestServer(t, fixtureService())
	conn := dial(t, server)
	read(t, conn)

	tests := []struct {
		name     string
		payload  string
		wantCode string
	}{
		{"no save", `{"op":"commit","index":0}`, string(engine.ErrCodeNoSave)},
		{"unresolvable rewind", `{"op":"rewind","id":"zz_999"}`, string(engine.ErrCodeUnresolvableRewind)},
		{"rewind without id", `{"op":"rewind"}`, CodeBadRequest},
		{"unknown op", `{"op":"fly"}`, CodeBadRequest},
		{"malformed", `{"op":`, CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))
			msg := read(t, conn)
			assert.Equal(t, TypeError, msg.Type)
			assert.Equal(t, tt.wantCode, msg.Code)
			assert.NotEmpty(t, msg.Message)
			assert.Nil(t, msg.View)
		})
	}
}

func TestWebSocket_BroadcastsToOtherConnections(t *testing.T) {
	server, hub := newTestServer(t, fixtureService())
	a := dial(t, server)
	b := dial(t, server)
	read(t, a)
	read(t, b)
	require.Equal(t, 2, hub.SubscriberCount())

	send(t, a, ClientMessage{Op: OpSync})

	msg := read(t, b)
	assert.Equal(t, TypeState, msg.Type)
	assert.Empty(t, msg.Op, "pushed states carry no op")
	assert.Equal(t, int64(1), msg.SaveID)
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, fixtureService())

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var h HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "reelsync", h.Service)
}

func TestClientMessage_Command(t *testing.T) {
	two := 2
	tests := []struct {
		name string
		msg  ClientMessage
		want engine.Command
	}{
		{"commit by index", ClientMessage{Op: OpCommit, Index: &two}, engine.Command{Kind: engine.CmdCommit, Selector: ir.ByIndex(2)}},
		{"commit by key", ClientMessage{Op: OpCommit, Key: "go", Index: &two}, engine.Command{Kind: engine.CmdCommit, Selector: ir.ByKey("go")}},
		{"commit defaults to 0", ClientMessage{Op: OpCommit}, engine.Command{Kind: engine.CmdCommit, Selector: ir.ByIndex(0)}},
		{"rewind", ClientMessage{Op: OpRewind, ID: "01_001_002"}, engine.Command{Kind: engine.CmdRewind, ID: "01_001_002"}},
		{"copy", ClientMessage{Op: OpCopy, SaveID: 4}, engine.Command{Kind: engine.CmdCopy, SaveID: 4}},
		{"sync", ClientMessage{Op: OpSync}, engine.Command{Kind: engine.CmdFullSync}},
		{"new save", ClientMessage{Op: OpNewSave}, engine.Command{Kind: engine.CmdForceNew}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.msg.Command()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Broadcast(engine.View{SaveID: int64(i)})
	}
	assert.Len(t, sub, subscriberBuffer)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.SubscriberCount())
}
