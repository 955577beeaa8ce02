package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/simcore/internal/core/events/bus"
	"github.com/zeusync/simcore/internal/core/geom"
	"github.com/zeusync/simcore/internal/core/models"
	"github.com/zeusync/simcore/internal/core/systems/physics"
)

func dial(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	s := httptest.NewServer(h.Handler())
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn, func() {
		_ = conn.Close()
		s.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_BroadcastsFrames(t *testing.T) {
	h := NewHub()
	conn, done := dial(t, h)
	defer done()

	w, err := physics.NewWorld(physics.WithFixedStep(0.5))
	require.NoError(t, err)
	e := models.NewEntity(1, "crate")
	e.AddComponent(physics.NewBody(physics.Dynamic, geom.Box{W: 1, H: 1}))
	require.NoError(t, w.AddEntity(e))
	require.NoError(t, w.Update(1))

	require.NoError(t, h.PublishFrame(NewFrame(4, w)))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageFrame, msg["type"])
	assert.EqualValues(t, 4, msg["tick"])
	data := msg["data"].(map[string]any)
	assert.EqualValues(t, 2, data["steps"])
	bodies := data["bodies"].([]any)
	require.Len(t, bodies, 1)
	assert.Equal(t, "crate", bodies[0].(map[string]any)["name"])
}

func TestHub_FollowsBusTopic(t *testing.T) {
	h := NewHub()
	conn, done := dial(t, h)
	defer done()

	b := bus.New()
	sub, err := h.Follow(b, "physics")
	require.NoError(t, err)
	defer func() { _ = sub.Cancel() }()

	ev := physics.ContactEvent{Step: 9, EntityA: 1, EntityB: 2, TypeA: "feet", TypeB: "hit-box"}
	require.NoError(t, b.PublishToTopic("physics", bus.NewEvent(physics.EventContactBegin, "physics", ev, nil)))
	require.NoError(t, b.Publish(bus.NewEvent("other", "test", nil, nil)))

	msg := readMessage(t, conn)
	assert.Equal(t, physics.EventContactBegin, msg["type"])
	assert.EqualValues(t, 9, msg["tick"])
	assert.Equal(t, "feet", msg["data"].(map[string]any)["type_a"])
}

func TestHub_DropsSlowObserver(t *testing.T) {
	h := NewHub(WithSendBuffer(1))
	c := &client{id: "slow", send: make(chan []byte, 1)}
	require.True(t, h.register(c))

	require.NoError(t, h.Broadcast(Message{Type: "a"}))
	require.NoError(t, h.Broadcast(Message{Type: "b"}))

	assert.Zero(t, h.Clients())
	assert.Equal(t, uint64(1), h.Dropped())
	payload, ok := <-c.send
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"a","tick":0}`, string(payload))
	_, ok = <-c.send
	assert.False(t, ok, "send channel closed")
}

func TestHub_Health(t *testing.T) {
	h := NewHub()
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["clients"])
}

func TestHub_CloseDisconnectsObservers(t *testing.T) {
	h := NewHub()
	conn, done := dial(t, h)
	defer done()

	h.Close()
	assert.Zero(t, h.Clients())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHub_ServeStopsOnCancel(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
