package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeQuestionCreated, QuestionPayload{ID: 3, Topic: "math", Question: "What is 2+2"})
	require.NoError(t, err)
	assert.Equal(t, TypeQuestionCreated, msg.Type)

	var payload QuestionPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, 3, payload.ID)

	msg, err = NewMessage(TypePong, nil)
	require.NoError(t, err)
	assert.Nil(t, msg.Payload)
}

// startHub serves a websocket endpoint whose connections join hub.
func startHub(t *testing.T, hub *Hub) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConnection(conn, zerolog.Nop())
		id := hub.Register(c)
		defer hub.Unregister(id)
		go c.WritePump()
		_ = c.Send(Message{Type: TypeHello})
		c.ReadPump(func(Message) error { return nil })
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, TypeHello, hello.Type)
	return conn
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	url := startHub(t, hub)
	a := dial(t, url)
	b := dial(t, url)
	assert.Equal(t, 2, hub.Count())

	msg, err := NewMessage(TypeQuestionEdited, QuestionPayload{ID: 1})
	require.NoError(t, err)
	require.NoError(t, hub.BroadcastAll(msg))

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got Message
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, TypeQuestionEdited, got.Type)
	}
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dial(t, startHub(t, hub))
	require.Equal(t, 1, hub.Count())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestConnectionSendAfterClose(t *testing.T) {
	c := &Connection{sendCh: make(chan Message, 1), closed: true}
	assert.ErrorIs(t, c.Send(Message{Type: TypePong}), ErrConnectionClosed)
}

func TestConnectionSendQueueFull(t *testing.T) {
	c := &Connection{sendCh: make(chan Message, 1)}
	require.NoError(t, c.Send(Message{Type: TypePong}))
	assert.ErrorIs(t, c.Send(Message{Type: TypePong}), ErrSendQueueFull)
}
