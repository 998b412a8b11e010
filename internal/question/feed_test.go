package question

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httperrors "github.com/gokatarajesh/quiz-questions/pkg/http/errors"
	ws "github.com/gokatarajesh/quiz-questions/pkg/http/ws"
)

func dialFeed(t *testing.T, feed *FeedPublisher) *websocket.Conn {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/feed", feed.HandleFeed)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestFeedBroadcastsMutations(t *testing.T) {
	hub := ws.NewHub(discardLogger())
	feed := NewFeedPublisher(hub, discardLogger())
	svc, _ := newTestService(t, &memorySink{}, ServiceOptions{Publisher: feed})

	conn := dialFeed(t, feed)
	hello := readMessage(t, conn)
	require.Equal(t, ws.TypeHello, hello.Type)
	assert.Equal(t, 1, hub.Count())

	q := mustCreate(t, svc, "math", "what is 2+2", "4", "3,5")

	msg := readMessage(t, conn)
	require.Equal(t, ws.TypeQuestionCreated, msg.Type)
	assert.NotContains(t, string(msg.Payload), "answer")
	var payload ws.QuestionPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, q.ID, payload.ID)
	assert.Equal(t, "math", payload.Topic)
	assert.Equal(t, "What is 2+2", payload.Question)

	_, err := svc.Edit(t.Context(), q.ID, EditInput{Question: strPtr("what is 2+3"), Answer: strPtr("5"), Distractors: strPtr("4")})
	require.NoError(t, err)
	msg = readMessage(t, conn)
	assert.Equal(t, ws.TypeQuestionEdited, msg.Type)
}

func TestFeedPingAndUnknownMessages(t *testing.T) {
	feed := NewFeedPublisher(ws.NewHub(discardLogger()), discardLogger())
	conn := dialFeed(t, feed)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing, RequestID: "r1"}))
	pong := readMessage(t, conn)
	assert.Equal(t, ws.TypePong, pong.Type)
	assert.Equal(t, "r1", pong.RequestID)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: "subscribe", RequestID: "r2"}))
	reply := readMessage(t, conn)
	require.Equal(t, ws.TypeError, reply.Type)
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &payload))
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, payload.Code)
	assert.Equal(t, "r2", reply.RequestID)
}

func TestFeedPublishWithoutSubscribers(t *testing.T) {
	hub := ws.NewHub(discardLogger())
	feed := NewFeedPublisher(hub, discardLogger())
	assert.NotPanics(t, func() {
		feed.Publish(Event{Kind: EventCreated, Question: Question{ID: 1, Topic: "math", Text: "a"}})
	})
	assert.Zero(t, hub.Count())
}

func TestFeedRouteRejectsOtherMethods(t *testing.T) {
	feed := NewFeedPublisher(ws.NewHub(discardLogger()), discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/feed", feed.HandleFeed)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/feed", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
