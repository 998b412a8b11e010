package question

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/server"
	httperrors "github.com/gokatarajesh/quiz-questions/pkg/http/errors"
	ws "github.com/gokatarajesh/quiz-questions/pkg/http/ws"
)

// FeedPublisher forwards mutation events to every websocket subscriber.
type FeedPublisher struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

var _ Publisher = (*FeedPublisher)(nil)

func NewFeedPublisher(hub *ws.Hub, logger zerolog.Logger) *FeedPublisher {
	return &FeedPublisher{
		hub:    hub,
		logger: logger.With().Str("component", "question_feed").Logger(),
	}
}

// Publish broadcasts evt without the answer or distractors.
func (p *FeedPublisher) Publish(evt Event) {
	msgType := ws.TypeQuestionCreated
	if evt.Kind == EventEdited {
		msgType = ws.TypeQuestionEdited
	}
	msg, err := ws.NewMessage(msgType, ws.QuestionPayload{
		ID:          evt.Question.ID,
		Topic:       evt.Question.Topic,
		Question:    evt.Question.DisplayText(),
		LastUpdated: evt.Question.LastUpdated,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode feed event")
		return
	}
	if err := p.hub.BroadcastAll(msg); err != nil {
		p.logger.Warn().Err(err).Int("question_id", evt.Question.ID).Msg("feed broadcast incomplete")
	}
}

// HandleFeed upgrades GET /v1/feed to a websocket subscribed to question
// changes. The handler blocks until the client disconnects.
func (p *FeedPublisher) HandleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := server.WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := ws.NewConnection(conn, p.logger)
	id := p.hub.Register(c)
	defer p.hub.Unregister(id)

	go c.WritePump()

	if hello, err := ws.NewMessage(ws.TypeHello, ws.HelloPayload{ConnectionID: id.String()}); err == nil {
		_ = c.Send(hello)
	}

	c.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return c.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		default:
			reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{
				Code:    httperrors.ErrCodeUnknownMessageType,
				Message: "unsupported message type " + msg.Type,
			})
			if err != nil {
				return err
			}
			reply.RequestID = msg.RequestID
			return c.Send(reply)
		}
	})
}
