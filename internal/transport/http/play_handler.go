package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

// tickInterval is the countdown granularity. Every tick feeds the session
// state machine; when the budget runs out the session force-skips through the
// same transition an answer would take, so a timeout racing a click can never
// double-count.
const tickInterval = 100 * time.Millisecond

type PlayHandler struct {
	service  *app.PlayService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewPlayHandler(service *app.PlayService, log *zap.Logger) *PlayHandler {
	return &PlayHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Position int `json:"position"`
	Choice   int `json:"choice"`
}

type answerResult struct {
	Position int  `json:"position"`
	Correct  bool `json:"correct"`
	Awarded  int  `json:"awarded"`
}

type finishedPayload struct {
	domain.FinishSummary
	Saved       bool               `json:"saved"`
	Rank        *domain.RankResult `json:"rank,omitempty"`
	Leaderboard domain.Leaderboard `json:"leaderboard"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServePlay upgrades the request to a websocket and drives one play session:
// question views out, answers in, countdown ticks applied server-side, and
// exactly one attempt recorded when the session finishes.
func (h *PlayHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	name := r.URL.Query().Get("name")
	if roomID == "" || name == "" {
		http.Error(w, "missing roomId or name", http.StatusBadRequest)
		return
	}
	user := domain.User{
		ID:       r.URL.Query().Get("userId"),
		Name:     name,
		PhotoURL: r.URL.Query().Get("photo"),
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session, _, err := h.service.Start(r.Context(), roomID)
	if err != nil {
		msg := "could not load room"
		if errors.Is(err, domain.ErrRoomNotFound) {
			msg = "room not found"
		}
		h.log.Warn("start session failed", zap.String("room", roomID), zap.Error(err))
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	stop := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-stop:
		}
	}

	// Server-side countdown. The state machine drops stale events, so the
	// ticker and the read loop can both call into the session safely.
	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				out, err := session.Tick(tickInterval.Milliseconds())
				if err != nil {
					h.log.Error("tick failed", zap.Error(err))
					return
				}
				h.afterEvent(r, roomID, session, user, out, emit)
			case <-stop:
				return
			}
		}
	}()

	h.sendQuestion(session, emit)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			out, err := session.Answer(payload.Position, payload.Choice)
			if err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			if out.Applied {
				emit(outboundMessage[any]{Type: "answerResult", Payload: answerResult{
					Position: out.Position,
					Correct:  out.Correct,
					Awarded:  out.Awarded,
				}})
			}
			h.afterEvent(r, roomID, session, user, out, emit)
		case "reset":
			if err := session.Reset(); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			h.sendQuestion(session, emit)
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(stop)
	<-tickerDone
	close(send)
	<-writerDone
}

// afterEvent pushes the next view after an applied transition. Exactly one
// event finishes the session (the guard drops the rest), so the completion
// path runs at most once per play-through.
func (h *PlayHandler) afterEvent(r *http.Request, roomID string, session *app.Session, user domain.User, out app.AnswerOutcome, emit func(outboundMessage[any])) {
	if !out.Applied {
		return
	}
	if !out.Finished {
		h.sendQuestion(session, emit)
		return
	}

	receipt, err := h.service.Complete(r.Context(), roomID, session, user)
	if err != nil {
		h.log.Error("complete failed", zap.String("room", roomID), zap.Error(err))
		emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "could not record attempt"}})
		return
	}
	if !receipt.Saved {
		h.log.Warn("attempt not saved", zap.String("room", roomID), zap.String("user", user.Name))
	}

	summary, err := session.Summary()
	if err != nil {
		h.log.Error("summary failed", zap.Error(err))
		return
	}
	payload := finishedPayload{
		FinishSummary: summary,
		Saved:         receipt.Saved,
		Leaderboard:   receipt.Leaderboard,
	}
	if receipt.Ranked {
		rank := receipt.Rank
		payload.Rank = &rank
	}
	emit(outboundMessage[any]{Type: "finished", Payload: payload})
}

func (h *PlayHandler) sendQuestion(session *app.Session, emit func(outboundMessage[any])) {
	if view, ok := session.CurrentQuestion(); ok {
		emit(outboundMessage[any]{Type: "question", Payload: view})
	}
}
