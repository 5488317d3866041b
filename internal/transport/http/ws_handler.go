package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/PippinJewel/quiz-platform/internal/app"
	"github.com/PippinJewel/quiz-platform/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler is the event gateway: it decodes tagged client actions,
// routes them to the game service, and pushes session notifications
// back over the socket.
type WSHandler struct {
	service      *app.GameService
	defaultSetID string
	upgrader     websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultSetID string) *WSHandler {
	return &WSHandler{
		service:      service,
		defaultSetID: defaultSetID,
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

type createPayload struct {
	SetID string `json:"setId"`
}

type pinPayload struct {
	Pin string `json:"pin"`
}

type joinPayload struct {
	Pin        string `json:"pin"`
	PlayerName string `json:"playerName"`
}

type answerPayload struct {
	Pin         string `json:"pin"`
	PlayerID    string `json:"playerId"`
	AnswerIndex int    `json:"answerIndex"`
}

type sessionCreatedPayload struct {
	Pin string `json:"pin"`
}

type joinedPayload struct {
	PlayerID string `json:"playerId"`
}

type playerCountPayload struct {
	PlayerCount int `json:"playerCount"`
}

type questionPayload struct {
	Question      domain.QuestionView `json:"question"`
	QuestionIndex int                 `json:"questionIndex"`
}

type leaderboardPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// session use cases. A connection subscribes to at most one session at
// a time (the one it created or joined); dropping the socket never
// touches session state.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var cancelSub func()
	var pumpDone chan struct{}

	// subscribe replaces any previous subscription with one for code.
	subscribe := func(code string) error {
		events, cancel, err := h.service.Subscribe(r.Context(), code)
		if err != nil {
			return err
		}
		if cancelSub != nil {
			cancelSub()
			<-pumpDone
		}
		cancelSub = cancel
		pumpDone = make(chan struct{})
		go h.pumpEvents(events, send, closeSignals, pumpDone)
		return nil
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, &inbound, send, subscribe)
	}

	close(closeSignals)
	if cancelSub != nil {
		cancelSub()
		<-pumpDone
	}
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, inbound *inboundMessage, send chan<- outboundMessage[any], subscribe func(string) error) {
	ctx := r.Context()

	switch inbound.Type {
	case "create_session":
		var payload createPayload
		_ = json.Unmarshal(inbound.Payload, &payload)
		setID := payload.SetID
		if setID == "" {
			setID = h.defaultSetID
		}
		code, err := h.service.CreateSession(ctx, setID)
		if err != nil {
			send <- errorMessage("error", err)
			return
		}
		if err := subscribe(code); err != nil {
			send <- errorMessage("error", err)
			return
		}
		send <- outboundMessage[any]{Type: "session_created", Payload: sessionCreatedPayload{Pin: code}}

	case "join_game":
		var payload joinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Pin == "" || payload.PlayerName == "" {
			send <- outboundMessage[any]{Type: "join_error", Payload: errorPayload{Message: "invalid join payload"}}
			return
		}
		playerID, _, err := h.service.Join(ctx, payload.Pin, payload.PlayerName)
		if err != nil {
			send <- errorMessage("join_error", err)
			return
		}
		if err := subscribe(payload.Pin); err != nil {
			send <- errorMessage("join_error", err)
			return
		}
		send <- outboundMessage[any]{Type: "joined_game", Payload: joinedPayload{PlayerID: playerID}}

	case "start_game":
		var payload pinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
			return
		}
		if err := h.service.Start(ctx, payload.Pin); err != nil {
			send <- errorMessage("error", err)
		}

	case "next_question":
		var payload pinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
			return
		}
		if err := h.service.Advance(ctx, payload.Pin); err != nil {
			send <- errorMessage("error", err)
		}

	case "submit_answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.AnswerIndex < 0 {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
			return
		}
		result, err := h.service.SubmitAnswer(ctx, payload.Pin, payload.PlayerID, payload.AnswerIndex)
		if err != nil {
			send <- errorMessage("error", err)
			return
		}
		send <- outboundMessage[any]{Type: "answer_result", Payload: result}

	case "get_leaderboard":
		var payload pinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
			return
		}
		// The snapshot is broadcast to every subscriber; nothing extra
		// goes back to the requester.
		if _, err := h.service.Leaderboard(ctx, payload.Pin); err != nil {
			send <- errorMessage("error", err)
		}

	case "end_game":
		var payload pinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
			return
		}
		h.service.End(ctx, payload.Pin)

	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

// pumpEvents forwards session notifications to the connection until the
// subscription is cancelled or the connection is closing.
func (h *WSHandler) pumpEvents(events <-chan app.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			select {
			case send <- eventMessage(event):
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func eventMessage(event app.Event) outboundMessage[any] {
	switch event.Type {
	case app.EventPlayerJoined:
		return outboundMessage[any]{Type: "player_joined", Payload: playerCountPayload{PlayerCount: event.PlayerCount}}
	case app.EventGameStarted, app.EventNextQuestion:
		return outboundMessage[any]{Type: string(event.Type), Payload: questionPayload{
			Question:      *event.Question,
			QuestionIndex: event.QuestionIndex,
		}}
	case app.EventLeaderboard:
		return outboundMessage[any]{Type: "leaderboard_update", Payload: leaderboardPayload{Leaderboard: event.Leaderboard.Entries}}
	case app.EventGameEnded:
		return outboundMessage[any]{Type: "game_ended", Payload: struct{}{}}
	default:
		return outboundMessage[any]{Type: string(event.Type), Payload: struct{}{}}
	}
}

func errorMessage(msgType string, err error) outboundMessage[any] {
	return outboundMessage[any]{Type: msgType, Payload: errorPayload{Message: err.Error()}}
}
