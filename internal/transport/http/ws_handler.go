package http

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades connections and routes inbound session events.
type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// inboundEnvelope is the loosely typed client message. Fields beyond Type are
// validated per event.
type inboundEnvelope struct {
	Type          string   `json:"type"`
	Name          string   `json:"name"`
	ParticipantID string   `json:"participantId"`
	AnswerIndex   *float64 `json:"answerIndex"`
	TeacherToken  string   `json:"teacherToken"`
}

// wsConn adapts a gorilla connection to app.Conn. Broadcasts arrive from
// other clients' handler goroutines, so writes are serialized by a mutex.
type wsConn struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// ServeWS runs the read loop for one client: decode envelope, route by type,
// reply errors to this connection only. The participant is detached (identity
// kept) when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	conn := &wsConn{id: app.NewConnID(), conn: raw}
	defer raw.Close()
	defer h.service.Detach(r.Context(), conn.id)

	for {
		_, payload, err := raw.ReadMessage()
		if err != nil {
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			h.sendError(conn, "invalid JSON")
			continue
		}
		if env.Type == "" {
			h.sendError(conn, "missing event type")
			continue
		}

		switch env.Type {
		case "join_session":
			joined, err := h.service.Join(r.Context(), conn, env.Name, env.ParticipantID)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.send(conn, joined)
		case "submit_answer":
			index, err := answerIndex(env.AnswerIndex)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			accepted, err := h.service.SubmitAnswer(r.Context(), env.ParticipantID, index)
			if err != nil {
				h.sendError(conn, err.Error())
				continue
			}
			h.send(conn, accepted)
		case "lock_question":
			if err := h.service.LockQuestion(r.Context(), env.TeacherToken); err != nil {
				h.sendError(conn, err.Error())
			}
		case "next_question":
			if err := h.service.NextQuestion(r.Context(), env.TeacherToken); err != nil {
				h.sendError(conn, err.Error())
			}
		case "end_session":
			if err := h.service.EndSession(r.Context(), env.TeacherToken); err != nil {
				h.sendError(conn, err.Error())
			}
		default:
			h.sendError(conn, "unknown event type")
		}
	}
}

// answerIndex narrows the wire number to an integral index. A missing field
// is invalid input; a fractional one is an invalid answer index.
func answerIndex(raw *float64) (int, error) {
	if raw == nil {
		return 0, errors.New("answerIndex is required")
	}
	if *raw != math.Trunc(*raw) {
		return 0, domain.ErrInvalidAnswerIndex
	}
	return int(*raw), nil
}

func (h *WSHandler) send(conn *wsConn, v any) {
	if err := conn.Send(v); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) sendError(conn *wsConn, msg string) {
	h.send(conn, app.NewErrorMessage(msg))
}
