package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

const testToken = "teacher-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	service := app.NewSessionService(app.NewSession(), nil, nil, testToken)
	wsHandler := NewWSHandler(service)
	mgmt := NewManagementHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mgmt.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var msg map[string]any
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func TestWebSocketSessionFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postQuiz(t, server, testToken, `{"questions":[{"text":"2+2?","options":["3","4","5"]}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 starting session, got %d", resp.StatusCode)
	}

	conn := dialWS(t, server)
	if err := conn.WriteJSON(map[string]any{"type": "join_session", "name": "Alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	joined := readNext(t, conn)
	if joined["type"] != "joined" || joined["participantId"] == "" {
		t.Fatalf("unexpected joined reply: %v", joined)
	}
	if joined["state"] != string(domain.StateWaiting) {
		t.Fatalf("expected waiting state, got %v", joined["state"])
	}
	if joined["question"] != nil {
		t.Fatalf("expected no active question, got %v", joined["question"])
	}
	participantID := joined["participantId"].(string)

	if err := conn.WriteJSON(map[string]any{"type": "next_question", "teacherToken": testToken}); err != nil {
		t.Fatalf("write next: %v", err)
	}
	question := readNext(t, conn)
	if question["type"] != "question" || question["state"] != string(domain.StateQuestion) {
		t.Fatalf("unexpected question broadcast: %v", question)
	}
	projection := question["question"].(map[string]any)
	if projection["index"].(float64) != 0 || len(projection["options"].([]any)) != 3 {
		t.Fatalf("unexpected projection: %v", projection)
	}
	if _, leaked := projection["correctIndex"]; leaked {
		t.Fatalf("projection must not carry correctIndex: %v", projection)
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit_answer", "participantId": participantID, "answerIndex": 1}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	accepted := readNext(t, conn)
	if accepted["type"] != "answer_accepted" || accepted["answerIndex"].(float64) != 1 {
		t.Fatalf("unexpected acceptance: %v", accepted)
	}

	// Second submission on the same question is refused.
	if err := conn.WriteJSON(map[string]any{"type": "submit_answer", "participantId": participantID, "answerIndex": 0}); err != nil {
		t.Fatalf("write duplicate: %v", err)
	}
	if dup := readNext(t, conn); dup["type"] != "error" {
		t.Fatalf("expected duplicate answer error, got %v", dup)
	}

	if err := conn.WriteJSON(map[string]any{"type": "lock_question", "teacherToken": testToken}); err != nil {
		t.Fatalf("write lock: %v", err)
	}
	locked := readNext(t, conn)
	if locked["type"] != "state" || locked["state"] != string(domain.StateLocked) {
		t.Fatalf("expected locked broadcast, got %v", locked)
	}

	if err := conn.WriteJSON(map[string]any{"type": "next_question", "teacherToken": testToken}); err != nil {
		t.Fatalf("write final next: %v", err)
	}
	ended := readNext(t, conn)
	if ended["type"] != "state" || ended["state"] != string(domain.StateEnded) {
		t.Fatalf("expected ended broadcast, got %v", ended)
	}
}

func TestWebSocketErrorsGoToSenderOnly(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server)

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	if msg := readNext(t, conn); msg["type"] != "error" {
		t.Fatalf("expected error for unknown type, got %v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if msg := readNext(t, conn); msg["type"] != "error" {
		t.Fatalf("expected error for bad json, got %v", msg)
	}

	if err := conn.WriteJSON(map[string]any{"type": "next_question", "teacherToken": "wrong"}); err != nil {
		t.Fatalf("write bad token: %v", err)
	}
	if msg := readNext(t, conn); msg["type"] != "error" {
		t.Fatalf("expected unauthorized error, got %v", msg)
	}
}

func TestWebSocketReconnectKeepsIdentity(t *testing.T) {
	server := newTestServer(t)

	first := dialWS(t, server)
	if err := first.WriteJSON(map[string]any{"type": "join_session", "name": "Alice"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	joined := readNext(t, first)
	participantID := joined["participantId"].(string)
	first.Close()

	second := dialWS(t, server)
	if err := second.WriteJSON(map[string]any{"type": "join_session", "name": "Alice", "participantId": participantID}); err != nil {
		t.Fatalf("write rejoin: %v", err)
	}
	rejoined := readNext(t, second)
	if rejoined["participantId"] != participantID {
		t.Fatalf("expected identity preserved, got %v", rejoined["participantId"])
	}

	resp, err := http.Get(server.URL + "/session/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var status domain.SessionStatus
	decodeJSON(t, resp, &status)
	if status.ParticipantCount != 1 {
		t.Fatalf("expected one registered participant, got %d", status.ParticipantCount)
	}
}
