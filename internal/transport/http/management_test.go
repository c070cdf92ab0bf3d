package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func newLibraryService(t *testing.T) *app.SessionService {
	t.Helper()
	repo := &libraryRepo{quizzes: map[string]domain.Quiz{
		"quiz-1": {
			ID:        "quiz-1",
			Questions: []domain.Question{{Text: "What is 2 + 2?", Options: []string{"3", "4"}}},
		},
	}}
	return app.NewSessionService(app.NewSession(), repo, nil, testToken)
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func postQuiz(t *testing.T, server *httptest.Server, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, server.URL+"/session/start", stringsReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStartSessionEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postQuiz(t, server, testToken, `{"title":"Math","questions":[{"text":"2+2?","options":["3","4"],"correctIndex":1}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var started startResponse
	decodeJSON(t, resp, &started)
	if !started.OK || started.State != domain.StateWaiting || started.QuestionCount != 1 {
		t.Fatalf("unexpected start response: %+v", started)
	}
}

func TestStartSessionRejectsBadToken(t *testing.T) {
	server := newTestServer(t)

	for _, token := range []string{"", "wrong"} {
		resp := postQuiz(t, server, token, `{"questions":[{"text":"2+2?","options":["3","4"]}]}`)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for token %q, got %d", token, resp.StatusCode)
		}
	}

	// Nothing was loaded.
	resp, err := http.Get(server.URL + "/session/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var status domain.SessionStatus
	decodeJSON(t, resp, &status)
	if status.HasQuiz {
		t.Fatalf("expected no quiz after unauthorized attempts, got %+v", status)
	}
}

func TestStartSessionRejectsInvalidQuiz(t *testing.T) {
	server := newTestServer(t)

	resp := postQuiz(t, server, testToken, `{"questions":[{"text":"lonely","options":["only"]}]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body errorResponse
	decodeJSON(t, resp, &body)
	if !strings.Contains(body.Error, "question 0") {
		t.Fatalf("expected offending index in reason, got %q", body.Error)
	}
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/session/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var status domain.SessionStatus
	decodeJSON(t, resp, &status)
	if status.State != domain.StateWaiting || status.HasQuiz || status.CurrentIndex != -1 || status.ParticipantCount != 0 {
		t.Fatalf("unexpected initial status: %+v", status)
	}
}

func TestLoadSessionFromLibrary(t *testing.T) {
	service := newLibraryService(t)
	mgmt := NewManagementHandler(service)
	mux := http.NewServeMux()
	mgmt.Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/session/load?quizId=quiz-1", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var started startResponse
	decodeJSON(t, resp, &started)
	if started.QuestionCount != 1 {
		t.Fatalf("unexpected load response: %+v", started)
	}

	req, _ = http.NewRequest(http.MethodPost, server.URL+"/session/load?quizId=quiz-missing", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post missing: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp2.StatusCode)
	}
}

type libraryRepo struct {
	quizzes map[string]domain.Quiz
}

func (r *libraryRepo) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}
