package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// ManagementHandler exposes the teacher-facing HTTP surface: start a session
// from an inline quiz or the quiz library, and query session status.
type ManagementHandler struct {
	service *app.SessionService
}

func NewManagementHandler(service *app.SessionService) *ManagementHandler {
	return &ManagementHandler{service: service}
}

func (h *ManagementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/session/start", h.handleStart)
	mux.HandleFunc("/session/load", h.handleLoad)
	mux.HandleFunc("/session/status", h.handleStatus)
}

type startResponse struct {
	OK            bool                `json:"ok"`
	State         domain.SessionState `json:"state"`
	QuestionCount int                 `json:"questionCount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleStart loads an inline quiz document posted by the teacher.
func (h *ManagementHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid quiz document"})
		return
	}

	status, err := h.service.StartSession(r.Context(), bearerToken(r), quiz)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{OK: true, State: status.State, QuestionCount: len(quiz.Questions)})
}

// handleLoad starts a session from a quiz stored in the library.
func (h *ManagementHandler) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quizId is required"})
		return
	}

	quiz, status, err := h.service.StartSessionByID(r.Context(), bearerToken(r), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{OK: true, State: status.State, QuestionCount: len(quiz.Questions)})
}

func (h *ManagementHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Status())
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Reason})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
