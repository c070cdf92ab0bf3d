package app

import (
	"context"
	"crypto/subtle"
	"fmt"

	"live-quiz-service/internal/domain"
)

// QuizRepository loads quiz content by id (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// StatusMirror receives the session status after every committed transition.
// Implementations are best-effort and must never fail the transition.
type StatusMirror interface {
	Record(ctx context.Context, status domain.SessionStatus)
}

// SessionService wraps the session core with teacher authorization, the quiz
// library, and the status mirror. All mutating entry points go through here.
type SessionService struct {
	session      *Session
	quizzes      QuizRepository
	mirror       StatusMirror
	teacherToken string
}

func NewSessionService(session *Session, quizzes QuizRepository, mirror StatusMirror, teacherToken string) *SessionService {
	return &SessionService{
		session:      session,
		quizzes:      quizzes,
		mirror:       mirror,
		teacherToken: teacherToken,
	}
}

// Authorize compares a caller-supplied token against the configured teacher
// secret. Constant-time comparison, single shared authority per deployment.
func (s *SessionService) Authorize(token string) error {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.teacherToken)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// Join registers or re-attaches a participant.
func (s *SessionService) Join(ctx context.Context, conn Conn, name, existingID string) (JoinedMessage, error) {
	joined, err := s.session.Join(conn, name, existingID)
	if err != nil {
		return JoinedMessage{}, err
	}
	s.recordStatus(ctx)
	return joined, nil
}

// Detach clears the connection bound to connID, if any.
func (s *SessionService) Detach(ctx context.Context, connID string) {
	s.session.Detach(connID)
	s.recordStatus(ctx)
}

// SubmitAnswer records an answer for the current question.
func (s *SessionService) SubmitAnswer(_ context.Context, participantID string, answerIndex int) (AnswerAcceptedMessage, error) {
	return s.session.SubmitAnswer(participantID, answerIndex)
}

// StartSession validates the given quiz and resets the session around it.
func (s *SessionService) StartSession(ctx context.Context, token string, quiz domain.Quiz) (domain.SessionStatus, error) {
	if err := s.Authorize(token); err != nil {
		return domain.SessionStatus{}, err
	}
	if err := s.session.LoadQuiz(quiz); err != nil {
		return domain.SessionStatus{}, err
	}
	s.recordStatus(ctx)
	return s.session.Status(), nil
}

// StartSessionByID fetches a quiz from the library, then loads it. The
// loaded quiz is returned alongside the status so callers can report on it.
func (s *SessionService) StartSessionByID(ctx context.Context, token, quizID string) (domain.Quiz, domain.SessionStatus, error) {
	if err := s.Authorize(token); err != nil {
		return domain.Quiz{}, domain.SessionStatus{}, err
	}
	if s.quizzes == nil {
		return domain.Quiz{}, domain.SessionStatus{}, domain.ErrQuizNotFound
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, domain.SessionStatus{}, fmt.Errorf("load quiz %q: %w", quizID, err)
	}
	if err := s.session.LoadQuiz(quiz); err != nil {
		return domain.Quiz{}, domain.SessionStatus{}, err
	}
	s.recordStatus(ctx)
	return quiz, s.session.Status(), nil
}

// LockQuestion closes the open question. Teacher only.
func (s *SessionService) LockQuestion(ctx context.Context, token string) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.session.Lock(); err != nil {
		return err
	}
	s.recordStatus(ctx)
	return nil
}

// NextQuestion advances the cursor or ends the session. Teacher only.
func (s *SessionService) NextQuestion(ctx context.Context, token string) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.session.Advance(); err != nil {
		return err
	}
	s.recordStatus(ctx)
	return nil
}

// EndSession forces the terminal state. Teacher only.
func (s *SessionService) EndSession(ctx context.Context, token string) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.session.End(); err != nil {
		return err
	}
	s.recordStatus(ctx)
	return nil
}

// Status returns the read-only status view.
func (s *SessionService) Status() domain.SessionStatus {
	return s.session.Status()
}

func (s *SessionService) recordStatus(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	s.mirror.Record(ctx, s.session.Status())
}
