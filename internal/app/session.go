package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// Session owns all mutable state of the single live quiz run: the lifecycle
// state machine, the question cursor, the participant registry, and the
// per-question answer ledger. One mutex serializes every operation so each
// inbound event runs to completion before the next is handled.
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	state        domain.SessionState
	quiz         *domain.Quiz
	currentIndex int

	participants map[string]*domain.Participant
	order        []string        // participant ids in insertion order, broadcast iterates this
	conns        map[string]Conn // conn id -> live connection

	answers map[string]domain.Answer

	// resetParticipants wipes the registry on quiz load. Off by default:
	// participants from a previous run stay registered across a reload.
	resetParticipants bool
}

func NewSession() *Session {
	return NewSessionWithClock(time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(now func() time.Time) *Session {
	return &Session{
		now:          now,
		state:        domain.StateWaiting,
		currentIndex: -1,
		participants: make(map[string]*domain.Participant),
		conns:        make(map[string]Conn),
		answers:      make(map[string]domain.Answer),
	}
}

// SetResetParticipants controls whether LoadQuiz also wipes the registry.
func (s *Session) SetResetParticipants(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetParticipants = v
}

// LoadQuiz validates the quiz and resets the session around it: state back
// to waiting, cursor cleared, answer ledger cleared. Callable in any state.
// The session is left untouched when validation fails.
func (s *Session) LoadQuiz(quiz domain.Quiz) error {
	if err := domain.ValidateQuiz(quiz); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateWaiting
	s.quiz = &quiz
	s.currentIndex = -1
	s.answers = make(map[string]domain.Answer)
	if s.resetParticipants {
		s.participants = make(map[string]*domain.Participant)
		s.order = nil
		s.conns = make(map[string]Conn)
	}
	return nil
}

// Join registers a new participant or re-attaches a known one. A supplied
// existingID that is still registered keeps its identity and name; the old
// connection reference is replaced. The joined reply is returned for the
// caller to deliver to the joining connection.
func (s *Session) Join(conn Conn, name, existingID string) (JoinedMessage, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return JoinedMessage{}, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participantID := existingID
	if p, ok := s.participants[existingID]; existingID != "" && ok {
		if p.ConnID != "" {
			delete(s.conns, p.ConnID)
		}
		p.ConnID = conn.ID()
		p.ConnectedAt = s.now()
	} else {
		participantID = newID("p")
		s.participants[participantID] = &domain.Participant{
			ID:          participantID,
			Name:        trimmed,
			ConnID:      conn.ID(),
			ConnectedAt: s.now(),
		}
		s.order = append(s.order, participantID)
	}
	s.conns[conn.ID()] = conn

	return JoinedMessage{
		Type:          "joined",
		ParticipantID: participantID,
		State:         s.state,
		Question:      s.currentQuestionLocked(),
	}, nil
}

// Detach clears the connection reference of whichever participant holds the
// given conn id, keeping identity and name for a later rejoin.
func (s *Session) Detach(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, connID)
	for _, p := range s.participants {
		if p.ConnID == connID {
			p.ConnID = ""
			break
		}
	}
}

// SubmitAnswer records one answer for the current question. At most one
// answer per participant per question; the ledger is only cleared by a
// question advance or a quiz load.
func (s *Session) SubmitAnswer(participantID string, answerIndex int) (AnswerAcceptedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateQuestion {
		return AnswerAcceptedMessage{}, fmt.Errorf("question is not open: %w", domain.ErrIllegalState)
	}
	if _, ok := s.participants[participantID]; !ok {
		return AnswerAcceptedMessage{}, domain.ErrUnknownParticipant
	}
	if _, ok := s.answers[participantID]; ok {
		return AnswerAcceptedMessage{}, domain.ErrDuplicateAnswer
	}
	question := s.currentQuestionLocked()
	if question == nil {
		return AnswerAcceptedMessage{}, domain.ErrNoActiveQuestion
	}
	if answerIndex < 0 || answerIndex >= len(question.Options) {
		return AnswerAcceptedMessage{}, domain.ErrInvalidAnswerIndex
	}

	s.answers[participantID] = domain.Answer{AnswerIndex: answerIndex, AnsweredAt: s.now()}
	return AnswerAcceptedMessage{
		Type:          "answer_accepted",
		ParticipantID: participantID,
		AnswerIndex:   answerIndex,
	}, nil
}

// Advance moves the cursor to the next question, clearing the answer ledger
// and broadcasting the new question. Past the last question it transitions
// to ended instead.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quiz == nil {
		return fmt.Errorf("no quiz loaded: %w", domain.ErrIllegalState)
	}
	if s.state == domain.StateEnded {
		return fmt.Errorf("session has ended: %w", domain.ErrIllegalState)
	}

	nextIndex := s.currentIndex + 1
	if nextIndex >= len(s.quiz.Questions) {
		s.state = domain.StateEnded
		s.broadcastLocked(StateMessage{Type: "state", State: s.state}, "")
		return nil
	}

	s.currentIndex = nextIndex
	s.state = domain.StateQuestion
	s.answers = make(map[string]domain.Answer)
	s.broadcastLocked(QuestionMessage{
		Type:     "question",
		Question: s.currentQuestionLocked(),
		State:    s.state,
	}, "")
	return nil
}

// Lock closes the current question for answers. Only valid while a question
// is open.
func (s *Session) Lock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StateQuestion {
		return fmt.Errorf("no open question to lock: %w", domain.ErrIllegalState)
	}
	s.state = domain.StateLocked
	s.broadcastLocked(StateMessage{Type: "state", State: s.state}, "")
	return nil
}

// End forces the session into its terminal state from anywhere.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.StateEnded
	s.broadcastLocked(StateMessage{Type: "state", State: s.state}, "")
	return nil
}

// Status returns the read-only status view.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionStatus{
		State:            s.state,
		HasQuiz:          s.quiz != nil,
		CurrentIndex:     s.currentIndex,
		ParticipantCount: len(s.participants),
	}
}

// CurrentQuestion returns the projection of the active question, or nil.
func (s *Session) CurrentQuestion() *domain.QuestionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQuestionLocked()
}

func (s *Session) currentQuestionLocked() *domain.QuestionView {
	if s.quiz == nil || s.currentIndex < 0 || s.currentIndex >= len(s.quiz.Questions) {
		return nil
	}
	q := s.quiz.Questions[s.currentIndex]
	return &domain.QuestionView{
		Index:   s.currentIndex,
		Text:    q.Text,
		Options: q.Options,
	}
}

// broadcastLocked fans a payload out to every participant with a live
// connection, in registry insertion order, skipping excludeConnID. Delivery
// is best-effort: a failed send is ignored and never aborts the rest.
func (s *Session) broadcastLocked(payload any, excludeConnID string) {
	for _, id := range s.order {
		p := s.participants[id]
		if p == nil || p.ConnID == "" || p.ConnID == excludeConnID {
			continue
		}
		conn, ok := s.conns[p.ConnID]
		if !ok {
			continue
		}
		_ = conn.Send(payload)
	}
}

