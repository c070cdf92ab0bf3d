package domain

import "time"

// SessionState is the lifecycle state of the live session.
type SessionState string

const (
	StateWaiting  SessionState = "waiting"
	StateQuestion SessionState = "question"
	StateLocked   SessionState = "locked"
	StateEnded    SessionState = "ended"
)

// Question models a multiple-choice question. CorrectIndex is optional
// teacher-side metadata and is never sent to participants.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
}

// Quiz is an ordered set of questions, immutable once validated.
type Quiz struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// Participant is a joined user. Identity survives disconnects: ConnID is
// empty while no live connection is attached.
type Participant struct {
	ID          string
	Name        string
	ConnID      string
	ConnectedAt time.Time
}

// Answer records a single submission for the currently active question.
type Answer struct {
	AnswerIndex int
	AnsweredAt  time.Time
}

// QuestionView is the projection of the active question sent to clients.
// It deliberately omits CorrectIndex.
type QuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SessionStatus is the read-only status view served by the management API
// and mirrored to Redis.
type SessionStatus struct {
	State            SessionState `json:"state"`
	HasQuiz          bool         `json:"hasQuiz"`
	CurrentIndex     int          `json:"currentIndex"`
	ParticipantCount int          `json:"participantCount"`
}
