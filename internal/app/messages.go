package app

import "live-quiz-service/internal/domain"

// Outbound wire messages. Shapes are part of the client protocol: flat
// envelopes keyed by "type".

type JoinedMessage struct {
	Type          string               `json:"type"`
	ParticipantID string               `json:"participantId"`
	State         domain.SessionState  `json:"state"`
	Question      *domain.QuestionView `json:"question"`
}

type AnswerAcceptedMessage struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	AnswerIndex   int    `json:"answerIndex"`
}

type StateMessage struct {
	Type  string              `json:"type"`
	State domain.SessionState `json:"state"`
}

type QuestionMessage struct {
	Type     string               `json:"type"`
	Question *domain.QuestionView `json:"question"`
	State    domain.SessionState  `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: "error", Message: msg}
}
