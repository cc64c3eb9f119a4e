package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"     // questions served, nothing answered yet
	SessionInProgress SessionStatus = "in_progress" // at least one answer submitted
	SessionCompleted  SessionStatus = "completed"   // closed, immutable
)

// QuizSession is a single play-through of a level.
// It tracks the served questions, the submitted answers, and the running score.
type QuizSession struct {
	ID          uuid.UUID         `json:"id"`
	UserID      string            `json:"user_id"`
	Level       int               `json:"level"`
	QuestionIDs []int64           `json:"question_ids"` // in serving order
	Answers     []SubmittedAnswer `json:"answers"`
	Score       int               `json:"score"` // one point per correct answer
	Status      SessionStatus     `json:"status"`
	Version     int               `json:"version"` // optimistic lock counter
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// SubmittedAnswer is one answer inside a session.
type SubmittedAnswer struct {
	QuestionID     int64     `json:"question_id"`
	SelectedAnswer string    `json:"selected_answer"`
	CorrectAnswer  string    `json:"correct_answer"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// NewQuizSession creates a session in the Created state for the given questions.
func NewQuizSession(id uuid.UUID, userID string, level int, questionIDs []int64, now time.Time) *QuizSession {
	ids := make([]int64, len(questionIDs))
	copy(ids, questionIDs)

	return &QuizSession{
		ID:          id,
		UserID:      userID,
		Level:       level,
		QuestionIDs: ids,
		Answers:     []SubmittedAnswer{},
		Score:       0,
		Status:      SessionCreated,
		StartedAt:   now,
	}
}

// IsCompleted reports whether the session has been closed.
func (s *QuizSession) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// Serves reports whether the question was part of this session's served set.
func (s *QuizSession) Serves(questionID int64) bool {
	for _, id := range s.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// HasAnswer reports whether an answer was already submitted for the question.
func (s *QuizSession) HasAnswer(questionID int64) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// RecordAnswer appends an answer, bumps the score on a correct one,
// and moves a fresh session to InProgress.
func (s *QuizSession) RecordAnswer(a SubmittedAnswer) {
	s.Answers = append(s.Answers, a)
	if a.IsCorrect {
		s.Score++
	}
	if s.Status == SessionCreated {
		s.Status = SessionInProgress
	}
}

// Complete closes the session and sets the completion timestamp.
func (s *QuizSession) Complete(now time.Time) {
	s.Status = SessionCompleted
	s.CompletedAt = &now
}

// Clone returns a deep copy of the session.
func (s *QuizSession) Clone() *QuizSession {
	out := *s
	out.QuestionIDs = append([]int64(nil), s.QuestionIDs...)
	out.Answers = make([]SubmittedAnswer, len(s.Answers))
	copy(out.Answers, s.Answers)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
